package decimal_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dec "github.com/rezonia/cfdi-processor/internal/decimal"
)

func TestFromString_ExactText(t *testing.T) {
	d, err := dec.FromString("1234.567890")
	require.NoError(t, err)

	// Compare serialized text, not float conversion
	assert.Equal(t, "1234.56789", d.String())
	assert.True(t, d.Equal(decimal.New(1234567890, -6)))
}

func TestWithinScale(t *testing.T) {
	tests := []struct {
		value string
		ok    bool
	}{
		{"100", true},
		{"0.1", true},
		{"0.000001", true},
		{"1234.567890", true},
		{"0.0000001", false},
		{"1.1234567", false},
	}

	for _, tt := range tests {
		d := dec.MustFromString(tt.value)
		assert.Equal(t, tt.ok, dec.WithinScale(d), "value %s", tt.value)
	}
}

func TestIsPositive(t *testing.T) {
	assert.True(t, dec.IsPositive(dec.MustFromString("0.000001")))
	assert.True(t, dec.IsPositive(dec.MustFromString("5")))
	assert.False(t, dec.IsPositive(dec.Zero))
	assert.False(t, dec.IsPositive(dec.MustFromString("-1")))
}

func TestIsNonNegative(t *testing.T) {
	assert.True(t, dec.IsNonNegative(dec.Zero))
	assert.True(t, dec.IsNonNegative(dec.MustFromString("0.5")))
	assert.False(t, dec.IsNonNegative(dec.MustFromString("-0.000001")))
}

func TestSum(t *testing.T) {
	values := []decimal.Decimal{
		dec.MustFromString("50"),
		dec.MustFromString("20"),
		dec.MustFromString("0.000001"),
	}

	assert.Equal(t, "70.000001", dec.Sum(values).String())
	assert.True(t, dec.Sum(nil).IsZero())
}
