package cfdi

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	dec "github.com/rezonia/cfdi-processor/internal/decimal"
)

// decoder extracts typed field values from a normalized node, tracking the
// field path for error context. The first failure wins: once err is set every
// getter becomes a no-op, so a schema parser can read all its fields and
// check d.err once.
type decoder struct {
	node Node
	path string
	err  error
}

func newDecoder(node Node, path string) *decoder {
	return &decoder{node: node, path: path}
}

func (d *decoder) fieldPath(key string) string {
	if d.path == "" {
		return key
	}
	return d.path + "." + key
}

func (d *decoder) fail(key string, value interface{}, rule, message string) {
	if d.err == nil {
		d.err = NewValidationError(d.fieldPath(key), value, rule, message)
	}
}

// setErr records an error produced outside the decoder (nested parses, shape
// coercion) without overwriting an earlier failure.
func (d *decoder) setErr(err error) {
	if d.err == nil && err != nil {
		d.err = err
	}
}

func (d *decoder) raw(key string) (interface{}, bool) {
	v, ok := d.node[key]
	return v, ok
}

// scalar reads a leaf value as text. Normalized trees hold leaves as strings
// or exact decimals.
func (d *decoder) scalar(key string) (string, bool) {
	v, ok := d.node[key]
	if !ok || v == nil {
		return "", false
	}
	switch s := v.(type) {
	case string:
		return s, true
	case decimal.Decimal:
		return s.String(), true
	default:
		d.fail(key, v, "scalar", fmt.Sprintf("expected a scalar, got %T", v))
		return "", false
	}
}

func (d *decoder) requireScalar(key string) (string, bool) {
	s, ok := d.scalar(key)
	if !ok {
		d.fail(key, nil, "required", "missing required field")
	}
	return s, ok && d.err == nil
}

// literal checks a field against an exact expected value, e.g. the version
// discriminant.
func (d *decoder) literal(key, expected string) {
	s, ok := d.requireScalar(key)
	if !ok {
		return
	}
	if s != expected {
		d.fail(key, s, "literal", fmt.Sprintf("must be exactly %q", expected))
	}
}

func (d *decoder) requiredString(key string) string {
	s, _ := d.requireScalar(key)
	return s
}

func (d *decoder) optionalString(key string) *string {
	s, ok := d.scalar(key)
	if !ok || d.err != nil {
		return nil
	}
	return &s
}

func (d *decoder) checkBounded(key, s string, min, max int) bool {
	n := len([]rune(s))
	if n < min || n > max {
		d.fail(key, s, "length", fmt.Sprintf("must be between %d and %d characters", min, max))
		return false
	}
	if strings.ContainsRune(s, '|') {
		d.fail(key, s, "pattern", "must not contain the '|' character")
		return false
	}
	return true
}

func (d *decoder) boundedString(key string, min, max int) string {
	s, ok := d.requireScalar(key)
	if !ok {
		return ""
	}
	d.checkBounded(key, s, min, max)
	return s
}

func (d *decoder) optionalBoundedString(key string, min, max int) *string {
	s, ok := d.scalar(key)
	if !ok || d.err != nil {
		return nil
	}
	if !d.checkBounded(key, s, min, max) {
		return nil
	}
	return &s
}

// digitString validates an all-digit field of bounded length, e.g. a postal
// code or a certificate serial.
func (d *decoder) digitString(key string, min, max int) string {
	s, ok := d.requireScalar(key)
	if !ok {
		return ""
	}
	if n := len(s); n < min || n > max || !digitsPattern.MatchString(s) {
		d.fail(key, s, "digits", fmt.Sprintf("must be %d to %d ASCII digits", min, max))
	}
	return s
}

func (d *decoder) optionalDigitString(key string, min, max int) *string {
	s, ok := d.scalar(key)
	if !ok || d.err != nil {
		return nil
	}
	if n := len(s); n < min || n > max || !digitsPattern.MatchString(s) {
		d.fail(key, s, "digits", fmt.Sprintf("must be %d to %d ASCII digits", min, max))
		return nil
	}
	return &s
}

func (d *decoder) rfc(key string) RFC {
	s, ok := d.requireScalar(key)
	if !ok {
		return ""
	}
	if !rfcPattern.MatchString(s) {
		d.fail(key, s, "rfc", "does not match the RFC pattern")
	}
	return RFC(s)
}

func (d *decoder) optionalCURP(key string) *CURP {
	s, ok := d.scalar(key)
	if !ok || d.err != nil {
		return nil
	}
	if !curpPattern.MatchString(s) {
		d.fail(key, s, "curp", "does not match the CURP pattern")
		return nil
	}
	c := CURP(s)
	return &c
}

func (d *decoder) pattern(key string, re *regexp.Regexp, rule, message string) string {
	s, ok := d.requireScalar(key)
	if !ok {
		return ""
	}
	if !re.MatchString(s) {
		d.fail(key, s, rule, message)
	}
	return s
}

func (d *decoder) optionalPattern(key string, re *regexp.Regexp, rule, message string) *string {
	s, ok := d.scalar(key)
	if !ok || d.err != nil {
		return nil
	}
	if !re.MatchString(s) {
		d.fail(key, s, rule, message)
		return nil
	}
	return &s
}

// decimalValue parses exact decimal text and applies check, which reports
// (rule, ok). The text never passes through a binary float.
func (d *decoder) decimalValue(key, s string, check func(decimal.Decimal) (string, bool)) (decimal.Decimal, bool) {
	v, err := dec.FromString(s)
	if err != nil {
		d.fail(key, s, "decimal", "is not a valid decimal number")
		return dec.Zero, false
	}
	if check != nil {
		if rule, ok := check(v); !ok {
			d.fail(key, s, rule, "is out of range for "+rule)
			return dec.Zero, false
		}
	}
	return v, true
}

func checkNonNegativeSix(v decimal.Decimal) (string, bool) {
	return "non-negative six decimals", dec.IsNonNegative(v) && dec.WithinScale(v)
}

func checkPositiveSix(v decimal.Decimal) (string, bool) {
	return "positive six decimals", dec.IsPositive(v) && dec.WithinScale(v)
}

func checkNonNegative(v decimal.Decimal) (string, bool) {
	return "non-negative", dec.IsNonNegative(v)
}

// nonNegativeDecimal reads a required NonNegativeSixDecimals field.
func (d *decoder) nonNegativeDecimal(key string) decimal.Decimal {
	s, ok := d.requireScalar(key)
	if !ok {
		return dec.Zero
	}
	v, _ := d.decimalValue(key, s, checkNonNegativeSix)
	return v
}

// nonNegativeDecimalDefault reads an optional NonNegativeSixDecimals field
// defaulting to zero.
func (d *decoder) nonNegativeDecimalDefault(key string) decimal.Decimal {
	s, ok := d.scalar(key)
	if !ok || d.err != nil {
		return dec.Zero
	}
	v, _ := d.decimalValue(key, s, checkNonNegativeSix)
	return v
}

func (d *decoder) optionalNonNegativeDecimal(key string) *decimal.Decimal {
	s, ok := d.scalar(key)
	if !ok || d.err != nil {
		return nil
	}
	v, valid := d.decimalValue(key, s, checkNonNegativeSix)
	if !valid {
		return nil
	}
	return &v
}

// positiveDecimal reads a required PositiveSixDecimals field (>= 0.000001).
func (d *decoder) positiveDecimal(key string) decimal.Decimal {
	s, ok := d.requireScalar(key)
	if !ok {
		return dec.Zero
	}
	v, _ := d.decimalValue(key, s, checkPositiveSix)
	return v
}

func (d *decoder) optionalPositiveDecimal(key string) *decimal.Decimal {
	s, ok := d.scalar(key)
	if !ok || d.err != nil {
		return nil
	}
	v, valid := d.decimalValue(key, s, checkPositiveSix)
	if !valid {
		return nil
	}
	return &v
}

// anyDecimal reads a required decimal with no range or scale constraint
// (valor_unitario is a bare number in the xsd).
func (d *decoder) anyDecimal(key string) decimal.Decimal {
	s, ok := d.requireScalar(key)
	if !ok {
		return dec.Zero
	}
	v, _ := d.decimalValue(key, s, nil)
	return v
}

func (d *decoder) optionalNonNegativeUnscaled(key string) *decimal.Decimal {
	s, ok := d.scalar(key)
	if !ok || d.err != nil {
		return nil
	}
	v, valid := d.decimalValue(key, s, checkNonNegative)
	if !valid {
		return nil
	}
	return &v
}

func (d *decoder) optionalAnyDecimal(key string) *decimal.Decimal {
	s, ok := d.scalar(key)
	if !ok || d.err != nil {
		return nil
	}
	v, valid := d.decimalValue(key, s, nil)
	if !valid {
		return nil
	}
	return &v
}

func (d *decoder) requiredTime(key string) time.Time {
	s, ok := d.requireScalar(key)
	if !ok {
		return time.Time{}
	}
	t, err := parseFecha(s)
	if err != nil {
		d.fail(key, s, "datetime", "must be in AAAA-MM-DDThh:mm:ss form")
	}
	return t
}

func (d *decoder) requiredUUID(key string) uuid.UUID {
	s, ok := d.requireScalar(key)
	if !ok {
		return uuid.UUID{}
	}
	id, err := uuid.Parse(s)
	if err != nil {
		d.fail(key, s, "uuid", "is not a valid RFC 4122 UUID")
	}
	return id
}

func (d *decoder) requiredInt(key string) int {
	s, ok := d.requireScalar(key)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		d.fail(key, s, "integer", "is not a valid integer")
	}
	return n
}

func (d *decoder) intAtLeast(key, rule string, min int) int {
	n := d.requiredInt(key)
	if d.err == nil && n < min {
		d.fail(key, n, rule, fmt.Sprintf("must be at least %d", min))
	}
	return n
}

func (d *decoder) optionalInt(key string) *int {
	s, ok := d.scalar(key)
	if !ok || d.err != nil {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		d.fail(key, s, "integer", "is not a valid integer")
		return nil
	}
	return &n
}

// childNode reads an optional nested mapping; a present non-mapping value is
// a failure.
func (d *decoder) childNode(key string) (Node, bool) {
	v, ok := d.node[key]
	if !ok || v == nil {
		return nil, false
	}
	child, isNode := v.(Node)
	if !isNode {
		d.fail(key, v, "mapping", fmt.Sprintf("expected a mapping, got %T", v))
		return nil, false
	}
	return child, true
}

// listField applies the field's declared shape coercer and hands each element
// back as a node for bottom-up construction.
func (d *decoder) listField(key string, coerce func(string, interface{}) ([]interface{}, error)) []Node {
	v, ok := d.node[key]
	if !ok || d.err != nil {
		return nil
	}
	items, err := coerce(d.fieldPath(key), v)
	if err != nil {
		d.setErr(err)
		return nil
	}
	nodes := make([]Node, 0, len(items))
	for i, item := range items {
		node, isNode := item.(Node)
		if !isNode {
			d.fail(key, item, "mapping", fmt.Sprintf("element %d: expected a mapping, got %T", i, item))
			return nil
		}
		nodes = append(nodes, node)
	}
	return nodes
}

// enumField reads a required catalog-constrained field. Unknown codes are a
// hard failure so that new SAT codes require a code update, not silent
// acceptance.
func enumField[T ~string](d *decoder, key string, cat *catalogDef[T]) T {
	s, ok := d.requireScalar(key)
	if !ok {
		return ""
	}
	v, err := cat.parse(s)
	if err != nil {
		d.fail(key, s, cat.name, fmt.Sprintf("is not a valid %s code", cat.name))
	}
	return v
}

func optionalEnum[T ~string](d *decoder, key string, cat *catalogDef[T]) *T {
	s, ok := d.scalar(key)
	if !ok || d.err != nil {
		return nil
	}
	v, err := cat.parse(s)
	if err != nil {
		d.fail(key, s, cat.name, fmt.Sprintf("is not a valid %s code", cat.name))
		return nil
	}
	return &v
}
