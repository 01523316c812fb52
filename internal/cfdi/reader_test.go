package cfdi_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/cfdi-processor/internal/cfdi"
)

func TestParse_MissingComprobante(t *testing.T) {
	_, err := cfdi.Parse(cfdi.Node{"factura": cfdi.Node{}})

	var invErr *cfdi.InvalidCFDIError
	require.ErrorAs(t, err, &invErr)
	assert.Equal(t, "comprobante", invErr.Path)
}

func TestParse_MissingVersion(t *testing.T) {
	_, err := cfdi.Parse(cfdi.Node{"comprobante": cfdi.Node{"total": "1.00"}})

	var invErr *cfdi.InvalidCFDIError
	require.ErrorAs(t, err, &invErr)
	assert.Equal(t, "comprobante.version", invErr.Path)
}

func TestParse_UnsupportedVersion(t *testing.T) {
	_, err := cfdi.Parse(cfdi.Node{"comprobante": cfdi.Node{"version": "9.9"}})

	var unsupported *cfdi.UnsupportedCFDIError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "9.9", unsupported.Version)
	assert.Equal(t, []string{"3.3", "4.0"}, unsupported.Supported)
}

func TestParse_LegacyVersionIsUnsupported(t *testing.T) {
	_, err := cfdi.Parse(cfdi.Node{"comprobante": cfdi.Node{"version": "3.2"}})

	var unsupported *cfdi.UnsupportedCFDIError
	require.ErrorAs(t, err, &unsupported)
}

func TestKeyOf_StampedDocument(t *testing.T) {
	doc, err := cfdi.Parse(comprobante40(func(c cfdi.Node) {
		c["complemento"] = cfdi.Node{
			"timbre_fiscal_digital": cfdi.Node{
				"version":            "1.1",
				"uuid":               "ad662d33-6934-459c-a128-bdf0393e0f44",
				"fecha_timbrado":     "2022-03-01T10:00:05",
				"rfc_prov_certif":    "SAT970701NN3",
				"sello_cfd":          "abc=",
				"no_certificado_sat": "30001000000400002495",
				"sello_sat":          "def=",
			},
		}
	}))
	require.NoError(t, err)

	key, err := cfdi.KeyOf(doc)
	require.NoError(t, err)

	assert.Equal(t, "ad662d33-6934-459c-a128-bdf0393e0f44", key.UUID.String())
	assert.Equal(t, cfdi.RFC("AAA010101AAA"), key.IssuerRFC)
	assert.Equal(t, cfdi.RFC("BBB010101BB1"), key.RecipientRFC)
	assert.Equal(t, "116", key.Total.String())
}

func TestKeyOf_UnstampedDocument(t *testing.T) {
	doc, err := cfdi.Parse(comprobante33(nil))
	require.NoError(t, err)

	_, err = cfdi.KeyOf(doc)

	var invErr *cfdi.InvalidCFDIError
	require.ErrorAs(t, err, &invErr)

	var notFound *cfdi.ComplementoNotFoundError
	assert.ErrorAs(t, err, &notFound)
}
