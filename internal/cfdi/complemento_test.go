package cfdi

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tfdNode() Node {
	return Node{
		"version":            "1.1",
		"uuid":               "ad662d33-6934-459c-a128-bdf0393e0f44",
		"fecha_timbrado":     "2021-09-30T16:23:15",
		"rfc_prov_certif":    "SAT970701NN3",
		"sello_cfd":          "abc=",
		"no_certificado_sat": "30001000000400002495",
		"sello_sat":          "def=",
	}
}

func TestParseComplementos_FiscalStamp(t *testing.T) {
	got, err := parseComplementos("comprobante.complemento", Node{
		"timbre_fiscal_digital": tfdNode(),
	})

	require.NoError(t, err)
	require.Len(t, got, 1)

	tfd, ok := got[0].(*TimbreFiscalDigital)
	require.True(t, ok)
	assert.Equal(t, uuid.MustParse("ad662d33-6934-459c-a128-bdf0393e0f44"), tfd.UUID)
	assert.Equal(t, "SAT970701NN3", tfd.RfcProvCertif)
	assert.Equal(t, 2021, tfd.FechaTimbrado.Year())
}

func TestParseComplementos_Aerolineas(t *testing.T) {
	got, err := parseComplementos("comprobante.complemento", Node{
		"aerolineas": Node{
			"version": "1.0",
			"tua":     "25.00",
			"importe": "100.00",
			"otros_cargos": Node{
				"total_cargos": "75.00",
				"cargo": []interface{}{
					Node{"codigo_cargo": "YR", "importe": "50.00"},
					Node{"codigo_cargo": "XO", "importe": "25.00"},
				},
			},
		},
	})

	require.NoError(t, err)
	require.Len(t, got, 1)

	aer, ok := got[0].(*Aerolineas)
	require.True(t, ok)
	assert.Equal(t, "25", aer.TUA.String())
	require.NotNil(t, aer.OtrosCargos)
	require.Len(t, aer.OtrosCargos.Cargos, 2)
	assert.Equal(t, "YR", aer.OtrosCargos.Cargos[0].CodigoCargo)
}

func TestParseComplementos_UnknownFallsBackToOpaque(t *testing.T) {
	pagos := Node{"version": "2.0", "totales": Node{"monto_total_pagos": "580.00"}}

	got, err := parseComplementos("comprobante.complemento", Node{"pagos": pagos})

	require.NoError(t, err)
	require.Len(t, got, 1)

	opaque, ok := got[0].(*OpaqueComplemento)
	require.True(t, ok)
	assert.Equal(t, pagos, opaque.Raw)
}

func TestParseComplementos_MultipleEntries(t *testing.T) {
	got, err := parseComplementos("comprobante.complemento", Node{
		"pagos":                 Node{"version": "2.0"},
		"timbre_fiscal_digital": tfdNode(),
	})

	require.NoError(t, err)
	require.Len(t, got, 2)

	// one stamp, one opaque, regardless of grouping order
	var stamps, opaques int
	for _, c := range got {
		switch c.(type) {
		case *TimbreFiscalDigital:
			stamps++
		case *OpaqueComplemento:
			opaques++
		}
	}
	assert.Equal(t, 1, stamps)
	assert.Equal(t, 1, opaques)
}

func TestParseComplementos_MalformedStampIsOpaque(t *testing.T) {
	bad := tfdNode()
	bad["uuid"] = "not-a-uuid"

	got, err := parseComplementos("comprobante.complemento", Node{"timbre_fiscal_digital": bad})

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.IsType(t, &OpaqueComplemento{}, got[0])
}

func TestParseComplementos_NilYieldsNone(t *testing.T) {
	got, err := parseComplementos("comprobante.complemento", nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParseCertificadoDeDestruccion(t *testing.T) {
	node := Node{
		"version":         "1.0",
		"serie":           "A",
		"num_fol_des_veh": "12345",
		"vehiculo_destruido": Node{
			"marca":            "Ford",
			"tipoo_clase":      "Sedan",
			"año":              "2001",
			"num_placas":       "ABC123",
			"num_fol_tarj_cir": "XYZ",
		},
	}

	cert, err := parseCertificadoDeDestruccion(node, "comprobante.complemento")

	require.NoError(t, err)
	assert.Equal(t, 2001, cert.VehiculoDestruido.Año)
	assert.Nil(t, cert.InformacionAduanera)
}
