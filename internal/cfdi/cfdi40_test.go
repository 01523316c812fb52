package cfdi_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/cfdi-processor/internal/cfdi"
)

// comprobante40 builds a normalized minimal 4.0 invoice; tweak mutates it
// before parsing.
func comprobante40(tweak func(cfdi.Node)) cfdi.Node {
	comprobante := cfdi.Node{
		"version":             "4.0",
		"fecha":               "2022-03-01T10:00:00",
		"sello":               "sello=",
		"no_certificado":      "30001000000400002495",
		"certificado":         "cert=",
		"sub_total":           "100.00",
		"moneda":              "MXN",
		"total":               "116.00",
		"tipo_de_comprobante": "I",
		"exportacion":         "01",
		"metodo_pago":         "PUE",
		"lugar_expedicion":    "64000",
		"emisor": cfdi.Node{
			"rfc":            "AAA010101AAA",
			"nombre":         "Emisor de Prueba",
			"regimen_fiscal": "601",
		},
		"receptor": cfdi.Node{
			"rfc":                       "BBB010101BB1",
			"nombre":                    "Receptor de Prueba",
			"domicilio_fiscal_receptor": "64000",
			"regimen_fiscal_receptor":   "616",
			"uso_cfdi":                  "G03",
		},
		"conceptos": cfdi.Node{
			"concepto": cfdi.Node{
				"clave_prod_serv": "01010101",
				"cantidad":        "1",
				"clave_unidad":    "H87",
				"descripcion":     "Producto de prueba",
				"valor_unitario":  "100.00",
				"importe":         "100.00",
				"objeto_imp":      "02",
				"impuestos": cfdi.Node{
					"traslados": cfdi.Node{
						"traslado": cfdi.Node{
							"base":         "100.00",
							"impuesto":     "002",
							"tipo_factor":  "Tasa",
							"tasa_o_cuota": "0.160000",
							"importe":      "16.00",
						},
					},
				},
			},
		},
		"impuestos": cfdi.Node{
			"traslados": cfdi.Node{
				"traslado": cfdi.Node{
					"base":         "100.00",
					"impuesto":     "002",
					"tipo_factor":  "Tasa",
					"tasa_o_cuota": "0.160000",
					"importe":      "16.00",
				},
			},
			"total_impuestos_trasladados": "16.00",
		},
	}
	if tweak != nil {
		tweak(comprobante)
	}
	return cfdi.Node{"comprobante": comprobante}
}

func TestParse_CFDI40_Minimal(t *testing.T) {
	doc, err := cfdi.Parse(comprobante40(nil))
	require.NoError(t, err)

	invoice, ok := doc.(*cfdi.CFDI40)
	require.True(t, ok)

	assert.Equal(t, "4.0", invoice.Version)
	assert.Equal(t, cfdi.Exportacion("01"), invoice.Exportacion)
	assert.Equal(t, "Emisor de Prueba", invoice.Emisor.Nombre)
	assert.Equal(t, "64000", invoice.Receptor.DomicilioFiscalReceptor)
	assert.Equal(t, cfdi.RegimenFiscal("616"), invoice.Receptor.RegimenFiscalReceptor)

	require.Len(t, invoice.Conceptos, 1)
	assert.Equal(t, cfdi.ObjetoImp("02"), invoice.Conceptos[0].ObjetoImp)

	require.NotNil(t, invoice.Impuestos)
	require.Len(t, invoice.Impuestos.Traslados, 1)
	assert.Equal(t, "100", invoice.Impuestos.Traslados[0].Base.String())
}

func TestParse_CFDI40_InformacionGlobal(t *testing.T) {
	doc, err := cfdi.Parse(comprobante40(func(c cfdi.Node) {
		c["informacion_global"] = cfdi.Node{
			"periodicidad": "04",
			"meses":        "03",
			"año":          "2022",
		}
	}))
	require.NoError(t, err)

	global := doc.(*cfdi.CFDI40).InformacionGlobal
	require.Len(t, global, 1)
	assert.Equal(t, cfdi.Periodicidad("04"), global[0].Periodicidad)
	assert.Equal(t, 2022, global[0].Año)
}

func TestParse_CFDI40_InformacionGlobalRejectsEarlyYear(t *testing.T) {
	_, err := cfdi.Parse(comprobante40(func(c cfdi.Node) {
		c["informacion_global"] = cfdi.Node{
			"periodicidad": "04",
			"meses":        "03",
			"año":          "2020",
		}
	}))

	var invErr *cfdi.InvalidCFDIError
	require.ErrorAs(t, err, &invErr)
}

func TestParse_CFDI40_ACuentaTerceros(t *testing.T) {
	doc, err := cfdi.Parse(comprobante40(func(c cfdi.Node) {
		concepto := c["conceptos"].(cfdi.Node)["concepto"].(cfdi.Node)
		concepto["a_cuenta_terceros"] = cfdi.Node{
			"rfc_a_cuenta_terceros":              "CCC010101CC1",
			"nombre_a_cuenta_terceros":           "Tercero",
			"regimen_fiscal_a_cuenta_terceros":   "601",
			"domicilio_fiscal_a_cuenta_terceros": "06600",
		}
	}))
	require.NoError(t, err)

	terceros := doc.(*cfdi.CFDI40).Conceptos[0].ACuentaTerceros
	require.Len(t, terceros, 1)
	assert.Equal(t, cfdi.RFC("CCC010101CC1"), terceros[0].RfcACuentaTerceros)
}

func TestParse_CFDI40_Failures(t *testing.T) {
	tests := []struct {
		name  string
		tweak func(cfdi.Node)
	}{
		{name: "missing exportacion", tweak: func(c cfdi.Node) { delete(c, "exportacion") }},
		{name: "missing receptor nombre", tweak: func(c cfdi.Node) { delete(c["receptor"].(cfdi.Node), "nombre") }},
		{name: "bad postal code", tweak: func(c cfdi.Node) {
			c["receptor"].(cfdi.Node)["domicilio_fiscal_receptor"] = "640"
		}},
		{name: "missing objeto imp", tweak: func(c cfdi.Node) {
			delete(c["conceptos"].(cfdi.Node)["concepto"].(cfdi.Node), "objeto_imp")
		}},
		{name: "short certificate serial", tweak: func(c cfdi.Node) { c["no_certificado"] = "12345" }},
		{name: "non-digit certificate serial", tweak: func(c cfdi.Node) { c["no_certificado"] = "3000100000040000249X" }},
		{name: "pipe in nombre", tweak: func(c cfdi.Node) { c["emisor"].(cfdi.Node)["nombre"] = "a|b" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := cfdi.Parse(comprobante40(tt.tweak))

			var invErr *cfdi.InvalidCFDIError
			require.ErrorAs(t, err, &invErr)
		})
	}
}

func TestParse_CFDI40_WithFiscalStamp(t *testing.T) {
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

	complementos := doc.Complementos()
	require.Len(t, complementos, 1)

	tfd, err := cfdi.ComplementoOfType[*cfdi.TimbreFiscalDigital](complementos)
	require.NoError(t, err)
	assert.Equal(t, "ad662d33-6934-459c-a128-bdf0393e0f44", tfd.UUID.String())
}
