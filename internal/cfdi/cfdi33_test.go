package cfdi_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/cfdi-processor/internal/cfdi"
)

// comprobante33 builds a normalized minimal 3.3 invoice; tweak mutates it
// before parsing.
func comprobante33(tweak func(cfdi.Node)) cfdi.Node {
	comprobante := cfdi.Node{
		"version":             "3.3",
		"fecha":               "2021-09-30T16:23:15",
		"sello":               "sello=",
		"forma_pago":          "03",
		"no_certificado":      "30001000000300023708",
		"certificado":         "cert=",
		"sub_total":           "5222.00",
		"moneda":              "MXN",
		"total":               "6057.52",
		"tipo_de_comprobante": "I",
		"metodo_pago":         "PUE",
		"lugar_expedicion":    "45010",
		"emisor": cfdi.Node{
			"rfc":            "AAA010101AAA",
			"nombre":         "Proveedor de Prueba",
			"regimen_fiscal": "601",
		},
		"receptor": cfdi.Node{
			"rfc":      "BBB010101BB1",
			"uso_cfdi": "G03",
		},
		"conceptos": cfdi.Node{
			"concepto": cfdi.Node{
				"clave_prod_serv": "81112101",
				"cantidad":        "1",
				"clave_unidad":    "E48",
				"descripcion":     "Servicio de hosting",
				"valor_unitario":  "5222.00",
				"importe":         "5222.00",
				"impuestos": cfdi.Node{
					"traslados": cfdi.Node{
						"traslado": cfdi.Node{
							"base":         "5222.00",
							"impuesto":     "002",
							"tipo_factor":  "Tasa",
							"tasa_o_cuota": "0.160000",
							"importe":      "835.52",
						},
					},
				},
			},
		},
		"impuestos": cfdi.Node{
			"traslados": cfdi.Node{
				"traslado": cfdi.Node{
					"impuesto":     "002",
					"tipo_factor":  "Tasa",
					"tasa_o_cuota": "0.160000",
					"importe":      "835.52",
				},
			},
			"total_impuestos_trasladados": "835.52",
		},
	}
	if tweak != nil {
		tweak(comprobante)
	}
	return cfdi.Node{"comprobante": comprobante}
}

func TestParse_CFDI33_Minimal(t *testing.T) {
	doc, err := cfdi.Parse(comprobante33(nil))
	require.NoError(t, err)

	invoice, ok := doc.(*cfdi.CFDI33)
	require.True(t, ok)

	assert.Equal(t, "3.3", invoice.Version)
	assert.Equal(t, cfdi.RFC("AAA010101AAA"), invoice.Emisor.RFC)
	assert.Equal(t, cfdi.RFC("BBB010101BB1"), invoice.Receptor.RFC)
	assert.Equal(t, cfdi.UsoCFDI("G03"), invoice.Receptor.UsoCFDI)
	assert.Equal(t, cfdi.MonedaMXN, invoice.Moneda)
	assert.Equal(t, cfdi.ComprobanteIngreso, invoice.TipoDeComprobante)
	assert.Equal(t, "6057.52", invoice.Total.String())
	assert.True(t, invoice.Descuento.IsZero())
	require.NotNil(t, invoice.MetodoPago)
	assert.Equal(t, cfdi.MetodoPagoPUE, *invoice.MetodoPago)

	require.Len(t, invoice.Conceptos, 1)
	concepto := invoice.Conceptos[0]
	assert.Equal(t, "81112101", concepto.ClaveProdServ)
	require.NotNil(t, concepto.Impuestos)
	require.Len(t, concepto.Impuestos.Traslados, 1)
	assert.Equal(t, cfdi.ImpuestoIVA, concepto.Impuestos.Traslados[0].Impuesto)

	require.NotNil(t, invoice.Impuestos)
	assert.Equal(t, "835.52", invoice.Impuestos.TotalImpuestosTrasladados.String())
}

func TestParse_CFDI33_SingleConceptoIsWrapped(t *testing.T) {
	doc, err := cfdi.Parse(comprobante33(nil))
	require.NoError(t, err)
	assert.Len(t, doc.(*cfdi.CFDI33).Conceptos, 1)

	doc, err = cfdi.Parse(comprobante33(func(c cfdi.Node) {
		concepto := c["conceptos"].(cfdi.Node)["concepto"]
		c["conceptos"] = cfdi.Node{"concepto": []interface{}{concepto, concepto}}
	}))
	require.NoError(t, err)
	assert.Len(t, doc.(*cfdi.CFDI33).Conceptos, 2)
}

func TestParse_CFDI33_WithRelatedInvoices(t *testing.T) {
	doc, err := cfdi.Parse(comprobante33(func(c cfdi.Node) {
		c["cfdi_relacionados"] = cfdi.Node{
			"tipo_relacion": "04",
			"cfdi_relacionado": cfdi.Node{
				"uuid": "ad662d33-6934-459c-a128-bdf0393e0f44",
			},
		}
	}))
	require.NoError(t, err)

	rel := doc.(*cfdi.CFDI33).CfdiRelacionados
	require.NotNil(t, rel)
	assert.Equal(t, cfdi.RelacionSustitucion, rel.TipoRelacion)
	require.Len(t, rel.CfdiRelacionado, 1)
}

func TestParse_CFDI33_Failures(t *testing.T) {
	tests := []struct {
		name  string
		tweak func(cfdi.Node)
	}{
		{name: "missing fecha", tweak: func(c cfdi.Node) { delete(c, "fecha") }},
		{name: "bad rfc", tweak: func(c cfdi.Node) { c["emisor"].(cfdi.Node)["rfc"] = "NOPE" }},
		{name: "negative total", tweak: func(c cfdi.Node) { c["total"] = "-1.00" }},
		{name: "too many decimal places", tweak: func(c cfdi.Node) { c["total"] = "1.1234567" }},
		{name: "unknown currency", tweak: func(c cfdi.Node) { c["moneda"] = "PESOS" }},
		{name: "unknown uso cfdi", tweak: func(c cfdi.Node) { c["receptor"].(cfdi.Node)["uso_cfdi"] = "Z99" }},
		{name: "missing conceptos", tweak: func(c cfdi.Node) { delete(c, "conceptos") }},
		{name: "missing emisor", tweak: func(c cfdi.Node) { delete(c, "emisor") }},
		{name: "zero cantidad", tweak: func(c cfdi.Node) {
			c["conceptos"].(cfdi.Node)["concepto"].(cfdi.Node)["cantidad"] = "0"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := cfdi.Parse(comprobante33(tt.tweak))

			var invErr *cfdi.InvalidCFDIError
			require.ErrorAs(t, err, &invErr)
		})
	}
}

func TestParse_CFDI33_ErrorCarriesFieldPath(t *testing.T) {
	_, err := cfdi.Parse(comprobante33(func(c cfdi.Node) { c["total"] = "-1.00" }))

	var invErr *cfdi.InvalidCFDIError
	require.ErrorAs(t, err, &invErr)
	assert.Equal(t, "comprobante.total", invErr.Path)

	var vErr *cfdi.ValidationError
	require.ErrorAs(t, err, &vErr)
}
