package cfdi

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CFDI v4.0 record types, per cfdv40.xsd. Structurally close to 3.3 but with
// stricter issuer/recipient requirements, the exportacion flag, third-party
// accounts on line items, and the global-invoice information node.

// Emisor40 is the invoice issuer.
type Emisor40 struct {
	RFC              RFC           `json:"rfc"`
	Nombre           string        `json:"nombre"`
	RegimenFiscal    RegimenFiscal `json:"regimen_fiscal"`
	FacAtrAdquirente *string       `json:"fac_atr_adquirente,omitempty"`
}

// Receptor40 is the invoice recipient.
type Receptor40 struct {
	RFC                     RFC           `json:"rfc"`
	Nombre                  string        `json:"nombre"`
	DomicilioFiscalReceptor string        `json:"domicilio_fiscal_receptor"`
	ResidenciaFiscal        *Pais         `json:"residencia_fiscal,omitempty"`
	NumRegIdTrib            *string       `json:"num_reg_id_trib,omitempty"`
	RegimenFiscalReceptor   RegimenFiscal `json:"regimen_fiscal_receptor"`
	UsoCFDI                 UsoCFDI       `json:"uso_cfdi"`
}

// Traslado40 is a transferred tax applied to one line item.
type Traslado40 struct {
	Base       decimal.Decimal  `json:"base"`
	Impuesto   Impuesto         `json:"impuesto"`
	TipoFactor TipoFactor       `json:"tipo_factor"`
	TasaOCuota *decimal.Decimal `json:"tasa_o_cuota,omitempty"`
	Importe    *decimal.Decimal `json:"importe,omitempty"`
}

// Retencion40 is a withheld tax applied to one line item.
type Retencion40 struct {
	Base       decimal.Decimal `json:"base"`
	Impuesto   Impuesto        `json:"impuesto"`
	TipoFactor TipoFactor      `json:"tipo_factor"`
	TasaOCuota decimal.Decimal `json:"tasa_o_cuota"`
	Importe    decimal.Decimal `json:"importe"`
}

// ImpuestosConcepto40 groups the taxes applicable to one line item.
type ImpuestosConcepto40 struct {
	Traslados   []Traslado40  `json:"traslados,omitempty"`
	Retenciones []Retencion40 `json:"retenciones,omitempty"`
}

// InformacionAduanera40 holds the customs request covering an imported good.
type InformacionAduanera40 struct {
	NumeroPedimento string `json:"numero_pedimento"`
}

// CuentaPredial40 is a cadastral account reference.
type CuentaPredial40 struct {
	Numero string `json:"numero"`
}

// Parte40 is a component of a line item.
type Parte40 struct {
	InformacionAduanera []InformacionAduanera40 `json:"informacion_aduanera,omitempty"`
	ClaveProdServ       string                  `json:"clave_prod_serv"`
	NoIdentificacion    *string                 `json:"no_identificacion,omitempty"`
	Cantidad            decimal.Decimal         `json:"cantidad"`
	Unidad              *string                 `json:"unidad,omitempty"`
	Descripcion         string                  `json:"descripcion"`
	ValorUnitario       *decimal.Decimal        `json:"valor_unitario,omitempty"`
	Importe             *decimal.Decimal        `json:"importe,omitempty"`
}

// ACuentaTerceros names the third party on whose behalf a line item is billed.
type ACuentaTerceros struct {
	RfcACuentaTerceros             RFC           `json:"rfc_a_cuenta_terceros"`
	NombreACuentaTerceros          string        `json:"nombre_a_cuenta_terceros"`
	RegimenFiscalACuentaTerceros   RegimenFiscal `json:"regimen_fiscal_a_cuenta_terceros"`
	DomicilioFiscalACuentaTerceros string        `json:"domicilio_fiscal_a_cuenta_terceros"`
}

// Concepto40 is one billed line item.
type Concepto40 struct {
	Impuestos           *ImpuestosConcepto40    `json:"impuestos,omitempty"`
	InformacionAduanera []InformacionAduanera40 `json:"informacion_aduanera,omitempty"`
	CuentaPredial       []CuentaPredial40       `json:"cuenta_predial,omitempty"`
	ComplementoConcepto []Node                  `json:"complemento_concepto,omitempty"`
	Parte               []Parte40               `json:"parte,omitempty"`
	ClaveProdServ       string                  `json:"clave_prod_serv"`
	NoIdentificacion    *string                 `json:"no_identificacion,omitempty"`
	Cantidad            decimal.Decimal         `json:"cantidad"`
	ClaveUnidad         string                  `json:"clave_unidad"`
	Unidad              *string                 `json:"unidad,omitempty"`
	Descripcion         string                  `json:"descripcion"`
	ValorUnitario       decimal.Decimal         `json:"valor_unitario"`
	Importe             decimal.Decimal         `json:"importe"`
	Descuento           decimal.Decimal         `json:"descuento"`
	ObjetoImp           ObjetoImp               `json:"objeto_imp"`
	ACuentaTerceros     []ACuentaTerceros       `json:"a_cuenta_terceros,omitempty"`
}

// RetencionCFDI40 is one invoice-level withheld tax aggregate.
type RetencionCFDI40 struct {
	Impuesto Impuesto        `json:"impuesto"`
	Importe  decimal.Decimal `json:"importe"`
}

// TrasladoCFDI40 is one invoice-level transferred tax aggregate. Unlike 3.3,
// the base is carried and tasa_o_cuota and importe default to zero when the
// aggregate covers only exempt lines.
type TrasladoCFDI40 struct {
	Impuesto   Impuesto        `json:"impuesto"`
	TipoFactor TipoFactor      `json:"tipo_factor"`
	Base       decimal.Decimal `json:"base"`
	TasaOCuota decimal.Decimal `json:"tasa_o_cuota"`
	Importe    decimal.Decimal `json:"importe"`
}

// ImpuestosCFDI40 is the invoice-level tax summary.
type ImpuestosCFDI40 struct {
	Retenciones               []RetencionCFDI40 `json:"retenciones,omitempty"`
	Traslados                 []TrasladoCFDI40  `json:"traslados,omitempty"`
	TotalImpuestosRetenidos   decimal.Decimal   `json:"total_impuestos_retenidos"`
	TotalImpuestosTrasladados decimal.Decimal   `json:"total_impuestos_trasladados"`
}

// CfdiRelacionado40 references a prior CFDI by fiscal folio.
type CfdiRelacionado40 struct {
	UUID uuid.UUID `json:"uuid"`
}

// CfdiRelacionados40 groups the related-invoice references.
type CfdiRelacionados40 struct {
	TipoRelacion    TipoRelacion        `json:"tipo_relacion"`
	CfdiRelacionado []CfdiRelacionado40 `json:"cfdi_relacionado"`
}

// InformacionGlobal describes the period covered by a global invoice.
type InformacionGlobal struct {
	Periodicidad Periodicidad `json:"periodicidad"`
	Meses        Meses        `json:"meses"`
	Año          int          `json:"año"`
}

// CFDI40 is a CFDI version 4.0 invoice. Immutable once parsed.
type CFDI40 struct {
	Version           string              `json:"version"`
	Serie             *string             `json:"serie,omitempty"`
	Folio             *string             `json:"folio,omitempty"`
	Fecha             time.Time           `json:"fecha"`
	Sello             string              `json:"sello"`
	FormaPago         *FormaPago          `json:"forma_pago,omitempty"`
	NoCertificado     string              `json:"no_certificado"`
	Certificado       string              `json:"certificado"`
	CondicionesDePago *string             `json:"condiciones_de_pago,omitempty"`
	SubTotal          decimal.Decimal     `json:"sub_total"`
	Descuento         decimal.Decimal     `json:"descuento"`
	Moneda            Moneda              `json:"moneda"`
	TipoCambio        *decimal.Decimal    `json:"tipo_cambio,omitempty"`
	Total             decimal.Decimal     `json:"total"`
	TipoDeComprobante TipoDeComprobante   `json:"tipo_de_comprobante"`
	Exportacion       Exportacion         `json:"exportacion"`
	MetodoPago        *MetodoDePago       `json:"metodo_pago,omitempty"`
	LugarExpedicion   string              `json:"lugar_expedicion"`
	Confirmacion      *string             `json:"confirmacion,omitempty"`
	InformacionGlobal []InformacionGlobal `json:"informacion_global,omitempty"`
	CfdiRelacionados  *CfdiRelacionados40 `json:"cfdi_relacionados,omitempty"`
	Emisor            Emisor40            `json:"emisor"`
	Receptor          Receptor40          `json:"receptor"`
	Conceptos         []Concepto40        `json:"conceptos"`
	Impuestos         *ImpuestosCFDI40    `json:"impuestos,omitempty"`
	Complemento       []Complemento       `json:"complemento,omitempty"`
	Addenda           Node                `json:"addenda,omitempty"`
}

// CFDIVersion returns the version discriminant.
func (c *CFDI40) CFDIVersion() string { return "4.0" }

// IssuerRFC returns the issuing taxpayer's RFC.
func (c *CFDI40) IssuerRFC() RFC { return c.Emisor.RFC }

// RecipientRFC returns the receiving taxpayer's RFC.
func (c *CFDI40) RecipientRFC() RFC { return c.Receptor.RFC }

// TotalAmount returns the invoice total.
func (c *CFDI40) TotalAmount() decimal.Decimal { return c.Total }

// Complementos returns the extension payloads in source order.
func (c *CFDI40) Complementos() []Complemento { return c.Complemento }

// TransferredTaxes implements TaxTotaler over the invoice-level summary.
func (c *CFDI40) TransferredTaxes() []TaxLine {
	if c.Impuestos == nil {
		return nil
	}
	lines := make([]TaxLine, len(c.Impuestos.Traslados))
	for i, t := range c.Impuestos.Traslados {
		lines[i] = TaxLine{Impuesto: t.Impuesto, Importe: t.Importe}
	}
	return lines
}

// WithheldTaxes implements TaxTotaler over the invoice-level summary.
func (c *CFDI40) WithheldTaxes() []TaxLine {
	if c.Impuestos == nil {
		return nil
	}
	lines := make([]TaxLine, len(c.Impuestos.Retenciones))
	for i, r := range c.Impuestos.Retenciones {
		lines[i] = TaxLine{Impuesto: r.Impuesto, Importe: r.Importe}
	}
	return lines
}

// TotalTransferredTax sums importe over impuestos.traslados of the given type.
func (c *CFDI40) TotalTransferredTax(taxType Impuesto) decimal.Decimal {
	return TotalTransferredTax(c, taxType)
}

// TotalWithheldTax sums importe over impuestos.retenciones of the given type.
func (c *CFDI40) TotalWithheldTax(taxType Impuesto) decimal.Decimal {
	return TotalWithheldTax(c, taxType)
}

// parseCFDI40 validates and constructs a version 4.0 invoice from the
// normalized comprobante node.
func parseCFDI40(node Node) (*CFDI40, error) {
	d := newDecoder(node, "comprobante")
	d.literal("version", "4.0")
	if d.err != nil {
		return nil, d.err
	}

	c := &CFDI40{
		Version:           "4.0",
		Serie:             d.optionalBoundedString("serie", 1, 25),
		Folio:             d.optionalBoundedString("folio", 1, 40),
		Fecha:             d.requiredTime("fecha"),
		Sello:             d.requiredString("sello"),
		FormaPago:         optionalEnum(d, "forma_pago", formaPagoCatalog),
		NoCertificado:     d.digitString("no_certificado", 20, 20),
		Certificado:       d.requiredString("certificado"),
		CondicionesDePago: d.optionalBoundedString("condiciones_de_pago", 1, 1000),
		SubTotal:          d.nonNegativeDecimal("sub_total"),
		Descuento:         d.nonNegativeDecimalDefault("descuento"),
		Moneda:            enumField(d, "moneda", monedaCatalog),
		TipoCambio:        d.optionalPositiveDecimal("tipo_cambio"),
		Total:             d.nonNegativeDecimal("total"),
		TipoDeComprobante: enumField(d, "tipo_de_comprobante", tipoDeComprobanteCatalog),
		Exportacion:       enumField(d, "exportacion", exportacionCatalog),
		MetodoPago:        optionalEnum(d, "metodo_pago", metodoDePagoCatalog),
		LugarExpedicion:   d.requiredString("lugar_expedicion"),
		Confirmacion:      d.optionalPattern("confirmacion", confirmacionPattern, "confirmacion", "must be exactly 5 alphanumeric characters"),
	}

	for _, n := range d.listField("informacion_global", dict2list) {
		gd := newDecoder(n, d.fieldPath("informacion_global"))
		c.InformacionGlobal = append(c.InformacionGlobal, InformacionGlobal{
			Periodicidad: enumField(gd, "periodicidad", periodicidadCatalog),
			Meses:        enumField(gd, "meses", mesesCatalog),
			Año:          gd.intAtLeast("año", "min_2021", 2021),
		})
		d.setErr(gd.err)
	}

	if rel, ok := d.childNode("cfdi_relacionados"); ok {
		related, err := parseCfdiRelacionados40(rel, d.fieldPath("cfdi_relacionados"))
		if err != nil {
			d.setErr(err)
		} else {
			c.CfdiRelacionados = related
		}
	}

	if em, ok := d.childNode("emisor"); ok {
		ed := newDecoder(em, d.fieldPath("emisor"))
		c.Emisor = Emisor40{
			RFC:              ed.rfc("rfc"),
			Nombre:           ed.boundedString("nombre", 1, 300),
			RegimenFiscal:    enumField(ed, "regimen_fiscal", regimenFiscalCatalog),
			FacAtrAdquirente: ed.optionalDigitString("fac_atr_adquirente", 10, 10),
		}
		d.setErr(ed.err)
	} else {
		d.fail("emisor", nil, "required", "missing required field")
	}

	if re, ok := d.childNode("receptor"); ok {
		rd := newDecoder(re, d.fieldPath("receptor"))
		c.Receptor = Receptor40{
			RFC:                     rd.rfc("rfc"),
			Nombre:                  rd.boundedString("nombre", 1, 300),
			DomicilioFiscalReceptor: rd.digitString("domicilio_fiscal_receptor", 5, 5),
			ResidenciaFiscal:        optionalEnum(rd, "residencia_fiscal", paisCatalog),
			NumRegIdTrib:            rd.optionalBoundedString("num_reg_id_trib", 1, 40),
			RegimenFiscalReceptor:   enumField(rd, "regimen_fiscal_receptor", regimenFiscalCatalog),
			UsoCFDI:                 enumField(rd, "uso_cfdi", usoCFDICatalog),
		}
		d.setErr(rd.err)
	} else {
		d.fail("receptor", nil, "required", "missing required field")
	}

	if _, ok := d.raw("conceptos"); !ok {
		d.fail("conceptos", nil, "required", "missing required field")
	}
	for _, n := range d.listField("conceptos", dict2listFlatten) {
		concepto, err := parseConcepto40(n, d.fieldPath("conceptos"))
		if err != nil {
			d.setErr(err)
			break
		}
		c.Conceptos = append(c.Conceptos, *concepto)
	}

	if imp, ok := d.childNode("impuestos"); ok {
		summary, err := parseImpuestosCFDI40(imp, d.fieldPath("impuestos"))
		if err != nil {
			d.setErr(err)
		} else {
			c.Impuestos = summary
		}
	}

	if raw, ok := d.raw("complemento"); ok {
		complementos, err := parseComplementos(d.fieldPath("complemento"), raw)
		if err != nil {
			d.setErr(err)
		} else {
			c.Complemento = complementos
		}
	}

	if addenda, ok := d.childNode("addenda"); ok {
		c.Addenda = addenda
	}

	if d.err != nil {
		return nil, d.err
	}
	return c, nil
}

func parseCfdiRelacionados40(node Node, path string) (*CfdiRelacionados40, error) {
	d := newDecoder(node, path)
	rel := &CfdiRelacionados40{
		TipoRelacion: enumField(d, "tipo_relacion", tipoRelacionCatalog),
	}
	if _, ok := d.raw("cfdi_relacionado"); !ok {
		d.fail("cfdi_relacionado", nil, "required", "missing required field")
	}
	for _, n := range d.listField("cfdi_relacionado", dict2list) {
		rd := newDecoder(n, d.fieldPath("cfdi_relacionado"))
		rel.CfdiRelacionado = append(rel.CfdiRelacionado, CfdiRelacionado40{UUID: rd.requiredUUID("uuid")})
		d.setErr(rd.err)
	}
	if d.err != nil {
		return nil, d.err
	}
	return rel, nil
}

func parseConcepto40(node Node, path string) (*Concepto40, error) {
	d := newDecoder(node, path)
	c := &Concepto40{
		ClaveProdServ:    d.requiredString("clave_prod_serv"),
		NoIdentificacion: d.optionalBoundedString("no_identificacion", 1, 100),
		Cantidad:         d.positiveDecimal("cantidad"),
		ClaveUnidad:      d.requiredString("clave_unidad"),
		Unidad:           d.optionalBoundedString("unidad", 1, 20),
		Descripcion:      d.boundedString("descripcion", 1, 1000),
		ValorUnitario:    d.anyDecimal("valor_unitario"),
		Importe:          d.nonNegativeDecimal("importe"),
		Descuento:        d.nonNegativeDecimalDefault("descuento"),
		ObjetoImp:        enumField(d, "objeto_imp", objetoImpCatalog),
	}

	if imp, ok := d.childNode("impuestos"); ok {
		taxes, err := parseImpuestosConcepto40(imp, d.fieldPath("impuestos"))
		if err != nil {
			d.setErr(err)
		} else {
			c.Impuestos = taxes
		}
	}

	for _, n := range d.listField("informacion_aduanera", dict2list) {
		ad := newDecoder(n, d.fieldPath("informacion_aduanera"))
		c.InformacionAduanera = append(c.InformacionAduanera, InformacionAduanera40{
			NumeroPedimento: ad.pattern("numero_pedimento", pedimentoPattern, "numero_pedimento", "must be a 21-character customs request number"),
		})
		d.setErr(ad.err)
	}

	for _, n := range d.listField("cuenta_predial", dict2list) {
		cd := newDecoder(n, d.fieldPath("cuenta_predial"))
		c.CuentaPredial = append(c.CuentaPredial, CuentaPredial40{
			Numero: cd.digitString("numero", 1, 150),
		})
		d.setErr(cd.err)
	}

	c.ComplementoConcepto = d.listField("complemento_concepto", dict2list)

	for _, n := range d.listField("a_cuenta_terceros", dict2list) {
		td := newDecoder(n, d.fieldPath("a_cuenta_terceros"))
		c.ACuentaTerceros = append(c.ACuentaTerceros, ACuentaTerceros{
			RfcACuentaTerceros:             td.rfc("rfc_a_cuenta_terceros"),
			NombreACuentaTerceros:          td.boundedString("nombre_a_cuenta_terceros", 1, 300),
			RegimenFiscalACuentaTerceros:   enumField(td, "regimen_fiscal_a_cuenta_terceros", regimenFiscalCatalog),
			DomicilioFiscalACuentaTerceros: td.digitString("domicilio_fiscal_a_cuenta_terceros", 5, 5),
		})
		d.setErr(td.err)
	}

	for _, n := range d.listField("parte", dict2list) {
		parte, err := parseParte40(n, d.fieldPath("parte"))
		if err != nil {
			d.setErr(err)
			break
		}
		c.Parte = append(c.Parte, *parte)
	}

	if d.err != nil {
		return nil, d.err
	}
	return c, nil
}

func parseParte40(node Node, path string) (*Parte40, error) {
	d := newDecoder(node, path)
	p := &Parte40{
		ClaveProdServ:    d.requiredString("clave_prod_serv"),
		NoIdentificacion: d.optionalBoundedString("no_identificacion", 1, 100),
		Cantidad:         d.positiveDecimal("cantidad"),
		Unidad:           d.optionalBoundedString("unidad", 1, 20),
		Descripcion:      d.boundedString("descripcion", 1, 1000),
		ValorUnitario:    d.optionalNonNegativeUnscaled("valor_unitario"),
		Importe:          d.optionalNonNegativeDecimal("importe"),
	}
	for _, n := range d.listField("informacion_aduanera", dict2list) {
		ad := newDecoder(n, d.fieldPath("informacion_aduanera"))
		p.InformacionAduanera = append(p.InformacionAduanera, InformacionAduanera40{
			NumeroPedimento: ad.pattern("numero_pedimento", pedimentoPattern, "numero_pedimento", "must be a 21-character customs request number"),
		})
		d.setErr(ad.err)
	}
	if d.err != nil {
		return nil, d.err
	}
	return p, nil
}

func parseImpuestosConcepto40(node Node, path string) (*ImpuestosConcepto40, error) {
	d := newDecoder(node, path)
	taxes := &ImpuestosConcepto40{}
	for _, n := range d.listField("traslados", dict2listFlatten) {
		td := newDecoder(n, d.fieldPath("traslados"))
		taxes.Traslados = append(taxes.Traslados, Traslado40{
			Base:       td.positiveDecimal("base"),
			Impuesto:   enumField(td, "impuesto", impuestoCatalog),
			TipoFactor: enumField(td, "tipo_factor", tipoFactorCatalog),
			TasaOCuota: td.optionalNonNegativeDecimal("tasa_o_cuota"),
			Importe:    td.optionalNonNegativeDecimal("importe"),
		})
		d.setErr(td.err)
	}
	for _, n := range d.listField("retenciones", dict2listFlatten) {
		rd := newDecoder(n, d.fieldPath("retenciones"))
		taxes.Retenciones = append(taxes.Retenciones, Retencion40{
			Base:       rd.positiveDecimal("base"),
			Impuesto:   enumField(rd, "impuesto", impuestoCatalog),
			TipoFactor: enumField(rd, "tipo_factor", tipoFactorCatalog),
			TasaOCuota: rd.nonNegativeDecimal("tasa_o_cuota"),
			Importe:    rd.nonNegativeDecimal("importe"),
		})
		d.setErr(rd.err)
	}
	if d.err != nil {
		return nil, d.err
	}
	return taxes, nil
}

func parseImpuestosCFDI40(node Node, path string) (*ImpuestosCFDI40, error) {
	d := newDecoder(node, path)
	summary := &ImpuestosCFDI40{
		TotalImpuestosRetenidos:   d.nonNegativeDecimalDefault("total_impuestos_retenidos"),
		TotalImpuestosTrasladados: d.nonNegativeDecimalDefault("total_impuestos_trasladados"),
	}
	for _, n := range d.listField("traslados", dict2listFlatten) {
		td := newDecoder(n, d.fieldPath("traslados"))
		summary.Traslados = append(summary.Traslados, TrasladoCFDI40{
			Impuesto:   enumField(td, "impuesto", impuestoCatalog),
			TipoFactor: enumField(td, "tipo_factor", tipoFactorCatalog),
			Base:       td.nonNegativeDecimal("base"),
			TasaOCuota: td.nonNegativeDecimalDefault("tasa_o_cuota"),
			Importe:    td.nonNegativeDecimalDefault("importe"),
		})
		d.setErr(td.err)
	}
	for _, n := range d.listField("retenciones", dict2listFlatten) {
		rd := newDecoder(n, d.fieldPath("retenciones"))
		summary.Retenciones = append(summary.Retenciones, RetencionCFDI40{
			Impuesto: enumField(rd, "impuesto", impuestoCatalog),
			Importe:  rd.nonNegativeDecimal("importe"),
		})
		d.setErr(rd.err)
	}
	if d.err != nil {
		return nil, d.err
	}
	return summary, nil
}
