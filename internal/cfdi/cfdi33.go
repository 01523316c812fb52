package cfdi

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CFDI v3.3 record types, per cfdv33.xsd plus tdCFDI.xsd and catCFDI.xsd.
// The 3.3 and 4.0 shapes share most field names but are deliberately distinct
// types: mixing fields across versions is a compile error, not a runtime check.

// Emisor33 is the invoice issuer.
type Emisor33 struct {
	RFC           RFC           `json:"rfc"`
	Nombre        *string       `json:"nombre,omitempty"`
	RegimenFiscal RegimenFiscal `json:"regimen_fiscal"`
}

// Receptor33 is the invoice recipient.
type Receptor33 struct {
	RFC              RFC     `json:"rfc"`
	Nombre           *string `json:"nombre,omitempty"`
	ResidenciaFiscal *Pais   `json:"residencia_fiscal,omitempty"`
	NumRegIdTrib     *string `json:"num_reg_id_trib,omitempty"`
	UsoCFDI          UsoCFDI `json:"uso_cfdi"`
}

// Traslado33 is a transferred tax applied to one line item.
type Traslado33 struct {
	Base       decimal.Decimal  `json:"base"`
	Impuesto   Impuesto         `json:"impuesto"`
	TipoFactor TipoFactor       `json:"tipo_factor"`
	TasaOCuota *decimal.Decimal `json:"tasa_o_cuota,omitempty"`
	Importe    *decimal.Decimal `json:"importe,omitempty"`
}

// Retencion33 is a withheld tax applied to one line item.
type Retencion33 struct {
	Base       decimal.Decimal `json:"base"`
	Impuesto   Impuesto        `json:"impuesto"`
	TipoFactor TipoFactor      `json:"tipo_factor"`
	TasaOCuota decimal.Decimal `json:"tasa_o_cuota"`
	Importe    decimal.Decimal `json:"importe"`
}

// ImpuestosConcepto33 groups the taxes applicable to one line item.
type ImpuestosConcepto33 struct {
	Traslados   []Traslado33  `json:"traslados,omitempty"`
	Retenciones []Retencion33 `json:"retenciones,omitempty"`
}

// InformacionAduanera33 holds the customs request covering an imported good.
type InformacionAduanera33 struct {
	NumeroPedimento string `json:"numero_pedimento"`
}

// CuentaPredial33 is a cadastral account reference.
type CuentaPredial33 struct {
	Numero string `json:"numero"`
}

// Parte33 is a component of a line item.
type Parte33 struct {
	InformacionAduanera []InformacionAduanera33 `json:"informacion_aduanera,omitempty"`
	ClaveProdServ       string                  `json:"clave_prod_serv"`
	NoIdentificacion    *string                 `json:"no_identificacion,omitempty"`
	Cantidad            decimal.Decimal         `json:"cantidad"`
	Unidad              *string                 `json:"unidad,omitempty"`
	Descripcion         string                  `json:"descripcion"`
	ValorUnitario       *decimal.Decimal        `json:"valor_unitario,omitempty"`
	Importe             *decimal.Decimal        `json:"importe,omitempty"`
}

// Concepto33 is one billed line item.
type Concepto33 struct {
	Impuestos           *ImpuestosConcepto33    `json:"impuestos,omitempty"`
	InformacionAduanera []InformacionAduanera33 `json:"informacion_aduanera,omitempty"`
	CuentaPredial       []CuentaPredial33       `json:"cuenta_predial,omitempty"`
	ComplementoConcepto []Node                  `json:"complemento_concepto,omitempty"`
	Parte               []Parte33               `json:"parte,omitempty"`
	ClaveProdServ       string                  `json:"clave_prod_serv"`
	NoIdentificacion    *string                 `json:"no_identificacion,omitempty"`
	Cantidad            decimal.Decimal         `json:"cantidad"`
	ClaveUnidad         string                  `json:"clave_unidad"`
	Unidad              *string                 `json:"unidad,omitempty"`
	Descripcion         string                  `json:"descripcion"`
	ValorUnitario       decimal.Decimal         `json:"valor_unitario"`
	Importe             decimal.Decimal         `json:"importe"`
	Descuento           decimal.Decimal         `json:"descuento"`
}

// RetencionCFDI33 is one invoice-level withheld tax aggregate.
type RetencionCFDI33 struct {
	Impuesto Impuesto        `json:"impuesto"`
	Importe  decimal.Decimal `json:"importe"`
}

// TrasladoCFDI33 is one invoice-level transferred tax aggregate.
type TrasladoCFDI33 struct {
	Impuesto   Impuesto        `json:"impuesto"`
	TipoFactor TipoFactor      `json:"tipo_factor"`
	TasaOCuota decimal.Decimal `json:"tasa_o_cuota"`
	Importe    decimal.Decimal `json:"importe"`
}

// ImpuestosCFDI33 is the invoice-level tax summary.
type ImpuestosCFDI33 struct {
	Retenciones               []RetencionCFDI33 `json:"retenciones,omitempty"`
	Traslados                 []TrasladoCFDI33  `json:"traslados,omitempty"`
	TotalImpuestosRetenidos   decimal.Decimal   `json:"total_impuestos_retenidos"`
	TotalImpuestosTrasladados decimal.Decimal   `json:"total_impuestos_trasladados"`
}

// CfdiRelacionado33 references a prior CFDI by fiscal folio.
type CfdiRelacionado33 struct {
	UUID uuid.UUID `json:"uuid"`
}

// CfdiRelacionados33 groups the related-invoice references.
type CfdiRelacionados33 struct {
	TipoRelacion    TipoRelacion        `json:"tipo_relacion"`
	CfdiRelacionado []CfdiRelacionado33 `json:"cfdi_relacionado"`
}

// CFDI33 is a CFDI version 3.3 invoice. Immutable once parsed.
type CFDI33 struct {
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
	MetodoPago        *MetodoDePago       `json:"metodo_pago,omitempty"`
	LugarExpedicion   string              `json:"lugar_expedicion"`
	Confirmacion      *string             `json:"confirmacion,omitempty"`
	CfdiRelacionados  *CfdiRelacionados33 `json:"cfdi_relacionados,omitempty"`
	Emisor            Emisor33            `json:"emisor"`
	Receptor          Receptor33          `json:"receptor"`
	Conceptos         []Concepto33        `json:"conceptos"`
	Impuestos         *ImpuestosCFDI33    `json:"impuestos,omitempty"`
	Complemento       []Complemento       `json:"complemento,omitempty"`
	Addenda           Node                `json:"addenda,omitempty"`
}

// CFDIVersion returns the version discriminant.
func (c *CFDI33) CFDIVersion() string { return "3.3" }

// IssuerRFC returns the issuing taxpayer's RFC.
func (c *CFDI33) IssuerRFC() RFC { return c.Emisor.RFC }

// RecipientRFC returns the receiving taxpayer's RFC.
func (c *CFDI33) RecipientRFC() RFC { return c.Receptor.RFC }

// TotalAmount returns the invoice total.
func (c *CFDI33) TotalAmount() decimal.Decimal { return c.Total }

// Complementos returns the extension payloads in source order.
func (c *CFDI33) Complementos() []Complemento { return c.Complemento }

// TransferredTaxes implements TaxTotaler over the invoice-level summary.
func (c *CFDI33) TransferredTaxes() []TaxLine {
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
func (c *CFDI33) WithheldTaxes() []TaxLine {
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
func (c *CFDI33) TotalTransferredTax(taxType Impuesto) decimal.Decimal {
	return TotalTransferredTax(c, taxType)
}

// TotalWithheldTax sums importe over impuestos.retenciones of the given type.
func (c *CFDI33) TotalWithheldTax(taxType Impuesto) decimal.Decimal {
	return TotalWithheldTax(c, taxType)
}

// parseCFDI33 validates and constructs a version 3.3 invoice from the
// normalized comprobante node. Construction is bottom-up; the first field
// failure aborts the whole document.
func parseCFDI33(node Node) (*CFDI33, error) {
	d := newDecoder(node, "comprobante")
	d.literal("version", "3.3")
	if d.err != nil {
		return nil, d.err
	}

	c := &CFDI33{
		Version:           "3.3",
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
		MetodoPago:        optionalEnum(d, "metodo_pago", metodoDePagoCatalog),
		LugarExpedicion:   d.requiredString("lugar_expedicion"),
		Confirmacion:      d.optionalPattern("confirmacion", confirmacionPattern, "confirmacion", "must be exactly 5 alphanumeric characters"),
	}

	if rel, ok := d.childNode("cfdi_relacionados"); ok {
		related, err := parseCfdiRelacionados33(rel, d.fieldPath("cfdi_relacionados"))
		if err != nil {
			d.setErr(err)
		} else {
			c.CfdiRelacionados = related
		}
	}

	if em, ok := d.childNode("emisor"); ok {
		ed := newDecoder(em, d.fieldPath("emisor"))
		c.Emisor = Emisor33{
			RFC:           ed.rfc("rfc"),
			Nombre:        ed.optionalBoundedString("nombre", 1, 254),
			RegimenFiscal: enumField(ed, "regimen_fiscal", regimenFiscalCatalog),
		}
		d.setErr(ed.err)
	} else {
		d.fail("emisor", nil, "required", "missing required field")
	}

	if re, ok := d.childNode("receptor"); ok {
		rd := newDecoder(re, d.fieldPath("receptor"))
		c.Receptor = Receptor33{
			RFC:              rd.rfc("rfc"),
			Nombre:           rd.optionalString("nombre"),
			ResidenciaFiscal: optionalEnum(rd, "residencia_fiscal", paisCatalog),
			NumRegIdTrib:     rd.optionalBoundedString("num_reg_id_trib", 1, 40),
			UsoCFDI:          enumField(rd, "uso_cfdi", usoCFDICatalog),
		}
		d.setErr(rd.err)
	} else {
		d.fail("receptor", nil, "required", "missing required field")
	}

	if _, ok := d.raw("conceptos"); !ok {
		d.fail("conceptos", nil, "required", "missing required field")
	}
	for _, n := range d.listField("conceptos", dict2listFlatten) {
		concepto, err := parseConcepto33(n, d.fieldPath("conceptos"))
		if err != nil {
			d.setErr(err)
			break
		}
		c.Conceptos = append(c.Conceptos, *concepto)
	}

	if imp, ok := d.childNode("impuestos"); ok {
		summary, err := parseImpuestosCFDI33(imp, d.fieldPath("impuestos"))
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

func parseCfdiRelacionados33(node Node, path string) (*CfdiRelacionados33, error) {
	d := newDecoder(node, path)
	rel := &CfdiRelacionados33{
		TipoRelacion: enumField(d, "tipo_relacion", tipoRelacionCatalog),
	}
	if _, ok := d.raw("cfdi_relacionado"); !ok {
		d.fail("cfdi_relacionado", nil, "required", "missing required field")
	}
	for _, n := range d.listField("cfdi_relacionado", dict2list) {
		rd := newDecoder(n, d.fieldPath("cfdi_relacionado"))
		rel.CfdiRelacionado = append(rel.CfdiRelacionado, CfdiRelacionado33{UUID: rd.requiredUUID("uuid")})
		d.setErr(rd.err)
	}
	if d.err != nil {
		return nil, d.err
	}
	return rel, nil
}

func parseConcepto33(node Node, path string) (*Concepto33, error) {
	d := newDecoder(node, path)
	c := &Concepto33{
		ClaveProdServ:    d.requiredString("clave_prod_serv"),
		NoIdentificacion: d.optionalBoundedString("no_identificacion", 1, 100),
		Cantidad:         d.positiveDecimal("cantidad"),
		ClaveUnidad:      d.requiredString("clave_unidad"),
		Unidad:           d.optionalBoundedString("unidad", 1, 20),
		Descripcion:      d.boundedString("descripcion", 1, 1000),
		ValorUnitario:    d.anyDecimal("valor_unitario"),
		Importe:          d.nonNegativeDecimal("importe"),
		Descuento:        d.nonNegativeDecimalDefault("descuento"),
	}

	if imp, ok := d.childNode("impuestos"); ok {
		taxes, err := parseImpuestosConcepto33(imp, d.fieldPath("impuestos"))
		if err != nil {
			d.setErr(err)
		} else {
			c.Impuestos = taxes
		}
	}

	for _, n := range d.listField("informacion_aduanera", dict2list) {
		ad := newDecoder(n, d.fieldPath("informacion_aduanera"))
		c.InformacionAduanera = append(c.InformacionAduanera, InformacionAduanera33{
			NumeroPedimento: ad.pattern("numero_pedimento", pedimentoPattern, "numero_pedimento", "must be a 21-character customs request number"),
		})
		d.setErr(ad.err)
	}

	for _, n := range d.listField("cuenta_predial", dict2list) {
		cd := newDecoder(n, d.fieldPath("cuenta_predial"))
		c.CuentaPredial = append(c.CuentaPredial, CuentaPredial33{
			Numero: cd.digitString("numero", 1, 150),
		})
		d.setErr(cd.err)
	}

	c.ComplementoConcepto = d.listField("complemento_concepto", dict2list)

	for _, n := range d.listField("parte", dict2list) {
		parte, err := parseParte33(n, d.fieldPath("parte"))
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

func parseParte33(node Node, path string) (*Parte33, error) {
	d := newDecoder(node, path)
	p := &Parte33{
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
		p.InformacionAduanera = append(p.InformacionAduanera, InformacionAduanera33{
			NumeroPedimento: ad.pattern("numero_pedimento", pedimentoPattern, "numero_pedimento", "must be a 21-character customs request number"),
		})
		d.setErr(ad.err)
	}
	if d.err != nil {
		return nil, d.err
	}
	return p, nil
}

func parseImpuestosConcepto33(node Node, path string) (*ImpuestosConcepto33, error) {
	d := newDecoder(node, path)
	taxes := &ImpuestosConcepto33{}
	for _, n := range d.listField("traslados", dict2listFlatten) {
		td := newDecoder(n, d.fieldPath("traslados"))
		taxes.Traslados = append(taxes.Traslados, Traslado33{
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
		taxes.Retenciones = append(taxes.Retenciones, Retencion33{
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

func parseImpuestosCFDI33(node Node, path string) (*ImpuestosCFDI33, error) {
	d := newDecoder(node, path)
	summary := &ImpuestosCFDI33{
		TotalImpuestosRetenidos:   d.nonNegativeDecimalDefault("total_impuestos_retenidos"),
		TotalImpuestosTrasladados: d.nonNegativeDecimalDefault("total_impuestos_trasladados"),
	}
	for _, n := range d.listField("traslados", dict2listFlatten) {
		td := newDecoder(n, d.fieldPath("traslados"))
		summary.Traslados = append(summary.Traslados, TrasladoCFDI33{
			Impuesto:   enumField(td, "impuesto", impuestoCatalog),
			TipoFactor: enumField(td, "tipo_factor", tipoFactorCatalog),
			TasaOCuota: td.nonNegativeDecimal("tasa_o_cuota"),
			Importe:    td.nonNegativeDecimal("importe"),
		})
		d.setErr(td.err)
	}
	for _, n := range d.listField("retenciones", dict2listFlatten) {
		rd := newDecoder(n, d.fieldPath("retenciones"))
		summary.Retenciones = append(summary.Retenciones, RetencionCFDI33{
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
