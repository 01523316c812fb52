package cfdi

// SAT catalogs (catCFDI.xsd). Each catalog is a closed set fixed at compile
// time: one entry per valid code, any other code is a parse error.

// catalogDef holds the valid code set for one catalog-typed field.
type catalogDef[T ~string] struct {
	name  string
	codes map[T]struct{}
}

func newCatalog[T ~string](name string, codes ...T) *catalogDef[T] {
	set := make(map[T]struct{}, len(codes))
	for _, c := range codes {
		set[c] = struct{}{}
	}
	return &catalogDef[T]{name: name, codes: set}
}

func (c *catalogDef[T]) parse(s string) (T, error) {
	v := T(s)
	if _, ok := c.codes[v]; !ok {
		return "", NewValidationError(c.name, s, c.name, "unknown catalog code")
	}
	return v, nil
}

// Impuesto is the catalog of federal tax types.
type Impuesto string

const (
	// Impuesto Sobre la Renta
	ImpuestoISR Impuesto = "001"
	// Impuesto al Valor Agregado
	ImpuestoIVA Impuesto = "002"
	// Impuesto Especial sobre Producción y Servicios
	ImpuestoIEPS Impuesto = "003"
)

var impuestoCatalog = newCatalog("impuesto", ImpuestoISR, ImpuestoIVA, ImpuestoIEPS)

// TipoFactor is the catalog of tax factor types.
type TipoFactor string

const (
	TipoFactorTasa   TipoFactor = "Tasa"
	TipoFactorCuota  TipoFactor = "Cuota"
	TipoFactorExento TipoFactor = "Exento"
)

var tipoFactorCatalog = newCatalog("tipo_factor", TipoFactorTasa, TipoFactorCuota, TipoFactorExento)

// TipoDeComprobante is the catalog of voucher effects.
type TipoDeComprobante string

const (
	ComprobanteIngreso  TipoDeComprobante = "I"
	ComprobanteEgreso   TipoDeComprobante = "E"
	ComprobanteTraslado TipoDeComprobante = "T"
	ComprobanteNomina   TipoDeComprobante = "N"
	ComprobantePago     TipoDeComprobante = "P"
)

var tipoDeComprobanteCatalog = newCatalog("tipo_de_comprobante",
	ComprobanteIngreso, ComprobanteEgreso, ComprobanteTraslado, ComprobanteNomina, ComprobantePago)

// MetodoDePago is the catalog of payment methods.
type MetodoDePago string

const (
	// Pago en una sola exhibición
	MetodoPagoPUE MetodoDePago = "PUE"
	// Pago en parcialidades o diferido
	MetodoPagoPPD MetodoDePago = "PPD"
)

var metodoDePagoCatalog = newCatalog("metodo_pago", MetodoPagoPUE, MetodoPagoPPD)

// FormaPago is the catalog of payment means.
type FormaPago string

const (
	FormaPagoEfectivo              FormaPago = "01"
	FormaPagoChequeNominativo      FormaPago = "02"
	FormaPagoTransferencia         FormaPago = "03"
	FormaPagoTarjetaCredito        FormaPago = "04"
	FormaPagoMonederoElectronico   FormaPago = "05"
	FormaPagoDineroElectronico     FormaPago = "06"
	FormaPagoValesDespensa         FormaPago = "08"
	FormaPagoDacionEnPago          FormaPago = "12"
	FormaPagoSubrogacion           FormaPago = "13"
	FormaPagoConsignacion          FormaPago = "14"
	FormaPagoCondonacion           FormaPago = "15"
	FormaPagoCompensacion          FormaPago = "17"
	FormaPagoNovacion              FormaPago = "23"
	FormaPagoConfusion             FormaPago = "24"
	FormaPagoRemisionDeuda         FormaPago = "25"
	FormaPagoPrescripcion          FormaPago = "26"
	FormaPagoSatisfaccionAcreedor  FormaPago = "27"
	FormaPagoTarjetaDebito         FormaPago = "28"
	FormaPagoTarjetaServicios      FormaPago = "29"
	FormaPagoAplicacionAnticipos   FormaPago = "30"
	FormaPagoIntermediarioPagos    FormaPago = "31"
	FormaPagoPorDefinir            FormaPago = "99"
)

var formaPagoCatalog = newCatalog("forma_pago",
	FormaPagoEfectivo, FormaPagoChequeNominativo, FormaPagoTransferencia, FormaPagoTarjetaCredito,
	FormaPagoMonederoElectronico, FormaPagoDineroElectronico, FormaPagoValesDespensa, FormaPagoDacionEnPago,
	FormaPagoSubrogacion, FormaPagoConsignacion, FormaPagoCondonacion, FormaPagoCompensacion,
	FormaPagoNovacion, FormaPagoConfusion, FormaPagoRemisionDeuda, FormaPagoPrescripcion,
	FormaPagoSatisfaccionAcreedor, FormaPagoTarjetaDebito, FormaPagoTarjetaServicios,
	FormaPagoAplicacionAnticipos, FormaPagoIntermediarioPagos, FormaPagoPorDefinir)

// TipoRelacion is the catalog of relations between a CFDI and prior CFDIs.
type TipoRelacion string

const (
	RelacionNotaCredito          TipoRelacion = "01"
	RelacionNotaDebito           TipoRelacion = "02"
	RelacionDevolucion           TipoRelacion = "03"
	RelacionSustitucion          TipoRelacion = "04"
	RelacionTraslados            TipoRelacion = "05"
	RelacionFacturaTraslados     TipoRelacion = "06"
	RelacionAplicacionAnticipo   TipoRelacion = "07"
	RelacionPagosParcialidades   TipoRelacion = "08"
	RelacionPagosDiferidos       TipoRelacion = "09"
)

var tipoRelacionCatalog = newCatalog("tipo_relacion",
	RelacionNotaCredito, RelacionNotaDebito, RelacionDevolucion, RelacionSustitucion,
	RelacionTraslados, RelacionFacturaTraslados, RelacionAplicacionAnticipo,
	RelacionPagosParcialidades, RelacionPagosDiferidos)

// UsoCFDI is the catalog of invoice-use codes declared by the recipient.
type UsoCFDI string

var usoCFDICatalog = newCatalog[UsoCFDI]("uso_cfdi",
	"G01", "G02", "G03",
	"I01", "I02", "I03", "I04", "I05", "I06", "I07", "I08",
	"D01", "D02", "D03", "D04", "D05", "D06", "D07", "D08", "D09", "D10",
	"P01", "S01", "CP01", "CN01")

// RegimenFiscal is the catalog of tax regimes.
type RegimenFiscal string

var regimenFiscalCatalog = newCatalog[RegimenFiscal]("regimen_fiscal",
	"601", "603", "605", "606", "607", "608", "609", "610", "611", "612",
	"614", "615", "616", "620", "621", "622", "623", "624", "625", "626",
	"628", "629", "630")

// ObjetoImp is the catalog declaring whether a line item is subject to tax.
type ObjetoImp string

var objetoImpCatalog = newCatalog[ObjetoImp]("objeto_imp", "01", "02", "03")

// Periodicidad is the catalog of global-invoice periods.
type Periodicidad string

var periodicidadCatalog = newCatalog[Periodicidad]("periodicidad", "01", "02", "03", "04", "05")

// Meses is the catalog of global-invoice month codes (13-18 are bimonthly).
type Meses string

var mesesCatalog = newCatalog[Meses]("meses",
	"01", "02", "03", "04", "05", "06", "07", "08", "09", "10", "11", "12",
	"13", "14", "15", "16", "17", "18")

// Exportacion is the catalog of export-operation classes.
type Exportacion string

var exportacionCatalog = newCatalog[Exportacion]("exportacion", "01", "02", "03", "04")

// Moneda is the ISO 4217 currency catalog as published by SAT.
type Moneda string

// MXN is the home currency; tipo_cambio is required whenever moneda is
// neither MXN nor XXX.
const (
	MonedaMXN Moneda = "MXN"
	MonedaUSD Moneda = "USD"
	MonedaXXX Moneda = "XXX"
)

var monedaCatalog = newCatalog[Moneda]("moneda",
	"AED", "AFN", "ALL", "AMD", "ANG", "AOA", "ARS", "AUD", "AWG", "AZN",
	"BAM", "BBD", "BDT", "BGN", "BHD", "BIF", "BMD", "BND", "BOB", "BOV",
	"BRL", "BSD", "BTN", "BWP", "BYR", "BZD", "CAD", "CDF", "CHE", "CHF",
	"CHW", "CLF", "CLP", "CNY", "COP", "COU", "CRC", "CUC", "CUP", "CVE",
	"CZK", "DJF", "DKK", "DOP", "DZD", "EGP", "ERN", "ETB", "EUR", "FJD",
	"FKP", "GBP", "GEL", "GHS", "GIP", "GMD", "GNF", "GTQ", "GYD", "HKD",
	"HNL", "HRK", "HTG", "HUF", "IDR", "ILS", "INR", "IQD", "IRR", "ISK",
	"JMD", "JOD", "JPY", "KES", "KGS", "KHR", "KMF", "KPW", "KRW", "KWD",
	"KYD", "KZT", "LAK", "LBP", "LKR", "LRD", "LSL", "LYD", "MAD", "MDL",
	"MGA", "MKD", "MMK", "MNT", "MOP", "MRO", "MUR", "MVR", "MWK", "MXN",
	"MXV", "MYR", "MZN", "NAD", "NGN", "NIO", "NOK", "NPR", "NZD", "OMR",
	"PAB", "PEN", "PGK", "PHP", "PKR", "PLN", "PYG", "QAR", "RON", "RSD",
	"RUB", "RWF", "SAR", "SBD", "SCR", "SDG", "SEK", "SGD", "SHP", "SLL",
	"SOS", "SRD", "SSP", "STD", "SVC", "SYP", "SZL", "THB", "TJS", "TMT",
	"TND", "TOP", "TRY", "TTD", "TWD", "TZS", "UAH", "UGX", "USD", "USN",
	"UYI", "UYU", "UZS", "VEF", "VND", "VUV", "WST", "XAF", "XAG", "XAU",
	"XBA", "XBB", "XBC", "XBD", "XCD", "XDR", "XOF", "XPD", "XPF", "XPT",
	"XSU", "XTS", "XUA", "XXX", "YER", "ZAR", "ZMW", "ZWL")

// Pais is the ISO 3166-1 alpha-3 country catalog as published by SAT
// (including SAT's ZZZ for unlisted countries).
type Pais string

const PaisMEX Pais = "MEX"

var paisCatalog = newCatalog[Pais]("pais",
	"AFG", "ALA", "ALB", "DEU", "AND", "AGO", "AIA", "ATA", "ATG", "SAU",
	"DZA", "ARG", "ARM", "ABW", "AUS", "AUT", "AZE", "BHS", "BGD", "BRB",
	"BHR", "BEL", "BLZ", "BEN", "BMU", "BLR", "MMR", "BOL", "BIH", "BWA",
	"BRA", "BRN", "BGR", "BFA", "BDI", "BTN", "CPV", "KHM", "CMR", "CAN",
	"QAT", "BES", "TCD", "CHL", "CHN", "CYP", "COL", "COM", "PRK", "KOR",
	"CIV", "CRI", "HRV", "CUB", "CUW", "DNK", "DMA", "ECU", "EGY", "SLV",
	"ARE", "ERI", "SVK", "SVN", "ESP", "USA", "EST", "ETH", "PHL", "FIN",
	"FJI", "FRA", "GAB", "GMB", "GEO", "GHA", "GIB", "GRD", "GRC", "GRL",
	"GLP", "GUM", "GTM", "GUF", "GGY", "GIN", "GNB", "GNQ", "GUY", "HTI",
	"HND", "HKG", "HUN", "IND", "IDN", "IRQ", "IRN", "IRL", "BVT", "IMN",
	"CXR", "NFK", "ISL", "CYM", "CCK", "COK", "FRO", "SGS", "HMD", "FLK",
	"MNP", "MHL", "PCN", "SLB", "TCA", "UMI", "VGB", "VIR", "ISR", "ITA",
	"JAM", "JPN", "JEY", "JOR", "KAZ", "KEN", "KGZ", "KIR", "KWT", "LAO",
	"LSO", "LVA", "LBN", "LBR", "LBY", "LIE", "LTU", "LUX", "MAC", "MDG",
	"MYS", "MWI", "MDV", "MLI", "MLT", "MAR", "MTQ", "MUS", "MRT", "MYT",
	"MEX", "FSM", "MDA", "MCO", "MNG", "MNE", "MSR", "MOZ", "NAM", "NRU",
	"NPL", "NIC", "NER", "NGA", "NIU", "NOR", "NCL", "NZL", "OMN", "NLD",
	"PAK", "PLW", "PSE", "PAN", "PNG", "PRY", "PER", "PYF", "POL", "PRT",
	"PRI", "GBR", "CAF", "CZE", "MKD", "COG", "COD", "DOM", "REU", "RWA",
	"ROU", "RUS", "ESH", "WSM", "ASM", "BLM", "KNA", "SMR", "MAF", "SPM",
	"VCT", "SHN", "LCA", "STP", "SEN", "SRB", "SYC", "SLE", "SGP", "SXM",
	"SYR", "SOM", "LKA", "SWZ", "ZAF", "SDN", "SSD", "SWE", "CHE", "SUR",
	"SJM", "THA", "TWN", "TZA", "TJK", "IOT", "ATF", "TLS", "TGO", "TKL",
	"TON", "TTO", "TUN", "TKM", "TUR", "TUV", "UKR", "UGA", "URY", "UZB",
	"VUT", "VAT", "VEN", "VNM", "WLF", "YEM", "DJI", "ZMB", "ZWE", "ZZZ")
