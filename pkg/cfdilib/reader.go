package cfdilib

import (
	"io"

	"github.com/rezonia/cfdi-processor/internal/cfdi"
	xmlreader "github.com/rezonia/cfdi-processor/internal/parser/xml"
)

// ReadXML parses CFDI XML bytes into a typed document.
func ReadXML(data []byte) (Document, error) {
	return xmlreader.ReadInvoice(data)
}

// ReadXMLFrom parses CFDI XML from a stream.
func ReadXMLFrom(r io.Reader) (Document, error) {
	return xmlreader.ReadInvoiceFrom(r)
}

// Parse validates an already-normalized raw tree. Most callers want ReadXML;
// this entry point serves trees obtained from other sources, e.g. JSON.
func Parse(raw Node) (Document, error) {
	return cfdi.Parse(raw)
}

// Normalize rewrites an XML-converter key tree to the snake_case form Parse
// expects.
func Normalize(raw Node) Node {
	return cfdi.Normalize(raw)
}

// ComplementoOfType returns the first complemento of type T from a parsed
// document's complementos.
func ComplementoOfType[T Complemento](list []Complemento) (T, error) {
	return cfdi.ComplementoOfType[T](list)
}

// TotalTransferredTax sums the invoice-level transferred taxes of one type.
func TotalTransferredTax(t TaxTotaler, taxType Impuesto) Decimal {
	return cfdi.TotalTransferredTax(t, taxType)
}

// TotalWithheldTax sums the invoice-level withheld taxes of one type.
func TotalWithheldTax(t TaxTotaler, taxType Impuesto) Decimal {
	return cfdi.TotalWithheldTax(t, taxType)
}
