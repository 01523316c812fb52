package cfdi

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Document is a parsed CFDI of any supported version. Concrete values are
// *CFDI33 and *CFDI40; callers that need version-specific fields type-switch.
type Document interface {
	TaxTotaler
	CFDIVersion() string
	IssuerRFC() RFC
	RecipientRFC() RFC
	TotalAmount() decimal.Decimal
	Complementos() []Complemento
}

// SupportedVersions lists the CFDI versions Parse can dispatch to.
var SupportedVersions = []string{"3.3", "4.0"}

// Parse dispatches a normalized raw tree to the schema matching its declared
// version. The tree must carry a comprobante root with a version attribute.
func Parse(raw Node) (Document, error) {
	value, ok := raw["comprobante"]
	if !ok {
		return nil, &InvalidCFDIError{Path: "comprobante", Reason: "missing comprobante root element"}
	}
	node, ok := value.(Node)
	if !ok {
		return nil, &InvalidCFDIError{Path: "comprobante", Reason: "comprobante is not an element"}
	}
	version, ok := node["version"].(string)
	if !ok {
		return nil, &InvalidCFDIError{Path: "comprobante.version", Reason: "missing version attribute"}
	}

	var (
		doc Document
		err error
	)
	switch version {
	case "3.3":
		doc, err = parseCFDI33(node)
	case "4.0":
		doc, err = parseCFDI40(node)
	default:
		return nil, &UnsupportedCFDIError{Version: version, Supported: SupportedVersions}
	}
	if err != nil {
		return nil, invalidCFDI(err)
	}
	return doc, nil
}

// VerificationKey identifies a stamped invoice to the SAT status service.
type VerificationKey struct {
	UUID         uuid.UUID
	IssuerRFC    RFC
	RecipientRFC RFC
	Total        decimal.Decimal
}

// KeyOf extracts the verification key from a stamped document. Documents
// without a TimbreFiscalDigital complemento cannot be verified.
func KeyOf(doc Document) (VerificationKey, error) {
	tfd, err := ComplementoOfType[*TimbreFiscalDigital](doc.Complementos())
	if err != nil {
		return VerificationKey{}, &InvalidCFDIError{
			Path:   "comprobante.complemento",
			Reason: "document has no fiscal stamp",
			Cause:  err,
		}
	}
	return VerificationKey{
		UUID:         tfd.UUID,
		IssuerRFC:    doc.IssuerRFC(),
		RecipientRFC: doc.RecipientRFC(),
		Total:        doc.TotalAmount(),
	}, nil
}
