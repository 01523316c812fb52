// Package cfdilib provides a public API for parsing and verifying Mexican
// electronic invoices (CFDI).
//
// It supports CFDI versions 3.3 and 4.0, validating documents against SAT's
// field patterns, catalogs and decimal constraints, and can check a stamped
// invoice's status against SAT's web service.
//
// Example usage:
//
//	doc, err := cfdilib.ReadXML(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(doc.CFDIVersion(), doc.TotalAmount())
package cfdilib

import "github.com/rezonia/cfdi-processor/internal/cfdi"

// Re-export core types for public API
type (
	Document    = cfdi.Document
	Node        = cfdi.Node
	CFDI33      = cfdi.CFDI33
	CFDI40      = cfdi.CFDI40
	RFC         = cfdi.RFC
	CURP        = cfdi.CURP
	TaxLine     = cfdi.TaxLine
	TaxTotaler  = cfdi.TaxTotaler
	Complemento = cfdi.Complemento
)

// Re-export complemento variants
type (
	TimbreFiscalDigital      = cfdi.TimbreFiscalDigital
	Aerolineas               = cfdi.Aerolineas
	CertificadoDeDestruccion = cfdi.CertificadoDeDestruccion
	ComercioExterior         = cfdi.ComercioExterior
	OpaqueComplemento        = cfdi.OpaqueComplemento
)

// Re-export catalog types
type (
	Impuesto          = cfdi.Impuesto
	TipoFactor        = cfdi.TipoFactor
	TipoDeComprobante = cfdi.TipoDeComprobante
	MetodoDePago      = cfdi.MetodoDePago
	FormaPago         = cfdi.FormaPago
	UsoCFDI           = cfdi.UsoCFDI
	RegimenFiscal     = cfdi.RegimenFiscal
	Moneda            = cfdi.Moneda
	Pais              = cfdi.Pais
)

// Re-export tax type constants
const (
	ImpuestoISR  = cfdi.ImpuestoISR
	ImpuestoIVA  = cfdi.ImpuestoIVA
	ImpuestoIEPS = cfdi.ImpuestoIEPS
)

// Re-export error types
type (
	InvalidCFDIError         = cfdi.InvalidCFDIError
	UnsupportedCFDIError     = cfdi.UnsupportedCFDIError
	ValidationError          = cfdi.ValidationError
	ShapeError               = cfdi.ShapeError
	ComplementoNotFoundError = cfdi.ComplementoNotFoundError
)
