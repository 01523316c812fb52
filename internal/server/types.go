package server

import (
	"github.com/rezonia/cfdi-processor/internal/cfdi"
	"github.com/rezonia/cfdi-processor/internal/sat"
)

// ParseResponse is the result of parsing a CFDI document
type ParseResponse struct {
	Version string        `json:"version"`
	Invoice cfdi.Document `json:"invoice"`
}

// VerifyResponse is the result of checking an invoice with SAT
type VerifyResponse struct {
	UUID         string              `json:"uuid"`
	IssuerRFC    string              `json:"issuer_rfc"`
	RecipientRFC string              `json:"recipient_rfc"`
	Total        string              `json:"total"`
	Status       *sat.StatusResponse `json:"status"`
}
