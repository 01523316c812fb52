package cfdilib

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/rezonia/cfdi-processor/internal/cfdi"
	"github.com/rezonia/cfdi-processor/internal/sat"
)

// Decimal is the exact decimal type used for all monetary values.
type Decimal = decimal.Decimal

// Re-export verification types
type (
	VerificationKey = cfdi.VerificationKey
	StatusResponse  = sat.StatusResponse
	SATClient       = sat.Client
	SATClientOption = sat.ClientOption
)

// Re-export SAT client options
var (
	WithSATBaseURL = sat.WithBaseURL
	WithSATTimeout = sat.WithTimeout
)

// NewSATClient creates a client for SAT's verification service.
func NewSATClient(opts ...SATClientOption) *SATClient {
	return sat.NewClient(opts...)
}

// Verify checks a stamped invoice's status with SAT using a default client.
func Verify(ctx context.Context, doc Document) (*StatusResponse, error) {
	return sat.NewClient().VerifyDocument(ctx, doc)
}

// VerifyValues checks an invoice's status with SAT by its raw identifying
// values using a default client.
func VerifyValues(ctx context.Context, uuid, rfcEmisor, rfcReceptor string, total Decimal) (*StatusResponse, error) {
	return sat.NewClient().VerifyValues(ctx, uuid, rfcEmisor, rfcReceptor, total)
}

// KeyOf extracts the verification key from a stamped document.
func KeyOf(doc Document) (VerificationKey, error) {
	return cfdi.KeyOf(doc)
}
