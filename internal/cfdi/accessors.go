package cfdi

import (
	"fmt"

	"github.com/shopspring/decimal"

	dec "github.com/rezonia/cfdi-processor/internal/decimal"
)

// TaxLine is the (impuesto, importe) view shared by invoice-level transferred
// and withheld tax lines across both CFDI versions.
type TaxLine struct {
	Impuesto Impuesto
	Importe  decimal.Decimal
}

// TaxTotaler is the behavior contract for anything that can report its
// invoice-level tax summary. Both CFDI33 and CFDI40 implement it; a document
// without an impuestos node reports empty slices, never an error.
type TaxTotaler interface {
	TransferredTaxes() []TaxLine
	WithheldTaxes() []TaxLine
}

// TotalTransferredTax sums the importe of every transferred tax line of the
// given type. Zero when the summary is absent.
func TotalTransferredTax(t TaxTotaler, taxType Impuesto) decimal.Decimal {
	return sumTaxLines(t.TransferredTaxes(), taxType)
}

// TotalWithheldTax sums the importe of every withheld tax line of the given
// type. Zero when the summary is absent.
func TotalWithheldTax(t TaxTotaler, taxType Impuesto) decimal.Decimal {
	return sumTaxLines(t.WithheldTaxes(), taxType)
}

func sumTaxLines(lines []TaxLine, taxType Impuesto) decimal.Decimal {
	total := dec.Zero
	for _, line := range lines {
		if line.Impuesto == taxType {
			total = total.Add(line.Importe)
		}
	}
	return total
}

// ComplementoOfType returns the first complemento of type T in stored
// (insertion) order, or ComplementoNotFoundError naming the requested type.
func ComplementoOfType[T Complemento](list []Complemento) (T, error) {
	for _, c := range list {
		if v, ok := c.(T); ok {
			return v, nil
		}
	}
	var zero T
	return zero, &ComplementoNotFoundError{Requested: fmt.Sprintf("%T", zero)}
}
