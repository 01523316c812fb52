package cfdi

import (
	"regexp"
	"time"
)

// Scalar value types shared by both CFDI versions, constrained per SAT's
// tdCFDI.xsd type set.

// RFC is a Mexican taxpayer identification code (t_RFC).
type RFC string

// CURP is a Mexican personal identity code (t_CURP).
type CURP string

var (
	rfcPattern  = regexp.MustCompile(`^[A-Z&Ñ]{3,4}[0-9]{2}(0[1-9]|1[012])(0[1-9]|[12][0-9]|3[01])[A-Z0-9]{2}[0-9A]$`)
	curpPattern = regexp.MustCompile(`^[A-Z&Ñ]{4}[0-9]{2}(0[1-9]|1[012])(0[1-9]|[12][0-9]|3[01])[A-Z0-9]{2}[0-9A]$`)

	// 20-position digital seal certificate serial issued by SAT
	noCertificadoPattern = regexp.MustCompile(`^[0-9]{20}$`)
	// customs request number: year, customs office, patent and progressive
	// number separated by double spaces
	pedimentoPattern    = regexp.MustCompile(`^[0-9]{2}  [0-9]{2}  [0-9]{4}  [0-9]{7}$`)
	postalCodePattern   = regexp.MustCompile(`^[0-9]{5}$`)
	confirmacionPattern = regexp.MustCompile(`^[0-9a-zA-Z]{5}$`)
	digitsPattern       = regexp.MustCompile(`^[0-9]+$`)
)

// ParseRFC validates s against the RFC pattern
func ParseRFC(s string) (RFC, error) {
	if !rfcPattern.MatchString(s) {
		return "", NewValidationError("rfc", s, "rfc", "does not match the RFC pattern")
	}
	return RFC(s), nil
}

// ParseCURP validates s against the CURP pattern
func ParseCURP(s string) (CURP, error) {
	if !curpPattern.MatchString(s) {
		return "", NewValidationError("curp", s, "curp", "does not match the CURP pattern")
	}
	return CURP(s), nil
}

// CFDI timestamps are local time in AAAA-MM-DDThh:mm:ss form; stamped
// documents occasionally carry fractional seconds.
var fechaLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
}

func parseFecha(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range fechaLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
