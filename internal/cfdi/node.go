package cfdi

// Node is the untyped tree mirroring parsed XML, as produced by a generic
// XML-to-map converter. Values are one of:
//
//   - Node            nested element
//   - []interface{}   repeated elements
//   - string          attribute or text value
//   - decimal.Decimal numeric leaf coerced by Normalize
//
// A Node is ephemeral: it exists only for the duration of one parse call.
type Node = map[string]interface{}
