package cfdi

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// XML-to-map converters hand back keys that begin with "@" for attributes,
// carry "cfdi:"/"tfd:" style prefixes for nodes, include xmlns/xsi namespace
// declarations, and are camelCased per SAT's xsd. Normalize rewrites all of
// them to plain snake_case and drops the namespace noise.

var (
	namePattern  = regexp.MustCompile(`(.)([A-Z][a-z]+)`)
	snakePattern = regexp.MustCompile(`([a-z0-9])([A-Z])`)
)

// camelToSnake converts a camelCase string to snake_case using two passes:
// one separating an internal capitalized run after any character, one
// separating a capital after a lowercase letter or digit.
func camelToSnake(camel string) string {
	s := namePattern.ReplaceAllString(camel, "${1}_${2}")
	return strings.ToLower(snakePattern.ReplaceAllString(s, "${1}_${2}"))
}

// Normalize maps a raw key tree to one with namespace-free snake_case keys.
// Numeric leaves that arrive as binary floats or json.Number are coerced to
// exact decimals so downstream parsing never rounds. Pure; always succeeds on
// a well-formed tree.
func Normalize(raw Node) Node {
	result := make(Node, len(raw))
	for key, value := range raw {
		// namespace declarations carry no CFDI semantics
		if strings.Contains(key, "xmlns") || strings.Contains(key, "xsi") {
			continue
		}
		result[normalizeKey(key)] = normalizeValue(value)
	}
	return result
}

func normalizeKey(key string) string {
	if i := strings.IndexByte(key, '@'); i >= 0 {
		key = key[i+1:]
	}
	if i := strings.LastIndexByte(key, ':'); i >= 0 {
		key = key[i+1:]
	}
	return camelToSnake(key)
}

func normalizeValue(value interface{}) interface{} {
	switch v := value.(type) {
	case Node:
		return Normalize(v)
	case []interface{}:
		items := make([]interface{}, len(v))
		for i, item := range v {
			items[i] = normalizeValue(item)
		}
		return items
	case float64:
		// exact: shopspring keeps the shortest decimal text of the float
		return decimal.NewFromFloat(v)
	case json.Number:
		if d, err := decimal.NewFromString(v.String()); err == nil {
			return d
		}
		return v.String()
	default:
		return value
	}
}
