package cfdi

import (
	"fmt"
	"sort"
)

// XML serializes one child element as an object and many as an array. The two
// coercers below resolve that ambiguity into always-a-sequence before field
// parsing. Both are idempotent on sequences.

// dict2list wraps a single mapping into a one-element sequence and returns a
// sequence unchanged. Any other shape is a ShapeError.
func dict2list(path string, original interface{}) ([]interface{}, error) {
	switch v := original.(type) {
	case nil:
		return nil, nil
	case Node:
		return []interface{}{v}, nil
	case []interface{}:
		return v, nil
	default:
		return nil, NewShapeError(path, fmt.Sprintf("unsupported type %T, must be a mapping or a sequence", original))
	}
}

// sortedKeys gives flattening a stable order; a grouped field carries one
// grouping key per tag name, so ordering across groups only has to be
// deterministic.
func sortedKeys(n Node) []string {
	keys := make([]string, 0, len(n))
	for key := range n {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// dict2listFlatten concatenates the children of a tag-grouped mapping into a
// single ordered sequence, discarding the grouping keys: a mapping child
// contributes itself, a sequence child contributes its elements. Sequences
// pass through unchanged and nil yields an empty sequence.
func dict2listFlatten(path string, original interface{}) ([]interface{}, error) {
	switch v := original.(type) {
	case nil:
		return nil, nil
	case Node:
		var result []interface{}
		for _, key := range sortedKeys(v) {
			switch child := v[key].(type) {
			case Node:
				result = append(result, child)
			case []interface{}:
				result = append(result, child...)
			default:
				return nil, NewShapeError(path, fmt.Sprintf("unsupported type %T in %q, must be a mapping or a sequence", child, key))
			}
		}
		return result, nil
	case []interface{}:
		return v, nil
	default:
		return nil, NewShapeError(path, fmt.Sprintf("unsupported type %T, must be a mapping or a sequence", original))
	}
}
