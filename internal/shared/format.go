package shared

import "encoding/json"

// MarshalJSON encodes v as JSON, indented for human-facing output when
// indent is true.
func MarshalJSON(v any, indent bool) ([]byte, error) {
	if indent {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
