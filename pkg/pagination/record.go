package pagination

import (
	"encoding/json"
	"strconv"
)

// Record is one JSON object from a page payload. Numbers are kept as
// json.Number so identifiers survive without float formatting.
type Record map[string]any

// Field returns the value under key rendered as a string. The second result
// is false when the key is absent or its value is JSON null.
func (r Record) Field(key string) (string, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return "", false
	}

	switch val := v.(type) {
	case string:
		return val, true
	case json.Number:
		return val.String(), true
	case bool:
		return strconv.FormatBool(val), true
	default:
		raw, err := json.Marshal(val)
		if err != nil {
			return "", false
		}
		return string(raw), true
	}
}

// Decoder turns page records into typed values. The two methods are
// separate policies: Decode rejecting a record skips it silently, while
// IsSentinel accepting a value ends the whole stream at that position.
type Decoder[T any] interface {
	// Decode extracts a value from r. ok is false when r lacks the data
	// the decoder needs; such records are dropped without stopping.
	Decode(r Record) (value T, ok bool)

	// IsSentinel reports whether v marks the end of real data.
	IsSentinel(v T) bool
}

// Batch is the non-empty, ordered set of values produced from one page.
type Batch[T any] struct {
	Page    int
	Records []T
}
