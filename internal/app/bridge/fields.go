package bridge

import (
	"encoding/json"
	"math"
)

// fields is a decoded JSON object. Lookups take several spellings of a key
// and use the first one present.
type fields map[string]any

func (f fields) raw(keys ...string) any {
	for _, key := range keys {
		if v, ok := f[key]; ok && v != nil {
			return v
		}
	}

	return nil
}

func (f fields) str(keys ...string) (string, bool) {
	s, ok := f.raw(keys...).(string)
	return s, ok
}

func (f fields) strOr(fallback string, keys ...string) string {
	if s, ok := f.str(keys...); ok && s != "" {
		return s
	}

	return fallback
}

// bytes returns string data as is and structured data as compact JSON
func (f fields) bytes(keys ...string) []byte {
	var s string

	switch v := f.raw(keys...).(type) {
	case nil:
		return nil
	case string:
		s = v
	default:
		s = stringify(v)
	}

	if s == "" {
		return nil
	}

	return []byte(s)
}

func (f fields) int32(keys ...string) int32 {
	n, ok := f.raw(keys...).(json.Number)
	if !ok {
		return 0
	}

	if i, err := n.Int64(); err == nil && i >= math.MinInt32 && i <= math.MaxInt32 {
		return int32(i)
	}

	return 0
}
