package hfile

import "unicode/utf8"

// maxAttributesMetadata and maxAttributesChildren are the attribute-count
// caps for /meta and /children respectively (§4.3): full metadata allows
// more attributes through than a lazy tree listing.
const (
	maxAttributesChildren = 10
	maxAttributesMetadata = 20
)

// convertAttributes applies the common conversion rules — bytes to UTF-8,
// arrays to nested lists, unreadable values to a marker string — and
// truncates past cap, reporting whether truncation occurred.
func convertAttributes(raw []RawAttr, cap int) (map[string]any, bool) {
	out := make(map[string]any, min(len(raw), cap))
	truncated := len(raw) > cap
	for i, a := range raw {
		if i >= cap {
			break
		}
		out[a.Name] = convertAttrValue(a.Value)
	}
	return out, truncated
}

func convertAttrValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		return val
	case []byte:
		return decodeUTF8Lossy(val)
	case bool, int64, int, float64, float32:
		return val
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = convertAttrValue(e)
		}
		return out
	default:
		return "<unreadable>"
	}
}

// decodeUTF8Lossy decodes b as UTF-8, dropping invalid sequences rather
// than erroring — mirrors "bytes -> UTF-8 (errors ignored)".
func decodeUTF8Lossy(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	out := make([]rune, 0, len(b))
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r != utf8.RuneError || size != 1 {
			out = append(out, r)
		}
		b = b[size:]
	}
	return string(out)
}
