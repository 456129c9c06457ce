// Package query provides safe percent-encoding for URL query values.
//
// The codec operates element-wise over scalars, string slices, and plain
// key/value mappings. Decoding is forgiving: malformed percent-encoding is
// returned unchanged instead of producing an error, so a hand-edited or
// truncated URL never breaks state derivation.
//
// Example:
//
//	query.Escape("café & more")          // "caf%C3%A9+%26+more"
//	query.Unescape("caf%C3%A9+%26+more") // "café & more"
//	query.Unescape("100%")               // "100%" (malformed, passed through)
package query

import "net/url"

// Escape percent-encodes a single query value.
// Reserved characters (space, &, =, #) and non-ASCII text are encoded so
// the result is safe to place in a query string.
func Escape(s string) string {
	return url.QueryEscape(s)
}

// Unescape reverses Escape. Malformed percent-encoding is not an error:
// the input is returned unchanged.
func Unescape(s string) string {
	out, err := url.QueryUnescape(s)
	if err != nil {
		return s
	}
	return out
}

// EscapeAll returns a new slice with every element escaped.
func EscapeAll(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = Escape(v)
	}
	return out
}

// UnescapeAll returns a new slice with every element unescaped.
func UnescapeAll(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = Unescape(v)
	}
	return out
}

// Encode applies Escape recursively to strings, string slices, and plain
// string-keyed mappings. Values of other types pass through untouched.
func Encode(v any) any {
	switch val := v.(type) {
	case string:
		return Escape(val)
	case []string:
		return EscapeAll(val)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			out[k] = Encode(inner)
		}
		return out
	case map[string]string:
		out := make(map[string]string, len(val))
		for k, inner := range val {
			out[k] = Escape(inner)
		}
		return out
	default:
		return v
	}
}

// Decode is the inverse of Encode. Like Unescape, it never fails; elements
// that cannot be decoded are kept as-is.
func Decode(v any) any {
	switch val := v.(type) {
	case string:
		return Unescape(val)
	case []string:
		return UnescapeAll(val)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			out[k] = Decode(inner)
		}
		return out
	case map[string]string:
		out := make(map[string]string, len(val))
		for k, inner := range val {
			out[k] = Unescape(inner)
		}
		return out
	default:
		return v
	}
}
