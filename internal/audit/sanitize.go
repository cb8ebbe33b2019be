package audit

import "strings"

// RedactedMarker replaces any value stored under a sensitive key.
const RedactedMarker = "[REDACTED]"

// Substring fragments matched case-insensitively against key names.
// Substring, not exact: "oldPassword" and "reset_token" both match.
var sensitiveFragments = []string{
	"password",
	"password_hash",
	"token",
	"refreshtoken",
	"accesstoken",
	"secret",
	"api_key",
	"apikey",
	"credit_card",
	"cvv",
	"ssn",
}

func isSensitiveKey(key string) bool {
	k := strings.ToLower(key)
	for _, frag := range sensitiveFragments {
		if strings.Contains(k, frag) {
			return true
		}
	}
	return false
}

// Sanitize deep-copies a JSON-shaped value, replacing every value whose
// key name contains a sensitive fragment with RedactedMarker. Scalars
// and nil pass through unchanged. The input is never mutated.
func Sanitize(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			if isSensitiveKey(k) {
				out[k] = RedactedMarker
				continue
			}
			out[k] = Sanitize(inner)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = Sanitize(inner)
		}
		return out
	default:
		return v
	}
}

// SanitizeMap is Sanitize for the common top-level object case,
// preserving nil.
func SanitizeMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	return Sanitize(m).(map[string]any)
}
