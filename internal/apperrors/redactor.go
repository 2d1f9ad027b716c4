package apperrors

import "strings"

// sensitiveKeyMarkers are substrings that mark a log-context key as
// carrying a secret. Matching is case-insensitive.
var sensitiveKeyMarkers = []string{
	"password", "passwd", "secret", "token", "apikey", "api_key",
	"authorization", "credential", "private_key", "ssh_key", "bearer",
}

// IsSensitiveKey reports whether key looks like it names a secret value.
func IsSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, marker := range sensitiveKeyMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

const redactedPlaceholder = "***REDACTED***"

// RedactMap returns a shallow copy of m with sensitive-keyed values
// replaced, recursing into nested maps. Used before logging request
// metadata or analysis prompts that might echo back stored secrets.
func RedactMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if IsSensitiveKey(k) {
			out[k] = redactedPlaceholder
			continue
		}
		if nested, ok := v.(map[string]any); ok {
			out[k] = RedactMap(nested)
			continue
		}
		out[k] = v
	}
	return out
}
