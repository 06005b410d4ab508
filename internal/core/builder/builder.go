package builder

import "strings"

// keyReplacer maps characters the store rejects in keys.
var keyReplacer = strings.NewReplacer(
	"/", "_",
	":", "_",
	".", "_",
	"*", "_STAR_",
	" ", "_",
	"(", "_",
	")", "_",
)

// SanitizeKey converts an arbitrary identifier or reference into a store-safe
// key. The mapping is stable so rebuilds produce identical keys.
func SanitizeKey(s string) string {
	return keyReplacer.Replace(s)
}

// DisplayName returns the last path segment of a document reference, for use
// as a human-readable label.
func DisplayName(ref string) string {
	trimmed := strings.TrimRight(ref, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	if trimmed == "" {
		return ref
	}
	return trimmed
}
