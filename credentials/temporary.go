package credentials

import "strings"

// DefaultTemporaryPrefix marks passwords issued by the backend for forced resets.
// The year component is bumped when the backend rotates its reset scheme.
const DefaultTemporaryPrefix = "SA2025-"

// TemporaryDetector classifies passwords that must be changed after login.
// The check is structural only; it drives which screen is shown, never authorization.
type TemporaryDetector struct {
	Prefix string
}

// IsTemporary reports whether password carries the reset prefix
func (d TemporaryDetector) IsTemporary(password string) bool {
	prefix := d.Prefix
	if prefix == "" {
		prefix = DefaultTemporaryPrefix
	}
	return strings.HasPrefix(password, prefix)
}

// IsTemporary uses the default reset prefix
func IsTemporary(password string) bool {
	return TemporaryDetector{}.IsTemporary(password)
}
