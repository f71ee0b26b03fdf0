package render

import "strings"

const maxFileNameLen = 100

// SanitizeFileName reduces a recipient name to a safe archive member name.
// Letters, digits, dots, dashes and underscores pass through; runs of
// anything else collapse to a single underscore.
func SanitizeFileName(name string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}

	s := strings.Trim(b.String(), "_")
	if s == "" {
		s = "certificate"
	}
	if len(s) > maxFileNameLen {
		s = s[:maxFileNameLen]
	}
	return s
}

// CertificateFileName builds the archive member name for one recipient.
// The certification id keeps names unique when recipients share a name.
func CertificateFileName(recipientName, certificationID string) string {
	return SanitizeFileName(recipientName) + "_" + SanitizeFileName(certificationID) + ".png"
}
