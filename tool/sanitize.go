package tool

import "strings"

const maxFileNameLen = 255

// SanitizeFileName strips characters outside [A-Za-z0-9._-], collapses
// repeated dots and truncates to 255 characters, so a client-supplied
// name is safe to forward upstream and to log.
func SanitizeFileName(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	prevDot := false
	for _, r := range name {
		ok := r == '.' || r == '_' || r == '-' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		if !ok {
			continue
		}
		if r == '.' {
			if prevDot {
				continue
			}
			prevDot = true
		} else {
			prevDot = false
		}
		b.WriteRune(r)
	}

	s := b.String()
	if len(s) > maxFileNameLen {
		s = s[:maxFileNameLen]
	}
	if s == "" {
		s = "upload"
	}
	return s
}
