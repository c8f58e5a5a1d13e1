package ir

import "strings"

// Slug turns text into an identifier usable as a cross-reference anchor.
// Every run of characters outside [A-Za-z0-9._-] becomes a single "-".
func Slug(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	pending := false
	for _, r := range text {
		if isSlugRune(r) {
			if pending {
				b.WriteByte('-')
				pending = false
			}
			b.WriteRune(r)
			continue
		}
		pending = true
	}
	if pending {
		b.WriteByte('-')
	}
	return b.String()
}

// RequirementUID derives the globally unique id of a requirement.
func RequirementUID(categoryID, requirementID string) string {
	return Slug(categoryID + "." + requirementID)
}

func isSlugRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '.', r == '_', r == '-':
		return true
	}
	return false
}
