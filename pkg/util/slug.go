package util

import "strings"

// Slugify derives a URL slug from a display name: lowercased, non-alphanumeric
// characters dropped, whitespace runs collapsed to single hyphens. Matches the
// slug format stored on categories, which is generated once at creation and
// intentionally never refreshed on rename.
func Slugify(name string) string {
	lowered := strings.ToLower(name)

	var b strings.Builder
	for _, r := range lowered {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case r == ' ' || r == '\t' || r == '\n':
			b.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), "-")
}
