package district

import (
	"regexp"
	"strings"
)

const maxSlugLen = 50

var (
	reservedSlugs = map[string]struct{}{
		"api": {}, "admin": {}, "dashboard": {}, "public": {}, "auth": {}, "login": {}, "logout": {},
	}
	whitespaceRegex = regexp.MustCompile(`\s+`)
	slugStripRegex  = regexp.MustCompile(`[^a-z0-9-]`)
)

// GenerateSlug derives the URL slug of a district from its name: trimmed and lower-cased, inner
// whitespace replaced by hyphens, anything but [a-z0-9-] stripped, "-district" appended to reserved
// words, "district" when empty, at most 50 characters.
func GenerateSlug(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = whitespaceRegex.ReplaceAllString(slug, "-")
	slug = slugStripRegex.ReplaceAllString(slug, "")
	if _, reserved := reservedSlugs[slug]; reserved {
		slug += "-district"
	}
	if slug == "" {
		slug = "district"
	}
	if len(slug) > maxSlugLen {
		slug = slug[:maxSlugLen]
	}
	return slug
}

// IsReservedSlug reports whether `slug` clashes with an application route.
func IsReservedSlug(slug string) bool {
	_, reserved := reservedSlugs[slug]
	return reserved
}
