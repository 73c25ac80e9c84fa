package photoengine

import (
	"fmt"
	"strings"
)

// translit maps common Latin diacritics to their closest ascii equivalent so
// titles like "Jazz à Montréal" slugify to "jazz-a-montreal".
var translit = map[rune]string{
	'à': "a", 'á': "a", 'â': "a", 'ã': "a", 'ä': "a", 'å': "a", 'æ': "ae",
	'ç': "c", 'è': "e", 'é': "e", 'ê': "e", 'ë': "e", 'ì': "i", 'í': "i",
	'î': "i", 'ï': "i", 'ñ': "n", 'ò': "o", 'ó': "o", 'ô': "o", 'õ': "o",
	'ö': "o", 'ø': "o", 'ù': "u", 'ú': "u", 'û': "u", 'ü': "u", 'ý': "y",
	'ÿ': "y", 'ß': "ss", 'œ': "oe", 'š': "s", 'ž': "z", 'ł': "l", 'đ': "d",
	'ć': "c", 'č': "c", 'ą': "a", 'ę': "e", 'ś': "s", 'ź': "z", 'ż': "z",
}

// Slugify converts free text to a URL-safe slug: lowercase ascii letters,
// digits, and hyphens only.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	prev := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prev = false
		default:
			if mapped, ok := translit[r]; ok {
				b.WriteString(mapped)
				prev = false
				continue
			}
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// SlugParts derives slug candidate parts from entity fields in priority
// order: title, then venue when the title does not already mention it, then
// the capture year when parseable. Empty fields contribute nothing.
func SlugParts(title, venue, captured string) []string {
	var parts []string
	t := Slugify(title)
	if t != "" {
		parts = append(parts, t)
	}
	if v := Slugify(venue); v != "" && !strings.Contains(t, v) {
		parts = append(parts, v)
	}
	if y := captureYear(captured); y != "" {
		parts = append(parts, y)
	}
	return parts
}

// captureYear extracts a four-digit year from a capture date like
// "2023-06-01" or "2023:06:01 14:00:00" (EXIF style). Returns "" when no
// year can be found.
func captureYear(captured string) string {
	captured = strings.TrimSpace(captured)
	if len(captured) < 4 {
		return ""
	}
	y := captured[:4]
	for _, r := range y {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return y
}

// AllocateSlug joins candidate parts with hyphens and makes the result
// unique within the given scope by appending -2, -3, … until no collision
// remains. When the parts produce nothing, fallback (a synthetic identifier
// such as the entity id) keeps the slug non-empty. The scope is an explicit
// set of existing slugs, excluding the entity itself; the allocator holds no
// state of its own.
func AllocateSlug(parts []string, existing map[string]bool, fallback string) string {
	base := strings.Join(parts, "-")
	if base == "" {
		base = Slugify(fallback)
	}
	if base == "" {
		base = "untitled"
	}
	slug := base
	for n := 2; existing[slug]; n++ {
		slug = fmt.Sprintf("%s-%d", base, n)
	}
	return slug
}
