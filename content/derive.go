package content

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// WordsPerMinute is the reading speed used by ReadingTime.
const WordsPerMinute = 200

var reTag = regexp.MustCompile(`<[^>]*>`)

// StripTags removes every markup tag from s and leaves the text between them
// untouched. Entities are not decoded.
func StripTags(s string) string {
	return reTag.ReplaceAllString(s, "")
}

// ReadingTime estimates the minutes needed to read an HTML body, rounded up.
// Tags are replaced by a space so text in adjacent elements is not glued
// into a single word.
func ReadingTime(html string) int {
	if html == "" {
		return 0
	}
	words := len(strings.Fields(reTag.ReplaceAllString(html, " ")))
	return (words + WordsPerMinute - 1) / WordsPerMinute
}

// FormatExcerpt returns the teaser text for a post. A custom excerpt is used
// verbatim. Otherwise the excerpt, then the meta description, then the
// stripped body is cut at length runes with a trailing "...".
// A length of zero or less means 150.
func FormatExcerpt(p Post, length int) string {
	if length <= 0 {
		length = defaultExcerptLen
	}
	if p.CustomExcerpt != "" {
		return p.CustomExcerpt
	}
	if p.Excerpt != "" {
		return truncate(p.Excerpt, length)
	}
	fallback := p.MetaDescription
	if fallback == "" {
		fallback = p.HTML
	}
	return truncate(StripTags(fallback), length)
}

// truncate is a hard cut at n runes, not aware of word boundaries.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos] + "..."
		}
		i++
	}
	return s
}
