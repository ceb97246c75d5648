package content

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadingTime(t *testing.T) {
	tests := []struct {
		name string
		html string
		want int
	}{
		{"empty", "", 0},
		{"only tags", "<p></p><br/>", 0},
		{"one word", "<p>hello</p>", 1},
		{"exactly 200", "<p>" + strings.Repeat("word ", 200) + "</p>", 1},
		{"201 rounds up", "<p>" + strings.Repeat("word ", 201) + "</p>", 2},
		{"400 words", "<p>" + strings.Repeat("word ", 400) + "</p>", 2},
		{"adjacent paragraphs", "<p>" + strings.Repeat("a ", 199) + "end</p><p>next</p>", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ReadingTime(tt.html))
		})
	}
}

func TestStripTags(t *testing.T) {
	got := StripTags(`<p class="lead">Hello <em>there</em></p>`)
	if got != "Hello there" {
		t.Errorf("StripTags = %q, want %q", got, "Hello there")
	}
}

func TestFormatExcerptPrecedence(t *testing.T) {
	long := strings.Repeat("x", 300)

	t.Run("custom excerpt wins and ignores length", func(t *testing.T) {
		p := Post{CustomExcerpt: long, Excerpt: "short"}
		assert.Equal(t, long, FormatExcerpt(p, 10))
	})

	t.Run("excerpt under length is verbatim", func(t *testing.T) {
		p := Post{Excerpt: "short", MetaDescription: "meta"}
		assert.Equal(t, "short", FormatExcerpt(p, 150))
	})

	t.Run("excerpt is cut with ellipsis", func(t *testing.T) {
		p := Post{Excerpt: "abcdefghij"}
		assert.Equal(t, "abcde...", FormatExcerpt(p, 5))
	})

	t.Run("meta description fallback", func(t *testing.T) {
		p := Post{MetaDescription: "meta text", HTML: "<p>body</p>"}
		assert.Equal(t, "meta text", FormatExcerpt(p, 150))
	})

	t.Run("stripped html fallback", func(t *testing.T) {
		p := Post{HTML: "<p>Hello <b>world</b></p>"}
		assert.Equal(t, "Hello wo...", FormatExcerpt(p, 8))
	})

	t.Run("nothing at all", func(t *testing.T) {
		assert.Equal(t, "", FormatExcerpt(Post{}, 150))
	})

	t.Run("zero length defaults to 150", func(t *testing.T) {
		p := Post{Excerpt: long}
		got := FormatExcerpt(p, 0)
		assert.Equal(t, long[:150]+"...", got)
	})
}

func TestFormatExcerptCutsOnRunes(t *testing.T) {
	p := Post{Excerpt: "héllo wörld"}
	got := FormatExcerpt(p, 2)
	assert.Equal(t, "hé...", got)
}
