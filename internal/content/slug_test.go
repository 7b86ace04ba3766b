package content

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToSlug(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple title", "Hello World", "hello-world"},
		{"surrounding whitespace", "  Go  Tips  ", "go-tips"},
		{"punctuation runs collapse", "What's new?! (2024)", "what-s-new-2024"},
		{"leading and trailing symbols", "--- Draft ---", "draft"},
		{"underscore is a word char", "snake_case title", "snake_case-title"},
		{"cjk preserved", "技术文章 入门", "技术文章-入门"},
		{"mixed script", "Node.js 后端", "node-js-后端"},
		{"accented latin", "Café Déjà Vu", "café-déjà-vu"},
		{"cyrillic lowercased", "Привет Мир", "привет-мир"},
		{"only symbols", "!!!", ""},
		{"empty", "", ""},
		{"existing hyphens collapse", "a - - b", "a-b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToSlug(tt.in))
		})
	}
}

var slugShape = regexp.MustCompile(`^(?:[\p{Ll}\p{Lo}\p{Lm}\p{M}\p{N}_]+(?:-[\p{Ll}\p{Lo}\p{Lm}\p{M}\p{N}_]+)*)?$`)

func TestToSlugShapeAndIdempotence(t *testing.T) {
	inputs := []string{
		"Hello World", "  --x--  ", "A/B\\C", "Tabs\tand\nnewlines", "数字 123 和 ABC",
		"emoji 🚀 launch", "UPPER lower MiXeD", "already-a-slug", "__init__", "İstanbul",
		"ÀÉÎÕÜ", "multiple   spaces", "trailing-", "-leading", "a--b", "",
	}

	for _, in := range inputs {
		once := ToSlug(in)
		assert.Regexp(t, slugShape, once, "input %q", in)
		assert.Equal(t, once, ToSlug(once), "ToSlug must be idempotent for %q", in)
	}
}

func TestSlugOrDerive(t *testing.T) {
	assert.Equal(t, "custom-slug", SlugOrDerive("Custom Slug", "Ignored Title"))
	assert.Equal(t, "the-title", SlugOrDerive("   ", "The Title"))
	assert.Equal(t, "the-title", SlugOrDerive("", "The Title"))
}
