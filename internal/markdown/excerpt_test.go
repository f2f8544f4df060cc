package markdown

import (
	"strings"
	"testing"
)

func TestExcerpt(t *testing.T) {
	t.Parallel()

	words := strings.Repeat("word ", 30)
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: "Project description available..."},
		{name: "short text gets ellipsis", input: "Short summary", want: "Short summary..."},
		{name: "strips emphasis", input: "**Bold** intro with `code` and *style*", want: "Bold intro with code and style..."},
		{name: "strips headers and bullets", input: "## Overview\n- first\n* second", want: "Overview first second..."},
		{name: "collapses whitespace", input: "  a \r\n\t b  ", want: "a b..."},
		{name: "cuts on last space", input: words, want: strings.TrimSpace(strings.Repeat("word ", 16)) + "..."},
		{name: "hard cut without late space", input: strings.Repeat("x", 100), want: strings.Repeat("x", 80) + "..."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Excerpt(tc.input); got != tc.want {
				t.Fatalf("Excerpt(%q)\nwant: %q\ngot:  %q", tc.input, tc.want, got)
			}
		})
	}
}

func TestLooksLikeMarkdown(t *testing.T) {
	t.Parallel()

	cases := map[string]bool{
		"## Heading":         true,
		"list:\n- item":      true,
		"has **bold** text":  true,
		"inline `code`":      true,
		"plain sentence.":    false,
		"# single hash only": false,
		"":                   false,
	}
	for input, want := range cases {
		if got := LooksLikeMarkdown(input); got != want {
			t.Fatalf("LooksLikeMarkdown(%q) = %v, want %v", input, got, want)
		}
	}
}
