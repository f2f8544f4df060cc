package markdown

import (
	"strings"

	"github.com/dlclark/regexp2"
)

const (
	excerptLimit    = 80
	excerptMinBreak = 30
	excerptFallback = "Project description available..."
	excerptEllipsis = "..."
)

var (
	excerptBold    = regexp2.MustCompile(`\*\*(.*?)\*\*`, regexp2.None)
	excerptItalic  = regexp2.MustCompile(`\*(.*?)\*`, regexp2.None)
	excerptCode    = regexp2.MustCompile("`(.*?)`", regexp2.None)
	excerptHeader  = regexp2.MustCompile(`#{1,6}\s`, regexp2.None)
	excerptBullet  = regexp2.MustCompile(`^[-*]\s`, regexp2.Multiline)
	excerptSpacing = regexp2.MustCompile(`\s+`, regexp2.None)
)

// Excerpt reduces a Markdown description to a short plain-text teaser for
// project cards. Markers are stripped, whitespace collapsed, and text longer
// than 80 characters is cut at the last space past the 30th character. The
// result always ends with "...".
func Excerpt(text string) string {
	if text == "" {
		return excerptFallback
	}

	clean := normalizeNewlines(text)
	clean = replace(excerptBold, clean, "$1")
	clean = replace(excerptItalic, clean, "$1")
	clean = replace(excerptCode, clean, "$1")
	clean = replace(excerptHeader, clean, "")
	clean = replace(excerptBullet, clean, "")
	clean = strings.ReplaceAll(clean, "\n", " ")
	clean = strings.TrimSpace(replace(excerptSpacing, clean, " "))

	runes := []rune(clean)
	if len(runes) <= excerptLimit {
		return clean + excerptEllipsis
	}

	cut := string(runes[:excerptLimit])
	if idx := strings.LastIndex(cut, " "); idx >= 0 && len([]rune(cut[:idx])) > excerptMinBreak {
		cut = cut[:idx]
	}
	return cut + excerptEllipsis
}

// LooksLikeMarkdown reports whether text uses any construct worth rendering:
// a second-level header marker, a bullet, bold markers or a backtick.
func LooksLikeMarkdown(text string) bool {
	return strings.Contains(text, "##") ||
		strings.Contains(text, "- ") ||
		strings.Contains(text, "**") ||
		strings.Contains(text, "`")
}
