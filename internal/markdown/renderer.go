package markdown

import (
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"
)

// BlockKind classifies a single line of a document.
type BlockKind uint8

const (
	BlockText BlockKind = iota
	BlockHeader
	BlockListItem
)

func (k BlockKind) String() string {
	switch k {
	case BlockHeader:
		return "header"
	case BlockListItem:
		return "list_item"
	default:
		return "text"
	}
}

// Block is one line of a document after block-level classification. Level
// is 1-3 for headers and zero otherwise. Text excludes the block marker.
type Block struct {
	Kind  BlockKind
	Level int
	Text  string
}

var headerPrefixes = [...]struct {
	prefix string
	level  int
}{
	{"### ", 3},
	{"## ", 2},
	{"# ", 1},
}

// Tokenize splits doc into lines and classifies each one. Headers take
// precedence over list items; both need at least one character after the
// marker.
func Tokenize(doc string) []Block {
	doc = normalizeNewlines(doc)
	lines := strings.Split(doc, "\n")
	blocks := make([]Block, 0, len(lines))
	for _, line := range lines {
		blocks = append(blocks, classify(line))
	}
	return blocks
}

func classify(line string) Block {
	for _, h := range headerPrefixes {
		if rest, ok := strings.CutPrefix(line, h.prefix); ok && rest != "" {
			return Block{Kind: BlockHeader, Level: h.level, Text: rest}
		}
	}
	for _, marker := range []string{"- ", "* "} {
		if rest, ok := strings.CutPrefix(line, marker); ok && rest != "" {
			return Block{Kind: BlockListItem, Text: rest}
		}
	}
	return Block{Kind: BlockText, Text: line}
}

func normalizeNewlines(s string) string {
	if !strings.ContainsRune(s, '\r') {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

var (
	boldPattern   = regexp2.MustCompile(`\*\*(.+?)\*\*`, regexp2.None)
	italicPattern = regexp2.MustCompile(`(?<!\*)\*([^*]+)\*(?!\*)`, regexp2.None)
	codePattern   = regexp2.MustCompile("`([^`]+)`", regexp2.None)

	emptyParagraph      = regexp2.MustCompile(`<p>\s*</p>`, regexp2.None)
	breakBeforeHeader   = regexp2.MustCompile(`<br>(?=<h)`, regexp2.None)
	breakAfterHeaderEnd = regexp2.MustCompile(`(</h[1-6]>)<br>`, regexp2.None)
)

// Render converts the supported Markdown subset (headers, unordered lists,
// bold, italic, inline code, paragraphs and line breaks) into HTML. It never
// fails and is safe for concurrent use. Input is not escaped.
func Render(input string) string {
	if strings.TrimSpace(input) == "" {
		return ""
	}

	html := assemble(Tokenize(input))
	html = replace(boldPattern, html, "<strong>$1</strong>")
	html = replace(italicPattern, html, "<em>$1</em>")
	html = replace(codePattern, html, "<code>$1</code>")

	html = strings.ReplaceAll(html, "\n\n", "</p><p>")
	html = strings.ReplaceAll(html, "\n", "<br>")

	if !strings.Contains(html, "<h") && !strings.Contains(html, "<ul>") {
		html = "<p>" + html + "</p>"
	}
	return Cleanup(html)
}

// assemble emits headers and list runs as block markup and keeps text lines
// verbatim, joined by newlines. List runs separated only by whitespace lines
// collapse into a single <ul>.
func assemble(blocks []Block) string {
	parts := make([]string, 0, len(blocks))
	var items strings.Builder
	inList := false

	flush := func() {
		if inList {
			parts = append(parts, "<ul>"+items.String()+"</ul>")
			items.Reset()
			inList = false
		}
	}

	for i := 0; i < len(blocks); i++ {
		b := blocks[i]
		switch b.Kind {
		case BlockListItem:
			items.WriteString("<li>" + b.Text + "</li>")
			inList = true
		case BlockHeader:
			flush()
			level := strconv.Itoa(b.Level)
			parts = append(parts, "<h"+level+">"+b.Text+"</h"+level+">")
		default:
			if inList && strings.TrimSpace(b.Text) == "" {
				if next := nextNonBlank(blocks, i); next >= 0 && blocks[next].Kind == BlockListItem {
					i = next - 1
					continue
				}
			}
			flush()
			parts = append(parts, b.Text)
		}
	}
	flush()
	return strings.Join(parts, "\n")
}

func nextNonBlank(blocks []Block, from int) int {
	for j := from; j < len(blocks); j++ {
		if blocks[j].Kind != BlockText || strings.TrimSpace(blocks[j].Text) != "" {
			return j
		}
	}
	return -1
}

// Cleanup removes empty paragraphs and line breaks adjacent to headers. It
// repeats until nothing changes, so applying it twice equals applying it once.
func Cleanup(html string) string {
	for {
		next := strings.ReplaceAll(html, "<p></p>", "")
		next = replace(emptyParagraph, next, "")
		next = replace(breakBeforeHeader, next, "")
		next = replace(breakAfterHeaderEnd, next, "$1")
		if next == html {
			return next
		}
		html = next
	}
}

// replace never sees an error in practice: the patterns carry no match
// timeout, which is the only failure regexp2 reports.
func replace(re *regexp2.Regexp, input, replacement string) string {
	out, err := re.Replace(input, replacement, -1, -1)
	if err != nil {
		return input
	}
	return out
}
