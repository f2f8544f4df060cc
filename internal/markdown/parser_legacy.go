package markdown

import "github.com/goliatone/go-portfolio/pkg/interfaces"

// LegacyParser exposes Render through interfaces.MarkdownParser. Options are
// ignored: the dialect has no extensions and never emits raw HTML of its own.
type LegacyParser struct{}

var _ interfaces.MarkdownParser = LegacyParser{}

func (LegacyParser) Parse(markdown []byte) ([]byte, error) {
	return []byte(Render(string(markdown))), nil
}

func (p LegacyParser) ParseWithOptions(markdown []byte, _ interfaces.ParseOptions) ([]byte, error) {
	return p.Parse(markdown)
}
