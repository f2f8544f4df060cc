package interfaces

import "context"

// MarkdownParser converts raw Markdown bytes into HTML.
type MarkdownParser interface {
	Parse(markdown []byte) ([]byte, error)
	ParseWithOptions(markdown []byte, opts ParseOptions) ([]byte, error)
}

// ParseOptions customises parsing. Extensions and HardWraps only apply to
// engines that support them; SafeMode asks the engine to drop raw HTML.
type ParseOptions struct {
	Extensions []string `json:"extensions,omitempty"`
	HardWraps  bool     `json:"hard_wraps,omitempty"`
	SafeMode   bool     `json:"safe_mode,omitempty"`
}

// MarkdownRenderer is what HTTP handlers and the showcase builder depend on:
// it turns a stored description or a live-preview buffer into HTML and never
// fails.
type MarkdownRenderer interface {
	Render(ctx context.Context, source string) string
}
