package markdown

import (
	"context"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-portfolio/internal/logging"
	"github.com/goliatone/go-portfolio/pkg/interfaces"
)

const (
	EngineLegacy   = "legacy"
	EngineGoldmark = "goldmark"
)

// Config selects the rendering engine and post-processing.
type Config struct {
	Engine   string
	Sanitize bool
	Parser   interfaces.ParseOptions
}

// Service renders project descriptions and preview buffers. It satisfies
// interfaces.MarkdownRenderer.
type Service struct {
	engine   string
	parser   interfaces.MarkdownParser
	fallback interfaces.MarkdownParser
	policy   *bluemonday.Policy
	logger   interfaces.Logger
}

var _ interfaces.MarkdownRenderer = (*Service)(nil)

// ServiceOption customises a Service.
type ServiceOption func(*Service)

// WithLogger sets the logger used for render diagnostics.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithParser replaces the parser chosen by Config.Engine.
func WithParser(parser interfaces.MarkdownParser) ServiceOption {
	return func(s *Service) {
		if parser != nil {
			s.parser = parser
		}
	}
}

func NewService(cfg Config, opts ...ServiceOption) (*Service, error) {
	engine := strings.ToLower(strings.TrimSpace(cfg.Engine))
	if engine == "" {
		engine = EngineLegacy
	}

	svc := &Service{
		engine:   engine,
		fallback: LegacyParser{},
		logger:   logging.NoOp(),
	}

	switch engine {
	case EngineLegacy:
		svc.parser = LegacyParser{}
	case EngineGoldmark:
		svc.parser = NewGoldmarkParser(cfg.Parser)
	default:
		return nil, fmt.Errorf("markdown: unknown engine %q", cfg.Engine)
	}

	if cfg.Sanitize {
		svc.policy = bluemonday.UGCPolicy()
	}

	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc, nil
}

// Engine reports the configured engine name.
func (s *Service) Engine() string {
	return s.engine
}

// Render converts source to HTML. Parser failures fall back to the legacy
// renderer so callers always receive markup.
func (s *Service) Render(ctx context.Context, source string) string {
	if ctx.Err() != nil {
		return ""
	}

	out, err := s.parser.Parse([]byte(source))
	if err != nil {
		s.logger.WithContext(ctx).Warn("markdown.render.fallback", "engine", s.engine, "error", err)
		out, _ = s.fallback.Parse([]byte(source))
	}

	html := string(out)
	if s.policy != nil {
		html = s.policy.Sanitize(html)
	}
	s.logger.WithContext(ctx).Trace("markdown.render", "engine", s.engine, "input_bytes", len(source), "output_bytes", len(html))
	return html
}
