package portfolio

import (
	"net/http"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-portfolio/internal/di"
	"github.com/goliatone/go-portfolio/internal/markdown"
	"github.com/goliatone/go-portfolio/internal/media"
	"github.com/goliatone/go-portfolio/internal/projects"
	"github.com/goliatone/go-portfolio/internal/showcase"
	"github.com/goliatone/go-portfolio/pkg/interfaces"
)

// ProjectService exports the project service contract.
type ProjectService = projects.Service

// Project exports the stored project record.
type Project = projects.Project

// MarkdownService exports the Markdown renderer.
type MarkdownService = *markdown.Service

// ShowcaseService exports the card and detail view service.
type ShowcaseService = *showcase.Service

// UploadService exports the upload storage contract.
type UploadService = media.Service

// Option customises the container built by New.
type Option = di.Option

// WithLoggerProvider overrides the provider selected by logging.provider.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return di.WithLoggerProvider(provider)
}

// WithCronRegistrar hands scheduled commands to reg. Only used when
// commands.uploads_cleanup_schedule is set.
func WithCronRegistrar(reg func(command.HandlerConfig, any) error) Option {
	return di.WithCronRegistrar(reg)
}

// Module represents the top level portfolio runtime façade.
type Module struct {
	container *di.Container
	handler   http.Handler
}

// New constructs a portfolio module. Embedded migrations are applied when
// the configuration selects a SQL database with auto_migrate enabled.
func New(cfg Config, opts ...Option) (*Module, error) {
	all := append([]Option{di.WithMigrations(GetMigrationsFS())}, opts...)
	container, err := di.NewContainer(cfg, all...)
	if err != nil {
		return nil, err
	}
	handler, err := container.API().Handler()
	if err != nil {
		_ = container.Close()
		return nil, err
	}
	return &Module{container: container, handler: handler}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Projects returns the project service.
func (m *Module) Projects() ProjectService {
	return m.container.ProjectService()
}

// Markdown returns the Markdown renderer.
func (m *Module) Markdown() MarkdownService {
	return m.container.MarkdownService()
}

func (m *Module) Showcase() ShowcaseService {
	return m.container.ShowcaseService()
}

func (m *Module) Uploads() UploadService {
	return m.container.UploadService()
}

// Handler returns the HTTP handler serving the API, uploads and static site.
func (m *Module) Handler() http.Handler {
	return m.handler
}

// Close releases the database connection opened by New.
func (m *Module) Close() error {
	return m.container.Close()
}
