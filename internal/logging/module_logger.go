package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-portfolio/pkg/interfaces"
)

const (
	rootModule     = "portfolio"
	projectsModule = "portfolio.projects"
	httpModule     = "portfolio.http"
	mediaModule    = "portfolio.media"
	markdownModule = "portfolio.markdown"
	storageModule  = "portfolio.storage"
)

const (
	fieldProjectID   = "project_id"
	fieldProjectSlug = "project_slug"
)

// ModuleLogger returns a logger scoped to module. Without a provider the
// result is a no-op logger. The module name is attached as the "module" field.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if strings.TrimSpace(module) == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// ProjectsLogger returns the logger used by the project service.
func ProjectsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, projectsModule)
}

// HTTPLogger returns the logger used by the HTTP adapters.
func HTTPLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, httpModule)
}

// MediaLogger returns the logger used by upload storage.
func MediaLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, mediaModule)
}

// MarkdownLogger returns the logger used by markdown rendering and imports.
func MarkdownLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, markdownModule)
}

// StorageLogger returns the logger used while opening and migrating databases.
func StorageLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, storageModule)
}

// WithProjectContext enriches logger with the project identifiers that are
// not empty.
func WithProjectContext(logger interfaces.Logger, id, slug string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(id); trimmed != "" {
		fields[fieldProjectID] = trimmed
	}
	if trimmed := strings.TrimSpace(slug); trimmed != "" {
		fields[fieldProjectSlug] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
