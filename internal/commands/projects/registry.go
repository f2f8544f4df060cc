package projectscmd

import (
	"context"
	"errors"

	"github.com/goliatone/go-portfolio/internal/commands"
	"github.com/goliatone/go-portfolio/pkg/interfaces"
	command "github.com/goliatone/go-command"
)

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CronRegistrar matches the function signature used by go-command registries.
type CronRegistrar func(command.HandlerConfig, any) error

// Dependencies are the services the project commands operate on.
type Dependencies struct {
	Projects interface {
		ProjectDeleter
		ReferenceLister
	}
	Uploads  UploadPruner
	Importer DirectoryImporter
}

// HandlerSet groups the handlers produced by RegisterProjectCommands.
type HandlerSet struct {
	Delete  *DeleteProjectHandler
	Import  *ImportProjectsHandler
	Cleanup *CleanupUploadsHandler
}

// Handlers lists the non-nil handlers in registration order.
func (s *HandlerSet) Handlers() []any {
	var handlers []any
	if s.Delete != nil {
		handlers = append(handlers, s.Delete)
	}
	if s.Import != nil {
		handlers = append(handlers, s.Import)
	}
	if s.Cleanup != nil {
		handlers = append(handlers, s.Cleanup)
	}
	return handlers
}

// Option customises handler wiring during registration.
type Option func(*options)

type options struct {
	deleteOpts  []commands.HandlerOption[DeleteProjectCommand]
	importOpts  []ImportOption
	cleanupOpts []CleanupOption
}

// WithDeleteHandlerOptions forwards options to the delete handler.
func WithDeleteHandlerOptions(opts ...commands.HandlerOption[DeleteProjectCommand]) Option {
	return func(cfg *options) {
		cfg.deleteOpts = append(cfg.deleteOpts, opts...)
	}
}

// WithImportOptions forwards options to the import handler.
func WithImportOptions(opts ...ImportOption) Option {
	return func(cfg *options) {
		cfg.importOpts = append(cfg.importOpts, opts...)
	}
}

// WithCleanupOptions forwards options to the cleanup handler.
func WithCleanupOptions(opts ...CleanupOption) Option {
	return func(cfg *options) {
		cfg.cleanupOpts = append(cfg.cleanupOpts, opts...)
	}
}

// RegisterProjectCommands builds the project handlers and registers them
// with reg when it is not nil. The import and cleanup handlers are only
// built when their dependencies are present.
func RegisterProjectCommands(reg CommandRegistry, deps Dependencies, provider interfaces.LoggerProvider, opts ...Option) (*HandlerSet, error) {
	if deps.Projects == nil {
		return nil, errors.New("project command registration: project service is nil")
	}

	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	set := &HandlerSet{
		Delete: NewDeleteProjectHandler(deps.Projects, commands.CommandLogger(provider, "projects"), cfg.deleteOpts...),
	}
	if deps.Importer != nil {
		set.Import = NewImportProjectsHandler(deps.Importer, commands.CommandLogger(provider, "projects"), cfg.importOpts...)
	}
	if deps.Uploads != nil {
		set.Cleanup = NewCleanupUploadsHandler(deps.Projects, deps.Uploads, commands.CommandLogger(provider, "uploads"), cfg.cleanupOpts...)
	}

	if reg != nil {
		for _, handler := range set.Handlers() {
			if err := reg.RegisterCommand(handler); err != nil {
				return nil, err
			}
		}
	}
	return set, nil
}

// RegisterCleanupCron schedules handler with reg using the handler's own
// cron options.
func RegisterCleanupCron(reg CronRegistrar, handler *CleanupUploadsHandler) error {
	if reg == nil || handler == nil {
		return nil
	}
	return reg(handler.CronOptions(), func() error {
		return handler.Execute(context.Background(), CleanupUploadsCommand{})
	})
}
