package projectscmd

import (
	"context"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/goliatone/go-portfolio/internal/commands"
	"github.com/goliatone/go-portfolio/internal/logging"
	"github.com/goliatone/go-portfolio/internal/markdown"
	"github.com/goliatone/go-portfolio/internal/media"
	"github.com/goliatone/go-portfolio/pkg/interfaces"
	command "github.com/goliatone/go-command"
	"github.com/google/uuid"
)

const (
	deleteOperation  = "projects.delete"
	importOperation  = "projects.import"
	cleanupOperation = "uploads.cleanup"
)

// ProjectDeleter removes project records.
type ProjectDeleter interface {
	Delete(ctx context.Context, id uuid.UUID) error
}

// ReferenceLister reports every media path still referenced by a project.
type ReferenceLister interface {
	ReferencedPaths(ctx context.Context) ([]string, error)
}

// UploadPruner removes stored uploads outside a keep set.
type UploadPruner interface {
	Prune(ctx context.Context, keep []string, opts media.PruneOptions) (media.PruneResult, error)
}

// DirectoryImporter imports project documents from a directory tree.
type DirectoryImporter interface {
	ImportDirectory(ctx context.Context, fsys fs.FS, dir string, opts markdown.ImportOptions) (*markdown.ImportResult, error)
}

var (
	_ command.Commander[DeleteProjectCommand]  = (*DeleteProjectHandler)(nil)
	_ command.Commander[ImportProjectsCommand] = (*ImportProjectsHandler)(nil)
	_ command.Commander[CleanupUploadsCommand] = (*CleanupUploadsHandler)(nil)
	_ command.CronCommand                      = (*CleanupUploadsHandler)(nil)
)

// DeleteProjectHandler deletes projects through the shared handler foundation.
type DeleteProjectHandler struct {
	inner *commands.Handler[DeleteProjectCommand]
}

// NewDeleteProjectHandler binds the handler to service.
func NewDeleteProjectHandler(service ProjectDeleter, logger interfaces.Logger, opts ...commands.HandlerOption[DeleteProjectCommand]) *DeleteProjectHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg DeleteProjectCommand) error {
		return service.Delete(ctx, msg.ID)
	}

	handlerOpts := []commands.HandlerOption[DeleteProjectCommand]{
		commands.WithLogger[DeleteProjectCommand](baseLogger),
		commands.WithOperation[DeleteProjectCommand](deleteOperation),
		commands.WithMessageFields(func(msg DeleteProjectCommand) map[string]any {
			return map[string]any{"project_id": msg.ID.String()}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[DeleteProjectCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &DeleteProjectHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[DeleteProjectCommand].
func (h *DeleteProjectHandler) Execute(ctx context.Context, msg DeleteProjectCommand) error {
	return h.inner.Execute(ctx, msg)
}

// ImportProjectsHandler imports front matter documents into the project service.
type ImportProjectsHandler struct {
	inner *commands.Handler[ImportProjectsCommand]
}

// ImportOption customises the import handler.
type ImportOption func(*importConfig)

type importConfig struct {
	openFS      func(dir string) fs.FS
	handlerOpts []commands.HandlerOption[ImportProjectsCommand]
}

// WithFileSystem replaces os.DirFS as the way directories are opened.
func WithFileSystem(open func(dir string) fs.FS) ImportOption {
	return func(cfg *importConfig) {
		if open != nil {
			cfg.openFS = open
		}
	}
}

// WithImportHandlerOptions forwards options to the shared handler.
func WithImportHandlerOptions(opts ...commands.HandlerOption[ImportProjectsCommand]) ImportOption {
	return func(cfg *importConfig) {
		cfg.handlerOpts = append(cfg.handlerOpts, opts...)
	}
}

// NewImportProjectsHandler binds the handler to importer.
func NewImportProjectsHandler(importer DirectoryImporter, logger interfaces.Logger, opts ...ImportOption) *ImportProjectsHandler {
	baseLogger := commands.EnsureLogger(logger)
	cfg := importConfig{openFS: os.DirFS}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	exec := func(ctx context.Context, msg ImportProjectsCommand) error {
		result, err := importer.ImportDirectory(ctx, cfg.openFS(strings.TrimSpace(msg.Directory)), ".", markdown.ImportOptions{
			LoadOptions: markdown.LoadOptions{
				Pattern:   msg.Pattern,
				Recursive: msg.Recursive,
			},
			DryRun: msg.DryRun,
		})
		if result == nil {
			return err
		}
		if msg.Result != nil {
			*msg.Result = *result
		}
		logging.WithFields(baseLogger, map[string]any{
			"created_count": len(result.Created),
			"updated_count": len(result.Updated),
			"skipped_count": len(result.Skipped),
			"error_count":   len(result.Errors),
			"dry_run":       msg.DryRun,
		}).Info("projects.command.import.completed")
		return result.Err()
	}

	handlerOpts := []commands.HandlerOption[ImportProjectsCommand]{
		commands.WithLogger[ImportProjectsCommand](baseLogger),
		commands.WithOperation[ImportProjectsCommand](importOperation),
		commands.WithMessageFields(func(msg ImportProjectsCommand) map[string]any {
			fields := map[string]any{"directory": msg.Directory}
			if msg.DryRun {
				fields["dry_run"] = true
			}
			if msg.Recursive {
				fields["recursive"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[ImportProjectsCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, cfg.handlerOpts...)

	return &ImportProjectsHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[ImportProjectsCommand].
func (h *ImportProjectsHandler) Execute(ctx context.Context, msg ImportProjectsCommand) error {
	return h.inner.Execute(ctx, msg)
}

// CleanupOption customises the upload cleanup handler.
type CleanupOption func(*cleanupConfig)

type cleanupConfig struct {
	cronConfig command.HandlerConfig
	timeout    time.Duration
	minAge     time.Duration
}

// DefaultCleanupMinAge is how old an unreferenced upload must be before
// cleanup removes it.
const DefaultCleanupMinAge = time.Hour

// CleanupWithCronExpression overrides the schedule used when the handler is
// registered with a cron runner.
func CleanupWithCronExpression(expression string) CleanupOption {
	return func(cfg *cleanupConfig) {
		if trimmed := strings.TrimSpace(expression); trimmed != "" {
			cfg.cronConfig.Expression = trimmed
		}
	}
}

// CleanupWithMinAge overrides DefaultCleanupMinAge. Negative values are
// ignored; zero removes unreferenced files regardless of age.
func CleanupWithMinAge(age time.Duration) CleanupOption {
	return func(cfg *cleanupConfig) {
		if age >= 0 {
			cfg.minAge = age
		}
	}
}

// CleanupWithTimeout overrides the default execution timeout.
func CleanupWithTimeout(timeout time.Duration) CleanupOption {
	return func(cfg *cleanupConfig) {
		cfg.timeout = timeout
	}
}

// CleanupUploadsHandler removes upload files that no project references.
type CleanupUploadsHandler struct {
	references ReferenceLister
	pruner     UploadPruner
	logger     interfaces.Logger
	cronConfig command.HandlerConfig
	timeout    time.Duration
	minAge     time.Duration
}

// NewCleanupUploadsHandler wires the reference source and the upload store.
func NewCleanupUploadsHandler(references ReferenceLister, pruner UploadPruner, logger interfaces.Logger, opts ...CleanupOption) *CleanupUploadsHandler {
	cfg := cleanupConfig{
		cronConfig: command.HandlerConfig{Expression: "@daily"},
		timeout:    commands.DefaultCommandTimeout,
		minAge:     DefaultCleanupMinAge,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &CleanupUploadsHandler{
		references: references,
		pruner:     pruner,
		logger:     commands.EnsureLogger(logger),
		cronConfig: cfg.cronConfig,
		timeout:    cfg.timeout,
		minAge:     cfg.minAge,
	}
}

// Execute satisfies command.Commander[CleanupUploadsCommand].
func (h *CleanupUploadsHandler) Execute(ctx context.Context, msg CleanupUploadsCommand) error {
	if err := commands.WrapValidationError(command.ValidateMessage(msg)); err != nil {
		return err
	}
	ctx = commands.EnsureContext(ctx)
	ctx, cancel := commands.WithCommandTimeout(ctx, h.timeout)
	defer cancel()

	if err := ctx.Err(); err != nil {
		return commands.WrapContextError(err)
	}

	minAge := h.minAge
	if msg.MinAge != nil {
		minAge = *msg.MinAge
	}

	logger := logging.WithFields(h.logger, map[string]any{
		"operation": cleanupOperation,
		"dry_run":   msg.DryRun,
		"min_age":   minAge.String(),
	})

	keep, err := h.references.ReferencedPaths(ctx)
	if err != nil {
		logger.Error("uploads.command.cleanup.references_failed", "error", err)
		return commands.WrapExecuteError(err)
	}

	result, err := h.pruner.Prune(ctx, keep, media.PruneOptions{DryRun: msg.DryRun, MinAge: minAge})
	if err != nil {
		logger.Error("uploads.command.cleanup.failed", "error", err)
		return commands.WrapExecuteError(err)
	}
	if msg.Result != nil {
		*msg.Result = result
	}

	logger.Info("uploads.command.cleanup.completed", "removed", len(result.Removed), "kept", result.Kept, "recent", result.Recent)
	return nil
}

// CronHandler satisfies command.CronCommand.
func (h *CleanupUploadsHandler) CronHandler() func() error {
	return func() error {
		return h.Execute(context.Background(), CleanupUploadsCommand{})
	}
}

// CronOptions satisfies command.CronCommand.
func (h *CleanupUploadsHandler) CronOptions() command.HandlerConfig {
	return h.cronConfig
}

// CLIHandler exposes the cleanup handler to CLI integrations.
func (h *CleanupUploadsHandler) CLIHandler() any {
	return h
}

// CLIOptions describes the CLI metadata for upload cleanup.
func (h *CleanupUploadsHandler) CLIOptions() command.CLIConfig {
	return command.CLIConfig{
		Path:        []string{"uploads", "cleanup"},
		Group:       "uploads",
		Description: "Remove uploaded files no project references; supports dry-run",
	}
}
