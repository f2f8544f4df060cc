package di

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"

	projectscmd "github.com/goliatone/go-portfolio/internal/commands/projects"
	portfoliohttp "github.com/goliatone/go-portfolio/internal/http"
	"github.com/goliatone/go-portfolio/internal/logging"
	"github.com/goliatone/go-portfolio/internal/logging/console"
	"github.com/goliatone/go-portfolio/internal/logging/gologger"
	"github.com/goliatone/go-portfolio/internal/markdown"
	"github.com/goliatone/go-portfolio/internal/media"
	"github.com/goliatone/go-portfolio/internal/projects"
	"github.com/goliatone/go-portfolio/internal/runtimeconfig"
	"github.com/goliatone/go-portfolio/internal/showcase"
	"github.com/goliatone/go-portfolio/internal/storage"
	"github.com/goliatone/go-portfolio/pkg/interfaces"
)

// Container wires module dependencies from a runtime configuration.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider

	bunDB      *bun.DB
	ownsDB     bool
	migrations fs.FS
	applied    []string

	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	projectRepo projects.ProjectRepository
	projectSvc  projects.Service
	markdownSvc *markdown.Service
	importer    *markdown.Importer
	uploadStore *media.LocalStore
	uploadSvc   media.Service
	showcaseSvc *showcase.Service
	api         *portfoliohttp.API

	commandRegistry projectscmd.CommandRegistry
	cronRegistrar   projectscmd.CronRegistrar
	commands        *projectscmd.HandlerSet
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the provider selected by logging.provider.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithBunDB uses db instead of opening one from the database config. The
// caller keeps ownership and Close leaves it open.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the repository cache.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithMigrations supplies the SQL migrations applied when
// database.auto_migrate is set. The tree holds one directory per dialect.
func WithMigrations(fsys fs.FS) Option {
	return func(c *Container) {
		c.migrations = fsys
	}
}

// WithProjectRepository overrides the repository chosen from the config.
func WithProjectRepository(repo projects.ProjectRepository) Option {
	return func(c *Container) {
		c.projectRepo = repo
	}
}

// WithCommandRegistry registers project command handlers with reg.
func WithCommandRegistry(reg projectscmd.CommandRegistry) Option {
	return func(c *Container) {
		c.commandRegistry = reg
	}
}

// WithCronRegistrar schedules the uploads cleanup when
// commands.uploads_cleanup_schedule is set.
func WithCronRegistrar(reg projectscmd.CronRegistrar) Option {
	return func(c *Container) {
		c.cronRegistrar = reg
	}
}

// NewContainer creates a container with the provided configuration.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{Config: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLoggerProvider(); err != nil {
		return nil, err
	}
	if err := c.configureStorage(context.Background()); err != nil {
		return nil, err
	}
	c.configureCacheDefaults()
	c.configureRepositories()
	if err := c.configureServices(); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.configureCommands(); err != nil {
		c.Close()
		return nil, err
	}
	c.configureAPI()
	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider != nil {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(c.Config.Logging.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     c.Config.Logging.Level,
			Format:    c.Config.Logging.Format,
			AddSource: c.Config.Logging.AddSource,
		})
		if err != nil {
			return fmt.Errorf("di: configure gologger: %w", err)
		}
		c.loggerProvider = provider
	default:
		opts := console.Options{}
		if level, ok := console.ParseLevel(c.Config.Logging.Level); ok {
			opts.MinLevel = &level
		}
		c.loggerProvider = console.NewProvider(opts)
	}
	return nil
}

func (c *Container) storageConfig() storage.Config {
	db := c.Config.Database
	return storage.Config{
		Driver:                 db.Driver,
		DSN:                    db.DSN,
		Host:                   db.Host,
		Port:                   db.Port,
		User:                   db.User,
		Password:               db.Password,
		Name:                   db.Name,
		SSLMode:                db.SSLMode,
		TrustServerCertificate: db.TrustServerCertificate,
		MaxOpenConns:           db.MaxOpenConns,
	}
}

func (c *Container) configureStorage(ctx context.Context) error {
	logger := logging.StorageLogger(c.loggerProvider)
	if c.bunDB == nil {
		db, err := storage.Open(ctx, c.storageConfig(), storage.WithLogger(logger))
		if errors.Is(err, storage.ErrNoDatabase) {
			logger.Info("storage.memory")
			return nil
		}
		if err != nil {
			return err
		}
		c.bunDB = db
		c.ownsDB = true
	}

	if !c.Config.Database.AutoMigrate || c.migrations == nil {
		return nil
	}
	applied, err := storage.Migrate(ctx, c.bunDB, c.migrations)
	if err != nil {
		c.Close()
		return err
	}
	c.applied = applied
	logger.Info("storage.migrations.applied", "count", len(applied))
	return nil
}

func (c *Container) configureCacheDefaults() {
	if !c.Config.Projects.Cache.Enabled {
		return
	}
	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.Config.Projects.Cache.TTL > 0 {
			cfg.TTL = c.Config.Projects.Cache.TTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err == nil {
			c.cacheService = service
		}
	}
	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureRepositories() {
	if c.projectRepo != nil {
		return
	}
	if c.bunDB != nil {
		c.projectRepo = projects.NewBunProjectRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		return
	}
	c.projectRepo = projects.NewMemoryProjectRepository()
}

func (c *Container) configureServices() error {
	cfg := c.Config

	c.projectSvc = projects.NewService(c.projectRepo,
		projects.WithLogger(logging.ProjectsLogger(c.loggerProvider)),
		projects.WithConfig(projects.Config{
			DefaultStatus:           cfg.Projects.DefaultStatus,
			RequireShortDescription: cfg.Projects.RequireShortDescription,
			ShortDescriptionLimit:   cfg.Projects.ShortDescriptionLimit,
		}),
	)

	markdownSvc, err := markdown.NewService(markdownConfig(cfg.Markdown),
		markdown.WithLogger(logging.MarkdownLogger(c.loggerProvider)),
	)
	if err != nil {
		return err
	}
	c.markdownSvc = markdownSvc
	c.importer = markdown.NewImporter(c.projectSvc, logging.MarkdownLogger(c.loggerProvider),
		markdown.WithShortDescriptionLimit(c.Config.Projects.ShortDescriptionLimit),
	)

	store, err := media.NewLocalStore(cfg.Uploads.Dir)
	if err != nil {
		return err
	}
	c.uploadStore = store
	c.uploadSvc = media.NewService(store,
		media.WithLimits(media.Limits{
			MaxFileSize:         cfg.Uploads.MaxFileSize,
			MaxAdditionalImages: cfg.Uploads.MaxAdditionalImages,
		}),
		media.WithLogger(logging.MediaLogger(c.loggerProvider)),
	)

	builder := showcase.NewBuilder(c.markdownSvc, showcase.WithBaseURL(cfg.Server.PublicBaseURL))
	c.showcaseSvc = showcase.NewService(c.projectSvc, builder)
	return nil
}

func (c *Container) configureCommands() error {
	opts := []projectscmd.Option{
		projectscmd.WithCleanupOptions(projectscmd.CleanupWithMinAge(c.Config.Commands.UploadsCleanupMinAge)),
	}
	schedule := strings.TrimSpace(c.Config.Commands.UploadsCleanupSchedule)
	if schedule != "" {
		opts = append(opts, projectscmd.WithCleanupOptions(projectscmd.CleanupWithCronExpression(schedule)))
	}

	set, err := projectscmd.RegisterProjectCommands(c.commandRegistry, projectscmd.Dependencies{
		Projects: c.projectSvc,
		Uploads:  c.uploadSvc,
		Importer: c.importer,
	}, c.loggerProvider, opts...)
	if err != nil {
		return err
	}
	c.commands = set

	if schedule != "" && c.cronRegistrar != nil {
		return projectscmd.RegisterCleanupCron(c.cronRegistrar, set.Cleanup)
	}
	return nil
}

func (c *Container) configureAPI() {
	c.api = portfoliohttp.NewAPI(
		portfoliohttp.WithProjectService(c.projectSvc),
		portfoliohttp.WithUploadService(c.uploadSvc),
		portfoliohttp.WithMarkdownRenderer(c.markdownSvc),
		portfoliohttp.WithShowcaseService(c.showcaseSvc),
		portfoliohttp.WithLogger(logging.HTTPLogger(c.loggerProvider)),
		portfoliohttp.WithStaticDir(c.Config.Server.StaticDir),
		portfoliohttp.WithCORSOrigins(c.Config.Server.CORSOrigins),
	)
}

// LoggerProvider exposes the configured logger provider.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// DB returns the database handle, nil for the memory driver.
func (c *Container) DB() *bun.DB {
	return c.bunDB
}

// AppliedMigrations lists migrations applied while the container started.
func (c *Container) AppliedMigrations() []string {
	return append([]string(nil), c.applied...)
}

// ProjectService returns the configured project service.
func (c *Container) ProjectService() projects.Service {
	return c.projectSvc
}

// MarkdownService returns the configured Markdown renderer.
func (c *Container) MarkdownService() *markdown.Service {
	return c.markdownSvc
}

// Importer returns the Markdown project importer.
func (c *Container) Importer() *markdown.Importer {
	return c.importer
}

// UploadService returns the upload service.
func (c *Container) UploadService() media.Service {
	return c.uploadSvc
}

// ShowcaseService returns the card and detail view service.
func (c *Container) ShowcaseService() *showcase.Service {
	return c.showcaseSvc
}

// API returns the HTTP API bound to the container services.
func (c *Container) API() *portfoliohttp.API {
	return c.api
}

// Commands returns the project command handlers.
func (c *Container) Commands() *projectscmd.HandlerSet {
	return c.commands
}

// Close releases the database when the container opened it.
func (c *Container) Close() error {
	if c == nil || c.bunDB == nil || !c.ownsDB {
		return nil
	}
	err := c.bunDB.Close()
	c.bunDB = nil
	c.ownsDB = false
	return err
}
