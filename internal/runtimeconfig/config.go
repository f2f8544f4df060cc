package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrLoggingProviderUnknown       = errors.New("portfolio config: logging provider is invalid")
	ErrLoggingLevelInvalid          = errors.New("portfolio config: logging level is invalid")
	ErrLoggingFormatInvalid         = errors.New("portfolio config: logging format is invalid")
	ErrDatabaseDriverUnknown        = errors.New("portfolio config: database driver is invalid")
	ErrMarkdownEngineUnknown        = errors.New("portfolio config: markdown engine is invalid")
	ErrUploadDirRequired            = errors.New("portfolio config: uploads directory is required")
	ErrUploadLimitInvalid           = errors.New("portfolio config: upload limits must be positive")
	ErrShortDescriptionLimitInvalid = errors.New("portfolio config: short description limit must be between 4 and 1000")
	ErrDefaultStatusInvalid         = errors.New("portfolio config: default project status is invalid")
	ErrServerAddrRequired           = errors.New("portfolio config: server address is required")
	ErrCleanupMinAgeInvalid         = errors.New("portfolio config: uploads cleanup min age must not be negative")
)

// Config aggregates every runtime setting of the portfolio service.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Uploads  UploadsConfig  `mapstructure:"uploads"`
	Projects ProjectsConfig `mapstructure:"projects"`
	Markdown MarkdownConfig `mapstructure:"markdown"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Commands CommandsConfig `mapstructure:"commands"`
}

// ServerConfig configures the HTTP listener and static file serving.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	StaticDir       string        `mapstructure:"static_dir"`
	PublicBaseURL   string        `mapstructure:"public_base_url"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig selects the project store.
type DatabaseConfig struct {
	Driver                 string `mapstructure:"driver"`
	DSN                    string `mapstructure:"dsn"`
	Host                   string `mapstructure:"host"`
	Port                   int    `mapstructure:"port"`
	User                   string `mapstructure:"user"`
	Password               string `mapstructure:"password"`
	Name                   string `mapstructure:"name"`
	SSLMode                string `mapstructure:"ssl_mode"`
	TrustServerCertificate bool   `mapstructure:"trust_server_certificate"`
	AutoMigrate            bool   `mapstructure:"auto_migrate"`
	MaxOpenConns           int    `mapstructure:"max_open_conns"`
}

// UploadsConfig bounds and locates uploaded media.
type UploadsConfig struct {
	Dir                 string `mapstructure:"dir"`
	MaxFileSize         int64  `mapstructure:"max_file_size"`
	MaxAdditionalImages int    `mapstructure:"max_additional_images"`
}

// ProjectsConfig holds project validation rules and repository caching.
type ProjectsConfig struct {
	DefaultStatus           string      `mapstructure:"default_status"`
	RequireShortDescription bool        `mapstructure:"require_short_description"`
	ShortDescriptionLimit   int         `mapstructure:"short_description_limit"`
	Cache                   CacheConfig `mapstructure:"cache"`
}

// CacheConfig captures cache behaviour toggles.
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// MarkdownConfig selects the description renderer.
type MarkdownConfig struct {
	Engine     string   `mapstructure:"engine"`
	Sanitize   bool     `mapstructure:"sanitize"`
	HardWraps  bool     `mapstructure:"hard_wraps"`
	Extensions []string `mapstructure:"extensions"`
}

// LoggingConfig selects and tunes the logger provider.
type LoggingConfig struct {
	Provider  string `mapstructure:"provider"`
	Level     string `mapstructure:"level"`
	Format    string `mapstructure:"format"`
	AddSource bool   `mapstructure:"add_source"`
}

// MaxShortDescriptionLimit is the width of the short_description column in
// the bundled migrations.
const MaxShortDescriptionLimit = 1000

// CommandsConfig controls scheduled command execution. An empty schedule
// disables the job. Cleanup leaves uploads younger than
// UploadsCleanupMinAge alone.
type CommandsConfig struct {
	UploadsCleanupSchedule string        `mapstructure:"uploads_cleanup_schedule"`
	UploadsCleanupMinAge   time.Duration `mapstructure:"uploads_cleanup_min_age"`
}

// DefaultConfig returns the configuration used when nothing is overridden:
// an in-memory store, the legacy renderer and console logging.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":3000",
			StaticDir:       "public",
			CORSOrigins:     []string{"*"},
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:      "memory",
			SSLMode:     "require",
			AutoMigrate: true,
		},
		Uploads: UploadsConfig{
			Dir:                 "uploads",
			MaxFileSize:         50 << 20,
			MaxAdditionalImages: 10,
		},
		Projects: ProjectsConfig{
			DefaultStatus:           "active",
			RequireShortDescription: true,
			ShortDescriptionLimit:   1000,
			Cache: CacheConfig{
				Enabled: false,
				TTL:     time.Minute,
			},
		},
		Markdown: MarkdownConfig{
			Engine:     "legacy",
			Extensions: []string{"gfm"},
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
		Commands: CommandsConfig{
			UploadsCleanupMinAge: time.Hour,
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return ErrServerAddrRequired
	}
	if driver := normalize(cfg.Database.Driver); !isSupportedDriver(driver) {
		return fmt.Errorf("%w: %s", ErrDatabaseDriverUnknown, cfg.Database.Driver)
	}
	if strings.TrimSpace(cfg.Uploads.Dir) == "" {
		return ErrUploadDirRequired
	}
	if cfg.Uploads.MaxFileSize <= 0 || cfg.Uploads.MaxAdditionalImages <= 0 {
		return ErrUploadLimitInvalid
	}
	if cfg.Projects.ShortDescriptionLimit <= 3 || cfg.Projects.ShortDescriptionLimit > MaxShortDescriptionLimit {
		return ErrShortDescriptionLimitInvalid
	}
	switch normalize(cfg.Projects.DefaultStatus) {
	case "active", "completed", "archived":
	default:
		return fmt.Errorf("%w: %s", ErrDefaultStatusInvalid, cfg.Projects.DefaultStatus)
	}
	switch normalize(cfg.Markdown.Engine) {
	case "", "legacy", "goldmark":
	default:
		return fmt.Errorf("%w: %s", ErrMarkdownEngineUnknown, cfg.Markdown.Engine)
	}

	if cfg.Commands.UploadsCleanupMinAge < 0 {
		return ErrCleanupMinAgeInvalid
	}

	provider := normalize(cfg.Logging.Provider)
	if !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedDriver(driver string) bool {
	switch driver {
	case "", "memory", "postgres", "postgresql", "pg", "sqlserver", "mssql", "sqlite", "sqlite3":
		return true
	default:
		return false
	}
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "", "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch normalize(level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch normalize(format) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
