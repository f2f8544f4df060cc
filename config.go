package portfolio

import (
	"github.com/goliatone/go-portfolio/internal/runtimeconfig"
	"github.com/spf13/viper"
)

var (
	ErrLoggingProviderUnknown       = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid          = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid         = runtimeconfig.ErrLoggingFormatInvalid
	ErrDatabaseDriverUnknown        = runtimeconfig.ErrDatabaseDriverUnknown
	ErrMarkdownEngineUnknown        = runtimeconfig.ErrMarkdownEngineUnknown
	ErrUploadDirRequired            = runtimeconfig.ErrUploadDirRequired
	ErrUploadLimitInvalid           = runtimeconfig.ErrUploadLimitInvalid
	ErrShortDescriptionLimitInvalid = runtimeconfig.ErrShortDescriptionLimitInvalid
	ErrDefaultStatusInvalid         = runtimeconfig.ErrDefaultStatusInvalid
	ErrServerAddrRequired           = runtimeconfig.ErrServerAddrRequired
	ErrCleanupMinAgeInvalid         = runtimeconfig.ErrCleanupMinAgeInvalid
)

type (
	Config         = runtimeconfig.Config
	ServerConfig   = runtimeconfig.ServerConfig
	DatabaseConfig = runtimeconfig.DatabaseConfig
	UploadsConfig  = runtimeconfig.UploadsConfig
	ProjectsConfig = runtimeconfig.ProjectsConfig
	CacheConfig    = runtimeconfig.CacheConfig
	MarkdownConfig = runtimeconfig.MarkdownConfig
	LoggingConfig  = runtimeconfig.LoggingConfig
	CommandsConfig = runtimeconfig.CommandsConfig
	ConfigOption   = runtimeconfig.Option
	LoadOptions    = runtimeconfig.LoadOptions
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig resolves configuration from defaults, an optional config file,
// PORTFOLIO_* environment variables and the legacy PORT/DATABASE_URL/DB_* names.
func LoadConfig(v *viper.Viper, opts LoadOptions) (Config, error) {
	return runtimeconfig.Load(v, opts)
}

// ConfigOptions lists every recognised configuration key with its default.
func ConfigOptions() []ConfigOption {
	return runtimeconfig.Options()
}
