package runtimeconfig

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// PORTFOLIO_DATABASE_DRIVER for database.driver.
const EnvPrefix = "portfolio"

// Option documents one configuration key and its default.
type Option struct {
	Key     string
	Default any
	Comment string
}

// Options lists every configuration key with its default value.
func Options() []Option {
	d := DefaultConfig()
	return []Option{
		{Key: "server.addr", Default: d.Server.Addr, Comment: "HTTP listen address"},
		{Key: "server.static_dir", Default: d.Server.StaticDir, Comment: "Directory served at / (empty disables)"},
		{Key: "server.public_base_url", Default: d.Server.PublicBaseURL, Comment: "Origin joined onto relative media paths"},
		{Key: "server.cors_origins", Default: d.Server.CORSOrigins, Comment: "Allowed CORS origins"},
		{Key: "server.shutdown_timeout", Default: d.Server.ShutdownTimeout, Comment: "Graceful shutdown budget"},

		{Key: "database.driver", Default: d.Database.Driver, Comment: "memory, postgres, sqlserver or sqlite"},
		{Key: "database.dsn", Default: d.Database.DSN, Comment: "Driver specific connection string"},
		{Key: "database.host", Default: d.Database.Host, Comment: "Database host when no DSN is given"},
		{Key: "database.port", Default: d.Database.Port, Comment: "Database port (driver default when zero)"},
		{Key: "database.user", Default: d.Database.User, Comment: "Database user"},
		{Key: "database.password", Default: d.Database.Password, Comment: "Database password"},
		{Key: "database.name", Default: d.Database.Name, Comment: "Database name"},
		{Key: "database.ssl_mode", Default: d.Database.SSLMode, Comment: "PostgreSQL sslmode"},
		{Key: "database.trust_server_certificate", Default: d.Database.TrustServerCertificate, Comment: "SQL Server TrustServerCertificate"},
		{Key: "database.auto_migrate", Default: d.Database.AutoMigrate, Comment: "Apply migrations on start-up"},
		{Key: "database.max_open_conns", Default: d.Database.MaxOpenConns, Comment: "Connection pool size (0 keeps driver default)"},

		{Key: "uploads.dir", Default: d.Uploads.Dir, Comment: "Directory uploaded media is written to"},
		{Key: "uploads.max_file_size", Default: d.Uploads.MaxFileSize, Comment: "Per-file upload limit in bytes"},
		{Key: "uploads.max_additional_images", Default: d.Uploads.MaxAdditionalImages, Comment: "Gallery images accepted per request"},

		{Key: "projects.default_status", Default: d.Projects.DefaultStatus, Comment: "Status given to new projects"},
		{Key: "projects.require_short_description", Default: d.Projects.RequireShortDescription, Comment: "Reject projects without a short description"},
		{Key: "projects.short_description_limit", Default: d.Projects.ShortDescriptionLimit, Comment: "Short descriptions are truncated past this length"},
		{Key: "projects.cache.enabled", Default: d.Projects.Cache.Enabled, Comment: "Cache repository reads"},
		{Key: "projects.cache.ttl", Default: d.Projects.Cache.TTL, Comment: "Repository cache TTL"},

		{Key: "markdown.engine", Default: d.Markdown.Engine, Comment: "legacy or goldmark"},
		{Key: "markdown.sanitize", Default: d.Markdown.Sanitize, Comment: "Sanitize rendered HTML"},
		{Key: "markdown.hard_wraps", Default: d.Markdown.HardWraps, Comment: "Goldmark hard wraps"},
		{Key: "markdown.extensions", Default: d.Markdown.Extensions, Comment: "Goldmark extensions"},

		{Key: "logging.provider", Default: d.Logging.Provider, Comment: "console or gologger"},
		{Key: "logging.level", Default: d.Logging.Level, Comment: "Minimum log level"},
		{Key: "logging.format", Default: d.Logging.Format, Comment: "gologger format: json, console or pretty"},
		{Key: "logging.add_source", Default: d.Logging.AddSource, Comment: "gologger source locations"},

		{Key: "commands.uploads_cleanup_schedule", Default: d.Commands.UploadsCleanupSchedule, Comment: "Cron expression for upload cleanup (empty disables)"},
		{Key: "commands.uploads_cleanup_min_age", Default: d.Commands.UploadsCleanupMinAge, Comment: "Uploads younger than this survive cleanup"},
	}
}

// LoadOptions tunes Load. Zero values search for portfolio.{yaml,toml,json}
// and .env in the working directory and read the process environment.
type LoadOptions struct {
	ConfigFile string
	DotEnvFile string
	LookupEnv  func(string) (string, bool)
}

// Load resolves configuration with precedence: defaults < config file <
// PORTFOLIO_* environment < legacy deployment variables (PORT,
// DATABASE_URL, DB_SERVER, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME).
// A .env file only fills variables missing from the environment.
func Load(v *viper.Viper, opts LoadOptions) (Config, error) {
	if v == nil {
		v = viper.New()
	}

	for _, option := range Options() {
		v.SetDefault(option.Key, option.Default)
	}

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("portfolio config: read %s: %w", opts.ConfigFile, err)
		}
	} else {
		v.SetConfigName("portfolio")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("portfolio config: %w", err)
			}
		}
	}

	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	dotenv, err := readDotEnv(opts.DotEnvFile)
	if err != nil {
		return Config{}, err
	}
	env := func(name string) (string, bool) {
		if value, ok := lookup(name); ok {
			return value, true
		}
		value, ok := dotenv[strings.ToLower(name)]
		return value, ok
	}

	prefix := strings.ToUpper(EnvPrefix) + "_"
	replacer := strings.NewReplacer(".", "_")
	for _, option := range Options() {
		name := prefix + strings.ToUpper(replacer.Replace(option.Key))
		if value, ok := env(name); ok {
			v.Set(option.Key, value)
		}
	}

	applyLegacyEnv(v, env)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("portfolio config: decode: %w", err)
	}
	cfg.Server.CORSOrigins = splitList(cfg.Server.CORSOrigins)
	cfg.Markdown.Extensions = splitList(cfg.Markdown.Extensions)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyLegacyEnv(v *viper.Viper, env func(string) (string, bool)) {
	get := func(name string) string {
		value, _ := env(name)
		return strings.TrimSpace(value)
	}

	if port := get("PORT"); port != "" {
		v.Set("server.addr", ":"+port)
	}
	if url := get("DATABASE_URL"); url != "" {
		v.Set("database.driver", "postgres")
		v.Set("database.dsn", url)
	}
	if server := get("DB_SERVER"); server != "" {
		v.Set("database.driver", "sqlserver")
		v.Set("database.dsn", "")
		v.Set("database.host", server)
		v.Set("database.trust_server_certificate", true)
	}
	if port := get("DB_PORT"); port != "" {
		v.Set("database.port", port)
	}
	if user := get("DB_USER"); user != "" {
		v.Set("database.user", user)
	}
	if password, ok := env("DB_PASSWORD"); ok {
		v.Set("database.password", password)
	}
	if name := get("DB_NAME"); name != "" {
		v.Set("database.name", name)
	}
}

// readDotEnv parses path (default ".env") when it exists. Keys are
// lower-cased.
func readDotEnv(path string) (map[string]string, error) {
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("portfolio config: dotenv %s: %w", path, err)
	}

	dv := viper.New()
	dv.SetConfigFile(path)
	dv.SetConfigType("env")
	if err := dv.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("portfolio config: dotenv %s: %w", path, err)
	}
	values := make(map[string]string, len(dv.AllKeys()))
	for _, key := range dv.AllKeys() {
		values[strings.ToLower(key)] = dv.GetString(key)
	}
	return values, nil
}

// splitList flattens comma separated entries, which is what a single
// environment variable produces.
func splitList(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
