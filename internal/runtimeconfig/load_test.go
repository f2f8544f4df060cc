package runtimeconfig_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goliatone/go-portfolio/internal/runtimeconfig"
	"github.com/spf13/viper"
)

func envMap(values map[string]string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		value, ok := values[name]
		return value, ok
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := runtimeconfig.Load(viper.New(), runtimeconfig.LoadOptions{LookupEnv: envMap(nil)})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":3000" || cfg.Database.Driver != "memory" || cfg.Markdown.Engine != "legacy" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Fatalf("unexpected shutdown timeout %s", cfg.Server.ShutdownTimeout)
	}
	if len(cfg.Markdown.Extensions) != 1 || cfg.Markdown.Extensions[0] != "gfm" {
		t.Fatalf("unexpected extensions %v", cfg.Markdown.Extensions)
	}
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	file := filepath.Join(dir, "portfolio.yaml")
	yaml := []byte("server:\n  addr: \":8080\"\n  public_base_url: https://portfolio.example.com\nmarkdown:\n  engine: goldmark\nlogging:\n  level: debug\n")
	if err := os.WriteFile(file, yaml, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := runtimeconfig.Load(viper.New(), runtimeconfig.LoadOptions{
		LookupEnv: envMap(map[string]string{
			"PORTFOLIO_LOGGING_LEVEL":       "warn",
			"PORTFOLIO_SERVER_CORS_ORIGINS": "https://a.example.com, https://b.example.com",
			"PORT":                          "9000",
		}),
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":9000" {
		t.Fatalf("legacy PORT should win, got %q", cfg.Server.Addr)
	}
	if cfg.Server.PublicBaseURL != "https://portfolio.example.com" || cfg.Markdown.Engine != "goldmark" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Logging.Level != "warn" {
		t.Fatalf("env should override file, got %q", cfg.Logging.Level)
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "https://b.example.com" {
		t.Fatalf("unexpected cors origins %v", cfg.Server.CORSOrigins)
	}
}

func TestLoadLegacyDatabaseVariables(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := runtimeconfig.Load(viper.New(), runtimeconfig.LoadOptions{
		LookupEnv: envMap(map[string]string{"DATABASE_URL": "postgres://app@db/portfolio"}),
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Database.Driver != "postgres" || cfg.Database.DSN != "postgres://app@db/portfolio" {
		t.Fatalf("unexpected postgres settings %+v", cfg.Database)
	}

	cfg, err = runtimeconfig.Load(viper.New(), runtimeconfig.LoadOptions{
		LookupEnv: envMap(map[string]string{
			"DB_SERVER":   "sql.example.com",
			"DB_PORT":     "1444",
			"DB_USER":     "sa",
			"DB_PASSWORD": "Secret1",
			"DB_NAME":     "portfolio",
		}),
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	db := cfg.Database
	if db.Driver != "sqlserver" || db.Host != "sql.example.com" || db.Port != 1444 || db.User != "sa" || db.Password != "Secret1" || db.Name != "portfolio" || !db.TrustServerCertificate {
		t.Fatalf("unexpected sqlserver settings %+v", db)
	}
}

func TestLoadDotEnvFillsMissingVariables(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("PORT=4000\nPORTFOLIO_UPLOADS_DIR=media\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	cfg, err := runtimeconfig.Load(viper.New(), runtimeconfig.LoadOptions{
		LookupEnv: envMap(map[string]string{"PORT": "5000"}),
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":5000" {
		t.Fatalf("process env should beat .env, got %q", cfg.Server.Addr)
	}
	if cfg.Uploads.Dir != "media" {
		t.Fatalf("expected .env value, got %q", cfg.Uploads.Dir)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	chdir(t, t.TempDir())

	_, err := runtimeconfig.Load(viper.New(), runtimeconfig.LoadOptions{
		LookupEnv: envMap(map[string]string{"PORTFOLIO_DATABASE_DRIVER": "oracle"}),
	})
	if !errors.Is(err, runtimeconfig.ErrDatabaseDriverUnknown) {
		t.Fatalf("expected driver error, got %v", err)
	}

	_, err = runtimeconfig.Load(viper.New(), runtimeconfig.LoadOptions{ConfigFile: "missing.yaml", LookupEnv: envMap(nil)})
	if err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}
