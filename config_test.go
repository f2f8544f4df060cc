package portfolio_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-portfolio"
)

func TestConfigValidateUnknownDriver(t *testing.T) {
	cfg := portfolio.DefaultConfig()
	cfg.Database.Driver = "oracle"
	if err := cfg.Validate(); !errors.Is(err, portfolio.ErrDatabaseDriverUnknown) {
		t.Fatalf("expected ErrDatabaseDriverUnknown, got %v", err)
	}
}

func TestConfigValidateUploadLimits(t *testing.T) {
	cfg := portfolio.DefaultConfig()
	cfg.Uploads.MaxAdditionalImages = 0
	if err := cfg.Validate(); !errors.Is(err, portfolio.ErrUploadLimitInvalid) {
		t.Fatalf("expected ErrUploadLimitInvalid, got %v", err)
	}
}

func TestConfigOptionsCoverDatabaseDriver(t *testing.T) {
	for _, opt := range portfolio.ConfigOptions() {
		if opt.Key == "database.driver" {
			if opt.Default != "memory" {
				t.Fatalf("expected memory default, got %v", opt.Default)
			}
			return
		}
	}
	t.Fatal("database.driver option missing")
}
