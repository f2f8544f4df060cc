package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-portfolio/internal/logging"
	"github.com/goliatone/go-portfolio/pkg/interfaces"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/microsoft/go-mssqldb"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mssqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"
)

// Option customises Open.
type Option func(*openOptions)

type openOptions struct {
	logger interfaces.Logger
}

// WithLogger routes connection diagnostics to logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(o *openOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Open connects to the configured database and verifies the connection
// with a ping. The memory driver returns ErrNoDatabase.
func Open(ctx context.Context, cfg Config, opts ...Option) (*bun.DB, error) {
	options := openOptions{logger: logging.NoOp()}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	driver := cfg.NormalizedDriver()
	dsn, err := cfg.DataSourceName()
	if err != nil {
		return nil, err
	}

	var (
		driverName string
		dialect    schema.Dialect
	)
	switch driver {
	case DriverPostgres:
		driverName, dialect = "postgres", pgdialect.New()
	case DriverSQLServer:
		driverName, dialect = "sqlserver", mssqldialect.New()
	case DriverSQLite:
		if err := ensureSQLiteDir(dsn); err != nil {
			return nil, err
		}
		driverName, dialect = "sqlite3", sqlitedialect.New()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.Driver)
	}

	sqlDB, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", driver, err)
	}

	maxOpen := cfg.MaxOpenConns
	if driver == DriverSQLite && maxOpen <= 0 {
		maxOpen = 1
	}
	if maxOpen > 0 {
		sqlDB.SetMaxOpenConns(maxOpen)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		options.logger.Error("storage.connect.failed", "driver", driver, "error", err)
		return nil, fmt.Errorf("storage: ping %s: %w", driver, err)
	}

	if driver == DriverSQLite {
		if _, err := sqlDB.ExecContext(ctx, `PRAGMA foreign_keys = ON;`); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("storage: sqlite pragmas: %w", err)
		}
	}

	options.logger.Info("storage.connected", "driver", driver)
	return bun.NewDB(sqlDB, dialect), nil
}

// ensureSQLiteDir creates the parent directory of a file backed sqlite DSN.
func ensureSQLiteDir(dsn string) error {
	path := strings.TrimPrefix(dsn, "file:")
	if idx := strings.IndexByte(path, '?'); idx >= 0 {
		path = path[:idx]
	}
	if path == "" || path == ":memory:" || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: create sqlite dir: %w", err)
	}
	return nil
}
