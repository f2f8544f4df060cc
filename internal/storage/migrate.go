package storage

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

type schemaMigration struct {
	bun.BaseModel `bun:"table:schema_migrations"`

	Version   string    `bun:"version,pk"`
	AppliedAt time.Time `bun:"applied_at,notnull"`
}

// DialectDir maps the database dialect to its migration directory.
func DialectDir(db *bun.DB) (string, error) {
	switch name := db.Dialect().Name(); name {
	case dialect.PG:
		return DriverPostgres, nil
	case dialect.MSSQL:
		return DriverSQLServer, nil
	case dialect.SQLite:
		return DriverSQLite, nil
	default:
		return "", fmt.Errorf("%w: dialect %s", ErrUnsupportedDriver, name)
	}
}

// Migrate applies every <dialect>/*.sql file of fsys that has not been
// recorded in schema_migrations, in lexical order. It returns the versions
// applied by this call.
func Migrate(ctx context.Context, db *bun.DB, fsys fs.FS) ([]string, error) {
	if db == nil {
		return nil, ErrNoDatabase
	}
	dir, err := DialectDir(db)
	if err != nil {
		return nil, err
	}

	files, err := fs.Glob(fsys, path.Join(dir, "*.sql"))
	if err != nil {
		return nil, fmt.Errorf("storage: list migrations: %w", err)
	}
	sort.Strings(files)

	if err := ensureMigrationsTable(ctx, db, dir); err != nil {
		return nil, err
	}

	var recorded []schemaMigration
	if err := db.NewSelect().Model(&recorded).Column("version").Scan(ctx); err != nil {
		return nil, fmt.Errorf("storage: read applied migrations: %w", err)
	}
	done := make(map[string]struct{}, len(recorded))
	for _, rec := range recorded {
		done[rec.Version] = struct{}{}
	}

	var applied []string
	for _, file := range files {
		version := strings.TrimSuffix(path.Base(file), ".sql")
		if _, ok := done[version]; ok {
			continue
		}
		script, err := fs.ReadFile(fsys, file)
		if err != nil {
			return applied, fmt.Errorf("storage: read migration %s: %w", file, err)
		}
		err = db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, string(script)); err != nil {
				return err
			}
			_, err := tx.NewInsert().Model(&schemaMigration{
				Version:   version,
				AppliedAt: time.Now().UTC(),
			}).Exec(ctx)
			return err
		})
		if err != nil {
			return applied, fmt.Errorf("storage: apply migration %s: %w", version, err)
		}
		applied = append(applied, version)
	}
	return applied, nil
}

func ensureMigrationsTable(ctx context.Context, db *bun.DB, dir string) error {
	ddl := `CREATE TABLE IF NOT EXISTS schema_migrations (
	version VARCHAR(255) NOT NULL PRIMARY KEY,
	applied_at TIMESTAMP NOT NULL
)`
	if dir == DriverSQLServer {
		ddl = `IF OBJECT_ID(N'schema_migrations', N'U') IS NULL
CREATE TABLE schema_migrations (
	version NVARCHAR(255) NOT NULL PRIMARY KEY,
	applied_at DATETIME2 NOT NULL
)`
	}
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("storage: create schema_migrations: %w", err)
	}
	return nil
}
