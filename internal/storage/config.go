package storage

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

const (
	DriverPostgres  = "postgres"
	DriverSQLServer = "sqlserver"
	DriverSQLite    = "sqlite"
	DriverMemory    = "memory"
)

const (
	defaultPostgresPort  = 5432
	defaultSQLServerPort = 1433
	defaultSSLMode       = "require"
	defaultSQLiteDSN     = "file:portfolio.db?cache=shared"
)

var (
	ErrUnsupportedDriver = errors.New("storage: unsupported database driver")
	ErrNoDatabase        = errors.New("storage: memory driver has no database")
	ErrMissingHost       = errors.New("storage: database host is required")
)

// Config selects and addresses the database. DSN wins over the discrete
// connection fields when both are present.
type Config struct {
	Driver                 string
	DSN                    string
	Host                   string
	Port                   int
	User                   string
	Password               string
	Name                   string
	SSLMode                string
	TrustServerCertificate bool
	MaxOpenConns           int
}

// NormalizedDriver lower-cases the driver and maps common aliases.
func (c Config) NormalizedDriver() string {
	switch d := strings.ToLower(strings.TrimSpace(c.Driver)); d {
	case "postgresql", "pg":
		return DriverPostgres
	case "mssql", "sqlserver":
		return DriverSQLServer
	case "sqlite3", "sqlite":
		return DriverSQLite
	case "", "memory", "mem":
		return DriverMemory
	default:
		return d
	}
}

// DataSourceName builds the driver specific connection string.
func (c Config) DataSourceName() (string, error) {
	switch c.NormalizedDriver() {
	case DriverPostgres:
		return c.postgresDSN()
	case DriverSQLServer:
		return c.sqlServerDSN()
	case DriverSQLite:
		if dsn := strings.TrimSpace(c.DSN); dsn != "" {
			return dsn, nil
		}
		return defaultSQLiteDSN, nil
	case DriverMemory:
		return "", ErrNoDatabase
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedDriver, c.Driver)
	}
}

func (c Config) sslMode() string {
	if mode := strings.TrimSpace(c.SSLMode); mode != "" {
		return mode
	}
	return defaultSSLMode
}

func (c Config) postgresDSN() (string, error) {
	dsn := strings.TrimSpace(c.DSN)
	if dsn == "" {
		if strings.TrimSpace(c.Host) == "" {
			return "", ErrMissingHost
		}
		u := &url.URL{
			Scheme: "postgres",
			Host:   hostPort(c.Host, c.Port, defaultPostgresPort),
			Path:   "/" + c.Name,
		}
		if c.User != "" {
			u.User = url.UserPassword(c.User, c.Password)
		}
		u.RawQuery = url.Values{"sslmode": {c.sslMode()}}.Encode()
		return u.String(), nil
	}

	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return "", fmt.Errorf("storage: parse postgres dsn: %w", err)
		}
		q := u.Query()
		if q.Get("sslmode") == "" {
			q.Set("sslmode", c.sslMode())
			u.RawQuery = q.Encode()
		}
		return u.String(), nil
	}

	if !strings.Contains(dsn, "sslmode=") {
		dsn += " sslmode=" + c.sslMode()
	}
	return dsn, nil
}

func (c Config) sqlServerDSN() (string, error) {
	if dsn := strings.TrimSpace(c.DSN); dsn != "" {
		return dsn, nil
	}
	if strings.TrimSpace(c.Host) == "" {
		return "", ErrMissingHost
	}
	q := url.Values{}
	if c.Name != "" {
		q.Set("database", c.Name)
	}
	q.Set("encrypt", "disable")
	q.Set("TrustServerCertificate", strconv.FormatBool(c.TrustServerCertificate))

	u := &url.URL{
		Scheme:   "sqlserver",
		Host:     hostPort(c.Host, c.Port, defaultSQLServerPort),
		RawQuery: q.Encode(),
	}
	if c.User != "" {
		u.User = url.UserPassword(c.User, c.Password)
	}
	return u.String(), nil
}

func hostPort(host string, port, fallback int) string {
	if port <= 0 {
		port = fallback
	}
	return net.JoinHostPort(strings.TrimSpace(host), strconv.Itoa(port))
}
