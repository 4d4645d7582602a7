package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"

	"task-manager/config"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationFiles embed.FS

// Open connects to the configured database and verifies the connection
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	dsn := cfg.DSN
	if cfg.Driver == "sqlite3" {
		dsn = sqliteDSN(dsn)
	}

	dbConn, err := sqlx.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxLifetime > 0 {
		dbConn.SetConnMaxLifetime(cfg.MaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := dbConn.PingContext(pingCtx); err != nil {
		dbConn.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	return dbConn, nil
}

// InitializeDatabase opens the database and brings its schema up to date
func InitializeDatabase(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	dbConn, err := Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := Migrate(ctx, dbConn); err != nil {
		dbConn.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	logger.Info("Database initialized successfully", zap.String("driver", cfg.Driver))
	return dbConn, nil
}

// Migrate applies all pending embedded migrations for the connection's driver
func Migrate(ctx context.Context, dbConn *sqlx.DB) error {
	dialect, dir, err := dialectFor(dbConn.DriverName())
	if err != nil {
		return err
	}

	fsys, err := fs.Sub(migrationFiles, dir)
	if err != nil {
		return err
	}

	provider, err := goose.NewProvider(dialect, dbConn.DB, fsys)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return err
	}
	for _, res := range results {
		logger.Info("Applied migration", zap.String("source", res.Source.Path), zap.Duration("duration", res.Duration))
	}

	return nil
}

// CreateMigration writes a new, empty SQL migration for the given driver into
// dir. An empty dir means the driver's embedded migration directory under
// ./database.
func CreateMigration(driver, name, dir string) error {
	if name == "" {
		return fmt.Errorf("migration name is required")
	}
	_, sub, err := dialectFor(driver)
	if err != nil {
		return err
	}
	if dir == "" {
		dir = filepath.Join("database", sub)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create migration dir: %w", err)
	}
	return goose.Create(nil, dir, name, "sql")
}

func dialectFor(driver string) (goose.Dialect, string, error) {
	switch driver {
	case "sqlite3":
		return goose.DialectSQLite3, "migrations/sqlite", nil
	case "pgx":
		return goose.DialectPostgres, "migrations/postgres", nil
	}
	return "", "", fmt.Errorf("unsupported database driver %q", driver)
}

// sqliteDSN turns on foreign keys for every pooled sqlite connection
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "?") {
		return dsn + "&_foreign_keys=on"
	}
	return dsn + "?_foreign_keys=on"
}
