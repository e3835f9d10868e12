// Package database opens the connection pool and applies schema migrations.
package database

import (
	"context"
	"embed"
	"fmt"
	"net"
	"os"
	"path/filepath"

	"github.com/gengocodes/gensupply-backend/config"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/umakantv/go-utils/db"
	"go.uber.org/zap"
)

//go:embed migrations
var migrationsFS embed.FS

// InitializeDatabase opens the configured pool and applies pending
// migrations. The caller owns the returned pool.
func InitializeDatabase(ctx context.Context, cfg *config.Config, log *zap.Logger) (*sqlx.DB, error) {
	dbConn, err := Open(cfg)
	if err != nil {
		return nil, err
	}

	dbConn.SetMaxOpenConns(cfg.DBMaxOpenConns)
	dbConn.SetMaxIdleConns(cfg.DBMaxIdleConns)

	if err := dbConn.PingContext(ctx); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to reach %s database: %w", cfg.DBDriver, err)
	}

	if err := Migrate(ctx, dbConn, cfg.DBDriver); err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	log.Info("Database initialized successfully",
		zap.String("driver", cfg.DBDriver),
		zap.Int("max_open_conns", cfg.DBMaxOpenConns))
	return dbConn, nil
}

// Open connects to MySQL or SQLite depending on cfg.DBDriver.
func Open(cfg *config.Config) (*sqlx.DB, error) {
	switch cfg.DBDriver {
	case config.DriverSQLite:
		return openSQLite(cfg.DBPath)
	case config.DriverMySQL:
		dbConn, err := sqlx.Open(config.DriverMySQL, MySQLDSN(cfg))
		if err != nil {
			return nil, fmt.Errorf("failed to open mysql: %w", err)
		}
		return dbConn, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}
}

// openSQLite opens the file through the shared go-utils helper, which panics
// instead of returning an error when the file cannot be opened.
func openSQLite(path string) (dbConn *sqlx.DB, err error) {
	if path != "" && path != ":memory:" {
		if _, statErr := os.Stat(filepath.Dir(path)); statErr != nil {
			return nil, fmt.Errorf("sqlite directory for %s is not usable: %w", path, statErr)
		}
	}

	defer func() {
		if r := recover(); r != nil {
			dbConn = nil
			err = fmt.Errorf("failed to open sqlite database at %s: %v", path, r)
		}
	}()

	return db.GetDBConnection(db.DatabaseConfig{
		DRIVER: config.DriverSQLite,
		DB:     path,
	}), nil
}

// MySQLDSN builds the driver DSN. ClientFoundRows makes an UPDATE that
// leaves a row unchanged still count as a match, so owner-scoped updates only
// report zero rows when nothing matched.
func MySQLDSN(cfg *config.Config) string {
	mysqlCfg := mysql.NewConfig()
	mysqlCfg.User = cfg.DBUser
	mysqlCfg.Passwd = cfg.DBPassword
	mysqlCfg.Net = "tcp"
	mysqlCfg.Addr = net.JoinHostPort(cfg.DBHost, cfg.DBPort)
	mysqlCfg.DBName = cfg.DBName
	mysqlCfg.ParseTime = true
	mysqlCfg.ClientFoundRows = true
	mysqlCfg.Timeout = cfg.DBQueryTimeout
	return mysqlCfg.FormatDSN()
}

// Migrate applies the embedded migrations for the given driver.
func Migrate(ctx context.Context, dbConn *sqlx.DB, driver string) error {
	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(driver); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, dbConn.DB, "migrations/"+driver); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
