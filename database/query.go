package database

import (
	"bengaliboutique_server/config"
	"bengaliboutique_server/structs"
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

// DB wraps the bun handle shared by repositories.
type DB struct {
	*bun.DB
	logger *gecho.Logger
}

var (
	instance *DB
	initOnce sync.Once
	initErr  error
)

// DSN builds a libpq connection string from the database config.
func DSN(cfg *structs.DatabaseConfig) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name, cfg.SSLMode)
}

// Open creates a pool without connecting. Connections are established lazily.
func Open(cfg *structs.DatabaseConfig, logger *gecho.Logger) (*DB, error) {
	connConfig, err := pgx.ParseConfig(DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("invalid database config: %w", err)
	}
	connConfig.ConnectTimeout = cfg.ReadTimeout

	sqldb := stdlib.OpenDB(*connConfig)
	sqldb.SetMaxOpenConns(cfg.MaxConns)
	sqldb.SetMaxIdleConns(cfg.MinConns)
	sqldb.SetConnMaxLifetime(cfg.MaxLifetime)
	sqldb.SetConnMaxIdleTime(cfg.MaxIdleTime)

	return &DB{DB: bun.NewDB(sqldb, pgdialect.New()), logger: logger}, nil
}

// Initialize opens the shared instance and verifies the connection.
func Initialize() error {
	initOnce.Do(func() {
		cfg := config.GetConfig()
		logger := config.GetLogger()

		db, err := Open(cfg.Database, logger)
		if err != nil {
			initErr = err
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		initErr = RetryWithBackoff(ctx, DefaultRetryConfig(), func() error {
			return db.PingContext(ctx)
		})
		if initErr != nil {
			initErr = fmt.Errorf("failed to connect to database: %w", initErr)
			return
		}

		logger.Info("Database connection established",
			gecho.Field("host", cfg.Database.Host),
			gecho.Field("database", cfg.Database.Name),
		)
		instance = db
	})
	return initErr
}

func GetInstance() *DB {
	return instance
}

// Close releases the shared pool.
func Close() error {
	if instance == nil {
		return nil
	}
	return instance.DB.Close()
}

// SQLDB exposes the underlying pool for health checks.
func (db *DB) SQLDB() *sql.DB {
	return db.DB.DB
}
