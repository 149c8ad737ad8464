package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/noah-isme/orm-demo/pkg/config"
)

const driverName = "postgres"

// DSN renders a lib/pq keyword/value connection string for dbName.
func DSN(cfg config.DatabaseConfig, dbName string) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		dbName,
		cfg.SSLMode,
	)
}

// Open returns a PostgreSQL handle for the configured database without
// connecting. The first query dials, which lets callers create the handle
// before the database itself exists.
func Open(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open(driverName, DSN(cfg, cfg.Name))
	if err != nil {
		return nil, err
	}
	configurePool(db, cfg)
	return db, nil
}

// NewPostgres returns a configured PostgreSQL client for dbName and verifies it is reachable.
func NewPostgres(ctx context.Context, cfg config.DatabaseConfig, dbName string) (*sqlx.DB, error) {
	db, err := sqlx.Open(driverName, DSN(cfg, dbName))
	if err != nil {
		return nil, err
	}
	configurePool(db, cfg)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func configurePool(db *sqlx.DB, cfg config.DatabaseConfig) {
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	db.SetConnMaxLifetime(1 * time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)
}
