package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/orm-demo/pkg/config"
)

// Admin issues server-level statements (CREATE/DROP DATABASE) over a
// connection to the maintenance database.
type Admin struct {
	db *sqlx.DB
}

// NewAdmin wraps an existing maintenance connection.
func NewAdmin(db *sqlx.DB) *Admin {
	return &Admin{db: db}
}

// ConnectAdmin dials the configured maintenance database.
func ConnectAdmin(ctx context.Context, cfg config.DatabaseConfig) (*Admin, error) {
	db, err := NewPostgres(ctx, cfg, cfg.MaintenanceName)
	if err != nil {
		return nil, err
	}
	return NewAdmin(db), nil
}

// Exists reports whether a database named name is present on the server.
func (a *Admin) Exists(ctx context.Context, name string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)`
	var exists bool
	if err := a.db.GetContext(ctx, &exists, query, name); err != nil {
		return false, fmt.Errorf("check database %s: %w", name, err)
	}
	return exists, nil
}

// TerminateSessions ends every other backend connected to the database so
// it can be dropped.
func (a *Admin) TerminateSessions(ctx context.Context, name string) error {
	const query = `SELECT pg_terminate_backend(pid) FROM pg_stat_activity WHERE datname = $1 AND pid <> pg_backend_pid()`
	if _, err := a.db.ExecContext(ctx, query, name); err != nil {
		return fmt.Errorf("terminate sessions on %s: %w", name, err)
	}
	return nil
}

// Drop removes the database and everything in it.
func (a *Admin) Drop(ctx context.Context, name string) error {
	if _, err := a.db.ExecContext(ctx, "DROP DATABASE "+pq.QuoteIdentifier(name)); err != nil {
		return fmt.Errorf("drop database %s: %w", name, err)
	}
	return nil
}

// Create makes a new empty database.
func (a *Admin) Create(ctx context.Context, name string) error {
	if _, err := a.db.ExecContext(ctx, "CREATE DATABASE "+pq.QuoteIdentifier(name)); err != nil {
		return fmt.Errorf("create database %s: %w", name, err)
	}
	return nil
}

// Close releases the maintenance connection.
func (a *Admin) Close() error {
	return a.db.Close()
}
