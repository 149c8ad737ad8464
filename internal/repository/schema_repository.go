package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/orm-demo/internal/schema"
)

// SchemaRepository applies table DDL to the target database.
type SchemaRepository struct {
	db *sqlx.DB
}

// NewSchemaRepository constructs a SchemaRepository.
func NewSchemaRepository(db *sqlx.DB) *SchemaRepository {
	return &SchemaRepository{db: db}
}

// DropTables drops every table of s that exists, children first.
func (r *SchemaRepository) DropTables(ctx context.Context, s schema.Schema) error {
	return r.execAll(ctx, "drop tables", s.DropStatements())
}

// CreateTables creates every table of s, parents first.
func (r *SchemaRepository) CreateTables(ctx context.Context, s schema.Schema) error {
	return r.execAll(ctx, "create tables", s.CreateStatements())
}

// ListTables returns the table names present in the public schema.
func (r *SchemaRepository) ListTables(ctx context.Context) ([]string, error) {
	const query = `SELECT table_name FROM information_schema.tables WHERE table_schema = 'public' ORDER BY table_name`
	var names []string
	if err := r.db.SelectContext(ctx, &names, query); err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return names, nil
}

func (r *SchemaRepository) execAll(ctx context.Context, label string, stmts []string) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin %s: %w", label, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, stmt := range stmts {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s: %w", label, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", label, err)
	}
	return nil
}
