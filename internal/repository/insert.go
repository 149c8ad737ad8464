package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// insertReturningIDs runs query once per argument row inside a single
// transaction and returns the generated IDs positionally.
func insertReturningIDs(ctx context.Context, db *sqlx.DB, query string, rows [][]interface{}) (ids []int64, err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin insert: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	ids = make([]int64, len(rows))
	for i, args := range rows {
		if err = tx.QueryRowxContext(ctx, query, args...).Scan(&ids[i]); err != nil {
			return nil, fmt.Errorf("insert row %d: %w", i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit insert: %w", err)
	}
	return ids, nil
}
