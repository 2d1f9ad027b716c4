// Package store is netopscore's persistence layer. Each aggregate gets
// its own file of free functions operating on *sql.DB or *sql.Tx; there
// is no generated client standing between these queries and the schema
// in internal/database, so the functions here own their SQL directly.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// WithTx executes fn within a transaction, rolling back on error or
// panic and committing otherwise.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if v := recover(); v != nil {
			_ = tx.Rollback()
			panic(v)
		}
	}()

	if err := fn(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			return fmt.Errorf("%w", errors.Join(err, rerr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// WithTxResult is WithTx for functions that also return a value.
func WithTxResult[T any](ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) (T, error)) (T, error) {
	var result T

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if v := recover(); v != nil {
			_ = tx.Rollback()
			panic(v)
		}
	}()

	result, err = fn(tx)
	if err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			return result, fmt.Errorf("%w", errors.Join(err, rerr))
		}
		return result, err
	}

	if err := tx.Commit(); err != nil {
		return result, fmt.Errorf("commit transaction: %w", err)
	}
	return result, nil
}

// querier is satisfied by both *sql.DB and *sql.Tx, letting store
// functions accept either so callers can compose multi-statement
// operations into one transaction without duplicating query logic.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
