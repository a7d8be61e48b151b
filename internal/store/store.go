// Package store provides the SQL query layer over the entity schema.
// All timestamps are normalized to UTC before binding so that SQLite's
// lexical timestamp comparisons stay consistent.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

// ErrConflict reports a write that lost a race against a concurrent write on
// a uniqueness constraint. Callers should retry with fresh availability data.
var ErrConflict = errors.New("conflicting write")

// ErrCheckViolation reports a write rejected by a schema CHECK constraint,
// such as the payment amount cap. The input is invalid, not racing.
var ErrCheckViolation = errors.New("check constraint violated")

type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

// wrapConstraint translates SQLite constraint violations into the store's
// sentinel errors so handlers can surface them distinctly from generic
// query failures.
func wrapConstraint(err error) error {
	if err == nil {
		return nil
	}
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		switch serr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("%w: %v", ErrConflict, err)
		case sqlite3.ErrConstraintCheck:
			return fmt.Errorf("%w: %v", ErrCheckViolation, err)
		}
	}
	return err
}
