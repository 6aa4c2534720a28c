package repository

import (
	"context"
	"database/sql"

	"github.com/bgftrust/bgf-dashboard/internal/infrastructure/persistence/sqlite"
)

// executor covers both *sql.DB and *sql.Tx so repositories run the same
// queries inside or outside a transaction
type executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// chooseExecutor joins the transaction carried by the context, if any
func chooseExecutor(ctx context.Context, db *sql.DB) executor {
	if tx := sqlite.TxFromContext(ctx); tx != nil {
		return tx
	}
	return db
}
