package util

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// TransactionCallback runs inside Transaction; returning an error rolls the
// whole transaction back.
type TransactionCallback func(*sqlx.Tx) error

// Transaction wraps cb in a transaction, committed on success and rolled back
// on error.
func Transaction(ctx context.Context, db *sqlx.DB, cb TransactionCallback) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	if err := cb(tx); err != nil {
		if err2 := tx.Rollback(); err2 != nil {
			return fmt.Errorf("rollback error: %s\noriginal error: %s", err2, err)
		}

		return err
	}

	return tx.Commit()
}
