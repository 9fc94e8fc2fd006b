package services

import (
	"context"
	"database/sql"
)

// TxRunner runs fn in a single database transaction. *db.DB satisfies it.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}
