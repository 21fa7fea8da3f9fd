package audit

import (
	"context"
	"database/sql"
)

// Recorder defines data access for the append-only audit log.
type Recorder interface {
	// Append inserts one entry inside the caller's open transaction so the
	// audit row commits or rolls back together with the mutation it records.
	Append(ctx context.Context, tx *sql.Tx, e *Entry) error

	// ListByTransaction returns all entries for a sale, newest first.
	ListByTransaction(ctx context.Context, transactionID string) ([]*Entry, error)
}
