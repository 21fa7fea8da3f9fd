package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

type postgresRecorder struct{ db *sql.DB }

func NewPostgresRecorder(db *sql.DB) Recorder { return &postgresRecorder{db: db} }

func (r *postgresRecorder) Append(ctx context.Context, tx *sql.Tx, e *Entry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	oldValues, err := marshalSnapshot(e.OldValues)
	if err != nil {
		return fmt.Errorf("marshal old values: %w", err)
	}
	newValues, err := marshalSnapshot(e.NewValues)
	if err != nil {
		return fmt.Errorf("marshal new values: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO audit_log
		  (id, transaction_id, action_type, old_values, new_values, admin_user, reason)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		e.ID, e.TransactionID, e.ActionType, oldValues, newValues, e.AdminUser, e.Reason)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (r *postgresRecorder) ListByTransaction(ctx context.Context, transactionID string) ([]*Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, transaction_id, action_type, old_values, new_values, admin_user, reason, created_at
		FROM audit_log WHERE transaction_id=$1 ORDER BY created_at DESC, id DESC`, transactionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		e := &Entry{}
		var oldValues, newValues []byte
		if err := rows.Scan(&e.ID, &e.TransactionID, &e.ActionType,
			&oldValues, &newValues, &e.AdminUser, &e.Reason, &e.CreatedAt); err != nil {
			return nil, err
		}
		if e.OldValues, err = unmarshalSnapshot(oldValues); err != nil {
			return nil, err
		}
		if e.NewValues, err = unmarshalSnapshot(newValues); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ── snapshot helpers ──────────────────────────────────────────────────────────

func marshalSnapshot(m map[string]any) (interface{}, error) {
	if len(m) == 0 {
		return nil, nil
	}
	return json.Marshal(m)
}

func unmarshalSnapshot(b []byte) (map[string]any, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}
