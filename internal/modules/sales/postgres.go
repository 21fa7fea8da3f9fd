package sales

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/rioraa/pos-backend/internal/modules/audit"
)

type postgresRepo struct {
	db       *sql.DB
	recorder audit.Recorder
}

func NewPostgresRepository(db *sql.DB, recorder audit.Recorder) Repository {
	return &postgresRepo{db: db, recorder: recorder}
}

// CreateSale inserts the sale header and all its items inside a single
// transaction. Creation is not audited.
func (r *postgresRepo) CreateSale(ctx context.Context, s *Sale) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sales (id, transaction_id, total_amount, tax_amount, status, version)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		s.ID, s.TransactionID, s.TotalAmount, s.TaxAmount, s.Status, s.Version)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateTransaction
		}
		return fmt.Errorf("insert sale: %w", err)
	}

	for _, item := range s.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO sale_items (id, transaction_id, item_name, price, quantity, subtotal, status, version)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			item.ID, s.TransactionID, item.Name, item.Price, item.Quantity,
			item.Subtotal, item.Status, item.Version)
		if err != nil {
			return fmt.Errorf("insert sale_item: %w", err)
		}
	}

	return tx.Commit()
}

func (r *postgresRepo) GetSale(ctx context.Context, transactionID string) (*Sale, error) {
	s, err := scanSale(r.db.QueryRowContext(ctx, `
		SELECT id, transaction_id, total_amount, tax_amount, status, version, created_at, updated_at
		FROM sales WHERE transaction_id=$1`, transactionID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	s.Items, err = r.listItems(ctx, transactionID)
	return s, err
}

func (r *postgresRepo) GetItem(ctx context.Context, itemID uuid.UUID) (*SaleItem, error) {
	item := &SaleItem{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, transaction_id, item_name, price, quantity, subtotal, status, version, created_at
		FROM sale_items WHERE id=$1`, itemID).Scan(
		&item.ID, &item.TransactionID, &item.Name, &item.Price, &item.Quantity,
		&item.Subtotal, &item.Status, &item.Version, &item.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return item, nil
}

func (r *postgresRepo) UpdateSaleStatus(ctx context.Context, transactionID string, status SaleStatus, expectedVersion int, entry *audit.Entry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE sales SET status=$1, updated_at=$2, version=version+1
		WHERE transaction_id=$3 AND version=$4`,
		status, time.Now(), transactionID, expectedVersion)
	if err != nil {
		return fmt.Errorf("update sale status: %w", err)
	}
	if err := r.checkWritten(ctx, tx, res,
		`SELECT 1 FROM sales WHERE transaction_id=$1`, transactionID); err != nil {
		return err
	}

	// The version bump invalidates any item pre-image read before the
	// cascade landed.
	_, err = tx.ExecContext(ctx,
		`UPDATE sale_items SET status=$1, version=version+1 WHERE transaction_id=$2`,
		CascadeItemStatus(status), transactionID)
	if err != nil {
		return fmt.Errorf("cascade item status: %w", err)
	}

	if err := r.recorder.Append(ctx, tx, entry); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *postgresRepo) UpdateItem(ctx context.Context, item *SaleItem, expectedVersion int, entry *audit.Entry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := r.lockSale(ctx, tx, item.TransactionID); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE sale_items SET item_name=$1, price=$2, quantity=$3, subtotal=$4, version=version+1
		WHERE id=$5 AND version=$6`,
		item.Name, item.Price, item.Quantity, item.Subtotal, item.ID, expectedVersion)
	if err != nil {
		return fmt.Errorf("update sale_item: %w", err)
	}
	if err := r.checkWritten(ctx, tx, res,
		`SELECT 1 FROM sale_items WHERE id=$1`, item.ID); err != nil {
		return err
	}

	if err := r.recalcSaleTotals(ctx, tx, item.TransactionID); err != nil {
		return err
	}
	if err := r.recorder.Append(ctx, tx, entry); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *postgresRepo) VoidItem(ctx context.Context, itemID uuid.UUID, expectedVersion int, entry *audit.Entry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := r.lockSale(ctx, tx, entry.TransactionID); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE sale_items SET status=$1, version=version+1
		WHERE id=$2 AND version=$3`,
		ItemVoided, itemID, expectedVersion)
	if err != nil {
		return fmt.Errorf("void sale_item: %w", err)
	}
	if err := r.checkWritten(ctx, tx, res,
		`SELECT 1 FROM sale_items WHERE id=$1`, itemID); err != nil {
		return err
	}

	if err := r.recalcSaleTotals(ctx, tx, entry.TransactionID); err != nil {
		return err
	}
	if err := r.recorder.Append(ctx, tx, entry); err != nil {
		return err
	}
	return tx.Commit()
}

// ── helpers ──────────────────────────────────────────────────────────────────

// lockSale takes the sale header's row lock for the rest of the transaction.
// Item mutations must acquire it before writing so that the item write, the
// active-sum read and the totals rewrite of one sale serialize against
// concurrent mutations of its other items.
func (r *postgresRepo) lockSale(ctx context.Context, tx *sql.Tx, transactionID string) error {
	var version int
	err := tx.QueryRowContext(ctx,
		`SELECT version FROM sales WHERE transaction_id=$1 FOR UPDATE`, transactionID).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// recalcSaleTotals rewrites the sale's tax and total from the live sum of
// its ACTIVE items. Must run inside the mutation's transaction, after
// lockSale.
func (r *postgresRepo) recalcSaleTotals(ctx context.Context, tx *sql.Tx, transactionID string) error {
	var subtotal float64
	err := tx.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(subtotal), 0) FROM sale_items
		WHERE transaction_id=$1 AND status=$2`, transactionID, ItemActive).Scan(&subtotal)
	if err != nil {
		return fmt.Errorf("sum active items: %w", err)
	}

	taxAmount := CalcTax(subtotal)
	_, err = tx.ExecContext(ctx, `
		UPDATE sales SET total_amount=$1, tax_amount=$2, updated_at=$3, version=version+1
		WHERE transaction_id=$4`,
		subtotal+taxAmount, taxAmount, time.Now(), transactionID)
	if err != nil {
		return fmt.Errorf("update sale totals: %w", err)
	}
	return nil
}

// checkWritten distinguishes a missing row from a version race after a
// guarded UPDATE touched zero rows.
func (r *postgresRepo) checkWritten(ctx context.Context, tx *sql.Tx, res sql.Result, existsQuery string, arg interface{}) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	var one int
	err = tx.QueryRowContext(ctx, existsQuery, arg).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return ErrConflict
}

func (r *postgresRepo) listItems(ctx context.Context, transactionID string) ([]*SaleItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, transaction_id, item_name, price, quantity, subtotal, status, version, created_at
		FROM sale_items WHERE transaction_id=$1 ORDER BY created_at ASC, id ASC`, transactionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*SaleItem
	for rows.Next() {
		item := &SaleItem{}
		if err := rows.Scan(&item.ID, &item.TransactionID, &item.Name, &item.Price,
			&item.Quantity, &item.Subtotal, &item.Status, &item.Version, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

type rowScanner interface{ Scan(dest ...interface{}) error }

func scanSale(row rowScanner) (*Sale, error) {
	s := &Sale{}
	err := row.Scan(&s.ID, &s.TransactionID, &s.TotalAmount, &s.TaxAmount,
		&s.Status, &s.Version, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	s.Subtotal = s.TotalAmount - s.TaxAmount
	return s, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
