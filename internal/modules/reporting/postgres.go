package reporting

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) ListSales(ctx context.Context, f ListFilter) ([]*SaleSummary, error) {
	query := `
		SELECT s.transaction_id, s.total_amount, s.tax_amount, s.status,
		       s.created_at, s.updated_at,
		       COUNT(si.id) AS item_count,
		       COALESCE(string_agg(si.item_name || ' (' || si.quantity || ')', ', ' ORDER BY si.created_at, si.id), '') AS items_summary
		FROM sales s
		LEFT JOIN sale_items si ON s.transaction_id = si.transaction_id
		WHERE 1=1`
	var args []interface{}

	if f.DateFrom != "" {
		args = append(args, f.DateFrom)
		query += fmt.Sprintf(" AND s.created_at::date >= $%d::date", len(args))
	}
	if f.DateTo != "" {
		args = append(args, f.DateTo)
		query += fmt.Sprintf(" AND s.created_at::date <= $%d::date", len(args))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		query += fmt.Sprintf(" AND s.status = $%d", len(args))
	}
	if f.TransactionID != "" {
		args = append(args, "%"+f.TransactionID+"%")
		query += fmt.Sprintf(" AND s.transaction_id LIKE $%d", len(args))
	}

	query += " GROUP BY s.id"

	// SortBy holds a logical key the service already validated; the map
	// lookup keeps caller input out of the SQL text.
	column, ok := sortColumns[f.SortBy]
	if !ok {
		return nil, fmt.Errorf("%w: unknown sort key %q", ErrValidation, f.SortBy)
	}
	query += fmt.Sprintf(" ORDER BY %s %s", column, f.SortOrder)

	args = append(args, f.Limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []*SaleSummary
	for rows.Next() {
		s := &SaleSummary{}
		if err := rows.Scan(&s.TransactionID, &s.TotalAmount, &s.TaxAmount, &s.Status,
			&s.CreatedAt, &s.UpdatedAt, &s.ItemCount, &s.ItemsSummary); err != nil {
			return nil, err
		}
		s.Subtotal = s.TotalAmount - s.TaxAmount
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

func (r *postgresRepo) GetSaleDetail(ctx context.Context, transactionID string) ([]*SaleDetailRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.transaction_id, s.total_amount, s.tax_amount, s.status, s.created_at, s.updated_at,
		       si.id, si.item_name, si.price, si.quantity, si.subtotal, si.status, si.created_at
		FROM sales s
		LEFT JOIN sale_items si ON s.transaction_id = si.transaction_id
		WHERE s.transaction_id = $1
		ORDER BY si.created_at ASC, si.id ASC`, transactionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var detail []*SaleDetailRow
	for rows.Next() {
		row := &SaleDetailRow{}
		var itemID, itemName, itemStatus sql.NullString
		var price, itemSubtotal sql.NullFloat64
		var quantity sql.NullInt64
		var itemCreatedAt sql.NullTime
		if err := rows.Scan(&row.TransactionID, &row.TotalAmount, &row.TaxAmount,
			&row.Status, &row.CreatedAt, &row.UpdatedAt,
			&itemID, &itemName, &price, &quantity, &itemSubtotal, &itemStatus, &itemCreatedAt); err != nil {
			return nil, err
		}
		row.Subtotal = row.TotalAmount - row.TaxAmount
		if itemID.Valid {
			uid, err := uuid.Parse(itemID.String)
			if err != nil {
				return nil, err
			}
			q := int(quantity.Int64)
			row.ItemID = &uid
			row.ItemName = &itemName.String
			row.Price = &price.Float64
			row.Quantity = &q
			row.ItemSubtotal = &itemSubtotal.Float64
			row.ItemStatus = &itemStatus.String
			row.ItemCreatedAt = &itemCreatedAt.Time
		}
		detail = append(detail, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(detail) == 0 {
		return nil, ErrNotFound
	}
	return detail, nil
}

func (r *postgresRepo) DailySummary(ctx context.Context, date string) (*DailySummary, error) {
	summary := &DailySummary{Date: date}
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(total_amount), 0), COALESCE(SUM(tax_amount), 0)
		FROM sales WHERE created_at::date = $1::date`, date).Scan(
		&summary.TransactionCount, &summary.TotalSales, &summary.TotalTax)
	if err != nil {
		return nil, err
	}
	return summary, nil
}
