package reporting

import "context"

// Repository defines read-only access to the stored sales schema. The
// filter it receives has already been validated and normalized by the
// service.
type Repository interface {
	// ListSales returns sale summaries matching the filter.
	ListSales(ctx context.Context, f ListFilter) ([]*SaleSummary, error)

	// GetSaleDetail returns the sale joined with all its items, voided and
	// refunded ones included. ErrNotFound when the sale does not exist.
	GetSaleDetail(ctx context.Context, transactionID string) ([]*SaleDetailRow, error)

	// DailySummary aggregates the sales recorded on one calendar date.
	DailySummary(ctx context.Context, date string) (*DailySummary, error)
}
