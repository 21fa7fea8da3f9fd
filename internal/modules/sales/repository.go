package sales

import (
	"context"

	"github.com/google/uuid"

	"github.com/rioraa/pos-backend/internal/modules/audit"
)

// Repository defines data access for sales and their line items. Every
// mutating method runs as one database transaction: the writes, the parent
// sale recalculation and the audit append commit or roll back together.
type Repository interface {
	// CreateSale persists the sale header and all its items atomically.
	// Returns ErrDuplicateTransaction if the transaction id is taken.
	CreateSale(ctx context.Context, s *Sale) error

	// GetSale retrieves a sale with all of its items (voided ones included).
	GetSale(ctx context.Context, transactionID string) (*Sale, error)

	// GetItem retrieves a single line item by id.
	GetItem(ctx context.Context, itemID uuid.UUID) (*SaleItem, error)

	// UpdateSaleStatus writes the new status, cascades it to the sale's
	// items and appends the audit entry. The write is guarded by the
	// expected version; ErrConflict if a concurrent writer got there first.
	UpdateSaleStatus(ctx context.Context, transactionID string, status SaleStatus, expectedVersion int, entry *audit.Entry) error

	// UpdateItem writes the item's corrected fields, recalculates the parent
	// sale's totals from its live active items and appends the audit entry.
	UpdateItem(ctx context.Context, item *SaleItem, expectedVersion int, entry *audit.Entry) error

	// VoidItem soft-deletes an item (status VOIDED, row retained), triggers
	// the same recalculation and appends the audit entry.
	VoidItem(ctx context.Context, itemID uuid.UUID, expectedVersion int, entry *audit.Entry) error
}
