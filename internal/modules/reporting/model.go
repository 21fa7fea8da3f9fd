package reporting

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrValidation marks a malformed filter rejected before any query runs.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when no sale exists for the given id.
	ErrNotFound = errors.New("not found")
)

// ListFilter narrows and orders the sales history. All fields are optional
// and compose independently.
type ListFilter struct {
	DateFrom      string `json:"date_from,omitempty"`      // inclusive, YYYY-MM-DD
	DateTo        string `json:"date_to,omitempty"`        // inclusive, YYYY-MM-DD
	Status        string `json:"status,omitempty"`         // exact match
	TransactionID string `json:"transaction_id,omitempty"` // substring match
	SortBy        string `json:"sort_by,omitempty"`
	SortOrder     string `json:"sort_order,omitempty"`
	Limit         int    `json:"limit,omitempty"`
}

// SaleSummary is one row of the sales history listing. ItemsSummary is a
// display convenience ("name (qty), ..."), not part of the ledger data.
type SaleSummary struct {
	TransactionID string    `json:"transaction_id"`
	Subtotal      float64   `json:"subtotal"`
	TaxAmount     float64   `json:"tax_amount"`
	TotalAmount   float64   `json:"total_amount"`
	Status        string    `json:"status"`
	ItemCount     int       `json:"item_count"`
	ItemsSummary  string    `json:"items_summary"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// SaleDetailRow is one denormalized sale+item row. The item fields are nil
// for a sale that has no items at all.
type SaleDetailRow struct {
	TransactionID string     `json:"transaction_id"`
	Subtotal      float64    `json:"subtotal"`
	TaxAmount     float64    `json:"tax_amount"`
	TotalAmount   float64    `json:"total_amount"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	ItemID        *uuid.UUID `json:"item_id,omitempty"`
	ItemName      *string    `json:"item_name,omitempty"`
	Price         *float64   `json:"price,omitempty"`
	Quantity      *int       `json:"quantity,omitempty"`
	ItemSubtotal  *float64   `json:"item_subtotal,omitempty"`
	ItemStatus    *string    `json:"item_status,omitempty"`
	ItemCreatedAt *time.Time `json:"item_created_at,omitempty"`
}

// DailySummary aggregates one day of trading for the dashboard.
type DailySummary struct {
	Date             string  `json:"date"`
	TransactionCount int     `json:"transaction_count"`
	TotalSales       float64 `json:"total_sales"`
	TotalTax         float64 `json:"total_tax"`
}

// sortColumns maps the logical sort keys callers may supply to fixed column
// references. Sorting never interpolates caller input into SQL.
var sortColumns = map[string]string{
	"created_at":     "s.created_at",
	"updated_at":     "s.updated_at",
	"total_amount":   "s.total_amount",
	"transaction_id": "s.transaction_id",
	"status":         "s.status",
}

const (
	defaultSortKey = "created_at"
	defaultLimit   = 50
	maxLimit       = 500
)
