package sales

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// SaleStatus represents the lifecycle state of a sale.
type SaleStatus string

const (
	StatusCompleted SaleStatus = "COMPLETED"
	StatusRefunded  SaleStatus = "REFUNDED"
	StatusVoided    SaleStatus = "VOIDED"
)

// ItemStatus represents the state of a single line item.
type ItemStatus string

const (
	ItemActive   ItemStatus = "ACTIVE"
	ItemRefunded ItemStatus = "REFUNDED"
	ItemVoided   ItemStatus = "VOIDED"
)

// TaxRate is the consumption tax applied to every sale.
const TaxRate = 0.10

// Sale is one point-of-sale transaction. Subtotal is derived from the live
// items and never stored on its own; rows are never physically deleted.
type Sale struct {
	ID            uuid.UUID   `json:"id"`
	TransactionID string      `json:"transaction_id"`
	Subtotal      float64     `json:"subtotal"`
	TaxAmount     float64     `json:"tax_amount"`
	TotalAmount   float64     `json:"total_amount"`
	Status        SaleStatus  `json:"status"`
	Version       int         `json:"version"`
	Items         []*SaleItem `json:"items,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// SaleItem is a single product line within a sale. "Deleting" an item only
// moves its status to VOIDED; the row stays for the audit trail.
type SaleItem struct {
	ID            uuid.UUID  `json:"id"`
	TransactionID string     `json:"transaction_id"`
	Name          string     `json:"item_name"`
	Price         float64    `json:"price"`
	Quantity      int        `json:"quantity"`
	Subtotal      float64    `json:"subtotal"`
	Status        ItemStatus `json:"status"`
	Version       int        `json:"version"`
	CreatedAt     time.Time  `json:"created_at"`
}

// CartLine describes one product being rung up at the register.
type CartLine struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// CreateSaleRequest is the payload for recording a new sale.
type CreateSaleRequest struct {
	Items []CartLine `json:"items"`
}

// CreateSaleResponse echoes the computed amounts back to the register.
type CreateSaleResponse struct {
	Success       bool    `json:"success"`
	TransactionID string  `json:"transaction_id"`
	Subtotal      float64 `json:"subtotal"`
	TaxAmount     float64 `json:"tax_amount"`
	TotalAmount   float64 `json:"total_amount"`
}

// UpdateStatusRequest is the payload for refunding or voiding a sale.
type UpdateStatusRequest struct {
	Status    string `json:"status"`
	AdminUser string `json:"admin_user"`
	Reason    string `json:"reason,omitempty"`
}

// UpdateItemRequest is the payload for correcting a line item. The subtotal
// is always recomputed server-side from price and quantity.
type UpdateItemRequest struct {
	Name      string  `json:"item_name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	AdminUser string  `json:"admin_user"`
	Reason    string  `json:"reason,omitempty"`
}

// DeleteItemRequest is the payload for soft-deleting a line item.
type DeleteItemRequest struct {
	AdminUser string `json:"admin_user"`
	Reason    string `json:"reason,omitempty"`
}

// CalcTax returns the tax owed on a subtotal, rounded to the nearest whole
// currency unit.
func CalcTax(subtotal float64) float64 {
	return math.Round(subtotal * TaxRate)
}

// CascadeItemStatus maps a sale status onto its items: a COMPLETED sale has
// ACTIVE items, any other sale status is carried over verbatim.
func CascadeItemStatus(s SaleStatus) ItemStatus {
	if s == StatusCompleted {
		return ItemActive
	}
	return ItemStatus(s)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
