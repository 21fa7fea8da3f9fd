package sales

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rioraa/pos-backend/internal/modules/audit"
)

// Service defines the transaction ledger business logic: recording sales and
// the corrective operations staff apply to them afterwards.
type Service interface {
	// CreateSale computes the sale's amounts server-side and persists the
	// header with all items atomically.
	CreateSale(ctx context.Context, req CreateSaleRequest) (*Sale, error)

	// UpdateStatus refunds or voids a sale, cascading to its items and
	// recording one audit entry.
	UpdateStatus(ctx context.Context, transactionID string, req UpdateStatusRequest) error

	// UpdateItem corrects a line item's fields, keeps the parent sale's
	// totals consistent and records one audit entry.
	UpdateItem(ctx context.Context, itemID uuid.UUID, req UpdateItemRequest) error

	// DeleteItem soft-deletes a line item (status VOIDED, row retained),
	// triggers the same recalculation and records one audit entry.
	DeleteItem(ctx context.Context, itemID uuid.UUID, req DeleteItemRequest) error
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger *zap.Logger) Service {
	return &service{repo: repo, logger: logger}
}

// validTransitions defines the sale status state machine. Sales are born
// COMPLETED; REFUNDED and VOIDED are terminal.
var validTransitions = map[SaleStatus][]SaleStatus{
	StatusCompleted: {StatusRefunded, StatusVoided},
	StatusRefunded:  {},
	StatusVoided:    {},
}

const createRetries = 3

func (s *service) CreateSale(ctx context.Context, req CreateSaleRequest) (*Sale, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: sale must contain at least one item", ErrValidation)
	}

	var items []*SaleItem
	var subtotal float64
	for i, line := range req.Items {
		if strings.TrimSpace(line.Name) == "" {
			return nil, fmt.Errorf("%w: item %d has no name", ErrValidation, i)
		}
		if line.Price < 0 {
			return nil, fmt.Errorf("%w: price must be >= 0 for %q", ErrValidation, line.Name)
		}
		if line.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity must be >= 1 for %q", ErrValidation, line.Name)
		}
		lineSubtotal := round2(line.Price * float64(line.Quantity))
		subtotal += lineSubtotal
		items = append(items, &SaleItem{
			ID:       uuid.New(),
			Name:     line.Name,
			Price:    line.Price,
			Quantity: line.Quantity,
			Subtotal: lineSubtotal,
			Status:   ItemActive,
			Version:  1,
		})
	}

	taxAmount := CalcTax(subtotal)
	sale := &Sale{
		ID:          uuid.New(),
		Subtotal:    subtotal,
		TaxAmount:   taxAmount,
		TotalAmount: subtotal + taxAmount,
		Status:      StatusCompleted,
		Version:     1,
		Items:       items,
	}

	// The id is time-based with a random suffix; regenerate on the rare
	// collision instead of failing the sale.
	var err error
	for attempt := 0; attempt < createRetries; attempt++ {
		sale.TransactionID = generateTransactionID()
		for _, item := range sale.Items {
			item.TransactionID = sale.TransactionID
		}
		err = s.repo.CreateSale(ctx, sale)
		if !errors.Is(err, ErrDuplicateTransaction) {
			break
		}
		s.logger.Warn("transaction id collision, regenerating",
			zap.String("transaction_id", sale.TransactionID))
	}
	if err != nil {
		s.logger.Error("failed to persist sale", zap.Error(err))
		return nil, fmt.Errorf("failed to persist sale: %w", err)
	}

	s.logger.Info("sale created",
		zap.String("transaction_id", sale.TransactionID),
		zap.Int("items", len(sale.Items)),
		zap.Float64("total_amount", sale.TotalAmount))
	return sale, nil
}

func (s *service) UpdateStatus(ctx context.Context, transactionID string, req UpdateStatusRequest) error {
	if strings.TrimSpace(req.AdminUser) == "" {
		return fmt.Errorf("%w: admin_user is required", ErrValidation)
	}

	newStatus := SaleStatus(strings.ToUpper(req.Status))
	if _, known := validTransitions[newStatus]; !known {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, req.Status)
	}

	sale, err := s.repo.GetSale(ctx, transactionID)
	if err != nil {
		return err
	}

	allowed := false
	for _, target := range validTransitions[sale.Status] {
		if target == newStatus {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("%w: cannot transition sale from %s to %s",
			ErrInvalidTransition, sale.Status, newStatus)
	}

	entry := &audit.Entry{
		TransactionID: transactionID,
		ActionType:    actionForStatus(newStatus),
		OldValues:     salePreImage(sale),
		NewValues:     map[string]any{"status": string(newStatus)},
		AdminUser:     req.AdminUser,
		Reason:        req.Reason,
	}

	if err := s.repo.UpdateSaleStatus(ctx, transactionID, newStatus, sale.Version, entry); err != nil {
		s.logger.Error("failed to update sale status",
			zap.String("transaction_id", transactionID), zap.Error(err))
		return err
	}

	s.logger.Info("sale status updated",
		zap.String("transaction_id", transactionID),
		zap.String("status", string(newStatus)),
		zap.String("admin_user", req.AdminUser))
	return nil
}

func (s *service) UpdateItem(ctx context.Context, itemID uuid.UUID, req UpdateItemRequest) error {
	if strings.TrimSpace(req.AdminUser) == "" {
		return fmt.Errorf("%w: admin_user is required", ErrValidation)
	}
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("%w: item_name is required", ErrValidation)
	}
	if req.Price < 0 {
		return fmt.Errorf("%w: price must be >= 0", ErrValidation)
	}
	if req.Quantity < 1 {
		return fmt.Errorf("%w: quantity must be >= 1", ErrValidation)
	}

	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return err
	}

	updated := &SaleItem{
		ID:            item.ID,
		TransactionID: item.TransactionID,
		Name:          req.Name,
		Price:         req.Price,
		Quantity:      req.Quantity,
		Subtotal:      round2(req.Price * float64(req.Quantity)),
	}

	entry := &audit.Entry{
		TransactionID: item.TransactionID,
		ActionType:    audit.ActionEdit,
		OldValues:     itemPreImage(item),
		NewValues: map[string]any{
			"item_name": updated.Name,
			"price":     updated.Price,
			"quantity":  updated.Quantity,
			"subtotal":  updated.Subtotal,
		},
		AdminUser: req.AdminUser,
		Reason:    req.Reason,
	}

	if err := s.repo.UpdateItem(ctx, updated, item.Version, entry); err != nil {
		s.logger.Error("failed to update sale item",
			zap.String("item_id", itemID.String()), zap.Error(err))
		return err
	}

	s.logger.Info("sale item updated",
		zap.String("transaction_id", item.TransactionID),
		zap.String("item_id", itemID.String()),
		zap.String("admin_user", req.AdminUser))
	return nil
}

func (s *service) DeleteItem(ctx context.Context, itemID uuid.UUID, req DeleteItemRequest) error {
	if strings.TrimSpace(req.AdminUser) == "" {
		return fmt.Errorf("%w: admin_user is required", ErrValidation)
	}

	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return err
	}

	entry := &audit.Entry{
		TransactionID: item.TransactionID,
		ActionType:    audit.ActionVoid,
		OldValues:     itemPreImage(item),
		NewValues:     map[string]any{"status": string(ItemVoided)},
		AdminUser:     req.AdminUser,
		Reason:        req.Reason,
	}

	if err := s.repo.VoidItem(ctx, itemID, item.Version, entry); err != nil {
		s.logger.Error("failed to void sale item",
			zap.String("item_id", itemID.String()), zap.Error(err))
		return err
	}

	s.logger.Info("sale item voided",
		zap.String("transaction_id", item.TransactionID),
		zap.String("item_id", itemID.String()),
		zap.String("admin_user", req.AdminUser))
	return nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

// generateTransactionID creates a human-readable id: TXN<timestamp>-<suffix>.
func generateTransactionID() string {
	ts := time.Now().UTC().Format("20060102150405")
	suffix := strings.ToUpper(uuid.New().String()[:6])
	return fmt.Sprintf("TXN%s-%s", ts, suffix)
}

func actionForStatus(status SaleStatus) audit.ActionType {
	if status == StatusRefunded {
		return audit.ActionRefund
	}
	return audit.ActionVoid
}

func salePreImage(s *Sale) map[string]any {
	return map[string]any{
		"transaction_id": s.TransactionID,
		"total_amount":   s.TotalAmount,
		"tax_amount":     s.TaxAmount,
		"status":         string(s.Status),
		"created_at":     s.CreatedAt.Format(time.RFC3339),
		"updated_at":     s.UpdatedAt.Format(time.RFC3339),
	}
}

func itemPreImage(item *SaleItem) map[string]any {
	return map[string]any{
		"id":             item.ID.String(),
		"transaction_id": item.TransactionID,
		"item_name":      item.Name,
		"price":          item.Price,
		"quantity":       item.Quantity,
		"subtotal":       item.Subtotal,
		"status":         string(item.Status),
	}
}
