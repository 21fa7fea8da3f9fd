package reporting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Service provides read-only filtered retrieval over the sales ledger.
type Service interface {
	// ListSales returns sale summaries matching the filter, newest first by
	// default.
	ListSales(ctx context.Context, f ListFilter) ([]*SaleSummary, error)

	// GetSaleDetail returns the sale joined with all its items as a
	// denormalized row set.
	GetSaleDetail(ctx context.Context, transactionID string) ([]*SaleDetailRow, error)

	// GetDailySummary aggregates one day of trading; empty date means today.
	GetDailySummary(ctx context.Context, date string) (*DailySummary, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger *zap.Logger) Service {
	return &service{repo: repo, logger: logger}
}

var validStatuses = map[string]bool{
	"COMPLETED": true,
	"REFUNDED":  true,
	"VOIDED":    true,
}

func (s *service) ListSales(ctx context.Context, f ListFilter) ([]*SaleSummary, error) {
	normalized, err := normalizeFilter(f)
	if err != nil {
		return nil, err
	}

	summaries, err := s.repo.ListSales(ctx, normalized)
	if err != nil {
		s.logger.Error("failed to list sales", zap.Error(err))
		return nil, err
	}
	return summaries, nil
}

func (s *service) GetSaleDetail(ctx context.Context, transactionID string) ([]*SaleDetailRow, error) {
	if transactionID == "" {
		return nil, fmt.Errorf("%w: transaction_id is required", ErrValidation)
	}
	return s.repo.GetSaleDetail(ctx, transactionID)
}

func (s *service) GetDailySummary(ctx context.Context, date string) (*DailySummary, error) {
	if date == "" {
		date = time.Now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, fmt.Errorf("%w: invalid date %q", ErrValidation, date)
	}
	return s.repo.DailySummary(ctx, date)
}

// normalizeFilter validates every caller-supplied field against its
// allow-list and fills in the defaults.
func normalizeFilter(f ListFilter) (ListFilter, error) {
	for _, date := range []string{f.DateFrom, f.DateTo} {
		if date == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", date); err != nil {
			return f, fmt.Errorf("%w: invalid date %q", ErrValidation, date)
		}
	}

	if f.Status != "" {
		f.Status = strings.ToUpper(f.Status)
		if !validStatuses[f.Status] {
			return f, fmt.Errorf("%w: unknown status %q", ErrValidation, f.Status)
		}
	}

	if f.SortBy == "" {
		f.SortBy = defaultSortKey
	}
	if _, ok := sortColumns[f.SortBy]; !ok {
		return f, fmt.Errorf("%w: unknown sort key %q", ErrValidation, f.SortBy)
	}

	switch strings.ToUpper(f.SortOrder) {
	case "":
		f.SortOrder = "DESC"
	case "ASC", "DESC":
		f.SortOrder = strings.ToUpper(f.SortOrder)
	default:
		return f, fmt.Errorf("%w: sort order must be ASC or DESC", ErrValidation)
	}

	if f.Limit < 0 {
		return f, fmt.Errorf("%w: limit must be >= 0", ErrValidation)
	}
	if f.Limit == 0 {
		f.Limit = defaultLimit
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}

	return f, nil
}
