package reporting

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// mockRepository captures the filter the service hands down.
type mockRepository struct {
	lastFilter  ListFilter
	listCalled  bool
	summaries   []*SaleSummary
	detail      []*SaleDetailRow
	daily       *DailySummary
	listErr     error
	detailErr   error
	lastDayDate string
}

func (m *mockRepository) ListSales(_ context.Context, f ListFilter) ([]*SaleSummary, error) {
	m.listCalled = true
	m.lastFilter = f
	return m.summaries, m.listErr
}

func (m *mockRepository) GetSaleDetail(_ context.Context, _ string) ([]*SaleDetailRow, error) {
	return m.detail, m.detailErr
}

func (m *mockRepository) DailySummary(_ context.Context, date string) (*DailySummary, error) {
	m.lastDayDate = date
	return m.daily, nil
}

func newTestService(t *testing.T) (Service, *mockRepository) {
	repo := &mockRepository{}
	return NewService(repo, zaptest.NewLogger(t)), repo
}

func TestListSales_AppliesDefaults(t *testing.T) {
	svc, repo := newTestService(t)

	_, err := svc.ListSales(context.Background(), ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, "created_at", repo.lastFilter.SortBy)
	assert.Equal(t, "DESC", repo.lastFilter.SortOrder)
	assert.Equal(t, defaultLimit, repo.lastFilter.Limit)
}

func TestListSales_CapsLimit(t *testing.T) {
	svc, repo := newTestService(t)

	_, err := svc.ListSales(context.Background(), ListFilter{Limit: 10000})
	require.NoError(t, err)
	assert.Equal(t, maxLimit, repo.lastFilter.Limit)
}

func TestListSales_NormalizesStatusAndOrder(t *testing.T) {
	svc, repo := newTestService(t)

	_, err := svc.ListSales(context.Background(), ListFilter{
		Status:    "refunded",
		SortBy:    "total_amount",
		SortOrder: "asc",
		Limit:     5,
	})
	require.NoError(t, err)
	assert.Equal(t, "REFUNDED", repo.lastFilter.Status)
	assert.Equal(t, "total_amount", repo.lastFilter.SortBy)
	assert.Equal(t, "ASC", repo.lastFilter.SortOrder)
	assert.Equal(t, 5, repo.lastFilter.Limit)
}

func TestListSales_RejectsBadFilters(t *testing.T) {
	cases := []struct {
		name   string
		filter ListFilter
	}{
		{"unknown sort key", ListFilter{SortBy: "price; DROP TABLE sales"}},
		{"unknown sort order", ListFilter{SortOrder: "SIDEWAYS"}},
		{"unknown status", ListFilter{Status: "SHIPPED"}},
		{"bad date_from", ListFilter{DateFrom: "31-12-2025"}},
		{"bad date_to", ListFilter{DateTo: "yesterday"}},
		{"negative limit", ListFilter{Limit: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, repo := newTestService(t)
			_, err := svc.ListSales(context.Background(), tc.filter)
			assert.ErrorIs(t, err, ErrValidation)
			assert.False(t, repo.listCalled, "repository must not be reached with a bad filter")
		})
	}
}

func TestGetSaleDetail_RequiresTransactionID(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.GetSaleDetail(context.Background(), "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGetSaleDetail_PassesThroughNotFound(t *testing.T) {
	svc, repo := newTestService(t)
	repo.detailErr = ErrNotFound
	_, err := svc.GetSaleDetail(context.Background(), "TXN20260901120000-ABCDEF")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetDailySummary_DefaultsToToday(t *testing.T) {
	svc, repo := newTestService(t)
	repo.daily = &DailySummary{}

	_, err := svc.GetDailySummary(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, time.Now().Format("2006-01-02"), repo.lastDayDate)
}

func TestGetDailySummary_RejectsBadDate(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.GetDailySummary(context.Background(), "Sept 1")
	assert.ErrorIs(t, err, ErrValidation)
}
