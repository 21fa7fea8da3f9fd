package audit

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type mockRecorder struct {
	entries []*Entry
	listErr error
}

func (m *mockRecorder) Append(_ context.Context, _ *sql.Tx, e *Entry) error {
	m.entries = append(m.entries, e)
	return nil
}

func (m *mockRecorder) ListByTransaction(_ context.Context, transactionID string) ([]*Entry, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []*Entry
	for _, e := range m.entries {
		if e.TransactionID == transactionID {
			out = append(out, e)
		}
	}
	return out, nil
}

func TestGetAuditLog_RequiresTransactionID(t *testing.T) {
	svc := NewService(&mockRecorder{}, zaptest.NewLogger(t))
	_, err := svc.GetAuditLog(context.Background(), "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGetAuditLog_ReturnsEntriesForTransaction(t *testing.T) {
	recorder := &mockRecorder{entries: []*Entry{
		{TransactionID: "TXN-A", ActionType: ActionEdit, AdminUser: "admin"},
		{TransactionID: "TXN-B", ActionType: ActionVoid, AdminUser: "admin"},
		{TransactionID: "TXN-A", ActionType: ActionRefund, AdminUser: "admin"},
	}}
	svc := NewService(recorder, zaptest.NewLogger(t))

	entries, err := svc.GetAuditLog(context.Background(), "TXN-A")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, "TXN-A", e.TransactionID)
	}
}

func TestSnapshotMarshalling(t *testing.T) {
	empty, err := marshalSnapshot(nil)
	require.NoError(t, err)
	assert.Nil(t, empty)

	raw, err := marshalSnapshot(map[string]any{"price": 500.0, "status": "ACTIVE"})
	require.NoError(t, err)
	back, err := unmarshalSnapshot(raw.([]byte))
	require.NoError(t, err)
	assert.Equal(t, 500.0, back["price"])
	assert.Equal(t, "ACTIVE", back["status"])

	none, err := unmarshalSnapshot(nil)
	require.NoError(t, err)
	assert.Nil(t, none)
}
