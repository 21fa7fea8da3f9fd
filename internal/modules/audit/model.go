package audit

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrValidation marks malformed input rejected before any query runs.
var ErrValidation = errors.New("validation failed")

// ActionType classifies what kind of correction produced an audit entry.
type ActionType string

const (
	ActionEdit   ActionType = "EDIT"
	ActionRefund ActionType = "REFUND"
	ActionVoid   ActionType = "VOID"
	// ActionRestore is part of the recorded vocabulary but no operation
	// currently produces it.
	ActionRestore ActionType = "RESTORE"
)

// Entry is one immutable record of a corrective mutation. Entries are only
// ever inserted; there is no update or delete path.
type Entry struct {
	ID            uuid.UUID      `json:"id"`
	TransactionID string         `json:"transaction_id"`
	ActionType    ActionType     `json:"action_type"`
	OldValues     map[string]any `json:"old_values,omitempty"`
	NewValues     map[string]any `json:"new_values,omitempty"`
	AdminUser     string         `json:"admin_user"`
	Reason        string         `json:"reason,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}
