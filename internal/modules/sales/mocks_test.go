package sales

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rioraa/pos-backend/internal/modules/audit"
)

// memRepo is an in-memory Repository with the same concurrency semantics as
// the Postgres implementation: per-sale row locks serialize mutations of one
// sale's items, and a guarded write against a stale row version fails with
// ErrConflict and appends nothing. The state mutex only protects the maps;
// it is never held across a whole mutation.
type memRepo struct {
	mu       sync.Mutex
	saleMus  map[string]*sync.Mutex
	sales    map[string]*Sale
	items    map[uuid.UUID]*SaleItem
	order    map[string][]uuid.UUID // item insertion order per sale
	entries  []*audit.Entry

	// failCreates makes the next n CreateSale calls report a duplicate
	// transaction id.
	failCreates int

	// afterGetItem runs after GetItem returns, used to interleave a
	// competing writer between the pre-image read and the guarded write.
	afterGetItem func()
}

func newMemRepo() *memRepo {
	return &memRepo{
		saleMus: map[string]*sync.Mutex{},
		sales:   map[string]*Sale{},
		items:   map[uuid.UUID]*SaleItem{},
		order:   map[string][]uuid.UUID{},
	}
}

func (m *memRepo) CreateSale(_ context.Context, s *Sale) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreates > 0 {
		m.failCreates--
		return ErrDuplicateTransaction
	}
	if _, exists := m.sales[s.TransactionID]; exists {
		return ErrDuplicateTransaction
	}

	now := time.Now()
	stored := cloneSale(s)
	stored.CreatedAt = now
	stored.UpdatedAt = now
	m.sales[s.TransactionID] = stored
	m.saleMus[s.TransactionID] = &sync.Mutex{}
	for _, item := range s.Items {
		storedItem := cloneItem(item)
		storedItem.CreatedAt = now
		m.items[item.ID] = storedItem
		m.order[s.TransactionID] = append(m.order[s.TransactionID], item.ID)
	}
	return nil
}

func (m *memRepo) GetSale(_ context.Context, transactionID string) (*Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.sales[transactionID]
	if !ok {
		return nil, ErrNotFound
	}
	s := cloneSale(stored)
	for _, id := range m.order[transactionID] {
		s.Items = append(s.Items, cloneItem(m.items[id]))
	}
	return s, nil
}

func (m *memRepo) GetItem(_ context.Context, itemID uuid.UUID) (*SaleItem, error) {
	m.mu.Lock()
	stored, ok := m.items[itemID]
	var item *SaleItem
	if ok {
		item = cloneItem(stored)
	}
	m.mu.Unlock()

	if !ok {
		return nil, ErrNotFound
	}
	if m.afterGetItem != nil {
		m.afterGetItem()
	}
	return item, nil
}

func (m *memRepo) UpdateSaleStatus(_ context.Context, transactionID string, status SaleStatus, expectedVersion int, entry *audit.Entry) error {
	lock, err := m.lockSale(transactionID)
	if err != nil {
		return err
	}
	defer lock.Unlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	stored := m.sales[transactionID]
	if stored.Version != expectedVersion {
		return ErrConflict
	}
	stored.Status = status
	stored.Version++
	stored.UpdatedAt = time.Now()
	// Cascade bumps item versions so stale item pre-images lose.
	for _, id := range m.order[transactionID] {
		m.items[id].Status = CascadeItemStatus(status)
		m.items[id].Version++
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memRepo) UpdateItem(_ context.Context, item *SaleItem, expectedVersion int, entry *audit.Entry) error {
	lock, err := m.lockSale(item.TransactionID)
	if err != nil {
		return err
	}
	defer lock.Unlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.items[item.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.Version != expectedVersion {
		return ErrConflict
	}
	stored.Name = item.Name
	stored.Price = item.Price
	stored.Quantity = item.Quantity
	stored.Subtotal = item.Subtotal
	stored.Version++
	m.recalcLocked(stored.TransactionID)
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memRepo) VoidItem(_ context.Context, itemID uuid.UUID, expectedVersion int, entry *audit.Entry) error {
	lock, err := m.lockSale(entry.TransactionID)
	if err != nil {
		return err
	}
	defer lock.Unlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.items[itemID]
	if !ok {
		return ErrNotFound
	}
	if stored.Version != expectedVersion {
		return ErrConflict
	}
	stored.Status = ItemVoided
	stored.Version++
	m.recalcLocked(stored.TransactionID)
	m.entries = append(m.entries, entry)
	return nil
}

// lockSale mirrors the row lock the Postgres repository takes on the sale
// header before mutating any of the sale's rows.
func (m *memRepo) lockSale(transactionID string) (*sync.Mutex, error) {
	m.mu.Lock()
	lock, ok := m.saleMus[transactionID]
	m.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}
	lock.Lock()
	return lock, nil
}

func (m *memRepo) recalcLocked(transactionID string) {
	var subtotal float64
	for _, id := range m.order[transactionID] {
		if item := m.items[id]; item.Status == ItemActive {
			subtotal += item.Subtotal
		}
	}
	sale := m.sales[transactionID]
	sale.TaxAmount = CalcTax(subtotal)
	sale.TotalAmount = subtotal + sale.TaxAmount
	sale.Subtotal = subtotal
	sale.Version++
	sale.UpdatedAt = time.Now()
}

func (m *memRepo) auditCount(transactionID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.entries {
		if e.TransactionID == transactionID {
			n++
		}
	}
	return n
}

func cloneSale(s *Sale) *Sale {
	c := *s
	c.Items = nil
	return &c
}

func cloneItem(item *SaleItem) *SaleItem {
	c := *item
	return &c
}
