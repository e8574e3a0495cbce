package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/atlaspay/internal/models"
)

// MemoryStore is a mutex-guarded TransactionStore with the same CAS semantics
// as the Postgres store. Tests and local development use it.
type MemoryStore struct {
	mu   sync.Mutex
	byID map[uuid.UUID]models.PaymentTransaction
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[uuid.UUID]models.PaymentTransaction)}
}

func (s *MemoryStore) FindByOrderID(ctx context.Context, orderID string) (*models.PaymentTransaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, txn := range s.byID {
		if txn.OrderID == orderID {
			out := txn
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) FindByGatewayID(ctx context.Context, gatewayID string) (*models.PaymentTransaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, txn := range s.byID {
		if txn.GatewayTransactionID != nil && *txn.GatewayTransactionID == gatewayID {
			out := txn
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) Create(ctx context.Context, orderID string, amountMinorUnits int64, currency string) (*models.PaymentTransaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, txn := range s.byID {
		if txn.OrderID == orderID {
			return nil, ErrDuplicateOrder
		}
	}
	txn := models.PaymentTransaction{
		OrderID:          orderID,
		AmountMinorUnits: amountMinorUnits,
		Currency:         currency,
		Status:           models.StatusPending,
	}
	txn.ID = uuid.New()
	txn.CreatedAt = time.Now()
	txn.UpdatedAt = txn.CreatedAt
	s.byID[txn.ID] = txn
	out := txn
	return &out, nil
}

func (s *MemoryStore) CompareAndSwap(ctx context.Context, txn *models.PaymentTransaction, mutate func(*models.PaymentTransaction)) (*models.PaymentTransaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.byID[txn.ID]
	if !ok {
		return nil, ErrNotFound
	}
	if current.Version != txn.Version {
		return nil, ErrVersionConflict
	}
	updated := current
	mutate(&updated)
	updated.Version = current.Version + 1
	updated.UpdatedAt = time.Now()
	s.byID[txn.ID] = updated
	out := updated
	return &out, nil
}

func (s *MemoryStore) InRange(ctx context.Context, from, to int64) ([]models.PaymentTransaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var txns []models.PaymentTransaction
	for _, txn := range s.byID {
		if txn.CreateTime >= from && txn.CreateTime < to {
			txns = append(txns, txn)
		}
	}
	sort.Slice(txns, func(i, j int) bool { return txns[i].CreateTime < txns[j].CreateTime })
	return txns, nil
}
