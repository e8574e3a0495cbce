package store

import (
	"context"
	"errors"

	"github.com/example/atlaspay/internal/models"
)

var (
	// ErrNotFound means no transaction matches the lookup key.
	ErrNotFound = errors.New("transaction not found")
	// ErrVersionConflict means a concurrent transition won the compare-and-swap.
	ErrVersionConflict = errors.New("transaction version conflict")
	// ErrDuplicateOrder means the order already has a payment transaction.
	ErrDuplicateOrder = errors.New("order already has a transaction")
)

// TransactionStore is the single source of truth for payment transactions.
// All mutations after creation go through CompareAndSwap so that concurrent
// webhook deliveries are safe without a global lock.
type TransactionStore interface {
	FindByOrderID(ctx context.Context, orderID string) (*models.PaymentTransaction, error)
	FindByGatewayID(ctx context.Context, gatewayID string) (*models.PaymentTransaction, error)
	Create(ctx context.Context, orderID string, amountMinorUnits int64, currency string) (*models.PaymentTransaction, error)
	// CompareAndSwap applies mutate to a copy of txn and persists it only if
	// the stored version still equals txn.Version. On success the returned
	// transaction carries version+1; a lost race returns ErrVersionConflict.
	CompareAndSwap(ctx context.Context, txn *models.PaymentTransaction, mutate func(*models.PaymentTransaction)) (*models.PaymentTransaction, error)
	// InRange returns transactions with create_time in [from, to), ascending.
	InRange(ctx context.Context, from, to int64) ([]models.PaymentTransaction, error)
}
