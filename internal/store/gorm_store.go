package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/example/atlaspay/internal/models"
)

// GormStore is the Postgres-backed TransactionStore.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) FindByOrderID(ctx context.Context, orderID string) (*models.PaymentTransaction, error) {
	var txn models.PaymentTransaction
	if err := s.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &txn, nil
}

func (s *GormStore) FindByGatewayID(ctx context.Context, gatewayID string) (*models.PaymentTransaction, error) {
	var txn models.PaymentTransaction
	if err := s.db.WithContext(ctx).
		Where("gateway_transaction_id = ?", gatewayID).
		First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &txn, nil
}

func (s *GormStore) Create(ctx context.Context, orderID string, amountMinorUnits int64, currency string) (*models.PaymentTransaction, error) {
	txn := &models.PaymentTransaction{
		OrderID:          orderID,
		AmountMinorUnits: amountMinorUnits,
		Currency:         currency,
		Status:           models.StatusPending,
	}
	if err := s.db.WithContext(ctx).Create(txn).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateOrder
		}
		return nil, err
	}
	return txn, nil
}

// CompareAndSwap guards the update with the version column. The column list is
// closed: order_id, amount and currency are write-once and never part of a swap.
func (s *GormStore) CompareAndSwap(ctx context.Context, txn *models.PaymentTransaction, mutate func(*models.PaymentTransaction)) (*models.PaymentTransaction, error) {
	updated := *txn
	mutate(&updated)
	updated.Version = txn.Version + 1

	res := s.db.WithContext(ctx).
		Model(&models.PaymentTransaction{}).
		Where("id = ? AND version = ?", txn.ID, txn.Version).
		Select("gateway_transaction_id", "status", "create_time", "perform_time", "cancel_time", "cancel_reason", "version").
		Updates(&updated)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrVersionConflict
	}
	return &updated, nil
}

func (s *GormStore) InRange(ctx context.Context, from, to int64) ([]models.PaymentTransaction, error) {
	var txns []models.PaymentTransaction
	if err := s.db.WithContext(ctx).
		Where("create_time >= ? AND create_time < ?", from, to).
		Order("create_time asc").
		Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}
