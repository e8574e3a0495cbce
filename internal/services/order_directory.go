package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/example/atlaspay/internal/models"
)

// ErrOrderUnknown means the order service has no record of the order.
var ErrOrderUnknown = errors.New("order unknown")

// OrderInfo is what the order service exposes about a payable order.
type OrderInfo struct {
	AmountMinorUnits int64
	Currency         string
	Status           string
}

// OrderDirectory is the Order Lookup collaborator owned by the order service.
type OrderDirectory interface {
	OrderExists(ctx context.Context, orderID string) (*OrderInfo, error)
}

type gormOrderDirectory struct {
	db *gorm.DB
}

// NewOrderDirectory reads the order service's table directly. The rows are
// owned by the order service; this side never writes them.
func NewOrderDirectory(db *gorm.DB) OrderDirectory {
	return &gormOrderDirectory{db: db}
}

func (d *gormOrderDirectory) OrderExists(ctx context.Context, orderID string) (*OrderInfo, error) {
	var order models.Order
	if err := d.db.WithContext(ctx).
		Where("order_number = ?", orderID).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderUnknown
		}
		return nil, err
	}
	return &OrderInfo{
		AmountMinorUnits: order.TotalMinorUnits,
		Currency:         order.Currency,
		Status:           order.Status,
	}, nil
}
