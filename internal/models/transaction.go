package models

// TransactionStatus is the lifecycle state of a payment transaction. It is
// governed solely by the gateway service; handlers never set it directly.
type TransactionStatus string

const (
	StatusPending    TransactionStatus = "PENDING"
	StatusProcessing TransactionStatus = "PROCESSING"
	StatusCompleted  TransactionStatus = "COMPLETED"
	StatusCancelled  TransactionStatus = "CANCELLED"
	StatusFailed     TransactionStatus = "FAILED"
)

// Numeric states reported back to the gateway in RPC results.
const (
	StateAwaitingCreate = 0
	StateProcessing     = 1
	StateCompleted      = 2
	StateCancelled      = -1
)

// PaymentTransaction stores one order's payment attempt and its lifecycle state.
// order_id, amount_minor_units and currency are write-once; the gateway
// transaction id is bound at most once. Every transition bumps version, which
// the store uses for compare-and-swap updates.
type PaymentTransaction struct {
	BaseModel
	OrderID              string            `gorm:"uniqueIndex" json:"order_id"`
	GatewayTransactionID *string           `gorm:"uniqueIndex" json:"gateway_transaction_id"`
	AmountMinorUnits     int64             `json:"amount_minor_units"`
	Currency             string            `json:"currency"`
	Status               TransactionStatus `gorm:"type:varchar(16);index" json:"status"`
	CreateTime           int64             `json:"create_time"`
	PerformTime          int64             `json:"perform_time"`
	CancelTime           int64             `json:"cancel_time"`
	CancelReason         *string           `json:"cancel_reason"`
	Version              int               `gorm:"not null;default:0" json:"version"`
}

// GatewayState maps the lifecycle status to the gateway's numeric state codes.
func (t *PaymentTransaction) GatewayState() int {
	switch t.Status {
	case StatusProcessing:
		return StateProcessing
	case StatusCompleted:
		return StateCompleted
	case StatusCancelled, StatusFailed:
		return StateCancelled
	default:
		return StateAwaitingCreate
	}
}

// Terminal reports whether the transaction can never transition again.
func (t *PaymentTransaction) Terminal() bool {
	return t.Status == StatusCompleted || t.Status == StatusCancelled
}
