package services

import "github.com/example/atlaspay/internal/models"

// ValidationResult is the outcome of matching a gateway request against the
// stored transaction.
type ValidationResult int

const (
	ValidationOK ValidationResult = iota
	ValidationOrderMismatch
	ValidationAmountMismatch
)

// ValidateOrderAmount checks that the request's declared order and amount match
// the stored transaction. Comparison is exact integer equality on minor units;
// a mismatch is fatal for the call and never auto-corrected.
func ValidateOrderAmount(txn *models.PaymentTransaction, orderID string, amountMinorUnits int64) ValidationResult {
	if txn.OrderID != orderID {
		return ValidationOrderMismatch
	}
	if txn.AmountMinorUnits != amountMinorUnits {
		return ValidationAmountMismatch
	}
	return ValidationOK
}
