package services

import (
	"testing"

	"github.com/example/atlaspay/internal/models"
)

func TestValidateOrderAmount(t *testing.T) {
	txn := func(orderID string, amount int64) *models.PaymentTransaction {
		return &models.PaymentTransaction{OrderID: orderID, AmountMinorUnits: amount, Currency: "UZS"}
	}

	t.Run("Given an exact amount match Then OK", func(t *testing.T) {
		for _, amount := range []int64{0, 1, 100, 150000, 1 << 40} {
			if got := ValidateOrderAmount(txn("ORD-1", amount), "ORD-1", amount); got != ValidationOK {
				t.Errorf("amount %d: expected OK, got %v", amount, got)
			}
		}
	})

	t.Run("Given amount off by one in either direction Then AmountMismatch", func(t *testing.T) {
		for _, amount := range []int64{1, 100, 150000, 1 << 40} {
			if got := ValidateOrderAmount(txn("ORD-1", amount), "ORD-1", amount-1); got != ValidationAmountMismatch {
				t.Errorf("amount %d-1: expected AmountMismatch, got %v", amount, got)
			}
			if got := ValidateOrderAmount(txn("ORD-1", amount), "ORD-1", amount+1); got != ValidationAmountMismatch {
				t.Errorf("amount %d+1: expected AmountMismatch, got %v", amount, got)
			}
		}
	})

	t.Run("Given a different order id Then OrderMismatch regardless of amount", func(t *testing.T) {
		if got := ValidateOrderAmount(txn("ORD-1", 100), "ORD-2", 100); got != ValidationOrderMismatch {
			t.Errorf("expected OrderMismatch, got %v", got)
		}
	})
}
