package services

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/example/atlaspay/internal/store"
)

type erroringNotifier struct{}

func (erroringNotifier) NotifyPaymentOutcome(PaymentOutcome) error {
	return errors.New("bot api unreachable")
}

func TestFormatMinorUnits(t *testing.T) {
	cases := []struct {
		amount   int64
		currency string
		want     string
	}{
		{15000000, "UZS", "150,000 UZS"},
		{5000, "UZS", "50 UZS"},
		{0, "UZS", "0 UZS"},
		{123456789, "UZS", "1,234,567 UZS"},
		{5000, "", "50 UZS"},
	}

	for _, tc := range cases {
		if got := FormatMinorUnits(tc.amount, tc.currency); got != tc.want {
			t.Errorf("FormatMinorUnits(%d, %q) = %q, want %q", tc.amount, tc.currency, got, tc.want)
		}
	}
}

func TestTelegramNotifierUnconfigured(t *testing.T) {
	t.Run("Given no bot token Then SendMessage is a no-op", func(t *testing.T) {
		n := NewTelegramNotifier("", "42", nil)
		if err := n.SendMessage("42", "hello"); err != nil {
			t.Fatalf("expected nil for an unconfigured notifier, got %v", err)
		}
	})

	t.Run("Given no admin chat Then NotifyPaymentOutcome is a no-op", func(t *testing.T) {
		n := NewTelegramNotifier("token", "", nil)
		err := n.NotifyPaymentOutcome(PaymentOutcome{OrderID: "ORD-9", Outcome: OutcomeCompleted})
		if err != nil {
			t.Fatalf("expected nil for an unconfigured admin chat, got %v", err)
		}
	})
}

func TestNotificationFailureLoggedOnce(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	st := store.NewMemoryStore()
	svc := NewGatewayService(st, erroringNotifier{}, nil, log, time.Second)

	ctx := context.Background()
	if _, err := st.Create(ctx, "ORD-9", 5000, "UZS"); err != nil {
		t.Fatalf("seed transaction: %v", err)
	}
	createParams := CreateTransactionParams{
		ID:      "TX-9",
		Time:    1700000000000,
		Amount:  5000,
		Account: GatewayAccount{OrderID: "ORD-9"},
	}
	if _, err := svc.CreateTransaction(ctx, createParams, 1); err != nil {
		t.Fatalf("create transaction: %v", err)
	}

	if _, err := svc.PerformTransaction(ctx, PerformTransactionParams{ID: "TX-9"}, 2); err != nil {
		t.Fatalf("a notification failure must not fail the transition: %v", err)
	}

	if got := strings.Count(buf.String(), "notification failed"); got != 1 {
		t.Errorf("expected exactly one failure log line, got %d in %q", got, buf.String())
	}
}
