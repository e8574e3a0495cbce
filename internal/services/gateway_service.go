package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/example/atlaspay/internal/metrics"
	"github.com/example/atlaspay/internal/models"
	"github.com/example/atlaspay/internal/store"
	"github.com/example/atlaspay/internal/worker"
)

// casAttempts bounds the internal retry on version conflicts. Past it the call
// fails with InternalError and the gateway retries the whole call, which is
// safe by idempotency.
const casAttempts = 3

var errCASExhausted = errors.New("compare-and-swap retries exhausted")

// GatewayService implements the six reconciliation operations of the payment
// gateway protocol as guarded transitions over the transaction store.
type GatewayService struct {
	store    store.TransactionStore
	notifier Notifier
	pool     *worker.Pool
	log      *slog.Logger
	timeout  time.Duration

	// now returns the current time in epoch millis; swapped in tests.
	now func() int64
}

func NewGatewayService(st store.TransactionStore, notifier Notifier, pool *worker.Pool, log *slog.Logger, timeout time.Duration) *GatewayService {
	if log == nil {
		log = slog.Default()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &GatewayService{
		store:    st,
		notifier: notifier,
		pool:     pool,
		log:      log,
		timeout:  timeout,
		now:      func() int64 { return time.Now().UnixMilli() },
	}
}

type GatewayAccount struct {
	OrderID string `json:"order_id"`
}

type CheckPerformParams struct {
	Amount  int64          `json:"amount"`
	Account GatewayAccount `json:"account"`
}

type CreateTransactionParams struct {
	ID      string         `json:"id"`
	Time    int64          `json:"time"`
	Amount  int64          `json:"amount"`
	Account GatewayAccount `json:"account"`
}

type PerformTransactionParams struct {
	ID string `json:"id"`
}

type CancelTransactionParams struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

type CheckTransactionParams struct {
	ID string `json:"id"`
}

type StatementParams struct {
	From int64 `json:"from"`
	To   int64 `json:"to"`
}

type CreateTransactionResult struct {
	CreateTime  int64  `json:"create_time"`
	Transaction string `json:"transaction"`
	State       int    `json:"state"`
}

type PerformTransactionResult struct {
	PerformTime int64  `json:"perform_time"`
	Transaction string `json:"transaction"`
	State       int    `json:"state"`
}

type CancelTransactionResult struct {
	CancelTime  int64  `json:"cancel_time"`
	Transaction string `json:"transaction"`
	State       int    `json:"state"`
}

type CheckTransactionResult struct {
	CreateTime  int64   `json:"create_time"`
	PerformTime int64   `json:"perform_time"`
	CancelTime  int64   `json:"cancel_time"`
	Transaction string  `json:"transaction"`
	State       int     `json:"state"`
	Reason      *string `json:"reason"`
}

type StatementEntry struct {
	Time        int64          `json:"time"`
	Amount      int64          `json:"amount"`
	Account     GatewayAccount `json:"account"`
	CreateTime  int64          `json:"create_time"`
	PerformTime int64          `json:"perform_time"`
	CancelTime  int64          `json:"cancel_time"`
	Transaction string         `json:"transaction"`
	State       int            `json:"state"`
	Reason      *string        `json:"reason"`
}

// CheckPerformTransaction is the read-only precondition check: the order must
// be known, still pending, and the declared amount must match exactly.
func (s *GatewayService) CheckPerformTransaction(ctx context.Context, params CheckPerformParams, id any) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	txn, err := s.store.FindByOrderID(ctx, params.Account.OrderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &TransactionError{Info: GatewayErrorOrderNotFound, ID: id}
		}
		return s.internal(err, "CheckPerformTransaction", id)
	}

	if txn.Status != models.StatusPending {
		return &TransactionError{Info: GatewayErrorOrderAlreadyProcessed, ID: id}
	}

	switch ValidateOrderAmount(txn, params.Account.OrderID, params.Amount) {
	case ValidationAmountMismatch:
		return &TransactionError{Info: GatewayErrorAmountMismatch, ID: id}
	case ValidationOrderMismatch:
		return &TransactionError{Info: GatewayErrorOrderNotFound, ID: id}
	}

	return nil
}

// CreateTransaction binds the gateway's transaction id to the local order and
// moves it PENDING -> PROCESSING. A replay with an already-bound gateway id
// answers from stored fields without re-validating the request.
func (s *GatewayService) CreateTransaction(ctx context.Context, params CreateTransactionParams, id any) (*CreateTransactionResult, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	for attempt := 0; attempt < casAttempts; attempt++ {
		// Idempotency guard: this gateway id may already be bound.
		existing, err := s.store.FindByGatewayID(ctx, params.ID)
		if err == nil {
			return &CreateTransactionResult{
				CreateTime:  existing.CreateTime,
				Transaction: params.ID,
				State:       existing.GatewayState(),
			}, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, s.internal(err, "CreateTransaction", id)
		}

		txn, err := s.store.FindByOrderID(ctx, params.Account.OrderID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, &TransactionError{Info: GatewayErrorOrderNotFound, ID: id}
			}
			return nil, s.internal(err, "CreateTransaction", id)
		}

		if txn.Status != models.StatusPending {
			// A different gateway id already won this order.
			return nil, &TransactionError{Info: GatewayErrorOrderAlreadyProcessed, ID: id}
		}

		switch ValidateOrderAmount(txn, params.Account.OrderID, params.Amount) {
		case ValidationAmountMismatch:
			return nil, &TransactionError{Info: GatewayErrorAmountMismatch, ID: id}
		case ValidationOrderMismatch:
			return nil, &TransactionError{Info: GatewayErrorOrderNotFound, ID: id}
		}

		createTime := params.Time
		if createTime == 0 {
			createTime = s.now()
		}
		gatewayID := params.ID

		updated, err := s.store.CompareAndSwap(ctx, txn, func(t *models.PaymentTransaction) {
			t.GatewayTransactionID = &gatewayID
			t.Status = models.StatusProcessing
			t.CreateTime = createTime
		})
		if err == nil {
			metrics.TransitionsTotal.WithLabelValues(string(models.StatusProcessing)).Inc()
			return &CreateTransactionResult{
				CreateTime:  updated.CreateTime,
				Transaction: params.ID,
				State:       updated.GatewayState(),
			}, nil
		}
		if !errors.Is(err, store.ErrVersionConflict) {
			return nil, s.internal(err, "CreateTransaction", id)
		}
		metrics.CASConflictsTotal.Inc()
		// Lost the race; re-read and either replay (same gateway id won) or
		// report the order as taken (a different id won).
	}

	return nil, s.internal(errCASExhausted, "CreateTransaction", id)
}

// PerformTransaction completes the payment: PROCESSING -> COMPLETED, stamping
// perform_time once. Replays answer with the stored perform_time.
func (s *GatewayService) PerformTransaction(ctx context.Context, params PerformTransactionParams, id any) (*PerformTransactionResult, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	for attempt := 0; attempt < casAttempts; attempt++ {
		txn, err := s.store.FindByGatewayID(ctx, params.ID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, &TransactionError{Info: GatewayErrorTransactionNotFound, ID: id}
			}
			return nil, s.internal(err, "PerformTransaction", id)
		}

		switch txn.Status {
		case models.StatusCompleted:
			return &PerformTransactionResult{
				PerformTime: txn.PerformTime,
				Transaction: params.ID,
				State:       models.StateCompleted,
			}, nil
		case models.StatusProcessing:
			// fall through to the transition
		default:
			return nil, &TransactionError{Info: GatewayErrorCannotPerform, ID: id}
		}

		performTime := s.now()
		updated, err := s.store.CompareAndSwap(ctx, txn, func(t *models.PaymentTransaction) {
			t.Status = models.StatusCompleted
			t.PerformTime = performTime
		})
		if err == nil {
			metrics.TransitionsTotal.WithLabelValues(string(models.StatusCompleted)).Inc()
			s.dispatchNotify(PaymentOutcome{
				OrderID:          updated.OrderID,
				Outcome:          OutcomeCompleted,
				AmountMinorUnits: updated.AmountMinorUnits,
				Currency:         updated.Currency,
			})
			return &PerformTransactionResult{
				PerformTime: updated.PerformTime,
				Transaction: params.ID,
				State:       models.StateCompleted,
			}, nil
		}
		if !errors.Is(err, store.ErrVersionConflict) {
			return nil, s.internal(err, "PerformTransaction", id)
		}
		metrics.CASConflictsTotal.Inc()
	}

	return nil, s.internal(errCASExhausted, "PerformTransaction", id)
}

// CancelTransaction moves PENDING|PROCESSING -> CANCELLED, stamping cancel_time
// and the reason once. Completed payments cannot be cancelled through this path.
func (s *GatewayService) CancelTransaction(ctx context.Context, params CancelTransactionParams, id any) (*CancelTransactionResult, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	for attempt := 0; attempt < casAttempts; attempt++ {
		txn, err := s.store.FindByGatewayID(ctx, params.ID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, &TransactionError{Info: GatewayErrorTransactionNotFound, ID: id}
			}
			return nil, s.internal(err, "CancelTransaction", id)
		}

		switch txn.Status {
		case models.StatusCancelled:
			return &CancelTransactionResult{
				CancelTime:  txn.CancelTime,
				Transaction: params.ID,
				State:       models.StateCancelled,
			}, nil
		case models.StatusCompleted:
			return nil, &TransactionError{Info: GatewayErrorAlreadyCompleted, ID: id}
		}

		cancelTime := s.now()
		reason := params.Reason
		updated, err := s.store.CompareAndSwap(ctx, txn, func(t *models.PaymentTransaction) {
			t.Status = models.StatusCancelled
			t.CancelTime = cancelTime
			t.CancelReason = &reason
		})
		if err == nil {
			metrics.TransitionsTotal.WithLabelValues(string(models.StatusCancelled)).Inc()
			s.dispatchNotify(PaymentOutcome{
				OrderID:          updated.OrderID,
				Outcome:          OutcomeCancelled,
				AmountMinorUnits: updated.AmountMinorUnits,
				Currency:         updated.Currency,
				Reason:           reason,
			})
			return &CancelTransactionResult{
				CancelTime:  updated.CancelTime,
				Transaction: params.ID,
				State:       models.StateCancelled,
			}, nil
		}
		if !errors.Is(err, store.ErrVersionConflict) {
			return nil, s.internal(err, "CancelTransaction", id)
		}
		metrics.CASConflictsTotal.Inc()
	}

	return nil, s.internal(errCASExhausted, "CancelTransaction", id)
}

// CheckTransaction reports the state and timestamps bound to a gateway id.
// Never mutates state.
func (s *GatewayService) CheckTransaction(ctx context.Context, params CheckTransactionParams, id any) (*CheckTransactionResult, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	txn, err := s.store.FindByGatewayID(ctx, params.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &TransactionError{Info: GatewayErrorTransactionNotFound, ID: id}
		}
		return nil, s.internal(err, "CheckTransaction", id)
	}

	return &CheckTransactionResult{
		CreateTime:  txn.CreateTime,
		PerformTime: txn.PerformTime,
		CancelTime:  txn.CancelTime,
		Transaction: params.ID,
		State:       txn.GatewayState(),
		Reason:      txn.CancelReason,
	}, nil
}

// GetStatement exports transactions created in [from, to), create_time ascending.
func (s *GatewayService) GetStatement(ctx context.Context, params StatementParams, id any) ([]StatementEntry, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	txns, err := s.store.InRange(ctx, params.From, params.To)
	if err != nil {
		return nil, s.internal(err, "GetStatement", id)
	}

	entries := make([]StatementEntry, 0, len(txns))
	for _, t := range txns {
		var gatewayID string
		if t.GatewayTransactionID != nil {
			gatewayID = *t.GatewayTransactionID
		}
		entries = append(entries, StatementEntry{
			Time:        t.CreateTime,
			Amount:      t.AmountMinorUnits,
			Account:     GatewayAccount{OrderID: t.OrderID},
			CreateTime:  t.CreateTime,
			PerformTime: t.PerformTime,
			CancelTime:  t.CancelTime,
			Transaction: gatewayID,
			State:       t.GatewayState(),
			Reason:      t.CancelReason,
		})
	}

	return entries, nil
}

func (s *GatewayService) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

func (s *GatewayService) internal(err error, method string, id any) *TransactionError {
	s.log.Error("gateway operation failed", "method", method, "err", err)
	return &TransactionError{Info: GatewayErrorInternal, ID: id}
}

// dispatchNotify hands the outcome to the notification channel without ever
// failing the transition that triggered it.
func (s *GatewayService) dispatchNotify(outcome PaymentOutcome) {
	if s.notifier == nil {
		return
	}
	job := func() {
		if err := s.notifier.NotifyPaymentOutcome(outcome); err != nil {
			s.log.Error("payment outcome notification failed",
				"order_id", outcome.OrderID, "outcome", outcome.Outcome, "err", err)
		}
	}
	if s.pool != nil {
		s.pool.Submit(job)
		return
	}
	job()
}
