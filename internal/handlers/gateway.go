package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/atlaspay/internal/metrics"
	"github.com/example/atlaspay/internal/models"
	"github.com/example/atlaspay/internal/services"
	"github.com/example/atlaspay/internal/store"
	"github.com/example/atlaspay/internal/utils"
)

var validate = validator.New()

// GatewayHandler exposes the gateway reconciliation endpoint plus the merchant
// side surface (checkout link, transaction listing).
type GatewayHandler struct {
	db          *gorm.DB
	svc         *services.GatewayService
	orders      services.OrderDirectory
	store       store.TransactionStore
	log         *slog.Logger
	merchantID  string
	checkoutURL string
}

func NewGatewayHandler(db *gorm.DB, svc *services.GatewayService, orders services.OrderDirectory, st store.TransactionStore, log *slog.Logger, merchantID, checkoutURL string) *GatewayHandler {
	if log == nil {
		log = slog.Default()
	}
	return &GatewayHandler{
		db:          db,
		svc:         svc,
		orders:      orders,
		store:       st,
		log:         log,
		merchantID:  merchantID,
		checkoutURL: checkoutURL,
	}
}

type rpcRequest struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
	ID     any             `json:"id"`
}

// Pay handles the gateway's JSON-RPC style calls on /api/gateway/pay. The
// method set is closed: anything outside the six operations answers
// MethodNotFound.
func (h *GatewayHandler) Pay(c *fiber.Ctx) error {
	var req rpcRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	ctx := context.Background()

	var (
		result any
		err    error
	)

	// Metric label stays within the closed method set; arbitrary method
	// strings from the wire must not mint new label values.
	metricMethod := req.Method

	switch req.Method {
	case "CheckPerformTransaction":
		var params services.CheckPerformParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid params")
		}
		if err = h.svc.CheckPerformTransaction(ctx, params, req.ID); err == nil {
			result = fiber.Map{"allow": true}
		}
	case "CreateTransaction":
		var params services.CreateTransactionParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid params")
		}
		result, err = h.svc.CreateTransaction(ctx, params, req.ID)
	case "PerformTransaction":
		var params services.PerformTransactionParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid params")
		}
		result, err = h.svc.PerformTransaction(ctx, params, req.ID)
	case "CancelTransaction":
		var params services.CancelTransactionParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid params")
		}
		result, err = h.svc.CancelTransaction(ctx, params, req.ID)
	case "CheckTransaction":
		var params services.CheckTransactionParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid params")
		}
		result, err = h.svc.CheckTransaction(ctx, params, req.ID)
	case "GetStatement":
		var params services.StatementParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid params")
		}
		var entries []services.StatementEntry
		entries, err = h.svc.GetStatement(ctx, params, req.ID)
		if err == nil {
			result = fiber.Map{"transactions": entries}
		}
	default:
		metricMethod = "unknown"
		err = &services.TransactionError{Info: services.GatewayErrorMethodNotFound, ID: req.ID}
	}

	if err != nil {
		metrics.RPCCallsTotal.WithLabelValues(metricMethod, "error").Inc()
		return h.writeGatewayError(c, err, req.ID)
	}

	metrics.RPCCallsTotal.WithLabelValues(metricMethod, "ok").Inc()
	return c.JSON(fiber.Map{"result": result, "id": req.ID})
}

type checkoutRequest struct {
	OrderID   string `json:"order_id" validate:"required"`
	ReturnURL string `json:"return_url" validate:"required,url"`
}

// Checkout creates (or reuses) the pending payment transaction for an order and
// returns the gateway redirect URL. A pure transformation apart from the row
// insert; the state machine never runs here.
func (h *GatewayHandler) Checkout(c *fiber.Ctx) error {
	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "order_id and a valid return_url are required")
	}

	ctx := context.Background()

	info, err := h.orders.OrderExists(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, services.ErrOrderUnknown) {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}
	if info.Status == "paid" {
		return fiber.NewError(fiber.StatusConflict, "order is already paid")
	}

	txn, err := h.store.FindByOrderID(ctx, req.OrderID)
	switch {
	case err == nil:
		if txn.Status != models.StatusPending {
			return fiber.NewError(fiber.StatusConflict, "payment already in progress")
		}
	case errors.Is(err, store.ErrNotFound):
		if txn, err = h.store.Create(ctx, req.OrderID, info.AmountMinorUnits, info.Currency); err != nil {
			return err
		}
	default:
		return err
	}

	returnURL := strings.TrimRight(req.ReturnURL, "/")
	payload := fmt.Sprintf("m=%s;ac.order_id=%s;a=%d;c=%s", h.merchantID, txn.OrderID, txn.AmountMinorUnits, returnURL)
	encoded := base64.StdEncoding.EncodeToString([]byte(payload))

	return c.JSON(fiber.Map{
		"url":      h.checkoutURL + encoded,
		"order_id": txn.OrderID,
	})
}

// ListTransactions returns payment transaction history for the dashboard.
func (h *GatewayHandler) ListTransactions(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.PaymentTransaction{})

	if status := strings.TrimSpace(c.Query("status")); status != "" {
		query = query.Where("status = ?", strings.ToUpper(status))
	}
	if orderID := strings.TrimSpace(c.Query("order_id")); orderID != "" {
		query = query.Where("order_id = ?", orderID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var txns []models.PaymentTransaction
	if err := query.
		Order("created_at desc").
		Limit(pg.Limit).
		Offset(pg.Offset).
		Find(&txns).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    txns,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

func (h *GatewayHandler) writeGatewayError(c *fiber.Ctx, err error, id any) error {
	txErr := services.MapError(h.log, err, id)
	info := txErr.Info
	return c.JSON(fiber.Map{
		"error": fiber.Map{
			"code": info.Code,
			"message": fiber.Map{
				"uz": info.Message["uz"],
				"ru": info.Message["ru"],
				"en": info.Message["en"],
			},
			"data": txErr.Data,
		},
		"id": txErr.ID,
	})
}
