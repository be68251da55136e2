package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"nomadly/internal/application/payment/paymentgateway"
	"nomadly/internal/application/payment/usecases"
	"nomadly/internal/shared/goroutine"
	"nomadly/internal/shared/logger"
)

// ConfirmationProcessor handles a parsed gateway confirmation callback.
type ConfirmationProcessor interface {
	OrderExists(ctx context.Context, orderID string) (bool, error)
	Execute(ctx context.Context, cmd usecases.ConfirmationCommand) (*usecases.ConfirmationResult, error)
}

// TaskPool accepts background work for async callback processing.
type TaskPool interface {
	Submit(name string, fn func()) error
}

// WebhookHandler receives payment gateway confirmation callbacks. The
// gateway expects a prompt acknowledgement, so processing is handed to the
// worker pool and the response only reports whether the event was accepted.
type WebhookHandler struct {
	confirmUC ConfirmationProcessor
	pool      TaskPool
	timeout   time.Duration
	logger    logger.Interface
}

func NewWebhookHandler(confirmUC ConfirmationProcessor, pool TaskPool, processTimeout time.Duration, log logger.Interface) *WebhookHandler {
	return &WebhookHandler{
		confirmUC: confirmUC,
		pool:      pool,
		timeout:   processTimeout,
		logger:    log.Named("webhook"),
	}
}

// ConfirmationRequest mirrors the gateway callback payload. GET callbacks
// carry it as query params, POST callbacks as a JSON body.
type ConfirmationRequest struct {
	Status        string `form:"status" json:"status"`
	Confirmations int    `form:"confirmations" json:"confirmations"`
	TxIDIn        string `form:"txid_in" json:"txid_in"`
	ValueCoin     string `form:"value_coin" json:"value_coin"`
	Coin          string `form:"coin" json:"coin"`
}

// HandleCallback processes POST|GET /webhook/:gateway/:order_id.
func (h *WebhookHandler) HandleCallback(c *gin.Context) {
	orderID := c.Param("order_id")
	if orderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"status": "invalid"})
		return
	}

	var req ConfirmationRequest
	var err error
	if c.Request.Method == http.MethodPost {
		err = c.ShouldBindJSON(&req)
	} else {
		err = c.ShouldBindQuery(&req)
	}
	if err != nil {
		h.logger.Warnw("malformed confirmation callback",
			"order_id", orderID,
			"gateway", c.Param("gateway"),
			"error", err)
		c.JSON(http.StatusBadRequest, gin.H{"status": "invalid"})
		return
	}

	valueCoin := decimal.Zero
	if req.ValueCoin != "" {
		valueCoin, err = decimal.NewFromString(req.ValueCoin)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"status": "invalid"})
			return
		}
	}

	exists, err := h.confirmUC.OrderExists(c.Request.Context(), orderID)
	if err != nil {
		h.logger.Errorw("order lookup failed", "order_id", orderID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error"})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"status": "not_found"})
		return
	}

	cmd := usecases.ConfirmationCommand{
		OrderID: orderID,
		Event: paymentgateway.ConfirmationEvent{
			Status:          req.Status,
			Confirmations:   req.Confirmations,
			TransactionHash: req.TxIDIn,
			ValueCoin:       valueCoin,
			Coin:            req.Coin,
		},
	}

	submitErr := h.pool.Submit("confirmation:"+orderID, func() {
		ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
		defer cancel()
		if _, execErr := h.confirmUC.Execute(ctx, cmd); execErr != nil {
			h.logger.Errorw("confirmation processing failed",
				"order_id", cmd.OrderID,
				"error", execErr)
		}
	})
	if submitErr != nil {
		if errors.Is(submitErr, goroutine.ErrPoolStopped) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "pending"})
			return
		}
		// Saturated pool: the gateway redelivers, so report pending and
		// let the next callback attempt land.
		h.logger.Warnw("worker pool saturated, deferring confirmation",
			"order_id", orderID)
		c.JSON(http.StatusOK, gin.H{"status": "pending"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "processing"})
}
