package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"nomadly/internal/application/payment/usecases"
	ordervo "nomadly/internal/domain/order/valueobjects"
	"nomadly/internal/shared/logger"
	"nomadly/internal/shared/utils"
)

// OrderHandler exposes payment order creation.
type OrderHandler struct {
	createOrderUC *usecases.CreatePaymentOrderUseCase
	logger        logger.Interface
}

func NewOrderHandler(createOrderUC *usecases.CreatePaymentOrderUseCase, log logger.Interface) *OrderHandler {
	return &OrderHandler{
		createOrderUC: createOrderUC,
		logger:        log.Named("orders"),
	}
}

type CreateOrderRequest struct {
	OwnerID           int64    `json:"owner_id" binding:"required"`
	ServiceType       string   `json:"service_type" binding:"required,oneof=domain_registration wallet_deposit"`
	AmountUSD         string   `json:"amount_usd" binding:"required"`
	Asset             string   `json:"asset" binding:"required"`
	DomainName        string   `json:"domain_name"`
	NameserverChoice  string   `json:"nameserver_choice" binding:"omitempty,oneof=managed-dns registrar-default custom"`
	CustomNameservers []string `json:"custom_nameservers"`
	ContactEmail      string   `json:"contact_email" binding:"omitempty,email"`
}

type OrderResponse struct {
	OrderID        string `json:"order_id"`
	Status         string `json:"status"`
	PaymentAddress string `json:"payment_address"`
	RequiredCrypto string `json:"required_crypto_amount"`
	Asset          string `json:"asset"`
	AmountUSD      string `json:"amount_usd"`
}

// CreateOrder processes POST /orders.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, bindingErrorMessage(err))
		return
	}

	amountUSD, err := decimal.NewFromString(req.AmountUSD)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid amount_usd")
		return
	}

	cmd := usecases.CreateOrderCommand{
		OwnerID:     req.OwnerID,
		ServiceType: ordervo.ServiceType(req.ServiceType),
		AmountUSD:   amountUSD,
		Asset:       req.Asset,
		ServiceDetails: ordervo.ServiceDetails{
			DomainName:        req.DomainName,
			NameserverChoice:  ordervo.NameserverChoice(req.NameserverChoice),
			CustomNameservers: req.CustomNameservers,
			ContactEmail:      req.ContactEmail,
		},
	}

	ord, err := h.createOrderUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		h.logger.Warnw("order creation failed", "owner_id", req.OwnerID, "error", err)
		utils.AppErrorResponse(c, err)
		return
	}

	h.logger.Infow("order created", "order_id", ord.OrderID(), "owner_id", ord.OwnerID())
	utils.SuccessResponse(c, http.StatusCreated, "order created", OrderResponse{
		OrderID:        ord.OrderID(),
		Status:         ord.PaymentStatus().String(),
		PaymentAddress: ord.PaymentAddress(),
		RequiredCrypto: ord.RequiredCryptoAmount().String(),
		Asset:          ord.CryptoCurrency(),
		AmountUSD:      ord.RequestedAmountUSD().StringFixed(2),
	})
}

// bindingErrorMessage flattens validator errors into one readable line.
func bindingErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request: " + err.Error()
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
	}
	return "invalid request fields: " + strings.Join(fields, ", ")
}
