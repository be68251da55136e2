package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"nomadly/internal/application/payment/exchangerate"
	"nomadly/internal/application/payment/paymentgateway"
	"nomadly/internal/domain/order"
	ordervo "nomadly/internal/domain/order/valueobjects"
	apperrors "nomadly/internal/shared/errors"
	"nomadly/internal/shared/logger"
)

// CreateOrderCommand describes a new paid order before a payment address
// exists.
type CreateOrderCommand struct {
	OwnerID        int64
	ServiceType    ordervo.ServiceType
	AmountUSD      decimal.Decimal
	Asset          string
	ServiceDetails ordervo.ServiceDetails
}

// CreatePaymentOrderUseCase creates an order and provisions a gateway
// payment address for it. The required crypto amount is fixed at the
// creation-time exchange rate; reconciliation at confirmation time absorbs
// any drift.
type CreatePaymentOrderUseCase struct {
	orderRepo   order.OrderRepository
	gateway     paymentgateway.Gateway
	rates       exchangerate.Service
	callbackURL string
	logger      logger.Interface
}

func NewCreatePaymentOrderUseCase(
	orderRepo order.OrderRepository,
	gateway paymentgateway.Gateway,
	rates exchangerate.Service,
	callbackURL string,
	logger logger.Interface,
) *CreatePaymentOrderUseCase {
	return &CreatePaymentOrderUseCase{
		orderRepo:   orderRepo,
		gateway:     gateway,
		rates:       rates,
		callbackURL: callbackURL,
		logger:      logger,
	}
}

func (uc *CreatePaymentOrderUseCase) Execute(ctx context.Context, cmd CreateOrderCommand) (*order.Order, error) {
	asset := strings.ToLower(strings.TrimSpace(cmd.Asset))
	ord, err := order.NewOrder(cmd.OwnerID, cmd.ServiceType, cmd.AmountUSD, asset, cmd.ServiceDetails)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid order", err.Error())
	}

	quote, err := uc.rates.GetRateUSD(ctx, asset)
	if err != nil {
		return nil, err
	}
	if !quote.RateUSD.IsPositive() {
		return nil, apperrors.NewReconciliationError(fmt.Sprintf("no usable rate for asset %q", asset))
	}
	requiredCrypto := cmd.AmountUSD.DivRound(quote.RateUSD, 8)

	callbackRef := fmt.Sprintf("%s/%s", strings.TrimRight(uc.callbackURL, "/"), ord.OrderID())
	addr, err := uc.gateway.CreatePaymentAddress(ctx, asset, callbackRef)
	if err != nil {
		return nil, err
	}
	ord.SetPaymentTerms(addr.Address, requiredCrypto)
	if addr.MinimumCrypto.IsPositive() && requiredCrypto.LessThan(addr.MinimumCrypto) {
		ord.SetMetadata("below_gateway_minimum", true)
	}

	if err := uc.orderRepo.Create(ctx, ord); err != nil {
		return nil, fmt.Errorf("failed to persist order: %w", err)
	}

	uc.logger.Infow("payment order created",
		"order_id", ord.OrderID(),
		"owner_id", ord.OwnerID(),
		"asset", asset,
		"amount_usd", cmd.AmountUSD.StringFixed(2),
		"required_crypto", requiredCrypto.String(),
	)
	return ord, nil
}
