package paymentgateway

import (
	"context"

	"github.com/shopspring/decimal"
)

// Gateway is the crypto payment processor integration. Outbound it issues
// per-order payment addresses; inbound it parses confirmation callbacks.
type Gateway interface {
	// CreatePaymentAddress asks the gateway for a deposit address for the
	// asset, registering callbackRef as the confirmation webhook target.
	CreatePaymentAddress(ctx context.Context, asset, callbackRef string) (*PaymentAddress, error)
}

type PaymentAddress struct {
	Address string
	// MinimumCrypto is the gateway-enforced minimum transfer, below which
	// callbacks are never fired.
	MinimumCrypto decimal.Decimal
}

// StatusConfirmed is the gateway's explicit marker that it considers the
// payment final, regardless of the confirmation count it reports alongside.
const StatusConfirmed = "confirmed"

// ConfirmationEvent is the parsed confirmation callback payload. The gateway
// delivers it at least once per confirmation level; duplicates are expected.
type ConfirmationEvent struct {
	Status          string
	Confirmations   int
	TransactionHash string
	ValueCoin       decimal.Decimal
	Coin            string
}
