package exchangerate

import (
	"context"

	"github.com/shopspring/decimal"
)

// Quote is a crypto-to-USD conversion result. Degraded marks a quote served
// from the last known cached rate because the live source was unavailable;
// amounts credited under a degraded quote are flagged for manual review.
type Quote struct {
	RateUSD  decimal.Decimal
	Degraded bool
}

// Service converts crypto amounts to USD at confirmation time.
type Service interface {
	// GetRateUSD returns the current USD price of one unit of asset. When
	// the live source fails but a cached rate exists, the quote is returned
	// with Degraded set instead of an error. With no cached rate either,
	// a reconciliation error is returned.
	GetRateUSD(ctx context.Context, asset string) (*Quote, error)

	// ConvertToUSD values amount of asset in USD using GetRateUSD.
	ConvertToUSD(ctx context.Context, asset string, amount decimal.Decimal) (decimal.Decimal, *Quote, error)
}
