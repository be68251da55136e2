package usecases

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"nomadly/internal/application/payment/exchangerate"
	"nomadly/internal/domain/order"
	"nomadly/internal/domain/wallet"
	"nomadly/internal/shared/logger"
)

// ReconcileResult accounts for every unit of value received. The invariant
// is conservation: ReceivedUSD == CreditedUSD + the amount consumed by the
// order itself (ReceivedUSD - OverpaidUSD when FullPayment, zero otherwise).
type ReconcileResult struct {
	ReceivedUSD  decimal.Decimal
	CreditedUSD  decimal.Decimal
	ShortfallUSD decimal.Decimal
	OverpaidUSD  decimal.Decimal
	// FullPayment means the order's requirement is covered and fulfillment
	// may proceed.
	FullPayment bool
	// RateDegraded marks valuation from a cached rate; the credit carries
	// a manual-reconciliation flag.
	RateDegraded bool
}

// ReconcileUseCase values the received crypto in USD and credits any
// difference against the order's requirement to the owner's wallet. It
// never discards value: a partial payment becomes an underpayment credit, a
// surplus becomes an overpayment credit, both as append-only ledger entries.
type ReconcileUseCase struct {
	walletRepo   wallet.TransactionRepository
	rates        exchangerate.Service
	toleranceUSD decimal.Decimal
	logger       logger.Interface
}

func NewReconcileUseCase(
	walletRepo wallet.TransactionRepository,
	rates exchangerate.Service,
	toleranceUSD decimal.Decimal,
	logger logger.Interface,
) *ReconcileUseCase {
	if toleranceUSD.IsZero() || toleranceUSD.IsNegative() {
		toleranceUSD = decimal.RequireFromString("0.01")
	}
	return &ReconcileUseCase{
		walletRepo:   walletRepo,
		rates:        rates,
		toleranceUSD: toleranceUSD,
		logger:       logger,
	}
}

func (uc *ReconcileUseCase) Execute(ctx context.Context, ord *order.Order, receivedCrypto decimal.Decimal, asset string) (*ReconcileResult, error) {
	receivedUSD, quote, err := uc.rates.ConvertToUSD(ctx, asset, receivedCrypto)
	if err != nil {
		return nil, err
	}

	required := ord.RequestedAmountUSD()
	diff := receivedUSD.Sub(required)
	result := &ReconcileResult{
		ReceivedUSD:  receivedUSD,
		RateDegraded: quote.Degraded,
	}

	switch {
	case diff.Abs().LessThanOrEqual(uc.toleranceUSD):
		result.FullPayment = true

	case diff.IsPositive():
		result.FullPayment = true
		result.OverpaidUSD = diff
		result.CreditedUSD = diff
		if err := uc.credit(ctx, ord, diff, wallet.TransactionTypeOverpaymentCredit, receivedCrypto, asset, quote,
			fmt.Sprintf("overpayment on order %s", ord.OrderID())); err != nil {
			return nil, err
		}

	default:
		result.ShortfallUSD = required.Sub(receivedUSD)
		result.CreditedUSD = receivedUSD
		if receivedUSD.IsPositive() {
			if err := uc.credit(ctx, ord, receivedUSD, wallet.TransactionTypeUnderpaymentCredit, receivedCrypto, asset, quote,
				fmt.Sprintf("partial payment on order %s", ord.OrderID())); err != nil {
				return nil, err
			}
		}
	}

	uc.logger.Infow("payment reconciled",
		"order_id", ord.OrderID(),
		"asset", asset,
		"received_crypto", receivedCrypto.String(),
		"received_usd", receivedUSD.StringFixed(2),
		"required_usd", required.StringFixed(2),
		"credited_usd", result.CreditedUSD.StringFixed(2),
		"full_payment", result.FullPayment,
		"rate_degraded", result.RateDegraded,
	)
	return result, nil
}

// CreditDeposit credits the full received value for a wallet-deposit order.
func (uc *ReconcileUseCase) CreditDeposit(ctx context.Context, ord *order.Order, receivedCrypto decimal.Decimal, asset string) (*ReconcileResult, error) {
	receivedUSD, quote, err := uc.rates.ConvertToUSD(ctx, asset, receivedCrypto)
	if err != nil {
		return nil, err
	}

	result := &ReconcileResult{
		ReceivedUSD:  receivedUSD,
		CreditedUSD:  receivedUSD,
		FullPayment:  true,
		RateDegraded: quote.Degraded,
	}
	if receivedUSD.IsPositive() {
		if err := uc.credit(ctx, ord, receivedUSD, wallet.TransactionTypeDeposit, receivedCrypto, asset, quote,
			fmt.Sprintf("wallet deposit via order %s", ord.OrderID())); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (uc *ReconcileUseCase) credit(
	ctx context.Context,
	ord *order.Order,
	amountUSD decimal.Decimal,
	txType wallet.TransactionType,
	receivedCrypto decimal.Decimal,
	asset string,
	quote *exchangerate.Quote,
	description string,
) error {
	tx, err := wallet.NewTransaction(ord.OwnerID(), amountUSD, txType, ord.OrderID(), description)
	if err != nil {
		return err
	}
	tx.SetMetadata("asset", asset)
	tx.SetMetadata("received_crypto", receivedCrypto.String())
	tx.SetMetadata("rate_usd", quote.RateUSD.String())
	if quote.Degraded {
		tx.SetMetadata("needs_manual_reconciliation", true)
	}

	if err := uc.walletRepo.Create(ctx, tx); err != nil {
		return fmt.Errorf("failed to persist wallet credit: %w", err)
	}
	return nil
}
