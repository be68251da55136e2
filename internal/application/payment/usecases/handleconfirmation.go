package usecases

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	appnotif "nomadly/internal/application/notification"
	"nomadly/internal/application/payment/paymentgateway"
	regusecases "nomadly/internal/application/registration/usecases"
	"nomadly/internal/domain/order"
	ordervo "nomadly/internal/domain/order/valueobjects"
	"nomadly/internal/domain/registration"
	apperrors "nomadly/internal/shared/errors"
	"nomadly/internal/shared/logger"
)

// Metadata keys written by the confirmation pipeline and read back by the
// replay path and the background retry job.
const (
	metaKeyLastOutcome          = "last_outcome_kind"
	metaKeyFulfillAttempts      = "fulfillment_attempts"
	metaKeyShortfallUSD         = "shortfall_usd"
	metaKeyManualReconciliation = "needs_manual_reconciliation"
	metaKeyTransactionHash      = "transaction_hash"
	metaKeySeenConfirmations    = "last_seen_confirmations"
)

const defaultFulfillmentBudget = 25 * time.Second

// ConfirmationCommand is one parsed gateway callback.
type ConfirmationCommand struct {
	OrderID string
	Event   paymentgateway.ConfirmationEvent
}

// ConfirmationResult reports what the pipeline did with the event. Replayed
// means the order was already terminal and the cached outcome was returned
// with zero side effects.
type ConfirmationResult struct {
	Outcome  appnotif.Outcome
	Replayed bool
}

// Reconciler values received crypto and credits wallet differences.
type Reconciler interface {
	Execute(ctx context.Context, ord *order.Order, receivedCrypto decimal.Decimal, asset string) (*ReconcileResult, error)
	CreditDeposit(ctx context.Context, ord *order.Order, receivedCrypto decimal.Decimal, asset string) (*ReconcileResult, error)
}

// DomainFulfiller runs the registration pipeline for a paid domain order.
type DomainFulfiller interface {
	Execute(ctx context.Context, ord *order.Order) (*regusecases.RegistrationResult, error)
	CheckFulfillment(ctx context.Context, ord *order.Order) (*registration.Domain, error)
}

// OutcomeNotifier delivers structured outcomes to the user.
type OutcomeNotifier interface {
	Notify(ctx context.Context, o appnotif.Outcome) appnotif.DeliveryReport
}

// HandleConfirmationUseCase is the entry point for payment confirmation
// events. It guarantees at-most-once orchestration per order via a
// compare-and-swap on payment_status, reconciles the received amount, runs
// fulfillment under a bounded budget, and always leaves the user with a
// truthful notification once an event reaches the confirmed stage.
type HandleConfirmationUseCase struct {
	orderRepo  order.OrderRepository
	reconciler Reconciler
	fulfiller  DomainFulfiller
	notifier   OutcomeNotifier

	thresholds           map[string]int
	defaultConfirmations int
	fulfillmentBudget    time.Duration

	logger logger.Interface
}

func NewHandleConfirmationUseCase(
	orderRepo order.OrderRepository,
	reconciler Reconciler,
	fulfiller DomainFulfiller,
	notifier OutcomeNotifier,
	thresholds map[string]int,
	defaultConfirmations int,
	fulfillmentBudget time.Duration,
	logger logger.Interface,
) *HandleConfirmationUseCase {
	if defaultConfirmations <= 0 {
		defaultConfirmations = 1
	}
	if fulfillmentBudget <= 0 {
		fulfillmentBudget = defaultFulfillmentBudget
	}
	return &HandleConfirmationUseCase{
		orderRepo:            orderRepo,
		reconciler:           reconciler,
		fulfiller:            fulfiller,
		notifier:             notifier,
		thresholds:           thresholds,
		defaultConfirmations: defaultConfirmations,
		fulfillmentBudget:    fulfillmentBudget,
		logger:               logger,
	}
}

// OrderExists is the cheap pre-check used by the webhook handler before it
// enqueues the event for background processing.
func (uc *HandleConfirmationUseCase) OrderExists(ctx context.Context, orderID string) (bool, error) {
	_, err := uc.orderRepo.GetByOrderID(ctx, orderID)
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (uc *HandleConfirmationUseCase) Execute(ctx context.Context, cmd ConfirmationCommand) (*ConfirmationResult, error) {
	log := uc.logger.With("order_id", cmd.OrderID)

	if cmd.Event.Confirmations < 0 {
		return nil, apperrors.NewValidationError("confirmations must be non-negative")
	}

	ord, err := uc.orderRepo.GetByOrderID(ctx, cmd.OrderID)
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			log.Warnw("confirmation for unknown order")
		}
		return nil, err
	}

	// Terminal orders replay their recorded outcome with no side effects,
	// making repeated gateway deliveries safe.
	if ord.PaymentStatus().IsTerminal() {
		log.Infow("order already terminal, replaying outcome", "status", ord.PaymentStatus().String())
		return &ConfirmationResult{Outcome: uc.recordedOutcome(ord), Replayed: true}, nil
	}

	if !uc.eventConfirmed(cmd.Event) {
		return uc.recordAwaiting(ctx, ord, cmd, log)
	}

	// The claim is a conditional status update; losing it means a
	// concurrent duplicate delivery already owns this order.
	claimed, err := uc.orderRepo.ClaimProcessing(ctx, ord.OrderID(),
		[]ordervo.PaymentStatus{ordervo.PaymentStatusPending}, ordervo.PaymentStatusConfirmed)
	if err != nil {
		return nil, err
	}
	if !claimed {
		log.Infow("order already claimed by a concurrent delivery")
		return &ConfirmationResult{Outcome: uc.recordedOutcome(ord), Replayed: true}, nil
	}
	if err := ord.MarkConfirmed(); err != nil {
		return nil, err
	}
	ord.SetMetadata(metaKeyTransactionHash, cmd.Event.TransactionHash)

	if ord.ServiceType() == ordervo.ServiceTypeWalletDeposit {
		return uc.handleDeposit(ctx, ord, cmd, log)
	}
	return uc.handleDomainOrder(ctx, ord, cmd, log)
}

// eventConfirmed decides whether the event reached the confirmed stage. An
// explicit confirmed status from the gateway is trusted even when the
// reported count still lags the per-asset threshold.
func (uc *HandleConfirmationUseCase) eventConfirmed(ev paymentgateway.ConfirmationEvent) bool {
	if ev.Status == paymentgateway.StatusConfirmed {
		return true
	}
	return ev.Confirmations >= uc.threshold(ev.Coin)
}

func (uc *HandleConfirmationUseCase) threshold(asset string) int {
	if n, ok := uc.thresholds[asset]; ok && n > 0 {
		return n
	}
	return uc.defaultConfirmations
}

func (uc *HandleConfirmationUseCase) recordAwaiting(ctx context.Context, ord *order.Order, cmd ConfirmationCommand, log logger.Interface) (*ConfirmationResult, error) {
	ord.SetMetadata(metaKeySeenConfirmations, cmd.Event.Confirmations)
	if err := uc.orderRepo.Update(ctx, ord); err != nil {
		log.Warnw("failed to record seen confirmations", "error", err)
	}
	log.Infow("below confirmation threshold",
		"confirmations", cmd.Event.Confirmations,
		"required", uc.threshold(cmd.Event.Coin),
	)
	return &ConfirmationResult{Outcome: appnotif.Outcome{
		Kind:      appnotif.OutcomeAwaitingConfirmation,
		OrderID:   ord.OrderID(),
		OwnerID:   ord.OwnerID(),
		AmountUSD: ord.RequestedAmountUSD(),
	}}, nil
}

func (uc *HandleConfirmationUseCase) handleDeposit(ctx context.Context, ord *order.Order, cmd ConfirmationCommand, log logger.Interface) (*ConfirmationResult, error) {
	rec, err := uc.reconciler.CreditDeposit(ctx, ord, cmd.Event.ValueCoin, cmd.Event.Coin)
	if err != nil {
		return uc.deferForManualReconciliation(ctx, ord, err, log)
	}

	if err := ord.MarkCompleted(); err != nil {
		return nil, err
	}
	outcome := appnotif.Outcome{
		Kind:         appnotif.OutcomeDepositCredited,
		OrderID:      ord.OrderID(),
		OwnerID:      ord.OwnerID(),
		AmountUSD:    ord.RequestedAmountUSD(),
		CreditedUSD:  rec.CreditedUSD,
		ContactEmail: ord.ServiceDetails().ContactEmail,
	}
	uc.finish(ctx, ord, outcome, log)
	return &ConfirmationResult{Outcome: outcome}, nil
}

func (uc *HandleConfirmationUseCase) handleDomainOrder(ctx context.Context, ord *order.Order, cmd ConfirmationCommand, log logger.Interface) (*ConfirmationResult, error) {
	rec, err := uc.reconciler.Execute(ctx, ord, cmd.Event.ValueCoin, cmd.Event.Coin)
	if err != nil {
		return uc.deferForManualReconciliation(ctx, ord, err, log)
	}

	details := ord.ServiceDetails()
	base := appnotif.Outcome{
		OrderID:      ord.OrderID(),
		OwnerID:      ord.OwnerID(),
		DomainName:   details.DomainName,
		AmountUSD:    ord.RequestedAmountUSD(),
		ContactEmail: details.ContactEmail,
	}

	if !rec.FullPayment {
		outcome := base
		outcome.Kind = appnotif.OutcomeUnderpaidCredited
		outcome.CreditedUSD = rec.CreditedUSD
		outcome.ShortfallUSD = rec.ShortfallUSD
		ord.SetMetadata(metaKeyShortfallUSD, rec.ShortfallUSD.String())
		uc.finish(ctx, ord, outcome, log)
		return &ConfirmationResult{Outcome: outcome}, nil
	}

	// The surplus is credited at reconcile time; tell the user about it
	// right away, independent of how registration goes.
	if rec.OverpaidUSD.IsPositive() {
		credit := base
		credit.Kind = appnotif.OutcomeOverpaidCredited
		credit.SurplusUSD = rec.OverpaidUSD
		uc.notifier.Notify(ctx, credit)
	}

	budgetCtx, cancel := context.WithTimeout(ctx, uc.fulfillmentBudget)
	result, fErr := uc.fulfiller.Execute(budgetCtx, ord)
	cancel()

	if result != nil && result.Success {
		return uc.completeRegistration(ctx, ord, base, rec, result.Domain, log)
	}

	if apperrors.IsValidationError(fErr) {
		reason := fErr.Error()
		if markErr := ord.MarkFailed(reason); markErr != nil {
			log.Errorw("failed to mark order failed", "error", markErr)
		}
		outcome := base
		outcome.Kind = appnotif.OutcomeRegistrationFailed
		outcome.Reason = reason
		uc.finish(ctx, ord, outcome, log)
		return &ConfirmationResult{Outcome: outcome}, nil
	}

	// Inconclusive: a timeout or dependency failure may mask upstream
	// success, so consult persisted state before promising anything.
	if dom, checkErr := uc.fulfiller.CheckFulfillment(ctx, ord); checkErr == nil && dom != nil {
		log.Infow("fulfillment inconclusive but domain row exists, treating as success", "error", fErr)
		return uc.completeRegistration(ctx, ord, base, rec, dom, log)
	}

	log.Warnw("registration incomplete, leaving order for background retry", "error", fErr)
	ord.SetRegistrationPending(true)
	ord.SetMetadata(metaKeyFulfillAttempts, fulfillAttempts(ord)+1)

	outcome := base
	outcome.Kind = appnotif.OutcomeRegistrationPending
	outcome.SurplusUSD = rec.OverpaidUSD
	uc.finish(ctx, ord, outcome, log)
	return &ConfirmationResult{Outcome: outcome}, nil
}

func (uc *HandleConfirmationUseCase) completeRegistration(
	ctx context.Context,
	ord *order.Order,
	base appnotif.Outcome,
	rec *ReconcileResult,
	dom *registration.Domain,
	log logger.Interface,
) (*ConfirmationResult, error) {
	if err := ord.MarkCompleted(); err != nil {
		return nil, err
	}
	ord.SetRegistrationPending(false)

	outcome := base
	outcome.Kind = appnotif.OutcomeRegistrationSuccess
	outcome.SurplusUSD = rec.OverpaidUSD
	if dom != nil {
		outcome.Nameservers = dom.Nameservers().Hosts()
	}
	uc.finish(ctx, ord, outcome, log)
	return &ConfirmationResult{Outcome: outcome}, nil
}

// deferForManualReconciliation handles valuation being impossible (no live
// and no cached rate). The order keeps its confirmed status, the condition
// is flagged, and the user still gets a minimal acknowledgment.
func (uc *HandleConfirmationUseCase) deferForManualReconciliation(ctx context.Context, ord *order.Order, cause error, log logger.Interface) (*ConfirmationResult, error) {
	log.Errorw("reconciliation unavailable, deferring to manual review", "error", cause)
	ord.SetMetadata(metaKeyManualReconciliation, true)

	outcome := appnotif.Outcome{
		OrderID:      ord.OrderID(),
		OwnerID:      ord.OwnerID(),
		AmountUSD:    ord.RequestedAmountUSD(),
		ContactEmail: ord.ServiceDetails().ContactEmail,
	}
	uc.finish(ctx, ord, outcome, log)
	return &ConfirmationResult{Outcome: outcome}, nil
}

// finish persists the order and dispatches the notification. Persistence
// failures are logged, not propagated: the callback has been accepted and
// the user must still hear about it.
func (uc *HandleConfirmationUseCase) finish(ctx context.Context, ord *order.Order, outcome appnotif.Outcome, log logger.Interface) {
	if outcome.Kind != "" {
		ord.SetMetadata(metaKeyLastOutcome, string(outcome.Kind))
	}
	if err := uc.orderRepo.Update(ctx, ord); err != nil {
		log.Errorw("failed to persist order after confirmation", "error", err)
	}

	report := uc.notifier.Notify(ctx, outcome)
	log.Infow("confirmation processed",
		"outcome", outcome.Kind,
		"status", ord.PaymentStatus().String(),
		"chat_delivered", report.Chat.Delivered,
		"email_delivered", report.Email.Delivered,
	)
}

// recordedOutcome rebuilds the outcome of a previously processed event from
// order state, for replay to duplicate deliveries.
func (uc *HandleConfirmationUseCase) recordedOutcome(ord *order.Order) appnotif.Outcome {
	outcome := appnotif.Outcome{
		OrderID:      ord.OrderID(),
		OwnerID:      ord.OwnerID(),
		DomainName:   ord.ServiceDetails().DomainName,
		AmountUSD:    ord.RequestedAmountUSD(),
		ContactEmail: ord.ServiceDetails().ContactEmail,
	}
	if v, ok := ord.MetadataValue(metaKeyLastOutcome); ok {
		if s, ok := v.(string); ok {
			outcome.Kind = appnotif.OutcomeKind(s)
			return outcome
		}
	}
	switch ord.PaymentStatus() {
	case ordervo.PaymentStatusCompleted:
		if ord.ServiceType() == ordervo.ServiceTypeWalletDeposit {
			outcome.Kind = appnotif.OutcomeDepositCredited
		} else {
			outcome.Kind = appnotif.OutcomeRegistrationSuccess
		}
	case ordervo.PaymentStatusFailed:
		outcome.Kind = appnotif.OutcomeRegistrationFailed
	default:
		outcome.Kind = appnotif.OutcomeRegistrationPending
	}
	return outcome
}

// fulfillAttempts reads the attempt counter from order metadata.
func fulfillAttempts(ord *order.Order) int {
	v, ok := ord.MetadataValue(metaKeyFulfillAttempts)
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		// JSON round-tripped metadata decodes numbers as float64.
		return int(n)
	default:
		return 0
	}
}
