package usecases

import (
	"context"
	"time"

	appnotif "nomadly/internal/application/notification"
	"nomadly/internal/domain/order"
	apperrors "nomadly/internal/shared/errors"
	"nomadly/internal/shared/logger"
)

const (
	retryBatchSize      = 50
	maxFulfillAttempts  = 5
	retryAttemptTimeout = 60 * time.Second
)

// RetryIncompleteRegistrationsUseCase is the scheduled sweep over confirmed
// orders whose registration did not complete inside the webhook budget. Each
// sweep first consults persisted state (the domain may have registered after
// the original attempt timed out), then re-runs fulfillment. Attempts are
// bounded; exhaustion marks the order failed and tells the user.
type RetryIncompleteRegistrationsUseCase struct {
	orderRepo order.OrderRepository
	fulfiller DomainFulfiller
	notifier  OutcomeNotifier
	logger    logger.Interface
}

func NewRetryIncompleteRegistrationsUseCase(
	orderRepo order.OrderRepository,
	fulfiller DomainFulfiller,
	notifier OutcomeNotifier,
	logger logger.Interface,
) *RetryIncompleteRegistrationsUseCase {
	return &RetryIncompleteRegistrationsUseCase{
		orderRepo: orderRepo,
		fulfiller: fulfiller,
		notifier:  notifier,
		logger:    logger,
	}
}

func (uc *RetryIncompleteRegistrationsUseCase) Execute(ctx context.Context) error {
	orders, err := uc.orderRepo.GetIncomplete(ctx, retryBatchSize)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		return nil
	}

	uc.logger.Infow("retrying incomplete registrations", "count", len(orders))
	for _, ord := range orders {
		uc.retryOne(ctx, ord)
	}
	return nil
}

func (uc *RetryIncompleteRegistrationsUseCase) retryOne(ctx context.Context, ord *order.Order) {
	log := uc.logger.With("order_id", ord.OrderID(), "domain", ord.ServiceDetails().DomainName)

	// Cheap ground-truth check before spending registrar calls.
	if dom, err := uc.fulfiller.CheckFulfillment(ctx, ord); err == nil && dom != nil {
		uc.complete(ctx, ord, dom.Nameservers().Hosts(), log)
		return
	}

	attempts := fulfillAttempts(ord)
	if attempts >= maxFulfillAttempts {
		uc.exhaust(ctx, ord, log)
		return
	}

	attemptCtx, cancel := context.WithTimeout(ctx, retryAttemptTimeout)
	result, err := uc.fulfiller.Execute(attemptCtx, ord)
	cancel()

	ord.SetMetadata(metaKeyFulfillAttempts, attempts+1)

	if result != nil && result.Success {
		var hosts []string
		if result.Domain != nil {
			hosts = result.Domain.Nameservers().Hosts()
		}
		uc.complete(ctx, ord, hosts, log)
		return
	}

	if apperrors.IsValidationError(err) {
		// Retrying will never fix bad input.
		uc.fail(ctx, ord, err.Error(), log)
		return
	}

	log.Warnw("registration retry failed", "attempt", attempts+1, "error", err)
	if err := uc.orderRepo.Update(ctx, ord); err != nil {
		log.Errorw("failed to persist retry attempt count", "error", err)
	}
}

func (uc *RetryIncompleteRegistrationsUseCase) complete(ctx context.Context, ord *order.Order, nameservers []string, log logger.Interface) {
	if err := ord.MarkCompleted(); err != nil {
		log.Errorw("failed to complete order", "error", err)
		return
	}
	ord.SetRegistrationPending(false)
	ord.SetMetadata(metaKeyLastOutcome, string(appnotif.OutcomeRegistrationSuccess))
	if err := uc.orderRepo.Update(ctx, ord); err != nil {
		log.Errorw("failed to persist completed order", "error", err)
		return
	}

	details := ord.ServiceDetails()
	uc.notifier.Notify(ctx, appnotif.Outcome{
		Kind:         appnotif.OutcomeRegistrationSuccess,
		OrderID:      ord.OrderID(),
		OwnerID:      ord.OwnerID(),
		DomainName:   details.DomainName,
		Nameservers:  nameservers,
		AmountUSD:    ord.RequestedAmountUSD(),
		ContactEmail: details.ContactEmail,
	})
	log.Infow("registration completed by background retry")
}

func (uc *RetryIncompleteRegistrationsUseCase) exhaust(ctx context.Context, ord *order.Order, log logger.Interface) {
	uc.fail(ctx, ord, "registration attempts exhausted", log)
}

func (uc *RetryIncompleteRegistrationsUseCase) fail(ctx context.Context, ord *order.Order, reason string, log logger.Interface) {
	if err := ord.MarkFailed(reason); err != nil {
		log.Errorw("failed to mark order failed", "error", err)
		return
	}
	ord.SetRegistrationPending(false)
	ord.SetMetadata(metaKeyLastOutcome, string(appnotif.OutcomeRegistrationFailed))
	if err := uc.orderRepo.Update(ctx, ord); err != nil {
		log.Errorw("failed to persist failed order", "error", err)
		return
	}

	details := ord.ServiceDetails()
	uc.notifier.Notify(ctx, appnotif.Outcome{
		Kind:         appnotif.OutcomeRegistrationFailed,
		OrderID:      ord.OrderID(),
		OwnerID:      ord.OwnerID(),
		DomainName:   details.DomainName,
		AmountUSD:    ord.RequestedAmountUSD(),
		ContactEmail: details.ContactEmail,
		Reason:       reason,
	})
	log.Warnw("registration marked failed", "reason", reason)
}
