package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appnotif "nomadly/internal/application/notification"
	regusecases "nomadly/internal/application/registration/usecases"
	"nomadly/internal/domain/order"
	ordervo "nomadly/internal/domain/order/valueobjects"
	apperrors "nomadly/internal/shared/errors"
	"nomadly/internal/shared/logger"
)

func newPendingRegistrationOrder(t *testing.T, attempts int) *order.Order {
	t.Helper()
	ord := newDomainOrder(t, "42.87")
	require.NoError(t, ord.MarkConfirmed())
	ord.SetRegistrationPending(true)
	if attempts > 0 {
		ord.SetMetadata("fulfillment_attempts", attempts)
	}
	return ord
}

func TestRetryRegistrations_CompletesViaFulfillment(t *testing.T) {
	ord := newPendingRegistrationOrder(t, 1)
	orderRepo := newFakeOrderRepo(ord)
	fulfiller := &fakeFulfiller{result: &regusecases.RegistrationResult{
		Success: true,
		Domain:  newRegisteredDomain(t, ord.OwnerID(), "nomad-site.com"),
	}}
	notifier := &fakeNotifier{}

	uc := NewRetryIncompleteRegistrationsUseCase(orderRepo, fulfiller, notifier, logger.NewLogger())
	require.NoError(t, uc.Execute(context.Background()))

	assert.Equal(t, ordervo.PaymentStatusCompleted, ord.PaymentStatus())
	assert.False(t, ord.RegistrationPending())

	require.Len(t, notifier.outcomes, 1)
	assert.Equal(t, appnotif.OutcomeRegistrationSuccess, notifier.outcomes[0].Kind)
	assert.NotEmpty(t, notifier.outcomes[0].Nameservers)
}

func TestRetryRegistrations_CompletesFromExistingDomainRow(t *testing.T) {
	ord := newPendingRegistrationOrder(t, 2)
	orderRepo := newFakeOrderRepo(ord)
	fulfiller := &fakeFulfiller{checkDomain: newRegisteredDomain(t, ord.OwnerID(), "nomad-site.com")}
	notifier := &fakeNotifier{}

	uc := NewRetryIncompleteRegistrationsUseCase(orderRepo, fulfiller, notifier, logger.NewLogger())
	require.NoError(t, uc.Execute(context.Background()))

	assert.Equal(t, ordervo.PaymentStatusCompleted, ord.PaymentStatus())
	// Persisted state resolved the order without another registrar call.
	assert.Zero(t, fulfiller.executeCalls)
}

func TestRetryRegistrations_ExhaustedAttemptsFailOrder(t *testing.T) {
	ord := newPendingRegistrationOrder(t, 5)
	orderRepo := newFakeOrderRepo(ord)
	fulfiller := &fakeFulfiller{err: apperrors.NewExternalError("registrar unreachable")}
	notifier := &fakeNotifier{}

	uc := NewRetryIncompleteRegistrationsUseCase(orderRepo, fulfiller, notifier, logger.NewLogger())
	require.NoError(t, uc.Execute(context.Background()))

	assert.Equal(t, ordervo.PaymentStatusFailed, ord.PaymentStatus())
	assert.Zero(t, fulfiller.executeCalls)

	require.Len(t, notifier.outcomes, 1)
	assert.Equal(t, appnotif.OutcomeRegistrationFailed, notifier.outcomes[0].Kind)
	assert.Equal(t, "registration attempts exhausted", notifier.outcomes[0].Reason)
}

func TestRetryRegistrations_TransientFailureIncrementsAttempts(t *testing.T) {
	ord := newPendingRegistrationOrder(t, 1)
	orderRepo := newFakeOrderRepo(ord)
	fulfiller := &fakeFulfiller{err: apperrors.NewExternalError("registrar unreachable")}
	notifier := &fakeNotifier{}

	uc := NewRetryIncompleteRegistrationsUseCase(orderRepo, fulfiller, notifier, logger.NewLogger())
	require.NoError(t, uc.Execute(context.Background()))

	assert.Equal(t, ordervo.PaymentStatusConfirmed, ord.PaymentStatus())
	assert.Equal(t, 2, fulfillAttempts(ord))
	assert.Empty(t, notifier.outcomes)
	assert.Equal(t, 1, orderRepo.updates)
}

func TestRetryRegistrations_ValidationFailureIsNotRetried(t *testing.T) {
	ord := newPendingRegistrationOrder(t, 1)
	orderRepo := newFakeOrderRepo(ord)
	fulfiller := &fakeFulfiller{err: apperrors.NewValidationError("invalid custom nameservers")}
	notifier := &fakeNotifier{}

	uc := NewRetryIncompleteRegistrationsUseCase(orderRepo, fulfiller, notifier, logger.NewLogger())
	require.NoError(t, uc.Execute(context.Background()))

	assert.Equal(t, ordervo.PaymentStatusFailed, ord.PaymentStatus())
	require.Len(t, notifier.outcomes, 1)
	assert.Equal(t, appnotif.OutcomeRegistrationFailed, notifier.outcomes[0].Kind)
}

func TestRetryRegistrations_SkipsOrdersWithoutPendingFlag(t *testing.T) {
	ord := newDomainOrder(t, "20")
	require.NoError(t, ord.MarkConfirmed()) // underpaid: confirmed but not pending registration
	orderRepo := newFakeOrderRepo(ord)
	fulfiller := &fakeFulfiller{}
	notifier := &fakeNotifier{}

	uc := NewRetryIncompleteRegistrationsUseCase(orderRepo, fulfiller, notifier, logger.NewLogger())
	require.NoError(t, uc.Execute(context.Background()))

	assert.Zero(t, fulfiller.executeCalls)
	assert.Zero(t, fulfiller.checkCalls)
	assert.Empty(t, notifier.outcomes)
}

func TestRetryRegistrations_ParkedOrdersDoNotCrowdOutPendingOnes(t *testing.T) {
	// Underpaid orders park at confirmed forever; they must not consume the
	// sweep's batch while a genuinely pending registration waits.
	parked := make([]*order.Order, 0, 3)
	for i := 0; i < 3; i++ {
		ord := newDomainOrder(t, "20")
		require.NoError(t, ord.MarkConfirmed())
		parked = append(parked, ord)
	}
	pending := newPendingRegistrationOrder(t, 1)

	orderRepo := newFakeOrderRepo(append(parked, pending)...)
	fulfiller := &fakeFulfiller{result: &regusecases.RegistrationResult{
		Success: true,
		Domain:  newRegisteredDomain(t, pending.OwnerID(), "nomad-site.com"),
	}}
	notifier := &fakeNotifier{}

	uc := NewRetryIncompleteRegistrationsUseCase(orderRepo, fulfiller, notifier, logger.NewLogger())
	require.NoError(t, uc.Execute(context.Background()))

	assert.Equal(t, ordervo.PaymentStatusCompleted, pending.PaymentStatus())
	for _, ord := range parked {
		assert.Equal(t, ordervo.PaymentStatusConfirmed, ord.PaymentStatus())
	}
	assert.Equal(t, 1, fulfiller.executeCalls)
}
