package order

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "nomadly/internal/domain/order/valueobjects"
)

// --- helpers ---

func domainDetails() vo.ServiceDetails {
	return vo.ServiceDetails{
		DomainName:       "example7.com",
		NameserverChoice: vo.NameserverChoiceManagedDNS,
		ContactEmail:     "owner@example.com",
	}
}

func validOrder(t *testing.T) *Order {
	t.Helper()
	o, err := NewOrder(1001, vo.ServiceTypeDomainRegistration, decimal.RequireFromString("42.87"), "eth", domainDetails())
	require.NoError(t, err)
	return o
}

// =============================================================================
// Constructor
// =============================================================================

func TestNewOrder_ValidInput(t *testing.T) {
	o := validOrder(t)

	assert.NotEmpty(t, o.OrderID())
	assert.Equal(t, "ord_", o.OrderID()[:4])
	assert.Equal(t, int64(1001), o.OwnerID())
	assert.Equal(t, vo.PaymentStatusPending, o.PaymentStatus())
	assert.True(t, o.RequestedAmountUSD().Equal(decimal.RequireFromString("42.87")))
}

func TestNewOrder_InvalidInput(t *testing.T) {
	tests := []struct {
		name     string
		ownerID  int64
		svcType  vo.ServiceType
		amount   decimal.Decimal
		asset    string
		details  vo.ServiceDetails
	}{
		{"zero owner", 0, vo.ServiceTypeDomainRegistration, decimal.NewFromInt(10), "btc", domainDetails()},
		{"invalid service type", 1, vo.ServiceType("bogus"), decimal.NewFromInt(10), "btc", domainDetails()},
		{"zero amount", 1, vo.ServiceTypeWalletDeposit, decimal.Zero, "btc", vo.ServiceDetails{}},
		{"negative amount", 1, vo.ServiceTypeWalletDeposit, decimal.NewFromInt(-5), "btc", vo.ServiceDetails{}},
		{"missing asset", 1, vo.ServiceTypeWalletDeposit, decimal.NewFromInt(10), "", vo.ServiceDetails{}},
		{"registration without domain", 1, vo.ServiceTypeDomainRegistration, decimal.NewFromInt(10), "btc", vo.ServiceDetails{NameserverChoice: vo.NameserverChoiceManagedDNS}},
		{"registration with bad ns choice", 1, vo.ServiceTypeDomainRegistration, decimal.NewFromInt(10), "btc", vo.ServiceDetails{DomainName: "a.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewOrder(tt.ownerID, tt.svcType, tt.amount, tt.asset, tt.details)
			assert.Error(t, err)
		})
	}
}

func TestNewOrder_WalletDepositNeedsNoDetails(t *testing.T) {
	o, err := NewOrder(7, vo.ServiceTypeWalletDeposit, decimal.NewFromInt(25), "btc", vo.ServiceDetails{})
	require.NoError(t, err)
	assert.Equal(t, vo.ServiceTypeWalletDeposit, o.ServiceType())
}

// =============================================================================
// Status transitions
// =============================================================================

func TestOrder_StatusAdvancesForward(t *testing.T) {
	o := validOrder(t)

	require.NoError(t, o.MarkConfirmed())
	assert.Equal(t, vo.PaymentStatusConfirmed, o.PaymentStatus())

	require.NoError(t, o.MarkCompleted())
	assert.Equal(t, vo.PaymentStatusCompleted, o.PaymentStatus())
}

func TestOrder_StatusNeverMovesBackward(t *testing.T) {
	o := validOrder(t)
	require.NoError(t, o.MarkConfirmed())
	require.NoError(t, o.MarkCompleted())

	assert.Error(t, o.MarkConfirmed())
	assert.Error(t, o.MarkFailed("late failure"))
	assert.Error(t, o.MarkCancelled())
	assert.Equal(t, vo.PaymentStatusCompleted, o.PaymentStatus())
}

func TestOrder_MarkFailedRecordsReason(t *testing.T) {
	o := validOrder(t)
	require.NoError(t, o.MarkConfirmed())
	require.NoError(t, o.MarkFailed("registrar unreachable"))

	assert.Equal(t, vo.PaymentStatusFailed, o.PaymentStatus())
	reason, ok := o.MetadataValue("failure_reason")
	require.True(t, ok)
	assert.Equal(t, "registrar unreachable", reason)
}

func TestOrder_TerminalStatusRejectsAllTransitions(t *testing.T) {
	for _, terminal := range []func(*Order) error{
		func(o *Order) error { return o.MarkCancelled() },
		func(o *Order) error { return o.MarkFailed("x") },
	} {
		o := validOrder(t)
		require.NoError(t, terminal(o))
		assert.Error(t, o.MarkConfirmed())
		assert.Error(t, o.MarkCompleted())
	}
}

func TestOrder_SkipToCompletedIsAllowed(t *testing.T) {
	// Wallet deposits complete directly from confirmed; from pending the
	// forward-only rule still allows jumping rank.
	o := validOrder(t)
	require.NoError(t, o.MarkCompleted())
	assert.Equal(t, vo.PaymentStatusCompleted, o.PaymentStatus())
}

// =============================================================================
// Payment terms & metadata
// =============================================================================

func TestOrder_SetPaymentTerms(t *testing.T) {
	o := validOrder(t)
	v0 := o.Version()

	o.SetPaymentTerms("0xabc123", decimal.RequireFromString("0.01"))

	assert.Equal(t, "0xabc123", o.PaymentAddress())
	assert.True(t, o.RequiredCryptoAmount().Equal(decimal.RequireFromString("0.01")))
	assert.Greater(t, o.Version(), v0)
}

func TestOrder_SetMetadataNilDeletes(t *testing.T) {
	o := validOrder(t)
	o.SetMetadata("fulfillment_attempts", 2)
	_, ok := o.MetadataValue("fulfillment_attempts")
	require.True(t, ok)

	o.SetMetadata("fulfillment_attempts", nil)
	_, ok = o.MetadataValue("fulfillment_attempts")
	assert.False(t, ok)
}

func TestReconstruct_RoundTrip(t *testing.T) {
	o := validOrder(t)
	o.SetPaymentTerms("addr", decimal.RequireFromString("0.5"))
	require.NoError(t, o.MarkConfirmed())

	rebuilt := Reconstruct(ReconstructParams{
		OrderID:            o.OrderID(),
		OwnerID:            o.OwnerID(),
		ServiceType:        o.ServiceType(),
		RequestedAmountUSD: o.RequestedAmountUSD(),
		CryptoCurrency:     o.CryptoCurrency(),
		PaymentAddress:     o.PaymentAddress(),
		RequiredCrypto:     o.RequiredCryptoAmount(),
		PaymentStatus:      o.PaymentStatus(),
		ServiceDetails:     o.ServiceDetails(),
		Metadata:           o.Metadata(),
		Version:            o.Version(),
		CreatedAt:          o.CreatedAt(),
		UpdatedAt:          o.UpdatedAt(),
	})

	assert.Equal(t, o.OrderID(), rebuilt.OrderID())
	assert.Equal(t, vo.PaymentStatusConfirmed, rebuilt.PaymentStatus())
	// Reconstructed orders still enforce forward-only transitions.
	require.NoError(t, rebuilt.MarkCompleted())
	assert.Error(t, rebuilt.MarkConfirmed())
}
