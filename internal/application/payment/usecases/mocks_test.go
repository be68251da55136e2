package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	appnotif "nomadly/internal/application/notification"
	"nomadly/internal/application/payment/exchangerate"
	regusecases "nomadly/internal/application/registration/usecases"
	"nomadly/internal/domain/order"
	ordervo "nomadly/internal/domain/order/valueobjects"
	"nomadly/internal/domain/registration"
	regvo "nomadly/internal/domain/registration/valueobjects"
	"nomadly/internal/domain/wallet"
	apperrors "nomadly/internal/shared/errors"
)

type fakeOrderRepo struct {
	orders map[string]*order.Order

	updates    int
	claimCalls int
	// denyClaim simulates a concurrent duplicate delivery winning the claim.
	denyClaim bool
	updateErr error
}

func newFakeOrderRepo(orders ...*order.Order) *fakeOrderRepo {
	repo := &fakeOrderRepo{orders: make(map[string]*order.Order)}
	for _, ord := range orders {
		repo.orders[ord.OrderID()] = ord
	}
	return repo
}

func (r *fakeOrderRepo) Create(ctx context.Context, ord *order.Order) error {
	r.orders[ord.OrderID()] = ord
	return nil
}

func (r *fakeOrderRepo) Update(ctx context.Context, ord *order.Order) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.updates++
	r.orders[ord.OrderID()] = ord
	return nil
}

func (r *fakeOrderRepo) GetByOrderID(ctx context.Context, orderID string) (*order.Order, error) {
	ord, ok := r.orders[orderID]
	if !ok {
		return nil, apperrors.NewNotFoundError("order not found")
	}
	return ord, nil
}

func (r *fakeOrderRepo) ClaimProcessing(ctx context.Context, orderID string, expected []ordervo.PaymentStatus, next ordervo.PaymentStatus) (bool, error) {
	r.claimCalls++
	if r.denyClaim {
		return false, nil
	}
	ord, ok := r.orders[orderID]
	if !ok {
		return false, nil
	}
	for _, status := range expected {
		if ord.PaymentStatus() == status {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeOrderRepo) GetIncomplete(ctx context.Context, limit int) ([]*order.Order, error) {
	var out []*order.Order
	for _, ord := range r.orders {
		if ord.PaymentStatus() == ordervo.PaymentStatusConfirmed && ord.RegistrationPending() {
			out = append(out, ord)
		}
	}
	return out, nil
}

type fakeWalletRepo struct {
	transactions []*wallet.Transaction
	createErr    error
}

func (r *fakeWalletRepo) Create(ctx context.Context, tx *wallet.Transaction) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.transactions = append(r.transactions, tx)
	return nil
}

func (r *fakeWalletRepo) ListByOwner(ctx context.Context, ownerID int64, limit int) ([]*wallet.Transaction, error) {
	return r.transactions, nil
}

func (r *fakeWalletRepo) ListByReferenceOrder(ctx context.Context, orderID string) ([]*wallet.Transaction, error) {
	var out []*wallet.Transaction
	for _, tx := range r.transactions {
		if tx.ReferenceOrderID() == orderID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (r *fakeWalletRepo) SumByOwner(ctx context.Context, ownerID int64) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, tx := range r.transactions {
		if tx.OwnerID() == ownerID {
			sum = sum.Add(tx.AmountUSD())
		}
	}
	return sum, nil
}

type fakeRates struct {
	rateUSD  decimal.Decimal
	degraded bool
	err      error
	calls    int
}

func (s *fakeRates) GetRateUSD(ctx context.Context, asset string) (*exchangerate.Quote, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &exchangerate.Quote{RateUSD: s.rateUSD, Degraded: s.degraded}, nil
}

func (s *fakeRates) ConvertToUSD(ctx context.Context, asset string, amount decimal.Decimal) (decimal.Decimal, *exchangerate.Quote, error) {
	quote, err := s.GetRateUSD(ctx, asset)
	if err != nil {
		return decimal.Zero, nil, err
	}
	return amount.Mul(quote.RateUSD).Round(2), quote, nil
}

type fakeFulfiller struct {
	result *regusecases.RegistrationResult
	err    error

	// checkDomain is what CheckFulfillment reports; nil means no row.
	checkDomain *registration.Domain

	executeCalls int
	checkCalls   int
}

func (f *fakeFulfiller) Execute(ctx context.Context, ord *order.Order) (*regusecases.RegistrationResult, error) {
	f.executeCalls++
	if f.result == nil {
		return &regusecases.RegistrationResult{}, f.err
	}
	return f.result, f.err
}

func (f *fakeFulfiller) CheckFulfillment(ctx context.Context, ord *order.Order) (*registration.Domain, error) {
	f.checkCalls++
	return f.checkDomain, nil
}

type fakeNotifier struct {
	outcomes []appnotif.Outcome
}

func (n *fakeNotifier) Notify(ctx context.Context, o appnotif.Outcome) appnotif.DeliveryReport {
	n.outcomes = append(n.outcomes, o)
	return appnotif.DeliveryReport{}
}

func (n *fakeNotifier) kinds() []appnotif.OutcomeKind {
	out := make([]appnotif.OutcomeKind, 0, len(n.outcomes))
	for _, o := range n.outcomes {
		out = append(out, o.Kind)
	}
	return out
}

func newDomainOrder(t *testing.T, amountUSD string) *order.Order {
	t.Helper()
	ord, err := order.NewOrder(7, ordervo.ServiceTypeDomainRegistration,
		decimal.RequireFromString(amountUSD), "eth", ordervo.ServiceDetails{
			DomainName:       "nomad-site.com",
			NameserverChoice: ordervo.NameserverChoiceManagedDNS,
			ContactEmail:     "owner@example.com",
		})
	require.NoError(t, err)
	ord.SetPaymentTerms("0xabc", decimal.RequireFromString("0.01"))
	return ord
}

func newDepositOrder(t *testing.T, amountUSD string) *order.Order {
	t.Helper()
	ord, err := order.NewOrder(7, ordervo.ServiceTypeWalletDeposit,
		decimal.RequireFromString(amountUSD), "btc", ordervo.ServiceDetails{})
	require.NoError(t, err)
	return ord
}

func newRegisteredDomain(t *testing.T, ownerID int64, name string) *registration.Domain {
	t.Helper()
	ns, err := regvo.NewNameservers([]string{"anna.ns.cloudflare.com", "burt.ns.cloudflare.com"})
	require.NoError(t, err)
	dom, err := registration.NewDomain(ownerID, name, "op-12345", "zone-1",
		regvo.NameserverModeManagedDNS, ns, time.Now().UTC().AddDate(1, 0, 0))
	require.NoError(t, err)
	return dom
}
