package usecases

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"nomadly/internal/application/registration/dnsprovider"
	"nomadly/internal/application/registration/registrar"
	"nomadly/internal/domain/order"
	ordervo "nomadly/internal/domain/order/valueobjects"
	"nomadly/internal/domain/registration"
	apperrors "nomadly/internal/shared/errors"
)

type fakeDomainRepo struct {
	domains []*registration.Domain

	createErr error
	creates   int
}

func (r *fakeDomainRepo) Create(ctx context.Context, dom *registration.Domain) error {
	r.creates++
	if r.createErr != nil {
		return r.createErr
	}
	dom.SetID(uint(len(r.domains) + 1))
	r.domains = append(r.domains, dom)
	return nil
}

func (r *fakeDomainRepo) Update(ctx context.Context, dom *registration.Domain) error {
	return nil
}

func (r *fakeDomainRepo) GetByID(ctx context.Context, id uint) (*registration.Domain, error) {
	for _, dom := range r.domains {
		if dom.ID() == id {
			return dom, nil
		}
	}
	return nil, apperrors.NewNotFoundError("domain not found")
}

func (r *fakeDomainRepo) GetActiveByOwnerAndName(ctx context.Context, ownerID int64, domainName string) (*registration.Domain, error) {
	for _, dom := range r.domains {
		if dom.OwnerID() == ownerID && dom.DomainName() == domainName {
			return dom, nil
		}
	}
	return nil, apperrors.NewNotFoundError("domain not found")
}

func (r *fakeDomainRepo) ListByOwner(ctx context.Context, ownerID int64) ([]*registration.Domain, error) {
	return r.domains, nil
}

type fakeContactRepo struct {
	contacts map[int64]*registration.RegistrantContact
	saves    int
}

func newFakeContactRepo() *fakeContactRepo {
	return &fakeContactRepo{contacts: make(map[int64]*registration.RegistrantContact)}
}

func (r *fakeContactRepo) Save(ctx context.Context, contact *registration.RegistrantContact) error {
	r.saves++
	r.contacts[contact.OwnerID] = contact
	return nil
}

func (r *fakeContactRepo) GetByOwner(ctx context.Context, ownerID int64) (*registration.RegistrantContact, error) {
	contact, ok := r.contacts[ownerID]
	if !ok {
		return nil, apperrors.NewNotFoundError("contact not found")
	}
	return contact, nil
}

type fakeRegistrar struct {
	contactHandle  string
	contactErr     error
	contactCalls   int
	registerErr    error
	registerCalls  int
	updateNSCalls  int
	updateNSErr    error
	lastNameserver []string
}

func (c *fakeRegistrar) CheckAvailability(ctx context.Context, domainName string) (*registrar.AvailabilityResult, error) {
	return &registrar.AvailabilityResult{Available: true, PriceUSD: decimal.RequireFromString("9.99")}, nil
}

func (c *fakeRegistrar) CreateContact(ctx context.Context, details registrar.ContactDetails) (string, error) {
	c.contactCalls++
	if c.contactErr != nil {
		return "", c.contactErr
	}
	if c.contactHandle == "" {
		return fmt.Sprintf("handle-%d", c.contactCalls), nil
	}
	return c.contactHandle, nil
}

func (c *fakeRegistrar) RegisterDomain(ctx context.Context, domainName, contactHandle string, nameservers []string) (*registrar.RegistrationOutcome, error) {
	c.registerCalls++
	c.lastNameserver = nameservers
	if c.registerErr != nil {
		return nil, c.registerErr
	}
	return &registrar.RegistrationOutcome{RegistrarID: "op-" + domainName, ExpiryYears: 1}, nil
}

func (c *fakeRegistrar) UpdateNameservers(ctx context.Context, registrarID string, nameservers []string) error {
	c.updateNSCalls++
	c.lastNameserver = nameservers
	return c.updateNSErr
}

type fakeDNS struct {
	zone        *dnsprovider.Zone
	zoneErr     error
	zoneCalls   int
	recordCalls int
}

func (c *fakeDNS) CreateZone(ctx context.Context, domainName string) (*dnsprovider.Zone, error) {
	c.zoneCalls++
	if c.zoneErr != nil {
		return nil, c.zoneErr
	}
	if c.zone != nil {
		return c.zone, nil
	}
	return &dnsprovider.Zone{
		ZoneID:      "zone-1",
		Nameservers: []string{"anna.ns.cloudflare.com", "burt.ns.cloudflare.com"},
	}, nil
}

func (c *fakeDNS) CreateRecord(ctx context.Context, zoneID string, record dnsprovider.Record) (string, error) {
	c.recordCalls++
	return "rec-1", nil
}

type fakeContactCache struct {
	handles map[int64]string
	getErr  error
}

func newFakeContactCache() *fakeContactCache {
	return &fakeContactCache{handles: make(map[int64]string)}
}

func (c *fakeContactCache) GetHandle(ctx context.Context, ownerID int64) (string, error) {
	if c.getErr != nil {
		return "", c.getErr
	}
	return c.handles[ownerID], nil
}

func (c *fakeContactCache) SetHandle(ctx context.Context, ownerID int64, handle string) error {
	c.handles[ownerID] = handle
	return nil
}

func newOrderWithDetails(t *testing.T, details ordervo.ServiceDetails) *order.Order {
	t.Helper()
	ord, err := order.NewOrder(7, ordervo.ServiceTypeDomainRegistration,
		decimal.RequireFromString("42.87"), "eth", details)
	require.NoError(t, err)
	return ord
}
