package registrar

import (
	"context"

	"github.com/shopspring/decimal"
)

// Client is the registrar integration consumed by the fulfillment pipeline.
// Implementations translate these operations to a concrete registrar API and
// classify failures as AppErrors so callers can decide what is retryable.
type Client interface {
	CheckAvailability(ctx context.Context, domainName string) (*AvailabilityResult, error)

	// CreateContact registers a contact and returns the registrar-assigned
	// handle. The handle is cached per owner and reused by later orders.
	CreateContact(ctx context.Context, details ContactDetails) (string, error)

	// RegisterDomain registers the domain under the contact handle with the
	// given nameservers. A domain-already-registered-for-this-contact
	// condition is reported as a conflict error; callers treat it as
	// success on retry.
	RegisterDomain(ctx context.Context, domainName, contactHandle string, nameservers []string) (*RegistrationOutcome, error)

	UpdateNameservers(ctx context.Context, registrarID string, nameservers []string) error
}

type AvailabilityResult struct {
	Available bool
	PriceUSD  decimal.Decimal
	Premium   bool
}

// ContactDetails carries the synthesized registrant identity. Fields map to
// the registrar's contact schema; none of them identify the real user.
type ContactDetails struct {
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	Street      string
	City        string
	ZipCode     string
	CountryCode string
}

type RegistrationOutcome struct {
	RegistrarID string
	// ExpiryYears is the registration period the registrar granted.
	ExpiryYears int
}
