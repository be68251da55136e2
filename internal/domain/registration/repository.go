package registration

import "context"

type DomainRepository interface {
	Create(ctx context.Context, domain *Domain) error
	Update(ctx context.Context, domain *Domain) error
	GetByID(ctx context.Context, id uint) (*Domain, error)

	// GetActiveByOwnerAndName finds an active domain for the owner matching
	// the exact name. Used by the fulfillment recovery check: a row here is
	// ground truth for successful registration even when the orchestrator's
	// own result was inconclusive.
	GetActiveByOwnerAndName(ctx context.Context, ownerID int64, domainName string) (*Domain, error)

	ListByOwner(ctx context.Context, ownerID int64) ([]*Domain, error)
}

// RegistrantContact is a cached registrar contact handle for an owner.
// Contacts are synthesized once per owner and reused by later orders.
type RegistrantContact struct {
	OwnerID      int64
	Handle       string
	ContactEmail string
}

type ContactRepository interface {
	Save(ctx context.Context, contact *RegistrantContact) error

	// GetByOwner returns the cached handle for the owner, or a not-found
	// error when none was created yet.
	GetByOwner(ctx context.Context, ownerID int64) (*RegistrantContact, error)
}
