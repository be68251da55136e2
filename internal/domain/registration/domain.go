package registration

import (
	"fmt"
	"time"

	vo "nomadly/internal/domain/registration/valueobjects"
	"nomadly/internal/shared/biztime"
)

// Domain is a successfully registered domain. A row exists only after the
// registrar confirmed registration; inserting it is the authoritative
// success signal for the fulfillment pipeline.
type Domain struct {
	id                 uint
	ownerID            int64
	domainName         string
	registrarReference string
	dnsZoneID          string
	nameserverMode     vo.NameserverMode
	nameservers        vo.Nameservers
	status             vo.DomainStatus
	registeredAt       time.Time
	expiresAt          time.Time
	createdAt          time.Time
	updatedAt          time.Time
}

func NewDomain(ownerID int64, domainName, registrarReference, dnsZoneID string, mode vo.NameserverMode, nameservers vo.Nameservers, expiresAt time.Time) (*Domain, error) {
	if ownerID == 0 {
		return nil, fmt.Errorf("owner ID is required")
	}
	if domainName == "" {
		return nil, fmt.Errorf("domain name is required")
	}
	if registrarReference == "" {
		return nil, fmt.Errorf("registrar reference is required")
	}
	if !mode.IsValid() {
		return nil, fmt.Errorf("invalid nameserver mode %q", mode)
	}
	if nameservers.Len() < vo.MinNameservers {
		return nil, fmt.Errorf("at least %d nameservers required", vo.MinNameservers)
	}

	now := biztime.NowUTC()
	return &Domain{
		ownerID:            ownerID,
		domainName:         domainName,
		registrarReference: registrarReference,
		dnsZoneID:          dnsZoneID,
		nameserverMode:     mode,
		nameservers:        nameservers,
		status:             vo.DomainStatusActive,
		registeredAt:       now,
		expiresAt:          expiresAt,
		createdAt:          now,
		updatedAt:          now,
	}, nil
}

// MarkExpired transitions an active domain to expired.
func (d *Domain) MarkExpired() {
	if d.status == vo.DomainStatusExpired {
		return
	}
	d.status = vo.DomainStatusExpired
	d.updatedAt = biztime.NowUTC()
}

// UpdateNameservers replaces the nameserver set after a registrar update.
func (d *Domain) UpdateNameservers(mode vo.NameserverMode, nameservers vo.Nameservers) error {
	if !mode.IsValid() {
		return fmt.Errorf("invalid nameserver mode %q", mode)
	}
	if nameservers.Len() < vo.MinNameservers {
		return fmt.Errorf("at least %d nameservers required", vo.MinNameservers)
	}
	d.nameserverMode = mode
	d.nameservers = nameservers
	d.updatedAt = biztime.NowUTC()
	return nil
}

func (d *Domain) SetID(id uint) { d.id = id }

func (d *Domain) ID() uint                          { return d.id }
func (d *Domain) OwnerID() int64                    { return d.ownerID }
func (d *Domain) DomainName() string                { return d.domainName }
func (d *Domain) RegistrarReference() string        { return d.registrarReference }
func (d *Domain) DNSZoneID() string                 { return d.dnsZoneID }
func (d *Domain) NameserverMode() vo.NameserverMode { return d.nameserverMode }
func (d *Domain) Nameservers() vo.Nameservers       { return d.nameservers }
func (d *Domain) Status() vo.DomainStatus           { return d.status }
func (d *Domain) RegisteredAt() time.Time           { return d.registeredAt }
func (d *Domain) ExpiresAt() time.Time              { return d.expiresAt }
func (d *Domain) CreatedAt() time.Time              { return d.createdAt }
func (d *Domain) UpdatedAt() time.Time              { return d.updatedAt }

// ReconstructParams carries persisted state back into a Domain.
type ReconstructParams struct {
	ID                 uint
	OwnerID            int64
	DomainName         string
	RegistrarReference string
	DNSZoneID          string
	NameserverMode     vo.NameserverMode
	Nameservers        vo.Nameservers
	Status             vo.DomainStatus
	RegisteredAt       time.Time
	ExpiresAt          time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func Reconstruct(p ReconstructParams) *Domain {
	return &Domain{
		id:                 p.ID,
		ownerID:            p.OwnerID,
		domainName:         p.DomainName,
		registrarReference: p.RegistrarReference,
		dnsZoneID:          p.DNSZoneID,
		nameserverMode:     p.NameserverMode,
		nameservers:        p.Nameservers,
		status:             p.Status,
		registeredAt:       p.RegisteredAt,
		expiresAt:          p.ExpiresAt,
		createdAt:          p.CreatedAt,
		updatedAt:          p.UpdatedAt,
	}
}
