package usecases

import (
	"context"
	"fmt"

	"nomadly/internal/application/registration/dnsprovider"
	"nomadly/internal/application/registration/registrar"
	"nomadly/internal/domain/order"
	ordervo "nomadly/internal/domain/order/valueobjects"
	"nomadly/internal/domain/registration"
	vo "nomadly/internal/domain/registration/valueobjects"
	"nomadly/internal/shared/biztime"
	apperrors "nomadly/internal/shared/errors"
	"nomadly/internal/shared/logger"
	"nomadly/internal/shared/retry"
)

const defaultRegistrationYears = 1

// RegistrationResult is the explicit outcome of one fulfillment attempt.
// Success is authoritative only once the Domain row is persisted.
type RegistrationResult struct {
	Success bool
	Domain  *registration.Domain
	Reason  string
	// Recovered marks success established from an existing Domain row
	// rather than a fresh registrar call.
	Recovered bool
}

// FulfillDomainOrderUseCase runs the registration pipeline for a paid order:
// contact resolution, nameserver configuration, registrar registration,
// Domain persistence. Every step checks for its own prior effect first, so
// retrying a partially completed order never duplicates external side
// effects.
type FulfillDomainOrderUseCase struct {
	domainRepo   registration.DomainRepository
	contactRepo  registration.ContactRepository
	contactCache ContactCache // optional
	registrar    registrar.Client
	dns          dnsprovider.Client

	defaultNameservers []string
	defaultRecordIP    string

	policy retry.Policy
	logger logger.Interface
}

func NewFulfillDomainOrderUseCase(
	domainRepo registration.DomainRepository,
	contactRepo registration.ContactRepository,
	registrarClient registrar.Client,
	dnsClient dnsprovider.Client,
	defaultNameservers []string,
	logger logger.Interface,
) *FulfillDomainOrderUseCase {
	return &FulfillDomainOrderUseCase{
		domainRepo:         domainRepo,
		contactRepo:        contactRepo,
		registrar:          registrarClient,
		dns:                dnsClient,
		defaultNameservers: defaultNameservers,
		policy:             retry.ExternalCalls(),
		logger:             logger,
	}
}

// SetContactCache wires the optional handle cache.
func (uc *FulfillDomainOrderUseCase) SetContactCache(cache ContactCache) {
	uc.contactCache = cache
}

// SetDefaultRecordIP enables the best-effort root A record after zone
// creation in managed-dns mode.
func (uc *FulfillDomainOrderUseCase) SetDefaultRecordIP(ip string) {
	uc.defaultRecordIP = ip
}

// SetRetryPolicy overrides the external-call retry policy, mainly for tests.
func (uc *FulfillDomainOrderUseCase) SetRetryPolicy(p retry.Policy) {
	uc.policy = p
}

func (uc *FulfillDomainOrderUseCase) Execute(ctx context.Context, ord *order.Order) (*RegistrationResult, error) {
	details := ord.ServiceDetails()
	log := uc.logger.With("order_id", ord.OrderID(), "domain", details.DomainName)

	// A previous attempt may have completed after its caller timed out.
	if existing, err := uc.CheckFulfillment(ctx, ord); err == nil && existing != nil {
		log.Infow("domain already registered, treating retry as success", "domain_id", existing.ID())
		return &RegistrationResult{Success: true, Domain: existing, Recovered: true}, nil
	}

	handle, err := uc.resolveContact(ctx, ord, log)
	if err != nil {
		return &RegistrationResult{Reason: "contact creation failed"}, err
	}

	nameservers, mode, zoneID, err := uc.resolveNameservers(ctx, details, log)
	if err != nil {
		return &RegistrationResult{Reason: "nameserver configuration failed"}, err
	}

	registrarRef, years, err := uc.registerDomain(ctx, details.DomainName, handle, nameservers, log)
	if err != nil {
		return &RegistrationResult{Reason: "registrar registration failed"}, err
	}

	expiresAt := biztime.NowUTC().AddDate(years, 0, 0)
	dom, err := registration.NewDomain(ord.OwnerID(), details.DomainName, registrarRef, zoneID, mode, nameservers, expiresAt)
	if err != nil {
		return &RegistrationResult{Reason: "invalid domain state"}, apperrors.NewInternalError("failed to build domain record", err.Error())
	}
	if err := uc.domainRepo.Create(ctx, dom); err != nil {
		// A concurrent attempt may have inserted the row first; the row
		// is ground truth either way.
		if existing, lookupErr := uc.CheckFulfillment(ctx, ord); lookupErr == nil && existing != nil {
			return &RegistrationResult{Success: true, Domain: existing, Recovered: true}, nil
		}
		return &RegistrationResult{Reason: "failed to persist domain"}, apperrors.NewInternalError("failed to persist domain", err.Error())
	}

	log.Infow("domain registered",
		"registrar_ref", registrarRef,
		"nameserver_mode", mode.String(),
		"nameservers", nameservers.String(),
	)
	return &RegistrationResult{Success: true, Domain: dom}, nil
}

// CheckFulfillment consults persisted state for corroborated success. An
// active Domain row for the owner and name means the order is fulfilled no
// matter what the pipeline's own signal said. Returns nil when no row exists.
func (uc *FulfillDomainOrderUseCase) CheckFulfillment(ctx context.Context, ord *order.Order) (*registration.Domain, error) {
	dom, err := uc.domainRepo.GetActiveByOwnerAndName(ctx, ord.OwnerID(), ord.ServiceDetails().DomainName)
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			return nil, nil
		}
		return nil, err
	}
	return dom, nil
}

// resolveContact reuses a cached or persisted contact handle for the owner,
// synthesizing and registering a new one only when none exists.
func (uc *FulfillDomainOrderUseCase) resolveContact(ctx context.Context, ord *order.Order, log logger.Interface) (string, error) {
	ownerID := ord.OwnerID()

	if uc.contactCache != nil {
		if handle, err := uc.contactCache.GetHandle(ctx, ownerID); err == nil && handle != "" {
			return handle, nil
		}
	}

	if contact, err := uc.contactRepo.GetByOwner(ctx, ownerID); err == nil && contact != nil {
		uc.cacheHandle(ctx, ownerID, contact.Handle, log)
		return contact.Handle, nil
	}

	identity := synthesizeIdentity(ord.ServiceDetails().ContactEmail)

	var handle string
	err := uc.policy.Do(ctx, func(ctx context.Context) error {
		var createErr error
		handle, createErr = uc.registrar.CreateContact(ctx, identity)
		return createErr
	})
	if err != nil {
		return "", err
	}

	contact := &registration.RegistrantContact{
		OwnerID:      ownerID,
		Handle:       handle,
		ContactEmail: identity.Email,
	}
	if err := uc.contactRepo.Save(ctx, contact); err != nil {
		// The handle exists at the registrar; losing the cache row only
		// costs a duplicate contact on some future order.
		log.Warnw("failed to persist contact handle", "error", err)
	}
	uc.cacheHandle(ctx, ownerID, handle, log)

	log.Infow("registrant contact created", "handle", handle)
	return handle, nil
}

func (uc *FulfillDomainOrderUseCase) cacheHandle(ctx context.Context, ownerID int64, handle string, log logger.Interface) {
	if uc.contactCache == nil {
		return
	}
	if err := uc.contactCache.SetHandle(ctx, ownerID, handle); err != nil {
		log.Debugw("contact cache write failed", "error", err)
	}
}

func (uc *FulfillDomainOrderUseCase) resolveNameservers(ctx context.Context, details ordervo.ServiceDetails, log logger.Interface) (vo.Nameservers, vo.NameserverMode, string, error) {
	switch details.NameserverChoice {
	case ordervo.NameserverChoiceCustom:
		ns, err := vo.NewNameservers(details.CustomNameservers)
		if err != nil {
			return vo.Nameservers{}, "", "", apperrors.NewValidationError("invalid custom nameservers", err.Error())
		}
		return ns, vo.NameserverModeCustom, "", nil

	case ordervo.NameserverChoiceManagedDNS:
		var zone *dnsprovider.Zone
		err := uc.policy.Do(ctx, func(ctx context.Context) error {
			var zoneErr error
			zone, zoneErr = uc.dns.CreateZone(ctx, details.DomainName)
			return zoneErr
		})
		if err != nil {
			return vo.Nameservers{}, "", "", err
		}

		hosts := zone.Nameservers
		if len(hosts) > vo.MaxNameservers {
			hosts = hosts[:vo.MaxNameservers]
		}
		ns, err := vo.NewNameservers(hosts)
		if err != nil {
			return vo.Nameservers{}, "", "", apperrors.NewExternalError("dns provider returned unusable nameservers", err.Error())
		}

		uc.createDefaultRecords(ctx, zone.ZoneID, details.DomainName, log)
		return ns, vo.NameserverModeManagedDNS, zone.ZoneID, nil

	case ordervo.NameserverChoiceRegistrarDefault:
		ns, err := vo.NewNameservers(uc.defaultNameservers)
		if err != nil {
			return vo.Nameservers{}, "", "", apperrors.NewInternalError("registrar default nameservers misconfigured", err.Error())
		}
		return ns, vo.NameserverModeRegistrarDefault, "", nil

	default:
		return vo.Nameservers{}, "", "", apperrors.NewValidationError(fmt.Sprintf("unknown nameserver choice %q", details.NameserverChoice))
	}
}

// createDefaultRecords sets up the minimal record set in a fresh zone. Best
// effort: a failure is logged and registration proceeds.
func (uc *FulfillDomainOrderUseCase) createDefaultRecords(ctx context.Context, zoneID, domainName string, log logger.Interface) {
	if uc.defaultRecordIP == "" {
		return
	}
	_, err := uc.dns.CreateRecord(ctx, zoneID, dnsprovider.Record{
		Type:    "A",
		Name:    domainName,
		Content: uc.defaultRecordIP,
		TTL:     3600,
	})
	if err != nil {
		log.Warnw("default A record creation failed", "zone_id", zoneID, "error", err)
	}
}

func (uc *FulfillDomainOrderUseCase) registerDomain(ctx context.Context, domainName, handle string, ns vo.Nameservers, log logger.Interface) (string, int, error) {
	var outcome *registrar.RegistrationOutcome
	err := uc.policy.Do(ctx, func(ctx context.Context) error {
		var regErr error
		outcome, regErr = uc.registrar.RegisterDomain(ctx, domainName, handle, ns.Hosts())
		return regErr
	})
	if err != nil {
		// Already registered to this contact means some earlier attempt
		// succeeded upstream; treat as success.
		if apperrors.IsConflictError(err) {
			log.Infow("registrar reports domain already registered, treating as success")
			return "existing:" + domainName, defaultRegistrationYears, nil
		}
		return "", 0, err
	}

	years := outcome.ExpiryYears
	if years <= 0 {
		years = defaultRegistrationYears
	}
	return outcome.RegistrarID, years, nil
}
