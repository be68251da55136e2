package usecases

import (
	"context"

	"nomadly/internal/application/registration/registrar"
	"nomadly/internal/domain/registration"
	vo "nomadly/internal/domain/registration/valueobjects"
	apperrors "nomadly/internal/shared/errors"
	"nomadly/internal/shared/logger"
	"nomadly/internal/shared/retry"
)

// UpdateNameserversCommand switches a registered domain to a custom
// nameserver set.
type UpdateNameserversCommand struct {
	OwnerID     int64
	DomainID    uint
	Nameservers []string
}

type UpdateNameserversUseCase struct {
	domainRepo registration.DomainRepository
	registrar  registrar.Client
	policy     retry.Policy
	logger     logger.Interface
}

func NewUpdateNameserversUseCase(
	domainRepo registration.DomainRepository,
	registrarClient registrar.Client,
	logger logger.Interface,
) *UpdateNameserversUseCase {
	return &UpdateNameserversUseCase{
		domainRepo: domainRepo,
		registrar:  registrarClient,
		policy:     retry.ExternalCalls(),
		logger:     logger,
	}
}

// SetRetryPolicy overrides the external-call retry policy, mainly for tests.
func (uc *UpdateNameserversUseCase) SetRetryPolicy(p retry.Policy) {
	uc.policy = p
}

func (uc *UpdateNameserversUseCase) Execute(ctx context.Context, cmd UpdateNameserversCommand) (*registration.Domain, error) {
	ns, err := vo.NewNameservers(cmd.Nameservers)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid nameservers", err.Error())
	}

	dom, err := uc.domainRepo.GetByID(ctx, cmd.DomainID)
	if err != nil {
		return nil, err
	}
	if dom.OwnerID() != cmd.OwnerID {
		return nil, apperrors.NewNotFoundError("domain not found")
	}

	err = uc.policy.Do(ctx, func(ctx context.Context) error {
		return uc.registrar.UpdateNameservers(ctx, dom.RegistrarReference(), ns.Hosts())
	})
	if err != nil {
		return nil, err
	}

	if err := dom.UpdateNameservers(vo.NameserverModeCustom, ns); err != nil {
		return nil, apperrors.NewInternalError("failed to update nameservers", err.Error())
	}
	if err := uc.domainRepo.Update(ctx, dom); err != nil {
		return nil, apperrors.NewInternalError("failed to persist nameserver update", err.Error())
	}

	uc.logger.Infow("nameservers updated",
		"domain", dom.DomainName(),
		"nameservers", ns.String(),
	)
	return dom, nil
}
