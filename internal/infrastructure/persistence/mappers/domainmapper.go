package mappers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"nomadly/internal/domain/registration"
	vo "nomadly/internal/domain/registration/valueobjects"
	"nomadly/internal/infrastructure/persistence/models"
)

func DomainToModel(d *registration.Domain) (*models.DomainModel, error) {
	ns, err := json.Marshal(d.Nameservers().Hosts())
	if err != nil {
		return nil, fmt.Errorf("failed to encode nameservers: %w", err)
	}

	return &models.DomainModel{
		ID:                 d.ID(),
		OwnerID:            d.OwnerID(),
		DomainName:         d.DomainName(),
		RegistrarReference: d.RegistrarReference(),
		DNSZoneID:          d.DNSZoneID(),
		NameserverMode:     d.NameserverMode().String(),
		Nameservers:        datatypes.JSON(ns),
		Status:             d.Status().String(),
		RegisteredAt:       d.RegisteredAt(),
		ExpiresAt:          d.ExpiresAt(),
		CreatedAt:          d.CreatedAt(),
		UpdatedAt:          d.UpdatedAt(),
	}, nil
}

func DomainToDomain(model *models.DomainModel) (*registration.Domain, error) {
	mode := vo.NameserverMode(model.NameserverMode)
	if !mode.IsValid() {
		return nil, fmt.Errorf("invalid nameserver mode: %s", model.NameserverMode)
	}
	status := vo.DomainStatus(model.Status)
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid domain status: %s", model.Status)
	}

	var hosts []string
	if err := json.Unmarshal(model.Nameservers, &hosts); err != nil {
		return nil, fmt.Errorf("failed to decode nameservers: %w", err)
	}
	ns, err := vo.NewNameservers(hosts)
	if err != nil {
		return nil, fmt.Errorf("invalid persisted nameservers: %w", err)
	}

	return registration.Reconstruct(registration.ReconstructParams{
		ID:                 model.ID,
		OwnerID:            model.OwnerID,
		DomainName:         model.DomainName,
		RegistrarReference: model.RegistrarReference,
		DNSZoneID:          model.DNSZoneID,
		NameserverMode:     mode,
		Nameservers:        ns,
		Status:             status,
		RegisteredAt:       model.RegisteredAt,
		ExpiresAt:          model.ExpiresAt,
		CreatedAt:          model.CreatedAt,
		UpdatedAt:          model.UpdatedAt,
	}), nil
}
