package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"nomadly/internal/domain/registration"
	vo "nomadly/internal/domain/registration/valueobjects"
	"nomadly/internal/infrastructure/persistence/mappers"
	"nomadly/internal/infrastructure/persistence/models"
	"nomadly/internal/shared/db"
	apperrors "nomadly/internal/shared/errors"
)

type DomainRepository struct {
	db *gorm.DB
}

func NewDomainRepository(db *gorm.DB) *DomainRepository {
	return &DomainRepository{db: db}
}

func (r *DomainRepository) Create(ctx context.Context, d *registration.Domain) error {
	model, err := mappers.DomainToModel(d)
	if err != nil {
		return err
	}
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create domain: %w", err)
	}
	d.SetID(model.ID)
	return nil
}

func (r *DomainRepository) Update(ctx context.Context, d *registration.Domain) error {
	model, err := mappers.DomainToModel(d)
	if err != nil {
		return err
	}

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.DomainModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"nameserver_mode": model.NameserverMode,
			"nameservers":     model.Nameservers,
			"status":          model.Status,
			"expires_at":      model.ExpiresAt,
			"updated_at":      model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update domain: %w", result.Error)
	}
	return nil
}

func (r *DomainRepository) GetByID(ctx context.Context, id uint) (*registration.Domain, error) {
	var model models.DomainModel
	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("domain not found")
		}
		return nil, fmt.Errorf("failed to get domain: %w", err)
	}
	return mappers.DomainToDomain(&model)
}

func (r *DomainRepository) GetActiveByOwnerAndName(ctx context.Context, ownerID int64, domainName string) (*registration.Domain, error) {
	var model models.DomainModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("owner_id = ? AND domain_name = ? AND status = ?", ownerID, domainName, vo.DomainStatusActive.String()).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("domain not found")
		}
		return nil, fmt.Errorf("failed to get domain: %w", err)
	}
	return mappers.DomainToDomain(&model)
}

func (r *DomainRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*registration.Domain, error) {
	var rows []models.DomainModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list domains: %w", err)
	}

	domains := make([]*registration.Domain, 0, len(rows))
	for i := range rows {
		d, err := mappers.DomainToDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		domains = append(domains, d)
	}
	return domains, nil
}
