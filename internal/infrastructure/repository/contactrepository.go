package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"nomadly/internal/domain/registration"
	"nomadly/internal/infrastructure/persistence/models"
	"nomadly/internal/shared/biztime"
	"nomadly/internal/shared/db"
	apperrors "nomadly/internal/shared/errors"
)

type ContactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

// Save upserts on owner: an owner has at most one cached registrar contact.
func (r *ContactRepository) Save(ctx context.Context, c *registration.RegistrantContact) error {
	now := biztime.NowUTC()
	model := &models.RegistrantContactModel{
		OwnerID:      c.OwnerID,
		Handle:       c.Handle,
		ContactEmail: c.ContactEmail,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := db.GetTxFromContext(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "owner_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"handle", "contact_email", "updated_at"}),
		}).
		Create(model).Error
	if err != nil {
		return fmt.Errorf("failed to save registrant contact: %w", err)
	}
	return nil
}

func (r *ContactRepository) GetByOwner(ctx context.Context, ownerID int64) (*registration.RegistrantContact, error) {
	var model models.RegistrantContactModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("owner_id = ?", ownerID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("registrant contact not found")
		}
		return nil, fmt.Errorf("failed to get registrant contact: %w", err)
	}

	return &registration.RegistrantContact{
		OwnerID:      model.OwnerID,
		Handle:       model.Handle,
		ContactEmail: model.ContactEmail,
	}, nil
}
