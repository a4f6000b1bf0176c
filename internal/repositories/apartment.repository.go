package repositories

import (
	"context"
	"errors"

	"hearth/internal/apperrors"
	"hearth/internal/database"
	. "hearth/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ApartmentRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Apartment, error)
	ListForOwner(ctx context.Context, ownerID uuid.UUID) ([]Apartment, error)
	GetForTenant(ctx context.Context, tenantID uuid.UUID) (*Apartment, error)
	Create(ctx context.Context, apartment *Apartment) error
	Update(ctx context.Context, tx *gorm.DB, apartment *Apartment) error
	AssignTenant(ctx context.Context, tx *gorm.DB, apartmentID, tenantID uuid.UUID) error
	RemoveTenant(ctx context.Context, tx *gorm.DB, apartmentID uuid.UUID) error
	Delete(ctx context.Context, apartmentID uuid.UUID) error
}

type apartmentRepository struct {
	db  database.DB
	log logger.Logger
}

func NewApartmentRepository(db database.DB) ApartmentRepository {
	return &apartmentRepository{
		db:  db,
		log: logger.New("apartmentRepository"),
	}
}

func (r *apartmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*Apartment, error) {
	log := r.log.Function("GetByID")

	var apartment Apartment
	if err := r.db.SQLWithContext(ctx).
		Preload("CurrentTenant").
		First(&apartment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, log.Err("failed to get apartment by id", err, "id", id)
	}

	return &apartment, nil
}

func (r *apartmentRepository) ListForOwner(
	ctx context.Context,
	ownerID uuid.UUID,
) ([]Apartment, error) {
	log := r.log.Function("ListForOwner")

	var apartments []Apartment
	if err := r.db.SQLWithContext(ctx).
		Preload("CurrentTenant").
		Where("owner_id = ?", ownerID).
		Order("number").
		Find(&apartments).Error; err != nil {
		return nil, log.Err("failed to list apartments for owner", err, "ownerID", ownerID)
	}

	return apartments, nil
}

func (r *apartmentRepository) GetForTenant(
	ctx context.Context,
	tenantID uuid.UUID,
) (*Apartment, error) {
	log := r.log.Function("GetForTenant")

	var apartment Apartment
	if err := r.db.SQLWithContext(ctx).
		Preload("Owner").
		First(&apartment, "current_tenant_id = ?", tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, log.Err("failed to get apartment for tenant", err, "tenantID", tenantID)
	}

	return &apartment, nil
}

func (r *apartmentRepository) Create(ctx context.Context, apartment *Apartment) error {
	log := r.log.Function("Create")

	if err := r.db.SQLWithContext(ctx).Create(apartment).Error; err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrConflict
		}
		return log.Err("failed to create apartment", err, "number", apartment.Number)
	}

	return nil
}

func (r *apartmentRepository) Update(
	ctx context.Context,
	tx *gorm.DB,
	apartment *Apartment,
) error {
	log := r.log.Function("Update")

	db := r.db.SQLWithContext(ctx)
	if tx != nil {
		db = tx.WithContext(ctx)
	}

	if err := db.Save(apartment).Error; err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrConflict
		}
		return log.Err("failed to update apartment", err, "apartmentID", apartment.ID)
	}

	return nil
}

// AssignTenant links tenant and apartment in one transaction. Both sides use
// conditional updates against unique-indexed columns, so of two concurrent
// assignments exactly one commits and the loser surfaces a conflict. A non-nil
// tx means the caller owns the transaction; otherwise one is opened here.
func (r *apartmentRepository) AssignTenant(
	ctx context.Context,
	tx *gorm.DB,
	apartmentID, tenantID uuid.UUID,
) error {
	log := r.log.Function("AssignTenant")

	link := func(tx *gorm.DB) error {
		result := tx.Model(&Apartment{}).
			Where("id = ? AND current_tenant_id IS NULL", apartmentID).
			Updates(map[string]any{
				"current_tenant_id": tenantID,
				"status":            ApartmentOccupied,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.ErrConflict
		}

		result = tx.Model(&User{}).
			Where("id = ? AND role = ? AND current_apartment_id IS NULL", tenantID, RoleTenant).
			Update("current_apartment_id", apartmentID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.ErrConflict
		}

		return nil
	}

	var err error
	if tx != nil {
		err = link(tx.WithContext(ctx))
	} else {
		err = r.db.SQLWithContext(ctx).Transaction(link)
	}
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) || isUniqueViolation(err) {
			return apperrors.ErrConflict
		}
		return log.Err(
			"failed to assign tenant",
			err,
			"apartmentID", apartmentID,
			"tenantID", tenantID,
		)
	}

	return nil
}

// RemoveTenant clears both sides of the link. Removing an already vacant
// apartment is a no-op. A non-nil tx means the caller owns the transaction.
func (r *apartmentRepository) RemoveTenant(
	ctx context.Context,
	tx *gorm.DB,
	apartmentID uuid.UUID,
) error {
	log := r.log.Function("RemoveTenant")

	unlink := func(tx *gorm.DB) error {
		if err := tx.Model(&User{}).
			Where("current_apartment_id = ?", apartmentID).
			Update("current_apartment_id", nil).Error; err != nil {
			return err
		}

		return tx.Model(&Apartment{}).
			Where("id = ?", apartmentID).
			Updates(map[string]any{
				"current_tenant_id": nil,
				"status":            ApartmentVacant,
			}).Error
	}

	var err error
	if tx != nil {
		err = unlink(tx.WithContext(ctx))
	} else {
		err = r.db.SQLWithContext(ctx).Transaction(unlink)
	}
	if err != nil {
		return log.Err("failed to remove tenant", err, "apartmentID", apartmentID)
	}

	return nil
}

// Delete refuses while a tenant is assigned. The occupancy guard runs in the
// same statement as the delete so a concurrent assignment cannot slip between
// check and removal.
func (r *apartmentRepository) Delete(ctx context.Context, apartmentID uuid.UUID) error {
	log := r.log.Function("Delete")

	result := r.db.SQLWithContext(ctx).
		Where("id = ? AND current_tenant_id IS NULL", apartmentID).
		Delete(&Apartment{})
	if result.Error != nil {
		return log.Err("failed to delete apartment", result.Error, "apartmentID", apartmentID)
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.SQLWithContext(ctx).Model(&Apartment{}).
			Where("id = ?", apartmentID).
			Count(&count).Error; err != nil {
			return log.Err("failed to check apartment existence", err, "apartmentID", apartmentID)
		}
		if count > 0 {
			return apperrors.ErrConflict
		}
		return apperrors.ErrNotFound
	}

	return nil
}
