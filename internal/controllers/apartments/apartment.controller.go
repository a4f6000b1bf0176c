package apartmentController

import (
	"context"
	"errors"
	"fmt"

	"hearth/internal/apperrors"
	. "hearth/internal/models"
	"hearth/internal/policy"
	"hearth/internal/repositories"
	"hearth/internal/services"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TransactionExecutor runs a unit of work inside one database transaction.
// Satisfied by services.TransactionService.
type TransactionExecutor interface {
	Execute(ctx context.Context, fn func(context.Context, *gorm.DB) error) error
}

type ApartmentController struct {
	apartmentRepo repositories.ApartmentRepository
	userRepo      repositories.UserRepository
	notifications *services.NotificationService
	transactions  TransactionExecutor
	log           logger.Logger
}

type ApartmentControllerInterface interface {
	Create(ctx context.Context, actor *User, req CreateApartmentRequest) (*Apartment, error)
	ListForActor(ctx context.Context, actor *User) ([]Apartment, error)
	GetByID(ctx context.Context, actor *User, id uuid.UUID) (*Apartment, error)
	Update(ctx context.Context, actor *User, id uuid.UUID, req UpdateApartmentRequest) (*Apartment, error)
	AssignTenant(ctx context.Context, actor *User, apartmentID, tenantID uuid.UUID) (*Apartment, error)
	RemoveTenant(ctx context.Context, actor *User, apartmentID uuid.UUID) (*Apartment, error)
	Delete(ctx context.Context, actor *User, apartmentID uuid.UUID) error
}

func New(
	repos repositories.Repository,
	services services.Service,
) ApartmentControllerInterface {
	return &ApartmentController{
		apartmentRepo: repos.Apartment,
		userRepo:      repos.User,
		notifications: services.Notification,
		transactions:  services.Transaction,
		log:           logger.New("apartmentController"),
	}
}

func (c *ApartmentController) Create(
	ctx context.Context,
	actor *User,
	req CreateApartmentRequest,
) (*Apartment, error) {
	log := c.log.Function("Create")

	if actor.Role != RoleOwner {
		return nil, apperrors.ErrForbidden
	}

	apartment := &Apartment{
		Number:     req.ApartmentNumber,
		OwnerID:    actor.ID,
		Location:   req.Location,
		RentAmount: req.RentAmount,
		RentDueDay: req.RentDueDay,
		Status:     ApartmentVacant,
	}

	if err := apartment.Validate(); err != nil {
		return nil, err
	}

	if err := c.apartmentRepo.Create(ctx, apartment); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, apperrors.NewValidation(map[string]string{
				"apartmentNumber": "you already have an apartment with this number",
			})
		}
		return nil, err
	}

	log.Info("Apartment created", "apartmentID", apartment.ID, "ownerID", actor.ID)
	return apartment, nil
}

// ListForActor returns the owner's portfolio or the tenant's single current
// apartment. Providers have no apartment scope.
func (c *ApartmentController) ListForActor(
	ctx context.Context,
	actor *User,
) ([]Apartment, error) {
	switch actor.Role {
	case RoleOwner:
		return c.apartmentRepo.ListForOwner(ctx, actor.ID)
	case RoleTenant:
		apartment, err := c.apartmentRepo.GetForTenant(ctx, actor.ID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return []Apartment{}, nil
			}
			return nil, err
		}
		return []Apartment{*apartment}, nil
	default:
		return nil, apperrors.ErrForbidden
	}
}

func (c *ApartmentController) GetByID(
	ctx context.Context,
	actor *User,
	id uuid.UUID,
) (*Apartment, error) {
	apartment, err := c.apartmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := policy.CanViewApartment(actor, apartment); err != nil {
		return nil, err
	}

	return apartment, nil
}

func (c *ApartmentController) Update(
	ctx context.Context,
	actor *User,
	id uuid.UUID,
	req UpdateApartmentRequest,
) (*Apartment, error) {
	log := c.log.Function("Update")

	apartment, err := c.apartmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := policy.CanManageApartment(actor, apartment); err != nil {
		return nil, err
	}

	if req.Location != nil {
		apartment.Location = *req.Location
	}
	if req.RentAmount != nil {
		apartment.RentAmount = *req.RentAmount
	}
	if req.RentDueDay != nil {
		apartment.RentDueDay = *req.RentDueDay
	}

	previousTenantID := apartment.CurrentTenantID
	if req.Status != nil {
		if err := apartment.ApplyStatus(*req.Status); err != nil {
			return nil, err
		}
	}

	if err := apartment.Validate(); err != nil {
		return nil, err
	}

	// A status change to vacant releases the tenancy, which has to clear the
	// tenant's side of the link too, in the same transaction as the apartment
	// write.
	releasedTenant := previousTenantID != nil && apartment.CurrentTenantID == nil
	err = c.transactions.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		if releasedTenant {
			if err := c.apartmentRepo.RemoveTenant(ctx, tx, apartment.ID); err != nil {
				return err
			}
		}
		return c.apartmentRepo.Update(ctx, tx, apartment)
	})
	if err != nil {
		return nil, err
	}

	if releasedTenant {
		if err := c.userRepo.ClearCache(ctx, *previousTenantID); err != nil {
			log.Warn("failed to clear tenant cache", "tenantID", *previousTenantID, "error", err)
		}
	}

	log.Info("Apartment updated", "apartmentID", apartment.ID)
	return apartment, nil
}

// AssignTenant links both sides of the tenancy. The pre-checks give friendly
// errors; the repository's conditional updates are what actually decide a
// concurrent race, surfacing the loser as a conflict.
func (c *ApartmentController) AssignTenant(
	ctx context.Context,
	actor *User,
	apartmentID, tenantID uuid.UUID,
) (*Apartment, error) {
	log := c.log.Function("AssignTenant")

	apartment, err := c.apartmentRepo.GetByID(ctx, apartmentID)
	if err != nil {
		return nil, err
	}

	if err := policy.CanManageApartment(actor, apartment); err != nil {
		return nil, err
	}

	tenant, err := c.userRepo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if tenant.Role != RoleTenant {
		return nil, apperrors.NewValidation(map[string]string{
			"tenantId": "user is not a tenant",
		})
	}
	if apartment.Occupied() || tenant.CurrentApartmentID != nil {
		return nil, apperrors.ErrConflict
	}

	err = c.transactions.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		return c.apartmentRepo.AssignTenant(ctx, tx, apartmentID, tenantID)
	})
	if err != nil {
		return nil, err
	}

	if err := c.userRepo.ClearCache(ctx, tenantID); err != nil {
		log.Warn("failed to clear tenant cache", "tenantID", tenantID, "error", err)
	}

	c.notifications.Notify(
		ctx,
		[]uuid.UUID{tenantID},
		fmt.Sprintf("You have been assigned to apartment %s", apartment.Number),
		NotificationSuccess,
		nil,
	)

	log.Info("Tenant assigned", "apartmentID", apartmentID, "tenantID", tenantID)
	return c.apartmentRepo.GetByID(ctx, apartmentID)
}

func (c *ApartmentController) RemoveTenant(
	ctx context.Context,
	actor *User,
	apartmentID uuid.UUID,
) (*Apartment, error) {
	log := c.log.Function("RemoveTenant")

	apartment, err := c.apartmentRepo.GetByID(ctx, apartmentID)
	if err != nil {
		return nil, err
	}

	if err := policy.CanManageApartment(actor, apartment); err != nil {
		return nil, err
	}

	if !apartment.Occupied() {
		return nil, apperrors.ErrConflict
	}
	tenantID := *apartment.CurrentTenantID

	err = c.transactions.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		return c.apartmentRepo.RemoveTenant(ctx, tx, apartmentID)
	})
	if err != nil {
		return nil, err
	}

	if err := c.userRepo.ClearCache(ctx, tenantID); err != nil {
		log.Warn("failed to clear tenant cache", "tenantID", tenantID, "error", err)
	}

	c.notifications.Notify(
		ctx,
		[]uuid.UUID{tenantID},
		fmt.Sprintf("You have been removed from apartment %s", apartment.Number),
		NotificationInfo,
		nil,
	)

	log.Info("Tenant removed", "apartmentID", apartmentID, "tenantID", tenantID)
	return c.apartmentRepo.GetByID(ctx, apartmentID)
}

// Delete refuses while occupied. The occupancy guard lives in the same
// conditional delete the repository issues.
func (c *ApartmentController) Delete(
	ctx context.Context,
	actor *User,
	apartmentID uuid.UUID,
) error {
	log := c.log.Function("Delete")

	apartment, err := c.apartmentRepo.GetByID(ctx, apartmentID)
	if err != nil {
		return err
	}

	if err := policy.CanManageApartment(actor, apartment); err != nil {
		return err
	}

	if err := c.apartmentRepo.Delete(ctx, apartmentID); err != nil {
		return err
	}

	log.Info("Apartment deleted", "apartmentID", apartmentID, "ownerID", actor.ID)
	return nil
}
