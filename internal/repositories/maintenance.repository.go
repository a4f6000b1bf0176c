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

type MaintenanceRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*MaintenanceRequest, error)
	ListForUser(ctx context.Context, user *User) ([]MaintenanceRequest, error)
	Create(ctx context.Context, request *MaintenanceRequest) error
	Update(ctx context.Context, request *MaintenanceRequest) error
	TransitionStatus(ctx context.Context, request *MaintenanceRequest, from RequestStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type maintenanceRepository struct {
	db  database.DB
	log logger.Logger
}

func NewMaintenanceRepository(db database.DB) MaintenanceRepository {
	return &maintenanceRepository{
		db:  db,
		log: logger.New("maintenanceRepository"),
	}
}

func (r *maintenanceRepository) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*MaintenanceRequest, error) {
	log := r.log.Function("GetByID")

	var request MaintenanceRequest
	if err := r.db.SQLWithContext(ctx).
		Preload("Apartment").
		Preload("Tenant").
		Preload("ServiceProvider").
		First(&request, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, log.Err("failed to get maintenance request by id", err, "id", id)
	}

	return &request, nil
}

// ListForUser scopes the listing by role. Owners see requests against their
// apartments, tenants their own submissions, and providers their assignments
// plus the unassigned pending pool they can pick work from.
func (r *maintenanceRepository) ListForUser(
	ctx context.Context,
	user *User,
) ([]MaintenanceRequest, error) {
	log := r.log.Function("ListForUser")

	query := r.db.SQLWithContext(ctx).
		Preload("Apartment").
		Preload("Tenant").
		Preload("ServiceProvider")

	switch user.Role {
	case RoleOwner:
		query = query.Where("owner_id = ?", user.ID)
	case RoleTenant:
		query = query.Where("tenant_id = ?", user.ID)
	case RoleServiceProvider:
		query = query.Where(
			"service_provider_id = ? OR (service_provider_id IS NULL AND status = ?)",
			user.ID, RequestPending,
		)
	default:
		return nil, apperrors.ErrForbidden
	}

	var requests []MaintenanceRequest
	if err := query.Order("created_at DESC").Find(&requests).Error; err != nil {
		return nil, log.Err(
			"failed to list maintenance requests",
			err,
			"userID", user.ID,
			"role", user.Role,
		)
	}

	return requests, nil
}

func (r *maintenanceRepository) Create(ctx context.Context, request *MaintenanceRequest) error {
	log := r.log.Function("Create")

	if err := r.db.SQLWithContext(ctx).Create(request).Error; err != nil {
		return log.Err("failed to create maintenance request", err, "title", request.Title)
	}

	return nil
}

func (r *maintenanceRepository) Update(ctx context.Context, request *MaintenanceRequest) error {
	log := r.log.Function("Update")

	if err := r.db.SQLWithContext(ctx).Save(request).Error; err != nil {
		return log.Err("failed to update maintenance request", err, "requestID", request.ID)
	}

	return nil
}

// TransitionStatus persists a status change conditioned on the row still
// holding the status the transition was computed from. A concurrent
// transition that got there first leaves zero rows affected and surfaces as
// a conflict rather than silently overwriting.
func (r *maintenanceRepository) TransitionStatus(
	ctx context.Context,
	request *MaintenanceRequest,
	from RequestStatus,
) error {
	log := r.log.Function("TransitionStatus")

	result := r.db.SQLWithContext(ctx).Model(&MaintenanceRequest{}).
		Where("id = ? AND status = ?", request.ID, from).
		Updates(map[string]any{
			"status":              request.Status,
			"service_provider_id": request.ServiceProviderID,
			"start_date":          request.StartDate,
			"completion_date":     request.CompletionDate,
		})
	if result.Error != nil {
		return log.Err(
			"failed to transition maintenance request",
			result.Error,
			"requestID", request.ID,
			"from", from,
			"to", request.Status,
		)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrConflict
	}

	return nil
}

func (r *maintenanceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	log := r.log.Function("Delete")

	result := r.db.SQLWithContext(ctx).Delete(&MaintenanceRequest{}, "id = ?", id)
	if result.Error != nil {
		return log.Err("failed to delete maintenance request", result.Error, "requestID", id)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}
