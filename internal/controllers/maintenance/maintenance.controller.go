package maintenanceController

import (
	"context"
	"time"

	"hearth/internal/apperrors"
	. "hearth/internal/models"
	"hearth/internal/policy"
	"hearth/internal/repositories"
	"hearth/internal/services"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
)

// FileStore is the slice of the file store the controller needs.
type FileStore interface {
	Save(originalName string, data []byte) (string, error)
	Delete(path string) error
}

// PhotoUpload is one decoded multipart file.
type PhotoUpload struct {
	Filename string
	Data     []byte
}

type MaintenanceController struct {
	requestRepo   repositories.MaintenanceRepository
	apartmentRepo repositories.ApartmentRepository
	userRepo      repositories.UserRepository
	notifications *services.NotificationService
	files         FileStore
	log           logger.Logger
}

type MaintenanceControllerInterface interface {
	Create(ctx context.Context, actor *User, input CreateRequestInput, photos []PhotoUpload) (*MaintenanceRequest, error)
	ListForActor(ctx context.Context, actor *User) ([]MaintenanceRequest, error)
	GetByID(ctx context.Context, actor *User, id uuid.UUID) (*MaintenanceRequest, error)
	Transition(ctx context.Context, actor *User, id uuid.UUID, patch PatchStatusRequest) (*MaintenanceRequest, error)
	AppendMessage(ctx context.Context, actor *User, id uuid.UUID, body string) (*MaintenanceRequest, error)
	AppendNote(ctx context.Context, actor *User, id uuid.UUID, body string) (*MaintenanceRequest, error)
	AppendCompletionPhotos(ctx context.Context, actor *User, id uuid.UUID, photos []PhotoUpload) (*MaintenanceRequest, error)
	Rate(ctx context.Context, actor *User, id uuid.UUID, rating int) (*MaintenanceRequest, error)
	Schedule(ctx context.Context, actor *User, id uuid.UUID, input ScheduleRequestInput) (*MaintenanceRequest, error)
	Delete(ctx context.Context, actor *User, id uuid.UUID) error
}

func New(
	repos repositories.Repository,
	services services.Service,
) MaintenanceControllerInterface {
	return &MaintenanceController{
		requestRepo:   repos.Maintenance,
		apartmentRepo: repos.Apartment,
		userRepo:      repos.User,
		notifications: services.Notification,
		files:         services.FileStore,
		log:           logger.New("maintenanceController"),
	}
}

// Create files a new request for the actor's current apartment. Photos are
// stored first; a storage failure on any photo fails the whole create before
// the row exists.
func (c *MaintenanceController) Create(
	ctx context.Context,
	actor *User,
	input CreateRequestInput,
	photos []PhotoUpload,
) (*MaintenanceRequest, error) {
	log := c.log.Function("Create")

	apartment, err := c.apartmentRepo.GetByID(ctx, input.ApartmentID)
	if err != nil {
		return nil, err
	}

	if err := policy.CanCreateRequest(actor, apartment); err != nil {
		return nil, err
	}

	if len(photos) > services.MaxFilesPerUpload {
		return nil, apperrors.NewValidation(map[string]string{
			"photos": "a maximum of 5 photos can be attached",
		})
	}

	priority := input.Priority
	if priority == "" {
		priority = PriorityMedium
	}

	request := &MaintenanceRequest{
		Title:       input.Title,
		Description: input.Description,
		ApartmentID: apartment.ID,
		TenantID:    actor.ID,
		OwnerID:     apartment.OwnerID,
		Type:        input.Type,
		Priority:    priority,
		Status:      RequestPending,
	}

	if err := request.ValidateInitialStatus(); err != nil {
		return nil, err
	}
	if err := request.Validate(); err != nil {
		return nil, err
	}

	var stored []Photo
	for _, photo := range photos {
		path, err := c.files.Save(photo.Filename, photo.Data)
		if err != nil {
			for _, p := range stored {
				if deleteErr := c.files.Delete(p.Path); deleteErr != nil {
					log.Warn("failed to clean up photo", "path", p.Path, "error", deleteErr)
				}
			}
			return nil, err
		}
		stored = append(stored, Photo{
			Filename:   photo.Filename,
			Path:       path,
			UploadedBy: actor.ID,
			UploadedAt: time.Now(),
		})
	}
	request.Photos = stored

	if err := c.requestRepo.Create(ctx, request); err != nil {
		for _, p := range stored {
			if deleteErr := c.files.Delete(p.Path); deleteErr != nil {
				log.Warn("failed to clean up photo", "path", p.Path, "error", deleteErr)
			}
		}
		return nil, err
	}

	c.notifications.Notify(
		ctx,
		[]uuid.UUID{apartment.OwnerID},
		"New maintenance request: "+request.Title,
		NotificationInfo,
		nil,
	)

	log.Info("Maintenance request created", "requestID", request.ID, "tenantID", actor.ID)
	return request, nil
}

func (c *MaintenanceController) ListForActor(
	ctx context.Context,
	actor *User,
) ([]MaintenanceRequest, error) {
	return c.requestRepo.ListForUser(ctx, actor)
}

func (c *MaintenanceController) GetByID(
	ctx context.Context,
	actor *User,
	id uuid.UUID,
) (*MaintenanceRequest, error) {
	request, err := c.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := policy.CanViewRequest(actor, request); err != nil {
		return nil, err
	}

	return request, nil
}

// Transition runs the full gate sequence: authorization, then the state
// machine, then the conditional persist. Only after the persist succeeds does
// the dispatcher fire; a dispatch failure never rolls the transition back.
func (c *MaintenanceController) Transition(
	ctx context.Context,
	actor *User,
	id uuid.UUID,
	patch PatchStatusRequest,
) (*MaintenanceRequest, error) {
	log := c.log.Function("Transition")

	request, err := c.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := policy.CanTransition(actor, request, patch.Status); err != nil {
		return nil, err
	}

	if patch.Status == RequestAssigned {
		if patch.ServiceProviderID == nil {
			return nil, apperrors.NewValidation(map[string]string{
				"serviceProviderId": "a service provider is required to assign a request",
			})
		}

		provider, err := c.userRepo.GetByID(ctx, *patch.ServiceProviderID)
		if err != nil {
			return nil, err
		}
		if !provider.IsServiceProvider() {
			return nil, apperrors.NewValidation(map[string]string{
				"serviceProviderId": "user is not a service provider",
			})
		}
		request.ServiceProviderID = patch.ServiceProviderID
	}

	oldStatus := request.Status
	if err := request.ApplyTransition(patch.Status, time.Now()); err != nil {
		return nil, err
	}

	if err := c.requestRepo.TransitionStatus(ctx, request, oldStatus); err != nil {
		return nil, err
	}

	if request.Status == RequestCompleted {
		c.recordApartmentMaintenance(ctx, request)
	}

	recipients := []uuid.UUID{request.TenantID, request.OwnerID}
	if request.ServiceProviderID != nil {
		recipients = append(recipients, *request.ServiceProviderID)
	}
	c.notifications.NotifyStatusChange(ctx, StatusChangeEvent{
		RequestID:  request.ID,
		Title:      request.Title,
		OldStatus:  oldStatus,
		NewStatus:  request.Status,
		Recipients: recipients,
	})

	log.Info(
		"Maintenance request transitioned",
		"requestID", request.ID,
		"from", oldStatus,
		"to", request.Status,
	)
	return request, nil
}

func (c *MaintenanceController) recordApartmentMaintenance(
	ctx context.Context,
	request *MaintenanceRequest,
) {
	log := c.log.Function("recordApartmentMaintenance")

	apartment, err := c.apartmentRepo.GetByID(ctx, request.ApartmentID)
	if err != nil {
		log.Warn("failed to load apartment", "apartmentID", request.ApartmentID, "error", err)
		return
	}

	now := time.Now()
	apartment.LastMaintenanceDate = &now
	if err := c.apartmentRepo.Update(ctx, nil, apartment); err != nil {
		log.Warn(
			"failed to record maintenance date",
			"apartmentID", apartment.ID,
			"error", err,
		)
	}
}

// AppendMessage works in every state, terminal included. Historical
// commentary on a closed request stays possible.
func (c *MaintenanceController) AppendMessage(
	ctx context.Context,
	actor *User,
	id uuid.UUID,
	body string,
) (*MaintenanceRequest, error) {
	request, err := c.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := policy.CanAppendMessage(actor, request); err != nil {
		return nil, err
	}

	if body == "" {
		return nil, apperrors.NewValidation(map[string]string{
			"message": "message body is required",
		})
	}

	request.Messages = append(request.Messages, RequestMessage{
		ID:        uuid.New(),
		SenderID:  actor.ID,
		Body:      body,
		Timestamp: time.Now(),
	})

	if err := c.requestRepo.Update(ctx, request); err != nil {
		return nil, err
	}

	return request, nil
}

func (c *MaintenanceController) AppendNote(
	ctx context.Context,
	actor *User,
	id uuid.UUID,
	body string,
) (*MaintenanceRequest, error) {
	request, err := c.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := policy.CanAppendNote(actor, request); err != nil {
		return nil, err
	}

	if body == "" {
		return nil, apperrors.NewValidation(map[string]string{
			"note": "note body is required",
		})
	}

	request.Notes = append(request.Notes, RequestNote{
		AuthorID:  actor.ID,
		Body:      body,
		CreatedAt: time.Now(),
	})

	if err := c.requestRepo.Update(ctx, request); err != nil {
		return nil, err
	}

	return request, nil
}

func (c *MaintenanceController) AppendCompletionPhotos(
	ctx context.Context,
	actor *User,
	id uuid.UUID,
	photos []PhotoUpload,
) (*MaintenanceRequest, error) {
	log := c.log.Function("AppendCompletionPhotos")

	request, err := c.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := policy.CanAppendCompletionPhotos(actor, request); err != nil {
		return nil, err
	}

	if len(photos) == 0 || len(photos) > services.MaxFilesPerUpload {
		return nil, apperrors.NewValidation(map[string]string{
			"photos": "between 1 and 5 photos are required",
		})
	}

	for _, photo := range photos {
		path, err := c.files.Save(photo.Filename, photo.Data)
		if err != nil {
			return nil, err
		}
		request.CompletionPhotos = append(request.CompletionPhotos, Photo{
			Filename:   photo.Filename,
			Path:       path,
			UploadedBy: actor.ID,
			UploadedAt: time.Now(),
		})
	}

	if err := c.requestRepo.Update(ctx, request); err != nil {
		return nil, err
	}

	log.Info("Completion photos added", "requestID", request.ID, "count", len(photos))
	return request, nil
}

// Rate records the tenant's score once the work is completed.
func (c *MaintenanceController) Rate(
	ctx context.Context,
	actor *User,
	id uuid.UUID,
	rating int,
) (*MaintenanceRequest, error) {
	request, err := c.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := policy.CanRateRequest(actor, request); err != nil {
		return nil, err
	}

	if request.Status != RequestCompleted {
		return nil, apperrors.ErrConflict
	}
	if rating < 1 || rating > 5 {
		return nil, apperrors.NewValidation(map[string]string{
			"rating": "rating must be between 1 and 5",
		})
	}

	request.Rating = &rating
	if err := c.requestRepo.Update(ctx, request); err != nil {
		return nil, err
	}

	return request, nil
}

// Schedule merges the actor's side of the visit schedule: tenants propose,
// the owner or assigned provider confirms.
func (c *MaintenanceController) Schedule(
	ctx context.Context,
	actor *User,
	id uuid.UUID,
	input ScheduleRequestInput,
) (*MaintenanceRequest, error) {
	request, err := c.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := policy.CanScheduleRequest(actor, request); err != nil {
		return nil, err
	}

	schedule := request.Schedule.Data()
	if actor.Role == RoleTenant {
		schedule.PreferredDate = input.PreferredDate
		schedule.PreferredSlot = input.PreferredSlot
	} else {
		schedule.ConfirmedDate = input.ConfirmedDate
		schedule.ConfirmedSlot = input.ConfirmedSlot
	}
	request.Schedule = NewScheduleJSON(schedule)

	if err := c.requestRepo.Update(ctx, request); err != nil {
		return nil, err
	}

	return request, nil
}

// Delete removes the request row and then best-effort deletes every attached
// file. One failed file never aborts the rest.
func (c *MaintenanceController) Delete(
	ctx context.Context,
	actor *User,
	id uuid.UUID,
) error {
	log := c.log.Function("Delete")

	request, err := c.requestRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := policy.CanDeleteRequest(actor, request); err != nil {
		return err
	}

	if err := c.requestRepo.Delete(ctx, id); err != nil {
		return err
	}

	for _, photo := range append(request.Photos, request.CompletionPhotos...) {
		if err := c.files.Delete(photo.Path); err != nil {
			log.Warn("failed to delete photo", "path", photo.Path, "error", err)
		}
	}

	log.Info("Maintenance request deleted", "requestID", id)
	return nil
}
