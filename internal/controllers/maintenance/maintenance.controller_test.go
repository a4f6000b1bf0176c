package maintenanceController

import (
	"context"
	"errors"
	"testing"
	"time"

	"hearth/internal/apperrors"
	"hearth/internal/events"
	. "hearth/internal/models"
	"hearth/internal/services"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeRequestRepo struct {
	requests map[uuid.UUID]*MaintenanceRequest
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: make(map[uuid.UUID]*MaintenanceRequest)}
}

func (f *fakeRequestRepo) GetByID(_ context.Context, id uuid.UUID) (*MaintenanceRequest, error) {
	request, ok := f.requests[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *request
	return &copied, nil
}

func (f *fakeRequestRepo) ListForUser(_ context.Context, user *User) ([]MaintenanceRequest, error) {
	var result []MaintenanceRequest
	for _, r := range f.requests {
		switch user.Role {
		case RoleOwner:
			if r.OwnerID == user.ID {
				result = append(result, *r)
			}
		case RoleTenant:
			if r.TenantID == user.ID {
				result = append(result, *r)
			}
		case RoleServiceProvider:
			if (r.ServiceProviderID != nil && *r.ServiceProviderID == user.ID) ||
				(r.ServiceProviderID == nil && r.Status == RequestPending) {
				result = append(result, *r)
			}
		}
	}
	return result, nil
}

func (f *fakeRequestRepo) Create(_ context.Context, request *MaintenanceRequest) error {
	if request.ID == uuid.Nil {
		request.ID = uuid.New()
	}
	copied := *request
	f.requests[request.ID] = &copied
	return nil
}

func (f *fakeRequestRepo) Update(_ context.Context, request *MaintenanceRequest) error {
	copied := *request
	f.requests[request.ID] = &copied
	return nil
}

func (f *fakeRequestRepo) TransitionStatus(
	_ context.Context,
	request *MaintenanceRequest,
	from RequestStatus,
) error {
	stored, ok := f.requests[request.ID]
	if !ok || stored.Status != from {
		return apperrors.ErrConflict
	}
	copied := *request
	f.requests[request.ID] = &copied
	return nil
}

func (f *fakeRequestRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.requests[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(f.requests, id)
	return nil
}

type fakeApartmentRepo struct {
	apartments map[uuid.UUID]*Apartment
}

func newFakeApartmentRepo() *fakeApartmentRepo {
	return &fakeApartmentRepo{apartments: make(map[uuid.UUID]*Apartment)}
}

func (f *fakeApartmentRepo) GetByID(_ context.Context, id uuid.UUID) (*Apartment, error) {
	apartment, ok := f.apartments[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *apartment
	return &copied, nil
}

func (f *fakeApartmentRepo) ListForOwner(context.Context, uuid.UUID) ([]Apartment, error) {
	return nil, nil
}

func (f *fakeApartmentRepo) GetForTenant(context.Context, uuid.UUID) (*Apartment, error) {
	return nil, apperrors.ErrNotFound
}

func (f *fakeApartmentRepo) Create(_ context.Context, apartment *Apartment) error {
	if apartment.ID == uuid.Nil {
		apartment.ID = uuid.New()
	}
	copied := *apartment
	f.apartments[apartment.ID] = &copied
	return nil
}

func (f *fakeApartmentRepo) Update(_ context.Context, _ *gorm.DB, apartment *Apartment) error {
	copied := *apartment
	f.apartments[apartment.ID] = &copied
	return nil
}

func (f *fakeApartmentRepo) AssignTenant(context.Context, *gorm.DB, uuid.UUID, uuid.UUID) error {
	return nil
}

func (f *fakeApartmentRepo) RemoveTenant(context.Context, *gorm.DB, uuid.UUID) error {
	return nil
}

func (f *fakeApartmentRepo) Delete(context.Context, uuid.UUID) error {
	return nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*User)}
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetByEmail(context.Context, string) (*User, error) {
	return nil, apperrors.ErrNotFound
}

func (f *fakeUserRepo) ListProviders(context.Context) ([]User, error) {
	return nil, nil
}

func (f *fakeUserRepo) Create(_ context.Context, user *User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, _ *gorm.DB, user *User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) ClearCache(context.Context, uuid.UUID) error {
	return nil
}

type fakeNotificationRepo struct {
	created []Notification
}

func (f *fakeNotificationRepo) ListForUser(context.Context, uuid.UUID) ([]Notification, error) {
	return nil, nil
}

func (f *fakeNotificationRepo) Create(_ context.Context, n *Notification) error {
	f.created = append(f.created, *n)
	return nil
}

func (f *fakeNotificationRepo) MarkRead(context.Context, uuid.UUID, uuid.UUID) error {
	return nil
}

func (f *fakeNotificationRepo) MarkAllRead(context.Context, uuid.UUID) error {
	return nil
}

type stubPublisher struct{}

func (s *stubPublisher) Publish(events.Channel, events.Event) error { return nil }

type fakeFileStore struct {
	saved       int
	deleted     []string
	failDeletes map[string]bool
}

func newFakeFileStore() *fakeFileStore {
	return &fakeFileStore{failDeletes: make(map[string]bool)}
}

func (f *fakeFileStore) Save(originalName string, _ []byte) (string, error) {
	f.saved++
	return "stored-" + originalName, nil
}

func (f *fakeFileStore) Delete(path string) error {
	f.deleted = append(f.deleted, path)
	if f.failDeletes[path] {
		return errors.New("disk error")
	}
	return nil
}

type fixture struct {
	controller    *MaintenanceController
	requests      *fakeRequestRepo
	apartments    *fakeApartmentRepo
	users         *fakeUserRepo
	files         *fakeFileStore
	notifications *fakeNotificationRepo

	owner     *User
	tenant    *User
	provider  *User
	apartment *Apartment
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	requests := newFakeRequestRepo()
	apartments := newFakeApartmentRepo()
	users := newFakeUserRepo()
	files := newFakeFileStore()
	notifications := &fakeNotificationRepo{}

	owner := &User{Role: RoleOwner}
	tenant := &User{Role: RoleTenant}
	provider := &User{Role: RoleServiceProvider}
	for _, u := range []*User{owner, tenant, provider} {
		require.NoError(t, users.Create(context.Background(), u))
	}

	apartment := &Apartment{
		Number:          "A-101",
		OwnerID:         owner.ID,
		CurrentTenantID: &tenant.ID,
		Status:          ApartmentOccupied,
	}
	require.NoError(t, apartments.Create(context.Background(), apartment))
	tenant.CurrentApartmentID = &apartment.ID

	controller := &MaintenanceController{
		requestRepo:   requests,
		apartmentRepo: apartments,
		userRepo:      users,
		notifications: services.NewNotificationService(notifications, &stubPublisher{}),
		files:         files,
		log:           logger.New("maintenanceControllerTest"),
	}

	return &fixture{
		controller:    controller,
		requests:      requests,
		apartments:    apartments,
		users:         users,
		files:         files,
		notifications: notifications,
		owner:         owner,
		tenant:        tenant,
		provider:      provider,
		apartment:     apartment,
	}
}

func (f *fixture) createRequest(t *testing.T, photos []PhotoUpload) *MaintenanceRequest {
	t.Helper()

	request, err := f.controller.Create(context.Background(), f.tenant, CreateRequestInput{
		Title:       "Leaking faucet",
		ApartmentID: f.apartment.ID,
		Type:        RequestPlumbing,
		Description: "Kitchen faucet drips constantly",
		Priority:    PriorityHigh,
	}, photos)
	require.NoError(t, err)
	return request
}

func TestMaintenanceController_Create(t *testing.T) {
	t.Run("Tenant creates pending request for own apartment", func(t *testing.T) {
		f := newFixture(t)

		request := f.createRequest(t, nil)
		assert.Equal(t, RequestPending, request.Status)
		assert.Equal(t, f.tenant.ID, request.TenantID)
		assert.Equal(t, f.owner.ID, request.OwnerID)

		// owner is notified
		require.Len(t, f.notifications.created, 1)
		assert.Equal(t, f.owner.ID, f.notifications.created[0].UserID)
	})

	t.Run("Other tenant is forbidden", func(t *testing.T) {
		f := newFixture(t)

		intruder := &User{Role: RoleTenant}
		require.NoError(t, f.users.Create(context.Background(), intruder))

		_, err := f.controller.Create(context.Background(), intruder, CreateRequestInput{
			Title:       "Broken window",
			ApartmentID: f.apartment.ID,
			Type:        RequestGeneral,
			Description: "Cracked pane in bedroom",
		}, nil)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("Photos are stored with the request", func(t *testing.T) {
		f := newFixture(t)

		request := f.createRequest(t, []PhotoUpload{
			{Filename: "one.jpg", Data: []byte("a")},
			{Filename: "two.jpg", Data: []byte("b")},
		})
		assert.Equal(t, 2, f.files.saved)
		assert.Len(t, request.Photos, 2)
	})

	t.Run("Too many photos rejected", func(t *testing.T) {
		f := newFixture(t)

		photos := make([]PhotoUpload, 6)
		for i := range photos {
			photos[i] = PhotoUpload{Filename: "p.jpg", Data: []byte("x")}
		}

		_, err := f.controller.Create(context.Background(), f.tenant, CreateRequestInput{
			Title:       "Too many",
			ApartmentID: f.apartment.ID,
			Type:        RequestGeneral,
			Description: "Photo limit check",
		}, photos)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})
}

func TestMaintenanceController_Transition_FullLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	request := f.createRequest(t, nil)

	request, err := f.controller.Transition(ctx, f.owner, request.ID, PatchStatusRequest{
		Status:            RequestAssigned,
		ServiceProviderID: &f.provider.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, RequestAssigned, request.Status)
	require.NotNil(t, request.ServiceProviderID)
	assert.Equal(t, f.provider.ID, *request.ServiceProviderID)

	request, err = f.controller.Transition(ctx, f.provider, request.ID, PatchStatusRequest{
		Status: RequestInProgress,
	})
	require.NoError(t, err)
	require.NotNil(t, request.StartDate)

	request, err = f.controller.Transition(ctx, f.provider, request.ID, PatchStatusRequest{
		Status: RequestCompleted,
	})
	require.NoError(t, err)
	require.NotNil(t, request.CompletionDate)
	assert.False(t, request.CompletionDate.Before(*request.StartDate))

	// completed is terminal
	_, err = f.controller.Transition(ctx, f.owner, request.ID, PatchStatusRequest{
		Status:            RequestAssigned,
		ServiceProviderID: &f.provider.ID,
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	// completion stamps the apartment's maintenance date
	apartment, err := f.apartments.GetByID(ctx, f.apartment.ID)
	require.NoError(t, err)
	assert.NotNil(t, apartment.LastMaintenanceDate)
}

func TestMaintenanceController_Transition_Gates(t *testing.T) {
	t.Run("Pending to in-progress rejected", func(t *testing.T) {
		f := newFixture(t)
		request := f.createRequest(t, nil)

		request.ServiceProviderID = &f.provider.ID
		require.NoError(t, f.requests.Update(context.Background(), request))

		_, err := f.controller.Transition(
			context.Background(),
			f.provider,
			request.ID,
			PatchStatusRequest{Status: RequestInProgress},
		)
		assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	})

	t.Run("Unassigned provider is forbidden", func(t *testing.T) {
		f := newFixture(t)
		request := f.createRequest(t, nil)

		_, err := f.controller.Transition(context.Background(), f.owner, request.ID, PatchStatusRequest{
			Status:            RequestAssigned,
			ServiceProviderID: &f.provider.ID,
		})
		require.NoError(t, err)

		otherProvider := &User{Role: RoleServiceProvider}
		require.NoError(t, f.users.Create(context.Background(), otherProvider))

		_, err = f.controller.Transition(
			context.Background(),
			otherProvider,
			request.ID,
			PatchStatusRequest{Status: RequestInProgress},
		)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("Tenant cannot patch status", func(t *testing.T) {
		f := newFixture(t)
		request := f.createRequest(t, nil)

		_, err := f.controller.Transition(
			context.Background(),
			f.tenant,
			request.ID,
			PatchStatusRequest{Status: RequestCancelled},
		)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("Assigning a non-provider rejected", func(t *testing.T) {
		f := newFixture(t)
		request := f.createRequest(t, nil)

		_, err := f.controller.Transition(context.Background(), f.owner, request.ID, PatchStatusRequest{
			Status:            RequestAssigned,
			ServiceProviderID: &f.tenant.ID,
		})
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("Transition dispatches to all participants", func(t *testing.T) {
		f := newFixture(t)
		request := f.createRequest(t, nil)
		f.notifications.created = nil

		_, err := f.controller.Transition(context.Background(), f.owner, request.ID, PatchStatusRequest{
			Status:            RequestAssigned,
			ServiceProviderID: &f.provider.ID,
		})
		require.NoError(t, err)

		recipients := make(map[uuid.UUID]bool)
		for _, n := range f.notifications.created {
			recipients[n.UserID] = true
		}
		assert.True(t, recipients[f.tenant.ID])
		assert.True(t, recipients[f.owner.ID])
		assert.True(t, recipients[f.provider.ID])
	})
}

func TestMaintenanceController_Delete_CleansUpFiles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	request := f.createRequest(t, []PhotoUpload{
		{Filename: "one.jpg", Data: []byte("a")},
		{Filename: "two.jpg", Data: []byte("b")},
		{Filename: "three.jpg", Data: []byte("c")},
	})

	// one file fails to delete; the rest must still be attempted
	f.files.failDeletes["stored-two.jpg"] = true

	require.NoError(t, f.controller.Delete(ctx, f.owner, request.ID))

	assert.Len(t, f.files.deleted, 3)
	_, err := f.requests.GetByID(ctx, request.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestMaintenanceController_AppendMessage(t *testing.T) {
	t.Run("Participant appends in any state", func(t *testing.T) {
		f := newFixture(t)
		request := f.createRequest(t, nil)

		updated, err := f.controller.AppendMessage(
			context.Background(),
			f.tenant,
			request.ID,
			"Any update on this?",
		)
		require.NoError(t, err)
		require.Len(t, updated.Messages, 1)
		assert.Equal(t, f.tenant.ID, updated.Messages[0].SenderID)
	})

	t.Run("Terminal request still accepts commentary", func(t *testing.T) {
		f := newFixture(t)
		request := f.createRequest(t, nil)

		stored := f.requests.requests[request.ID]
		stored.Status = RequestCancelled

		updated, err := f.controller.AppendMessage(
			context.Background(),
			f.owner,
			request.ID,
			"Cancelled because the tenant fixed it",
		)
		require.NoError(t, err)
		assert.Len(t, updated.Messages, 1)
	})

	t.Run("Outsider is forbidden", func(t *testing.T) {
		f := newFixture(t)
		request := f.createRequest(t, nil)

		outsider := &User{Role: RoleTenant}
		require.NoError(t, f.users.Create(context.Background(), outsider))

		_, err := f.controller.AppendMessage(context.Background(), outsider, request.ID, "hi")
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})
}

func TestMaintenanceController_Rate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	request := f.createRequest(t, nil)

	_, err := f.controller.Rate(ctx, f.tenant, request.ID, 5)
	assert.ErrorIs(t, err, apperrors.ErrConflict, "rating before completion")

	stored := f.requests.requests[request.ID]
	stored.Status = RequestCompleted
	now := time.Now()
	stored.CompletionDate = &now

	updated, err := f.controller.Rate(ctx, f.tenant, request.ID, 4)
	require.NoError(t, err)
	require.NotNil(t, updated.Rating)
	assert.Equal(t, 4, *updated.Rating)

	_, err = f.controller.Rate(ctx, f.tenant, request.ID, 9)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestMaintenanceController_CompletionPhotos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	request := f.createRequest(t, nil)

	_, err := f.controller.Transition(ctx, f.owner, request.ID, PatchStatusRequest{
		Status:            RequestAssigned,
		ServiceProviderID: &f.provider.ID,
	})
	require.NoError(t, err)

	photos := []PhotoUpload{{Filename: "done.jpg", Data: []byte("x")}}

	_, err = f.controller.AppendCompletionPhotos(ctx, f.owner, request.ID, photos)
	assert.ErrorIs(t, err, apperrors.ErrForbidden, "only the assigned provider")

	updated, err := f.controller.AppendCompletionPhotos(ctx, f.provider, request.ID, photos)
	require.NoError(t, err)
	assert.Len(t, updated.CompletionPhotos, 1)
}
