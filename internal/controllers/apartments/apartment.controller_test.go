package apartmentController

import (
	"context"
	"testing"

	"hearth/internal/apperrors"
	"hearth/internal/events"
	. "hearth/internal/models"
	"hearth/internal/services"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

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
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) GetByEmail(context.Context, string) (*User, error) {
	return nil, apperrors.ErrNotFound
}

func (f *fakeUserRepo) ListProviders(context.Context) ([]User, error) { return nil, nil }

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

func (f *fakeUserRepo) ClearCache(context.Context, uuid.UUID) error { return nil }

// fakeApartmentRepo mirrors the conditional-update semantics of the real
// repository: assignment fails unless both sides are free, deletion fails
// while occupied.
type fakeApartmentRepo struct {
	apartments map[uuid.UUID]*Apartment
	users      *fakeUserRepo
}

func newFakeApartmentRepo(users *fakeUserRepo) *fakeApartmentRepo {
	return &fakeApartmentRepo{
		apartments: make(map[uuid.UUID]*Apartment),
		users:      users,
	}
}

func (f *fakeApartmentRepo) GetByID(_ context.Context, id uuid.UUID) (*Apartment, error) {
	apartment, ok := f.apartments[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *apartment
	return &copied, nil
}

func (f *fakeApartmentRepo) ListForOwner(
	_ context.Context,
	ownerID uuid.UUID,
) ([]Apartment, error) {
	var result []Apartment
	for _, a := range f.apartments {
		if a.OwnerID == ownerID {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (f *fakeApartmentRepo) GetForTenant(
	_ context.Context,
	tenantID uuid.UUID,
) (*Apartment, error) {
	for _, a := range f.apartments {
		if a.CurrentTenantID != nil && *a.CurrentTenantID == tenantID {
			copied := *a
			return &copied, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeApartmentRepo) Create(_ context.Context, apartment *Apartment) error {
	if apartment.ID == uuid.Nil {
		apartment.ID = uuid.New()
	}
	for _, existing := range f.apartments {
		if existing.OwnerID == apartment.OwnerID && existing.Number == apartment.Number {
			return apperrors.ErrConflict
		}
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

func (f *fakeApartmentRepo) AssignTenant(
	_ context.Context,
	_ *gorm.DB,
	apartmentID, tenantID uuid.UUID,
) error {
	apartment := f.apartments[apartmentID]
	tenant := f.users.users[tenantID]
	if apartment.CurrentTenantID != nil || tenant.CurrentApartmentID != nil {
		return apperrors.ErrConflict
	}
	apartment.CurrentTenantID = &tenantID
	apartment.Status = ApartmentOccupied
	tenant.CurrentApartmentID = &apartmentID
	return nil
}

func (f *fakeApartmentRepo) RemoveTenant(
	_ context.Context,
	_ *gorm.DB,
	apartmentID uuid.UUID,
) error {
	apartment := f.apartments[apartmentID]
	if apartment.CurrentTenantID != nil {
		tenant := f.users.users[*apartment.CurrentTenantID]
		tenant.CurrentApartmentID = nil
	}
	apartment.CurrentTenantID = nil
	apartment.Status = ApartmentVacant
	return nil
}

func (f *fakeApartmentRepo) Delete(_ context.Context, apartmentID uuid.UUID) error {
	apartment, ok := f.apartments[apartmentID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if apartment.CurrentTenantID != nil {
		return apperrors.ErrConflict
	}
	delete(f.apartments, apartmentID)
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

func (f *fakeNotificationRepo) MarkRead(context.Context, uuid.UUID, uuid.UUID) error { return nil }
func (f *fakeNotificationRepo) MarkAllRead(context.Context, uuid.UUID) error         { return nil }

type stubPublisher struct{}

func (s *stubPublisher) Publish(events.Channel, events.Event) error { return nil }

// fakeTransactions runs the unit of work directly; the fake repositories
// apply their writes immediately.
type fakeTransactions struct{}

func (f *fakeTransactions) Execute(
	ctx context.Context,
	fn func(context.Context, *gorm.DB) error,
) error {
	return fn(ctx, nil)
}

type fixture struct {
	controller *ApartmentController
	users      *fakeUserRepo
	apartments *fakeApartmentRepo

	owner  *User
	tenant *User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	users := newFakeUserRepo()
	apartments := newFakeApartmentRepo(users)

	owner := &User{Role: RoleOwner}
	tenant := &User{Role: RoleTenant}
	for _, u := range []*User{owner, tenant} {
		require.NoError(t, users.Create(context.Background(), u))
	}

	controller := &ApartmentController{
		apartmentRepo: apartments,
		userRepo:      users,
		notifications: services.NewNotificationService(&fakeNotificationRepo{}, &stubPublisher{}),
		transactions:  &fakeTransactions{},
		log:           logger.New("apartmentControllerTest"),
	}

	return &fixture{
		controller: controller,
		users:      users,
		apartments: apartments,
		owner:      owner,
		tenant:     tenant,
	}
}

func (f *fixture) createApartment(t *testing.T, number string) *Apartment {
	t.Helper()

	apartment, err := f.controller.Create(context.Background(), f.owner, CreateApartmentRequest{
		ApartmentNumber: number,
		Location:        "12 Main Street, Springfield",
		RentAmount:      decimal.NewFromInt(1000),
		RentDueDay:      5,
	})
	require.NoError(t, err)
	return apartment
}

func TestApartmentController_Create(t *testing.T) {
	t.Run("Owner creates vacant apartment", func(t *testing.T) {
		f := newFixture(t)

		apartment := f.createApartment(t, "A-101")
		assert.Equal(t, ApartmentVacant, apartment.Status)
		assert.Equal(t, f.owner.ID, apartment.OwnerID)
	})

	t.Run("Tenant cannot create", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.controller.Create(context.Background(), f.tenant, CreateApartmentRequest{
			ApartmentNumber: "A-101",
			Location:        "12 Main Street, Springfield",
			RentAmount:      decimal.NewFromInt(1000),
			RentDueDay:      5,
		})
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("Duplicate number per owner rejected", func(t *testing.T) {
		f := newFixture(t)
		f.createApartment(t, "A-101")

		_, err := f.controller.Create(context.Background(), f.owner, CreateApartmentRequest{
			ApartmentNumber: "A-101",
			Location:        "12 Main Street, Springfield",
			RentAmount:      decimal.NewFromInt(1000),
			RentDueDay:      5,
		})
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("Invalid rent due day rejected", func(t *testing.T) {
		f := newFixture(t)

		for _, day := range []int{0, 32} {
			_, err := f.controller.Create(context.Background(), f.owner, CreateApartmentRequest{
				ApartmentNumber: "B-202",
				Location:        "12 Main Street, Springfield",
				RentAmount:      decimal.NewFromInt(1000),
				RentDueDay:      day,
			})
			assert.ErrorIs(t, err, apperrors.ErrValidation, "rentDueDay %d", day)
		}
	})
}

func TestApartmentController_AssignTenant(t *testing.T) {
	t.Run("Assignment links both sides", func(t *testing.T) {
		f := newFixture(t)
		apartment := f.createApartment(t, "A-101")

		updated, err := f.controller.AssignTenant(
			context.Background(),
			f.owner,
			apartment.ID,
			f.tenant.ID,
		)
		require.NoError(t, err)

		assert.Equal(t, ApartmentOccupied, updated.Status)
		require.NotNil(t, updated.CurrentTenantID)
		assert.Equal(t, f.tenant.ID, *updated.CurrentTenantID)

		tenant := f.users.users[f.tenant.ID]
		require.NotNil(t, tenant.CurrentApartmentID)
		assert.Equal(t, apartment.ID, *tenant.CurrentApartmentID)
	})

	t.Run("Occupied apartment rejects a second tenant", func(t *testing.T) {
		f := newFixture(t)
		apartment := f.createApartment(t, "A-101")

		_, err := f.controller.AssignTenant(context.Background(), f.owner, apartment.ID, f.tenant.ID)
		require.NoError(t, err)

		second := &User{Role: RoleTenant}
		require.NoError(t, f.users.Create(context.Background(), second))

		_, err = f.controller.AssignTenant(context.Background(), f.owner, apartment.ID, second.ID)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})

	t.Run("Tenant with an apartment rejects a second assignment", func(t *testing.T) {
		f := newFixture(t)
		first := f.createApartment(t, "A-101")
		second := f.createApartment(t, "B-202")

		_, err := f.controller.AssignTenant(context.Background(), f.owner, first.ID, f.tenant.ID)
		require.NoError(t, err)

		_, err = f.controller.AssignTenant(context.Background(), f.owner, second.ID, f.tenant.ID)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})

	t.Run("Non-tenant user rejected", func(t *testing.T) {
		f := newFixture(t)
		apartment := f.createApartment(t, "A-101")

		provider := &User{Role: RoleServiceProvider}
		require.NoError(t, f.users.Create(context.Background(), provider))

		_, err := f.controller.AssignTenant(context.Background(), f.owner, apartment.ID, provider.ID)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("Other owner is forbidden", func(t *testing.T) {
		f := newFixture(t)
		apartment := f.createApartment(t, "A-101")

		otherOwner := &User{Role: RoleOwner}
		require.NoError(t, f.users.Create(context.Background(), otherOwner))

		_, err := f.controller.AssignTenant(
			context.Background(),
			otherOwner,
			apartment.ID,
			f.tenant.ID,
		)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})
}

func TestApartmentController_RemoveTenant(t *testing.T) {
	t.Run("Removal clears both sides", func(t *testing.T) {
		f := newFixture(t)
		apartment := f.createApartment(t, "A-101")

		_, err := f.controller.AssignTenant(context.Background(), f.owner, apartment.ID, f.tenant.ID)
		require.NoError(t, err)

		updated, err := f.controller.RemoveTenant(context.Background(), f.owner, apartment.ID)
		require.NoError(t, err)

		assert.Equal(t, ApartmentVacant, updated.Status)
		assert.Nil(t, updated.CurrentTenantID)
		assert.Nil(t, f.users.users[f.tenant.ID].CurrentApartmentID)
	})

	t.Run("Vacant apartment rejects removal", func(t *testing.T) {
		f := newFixture(t)
		apartment := f.createApartment(t, "A-101")

		_, err := f.controller.RemoveTenant(context.Background(), f.owner, apartment.ID)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})
}

func TestApartmentController_Delete(t *testing.T) {
	t.Run("Occupied apartment cannot be deleted until tenant removed", func(t *testing.T) {
		f := newFixture(t)
		apartment := f.createApartment(t, "A-101")

		_, err := f.controller.AssignTenant(context.Background(), f.owner, apartment.ID, f.tenant.ID)
		require.NoError(t, err)

		err = f.controller.Delete(context.Background(), f.owner, apartment.ID)
		assert.ErrorIs(t, err, apperrors.ErrConflict)

		_, err = f.controller.RemoveTenant(context.Background(), f.owner, apartment.ID)
		require.NoError(t, err)

		require.NoError(t, f.controller.Delete(context.Background(), f.owner, apartment.ID))
		_, err = f.apartments.GetByID(context.Background(), apartment.ID)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestApartmentController_Update(t *testing.T) {
	t.Run("Owner edits rent terms", func(t *testing.T) {
		f := newFixture(t)
		apartment := f.createApartment(t, "A-101")

		newAmount := decimal.NewFromInt(1200)
		newDay := 1
		updated, err := f.controller.Update(
			context.Background(),
			f.owner,
			apartment.ID,
			UpdateApartmentRequest{RentAmount: &newAmount, RentDueDay: &newDay},
		)
		require.NoError(t, err)
		assert.True(t, updated.RentAmount.Equal(newAmount))
		assert.Equal(t, 1, updated.RentDueDay)
	})

	t.Run("Invalid rent due day rejected", func(t *testing.T) {
		f := newFixture(t)
		apartment := f.createApartment(t, "A-101")

		badDay := 32
		_, err := f.controller.Update(
			context.Background(),
			f.owner,
			apartment.ID,
			UpdateApartmentRequest{RentDueDay: &badDay},
		)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("Status change to vacant clears both sides of the tenancy", func(t *testing.T) {
		f := newFixture(t)
		apartment := f.createApartment(t, "A-101")

		_, err := f.controller.AssignTenant(context.Background(), f.owner, apartment.ID, f.tenant.ID)
		require.NoError(t, err)

		vacant := ApartmentVacant
		updated, err := f.controller.Update(
			context.Background(),
			f.owner,
			apartment.ID,
			UpdateApartmentRequest{Status: &vacant},
		)
		require.NoError(t, err)
		assert.Nil(t, updated.CurrentTenantID)
		assert.Equal(t, ApartmentVacant, updated.Status)

		// The tenant must be assignable again afterwards.
		assert.Nil(t, f.users.users[f.tenant.ID].CurrentApartmentID)
		_, err = f.controller.AssignTenant(context.Background(), f.owner, apartment.ID, f.tenant.ID)
		assert.NoError(t, err)
	})
}

func TestApartmentController_ListForActor(t *testing.T) {
	f := newFixture(t)
	apartment := f.createApartment(t, "A-101")
	f.createApartment(t, "B-202")

	t.Run("Owner sees portfolio", func(t *testing.T) {
		apartments, err := f.controller.ListForActor(context.Background(), f.owner)
		require.NoError(t, err)
		assert.Len(t, apartments, 2)
	})

	t.Run("Tenant sees only their apartment", func(t *testing.T) {
		_, err := f.controller.AssignTenant(context.Background(), f.owner, apartment.ID, f.tenant.ID)
		require.NoError(t, err)

		apartments, err := f.controller.ListForActor(context.Background(), f.tenant)
		require.NoError(t, err)
		require.Len(t, apartments, 1)
		assert.Equal(t, apartment.ID, apartments[0].ID)
	})

	t.Run("Provider has no apartment scope", func(t *testing.T) {
		provider := &User{Role: RoleServiceProvider}
		require.NoError(t, f.users.Create(context.Background(), provider))

		_, err := f.controller.ListForActor(context.Background(), provider)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})
}
