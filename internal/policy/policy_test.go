package policy

import (
	"testing"

	"hearth/internal/apperrors"
	. "hearth/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newUser(role UserRole) *User {
	user := &User{Role: role}
	user.ID = uuid.New()
	return user
}

func TestCanManageApartment(t *testing.T) {
	owner := newUser(RoleOwner)
	otherOwner := newUser(RoleOwner)
	tenant := newUser(RoleTenant)

	apartment := &Apartment{OwnerID: owner.ID}

	tests := []struct {
		name     string
		actor    *User
		expected error
	}{
		{
			name:     "Owner of the apartment",
			actor:    owner,
			expected: nil,
		},
		{
			name:     "Different owner",
			actor:    otherOwner,
			expected: apperrors.ErrForbidden,
		},
		{
			name:     "Tenant",
			actor:    tenant,
			expected: apperrors.ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CanManageApartment(tt.actor, apartment))
		})
	}
}

func TestCanCreateRequest(t *testing.T) {
	tenant := newUser(RoleTenant)
	otherTenant := newUser(RoleTenant)
	owner := newUser(RoleOwner)

	occupied := &Apartment{OwnerID: owner.ID, CurrentTenantID: &tenant.ID}
	vacant := &Apartment{OwnerID: owner.ID}

	t.Run("Current tenant may create", func(t *testing.T) {
		assert.NoError(t, CanCreateRequest(tenant, occupied))
	})

	t.Run("Different tenant is forbidden", func(t *testing.T) {
		assert.ErrorIs(t, CanCreateRequest(otherTenant, occupied), apperrors.ErrForbidden)
	})

	t.Run("Owner is forbidden", func(t *testing.T) {
		assert.ErrorIs(t, CanCreateRequest(owner, occupied), apperrors.ErrForbidden)
	})

	t.Run("Vacant apartment has no eligible tenant", func(t *testing.T) {
		assert.ErrorIs(t, CanCreateRequest(tenant, vacant), apperrors.ErrForbidden)
	})
}

func TestCanViewRequest_ProviderPool(t *testing.T) {
	provider := newUser(RoleServiceProvider)
	otherProvider := newUser(RoleServiceProvider)

	t.Run("Assigned provider sees the request", func(t *testing.T) {
		request := &MaintenanceRequest{
			Status:            RequestAssigned,
			ServiceProviderID: &provider.ID,
		}
		assert.NoError(t, CanViewRequest(provider, request))
		assert.ErrorIs(t, CanViewRequest(otherProvider, request), apperrors.ErrForbidden)
	})

	t.Run("Unassigned pending request is in the open pool", func(t *testing.T) {
		request := &MaintenanceRequest{Status: RequestPending}
		assert.NoError(t, CanViewRequest(provider, request))
		assert.NoError(t, CanViewRequest(otherProvider, request))
	})

	t.Run("Unassigned cancelled request is not", func(t *testing.T) {
		request := &MaintenanceRequest{Status: RequestCancelled}
		assert.ErrorIs(t, CanViewRequest(provider, request), apperrors.ErrForbidden)
	})
}

func TestCanTransition(t *testing.T) {
	owner := newUser(RoleOwner)
	tenant := newUser(RoleTenant)
	provider := newUser(RoleServiceProvider)
	otherProvider := newUser(RoleServiceProvider)

	request := &MaintenanceRequest{
		OwnerID:           owner.ID,
		TenantID:          tenant.ID,
		ServiceProviderID: &provider.ID,
		Status:            RequestAssigned,
	}

	tests := []struct {
		name     string
		actor    *User
		next     RequestStatus
		expected error
	}{
		{
			name:     "Owner may assign",
			actor:    owner,
			next:     RequestAssigned,
			expected: nil,
		},
		{
			name:     "Owner may cancel",
			actor:    owner,
			next:     RequestCancelled,
			expected: nil,
		},
		{
			name:     "Assigned provider may start work",
			actor:    provider,
			next:     RequestInProgress,
			expected: nil,
		},
		{
			name:     "Assigned provider may complete",
			actor:    provider,
			next:     RequestCompleted,
			expected: nil,
		},
		{
			name:     "Unassigned provider may not progress",
			actor:    otherProvider,
			next:     RequestInProgress,
			expected: apperrors.ErrForbidden,
		},
		{
			name:     "Provider may not cancel",
			actor:    provider,
			next:     RequestCancelled,
			expected: apperrors.ErrForbidden,
		},
		{
			name:     "Tenant may not cancel",
			actor:    tenant,
			next:     RequestCancelled,
			expected: apperrors.ErrForbidden,
		},
		{
			name:     "Tenant may not assign",
			actor:    tenant,
			next:     RequestAssigned,
			expected: apperrors.ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CanTransition(tt.actor, request, tt.next))
		})
	}
}

func TestCanAppendCompletionPhotos(t *testing.T) {
	provider := newUser(RoleServiceProvider)
	owner := newUser(RoleOwner)

	request := &MaintenanceRequest{
		OwnerID:           owner.ID,
		ServiceProviderID: &provider.ID,
	}

	assert.NoError(t, CanAppendCompletionPhotos(provider, request))
	assert.ErrorIs(t, CanAppendCompletionPhotos(owner, request), apperrors.ErrForbidden)

	unassigned := &MaintenanceRequest{OwnerID: owner.ID}
	assert.ErrorIs(t, CanAppendCompletionPhotos(provider, unassigned), apperrors.ErrForbidden)
}

func TestCanRateRequest(t *testing.T) {
	tenant := newUser(RoleTenant)
	otherTenant := newUser(RoleTenant)

	request := &MaintenanceRequest{TenantID: tenant.ID}

	assert.NoError(t, CanRateRequest(tenant, request))
	assert.ErrorIs(t, CanRateRequest(otherTenant, request), apperrors.ErrForbidden)
}
