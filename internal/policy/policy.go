// Package policy holds the role-capability matrix as pure functions over
// already-loaded entities. No storage access happens here; callers resolve
// entities first, then gate the mutation.
package policy

import (
	"hearth/internal/apperrors"
	. "hearth/internal/models"
)

// CanViewApartment allows the owner and the current tenant.
func CanViewApartment(actor *User, apartment *Apartment) error {
	if apartment.OwnerID == actor.ID {
		return nil
	}
	if apartment.CurrentTenantID != nil && *apartment.CurrentTenantID == actor.ID {
		return nil
	}
	return apperrors.ErrForbidden
}

// CanManageApartment gates create/update/assign/remove/delete: owner role and
// ownership of the specific apartment.
func CanManageApartment(actor *User, apartment *Apartment) error {
	if actor.Role != RoleOwner {
		return apperrors.ErrForbidden
	}
	if apartment.OwnerID != actor.ID {
		return apperrors.ErrForbidden
	}
	return nil
}

// CanCreateRequest requires the actor to be the apartment's current tenant.
func CanCreateRequest(actor *User, apartment *Apartment) error {
	if actor.Role != RoleTenant {
		return apperrors.ErrForbidden
	}
	if apartment.CurrentTenantID == nil || *apartment.CurrentTenantID != actor.ID {
		return apperrors.ErrForbidden
	}
	return nil
}

// CanViewRequest allows the request's tenant and owner, its assigned provider,
// and any provider while the request sits unassigned in the pending pool.
func CanViewRequest(actor *User, request *MaintenanceRequest) error {
	switch actor.Role {
	case RoleOwner:
		if request.OwnerID == actor.ID {
			return nil
		}
	case RoleTenant:
		if request.TenantID == actor.ID {
			return nil
		}
	case RoleServiceProvider:
		if request.ServiceProviderID != nil && *request.ServiceProviderID == actor.ID {
			return nil
		}
		if request.ServiceProviderID == nil && request.Status == RequestPending {
			return nil
		}
	}
	return apperrors.ErrForbidden
}

// CanTransition gates status changes. Owners assign and cancel their own
// requests; the assigned provider progresses assigned through completed.
// Tenants never patch status directly. Cancellation is owner-only.
func CanTransition(actor *User, request *MaintenanceRequest, next RequestStatus) error {
	switch next {
	case RequestAssigned, RequestCancelled:
		if actor.Role == RoleOwner && request.OwnerID == actor.ID {
			return nil
		}
	case RequestInProgress, RequestCompleted:
		if actor.Role == RoleServiceProvider &&
			request.ServiceProviderID != nil &&
			*request.ServiceProviderID == actor.ID {
			return nil
		}
	}
	return apperrors.ErrForbidden
}

// CanAppendMessage allows every participant on the request.
func CanAppendMessage(actor *User, request *MaintenanceRequest) error {
	if request.TenantID == actor.ID || request.OwnerID == actor.ID {
		return nil
	}
	if request.ServiceProviderID != nil && *request.ServiceProviderID == actor.ID {
		return nil
	}
	return apperrors.ErrForbidden
}

// CanAppendNote allows the owner and the assigned provider.
func CanAppendNote(actor *User, request *MaintenanceRequest) error {
	if actor.Role == RoleOwner && request.OwnerID == actor.ID {
		return nil
	}
	if request.ServiceProviderID != nil && *request.ServiceProviderID == actor.ID {
		return nil
	}
	return apperrors.ErrForbidden
}

// CanAppendCompletionPhotos is restricted to the assigned provider.
func CanAppendCompletionPhotos(actor *User, request *MaintenanceRequest) error {
	if actor.Role != RoleServiceProvider {
		return apperrors.ErrForbidden
	}
	if request.ServiceProviderID == nil || *request.ServiceProviderID != actor.ID {
		return apperrors.ErrForbidden
	}
	return nil
}

// CanRateRequest allows only the tenant who filed the request.
func CanRateRequest(actor *User, request *MaintenanceRequest) error {
	if actor.Role != RoleTenant || request.TenantID != actor.ID {
		return apperrors.ErrForbidden
	}
	return nil
}

// CanScheduleRequest allows the tenant to propose and the owner or assigned
// provider to confirm.
func CanScheduleRequest(actor *User, request *MaintenanceRequest) error {
	return CanAppendMessage(actor, request)
}

// CanDeleteRequest allows the owner of the request.
func CanDeleteRequest(actor *User, request *MaintenanceRequest) error {
	if actor.Role != RoleOwner || request.OwnerID != actor.ID {
		return apperrors.ErrForbidden
	}
	return nil
}

// CanManagePayment gates create/mark-paid/add-reminder: the owner of the
// apartment the payment belongs to.
func CanManagePayment(actor *User, payment *RentPayment, apartment *Apartment) error {
	if actor.Role != RoleOwner {
		return apperrors.ErrForbidden
	}
	if apartment.OwnerID != actor.ID {
		return apperrors.ErrForbidden
	}
	if payment != nil && payment.ApartmentID != apartment.ID {
		return apperrors.ErrForbidden
	}
	return nil
}

// CanViewPayment allows the paying tenant and the apartment's owner.
func CanViewPayment(actor *User, payment *RentPayment, apartment *Apartment) error {
	if payment.TenantID == actor.ID {
		return nil
	}
	if actor.Role == RoleOwner && apartment.OwnerID == actor.ID {
		return nil
	}
	return apperrors.ErrForbidden
}
