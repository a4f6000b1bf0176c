package models

import (
	"regexp"
	"time"

	"hearth/internal/apperrors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ApartmentStatus string

const (
	ApartmentVacant      ApartmentStatus = "vacant"
	ApartmentOccupied    ApartmentStatus = "occupied"
	ApartmentMaintenance ApartmentStatus = "maintenance"
)

func (s ApartmentStatus) Valid() bool {
	switch s {
	case ApartmentVacant, ApartmentOccupied, ApartmentMaintenance:
		return true
	}
	return false
}

var apartmentNumberPattern = regexp.MustCompile(`^[A-Za-z0-9\- ]{1,20}$`)

type Apartment struct {
	BaseUUIDModel
	Number   string    `gorm:"type:text;not null;uniqueIndex:idx_apartments_owner_number" json:"apartmentNumber"`
	OwnerID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_apartments_owner_number;index" json:"ownerId"`
	Location string    `gorm:"type:text;not null" json:"location"`

	// Unique so that concurrent assignments of the same tenant to two
	// apartments are decided by the storage layer, not by read ordering.
	CurrentTenantID *uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"currentTenantId,omitempty"`

	RentAmount decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"rentAmount"`
	RentDueDay int             `gorm:"type:int;not null"           json:"rentDueDay"`

	Status ApartmentStatus `gorm:"type:text;not null;default:vacant;index" json:"status"`

	LastMaintenanceDate *time.Time `gorm:"type:timestamp" json:"lastMaintenanceDate,omitempty"`

	Owner         *User `gorm:"foreignKey:OwnerID"         json:"owner,omitempty"`
	CurrentTenant *User `gorm:"foreignKey:CurrentTenantID" json:"currentTenant,omitempty"`
}

func (a *Apartment) Validate() error {
	fields := make(map[string]string)

	if !apartmentNumberPattern.MatchString(a.Number) {
		fields["apartmentNumber"] = "apartment number can only contain letters, numbers, hyphens, and spaces (max 20 characters)"
	}
	if len(a.Location) < 5 || len(a.Location) > 200 {
		fields["location"] = "location must be between 5 and 200 characters long"
	}
	if a.RentAmount.IsNegative() {
		fields["rentAmount"] = "rent amount cannot be negative"
	}
	if a.RentDueDay < 1 || a.RentDueDay > 31 {
		fields["rentDueDay"] = "rent due day must be between 1 and 31"
	}
	if a.OwnerID == uuid.Nil {
		fields["owner"] = "owner is required"
	}
	if !a.Status.Valid() {
		fields["status"] = string(a.Status) + " is not a valid status"
	}

	if len(fields) > 0 {
		return apperrors.NewValidation(fields)
	}
	return nil
}

// Occupied reports the derived occupancy: occupied iff a tenant is assigned.
func (a *Apartment) Occupied() bool {
	return a.CurrentTenantID != nil
}

// SyncOccupancy recomputes the derived status after a tenant change. Called
// explicitly at every mutation site instead of hiding in a persistence hook so
// the ordering is visible and testable.
func (a *Apartment) SyncOccupancy() {
	if a.CurrentTenantID != nil {
		a.Status = ApartmentOccupied
		return
	}
	if a.Status == ApartmentOccupied {
		a.Status = ApartmentVacant
	}
}

// ApplyStatus applies an owner-requested status change. Vacant forces the
// tenant reference clear; occupied and maintenance are rejected while they
// would contradict the occupancy invariant.
func (a *Apartment) ApplyStatus(status ApartmentStatus) error {
	if !status.Valid() {
		return apperrors.NewValidation(map[string]string{
			"status": string(status) + " is not a valid status",
		})
	}

	switch status {
	case ApartmentVacant:
		a.CurrentTenantID = nil
		a.CurrentTenant = nil
	case ApartmentOccupied:
		if a.CurrentTenantID == nil {
			return apperrors.NewValidation(map[string]string{
				"status": "apartment cannot be occupied without a tenant",
			})
		}
	case ApartmentMaintenance:
		if a.CurrentTenantID != nil {
			return apperrors.ErrConflict
		}
	}

	a.Status = status
	return nil
}

type CreateApartmentRequest struct {
	ApartmentNumber string          `json:"apartmentNumber"`
	Location        string          `json:"location"`
	RentAmount      decimal.Decimal `json:"rentAmount"`
	RentDueDay      int             `json:"rentDueDay"`
}

// UpdateApartmentRequest carries the owner-editable fields only. Nil means
// leave unchanged.
type UpdateApartmentRequest struct {
	Location   *string          `json:"location,omitempty"`
	RentAmount *decimal.Decimal `json:"rentAmount,omitempty"`
	RentDueDay *int             `json:"rentDueDay,omitempty"`
	Status     *ApartmentStatus `json:"status,omitempty"`
}

type AssignTenantRequest struct {
	TenantID uuid.UUID `json:"tenantId"`
}
