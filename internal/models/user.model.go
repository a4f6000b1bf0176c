package models

import (
	"regexp"
	"strings"
	"time"

	"hearth/internal/apperrors"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type UserRole string

const (
	RoleOwner           UserRole = "owner"
	RoleTenant          UserRole = "tenant"
	RoleServiceProvider UserRole = "serviceProvider"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleOwner, RoleTenant, RoleServiceProvider:
		return true
	}
	return false
}

type ServiceType string

const (
	ServicePlumbing    ServiceType = "plumbing"
	ServiceElectrical  ServiceType = "electrical"
	ServiceHVAC        ServiceType = "hvac"
	ServiceCleaning    ServiceType = "cleaning"
	ServicePestControl ServiceType = "pest control"
	ServiceGeneral     ServiceType = "general"
)

func (s ServiceType) Valid() bool {
	switch s {
	case ServicePlumbing, ServiceElectrical, ServiceHVAC,
		ServiceCleaning, ServicePestControl, ServiceGeneral:
		return true
	}
	return false
}

var (
	emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)
	phonePattern = regexp.MustCompile(`^\+?[\d\s-]{10,}$`)
)

type User struct {
	BaseUUIDModel
	FirstName    string   `gorm:"type:text;not null"            json:"firstName"`
	LastName     string   `gorm:"type:text;not null"            json:"lastName"`
	Email        string   `gorm:"type:text;not null;uniqueIndex" json:"email"`
	PasswordHash string   `gorm:"type:text;not null"            json:"-"`
	Role         UserRole `gorm:"type:text;not null;index"      json:"role"`
	Phone        string   `gorm:"type:text;not null"            json:"phone"`

	// Service provider variant
	CompanyName  *string                          `gorm:"type:text" json:"companyName,omitempty"`
	ServiceTypes datatypes.JSONSlice[ServiceType] `gorm:"type:jsonb" json:"serviceTypes,omitempty"`

	// Tenant variant. The unique index guarantees at most one apartment per
	// tenant at the storage layer, which also decides concurrent assignments.
	CurrentApartmentID *uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"currentApartmentId,omitempty"`

	LastLoginAt *time.Time `gorm:"type:timestamp" json:"lastLoginAt,omitempty"`

	CurrentApartment *Apartment `gorm:"foreignKey:CurrentApartmentID" json:"currentApartment,omitempty"`
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u *User) IsServiceProvider() bool {
	return u.Role == RoleServiceProvider
}

// Validate enforces the role-variant shape at construction time: the
// serviceProvider-only fields are required for that role and rejected for
// every other, and only tenants may ever carry a current apartment.
func (u *User) Validate() error {
	fields := make(map[string]string)

	if len(u.FirstName) < 2 || len(u.FirstName) > 50 {
		fields["firstName"] = "first name must be between 2 and 50 characters long"
	}
	if len(u.LastName) < 2 || len(u.LastName) > 50 {
		fields["lastName"] = "last name must be between 2 and 50 characters long"
	}
	if !emailPattern.MatchString(u.Email) {
		fields["email"] = "please enter a valid email"
	}
	if !phonePattern.MatchString(u.Phone) {
		fields["phone"] = "please enter a valid phone number (minimum 10 digits)"
	}
	if !u.Role.Valid() {
		fields["role"] = string(u.Role) + " is not a valid user role"
	}

	if u.Role == RoleServiceProvider {
		if u.CompanyName == nil || strings.TrimSpace(*u.CompanyName) == "" {
			fields["companyName"] = "company name is required for service providers"
		}
		if len(u.ServiceTypes) == 0 {
			fields["serviceTypes"] = "at least one service type is required"
		}
		for _, serviceType := range u.ServiceTypes {
			if !serviceType.Valid() {
				fields["serviceTypes"] = "invalid service type: " + string(serviceType)
			}
		}
	} else {
		if u.CompanyName != nil {
			fields["companyName"] = "company name is only valid for service providers"
		}
		if len(u.ServiceTypes) > 0 {
			fields["serviceTypes"] = "service types are only valid for service providers"
		}
	}

	if u.Role != RoleTenant && u.CurrentApartmentID != nil {
		fields["currentApartmentId"] = "only tenants can be assigned an apartment"
	}

	if len(fields) > 0 {
		return apperrors.NewValidation(fields)
	}
	return nil
}

type RegisterRequest struct {
	FirstName    string        `json:"firstName"`
	LastName     string        `json:"lastName"`
	Email        string        `json:"email"`
	Password     string        `json:"password"`
	Phone        string        `json:"phone"`
	Role         UserRole      `json:"role"`
	CompanyName  *string       `json:"companyName,omitempty"`
	ServiceTypes []ServiceType `json:"serviceTypes,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserProfile is the public shape returned from auth endpoints.
type UserProfile struct {
	ID                 string        `json:"id"`
	FirstName          string        `json:"firstName"`
	LastName           string        `json:"lastName"`
	FullName           string        `json:"fullName"`
	Email              string        `json:"email"`
	Role               UserRole      `json:"role"`
	Phone              string        `json:"phone"`
	CompanyName        *string       `json:"companyName,omitempty"`
	ServiceTypes       []ServiceType `json:"serviceTypes,omitempty"`
	CurrentApartmentID *uuid.UUID    `json:"currentApartmentId,omitempty"`
	LastLoginAt        *time.Time    `json:"lastLoginAt,omitempty"`
}

func (u *User) ToProfile() UserProfile {
	profile := UserProfile{
		ID:                 u.ID.String(),
		FirstName:          u.FirstName,
		LastName:           u.LastName,
		FullName:           u.FullName(),
		Email:              u.Email,
		Role:               u.Role,
		Phone:              u.Phone,
		CurrentApartmentID: u.CurrentApartmentID,
		LastLoginAt:        u.LastLoginAt,
	}

	if u.Role == RoleServiceProvider {
		profile.CompanyName = u.CompanyName
		profile.ServiceTypes = u.ServiceTypes
	}

	return profile
}
