package models

import (
	"fmt"
	"strings"
	"time"

	"hearth/internal/apperrors"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type RequestStatus string

const (
	RequestPending    RequestStatus = "pending"
	RequestAssigned   RequestStatus = "assigned"
	RequestInProgress RequestStatus = "in-progress"
	RequestCompleted  RequestStatus = "completed"
	RequestCancelled  RequestStatus = "cancelled"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case RequestPending, RequestAssigned, RequestInProgress,
		RequestCompleted, RequestCancelled:
		return true
	}
	return false
}

// statusTransitions is the full transition table. Completed and cancelled are
// terminal: they have no successors.
var statusTransitions = map[RequestStatus][]RequestStatus{
	RequestPending:    {RequestAssigned, RequestCancelled},
	RequestAssigned:   {RequestInProgress, RequestCancelled},
	RequestInProgress: {RequestCompleted, RequestCancelled},
	RequestCompleted:  {},
	RequestCancelled:  {},
}

func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s RequestStatus) IsTerminal() bool {
	return len(statusTransitions[s]) == 0 && s.Valid()
}

type RequestType string

const (
	RequestPlumbing   RequestType = "plumbing"
	RequestElectrical RequestType = "electrical"
	RequestCarpentry  RequestType = "carpentry"
	RequestPainting   RequestType = "painting"
	RequestGeneral    RequestType = "general"
)

func (t RequestType) Valid() bool {
	switch t {
	case RequestPlumbing, RequestElectrical, RequestCarpentry,
		RequestPainting, RequestGeneral:
		return true
	}
	return false
}

type RequestPriority string

const (
	PriorityLow       RequestPriority = "low"
	PriorityMedium    RequestPriority = "medium"
	PriorityHigh      RequestPriority = "high"
	PriorityEmergency RequestPriority = "emergency"
)

func (p RequestPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityEmergency:
		return true
	}
	return false
}

// Photo is stored file metadata; the bytes live in the file store.
type Photo struct {
	Filename   string    `json:"filename"`
	Path       string    `json:"path"`
	UploadedBy uuid.UUID `json:"uploadedBy"`
	UploadedAt time.Time `json:"uploadedAt"`
}

type RequestMessage struct {
	ID        uuid.UUID `json:"id"`
	SenderID  uuid.UUID `json:"senderId"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
}

type RequestNote struct {
	AuthorID  uuid.UUID `json:"authorId"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewScheduleJSON wraps a schedule for the JSONB column.
func NewScheduleJSON(schedule RequestSchedule) datatypes.JSONType[RequestSchedule] {
	return datatypes.NewJSONType(schedule)
}

type RequestSchedule struct {
	PreferredDate *time.Time `json:"preferredDate,omitempty"`
	PreferredSlot string     `json:"preferredSlot,omitempty"`
	ConfirmedDate *time.Time `json:"confirmedDate,omitempty"`
	ConfirmedSlot string     `json:"confirmedSlot,omitempty"`
}

type MaintenanceRequest struct {
	BaseUUIDModel
	Title       string `gorm:"type:text;not null" json:"title"`
	Description string `gorm:"type:text;not null" json:"description"`

	ApartmentID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"apartmentId"`
	TenantID          uuid.UUID  `gorm:"type:uuid;not null;index" json:"tenantId"`
	OwnerID           uuid.UUID  `gorm:"type:uuid;not null;index" json:"ownerId"`
	ServiceProviderID *uuid.UUID `gorm:"type:uuid;index"          json:"serviceProviderId,omitempty"`

	Type     RequestType     `gorm:"type:text;not null"                        json:"type"`
	Priority RequestPriority `gorm:"type:text;not null;default:medium"         json:"priority"`
	Status   RequestStatus   `gorm:"type:text;not null;default:pending;index"  json:"status"`

	Photos           datatypes.JSONSlice[Photo]          `gorm:"type:jsonb" json:"photos"`
	CompletionPhotos datatypes.JSONSlice[Photo]          `gorm:"type:jsonb" json:"completionPhotos"`
	Messages         datatypes.JSONSlice[RequestMessage] `gorm:"type:jsonb" json:"messages"`
	Notes            datatypes.JSONSlice[RequestNote]    `gorm:"type:jsonb" json:"notes"`

	Schedule datatypes.JSONType[RequestSchedule] `gorm:"type:jsonb" json:"schedule"`

	Rating *int `gorm:"type:int" json:"rating,omitempty"`

	StartDate      *time.Time `gorm:"type:timestamp" json:"startDate,omitempty"`
	CompletionDate *time.Time `gorm:"type:timestamp" json:"completionDate,omitempty"`

	Apartment       *Apartment `gorm:"foreignKey:ApartmentID"       json:"apartment,omitempty"`
	Tenant          *User      `gorm:"foreignKey:TenantID"          json:"tenant,omitempty"`
	Owner           *User      `gorm:"foreignKey:OwnerID"           json:"owner,omitempty"`
	ServiceProvider *User      `gorm:"foreignKey:ServiceProviderID" json:"serviceProvider,omitempty"`
}

func (r *MaintenanceRequest) Validate() error {
	fields := make(map[string]string)

	if strings.TrimSpace(r.Title) == "" {
		fields["title"] = "title is required"
	}
	if strings.TrimSpace(r.Description) == "" {
		fields["description"] = "description is required"
	}
	if r.ApartmentID == uuid.Nil {
		fields["apartment"] = "apartment is required"
	}
	if r.TenantID == uuid.Nil {
		fields["tenant"] = "tenant is required"
	}
	if r.OwnerID == uuid.Nil {
		fields["owner"] = "owner is required"
	}
	if !r.Type.Valid() {
		fields["type"] = string(r.Type) + " is not a valid request type"
	}
	if !r.Priority.Valid() {
		fields["priority"] = string(r.Priority) + " is not a valid priority"
	}
	if r.Rating != nil && (*r.Rating < 1 || *r.Rating > 5) {
		fields["rating"] = "rating must be between 1 and 5"
	}

	if len(fields) > 0 {
		return apperrors.NewValidation(fields)
	}
	return nil
}

// ValidateInitialStatus rejects any freshly created request that does not
// start at pending.
func (r *MaintenanceRequest) ValidateInitialStatus() error {
	if r.Status != RequestPending {
		return fmt.Errorf(
			"%w: new requests must start at %s, got %s",
			apperrors.ErrInvalidTransition, RequestPending, r.Status,
		)
	}
	return nil
}

// ApplyTransition moves the request to next if the edge exists in the
// transition table, maintaining start/completion dates. Authorization is the
// caller's concern; this is pure state-machine validation.
func (r *MaintenanceRequest) ApplyTransition(next RequestStatus, now time.Time) error {
	if !next.Valid() {
		return apperrors.NewValidation(map[string]string{
			"status": string(next) + " is not a valid status",
		})
	}

	if !r.Status.CanTransitionTo(next) {
		return fmt.Errorf(
			"%w: cannot move from %s to %s",
			apperrors.ErrInvalidTransition, r.Status, next,
		)
	}

	switch next {
	case RequestInProgress:
		if r.StartDate == nil {
			startDate := now
			r.StartDate = &startDate
		}
	case RequestCompleted:
		if r.StartDate != nil && now.Before(*r.StartDate) {
			return fmt.Errorf(
				"%w: completion date %s precedes start date %s",
				apperrors.ErrInvalidDate,
				now.Format(time.RFC3339),
				r.StartDate.Format(time.RFC3339),
			)
		}
		completionDate := now
		r.CompletionDate = &completionDate
	}

	r.Status = next
	return nil
}

type CreateRequestInput struct {
	Title       string          `json:"title"`
	ApartmentID uuid.UUID       `json:"apartmentId"`
	Type        RequestType     `json:"type"`
	Description string          `json:"description"`
	Priority    RequestPriority `json:"priority"`
}

// PatchStatusRequest drives a transition. ServiceProviderID is required when
// moving to assigned and ignored otherwise.
type PatchStatusRequest struct {
	Status            RequestStatus `json:"status"`
	ServiceProviderID *uuid.UUID    `json:"serviceProviderId,omitempty"`
}

type AppendMessageRequest struct {
	Body string `json:"message"`
}

type AppendNoteRequest struct {
	Body string `json:"note"`
}

type RateRequestInput struct {
	Rating int `json:"rating"`
}

type ScheduleRequestInput struct {
	PreferredDate *time.Time `json:"preferredDate,omitempty"`
	PreferredSlot string     `json:"preferredSlot,omitempty"`
	ConfirmedDate *time.Time `json:"confirmedDate,omitempty"`
	ConfirmedSlot string     `json:"confirmedSlot,omitempty"`
}
