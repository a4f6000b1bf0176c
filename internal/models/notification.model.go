package models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
	NotificationSuccess NotificationType = "success"
)

// Notification is a row in a user's in-app notification log. Append-only:
// only the read flag is ever mutated after creation.
type Notification struct {
	BaseUUIDModel
	UserID  uuid.UUID        `gorm:"type:uuid;not null;index"         json:"userId"`
	Message string           `gorm:"type:text;not null"               json:"message"`
	Type    NotificationType `gorm:"type:text;not null;default:info"  json:"type"`
	Read    bool             `gorm:"type:bool;not null;default:false" json:"read"`
	Data    datatypes.JSON   `gorm:"type:jsonb"                       json:"data,omitempty"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// StatusChangeEvent is the structured payload dispatched on every successful
// maintenance transition.
type StatusChangeEvent struct {
	RequestID  uuid.UUID     `json:"requestId"`
	Title      string        `json:"title"`
	OldStatus  RequestStatus `json:"oldStatus"`
	NewStatus  RequestStatus `json:"newStatus"`
	Recipients []uuid.UUID   `json:"recipients"`
}
