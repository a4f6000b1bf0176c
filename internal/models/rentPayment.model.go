package models

import (
	"time"

	"hearth/internal/apperrors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentOverdue PaymentStatus = "overdue"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentOverdue:
		return true
	}
	return false
}

type ReminderType string

const (
	ReminderInitial ReminderType = "initial"
	ReminderManual  ReminderType = "reminder"
	ReminderOverdue ReminderType = "overdue"
)

func (t ReminderType) Valid() bool {
	switch t {
	case ReminderInitial, ReminderManual, ReminderOverdue:
		return true
	}
	return false
}

type RentPayment struct {
	BaseUUIDModel
	ApartmentID uuid.UUID       `gorm:"type:uuid;not null;index"          json:"apartmentId"`
	TenantID    uuid.UUID       `gorm:"type:uuid;not null;index"          json:"tenantId"`
	Amount      decimal.Decimal `gorm:"type:decimal(10,2);not null"       json:"amount"`
	DueDate     time.Time       `gorm:"type:timestamp;not null;index:idx_rent_payments_due_status" json:"dueDate"`
	Status      PaymentStatus   `gorm:"type:text;not null;default:pending;index:idx_rent_payments_due_status" json:"status"`
	PaidDate    *time.Time      `gorm:"type:timestamp"                    json:"paidDate,omitempty"`
	Notes       *string         `gorm:"type:text"                         json:"notes,omitempty"`

	Reminders []RentReminder `gorm:"foreignKey:RentPaymentID" json:"reminders"`

	Apartment *Apartment `gorm:"foreignKey:ApartmentID" json:"apartment,omitempty"`
	Tenant    *User      `gorm:"foreignKey:TenantID"    json:"tenant,omitempty"`
}

func (p *RentPayment) Validate() error {
	fields := make(map[string]string)

	if p.ApartmentID == uuid.Nil {
		fields["apartment"] = "apartment is required"
	}
	if p.TenantID == uuid.Nil {
		fields["tenant"] = "tenant is required"
	}
	if p.Amount.IsNegative() {
		fields["amount"] = "amount cannot be negative"
	}
	if p.DueDate.IsZero() {
		fields["dueDate"] = "due date is required"
	}
	if !p.Status.Valid() {
		fields["status"] = string(p.Status) + " is not a valid payment status"
	}

	if len(fields) > 0 {
		return apperrors.NewValidation(fields)
	}
	return nil
}

// HasReminder reports whether a reminder of the given type was already
// recorded. The partial unique index on rent_reminders is the authoritative
// guard; this is the cheap pre-check.
func (p *RentPayment) HasReminder(reminderType ReminderType) bool {
	for _, reminder := range p.Reminders {
		if reminder.Type == reminderType {
			return true
		}
	}
	return false
}

// RentReminder is an append-only record that a notice was sent. Initial and
// overdue reminders are unique per payment at the storage layer; manual
// "reminder" entries may repeat.
type RentReminder struct {
	BaseUUIDModel
	RentPaymentID uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_rent_reminders_once,where:type <> 'reminder'" json:"rentPaymentId"`
	Type          ReminderType `gorm:"type:text;not null;uniqueIndex:idx_rent_reminders_once,where:type <> 'reminder'" json:"type"`
	SentAt        time.Time    `gorm:"type:timestamp;not null" json:"sentAt"`
}

type CreatePaymentRequest struct {
	ApartmentID uuid.UUID       `json:"apartmentId"`
	Amount      decimal.Decimal `json:"amount"`
	DueDate     time.Time       `json:"dueDate"`
}

type AddReminderRequest struct {
	Type ReminderType `json:"type"`
}

type MarkPaidRequest struct {
	Notes *string `json:"notes,omitempty"`
}
