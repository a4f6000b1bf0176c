package repositories

import (
	"context"
	"errors"
	"time"

	"hearth/internal/apperrors"
	"hearth/internal/database"
	. "hearth/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RentPaymentRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*RentPayment, error)
	ListForOwner(ctx context.Context, ownerID uuid.UUID) ([]RentPayment, error)
	ListForTenant(ctx context.Context, tenantID uuid.UUID) ([]RentPayment, error)
	ListPendingDueBefore(ctx context.Context, cutoff time.Time) ([]RentPayment, error)
	ListPendingDueBetween(ctx context.Context, from, to time.Time) ([]RentPayment, error)
	Create(ctx context.Context, payment *RentPayment) error
	Update(ctx context.Context, payment *RentPayment) error
	MarkOverdue(ctx context.Context, paymentID uuid.UUID) (bool, error)
	AddReminderIfAbsent(ctx context.Context, reminder *RentReminder) (bool, error)
	AddReminder(ctx context.Context, reminder *RentReminder) error
}

type rentPaymentRepository struct {
	db  database.DB
	log logger.Logger
}

func NewRentPaymentRepository(db database.DB) RentPaymentRepository {
	return &rentPaymentRepository{
		db:  db,
		log: logger.New("rentPaymentRepository"),
	}
}

func (r *rentPaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*RentPayment, error) {
	log := r.log.Function("GetByID")

	var payment RentPayment
	if err := r.db.SQLWithContext(ctx).
		Preload("Reminders").
		Preload("Apartment").
		Preload("Tenant").
		First(&payment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, log.Err("failed to get rent payment by id", err, "id", id)
	}

	return &payment, nil
}

func (r *rentPaymentRepository) ListForOwner(
	ctx context.Context,
	ownerID uuid.UUID,
) ([]RentPayment, error) {
	log := r.log.Function("ListForOwner")

	var payments []RentPayment
	if err := r.db.SQLWithContext(ctx).
		Preload("Reminders").
		Preload("Apartment").
		Preload("Tenant").
		Joins("JOIN apartments ON apartments.id = rent_payments.apartment_id").
		Where("apartments.owner_id = ?", ownerID).
		Order("rent_payments.due_date DESC").
		Find(&payments).Error; err != nil {
		return nil, log.Err("failed to list rent payments for owner", err, "ownerID", ownerID)
	}

	return payments, nil
}

func (r *rentPaymentRepository) ListForTenant(
	ctx context.Context,
	tenantID uuid.UUID,
) ([]RentPayment, error) {
	log := r.log.Function("ListForTenant")

	var payments []RentPayment
	if err := r.db.SQLWithContext(ctx).
		Preload("Reminders").
		Preload("Apartment").
		Where("tenant_id = ?", tenantID).
		Order("due_date DESC").
		Find(&payments).Error; err != nil {
		return nil, log.Err("failed to list rent payments for tenant", err, "tenantID", tenantID)
	}

	return payments, nil
}

func (r *rentPaymentRepository) ListPendingDueBefore(
	ctx context.Context,
	cutoff time.Time,
) ([]RentPayment, error) {
	log := r.log.Function("ListPendingDueBefore")

	var payments []RentPayment
	if err := r.db.SQLWithContext(ctx).
		Preload("Reminders").
		Where("status = ? AND due_date < ?", PaymentPending, cutoff).
		Find(&payments).Error; err != nil {
		return nil, log.Err("failed to list pending payments past due", err, "cutoff", cutoff)
	}

	return payments, nil
}

func (r *rentPaymentRepository) ListPendingDueBetween(
	ctx context.Context,
	from, to time.Time,
) ([]RentPayment, error) {
	log := r.log.Function("ListPendingDueBetween")

	var payments []RentPayment
	if err := r.db.SQLWithContext(ctx).
		Preload("Reminders").
		Where("status = ? AND due_date > ? AND due_date <= ?", PaymentPending, from, to).
		Find(&payments).Error; err != nil {
		return nil, log.Err("failed to list upcoming pending payments", err, "from", from, "to", to)
	}

	return payments, nil
}

func (r *rentPaymentRepository) Create(ctx context.Context, payment *RentPayment) error {
	log := r.log.Function("Create")

	if err := r.db.SQLWithContext(ctx).Create(payment).Error; err != nil {
		return log.Err("failed to create rent payment", err, "apartmentID", payment.ApartmentID)
	}

	return nil
}

func (r *rentPaymentRepository) Update(ctx context.Context, payment *RentPayment) error {
	log := r.log.Function("Update")

	if err := r.db.SQLWithContext(ctx).Save(payment).Error; err != nil {
		return log.Err("failed to update rent payment", err, "paymentID", payment.ID)
	}

	return nil
}

// MarkOverdue flips pending to overdue, reporting whether this call did the
// flip. The status condition keeps concurrent scans from double-reporting.
func (r *rentPaymentRepository) MarkOverdue(
	ctx context.Context,
	paymentID uuid.UUID,
) (bool, error) {
	log := r.log.Function("MarkOverdue")

	result := r.db.SQLWithContext(ctx).Model(&RentPayment{}).
		Where("id = ? AND status = ?", paymentID, PaymentPending).
		Update("status", PaymentOverdue)
	if result.Error != nil {
		return false, log.Err("failed to mark payment overdue", result.Error, "paymentID", paymentID)
	}

	return result.RowsAffected > 0, nil
}

// AddReminderIfAbsent inserts the reminder unless one of the same type already
// exists for the payment. The partial unique index decides; ON CONFLICT DO
// NOTHING makes the losing insert a silent no-op reported through the bool.
func (r *rentPaymentRepository) AddReminderIfAbsent(
	ctx context.Context,
	reminder *RentReminder,
) (bool, error) {
	log := r.log.Function("AddReminderIfAbsent")

	result := r.db.SQLWithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(reminder)
	if result.Error != nil {
		return false, log.Err(
			"failed to add rent reminder",
			result.Error,
			"paymentID", reminder.RentPaymentID,
			"type", reminder.Type,
		)
	}

	return result.RowsAffected > 0, nil
}

func (r *rentPaymentRepository) AddReminder(ctx context.Context, reminder *RentReminder) error {
	log := r.log.Function("AddReminder")

	if err := r.db.SQLWithContext(ctx).Create(reminder).Error; err != nil {
		return log.Err(
			"failed to add rent reminder",
			err,
			"paymentID", reminder.RentPaymentID,
			"type", reminder.Type,
		)
	}

	return nil
}
