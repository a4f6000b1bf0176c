package rentController

import (
	"context"
	"fmt"
	"time"

	"hearth/internal/apperrors"
	. "hearth/internal/models"
	"hearth/internal/policy"
	"hearth/internal/repositories"
	"hearth/internal/services"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
)

type RentController struct {
	paymentRepo   repositories.RentPaymentRepository
	apartmentRepo repositories.ApartmentRepository
	notifications *services.NotificationService
	log           logger.Logger
}

type RentControllerInterface interface {
	Create(ctx context.Context, actor *User, req CreatePaymentRequest) (*RentPayment, error)
	ListForActor(ctx context.Context, actor *User) ([]RentPayment, error)
	GetByID(ctx context.Context, actor *User, id uuid.UUID) (*RentPayment, error)
	MarkPaid(ctx context.Context, actor *User, id uuid.UUID, notes *string) (*RentPayment, error)
	AddReminder(ctx context.Context, actor *User, id uuid.UUID, reminderType ReminderType) (*RentPayment, error)
	ListOverdue(ctx context.Context, actor *User) ([]RentPayment, error)
	ListUpcoming(ctx context.Context, actor *User) ([]RentPayment, error)
}

func New(
	repos repositories.Repository,
	services services.Service,
) RentControllerInterface {
	return &RentController{
		paymentRepo:   repos.RentPayment,
		apartmentRepo: repos.Apartment,
		notifications: services.Notification,
		log:           logger.New("rentController"),
	}
}

// Create records a payment obligation against the apartment's current tenant.
// An unset amount falls back to the apartment's rent terms.
func (c *RentController) Create(
	ctx context.Context,
	actor *User,
	req CreatePaymentRequest,
) (*RentPayment, error) {
	log := c.log.Function("Create")

	apartment, err := c.apartmentRepo.GetByID(ctx, req.ApartmentID)
	if err != nil {
		return nil, err
	}

	if err := policy.CanManagePayment(actor, nil, apartment); err != nil {
		return nil, err
	}

	if apartment.CurrentTenantID == nil {
		return nil, apperrors.ErrConflict
	}

	amount := req.Amount
	if amount.IsZero() {
		amount = apartment.RentAmount
	}

	payment := &RentPayment{
		ApartmentID: apartment.ID,
		TenantID:    *apartment.CurrentTenantID,
		Amount:      amount,
		DueDate:     req.DueDate,
		Status:      PaymentPending,
	}

	if err := payment.Validate(); err != nil {
		return nil, err
	}

	if err := c.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	log.Info("Rent payment created", "paymentID", payment.ID, "apartmentID", apartment.ID)
	return payment, nil
}

func (c *RentController) ListForActor(ctx context.Context, actor *User) ([]RentPayment, error) {
	switch actor.Role {
	case RoleOwner:
		return c.paymentRepo.ListForOwner(ctx, actor.ID)
	case RoleTenant:
		return c.paymentRepo.ListForTenant(ctx, actor.ID)
	default:
		return nil, apperrors.ErrForbidden
	}
}

func (c *RentController) GetByID(
	ctx context.Context,
	actor *User,
	id uuid.UUID,
) (*RentPayment, error) {
	payment, err := c.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	apartment, err := c.apartmentRepo.GetByID(ctx, payment.ApartmentID)
	if err != nil {
		return nil, err
	}

	if err := policy.CanViewPayment(actor, payment, apartment); err != nil {
		return nil, err
	}

	return payment, nil
}

func (c *RentController) MarkPaid(
	ctx context.Context,
	actor *User,
	id uuid.UUID,
	notes *string,
) (*RentPayment, error) {
	log := c.log.Function("MarkPaid")

	payment, err := c.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	apartment, err := c.apartmentRepo.GetByID(ctx, payment.ApartmentID)
	if err != nil {
		return nil, err
	}

	if err := policy.CanManagePayment(actor, payment, apartment); err != nil {
		return nil, err
	}

	if payment.Status == PaymentPaid {
		return nil, apperrors.ErrConflict
	}

	now := time.Now()
	payment.Status = PaymentPaid
	payment.PaidDate = &now
	if notes != nil {
		payment.Notes = notes
	}

	if err := c.paymentRepo.Update(ctx, payment); err != nil {
		return nil, err
	}

	c.notifications.Notify(
		ctx,
		[]uuid.UUID{payment.TenantID},
		fmt.Sprintf("Your rent payment of %s was recorded as paid", payment.Amount.StringFixed(2)),
		NotificationSuccess,
		nil,
	)

	log.Info("Rent payment marked paid", "paymentID", payment.ID)
	return payment, nil
}

// AddReminder sends a manual nudge. Typed initial/overdue reminders stay
// unique per payment; a duplicate surfaces as a conflict.
func (c *RentController) AddReminder(
	ctx context.Context,
	actor *User,
	id uuid.UUID,
	reminderType ReminderType,
) (*RentPayment, error) {
	log := c.log.Function("AddReminder")

	if !reminderType.Valid() {
		return nil, apperrors.NewValidation(map[string]string{
			"type": string(reminderType) + " is not a valid reminder type",
		})
	}

	payment, err := c.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	apartment, err := c.apartmentRepo.GetByID(ctx, payment.ApartmentID)
	if err != nil {
		return nil, err
	}

	if err := policy.CanManagePayment(actor, payment, apartment); err != nil {
		return nil, err
	}

	reminder := &RentReminder{
		RentPaymentID: payment.ID,
		Type:          reminderType,
		SentAt:        time.Now(),
	}

	if reminderType == ReminderManual {
		if err := c.paymentRepo.AddReminder(ctx, reminder); err != nil {
			return nil, err
		}
	} else {
		inserted, err := c.paymentRepo.AddReminderIfAbsent(ctx, reminder)
		if err != nil {
			return nil, err
		}
		if !inserted {
			return nil, apperrors.ErrConflict
		}
	}

	c.notifications.Notify(
		ctx,
		[]uuid.UUID{payment.TenantID},
		fmt.Sprintf(
			"Reminder: rent payment of %s is due on %s",
			payment.Amount.StringFixed(2), payment.DueDate.Format("2006-01-02"),
		),
		NotificationWarning,
		nil,
	)

	log.Info("Rent reminder added", "paymentID", payment.ID, "type", reminderType)
	return c.paymentRepo.GetByID(ctx, id)
}

func (c *RentController) ListOverdue(ctx context.Context, actor *User) ([]RentPayment, error) {
	if actor.Role != RoleOwner {
		return nil, apperrors.ErrForbidden
	}

	payments, err := c.paymentRepo.ListForOwner(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	overdue := make([]RentPayment, 0)
	for _, payment := range payments {
		if payment.Status == PaymentOverdue {
			overdue = append(overdue, payment)
		}
	}
	return overdue, nil
}

func (c *RentController) ListUpcoming(ctx context.Context, actor *User) ([]RentPayment, error) {
	if actor.Role != RoleOwner {
		return nil, apperrors.ErrForbidden
	}

	payments, err := c.paymentRepo.ListForOwner(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	cutoff := now.Add(services.ReminderWindow)
	upcoming := make([]RentPayment, 0)
	for _, payment := range payments {
		if payment.Status == PaymentPending &&
			payment.DueDate.After(now) && !payment.DueDate.After(cutoff) {
			upcoming = append(upcoming, payment)
		}
	}
	return upcoming, nil
}
