package services

import (
	"context"
	"fmt"
	"time"

	"hearth/internal/models"
	"hearth/internal/repositories"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
)

// ReminderWindow is how far ahead of the due date the initial reminder goes
// out.
const ReminderWindow = 3 * 24 * time.Hour

// ScanResult reports what one evaluator pass changed.
type ScanResult struct {
	MarkedOverdue    int
	OverdueReminders int
	InitialReminders int
}

// RentReviewService is the periodic due/overdue evaluator. A pending payment
// past its due date becomes overdue with exactly one overdue reminder; a
// pending payment inside the reminder window gets exactly one initial
// reminder. Rerunning the scan changes nothing; the insert-if-absent on
// reminders carries the idempotence, so concurrent scans stay safe too.
type RentReviewService struct {
	payments      repositories.RentPaymentRepository
	notifications *NotificationService
	log           logger.Logger
}

func NewRentReviewService(
	payments repositories.RentPaymentRepository,
	notifications *NotificationService,
) *RentReviewService {
	return &RentReviewService{
		payments:      payments,
		notifications: notifications,
		log:           logger.New("rentReviewService"),
	}
}

func (s *RentReviewService) Scan(ctx context.Context, now time.Time) (ScanResult, error) {
	log := s.log.Function("Scan")

	var result ScanResult

	pastDue, err := s.payments.ListPendingDueBefore(ctx, now)
	if err != nil {
		return result, log.Err("failed to list past-due payments", err)
	}

	for _, payment := range pastDue {
		flipped, err := s.payments.MarkOverdue(ctx, payment.ID)
		if err != nil {
			log.Warn("failed to mark payment overdue", "paymentID", payment.ID, "error", err)
			continue
		}
		if flipped {
			result.MarkedOverdue++
		}

		sent, err := s.sendReminder(ctx, &payment, models.ReminderOverdue, now)
		if err != nil {
			log.Warn("failed to send overdue reminder", "paymentID", payment.ID, "error", err)
			continue
		}
		if sent {
			result.OverdueReminders++
		}
	}

	upcoming, err := s.payments.ListPendingDueBetween(ctx, now, now.Add(ReminderWindow))
	if err != nil {
		return result, log.Err("failed to list upcoming payments", err)
	}

	for _, payment := range upcoming {
		sent, err := s.sendReminder(ctx, &payment, models.ReminderInitial, now)
		if err != nil {
			log.Warn("failed to send initial reminder", "paymentID", payment.ID, "error", err)
			continue
		}
		if sent {
			result.InitialReminders++
		}
	}

	log.Info(
		"Rent review scan completed",
		"markedOverdue", result.MarkedOverdue,
		"overdueReminders", result.OverdueReminders,
		"initialReminders", result.InitialReminders,
	)
	return result, nil
}

// sendReminder records the reminder iff one of its type does not already
// exist, notifying the tenant only when this call did the insert.
func (s *RentReviewService) sendReminder(
	ctx context.Context,
	payment *models.RentPayment,
	reminderType models.ReminderType,
	now time.Time,
) (bool, error) {
	if payment.HasReminder(reminderType) {
		return false, nil
	}

	reminder := &models.RentReminder{
		RentPaymentID: payment.ID,
		Type:          reminderType,
		SentAt:        now,
	}

	inserted, err := s.payments.AddReminderIfAbsent(ctx, reminder)
	if err != nil || !inserted {
		return false, err
	}

	var message string
	notificationType := models.NotificationInfo
	switch reminderType {
	case models.ReminderOverdue:
		message = fmt.Sprintf(
			"Rent payment of %s was due on %s and is now overdue",
			payment.Amount.StringFixed(2), payment.DueDate.Format("2006-01-02"),
		)
		notificationType = models.NotificationWarning
	case models.ReminderInitial:
		message = fmt.Sprintf(
			"Rent payment of %s is due on %s",
			payment.Amount.StringFixed(2), payment.DueDate.Format("2006-01-02"),
		)
	}

	s.notifications.Notify(
		ctx,
		[]uuid.UUID{payment.TenantID},
		message,
		notificationType,
		nil,
	)

	return true, nil
}
