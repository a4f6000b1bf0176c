package services

import (
	"context"
	"testing"
	"time"

	"hearth/internal/events"
	"hearth/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePaymentRepo struct {
	payments map[uuid.UUID]*models.RentPayment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: make(map[uuid.UUID]*models.RentPayment)}
}

func (f *fakePaymentRepo) add(payment *models.RentPayment) {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	f.payments[payment.ID] = payment
}

func (f *fakePaymentRepo) GetByID(_ context.Context, id uuid.UUID) (*models.RentPayment, error) {
	return f.payments[id], nil
}

func (f *fakePaymentRepo) ListForOwner(context.Context, uuid.UUID) ([]models.RentPayment, error) {
	return nil, nil
}

func (f *fakePaymentRepo) ListForTenant(context.Context, uuid.UUID) ([]models.RentPayment, error) {
	return nil, nil
}

func (f *fakePaymentRepo) ListPendingDueBefore(
	_ context.Context,
	cutoff time.Time,
) ([]models.RentPayment, error) {
	var result []models.RentPayment
	for _, p := range f.payments {
		if p.Status == models.PaymentPending && p.DueDate.Before(cutoff) {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (f *fakePaymentRepo) ListPendingDueBetween(
	_ context.Context,
	from, to time.Time,
) ([]models.RentPayment, error) {
	var result []models.RentPayment
	for _, p := range f.payments {
		if p.Status == models.PaymentPending && p.DueDate.After(from) && !p.DueDate.After(to) {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (f *fakePaymentRepo) Create(_ context.Context, payment *models.RentPayment) error {
	f.add(payment)
	return nil
}

func (f *fakePaymentRepo) Update(_ context.Context, payment *models.RentPayment) error {
	f.payments[payment.ID] = payment
	return nil
}

func (f *fakePaymentRepo) MarkOverdue(_ context.Context, paymentID uuid.UUID) (bool, error) {
	payment, ok := f.payments[paymentID]
	if !ok || payment.Status != models.PaymentPending {
		return false, nil
	}
	payment.Status = models.PaymentOverdue
	return true, nil
}

func (f *fakePaymentRepo) AddReminderIfAbsent(
	_ context.Context,
	reminder *models.RentReminder,
) (bool, error) {
	payment := f.payments[reminder.RentPaymentID]
	for _, existing := range payment.Reminders {
		if existing.Type == reminder.Type && reminder.Type != models.ReminderManual {
			return false, nil
		}
	}
	payment.Reminders = append(payment.Reminders, *reminder)
	return true, nil
}

func (f *fakePaymentRepo) AddReminder(_ context.Context, reminder *models.RentReminder) error {
	payment := f.payments[reminder.RentPaymentID]
	payment.Reminders = append(payment.Reminders, *reminder)
	return nil
}

type fakeNotificationRepo struct {
	created []models.Notification
}

func (f *fakeNotificationRepo) ListForUser(
	context.Context,
	uuid.UUID,
) ([]models.Notification, error) {
	return nil, nil
}

func (f *fakeNotificationRepo) Create(_ context.Context, n *models.Notification) error {
	f.created = append(f.created, *n)
	return nil
}

func (f *fakeNotificationRepo) MarkRead(context.Context, uuid.UUID, uuid.UUID) error {
	return nil
}

func (f *fakeNotificationRepo) MarkAllRead(context.Context, uuid.UUID) error {
	return nil
}

type stubPublisher struct {
	published []events.Event
}

func (s *stubPublisher) Publish(_ events.Channel, event events.Event) error {
	s.published = append(s.published, event)
	return nil
}

func newScanFixture() (*RentReviewService, *fakePaymentRepo, *fakeNotificationRepo) {
	payments := newFakePaymentRepo()
	notifications := &fakeNotificationRepo{}
	service := NewRentReviewService(
		payments,
		NewNotificationService(notifications, &stubPublisher{}),
	)
	return service, payments, notifications
}

func pendingPayment(dueDate time.Time) *models.RentPayment {
	return &models.RentPayment{
		ApartmentID: uuid.New(),
		TenantID:    uuid.New(),
		Amount:      decimal.NewFromInt(1000),
		DueDate:     dueDate,
		Status:      models.PaymentPending,
	}
}

func TestRentReviewService_Scan_OverduePayment(t *testing.T) {
	service, payments, notifications := newScanFixture()
	now := time.Now()

	payment := pendingPayment(now.Add(-24 * time.Hour))
	payments.add(payment)

	result, err := service.Scan(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, 1, result.MarkedOverdue)
	assert.Equal(t, 1, result.OverdueReminders)
	assert.Equal(t, models.PaymentOverdue, payment.Status)
	require.Len(t, payment.Reminders, 1)
	assert.Equal(t, models.ReminderOverdue, payment.Reminders[0].Type)
	assert.Len(t, notifications.created, 1)
	assert.Equal(t, payment.TenantID, notifications.created[0].UserID)
}

func TestRentReviewService_Scan_Idempotent(t *testing.T) {
	service, payments, notifications := newScanFixture()
	now := time.Now()

	payment := pendingPayment(now.Add(-24 * time.Hour))
	payments.add(payment)

	_, err := service.Scan(context.Background(), now)
	require.NoError(t, err)

	result, err := service.Scan(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, 0, result.MarkedOverdue)
	assert.Equal(t, 0, result.OverdueReminders)
	assert.Len(t, payment.Reminders, 1)
	assert.Len(t, notifications.created, 1)
}

func TestRentReviewService_Scan_UpcomingPayment(t *testing.T) {
	service, payments, notifications := newScanFixture()
	now := time.Now()

	inWindow := pendingPayment(now.Add(48 * time.Hour))
	payments.add(inWindow)

	outsideWindow := pendingPayment(now.Add(5 * 24 * time.Hour))
	payments.add(outsideWindow)

	result, err := service.Scan(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, 0, result.MarkedOverdue)
	assert.Equal(t, 1, result.InitialReminders)
	require.Len(t, inWindow.Reminders, 1)
	assert.Equal(t, models.ReminderInitial, inWindow.Reminders[0].Type)
	assert.Empty(t, outsideWindow.Reminders)
	assert.Len(t, notifications.created, 1)
}

func TestRentReviewService_Scan_PaidPaymentUntouched(t *testing.T) {
	service, payments, notifications := newScanFixture()
	now := time.Now()

	payment := pendingPayment(now.Add(-24 * time.Hour))
	payment.Status = models.PaymentPaid
	payments.add(payment)

	result, err := service.Scan(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, 0, result.MarkedOverdue)
	assert.Equal(t, 0, result.OverdueReminders)
	assert.Empty(t, payment.Reminders)
	assert.Empty(t, notifications.created)
}
