package services

import (
	"context"
	"fmt"
	"time"

	"hearth/internal/events"
	"hearth/internal/models"
	"hearth/internal/repositories"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const dispatchTimeout = 5 * time.Second

// EventPublisher is the slice of the event bus the dispatcher needs.
type EventPublisher interface {
	Publish(channel events.Channel, event events.Event) error
}

// NotificationService records in-app notifications and fans them out over the
// event bus for live delivery. Everything here is best-effort: a failed
// dispatch is logged, never propagated, so it can never roll back the
// mutation that triggered it.
type NotificationService struct {
	repo     repositories.NotificationRepository
	eventBus EventPublisher
	log      logger.Logger
}

func NewNotificationService(
	repo repositories.NotificationRepository,
	eventBus EventPublisher,
) *NotificationService {
	return &NotificationService{
		repo:     repo,
		eventBus: eventBus,
		log:      logger.New("notificationService"),
	}
}

// Notify records one notification per recipient and publishes each for live
// delivery.
func (s *NotificationService) Notify(
	ctx context.Context,
	recipients []uuid.UUID,
	message string,
	notificationType models.NotificationType,
	data datatypes.JSON,
) {
	log := s.log.Function("Notify")

	dispatchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), dispatchTimeout)
	defer cancel()

	for _, recipient := range recipients {
		notification := &models.Notification{
			UserID:  recipient,
			Message: message,
			Type:    notificationType,
			Data:    data,
		}

		if err := s.repo.Create(dispatchCtx, notification); err != nil {
			log.Warn("failed to record notification", "userID", recipient, "error", err)
			continue
		}

		userID := recipient
		if err := s.eventBus.Publish(events.NOTIFICATION_CHANNEL, events.Event{
			Type:   events.NOTIFICATION,
			UserID: &userID,
			Data: map[string]any{
				"notificationId": notification.ID,
				"message":        message,
				"type":           notificationType,
			},
		}); err != nil {
			log.Warn("failed to publish notification event", "userID", recipient, "error", err)
		}
	}
}

// NotifyStatusChange dispatches the structured event every successful
// maintenance transition produces.
func (s *NotificationService) NotifyStatusChange(
	ctx context.Context,
	event models.StatusChangeEvent,
) {
	log := s.log.Function("NotifyStatusChange")

	message := fmt.Sprintf(
		"Maintenance request %q moved from %s to %s",
		event.Title, event.OldStatus, event.NewStatus,
	)

	data, err := datatypes.NewJSONType(event).MarshalJSON()
	if err != nil {
		log.Warn("failed to encode status change payload", "requestID", event.RequestID, "error", err)
		data = nil
	}

	s.Notify(ctx, event.Recipients, message, models.NotificationInfo, data)

	if err := s.eventBus.Publish(events.STATUS_CHANNEL, events.Event{
		Type: events.STATUS_CHANGE,
		Data: map[string]any{
			"requestId": event.RequestID,
			"oldStatus": event.OldStatus,
			"newStatus": event.NewStatus,
		},
	}); err != nil {
		log.Warn("failed to publish status change event", "requestID", event.RequestID, "error", err)
	}
}
