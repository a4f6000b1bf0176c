package repositories

import (
	"context"
	"errors"

	"hearth/internal/apperrors"
	"hearth/internal/database"
	. "hearth/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	ListForUser(ctx context.Context, userID uuid.UUID) ([]Notification, error)
	Create(ctx context.Context, notification *Notification) error
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
}

type notificationRepository struct {
	db  database.DB
	log logger.Logger
}

func NewNotificationRepository(db database.DB) NotificationRepository {
	return &notificationRepository{
		db:  db,
		log: logger.New("notificationRepository"),
	}
}

func (r *notificationRepository) ListForUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]Notification, error) {
	log := r.log.Function("ListForUser")

	var notifications []Notification
	if err := r.db.SQLWithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(100).
		Find(&notifications).Error; err != nil {
		return nil, log.Err("failed to list notifications", err, "userID", userID)
	}

	return notifications, nil
}

func (r *notificationRepository) Create(ctx context.Context, notification *Notification) error {
	log := r.log.Function("Create")

	if err := r.db.SQLWithContext(ctx).Create(notification).Error; err != nil {
		return log.Err("failed to create notification", err, "userID", notification.UserID)
	}

	return nil
}

// MarkRead is scoped to userID so a user can never flag another user's rows.
func (r *notificationRepository) MarkRead(
	ctx context.Context,
	userID, notificationID uuid.UUID,
) error {
	log := r.log.Function("MarkRead")

	result := r.db.SQLWithContext(ctx).Model(&Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("read", true)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		return log.Err(
			"failed to mark notification read",
			result.Error,
			"notificationID", notificationID,
		)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	log := r.log.Function("MarkAllRead")

	if err := r.db.SQLWithContext(ctx).Model(&Notification{}).
		Where("user_id = ? AND read = false", userID).
		Update("read", true).Error; err != nil {
		return log.Err("failed to mark notifications read", err, "userID", userID)
	}

	return nil
}
