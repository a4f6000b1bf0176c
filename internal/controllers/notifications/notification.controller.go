package notificationController

import (
	"context"

	. "hearth/internal/models"
	"hearth/internal/repositories"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
)

type NotificationController struct {
	repo repositories.NotificationRepository
	log  logger.Logger
}

type NotificationControllerInterface interface {
	ListForActor(ctx context.Context, actor *User) ([]Notification, error)
	MarkRead(ctx context.Context, actor *User, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, actor *User) error
}

func New(repos repositories.Repository) NotificationControllerInterface {
	return &NotificationController{
		repo: repos.Notification,
		log:  logger.New("notificationController"),
	}
}

func (c *NotificationController) ListForActor(
	ctx context.Context,
	actor *User,
) ([]Notification, error) {
	return c.repo.ListForUser(ctx, actor.ID)
}

func (c *NotificationController) MarkRead(
	ctx context.Context,
	actor *User,
	notificationID uuid.UUID,
) error {
	return c.repo.MarkRead(ctx, actor.ID, notificationID)
}

func (c *NotificationController) MarkAllRead(ctx context.Context, actor *User) error {
	return c.repo.MarkAllRead(ctx, actor.ID)
}
