package handlers

import (
	"hearth/internal/app"
	notificationController "hearth/internal/controllers/notifications"
	"hearth/internal/handlers/middleware"

	logger "github.com/Bparsons0904/goLogger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type NotificationHandler struct {
	Handler
	notificationController notificationController.NotificationControllerInterface
}

func NewNotificationHandler(app app.App, router fiber.Router) *NotificationHandler {
	log := logger.New("handlers").File("notification_handler")
	return &NotificationHandler{
		notificationController: app.Controllers.Notification,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *NotificationHandler) Register() {
	notifications := h.router.Group("/notifications", h.middleware.RequireAuth())

	notifications.Get("/", h.list)
	notifications.Patch("/", h.markAllRead)
	notifications.Patch("/:id", h.markRead)
}

func (h *NotificationHandler) list(c *fiber.Ctx) error {
	notifications, err := h.notificationController.ListForActor(
		c.UserContext(),
		middleware.GetUser(c),
	)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(fiber.Map{"notifications": notifications})
}

func (h *NotificationHandler) markRead(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid notification ID",
		})
	}

	if err := h.notificationController.MarkRead(c.UserContext(), middleware.GetUser(c), id); err != nil {
		return h.respondError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *NotificationHandler) markAllRead(c *fiber.Ctx) error {
	if err := h.notificationController.MarkAllRead(c.UserContext(), middleware.GetUser(c)); err != nil {
		return h.respondError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
