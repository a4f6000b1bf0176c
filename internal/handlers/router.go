package handlers

import (
	"hearth/internal/app"
	"hearth/internal/apperrors"
	"hearth/internal/handlers/middleware"
	"hearth/internal/models"

	logger "github.com/Bparsons0904/goLogger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type Handler struct {
	middleware middleware.Middleware
	log        logger.Logger
	router     fiber.Router
}

func Router(router fiber.Router, app *app.App) (err error) {
	setupWebSocketRoute(router, app)

	api := router.Group("/api")
	HealthHandler(api, app.Config)
	NewAuthHandler(*app, api).Register()
	NewApartmentHandler(*app, api).Register()
	NewMaintenanceHandler(*app, api).Register()
	NewRentHandler(*app, api).Register()
	NewNotificationHandler(*app, api).Register()

	return nil
}

func setupWebSocketRoute(router fiber.Router, app *app.App) {
	router.Use("/ws", app.Middleware.RequireAuth(), func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	router.Get("/ws", websocket.New(func(c *websocket.Conn) {
		user, ok := c.Locals(middleware.UserKeyFiber).(*models.User)
		if !ok {
			_ = c.Close()
			return
		}
		app.Websocket.HandleWebSocket(c, user.ID)
	}))
}

// respondError translates controller errors to their outward status. Internal
// error detail is only exposed in development.
func (h *Handler) respondError(c *fiber.Ctx, err error) error {
	status := apperrors.HTTPStatus(err)

	body := fiber.Map{"error": err.Error()}
	if fields := apperrors.ValidationFields(err); fields != nil {
		body["fields"] = fields
	}

	if status == fiber.StatusInternalServerError {
		h.log.Er("unhandled error", err, "path", c.Path())
		if !h.middleware.Config.IsDevelopment() {
			body = fiber.Map{"error": "Internal server error"}
		}
	}

	return c.Status(status).JSON(body)
}
