package handlers

import (
	"hearth/internal/app"
	rentController "hearth/internal/controllers/rent"
	"hearth/internal/handlers/middleware"
	"hearth/internal/models"

	logger "github.com/Bparsons0904/goLogger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type RentHandler struct {
	Handler
	rentController rentController.RentControllerInterface
}

func NewRentHandler(app app.App, router fiber.Router) *RentHandler {
	log := logger.New("handlers").File("rent_handler")
	return &RentHandler{
		rentController: app.Controllers.Rent,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *RentHandler) Register() {
	payments := h.router.Group("/rent", h.middleware.RequireAuth())
	ownerOnly := h.middleware.RequireRole(models.RoleOwner)

	payments.Post("/", ownerOnly, h.create)
	payments.Get("/", h.list)
	payments.Get("/overdue", ownerOnly, h.listOverdue)
	payments.Get("/upcoming", ownerOnly, h.listUpcoming)
	payments.Get("/:id", h.getByID)
	payments.Patch("/:id/paid", h.markPaid)
	payments.Post("/:id/reminders", h.addReminder)
}

func (h *RentHandler) create(c *fiber.Ctx) error {
	log := h.log.Function("create")

	var req models.CreatePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		log.Info("failed to parse create request", "error", err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	payment, err := h.rentController.Create(c.UserContext(), middleware.GetUser(c), req)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"payment": payment})
}

func (h *RentHandler) list(c *fiber.Ctx) error {
	payments, err := h.rentController.ListForActor(c.UserContext(), middleware.GetUser(c))
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(fiber.Map{"payments": payments})
}

func (h *RentHandler) listOverdue(c *fiber.Ctx) error {
	payments, err := h.rentController.ListOverdue(c.UserContext(), middleware.GetUser(c))
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(fiber.Map{"payments": payments})
}

func (h *RentHandler) listUpcoming(c *fiber.Ctx) error {
	payments, err := h.rentController.ListUpcoming(c.UserContext(), middleware.GetUser(c))
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(fiber.Map{"payments": payments})
}

func (h *RentHandler) getByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid payment ID",
		})
	}

	payment, err := h.rentController.GetByID(c.UserContext(), middleware.GetUser(c), id)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(fiber.Map{"payment": payment})
}

func (h *RentHandler) markPaid(c *fiber.Ctx) error {
	log := h.log.Function("markPaid")

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid payment ID",
		})
	}

	var req models.MarkPaidRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			log.Info("failed to parse mark paid request", "error", err.Error())
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}
	}

	payment, err := h.rentController.MarkPaid(c.UserContext(), middleware.GetUser(c), id, req.Notes)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(fiber.Map{"payment": payment})
}

func (h *RentHandler) addReminder(c *fiber.Ctx) error {
	log := h.log.Function("addReminder")

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid payment ID",
		})
	}

	req := models.AddReminderRequest{Type: models.ReminderManual}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			log.Info("failed to parse reminder request", "error", err.Error())
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}
	}

	payment, err := h.rentController.AddReminder(c.UserContext(), middleware.GetUser(c), id, req.Type)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(fiber.Map{"payment": payment})
}
