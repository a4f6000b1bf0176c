package handlers

import (
	"hearth/internal/app"
	apartmentController "hearth/internal/controllers/apartments"
	"hearth/internal/handlers/middleware"
	"hearth/internal/models"

	logger "github.com/Bparsons0904/goLogger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ApartmentHandler struct {
	Handler
	apartmentController apartmentController.ApartmentControllerInterface
}

func NewApartmentHandler(app app.App, router fiber.Router) *ApartmentHandler {
	log := logger.New("handlers").File("apartment_handler")
	return &ApartmentHandler{
		apartmentController: app.Controllers.Apartment,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *ApartmentHandler) Register() {
	apartments := h.router.Group("/apartments", h.middleware.RequireAuth())

	apartments.Post("/", h.create)
	apartments.Get("/", h.list)
	apartments.Get("/:id", h.getByID)
	apartments.Patch("/:id", h.update)
	apartments.Delete("/:id", h.delete)
	apartments.Post("/:id/assign-tenant", h.assignTenant)
	apartments.Post("/:id/remove-tenant", h.removeTenant)
}

func (h *ApartmentHandler) create(c *fiber.Ctx) error {
	log := h.log.Function("create")

	var req models.CreateApartmentRequest
	if err := c.BodyParser(&req); err != nil {
		log.Info("failed to parse create request", "error", err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	apartment, err := h.apartmentController.Create(c.UserContext(), middleware.GetUser(c), req)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"apartment": apartment})
}

func (h *ApartmentHandler) list(c *fiber.Ctx) error {
	apartments, err := h.apartmentController.ListForActor(c.UserContext(), middleware.GetUser(c))
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(fiber.Map{"apartments": apartments})
}

func (h *ApartmentHandler) getByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid apartment ID",
		})
	}

	apartment, err := h.apartmentController.GetByID(c.UserContext(), middleware.GetUser(c), id)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(fiber.Map{"apartment": apartment})
}

func (h *ApartmentHandler) update(c *fiber.Ctx) error {
	log := h.log.Function("update")

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid apartment ID",
		})
	}

	var req models.UpdateApartmentRequest
	if err := c.BodyParser(&req); err != nil {
		log.Info("failed to parse update request", "error", err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	apartment, err := h.apartmentController.Update(c.UserContext(), middleware.GetUser(c), id, req)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(fiber.Map{"apartment": apartment})
}

func (h *ApartmentHandler) delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid apartment ID",
		})
	}

	if err := h.apartmentController.Delete(c.UserContext(), middleware.GetUser(c), id); err != nil {
		return h.respondError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ApartmentHandler) assignTenant(c *fiber.Ctx) error {
	log := h.log.Function("assignTenant")

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid apartment ID",
		})
	}

	var req models.AssignTenantRequest
	if err := c.BodyParser(&req); err != nil {
		log.Info("failed to parse assign request", "error", err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	apartment, err := h.apartmentController.AssignTenant(
		c.UserContext(),
		middleware.GetUser(c),
		id,
		req.TenantID,
	)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(fiber.Map{"apartment": apartment})
}

func (h *ApartmentHandler) removeTenant(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid apartment ID",
		})
	}

	apartment, err := h.apartmentController.RemoveTenant(c.UserContext(), middleware.GetUser(c), id)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(fiber.Map{"apartment": apartment})
}
