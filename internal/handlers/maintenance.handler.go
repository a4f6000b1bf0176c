package handlers

import (
	"io"
	"strings"

	"hearth/internal/app"
	maintenanceController "hearth/internal/controllers/maintenance"
	"hearth/internal/handlers/middleware"
	"hearth/internal/models"
	"hearth/internal/services"

	logger "github.com/Bparsons0904/goLogger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type MaintenanceHandler struct {
	Handler
	maintenanceController maintenanceController.MaintenanceControllerInterface
	fileStore             *services.FileStoreService
}

func NewMaintenanceHandler(app app.App, router fiber.Router) *MaintenanceHandler {
	log := logger.New("handlers").File("maintenance_handler")
	return &MaintenanceHandler{
		maintenanceController: app.Controllers.Maintenance,
		fileStore:             app.Services.FileStore,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *MaintenanceHandler) Register() {
	requests := h.router.Group("/maintenance", h.middleware.RequireAuth())

	requests.Post("/", h.create)
	requests.Get("/", h.list)
	requests.Get("/photos/:filename", h.servePhoto)
	requests.Get("/:id", h.getByID)
	requests.Patch("/:id/status", h.patchStatus)
	requests.Post("/:id/messages", h.appendMessage)
	requests.Post("/:id/notes", h.appendNote)
	requests.Post("/:id/completion-photos", h.appendCompletionPhotos)
	requests.Post("/:id/rating", h.rate)
	requests.Post("/:id/schedule", h.schedule)
	requests.Delete("/:id", h.delete)
}

// create accepts multipart form data so photos can ride along with the
// request fields, and plain JSON when there are none.
func (h *MaintenanceHandler) create(c *fiber.Ctx) error {
	log := h.log.Function("create")

	var input models.CreateRequestInput
	var photos []maintenanceController.PhotoUpload

	if strings.HasPrefix(c.Get("Content-Type"), "multipart/form-data") {
		apartmentID, err := uuid.Parse(c.FormValue("apartmentId"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid apartment ID",
			})
		}

		input = models.CreateRequestInput{
			Title:       c.FormValue("title"),
			ApartmentID: apartmentID,
			Type:        models.RequestType(c.FormValue("type")),
			Description: c.FormValue("description"),
			Priority:    models.RequestPriority(c.FormValue("priority")),
		}

		photos, err = h.collectUploads(c)
		if err != nil {
			log.Info("failed to read uploaded photos", "error", err.Error())
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid photo upload",
			})
		}
	} else if err := c.BodyParser(&input); err != nil {
		log.Info("failed to parse create request", "error", err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	request, err := h.maintenanceController.Create(
		c.UserContext(),
		middleware.GetUser(c),
		input,
		photos,
	)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"request": request})
}

func (h *MaintenanceHandler) collectUploads(
	c *fiber.Ctx,
) ([]maintenanceController.PhotoUpload, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, err
	}

	files := form.File["photos"]
	photos := make([]maintenanceController.PhotoUpload, 0, len(files))
	for _, fileHeader := range files {
		if fileHeader.Size > services.MaxUploadSize {
			return nil, fiber.ErrRequestEntityTooLarge
		}

		file, err := fileHeader.Open()
		if err != nil {
			return nil, err
		}

		data, err := io.ReadAll(file)
		closeErr := file.Close()
		if err != nil {
			return nil, err
		}
		if closeErr != nil {
			return nil, closeErr
		}

		photos = append(photos, maintenanceController.PhotoUpload{
			Filename: fileHeader.Filename,
			Data:     data,
		})
	}

	return photos, nil
}

func (h *MaintenanceHandler) list(c *fiber.Ctx) error {
	requests, err := h.maintenanceController.ListForActor(c.UserContext(), middleware.GetUser(c))
	if err != nil {
		return h.respondError(c, err)
	}

	if status := c.Query("status"); status != "" {
		filtered := requests[:0]
		for _, request := range requests {
			if request.Status == models.RequestStatus(status) {
				filtered = append(filtered, request)
			}
		}
		requests = filtered
	}

	return c.JSON(fiber.Map{"requests": requests})
}

func (h *MaintenanceHandler) getByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request ID",
		})
	}

	request, err := h.maintenanceController.GetByID(c.UserContext(), middleware.GetUser(c), id)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(fiber.Map{"request": request})
}

func (h *MaintenanceHandler) patchStatus(c *fiber.Ctx) error {
	log := h.log.Function("patchStatus")

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request ID",
		})
	}

	var patch models.PatchStatusRequest
	if err := c.BodyParser(&patch); err != nil {
		log.Info("failed to parse status patch", "error", err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	request, err := h.maintenanceController.Transition(
		c.UserContext(),
		middleware.GetUser(c),
		id,
		patch,
	)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(fiber.Map{"request": request})
}

func (h *MaintenanceHandler) appendMessage(c *fiber.Ctx) error {
	log := h.log.Function("appendMessage")

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request ID",
		})
	}

	var req models.AppendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		log.Info("failed to parse message", "error", err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	request, err := h.maintenanceController.AppendMessage(
		c.UserContext(),
		middleware.GetUser(c),
		id,
		req.Body,
	)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(fiber.Map{"request": request})
}

func (h *MaintenanceHandler) appendNote(c *fiber.Ctx) error {
	log := h.log.Function("appendNote")

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request ID",
		})
	}

	var req models.AppendNoteRequest
	if err := c.BodyParser(&req); err != nil {
		log.Info("failed to parse note", "error", err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	request, err := h.maintenanceController.AppendNote(
		c.UserContext(),
		middleware.GetUser(c),
		id,
		req.Body,
	)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(fiber.Map{"request": request})
}

func (h *MaintenanceHandler) appendCompletionPhotos(c *fiber.Ctx) error {
	log := h.log.Function("appendCompletionPhotos")

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request ID",
		})
	}

	photos, err := h.collectUploads(c)
	if err != nil {
		log.Info("failed to read uploaded photos", "error", err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid photo upload",
		})
	}

	request, err := h.maintenanceController.AppendCompletionPhotos(
		c.UserContext(),
		middleware.GetUser(c),
		id,
		photos,
	)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(fiber.Map{"request": request})
}

func (h *MaintenanceHandler) rate(c *fiber.Ctx) error {
	log := h.log.Function("rate")

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request ID",
		})
	}

	var req models.RateRequestInput
	if err := c.BodyParser(&req); err != nil {
		log.Info("failed to parse rating", "error", err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	request, err := h.maintenanceController.Rate(
		c.UserContext(),
		middleware.GetUser(c),
		id,
		req.Rating,
	)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(fiber.Map{"request": request})
}

func (h *MaintenanceHandler) schedule(c *fiber.Ctx) error {
	log := h.log.Function("schedule")

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request ID",
		})
	}

	var input models.ScheduleRequestInput
	if err := c.BodyParser(&input); err != nil {
		log.Info("failed to parse schedule", "error", err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	request, err := h.maintenanceController.Schedule(
		c.UserContext(),
		middleware.GetUser(c),
		id,
		input,
	)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(fiber.Map{"request": request})
}

func (h *MaintenanceHandler) delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request ID",
		})
	}

	if err := h.maintenanceController.Delete(c.UserContext(), middleware.GetUser(c), id); err != nil {
		return h.respondError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *MaintenanceHandler) servePhoto(c *fiber.Ctx) error {
	path, err := h.fileStore.Resolve(c.Params("filename"))
	if err != nil {
		return h.respondError(c, err)
	}

	return c.SendFile(path)
}
