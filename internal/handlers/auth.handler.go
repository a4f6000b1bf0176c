package handlers

import (
	"hearth/internal/app"
	authController "hearth/internal/controllers/auth"
	"hearth/internal/handlers/middleware"
	"hearth/internal/models"

	logger "github.com/Bparsons0904/goLogger"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	Handler
	authController authController.AuthControllerInterface
}

func NewAuthHandler(app app.App, router fiber.Router) *AuthHandler {
	log := logger.New("handlers").File("auth_handler")
	return &AuthHandler{
		authController: app.Controllers.Auth,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *AuthHandler) Register() {
	auth := h.router.Group("/auth")

	// Public endpoints
	auth.Post("/register", h.register)
	auth.Post("/login", h.login)

	// Protected endpoints
	protected := auth.Group("/", h.middleware.RequireAuth())
	protected.Get("/me", h.getCurrentUser)
	protected.Post("/logout", h.logout)
}

func (h *AuthHandler) register(c *fiber.Ctx) error {
	log := h.log.Function("register")

	var req models.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		log.Info("failed to parse register request", "error", err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	user, token, err := h.authController.Register(c.UserContext(), req)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":  user.ToProfile(),
		"token": token,
	})
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	log := h.log.Function("login")

	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		log.Info("failed to parse login request", "error", err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	user, token, err := h.authController.Login(c.UserContext(), req)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"user":  user.ToProfile(),
		"token": token,
	})
}

func (h *AuthHandler) getCurrentUser(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	return c.JSON(fiber.Map{
		"user": user.ToProfile(),
	})
}

func (h *AuthHandler) logout(c *fiber.Ctx) error {
	log := h.log.Function("logout")

	token := middleware.GetToken(c)
	if err := h.authController.Logout(c.UserContext(), token); err != nil {
		return h.respondError(c, err)
	}

	if user := middleware.GetUser(c); user != nil {
		log.Info("user logged out", "userID", user.ID)
	}

	return c.JSON(fiber.Map{
		"message": "Logout successful",
	})
}
