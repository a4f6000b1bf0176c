package middleware

import (
	"net/http/httptest"
	"testing"

	"hearth/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roleTestApp(m *Middleware, user *models.User, roles ...models.UserRole) *fiber.App {
	app := fiber.New()
	app.Get("/protected",
		func(c *fiber.Ctx) error {
			if user != nil {
				c.Locals(UserKeyFiber, user)
			}
			return c.Next()
		},
		m.RequireRole(roles...),
		func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusOK)
		},
	)
	return app
}

func TestRequireRole(t *testing.T) {
	m := &Middleware{}

	tests := []struct {
		name     string
		user     *models.User
		roles    []models.UserRole
		expected int
	}{
		{
			name:     "allows matching role",
			user:     &models.User{Role: models.RoleOwner},
			roles:    []models.UserRole{models.RoleOwner},
			expected: fiber.StatusOK,
		},
		{
			name:     "allows any of several roles",
			user:     &models.User{Role: models.RoleTenant},
			roles:    []models.UserRole{models.RoleOwner, models.RoleTenant},
			expected: fiber.StatusOK,
		},
		{
			name:     "rejects wrong role",
			user:     &models.User{Role: models.RoleTenant},
			roles:    []models.UserRole{models.RoleOwner},
			expected: fiber.StatusForbidden,
		},
		{
			name:     "rejects missing user",
			user:     nil,
			roles:    []models.UserRole{models.RoleOwner},
			expected: fiber.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := roleTestApp(m, tt.user, tt.roles...)

			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/protected", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, resp.StatusCode)
		})
	}
}
