package authController

import (
	"context"
	"errors"
	"strings"
	"time"

	"hearth/internal/apperrors"
	. "hearth/internal/models"
	"hearth/internal/repositories"
	"hearth/internal/services"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
)

const minPasswordLength = 6

// TokenIssuer mints and revokes session tokens. Satisfied by
// services.TokenService.
type TokenIssuer interface {
	Issue(ctx context.Context, userID uuid.UUID, role string) (string, error)
	Revoke(ctx context.Context, token string) error
}

type AuthController struct {
	userRepo repositories.UserRepository
	tokens   TokenIssuer
	log      logger.Logger
}

type AuthControllerInterface interface {
	Register(ctx context.Context, req RegisterRequest) (*User, string, error)
	Login(ctx context.Context, req LoginRequest) (*User, string, error)
	Logout(ctx context.Context, token string) error
}

func New(
	repos repositories.Repository,
	services services.Service,
) AuthControllerInterface {
	return &AuthController{
		userRepo: repos.User,
		tokens:   services.Token,
		log:      logger.New("authController"),
	}
}

func (c *AuthController) Register(
	ctx context.Context,
	req RegisterRequest,
) (*User, string, error) {
	log := c.log.Function("Register")

	if len(req.Password) < minPasswordLength {
		return nil, "", apperrors.NewValidation(map[string]string{
			"password": "password must be at least 6 characters long",
		})
	}

	user := &User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        normalizeEmail(req.Email),
		Phone:        req.Phone,
		Role:         req.Role,
		CompanyName:  req.CompanyName,
		ServiceTypes: datatypes.NewJSONSlice(req.ServiceTypes),
	}

	if err := user.Validate(); err != nil {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", log.Err("failed to hash password", err)
	}
	user.PasswordHash = string(hash)

	now := time.Now()
	user.LastLoginAt = &now

	if err := c.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, "", apperrors.NewValidation(map[string]string{
				"email": "an account with this email already exists",
			})
		}
		return nil, "", err
	}

	token, err := c.tokens.Issue(ctx, user.ID, string(user.Role))
	if err != nil {
		return nil, "", err
	}

	log.Info("User registered", "userID", user.ID, "role", user.Role)
	return user, token, nil
}

func (c *AuthController) Login(ctx context.Context, req LoginRequest) (*User, string, error) {
	log := c.log.Function("Login")

	user, err := c.userRepo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, "", apperrors.ErrUnauthenticated
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword(
		[]byte(user.PasswordHash),
		[]byte(req.Password),
	); err != nil {
		return nil, "", apperrors.ErrUnauthenticated
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := c.userRepo.Update(ctx, nil, user); err != nil {
		log.Warn("failed to record login time", "userID", user.ID, "error", err)
	}

	token, err := c.tokens.Issue(ctx, user.ID, string(user.Role))
	if err != nil {
		return nil, "", err
	}

	log.Info("User logged in", "userID", user.ID)
	return user, token, nil
}

func (c *AuthController) Logout(ctx context.Context, token string) error {
	return c.tokens.Revoke(ctx, token)
}

// Emails are stored and looked up lowercased so the same address with
// different casing resolves to one account.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
