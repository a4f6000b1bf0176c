package services

import (
	"context"
	"fmt"
	"time"

	"hearth/config"
	"hearth/internal/apperrors"
	"hearth/internal/database"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const SESSION_CACHE_PREFIX = "session:"

// Session is what the cache holds for a live bearer token.
type Session struct {
	UserID   uuid.UUID `json:"userId"`
	Role     string    `json:"role"`
	IssuedAt time.Time `json:"issuedAt"`
}

type tokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 bearer tokens and tracks live
// sessions in the session cache so logout revokes immediately rather than
// waiting out the token expiry.
type TokenService struct {
	db     database.DB
	secret []byte
	expiry time.Duration
	log    logger.Logger
}

func NewTokenService(db database.DB, config config.Config) *TokenService {
	return &TokenService{
		db:     db,
		secret: []byte(config.JWTSecret),
		expiry: time.Duration(config.JWTExpiryHours) * time.Hour,
		log:    logger.New("tokenService"),
	}
}

func (s *TokenService) Issue(ctx context.Context, userID uuid.UUID, role string) (string, error) {
	log := s.log.Function("Issue")

	now := time.Now()
	claims := tokenClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
			ID:        uuid.NewString(),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", log.Err("failed to sign token", err, "userID", userID)
	}

	session := Session{UserID: userID, Role: role, IssuedAt: now}
	if err := database.NewCacheBuilder(s.db.Cache.Session, SESSION_CACHE_PREFIX+token).
		WithStruct(session).
		WithTTL(s.expiry).
		WithContext(ctx).
		Set(); err != nil {
		return "", log.Err("failed to store session", err, "userID", userID)
	}

	return token, nil
}

// Resolve maps a bearer token to its session. Signature or expiry failures
// and revoked sessions all surface as unauthenticated.
func (s *TokenService) Resolve(ctx context.Context, token string) (*Session, error) {
	log := s.log.Function("Resolve")

	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, apperrors.ErrUnauthenticated
	}

	var session Session
	found, err := database.NewCacheBuilder(s.db.Cache.Session, SESSION_CACHE_PREFIX+token).
		WithContext(ctx).
		Get(&session)
	if err != nil {
		log.Warn("failed to read session cache", "error", err)
		return nil, apperrors.ErrUnavailable
	}
	if !found {
		return nil, apperrors.ErrUnauthenticated
	}

	return &session, nil
}

// Revoke drops the session, invalidating the token ahead of its expiry.
func (s *TokenService) Revoke(ctx context.Context, token string) error {
	log := s.log.Function("Revoke")

	if err := database.NewCacheBuilder(s.db.Cache.Session, SESSION_CACHE_PREFIX+token).
		WithContext(ctx).
		Delete(); err != nil {
		return log.Err("failed to revoke session", err)
	}

	return nil
}
