package middleware

import (
	"hearth/config"
	"hearth/internal/database"
	"hearth/internal/repositories"
	"hearth/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

type Middleware struct {
	DB       database.DB
	userRepo repositories.UserRepository
	tokens   *services.TokenService
	Config   config.Config
	log      logger.Logger
}

func New(
	db database.DB,
	config config.Config,
	repos repositories.Repository,
	tokens *services.TokenService,
) Middleware {
	log := logger.New("middleware")

	return Middleware{
		DB:       db,
		userRepo: repos.User,
		tokens:   tokens,
		Config:   config,
		log:      log,
	}
}
