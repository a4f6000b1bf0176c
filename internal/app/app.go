package app

import (
	"context"

	"hearth/config"
	"hearth/internal/controllers"
	"hearth/internal/database"
	"hearth/internal/events"
	"hearth/internal/handlers/middleware"
	"hearth/internal/jobs"
	"hearth/internal/repositories"
	"hearth/internal/services"
	"hearth/internal/websockets"

	logger "github.com/Bparsons0904/goLogger"
)

type App struct {
	Database   database.DB
	Middleware middleware.Middleware
	Websocket  *websockets.Manager
	EventBus   *events.EventBus
	Config     config.Config

	Services     services.Service
	Repositories repositories.Repository
	Controllers  controllers.Controllers
}

func New() (*App, error) {
	log := logger.New("app").Function("New")

	config, err := config.InitConfig()
	if err != nil {
		return &App{}, log.Err("failed to initialize config", err)
	}

	db, err := database.New(config)
	if err != nil {
		return &App{}, log.Err("failed to create database", err)
	}

	eventBus := events.New(db.Cache.Events)

	repos := repositories.New(db)

	allServices, err := services.New(db, config, eventBus, repos)
	if err != nil {
		return &App{}, log.Err("failed to create services", err)
	}

	websocket, err := websockets.New(eventBus)
	if err != nil {
		return &App{}, log.Err("failed to create websocket manager", err)
	}

	middleware := middleware.New(db, config, repos, allServices.Token)
	allControllers := controllers.New(allServices, repos)

	if config.SchedulerEnabled {
		rentReviewJob := jobs.NewRentReviewJob(allServices.RentReview, services.Hourly)
		if err := allServices.Scheduler.AddJob(rentReviewJob); err != nil {
			return &App{}, log.Err("failed to register rent review job", err)
		}
		log.Info("Registered rent review job with scheduler")

		if err := allServices.Scheduler.Start(context.Background()); err != nil {
			return &App{}, log.Err("failed to start scheduler", err)
		}
	}

	app := &App{
		Database:     db,
		Config:       config,
		Middleware:   middleware,
		EventBus:     eventBus,
		Websocket:    websocket,
		Services:     allServices,
		Repositories: repos,
		Controllers:  allControllers,
	}

	if err := app.validate(); err != nil {
		return &App{}, log.Err("failed to validate app", err)
	}

	return app, nil
}

func (a *App) validate() error {
	log := logger.New("app").Function("validate")
	if a.Database.SQL == nil {
		return log.ErrMsg("database is nil")
	}

	if a.Config == (config.Config{}) {
		return log.ErrMsg("config is nil")
	}

	nilChecks := []any{
		a.Websocket,
		a.EventBus,
		a.Services.Token,
		a.Services.Transaction,
		a.Services.Scheduler,
		a.Services.FileStore,
		a.Services.Notification,
		a.Services.RentReview,
		a.Repositories.User,
		a.Repositories.Apartment,
		a.Repositories.Maintenance,
		a.Repositories.RentPayment,
		a.Repositories.Notification,
		a.Controllers.Auth,
		a.Controllers.Apartment,
		a.Controllers.Maintenance,
		a.Controllers.Rent,
		a.Controllers.Notification,
	}

	for _, check := range nilChecks {
		if check == nil {
			return log.ErrMsg("nil check failed")
		}
	}

	return nil
}

func (a *App) Close() (err error) {
	if a.EventBus != nil {
		if closeErr := a.EventBus.Close(); closeErr != nil {
			err = closeErr
		}
	}

	if a.Services.Scheduler != nil {
		if closeErr := a.Services.Scheduler.Stop(context.Background()); closeErr != nil {
			err = closeErr
		}
	}

	if dbErr := a.Database.Close(); dbErr != nil {
		err = dbErr
	}

	return err
}
