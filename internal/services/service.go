package services

import (
	"hearth/config"
	"hearth/internal/database"
	"hearth/internal/events"
	"hearth/internal/repositories"
)

type Service struct {
	Token        *TokenService
	Transaction  *TransactionService
	Scheduler    *SchedulerService
	FileStore    *FileStoreService
	Notification *NotificationService
	RentReview   *RentReviewService
}

func New(
	db database.DB,
	config config.Config,
	eventBus *events.EventBus,
	repos repositories.Repository,
) (Service, error) {
	tokenService := NewTokenService(db, config)
	transactionService := NewTransactionService(db)
	schedulerService := NewSchedulerService()

	fileStoreService, err := NewFileStoreService(config)
	if err != nil {
		return Service{}, err
	}

	notificationService := NewNotificationService(repos.Notification, eventBus)
	rentReviewService := NewRentReviewService(repos.RentPayment, notificationService)

	return Service{
		Token:        tokenService,
		Transaction:  transactionService,
		Scheduler:    schedulerService,
		FileStore:    fileStoreService,
		Notification: notificationService,
		RentReview:   rentReviewService,
	}, nil
}
