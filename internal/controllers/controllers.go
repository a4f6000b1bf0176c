package controllers

import (
	"hearth/internal/repositories"
	"hearth/internal/services"

	apartmentController "hearth/internal/controllers/apartments"
	authController "hearth/internal/controllers/auth"
	maintenanceController "hearth/internal/controllers/maintenance"
	notificationController "hearth/internal/controllers/notifications"
	rentController "hearth/internal/controllers/rent"
)

type Controllers struct {
	Auth         authController.AuthControllerInterface
	Apartment    apartmentController.ApartmentControllerInterface
	Maintenance  maintenanceController.MaintenanceControllerInterface
	Rent         rentController.RentControllerInterface
	Notification notificationController.NotificationControllerInterface
}

func New(
	services services.Service,
	repos repositories.Repository,
) Controllers {
	return Controllers{
		Auth:         authController.New(repos, services),
		Apartment:    apartmentController.New(repos, services),
		Maintenance:  maintenanceController.New(repos, services),
		Rent:         rentController.New(repos, services),
		Notification: notificationController.New(repos),
	}
}
