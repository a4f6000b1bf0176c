package repositories

import (
	"errors"

	"hearth/internal/database"

	"github.com/jackc/pgx/v5/pgconn"
)

type Repository struct {
	User         UserRepository
	Apartment    ApartmentRepository
	Maintenance  MaintenanceRepository
	RentPayment  RentPaymentRepository
	Notification NotificationRepository
}

func New(db database.DB) Repository {
	return Repository{
		User:         NewUserRepository(db), // User repo needs cache for caching
		Apartment:    NewApartmentRepository(db),
		Maintenance:  NewMaintenanceRepository(db),
		RentPayment:  NewRentPaymentRepository(db),
		Notification: NewNotificationRepository(db),
	}
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505). The gorm postgres driver runs on pgx, so
// violations surface as *pgconn.PgError.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
