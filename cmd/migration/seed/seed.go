package seed

import (
	"time"

	"hearth/config"
	. "hearth/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func stringPtr(s string) *string {
	return &s
}

// Seed loads a small development fixture: one owner with two apartments, a
// tenant living in the first, a plumber, an open maintenance request, and a
// pending rent payment. Every account's password is "password".
func Seed(db *gorm.DB, config config.Config, log logger.Logger) error {
	log = log.Function("seed")
	log.Info("Seeding development data")

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return log.Err("failed to hash seed password", err)
	}

	owner := User{
		FirstName:    "Olivia",
		LastName:     "Marsh",
		Email:        "olivia.marsh@example.com",
		Phone:        "555-201-0001",
		Role:         RoleOwner,
		PasswordHash: string(hash),
	}
	tenant := User{
		FirstName:    "Theo",
		LastName:     "Nakamura",
		Email:        "theo.nakamura@example.com",
		Phone:        "555-201-0002",
		Role:         RoleTenant,
		PasswordHash: string(hash),
	}
	provider := User{
		FirstName:    "Priya",
		LastName:     "Sharma",
		Email:        "priya.sharma@example.com",
		Phone:        "555-201-0003",
		Role:         RoleServiceProvider,
		PasswordHash: string(hash),
		CompanyName:  stringPtr("Sharma Plumbing & Heating"),
		ServiceTypes: datatypes.NewJSONSlice([]ServiceType{ServicePlumbing, ServiceHVAC}),
	}

	for _, user := range []*User{&owner, &tenant, &provider} {
		var existing User
		if err := db.First(&existing, "email = ?", user.Email).Error; err == nil {
			log.Info("User already exists", "email", user.Email)
			*user = existing
			continue
		}
		log.Info("Seeding user", "email", user.Email, "role", user.Role)
		if err := db.Create(user).Error; err != nil {
			return log.Err("failed to create user", err, "email", user.Email)
		}
	}

	occupied := Apartment{
		Number:          "A-101",
		OwnerID:         owner.ID,
		Location:        "12 Main Street, Springfield",
		RentAmount:      decimal.NewFromInt(1450),
		RentDueDay:      1,
		Status:          ApartmentOccupied,
		CurrentTenantID: &tenant.ID,
	}
	vacant := Apartment{
		Number:     "B-202",
		OwnerID:    owner.ID,
		Location:   "12 Main Street, Springfield",
		RentAmount: decimal.NewFromInt(1650),
		RentDueDay: 5,
		Status:     ApartmentVacant,
	}

	for _, apartment := range []*Apartment{&occupied, &vacant} {
		var existing Apartment
		err := db.First(
			&existing,
			"owner_id = ? AND number = ?",
			apartment.OwnerID,
			apartment.Number,
		).Error
		if err == nil {
			log.Info("Apartment already exists", "number", apartment.Number)
			*apartment = existing
			continue
		}
		log.Info("Seeding apartment", "number", apartment.Number)
		if err := db.Create(apartment).Error; err != nil {
			return log.Err("failed to create apartment", err, "number", apartment.Number)
		}
	}

	if tenant.CurrentApartmentID == nil {
		tenant.CurrentApartmentID = &occupied.ID
		if err := db.Model(&tenant).
			Update("current_apartment_id", occupied.ID).Error; err != nil {
			return log.Err("failed to link tenant to apartment", err)
		}
	}

	var requestCount int64
	db.Model(&MaintenanceRequest{}).Where("apartment_id = ?", occupied.ID).Count(&requestCount)
	if requestCount == 0 {
		request := MaintenanceRequest{
			Title:       "Kitchen faucet dripping",
			Description: "Steady drip from the kitchen faucet, worse with hot water.",
			ApartmentID: occupied.ID,
			TenantID:    tenant.ID,
			OwnerID:     owner.ID,
			Type:        RequestPlumbing,
			Priority:    PriorityMedium,
			Status:      RequestPending,
		}
		log.Info("Seeding maintenance request", "title", request.Title)
		if err := db.Create(&request).Error; err != nil {
			return log.Err("failed to create maintenance request", err)
		}
	}

	var paymentCount int64
	db.Model(&RentPayment{}).Where("apartment_id = ?", occupied.ID).Count(&paymentCount)
	if paymentCount == 0 {
		now := time.Now()
		dueDate := time.Date(now.Year(), now.Month()+1, occupied.RentDueDay, 0, 0, 0, 0, time.UTC)
		payment := RentPayment{
			ApartmentID: occupied.ID,
			TenantID:    tenant.ID,
			Amount:      occupied.RentAmount,
			DueDate:     dueDate,
			Status:      PaymentPending,
		}
		log.Info("Seeding rent payment", "dueDate", dueDate)
		if err := db.Create(&payment).Error; err != nil {
			return log.Err("failed to create rent payment", err)
		}
	}

	log.Info("Development data seeded")
	return nil
}
