package jobs

import (
	"context"
	"time"

	"hearth/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

type RentReviewJob struct {
	rentReview *services.RentReviewService
	log        logger.Logger
	schedule   services.Schedule
}

func NewRentReviewJob(
	rentReview *services.RentReviewService,
	schedule services.Schedule,
) *RentReviewJob {
	log := logger.New("rentReviewJob")
	log.Info("Creating new rent review job", "schedule", schedule)

	return &RentReviewJob{
		rentReview: rentReview,
		log:        log,
		schedule:   schedule,
	}
}

func (j *RentReviewJob) Name() string {
	return "RentReview"
}

func (j *RentReviewJob) Execute(ctx context.Context) error {
	log := j.log.Function("Execute")

	log.Info("Starting rent review scan")

	result, err := j.rentReview.Scan(ctx, time.Now())
	if err != nil {
		return log.Err("rent review scan failed", err)
	}

	log.Info(
		"Rent review scan completed",
		"markedOverdue", result.MarkedOverdue,
		"overdueReminders", result.OverdueReminders,
		"initialReminders", result.InitialReminders,
	)
	return nil
}

func (j *RentReviewJob) Schedule() services.Schedule {
	return j.schedule
}
