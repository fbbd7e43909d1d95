package services

import (
	"log"
	"os"
	"time"

	"journal-review-api/models"

	"github.com/robfig/cron/v3"
)

// systemCaller is the identity the in-process scheduler runs under.
var systemCaller = Caller{RoleID: models.RoleAdmin}

// SweepOverdue marks pending reviews past their due date in still-open rounds
// as overdue. It returns the number of reviews touched. Completed, declined
// and already-overdue reviews are never modified, and closed rounds are left
// alone entirely.
func (s *WorkflowService) SweepOverdue(caller Caller, now time.Time) (int64, error) {
	if err := requireCap(caller, CapSweepOverdue); err != nil {
		return 0, err
	}

	result := s.db.Model(&models.Review{}).
		Where("status = ? AND due_date IS NOT NULL AND due_date < ?", models.ReviewPending, now).
		Where("round_id IN (?)",
			s.db.Model(&models.ReviewRound{}).
				Select("round_id").
				Where("status = ?", models.RoundInProgress)).
		Updates(map[string]interface{}{
			"status":     models.ReviewOverdue,
			"updated_at": now,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// StartOverdueSweep schedules the periodic sweep. The schedule comes from
// OVERDUE_SWEEP_SCHEDULE (cron syntax, default @hourly); "off" disables the
// in-process sweep for deployments that run it from an external scheduler
// via the admin endpoint instead. Returns nil when disabled.
func StartOverdueSweep(svc *WorkflowService) *cron.Cron {
	schedule := os.Getenv("OVERDUE_SWEEP_SCHEDULE")
	if schedule == "" {
		schedule = "@hourly"
	}
	if schedule == "off" {
		log.Println("Overdue review sweep disabled")
		return nil
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(schedule, func() {
		count, err := svc.SweepOverdue(systemCaller, time.Now())
		if err != nil {
			log.Printf("Overdue review sweep failed: %v", err)
			return
		}
		if count > 0 {
			log.Printf("Overdue review sweep marked %d review(s)", count)
		}
	}); err != nil {
		log.Printf("Invalid OVERDUE_SWEEP_SCHEDULE %q: %v", schedule, err)
		return nil
	}
	scheduler.Start()
	log.Printf("Overdue review sweep scheduled (%s)", schedule)
	return scheduler
}
