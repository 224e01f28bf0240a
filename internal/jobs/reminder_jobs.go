package jobs

import (
	"context"
	"time"

	"evfleet-ops-backend/internal/logger"
	"evfleet-ops-backend/internal/utils"
)

// SendReturnReminders mails renters whose return deadline falls within
// the next day. The deadline is the start of the planned end date, so an
// order ending tomorrow is due back tonight.
func (jr *JobRunner) SendReturnReminders() {
	jr.runWithRecovery("SendReturnReminders", func() {
		ctx := context.Background()
		cutoff := time.Now().AddDate(0, 0, 2)

		orders, err := jr.orderRepo.ListOverdueRenting(ctx, cutoff)
		if err != nil {
			logger.Error("Failed to list due rentals", "error", err)
			return
		}

		count := 0
		for _, o := range orders {
			if utils.LateDays(o.PlannedEndDate, time.Now()) > 0 {
				continue // overdue already, handled by SendOverdueReminders
			}
			if o.RenterEmail == "" {
				continue
			}
			err := jr.email.SendReturnReminder(ctx, o.RenterEmail, o.RenterName, o.ID, o.PlannedEndDate.Format("2006-01-02"))
			if err != nil {
				logger.Error("Failed to send return reminder", "order_id", o.ID, "error", err)
				continue
			}
			count++
		}
		logger.Info("Sent return reminders", "count", count)
	})
}

// SendOverdueReminders mails renters whose rental is past its agreed
// return date, with the accrued late-day count.
func (jr *JobRunner) SendOverdueReminders() {
	jr.runWithRecovery("SendOverdueReminders", func() {
		ctx := context.Background()

		orders, err := jr.orderRepo.ListOverdueRenting(ctx, time.Now())
		if err != nil {
			logger.Error("Failed to list overdue rentals", "error", err)
			return
		}

		count := 0
		for _, o := range orders {
			daysLate := utils.LateDays(o.PlannedEndDate, time.Now())
			if daysLate == 0 || o.RenterEmail == "" {
				continue
			}
			err := jr.email.SendOverdueNotice(ctx, o.RenterEmail, o.RenterName, o.ID, daysLate)
			if err != nil {
				logger.Error("Failed to send overdue notice", "order_id", o.ID, "error", err)
				continue
			}
			logger.Debug("Sent overdue notice", "order_id", o.ID, "days_late", daysLate)
			count++
		}
		logger.Info("Sent overdue notices", "count", count)
	})
}
