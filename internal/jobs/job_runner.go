package jobs

import (
	"evfleet-ops-backend/internal/config"
	"evfleet-ops-backend/internal/logger"
	"evfleet-ops-backend/internal/repository"
	"evfleet-ops-backend/internal/service"
)

// JobRunner coordinates the scheduled reminder jobs. Jobs never mutate
// order status: the lifecycle's five states are closed and every write
// goes through the state machine. Overdue is a notification, not a state.
type JobRunner struct {
	orderRepo repository.OrderRepository
	email     service.EmailService
	config    *config.Config
}

func NewJobRunner(orderRepo repository.OrderRepository, email service.EmailService, cfg *config.Config) *JobRunner {
	return &JobRunner{
		orderRepo: orderRepo,
		email:     email,
		config:    cfg,
	}
}

func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// RunAllNightlyJobs runs all nightly jobs (for manual execution)
func (jr *JobRunner) RunAllNightlyJobs() {
	jr.SendReturnReminders()
	jr.SendOverdueReminders()
}
