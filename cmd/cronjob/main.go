package main

import (
	"database/sql"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"

	"evfleet-ops-backend/internal/config"
	"evfleet-ops-backend/internal/jobs"
	"evfleet-ops-backend/internal/logger"
	"evfleet-ops-backend/internal/repository/postgres"
	"evfleet-ops-backend/internal/scheduler"
	"evfleet-ops-backend/internal/service"
)

func main() {
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a single job and exit: send-return-reminders, send-overdue-reminders, all-nightly")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting EVFleet cron runner...")

	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}

	store := postgres.NewStore(db)
	emailSvc := service.NewEmailService(cfg.SMTP.APIKey, cfg.SMTP.From, cfg.SMTP.FromName)
	jobRunner := jobs.NewJobRunner(store.OrderRepository, emailSvc, cfg)

	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		switch *runOnce {
		case "send-return-reminders":
			jobRunner.SendReturnReminders()
		case "send-overdue-reminders":
			jobRunner.SendOverdueReminders()
		case "all-nightly":
			jobRunner.RunAllNightlyJobs()
		default:
			log.Fatalf("Unknown job: %s", *runOnce)
		}
		logger.Info("Job completed", "job", *runOnce)
		return
	}

	cronScheduler := scheduler.NewScheduler(jobRunner)
	cronScheduler.Start()
	logger.Info("Scheduler started, waiting for jobs")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down scheduler")
	cronScheduler.Stop()
}
