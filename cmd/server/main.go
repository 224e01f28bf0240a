package main

import (
	"database/sql"
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	api "evfleet-ops-backend/internal/api/http"
	"evfleet-ops-backend/internal/config"
	"evfleet-ops-backend/internal/jobs"
	"evfleet-ops-backend/internal/logger"
	"evfleet-ops-backend/internal/messaging"
	"evfleet-ops-backend/internal/repository/postgres"
	"evfleet-ops-backend/internal/scheduler"
	"evfleet-ops-backend/internal/security"
	"evfleet-ops-backend/internal/service"
	"evfleet-ops-backend/internal/storage"
	"evfleet-ops-backend/internal/utils"
)

func main() {
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting EVFleet Ops Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Database
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
	logger.Info("Database connection established")

	store := postgres.NewStore(db)

	// Lookup cache (optional)
	var redisClient redis.UniversalClient
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		logger.Info("Lookup cache enabled", "addr", cfg.Redis.Addr)
	} else {
		logger.Info("Lookup cache disabled (no redis address configured)")
	}

	// Order event producer (optional)
	var publisher messaging.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := messaging.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			logger.Error("Failed to initialize kafka producer", "error", err)
			log.Fatalf("Failed to initialize kafka producer: %v", err)
		}
		defer producer.Close()
		publisher = producer
		logger.Info("Order event producer enabled", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	} else {
		logger.Info("Order event producer disabled (no brokers configured)")
	}

	// Evidence storage
	evidenceStore, err := storage.NewLocalStorage(cfg.Storage.BaseURL, cfg.Storage.EvidenceDir)
	if err != nil {
		logger.Error("Failed to initialize evidence storage", "error", err)
		log.Fatalf("Failed to initialize evidence storage: %v", err)
	}
	logger.Info("Evidence storage initialized", "dir", cfg.Storage.EvidenceDir)

	// Services
	tokenManager := security.NewTokenManager(cfg.JWT.Secret)
	validate := validator.New()
	inspectCfg := utils.InspectionConfig{
		LateFeePerDayCents:        cfg.Penalty.LateFeePerDayCents,
		OdometerLimitKm:           cfg.Penalty.OdometerLimitKm,
		BatteryDropLimitPercent:   cfg.Penalty.BatteryDropLimitPercent,
		ExcessUsageSurchargeCents: cfg.Penalty.ExcessUsageSurchargeCents,
	}

	orderSvc := service.NewOrderService(store.OrderRepository, publisher)
	handoverSvc := service.NewHandoverService(store.OrderRepository, evidenceStore, inspectCfg, publisher, validate)
	lookupSvc := service.NewLookupService(store.OrderRepository, redisClient, time.Duration(cfg.Redis.TTLSeconds)*time.Second)
	emailSvc := service.NewEmailService(cfg.SMTP.APIKey, cfg.SMTP.From, cfg.SMTP.FromName)

	// Reminder jobs
	jobRunner := jobs.NewJobRunner(store.OrderRepository, emailSvc, cfg)
	cronScheduler := scheduler.NewScheduler(jobRunner)
	cronScheduler.Start()
	defer cronScheduler.Stop()

	// HTTP routes
	router := mux.NewRouter()
	api.RegisterEvidenceRoutes(router, evidenceStore)

	authed := router.NewRoute().Subrouter()
	authed.Use(api.AuthMiddleware(tokenManager))
	orderHandler := api.NewOrderHandler(orderSvc, handoverSvc, lookupSvc)
	orderHandler.RegisterRoutes(authed)

	logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
	if err := http.ListenAndServe(cfg.GetServerAddress(), router); err != nil {
		logger.Error("HTTP server stopped", "error", err)
		log.Fatalf("HTTP server stopped: %v", err)
	}
}
