package main // Entry point package

import (
	"log"  // Logging library
	"time" // Token TTL arithmetic

	"github.com/joho/godotenv"    // Loads .env files in development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/realmeet/checkin-service/internal/checkin"    // Core token issue/redeem logic
	"github.com/realmeet/checkin-service/internal/config"     // Internal config loader
	"github.com/realmeet/checkin-service/internal/database"   // MySQL connection helper
	"github.com/realmeet/checkin-service/internal/handler"    // HTTP handlers
	"github.com/realmeet/checkin-service/internal/queue"      // RabbitMQ consumer
	"github.com/realmeet/checkin-service/internal/repository" // Data access layer
	"github.com/realmeet/checkin-service/internal/router"     // Route registration
)

func main() {
	_ = godotenv.Load() // Load .env if present; real env always wins

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Repositories over the shared pool.
	reservations := repository.NewReservationRepo(db)
	tokens := repository.NewCheckinTokenRepo(db)
	logs := repository.NewCheckinLogRepo(db)
	profiles := repository.NewProfileRepo(db)
	sessions := repository.NewSessionRepo(db)
	slots := repository.NewSlotRepo(db)

	svc := checkin.NewService(reservations, tokens, logs,
		time.Duration(cfg.CheckinTTLMin)*time.Minute)

	// Redis backs the rate limiter; a nil client disables limiting.
	rdb := config.NewRedisClient()
	limits := config.LoadRateLimits()

	// Consume check-in events in the background.  The consumer reconnects
	// on its own; a dead broker only costs us the event stream.
	go func() {
		if err := queue.StartCheckinConsumer(); err != nil {
			log.Printf("queue consumer stopped: %v", err)
		}
	}()

	e := echo.New() // Create Echo instance
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, profiles, sessions), limits, rdb)
	router.RegisterParticipant(e, handler.NewCheckinHandler(svc), cfg.AccessSecret, limits, rdb)
	router.RegisterStaff(e, handler.NewStaffCheckinHandler(svc), handler.NewStaffSlotsHandler(slots, reservations),
		cfg.PartnerSecret, sessions, profiles, limits, rdb)

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err)
	}
}
