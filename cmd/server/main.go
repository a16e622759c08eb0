package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/tablio/restaurant-reservation/internal/booking"
	"github.com/tablio/restaurant-reservation/internal/config"
	"github.com/tablio/restaurant-reservation/internal/database"
	"github.com/tablio/restaurant-reservation/internal/handler"
	"github.com/tablio/restaurant-reservation/internal/middleware"
	"github.com/tablio/restaurant-reservation/internal/notify"
	"github.com/tablio/restaurant-reservation/internal/repository"
	"github.com/tablio/restaurant-reservation/internal/router"
)

func main() {
	// .env is optional; in production the variables come from the environment.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	// Redis backs rate limiting and response caching. A nil client
	// disables both; the booking engine itself never depends on Redis.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and caching disabled")
	}

	tenantRepo := repository.NewTenantRepo(db)
	tableRepo := repository.NewTableRepo(db)
	settingsRepo := repository.NewSettingsRepo(db)
	resvRepo := repository.NewReservationRepo(db)

	// Lifecycle events flow through an in-process dispatcher to
	// RabbitMQ; the consumer drains the queue into the notification log.
	dispatcher := notify.NewDispatcher(256, notify.Publish)
	defer dispatcher.Close()
	go func() {
		if err := notify.StartConsumer(); err != nil {
			log.Printf("notification consumer stopped: %v", err)
		}
	}()

	svc := booking.NewService(db, tenantRepo, tableRepo, settingsRepo, resvRepo, dispatcher)

	e := echo.New()
	e.HideBanner = true

	router.RegisterRoutes(e)
	router.RegisterPublic(e, handler.NewPublicHandler(svc), tenantRepo,
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
		middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
	)
	router.RegisterStaff(e, handler.NewStaffHandler(svc), cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
