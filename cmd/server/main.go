package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/nwssu-ccis/campus-parking/internal/booking"
	"github.com/nwssu-ccis/campus-parking/internal/config"
	"github.com/nwssu-ccis/campus-parking/internal/database"
	"github.com/nwssu-ccis/campus-parking/internal/handler"
	"github.com/nwssu-ccis/campus-parking/internal/queue"
	"github.com/nwssu-ccis/campus-parking/internal/repository"
	"github.com/nwssu-ccis/campus-parking/internal/router"
	queue_publisher "github.com/nwssu-ccis/campus-parking/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment")
	}
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := database.VerifySchema(ctx, db); err != nil {
		log.Printf("schema verification: %v; bootstrapping", err)
		if err := database.EnsureSchema(ctx, db); err != nil {
			log.Fatalf("schema bootstrap failed: %v", err)
		}
	}

	rdb := config.NewRedisClient() // nil when Redis is absent; limiter/cache pass through

	userRepo := repository.NewUserRepo(db)
	slotRepo := repository.NewSlotRepo(db)
	bookingRepo := repository.NewBookingRepo(db)
	tokenRepo := repository.NewTokenRepo(db)

	manager := booking.NewManager(db, userRepo, slotRepo, bookingRepo,
		queue_publisher.PublishBookingConfirmed)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	router.RegisterRoutes(e, cfg, router.Handlers{
		Auth:    handler.NewAuthHandler(cfg, userRepo, tokenRepo),
		Slots:   handler.NewSlotHandler(slotRepo, bookingRepo),
		Booking: handler.NewBookingHandler(manager, bookingRepo),
		Admin:   handler.NewAdminHandler(slotRepo, bookingRepo, userRepo),
	}, rdb)

	// Background consumer writes booking confirmations to logs/booking.log.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	log.Printf("campus-parking listening on :%s (env=%s)", cfg.Port, cfg.Env)
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
