package main

import (
	"log"
	"time"

	"github.com/campushub/campushub/db"
	"github.com/campushub/campushub/internal/auth"
	"github.com/campushub/campushub/internal/config"
	"github.com/campushub/campushub/internal/handlers"
	"github.com/campushub/campushub/internal/middleware"
	"github.com/campushub/campushub/internal/notifier"
	"github.com/campushub/campushub/internal/router"
	"github.com/campushub/campushub/internal/services"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	gdb, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.Migrate(gdb); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, time.Duration(cfg.TokenTTLHours)*time.Hour)

	mailer := notifier.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.EmailUser, cfg.EmailPass)
	notify := notifier.New(mailer, 256)
	notify.Start()
	defer notify.Stop()

	reconciler := services.NewReconciler(gdb, time.Duration(cfg.ReconcileIntervalMinutes)*time.Minute)
	reconciler.Start()
	defer reconciler.Stop()

	accounts := services.NewAccountService(gdb, tokens, notify)
	events := services.NewEventService(gdb, notify)
	registrations := services.NewRegistrationService(gdb, notify)

	guard := middleware.NewGuard(tokens, gdb)
	authHandler := handlers.NewAuthHandler(accounts)
	eventHandler := handlers.NewEventHandler(events, registrations)
	registrationHandler := handlers.NewRegistrationHandler(registrations)

	r := router.New(guard, authHandler, eventHandler, registrationHandler)

	log.Printf("Starting server on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
