package main

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/benmalka/gatherly/docs"
	"github.com/benmalka/gatherly/internal/auth"
	"github.com/benmalka/gatherly/internal/config"
	"github.com/benmalka/gatherly/internal/database"
	"github.com/benmalka/gatherly/internal/event"
	"github.com/benmalka/gatherly/internal/group"
	"github.com/benmalka/gatherly/internal/mail"
	"github.com/benmalka/gatherly/internal/user"
	mw "github.com/benmalka/gatherly/pkg/middleware"
)

// @title           Gatherly API
// @version         1.0
// @description     CRUD backend for users, groups and events with JWT authentication.
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := config.Load()

	// Initialize database connection
	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Println("Connected to database successfully")

	// Token service (signing secret and TTL come from config, never ambient)
	tokenService := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)

	// Mail sender
	var sender mail.Sender
	switch cfg.MailProvider {
	case "gmail":
		sender = mail.NewGmailSender(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRefreshToken, cfg.MailFrom)
	default:
		sender = mail.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)
	}

	// User feature
	userRepo := user.NewRepository(db)
	userService := user.NewService(userRepo, tokenService, cfg.BcryptCost)

	// Authenticator: store-backed and token-embedded role resolution
	authenticator := mw.NewAuthenticator(tokenService, userService)
	userHandler := user.NewHandler(userService, authenticator)

	// Group feature
	groupRepo := group.NewRepository(db)
	groupService := group.NewService(groupRepo, userService)
	groupHandler := group.NewHandler(groupService, authenticator)

	// Event feature
	eventRepo := event.NewRepository(db)
	eventService := event.NewService(eventRepo, userService, sender)
	eventHandler := event.NewHandler(eventService, authenticator)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Mount feature routers
		r.Mount("/users", userHandler.Routes())
		r.Mount("/groups", groupHandler.Routes())
		r.Mount("/events", eventHandler.Routes())
	})

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
