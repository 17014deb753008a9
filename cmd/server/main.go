package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"cargotrack-backend/internal/database"
	"cargotrack-backend/internal/handlers"
	"cargotrack-backend/internal/middleware"
	"cargotrack-backend/internal/models"
	"cargotrack-backend/internal/repository"
	"cargotrack-backend/internal/services"
	"cargotrack-backend/internal/session"
	"cargotrack-backend/internal/tracking"
	"cargotrack-backend/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
)

func main() {
	log.Println("═══════════════════════════════════════════════════════════════════")
	log.Println("🚚 CARGOTRACK BACKEND SERVER STARTING")
	log.Println("═══════════════════════════════════════════════════════════════════")

	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  Warning: .env file not found, using environment variables from system")
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	dbPath := os.Getenv("CARGOTRACK_DB_PATH")
	if dbPath == "" {
		dbPath = "./cargotrack.db"
	}

	store, err := database.Open(dbPath)
	if err != nil {
		log.Println("❌ FATAL ERROR: Database open failed")
		log.Fatal(err)
	}
	defer store.Close()
	log.Println("✅ Database opened")

	if err := store.Migrate(); err != nil {
		log.Println("❌ FATAL ERROR: Database migrations failed")
		log.Fatal(err)
	}
	log.Println("✅ Database migrations completed")

	if err := store.SeedDefaultUsers(context.Background()); err != nil {
		log.Println("❌ FATAL ERROR: Default user seeding failed")
		log.Fatal(err)
	}

	// Session state lives beside the database file.
	sessionDir := os.Getenv("CARGOTRACK_SESSION_DIR")
	if sessionDir == "" {
		sessionDir = "./session"
	}
	sessions, err := session.NewManager(sessionDir)
	if err != nil {
		log.Println("❌ FATAL ERROR: Session storage unavailable")
		log.Fatal(err)
	}
	log.Println("✅ Session storage ready")

	// Firebase Cloud Messaging. Optional: the server runs without push
	// delivery when no credentials are configured.
	var fcmService *services.FCMService
	if fcmCredsBase64 := os.Getenv("FIREBASE_CREDENTIALS_BASE64"); fcmCredsBase64 != "" {
		fcmService, err = services.NewFCMServiceFromBase64(fcmCredsBase64)
		if err != nil {
			log.Printf("⚠️  Failed to initialize FCM from base64: %v (push notifications disabled)", err)
			fcmService = nil
		} else {
			log.Println("✅ Firebase Cloud Messaging initialized from base64 credentials")
		}
	} else {
		fcmCredentialsFile := os.Getenv("FIREBASE_CREDENTIALS_FILE")
		if fcmCredentialsFile == "" {
			fcmCredentialsFile = "./firebase-service-account.json"
		}
		fcmService, err = services.NewFCMService(fcmCredentialsFile)
		if err != nil {
			log.Printf("⚠️  Failed to initialize FCM from file: %v (push notifications disabled)", err)
			fcmService = nil
		} else {
			log.Println("✅ Firebase Cloud Messaging initialized from file")
		}
	}

	userRepo := repository.NewUserRepository(store)
	tripRepo := repository.NewTripRepository(store)

	provider := tracking.NewPushProvider()
	tracker := tracking.NewTracker(store, provider, tracking.Config{
		UpdateInterval:  envDuration("TRACKING_UPDATE_INTERVAL_SECONDS", tracking.DefaultUpdateInterval),
		FastestInterval: envDuration("TRACKING_FASTEST_INTERVAL_SECONDS", tracking.DefaultFastestInterval),
	})
	defer tracker.Stop()
	log.Println("✅ Location tracker ready")

	wsHub := websocket.NewHub()
	go wsHub.Run()
	log.Println("✅ WebSocket hub started")

	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Authentication (no auth required)
	r.Post("/api/auth/login", handlers.Login(userRepo, sessions))

	// WebSocket endpoint (token via query param)
	r.Get("/ws", websocket.HandleWebSocket(wsHub, store))

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth)

			r.Post("/auth/logout", handlers.Logout(sessions))
			r.Get("/auth/status", handlers.GetAuthStatus(sessions))

			// Trips
			r.Get("/trips", handlers.GetTrips(tripRepo))
			r.Get("/trips/counts", handlers.GetTripCounts(tripRepo))
			r.Get("/trips/qr/{code}", handlers.GetTripByQRCode(tripRepo))
			r.Post("/trips", handlers.CreateTrip(tripRepo))
			r.Get("/trips/{id}", handlers.GetTrip(tripRepo))
			r.Patch("/trips/{id}", handlers.UpdateTrip(tripRepo, store, fcmService))
			r.Post("/trips/{id}/status", handlers.UpdateTripStatus(tripRepo, store, fcmService))

			// Trip breadcrumbs
			r.Get("/trips/{id}/locations", handlers.GetTripLocations(tripRepo))
			r.Get("/trips/{id}/locations/latest", handlers.GetLatestTripLocation(tripRepo))
			r.Get("/trips/{id}/locations/count", handlers.GetTripLocationCount(tripRepo))

			// Location tracking loop (sampled every 10 seconds while armed)
			r.Post("/tracking/start", handlers.StartTracking(tracker, provider, tripRepo))
			r.Post("/tracking/stop", handlers.StopTracking(tracker))
			r.Get("/tracking/status", handlers.GetTrackingStatus(tracker))
			r.Post("/tracking/samples", handlers.PushSample(provider))

			// FCM token registration
			r.Post("/fcm-token", handlers.RegisterFCMToken(store))

			// Users (read-only for everyone authenticated)
			r.Get("/users", handlers.GetUsers(userRepo))
			r.Get("/users/counts", handlers.GetUserCounts(userRepo))
			r.Get("/users/{id}", handlers.GetUser(userRepo))
		})

		// Supervisor/manager endpoints
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth)
			r.Use(middleware.RequireType(models.UserTypeSupervisor, models.UserTypeManager))

			r.Delete("/trips/{id}", handlers.DeleteTrip(tripRepo))
			r.Delete("/trips/{id}/locations", handlers.DeleteTripLocations(tripRepo))
			r.Delete("/locations", handlers.PurgeOldLocations(tripRepo))
		})

		// Manager-only endpoints
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth)
			r.Use(middleware.RequireType(models.UserTypeManager))

			r.Post("/users", handlers.CreateUser(userRepo))
			r.Patch("/users/{id}/active", handlers.SetUserActive(userRepo))
			r.Delete("/users/{id}", handlers.DeleteUser(userRepo))
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
		log.Printf("⚠️  PORT not set, using default: %s", port)
	}

	log.Println("═══════════════════════════════════════════════════════════════════")
	log.Println("✅ ALL INITIALIZATION COMPLETE")
	log.Printf("🚚 Server starting on http://localhost:%s", port)
	log.Println("═══════════════════════════════════════════════════════════════════")

	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Println("❌ FATAL ERROR: Server failed to start")
		log.Fatal(err)
	}
}

// envDuration reads a whole-second duration from the environment.
func envDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		log.Printf("⚠️  Invalid %s=%q, using default %v", key, raw, fallback)
		return fallback
	}
	return time.Duration(seconds) * time.Second
}
