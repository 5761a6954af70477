package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rishmeh/bhookh/internal/config"
	"github.com/rishmeh/bhookh/internal/database"
	"github.com/rishmeh/bhookh/internal/handlers"
	"github.com/rishmeh/bhookh/internal/jobs"
	"github.com/rishmeh/bhookh/internal/repository"
	cronjobs "github.com/rishmeh/bhookh/internal/scheduler"
	"github.com/rishmeh/bhookh/internal/services"
	"github.com/rishmeh/bhookh/pkg/logger"
	"github.com/rishmeh/bhookh/pkg/middleware"
	"github.com/rs/cors"
)

func main() {
	// Load configuration from .env file
	cfg := config.LoadConfig()

	logger.InitLogger()
	logger.Log.Info("Logger initialized")

	// Connect to MongoDB and set up the donation TTL index
	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Database connection error: %v", err)
	}

	// --- Repositories ---
	donationRepo := repository.NewDonationRepository(db)
	findRepo := repository.NewFindRequestRepository(db)

	// --- Services ---
	donationService := services.NewDonationService(donationRepo)
	findService := services.NewFindRequestService(findRepo)

	// --- Handlers ---
	donationHandler := handlers.NewDonationHandler(donationService)
	findHandler := handlers.NewFindRequestHandler(findService)

	// Initialize Gorilla Mux router
	router := mux.NewRouter()

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/donate", donationHandler.CreateDonationHandler).Methods("POST")
	api.HandleFunc("/donations", donationHandler.GetDonationsHandler).Methods("GET")
	// Registered before /donations/{id} so "nearby" is not taken for an ID
	api.HandleFunc("/donations/nearby", donationHandler.NearbyDonationsHandler).Methods("POST")
	api.HandleFunc("/donations/{id}", donationHandler.GetDonationHandler).Methods("GET")
	api.HandleFunc("/donations/{id}", donationHandler.UpdateDonationHandler).Methods("PUT")
	api.HandleFunc("/donations/{id}", donationHandler.DeleteDonationHandler).Methods("DELETE")
	api.HandleFunc("/find", findHandler.CreateFindRequestHandler).Methods("POST")
	api.HandleFunc("/find", findHandler.GetFindRequestsHandler).Methods("GET")
	api.HandleFunc("/stats", donationHandler.GetStatsHandler).Methods("GET")

	// Apply middleware for logging
	router.Use(middleware.LoggingMiddleware)

	// Start the hourly expiry sweep; the store TTL index is the primary
	// expiry path, the sweep backstops it.
	janitor := jobs.NewExpiryJanitor(donationRepo)
	janitorCron := cronjobs.StartJanitorCron(janitor)
	defer janitorCron.Stop()

	c := cors.New(cors.Options{
		AllowedOrigins: []string{cfg.CORSOrigin},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	})

	handler := c.Handler(router)

	fmt.Printf("Server running on port %s\n", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, handler))
}
