// File: salonbook/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"

	"salonbook/config"
	"salonbook/cron"
	"salonbook/database"
	appointmentRepo "salonbook/database/repository/appointment"
	customerRepo "salonbook/database/repository/customer"
	providerRepo "salonbook/database/repository/provider"
	reservationRepo "salonbook/database/repository/reservation"
	"salonbook/handlers"
	"salonbook/middleware"
	"salonbook/routes"
	"salonbook/services/booking"
	"salonbook/services/notification"
	"salonbook/utils"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())
	stripe.Key = config.AppConfig.StripeKey

	// repositories.
	typeRepo := appointmentRepo.NewMongoAppointmentTypeRepo()
	provRepo := providerRepo.NewMongoProviderRepo()
	custRepo := customerRepo.NewMongoCustomerRepo()
	resvRepo := reservationRepo.NewMongoReservationRepo()

	// services.
	notificationService := &notification.DefaultNotificationService{Logger: logger}
	dispatcher := cron.NewAsynqDispatcher()
	cron.InitConfirmationWorker(notificationService)

	bookingService := &booking.DefaultBookingService{
		TypeRepo:        typeRepo,
		ProviderRepo:    provRepo,
		CustomerRepo:    custRepo,
		ReservationRepo: resvRepo,
		CacheClient:     utils.GetCacheClient(),
		Deposits:        booking.NewStripeDepositHandler(logger),
		Confirmations:   dispatcher,
		OfferTTL:        time.Duration(config.AppConfig.SlotOfferTTLMinutes) * time.Minute,
	}

	bookingHandler := handlers.NewBookingHandler(bookingService, logger)

	// Register routes.
	routes.RegisterRoutes(router, bookingHandler)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
