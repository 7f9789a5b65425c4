package main

import (
	"context"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/vehicle-monitor/internal/config"
	"github.com/ukydev/vehicle-monitor/internal/db"
	"github.com/ukydev/vehicle-monitor/internal/handlers"
	"github.com/ukydev/vehicle-monitor/internal/ingest"
	"github.com/ukydev/vehicle-monitor/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := log.New()
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	client, err := db.ConnectMongo(cfg.MongoURI)
	if err != nil {
		logger.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(context.Background())
	logger.Info("connected to MongoDB")

	database := client.Database(cfg.MongoDB)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.EnsureIndexes(ctx, database); err != nil {
		cancel()
		logger.Fatalf("Failed to create indexes: %v", err)
	}
	cancel()

	trips := &db.MongoTripCollection{Collection: database.Collection("trips")}
	vehicles := &db.MongoVehicleCollection{Collection: database.Collection("vehicles")}
	maintenance := &db.MongoMaintenanceCollection{Collection: database.Collection("maintenance")}
	notifications := &db.MongoNotificationCollection{Collection: database.Collection("notifications")}

	tripService := service.NewTripService(trips, notifications, logger, nil)
	vehicleService := service.NewVehicleService(vehicles, logger)
	maintenanceService := service.NewMaintenanceService(maintenance, notifications, logger)
	notificationService := service.NewNotificationService(notifications, logger)

	ingestor := ingest.NewIngestor(cfg.MQTTBroker, cfg.MQTTClientID, trips, logger)
	if err := ingestor.Start(); err != nil {
		logger.Warnf("Behavior ingest disabled: %v", err)
	} else {
		defer ingestor.Stop()
	}

	tripHandler := handlers.NewTripHandler(tripService)
	vehicleHandler := handlers.NewVehicleHandler(vehicleService)
	maintenanceHandler := handlers.NewMaintenanceHandler(maintenanceService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/trips/start", tripHandler.StartTrip)
	mux.HandleFunc("/api/trips/end", tripHandler.EndTrip)
	mux.HandleFunc("/api/trips/active", tripHandler.ActiveTrip)
	mux.HandleFunc("/api/trips", tripHandler.ListTrips)
	mux.HandleFunc("/api/vehicles", vehicleHandler.Vehicles)
	mux.HandleFunc("/api/vehicles/", vehicleHandler.Vehicle)
	mux.HandleFunc("/api/maintenance", maintenanceHandler.Maintenance)
	mux.HandleFunc("/api/notifications", notificationHandler.ListNotifications)
	mux.HandleFunc("/api/notifications/read", notificationHandler.MarkRead)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	logger.Infof("HTTP server listening on :%s", cfg.ServerPort)
	logger.Fatal(server.ListenAndServe())
}
