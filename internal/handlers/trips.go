package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ukydev/vehicle-monitor/internal/models"
	"github.com/ukydev/vehicle-monitor/internal/service"
)

// TripHandler handles trip lifecycle requests.
type TripHandler struct {
	trips *service.TripService
}

// NewTripHandler creates a new trip handler.
func NewTripHandler(trips *service.TripService) *TripHandler {
	return &TripHandler{trips: trips}
}

// StartTrip handles POST /api/trips/start.
func (h *TripHandler) StartTrip(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		UserID         string          `json:"user_id"`
		VehicleID      string          `json:"vehicle_id"`
		StartLocation  models.Location `json:"start_location"`
		IdempotencyKey string          `json:"idempotency_key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	tripID, err := h.trips.Start(r.Context(), service.StartTripRequest{
		UserID:         req.UserID,
		VehicleID:      req.VehicleID,
		StartLocation:  req.StartLocation,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"trip_id": tripID})
}

// EndTrip handles POST /api/trips/end.
func (h *TripHandler) EndTrip(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		UserID     string                `json:"user_id"`
		VehicleID  string                `json:"vehicle_id"`
		TripID     string                `json:"trip_id"`
		Completion models.TripCompletion `json:"completion"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	err := h.trips.End(r.Context(), service.EndTripRequest{
		UserID:     req.UserID,
		VehicleID:  req.VehicleID,
		TripID:     req.TripID,
		Completion: req.Completion,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "completed"})
}

// ListTrips handles GET /api/trips?user_id=&vehicle_id=.
func (h *TripHandler) ListTrips(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	trips, err := h.trips.List(r.Context(), r.URL.Query().Get("user_id"), r.URL.Query().Get("vehicle_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if trips == nil {
		trips = []models.Trip{}
	}

	writeJSON(w, http.StatusOK, trips)
}

// ActiveTrip handles GET /api/trips/active?user_id=&vehicle_id=.
func (h *TripHandler) ActiveTrip(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	trip, err := h.trips.Active(r.Context(), r.URL.Query().Get("user_id"), r.URL.Query().Get("vehicle_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if trip == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"active": nil})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"active": trip})
}
