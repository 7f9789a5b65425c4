package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ukydev/vehicle-monitor/internal/models"
	"github.com/ukydev/vehicle-monitor/internal/service"
)

// VehicleHandler handles vehicle requests.
type VehicleHandler struct {
	vehicles *service.VehicleService
}

// NewVehicleHandler creates a new vehicle handler.
func NewVehicleHandler(vehicles *service.VehicleService) *VehicleHandler {
	return &VehicleHandler{vehicles: vehicles}
}

// Vehicles handles /api/vehicles: GET lists, POST registers.
func (h *VehicleHandler) Vehicles(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		vehicles, err := h.vehicles.List(r.Context(), r.URL.Query().Get("user_id"))
		if err != nil {
			writeError(w, err)
			return
		}
		if vehicles == nil {
			vehicles = []models.Vehicle{}
		}
		writeJSON(w, http.StatusOK, vehicles)

	case http.MethodPost:
		var vehicle models.Vehicle
		if err := json.NewDecoder(r.Body).Decode(&vehicle); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		id, err := h.vehicles.Register(r.Context(), &vehicle)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"vehicle_id": id})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Vehicle handles GET /api/vehicles/{id}?user_id=.
func (h *VehicleHandler) Vehicle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/vehicles/")
	vehicle, err := h.vehicles.Get(r.Context(), r.URL.Query().Get("user_id"), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, vehicle)
}
