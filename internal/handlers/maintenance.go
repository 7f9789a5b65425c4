package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ukydev/vehicle-monitor/internal/models"
	"github.com/ukydev/vehicle-monitor/internal/service"
)

// MaintenanceHandler handles maintenance requests.
type MaintenanceHandler struct {
	maintenance *service.MaintenanceService
}

// NewMaintenanceHandler creates a new maintenance handler.
func NewMaintenanceHandler(maintenance *service.MaintenanceService) *MaintenanceHandler {
	return &MaintenanceHandler{maintenance: maintenance}
}

// Maintenance handles /api/maintenance: GET lists, POST schedules.
func (h *MaintenanceHandler) Maintenance(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		records, err := h.maintenance.List(r.Context(), r.URL.Query().Get("user_id"), r.URL.Query().Get("vehicle_id"))
		if err != nil {
			writeError(w, err)
			return
		}
		if records == nil {
			records = []models.Maintenance{}
		}
		writeJSON(w, http.StatusOK, records)

	case http.MethodPost:
		var record models.Maintenance
		if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		id, err := h.maintenance.Schedule(r.Context(), &record)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"maintenance_id": id})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
