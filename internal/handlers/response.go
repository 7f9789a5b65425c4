package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ukydev/vehicle-monitor/internal/db"
	"github.com/ukydev/vehicle-monitor/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
}

// statusFor maps service and store errors onto HTTP status codes:
// validation failures are 400, missing records 404, and both the
// active-trip conflict and an invalid lifecycle transition are 409.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidUserID),
		errors.Is(err, service.ErrInvalidVehicleID),
		errors.Is(err, service.ErrInvalidTripID),
		errors.Is(err, service.ErrInvalidLocation),
		errors.Is(err, service.ErrInvalidMetrics),
		errors.Is(err, service.ErrInvalidBehavior),
		errors.Is(err, service.ErrInvalidServiceType):
		return http.StatusBadRequest
	case errors.Is(err, db.ErrTripNotFound),
		errors.Is(err, db.ErrVehicleNotFound),
		errors.Is(err, db.ErrNotificationNotFound):
		return http.StatusNotFound
	case errors.Is(err, db.ErrActiveTripExists),
		errors.Is(err, db.ErrTripNotInProgress):
		return http.StatusConflict
	case errors.Is(err, db.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
