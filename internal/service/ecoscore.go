package service

import "github.com/ukydev/vehicle-monitor/internal/models"

// Eco-score penalty weights per behavior event. Harsh braking and rapid
// acceleration cost more than cornering and speeding.
const (
	harshBrakingWeight      = 5.0
	rapidAccelerationWeight = 4.0
	sharpCorneringWeight    = 2.0
	speedingWeight          = 2.0

	// One exposure unit is 10 km of driving, or 30 minutes when the trip
	// covered no distance. The floor keeps the per-event penalty finite on
	// very short trips while still penalizing them harder than long ones.
	exposureDistanceKm  = 10.0
	exposureDurationMin = 30.0
	exposureFloor       = 0.5
)

// ComputeEcoScore derives the 0-100 eco-score for a completed trip from its
// driving-behavior counters. The penalty is weighted by event rate, not raw
// count: the same number of events on a shorter trip lowers the score more.
// The function is pure and monotonically non-increasing in every counter.
func ComputeEcoScore(behavior models.DrivingBehavior, distanceKm, durationMin float64) float64 {
	exposure := distanceKm / exposureDistanceKm
	if exposure <= 0 {
		exposure = durationMin / exposureDurationMin
	}
	if exposure < exposureFloor {
		exposure = exposureFloor
	}

	penalty := (harshBrakingWeight*float64(behavior.HarshBraking) +
		rapidAccelerationWeight*float64(behavior.RapidAcceleration) +
		sharpCorneringWeight*float64(behavior.SharpCornering) +
		speedingWeight*float64(behavior.Speeding)) / exposure

	score := 100.0 - penalty
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
