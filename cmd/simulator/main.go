package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
)

// Location represents a geographical location with latitude and longitude coordinates.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// DrivingBehavior holds the event counters accumulated during a simulated trip.
type DrivingBehavior struct {
	HarshBraking      int `json:"harsh_braking"`
	RapidAcceleration int `json:"rapid_acceleration"`
	SharpCornering    int `json:"sharp_cornering"`
	Speeding          int `json:"speeding"`
}

// Cities for realistic routes
var cities = []Location{
	{Lat: 51.5074, Lon: -0.1278},  // London
	{Lat: 40.7128, Lon: -74.0060}, // New York
	{Lat: 40.4168, Lon: -3.7038},  // Madrid
	{Lat: 48.8566, Lon: 2.3522},   // Paris
	{Lat: 41.0082, Lon: 28.9784},  // Istanbul
	{Lat: 52.5200, Lon: 13.4050},  // Berlin
	{Lat: 35.6762, Lon: 139.6503}, // Tokyo
	{Lat: 43.6532, Lon: -79.3832}, // Toronto
	{Lat: 25.2048, Lon: 55.2708},  // Dubai
	{Lat: 19.0760, Lon: 72.8777},  // Mumbai
}

func jitterLocation(base Location, meters float64) Location {
	latMetersPerDeg := 111320.0
	lonMetersPerDeg := 111320.0 * math.Cos(base.Lat*math.Pi/180)
	dLat := (rand.Float64()*2 - 1) * (meters / latMetersPerDeg)
	dLon := (rand.Float64()*2 - 1) * (meters / lonMetersPerDeg)
	return Location{Lat: base.Lat + dLat, Lon: base.Lon + dLon}
}

func randomLocation() Location {
	base := cities[rand.Intn(len(cities))]
	return jitterLocation(base, 500)
}

func haversineKm(a, b Location) float64 {
	R := 6371.0
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	s := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(s), math.Sqrt(1-s))
	return R * c
}

func postJSON(url string, payload interface{}) (map[string]interface{}, int, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal payload: %w", err)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Post(url, "application/json", bytes.NewBuffer(data))
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
	}
	return result, resp.StatusCode, nil
}

func startTrip(apiURL, userID, vehicleID string, start Location) (string, error) {
	payload := map[string]interface{}{
		"user_id":         userID,
		"vehicle_id":      vehicleID,
		"start_location":  start,
		"idempotency_key": fmt.Sprintf("sim-%s-%d", vehicleID, time.Now().UnixNano()),
	}

	result, status, err := postJSON(apiURL+"/api/trips/start", payload)
	if err != nil {
		return "", err
	}
	if status != http.StatusCreated {
		return "", fmt.Errorf("trip start failed with status: %d", status)
	}

	tripID, ok := result["trip_id"].(string)
	if !ok {
		return "", fmt.Errorf("invalid trip ID in response")
	}
	return tripID, nil
}

func endTrip(apiURL, userID, vehicleID, tripID string, end Location, distance, duration, fuelUsed, maxSpeed float64, behavior DrivingBehavior) error {
	payload := map[string]interface{}{
		"user_id":    userID,
		"vehicle_id": vehicleID,
		"trip_id":    tripID,
		"completion": map[string]interface{}{
			"end_location":     end,
			"distance":         distance,
			"duration":         duration,
			"fuel_used":        fuelUsed,
			"max_speed":        maxSpeed,
			"driving_behavior": behavior,
		},
	}

	_, status, err := postJSON(apiURL+"/api/trips/end", payload)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("trip end failed with status: %d", status)
	}
	return nil
}

var behaviorEvents = []string{"harsh_braking", "rapid_acceleration", "sharp_cornering", "speeding"}

func publishBehavior(client mqtt.Client, userID, vehicleID, event string) error {
	topic := fmt.Sprintf("fleet/%s/%s/behavior", userID, vehicleID)
	payload, err := json.Marshal(map[string]interface{}{
		"event":     event,
		"timestamp": time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	token := client.Publish(topic, 1, false, payload)
	token.Wait()
	return token.Error()
}

// runTrip simulates one complete trip: start over HTTP, behavior events over
// MQTT while driving, completion with accumulated metrics.
func runTrip(apiURL string, broker mqtt.Client, userID, vehicleID string, ticks int, tickInterval time.Duration) error {
	start := randomLocation()

	tripID, err := startTrip(apiURL, userID, vehicleID, start)
	if err != nil {
		return fmt.Errorf("failed to start trip: %w", err)
	}

	log.WithFields(log.Fields{
		"vehicle_id": vehicleID,
		"trip_id":    tripID,
	}).Info("Trip started")

	behavior := DrivingBehavior{}
	position := start
	distance := 0.0
	maxSpeed := 0.0
	tripStart := time.Now()

	for i := 0; i < ticks; i++ {
		time.Sleep(tickInterval)

		next := jitterLocation(position, 800)
		distance += haversineKm(position, next)
		position = next

		speed := 30 + rand.Float64()*80
		if speed > maxSpeed {
			maxSpeed = speed
		}

		// Roughly one behavior event every few ticks.
		if rand.Float64() < 0.3 {
			event := behaviorEvents[rand.Intn(len(behaviorEvents))]
			switch event {
			case "harsh_braking":
				behavior.HarshBraking++
			case "rapid_acceleration":
				behavior.RapidAcceleration++
			case "sharp_cornering":
				behavior.SharpCornering++
			case "speeding":
				behavior.Speeding++
			}
			if err := publishBehavior(broker, userID, vehicleID, event); err != nil {
				log.WithError(err).Warn("Failed to publish behavior event")
			}
		}
	}

	duration := time.Since(tripStart).Minutes()
	fuelUsed := distance * (0.06 + rand.Float64()*0.04) // 6-10 l/100km

	if err := endTrip(apiURL, userID, vehicleID, tripID, position, distance, duration, fuelUsed, maxSpeed, behavior); err != nil {
		return fmt.Errorf("failed to end trip: %w", err)
	}

	log.WithFields(log.Fields{
		"vehicle_id": vehicleID,
		"trip_id":    tripID,
		"distance":   fmt.Sprintf("%.2f", distance),
		"events":     behavior.HarshBraking + behavior.RapidAcceleration + behavior.SharpCornering + behavior.Speeding,
	}).Info("Trip completed")

	return nil
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func main() {
	apiURL := os.Getenv("API_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8080"
	}
	brokerURL := os.Getenv("MQTT_BROKER")
	if brokerURL == "" {
		brokerURL = "tcp://localhost:1883"
	}
	userID := os.Getenv("SIM_USER_ID")
	if userID == "" {
		userID = "sim-user"
	}
	numVehicles := getEnvInt("SIM_VEHICLES", 3)
	tripTicks := getEnvInt("SIM_TRIP_TICKS", 20)

	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID("vehicle-monitor-simulator").
		SetConnectRetry(true)
	broker := mqtt.NewClient(opts)
	if token := broker.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalf("Failed to connect to MQTT broker: %v", token.Error())
	}
	defer broker.Disconnect(250)

	log.WithFields(log.Fields{
		"api":      apiURL,
		"broker":   brokerURL,
		"vehicles": numVehicles,
	}).Info("Simulator started")

	for {
		for v := 0; v < numVehicles; v++ {
			vehicleID := fmt.Sprintf("sim-vehicle-%d", v)
			if err := runTrip(apiURL, broker, userID, vehicleID, tripTicks, time.Second); err != nil {
				log.WithError(err).WithField("vehicle_id", vehicleID).Error("Trip simulation failed")
			}
		}
		time.Sleep(5 * time.Second)
	}
}
