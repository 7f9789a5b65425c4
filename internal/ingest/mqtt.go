// Package ingest consumes driving-behavior events from the MQTT broker and
// accumulates them onto the vehicle's in-progress trip.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/vehicle-monitor/internal/db"
)

const (
	behaviorTopicFilter = "fleet/+/+/behavior"
	applyTimeout        = 5 * time.Second
)

// BehaviorEvent is the payload published on fleet/{userId}/{vehicleId}/behavior.
type BehaviorEvent struct {
	Event     string    `json:"event"` // "harsh_braking", "rapid_acceleration", "sharp_cornering", "speeding"
	Timestamp time.Time `json:"timestamp"`
}

// counterField maps an event type to the trip's driving-behavior counter.
// Counters only accumulate; there is no decrement event.
var counterField = map[string]string{
	"harsh_braking":      "harsh_braking",
	"rapid_acceleration": "rapid_acceleration",
	"sharp_cornering":    "sharp_cornering",
	"speeding":           "speeding",
}

// Ingestor subscribes to behavior topics and applies events to active trips.
type Ingestor struct {
	client mqtt.Client
	trips  db.TripCollection
	logger *log.Logger
}

// NewIngestor creates an Ingestor connected to the given broker.
func NewIngestor(broker, clientID string, trips db.TripCollection, logger *log.Logger) *Ingestor {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true)

	return &Ingestor{
		client: mqtt.NewClient(opts),
		trips:  trips,
		logger: logger,
	}
}

// Start connects to the broker and subscribes to the behavior topic.
func (i *Ingestor) Start() error {
	if token := i.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt connect failed: %w", token.Error())
	}
	if token := i.client.Subscribe(behaviorTopicFilter, 1, i.handleMessage); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt subscribe failed: %w", token.Error())
	}
	i.logger.WithField("topic", behaviorTopicFilter).Info("behavior ingest subscribed")
	return nil
}

// Stop unsubscribes, waits for the broker to acknowledge, and disconnects.
func (i *Ingestor) Stop() {
	if token := i.client.Unsubscribe(behaviorTopicFilter); token.Wait() && token.Error() != nil {
		i.logger.WithError(token.Error()).Warn("mqtt unsubscribe failed")
	}
	i.client.Disconnect(250)
}

func (i *Ingestor) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), applyTimeout)
	defer cancel()

	if err := i.Apply(ctx, msg.Topic(), msg.Payload()); err != nil {
		i.logger.WithError(err).WithField("topic", msg.Topic()).Warn("behavior event dropped")
	}
}

// Apply parses one behavior message and increments the matching counter on
// the vehicle's active trip. Events for vehicles with no trip in progress
// are discarded: behavior outside a trip does not score anything.
func (i *Ingestor) Apply(ctx context.Context, topic string, payload []byte) error {
	userID, vehicleID, err := ParseBehaviorTopic(topic)
	if err != nil {
		return err
	}

	var event BehaviorEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("invalid behavior payload: %w", err)
	}

	counter, ok := counterField[event.Event]
	if !ok {
		return fmt.Errorf("unknown behavior event %q", event.Event)
	}

	err = i.trips.IncrementBehavior(ctx, userID, vehicleID, counter)
	if errors.Is(err, db.ErrTripNotFound) {
		i.logger.WithFields(log.Fields{
			"user_id":    userID,
			"vehicle_id": vehicleID,
			"event":      event.Event,
		}).Debug("behavior event with no active trip")
		return nil
	}
	return err
}

// ParseBehaviorTopic extracts the user and vehicle IDs from a
// fleet/{userId}/{vehicleId}/behavior topic.
func ParseBehaviorTopic(topic string) (userID, vehicleID string, err error) {
	parts := strings.Split(topic, "/")
	if len(parts) != 4 || parts[0] != "fleet" || parts[3] != "behavior" || parts[1] == "" || parts[2] == "" {
		return "", "", fmt.Errorf("unexpected topic %q", topic)
	}
	return parts[1], parts[2], nil
}
