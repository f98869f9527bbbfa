package types

import (
	"fmt"
	"time"
)

// ProtocolMQTT tags readings that reached the gateway through the broker.
const ProtocolMQTT = "MQTT"

// Reading is one simulated telemetry record. The generator publishes it and
// the relay decodes it with the same schema; unknown fields are ignored.
type Reading struct {
	DeviceID       string    `json:"device_id"`
	Timestamp      time.Time `json:"timestamp"`
	Temperature    float64   `json:"temperature"`
	Humidity       float64   `json:"humidity"`
	WindSpeed      float64   `json:"windspeed"`
	Pressure       float64   `json:"pressure"`
	Battery        float64   `json:"battery"`
	SignalStrength int       `json:"signal_strength"`
}

// Validate reports whether r carries the fields every consumer relies on.
func (r Reading) Validate() error {
	if r.DeviceID == "" {
		return fmt.Errorf("device_id is required")
	}
	if r.Timestamp.IsZero() {
		return fmt.Errorf("timestamp is required")
	}
	if r.SignalStrength < 0 {
		return fmt.Errorf("signal_strength must not be negative: %d", r.SignalStrength)
	}
	return nil
}

// IoTUpdate is a Reading as delivered to dashboard clients, tagged with the
// transport it arrived on and the broker topic.
type IoTUpdate struct {
	Reading
	Protocol string `json:"protocol"`
	Topic    string `json:"topic"`
}
