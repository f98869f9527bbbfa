package types

import (
	"encoding/json"
	"fmt"
)

// Event names on the persistent connection.
const (
	EventWelcome        = "welcome"
	EventIoTUpdate      = "iot-update"
	EventWeatherUpdate  = "weather-update"
	EventError          = "error"
	EventRequestWeather = "request-weather"
)

// Envelope is the frame carried by every WebSocket message in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewEnvelope marshals data under the given event name.
func NewEnvelope(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", event, err)
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}

// Welcome is sent once, immediately after a connection opens.
type Welcome struct {
	Message      string `json:"message"`
	ConnectionID string `json:"connection_id"`
	Timestamp    string `json:"timestamp"`
}

// ErrorEvent reports a failed client request.
type ErrorEvent struct {
	Message string `json:"message"`
}

// WeatherRequest asks the gateway for current weather at a coordinate.
type WeatherRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
