package dashboard

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"weatherdash/internal/realtime"
	"weatherdash/shared/types"
)

type stubCurrent struct{}

func (stubCurrent) CurrentWeather(_ context.Context, lat, lon string) (json.RawMessage, error) {
	return json.RawMessage(`{"latitude":` + lat + `,"longitude":` + lon + `,"current_weather":{"temperature":18}}`), nil
}

func startHub(t *testing.T) (*realtime.Hub, string) {
	t.Helper()
	hub := realtime.NewHub(nil, stubCurrent{}, discardLogger())
	srv := httptest.NewServer(hub)
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestLiveConn_welcomeAndReadings(t *testing.T) {
	hub, url := startHub(t)

	got := make(chan types.IoTUpdate, 8)
	c := NewLiveConn(url, LiveHandlers{OnReading: func(u types.IoTUpdate) { got <- u }}, discardLogger())
	if err := c.Open(context.Background()); err != nil {
		t.Fatalf("Open() = %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	if !c.Connected() {
		t.Error("Connected() = false after Open")
	}
	waitFor(t, "welcome", func() bool { _, ok := c.Welcome(); return ok })
	if w, _ := c.Welcome(); w.ConnectionID == "" {
		t.Error("welcome has empty connection id")
	}

	for i := 0; i < 6; i++ {
		hub.Broadcast(types.IoTUpdate{Reading: types.Reading{DeviceID: "dev", Temperature: float64(i)}})
	}
	for i := 0; i < 6; i++ {
		select {
		case <-got:
		case <-time.After(3 * time.Second):
			t.Fatalf("reading %d not delivered", i)
		}
	}

	readings := c.Readings()
	if len(readings) != MaxReadings {
		t.Fatalf("Readings() len = %d; want %d", len(readings), MaxReadings)
	}
	if readings[0].Temperature != 5 || readings[3].Temperature != 2 {
		t.Errorf("Readings() order = %v", readings)
	}
	if latest, ok := c.Latest(); !ok || latest.Temperature != 5 {
		t.Errorf("Latest() = %v, %v; want temperature 5", latest.Temperature, ok)
	}
}

func TestLiveConn_requestWeather(t *testing.T) {
	_, url := startHub(t)

	weather := make(chan json.RawMessage, 1)
	c := NewLiveConn(url, LiveHandlers{OnWeather: func(raw json.RawMessage) { weather <- raw }}, discardLogger())
	if err := c.Open(context.Background()); err != nil {
		t.Fatalf("Open() = %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	if err := c.RequestWeather(Location{Latitude: 10, Longitude: 20}); err != nil {
		t.Fatalf("RequestWeather() = %v", err)
	}

	select {
	case raw := <-weather:
		var body struct {
			Latitude       float64 `json:"latitude"`
			CurrentWeather struct {
				Temperature float64 `json:"temperature"`
			} `json:"current_weather"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Fatalf("decode weather-update: %v", err)
		}
		if body.Latitude != 10 || body.CurrentWeather.Temperature != 18 {
			t.Errorf("weather-update = %s", raw)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no weather-update")
	}
}

func TestLiveConn_closeClearsConnected(t *testing.T) {
	_, url := startHub(t)

	c := NewLiveConn(url, LiveHandlers{}, discardLogger())
	if err := c.Open(context.Background()); err != nil {
		t.Fatalf("Open() = %v", err)
	}
	if err := c.Open(context.Background()); err == nil {
		t.Error("second Open() = nil; want error")
	}

	_ = c.Close()
	if c.Connected() {
		t.Error("Connected() = true after Close")
	}
	if err := c.RequestWeather(DefaultLocation); err != ErrNotConnected {
		t.Errorf("RequestWeather() after Close = %v; want ErrNotConnected", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close() = %v", err)
	}
}

func TestLiveConn_serverDropClearsConnected(t *testing.T) {
	hub, url := startHub(t)

	c := NewLiveConn(url, LiveHandlers{}, discardLogger())
	if err := c.Open(context.Background()); err != nil {
		t.Fatalf("Open() = %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	waitFor(t, "welcome", func() bool { _, ok := c.Welcome(); return ok })

	hub.Close()

	select {
	case <-c.Done():
	case <-time.After(3 * time.Second):
		t.Fatal("reader did not exit after server close")
	}
	if c.Connected() {
		t.Error("Connected() = true after server closed the connection")
	}
}
