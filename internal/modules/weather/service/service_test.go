package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"weatherdash/internal/dashboard"
)

type stubProvider struct {
	body string
	err  error
	lat  string
	lon  string
}

func (p *stubProvider) Forecast(_ context.Context, lat, lon string) (map[string]json.RawMessage, error) {
	p.lat, p.lon = lat, lon
	if p.err != nil {
		return nil, p.err
	}
	var out map[string]json.RawMessage
	if err := json.Unmarshal([]byte(p.body), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func fixedService(p Provider) *Service {
	s := NewService(p)
	s.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 6_000_000, time.UTC) }
	return s
}

func TestForecast_augments(t *testing.T) {
	p := &stubProvider{body: `{"current_weather":{"temperature":21},"elevation":1200,"extra_field":[1,2]}`}
	s := fixedService(p)

	got, err := s.Forecast(context.Background(), "10", "20")
	if err != nil {
		t.Fatalf("Forecast() = %v", err)
	}
	if p.lat != "10" || p.lon != "20" {
		t.Errorf("provider got %s,%s", p.lat, p.lon)
	}
	if string(got["source"]) != `"Open-Meteo API"` {
		t.Errorf("source = %s", got["source"])
	}
	if string(got["timestamp"]) != `"2025-01-02T03:04:05.006Z"` {
		t.Errorf("timestamp = %s", got["timestamp"])
	}
	if string(got["extra_field"]) != `[1,2]` || string(got["current_weather"]) != `{"temperature":21}` {
		t.Errorf("upstream fields not preserved: %v", got)
	}
}

func TestForecast_error(t *testing.T) {
	want := errors.New("Weather API responded with status: 500")
	s := fixedService(&stubProvider{err: want})

	if _, err := s.Forecast(context.Background(), "1", "2"); !errors.Is(err, want) {
		t.Errorf("Forecast() = %v; want %v", err, want)
	}
}

func TestFetchWeather(t *testing.T) {
	p := &stubProvider{body: `{"latitude":51.5,"longitude":-0.12,"timezone":"Europe/London","current_weather":{"temperature":9.5,"weathercode":3}}`}
	s := fixedService(p)

	snap, err := s.FetchWeather(context.Background(), dashboard.Location{Latitude: 51.5074, Longitude: -0.1278})
	if err != nil {
		t.Fatalf("FetchWeather() = %v", err)
	}
	if p.lat != "51.5074" || p.lon != "-0.1278" {
		t.Errorf("provider got %s,%s", p.lat, p.lon)
	}
	if snap.CurrentWeather.Temperature != 9.5 || snap.CurrentWeather.WeatherCode != 3 {
		t.Errorf("current = %+v", snap.CurrentWeather)
	}
	if snap.Source != SourceLabel || snap.Timestamp == "" || snap.Timezone != "Europe/London" {
		t.Errorf("snapshot = %+v", snap)
	}
}
