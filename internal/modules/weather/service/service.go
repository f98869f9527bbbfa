package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"weatherdash/internal/dashboard"
	"weatherdash/internal/utils"
	"weatherdash/shared/types"
)

// SourceLabel tags every forecast served by the gateway.
const SourceLabel = "Open-Meteo API"

// Provider is the upstream forecast API.
type Provider interface {
	Forecast(ctx context.Context, latitude, longitude string) (map[string]json.RawMessage, error)
}

type Service struct {
	provider Provider
	now      func() time.Time
}

func NewService(provider Provider) *Service {
	return &Service{provider: provider, now: time.Now}
}

// Forecast returns the provider's object with every field kept, plus the
// capture timestamp and source label.
func (s *Service) Forecast(ctx context.Context, latitude, longitude string) (map[string]json.RawMessage, error) {
	body, err := s.provider.Forecast(ctx, latitude, longitude)
	if err != nil {
		return nil, err
	}

	ts, err := json.Marshal(utils.Timestamp(s.now()))
	if err != nil {
		return nil, err
	}
	src, err := json.Marshal(SourceLabel)
	if err != nil {
		return nil, err
	}
	body["timestamp"] = ts
	body["source"] = src
	return body, nil
}

// FetchWeather serves the gateway's own dashboard page without a round trip
// through HTTP.
func (s *Service) FetchWeather(ctx context.Context, loc dashboard.Location) (*types.WeatherSnapshot, error) {
	lat, lon := loc.Query()
	body, err := s.Forecast(ctx, lat, lon)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode forecast: %w", err)
	}
	var snap types.WeatherSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode forecast: %w", err)
	}
	return &snap, nil
}
