package controller

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"weatherdash/internal/dashboard"
	"weatherdash/shared/types"
)

// WeatherService is what the handlers need from the service layer.
type WeatherService interface {
	Forecast(ctx context.Context, latitude, longitude string) (map[string]json.RawMessage, error)
	FetchWeather(ctx context.Context, loc dashboard.Location) (*types.WeatherSnapshot, error)
}

type WeatherController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type weatherControllerImpl struct {
	service WeatherService
	logger  *slog.Logger
}

func NewWeatherController(service WeatherService, logger *slog.Logger) WeatherController {
	if logger == nil {
		logger = slog.Default()
	}
	return &weatherControllerImpl{service: service, logger: logger.With("component", "weather")}
}

func (c *weatherControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/weather", c.handleWeather)
	mux.HandleFunc("GET /partials/weather", c.handleWeatherPartial)
	mux.HandleFunc("GET /", c.handleDashboard)
}
