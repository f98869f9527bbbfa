package weather

import (
	"log/slog"
	"net/http"

	"weatherdash/internal/modules/weather/controller"
	"weatherdash/internal/modules/weather/service"
)

// RegisterFeature mounts the weather API and the dashboard page on mux.
func RegisterFeature(mux *http.ServeMux, provider service.Provider, logger *slog.Logger) {
	weatherService := service.NewService(provider)
	weatherController := controller.NewWeatherController(weatherService, logger)
	weatherController.RegisterRoutes(mux)
}
