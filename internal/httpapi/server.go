package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"weatherdash/internal/config"
)

func NewServer(cfg config.Config, mux *http.ServeMux, logger *slog.Logger) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           requestLogger(logger, withCORS(cfg.AllowedOrigins, mux)),
		ReadHeaderTimeout: 10 * time.Second,
	}
}
