package httpapi

import (
	"net/http"
	"time"

	"weatherdash/internal/utils"
)

const (
	serviceName    = "Weather Dashboard API"
	serviceVersion = "1.0.0"
)

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Service   string `json:"service"`
	Version   string `json:"version"`
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	utils.WriteJSON(w, http.StatusOK, healthResponse{
		Status:    "healthy",
		Timestamp: utils.Timestamp(time.Now()),
		Service:   serviceName,
		Version:   serviceVersion,
	})
}

func registerHealthcheck(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", handleHealth)
}
