package httpapi

import (
	"net/http"

	"weatherdash/internal/metrics"
)

// NewMux registers the gateway's infrastructure routes. Feature modules add
// their own routes to the returned mux.
func NewMux(live http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	registerHealthcheck(mux)
	mux.Handle("GET /ws", live)
	mux.Handle("GET /metrics", metrics.Handler())
	return mux
}
