package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"weatherdash/internal/logging"
	"weatherdash/shared/types"
)

// ErrFetchFailed is reported when the gateway answers with a non-2xx status.
var ErrFetchFailed = errors.New("Failed to fetch weather data")

// GatewayClient fetches weather through the gateway's HTTP API.
type GatewayClient struct {
	http *resty.Client
}

func NewGatewayClient(baseURL string, timeout time.Duration, logger *slog.Logger) *GatewayClient {
	hc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetLogger(logging.Resty(logger))
	return &GatewayClient{http: hc}
}

func (g *GatewayClient) FetchWeather(ctx context.Context, loc Location) (*types.WeatherSnapshot, error) {
	lat, lon := loc.Query()
	resp, err := g.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"latitude": lat, "longitude": lon}).
		Get("/api/weather")
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, ErrFetchFailed
	}

	var snap types.WeatherSnapshot
	if err := json.Unmarshal(resp.Body(), &snap); err != nil {
		return nil, fmt.Errorf("decode weather: %w", err)
	}
	return &snap, nil
}

// LiveURL derives the persistent connection endpoint from the gateway's base
// URL.
func LiveURL(gatewayURL string) (string, error) {
	u, err := url.Parse(gatewayURL)
	if err != nil {
		return "", fmt.Errorf("parse gateway url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported gateway scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	u.RawQuery = ""
	return u.String(), nil
}
