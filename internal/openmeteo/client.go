// Package openmeteo calls the Open-Meteo forecast API. Responses are passed
// through as raw JSON so every upstream field survives the proxy.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"

	"weatherdash/internal/logging"
	"weatherdash/internal/metrics"
)

const (
	hourlyFields = "temperature_2m,relativehumidity_2m,windspeed_10m"
	dailyFields  = "weathercode,temperature_2m_max,temperature_2m_min"
)

// StatusError is returned when the provider answers with a non-2xx status.
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Weather API responded with status: %d", e.Status)
}

type Client struct {
	http    *resty.Client
	baseURL string
}

// New returns a client for the forecast endpoint at baseURL. A zero timeout
// leaves upstream calls unbounded; callers can still cancel through ctx.
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	hc := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetLogger(logging.Resty(logger))
	return &Client{http: hc, baseURL: baseURL}
}

// Forecast fetches current, hourly and daily fields for the coordinates,
// with the timezone resolved by the provider. Coordinates are forwarded as
// given.
func (c *Client) Forecast(ctx context.Context, latitude, longitude string) (map[string]json.RawMessage, error) {
	body, err := c.get(ctx, "forecast", map[string]string{
		"latitude":        latitude,
		"longitude":       longitude,
		"current_weather": "true",
		"hourly":          hourlyFields,
		"daily":           dailyFields,
		"timezone":        "auto",
	})
	if err != nil {
		return nil, err
	}

	var out map[string]json.RawMessage
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode forecast: %w", err)
	}
	if out == nil {
		return nil, fmt.Errorf("decode forecast: empty body")
	}
	return out, nil
}

// CurrentWeather fetches only the current conditions and returns the body
// untouched.
func (c *Client) CurrentWeather(ctx context.Context, latitude, longitude string) (json.RawMessage, error) {
	body, err := c.get(ctx, "current", map[string]string{
		"latitude":        latitude,
		"longitude":       longitude,
		"current_weather": "true",
	})
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("decode current weather: invalid JSON")
	}
	return json.RawMessage(body), nil
}

func (c *Client) get(ctx context.Context, kind string, params map[string]string) (body []byte, err error) {
	defer func() {
		metrics.UpstreamRequests.WithLabelValues(kind, metrics.Outcome(err)).Inc()
	}()

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("weather api request: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, &StatusError{Status: resp.StatusCode()}
	}
	return resp.Body(), nil
}
