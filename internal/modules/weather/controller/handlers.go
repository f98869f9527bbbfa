package controller

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"weatherdash/internal/dashboard"
	"weatherdash/internal/modules/weather/views"
	"weatherdash/internal/utils"
)

const fetchFailedLabel = "Failed to fetch weather data"

func (c *weatherControllerImpl) handleWeather(w http.ResponseWriter, r *http.Request) {
	lat, lon := parseWeatherQuery(r)

	body, err := c.service.Forecast(r.Context(), lat, lon)
	if err != nil {
		c.logger.Error("weather fetch failed", "latitude", lat, "longitude", lon, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, fetchFailedLabel, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, body)
}

func (c *weatherControllerImpl) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	c.render(w, c.loadPage(r), views.RenderDashboard)
}

// handleWeatherPartial answers tab switches with just the weather section.
func (c *weatherControllerImpl) handleWeatherPartial(w http.ResponseWriter, r *http.Request) {
	c.render(w, c.loadPage(r), views.RenderWeatherPartial)
}

// loadPage resolves the requested location, fetches its weather and builds
// the view model.
func (c *weatherControllerImpl) loadPage(r *http.Request) *views.DashboardData {
	pq := parsePageQuery(r)
	sess := dashboard.NewSession(c.service)
	sess.SelectView(pq.view)

	data := &views.DashboardData{
		Presets:        dashboard.Presets,
		LatitudeInput:  pq.latitude,
		LongitudeInput: pq.longitude,
	}

	ctx := r.Context()
	var err error
	switch pq.source {
	case sourcePreset:
		if _, ok := dashboard.PresetByName(pq.preset); !ok {
			c.logger.Warn("dashboard: unknown preset", "preset", pq.preset)
			err = sess.Load(ctx)
			break
		}
		err = sess.UsePreset(ctx, pq.preset)
	case sourceDevice:
		loc, ok := parseDeviceLocation(pq.latitude, pq.longitude)
		if !ok {
			data.GeoError = geoErrorMessage
			err = sess.Load(ctx)
			break
		}
		err = sess.UseDevice(ctx, loc)
	case sourceForm:
		err = sess.Submit(ctx, pq.latitude, pq.longitude)
		var fe *dashboard.FieldError
		if errors.As(err, &fe) {
			data.FieldError = fe
			err = sess.Load(ctx)
		}
	default:
		err = sess.Load(ctx)
	}
	if err != nil {
		c.logger.Warn("dashboard: weather fetch failed", "error", err)
	}

	st := sess.State()
	data.State = st
	data.Tabs = viewTabs(st.Location, st.View)
	data.Hourly = st.Snapshot.HourlyRows(hourlyRows)
	data.Daily = st.Snapshot.DailyRows()
	if data.LatitudeInput == "" && data.LongitudeInput == "" {
		data.LatitudeInput, data.LongitudeInput = st.Location.Query()
	}
	return data
}

func (c *weatherControllerImpl) render(w http.ResponseWriter, data *views.DashboardData, fn func(io.Writer, *views.DashboardData) error) {
	var buf bytes.Buffer
	if err := fn(&buf, data); err != nil {
		c.logger.Error("dashboard template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "", "failed to render page")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(buf.Bytes()); err != nil {
		c.logger.Error("dashboard: write response failed", "error", err)
	}
}
