package controller

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"weatherdash/internal/dashboard"
	"weatherdash/internal/modules/weather/views"
)

const (
	defaultLatitude  = "25.75"
	defaultLongitude = "28.19"

	hourlyRows = 12

	geoErrorMessage = "Unable to retrieve your location"
)

// parseWeatherQuery returns the coordinates to forward upstream. Values are
// passed through as given, empty ones included; only absent parameters fall
// back to the defaults.
func parseWeatherQuery(r *http.Request) (latitude, longitude string) {
	q := r.URL.Query()
	latitude, longitude = defaultLatitude, defaultLongitude
	if q.Has("latitude") {
		latitude = q.Get("latitude")
	}
	if q.Has("longitude") {
		longitude = q.Get("longitude")
	}
	return latitude, longitude
}

// locationSource says where the dashboard page's location came from.
type locationSource int

const (
	sourceDefault locationSource = iota
	sourceForm
	sourcePreset
	sourceDevice
)

type pageQuery struct {
	source    locationSource
	latitude  string
	longitude string
	preset    string
	view      dashboard.View
}

func parsePageQuery(r *http.Request) pageQuery {
	q := r.URL.Query()
	pq := pageQuery{
		latitude:  q.Get("latitude"),
		longitude: q.Get("longitude"),
		preset:    strings.TrimSpace(q.Get("preset")),
		view:      dashboard.ParseView(q.Get("view")),
	}
	switch {
	case pq.preset != "":
		pq.source = sourcePreset
	case q.Get("source") == "device":
		pq.source = sourceDevice
	case q.Has("latitude") || q.Has("longitude"):
		pq.source = sourceForm
	}
	return pq
}

// parseDeviceLocation reads coordinates reported by the browser. They are
// trusted, so only unparsable values are rejected.
func parseDeviceLocation(latText, lonText string) (dashboard.Location, bool) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(latText), 64)
	if err != nil {
		return dashboard.Location{}, false
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonText), 64)
	if err != nil {
		return dashboard.Location{}, false
	}
	return dashboard.Location{Latitude: lat, Longitude: lon}, true
}

// viewTabs builds the tab links for loc, keeping everything but the view.
func viewTabs(loc dashboard.Location, active dashboard.View) []views.Tab {
	lat, lon := loc.Query()
	tabs := make([]views.Tab, 0, 2)
	for _, v := range []dashboard.View{dashboard.GridView, dashboard.TreeView} {
		q := url.Values{}
		q.Set("latitude", lat)
		q.Set("longitude", lon)
		q.Set("view", v.String())
		label := "Grid View"
		if v == dashboard.TreeView {
			label = "Tree View"
		}
		tabs = append(tabs, views.Tab{Label: label, URL: "/?" + q.Encode(), Active: v == active})
	}
	return tabs
}
