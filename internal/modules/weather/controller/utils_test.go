package controller

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"weatherdash/internal/dashboard"
)

func TestParsePageQuery(t *testing.T) {
	tests := []struct {
		url    string
		source locationSource
		view   dashboard.View
	}{
		{url: "/", source: sourceDefault, view: dashboard.GridView},
		{url: "/?view=tree", source: sourceDefault, view: dashboard.TreeView},
		{url: "/?latitude=1", source: sourceForm},
		{url: "/?longitude=", source: sourceForm},
		{url: "/?source=device&latitude=1&longitude=2", source: sourceDevice},
		{url: "/?preset=Tokyo&latitude=1", source: sourcePreset},
	}

	for _, tt := range tests {
		pq := parsePageQuery(httptest.NewRequest(http.MethodGet, tt.url, nil))
		if pq.source != tt.source {
			t.Errorf("%s: source = %v; want %v", tt.url, pq.source, tt.source)
		}
		if pq.view != tt.view {
			t.Errorf("%s: view = %v; want %v", tt.url, pq.view, tt.view)
		}
	}
}

func TestViewTabs(t *testing.T) {
	tabs := viewTabs(dashboard.Location{Latitude: 10, Longitude: -20.5}, dashboard.TreeView)
	if len(tabs) != 2 {
		t.Fatalf("len = %d; want 2", len(tabs))
	}
	if tabs[0].URL != "/?latitude=10&longitude=-20.5&view=grid" || tabs[0].Active {
		t.Errorf("grid tab = %+v", tabs[0])
	}
	if tabs[1].URL != "/?latitude=10&longitude=-20.5&view=tree" || !tabs[1].Active {
		t.Errorf("tree tab = %+v", tabs[1])
	}
}

func TestParseDeviceLocation(t *testing.T) {
	if loc, ok := parseDeviceLocation("48.8566", " 2.3522"); !ok || loc.Latitude != 48.8566 || loc.Longitude != 2.3522 {
		t.Errorf("parseDeviceLocation = %+v, %v", loc, ok)
	}
	if _, ok := parseDeviceLocation("x", "1"); ok {
		t.Error("parseDeviceLocation(x, 1) ok; want failure")
	}
}

func TestParseWeatherQuery(t *testing.T) {
	tests := []struct {
		url string
		lat string
		lon string
	}{
		{url: "/api/weather", lat: "25.75", lon: "28.19"},
		{url: "/api/weather?latitude=10", lat: "10", lon: "28.19"},
		{url: "/api/weather?latitude=&longitude=", lat: "", lon: ""},
		{url: "/api/weather?latitude=abc&longitude=5", lat: "abc", lon: "5"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			lat, lon := parseWeatherQuery(httptest.NewRequest(http.MethodGet, tt.url, nil))
			if lat != tt.lat || lon != tt.lon {
				t.Errorf("parseWeatherQuery() = (%q, %q); want (%q, %q)", lat, lon, tt.lat, tt.lon)
			}
		})
	}
}
