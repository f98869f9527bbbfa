package dashboard

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"weatherdash/shared/types"
)

func snapshotWithCode(code int) *types.WeatherSnapshot {
	return &types.WeatherSnapshot{
		Latitude:  25.75,
		Longitude: 28.19,
		Timezone:  "Africa/Johannesburg",
		CurrentWeather: types.CurrentWeather{
			Temperature: 21,
			WindSpeed:   7.2,
			WeatherCode: code,
			Time:        "2025-01-02T03:00",
		},
		Daily: &types.DailyWeather{
			Time:             []string{"2025-01-02", "2025-01-03"},
			WeatherCode:      []int{code, 45},
			Temperature2mMax: []float64{25, 26},
			Temperature2mMin: []float64{12, 13},
		},
		Source:    "Open-Meteo API",
		Timestamp: "2025-01-02T03:04:05.000Z",
	}
}

func TestWeatherLabel(t *testing.T) {
	tests := map[int]string{
		0:  "Clear sky",
		1:  "Mainly clear",
		2:  "Partly cloudy",
		3:  "Overcast",
		45: "Foggy",
		48: "Depositing rime fog",
		61: "Weather code: 61",
		99: "Weather code: 99",
	}
	for code, want := range tests {
		if got := WeatherLabel(code); got != want {
			t.Errorf("WeatherLabel(%d) = %q; want %q", code, got, want)
		}
	}
}

func TestWeatherIcon(t *testing.T) {
	tests := map[int]Icon{0: IconSunny, 1: IconCloudy, 3: IconCloudy, 45: IconWet, 99: IconWet}
	for code, want := range tests {
		if got := WeatherIcon(code); got != want {
			t.Errorf("WeatherIcon(%d) = %q; want %q", code, got, want)
		}
	}
}

func TestRender_clearSkyInBothViews(t *testing.T) {
	for _, v := range []View{GridView, TreeView} {
		var buf bytes.Buffer
		st := State{Location: DefaultLocation, Snapshot: snapshotWithCode(0), View: v}
		if err := Render(&buf, st); err != nil {
			t.Fatalf("Render(%v) = %v", v, err)
		}
		if !strings.Contains(buf.String(), "Clear sky") {
			t.Errorf("%v view missing Clear sky:\n%s", v, buf.String())
		}
	}
}

func TestRenderGrid_unmappedCode(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderGrid(&buf, State{Snapshot: snapshotWithCode(99)}); err != nil {
		t.Fatalf("RenderGrid() = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Weather code: 99") {
		t.Errorf("grid output missing generic label:\n%s", out)
	}
	if !strings.Contains(out, "Foggy") {
		t.Errorf("grid output missing daily forecast:\n%s", out)
	}
}

func TestRenderTree_sections(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderTree(&buf, State{Snapshot: snapshotWithCode(2)}); err != nil {
		t.Fatalf("RenderTree() = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Location", "Current Weather", "Technical Details", "Daily Forecast", "Partly cloudy", "Open-Meteo API"} {
		if !strings.Contains(out, want) {
			t.Errorf("tree output missing %q:\n%s", want, out)
		}
	}
}

func TestRender_status(t *testing.T) {
	tests := []struct {
		name string
		st   State
		want string
	}{
		{name: "loading", st: State{Loading: true}, want: "Loading weather data..."},
		{name: "error", st: State{Err: "Failed to fetch weather data"}, want: "Failed to fetch weather data"},
		{name: "empty", st: State{}, want: "No weather data available"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, v := range []View{GridView, TreeView} {
				tt.st.View = v
				var buf bytes.Buffer
				if err := Render(&buf, tt.st); err != nil {
					t.Fatalf("Render() = %v", err)
				}
				if !strings.Contains(buf.String(), tt.want) {
					t.Errorf("%v output = %q; want %q", v, buf.String(), tt.want)
				}
			}
		})
	}
}

func TestRenderReadings(t *testing.T) {
	readings := []types.IoTUpdate{{
		Reading: types.Reading{
			DeviceID:       "iot-weather-001",
			Timestamp:      time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
			Temperature:    22.4,
			Humidity:       55.1,
			SignalStrength: 3,
		},
		Protocol: types.ProtocolMQTT,
	}}

	var buf bytes.Buffer
	if err := RenderReadings(&buf, readings); err != nil {
		t.Fatalf("RenderReadings() = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"iot-weather-001", "22.4°C", "55.1%", "3/5"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderLatest(t *testing.T) {
	u := types.IoTUpdate{Reading: types.Reading{DeviceID: "iot-weather-001", Temperature: 22.4, Humidity: 55.1, WindSpeed: 7.3}}

	var buf bytes.Buffer
	if err := RenderLatest(&buf, u); err != nil {
		t.Fatalf("RenderLatest() = %v", err)
	}
	want := "Latest from iot-weather-001: 22.4°C  55.1% humidity  7.3 km/h wind\n"
	if buf.String() != want {
		t.Errorf("RenderLatest() = %q; want %q", buf.String(), want)
	}
}

func TestRender_writeError(t *testing.T) {
	err := RenderGrid(&failingWriter{err: io.ErrClosedPipe}, State{Snapshot: snapshotWithCode(0)})
	if err != io.ErrClosedPipe {
		t.Errorf("RenderGrid(failingWriter) = %v; want %v", err, io.ErrClosedPipe)
	}
}

type failingWriter struct{ err error }

func (f *failingWriter) Write([]byte) (int, error) { return 0, f.err }
