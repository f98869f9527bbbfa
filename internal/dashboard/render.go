package dashboard

import (
	"bytes"
	"fmt"
	"io"
	"text/tabwriter"

	"weatherdash/shared/types"
)

const forecastDays = 7

// Render writes st in the mode it has selected.
func Render(w io.Writer, st State) error {
	if st.View == TreeView {
		return RenderTree(w, st)
	}
	return RenderGrid(w, st)
}

// RenderGrid writes the snapshot as aligned cards: current conditions, the
// measurement table and the daily forecast.
func RenderGrid(w io.Writer, st State) error {
	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "Location:\t%s\n", st.Location)
	if !writeStatus(tw, st) {
		return flush(w, tw, &buf)
	}

	s := st.Snapshot
	cw := s.CurrentWeather
	fmt.Fprintln(tw)
	fmt.Fprintf(tw, "Temperature\tWind Speed\tWind Direction\tConditions\n")
	fmt.Fprintf(tw, "%.1f°C\t%.1f km/h\t%.0f°\t%s (%s)\n",
		cw.Temperature, cw.WindSpeed, cw.WindDirection, WeatherLabel(cw.WeatherCode), WeatherIcon(cw.WeatherCode))

	fmt.Fprintln(tw)
	fmt.Fprintf(tw, "Measurement\tValue\n")
	fmt.Fprintf(tw, "Observed\t%s\n", cw.Time)
	fmt.Fprintf(tw, "Coordinates\t%.4f, %.4f\n", s.Latitude, s.Longitude)
	fmt.Fprintf(tw, "Elevation\t%.0f m\n", s.Elevation)
	fmt.Fprintf(tw, "Timezone\t%s\n", s.Timezone)

	if rows := s.DailyRows(); len(rows) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintf(tw, "Date\tConditions\tMax\tMin\n")
		for i, d := range rows {
			if i == forecastDays {
				break
			}
			fmt.Fprintf(tw, "%s\t%s\t%.1f°C\t%.1f°C\n", d.Date, WeatherLabel(d.WeatherCode), d.Max, d.Min)
		}
	}
	return flush(w, tw, &buf)
}

// RenderTree writes the snapshot as nested sections.
func RenderTree(w io.Writer, st State) error {
	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 4, 1, ' ', 0)

	fmt.Fprintf(tw, "Location:\t%s\n", st.Location)
	if !writeStatus(tw, st) {
		return flush(w, tw, &buf)
	}

	s := st.Snapshot
	cw := s.CurrentWeather
	fmt.Fprintln(tw, "Weather Data")
	fmt.Fprintln(tw, "├─ Location")
	fmt.Fprintf(tw, "│  ├─ Latitude:\t%.4f\n", s.Latitude)
	fmt.Fprintf(tw, "│  ├─ Longitude:\t%.4f\n", s.Longitude)
	fmt.Fprintf(tw, "│  ├─ Elevation:\t%.0f m\n", s.Elevation)
	fmt.Fprintf(tw, "│  └─ Timezone:\t%s\n", s.Timezone)
	fmt.Fprintln(tw, "├─ Current Weather")
	fmt.Fprintf(tw, "│  ├─ Temperature:\t%.1f°C\n", cw.Temperature)
	fmt.Fprintf(tw, "│  ├─ Wind Speed:\t%.1f km/h\n", cw.WindSpeed)
	fmt.Fprintf(tw, "│  ├─ Wind Direction:\t%.0f°\n", cw.WindDirection)
	fmt.Fprintf(tw, "│  ├─ Conditions:\t%s\n", WeatherLabel(cw.WeatherCode))
	fmt.Fprintf(tw, "│  └─ Time:\t%s\n", cw.Time)
	fmt.Fprintln(tw, "├─ Technical Details")
	fmt.Fprintf(tw, "│  ├─ Generation Time:\t%.3f ms\n", s.GenerationTimeMs)
	fmt.Fprintf(tw, "│  ├─ UTC Offset:\t%d s\n", s.UTCOffsetSeconds)
	fmt.Fprintf(tw, "│  ├─ Timezone Abbreviation:\t%s\n", s.TimezoneAbbreviation)
	fmt.Fprintf(tw, "│  ├─ Source:\t%s\n", s.Source)
	fmt.Fprintf(tw, "│  └─ Fetched:\t%s\n", s.Timestamp)

	rows := s.DailyRows()
	fmt.Fprintln(tw, "└─ Daily Forecast")
	if len(rows) == 0 {
		fmt.Fprintln(tw, "   └─ (none)")
	}
	if len(rows) > forecastDays {
		rows = rows[:forecastDays]
	}
	for i, d := range rows {
		branch := "├─"
		if i == len(rows)-1 {
			branch = "└─"
		}
		fmt.Fprintf(tw, "   %s %s:\t%s, %.1f°C / %.1f°C\n", branch, d.Date, WeatherLabel(d.WeatherCode), d.Max, d.Min)
	}
	return flush(w, tw, &buf)
}

// RenderReadings writes the live feed, newest first.
func RenderReadings(w io.Writer, readings []types.IoTUpdate) error {
	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "Time\tDevice\tTemp\tHumidity\tWind\tPressure\tBattery\tSignal\n")
	for _, r := range readings {
		fmt.Fprintf(tw, "%s\t%s\t%.1f°C\t%.1f%%\t%.1f km/h\t%.1f hPa\t%.1f%%\t%d/5\n",
			r.Timestamp.Local().Format("15:04:05"), r.DeviceID,
			r.Temperature, r.Humidity, r.WindSpeed, r.Pressure, r.Battery, r.SignalStrength)
	}
	return flush(w, tw, &buf)
}

// RenderLatest writes the highlight line for the newest reading.
func RenderLatest(w io.Writer, u types.IoTUpdate) error {
	_, err := fmt.Fprintf(w, "Latest from %s: %.1f°C  %.1f%% humidity  %.1f km/h wind\n",
		u.DeviceID, u.Temperature, u.Humidity, u.WindSpeed)
	return err
}

// writeStatus writes the loading or error line. It reports whether a snapshot
// is available to render.
func writeStatus(w io.Writer, st State) bool {
	switch {
	case st.Loading && st.Snapshot == nil:
		fmt.Fprintln(w, "Loading weather data...")
		return false
	case st.Err != "":
		fmt.Fprintf(w, "Error:\t%s\n", st.Err)
		return false
	case st.Snapshot == nil:
		fmt.Fprintln(w, "No weather data available")
		return false
	}
	return true
}

func flush(w io.Writer, tw *tabwriter.Writer, buf *bytes.Buffer) error {
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}
