package types

// CurrentWeather is the "current_weather" block of an Open-Meteo forecast.
type CurrentWeather struct {
	Temperature   float64 `json:"temperature"`
	WindSpeed     float64 `json:"windspeed"`
	WindDirection float64 `json:"winddirection"`
	WeatherCode   int     `json:"weathercode"`
	Time          string  `json:"time"`
}

// HourlyWeather holds time-indexed parallel arrays.
type HourlyWeather struct {
	Time             []string  `json:"time"`
	Temperature2m    []float64 `json:"temperature_2m"`
	RelativeHumidity []float64 `json:"relativehumidity_2m"`
	WindSpeed10m     []float64 `json:"windspeed_10m"`
}

// DailyWeather holds day-indexed parallel arrays.
type DailyWeather struct {
	Time             []string  `json:"time"`
	WeatherCode      []int     `json:"weathercode"`
	Temperature2mMax []float64 `json:"temperature_2m_max"`
	Temperature2mMin []float64 `json:"temperature_2m_min"`
}

// WeatherSnapshot is one weather response as seen by the dashboard. Timestamp
// and Source are set by the gateway, the rest comes from the provider.
type WeatherSnapshot struct {
	Latitude             float64        `json:"latitude"`
	Longitude            float64        `json:"longitude"`
	GenerationTimeMs     float64        `json:"generationtime_ms"`
	UTCOffsetSeconds     int            `json:"utc_offset_seconds"`
	Timezone             string         `json:"timezone"`
	TimezoneAbbreviation string         `json:"timezone_abbreviation"`
	Elevation            float64        `json:"elevation"`
	CurrentWeather       CurrentWeather `json:"current_weather"`
	Hourly               *HourlyWeather `json:"hourly,omitempty"`
	Daily                *DailyWeather  `json:"daily,omitempty"`

	Timestamp string `json:"timestamp,omitempty"`
	Source    string `json:"source,omitempty"`
}

// DailyRow is one day of the daily arrays, zipped for display.
type DailyRow struct {
	Date        string
	WeatherCode int
	Max         float64
	Min         float64
}

// DailyRows zips the daily arrays, stopping at the shortest one.
func (s *WeatherSnapshot) DailyRows() []DailyRow {
	if s == nil || s.Daily == nil {
		return nil
	}
	d := s.Daily
	n := min(len(d.Time), len(d.WeatherCode), len(d.Temperature2mMax), len(d.Temperature2mMin))
	rows := make([]DailyRow, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, DailyRow{
			Date:        d.Time[i],
			WeatherCode: d.WeatherCode[i],
			Max:         d.Temperature2mMax[i],
			Min:         d.Temperature2mMin[i],
		})
	}
	return rows
}

// HourlyRow is one hour of the hourly arrays.
type HourlyRow struct {
	Time        string
	Temperature float64
	Humidity    float64
	WindSpeed   float64
}

// HourlyRows zips at most limit hourly entries; limit <= 0 means all.
func (s *WeatherSnapshot) HourlyRows(limit int) []HourlyRow {
	if s == nil || s.Hourly == nil {
		return nil
	}
	h := s.Hourly
	n := min(len(h.Time), len(h.Temperature2m), len(h.RelativeHumidity), len(h.WindSpeed10m))
	if limit > 0 && limit < n {
		n = limit
	}
	rows := make([]HourlyRow, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, HourlyRow{
			Time:        h.Time[i],
			Temperature: h.Temperature2m[i],
			Humidity:    h.RelativeHumidity[i],
			WindSpeed:   h.WindSpeed10m[i],
		})
	}
	return rows
}
