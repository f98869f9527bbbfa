package dashboard

import "fmt"

var weatherLabels = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Foggy",
	48: "Depositing rime fog",
}

// WeatherLabel describes a WMO weather code. Unknown codes get a generic
// label carrying the number.
func WeatherLabel(code int) string {
	if label, ok := weatherLabels[code]; ok {
		return label
	}
	return fmt.Sprintf("Weather code: %d", code)
}

// Icon is the coarse weather category used for the condition icon.
type Icon string

const (
	IconSunny  Icon = "sunny"
	IconCloudy Icon = "cloudy"
	IconWet    Icon = "wet"
)

func WeatherIcon(code int) Icon {
	switch {
	case code == 0:
		return IconSunny
	case code <= 3:
		return IconCloudy
	default:
		return IconWet
	}
}
