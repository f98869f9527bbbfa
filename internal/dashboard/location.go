package dashboard

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Location is a coordinate pair. It is always replaced as a whole.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// DefaultLocation is queried before the user picks anything.
var DefaultLocation = Location{Latitude: 25.75, Longitude: 28.19}

// Query returns the coordinates as query-string text.
func (l Location) Query() (latitude, longitude string) {
	return strconv.FormatFloat(l.Latitude, 'f', -1, 64), strconv.FormatFloat(l.Longitude, 'f', -1, 64)
}

func (l Location) String() string {
	return fmt.Sprintf("%.4f, %.4f", l.Latitude, l.Longitude)
}

// Field names the input a validation error belongs to.
type Field int

const (
	Latitude Field = iota
	Longitude
)

func (f Field) String() string {
	switch f {
	case Latitude:
		return "latitude"
	case Longitude:
		return "longitude"
	default:
		return fmt.Sprintf("field(%d)", int(f))
	}
}

// FieldError is a validation failure attributed to one input.
type FieldError struct {
	Field   Field
	Message string
}

func (e *FieldError) Error() string { return e.Message }

const (
	latitudeMessage  = "Latitude must be between -90 and 90"
	longitudeMessage = "Longitude must be between -180 and 180"
)

// ValidateLocation parses user-typed coordinates. Latitude is checked first;
// longitude is only looked at once latitude passes.
func ValidateLocation(latText, lonText string) (Location, error) {
	lat, ok := parseCoordinate(latText, 90)
	if !ok {
		return Location{}, &FieldError{Field: Latitude, Message: latitudeMessage}
	}
	lon, ok := parseCoordinate(lonText, 180)
	if !ok {
		return Location{}, &FieldError{Field: Longitude, Message: longitudeMessage}
	}
	return Location{Latitude: lat, Longitude: lon}, nil
}

func parseCoordinate(text string, limit float64) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, v >= -limit && v <= limit
}

// Preset is a named quick-pick location. Presets skip validation.
type Preset struct {
	Name     string
	Location Location
}

var Presets = []Preset{
	{Name: "New York", Location: Location{Latitude: 40.7128, Longitude: -74.0060}},
	{Name: "London", Location: Location{Latitude: 51.5074, Longitude: -0.1278}},
	{Name: "Tokyo", Location: Location{Latitude: 35.6762, Longitude: 139.6503}},
	{Name: "Sydney", Location: Location{Latitude: -33.8688, Longitude: 151.2093}},
	{Name: "Cairo", Location: Location{Latitude: 30.0444, Longitude: 31.2357}},
	{Name: "Default Location", Location: DefaultLocation},
}

// PresetByName looks a preset up case-insensitively.
func PresetByName(name string) (Preset, bool) {
	name = strings.TrimSpace(name)
	for _, p := range Presets {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Preset{}, false
}
