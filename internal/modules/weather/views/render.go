package views

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"

	"weatherdash/internal/dashboard"
	"weatherdash/shared/types"
)

var dashboardTmpl *template.Template

var funcs = template.FuncMap{
	"weatherLabel": dashboard.WeatherLabel,
	"weatherIcon":  dashboard.WeatherIcon,
	"coord":        func(v float64) string { return fmt.Sprintf("%.4f", v) },
	"temp":         func(v float64) string { return fmt.Sprintf("%.1f°C", v) },
}

// loadTemplatesFromFS parses the page and its partials from dir in fsys.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	dashboardTmpl, err = template.New("dashboard").Funcs(funcs).ParseFS(sub, "*.html", "partials/*.html")
	if err != nil {
		return err
	}
	return nil
}

// LoadTemplates parses the embedded templates. Call once at startup; the
// server must not start if it fails.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

// Tab is one presentation mode link.
type Tab struct {
	Label  string
	URL    string
	Active bool
}

// DashboardData is the view model for the dashboard page.
type DashboardData struct {
	State   dashboard.State
	Presets []dashboard.Preset
	Tabs    []Tab

	// Form echoes what the user typed so a rejected value stays visible.
	LatitudeInput  string
	LongitudeInput string
	FieldError     *dashboard.FieldError
	GeoError       string

	Hourly []types.HourlyRow
	Daily  []types.DailyRow
}

// FieldMessage returns the validation message for the named input, if any.
func (d *DashboardData) FieldMessage(field string) string {
	if d == nil || d.FieldError == nil || d.FieldError.Field.String() != field {
		return ""
	}
	return d.FieldError.Message
}

// IsTree reports whether the tree view is selected.
func (d *DashboardData) IsTree() bool {
	return d != nil && d.State.View == dashboard.TreeView
}

func RenderDashboard(w io.Writer, data *DashboardData) error {
	if dashboardTmpl == nil {
		return errors.New("dashboard template not loaded: call views.LoadTemplates during startup")
	}
	return dashboardTmpl.ExecuteTemplate(w, "dashboard.html", data)
}

// RenderWeatherPartial executes only the weather section (status line or the
// selected view) into w.
func RenderWeatherPartial(w io.Writer, data *DashboardData) error {
	if dashboardTmpl == nil {
		return errors.New("dashboard template not loaded: call views.LoadTemplates during startup")
	}
	return dashboardTmpl.ExecuteTemplate(w, "partials/weather.html", data)
}
