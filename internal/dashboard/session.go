// Package dashboard holds the dashboard client's working state: the active
// location and weather snapshot, input validation, the live reading feed and
// the persistent connection to the gateway.
package dashboard

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"weatherdash/shared/types"
)

const unknownErrorMessage = "Unknown error occurred"

// Fetcher loads one weather snapshot for a location.
type Fetcher interface {
	FetchWeather(ctx context.Context, loc Location) (*types.WeatherSnapshot, error)
}

// View is the selected presentation tab.
type View int

const (
	GridView View = iota
	TreeView
)

func (v View) String() string {
	if v == TreeView {
		return "tree"
	}
	return "grid"
}

// ParseView maps a tab name to a View. Anything unrecognised is the grid.
func ParseView(s string) View {
	if strings.EqualFold(strings.TrimSpace(s), "tree") {
		return TreeView
	}
	return GridView
}

// State is a point-in-time copy of a Session. After a fetch completes exactly
// one of Snapshot and Err is set.
type State struct {
	Location Location
	Loading  bool
	Snapshot *types.WeatherSnapshot
	Err      string
	View     View
}

// Session is one dashboard's working state. Every location change commits the
// new location first and then fetches with it. When fetches overlap only the
// most recent one is applied.
type Session struct {
	fetcher Fetcher

	mu    sync.Mutex
	state State
	seq   uint64
}

func NewSession(f Fetcher) *Session {
	return &Session{
		fetcher: f,
		state:   State{Location: DefaultLocation, View: GridView},
	}
}

// Load fetches weather for the active location.
func (s *Session) Load(ctx context.Context) error {
	return s.fetch(ctx, s.State().Location)
}

// Refresh re-fetches the active location.
func (s *Session) Refresh(ctx context.Context) error {
	return s.Load(ctx)
}

// SetLocation replaces the active location and fetches for it.
func (s *Session) SetLocation(ctx context.Context, loc Location) error {
	s.mu.Lock()
	s.state.Location = loc
	s.mu.Unlock()
	return s.fetch(ctx, loc)
}

// Submit validates typed coordinates and commits them on success. A
// *FieldError is returned without fetching when validation fails.
func (s *Session) Submit(ctx context.Context, latText, lonText string) error {
	loc, err := ValidateLocation(latText, lonText)
	if err != nil {
		return err
	}
	return s.SetLocation(ctx, loc)
}

// UseDevice commits a location reported by the device. Device coordinates are
// trusted.
func (s *Session) UseDevice(ctx context.Context, loc Location) error {
	return s.SetLocation(ctx, loc)
}

// UsePreset commits the named preset.
func (s *Session) UsePreset(ctx context.Context, name string) error {
	p, ok := PresetByName(name)
	if !ok {
		return fmt.Errorf("unknown preset %q", name)
	}
	return s.SetLocation(ctx, p.Location)
}

func (s *Session) SelectView(v View) {
	s.mu.Lock()
	s.state.View = v
	s.mu.Unlock()
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) fetch(ctx context.Context, loc Location) error {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.state.Loading = true
	s.mu.Unlock()

	snap, err := s.fetcher.FetchWeather(ctx, loc)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq {
		return err
	}
	s.state.Loading = false
	if err != nil {
		s.state.Snapshot = nil
		s.state.Err = errorMessage(err)
		return err
	}
	s.state.Snapshot = snap
	s.state.Err = ""
	return nil
}

func errorMessage(err error) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return unknownErrorMessage
}
