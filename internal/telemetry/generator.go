// Package telemetry produces the simulated sensor feed. The generator only
// runs while the broker session is up.
package telemetry

import (
	"context"
	"log/slog"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"weatherdash/shared/types"
)

// Publisher delivers a generated reading to the broker.
type Publisher interface {
	PublishReading(r types.Reading) error
}

// Sampling ranges; every field is drawn independently and uniformly.
const (
	minTemperature = 15.0
	maxTemperature = 30.0
	minHumidity    = 40.0
	maxHumidity    = 70.0
	maxWindSpeed   = 20.0
	minPressure    = 980.0
	maxPressure    = 1000.0
	minBattery     = 80.0
	maxBattery     = 100.0
	maxSignal      = 5
)

type Options struct {
	DeviceID string
	Interval time.Duration
	Logger   *slog.Logger
	// Rand and Now are overridable for tests.
	Rand *rand.Rand
	Now  func() time.Time
}

type Generator struct {
	pub      Publisher
	deviceID string
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time

	rngMu sync.Mutex
	rng   *rand.Rand

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewGenerator(pub Publisher, opts Options) *Generator {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Interval <= 0 {
		opts.Interval = 3 * time.Second
	}
	return &Generator{
		pub:      pub,
		deviceID: opts.DeviceID,
		interval: opts.Interval,
		logger:   opts.Logger.With("component", "telemetry"),
		now:      opts.Now,
		rng:      opts.Rand,
	}
}

// Start begins publishing one reading per interval. Calling Start while
// running is a no-op, so it is safe to wire to every broker reconnect.
func (g *Generator) Start() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	g.cancel = cancel
	g.done = done

	go g.loop(ctx, done)
	g.logger.Info("telemetry generator started", "interval", g.interval, "device_id", g.deviceID)
}

// Stop cancels the publish timer and waits for an in-flight publish to return.
func (g *Generator) Stop() {
	g.mu.Lock()
	cancel, done := g.cancel, g.done
	g.cancel, g.done = nil, nil
	g.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	g.logger.Info("telemetry generator stopped")
}

// Running reports whether the publish timer is active.
func (g *Generator) Running() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cancel != nil
}

func (g *Generator) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.publishOne()
		}
	}
}

func (g *Generator) publishOne() {
	r := g.Sample()
	if err := g.pub.PublishReading(r); err != nil {
		g.logger.Error("publish reading failed", "device_id", r.DeviceID, "error", err)
		return
	}
	g.logger.Debug("published reading", "device_id", r.DeviceID)
}

// Sample builds one synthetic reading.
func (g *Generator) Sample() types.Reading {
	g.rngMu.Lock()
	defer g.rngMu.Unlock()

	return types.Reading{
		DeviceID:       g.deviceID,
		Timestamp:      g.now().UTC(),
		Temperature:    g.uniform(minTemperature, maxTemperature),
		Humidity:       g.uniform(minHumidity, maxHumidity),
		WindSpeed:      g.uniform(0, maxWindSpeed),
		Pressure:       g.uniform(minPressure, maxPressure),
		Battery:        g.uniform(minBattery, maxBattery),
		SignalStrength: g.rng.IntN(maxSignal) + 1,
	}
}

// uniform draws from [lo, hi) and rounds to one decimal, which can land on hi.
func (g *Generator) uniform(lo, hi float64) float64 {
	v := lo + g.rng.Float64()*(hi-lo)
	return math.Round(v*10) / 10
}
