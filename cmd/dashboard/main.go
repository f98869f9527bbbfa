// Command dashboard is a terminal weather dashboard backed by the gateway.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"weatherdash/internal/dashboard"
	"weatherdash/internal/logging"
	"weatherdash/shared/types"
)

const appName = "dashboard"

var version = "dev"

type options struct {
	gateway string
	lat     string
	lon     string
	preset  string
	view    string
	live    bool
	timeout time.Duration
	verbose bool
}

func main() {
	var opts options
	flag.StringVar(&opts.gateway, "gateway", "http://localhost:5001", "gateway base URL")
	flag.StringVar(&opts.lat, "lat", "", "latitude (-90 to 90)")
	flag.StringVar(&opts.lon, "lon", "", "longitude (-180 to 180)")
	flag.StringVar(&opts.preset, "preset", "", "named location, e.g. London")
	flag.StringVar(&opts.view, "view", "grid", "presentation: grid or tree")
	flag.BoolVar(&opts.live, "live", false, "stream live IoT readings until interrupted")
	flag.DurationVar(&opts.timeout, "timeout", 15*time.Second, "weather request timeout")
	flag.BoolVar(&opts.verbose, "v", false, "debug logging")
	flag.Parse()

	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := logging.New(logging.Options{
		AppName: appName,
		Version: version,
		Env:     "cli",
		Level:   level,
		Output:  os.Stderr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, logger); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, logger *slog.Logger) error {
	sess := dashboard.NewSession(dashboard.NewGatewayClient(opts.gateway, opts.timeout, logger))
	sess.SelectView(dashboard.ParseView(opts.view))

	var err error
	switch {
	case opts.preset != "":
		err = sess.UsePreset(ctx, opts.preset)
	case opts.lat != "" || opts.lon != "":
		err = sess.Submit(ctx, opts.lat, opts.lon)
		var fe *dashboard.FieldError
		if errors.As(err, &fe) {
			return fmt.Errorf("%s: %s", fe.Field, fe.Message)
		}
	default:
		err = sess.Load(ctx)
	}
	if err != nil {
		logger.Debug("weather fetch failed", "error", err)
	}

	if err := dashboard.Render(os.Stdout, sess.State()); err != nil {
		return err
	}
	if !opts.live {
		return nil
	}
	return streamLive(ctx, opts.gateway, logger)
}

func streamLive(ctx context.Context, gateway string, logger *slog.Logger) error {
	url, err := dashboard.LiveURL(gateway)
	if err != nil {
		return err
	}

	var conn *dashboard.LiveConn
	conn = dashboard.NewLiveConn(url, dashboard.LiveHandlers{
		OnReading: func(types.IoTUpdate) {
			fmt.Println()
			if latest, ok := conn.Latest(); ok {
				_ = dashboard.RenderLatest(os.Stdout, latest)
			}
			_ = dashboard.RenderReadings(os.Stdout, conn.Readings())
		},
		OnError: func(msg string) {
			fmt.Fprintln(os.Stderr, "error:", msg)
		},
	}, logger)

	if err := conn.Open(ctx); err != nil {
		return err
	}
	defer conn.Close()

	fmt.Println("\nLive IoT feed (Ctrl+C to stop)")
	select {
	case <-ctx.Done():
		return nil
	case <-conn.Done():
		return errors.New("live connection closed by gateway")
	}
}
