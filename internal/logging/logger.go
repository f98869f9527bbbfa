package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// Options selects the handler for a binary. Dev builds get colored tint
// output, everything else gets JSON.
type Options struct {
	AppName string
	Version string
	Env     string
	Level   slog.Level
	// Output defaults to os.Stdout.
	Output io.Writer
	// NoColor disables ANSI colors in dev output (e.g. when stdout is piped).
	NoColor bool
}

func New(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	if opts.Version == "dev" {
		h := tint.NewHandler(out, &tint.Options{
			Level:      opts.Level,
			AddSource:  true,
			TimeFormat: time.Kitchen,
			NoColor:    opts.NoColor,
		})
		return slog.New(h).With("app", opts.AppName)
	}

	h := slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: opts.Level,
	})
	return slog.New(h).With(
		"app", opts.AppName,
		"version", opts.Version,
		"env", opts.Env,
	)
}
