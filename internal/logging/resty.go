package logging

import (
	"fmt"
	"log/slog"

	"github.com/go-resty/resty/v2"
)

type restyLogger struct {
	logger *slog.Logger
}

// Resty adapts logger to resty's printf-style logger so outbound HTTP
// clients log through slog.
func Resty(logger *slog.Logger) resty.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &restyLogger{logger: logger.With("component", "resty")}
}

func (r *restyLogger) Errorf(format string, v ...any) {
	r.logger.Error(fmt.Sprintf(format, v...))
}

func (r *restyLogger) Warnf(format string, v ...any) {
	r.logger.Warn(fmt.Sprintf(format, v...))
}

func (r *restyLogger) Debugf(format string, v ...any) {
	r.logger.Debug(fmt.Sprintf(format, v...))
}
