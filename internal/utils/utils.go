package utils

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// TimestampLayout matches the ISO-8601 form browsers produce with
// Date.prototype.toISOString: UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Timestamp formats t in UTC using TimestampLayout.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to write JSON", "error", err)
	}
}

// WriteError writes {error, message, timestamp}. When label is empty the
// status text is used as the error label.
func WriteError(w http.ResponseWriter, status int, label, msg string) {
	if label == "" {
		label = http.StatusText(status)
	}
	WriteJSON(w, status, map[string]any{
		"error":     label,
		"message":   msg,
		"timestamp": Timestamp(time.Now()),
	})
}
