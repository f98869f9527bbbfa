package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestWriteJSON(t *testing.T) {
	t.Run("sets content-type and status", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteJSON(w, http.StatusOK, map[string]string{"key": "value"})

		if got := w.Header().Get("Content-Type"); got != "application/json; charset=utf-8" {
			t.Errorf("Content-Type = %q; want application/json; charset=utf-8", got)
		}
		if w.Code != http.StatusOK {
			t.Errorf("Code = %d; want %d", w.Code, http.StatusOK)
		}
	})

	t.Run("encodes body as JSON", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteJSON(w, http.StatusCreated, map[string]string{"foo": "bar"})

		var got map[string]string
		if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
			t.Fatalf("body is not valid JSON: %v", err)
		}
		if got["foo"] != "bar" {
			t.Errorf("body[foo] = %q; want bar", got["foo"])
		}
	})
}

func TestWriteError(t *testing.T) {
	t.Run("uses explicit label", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, http.StatusInternalServerError, "Failed to fetch weather data", "boom")

		if w.Code != http.StatusInternalServerError {
			t.Errorf("Code = %d; want %d", w.Code, http.StatusInternalServerError)
		}
		var got map[string]any
		if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
			t.Fatalf("body is not valid JSON: %v", err)
		}
		if got["error"] != "Failed to fetch weather data" {
			t.Errorf("error = %v; want label", got["error"])
		}
		if got["message"] != "boom" {
			t.Errorf("message = %v; want boom", got["message"])
		}
		ts, _ := got["timestamp"].(string)
		if _, err := time.Parse(time.RFC3339, ts); err != nil {
			t.Errorf("timestamp %q does not parse: %v", ts, err)
		}
	})

	t.Run("falls back to status text", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, http.StatusBadRequest, "", "invalid input")

		var got map[string]any
		if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
			t.Fatalf("body is not valid JSON: %v", err)
		}
		if got["error"] != http.StatusText(http.StatusBadRequest) {
			t.Errorf("error = %v; want %q", got["error"], http.StatusText(http.StatusBadRequest))
		}
	})
}

func TestTimestamp(t *testing.T) {
	loc := time.FixedZone("X", 2*3600)
	in := time.Date(2025, 3, 4, 7, 8, 9, 120_000_000, loc)

	if got, want := Timestamp(in), "2025-03-04T05:08:09.120Z"; got != want {
		t.Errorf("Timestamp() = %q; want %q", got, want)
	}
}
