package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid json log line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelDebug, Format: "json", Component: ComponentApp, Output: &buf})

	logger.Info("hello", "k", "v")
	logger.WithComponent(ComponentStorage).Debug("saved")

	lines := decodeLines(t, &buf)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0][FieldComponent] != ComponentApp || lines[0]["k"] != "v" {
		t.Fatalf("unexpected first line %v", lines[0])
	}
	if lines[1][FieldComponent] != ComponentStorage {
		t.Fatalf("unexpected component %v", lines[1][FieldComponent])
	}
}

func TestLoggerLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelWarn, Format: "json", Component: ComponentApp, Output: &buf})
	logger.Info("dropped")
	logger.Warn("kept")
	if lines := decodeLines(t, &buf); len(lines) != 1 || lines[0]["msg"] != "kept" {
		t.Fatalf("unexpected output %v", lines)
	}
}

func TestMiddlewareAndFromContext(t *testing.T) {
	if l := FromContext(context.Background()); l == nil || l.Component() != "unknown" {
		t.Fatalf("expected fallback logger")
	}

	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: "json", Component: ComponentApp, Output: &buf})

	var got *Logger
	h := Middleware(logger)(
		ComponentMiddleware(ComponentHTTP)(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = FromContext(r.Context()).With(FieldRequestID, "req_1")
				got.InfoContext(r.Context(), "inside")
			})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if got == nil || got.Component() != ComponentHTTP {
		t.Fatalf("expected http component logger, got %v", got)
	}
	lines := decodeLines(t, &buf)
	if len(lines) != 1 || lines[0][FieldRequestID] != "req_1" {
		t.Fatalf("expected request id on log line, got %v", lines)
	}
}

func TestStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Level: slog.LevelInfo, Format: "json", Component: ComponentApp, Output: &buf}))
	ctx := context.Background()

	sl.LogTransactionCreated(ctx, 3, "Ventas", "150.5", "Ventas")
	sl.LogError(ctx, "boom", errors.New("bad"), ComponentStorage, OpList, nil)

	lines := decodeLines(t, &buf)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0][FieldTransactionID] != float64(3) || lines[0][FieldCategory] != "Ventas" || lines[0][FieldComponent] != ComponentLedger {
		t.Fatalf("unexpected transaction line %v", lines[0])
	}
	if lines[1][FieldError] != "bad" || lines[1][FieldOperation] != OpList || lines[1]["level"] != "ERROR" {
		t.Fatalf("unexpected error line %v", lines[1])
	}
}
