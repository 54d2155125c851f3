package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":      slog.LevelInfo,
		"DEBUG": slog.LevelDebug,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestLoggerStampsComponentOnce(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelDebug, Output: &buf}).WithComponent(ComponentWorker)

	logger.Info("sweep done", FieldRecords, 3)

	line := buf.String()
	if strings.Count(line, "component=") != 1 || !strings.Contains(line, "component=worker") {
		t.Fatalf("unexpected log line: %s", line)
	}
	if !strings.Contains(line, "records=3") {
		t.Fatalf("missing attribute: %s", line)
	}
}

func TestMiddlewareCarriesLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Output: &buf, Component: ComponentHTTP})

	h := Middleware(logger)(RequestIDMiddleware(func(*http.Request) string { return "req-1" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			FromContext(r.Context()).InfoContext(r.Context(), "handled")
		})))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/expenses", nil))

	if !strings.Contains(buf.String(), "request_id=req-1") {
		t.Fatalf("request id not propagated: %s", buf.String())
	}
}

func TestFromContextDefault(t *testing.T) {
	if l := FromContext(context.Background()); l == nil || l.Component() != "unknown" {
		t.Fatalf("unexpected default logger: %+v", l)
	}
}

func TestStructuredLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Level: slog.LevelDebug, Output: &buf}))
	r := httptest.NewRequest(http.MethodGet, "/api/expenses/by-category?category=Office", nil)

	sl.LogHTTPEnd(context.Background(), r, http.StatusBadGateway, 12, "10.0.0.1")
	if !strings.Contains(buf.String(), "level=ERROR") || !strings.Contains(buf.String(), "status_code=502") {
		t.Fatalf("expected error-level completion log: %s", buf.String())
	}

	buf.Reset()
	sl.LogAggregation(context.Background(), "Office", "2024-02-01", "", 3, 1)
	out := buf.String()
	if !strings.Contains(out, "start_date=2024-02-01") || strings.Contains(out, "end_date") {
		t.Fatalf("unexpected aggregation log: %s", out)
	}

	buf.Reset()
	sl.LogError(context.Background(), "fetch failed", errors.New("boom"), ComponentSheets, OpList, nil)
	if !strings.Contains(buf.String(), "error=boom") || !strings.Contains(buf.String(), "component=sheets") {
		t.Fatalf("unexpected error log: %s", buf.String())
	}
}
