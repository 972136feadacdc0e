package log

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"finance/internal/core"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		" warn ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func newBufferLogger(buf *bytes.Buffer) *Logger {
	return New(Config{
		Component: ComponentApp,
		Handler:   slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	})
}

func TestLogTransactionChanged(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(newBufferLogger(&buf))

	amount, _ := core.ParseAmount("-12.50")
	sl.LogTransactionChanged(context.Background(), OpCreate, core.Transaction{
		ID: "abc", Description: "Lunch", Amount: amount, Category: "Food", Date: "2025-10-02",
	})

	out := buf.String()
	for _, want := range []string{"transaction_id=abc", "amount=-12.5", "category=Food", "operation=create"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q missing %q", out, want)
		}
	}
}

func TestMiddlewareStoresLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)

	var got *Logger
	h := Middleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if got != logger {
		t.Fatal("expected the middleware logger in the request context")
	}
	if FromContext(context.Background()).Component() != "unknown" {
		t.Error("expected fallback logger outside a request")
	}
}

func TestComponentLoggedOnce(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf).WithComponent(ComponentHTTP).With(FieldRequestID, "req_1")
	sl := NewStructuredLogger(logger)

	r := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
	sl.LogHTTPStart(context.Background(), r, "10.0.0.1")
	sl.LogHTTPEnd(context.Background(), r, http.StatusNotFound, 3, "10.0.0.1")
	logger.Info("plain")
	logger.Warn("override", FieldComponent, ComponentRateLimit)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 log lines, got %d: %q", len(lines), buf.String())
	}
	for _, line := range lines {
		if n := strings.Count(line, "component="); n != 1 {
			t.Errorf("component logged %d times in %q", n, line)
		}
	}
	if !strings.Contains(lines[2], "component=http") {
		t.Errorf("expected the logger component on %q", lines[2])
	}
	if !strings.Contains(lines[3], "component=rate_limit") {
		t.Errorf("expected the explicit component on %q", lines[3])
	}
}
