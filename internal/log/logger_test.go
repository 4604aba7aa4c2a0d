package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerStampsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelInfo, Output: &buf}).WithComponent(ComponentLedger)

	l.InfoContext(context.Background(), "Expense added", NewFields().WithMonth("2026-01").ToSlice()...)
	out := buf.String()
	if !strings.Contains(out, "component=ledger") || !strings.Contains(out, "month=2026-01") {
		t.Fatalf("unexpected log line: %s", out)
	}

	buf.Reset()
	l.DebugContext(context.Background(), "hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug must be filtered at info level, got %q", buf.String())
	}
}

func TestFromContext(t *testing.T) {
	l := Discard().WithComponent(ComponentHTTP)
	ctx := WithLogger(context.Background(), l)
	if got := FromContext(ctx); got != l {
		t.Fatalf("expected stored logger")
	}
	if got := FromContext(context.Background()); got.Component() != "unknown" {
		t.Fatalf("expected fallback logger, got %q", got.Component())
	}
}
