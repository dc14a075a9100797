package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func newTestLogger(t *testing.T) (*SlogLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	l := slog.New(h)
	return NewSlogLogger(l), &buf
}

func TestSlogLogger_Levels_WriteExpectedOutput(t *testing.T) {
	log, buf := newTestLogger(t)
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.Info(ctx, "inf", "b", 2)
	log.Warn(ctx, "wrn", "c", 3)
	log.Error(ctx, "err", "d", 4)

	out := buf.String()

	tests := []struct {
		level string
		msg   string
		key   string
		val   string
	}{
		{"DEBUG", "dbg", "a", "1"},
		{"INFO", "inf", "b", "2"},
		{"WARN", "wrn", "c", "3"},
		{"ERROR", "err", "d", "4"},
	}

	for _, tc := range tests {
		if !strings.Contains(out, "level="+tc.level) {
			t.Fatalf("expected line with level=%s in output:\n%s", tc.level, out)
		}
		if !strings.Contains(out, "msg="+tc.msg) {
			t.Fatalf("expected line with msg=%q in output:\n%s", tc.msg, out)
		}
		if !strings.Contains(out, tc.key+"="+tc.val) {
			t.Fatalf("expected attribute %s=%s in output:\n%s", tc.key, tc.val, out)
		}
	}
}

func TestSlogLogger_With_AddsAttributes(t *testing.T) {
	log, buf := newTestLogger(t)
	ctx := context.Background()

	log2 := log.With("req_id", "123", "user", "alice")
	log2.Info(ctx, "hello", "k", "v")

	out := buf.String()
	wantSubs := []string{
		"level=INFO",
		"msg=hello",
		"req_id=123",
		"user=alice",
		"k=v",
	}
	for _, s := range wantSubs {
		if !strings.Contains(out, s) {
			t.Fatalf("expected %q in output, got:\n%s", s, out)
		}
	}
}

func TestSlogLogger_RequestIDFromContext(t *testing.T) {
	log, buf := newTestLogger(t)

	ctx := WithRequestID(context.Background(), "req-42")
	log.With("module", "http").Warn(ctx, "slow", "elapsed", "2s")
	log.Info(context.Background(), "untagged")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d:\n%s", len(lines), buf.String())
	}
	for _, want := range []string{"request_id=req-42", "module=http", "elapsed=2s"} {
		if !strings.Contains(lines[0], want) {
			t.Fatalf("expected %q in %q", want, lines[0])
		}
	}
	if strings.Contains(lines[1], "request_id") {
		t.Fatalf("untagged line carries a request id: %q", lines[1])
	}
}

func TestRequestID_Empty(t *testing.T) {
	if id := RequestID(context.Background()); id != "" {
		t.Fatalf("expected empty id, got %q", id)
	}
	if id := RequestID(WithRequestID(context.Background(), "abc")); id != "abc" {
		t.Fatalf("expected abc, got %q", id)
	}
}

func TestSlogLogger_FilteredLevelSkipsRecord(t *testing.T) {
	var buf bytes.Buffer
	log := NewSlogLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelError})))

	log.Debug(WithRequestID(context.Background(), "r"), "quiet")
	log.Info(context.TODO(), "quiet")
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got:\n%s", buf.String())
	}
}

func TestNew_JSONFormatRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&buf, FormatJSON, "warn")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	log.Info(context.Background(), "hidden")
	log.Warn(context.Background(), "shown", "user_id", "u-1")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line must be filtered at warn level:\n%s", out)
	}
	if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"user_id":"u-1"`) {
		t.Fatalf("expected json warn line, got:\n%s", out)
	}
}

func TestNew_ConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&buf, FormatConsole, "debug")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.With("module", "test").Info(context.Background(), "console line")

	if !strings.Contains(buf.String(), "console line") {
		t.Fatalf("expected console output, got:\n%s", buf.String())
	}
}

func TestNew_RejectsUnknownSettings(t *testing.T) {
	if _, err := New(&bytes.Buffer{}, "xml", "info"); err == nil {
		t.Fatal("expected error for unknown format")
	}
	if _, err := New(&bytes.Buffer{}, FormatJSON, "loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestNop_DiscardsAndChains(t *testing.T) {
	l := Nop().With("k", "v")
	l.Info(context.Background(), "nothing")
	l.Error(context.Background(), "nothing")
}
