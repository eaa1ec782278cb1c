package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestNewText(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelInfo, Format: "text", Output: &buf})
	l.Debug("hidden")
	l.Info("shown", "file", "a.cs")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug record written at info level: %q", out)
	}
	if !strings.Contains(out, "msg=shown") || !strings.Contains(out, "file=a.cs") {
		t.Errorf("output = %q, want msg=shown and file=a.cs", out)
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelDebug, Format: "json", Output: &buf})
	l.Debug("parsed", "decls", 3)

	var rec map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if rec["msg"] != "parsed" {
		t.Errorf("msg = %v, want parsed", rec["msg"])
	}
	if rec["decls"] != float64(3) {
		t.Errorf("decls = %v, want 3", rec["decls"])
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"bogus", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPhase(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelDebug, Output: &buf})

	if err := Phase(context.Background(), l, "hoist", func() error { return nil }); err != nil {
		t.Fatalf("Phase: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Starting phase") || !strings.Contains(out, "Completed phase") {
		t.Errorf("output = %q, want start and completion records", out)
	}
	if !strings.Contains(out, "phase=hoist") {
		t.Errorf("output = %q, want phase=hoist", out)
	}
}

func TestPhaseError(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelDebug, Output: &buf})
	want := errors.New("boom")

	err := Phase(context.Background(), l, "translate", func() error { return want })
	if !errors.Is(err, want) {
		t.Fatalf("Phase error = %v, want %v", err, want)
	}
	if !strings.Contains(buf.String(), "Phase failed") {
		t.Errorf("output = %q, want a failure record", buf.String())
	}
}

func TestPhaseNilLogger(t *testing.T) {
	called := false
	err := Phase(context.Background(), nil, "print", func() error {
		called = true
		return nil
	})
	if err != nil || !called {
		t.Fatalf("Phase(nil logger) = %v, called = %v", err, called)
	}
}
