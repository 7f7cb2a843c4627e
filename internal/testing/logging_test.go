package kmtesting

import (
	"bytes"
	"strings"
	"testing"
)

func TestLogLevel(t *testing.T) {
	tests := []struct {
		value     string
		wantLevel int
		wantOK    bool
	}{
		{"", 0, false},
		{"0", 0, false},
		{"false", 0, false},
		{" Off ", 0, false},
		{"true", 0, true},
		{"yes", 0, true},
		{"1", 1, true},
		{"4", 4, true},
		{"-2", 0, true},
	}
	for _, tt := range tests {
		level, ok := LogLevel(tt.value)
		if level != tt.wantLevel || ok != tt.wantOK {
			t.Errorf("LogLevel(%q) = %d, %v, want %d, %v", tt.value, level, ok, tt.wantLevel, tt.wantOK)
		}
	}
}

func TestNewLoggerVerbosity(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, 1, true)
	log.Info("shown at zero")
	log.V(1).Info("shown at one")
	log.V(2).Info("hidden at two")

	out := buf.String()
	for _, want := range []string{"shown at zero", "shown at one"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output lacks %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "hidden at two") {
		t.Fatalf("V(2) passed a level 1 logger:\n%s", out)
	}

	buf.Reset()
	newLogger(&buf, 4, false).Info("discarded")
	if buf.Len() != 0 {
		t.Fatalf("disabled logger wrote %q", buf.String())
	}
}

func TestNewLoggerFollowsDebugEnv(t *testing.T) {
	t.Setenv(DebugEnv, "")
	if NewLogger(t).Enabled() {
		t.Fatal("expected a discarding logger without " + DebugEnv)
	}

	t.Setenv(DebugEnv, "2")
	log := NewLogger(t)
	if !log.V(2).Enabled() || log.V(3).Enabled() {
		t.Fatal("expected verbosity 2")
	}
}
