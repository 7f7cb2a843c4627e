package kmtesting

import (
	"io"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/testr"
	"go.uber.org/zap/zapcore"
	klog "k8s.io/klog/v2"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
)

// DebugEnv turns on log output in tests. A number is the highest V level
// shown, any other non-false value shows V(0) only.
const DebugEnv = "DEBUG"

// LogLevel parses a DebugEnv value. ok is false when logs are discarded.
func LogLevel(value string) (level int, ok bool) {
	value = strings.ToLower(strings.TrimSpace(value))
	switch value {
	case "", "0", "false", "no", "off":
		return 0, false
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0, true
	}
	return n, true
}

// SetupLogging points controller-runtime and klog at one shared logr
// writing to stderr. Call it from TestMain.
func SetupLogging() {
	level, ok := LogLevel(os.Getenv(DebugEnv))
	ctrl.SetLogger(newLogger(os.Stderr, level, ok))
	// klog goes through the delegating logger so late SetLogger calls win
	klog.SetLogger(ctrl.Log)
}

func newLogger(w io.Writer, level int, enabled bool) logr.Logger {
	if !enabled {
		return zap.New(zap.WriteTo(io.Discard))
	}
	return zap.New(zap.UseDevMode(true), zap.WriteTo(w), zap.Level(zapcore.Level(-level)))
}

// NewLogger returns a logger writing to t.Log, so output lands next to the
// failing test. It discards everything unless DebugEnv is set.
func NewLogger(t testing.TB) logr.Logger {
	level, ok := LogLevel(os.Getenv(DebugEnv))
	if !ok {
		return logr.Discard()
	}
	return testr.NewWithInterface(t, testr.Options{Verbosity: level})
}
