// Package logx builds the leveled logger factory shared by the binary and
// the device.
package logx

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pion/logging"
)

// ParseLevel maps a level name to a pion log level.
func ParseLevel(name string) (logging.LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "disabled", "off", "none":
		return logging.LogLevelDisabled, nil
	case "error":
		return logging.LogLevelError, nil
	case "warn", "warning":
		return logging.LogLevelWarn, nil
	case "info", "":
		return logging.LogLevelInfo, nil
	case "debug":
		return logging.LogLevelDebug, nil
	case "trace":
		return logging.LogLevelTrace, nil
	default:
		return logging.LogLevelDisabled, fmt.Errorf("unknown log level: %q", name)
	}
}

// NewFactory returns a factory writing to w (stderr when nil) at level.
func NewFactory(level logging.LogLevel, w io.Writer) *logging.DefaultLoggerFactory {
	if w == nil {
		w = os.Stderr
	}
	f := logging.NewDefaultLoggerFactory()
	f.Writer = w
	f.DefaultLogLevel = level
	f.ScopeLevels = map[string]logging.LogLevel{}
	return f
}

// Discard returns a factory that logs nothing.
func Discard() *logging.DefaultLoggerFactory {
	return NewFactory(logging.LogLevelDisabled, io.Discard)
}
