package logx

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pion/logging"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		want logging.LogLevel
	}{
		{"", logging.LogLevelInfo},
		{"DEBUG", logging.LogLevelDebug},
		{" warn ", logging.LogLevelWarn},
		{"off", logging.LogLevelDisabled},
		{"trace", logging.LogLevelTrace},
		{"error", logging.LogLevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.name)
		if err != nil || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", tt.name, got, err, tt.want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewFactoryFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewFactory(logging.LogLevelWarn, &buf).NewLogger("device")
	log.Infof("hidden %d", 1)
	log.Warnf("shown %d", 2)

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown 2") {
		t.Fatalf("log output = %q", out)
	}
}

func TestDiscard(t *testing.T) {
	Discard().NewLogger("x").Errorf("nothing")
}
