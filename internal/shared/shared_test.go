package shared

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestLoggerHelpers(t *testing.T) {
	t.Run("SetLogLevel enables debug output", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := NewLogger(buf)

		logger.Debug("hidden")
		if buf.Len() != 0 {
			t.Fatalf("expected debug suppressed by default, got %q", buf.String())
		}

		SetLogLevel(logger, log.DebugLevel)
		logger.Debug("shown")
		if !strings.Contains(buf.String(), "shown") {
			t.Errorf("expected debug output after lowering the level, got %q", buf.String())
		}
	})

	t.Run("WithLogger annotates every entry", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := WithLogger(NewLogger(buf), "component", "gateway")

		logger.Info("ready")
		if !strings.Contains(buf.String(), "component=gateway") {
			t.Errorf("expected annotated entry, got %q", buf.String())
		}
	})
}
