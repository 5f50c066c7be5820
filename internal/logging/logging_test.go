package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestStdLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, "")

	l.Debug("hidden")
	l.Info("fetched", "2025-03-02")
	l.Error("persisting", errors.New("disk full"))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug output should be suppressed by default")
	}
	if !strings.Contains(out, "INFO fetched 2025-03-02") {
		t.Errorf("missing info line in %q", out)
	}
	if !strings.Contains(out, "ERROR persisting disk full") {
		t.Errorf("missing error line in %q", out)
	}
}

func TestNopDiscards(t *testing.T) {
	l := Nop()
	l.Info("nothing")
	l.Error("nothing")
}
