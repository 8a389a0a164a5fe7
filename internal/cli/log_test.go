package cli

import (
	"bytes"
	"regexp"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, LogInfo).Info("saved record", "name", "flask")

	line := buf.String()
	if !regexp.MustCompile(`^\d{2}:\d{2}:\d{2}\.\d{2} `).MatchString(line) {
		t.Errorf("missing timestamp prefix: %q", line)
	}
	if !strings.Contains(line, "saved record") || !strings.Contains(line, "name=flask") {
		t.Errorf("unexpected line %q", line)
	}
}

func TestSetLogLevel(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, LogInfo)

	c.Logger.Debug("entry skipped")
	if buf.Len() != 0 {
		t.Fatalf("debug written at info level: %q", buf.String())
	}

	c.SetLogLevel(LogDebug)
	c.Logger.Debug("entry skipped")
	if !strings.Contains(buf.String(), "entry skipped") {
		t.Error("debug line missing after SetLogLevel(LogDebug)")
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	newProgress(newLogger(&buf, log.InfoLevel)).done("Report written")

	if !regexp.MustCompile(`Report written \(\d+(\.\d+)?[µnm]?s\)`).MatchString(buf.String()) {
		t.Errorf("done() = %q, want message with elapsed time", buf.String())
	}
}
