package log

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestLogLevelSet(t *testing.T) {
	var ll LogLevel
	if err := ll.Set("DEBUG"); err != nil {
		t.Fatalf("failed to set level: %v", err)
	}
	if ll != DEBUG {
		t.Errorf("expected debug, got %s", ll)
	}
	if err := ll.Set("verbose"); err == nil {
		t.Errorf("expected an error for an unknown level")
	}
}

func TestLevel(t *testing.T) {
	tests := map[LogLevel]zerolog.Level{
		TRACE:    zerolog.TraceLevel,
		DEBUG:    zerolog.DebugLevel,
		INFO:     zerolog.InfoLevel,
		WARN:     zerolog.WarnLevel,
		ERROR:    zerolog.ErrorLevel,
		DISABLED: zerolog.Disabled,
	}
	for ll, want := range tests {
		got, err := ll.Level()
		if err != nil {
			t.Errorf("%s: unexpected error: %v", ll, err)
			continue
		}
		if got != want {
			t.Errorf("%s: expected %v, got %v", ll, want, got)
		}
	}
	if _, err := LogLevel("").Level(); err == nil {
		t.Errorf("expected an error for an empty level")
	}
}

func TestInitWritesFile(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)
	defer Close()

	var stderr bytes.Buffer
	path := filepath.Join(t.TempDir(), "inventory.log")
	if err := initLogger(&stderr, WARN, path); err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}
	log.Info().Msg("hidden")
	log.Warn().Str("group", "core-1").Msg("shown")
	Close()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if strings.Contains(string(b), "hidden") {
		t.Errorf("expected info messages to be filtered out, got %s", b)
	}
	if !strings.Contains(string(b), `"group":"core-1"`) {
		t.Errorf("expected a structured warning in the log file, got %s", b)
	}
	if !strings.Contains(stderr.String(), "shown") {
		t.Errorf("expected the warning on stderr, got %q", stderr.String())
	}
}
