// Package log configures the global zerolog logger. Logs always go to
// stderr (and optionally a file) because stdout carries the inventory that
// Ansible reads.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// string representation that directly corresponds to zerolog.Level
type LogLevel string

const (
	TRACE    LogLevel = "trace"
	DEBUG    LogLevel = "debug"
	INFO     LogLevel = "info"
	WARN     LogLevel = "warn"
	ERROR    LogLevel = "error"
	DISABLED LogLevel = "disabled"
)

var Levels = []LogLevel{TRACE, DEBUG, INFO, WARN, ERROR, DISABLED}
var LogFile *os.File

func (ll LogLevel) String() string {
	return string(ll)
}

func (ll *LogLevel) Set(v string) error {
	for _, l := range Levels {
		if LogLevel(strings.ToLower(v)) == l {
			*ll = l
			return nil
		}
	}
	return fmt.Errorf("must be one of %v", Levels)
}

func (ll LogLevel) Type() string {
	return "LogLevel"
}

// Level() converts ll to the zerolog level it names.
func (ll LogLevel) Level() (zerolog.Level, error) {
	if ll == DISABLED {
		return zerolog.Disabled, nil
	}
	level, err := zerolog.ParseLevel(string(ll))
	if err != nil || ll == "" {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q (options: %v)", ll, Levels)
	}
	return level, nil
}

// InitWithLogLevel() replaces the global logger with one writing at
// logLevel to stderr and, when logPath is set, appending to that file.
func InitWithLogLevel(logLevel LogLevel, logPath string) error {
	return initLogger(os.Stderr, logLevel, logPath)
}

func initLogger(stderr io.Writer, logLevel LogLevel, logPath string) error {
	level, err := logLevel.Level()
	if err != nil {
		return fmt.Errorf("failed to convert log level: %w", err)
	}

	writers := []io.Writer{
		&zerolog.FilteredLevelWriter{
			Writer: zerolog.LevelWriterAdapter{Writer: zerolog.ConsoleWriter{Out: stderr}},
			Level:  level,
		},
	}
	if logPath != "" {
		LogFile, err = os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0664)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		// the file gets structured JSON lines rather than console output
		writers = append(writers, &zerolog.FilteredLevelWriter{
			Writer: zerolog.LevelWriterAdapter{Writer: LogFile},
			Level:  level,
		})
	}
	log.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).Level(level).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(level)
	return nil
}

// Close() closes the log file, if one was opened.
func Close() {
	if LogFile != nil {
		_ = LogFile.Close()
		LogFile = nil
	}
}
