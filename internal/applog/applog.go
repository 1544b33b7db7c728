// Package applog writes the activity log: one JSON object per line, one line
// per run event, appended to a dedicated file for grep/jq consumption.
package applog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Event names written in the "event" field.
const (
	EventRunStarted  = "run_started"
	EventRunFinished = "run_finished"
	EventRunFailed   = "run_failed"
	EventProbe       = "probe"
	EventProbeFailed = "probe_failed"
	EventFileWritten = "file_written"
	EventItemFailed  = "item_failed"
	EventNotifyError = "notify_failed"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open returns a logger appending JSON lines to logPath. With debug set,
// events are also rendered on stderr through a console writer. When logPath
// is empty and debug is off the returned logger discards everything.
//
// The parent directory is created with mode 0700 and the file with 0600.
func Open(logPath string, debug bool) (zerolog.Logger, io.Closer, error) {
	var writers []io.Writer
	var closer io.Closer = nopCloser{}

	if logPath != "" {
		if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
			return zerolog.Nop(), closer, fmt.Errorf("activity log: mkdir %s: %w", filepath.Dir(logPath), err)
		}
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return zerolog.Nop(), closer, fmt.Errorf("activity log: open %s: %w", logPath, err)
		}
		writers = append(writers, f)
		closer = f
	}
	if debug {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	if len(writers) == 0 {
		return zerolog.Nop(), closer, nil
	}

	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return New(zerolog.MultiLevelWriter(writers...), level), closer, nil
}

// New builds the activity logger on top of w.
func New(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
