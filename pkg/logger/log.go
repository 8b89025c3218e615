// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Tetragon

package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/cilium/ksnoop/pkg/logger/logfields"
)

type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// DefaultLogger is the ksnoop logger. It is separate from the logrus
// standard logger so that libraries logging through logrus stay quiet.
// Results go to stdout, logs to stderr.
var DefaultLogger = newLogger()

// LogOptions is a validated logging configuration. The zero value logs
// warnings and above as text.
type LogOptions struct {
	Level  logrus.Level
	Format LogFormat
}

// DefaultLogOptions returns the configuration used when nothing is set.
func DefaultLogOptions() LogOptions {
	return LogOptions{Level: logrus.WarnLevel, Format: LogFormatText}
}

func newLogger() *logrus.Logger {
	l := logrus.New()
	opts := DefaultLogOptions()
	l.SetFormatter(opts.formatter())
	l.SetLevel(opts.Level)
	l.SetOutput(os.Stderr)
	return l
}

func (o LogOptions) formatter() logrus.Formatter {
	if o.Format == LogFormatJSON {
		return &logrus.JSONFormatter{}
	}
	return &logrus.TextFormatter{
		DisableColors:    true,
		DisableTimestamp: true,
	}
}

// ParseLogOptions validates a level and format as given on the command
// line. Empty values keep their default. Every invalid value is reported.
func ParseLogOptions(level, format string) (LogOptions, error) {
	opts := DefaultLogOptions()
	var errs error

	if level != "" {
		l, err := logrus.ParseLevel(level)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("invalid log level %q: %w", level, err))
		} else {
			opts.Level = l
		}
	}

	if format != "" {
		switch f := LogFormat(strings.ToLower(format)); f {
		case LogFormatText, LogFormatJSON:
			opts.Format = f
		default:
			errs = multierr.Append(errs, fmt.Errorf("invalid log format %q, expected %q or %q", format, LogFormatText, LogFormatJSON))
		}
	}
	return opts, errs
}

// SetupLogging applies o to the DefaultLogger. debug overrides the level.
func SetupLogging(o LogOptions, debug bool) {
	DefaultLogger.SetFormatter(o.formatter())
	if debug {
		DefaultLogger.SetLevel(logrus.DebugLevel)
	} else {
		DefaultLogger.SetLevel(o.Level)
	}

	logrus.SetLevel(logrus.PanicLevel)
}

// SetLogOutput redirects the default logger, mostly useful in tests.
func SetLogOutput(w io.Writer) {
	DefaultLogger.SetOutput(w)
}

func GetLogLevel() logrus.Level {
	return DefaultLogger.GetLevel()
}

// GetLogger returns the DefaultLogger that was previously setup
func GetLogger() logrus.FieldLogger {
	return DefaultLogger
}

// Subsys returns a logger tagged with the given subsystem.
func Subsys(name string) logrus.FieldLogger {
	return DefaultLogger.WithField(logfields.LogSubsys, name)
}
