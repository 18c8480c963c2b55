// Package log is a thin key/value wrapper around logrus.
//
// Callers pass alternating key, value pairs after the message:
//
//	log.Info("Degree initialized", "id", d.ID)
package log

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

const timestampFormat = "2006-01-02T15:04:05.000"

func init() {
	logrus.SetOutput(os.Stderr)
}

// SetLogger configures the process logger. Unknown levels fall back to info.
func SetLogger(level string, jsonFormat, colorFormat bool) {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
	if jsonFormat {
		logrus.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: timestampFormat,
		})
		return
	}
	logrus.SetFormatter(&logrus.TextFormatter{
		ForceColors:     colorFormat,
		DisableColors:   !colorFormat,
		FullTimestamp:   true,
		TimestampFormat: timestampFormat,
		DisableSorting:  true,
	})
}

// SetOutput redirects log output, mainly for tests and CLIs that reserve stdout.
func SetOutput(w io.Writer) {
	logrus.SetOutput(w)
}

// WithFields converts key/value pairs into a logrus entry.
// A trailing key without a value is logged under "!BADKEY".
func WithFields(ctx ...interface{}) *logrus.Entry {
	fields := make(logrus.Fields, len(ctx)/2+1)
	for i := 0; i < len(ctx); i += 2 {
		key, ok := ctx[i].(string)
		if !ok {
			continue
		}
		if i+1 >= len(ctx) {
			fields["!BADKEY"] = key
			break
		}
		fields[key] = ctx[i+1]
	}
	return logrus.WithFields(fields)
}

func Debug(msg string, ctx ...interface{}) {
	WithFields(ctx...).Debug(msg)
}

func Info(msg string, ctx ...interface{}) {
	WithFields(ctx...).Info(msg)
}

func Warn(msg string, ctx ...interface{}) {
	WithFields(ctx...).Warn(msg)
}

func Error(msg string, ctx ...interface{}) {
	WithFields(ctx...).Error(msg)
}

func Fatal(msg string, ctx ...interface{}) {
	WithFields(ctx...).Fatal(msg)
}
