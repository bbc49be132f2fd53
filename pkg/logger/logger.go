// Package logger provides the structured logger shared by every component,
// adapted from the teacher's shared/pkg/logger with the same env-driven
// level/format behavior.
package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var log *logrus.Logger

// Init initializes the structured logger. logLevel overrides the
// LOG_LEVEL env var when non-empty; isDevelopment selects the default
// level and the (colored, human-readable) text formatter.
func Init(logLevel string, isDevelopment bool) *logrus.Logger {
	l := logrus.New()

	if logLevel == "" {
		logLevel = os.Getenv("LOG_LEVEL")
		if logLevel == "" {
			if isDevelopment {
				logLevel = "debug"
			} else {
				logLevel = "info"
			}
		}
	}

	if level, err := logrus.ParseLevel(strings.ToLower(logLevel)); err == nil {
		l.SetLevel(level)
	} else {
		l.SetLevel(logrus.InfoLevel)
		l.WithField("invalid_level", logLevel).Warn("invalid LOG_LEVEL, defaulting to info")
	}

	if !isDevelopment || strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
			ForceColors:     true,
		})
	}

	l.SetOutput(os.Stdout)
	log = l
	return l
}

// GetLogger returns the process-wide logger, initializing it with defaults
// on first use so packages can log without an explicit Init call in tests.
func GetLogger() *logrus.Logger {
	if log == nil {
		return Init("", false)
	}
	return log
}

// WithComponent returns an entry tagged with the owning component, mirroring
// the teacher's logger.WithService helper.
func WithComponent(component string) *logrus.Entry {
	return GetLogger().WithField("component", component)
}
