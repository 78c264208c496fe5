// Package logger builds the logrus logger shared by every package of the server.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// base is shared so that Configure, called once from main, reaches the
// package-level loggers that were created during init.
var base = newBase(os.Stdout, os.Getenv("APP_ENV"), os.Getenv("LOG_LEVEL"))

func newBase(w io.Writer, env, level string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	applySettings(l, env, level)
	return l
}

func applySettings(l *logrus.Logger, env, level string) {
	if env == "production" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	parsed, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		parsed = logrus.InfoLevel
	}
	l.SetLevel(parsed)
}

// NewLogger returns the process-wide logger.
func NewLogger() *logrus.Logger {
	return base
}

// Configure switches formatter and level once the configuration is known.
func Configure(env, level string) {
	applySettings(base, env, level)
}

// SetOutput redirects log output, mostly useful for silencing tests.
func SetOutput(w io.Writer) {
	base.SetOutput(w)
}
