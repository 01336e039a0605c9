// Package logging configures the shared logrus logger. All pipeline
// stages log through this logger; debug level is enabled with --verbose.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

var logger = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	return l
}

// Logger returns the shared logger instance.
func Logger() *logrus.Logger {
	return logger
}

// SetVerbose switches the shared logger to debug level.
func SetVerbose(verbose bool) {
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}
}

// SetOutput redirects log output, used by tests to silence or capture logs.
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}
