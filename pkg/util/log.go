package util

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

var logger = newLogger(os.Stderr)

func newLogger(w io.Writer) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		Prefix: "hnvm",
		Level:  log.WarnLevel,
	})
	if IsVerbose() {
		l.SetLevel(log.DebugLevel)
	}
	return l
}

// IsVerbose returns true if verbose logging is enabled
func IsVerbose() bool {
	return os.Getenv("HNVM_VERBOSE") == "true"
}

// Logger returns the shared diagnostic logger
func Logger() *log.Logger {
	return logger
}

// SetOutput points the logger at the diagnostic destination
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

// SetVerbose switches debug logging on or off
func SetVerbose(verbose bool) {
	if verbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.WarnLevel)
	}
}

// LogVerbose prints verbose log messages
func LogVerbose(format string, args ...interface{}) {
	logger.Debugf(format, args...)
}
