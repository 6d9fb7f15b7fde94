package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New creates a logger writing text lines with full timestamps at the given level.
// Unknown levels fall back to info.
func New(level string) *logrus.Logger {
	logger := logrus.New()

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	logger.SetOutput(os.Stdout)

	return logger
}

// Discard returns a logger that drops everything, for tests.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
