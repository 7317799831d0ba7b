// Package logging configures the process logger.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a logger for the given level. In stdio mode stdout carries the
// MCP protocol, so logs go to stderr and are dropped entirely unless the
// level is debug.
func New(level string, stdio bool) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	logger := logrus.New()
	logger.SetLevel(lvl)
	logger.SetOutput(os.Stderr)

	if stdio {
		logger.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
		if lvl < logrus.DebugLevel {
			logger.SetOutput(io.Discard)
		}
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logger, nil
}
