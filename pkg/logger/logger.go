// Package logger configures the process-wide logrus logger.
package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Setup switches to JSON output outside development and applies the requested level.
// Unknown levels fall back to info.
func Setup(appEnv, level string) {
	logrus.SetOutput(os.Stdout)

	if strings.EqualFold(appEnv, "development") || strings.EqualFold(appEnv, "test") {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
}
