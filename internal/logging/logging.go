package logging

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// Init configures the standard logrus logger.
func Init(levelName, format string) {
	level, err := logrus.ParseLevel(levelName)
	if err != nil {
		logrus.Warnf("Invalid log level '%s', using 'info' instead. Error: %v", levelName, err)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	switch strings.ToLower(format) {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}
}
