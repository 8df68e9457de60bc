package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Log is the application logger
var Log = logrus.New()

// Setup configures the logger for the given mode and level.
// prod logs JSON, dev logs human readable text.
func Setup(mode, level string) {
	Log.SetOutput(os.Stdout)

	if mode == "prod" {
		Log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)
}
