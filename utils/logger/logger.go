package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// New creates a configured logrus logger. Development gets readable text
// output, every other environment JSON unless format says otherwise.
func New(appName, env, level, format string) *logrus.Logger {
	return newWithOutput(os.Stdout, appName, env, level, format)
}

func newWithOutput(out io.Writer, appName, env, level, format string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
		if env == "development" {
			lvl = logrus.DebugLevel
		}
	}
	l.SetLevel(lvl)

	switch strings.ToLower(format) {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	case "text":
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		if env == "development" {
			l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		} else {
			l.SetFormatter(&logrus.JSONFormatter{})
		}
	}

	l.WithFields(logrus.Fields{"app": appName, "env": env}).Debug("logger initialized")
	return l
}

// Discard returns a logger that drops everything. Handy in tests.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// LogError logs msg at error level with err attached to the fields.
func LogError(l logrus.FieldLogger, msg string, err error, fields logrus.Fields) {
	if fields == nil {
		fields = logrus.Fields{}
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	l.WithFields(fields).Error(msg)
}
