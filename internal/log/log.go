// Package log configures logrus from the loaded settings and proxies the
// severity helpers used across the module.
package log

import (
	"fmt"
	"os"

	"hdxvis/internal/config"
	"hdxvis/internal/filesystem"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Setup points logrus at stderr or the configured log file and applies
// level and formatter.
func Setup() error {
	logrus.SetOutput(os.Stderr)

	if viper.GetBool(config.LogsWrite) {
		path := viper.GetString(config.LogsPath)
		f, err := filesystem.API().OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		logrus.SetOutput(f)
	}

	if viper.GetBool(config.LogsJSON) {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	lvl, err := logrus.ParseLevel(viper.GetString(config.LogsLevel))
	if err != nil {
		lvl = logrus.WarnLevel
	}
	logrus.SetLevel(lvl)
	return nil
}

// WithField starts an entry carrying one field.
func WithField(key string, value any) *logrus.Entry {
	return logrus.WithField(key, value)
}

// WithFields starts an entry carrying several fields.
func WithFields(fields logrus.Fields) *logrus.Entry {
	return logrus.WithFields(fields)
}

// WithError starts an entry carrying err.
func WithError(err error) *logrus.Entry {
	return logrus.WithError(err)
}

func Error(args ...any)                { logrus.Error(args...) }
func Infof(format string, args ...any) { logrus.Infof(format, args...) }
