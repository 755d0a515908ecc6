// Package log provides leveled, optionally persisted logging on top of logrus.
//
// Logging is inert until Setup runs with logs.write enabled; every emission before
// that, or with writing disabled, is discarded.
package log

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/kplay-cli/kplay/filesystem"
	"github.com/kplay-cli/kplay/key"
	"github.com/kplay-cli/kplay/where"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var logger = newDiscardLogger()

func newDiscardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.PanicLevel)
	return l
}

// Setup opens today's log file under where.Logs() and configures format and level
// from logs.json and logs.level.
func Setup() error {
	if !viper.GetBool(key.LogsWrite) {
		logger = newDiscardLogger()
		return nil
	}

	dir := where.Logs()
	if dir == "" {
		return errors.New("log directory path is empty")
	}

	path := filepath.Join(dir, fmt.Sprintf("%s.log", time.Now().Format("2006-01-02")))
	f, err := filesystem.EnsureFile(path)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	l := logrus.New()
	l.SetOutput(f)
	configure(l)
	logger = l
	return nil
}

// SetOutput redirects logging to w using the configured format and level.
// Tests use it to capture transitions.
func SetOutput(w io.Writer) {
	l := logrus.New()
	l.SetOutput(w)
	configure(l)
	logger = l
}

func configure(l *logrus.Logger) {
	if viper.GetBool(key.LogsJson) {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(viper.GetString(key.LogsLevel))
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)
}

// For returns an entry tagged with the emitting component.
func For(component string) *logrus.Entry {
	return logger.WithField("component", component)
}

func Error(args ...any)                 { logger.Error(args...) }
func Errorf(format string, args ...any) { logger.Errorf(format, args...) }
func Warn(args ...any)                  { logger.Warn(args...) }
func Warnf(format string, args ...any)  { logger.Warnf(format, args...) }
func Info(args ...any)                  { logger.Info(args...) }
func Infof(format string, args ...any)  { logger.Infof(format, args...) }
func Debug(args ...any)                 { logger.Debug(args...) }
func Debugf(format string, args ...any) { logger.Debugf(format, args...) }
func Tracef(format string, args ...any) { logger.Tracef(format, args...) }
