package log

import (
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Log struct singleton
type Log struct {
	AppName  string
	LogLevel int
	Logger   *logrus.Logger
}

var logger Log

var mapOfLogLevel = map[string]int{
	"DEBUG": 1,
	"INFO":  1,
	"WARN":  2,
	"ERROR": 3,
}

// InitLogger initialize logger from Viper
func InitLogger(v *viper.Viper) {
	logger = New(v.GetString("app.name"), v.GetString("log.level"), os.Stdout)
}

// New builds a Log writing JSON lines to out.
func New(appName, level string, out io.Writer) Log {
	level = strings.ToUpper(level)
	lvl, ok := mapOfLogLevel[level]
	if !ok {
		lvl = 1
	}
	return Log{
		AppName:  appName,
		LogLevel: lvl,
		Logger:   newLogrusLogger(level, out),
	}
}

// GetLogger return singleton
func GetLogger() Log {
	if logger.Logger == nil {
		logger = New("campus-wallet", "DEBUG", os.Stdout)
	}
	return logger
}

func newLogrusLogger(levelStr string, out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.JSONFormatter{})
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)
	return l
}

func (l Log) entry(context, scope, meta string, skip int) *logrus.Entry {
	_, file, line, _ := runtime.Caller(skip)
	return l.Logger.WithFields(logrus.Fields{
		"service": l.AppName,
		"context": context,
		"scope":   scope,
		"meta":    meta,
		"file":    file,
		"line":    line,
	})
}

// -----------------------------
// Info
func (l Log) Info(context, message, scope, meta string) {
	if l.Logger == nil || l.LogLevel > 1 {
		return
	}
	l.entry(context, scope, meta, 2).Info(message)
}

// -----------------------------
// Warn
func (l Log) Warn(context, message, scope, meta string) {
	if l.Logger == nil || l.LogLevel > 2 {
		return
	}
	l.entry(context, scope, meta, 2).Warn(message)
}

// -----------------------------
// Error
func (l Log) Error(context, message, scope, meta string) {
	if l.Logger == nil {
		return
	}
	_, file2, line2, _ := runtime.Caller(2)
	l.entry(context, scope, meta, 2).WithFields(logrus.Fields{
		"file2": file2,
		"line2": line2,
	}).Error(message)
}

// -----------------------------
// Slow
func (l Log) Slow(context, message, scope, meta string) {
	if l.Logger == nil || l.LogLevel > 2 {
		return
	}
	l.entry(context, scope, meta, 3).Warn("[SLOW] " + message)
}
