package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	gormlogger "gorm.io/gorm/logger"
)

// New builds the process logger: JSON to stdout with normalized field names.
func New(level string) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})
	log.SetOutput(os.Stdout)
	log.SetLevel(parseLevel(level))
	return log
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func parseLevel(level string) logrus.Level {
	switch level {
	case "debug":
		return logrus.DebugLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// GinWriter adapts gin's text output to structured entries.
func GinWriter(log *logrus.Logger) io.Writer {
	return &ginLogWriter{log: log}
}

type ginLogWriter struct {
	log *logrus.Logger
}

func (w *ginLogWriter) Write(p []byte) (int, error) {
	w.log.WithField("source", "gin").Info(string(p))
	return len(p), nil
}

// Gorm returns a gorm logger that writes through logrus.
func Gorm(log *logrus.Logger) gormlogger.Interface {
	return &gormLogger{log: log, level: gormlogger.Warn}
}

type gormLogger struct {
	log   *logrus.Logger
	level gormlogger.LogLevel
}

func (l *gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	newLogger := *l
	newLogger.level = level
	return &newLogger
}

func (l *gormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= gormlogger.Info {
		l.log.WithFields(logrus.Fields{"source": "gorm", "data": data}).Info(msg)
	}
}

func (l *gormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= gormlogger.Warn {
		l.log.WithFields(logrus.Fields{"source": "gorm", "data": data}).Warn(msg)
	}
}

func (l *gormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= gormlogger.Error {
		l.log.WithFields(logrus.Fields{"source": "gorm", "data": data}).Error(msg)
	}
}

func (l *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	sql, rows := fc()
	fields := logrus.Fields{
		"source":  "gorm",
		"elapsed": time.Since(begin).String(),
		"sql":     sql,
		"rows":    rows,
	}
	if err != nil && l.level >= gormlogger.Error {
		fields["error"] = err.Error()
		l.log.WithFields(fields).Error("SQL query error")
		return
	}
	l.log.WithFields(fields).Debug("SQL query executed")
}
