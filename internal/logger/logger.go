// Package logger builds the application zap logger: a console core for
// stdout plus JSON file cores backed by lumberjack. Files are rotated at
// local midnight, compressed after rotation and kept for a bounded number
// of days.
package logger

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	mainLogName  = "remnabot.log"
	errorLogName = "errors.log"

	mainRetentionDays  = 30
	errorRetentionDays = 90
	maxFileSizeMB      = 100
)

// Options configures the logger.
type Options struct {
	Level string
	// Dir is where log files are written. Empty disables file output.
	Dir string
}

// Logger owns the zap logger and the rotating writers behind it.
type Logger struct {
	*zap.Logger

	writers []*lumberjack.Logger
	next    func() time.Duration
	stop    chan struct{}
	once    sync.Once
}

// nextRotation is the wait before the next forced rotation.
var nextRotation = func() time.Duration { return untilMidnight(time.Now()) }

// ParseLevel maps debug/info/warn/error (case insensitive) to a zap level.
// Unknown values fall back to info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zap.DebugLevel
	case "warn", "warning":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

func consoleEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalColorLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05"),
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

// New creates the logger. When Dir is set, two files are written there:
// remnabot.log with everything at or above the configured level and
// errors.log with errors only.
func New(opts Options) (*Logger, error) {
	level := zap.NewAtomicLevelAt(ParseLevel(opts.Level))

	cores := []zapcore.Core{
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(consoleEncoderConfig()),
			zapcore.Lock(zapcore.AddSync(os.Stdout)),
			level,
		),
	}

	l := &Logger{next: nextRotation, stop: make(chan struct{})}

	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return nil, err
		}

		fileEncoderCfg := zap.NewProductionEncoderConfig()
		fileEncoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

		mainFile := &lumberjack.Logger{
			Filename:  filepath.Join(opts.Dir, mainLogName),
			MaxSize:   maxFileSizeMB,
			MaxAge:    mainRetentionDays,
			Compress:  true,
			LocalTime: true,
		}
		errorFile := &lumberjack.Logger{
			Filename:  filepath.Join(opts.Dir, errorLogName),
			MaxSize:   maxFileSizeMB,
			MaxAge:    errorRetentionDays,
			Compress:  true,
			LocalTime: true,
		}
		l.writers = []*lumberjack.Logger{mainFile, errorFile}

		cores = append(cores,
			zapcore.NewCore(zapcore.NewJSONEncoder(fileEncoderCfg), zapcore.AddSync(mainFile), level),
			zapcore.NewCore(zapcore.NewJSONEncoder(fileEncoderCfg), zapcore.AddSync(errorFile), zap.ErrorLevel),
		)
	}

	l.Logger = zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.ErrorOutput(zapcore.Lock(os.Stderr)))
	if len(l.writers) > 0 {
		go l.rotateDaily()
	}
	return l, nil
}

// rotateDaily forces a rotation of every file at local midnight.
func (l *Logger) rotateDaily() {
	for {
		timer := time.NewTimer(l.next())
		select {
		case <-l.stop:
			timer.Stop()
			return
		case <-timer.C:
			for _, w := range l.writers {
				if err := w.Rotate(); err != nil {
					l.Warn("Failed to rotate log file", zap.String("file", w.Filename), zap.Error(err))
				}
			}
			l.Debug("Log files rotated")
		}
	}
}

func untilMidnight(now time.Time) time.Duration {
	y, m, d := now.Date()
	next := time.Date(y, m, d+1, 0, 0, 0, 0, now.Location())
	return next.Sub(now)
}

// Close stops the rotator, flushes buffered entries and closes the files.
func (l *Logger) Close() error {
	var err error
	l.once.Do(func() {
		close(l.stop)
		_ = l.Sync()
		for _, w := range l.writers {
			if cerr := w.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}
	})
	return err
}
