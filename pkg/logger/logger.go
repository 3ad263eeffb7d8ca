package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	DEBUG int = iota
	INFO
	WARNING
	ERROR
	SILENCE
)

type Logger interface {
	Debugf(msg string, a ...any)
	Infof(msg string, a ...any)
	Warnf(msg string, a ...any)
	Errorf(msg string, a ...any)
}

type zapLogger struct {
	sugar *zap.SugaredLogger
}

// NewLogger writes human readable lines to stdout, suitable for local runs and
// tests.
func NewLogger(level int) Logger {
	return newZapLogger(level, zapcore.NewConsoleEncoder(encoderConfig()))
}

// NewJSONLogger writes one JSON object per line, which is what the log
// collectors of deployed environments expect.
func NewJSONLogger(level int) Logger {
	return newZapLogger(level, zapcore.NewJSONEncoder(encoderConfig()))
}

func NewNopLogger() Logger {
	return &zapLogger{sugar: zap.NewNop().Sugar()}
}

func newZapLogger(level int, encoder zapcore.Encoder) Logger {
	if level >= SILENCE {
		return NewNopLogger()
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), zapLevel(level))
	return &zapLogger{sugar: zap.New(core).Sugar()}
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "time"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return cfg
}

func zapLevel(level int) zapcore.Level {
	switch level {
	case DEBUG:
		return zapcore.DebugLevel
	case INFO:
		return zapcore.InfoLevel
	case WARNING:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

// ParseLevel maps the LOG_LEVEL setting to a level, defaulting to INFO.
func ParseLevel(s string) int {
	switch s {
	case "debug", "DEBUG":
		return DEBUG
	case "warn", "warning", "WARN", "WARNING":
		return WARNING
	case "error", "ERROR":
		return ERROR
	case "silence", "SILENCE", "off":
		return SILENCE
	default:
		return INFO
	}
}

func (l *zapLogger) Debugf(msg string, a ...any) {
	l.sugar.Debugf(msg, a...)
}

func (l *zapLogger) Infof(msg string, a ...any) {
	l.sugar.Infof(msg, a...)
}

func (l *zapLogger) Warnf(msg string, a ...any) {
	l.sugar.Warnf(msg, a...)
}

func (l *zapLogger) Errorf(msg string, a ...any) {
	l.sugar.Errorf(msg, a...)
}
