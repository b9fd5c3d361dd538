// Package logging provides the Logger interface used throughout this
// module, plus a zap-backed implementation with lumberjack rotation.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is implemented by anything that can receive levelled log
// messages from the codec, pixel arena, or frame sequencer.
type Logger interface {
	SetLevel(int8)
	Log(level int8, message string, params ...interface{})
}

// Log levels, lowest first.
const (
	DebugLevel int8 = iota
	InfoLevel
	WarningLevel
	ErrorLevel
	FatalLevel
)

// NoOp is a Logger that discards everything, for callers that must pass a
// Logger but want no output. No component substitutes it for a nil Logger.
type NoOp struct{}

func (NoOp) SetLevel(int8)                             {}
func (NoOp) Log(level int8, message string, params ...interface{}) {}

// ZapLogger adapts a *zap.SugaredLogger to the Logger interface, with an
// independently adjustable minimum level.
type ZapLogger struct {
	sugar *zap.SugaredLogger
	level zap.AtomicLevel
	min   int8
}

// Config controls where ZapLogger writes and how it rotates log files.
type Config struct {
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// New builds a ZapLogger writing JSON lines to cfg.Filename, rotated via
// lumberjack.
func New(cfg Config) *ZapLogger {
	level := zap.NewAtomicLevelAt(zapcore.DebugLevel)
	writer := zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.Filename,
		MaxSize:    orDefault(cfg.MaxSizeMB, 50),
		MaxBackups: orDefault(cfg.MaxBackups, 5),
		MaxAge:     orDefault(cfg.MaxAgeDays, 28),
	})
	encoderCfg := zap.NewProductionEncoderConfig()
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), writer, level)
	return &ZapLogger{
		sugar: zap.New(core).Sugar(),
		level: level,
		min:   InfoLevel,
	}
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// SetLevel adjusts the minimum level that will be emitted.
func (l *ZapLogger) SetLevel(level int8) { l.min = level }

// Log records a message at the given level with structured params, the
// same call shape as revid.Logger.Log.
func (l *ZapLogger) Log(level int8, message string, params ...interface{}) {
	if level < l.min {
		return
	}
	switch level {
	case DebugLevel:
		l.sugar.Debugw(message, params...)
	case InfoLevel:
		l.sugar.Infow(message, params...)
	case WarningLevel:
		l.sugar.Warnw(message, params...)
	case ErrorLevel:
		l.sugar.Errorw(message, params...)
	case FatalLevel:
		l.sugar.Errorw(message, params...)
	default:
		l.sugar.Infow(message, params...)
	}
}

// Sync flushes buffered log entries; callers should defer it.
func (l *ZapLogger) Sync() error { return l.sugar.Sync() }
