// Package logging builds the application logger. Entries always go to an
// in-memory ring shown by the developer log view, and optionally to a file.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultCapacity is how many lines the in-memory log keeps.
const DefaultCapacity = 1000

// Config holds logging configuration.
type Config struct {
	Level    string // debug, info, warn, error
	Capacity int    // lines kept in memory
	File     string // optional log file, appended to
}

// Log is a zap logger plus the ring its entries are mirrored into.
type Log struct {
	*zap.Logger
	ring  *Ring
	level zap.AtomicLevel
	file  *os.File
}

// New builds a logger from cfg. An unknown level falls back to info.
func New(cfg Config) (*Log, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil || cfg.Level == "" {
		level = zapcore.InfoLevel
	}
	atomic := zap.NewAtomicLevelAt(level)

	ring := NewRing(cfg.Capacity)
	ringEnc := zapcore.EncoderConfig{
		TimeKey:        "T",
		LevelKey:       "L",
		MessageKey:     "M",
		NameKey:        "N",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout("15:04:05"),
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(ringEnc), ring, atomic),
	}

	var file *os.File
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		file = f
		fileEnc := zap.NewProductionEncoderConfig()
		fileEnc.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileEnc), zapcore.Lock(f), atomic))
	}

	return &Log{
		Logger: zap.New(zapcore.NewTee(cores...)),
		ring:   ring,
		level:  atomic,
		file:   file,
	}, nil
}

// Nop returns a logger that keeps entries in memory only, at debug level.
func Nop() *Log {
	l, _ := New(Config{Level: "debug"})
	return l
}

// Lines returns the in-memory log, oldest first.
func (l *Log) Lines() []string {
	return l.ring.Lines()
}

// SetLevel changes the level at runtime. Unknown levels are ignored.
func (l *Log) SetLevel(level string) {
	var lv zapcore.Level
	if err := lv.UnmarshalText([]byte(level)); err != nil {
		return
	}
	l.level.SetLevel(lv)
}

// Close flushes the logger and closes the log file.
func (l *Log) Close() error {
	_ = l.Sync()
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
