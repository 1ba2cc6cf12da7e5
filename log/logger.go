package log

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the engine's two-severity logger (spec.md §4.1: only info and
// error are exposed). It wraps a zap.Logger internally but the plain-text
// line format is what actually lands on disk and stdout.
type Logger struct {
	zl *zap.Logger
}

// NewLogger opens (creating if missing) a log file named "job.log" beside
// checkpointPath, and tees every entry to it and to stdout (errors also go
// to stderr). If the log directory or file cannot be created or opened,
// NewLogger logs the failure once to the console and continues with a
// console-only logger — a broken log file must never abort the job.
func NewLogger(checkpointPath string) (*Logger, error) {
	encoder := newLineEncoder()

	consoleCore := zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), infoAndAbove)
	stderrCore := zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), errorAndAbove)
	cores := []zapcore.Core{consoleCore, stderrCore}

	dir := filepath.Dir(checkpointPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		zl := zap.New(zapcore.NewTee(cores...))
		zl.Error("log: could not create log directory, continuing console-only", zap.Error(err))
		return &Logger{zl: zl}, nil
	}

	logPath := filepath.Join(dir, "job.log")
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		zl := zap.New(zapcore.NewTee(cores...))
		zl.Error("log: could not open log file, continuing console-only", zap.String("path", logPath), zap.Error(err))
		return &Logger{zl: zl}, nil
	}
	cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(f), infoAndAbove))

	return &Logger{zl: zap.New(zapcore.NewTee(cores...))}, nil
}

var infoAndAbove = zapcore.InfoLevel
var errorAndAbove = zapcore.ErrorLevel

// Info logs a line at info severity; extra args render as positional,
// space-separated values after the message.
func (l *Logger) Info(msg string, args ...any) {
	l.zl.Info(msg, argFields(args)...)
}

// Error logs a line at error severity, mirrored to stderr and
// "[ERROR]"-prefixed in both the console and file outputs.
func (l *Logger) Error(msg string, args ...any) {
	l.zl.Error(msg, argFields(args)...)
}

// Sync flushes any buffered log entries. Callers should defer it at
// startup; a Sync error on stdout/stderr (common on some platforms) is
// not actionable and is ignored.
func (l *Logger) Sync() {
	_ = l.zl.Sync()
}

func argFields(args []any) []zap.Field {
	if len(args) == 0 {
		return nil
	}
	fields := make([]zap.Field, len(args))
	for i, a := range args {
		fields[i] = zap.Any(fmt.Sprintf("arg%d", i), a)
	}
	return fields
}
