// Package logger provides leveled logging for foodsync.
//
// Debug, Info and Section only print when verbose mode is enabled via the
// --verbose flag. Warn and Error always print. Output goes to stderr unless
// redirected with SetOutput.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// level gates the printf-style helpers; verbose mode lowers it to debug.
var level = zap.NewAtomicLevelAt(zapcore.WarnLevel)

var (
	mu         sync.RWMutex
	output     io.Writer = os.Stderr
	sugar      *zap.SugaredLogger
	structured *zap.Logger
)

func init() {
	SetOutput(os.Stderr)
}

// newCore writes "[LEVEL] message" lines, plus any fields, without
// timestamps or caller information.
func newCore(w zapcore.WriteSyncer, enab zapcore.LevelEnabler) zapcore.Core {
	enc := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		MessageKey: "msg",
		LevelKey:   "level",
		EncodeLevel: func(l zapcore.Level, pae zapcore.PrimitiveArrayEncoder) {
			pae.AppendString("[" + l.CapitalString() + "]")
		},
		ConsoleSeparator: " ",
		LineEnding:       "\n",
	})
	return zapcore.NewCore(enc, w, enab)
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	if v {
		level.SetLevel(zapcore.DebugLevel)
		return
	}
	level.SetLevel(zapcore.WarnLevel)
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	return level.Enabled(zapcore.DebugLevel)
}

// SetOutput redirects all logging to w. Defaults to os.Stderr.
func SetOutput(w io.Writer) {
	ws := zapcore.Lock(zapcore.AddSync(w))

	mu.Lock()
	defer mu.Unlock()
	output = w
	sugar = zap.New(newCore(ws, level)).Sugar()
	structured = zap.New(newCore(ws, zapcore.InfoLevel))
}

// Zap returns a logger for structured fields, such as the HTTP request
// log. It writes info and above regardless of verbose mode.
func Zap() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return structured
}

func current() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	if !IsVerbose() {
		return
	}
	mu.RLock()
	defer mu.RUnlock()
	fmt.Fprintf(output, "\n=== %s ===\n", name)
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) { current().Debugf(format, args...) }

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) { current().Infof(format, args...) }

// Warn prints a warning message.
func Warn(format string, args ...any) { current().Warnf(format, args...) }

// Error prints an error message.
func Error(format string, args ...any) { current().Errorf(format, args...) }
