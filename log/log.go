package log

import (
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"moul.io/zapfilter"
)

// Logger wraps zap.Logger. All components request named loggers from the
// package default via log.Default().Named("...").
type Logger struct {
	l     *zap.Logger
	level Level
}

type Level = zapcore.Level

var (
	InfoLevel  Level = zap.InfoLevel
	WarnLevel  Level = zap.WarnLevel
	ErrorLevel Level = zap.ErrorLevel
	DebugLevel Level = zap.DebugLevel
	FatalLevel Level = zap.FatalLevel
)

type Field = zap.Field

var (
	Skip       = zap.Skip
	Binary     = zap.Binary
	Bool       = zap.Bool
	Duration   = zap.Duration
	Float      = zap.Float64
	Float32    = zap.Float32
	Int        = zap.Int
	Int32      = zap.Int32
	Int64      = zap.Int64
	Uint       = zap.Uint
	Uint32     = zap.Uint32
	String     = zap.String
	Time       = zap.Time
	Any        = zap.Any
	ErrorField = zap.Error
)

func ParseLevel(text string) (Level, error) {
	return zapcore.ParseLevel(text)
}

type Option = zap.Option

var (
	WithCaller    = zap.WithCaller
	AddStacktrace = zap.AddStacktrace
	AddCallerSkip = zap.AddCallerSkip
)

// New creates a Logger with JSON output for production use.
func New(writer io.Writer, level Level, opts ...Option) *Logger {
	if writer == nil {
		panic("the writer is nil")
	}
	cfg := zap.NewProductionConfig()
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(cfg.EncoderConfig),
		zapcore.AddSync(writer),
		level,
	)
	return &Logger{l: zap.New(core, opts...), level: level}
}

// DevLogger creates a Logger with human readable console output.
func DevLogger(writer io.Writer, level Level, opts ...Option) *Logger {
	if writer == nil {
		panic("the writer is nil")
	}
	cfg := zap.NewDevelopmentConfig()
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(cfg.EncoderConfig),
		zapcore.AddSync(writer),
		level,
	)
	return &Logger{l: zap.New(core, opts...), level: level}
}

// NewWithFilters wraps an existing logger with zapfilter rules
// (for example "telemetry:debug *:info"). Invalid rules are ignored and the
// argument logger is returned unchanged.
func NewWithFilters(base *Logger, rules string) *Logger {
	filterFunc, err := zapfilter.ParseRules(rules)
	if err != nil {
		return base
	}
	return &Logger{
		l:     zap.New(zapfilter.NewFilteringCore(base.l.Core(), filterFunc)),
		level: base.level,
	}
}

func (l *Logger) Named(name string) *Logger {
	return &Logger{l: l.l.Named(name), level: l.level}
}

func (l *Logger) WithOptions(opts ...Option) *Logger {
	return &Logger{l: l.l.WithOptions(opts...), level: l.level}
}

func (l *Logger) Debug(msg string, fields ...Field) { l.l.Debug(msg, fields...) }
func (l *Logger) Info(msg string, fields ...Field)  { l.l.Info(msg, fields...) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.l.Warn(msg, fields...) }
func (l *Logger) Error(msg string, fields ...Field) { l.l.Error(msg, fields...) }
func (l *Logger) Fatal(msg string, fields ...Field) { l.l.Fatal(msg, fields...) }

func (l *Logger) DebugEnabled() bool {
	return l.level.Enabled(zap.DebugLevel)
}

func (l *Logger) Sync() error {
	return l.l.Sync()
}

var (
	std  = DevLogger(os.Stderr, InfoLevel)
	mu   sync.Mutex
	Sync = std.Sync
)

func Default() *Logger { return std }

// ResetDefault replaces the package level default logger.
// Not safe for concurrent use with the package level log functions.
func ResetDefault(l *Logger) {
	mu.Lock()
	defer mu.Unlock()
	std = l
	Sync = std.Sync
}

func Debug(msg string, fields ...Field) { std.l.Debug(msg, fields...) }
func Info(msg string, fields ...Field)  { std.l.Info(msg, fields...) }
func Warn(msg string, fields ...Field)  { std.l.Warn(msg, fields...) }
func Error(msg string, fields ...Field) { std.l.Error(msg, fields...) }
func Fatal(msg string, fields ...Field) { std.l.Fatal(msg, fields...) }
