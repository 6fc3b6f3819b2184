// Package logx provides structured logging for the application.
package logx

import (
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.Logger with a scope name so log lines can be traced back
// to the subsystem that produced them.
type Logger struct {
	zap   *zap.Logger
	sugar *zap.SugaredLogger
	scope string
}

var (
	mu           sync.RWMutex
	globalLogger *Logger
	scopes       = map[string]*Logger{}
)

func init() {
	globalLogger = build("info", "text", "")
}

// IsLocalDev reports whether the environment is a local development one.
func IsLocalDev(appEnv string) bool {
	return appEnv == "local" || appEnv == "dev" || appEnv == "development"
}

func customTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("2006-01-02 15:04:05.000"))
}

func loggerConfig() zap.Config {
	config := zap.NewProductionConfig()
	config.Development = false
	config.DisableCaller = false
	config.DisableStacktrace = false
	config.Sampling = nil
	config.EncoderConfig = zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalColorLevelEncoder,
		EncodeTime:     customTimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	config.Encoding = "console"
	return config
}

func build(level, format, scope string) *Logger {
	config := loggerConfig()

	switch strings.ToLower(format) {
	case "json":
		config.Encoding = "json"
		config.EncoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
	default:
		config.Encoding = "console"
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	lvl := parseLevel(level)
	if IsLocalDev(os.Getenv("APP_ENV")) && lvl > zapcore.DebugLevel {
		lvl = zapcore.DebugLevel
	}
	config.Level = zap.NewAtomicLevelAt(lvl)

	zapLogger, err := config.Build(zap.AddCallerSkip(1))
	if err != nil {
		panic(err)
	}
	if scope != "" {
		zapLogger = zapLogger.Named(scope)
	}
	return &Logger{zap: zapLogger, sugar: zapLogger.Sugar(), scope: scope}
}

// Init reconfigures the global logger and every scoped logger handed out so
// far. Safe to call again when the log config changes at runtime.
func Init(level, format string) {
	mu.Lock()
	defer mu.Unlock()
	globalLogger = build(level, format, "")
	for name, l := range scopes {
		fresh := build(level, format, name)
		l.zap = fresh.zap
		l.sugar = fresh.sugar
	}
}

// GetScope returns a named logger for a subsystem. Repeated calls with the
// same name return the same instance, so package-level vars stay valid across
// Init calls.
func GetScope(name string) *Logger {
	mu.Lock()
	defer mu.Unlock()
	if l, ok := scopes[name]; ok {
		return l
	}
	base := globalLogger.zap.Named(name)
	l := &Logger{zap: base, sugar: base.Sugar(), scope: name}
	scopes[name] = l
	return l
}

// L returns the global sugared logger.
func L() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return globalLogger.sugar
}

// Global returns the global logger instance.
func Global() *Logger {
	mu.RLock()
	defer mu.RUnlock()
	return globalLogger
}

func parseLevel(s string) zapcore.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Sugar returns the sugared logger for key-value style logging.
func (l *Logger) Sugar() *zap.SugaredLogger { return l.sugar }

// Zap returns the underlying zap logger.
func (l *Logger) Zap() *zap.Logger { return l.zap }

// Close flushes buffered log entries.
func (l *Logger) Close() error {
	if l.zap != nil {
		return l.zap.Sync()
	}
	return nil
}

// Debug logs a debug message with structured fields.
func (l *Logger) Debug(msg string, fields ...zap.Field) {
	if l.zap == nil {
		return
	}
	l.zap.Debug(msg, fields...)
}

// Info logs an info message with structured fields.
func (l *Logger) Info(msg string, fields ...zap.Field) {
	if l.zap == nil {
		return
	}
	l.zap.Info(msg, fields...)
}

// Warn logs a warning message with structured fields.
func (l *Logger) Warn(msg string, fields ...zap.Field) {
	if l.zap == nil {
		return
	}
	l.zap.Warn(msg, fields...)
}

// Error logs an error message with structured fields.
func (l *Logger) Error(msg string, fields ...zap.Field) {
	if l.zap == nil {
		return
	}
	l.zap.Error(msg, fields...)
}

// Fatal logs a fatal message and exits.
func (l *Logger) Fatal(msg string, fields ...zap.Field) {
	if l.zap == nil {
		os.Exit(1)
		return
	}
	l.zap.Fatal(msg, fields...)
}
