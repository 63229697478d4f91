// Package logger provides structured logging with file rotation support.
// It wraps zap behind a small leveled API; rotation is handled by lumberjack.
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/shepherd-project/gpuinfo/internal/config"
)

// LogFileName is the name of the log file inside the configured directory
const LogFileName = "gpuinfo.log"

// LogLevel represents the severity level of a log message
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case DEBUG:
		return zapcore.DebugLevel
	case WARN:
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	case FATAL:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// Field represents a key-value pair for structured logging
type Field struct {
	Key   string
	Value interface{}
}

// Logger is the main logger structure
type Logger struct {
	mu         sync.Mutex
	level      LogLevel
	zap        *zap.Logger
	fileWriter *lumberjack.Logger
	filePath   string
}

var (
	defaultLogger *Logger
	defaultMu     sync.Mutex
)

// InitLogger initializes the global logger with the given configuration
func InitLogger(cfg *config.LogConfig) error {
	logger, err := NewLogger(cfg)
	if err != nil {
		return err
	}

	defaultMu.Lock()
	old := defaultLogger
	defaultLogger = logger
	defaultMu.Unlock()

	if old != nil {
		_ = old.Close()
	}
	return nil
}

// NewLogger creates a new logger instance. The "stdout" output writes to the
// process's stderr so that reports printed on stdout stay parseable.
func NewLogger(cfg *config.LogConfig) (*Logger, error) {
	return newLogger(cfg, zapcore.Lock(os.Stderr), term.IsTerminal(int(os.Stderr.Fd())))
}

func newLogger(cfg *config.LogConfig, console zapcore.WriteSyncer, colored bool) (*Logger, error) {
	l := &Logger{level: parseLevel(cfg.Level)}
	enabler := zap.NewAtomicLevelAt(l.level.zapLevel())
	formatJSON := strings.EqualFold(cfg.Format, "json")

	var cores []zapcore.Core

	// Setup outputs
	switch strings.ToLower(cfg.Output) {
	case "file":
		core, err := l.setupFileCore(cfg, formatJSON, enabler)
		if err != nil {
			return nil, err
		}
		cores = append(cores, core)
	case "both":
		cores = append(cores, zapcore.NewCore(newEncoder(formatJSON, colored), console, enabler))
		core, err := l.setupFileCore(cfg, formatJSON, enabler)
		if err != nil {
			return nil, err
		}
		cores = append(cores, core)
	default:
		cores = append(cores, zapcore.NewCore(newEncoder(formatJSON, colored), console, enabler))
	}

	l.zap = zap.New(zapcore.NewTee(cores...))
	return l, nil
}

func (l *Logger) setupFileCore(cfg *config.LogConfig, formatJSON bool, enabler zapcore.LevelEnabler) (zapcore.Core, error) {
	// Ensure log directory exists
	if err := os.MkdirAll(cfg.Directory, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	l.filePath = filepath.Join(cfg.Directory, LogFileName)
	l.fileWriter = &lumberjack.Logger{
		Filename:   l.filePath,
		MaxSize:    cfg.MaxSize, // MB
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge, // days
		Compress:   cfg.Compress,
	}
	return zapcore.NewCore(newEncoder(formatJSON, false), zapcore.AddSync(l.fileWriter), enabler), nil
}

func newEncoder(formatJSON, colored bool) zapcore.Encoder {
	if formatJSON {
		cfg := zap.NewProductionEncoderConfig()
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		return zapcore.NewJSONEncoder(cfg)
	}

	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	cfg.EncodeCaller = nil
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	if colored {
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return zapcore.NewConsoleEncoder(cfg)
}

// parseLevel converts string level to LogLevel
func parseLevel(level string) LogLevel {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	case "FATAL":
		return FATAL
	default:
		return INFO
	}
}

// GetLogger returns the global logger instance
func GetLogger() *Logger {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultLogger == nil {
		defaultLogger, _ = NewLogger(&config.LogConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		})
	}
	return defaultLogger
}

// Level returns the minimum level that is written
func (l *Logger) Level() LogLevel {
	return l.level
}

// FilePath returns the log file path, or "" when not logging to a file
func (l *Logger) FilePath() string {
	return l.filePath
}

// log is the internal logging method
func (l *Logger) log(level LogLevel, msg string, fields []Field) {
	ce := l.zap.Check(level.zapLevel(), msg)
	if ce == nil {
		return
	}

	zapFields := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		zapFields = append(zapFields, zap.Any(f.Key, f.Value))
	}
	ce.Write(zapFields...)
}

// WithField creates a log entry with a single field
func (l *Logger) WithField(key string, value interface{}) *LogEntry {
	return &LogEntry{
		logger: l,
		fields: []Field{{Key: key, Value: value}},
	}
}

// WithFields creates a log entry with multiple fields
func (l *Logger) WithFields(fields map[string]interface{}) *LogEntry {
	fieldList := make([]Field, 0, len(fields))
	for k, v := range fields {
		fieldList = append(fieldList, Field{Key: k, Value: v})
	}
	return &LogEntry{
		logger: l,
		fields: fieldList,
	}
}

// WithError creates a log entry with an error field
func (l *Logger) WithError(err error) *LogEntry {
	return &LogEntry{
		logger: l,
		fields: []Field{{Key: "error", Value: err.Error()}},
	}
}

// Close flushes buffered entries and closes the log file
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	_ = l.zap.Sync()
	if l.fileWriter != nil {
		return l.fileWriter.Close()
	}
	return nil
}

// Debug logs a message at debug level
func (l *Logger) Debug(args ...interface{}) {
	l.log(DEBUG, fmt.Sprint(args...), nil)
}

// Debugf logs a formatted message at debug level
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.log(DEBUG, fmt.Sprintf(format, args...), nil)
}

// Info logs a message at info level
func (l *Logger) Info(args ...interface{}) {
	l.log(INFO, fmt.Sprint(args...), nil)
}

// Infof logs a formatted message at info level
func (l *Logger) Infof(format string, args ...interface{}) {
	l.log(INFO, fmt.Sprintf(format, args...), nil)
}

// Warn logs a message at warning level
func (l *Logger) Warn(args ...interface{}) {
	l.log(WARN, fmt.Sprint(args...), nil)
}

// Warnf logs a formatted message at warning level
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.log(WARN, fmt.Sprintf(format, args...), nil)
}

// Error logs a message at error level
func (l *Logger) Error(args ...interface{}) {
	l.log(ERROR, fmt.Sprint(args...), nil)
}

// Errorf logs a formatted message at error level
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.log(ERROR, fmt.Sprintf(format, args...), nil)
}

// Fatalf logs a formatted message at fatal level and exits
func (l *Logger) Fatalf(format string, args ...interface{}) {
	l.log(FATAL, fmt.Sprintf(format, args...), nil)
	os.Exit(1)
}
