package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kyleking/mdschema/internal/config"
	"github.com/kyleking/mdschema/internal/errors"
)

// LogLevel represents the severity level of a log message
type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

const (
	logDirPerm  = 0755
	logFilePerm = 0644

	callerSkip = 3
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Entry is a single log line before formatting
type Entry struct {
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level"`
	Stage     string                 `json:"stage,omitempty"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	Caller    string                 `json:"caller,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

// sink is shared by a logger and every logger derived from it
type sink struct {
	mu   sync.Mutex
	out  io.Writer
	file *os.File
}

// Logger writes leveled, structured lines. Derived loggers share the
// parent's output.
type Logger struct {
	level      LogLevel
	format     string
	sink       *sink
	stage      string
	fields     map[string]interface{}
	showCaller bool
	now        func() time.Time
}

var (
	globalLogger *Logger
	loggerMu     sync.RWMutex
)

// InitializeLogger replaces the global logger with one built from cfg
func InitializeLogger(cfg config.LoggingConfig) error {
	logger, err := NewLogger(cfg)
	if err != nil {
		return err
	}

	loggerMu.Lock()
	previous := globalLogger
	globalLogger = logger
	loggerMu.Unlock()

	if previous != nil {
		_ = previous.Close()
	}

	return nil
}

// NewLogger creates a new logger with the given configuration
func NewLogger(cfg config.LoggingConfig) (*Logger, error) {
	var out io.Writer

	var file *os.File

	switch strings.ToLower(cfg.Output) {
	case "stdout":
		out = os.Stdout
	case "", "stderr":
		out = os.Stderr
	case "file":
		if cfg.File == "" {
			return nil, errors.NewConfigError("log file path is required when output is 'file'", "logging.file")
		}

		if err := os.MkdirAll(filepath.Dir(cfg.File), logDirPerm); err != nil {
			return nil, errors.Wrap(err, errors.ErrTypeFileSystem, "failed to create log directory")
		}

		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePerm)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrTypeFileSystem, "failed to open log file")
		}

		file = f
		out = f
	default:
		return nil, errors.NewConfigError(fmt.Sprintf("invalid log output: %s", cfg.Output), "logging.output")
	}

	logger := NewWithWriter(out, parseLogLevel(cfg.Level), cfg.Format)
	logger.sink.file = file
	logger.showCaller = logger.level == DebugLevel

	return logger, nil
}

// NewWithWriter builds a logger around an arbitrary writer
func NewWithWriter(w io.Writer, level LogLevel, format string) *Logger {
	return &Logger{
		level:  level,
		format: strings.ToLower(format),
		sink:   &sink{out: w},
		fields: map[string]interface{}{},
		now:    time.Now,
	}
}

// Discard returns a logger that drops everything
func Discard() *Logger {
	return NewWithWriter(io.Discard, ErrorLevel+1, "text")
}

func parseLogLevel(level string) LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return DebugLevel
	case "info":
		return InfoLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

func (l *Logger) derive() *Logger {
	fields := make(map[string]interface{}, len(l.fields)+1)
	for k, v := range l.fields {
		fields[k] = v
	}

	return &Logger{
		level:      l.level,
		format:     l.format,
		sink:       l.sink,
		stage:      l.stage,
		fields:     fields,
		showCaller: l.showCaller,
		now:        l.now,
	}
}

// WithField adds a field to the logger context
func (l *Logger) WithField(key string, value interface{}) *Logger {
	derived := l.derive()
	derived.fields[key] = value

	return derived
}

// WithFields adds multiple fields to the logger context
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	derived := l.derive()
	for k, v := range fields {
		derived.fields[k] = v
	}

	return derived
}

// WithStage tags every line with a pipeline stage name
func (l *Logger) WithStage(stage string) *Logger {
	derived := l.derive()
	derived.stage = stage

	return derived
}

// WithError adds an error to the logger context
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}

	return l.WithField("error", err.Error())
}

func (l *Logger) log(level LogLevel, message string, err error) {
	if level < l.level {
		return
	}

	entry := Entry{
		Timestamp: l.now().Format(time.RFC3339),
		Level:     level.String(),
		Stage:     l.stage,
		Message:   message,
		Fields:    l.fields,
	}

	if err != nil {
		entry.Error = err.Error()
	}

	if l.showCaller {
		entry.Caller = getCaller()
	}

	var line string

	if l.format == "json" {
		data, _ := json.Marshal(entry)
		line = string(data)
	} else {
		line = formatText(entry)
	}

	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()

	_, _ = fmt.Fprintln(l.sink.out, line)
}

// formatText renders an entry with fields in key order
func formatText(entry Entry) string {
	parts := []string{fmt.Sprintf("[%s] %s", entry.Timestamp, entry.Level)}

	if entry.Caller != "" {
		parts = append(parts, fmt.Sprintf("(%s)", entry.Caller))
	}

	if entry.Stage != "" {
		parts = append(parts, entry.Stage+":")
	}

	parts = append(parts, entry.Message)

	if len(entry.Fields) > 0 {
		keys := make([]string, 0, len(entry.Fields))
		for k := range entry.Fields {
			keys = append(keys, k)
		}

		sort.Strings(keys)

		fieldParts := make([]string, 0, len(keys))
		for _, k := range keys {
			fieldParts = append(fieldParts, fmt.Sprintf("%s=%v", k, entry.Fields[k]))
		}

		parts = append(parts, fmt.Sprintf("{%s}", strings.Join(fieldParts, " ")))
	}

	if entry.Error != "" {
		parts = append(parts, "error="+entry.Error)
	}

	return strings.Join(parts, " ")
}

func getCaller() string {
	_, file, line, ok := runtime.Caller(callerSkip)
	if !ok {
		return "unknown"
	}

	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}

// Debug logs a debug message
func (l *Logger) Debug(message string) {
	l.log(DebugLevel, message, nil)
}

// Debugf logs a formatted debug message
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.log(DebugLevel, fmt.Sprintf(format, args...), nil)
}

// Info logs an info message
func (l *Logger) Info(message string) {
	l.log(InfoLevel, message, nil)
}

// Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.log(InfoLevel, fmt.Sprintf(format, args...), nil)
}

// Warn logs a warning message
func (l *Logger) Warn(message string) {
	l.log(WarnLevel, message, nil)
}

// Warnf logs a formatted warning message
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.log(WarnLevel, fmt.Sprintf(format, args...), nil)
}

// Error logs an error message
func (l *Logger) Error(message string) {
	l.log(ErrorLevel, message, nil)
}

// ErrorWithErr logs an error message with an associated error
func (l *Logger) ErrorWithErr(message string, err error) {
	l.log(ErrorLevel, message, err)
}

// Stage runs fn as a named pipeline stage, logging its duration and
// failure
func (l *Logger) Stage(name string, fn func() error) error {
	logger := l.WithStage(name)
	logger.Debug("started")

	start := time.Now()
	err := fn()
	duration := time.Since(start).Round(time.Microsecond)

	if err != nil {
		logger.WithField("duration", duration).ErrorWithErr("failed", err)
	} else {
		logger.WithField("duration", duration).Debug("completed")
	}

	return err
}

// Close closes the log file, if any
func (l *Logger) Close() error {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()

	if l.sink.file != nil {
		err := l.sink.file.Close()
		l.sink.file = nil

		return err
	}

	return nil
}

// GetLogger returns the global logger, falling back to stderr at info
func GetLogger() *Logger {
	loggerMu.RLock()
	logger := globalLogger
	loggerMu.RUnlock()

	if logger != nil {
		return logger
	}

	SetupFallbackLogger()

	loggerMu.RLock()
	defer loggerMu.RUnlock()

	return globalLogger
}

// SetupFallbackLogger sets up a basic logger for cases where configuration fails
func SetupFallbackLogger() {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	if globalLogger == nil {
		globalLogger = NewWithWriter(os.Stderr, InfoLevel, "text")
	}
}

// Stage runs fn as a named stage on the global logger
func Stage(name string, fn func() error) error {
	return GetLogger().Stage(name, fn)
}
