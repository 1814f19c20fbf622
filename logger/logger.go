// Package logger writes HMAC-sealed JSON audit lines to stdout and a
// rotating file.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

const (
	defaultService = "riseup-api"
	defaultHMACKey = "default-hmac-key-change-in-production"
)

type Config struct {
	ServiceName string
	Environment string
	LogFilePath string
	HMACKey     string
	MaxSizeMB   int
	MaxBackups  int
	MaxAgeDays  int

	// Output replaces stdout and disables the rotating file when set.
	Output io.Writer
}

type Logger struct {
	service string
	out     sink
	seal    signer
	clean   redactor
	now     func() time.Time
	mu      sync.Mutex
}

func New(cfg Config) *Logger {
	if cfg.ServiceName == "" {
		cfg.ServiceName = defaultService
	}
	if cfg.HMACKey == "" {
		cfg.HMACKey = defaultHMACKey
	}
	return &Logger{
		service: cfg.ServiceName,
		out:     openSink(cfg),
		seal:    signer{key: []byte(cfg.HMACKey)},
		clean:   redactor{stripTraces: cfg.Environment == "production"},
		now:     time.Now,
	}
}

func (l *Logger) write(level Level, event Event, message string, details map[string]interface{}) {
	e := Entry{
		Timestamp: l.now().UTC().Format(time.RFC3339Nano),
		Level:     level,
		Service:   l.service,
		Event:     event,
		Message:   l.clean.text(message),
		Details:   l.clean.details(details),
	}
	e.Hmac = l.seal.sum(e)

	line, err := json.Marshal(e)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: dropping %s entry: %v\n", event, err)
		return
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.out.Write(line)
}

func (l *Logger) Info(event Event, message string, details map[string]interface{}) {
	l.write(LevelInfo, event, message, details)
}

func (l *Logger) Warn(event Event, message string, details map[string]interface{}) {
	l.write(LevelWarn, event, message, details)
}

func (l *Logger) Error(event Event, message string, details map[string]interface{}) {
	l.write(LevelError, event, message, details)
}

func (l *Logger) Security(event Event, message string, details map[string]interface{}) {
	l.write(LevelSecurity, event, message, details)
}

// Fatal logs at ERROR, flushes the file and exits.
func (l *Logger) Fatal(event Event, message string, details map[string]interface{}) {
	l.write(LevelError, event, message, details)
	_ = l.Close()
	os.Exit(1)
}

// Verify reports whether e was sealed with this logger's key.
func (l *Logger) Verify(e Entry) bool {
	return l.seal.valid(e)
}

func (l *Logger) Close() error {
	if l.out.closer == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.out.closer.Close()
}

var current atomic.Pointer[Logger]

// Init installs the process-wide logger used by the package functions.
func Init(cfg Config) {
	current.Store(New(cfg))
}

// Default returns the installed logger, or a stdout logger when Init has
// not run yet.
func Default() *Logger {
	if l := current.Load(); l != nil {
		return l
	}
	current.CompareAndSwap(nil, New(Config{Environment: "development"}))
	return current.Load()
}

func Info(event Event, message string, details map[string]interface{}) {
	Default().Info(event, message, details)
}

func Warn(event Event, message string, details map[string]interface{}) {
	Default().Warn(event, message, details)
}

func Error(event Event, message string, details map[string]interface{}) {
	Default().Error(event, message, details)
}

func Security(event Event, message string, details map[string]interface{}) {
	Default().Security(event, message, details)
}

func Fatal(event Event, message string, details map[string]interface{}) {
	Default().Fatal(event, message, details)
}

func Close() error {
	return Default().Close()
}

// Fields builds a details map from alternating keys and values.
// Non-string keys and a trailing odd value are dropped.
func Fields(kv ...interface{}) map[string]interface{} {
	details := make(map[string]interface{}, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		if key, ok := kv[i].(string); ok {
			details[key] = kv[i+1]
		}
	}
	return details
}
