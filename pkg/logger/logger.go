// Package logger provides the logging interface shared by the namaadhu
// daemon, its client and the scheduler. The production backend writes
// structured records through zerolog.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Logger defines the interface for logging across all namaadhu components.
type Logger interface {
	// Info logs an informational message (e.g., "Island 12 selected").
	Info(format string, args ...interface{})

	// Warning logs a warning message (e.g., "No prayer times for day 59").
	Warning(format string, args ...interface{})

	// Error logs an error message (e.g., "Failed to open database: no such file").
	Error(format string, args ...interface{})

	// Close flushes and releases the backend. Safe to call multiple times.
	Close() error
}

// ZerologLogger writes leveled records through a zerolog.Logger.
type ZerologLogger struct {
	log zerolog.Logger
	out io.Writer
	// closer is shared with every child from With.
	closer *outputCloser
}

type outputCloser struct {
	once sync.Once
	err  error
}

// Options configures New.
type Options struct {
	// Out receives the records. Defaults to os.Stderr.
	Out io.Writer
	// Console renders human readable lines instead of JSON.
	Console bool
	// Component is attached to every record.
	Component string
}

// New creates a zerolog backed logger.
func New(opts Options) *ZerologLogger {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	w := out
	if opts.Console {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly, NoColor: true}
	}
	ctx := zerolog.New(w).With().Timestamp()
	if opts.Component != "" {
		ctx = ctx.Str("component", opts.Component)
	}
	return &ZerologLogger{log: ctx.Logger(), out: out, closer: &outputCloser{}}
}

// With returns a child logger tagged with component.
func (z *ZerologLogger) With(component string) *ZerologLogger {
	return &ZerologLogger{
		log:    z.log.With().Str("component", component).Logger(),
		out:    z.out,
		closer: z.closer,
	}
}

func (z *ZerologLogger) Info(format string, args ...interface{}) {
	z.log.Info().Msgf(format, args...)
}

func (z *ZerologLogger) Warning(format string, args ...interface{}) {
	z.log.Warn().Msgf(format, args...)
}

func (z *ZerologLogger) Error(format string, args ...interface{}) {
	z.log.Error().Msgf(format, args...)
}

// Close syncs and closes the output when it is a file other than stdout or
// stderr.
func (z *ZerologLogger) Close() error {
	if z.out == os.Stderr || z.out == os.Stdout {
		return nil
	}
	c := z.closer
	c.once.Do(func() {
		if s, ok := z.out.(interface{ Sync() error }); ok {
			c.err = s.Sync()
		}
		if cl, ok := z.out.(io.Closer); ok {
			if err := cl.Close(); c.err == nil {
				c.err = err
			}
		}
	})
	return c.err
}

// NopLogger is a logger that discards all messages.
type NopLogger struct{}

// NewNopLogger creates a logger that discards all messages.
func NewNopLogger() *NopLogger {
	return &NopLogger{}
}

func (n *NopLogger) Info(format string, args ...interface{}) {}

func (n *NopLogger) Warning(format string, args ...interface{}) {}

func (n *NopLogger) Error(format string, args ...interface{}) {}

func (n *NopLogger) Close() error {
	return nil
}

// MockLogger records all log calls for verification in tests. It may be
// written from other goroutines; read it through the accessor methods.
type MockLogger struct {
	mu           sync.Mutex
	infoCalls    []string
	warningCalls []string
	errorCalls   []string
	closeCalled  bool
}

// NewMockLogger creates a new MockLogger for testing.
func NewMockLogger() *MockLogger {
	return &MockLogger{}
}

func (m *MockLogger) Info(format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infoCalls = append(m.infoCalls, fmt.Sprintf(format, args...))
}

func (m *MockLogger) Warning(format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.warningCalls = append(m.warningCalls, fmt.Sprintf(format, args...))
}

func (m *MockLogger) Error(format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCalls = append(m.errorCalls, fmt.Sprintf(format, args...))
}

func (m *MockLogger) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeCalled = true
	return nil
}

// InfoCalls returns a copy of the recorded info messages.
func (m *MockLogger) InfoCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.infoCalls...)
}

// WarningCalls returns a copy of the recorded warning messages.
func (m *MockLogger) WarningCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.warningCalls...)
}

// ErrorCalls returns a copy of the recorded error messages.
func (m *MockLogger) ErrorCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.errorCalls...)
}

// CloseCalled reports whether Close was called.
func (m *MockLogger) CloseCalled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closeCalled
}

// MultiLogger broadcasts log messages to multiple Logger backends.
type MultiLogger struct {
	loggers []Logger
}

// NewMultiLogger creates a logger that writes to all provided backends in
// order.
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	return &MultiLogger{loggers: loggers}
}

func (m *MultiLogger) Info(format string, args ...interface{}) {
	for _, l := range m.loggers {
		l.Info(format, args...)
	}
}

func (m *MultiLogger) Warning(format string, args ...interface{}) {
	for _, l := range m.loggers {
		l.Warning(format, args...)
	}
}

func (m *MultiLogger) Error(format string, args ...interface{}) {
	for _, l := range m.loggers {
		l.Error(format, args...)
	}
}

// Close closes every backend and returns the first error encountered.
func (m *MultiLogger) Close() error {
	var firstErr error
	for _, l := range m.loggers {
		if err := l.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

var (
	_ Logger = (*ZerologLogger)(nil)
	_ Logger = (*NopLogger)(nil)
	_ Logger = (*MockLogger)(nil)
	_ Logger = (*MultiLogger)(nil)
)
