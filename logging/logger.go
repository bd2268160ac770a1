package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"
)

// LogLevel is a thin enum for user friendly level configuration decoupled from slog.
type LogLevel int

const (
	// LogLevelDebug is the debug logging level.
	LogLevelDebug LogLevel = iota
	// LogLevelInfo is the informational logging level.
	LogLevelInfo
	// LogLevelWarn is the warning logging level.
	LogLevelWarn
	// LogLevelError is the error logging level.
	LogLevelError
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger defines the minimal logging interface for ConceptMesh.
// This allows users to provide their own logger implementation or use the built-in adapters.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SlogAdapter wraps *slog.Logger to implement the Logger interface.
type SlogAdapter struct {
	*slog.Logger
}

// Debug logs a debug message.
func (s *SlogAdapter) Debug(msg string, args ...any) { s.Logger.Debug(msg, args...) }

// Info logs an informational message.
func (s *SlogAdapter) Info(msg string, args ...any) { s.Logger.Info(msg, args...) }

// Warn logs a warning message.
func (s *SlogAdapter) Warn(msg string, args ...any) { s.Logger.Warn(msg, args...) }

// Error logs an error message.
func (s *SlogAdapter) Error(msg string, args ...any) { s.Logger.Error(msg, args...) }

// NewSlogAdapter creates a Logger from *slog.Logger.
func NewSlogAdapter(logger *slog.Logger) Logger {
	return &SlogAdapter{Logger: logger}
}

// NewDefaultSlogLogger creates a Logger using slog.Default().
func NewDefaultSlogLogger() Logger {
	return NewSlogAdapter(slog.Default())
}

// ConceptMeshLogger wraps slog.Logger adding contextual cloning helpers and
// domain convenience methods. It should be cheap to copy via With* methods.
type ConceptMeshLogger struct {
	logger        *slog.Logger
	level         LogLevel
	context       map[string]any
	component     string
	explorationID string
	taskID        string
}

// LoggerConfig configures construction of a ConceptMeshLogger.
type LoggerConfig struct {
	Level         LogLevel
	Format        string // json or text
	Output        io.Writer
	AddSource     bool
	Component     string
	ExplorationID string
	TaskID        string
}

// DefaultLoggerConfig returns a baseline JSON info level configuration.
func DefaultLoggerConfig() *LoggerConfig {
	return &LoggerConfig{Level: LogLevelInfo, Format: "json", Output: os.Stdout, AddSource: true}
}

// NewLogger builds a ConceptMeshLogger from a config (or defaults if nil).
func NewLogger(cfg *LoggerConfig) *ConceptMeshLogger {
	if cfg == nil {
		cfg = DefaultLoggerConfig()
	}
	opts := &slog.HandlerOptions{Level: slogLevel(cfg.Level), AddSource: cfg.AddSource}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(cfg.Output, opts)
	} else {
		handler = slog.NewJSONHandler(cfg.Output, opts)
	}
	return &ConceptMeshLogger{
		logger:        slog.New(handler),
		level:         cfg.Level,
		context:       map[string]any{},
		component:     cfg.Component,
		explorationID: cfg.ExplorationID,
		taskID:        cfg.TaskID,
	}
}

func slogLevel(l LogLevel) slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelInfo:
		return slog.LevelInfo
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *ConceptMeshLogger) clone() *ConceptMeshLogger {
	nl := *l
	nl.context = map[string]any{}
	for k, v := range l.context {
		nl.context[k] = v
	}
	return &nl
}

// WithContext adds a key/value attribute that will be attached to every log entry.
func (l *ConceptMeshLogger) WithContext(key string, value any) *ConceptMeshLogger {
	nl := l.clone()
	nl.context[key] = value
	return nl
}

// WithComponent sets the logical component (orchestrator, graph, agent, etc.).
func (l *ConceptMeshLogger) WithComponent(c string) *ConceptMeshLogger {
	nl := l.clone()
	nl.component = c
	return nl
}

// WithExploration attaches exploration and task identifiers.
func (l *ConceptMeshLogger) WithExploration(explorationID, taskID string) *ConceptMeshLogger {
	nl := l.clone()
	nl.explorationID = explorationID
	nl.taskID = taskID
	return nl
}

func (l *ConceptMeshLogger) buildAttrs() []slog.Attr {
	attrs := make([]slog.Attr, 0, len(l.context)+4)
	if l.component != "" {
		attrs = append(attrs, slog.String("component", l.component))
	}
	if l.explorationID != "" {
		attrs = append(attrs, slog.String("exploration_id", l.explorationID))
	}
	if l.taskID != "" {
		attrs = append(attrs, slog.String("task_id", l.taskID))
	}
	attrs = append(attrs, slog.Time("timestamp", time.Now()))
	for k, v := range l.context {
		attrs = append(attrs, slog.Any(k, v))
	}
	return attrs
}

func (l *ConceptMeshLogger) log(level slog.Level, allowed bool, msg string, args ...any) {
	if !allowed {
		return
	}
	attrs := l.buildAttrs()
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	l.logger.LogAttrs(context.Background(), level, msg, attrs...)
}

// Debug logs at debug level.
func (l *ConceptMeshLogger) Debug(msg string, args ...any) {
	l.log(slog.LevelDebug, l.level <= LogLevelDebug, msg, args...)
}

// Info logs at info level.
func (l *ConceptMeshLogger) Info(msg string, args ...any) {
	l.log(slog.LevelInfo, l.level <= LogLevelInfo, msg, args...)
}

// Warn logs at warn level.
func (l *ConceptMeshLogger) Warn(msg string, args ...any) {
	l.log(slog.LevelWarn, l.level <= LogLevelWarn, msg, args...)
}

// Error logs at error level.
func (l *ConceptMeshLogger) Error(msg string, args ...any) {
	l.log(slog.LevelError, l.level <= LogLevelError, msg, args...)
}

// LogAgentCall records execution details for one agent capability invocation.
func (l *ConceptMeshLogger) LogAgentCall(agent string, dur time.Duration, success bool, errKind string) {
	attrs := l.buildAttrs()
	attrs = append(attrs, slog.String("agent", agent), slog.Duration("duration", dur), slog.Bool("success", success))
	if errKind != "" {
		attrs = append(attrs, slog.String("error_kind", errKind))
	}
	level := slog.LevelInfo
	msg := "Agent call completed"
	if !success {
		level = slog.LevelWarn
		msg = "Agent call failed"
	}
	l.logger.LogAttrs(context.Background(), level, msg, attrs...)
}

// LogEmbeddingCall records latency and cache behavior for an embedding lookup.
func (l *ConceptMeshLogger) LogEmbeddingCall(textLen int, dur time.Duration, cacheHit, success bool) {
	attrs := l.buildAttrs()
	attrs = append(attrs,
		slog.Int("text_len", textLen),
		slog.Duration("duration", dur),
		slog.Bool("cache_hit", cacheHit),
		slog.Bool("success", success),
	)
	l.logger.LogAttrs(context.Background(), slog.LevelDebug, "Embedding lookup", attrs...)
}

// LogExplorationRun records aggregate metrics for a finished exploration.
func (l *ConceptMeshLogger) LogExplorationRun(concept string, tasks, failedTasks, nodes int, dur time.Duration) {
	attrs := l.buildAttrs()
	attrs = append(attrs,
		slog.String("concept", concept),
		slog.Int("task_count", tasks),
		slog.Int("failed_tasks", failedTasks),
		slog.Int("node_count", nodes),
		slog.Duration("duration", dur),
	)
	l.logger.LogAttrs(context.Background(), slog.LevelInfo, "Exploration completed", attrs...)
}

// NoOpLogger discards all log messages. Useful for testing or when logging is disabled.
type NoOpLogger struct{}

// Debug logs a debug message.
func (NoOpLogger) Debug(string, ...any) {}

// Info logs an informational message.
func (NoOpLogger) Info(string, ...any) {}

// Warn logs a warning message.
func (NoOpLogger) Warn(string, ...any) {}

// Error logs an error message.
func (NoOpLogger) Error(string, ...any) {}
