// Package obslog provides structured logging with workflow/execution/node
// context propagation, built on Go's standard log/slog package.
package obslog

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with the field builders the executor attaches at
// each stage of a run.
type Logger struct {
	logger *slog.Logger
}

// Config holds logging configuration.
type Config struct {
	Level         string
	Output        io.Writer
	Pretty        bool
	IncludeCaller bool
}

// DefaultConfig returns JSON output at info level, matching production use.
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Output: os.Stdout,
	}
}

// New builds a Logger from cfg.
func New(cfg Config) *Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: cfg.IncludeCaller,
	}

	var handler slog.Handler
	if cfg.Pretty {
		handler = slog.NewTextHandler(output, opts)
	} else {
		handler = slog.NewJSONHandler(output, opts)
	}

	return &Logger{logger: slog.New(handler)}
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithWorkflowID attaches workflow_id to subsequent log lines.
func (l *Logger) WithWorkflowID(id string) *Logger {
	return &Logger{logger: l.logger.With(slog.String("workflow_id", id))}
}

// WithExecutionID attaches execution_id to subsequent log lines.
func (l *Logger) WithExecutionID(id string) *Logger {
	return &Logger{logger: l.logger.With(slog.String("execution_id", id))}
}

// WithNodeID attaches node_id to subsequent log lines.
func (l *Logger) WithNodeID(id string) *Logger {
	return &Logger{logger: l.logger.With(slog.String("node_id", id))}
}

// WithNodeType attaches node_type to subsequent log lines.
func (l *Logger) WithNodeType(nodeType string) *Logger {
	return &Logger{logger: l.logger.With(slog.String("node_type", nodeType))}
}

// WithField attaches an arbitrary key/value pair.
func (l *Logger) WithField(key string, value any) *Logger {
	return &Logger{logger: l.logger.With(slog.Any(key, value))}
}

// WithError attaches an error.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{logger: l.logger.With(slog.Any("error", err))}
}

func (l *Logger) Debug(msg string) { l.logger.Debug(msg) }
func (l *Logger) Info(msg string)  { l.logger.Info(msg) }
func (l *Logger) Warn(msg string)  { l.logger.Warn(msg) }
func (l *Logger) Error(msg string) { l.logger.Error(msg) }

// Debugf logs a formatted debug message.
func (l *Logger) Debugf(format string, args ...any) { l.logger.Debug(fmt.Sprintf(format, args...)) }

// Infof logs a formatted info message.
func (l *Logger) Infof(format string, args ...any) { l.logger.Info(fmt.Sprintf(format, args...)) }

// Warnf logs a formatted warning message.
func (l *Logger) Warnf(format string, args ...any) { l.logger.Warn(fmt.Sprintf(format, args...)) }

// Errorf logs a formatted error message.
func (l *Logger) Errorf(format string, args ...any) { l.logger.Error(fmt.Sprintf(format, args...)) }
