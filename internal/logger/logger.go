package logger

import (
	"fmt"
	"io"
	"log"
	"os"
)

// Logger writes timestamped lines to the console and to a log file. It is
// passed explicitly to the components that need it so tests can capture
// output deterministically.
type Logger struct {
	debugEnabled bool
	file         *os.File
	debugLogger  *log.Logger
	infoLogger   *log.Logger
	errorLogger  *log.Logger
}

type Config struct {
	// File is the log file path. Empty disables file logging.
	File string
	// Debug enables debug-level output.
	Debug bool
	// Out overrides the console writer; defaults to os.Stdout.
	Out io.Writer
}

// New creates a logger writing to the console and, when configured, appending
// to the log file.
func New(config Config) (*Logger, error) {
	out := config.Out
	if out == nil {
		out = os.Stdout
	}

	var file *os.File
	if config.File != "" {
		f, err := os.OpenFile(config.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", config.File, err)
		}
		file = f
		out = io.MultiWriter(out, f)
	}

	return &Logger{
		debugEnabled: config.Debug,
		file:         file,
		debugLogger:  log.New(out, "DEBUG: ", log.Ldate|log.Ltime),
		infoLogger:   log.New(out, "INFO: ", log.Ldate|log.Ltime),
		errorLogger:  log.New(out, "ERROR: ", log.Ldate|log.Ltime),
	}, nil
}

// Debug logs a debug message if debug mode is enabled
func (l *Logger) Debug(format string, v ...interface{}) {
	if l.debugEnabled {
		l.debugLogger.Output(2, fmt.Sprintf(format, v...))
	}
}

// Info logs an info message
func (l *Logger) Info(format string, v ...interface{}) {
	l.infoLogger.Output(2, fmt.Sprintf(format, v...))
}

// Error logs an error message
func (l *Logger) Error(format string, v ...interface{}) {
	l.errorLogger.Output(2, fmt.Sprintf(format, v...))
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}
