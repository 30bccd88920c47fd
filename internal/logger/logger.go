package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	// Global logger instance
	Logger zerolog.Logger

	output = &switchWriter{w: consoleWriter(os.Stdout)}
)

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
	Logger = zerolog.New(output).With().Timestamp().Caller().Logger()
}

// switchWriter lets Initialize change the destination of loggers that were
// derived before it ran, such as package-level component loggers.
type switchWriter struct {
	mu sync.RWMutex
	w  io.Writer
}

func (s *switchWriter) Write(p []byte) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.w.Write(p)
}

func (s *switchWriter) set(w io.Writer) {
	s.mu.Lock()
	s.w = w
	s.mu.Unlock()
}

func consoleWriter(out io.Writer) io.Writer {
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    false,
	}
}

// Initialize sets the global level and output format. format "json" writes
// one JSON object per line; anything else uses the console writer.
func Initialize(logLevel, format string) {
	InitializeWithWriter(logLevel, format, os.Stdout)
}

// InitializeWithWriter is Initialize with an explicit destination.
func InitializeWithWriter(logLevel, format string, out io.Writer) {
	if strings.EqualFold(format, "json") {
		output.set(out)
	} else {
		output.set(consoleWriter(out))
	}

	zerolog.SetGlobalLevel(ParseLevel(logLevel))

	// Replace standard log with zerolog
	log.Logger = Logger
}

// ParseLevel maps debug/info/warn/error to a zerolog level, defaulting to info.
func ParseLevel(logLevel string) zerolog.Level {
	switch strings.ToLower(logLevel) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// GetForComponent returns a logger with a component field for better filtering
func GetForComponent(component string) zerolog.Logger {
	return Logger.With().Str("component", component).Logger()
}

// FileWriter returns a writer to a log file for optional use alongside console logging
func FileWriter(path string) (io.Writer, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, err
	}
	return file, nil
}
