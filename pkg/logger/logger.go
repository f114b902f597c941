package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger wraps slog.Logger with additional functionality
type Logger struct {
	*slog.Logger
}

// New creates a new logger instance
func New() *Logger {
	// Get log level from environment
	level := getLogLevel(os.Getenv("LOG_LEVEL"))

	// Create handler options
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	// Create handler based on environment
	var handler slog.Handler
	if gin.Mode() == gin.DebugMode {
		// Use text handler for development (more readable)
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		// Use JSON handler for production (structured)
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// getLogLevel converts string to slog.Level
func getLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithTabID adds the browser tab id to logger context
func (l *Logger) WithTabID(tabID string) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("tab_id", tabID)),
	}
}

// WithError adds error to logger context
func (l *Logger) WithError(err error) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("error", err.Error())),
	}
}

// WithFields adds multiple fields to logger context
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	return &Logger{
		Logger: l.Logger.With(args...),
	}
}

// LogHTTPRequest logs an HTTP request
func (l *Logger) LogHTTPRequest(c *gin.Context, duration time.Duration) {
	l.Logger.InfoContext(c.Request.Context(),
		"HTTP Request",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("query", c.Request.URL.RawQuery),
		slog.Int("status", c.Writer.Status()),
		slog.Duration("duration", duration),
		slog.String("ip", c.ClientIP()),
		slog.String("user_agent", c.Request.UserAgent()),
		slog.Int("size", c.Writer.Size()),
	)
}

// Reservation lifecycle logging methods

// LogSessionReset logs a hard reset of a tab's reservation session
func (l *Logger) LogSessionReset(ctx context.Context, tripID string, seats int, deadline *time.Time) {
	args := []any{
		slog.String("trip_id", tripID),
		slog.Int("seats", seats),
	}
	if deadline != nil {
		args = append(args, slog.Time("deadline", *deadline))
	}
	l.Logger.InfoContext(ctx, "Reservation Session Reset", args...)
}

// LogSessionExpired logs when a seat hold runs out
func (l *Logger) LogSessionExpired(ctx context.Context, tripID string) {
	l.Logger.WarnContext(ctx,
		"Reservation Session Expired",
		slog.String("trip_id", tripID),
	)
}

// LogReservationCreated logs when the backend confirms a reservation
func (l *Logger) LogReservationCreated(ctx context.Context, reservationID, tripID string, passengers int, authenticated bool) {
	l.Logger.InfoContext(ctx,
		"Reservation Created",
		slog.String("reservation_id", reservationID),
		slog.String("trip_id", tripID),
		slog.Int("passengers", passengers),
		slog.Bool("authenticated", authenticated),
	)
}

// LogSubmissionFailed logs a rejected or failed booking call
func (l *Logger) LogSubmissionFailed(ctx context.Context, tripID string, err error) {
	l.Logger.WarnContext(ctx,
		"Reservation Submission Failed",
		slog.String("trip_id", tripID),
		slog.String("error", err.Error()),
	)
}

// LogDocumentLookup logs the outcome of a national-ID lookup
func (l *Logger) LogDocumentLookup(ctx context.Context, index int, outcome string, duration time.Duration) {
	l.Logger.DebugContext(ctx,
		"Document Lookup",
		slog.Int("passenger_index", index),
		slog.String("outcome", outcome),
		slog.Duration("duration", duration),
	)
}

// Global logger instance (can be replaced with dependency injection)
var defaultLogger = New()

// GetDefault returns the default logger instance
func GetDefault() *Logger {
	return defaultLogger
}

// SetDefault sets the default logger instance
func SetDefault(logger *Logger) {
	defaultLogger = logger
}
