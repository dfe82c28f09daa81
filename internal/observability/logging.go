// Package observability provides logging, metrics, and tracing.
package observability

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger is the global structured logger instance used throughout the application.
var Logger *slog.Logger

type contextKey string

// Context keys picked up by the context-aware handler.
const (
	RequestIDKey contextKey = "request_id"
	UserIDKey    contextKey = "user_id"
	TraceIDKey   contextKey = "trace_id"
)

// ctxHandler is a slog.Handler that adds context values to the log record.
type ctxHandler struct {
	slog.Handler
}

// Handle adds context values to the record before passing it to the underlying handler.
func (h *ctxHandler) Handle(ctx context.Context, r slog.Record) error {
	if rid, ok := ctx.Value(RequestIDKey).(string); ok {
		r.AddAttrs(slog.String("request_id", rid))
	}
	if uid, ok := ctx.Value(UserIDKey).(string); ok {
		r.AddAttrs(slog.String("user_id", uid))
	}
	if tid, ok := ctx.Value(TraceIDKey).(string); ok {
		r.AddAttrs(slog.String("trace_id", tid))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *ctxHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ctxHandler{h.Handler.WithAttrs(attrs)}
}

func (h *ctxHandler) WithGroup(name string) slog.Handler {
	return &ctxHandler{h.Handler.WithGroup(name)}
}

func init() {
	Logger = NewLogger(os.Stdout, os.Getenv("APP_ENV"))
}

// NewLogger builds the application logger: JSON in production, text otherwise.
func NewLogger(w io.Writer, env string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var handler slog.Handler
	if env == "production" || env == "prod" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(&ctxHandler{handler})
}

// SetLogger replaces the global logger, returning the previous one.
func SetLogger(l *slog.Logger) *slog.Logger {
	prev := Logger
	Logger = l
	return prev
}

// WithUserID returns a context whose log records carry the user id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// RepoLogger provides structured logging for repository mutations.
type RepoLogger struct {
	collection string
}

// NewRepoLogger creates a new RepoLogger for the given collection.
func NewRepoLogger(collection string) *RepoLogger {
	return &RepoLogger{collection: collection}
}

func (l *RepoLogger) log(ctx context.Context, operation string, attrs []slog.Attr) {
	base := []slog.Attr{
		slog.String("collection", l.collection),
		slog.String("operation", operation),
	}
	Logger.LogAttrs(ctx, slog.LevelInfo, "repository "+operation, append(base, attrs...)...)
}

// LogCreate logs a repository create operation.
func (l *RepoLogger) LogCreate(ctx context.Context, id string, attrs ...slog.Attr) {
	l.log(ctx, "create", append([]slog.Attr{slog.String("id", id)}, attrs...))
}

// LogUpdate logs a repository update operation.
func (l *RepoLogger) LogUpdate(ctx context.Context, id string, attrs ...slog.Attr) {
	l.log(ctx, "update", append([]slog.Attr{slog.String("id", id)}, attrs...))
}

// LogDelete logs a repository delete operation.
func (l *RepoLogger) LogDelete(ctx context.Context, id string, attrs ...slog.Attr) {
	l.log(ctx, "delete", append([]slog.Attr{slog.String("id", id)}, attrs...))
}

// LogError logs a repository error.
func (l *RepoLogger) LogError(ctx context.Context, err error, operation string) {
	Logger.ErrorContext(ctx, "repository error",
		slog.String("collection", l.collection),
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}
