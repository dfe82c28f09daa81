package middleware

import (
	"context"
	"log/slog"
	"time"

	"carmarket/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// ContextMiddleware copies the request id and trace id from Fiber locals into
// the request context so the context-aware logger can pick them up.
func ContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		if rid, ok := c.Locals("requestid").(string); ok {
			ctx = context.WithValue(ctx, observability.RequestIDKey, rid)
		}
		if tid, ok := c.Locals(LocalTraceID).(string); ok {
			ctx = context.WithValue(ctx, observability.TraceIDKey, tid)
		}

		c.SetUserContext(ctx)
		return c.Next()
	}
}

// StructuredLogger logs one line per request using slog.
func StructuredLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		fields := []any{
			slog.Int("status", c.Response().StatusCode()),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("ip", c.IP()),
			slog.Duration("latency", time.Since(start)),
		}
		if err != nil {
			fields = append(fields, slog.String("error", err.Error()))
			observability.Logger.ErrorContext(c.UserContext(), "request failed", fields...)
		} else {
			observability.Logger.InfoContext(c.UserContext(), "request processed", fields...)
		}
		return err
	}
}
