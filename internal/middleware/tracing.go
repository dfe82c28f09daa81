package middleware

import (
	"fmt"

	"carmarket/internal/observability"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// TracingMiddleware opens a server span per request and continues any trace
// propagated by the caller.
func TracingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := otel.GetTextMapPropagator().Extract(c.UserContext(), propagation.HeaderCarrier(c.GetReqHeaders()))

		ctx, span := observability.Tracer.Start(ctx, fmt.Sprintf("%s %s", c.Method(), c.Path()),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Method()),
				attribute.String("http.path", c.Path()),
			),
		)
		defer span.End()

		traceID := span.SpanContext().TraceID().String()
		c.Locals(LocalTraceID, traceID)
		c.Set("X-Trace-ID", traceID)
		if rid, ok := c.Locals("requestid").(string); ok {
			span.SetAttributes(attribute.String("request.id", rid))
		}
		c.SetUserContext(ctx)

		err := c.Next()

		// Span names use the route pattern, not the raw path.
		if route := c.Route().Path; route != "" && route != "/" {
			span.SetName(c.Method() + " " + route)
			span.SetAttributes(attribute.String("http.route", route))
		}
		span.SetAttributes(attribute.Int("http.status_code", c.Response().StatusCode()))
		if err != nil {
			span.RecordError(err)
		}
		if uid, ok := c.Locals(LocalUserID).(string); ok {
			span.SetAttributes(attribute.String("user.id", uid))
		}
		return err
	}
}
