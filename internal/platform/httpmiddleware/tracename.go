package httpmiddleware

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"taboo.local/gee"
)

// TraceName renames the otelhttp server span to "METHOD /route/:pattern" once routing is done.
func TraceName() gee.HandlerFunc {
	return func(ctx *gee.Context) {
		ctx.Next()

		span := trace.SpanFromContext(ctx.Req.Context())
		if !span.IsRecording() {
			return
		}
		route := ctx.RoutePattern
		if route == "" {
			route = "UNMATCHED"
		}
		span.SetName(ctx.Method + " " + route)
		span.SetAttributes(attribute.String("http.route", route))
	}
}
