package middleware

import (
	"log/slog"
	"time"

	"taboo.local/gee"
)

// AccessLog writes one "access" line per request. 5xx responses log at error level.
func AccessLog() gee.HandlerFunc {
	return func(ctx *gee.Context) {
		start := time.Now()

		ctx.Next()

		status := ctx.Writer.Status()
		level := slog.LevelInfo
		if status >= 500 {
			level = slog.LevelError
		}
		slog.Log(ctx.Req.Context(), level, "access",
			"request_id", ctx.Req.Header.Get(requestIDHeader),
			"method", ctx.Method,
			"path", ctx.Path,
			"route", ctx.RoutePattern,
			"status", status,
			"bytes", ctx.Writer.Size(),
			"latency_ms", time.Since(start).Milliseconds(),
			"user_agent", ctx.Req.UserAgent(),
		)
	}
}
