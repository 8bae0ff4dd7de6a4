package gee

import (
	"log/slog"
	"time"
)

// Logger is a minimal request log; production routes use middleware.AccessLog instead.
func Logger() HandlerFunc {
	return func(ctx *Context) {
		t := time.Now()
		ctx.Next()
		slog.Debug("request",
			"status", ctx.Writer.Status(),
			"method", ctx.Method,
			"uri", ctx.Req.RequestURI,
			"latency", time.Since(t),
			"bytes", ctx.Writer.Size(),
		)
	}
}
