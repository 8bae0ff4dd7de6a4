package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"taboo.local/gee"
	"taboo.local/internal/app/videolink"
	"taboo.local/internal/app/videolink/stats"
	"taboo.local/internal/platform/httpmiddleware"
	"taboo.local/internal/platform/metrics"
)

const (
	outcomeResolved = "resolved"
	outcomeFallback = "fallback"
	outcomeNotFound = "not_found"
	outcomeInvalid  = "invalid"
)

// NewRedirectHandler serves /v/:code. A short code or a raw UUID is resolved against the
// catalog and answered with 307 to the page matching the content type. When the catalog is
// unreachable the generic watch page is used; only a definite not-found is a 404.
func NewRedirectHandler(lookup videolink.ContentLookup, collector stats.Collector, webBaseURL string, timeout time.Duration) gee.HandlerFunc {
	return func(ctx *gee.Context) {
		segment := ctx.Param("code")
		id, err := videolink.ParseLinkSegment(segment)
		if err != nil {
			metrics.RedirectsTotal.WithLabelValues(outcomeInvalid).Inc()
			ctx.AbortWithError(http.StatusNotFound, "link not found")
			return
		}

		lookupCtx, cancel := context.WithTimeout(ctx.Req.Context(), timeout)
		content, err := lookup.Lookup(lookupCtx, id)
		cancel()

		var dest, outcome string
		switch {
		case err == nil:
			dest, outcome = videolink.Destination(content), outcomeResolved
		case errors.Is(err, videolink.ErrContentNotFound):
			metrics.RedirectsTotal.WithLabelValues(outcomeNotFound).Inc()
			ctx.AbortWithError(http.StatusNotFound, "content not found")
			return
		default:
			slog.Warn("catalog lookup failed, using fallback destination",
				"request_id", ctx.Req.Header.Get("X-Request-ID"),
				"content_id", id,
				"err", err,
			)
			dest, outcome = videolink.FallbackDestination(id), outcomeFallback
		}
		metrics.RedirectsTotal.WithLabelValues(outcome).Inc()

		if collector != nil && ctx.Method == http.MethodGet {
			collectClick(ctx, collector, id)
		}

		ctx.SetHeader("Cache-Control", "no-store")
		ctx.Redirect(http.StatusTemporaryRedirect, videolink.JoinLocation(webBaseURL, dest, ctx.Req.URL.RawQuery))
	}
}

// collectClick records the canonical code even when the link used a raw UUID or a short form.
func collectClick(ctx *gee.Context, collector stats.Collector, id string) {
	code, err := videolink.Encode(id)
	if err != nil {
		slog.Error("click not collected", "content_id", id, "err", err)
		return
	}
	collector.Collect(stats.ClickEvent{
		ContentID: id,
		Code:      code,
		ClickedAt: time.Now(),
		IP:        httpmiddleware.ClientIP(ctx.Req),
		UserAgent: ctx.Req.UserAgent(),
		Referer:   ctx.Req.Referer(),
	})
}
