package httpapi

import (
	"net/http"
	"time"

	"taboo.local/gee"
	"taboo.local/internal/app/videolink"
	"taboo.local/internal/app/videolink/stats"
	"taboo.local/internal/platform/auth"
	"taboo.local/internal/platform/httpmiddleware"
	"taboo.local/internal/platform/ratelimit"
)

// Deps is everything the routes need. Shares, Collector and Limiter may be nil.
type Deps struct {
	Lookup    videolink.ContentLookup
	Shares    ShareStore
	Collector stats.Collector
	Tokens    auth.TokenService
	Limiter   ratelimit.Allower

	WebBaseURL    string
	ShareBaseURL  string
	LookupTimeout time.Duration
}

// RegisterAPIRoutes mounts the link API under api (normally /api/v1). Handlers only translate
// between HTTP and the videolink package.
func RegisterAPIRoutes(api *gee.RouterGroup, d Deps) {
	api.Use(httpmiddleware.AuthOptional(d.Tokens))

	api.POST("/links", httpmiddleware.RateLimit(d.Limiter, "links", 30, time.Minute), NewCreateLinkHandler(d.Shares, d.ShareBaseURL))
	api.GET("/links/:code", NewDecodeLinkHandler())
	api.GET("/links/:code/qr", httpmiddleware.RateLimit(d.Limiter, "qr", 60, time.Minute), NewQRHandler(d.ShareBaseURL))

	users := api.Group("/users/me")
	users.Use(httpmiddleware.AuthRequired(d.Tokens))
	admin := api.Group("/admin")
	admin.Use(httpmiddleware.AuthRequired(d.Tokens), httpmiddleware.RequireRole(auth.RoleAdmin))

	if d.Shares == nil {
		unavailable := func(ctx *gee.Context) {
			ctx.AbortWithError(http.StatusServiceUnavailable, "share storage disabled")
		}
		users.GET("/links", unavailable)
		users.GET("/links/:code/stats", unavailable)
		admin.GET("/links/:code/stats", unavailable)
		return
	}
	users.GET("/links", NewMyLinksHandler(d.Shares, d.ShareBaseURL))
	users.GET("/links/:code/stats", NewLinkStatsHandler(d.Shares))
	admin.GET("/links/:code/stats", NewAdminLinkStatsHandler(d.Shares))
}

// RegisterPublicRoutes mounts the share link entry point at the root, outside /api/v1, so
// links stay short: /v/{code}.
func RegisterPublicRoutes(engine *gee.Engine, d Deps) {
	timeout := d.LookupTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	engine.GET("/v/:code",
		httpmiddleware.RateLimit(d.Limiter, "redirect", 300, time.Minute),
		NewRedirectHandler(d.Lookup, d.Collector, d.WebBaseURL, timeout),
	)
}
