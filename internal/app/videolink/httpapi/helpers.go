package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"taboo.local/gee"
	"taboo.local/internal/app/videolink"
	"taboo.local/internal/platform/auth"
)

// mustGetUserID writes 401 and returns false when the request carries no identity.
func mustGetUserID(ctx *gee.Context) (string, bool) {
	identity, ok := auth.GetIdentity(ctx.Req.Context())
	if !ok {
		ctx.AbortWithError(http.StatusUnauthorized, "not logged in")
		return "", false
	}
	return identity.UserID, true
}

// tryGetUserID returns "" for anonymous callers.
func tryGetUserID(ctx *gee.Context) string {
	identity, _ := auth.GetIdentity(ctx.Req.Context())
	return identity.UserID
}

// parseCodeParam resolves the :code route param (short code or raw UUID) and writes 400 on
// failure. Overflowing codes get their own message.
func parseCodeParam(ctx *gee.Context) (id string, code string, ok bool) {
	id, err := videolink.ParseLinkSegment(ctx.Param("code"))
	if err != nil {
		msg := "invalid short code"
		if errors.Is(err, videolink.ErrShortCodeOverflow) {
			msg = "short code out of range"
		}
		ctx.AbortWithError(http.StatusBadRequest, msg)
		return "", "", false
	}
	code, err = videolink.Encode(id)
	if err != nil {
		ctx.AbortWithError(http.StatusInternalServerError, "internal error")
		return "", "", false
	}
	return id, code, true
}

// queryInt reads an optional positive integer query param within [1, max]; def when absent.
func queryInt(ctx *gee.Context, key string, def, max int64) (int64, bool) {
	v := ctx.Query(key)
	if v == "" {
		return def, true
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 || n > max {
		ctx.AbortWithError(http.StatusBadRequest, "invalid "+key)
		return 0, false
	}
	return n, true
}

// shareURL builds the public link for code. Without a configured base it is derived from the
// request, honouring X-Forwarded-Proto from the edge proxy.
func shareURL(ctx *gee.Context, shareBaseURL, code string) string {
	path := "/v/" + code
	if shareBaseURL != "" {
		return shareBaseURL + path
	}
	scheme := ctx.Req.Header.Get("X-Forwarded-Proto")
	if scheme != "https" && scheme != "http" {
		scheme = "http"
		if ctx.Req.TLS != nil {
			scheme = "https"
		}
	}
	if host := ctx.Req.Host; host != "" {
		return scheme + "://" + host + path
	}
	return path
}
