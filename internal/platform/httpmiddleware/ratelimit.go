package httpmiddleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"taboo.local/gee"
	"taboo.local/internal/platform/auth"
	"taboo.local/internal/platform/ratelimit"
)

var rateLimitMemberSeq uint64

// ClientIP returns the caller's address for rate limiting and click stats.
//
// Forwarding headers are only trusted when the peer is a trusted proxy (loopback or private
// network); otherwise a client could spoof X-Forwarded-For.
func ClientIP(req *http.Request) string {
	remoteHost, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		remoteHost = req.RemoteAddr
	}
	remoteIP := net.ParseIP(remoteHost)
	if remoteIP == nil || !isTrustedProxy(remoteIP) {
		return remoteHost
	}

	// Cloudflare -> Caddy -> app
	if cf := strings.TrimSpace(req.Header.Get("CF-Connecting-IP")); cf != "" {
		if net.ParseIP(cf) != nil {
			return cf
		}
	}

	// first hop is the original client
	if xff := req.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i >= 0 {
			xff = xff[:i]
		}
		xff = strings.TrimSpace(xff)
		if net.ParseIP(xff) != nil {
			return xff
		}
	}

	if xrip := strings.TrimSpace(req.Header.Get("X-Real-IP")); xrip != "" {
		if net.ParseIP(xrip) != nil {
			return xrip
		}
	}

	return remoteHost
}

func isTrustedProxy(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsPrivate()
}

// rateLimitSubject keys authenticated callers by user id and everyone else by IP.
func rateLimitSubject(req *http.Request) string {
	if id, ok := auth.GetIdentity(req.Context()); ok {
		return "u:" + id.UserID
	}
	return "ip:" + ClientIP(req)
}

// RateLimit allows limit requests per window for each subject under prefix. A nil limiter
// disables it; limiter errors fail open.
func RateLimit(limiter ratelimit.Allower, prefix string, limit int, window time.Duration) gee.HandlerFunc {
	return func(ctx *gee.Context) {
		if limiter == nil {
			ctx.Next()
			return
		}
		key := "rl:" + prefix + ":" + rateLimitSubject(ctx.Req)

		// ZADD members must differ per request; UnixNano alone can repeat on coarse clocks.
		member := strconv.FormatInt(time.Now().UnixNano(), 10) + "-" + strconv.FormatUint(atomic.AddUint64(&rateLimitMemberSeq, 1), 10)
		rlCtx, cancel := context.WithTimeout(ctx.Req.Context(), 50*time.Millisecond)
		defer cancel()
		allowed, retryAfter, err := limiter.Allow(rlCtx, key, limit, window, member)
		if err != nil {
			slog.Error("rate limit check failed", "err", err, "key", key)
			ctx.Next()
			return
		}
		if !allowed {
			if retryAfter > 0 {
				secs := int64((retryAfter + time.Second - 1) / time.Second)
				ctx.SetHeader("Retry-After", strconv.FormatInt(secs, 10))
			}
			ctx.AbortWithError(http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		ctx.Next()
	}
}
