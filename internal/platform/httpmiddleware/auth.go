package httpmiddleware

import (
	"net/http"
	"strings"

	"taboo.local/gee"
	"taboo.local/internal/platform/auth"
)

// parseBearer returns the token of an "Authorization: Bearer <token>" header, or "".
func parseBearer(header string) string {
	fields := strings.Fields(header)
	if len(fields) != 2 || !strings.EqualFold(fields[0], "Bearer") {
		return ""
	}
	return fields[1]
}

func withIdentity(ctx *gee.Context, id auth.Identity) {
	ctx.Req = ctx.Req.WithContext(auth.WithIdentity(ctx.Req.Context(), id))
}

// AuthRequired rejects requests without a valid TabooTV access token.
func AuthRequired(ts auth.TokenService) gee.HandlerFunc {
	return func(ctx *gee.Context) {
		header := ctx.Req.Header.Get("Authorization")
		if header == "" {
			ctx.AbortWithError(http.StatusUnauthorized, "missing authorization header")
			return
		}
		token := parseBearer(header)
		if token == "" {
			ctx.AbortWithError(http.StatusUnauthorized, "invalid authorization format")
			return
		}
		id, err := ts.Verify(token)
		if err != nil {
			ctx.AbortWithError(http.StatusUnauthorized, "invalid token")
			return
		}
		withIdentity(ctx, id)
		ctx.Next()
	}
}

// AuthOptional attaches the identity when a valid token is present and otherwise
// continues anonymously.
func AuthOptional(ts auth.TokenService) gee.HandlerFunc {
	return func(ctx *gee.Context) {
		if token := parseBearer(ctx.Req.Header.Get("Authorization")); token != "" {
			if id, err := ts.Verify(token); err == nil {
				withIdentity(ctx, id)
			}
		}
		ctx.Next()
	}
}

// RequireRole lets through callers holding one of roles; run it after AuthRequired or
// AuthOptional.
func RequireRole(roles ...string) gee.HandlerFunc {
	return func(ctx *gee.Context) {
		id, ok := auth.GetIdentity(ctx.Req.Context())
		if !ok {
			ctx.AbortWithError(http.StatusUnauthorized, "unauthorized")
			return
		}
		if !id.HasRole(roles...) {
			ctx.AbortWithError(http.StatusForbidden, "forbidden")
			return
		}
		ctx.Next()
	}
}
