package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"taboo.local/gee"
	"taboo.local/internal/app/videolink"
	"taboo.local/internal/app/videolink/repo"
	"taboo.local/internal/platform/metrics"
)

// ShareStore is the persistence the link endpoints need; *repo.SharesRepo implements it.
type ShareStore interface {
	Record(ctx context.Context, contentID, code, userID string) (repo.ShareLink, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]repo.ShareLink, error)
	UserOwns(ctx context.Context, userID, contentID string) (bool, error)
	Stats(ctx context.Context, contentID string, limit int, cursor int64) (*repo.StatsResponse, error)
}

type CreateLinkRequest struct {
	ContentID string `json:"content_id"`
}

type LinkResponse struct {
	Code      string `json:"code"`
	ShortURL  string `json:"short_url,omitempty"`
	ContentID string `json:"content_id"`
}

type UserLink struct {
	repo.ShareLink
	ShortURL string `json:"short_url"`
}

// NewCreateLinkHandler encodes content_id into its share link. Shares are recorded when a
// store is configured, attributed to the caller if signed in.
func NewCreateLinkHandler(shares ShareStore, shareBaseURL string) gee.HandlerFunc {
	return func(ctx *gee.Context) {
		var req CreateLinkRequest
		if err := ctx.BindJSON(&req); err != nil {
			return
		}
		contentID := strings.TrimSpace(req.ContentID)
		code, err := videolink.Encode(contentID)
		if err != nil {
			ctx.AbortWithError(http.StatusBadRequest, "content_id must be a UUID")
			return
		}
		contentID = strings.ToLower(contentID)

		if shares != nil {
			if _, err := shares.Record(ctx.Req.Context(), contentID, code, tryGetUserID(ctx)); err != nil {
				slog.Error("record share failed", "content_id", contentID, "err", err)
				ctx.AbortWithError(http.StatusInternalServerError, "share link create failed")
				return
			}
		}
		metrics.LinksCreatedTotal.Inc()

		ctx.JSON(http.StatusOK, LinkResponse{
			Code:      code,
			ShortURL:  shareURL(ctx, shareBaseURL, code),
			ContentID: contentID,
		})
	}
}

// NewDecodeLinkHandler answers what a code points to, without touching the catalog.
func NewDecodeLinkHandler() gee.HandlerFunc {
	return func(ctx *gee.Context) {
		id, code, ok := parseCodeParam(ctx)
		if !ok {
			return
		}
		ctx.JSON(http.StatusOK, LinkResponse{Code: code, ContentID: id})
	}
}

func NewMyLinksHandler(shares ShareStore, shareBaseURL string) gee.HandlerFunc {
	return func(ctx *gee.Context) {
		userID, ok := mustGetUserID(ctx)
		if !ok {
			return
		}
		limit, ok := queryInt(ctx, "limit", 50, 100)
		if !ok {
			return
		}
		list, err := shares.ListByUser(ctx.Req.Context(), userID, int(limit))
		if err != nil {
			slog.Error("list user shares failed", "user_id", userID, "err", err)
			ctx.AbortWithError(http.StatusInternalServerError, "internal error")
			return
		}
		out := make([]UserLink, 0, len(list))
		for _, l := range list {
			out = append(out, UserLink{ShareLink: l, ShortURL: shareURL(ctx, shareBaseURL, l.Code)})
		}
		ctx.JSON(http.StatusOK, out)
	}
}

// NewLinkStatsHandler is limited to users who created the share.
func NewLinkStatsHandler(shares ShareStore) gee.HandlerFunc {
	return func(ctx *gee.Context) {
		userID, ok := mustGetUserID(ctx)
		if !ok {
			return
		}
		id, _, ok := parseCodeParam(ctx)
		if !ok {
			return
		}

		owns, err := shares.UserOwns(ctx.Req.Context(), userID, id)
		if err != nil {
			ctx.AbortWithError(http.StatusInternalServerError, "internal error")
			return
		}
		if !owns {
			ctx.AbortWithError(http.StatusForbidden, "no permission")
			return
		}
		writeStats(ctx, shares, id)
	}
}

// NewAdminLinkStatsHandler serves the same stats for any share; mount it behind RequireRole.
func NewAdminLinkStatsHandler(shares ShareStore) gee.HandlerFunc {
	return func(ctx *gee.Context) {
		id, _, ok := parseCodeParam(ctx)
		if !ok {
			return
		}
		writeStats(ctx, shares, id)
	}
}

func writeStats(ctx *gee.Context, shares ShareStore, id string) {
	limit, ok := queryInt(ctx, "limit", 20, 100)
	if !ok {
		return
	}
	cursor, ok := queryInt(ctx, "cursor", 0, 1<<62)
	if !ok {
		return
	}

	resp, err := shares.Stats(ctx.Req.Context(), id, int(limit), cursor)
	if errors.Is(err, repo.ErrShareNotFound) {
		ctx.AbortWithError(http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		slog.Error("share stats failed", "content_id", id, "err", err)
		ctx.AbortWithError(http.StatusInternalServerError, "internal error")
		return
	}
	ctx.JSON(http.StatusOK, resp)
}
