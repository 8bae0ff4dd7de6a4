package httpapi

import (
	"log/slog"
	"net/http"

	qrcode "github.com/skip2/go-qrcode"
	"taboo.local/gee"
)

const (
	qrDefaultSize = 256
	qrMinSize     = 128
	qrMaxSize     = 1024
)

// NewQRHandler renders the share URL of :code as a PNG QR code.
func NewQRHandler(shareBaseURL string) gee.HandlerFunc {
	return func(ctx *gee.Context) {
		_, code, ok := parseCodeParam(ctx)
		if !ok {
			return
		}
		size, ok := queryInt(ctx, "size", qrDefaultSize, qrMaxSize)
		if !ok {
			return
		}
		if size < qrMinSize {
			ctx.AbortWithError(http.StatusBadRequest, "invalid size")
			return
		}

		png, err := qrcode.Encode(shareURL(ctx, shareBaseURL, code), qrcode.Medium, int(size))
		if err != nil {
			slog.Error("qr encode failed", "code", code, "err", err)
			ctx.AbortWithError(http.StatusInternalServerError, "qr encode failed")
			return
		}
		ctx.SetHeader("Cache-Control", "public, max-age=86400")
		ctx.Data(http.StatusOK, "image/png", png)
	}
}
