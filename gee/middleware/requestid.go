package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"

	"taboo.local/gee"
)

const (
	requestIDHeader = "X-Request-ID"
	maxRequestIDLen = 128
)

// ReqID keeps a sane incoming X-Request-ID or generates one, and echoes it on the response.
func ReqID() gee.HandlerFunc {
	return func(ctx *gee.Context) {
		id := ctx.Req.Header.Get(requestIDHeader)
		if !validRequestID(id) {
			id = GenerateReqID()
			if id == "" {
				id = strconv.FormatInt(time.Now().UnixNano(), 10)
			}
			ctx.Req.Header.Set(requestIDHeader, id)
		}
		ctx.SetHeader(requestIDHeader, id)

		ctx.Next()
	}
}

// GenerateReqID returns 32 hex chars, or "" if the system RNG fails.
func GenerateReqID() string {
	src := make([]byte, 16)
	if _, err := rand.Read(src); err != nil {
		return ""
	}
	return hex.EncodeToString(src)
}

// validRequestID accepts printable ASCII without spaces so ids are safe to log and echo.
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] <= ' ' || id[i] > '~' {
			return false
		}
	}
	return true
}
