package gee

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// MaxJSONBody caps request bodies read by ShouldBindJSON.
const MaxJSONBody = 1 << 20

var ErrEmptyBody = errors.New("empty body")

// ShouldBindJSON decodes exactly one JSON value and rejects unknown fields.
func (c *Context) ShouldBindJSON(dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(c.Writer, c.Req.Body, MaxJSONBody))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return errors.New("body must contain only one JSON value")
	}
	return nil
}

// BindJSON is ShouldBindJSON that answers 400 on failure.
func (c *Context) BindJSON(dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.AbortWithError(http.StatusBadRequest, "invalid json")
		return err
	}
	return nil
}
