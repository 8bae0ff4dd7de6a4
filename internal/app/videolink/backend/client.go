// Package backend talks to the TabooTV catalog API.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"taboo.local/internal/app/videolink"
	"taboo.local/internal/platform/metrics"
)

// maxBody caps catalog responses; a content record is a few hundred bytes.
const maxBody = 64 << 10

// StatusError is returned for non-2xx answers other than 404.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("catalog backend returned status %d", e.StatusCode)
}

type contentResponse struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	SeriesID string `json:"series_id"`
	CourseID string `json:"course_id"`
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient builds a client for baseURL (e.g. https://api.taboo.tv/api). A nil httpClient gets
// an otelhttp-instrumented client with the given timeout.
func NewClient(baseURL, token string, timeout time.Duration, httpClient *http.Client) (*Client, error) {
	if err := videolink.ValidateBaseURL(baseURL); err != nil {
		return nil, fmt.Errorf("backend url %q: %w", baseURL, err)
	}
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: httpClient,
	}, nil
}

// FetchContent loads one content record. A 404 maps to videolink.ErrContentNotFound.
func (c *Client) FetchContent(ctx context.Context, id string) (videolink.Content, error) {
	start := time.Now()
	content, err := c.fetchContent(ctx, id)

	result := "ok"
	switch {
	case errors.Is(err, videolink.ErrContentNotFound):
		result = "not_found"
	case err != nil:
		result = "error"
	}
	metrics.BackendRequestDurationSeconds.WithLabelValues(result).Observe(time.Since(start).Seconds())
	return content, err
}

func (c *Client) fetchContent(ctx context.Context, id string) (videolink.Content, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/videos/"+url.PathEscape(id), nil)
	if err != nil {
		return videolink.Content{}, fmt.Errorf("build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return videolink.Content{}, fmt.Errorf("catalog request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
		return videolink.Content{}, videolink.ErrContentNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
		return videolink.Content{}, &StatusError{StatusCode: resp.StatusCode}
	}

	var body contentResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&body); err != nil {
		return videolink.Content{}, fmt.Errorf("decode catalog response: %w", err)
	}
	return body.toContent(id)
}

// toContent validates the record against the id that was asked for.
func (r contentResponse) toContent(want string) (videolink.Content, error) {
	if !videolink.IsUUID(r.ID) || !strings.EqualFold(r.ID, want) {
		return videolink.Content{}, fmt.Errorf("catalog response id %q does not match %q", r.ID, want)
	}
	kind, err := videolink.ParseKind(r.Type)
	if err != nil {
		return videolink.Content{}, fmt.Errorf("catalog response type %q: %w", r.Type, err)
	}
	c := videolink.Content{ID: strings.ToLower(r.ID), Kind: kind}
	if videolink.IsUUID(r.SeriesID) {
		c.SeriesID = strings.ToLower(r.SeriesID)
	}
	if videolink.IsUUID(r.CourseID) {
		c.CourseID = strings.ToLower(r.CourseID)
	}
	return c, nil
}
