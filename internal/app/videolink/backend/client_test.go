package backend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"taboo.local/internal/app/videolink"
)

const testID = "123e4567-e89b-12d3-a456-426614174000"

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(srv.URL+"/api/", "secret", time.Second, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestFetchContent_OK(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/videos/"+testID {
			t.Errorf("path: got %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization: got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"123E4567-E89B-12D3-A456-426614174000","type":"Video","series_id":"00000000-0000-0000-0000-000000000001","course_id":null}`))
	})

	got, err := c.FetchContent(context.Background(), testID)
	if err != nil {
		t.Fatalf("FetchContent: %v", err)
	}
	want := videolink.Content{ID: testID, Kind: videolink.KindVideo, SeriesID: "00000000-0000-0000-0000-000000000001"}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestFetchContent_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	if _, err := c.FetchContent(context.Background(), testID); !errors.Is(err, videolink.ErrContentNotFound) {
		t.Fatalf("got %v, want ErrContentNotFound", err)
	}
}

func TestFetchContent_ServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err := c.FetchContent(context.Background(), testID)
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusBadGateway {
		t.Fatalf("got %v, want StatusError 502", err)
	}
	if errors.Is(err, videolink.ErrContentNotFound) {
		t.Fatal("5xx must not read as not found")
	}
}

func TestFetchContent_BadPayloads(t *testing.T) {
	for name, body := range map[string]string{
		"not json":     `<html>`,
		"wrong id":     `{"id":"00000000-0000-0000-0000-000000000009","type":"video"}`,
		"unknown type": `{"id":"` + testID + `","type":"podcast"}`,
	} {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			})
			_, err := c.FetchContent(context.Background(), testID)
			if err == nil || errors.Is(err, videolink.ErrContentNotFound) {
				t.Fatalf("got %v, want a non-not-found error", err)
			}
		})
	}
}

func TestFetchContent_Timeout(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := c.FetchContent(ctx, testID); err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestNewClient_RejectsBadURL(t *testing.T) {
	for _, u := range []string{"", "ftp://x", "http://", "http://x/?q=1"} {
		if _, err := NewClient(u, "", time.Second, nil); !errors.Is(err, videolink.ErrInvalidBaseURL) {
			t.Errorf("NewClient(%q): got %v", u, err)
		}
	}
}
