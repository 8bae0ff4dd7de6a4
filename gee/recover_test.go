package gee

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRecoveryReturnsFiveHundred(t *testing.T) {
	engine := New()
	engine.Use(Recovery())
	engine.GET("/panic", func(ctx *Context) {
		panic("test panic")
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}
	if !strings.Contains(w.Body.String(), "Internal Server Error") {
		t.Errorf("expected body to contain 'Internal Server Error', got: %s", w.Body.String())
	}
}

func TestRecoveryStopsHandlerChain(t *testing.T) {
	executed := make([]int, 0)

	engine := New()
	engine.Use(Recovery())
	engine.Use(func(ctx *Context) {
		executed = append(executed, 1)
		ctx.Next()
	})
	engine.GET("/panic", func(ctx *Context) {
		executed = append(executed, 2)
		panic("test panic")
	}, func(ctx *Context) {
		executed = append(executed, 3)
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	if len(executed) != 2 {
		t.Errorf("expected 2 handlers executed, got %d: %v", len(executed), executed)
	}
}

func TestDefaultMiddlewareOrder(t *testing.T) {
	engine := Default()
	engine.Use(func(ctx *Context) {
		panic("panic in middleware")
	})
	engine.GET("/test", func(ctx *Context) {
		ctx.String(http.StatusOK, "ok")
	})

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Recovery should catch panic, but got: %v", r)
		}
	}()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}
}

func TestRecoveryWhenResponseAlreadyWritten(t *testing.T) {
	engine := New()
	engine.Use(Recovery())
	engine.GET("/panic", func(ctx *Context) {
		ctx.String(http.StatusOK, "partial")
		panic("test panic after write")
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200 (already written), got %d", w.Code)
	}
}
