package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestHS256_SignVerify(t *testing.T) {
	ts, err := NewHS256Service("secret", "tabootv", time.Hour)
	if err != nil {
		t.Fatalf("NewHS256Service: %v", err)
	}
	token, err := ts.Sign("u-1", "creator")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	claims, err := ts.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID != "u-1" || claims.Role != "creator" {
		t.Fatalf("claims: got %+v", claims)
	}
}

func TestHS256_RejectsOtherIssuerAndSecret(t *testing.T) {
	a, _ := NewHS256Service("secret", "tabootv", time.Hour)
	b, _ := NewHS256Service("secret", "someone-else", time.Hour)
	c, _ := NewHS256Service("other-secret", "tabootv", time.Hour)

	token, _ := b.Sign("u-1", "")
	if _, err := a.Verify(token); err == nil {
		t.Fatal("token from another issuer must be rejected")
	}
	token, _ = c.Sign("u-1", "")
	if _, err := a.Verify(token); err == nil {
		t.Fatal("token with another secret must be rejected")
	}
}

func TestHS256_RejectsExpired(t *testing.T) {
	svc, _ := NewHS256Service("secret", "tabootv", time.Minute)
	h := svc.(*hs256Service)
	h.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _ := h.Sign("u-1", "")
	h.now = time.Now

	_, err := h.Verify(token)
	if !errors.Is(err, jwt.ErrTokenExpired) {
		t.Fatalf("got %v, want ErrTokenExpired", err)
	}
}

func TestNewHS256Service_ValidatesArgs(t *testing.T) {
	if _, err := NewHS256Service("", "i", time.Hour); err == nil {
		t.Error("empty secret accepted")
	}
	if _, err := NewHS256Service("s", "", time.Hour); err == nil {
		t.Error("empty issuer accepted")
	}
	if _, err := NewHS256Service("s", "i", 0); err == nil {
		t.Error("zero ttl accepted")
	}
}

func TestIdentityContext(t *testing.T) {
	if _, ok := GetIdentity(context.Background()); ok {
		t.Fatal("empty context has identity")
	}
	ctx := WithIdentity(context.Background(), Identity{UserID: "u-1", Role: "admin"})
	id, ok := GetIdentity(ctx)
	if !ok || id.UserID != "u-1" || id.Role != "admin" {
		t.Fatalf("got %+v, %v", id, ok)
	}
}

func TestIdentity_HasRole(t *testing.T) {
	tests := []struct {
		id    Identity
		roles []string
		want  bool
	}{
		{Identity{}, []string{RoleViewer}, false},
		{Identity{Role: RoleAdmin}, []string{RoleViewer}, false},
		{Identity{UserID: "u-1", Role: RoleCreator}, []string{RoleCreator}, true},
		{Identity{UserID: "u-1", Role: RoleViewer}, []string{RoleCreator, RoleAdmin}, false},
		{Identity{UserID: "u-1", Role: RoleAdmin}, []string{RoleCreator}, true},
		{Identity{UserID: "u-1", Role: RoleViewer}, nil, false},
	}
	for _, tt := range tests {
		if got := tt.id.HasRole(tt.roles...); got != tt.want {
			t.Errorf("%+v.HasRole(%v): got %v, want %v", tt.id, tt.roles, got, tt.want)
		}
	}
}

func TestGetIdentity_AnonymousIsAbsent(t *testing.T) {
	ctx := WithIdentity(context.Background(), Identity{Role: RoleAdmin})
	if _, ok := GetIdentity(ctx); ok {
		t.Fatal("identity without a user id must not count as signed in")
	}
}
