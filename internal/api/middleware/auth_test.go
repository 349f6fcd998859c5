package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sunflower/sunflower-api/internal/core/domain"
	"github.com/sunflower/sunflower-api/internal/pkg/security"
)

type stubUsers struct {
	users map[string]*domain.User
	err   error
}

func (s *stubUsers) FindByID(_ context.Context, id string) (*domain.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func newCodec(t *testing.T) *security.TokenCodec {
	t.Helper()
	codec, err := security.NewTokenCodec(security.TokenConfig{
		Secret:    "secret",
		Algorithm: "HS256",
		AccessTTL: time.Minute,
	})
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	return codec
}

func newGate(t *testing.T, users ...*domain.User) (*Gate, *security.TokenCodec, *stubUsers) {
	t.Helper()
	codec := newCodec(t)
	store := &stubUsers{users: make(map[string]*domain.User)}
	for _, u := range users {
		store.users[u.ID] = u
	}
	return NewGate(codec, store), codec, store
}

func requestWithAuth(header string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	return req
}

func TestGate_RequireAuth_ValidToken(t *testing.T) {
	alice := &domain.User{ID: "u-1", Email: "a@x.com", IsActive: true}
	gate, codec, _ := newGate(t, alice)
	token, _ := codec.IssueAccess("u-1")

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(requestWithAuth("Bearer "+token), rec)

	called := false
	handler := gate.RequireAuth()(func(c echo.Context) error {
		called = true
		user, ok := UserFrom(c)
		if !ok || user.ID != "u-1" {
			t.Fatalf("user not set in context")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
}

func TestGate_Authenticate_Failures(t *testing.T) {
	alice := &domain.User{ID: "u-1", Email: "a@x.com", IsActive: true}
	inactive := &domain.User{ID: "u-2", Email: "b@x.com"}
	gate, codec, _ := newGate(t, alice, inactive)

	access, _ := codec.IssueAccess("u-1")
	verify, _ := codec.IssueEmailVerification("u-1")
	ghost, _ := codec.IssueAccess("ghost")
	inactiveToken, _ := codec.IssueAccess("u-2")

	cases := map[string]string{
		"missing header":     "",
		"wrong scheme":       "Token " + access,
		"empty bearer":       "Bearer ",
		"garbage":            "Bearer not-a-token",
		"verification token": "Bearer " + verify,
		"unknown subject":    "Bearer " + ghost,
		"inactive user":      "Bearer " + inactiveToken,
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := gate.Authenticate(requestWithAuth(header))
			if !errors.Is(err, domain.ErrUnauthenticated) {
				t.Fatalf("expected ErrUnauthenticated, got %v", err)
			}
		})
	}
}

func TestGate_Authenticate_CaseInsensitiveScheme(t *testing.T) {
	alice := &domain.User{ID: "u-1", IsActive: true}
	gate, codec, _ := newGate(t, alice)
	token, _ := codec.IssueAccess("u-1")

	user, err := gate.Authenticate(requestWithAuth("bearer " + token))
	if err != nil || user.ID != "u-1" {
		t.Fatalf("expected u-1, got %+v (err %v)", user, err)
	}
}

func TestGate_Authenticate_StoreFailureIsNotUnauthenticated(t *testing.T) {
	gate, codec, store := newGate(t)
	store.err = errors.New("mongo down")
	token, _ := codec.IssueAccess("u-1")

	_, err := gate.Authenticate(requestWithAuth("Bearer " + token))
	if err == nil || errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestGate_RequireAuth_DoesNotCallNext(t *testing.T) {
	gate, _, _ := newGate(t)

	e := echo.New()
	c := e.NewContext(requestWithAuth(""), httptest.NewRecorder())

	handler := gate.RequireAuth()(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})
	if err := handler(c); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}
