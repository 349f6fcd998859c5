package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sunflower/sunflower-api/internal/api/middleware"
	"github.com/sunflower/sunflower-api/internal/core/domain"
	"github.com/sunflower/sunflower-api/internal/core/ports"
)

type stubAuthService struct {
	registerFn      func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	loginFn         func(ctx context.Context, email, password string) (*ports.LoginResult, error)
	verifyFn        func(ctx context.Context, user *domain.User, token string) (string, error)
	resendFn        func(ctx context.Context, user *domain.User) (string, error)
	updateProfileFn func(ctx context.Context, user *domain.User, update domain.ProfileUpdate) (*domain.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) VerifyEmail(ctx context.Context, user *domain.User, token string) (string, error) {
	return s.verifyFn(ctx, user, token)
}

func (s *stubAuthService) ResendVerification(ctx context.Context, user *domain.User) (string, error) {
	return s.resendFn(ctx, user)
}

func (s *stubAuthService) UpdateProfile(ctx context.Context, user *domain.User, update domain.ProfileUpdate) (*domain.User, error) {
	return s.updateProfileFn(ctx, user, update)
}

func newTestContext(method, target, body string, user *domain.User) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if user != nil {
		c.Set(middleware.ContextKeyUser, user)
	}
	return c, rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return resp
}

const validRegisterBody = `{"email":"a@x.com","username":"alice","password":"password1","full_name":"Alice","visa_status":"F1"}`

func TestAuthHandler_Register_Success(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
			if in.Email != "a@x.com" || in.Username != "alice" || in.Password != "password1" || in.VisaStatus != "F1" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.User{ID: "u-1", Email: in.Email, Username: in.Username, PasswordHash: "hash", IsActive: true}, nil
		},
	}
	c, rec := newTestContext(http.MethodPost, "/api/v1/auth/register", validRegisterBody, nil)

	if err := NewAuthHandler(stub).Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	resp := decode(t, rec)
	if resp["id"] != "u-1" || resp["email"] != "a@x.com" || resp["is_verified"] != false {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if strings.Contains(rec.Body.String(), "hash") {
		t.Fatalf("password hash leaked: %s", rec.Body.String())
	}
}

func TestAuthHandler_Register_UserExists(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
			return nil, domain.ErrUserExists
		},
	}
	c, _ := newTestContext(http.MethodPost, "/api/v1/auth/register", validRegisterBody, nil)

	if err := NewAuthHandler(stub).Register(c); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthHandler_Register_InvalidPayload(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	c, _ := newTestContext(http.MethodPost, "/api/v1/auth/register", "not-json", nil)

	err := NewAuthHandler(stub).Register(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestAuthHandler_Register_Validation(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}

	cases := map[string]string{
		"bad email":      `{"email":"nope","username":"alice","password":"password1"}`,
		"short password": `{"email":"a@x.com","username":"alice","password":"short"}`,
		"short username": `{"email":"a@x.com","username":"al","password":"password1"}`,
		"long password":  `{"email":"a@x.com","username":"alice","password":"` + strings.Repeat("p", 73) + `"}`,
		// 40 runes, 80 bytes.
		"multibyte password": `{"email":"a@x.com","username":"alice","password":"` + strings.Repeat("é", 40) + `"}`,
		"blank username":     `{"email":"a@x.com","username":"    ","password":"password1"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			c, _ := newTestContext(http.MethodPost, "/api/v1/auth/register", body, nil)
			err := NewAuthHandler(stub).Register(c)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestAuthHandler_Register_ValidationMessageUsesJSONNames(t *testing.T) {
	stub := &stubAuthService{}
	c, _ := newTestContext(http.MethodPost, "/api/v1/auth/register", `{"email":"a@x.com","username":"alice"}`, nil)

	err := NewAuthHandler(stub).Register(c)
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Message != "password is required" {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestAuthHandler_Register_PasswordLimitIsInBytes(t *testing.T) {
	c, _ := newTestContext(http.MethodPost, "/api/v1/auth/register",
		`{"email":"a@x.com","username":"alice","password":"`+strings.Repeat("é", 37)+`"}`, nil)

	err := NewAuthHandler(&stubAuthService{}).Register(c)
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Message != "password must be at most 72 bytes" {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (*ports.LoginResult, error) {
			if email != "a@x.com" || password != "pw1" {
				t.Fatalf("unexpected args: %s %s", email, password)
			}
			return &ports.LoginResult{
				AccessToken: "token123",
				TokenType:   "bearer",
				ExpiresIn:   30 * time.Minute,
				Message:     "Please verify your email to access the product.",
				User:        &domain.User{ID: "u-1", Email: email},
			}, nil
		},
	}
	c, rec := newTestContext(http.MethodPost, "/api/v1/auth/login", `{"email":"a@x.com","password":"pw1"}`, nil)

	if err := NewAuthHandler(stub).Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	resp := decode(t, rec)
	if resp["access_token"] != "token123" || resp["token_type"] != "bearer" || resp["expires_in"] != float64(1800) {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if resp["message"] != "Please verify your email to access the product." {
		t.Fatalf("unexpected message: %v", resp["message"])
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["id"] != "u-1" {
		t.Fatalf("expected user in response: %+v", resp)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (*ports.LoginResult, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	c, _ := newTestContext(http.MethodPost, "/api/v1/auth/login", `{"email":"a@x.com","password":"wrong"}`, nil)

	if err := NewAuthHandler(stub).Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_Me(t *testing.T) {
	c, rec := newTestContext(http.MethodGet, "/api/v1/auth/me", "", &domain.User{ID: "u-1", Email: "a@x.com", IsVerified: true})

	if err := NewAuthHandler(&stubAuthService{}).Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if resp := decode(t, rec); resp["id"] != "u-1" || resp["is_verified"] != true {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestAuthHandler_Me_WithoutUser(t *testing.T) {
	c, _ := newTestContext(http.MethodGet, "/api/v1/auth/me", "", nil)

	if err := NewAuthHandler(&stubAuthService{}).Me(c); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestAuthHandler_VerifyEmail(t *testing.T) {
	user := &domain.User{ID: "u-1", Email: "a@x.com"}
	stub := &stubAuthService{
		verifyFn: func(ctx context.Context, u *domain.User, token string) (string, error) {
			if u != user || token != "tok" {
				t.Fatalf("unexpected args: %+v %s", u, token)
			}
			return "Email verified successfully", nil
		},
	}
	c, rec := newTestContext(http.MethodPost, "/api/v1/auth/verify-email?token=tok", "", user)

	if err := NewAuthHandler(stub).VerifyEmail(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if resp := decode(t, rec); resp["message"] != "Email verified successfully" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestAuthHandler_VerifyEmail_MissingToken(t *testing.T) {
	c, _ := newTestContext(http.MethodPost, "/api/v1/auth/verify-email", "", &domain.User{ID: "u-1"})

	err := NewAuthHandler(&stubAuthService{}).VerifyEmail(c)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestAuthHandler_VerifyEmail_InvalidToken(t *testing.T) {
	stub := &stubAuthService{
		verifyFn: func(ctx context.Context, u *domain.User, token string) (string, error) {
			return "", domain.ErrInvalidToken
		},
	}
	c, _ := newTestContext(http.MethodPost, "/api/v1/auth/verify-email?token=bad", "", &domain.User{ID: "u-1"})

	if err := NewAuthHandler(stub).VerifyEmail(c); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestAuthHandler_ResendVerification(t *testing.T) {
	stub := &stubAuthService{
		resendFn: func(ctx context.Context, u *domain.User) (string, error) {
			return "Verification email resent successfully.", nil
		},
	}
	c, rec := newTestContext(http.MethodPost, "/api/v1/auth/resend-verification", "", &domain.User{ID: "u-1"})

	if err := NewAuthHandler(stub).ResendVerification(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if resp := decode(t, rec); resp["message"] != "Verification email resent successfully." {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestAuthHandler_ResendVerification_AlreadyVerified(t *testing.T) {
	stub := &stubAuthService{
		resendFn: func(ctx context.Context, u *domain.User) (string, error) {
			return "", domain.ErrAlreadyVerified
		},
	}
	c, _ := newTestContext(http.MethodPost, "/api/v1/auth/resend-verification", "", &domain.User{ID: "u-1", IsVerified: true})

	if err := NewAuthHandler(stub).ResendVerification(c); !errors.Is(err, domain.ErrAlreadyVerified) {
		t.Fatalf("expected ErrAlreadyVerified, got %v", err)
	}
}

func TestAuthHandler_UpdateProfile(t *testing.T) {
	user := &domain.User{ID: "u-1", Email: "a@x.com", IsVerified: true}
	stub := &stubAuthService{
		updateProfileFn: func(ctx context.Context, u *domain.User, update domain.ProfileUpdate) (*domain.User, error) {
			if update.FullName == nil || *update.FullName != "Alice B." {
				t.Fatalf("unexpected update: %+v", update)
			}
			if update.Education != nil || update.VisaStatus != nil || update.Nationality != nil {
				t.Fatalf("omitted fields must stay nil: %+v", update)
			}
			updated := *u
			updated.FullName = *update.FullName
			return &updated, nil
		},
	}
	c, rec := newTestContext(http.MethodPatch, "/api/v1/users/me", `{"full_name":"Alice B."}`, user)

	if err := NewAuthHandler(stub).UpdateProfile(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if resp := decode(t, rec); resp["full_name"] != "Alice B." {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}
