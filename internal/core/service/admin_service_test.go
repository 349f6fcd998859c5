package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sunflower/sunflower-api/internal/core/domain"
	"github.com/sunflower/sunflower-api/internal/core/ports"
)

func TestAdminAuthService_RegisterDisabled(t *testing.T) {
	f := newFixture(t)
	admin := NewAdminAuthService(f.svc, false)

	_, err := admin.RegisterAdmin(context.Background(), registerInput("root@x.com", "root", "pw"))
	if !errors.Is(err, domain.ErrSignupDisabled) {
		t.Fatalf("expected ErrSignupDisabled, got %v", err)
	}
	if len(f.repo.users) != 0 {
		t.Fatalf("no user expected")
	}
}

func TestAdminAuthService_RegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	admin := NewAdminAuthService(f.svc, true)

	u, err := admin.RegisterAdmin(context.Background(), registerInput("Root@X.com", "root", "pw"))
	if err != nil {
		t.Fatalf("register admin: %v", err)
	}
	if !u.IsSuperuser || !u.IsVerified {
		t.Fatalf("admin must be a verified superuser: %+v", u)
	}
	if len(f.notifier.sent) != 0 {
		t.Fatalf("admins are verified on creation, no email expected")
	}

	res, err := admin.LoginAdmin(context.Background(), "root@x.com", "pw")
	if err != nil {
		t.Fatalf("login admin: %v", err)
	}
	sub, err := f.codec.VerifyAccess(res.AccessToken)
	if err != nil || sub != u.ID {
		t.Fatalf("unexpected token subject %q (err %v)", sub, err)
	}
}

func TestAdminAuthService_RegisterDuplicate(t *testing.T) {
	f := newFixture(t)
	admin := NewAdminAuthService(f.svc, true)
	mustRegister(t, f, "root@x.com", "pw")

	if _, err := admin.RegisterAdmin(context.Background(), registerInput("root@x.com", "root2", "pw")); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAdminAuthService_RegisterValidation(t *testing.T) {
	f := newFixture(t)
	admin := NewAdminAuthService(f.svc, true)

	cases := []ports.RegisterInput{
		registerInput("root@x.com", "   ", "pw"),
		registerInput("root@x.com", "root", strings.Repeat("é", 40)),
	}
	for _, in := range cases {
		if _, err := admin.RegisterAdmin(context.Background(), in); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %+v, got %v", in, err)
		}
	}
	if len(f.repo.users) != 0 {
		t.Fatalf("no user expected")
	}
}

func TestAdminAuthService_LoginRejectsRegularUser(t *testing.T) {
	f := newFixture(t)
	admin := NewAdminAuthService(f.svc, true)
	mustRegister(t, f, "a@x.com", "pw1")

	if _, err := admin.LoginAdmin(context.Background(), "a@x.com", "pw1"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAdminAuthService_LoginWrongPassword(t *testing.T) {
	f := newFixture(t)
	admin := NewAdminAuthService(f.svc, true)
	if _, err := admin.RegisterAdmin(context.Background(), registerInput("root@x.com", "root", "pw")); err != nil {
		t.Fatalf("register admin: %v", err)
	}

	if _, err := admin.LoginAdmin(context.Background(), "root@x.com", "nope"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
