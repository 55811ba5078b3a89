package service

import (
	"context"
	"testing"
	"time"

	"github.com/lshigami/orientation-event/config"
	"github.com/lshigami/orientation-event/internal/apperr"
	"github.com/lshigami/orientation-event/internal/dto"
	"github.com/lshigami/orientation-event/internal/model"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	f := newFixture(t)
	svc := NewAuthService(f.users, f.stats, f.cfg)
	ctx := context.Background()

	res, err := svc.Register(ctx, dto.RegisterRequest{
		Email:     "awa@example.com",
		Password:  "secret1",
		Telephone: strPtr("0700000000"),
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if res.Token == "" || res.User.ID != "1" || res.User.Name != "awa" {
		t.Errorf("Register = %+v", res)
	}
	if len(res.User.Roles) != 1 || res.User.Roles[0] != model.RoleUser {
		t.Errorf("roles = %v", res.User.Roles)
	}

	user, err := svc.Authenticate(ctx, res.Token)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if user.Email != "awa@example.com" || user.QRCode == nil || user.LastLoginAt == nil {
		t.Errorf("authenticated user = %+v", user)
	}

	_, err = svc.Register(ctx, dto.RegisterRequest{Email: "awa@example.com", Password: "secret2"})
	wantKind(t, err, apperr.KindValidation)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	svc := NewAuthService(f.users, f.stats, f.cfg)
	ctx := context.Background()
	if _, err := svc.Register(ctx, dto.RegisterRequest{
		Email:     "awa@example.com",
		Password:  "secret1",
		Telephone: strPtr("0700000000"),
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	tests := []struct {
		name string
		req  dto.LoginRequest
		kind apperr.Kind
		ok   bool
	}{
		{name: "email", req: dto.LoginRequest{Email: "awa@example.com", Password: "secret1"}, ok: true},
		{name: "telephone", req: dto.LoginRequest{Telephone: "0700000000", Password: "secret1"}, ok: true},
		{name: "wrong password", req: dto.LoginRequest{Email: "awa@example.com", Password: "nope"}, kind: apperr.KindNotAuthenticated},
		{name: "unknown", req: dto.LoginRequest{Email: "who@example.com", Password: "secret1"}, kind: apperr.KindNotAuthenticated},
		{name: "missing identifier", req: dto.LoginRequest{Password: "secret1"}, kind: apperr.KindValidation},
		{name: "blank password", req: dto.LoginRequest{Email: "awa@example.com", Password: "  "}, kind: apperr.KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.Login(ctx, tt.req)
			if tt.ok {
				if err != nil || res.Token == "" {
					t.Fatalf("Login = %v, %v", res, err)
				}
				return
			}
			wantKind(t, err, tt.kind)
		})
	}
}

func TestLoginKeepsPasswordAsSent(t *testing.T) {
	f := newFixture(t)
	svc := NewAuthService(f.users, f.stats, f.cfg)
	ctx := context.Background()
	if _, err := svc.Register(ctx, dto.RegisterRequest{Email: "awa@example.com", Password: " secret1 "}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := svc.Login(ctx, dto.LoginRequest{Email: "awa@example.com", Password: " secret1 "}); err != nil {
		t.Errorf("Login with the registered password: %v", err)
	}
	_, err := svc.Login(ctx, dto.LoginRequest{Email: "awa@example.com", Password: "secret1"})
	wantKind(t, err, apperr.KindNotAuthenticated)
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	f := newFixture(t)
	svc := NewAuthService(f.users, f.stats, f.cfg)
	ctx := context.Background()
	res, err := svc.Register(ctx, dto.RegisterRequest{Email: "awa@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, err = svc.Authenticate(ctx, "garbage")
	wantKind(t, err, apperr.KindNotAuthenticated)

	other := *f.cfg
	other.Auth.JWTSecret = "another-secret"
	_, err = NewAuthService(f.users, f.stats, &other).Authenticate(ctx, res.Token)
	wantKind(t, err, apperr.KindNotAuthenticated)

	expired := NewAuthService(f.users, f.stats, f.cfg).(*authService)
	expired.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = expired.Authenticate(ctx, res.Token)
	wantKind(t, err, apperr.KindNotAuthenticated)
}

func TestStaffRoles(t *testing.T) {
	u := &model.User{ID: 4, Email: "boss@example.com", IsStaff: true, IsSuperAdmin: true}
	me := NewAuthService(nil, nil, &config.Config{Auth: config.Auth{JWTSecret: "s"}}).Me(u)
	want := []string{model.RoleUser, model.RoleAdmin, model.RoleSuperAdmin}
	if len(me.Roles) != len(want) {
		t.Fatalf("roles = %v, want %v", me.Roles, want)
	}
	for i := range want {
		if me.Roles[i] != want[i] {
			t.Errorf("roles = %v, want %v", me.Roles, want)
		}
	}
	if !me.IsStaff || !me.IsSuperAdmin || me.ID != "4" {
		t.Errorf("Me = %+v", me)
	}
}
