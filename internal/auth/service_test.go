package auth

import (
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/math-adventure/backend/internal/apperr"
	"github.com/math-adventure/backend/internal/database/dbtest"
	"github.com/math-adventure/backend/internal/models"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc := NewService(NewStore(dbtest.New(t)), NewTokenIssuer("test-secret"), 30*24*time.Hour)
	svc.hashCost = bcrypt.MinCost
	return svc
}

func register(t *testing.T, svc *Service, name string) *models.AuthResponse {
	t.Helper()
	resp, err := svc.Register(context.Background(), models.RegisterRequest{
		Username: name,
		Email:    name + "@example.com",
		Pin:      "1234",
	})
	if err != nil {
		t.Fatalf("Register(%s): %v", name, err)
	}
	return resp
}

func TestRegisterAndResolve(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	resp := register(t, svc, "Ada_Lovelace")
	if resp.Player.Username != "ada_lovelace" {
		t.Errorf("Username = %q, want lowercased", resp.Player.Username)
	}
	if resp.Player.Avatar != models.DefaultAvatar {
		t.Errorf("Avatar = %q, want %q", resp.Player.Avatar, models.DefaultAvatar)
	}
	if d := time.Until(resp.ExpiresAt); d < 29*24*time.Hour || d > 31*24*time.Hour {
		t.Errorf("session expires in %v, want about 30 days", d)
	}

	player, session, err := svc.Resolve(ctx, resp.Token)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if player.ID != resp.Player.ID || session.PlayerID != resp.Player.ID {
		t.Errorf("resolved player %d / session owner %d, want %d", player.ID, session.PlayerID, resp.Player.ID)
	}
}

func TestRegisterDuplicates(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	register(t, svc, "ada")

	tests := []struct {
		name string
		req  models.RegisterRequest
		want string
	}{
		{"same name other case", models.RegisterRequest{Username: "ADA", Email: "x@example.com", Pin: "1234"}, "Player name already taken"},
		{"same email", models.RegisterRequest{Username: "grace", Email: "ADA@example.com", Pin: "1234"}, "Email already registered"},
	}
	for _, tt := range tests {
		_, err := svc.Register(ctx, tt.req)
		if !apperr.Is(err, apperr.Conflict) {
			t.Errorf("%s: error = %v, want Conflict", tt.name, err)
			continue
		}
		if got := apperr.Message(err); got != tt.want {
			t.Errorf("%s: message = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestLogin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	registered := register(t, svc, "ada")

	tests := []struct {
		name string
		req  models.LoginRequest
		kind apperr.Kind
	}{
		{"unknown player", models.LoginRequest{Username: "nobody", Pin: "1234"}, apperr.NotFound},
		{"wrong pin", models.LoginRequest{Username: "ada", Pin: "9999"}, apperr.Unauthorized},
		{"missing pin", models.LoginRequest{Username: "ada"}, apperr.InvalidArgument},
	}
	for _, tt := range tests {
		if _, err := svc.Login(ctx, tt.req); apperr.KindOf(err) != tt.kind || err == nil {
			t.Errorf("%s: error = %v, want kind %s", tt.name, err, tt.kind)
		}
	}

	resp, err := svc.Login(ctx, models.LoginRequest{Username: " ADA ", Pin: "1234"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.Player.ID != registered.Player.ID {
		t.Errorf("logged in as %d, want %d", resp.Player.ID, registered.Player.ID)
	}
	if resp.Token == registered.Token {
		t.Error("login reused the registration token")
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	resp := register(t, svc, "ada")

	_, session, err := svc.Resolve(ctx, resp.Token)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if err := svc.Logout(ctx, session); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, _, err := svc.Resolve(ctx, resp.Token); !apperr.Is(err, apperr.Unauthorized) {
		t.Errorf("Resolve after logout: error = %v, want Unauthorized", err)
	}
}

func TestCleanupExpiredSessions(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	resp := register(t, svc, "ada")

	n, err := svc.CleanupExpiredSessions(ctx)
	if err != nil {
		t.Fatalf("CleanupExpiredSessions: %v", err)
	}
	if n != 0 {
		t.Errorf("removed %d live sessions, want 0", n)
	}

	svc.now = func() time.Time { return time.Now().UTC().Add(31 * 24 * time.Hour) }
	if _, _, err := svc.Resolve(ctx, resp.Token); err == nil {
		t.Error("Resolve accepted a session past its expiry")
	}
	n, err = svc.CleanupExpiredSessions(ctx)
	if err != nil {
		t.Fatalf("CleanupExpiredSessions: %v", err)
	}
	if n != 1 {
		t.Errorf("removed %d sessions, want 1", n)
	}
}

func TestUsernameExists(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	register(t, svc, "ada")

	tests := []struct {
		name string
		want bool
	}{
		{"ada", true},
		{"ADA", true},
		{"grace", false},
	}
	for _, tt := range tests {
		got, err := svc.UsernameExists(ctx, tt.name)
		if err != nil {
			t.Fatalf("UsernameExists(%q): %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("UsernameExists(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}

	if _, err := svc.UsernameExists(ctx, ""); !apperr.Is(err, apperr.InvalidArgument) {
		t.Errorf("UsernameExists(\"\") error = %v, want InvalidArgument", err)
	}
}
