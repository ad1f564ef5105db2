package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"learnhub_backend/internal/model"
	"learnhub_backend/internal/testutil"
	"learnhub_backend/internal/util"
)

func TestRegisterAndLogin(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	u, err := s.auth.Register(ctx, RegisterInput{
		FirstName: "Ada", LastName: "Lovelace",
		Email: " Ada@Example.com ", Password: "correct-horse", Role: model.Student,
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.Email != "ada@example.com" || u.Password == "correct-horse" {
		t.Fatalf("email must be normalized and password hashed: %+v", u)
	}

	_, err = s.auth.Register(ctx, RegisterInput{FirstName: "A", Email: "ada@example.com", Password: "another-pass", Role: model.Educator})
	if !errors.Is(err, util.ErrEmailRegistered) {
		t.Fatalf("expected ErrEmailRegistered, got %v", err)
	}

	token, logged, err := s.auth.Login(ctx, "ADA@example.com", "correct-horse")
	if err != nil || logged.ID != u.ID {
		t.Fatalf("Login: %v", err)
	}
	claims, err := s.auth.ParseToken(ctx, token)
	if err != nil || claims.UserID != u.ID || claims.Role != model.Student {
		t.Fatalf("ParseToken: %+v, %v", claims, err)
	}
}

func TestAuthenticate_UniformFailure(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	if _, err := s.auth.Register(ctx, RegisterInput{FirstName: "B", Email: "b@example.com", Password: "password-b", Role: model.Educator}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := s.auth.Authenticate(ctx, "b@example.com", "wrong-password"); !errors.Is(err, util.ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := s.auth.Authenticate(ctx, "nobody@example.com", "password-b"); !errors.Is(err, util.ErrInvalidCredentials) {
		t.Fatalf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthenticate_UnknownEmailStillHashes(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	if _, err := s.auth.Register(ctx, RegisterInput{FirstName: "E", Email: "e@example.com", Password: "password-e", Role: model.Student}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	calls := 0
	orig := comparePassword
	comparePassword = func(hash, password []byte) error {
		calls++
		return orig(hash, password)
	}
	t.Cleanup(func() { comparePassword = orig })

	s.auth.Authenticate(ctx, "e@example.com", "wrong-password")
	s.auth.Authenticate(ctx, "ghost@example.com", "wrong-password")
	if calls != 2 {
		t.Fatalf("expected one bcrypt comparison per failed sign-in, got %d", calls)
	}
}

func TestRegister_Validation(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	cases := map[string]RegisterInput{
		"missing email": {FirstName: "C", Password: "long-enough", Role: model.Student},
		"bad role":      {FirstName: "C", Email: "c@example.com", Password: "long-enough", Role: "admin"},
		"short pass":    {FirstName: "C", Email: "c@example.com", Password: "short", Role: model.Student},
		"long pass":     {FirstName: "C", Email: "c@example.com", Password: strings.Repeat("p", 80), Role: model.Student},
	}
	for name, in := range cases {
		var verr *util.ValidationError
		if _, err := s.auth.Register(ctx, in); !errors.As(err, &verr) {
			t.Errorf("%s: expected ValidationError, got %v", name, err)
		}
	}
}

func TestLogout_RevokesToken(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	if _, err := s.auth.Register(ctx, RegisterInput{FirstName: "D", Email: "d@example.com", Password: "password-d", Role: model.Student}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	token, _, err := s.auth.Login(ctx, "d@example.com", "password-d")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	claims, err := s.auth.ParseToken(ctx, token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if err := s.auth.Logout(ctx, claims); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := s.auth.ParseToken(ctx, token); !errors.Is(err, util.ErrTokenRevoked) {
		t.Fatalf("expected ErrTokenRevoked after logout, got %v", err)
	}
}

func TestCSRFTokens(t *testing.T) {
	tokens := NewTokenService(testutil.NewMemoryStore(), time.Minute)
	ctx := context.Background()

	tok, err := tokens.IssueCSRF(ctx, 7)
	if err != nil {
		t.Fatalf("IssueCSRF: %v", err)
	}
	if err := tokens.ValidateCSRF(ctx, 7, tok); err != nil {
		t.Fatalf("ValidateCSRF: %v", err)
	}
	if err := tokens.ValidateCSRF(ctx, 8, tok); !errors.Is(err, util.ErrInvalidCSRFToken) {
		t.Fatalf("token must be bound to its user, got %v", err)
	}
	if err := tokens.ValidateCSRF(ctx, 7, ""); !errors.Is(err, util.ErrInvalidCSRFToken) {
		t.Fatalf("empty token must be rejected, got %v", err)
	}
	if err := tokens.ValidateCSRF(ctx, 7, "forged"); !errors.Is(err, util.ErrInvalidCSRFToken) {
		t.Fatalf("unknown token must be rejected, got %v", err)
	}
}
