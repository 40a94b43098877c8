package service

import (
	"context"
	"errors"
	"testing"

	"github.com/johnpackercoaching/willing-tree-sub001/internal/domain"

	"github.com/golang-jwt/jwt/v4"
)

func TestAuthService_RegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(newFakeUserRepo(), "test-secret", 0)

	user, err := svc.Register(ctx, "Alex", "alex@example.com", "correct horse battery")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Tier != domain.TierFree {
		t.Errorf("new account tier = %q, want free", user.Tier)
	}
	if user.PasswordHash != "" {
		t.Error("Register leaked the password hash")
	}

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.Register(ctx, "Other", "alex@example.com", "another password")
		if !errors.Is(err, ErrUserAlreadyExists) {
			t.Errorf("error = %v, want ErrUserAlreadyExists", err)
		}
	})

	t.Run("login issues a verifiable token", func(t *testing.T) {
		token, loggedIn, err := svc.Login(ctx, "alex@example.com", "correct horse battery")
		if err != nil {
			t.Fatalf("Login: %v", err)
		}
		if loggedIn.PasswordHash != "" {
			t.Error("Login leaked the password hash")
		}

		claims := &jwtClaims{}
		parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
			return []byte("test-secret"), nil
		})
		if err != nil || !parsed.Valid {
			t.Fatalf("token did not verify: %v", err)
		}
		if claims.UserID != user.ID.Hex() {
			t.Errorf("uid claim = %q, want %q", claims.UserID, user.ID.Hex())
		}
		if claims.Tier != domain.TierFree {
			t.Errorf("tier claim = %q, want free", claims.Tier)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "alex@example.com", "wrong password")
		if !errors.Is(err, ErrAuthenticationFailed) {
			t.Errorf("error = %v, want ErrAuthenticationFailed", err)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "nobody@example.com", "whatever")
		if !errors.Is(err, ErrAuthenticationFailed) {
			t.Errorf("error = %v, want ErrAuthenticationFailed", err)
		}
	})
}
