package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/example/task-assistant/domain/user"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupAuthService(t *testing.T) *Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&domain.User{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	tokenConfig := TokenConfig{
		SecretKey:  "test-secret-key",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
		Issuer:     "test-issuer",
	}
	return NewService(NewUserRepository(db), NewPasswordHasher(), NewTokenIssuer(tokenConfig))
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()
	svc := setupAuthService(t)

	t.Run("success", func(t *testing.T) {
		user, err := svc.Register(ctx, "alice@example.com", "password123", "Alice")
		if err != nil {
			t.Fatalf("Register() error = %v", err)
		}
		if user.ID == "" {
			t.Error("expected non-empty user ID")
		}
		if user.Name != "Alice" {
			t.Errorf("expected name 'Alice', got %q", user.Name)
		}
		if user.PasswordHash == "password123" {
			t.Error("password must not be stored in plain text")
		}
	})

	t.Run("email normalized to lowercase", func(t *testing.T) {
		user, err := svc.Register(ctx, "  Bob@Example.COM ", "password123", "Bob")
		if err != nil {
			t.Fatalf("Register() error = %v", err)
		}
		if user.Email != "bob@example.com" {
			t.Errorf("expected normalized email, got %q", user.Email)
		}
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		if _, err := svc.Register(ctx, "ALICE@example.com", "password123", ""); !errors.Is(err, ErrUserExists) {
			t.Errorf("expected ErrUserExists, got %v", err)
		}
	})

	t.Run("invalid email rejected", func(t *testing.T) {
		if _, err := svc.Register(ctx, "not-an-email", "password123", ""); !errors.Is(err, ErrInvalidEmail) {
			t.Errorf("expected ErrInvalidEmail, got %v", err)
		}
	})

	t.Run("short password rejected", func(t *testing.T) {
		if _, err := svc.Register(ctx, "carol@example.com", "short", ""); !errors.Is(err, ErrWeakPassword) {
			t.Errorf("expected ErrWeakPassword, got %v", err)
		}
	})

	t.Run("overlong password rejected", func(t *testing.T) {
		long := make([]byte, 73)
		for i := range long {
			long[i] = 'a'
		}
		if _, err := svc.Register(ctx, "carol@example.com", string(long), ""); !errors.Is(err, ErrPasswordTooLong) {
			t.Errorf("expected ErrPasswordTooLong, got %v", err)
		}
	})

	t.Run("display name derived from email", func(t *testing.T) {
		user, err := svc.Register(ctx, "jane.doe@example.com", "password123", "")
		if err != nil {
			t.Fatalf("Register() error = %v", err)
		}
		if user.Name != "Jane Doe" {
			t.Errorf("expected derived name 'Jane Doe', got %q", user.Name)
		}
	})
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()
	svc := setupAuthService(t)

	if _, err := svc.Register(ctx, "alice@example.com", "password123", "Alice"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	t.Run("success", func(t *testing.T) {
		pair, err := svc.Login(ctx, "alice@example.com", "password123")
		if err != nil {
			t.Fatalf("Login() error = %v", err)
		}
		if pair.AccessToken == "" || pair.RefreshToken == "" {
			t.Error("expected non-empty token pair")
		}
		if pair.TokenType != "Bearer" {
			t.Errorf("expected token type Bearer, got %q", pair.TokenType)
		}
	})

	t.Run("email case insensitive", func(t *testing.T) {
		if _, err := svc.Login(ctx, "Alice@Example.com", "password123"); err != nil {
			t.Errorf("Login() error = %v", err)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		if _, err := svc.Login(ctx, "alice@example.com", "wrongpassword"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		if _, err := svc.Login(ctx, "nobody@example.com", "password123"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}

func TestService_TokenLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := setupAuthService(t)

	user, err := svc.Register(ctx, "alice@example.com", "password123", "Alice")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	pair, err := svc.Login(ctx, "alice@example.com", "password123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	t.Run("validate access token", func(t *testing.T) {
		claims, err := svc.ValidateToken(ctx, pair.AccessToken)
		if err != nil {
			t.Fatalf("ValidateToken() error = %v", err)
		}
		if claims.UserID != user.ID {
			t.Errorf("expected user id %q, got %q", user.ID, claims.UserID)
		}
		if claims.Email != "alice@example.com" {
			t.Errorf("expected email in claims, got %q", claims.Email)
		}
	})

	t.Run("refresh token cannot be used as access token", func(t *testing.T) {
		if _, err := svc.ValidateToken(ctx, pair.RefreshToken); err == nil {
			t.Error("expected refresh token to be rejected as access token")
		}
	})

	t.Run("refresh issues a new pair", func(t *testing.T) {
		refreshed, err := svc.RefreshTokens(ctx, pair.RefreshToken)
		if err != nil {
			t.Fatalf("RefreshTokens() error = %v", err)
		}
		if refreshed.AccessToken == "" {
			t.Error("expected new access token")
		}
		if _, err := svc.ValidateToken(ctx, refreshed.AccessToken); err != nil {
			t.Errorf("refreshed access token invalid: %v", err)
		}
	})

	t.Run("refresh rejects access token", func(t *testing.T) {
		if _, err := svc.RefreshTokens(ctx, pair.AccessToken); err == nil {
			t.Error("expected access token to be rejected for refresh")
		}
	})

	t.Run("get user", func(t *testing.T) {
		got, err := svc.GetUser(ctx, user.ID)
		if err != nil {
			t.Fatalf("GetUser() error = %v", err)
		}
		if got.Email != "alice@example.com" {
			t.Errorf("expected email, got %q", got.Email)
		}
	})

	t.Run("get unknown user", func(t *testing.T) {
		if _, err := svc.GetUser(ctx, "no-such-user"); !errors.Is(err, ErrUserNotFound) {
			t.Errorf("expected ErrUserNotFound, got %v", err)
		}
	})
}
