package auth

import (
	"errors"
	"strings"
	"testing"
)

func TestPasswordHasher_Validate(t *testing.T) {
	hasher := NewPasswordHasher()

	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{"valid", "password123", nil},
		{"exactly minimum", strings.Repeat("a", minPasswordLength), nil},
		{"exactly maximum", strings.Repeat("a", maxPasswordLength), nil},
		{"too short", "short", ErrWeakPassword},
		{"empty", "", ErrWeakPassword},
		{"over bcrypt limit", strings.Repeat("a", maxPasswordLength+1), ErrPasswordTooLong},
		{"multibyte counts bytes", strings.Repeat("ü", 37), ErrPasswordTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := hasher.Validate(tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate(%q) = %v, want %v", tt.password, err, tt.wantErr)
			}
		})
	}
}

func TestPasswordHasher_HashAndVerify(t *testing.T) {
	hasher := NewPasswordHasher()

	hash, err := hasher.Hash("password123")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if hash == "password123" {
		t.Fatal("hash must not equal the plaintext")
	}

	if !hasher.Verify("password123", hash) {
		t.Error("expected matching password to verify")
	}
	if hasher.Verify("wrong-password", hash) {
		t.Error("expected non-matching password to fail")
	}
	if hasher.Verify("password123", "not-a-hash") {
		t.Error("expected malformed hash to fail")
	}
}

func TestPasswordHasher_HashRejectsPolicyViolations(t *testing.T) {
	hasher := NewPasswordHasher()

	if _, err := hasher.Hash("short"); !errors.Is(err, ErrWeakPassword) {
		t.Errorf("expected ErrWeakPassword, got %v", err)
	}
	if _, err := hasher.Hash(strings.Repeat("a", maxPasswordLength+1)); !errors.Is(err, ErrPasswordTooLong) {
		t.Errorf("expected ErrPasswordTooLong, got %v", err)
	}
}

func TestPasswordHasher_SaltsEachHash(t *testing.T) {
	hasher := NewPasswordHasher()

	first, err := hasher.Hash("password123")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	second, err := hasher.Hash("password123")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if first == second {
		t.Error("expected distinct salts to produce distinct hashes")
	}
}
