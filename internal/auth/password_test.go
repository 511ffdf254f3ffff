package auth

import (
	"errors"
	"testing"
)

func TestHashAndCheckPassword(t *testing.T) {
	digest, err := HashPassword("correcthorse")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if digest == "correcthorse" {
		t.Fatal("password stored in plaintext")
	}

	if err := CheckPassword(digest, "correcthorse"); err != nil {
		t.Errorf("CheckPassword rejected the right password: %v", err)
	}
	if err := CheckPassword(digest, "wronghorse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected invalid credentials, got %v", err)
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("short"); !errors.Is(err, ErrWeakPassword) {
		t.Errorf("expected weak password error, got %v", err)
	}
	if err := ValidatePassword("longenough"); err != nil {
		t.Errorf("expected valid password, got %v", err)
	}
}
