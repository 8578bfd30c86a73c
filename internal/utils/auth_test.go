package utils

import (
	"testing"
	"time"
)

func TestJWT(t *testing.T) {
	secret := "test-secret-key-12345"

	// Test Generation
	token, err := GenerateToken("operator@example.com", "admin", secret, time.Hour)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	if token == "" {
		t.Error("Token should not be empty")
	}

	// Test Validation (Success)
	claims, err := ValidateToken(token, secret)
	if err != nil {
		t.Fatalf("Failed to validate token: %v", err)
	}
	if claims["sub"] != "operator@example.com" {
		t.Errorf("Expected subject operator@example.com, got %v", claims["sub"])
	}
	if claims["role"] != "admin" {
		t.Errorf("Expected role admin, got %v", claims["role"])
	}

	// Test Validation (Failure - Wrong Key)
	_, err = ValidateToken(token, "wrong-key")
	if err == nil {
		t.Error("Validation should fail with wrong key")
	}
}

func TestJWT_Expired(t *testing.T) {
	token, err := GenerateToken("operator", "admin", "secret", -time.Minute)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	if _, err := ValidateToken(token, "secret"); err == nil {
		t.Error("Expired token should not validate")
	}
}
