package utils

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func TestNewAccessToken_RoundTrip(t *testing.T) {
	at, err := NewAccessToken("secret", 42, "STUDENT", 15)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	parsed, err := jwt.Parse(at.Token, func(tok *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("parse failed: %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if claims["role"] != "STUDENT" {
		t.Errorf("role = %v, want STUDENT", claims["role"])
	}
	if int64(claims["sub"].(float64)) != 42 {
		t.Errorf("sub = %v, want 42", claims["sub"])
	}
}

func TestNewAccessToken_WrongSecretRejected(t *testing.T) {
	at, err := NewAccessToken("secret", 42, "STUDENT", 15)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if _, err := jwt.Parse(at.Token, func(tok *jwt.Token) (interface{}, error) {
		return []byte("other"), nil
	}); err == nil {
		t.Error("token signed with another secret should not verify")
	}
}

func TestNewRefreshToken_UniqueAndHashable(t *testing.T) {
	a, err := NewRefreshToken(7)
	if err != nil {
		t.Fatalf("token a: %v", err)
	}
	b, err := NewRefreshToken(7)
	if err != nil {
		t.Fatalf("token b: %v", err)
	}
	if a.Raw == b.Raw {
		t.Error("two refresh tokens should never collide")
	}
	if HashRefreshRaw(a.Raw) != HashRefreshRaw(a.Raw) {
		t.Error("hash must be deterministic")
	}
	if HashRefreshRaw(a.Raw) == HashRefreshRaw(b.Raw) {
		t.Error("distinct tokens must hash differently")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret", 4)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if !VerifyPassword(hash, "s3cret") {
		t.Error("correct password should verify")
	}
	if VerifyPassword(hash, "wrong") {
		t.Error("wrong password should not verify")
	}
}
