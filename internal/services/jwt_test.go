package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"diamond-mines-backend/internal/config"
)

func TestJWTService(t *testing.T) {
	svc := NewJWTService(&config.Config{JWTSecret: "test-secret", JWTExpiry: time.Hour})

	token, expiresAt, err := svc.GenerateToken("player-42")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	if time.Until(expiresAt) < 59*time.Minute {
		t.Errorf("Unexpected expiry %v", expiresAt)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.PlayerID != "player-42" {
		t.Errorf("Expected player-42, got %q", claims.PlayerID)
	}

	other := NewJWTService(&config.Config{JWTSecret: "other"})
	if _, err := other.ValidateToken(token); err == nil {
		t.Error("Token signed with another secret should fail")
	}

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		PlayerID: "player-42",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	signed, _ := expired.SignedString([]byte("test-secret"))
	if _, err := svc.ValidateToken(signed); err == nil {
		t.Error("Expired token should fail")
	}

	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{PlayerID: "x"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if _, err := svc.ValidateToken(none); err == nil {
		t.Error("Unsigned token should fail")
	}
}
