package services

import (
	"testing"
	"time"

	"github.com/spectrum-bridge/spectrum_api/shared"
)

func newTestJWTService() *JWTService {
	return &JWTService{
		AccessTokenDuration: time.Hour,
		jwtSecretKey:        "test-secret",
	}
}

func TestJWTRoundTrip(t *testing.T) {
	svc := newTestJWTService()

	token, err := svc.ToJWT("user-1", shared.RoleParent)
	if err != nil {
		t.Fatalf("ToJWT: %v", err)
	}

	claims, err := svc.VerifyJWTToken(token)
	if err != nil {
		t.Fatalf("VerifyJWTToken: %v", err)
	}
	if claims.UserID != "user-1" || claims.Role != shared.RoleParent {
		t.Errorf("claims = %+v", claims)
	}
}

func TestJWTWrongSecret(t *testing.T) {
	token, err := newTestJWTService().ToJWT("user-1", shared.RoleUser)
	if err != nil {
		t.Fatalf("ToJWT: %v", err)
	}

	other := &JWTService{AccessTokenDuration: time.Hour, jwtSecretKey: "different-secret"}
	if _, err := other.VerifyJWTToken(token); err == nil {
		t.Fatal("token verified with the wrong secret")
	}
}

func TestJWTExpiredToken(t *testing.T) {
	svc := &JWTService{AccessTokenDuration: -time.Minute, jwtSecretKey: "test-secret"}

	token, err := svc.ToJWT("user-1", shared.RoleUser)
	if err != nil {
		t.Fatalf("ToJWT: %v", err)
	}
	if _, err := svc.VerifyJWTToken(token); err == nil {
		t.Fatal("expired token verified")
	}
}

func TestExtractTokenFromHeader(t *testing.T) {
	svc := newTestJWTService()

	token, err := svc.ExtractTokenFromHeader("Bearer abc.def.ghi")
	if err != nil {
		t.Fatalf("ExtractTokenFromHeader: %v", err)
	}
	if token != "abc.def.ghi" {
		t.Errorf("token = %q", token)
	}

	for _, header := range []string{"", "abc.def.ghi", "Basic abc"} {
		if _, err := svc.ExtractTokenFromHeader(header); err == nil {
			t.Errorf("header %q accepted", header)
		}
	}
}
