package auth

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	if err != nil {
		t.Fatal(err)
	}
	if !CheckPassword(hash, "correct horse battery") {
		t.Error("valid password rejected")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("wrong password accepted")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	tok, err := MakeToken("user-1", "secret")
	if err != nil {
		t.Fatal(err)
	}
	claims, err := ParseToken(tok, "secret")
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("uid = %q, want user-1", claims.UserID)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	tok, _ := MakeToken("user-1", "secret")
	if _, err := ParseToken(tok, "other"); err == nil {
		t.Error("token accepted with wrong secret")
	}
}

func TestTokenWrongAlgorithm(t *testing.T) {
	// unsigned token must be rejected by the HMAC-only keyfunc
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "user-1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ParseToken(tok, "secret"); err == nil {
		t.Error("none-algorithm token accepted")
	}
}

func TestRefreshTokenHash(t *testing.T) {
	raw, hash, err := GenerateRefreshToken()
	if err != nil {
		t.Fatal(err)
	}
	if raw == "" || hash == "" || raw == hash {
		t.Fatal("unexpected token material")
	}
	if HashRefreshToken(raw) != hash {
		t.Error("hash does not match raw token")
	}
}
