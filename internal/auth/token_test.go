package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testJWTSecret = "test-jwt-secret-32bytes-long!!!!"

// signTestToken はテスト用のアクセストークンを生成する。
func signTestToken(t *testing.T, method jwt.SigningMethod, secret string, email string, expiresIn time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(method, accessTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
		Email: email,
	})
	s, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return s
}

func TestTokenVerifier_Email(t *testing.T) {
	v := NewTokenVerifier(testJWTSecret)
	token := signTestToken(t, jwt.SigningMethodHS256, testJWTSecret, "admin@example.com", time.Hour)

	email, err := v.Email(token)
	if err != nil {
		t.Fatalf("Email returned error: %v", err)
	}
	if email != "admin@example.com" {
		t.Errorf("email = %q, want admin@example.com", email)
	}
}

func TestTokenVerifier_Rejects(t *testing.T) {
	v := NewTokenVerifier(testJWTSecret)

	tests := []struct {
		name  string
		token string
	}{
		{"署名鍵が異なる", signTestToken(t, jwt.SigningMethodHS256, "another-secret", "admin@example.com", time.Hour)},
		{"期限切れ", signTestToken(t, jwt.SigningMethodHS256, testJWTSecret, "admin@example.com", -time.Minute)},
		{"許可されていないアルゴリズム", signTestToken(t, jwt.SigningMethodHS512, testJWTSecret, "admin@example.com", time.Hour)},
		{"メールアドレスなし", signTestToken(t, jwt.SigningMethodHS256, testJWTSecret, "", time.Hour)},
		{"JWTではない", "not-a-jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Email(tt.token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("err = %v, want ErrInvalidToken", err)
			}
		})
	}
}
