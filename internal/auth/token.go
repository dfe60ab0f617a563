package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken はアクセストークンが無効な場合に返される。
var ErrInvalidToken = errors.New("invalid access token")

// accessTokenClaims は認証プロバイダーが発行するアクセストークンのクレーム。
// メールアドレス以外は使用しない。
type accessTokenClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// TokenVerifier はアクセストークンの署名と有効期限を検証する。
type TokenVerifier struct {
	secret []byte
}

// NewTokenVerifier はHS256の共有シークレットでTokenVerifierを生成する。
func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret)}
}

// Email はアクセストークンを検証し、紐づくメールアドレスを返す。
func (v *TokenVerifier) Email(accessToken string) (string, error) {
	claims := &accessTokenClaims{}

	token, err := jwt.ParseWithClaims(accessToken, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.Email == "" {
		return "", fmt.Errorf("%w: email claim is missing", ErrInvalidToken)
	}

	return claims.Email, nil
}
