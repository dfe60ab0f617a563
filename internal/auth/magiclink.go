package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultProviderTimeout = 10 * time.Second

// GoTrueConfig はGoTrue互換の認証プロバイダーの設定。
type GoTrueConfig struct {
	// BaseURL は認証APIのベースURL（例: "https://xxxx.supabase.co/auth/v1"）。
	BaseURL string
	// AnonKey は公開用のAPIキー。apikeyヘッダーで送信する。
	AnonKey string
	// HTTPClient はテスト用に差し替え可能なHTTPクライアント。
	HTTPClient *http.Client
}

// GoTrueClient はメールのマジックリンクによるパスワードレス認証を提供する。
type GoTrueClient struct {
	config GoTrueConfig
	client *http.Client
}

// NewGoTrueClient はGoTrueClientを生成する。
func NewGoTrueClient(config GoTrueConfig) *GoTrueClient {
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	client := config.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultProviderTimeout}
	}
	return &GoTrueClient{config: config, client: client}
}

// otpRequest は/otpエンドポイントへのリクエスト。
type otpRequest struct {
	Email      string `json:"email"`
	CreateUser bool   `json:"create_user"`
}

// verifyRequest は/verifyエンドポイントへのリクエスト。
type verifyRequest struct {
	Type      string `json:"type"`
	TokenHash string `json:"token_hash"`
}

// goTrueSession は/verifyエンドポイントのレスポンス。
type goTrueSession struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	User         struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

// SendMagicLink はemail宛にログインリンクを送信する。
// リンクからの戻り先としてredirectToを指定する。
func (c *GoTrueClient) SendMagicLink(ctx context.Context, email, redirectTo string) error {
	endpoint := c.config.BaseURL + "/otp"
	if redirectTo != "" {
		endpoint += "?" + url.Values{"redirect_to": {redirectTo}}.Encode()
	}

	_, err := c.postJSON(ctx, endpoint, otpRequest{Email: email, CreateUser: false}, "")
	if err != nil {
		return fmt.Errorf("failed to send magic link: %w", err)
	}
	return nil
}

// VerifyMagicLink はログインリンクのトークンハッシュを検証し、セッションを返す。
func (c *GoTrueClient) VerifyMagicLink(ctx context.Context, tokenHash, linkType string) (*ProviderSession, error) {
	if linkType == "" {
		linkType = "magiclink"
	}

	body, err := c.postJSON(ctx, c.config.BaseURL+"/verify", verifyRequest{Type: linkType, TokenHash: tokenHash}, "")
	if err != nil {
		return nil, fmt.Errorf("failed to verify magic link: %w", err)
	}

	var sess goTrueSession
	if err := json.Unmarshal(body, &sess); err != nil {
		return nil, fmt.Errorf("failed to parse verify response: %w", err)
	}
	if sess.AccessToken == "" {
		return nil, fmt.Errorf("empty access token in verify response")
	}

	return &ProviderSession{
		AccessToken: sess.AccessToken,
		ExpiresIn:   sess.ExpiresIn,
		Email:       sess.User.Email,
	}, nil
}

// SignOut はアクセストークンに紐づく外部セッションを無効化する。
func (c *GoTrueClient) SignOut(ctx context.Context, accessToken string) error {
	if _, err := c.postJSON(ctx, c.config.BaseURL+"/logout", nil, accessToken); err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}
	return nil
}

// postJSON はJSONボディをPOSTし、2xxの場合にレスポンスボディを返す。
func (c *GoTrueClient) postJSON(ctx context.Context, endpoint string, payload any, bearer string) ([]byte, error) {
	var reqBody io.Reader = http.NoBody
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.config.AnonKey)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// compile-time interface check
var _ MagicLinkProvider = (*GoTrueClient)(nil)
