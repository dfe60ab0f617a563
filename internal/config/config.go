package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	// DatabaseURL は公開ロール（RLS適用）の接続URL。
	DatabaseURL string
	// ServiceRoleDatabaseURL はRLSをバイパスするサービスロールの接続URL。
	// パスキー更新とマイグレーションでのみ使用する。
	ServiceRoleDatabaseURL string
	StoreTimeout           time.Duration

	// Superadmin
	SuperadminEmail string

	// Auth provider (magic link)
	AuthURL       string
	AuthAnonKey   string
	AuthJWTSecret string

	// Session
	SessionMaxAge    int
	SessionCacheSize int

	// Status notice
	StatusDismissAfter time.Duration

	// Pending delete confirmations
	PendingDeleteTTL time.Duration
	PendingDeleteMax int

	// Rate Limit
	RateLimitGeneral   int
	RateLimitMagicLink int

	// Logging
	LogLevel string

	// Server
	ServerPort string
	BaseURL    string

	// Cookie
	CookieSecure bool
	CookieDomain string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// ENV_FILE（デフォルト .env）が存在すれば先に読み込むが、
// 既に設定済みの環境変数は上書きしない。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	if err := loadEnvFile(getEnvString("ENV_FILE", ".env")); err != nil {
		return nil, err
	}

	cfg := &Config{}

	// Required fields
	var missing []string
	required := func(key string) string {
		v := os.Getenv(key)
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}

	cfg.DatabaseURL = required("DATABASE_URL")
	cfg.ServiceRoleDatabaseURL = required("SERVICE_ROLE_DATABASE_URL")
	cfg.SuperadminEmail = required("SUPERADMIN_EMAIL")
	cfg.AuthURL = strings.TrimRight(required("AUTH_URL"), "/")
	cfg.AuthAnonKey = required("AUTH_ANON_KEY")
	cfg.AuthJWTSecret = required("AUTH_JWT_SECRET")
	cfg.BaseURL = strings.TrimRight(required("BASE_URL"), "/")

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.StoreTimeout = getEnvDuration("STORE_TIMEOUT", 10*time.Second)
	cfg.SessionMaxAge = getEnvInt("SESSION_MAX_AGE", 86400)
	cfg.SessionCacheSize = getEnvInt("SESSION_CACHE_SIZE", 128)
	cfg.StatusDismissAfter = getEnvDuration("STATUS_DISMISS_AFTER", 3*time.Second)
	cfg.PendingDeleteTTL = getEnvDuration("PENDING_DELETE_TTL", 10*time.Minute)
	cfg.PendingDeleteMax = getEnvInt("PENDING_DELETE_MAX", 1024)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitMagicLink = getEnvInt("RATE_LIMIT_MAGIC_LINK", 5)
	cfg.LogLevel = getEnvString("LOG_LEVEL", "info")
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CookieSecure = strings.HasPrefix(cfg.BaseURL, "https://")
	cfg.CookieDomain = getEnvString("COOKIE_DOMAIN", "")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	return cfg, nil
}

// loadEnvFile は.envファイルを読み込む。ファイルが存在しない場合は何もしない。
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
