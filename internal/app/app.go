// Package app はコマンドの起動と依存関係のワイヤリングを行う。
package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/pushgo/depotman/internal/auth"
	"github.com/pushgo/depotman/internal/config"
	"github.com/pushgo/depotman/internal/database"
	"github.com/pushgo/depotman/internal/deleteflow"
	"github.com/pushgo/depotman/internal/depot"
	"github.com/pushgo/depotman/internal/handler"
	"github.com/pushgo/depotman/internal/logger"
	"github.com/pushgo/depotman/internal/metrics"
	"github.com/pushgo/depotman/internal/middleware"
	"github.com/pushgo/depotman/internal/passkey"
	"github.com/pushgo/depotman/internal/repository"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, slog.LevelInfo)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. 設定されたログレベルで再セットアップ
	logger.SetupDefault(w, logger.ParseLevel(cfg.LogLevel))

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	case CommandSeed:
		return runSeed(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe はAPIサーバーモードで起動する。
// 公開ロールとサービスロールの2つのDB接続を開き、全依存関係をワイヤリングしてHTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続（公開ロール / サービスロール）
	publicDB, err := openAndPing(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer publicDB.Close()

	serviceDB, err := openAndPing(cfg.ServiceRoleDatabaseURL)
	if err != nil {
		return err
	}
	defer serviceDB.Close()

	slog.Info("database connections established")

	// 2. メトリクス
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	mc := metrics.NewCollector(reg)

	// 3. リポジトリの初期化
	depotRepo := repository.NewPostgresDepotRepo(publicDB)
	settingsRepo := repository.NewPostgresSettingsRepo(publicDB)

	// 4. ドメインサービスの初期化
	gate := auth.NewGate(cfg.SuperadminEmail)

	board := depot.NewBoard(cfg.StatusDismissAfter)
	depotSync := depot.NewSynchronizer(depotRepo, board, mc, depot.Config{StoreTimeout: cfg.StoreTimeout})

	verifier := passkey.NewVerifier(settingsRepo, mc)
	updater := passkey.NewUpdater(gate, serviceDB, mc)

	flow := deleteflow.NewFlow(verifier, depotSync, deleteflow.Config{
		TTL:        cfg.PendingDeleteTTL,
		MaxPending: cfg.PendingDeleteMax,
	})

	authService := auth.NewService(
		auth.NewGoTrueClient(auth.GoTrueConfig{
			BaseURL: cfg.AuthURL,
			AnonKey: cfg.AuthAnonKey,
		}),
		auth.NewTokenVerifier(cfg.AuthJWTSecret),
		gate,
		auth.NewSessionStore(cfg.SessionCacheSize, time.Duration(cfg.SessionMaxAge)*time.Second),
		mc,
		auth.ServiceConfig{CallbackURL: callbackURL(cfg.BaseURL)},
	)

	// 起動時に一覧を読み込んでおく。失敗してもリクエスト時に再取得する
	if _, err := depotSync.List(context.Background()); err != nil {
		slog.Warn("initial depot load failed", slog.String("error", err.Error()))
	}

	// 5. ルーターの構築
	rateLimiter := middleware.NewRateLimiter(middleware.NewRateLimiterConfig(cfg.RateLimitGeneral, cfg.RateLimitMagicLink))
	defer rateLimiter.Stop()

	router := handler.NewRouter(&handler.RouterDeps{
		Logger:            slog.Default(),
		SessionFinder:     authService,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		CSRFConfig: middleware.CSRFConfig{
			CookieSecure: cfg.CookieSecure,
			CookieDomain: cfg.CookieDomain,
		},
		RateLimiter: rateLimiter,

		HealthChecker:    publicDB,
		MetricsCollector: mc,
		MetricsGatherer:  reg,

		AuthService: authService,
		AuthConfig: handler.AuthHandlerConfig{
			BaseURL:       cfg.BaseURL,
			CookieDomain:  cfg.CookieDomain,
			CookieSecure:  cfg.CookieSecure,
			SessionMaxAge: cfg.SessionMaxAge,
		},

		DepotService: depotSync,
		StatusReader: board,
		DeleteFlow:   flow,

		PasskeyUpdater: updater,
	})

	// 6. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("API server starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	select {
	case <-stop:
	case err := <-serveErr:
		return fmt.Errorf("server listen error: %w", err)
	}
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// RLSポリシーとロールの作成にはテーブル所有者の権限が必要なため、サービスロールで接続する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.ServiceRoleDatabaseURL)),
	)

	version, err := database.RunMigrations(cfg.ServiceRoleDatabaseURL)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully", slog.Uint64("version", uint64(version)))
	return nil
}

// runSeed はdepotsテーブルが空の場合に初期デポを投入する。
func runSeed(cfg *config.Config) error {
	db, err := openAndPing(cfg.ServiceRoleDatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.StoreTimeout)
	defer cancel()

	n, err := database.SeedDepots(ctx, db)
	if err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}

	if n == 0 {
		slog.Info("depots table is not empty, seed skipped")
		return nil
	}
	slog.Info("initial depots seeded", slog.Int("count", n))
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	endpoint := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(endpoint)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// openAndPing はDB接続を開き、疎通を確認する。
func openAndPing(databaseURL string) (*sql.DB, error) {
	db, err := database.Open(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database %s: %w", maskDatabaseURL(databaseURL), err)
	}
	return db, nil
}

// callbackURL はログインリンクの戻り先（/auth/callback）のURLを返す。
func callbackURL(baseURL string) string {
	return baseURL + "/auth/callback"
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "***"
	}
	if u.User != nil {
		u.User = url.User("***")
	}
	u.RawQuery = ""
	return u.String()
}
