package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pushgo/depotman/internal/metrics"
	"github.com/pushgo/depotman/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	CSRFConfig        middleware.CSRFConfig
	RateLimiter       *middleware.RateLimiter

	// 監視
	HealthChecker    HealthChecker
	MetricsCollector metrics.MetricsCollector
	MetricsGatherer  prometheus.Gatherer

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// デポ
	DepotService DepotServiceInterface
	StatusReader StatusReader
	DeleteFlow   DeleteFlowInterface

	// スーパー管理者
	PasskeyUpdater PasskeyUpdater
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → RealIP → Recovery → OptionalSession → Logging → Metrics → SecurityHeaders
//	→ CORS → RateLimit(General)
//
// /health と /metrics はCORSとレート制限の外に配置する。
// Cookieでスーパー管理者を識別するルートにはSessionとCSRFを追加する。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mc := deps.MetricsCollector
	if mc == nil {
		mc = metrics.Nop{}
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.NewRecoveryMiddleware())
	// ログにメールアドレスを出すため、Loggingより前でセッションを読む
	r.Use(middleware.NewOptionalSessionMiddleware(deps.SessionFinder))
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewMetricsMiddleware(mc))
	r.Use(middleware.NewSecurityHeadersMiddleware())

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	depotHandler := NewDepotHandler(deps.DepotService, deps.StatusReader)
	deleteHandler := NewDeleteHandler(deps.DeleteFlow)
	superadminHandler := NewSuperadminHandler(deps.PasskeyUpdater)

	// --- 監視用ルート ---
	r.Get("/health", NewHealthHandler(deps.HealthChecker))
	if deps.MetricsGatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// ログインフロー
		r.Route("/auth", func(r chi.Router) {
			r.With(deps.RateLimiter.MagicLinkMiddleware()).Post("/magic-link", authHandler.RequestMagicLink)
			r.Get("/callback", authHandler.Callback)
			r.Get("/me", authHandler.Me)
			r.With(middleware.NewCSRFMiddleware(deps.CSRFConfig)).Post("/logout", authHandler.Logout)
		})

		r.Route("/api", func(r chi.Router) {
			r.Method(http.MethodGet, "/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))
			r.Get("/status", depotHandler.GetStatus)

			// デポ管理
			r.Route("/depots", func(r chi.Router) {
				r.Get("/", depotHandler.ListDepots)
				r.Post("/", depotHandler.CreateDepot)

				r.Route("/{id}", func(r chi.Router) {
					r.Put("/", depotHandler.UpdateDepot)
					r.Post("/delete-requests", deleteHandler.RequestDelete)
				})
			})

			// 削除確認
			r.Route("/delete-requests/{pendingID}", func(r chi.Router) {
				r.Post("/confirm", deleteHandler.ConfirmDelete)
				r.Delete("/", deleteHandler.CancelDelete)
			})

			// スーパー管理者専用
			r.Group(func(r chi.Router) {
				r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
				r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))
				r.Put("/superadmin/passkey", superadminHandler.UpdatePasskey)
			})
		})
	})

	return r
}
