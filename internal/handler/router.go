package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/authgate/internal/middleware"
)

// Pinger はヘルスチェックに必要なデータベース接続確認のインターフェース。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenValidator    middleware.TokenValidator
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger

	// メトリクス（nil可）
	MetricsRecorder middleware.HTTPMetricsRecorder
	MetricsHandler  http.Handler

	// サービス
	AuthService AuthServiceInterface
	UserService UserServiceInterface

	// セルフサインアップを許可するか
	OpenSignup bool

	// ヘルスチェック用（nil可）
	DB Pinger
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORS → SecurityHeaders → Recovery → Logging → (Metrics)
//
// トークン発行ルート（/tokens/*）は未認証で到達でき、ログインには接続元IP単位の
// レート制限がかかる。ユーザーディレクトリのルートは認証ミドルウェアと
// ユーザー単位のレート制限を通過する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewRecoveryMiddleware())
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	}
	if deps.MetricsRecorder != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.MetricsRecorder))
	}

	tokenHandler := NewTokenHandler(deps.AuthService)
	userHandler := NewUserHandler(deps.UserService, deps.OpenSignup)

	// --- 認証不要のルート ---

	r.Get("/health", healthHandler(deps.DB))

	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Route("/tokens", func(r chi.Router) {
		r.With(deps.RateLimiter.LoginMiddleware()).Post("/login", tokenHandler.Login)
		r.Post("/refresh", tokenHandler.Refresh)
	})

	// セルフサインアップ有効時、ユーザー作成は未認証でも到達できる。
	// トークンが提示された場合は検証され、adminは任意ロールを指定できる。
	if deps.OpenSignup {
		r.With(
			middleware.NewOptionalAuthMiddleware(deps.TokenValidator),
			deps.RateLimiter.LoginMiddleware(),
		).Post("/users", userHandler.Create)
	}

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Auth → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.TokenValidator))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		if !deps.OpenSignup {
			r.Post("/users", userHandler.Create)
		}
		r.Get("/users", userHandler.List)

		// /users/me は /users/{id} より優先してマッチする
		r.Get("/users/me", userHandler.GetMe)
		r.Put("/users/me", userHandler.UpdateMe)
		r.Delete("/users/me", userHandler.DeleteMe)

		r.Get("/users/{id}", userHandler.Get)
		r.Put("/users/{id}", userHandler.Update)
		r.Delete("/users/{id}", userHandler.Delete)
	})

	return r
}

// healthHandler はヘルスチェックのHTTPハンドラーを返す。
// データベース接続が確認できない場合は503を返す。
func healthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{"status": "unavailable"})
				return
			}
		}

		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}
