package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/assetman/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenResolver     middleware.TokenResolver
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	MetricsRecorder   middleware.HTTPMetricsRecorder

	// 認証
	AuthService AuthServiceInterface
	UserFinder  UserFinder

	// マスタ管理
	DepartmentService DepartmentServiceInterface
	CategoryService   CategoryServiceInterface

	// ユーザー管理
	UserService UserServiceInterface

	// 資産・保証
	AssetService    AssetServiceInterface
	WarrantyService WarrantyServiceInterface

	// 運用系
	HealthChecker  Pinger
	MetricsHandler http.Handler
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → CORS → SecurityHeaders → Metrics → Logging → Auth → RateLimit(General)
//
// 認証ルート（/auth/register, /auth/login）と運用系ルートは認証ミドルウェアの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	if deps.MetricsRecorder != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.MetricsRecorder))
	}
	r.Use(middleware.NewLoggingMiddleware(slog.Default()))

	authHandler := NewAuthHandler(deps.AuthService, deps.UserFinder)
	deptHandler := NewDepartmentHandler(deps.DepartmentService)
	categoryHandler := NewCategoryHandler(deps.CategoryService)
	userHandler := NewUserHandler(deps.UserService)
	assetHandler := NewAssetHandler(deps.AssetService)
	warrantyHandler := NewWarrantyHandler(deps.WarrantyService)
	healthHandler := NewHealthHandler(deps.HealthChecker)

	// --- 認証不要のルート ---

	r.Get("/health", healthHandler.Liveness)
	r.Get("/healthz", healthHandler.Readiness)
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Post("/auth/register", authHandler.Register)
	r.Post("/auth/login", authHandler.Login)

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Auth → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.TokenResolver))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Get("/auth/me", authHandler.Me)

		// 部署管理（参照は全ユーザー、変更は管理者専用）
		r.Route("/api/departments", func(r chi.Router) {
			r.Get("/", deptHandler.List)
			r.With(middleware.RequireAdmin()).Post("/", deptHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Use(middleware.RequireAdmin())
				r.Patch("/", deptHandler.Update)
				r.Delete("/", deptHandler.Delete)
			})
		})

		// カテゴリ管理（参照は全ユーザー、変更は管理者専用）
		r.Route("/api/categories", func(r chi.Router) {
			r.Get("/", categoryHandler.List)
			r.With(middleware.RequireAdmin()).Post("/", categoryHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Use(middleware.RequireAdmin())
				r.Patch("/", categoryHandler.Update)
				r.Delete("/", categoryHandler.Delete)
			})
		})

		// ユーザー管理（すべて管理者専用）
		r.Route("/api/users", func(r chi.Router) {
			r.Use(middleware.RequireAdmin())
			r.Get("/", userHandler.List)
			r.Post("/create", userHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Patch("/", userHandler.Update)
				r.Delete("/", userHandler.Delete)
			})
		})

		// 資産管理
		r.Route("/api/assets", func(r chi.Router) {
			r.Get("/", assetHandler.List)
			r.Post("/", assetHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", assetHandler.Get)
				r.With(middleware.RequireAdmin()).Patch("/", assetHandler.Update)
				r.With(middleware.RequireAdmin()).Delete("/", assetHandler.Delete)

				// POST /api/assets/{id}/warranty - 保証登録（登録専用レート制限を追加）
				r.With(deps.RateLimiter.WarrantyRegistrationMiddleware()).Post("/warranty", warrantyHandler.Register)
			})
		})

		// 保証状況一覧（管理者専用）
		r.With(middleware.RequireAdmin()).Get("/api/warranties", warrantyHandler.List)
	})

	return r
}
