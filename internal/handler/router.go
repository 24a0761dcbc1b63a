package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/translearn/internal/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/translearn/internal/metrics"
)

// HTTPStatusRecorder は応答ステータスコードのメトリクス記録に必要なインターフェース。
type HTTPStatusRecorder interface {
	RecordHTTPStatus(statusCode int)
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	CSRFConfig        middleware.CSRFConfig

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// ニュースライフサイクル
	NewsService NewsServiceInterface

	// 機械翻訳（nil許容）
	Translator TranslatorInterface

	// 観測（いずれもnil許容）
	Logger          *slog.Logger
	StatusRecorder  HTTPStatusRecorder
	MetricsGatherer prometheus.Gatherer
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Logging → Metrics → SecurityHeaders → CORS → CSRF → (Session → RateLimit)
//
// 認証ルート（/auth/*）、/health、/metricsはセッション検証の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	}
	if deps.StatusRecorder != nil {
		r.Use(statusMetricsMiddleware(deps.StatusRecorder))
	}
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	newsHandler := NewNewsHandler(deps.NewsService)
	draftHandler := NewDraftHandler(deps.NewsService)
	translationHandler := NewTranslationHandler(deps.NewsService, deps.Translator)

	// --- 認証不要のルート ---

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if deps.MetricsGatherer != nil {
		r.Get("/metrics", metrics.Handler(deps.MetricsGatherer).ServeHTTP)
	}

	r.Get("/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig).ServeHTTP)

	r.Route("/auth", func(r chi.Router) {
		r.Get("/signup", authHandler.SignupStatus)
		r.Post("/signup", authHandler.Signup)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		mutation := deps.RateLimiter.MutationMiddleware()

		r.Route("/api/news", func(r chi.Router) {
			r.Get("/", newsHandler.ListNews)
			// POST /api/news - 記事作成（状態変更レート制限を追加）
			r.With(mutation).Post("/", newsHandler.CreateNews)

			r.Route("/{id}", func(r chi.Router) {
				r.With(mutation).Delete("/", newsHandler.DeleteNews)

				// 原文入力フロー
				r.Route("/jparticle", func(r chi.Router) {
					r.Get("/", draftHandler.GetDraft)
					r.With(mutation).Post("/", draftHandler.SaveDraft)
					r.Get("/confirm", draftHandler.PreviewConfirm)
					r.With(mutation).Post("/confirm", draftHandler.Confirm)
					r.With(mutation).Post("/cancel", draftHandler.Cancel)
					r.With(mutation).Post("/import", draftHandler.Import)
				})

				// 英訳入力・確認フロー
				r.Get("/translearn", translationHandler.GetTranslationView)
				r.With(mutation).Post("/translearn", translationHandler.SubmitTranslations)
				r.Get("/transconfirm", translationHandler.GetConfirmationView)
				r.With(mutation).Post("/transconfirm", translationHandler.ConfirmTranslations)

				// 機械翻訳サジェスト（状態を変更しないため一般レート制限のみ）
				r.Post("/translate", translationHandler.Translate)
			})
		})
	})

	return r
}

// statusMetricsMiddleware は全リクエストの応答ステータスコードを記録する。
func statusMetricsMiddleware(recorder HTTPStatusRecorder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := middleware.StatusRecorderFor(w)
			next.ServeHTTP(rec, r)
			recorder.RecordHTTPStatus(rec.StatusCode())
		})
	}
}
