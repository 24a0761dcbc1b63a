package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/translearn/internal/middleware"
	"github.com/hitoshi/translearn/internal/model"
	"github.com/hitoshi/translearn/internal/news"
)

// NewsServiceInterface はニュースハンドラーが必要とするサービスインターフェース。
type NewsServiceInterface interface {
	ListNews(ctx context.Context, userID string) ([]*model.NewsItem, error)
	CreateNews(ctx context.Context, userID string, in news.CreateNewsInput) (*model.NewsItem, error)
	GetJapaneseDraft(ctx context.Context, publicID, userID string) (*model.NewsItem, *model.Draft, error)
	SaveJapaneseDraft(ctx context.Context, publicID, userID, body string, engSametime bool) error
	PreviewSentences(ctx context.Context, publicID, userID string) (*model.NewsItem, []string, error)
	ConfirmJapaneseDraft(ctx context.Context, publicID, userID string) (*model.NewsItem, error)
	CancelDraft(ctx context.Context, publicID, userID string) error
	ImportDraft(ctx context.Context, publicID, userID string) (*model.Draft, error)
	GetTranslationView(ctx context.Context, publicID, userID string) (*model.NewsItem, []*model.Sentence, error)
	SubmitTranslations(ctx context.Context, publicID, userID string, engBySeq map[int]string) (*model.NewsItem, error)
	GetConfirmationView(ctx context.Context, publicID, userID string) (*model.NewsItem, []*model.Sentence, error)
	ConfirmTranslations(ctx context.Context, publicID, userID string) (*model.NewsItem, error)
	DeleteNews(ctx context.Context, publicID, userID string) error
}

// NewsHandler はニュース記事のライフサイクル操作のHTTPハンドラー。
type NewsHandler struct {
	service NewsServiceInterface
}

// NewNewsHandler はNewsHandlerを生成する。
func NewNewsHandler(service NewsServiceInterface) *NewsHandler {
	return &NewsHandler{service: service}
}

// createNewsRequest は記事作成リクエストのボディ。
type createNewsRequest struct {
	JpTitle   string `json:"jp_title"`
	EngTitle  string `json:"eng_title"`
	JpURL     string `json:"jp_url"`
	EngURL    string `json:"eng_url"`
	StartDate string `json:"start_date"`
	Private   bool   `json:"private"`
}

// ListNews は呼び出しユーザーに可視な記事一覧を返す。
// GET /api/news
func (h *NewsHandler) ListNews(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	items, err := h.service.ListNews(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	out := make([]newsResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toNewsResponse(item, userID))
	}
	writeJSONResponse(w, http.StatusOK, out)
}

// CreateNews は新規記事をCreating状態で作成する。
// POST /api/news
func (h *NewsHandler) CreateNews(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req createNewsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	item, err := h.service.CreateNews(r.Context(), userID, news.CreateNewsInput{
		JpTitle:      req.JpTitle,
		EngTitle:     req.EngTitle,
		JpURL:        req.JpURL,
		EngURL:       req.EngURL,
		StartDateStr: req.StartDate,
		Private:      req.Private,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, toNewsResponse(item, userID))
}

// DeleteNews は記事を状態を問わず物理削除する。
// DELETE /api/news/{id}
func (h *NewsHandler) DeleteNews(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	publicID := chi.URLParam(r, "id")
	if err := h.service.DeleteNews(r.Context(), publicID, userID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
