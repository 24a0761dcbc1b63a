package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/translearn/internal/middleware"
	"github.com/hitoshi/translearn/internal/model"
	"github.com/hitoshi/translearn/internal/news"
)

// mockNewsService はテスト用のニュースサービスモック。
// 関数フィールドで振る舞いを差し替える。
type mockNewsService struct {
	listNewsFunc             func(ctx context.Context, userID string) ([]*model.NewsItem, error)
	createNewsFunc           func(ctx context.Context, userID string, in news.CreateNewsInput) (*model.NewsItem, error)
	getJapaneseDraftFunc     func(ctx context.Context, publicID, userID string) (*model.NewsItem, *model.Draft, error)
	saveJapaneseDraftFunc    func(ctx context.Context, publicID, userID, body string, engSametime bool) error
	previewSentencesFunc     func(ctx context.Context, publicID, userID string) (*model.NewsItem, []string, error)
	confirmJapaneseDraftFunc func(ctx context.Context, publicID, userID string) (*model.NewsItem, error)
	cancelDraftFunc          func(ctx context.Context, publicID, userID string) error
	importDraftFunc          func(ctx context.Context, publicID, userID string) (*model.Draft, error)
	getTranslationViewFunc   func(ctx context.Context, publicID, userID string) (*model.NewsItem, []*model.Sentence, error)
	submitTranslationsFunc   func(ctx context.Context, publicID, userID string, engBySeq map[int]string) (*model.NewsItem, error)
	getConfirmationViewFunc  func(ctx context.Context, publicID, userID string) (*model.NewsItem, []*model.Sentence, error)
	confirmTranslationsFunc  func(ctx context.Context, publicID, userID string) (*model.NewsItem, error)
	deleteNewsFunc           func(ctx context.Context, publicID, userID string) error
}

func (m *mockNewsService) ListNews(ctx context.Context, userID string) ([]*model.NewsItem, error) {
	return m.listNewsFunc(ctx, userID)
}

func (m *mockNewsService) CreateNews(ctx context.Context, userID string, in news.CreateNewsInput) (*model.NewsItem, error) {
	return m.createNewsFunc(ctx, userID, in)
}

func (m *mockNewsService) GetJapaneseDraft(ctx context.Context, publicID, userID string) (*model.NewsItem, *model.Draft, error) {
	return m.getJapaneseDraftFunc(ctx, publicID, userID)
}

func (m *mockNewsService) SaveJapaneseDraft(ctx context.Context, publicID, userID, body string, engSametime bool) error {
	return m.saveJapaneseDraftFunc(ctx, publicID, userID, body, engSametime)
}

func (m *mockNewsService) PreviewSentences(ctx context.Context, publicID, userID string) (*model.NewsItem, []string, error) {
	return m.previewSentencesFunc(ctx, publicID, userID)
}

func (m *mockNewsService) ConfirmJapaneseDraft(ctx context.Context, publicID, userID string) (*model.NewsItem, error) {
	return m.confirmJapaneseDraftFunc(ctx, publicID, userID)
}

func (m *mockNewsService) CancelDraft(ctx context.Context, publicID, userID string) error {
	return m.cancelDraftFunc(ctx, publicID, userID)
}

func (m *mockNewsService) ImportDraft(ctx context.Context, publicID, userID string) (*model.Draft, error) {
	return m.importDraftFunc(ctx, publicID, userID)
}

func (m *mockNewsService) GetTranslationView(ctx context.Context, publicID, userID string) (*model.NewsItem, []*model.Sentence, error) {
	return m.getTranslationViewFunc(ctx, publicID, userID)
}

func (m *mockNewsService) SubmitTranslations(ctx context.Context, publicID, userID string, engBySeq map[int]string) (*model.NewsItem, error) {
	return m.submitTranslationsFunc(ctx, publicID, userID, engBySeq)
}

func (m *mockNewsService) GetConfirmationView(ctx context.Context, publicID, userID string) (*model.NewsItem, []*model.Sentence, error) {
	return m.getConfirmationViewFunc(ctx, publicID, userID)
}

func (m *mockNewsService) ConfirmTranslations(ctx context.Context, publicID, userID string) (*model.NewsItem, error) {
	return m.confirmTranslationsFunc(ctx, publicID, userID)
}

func (m *mockNewsService) DeleteNews(ctx context.Context, publicID, userID string) error {
	return m.deleteNewsFunc(ctx, publicID, userID)
}

var _ NewsServiceInterface = (*mockNewsService)(nil)

// authedRequest はユーザーID入りのコンテキストを持つリクエストを生成する。
func authedRequest(method, target, userID string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	return req.WithContext(middleware.ContextWithUserID(req.Context(), userID))
}

// withURLParam はchiのURLパラメータをリクエストに注入する。
func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// decodeErrorBody はエラーレスポンスのボディを解析する。
func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) apiErrorResponse {
	t.Helper()
	var body apiErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return body
}

// sampleNewsItem はテスト用の記事を生成する。
func sampleNewsItem(status model.Status) *model.NewsItem {
	return &model.NewsItem{
		ID:        "internal-1",
		PublicID:  "a1b2c3d4",
		JpTitle:   "テスト記事",
		EngTitle:  "Test Article",
		JpURL:     "https://example.com/jp",
		EngURL:    "https://example.com/en",
		StartDate: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		UserID:    "user-1",
		Status:    status,
	}
}

func TestNewsHandler_ListNews(t *testing.T) {
	service := &mockNewsService{
		listNewsFunc: func(ctx context.Context, userID string) ([]*model.NewsItem, error) {
			if userID != "user-1" {
				t.Errorf("unexpected userID: %s", userID)
			}
			other := sampleNewsItem(model.StatusDone)
			other.PublicID = "deadbeef"
			other.UserID = "user-2"
			return []*model.NewsItem{sampleNewsItem(model.StatusCreating), other}, nil
		},
	}
	handler := NewNewsHandler(service)

	req := authedRequest(http.MethodGet, "/api/news", "user-1", nil)
	rec := httptest.NewRecorder()
	handler.ListNews(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body []newsResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if len(body) != 2 {
		t.Fatalf("len(body) = %d, want 2", len(body))
	}
	if body[0].ID != "a1b2c3d4" || body[0].Status != "Creating" || !body[0].Owned {
		t.Errorf("unexpected first item: %+v", body[0])
	}
	if body[1].ID != "deadbeef" || body[1].Owned {
		t.Errorf("unexpected second item: %+v", body[1])
	}
	if body[0].StartDate != "2026-01-15" {
		t.Errorf("StartDate = %s, want 2026-01-15", body[0].StartDate)
	}
}

func TestNewsHandler_ListNews_Unauthenticated(t *testing.T) {
	handler := NewNewsHandler(&mockNewsService{})

	req := httptest.NewRequest(http.MethodGet, "/api/news", nil)
	rec := httptest.NewRecorder()
	handler.ListNews(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if body := decodeErrorBody(t, rec); body.Code != model.ErrCodeUnauthorized {
		t.Errorf("code = %s, want %s", body.Code, model.ErrCodeUnauthorized)
	}
}

func TestNewsHandler_CreateNews(t *testing.T) {
	var gotInput news.CreateNewsInput
	service := &mockNewsService{
		createNewsFunc: func(ctx context.Context, userID string, in news.CreateNewsInput) (*model.NewsItem, error) {
			gotInput = in
			return sampleNewsItem(model.StatusCreating), nil
		},
	}
	handler := NewNewsHandler(service)

	reqBody := `{"jp_title":"テスト記事","eng_title":"Test Article","jp_url":"https://example.com/jp","start_date":"2026-01-15","private":true}`
	req := authedRequest(http.MethodPost, "/api/news", "user-1", strings.NewReader(reqBody))
	rec := httptest.NewRecorder()
	handler.CreateNews(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	if gotInput.JpTitle != "テスト記事" || gotInput.StartDateStr != "2026-01-15" || !gotInput.Private {
		t.Errorf("unexpected input: %+v", gotInput)
	}

	var body newsResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.ID != "a1b2c3d4" || body.Status != "Creating" {
		t.Errorf("unexpected body: %+v", body)
	}
}

func TestNewsHandler_CreateNews_InvalidBody(t *testing.T) {
	handler := NewNewsHandler(&mockNewsService{})

	req := authedRequest(http.MethodPost, "/api/news", "user-1", bytes.NewReader([]byte("not json")))
	rec := httptest.NewRecorder()
	handler.CreateNews(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if body := decodeErrorBody(t, rec); body.Code != "INVALID_REQUEST" {
		t.Errorf("code = %s, want INVALID_REQUEST", body.Code)
	}
}

func TestNewsHandler_CreateNews_RequiredFields(t *testing.T) {
	service := &mockNewsService{
		createNewsFunc: func(ctx context.Context, userID string, in news.CreateNewsInput) (*model.NewsItem, error) {
			return nil, model.NewRequiredFieldsError([]string{"Japanese Title", "Start Date"})
		},
	}
	handler := NewNewsHandler(service)

	req := authedRequest(http.MethodPost, "/api/news", "user-1", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	handler.CreateNews(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	body := decodeErrorBody(t, rec)
	if body.Code != model.ErrCodeRequiredFields {
		t.Errorf("code = %s, want %s", body.Code, model.ErrCodeRequiredFields)
	}
	if !strings.Contains(body.Message, "Japanese Title") {
		t.Errorf("message should name the missing fields: %s", body.Message)
	}
}

func TestNewsHandler_DeleteNews(t *testing.T) {
	var gotPublicID string
	service := &mockNewsService{
		deleteNewsFunc: func(ctx context.Context, publicID, userID string) error {
			gotPublicID = publicID
			return nil
		},
	}
	handler := NewNewsHandler(service)

	req := withURLParam(authedRequest(http.MethodDelete, "/api/news/a1b2c3d4", "user-1", nil), "id", "a1b2c3d4")
	rec := httptest.NewRecorder()
	handler.DeleteNews(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if gotPublicID != "a1b2c3d4" {
		t.Errorf("publicID = %s, want a1b2c3d4", gotPublicID)
	}
}

func TestNewsHandler_DeleteNews_NotFound(t *testing.T) {
	service := &mockNewsService{
		deleteNewsFunc: func(ctx context.Context, publicID, userID string) error {
			return model.NewNewsNotFoundError(publicID)
		},
	}
	handler := NewNewsHandler(service)

	req := withURLParam(authedRequest(http.MethodDelete, "/api/news/ffffffff", "user-1", nil), "id", "ffffffff")
	rec := httptest.NewRecorder()
	handler.DeleteNews(rec, req)

	// 未検出は存在の有無を漏らさないよう400で返す
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if body := decodeErrorBody(t, rec); body.Code != model.ErrCodeNewsNotFound {
		t.Errorf("code = %s, want %s", body.Code, model.ErrCodeNewsNotFound)
	}
}

func TestNewsHandler_DeleteNews_Forbidden(t *testing.T) {
	service := &mockNewsService{
		deleteNewsFunc: func(ctx context.Context, publicID, userID string) error {
			return model.NewNewsForbiddenError()
		},
	}
	handler := NewNewsHandler(service)

	req := withURLParam(authedRequest(http.MethodDelete, "/api/news/a1b2c3d4", "user-2", nil), "id", "a1b2c3d4")
	rec := httptest.NewRecorder()
	handler.DeleteNews(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}
