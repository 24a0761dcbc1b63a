package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/translearn/internal/middleware"
	"github.com/hitoshi/translearn/internal/model"
)

// TranslatorInterface は機械翻訳ハンドラーが必要とするクライアントインターフェース。
type TranslatorInterface interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// TranslationHandler は英訳入力・確認フローのHTTPハンドラー。
type TranslationHandler struct {
	service    NewsServiceInterface
	translator TranslatorInterface
}

// NewTranslationHandler はTranslationHandlerを生成する。translatorはnil許容。
func NewTranslationHandler(service NewsServiceInterface, translator TranslatorInterface) *TranslationHandler {
	return &TranslationHandler{
		service:    service,
		translator: translator,
	}
}

// submitTranslationsRequest は英訳提出リクエストのボディ。
// キーは文のSeqの文字列表現（フォームのeng_sentence_{seq}に相当）。
type submitTranslationsRequest struct {
	Translations map[string]string `json:"translations"`
}

// translateRequest は機械翻訳サジェストのリクエストボディ。
type translateRequest struct {
	Text   string `json:"text"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// GetTranslationView は翻訳画面用に記事と原文の文一覧を返す。
// GET /api/news/{id}/translearn
func (h *TranslationHandler) GetTranslationView(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	publicID := chi.URLParam(r, "id")
	item, sentences, err := h.service.GetTranslationView(r.Context(), publicID, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, struct {
		News      newsResponse       `json:"news"`
		Sentences []sentenceResponse `json:"sentences"`
	}{
		News:      toNewsResponse(item, userID),
		Sentences: toSentenceResponses(sentences),
	})
}

// SubmitTranslations は英訳を一括保存し、記事をProcessingに遷移させる。
// POST /api/news/{id}/translearn
// リクエストに無いSeqの英訳は空文字列として保存される。
func (h *TranslationHandler) SubmitTranslations(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req submitTranslationsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	engBySeq := make(map[int]string, len(req.Translations))
	for key, value := range req.Translations {
		seq, err := strconv.Atoi(key)
		if err != nil {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidFieldsError([]string{"translations"}))
			return
		}
		engBySeq[seq] = value
	}

	publicID := chi.URLParam(r, "id")
	item, err := h.service.SubmitTranslations(r.Context(), publicID, userID, engBySeq)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, toNewsResponse(item, userID))
}

// GetConfirmationView は翻訳確認画面用に記事と文の対訳一覧を返す。
// GET /api/news/{id}/transconfirm
func (h *TranslationHandler) GetConfirmationView(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	publicID := chi.URLParam(r, "id")
	item, sentences, err := h.service.GetConfirmationView(r.Context(), publicID, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, struct {
		News      newsResponse       `json:"news"`
		Sentences []sentenceResponse `json:"sentences"`
	}{
		News:      toNewsResponse(item, userID),
		Sentences: toSentenceResponses(sentences),
	})
}

// ConfirmTranslations は英訳の確認を完了し、記事をDoneに遷移させる。
// POST /api/news/{id}/transconfirm
func (h *TranslationHandler) ConfirmTranslations(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	publicID := chi.URLParam(r, "id")
	item, err := h.service.ConfirmTranslations(r.Context(), publicID, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, toNewsResponse(item, userID))
}

// Translate は単一テキストの機械翻訳サジェストを返す。
// POST /api/news/{id}/translate
// ベストエフォートの補助機能であり、記事の状態を変更しない。
// 記事の可視性チェックを通過した呼び出しのみ許可する。
func (h *TranslationHandler) Translate(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	if h.translator == nil {
		writeAPIErrorResponse(w, http.StatusBadGateway, model.NewTranslateFailedError("translator is not configured"))
		return
	}

	publicID := chi.URLParam(r, "id")
	if _, _, err := h.service.GetTranslationView(r.Context(), publicID, userID); err != nil {
		handleServiceError(w, err)
		return
	}

	var req translateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}
	if req.Source == "" {
		req.Source = "ja"
	}
	if req.Target == "" {
		req.Target = "en"
	}

	translated, err := h.translator.Translate(r.Context(), req.Text, req.Source, req.Target)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]string{"translated": translated})
}
