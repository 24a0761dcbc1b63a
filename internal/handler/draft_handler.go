package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/translearn/internal/middleware"
	"github.com/hitoshi/translearn/internal/model"
)

// DraftHandler は原文下書きの多段階入力フローのHTTPハンドラー。
// 下書きの保存・確認・確定・キャンセル・取り込みを扱う。
type DraftHandler struct {
	service NewsServiceInterface
}

// NewDraftHandler はDraftHandlerを生成する。
func NewDraftHandler(service NewsServiceInterface) *DraftHandler {
	return &DraftHandler{service: service}
}

// saveDraftRequest は下書き保存リクエストのボディ。
type saveDraftRequest struct {
	Body        string `json:"body"`
	EngSametime bool   `json:"eng_sametime"`
}

// draftResponse は下書きのAPIレスポンス。
type draftResponse struct {
	Body        string `json:"body"`
	EngSametime bool   `json:"eng_sametime"`
}

// GetDraft は入力フォーム再表示用に記事と既存の下書きを返す。
// GET /api/news/{id}/jparticle
func (h *DraftHandler) GetDraft(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	publicID := chi.URLParam(r, "id")
	item, draft, err := h.service.GetJapaneseDraft(r.Context(), publicID, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := struct {
		News  newsResponse   `json:"news"`
		Draft *draftResponse `json:"draft"`
	}{
		News: toNewsResponse(item, userID),
	}
	if draft != nil {
		resp.Draft = &draftResponse{
			Body:        draft.Body,
			EngSametime: draft.EngSametime,
		}
	}
	writeJSONResponse(w, http.StatusOK, resp)
}

// SaveDraft は貼り付けられた日本語原文を下書きバッファに保存する。
// POST /api/news/{id}/jparticle
func (h *DraftHandler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req saveDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	publicID := chi.URLParam(r, "id")
	if err := h.service.SaveJapaneseDraft(r.Context(), publicID, userID, req.Body, req.EngSametime); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// PreviewConfirm は下書きの分割結果を確認用に返す。
// GET /api/news/{id}/jparticle/confirm
func (h *DraftHandler) PreviewConfirm(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	publicID := chi.URLParam(r, "id")
	item, lines, err := h.service.PreviewSentences(r.Context(), publicID, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, struct {
		News      newsResponse `json:"news"`
		Sentences []string     `json:"sentences"`
	}{
		News:      toNewsResponse(item, userID),
		Sentences: lines,
	})
}

// Confirm は下書きを文として確定し、記事をCreatedに遷移させる。
// POST /api/news/{id}/jparticle/confirm
func (h *DraftHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	publicID := chi.URLParam(r, "id")
	item, err := h.service.ConfirmJapaneseDraft(r.Context(), publicID, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, toNewsResponse(item, userID))
}

// Cancel は作成フローを中断し、下書きと記事を削除する。
// POST /api/news/{id}/jparticle/cancel
func (h *DraftHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	publicID := chi.URLParam(r, "id")
	if err := h.service.CancelDraft(r.Context(), publicID, userID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Import は記事の日本語ソースURLから本文を取り込み、下書きバッファに格納する。
// POST /api/news/{id}/jparticle/import
func (h *DraftHandler) Import(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	publicID := chi.URLParam(r, "id")
	draft, err := h.service.ImportDraft(r.Context(), publicID, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, draftResponse{
		Body:        draft.Body,
		EngSametime: draft.EngSametime,
	})
}
