package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/translearn/internal/model"
)

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// newsResponse はニュース記事のAPIレスポンス。IDには公開IDを使用する。
type newsResponse struct {
	ID          string  `json:"id"`
	EngTitle    string  `json:"eng_title"`
	JpTitle     string  `json:"jp_title"`
	EngURL      string  `json:"eng_url"`
	JpURL       string  `json:"jp_url"`
	StartDate   string  `json:"start_date"`
	EndDate     *string `json:"end_date"`
	LastUpdated *string `json:"last_updated"`
	Private     bool    `json:"private"`
	Status      string  `json:"status"`
	Owned       bool    `json:"owned"`
}

// sentenceResponse は文のAPIレスポンス。
type sentenceResponse struct {
	Seq     int    `json:"seq"`
	JpText  string `json:"jp_text"`
	EngText string `json:"eng_text"`
}

// toNewsResponse はmodel.NewsItemからAPIレスポンスに変換する。
func toNewsResponse(news *model.NewsItem, callerUserID string) newsResponse {
	resp := newsResponse{
		ID:        news.PublicID,
		EngTitle:  news.EngTitle,
		JpTitle:   news.JpTitle,
		EngURL:    news.EngURL,
		JpURL:     news.JpURL,
		StartDate: news.StartDate.Format("2006-01-02"),
		Private:   news.Private,
		Status:    news.Status.String(),
		Owned:     news.UserID == callerUserID,
	}
	if news.EndDate != nil {
		s := news.EndDate.Format("2006-01-02")
		resp.EndDate = &s
	}
	if news.LastUpdated != nil {
		s := news.LastUpdated.Format(time.RFC3339)
		resp.LastUpdated = &s
	}
	return resp
}

// toSentenceResponses はmodel.SentenceのスライスからAPIレスポンスに変換する。
func toSentenceResponses(sentences []*model.Sentence) []sentenceResponse {
	out := make([]sentenceResponse, 0, len(sentences))
	for _, s := range sentences {
		out = append(out, sentenceResponse{
			Seq:     s.Seq,
			JpText:  s.JpText,
			EngText: s.EngText,
		})
	}
	return out
}

// writeJSONResponse はJSONレスポンスを書き込む。
func writeJSONResponse(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	writeJSONResponse(w, statusCode, apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// writeInvalidRequestBody はリクエストボディ解析失敗の統一レスポンスを書き込む。
func writeInvalidRequestBody(w http.ResponseWriter) {
	writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
		Code:     "INVALID_REQUEST",
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
// 記事・下書きの未検出は、存在しないIDと状態不一致を区別しないよう
// 一般的なbad-requestとして返す。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeUnauthorized, model.ErrCodeInvalidCredentials, model.ErrCodeSignupClosed:
		return http.StatusUnauthorized
	case model.ErrCodeDuplicateUsername:
		return http.StatusConflict
	case model.ErrCodeWeakPassword, model.ErrCodeRequiredFields, model.ErrCodeInvalidFields, model.ErrCodeInvalidURL:
		return http.StatusBadRequest
	case model.ErrCodeNewsNotFound, model.ErrCodeDraftNotFound:
		return http.StatusBadRequest
	case model.ErrCodeNewsForbidden, model.ErrCodeSSRFBlocked:
		return http.StatusForbidden
	case model.ErrCodeUserNotFound:
		return http.StatusNotFound
	case model.ErrCodeImportFailed, model.ErrCodeTranslateFailed:
		return http.StatusBadGateway
	case model.ErrCodeIDGenerationFailed:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
