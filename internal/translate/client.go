// Package translate は外部機械翻訳サービスのクライアントを提供する。
// 翻訳はベストエフォートの補助機能であり、この呼び出しの失敗が
// 記事のライフサイクル状態に影響することはない。
package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hitoshi/translearn/internal/model"
)

// maxTextLength は1回の翻訳リクエストで送信できる最大文字数。
const maxTextLength = 5000

// Recorder は翻訳呼び出しのメトリクス記録インターフェース。
type Recorder interface {
	TranslateObserved(success bool, duration time.Duration)
}

// Client は機械翻訳APIのクライアント。
// Google翻訳の非公式エンドポイントを使用して単一テキストを翻訳する。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	recorder   Recorder
	endpoint   string // テスト用にエンドポイントを差し替え可能
}

// NewClient はClientの新しいインスタンスを生成する。recorderはnil許容。
func NewClient(httpClient *http.Client, logger *slog.Logger, recorder Recorder, endpoint string) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		recorder:   recorder,
		endpoint:   endpoint,
	}
}

// Translate はテキストをsourceからtargetの言語に翻訳する。
// 言語コードはISO 639-1（"ja"、"en"など）。
func (c *Client) Translate(ctx context.Context, text, source, target string) (string, error) {
	start := time.Now()
	translated, err := c.translate(ctx, text, source, target)
	if c.recorder != nil {
		c.recorder.TranslateObserved(err == nil, time.Since(start))
	}
	return translated, err
}

func (c *Client) translate(ctx context.Context, text, source, target string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", model.NewRequiredFieldsError([]string{"Text"})
	}
	if len(text) > maxTextLength {
		return "", model.NewInvalidFieldsError([]string{"Text"})
	}

	reqURL, err := url.Parse(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("エンドポイントURLのパースに失敗しました: %w", err)
	}

	q := reqURL.Query()
	q.Set("client", "gtx")
	q.Set("sl", source)
	q.Set("tl", target)
	q.Set("dt", "t")
	q.Set("q", text)
	reqURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return "", fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("User-Agent", "Translearn/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("機械翻訳APIの呼び出しに失敗しました",
			slog.String("error", err.Error()),
		)
		return "", model.NewTranslateFailedError(err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("機械翻訳APIがエラーステータスを返しました",
			slog.Int("http_status", resp.StatusCode),
		)
		return "", model.NewTranslateFailedError(fmt.Sprintf("status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", model.NewTranslateFailedError("レスポンスの読み取りに失敗しました")
	}

	translated, err := parseResponse(body)
	if err != nil {
		c.logger.Error("機械翻訳APIのレスポンスのパースに失敗しました",
			slog.String("error", err.Error()),
		)
		return "", model.NewTranslateFailedError("レスポンスの形式が不正です")
	}
	return translated, nil
}

// parseResponse はgtxエンドポイントのネストした配列レスポンスから
// 翻訳済みテキストを抽出する。長文は複数セグメントに分割されるため連結する。
func parseResponse(body []byte) (string, error) {
	var root []json.RawMessage
	if err := json.Unmarshal(body, &root); err != nil {
		return "", fmt.Errorf("unexpected response: %w", err)
	}
	if len(root) == 0 {
		return "", fmt.Errorf("empty response")
	}

	var segments [][]json.RawMessage
	if err := json.Unmarshal(root[0], &segments); err != nil {
		return "", fmt.Errorf("unexpected segment list: %w", err)
	}

	var sb strings.Builder
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		var part string
		if err := json.Unmarshal(seg[0], &part); err != nil {
			return "", fmt.Errorf("unexpected segment: %w", err)
		}
		sb.WriteString(part)
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no translated text in response")
	}
	return sb.String(), nil
}
