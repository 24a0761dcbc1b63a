// Package article はニュース記事の原文取り込み機能を提供する。
// 記事の日本語ソースURLから本文の段落テキストを抽出し、
// 下書きバッファの初期値として使える改行区切りのプレーンテキストに整形する。
package article

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/hitoshi/translearn/internal/model"
	"github.com/hitoshi/translearn/internal/security"
)

// ImporterConfig は原文取り込みの設定。
type ImporterConfig struct {
	Timeout time.Duration // 取得リクエストのタイムアウト
	MaxSize int64         // レスポンスボディの最大サイズ（バイト）
}

// Importer は外部ページから本文テキストを取り込む。
// 取得はSSRF防止機能付きのHTTPクライアントで行い、抽出したテキストは
// サニタイズしてから返す。
type Importer struct {
	httpClient *http.Client
	guard      security.SSRFGuardService
	sanitizer  security.TextSanitizerService
	logger     *slog.Logger
	config     ImporterConfig
}

// NewImporter はImporterの新しいインスタンスを生成する。
func NewImporter(
	guard security.SSRFGuardService,
	sanitizer security.TextSanitizerService,
	logger *slog.Logger,
	config ImporterConfig,
) *Importer {
	return &Importer{
		httpClient: guard.NewSafeClient(config.Timeout),
		guard:      guard,
		sanitizer:  sanitizer,
		logger:     logger,
		config:     config,
	}
}

// Extract はURLのページを取得し、本文の段落テキストを改行区切りで返す。
// <article>内の<p>を優先し、無ければページ全体の<p>を対象にする。
func (i *Importer) Extract(ctx context.Context, rawURL string) (string, error) {
	if err := i.guard.ValidateURL(rawURL); err != nil {
		i.logger.Warn("取り込みURLがブロックされました",
			slog.String("url", rawURL),
			slog.String("error", err.Error()),
		)
		return "", model.NewSSRFBlockedError()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", model.NewInvalidURLError(err.Error())
	}
	req.Header.Set("User-Agent", "Translearn/1.0")

	resp, err := i.httpClient.Do(req)
	if err != nil {
		i.logger.Error("原文ページの取得に失敗しました",
			slog.String("url", rawURL),
			slog.String("error", err.Error()),
		)
		return "", model.NewImportFailedError("ページを取得できませんでした")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", model.NewImportFailedError(fmt.Sprintf("status %d", resp.StatusCode))
	}

	body := io.LimitReader(resp.Body, i.config.MaxSize)
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return "", model.NewImportFailedError("ページを解析できませんでした")
	}

	text := i.extractParagraphs(doc)
	if text == "" {
		return "", model.NewImportFailedError("本文が見つかりませんでした")
	}

	i.logger.Info("原文を取り込みました",
		slog.String("url", rawURL),
		slog.Int("bytes", len(text)),
	)
	return text, nil
}

// extractParagraphs は段落要素のテキストを抽出し、1段落1行に整形する。
func (i *Importer) extractParagraphs(doc *goquery.Document) string {
	selection := doc.Find("article p")
	if selection.Length() == 0 {
		selection = doc.Find("p")
	}

	var lines []string
	selection.Each(func(_ int, s *goquery.Selection) {
		line := strings.TrimSpace(i.sanitizer.Sanitize(s.Text()))
		if line != "" {
			lines = append(lines, line)
		}
	})
	return strings.Join(lines, "\n")
}
