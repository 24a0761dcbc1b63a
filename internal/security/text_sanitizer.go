// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextSanitizerService は貼り付け・取り込みされた原文テキストから
// 全てのHTMLマークアップを除去する。下書きバッファと文テーブルには
// プレーンテキストのみを保存するため、許可タグを一切持たない
// bluemondayのStrictPolicyを使用する。
package security

import (
	"html"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizerService はテキストサニタイズ機能のインターフェースを定義する。
// 下書き保存前および原文取り込み時に使用される。
type TextSanitizerService interface {
	// Sanitize は入力から全てのHTMLタグを除去したプレーンテキストを返す。
	// 実体参照はデコードされ、改行などの空白文字はそのまま保持される。
	// 空文字列の入力には空文字列を返す。同一入力に対して常に同一出力を返す。
	Sanitize(raw string) string
}

// textSanitizer はTextSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerServiceの新しいインスタンスを生成する。
// StrictPolicyは全ての要素と属性を除去し、テキストノードのみを残す。
func NewTextSanitizer() *textSanitizer {
	return &textSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize は入力から全てのHTMLタグを除去したプレーンテキストを返す。
// bluemondayはテキストを実体参照にエスケープして返すため、
// プレーンテキストとして保存できるようアンエスケープする。
func (s *textSanitizer) Sanitize(raw string) string {
	return html.UnescapeString(s.policy.Sanitize(raw))
}
