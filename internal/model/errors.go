// Package model はドメインモデルを定義する。
package model

import (
	"fmt"
	"strings"
)

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, news, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeSignupClosed       = "SIGNUP_CLOSED"
	ErrCodeDuplicateUsername  = "DUPLICATE_USERNAME"
	ErrCodeWeakPassword       = "WEAK_PASSWORD"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeRequiredFields     = "REQUIRED_FIELDS"
	ErrCodeInvalidFields      = "INVALID_FIELDS"
	ErrCodeNewsNotFound       = "NEWS_NOT_FOUND"
	ErrCodeNewsForbidden      = "NEWS_FORBIDDEN"
	ErrCodeDraftNotFound      = "DRAFT_NOT_FOUND"
	ErrCodeIDGenerationFailed = "ID_GENERATION_FAILED"
	ErrCodeInvalidURL         = "INVALID_URL"
	ErrCodeSSRFBlocked        = "SSRF_BLOCKED"
	ErrCodeImportFailed       = "IMPORT_FAILED"
	ErrCodeTranslateFailed    = "TRANSLATE_FAILED"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
)

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewSignupClosedError は未認証クライアントによる新規登録が拒否された場合のエラーを生成する。
// 既存ユーザーが1人でも存在すると、未認証のサインアップは許可されない。
func NewSignupClosedError() *APIError {
	return &APIError{
		Code:     ErrCodeSignupClosed,
		Message:  "新規登録は受け付けていません。",
		Category: "auth",
		Action:   "既存のアカウントでログインしてください。",
	}
}

// NewDuplicateUsernameError はユーザー名重複エラーを生成する。
func NewDuplicateUsernameError(name string) *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateUsername,
		Message:  fmt.Sprintf("%s : このユーザー名は既に使われています。", name),
		Category: "validation",
		Action:   "別のユーザー名を指定してください。",
	}
}

// NewWeakPasswordError はパスワードポリシー違反エラーを生成する。
func NewWeakPasswordError() *APIError {
	return &APIError{
		Code:     ErrCodeWeakPassword,
		Message:  "パスワードが要件を満たしていません。",
		Category: "validation",
		Action:   "8〜16文字で、英小文字のみ・数字のみのパスワードは使用できません。",
	}
}

// NewInvalidCredentialsError は認証失敗エラーを生成する。
// ユーザー名の存在有無を区別しない単一のメッセージを返す。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "ユーザー名またはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認してください。",
	}
}

// NewRequiredFieldsError は必須項目の未入力エラーを生成する。
// 欠落している項目名の一覧をメッセージに含める。
func NewRequiredFieldsError(fields []string) *APIError {
	return &APIError{
		Code:     ErrCodeRequiredFields,
		Message:  fmt.Sprintf("%s field(s) are required.", strings.Join(fields, ", ")),
		Category: "validation",
		Action:   "未入力の項目を入力してください。",
	}
}

// NewInvalidFieldsError は形式不正の項目エラーを生成する。
func NewInvalidFieldsError(fields []string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidFields,
		Message:  fmt.Sprintf("%s field(s) are invalid.", strings.Join(fields, ", ")),
		Category: "validation",
		Action:   "項目の形式を確認してください。",
	}
}

// NewNewsNotFoundError は記事未検出エラーを生成する。
// IDが存在しない場合と、要求された状態に記事がない場合の両方で使用する。
func NewNewsNotFoundError(publicID string) *APIError {
	return &APIError{
		Code:     ErrCodeNewsNotFound,
		Message:  fmt.Sprintf("指定された記事が見つかりません: %s", publicID),
		Category: "news",
		Action:   "記事IDと記事の状態を確認してください。",
	}
}

// NewNewsForbiddenError は非公開記事への他ユーザーアクセスエラーを生成する。
func NewNewsForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeNewsForbidden,
		Message:  "この記事にアクセスする権限がありません。",
		Category: "auth",
		Action:   "記事の所有者のみが操作できます。",
	}
}

// NewDraftNotFoundError は下書きバッファ未検出エラーを生成する。
func NewDraftNotFoundError(publicID string) *APIError {
	return &APIError{
		Code:     ErrCodeDraftNotFound,
		Message:  fmt.Sprintf("記事の下書きが見つかりません: %s", publicID),
		Category: "news",
		Action:   "原文の入力からやり直してください。",
	}
}

// NewIDGenerationFailedError は公開ID生成の再試行上限超過エラーを生成する。
func NewIDGenerationFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeIDGenerationFailed,
		Message:  "一意なIDの生成に失敗しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewInvalidURLError は無効なURLエラーを生成する。
func NewInvalidURLError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidURL,
		Message:  fmt.Sprintf("無効なURLです: %s", reason),
		Category: "validation",
		Action:   "正しいURL形式（http:// または https:// で始まるURL）を入力してください。",
	}
}

// NewSSRFBlockedError はSSRFブロックエラーを生成する。
func NewSSRFBlockedError() *APIError {
	return &APIError{
		Code:     ErrCodeSSRFBlocked,
		Message:  "セキュリティポリシーにより、指定されたURLへのアクセスがブロックされました。",
		Category: "validation",
		Action:   "公開されているWebサイトのURLを入力してください。",
	}
}

// NewImportFailedError は原文取り込み失敗エラーを生成する。
func NewImportFailedError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeImportFailed,
		Message:  fmt.Sprintf("記事本文の取り込みに失敗しました: %s", reason),
		Category: "news",
		Action:   "URLを確認するか、本文を直接貼り付けてください。",
	}
}

// NewTranslateFailedError は機械翻訳呼び出し失敗エラーを生成する。
// 翻訳はベストエフォートであり、このエラーがライフサイクル状態を変えることはない。
func NewTranslateFailedError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeTranslateFailed,
		Message:  fmt.Sprintf("機械翻訳の取得に失敗しました: %s", reason),
		Category: "news",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}
