package model

import "time"

// Draft は作成フロー中にのみ存在する原文テキストの一時バッファを表す。
// (NewsID, UserID)をキーとし、確定またはキャンセルで消費される。
// 期限切れのバッファはクリーンアップジョブが削除する。
type Draft struct {
	NewsID      string
	UserID      string
	Body        string
	EngSametime bool
	ExpiresAt   time.Time
	UpdatedAt   time.Time
}
