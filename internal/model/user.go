// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// PublicIDは外部参照用の8桁16進ランダムIDで、内部IDとは独立している。
// ユーザーは作成後に変更・削除されない。
type User struct {
	ID           string
	PublicID     string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}

// Session はユーザーのログインセッションを表す。
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
