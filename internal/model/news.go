package model

import (
	"fmt"
	"time"
)

// Status はニュース記事のライフサイクル状態を表す。
// Creating → Created → Processing → Done の順にのみ遷移し、逆行しない。
// 削除は状態ではなく行の物理削除として扱う。
type Status string

const (
	// StatusCreating は日本語原文の入力中であることを示す。
	StatusCreating Status = "creating"
	// StatusCreated は原文が文単位で確定済みであることを示す。
	StatusCreated Status = "created"
	// StatusProcessing は英訳の入力が開始されたことを示す。
	StatusProcessing Status = "processing"
	// StatusDone は英訳の確認まで完了したことを示す。
	StatusDone Status = "done"
)

// String は表示名を返す。
func (s Status) String() string {
	switch s {
	case StatusCreating:
		return "Creating"
	case StatusCreated:
		return "Created"
	case StatusProcessing:
		return "Processing"
	case StatusDone:
		return "Done"
	default:
		return "Unknown"
	}
}

// Valid は定義済みの状態かを返す。
func (s Status) Valid() bool {
	switch s {
	case StatusCreating, StatusCreated, StatusProcessing, StatusDone:
		return true
	}
	return false
}

// ParseStatus は文字列からStatusを解析する。
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown status: %q", s)
	}
	return st, nil
}

// NewsItem は対訳ニュース記事を表す。
// PublicIDは外部参照用の8桁16進ランダムIDで、テーブル内で一意。
type NewsItem struct {
	ID          string
	PublicID    string
	EngTitle    string
	JpTitle     string
	EngURL      string
	JpURL       string
	StartDate   time.Time
	EndDate     *time.Time
	LastUpdated *time.Time
	UserID      string
	Private     bool
	Status      Status
	CreatedAt   time.Time
}
