// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"database/sql"

	"github.com/hitoshi/translearn/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
// ユーザーは作成後に更新・削除されない。
type UserRepository interface {
	// FindByID は指定内部IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByName は表示名でユーザーを検索する。見つからない場合はnilを返す。
	FindByName(ctx context.Context, name string) (*model.User, error)

	// ExistsByPublicID は公開IDが使用済みかを返す。公開ID生成の衝突判定に使用する。
	ExistsByPublicID(ctx context.Context, publicID string) (bool, error)

	// Any はユーザーが1人でも存在するかを返す。サインアップ開放判定に使用する。
	Any(ctx context.Context) (bool, error)

	// Create はユーザーを作成する。
	Create(ctx context.Context, user *model.User) error
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteExpired は期限切れの全セッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}

// NewsRepository はニュース記事の永続化インターフェース。
// 複数行にまたがる状態遷移はこのリポジトリが単一トランザクションで実行する。
type NewsRepository interface {
	// FindByPublicID は公開IDで記事を取得する。見つからない場合はnilを返す。
	FindByPublicID(ctx context.Context, publicID string) (*model.NewsItem, error)

	// FindByPublicIDAndStatuses は公開IDと状態ホワイトリストで記事を検索する。
	// 状態が一致しない場合もnilを返す。
	FindByPublicIDAndStatuses(ctx context.Context, publicID string, statuses []model.Status) (*model.NewsItem, error)

	// ExistsByPublicID は公開IDが使用済みかを返す。公開ID生成の衝突判定に使用する。
	ExistsByPublicID(ctx context.Context, publicID string) (bool, error)

	// Create は記事を作成する。
	Create(ctx context.Context, news *model.NewsItem) error

	// ListVisible は状態ホワイトリストに一致し、かつ呼び出しユーザーに
	// 可視（公開記事または自分の記事）な記事一覧を作成日時降順で返す。
	ListVisible(ctx context.Context, userID string, statuses []model.Status) ([]*model.NewsItem, error)

	// UpdateStatus は記事の状態とlast_updatedを更新する。
	UpdateStatus(ctx context.Context, newsID string, status model.Status) error

	// CommitSentences は文の一括作成・状態のCreatedへの遷移・下書きバッファの
	// 削除を単一トランザクションで実行する。
	CommitSentences(ctx context.Context, newsID, userID string, sentences []model.Sentence) error

	// ApplyTranslations は原文各文の英訳更新と状態のProcessingへの遷移を
	// 単一トランザクションで実行する。engBySeqに無い文は空文字列に更新する。
	ApplyTranslations(ctx context.Context, newsID string, engBySeq map[int]string) error

	// Delete は記事を物理削除する。文と下書きはFKのCASCADEで削除される。
	Delete(ctx context.Context, newsID string) error
}

// SentenceRepository は文データの読み取りインターフェース。
// 書き込みはNewsRepositoryのトランザクショナルな操作に集約されている。
type SentenceRepository interface {
	// ListOriginByNewsID は記事の原文由来の文をSeq昇順で返す。
	ListOriginByNewsID(ctx context.Context, newsID string) ([]*model.Sentence, error)
}

// DraftRepository は下書きバッファの永続化インターフェース。
type DraftRepository interface {
	// Upsert は(news_id, user_id)をキーに下書きを作成または上書きする。
	Upsert(ctx context.Context, draft *model.Draft) error
	// Find は下書きを取得する。存在しない、または期限切れの場合はnilを返す。
	Find(ctx context.Context, newsID, userID string) (*model.Draft, error)
	// Delete は下書きを削除する。存在しなくてもエラーにしない。
	Delete(ctx context.Context, newsID, userID string) error
	// DeleteExpired は期限切れの全下書きを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}

// TxBeginner はトランザクション開始用のインターフェース。
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}
