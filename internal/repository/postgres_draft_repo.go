package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/translearn/internal/model"
)

// PostgresDraftRepo はPostgreSQLを使用した下書きバッファリポジトリ。
// 汎用セッションストアの転用ではなく、(news_id, user_id)をキーとする
// 専用テーブルで一時状態を保持する。
type PostgresDraftRepo struct {
	db *sql.DB
}

// NewPostgresDraftRepo はPostgresDraftRepoを生成する。
func NewPostgresDraftRepo(db *sql.DB) *PostgresDraftRepo {
	return &PostgresDraftRepo{db: db}
}

// Upsert は(news_id, user_id)をキーに下書きを作成または上書きする。
func (r *PostgresDraftRepo) Upsert(ctx context.Context, draft *model.Draft) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO drafts (news_id, user_id, body, eng_sametime, expires_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, now())
		 ON CONFLICT (news_id, user_id)
		 DO UPDATE SET body = EXCLUDED.body,
		               eng_sametime = EXCLUDED.eng_sametime,
		               expires_at = EXCLUDED.expires_at,
		               updated_at = now()`,
		draft.NewsID, draft.UserID, draft.Body, draft.EngSametime, draft.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert draft: %w", err)
	}
	return nil
}

// Find は下書きを取得する。存在しない、または期限切れの場合はnilを返す。
func (r *PostgresDraftRepo) Find(ctx context.Context, newsID, userID string) (*model.Draft, error) {
	draft := &model.Draft{}
	err := r.db.QueryRowContext(ctx,
		`SELECT news_id, user_id, body, eng_sametime, expires_at, updated_at FROM drafts
		 WHERE news_id = $1 AND user_id = $2 AND expires_at > now()`,
		newsID, userID,
	).Scan(&draft.NewsID, &draft.UserID, &draft.Body, &draft.EngSametime, &draft.ExpiresAt, &draft.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find draft: %w", err)
	}
	return draft, nil
}

// Delete は下書きを削除する。存在しなくてもエラーにしない。
func (r *PostgresDraftRepo) Delete(ctx context.Context, newsID, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM drafts WHERE news_id = $1 AND user_id = $2`,
		newsID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	return nil
}

// DeleteExpired は期限切れの全下書きを削除し、削除件数を返す。
func (r *PostgresDraftRepo) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM drafts WHERE expires_at <= now()`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired drafts: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

// compile-time interface check
var _ DraftRepository = (*PostgresDraftRepo)(nil)
