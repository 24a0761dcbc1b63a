package repository

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/hitoshi/translearn/internal/model"
)

// newsColumns は記事取得クエリで選択する列。Scanの順序と対応する。
var newsColumns = []string{
	"id", "public_id", "eng_title", "jp_title", "eng_url", "jp_url",
	"start_date", "end_date", "last_updated", "user_id", "private", "status", "created_at",
}

// psql はPostgreSQLの$Nプレースホルダを使用するクエリビルダー。
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresNewsRepo はPostgreSQLを使用したニュース記事リポジトリ。
// 状態ホワイトリストや可視性条件が動的に変わる検索にはsquirrelを使用する。
type PostgresNewsRepo struct {
	db *sql.DB
}

// NewPostgresNewsRepo はPostgresNewsRepoを生成する。
func NewPostgresNewsRepo(db *sql.DB) *PostgresNewsRepo {
	return &PostgresNewsRepo{db: db}
}

// scanNews は1行を読み取りNewsItemに変換する。
func scanNews(row sq.RowScanner) (*model.NewsItem, error) {
	news := &model.NewsItem{}
	var status string
	err := row.Scan(
		&news.ID, &news.PublicID, &news.EngTitle, &news.JpTitle,
		&news.EngURL, &news.JpURL, &news.StartDate, &news.EndDate,
		&news.LastUpdated, &news.UserID, &news.Private, &status, &news.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	parsed, err := model.ParseStatus(status)
	if err != nil {
		return nil, fmt.Errorf("corrupt status in news row: %w", err)
	}
	news.Status = parsed
	return news, nil
}

// FindByPublicID は公開IDで記事を取得する。見つからない場合はnilを返す。
func (r *PostgresNewsRepo) FindByPublicID(ctx context.Context, publicID string) (*model.NewsItem, error) {
	query, args, err := psql.Select(newsColumns...).
		From("news").
		Where(sq.Eq{"public_id": publicID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build news query: %w", err)
	}

	news, err := scanNews(r.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find news by public ID: %w", err)
	}
	return news, nil
}

// FindByPublicIDAndStatuses は公開IDと状態ホワイトリストで記事を検索する。
// 状態が一致しない場合もnilを返す。
func (r *PostgresNewsRepo) FindByPublicIDAndStatuses(ctx context.Context, publicID string, statuses []model.Status) (*model.NewsItem, error) {
	query, args, err := psql.Select(newsColumns...).
		From("news").
		Where(sq.Eq{"public_id": publicID}).
		Where(sq.Eq{"status": statusStrings(statuses)}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build news query: %w", err)
	}

	news, err := scanNews(r.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find news by public ID and status: %w", err)
	}
	return news, nil
}

// ExistsByPublicID は公開IDが使用済みかを返す。
func (r *PostgresNewsRepo) ExistsByPublicID(ctx context.Context, publicID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM news WHERE public_id = $1)`,
		publicID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check news public ID: %w", err)
	}
	return exists, nil
}

// Create は記事を作成する。
func (r *PostgresNewsRepo) Create(ctx context.Context, news *model.NewsItem) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO news (id, public_id, eng_title, jp_title, eng_url, jp_url,
		                   start_date, end_date, last_updated, user_id, private, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		news.ID, news.PublicID, news.EngTitle, news.JpTitle, news.EngURL, news.JpURL,
		news.StartDate, news.EndDate, news.LastUpdated, news.UserID, news.Private,
		string(news.Status), news.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert news: %w", err)
	}
	return nil
}

// ListVisible は状態ホワイトリストに一致し、かつ呼び出しユーザーに可視な
// 記事一覧を作成日時降順で返す。非公開記事は所有者にのみ可視。
func (r *PostgresNewsRepo) ListVisible(ctx context.Context, userID string, statuses []model.Status) ([]*model.NewsItem, error) {
	query, args, err := psql.Select(newsColumns...).
		From("news").
		Where(sq.Eq{"status": statusStrings(statuses)}).
		Where(sq.Or{
			sq.Eq{"private": false},
			sq.Eq{"user_id": userID},
		}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build news list query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list news: %w", err)
	}
	defer rows.Close()

	var items []*model.NewsItem
	for rows.Next() {
		news, err := scanNews(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan news row: %w", err)
		}
		items = append(items, news)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate news rows: %w", err)
	}
	return items, nil
}

// UpdateStatus は記事の状態とlast_updatedを更新する。
func (r *PostgresNewsRepo) UpdateStatus(ctx context.Context, newsID string, status model.Status) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE news SET status = $1, last_updated = now() WHERE id = $2`,
		string(status), newsID,
	)
	if err != nil {
		return fmt.Errorf("failed to update news status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("news not found: %s", newsID)
	}
	return nil
}

// CommitSentences は文の一括作成・Createdへの状態遷移・下書き削除を
// 単一トランザクションで実行する。部分的なコミットは発生しない。
func (r *PostgresNewsRepo) CommitSentences(ctx context.Context, newsID, userID string, sentences []model.Sentence) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, s := range sentences {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO sentences (news_id, seq, origin_jp, jp_text, eng_text)
			 VALUES ($1, $2, $3, $4, $5)`,
			newsID, s.Seq, s.OriginJp, s.JpText, s.EngText,
		)
		if err != nil {
			return fmt.Errorf("failed to insert sentence %d: %w", s.Seq, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE news SET status = $1, last_updated = now() WHERE id = $2`,
		string(model.StatusCreated), newsID,
	)
	if err != nil {
		return fmt.Errorf("failed to advance news status: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM drafts WHERE news_id = $1 AND user_id = $2`,
		newsID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to consume draft: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ApplyTranslations は原文各文の英訳更新とProcessingへの状態遷移を
// 単一トランザクションで実行する。engBySeqに無い文は空文字列に更新する。
func (r *PostgresNewsRepo) ApplyTranslations(ctx context.Context, newsID string, engBySeq map[int]string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		`SELECT seq FROM sentences WHERE news_id = $1 AND origin_jp = TRUE ORDER BY seq`,
		newsID,
	)
	if err != nil {
		return fmt.Errorf("failed to list sentence seqs: %w", err)
	}
	var seqs []int
	for rows.Next() {
		var seq int
		if err := rows.Scan(&seq); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan sentence seq: %w", err)
		}
		seqs = append(seqs, seq)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("failed to iterate sentence seqs: %w", err)
	}
	rows.Close()

	for _, seq := range seqs {
		// 提出されなかった文は空文字列で上書きする
		eng := engBySeq[seq]
		_, err = tx.ExecContext(ctx,
			`UPDATE sentences SET eng_text = $1 WHERE news_id = $2 AND seq = $3`,
			eng, newsID, seq,
		)
		if err != nil {
			return fmt.Errorf("failed to update sentence %d: %w", seq, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE news SET status = $1, last_updated = now() WHERE id = $2`,
		string(model.StatusProcessing), newsID,
	)
	if err != nil {
		return fmt.Errorf("failed to advance news status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Delete は記事を物理削除する。文と下書きはFKのCASCADEで削除される。
func (r *PostgresNewsRepo) Delete(ctx context.Context, newsID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM news WHERE id = $1`, newsID)
	if err != nil {
		return fmt.Errorf("failed to delete news: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("news not found: %s", newsID)
	}
	return nil
}

// statusStrings はStatusスライスをクエリ引数用の文字列スライスに変換する。
func statusStrings(statuses []model.Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

// compile-time interface check
var _ NewsRepository = (*PostgresNewsRepo)(nil)
