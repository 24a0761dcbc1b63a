package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/translearn/internal/model"
)

// PostgresSentenceRepo はPostgreSQLを使用した文リポジトリ。
// 文の作成・更新はNewsRepositoryのトランザクションに集約されているため、
// ここは読み取り専用。
type PostgresSentenceRepo struct {
	db *sql.DB
}

// NewPostgresSentenceRepo はPostgresSentenceRepoを生成する。
func NewPostgresSentenceRepo(db *sql.DB) *PostgresSentenceRepo {
	return &PostgresSentenceRepo{db: db}
}

// ListOriginByNewsID は記事の原文由来の文をSeq昇順で返す。
func (r *PostgresSentenceRepo) ListOriginByNewsID(ctx context.Context, newsID string) ([]*model.Sentence, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, news_id, seq, origin_jp, jp_text, eng_text FROM sentences
		 WHERE news_id = $1 AND origin_jp = TRUE
		 ORDER BY seq`,
		newsID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sentences: %w", err)
	}
	defer rows.Close()

	var sentences []*model.Sentence
	for rows.Next() {
		s := &model.Sentence{}
		if err := rows.Scan(&s.ID, &s.NewsID, &s.Seq, &s.OriginJp, &s.JpText, &s.EngText); err != nil {
			return nil, fmt.Errorf("failed to scan sentence row: %w", err)
		}
		sentences = append(sentences, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sentence rows: %w", err)
	}
	return sentences, nil
}

// compile-time interface check
var _ SentenceRepository = (*PostgresSentenceRepo)(nil)
