// Package cleanup は期限切れデータの自動削除ジョブを提供する。
// TTLを超過した下書きバッファと、有効期限切れのセッションを
// 定期バッチで削除する。
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// DraftPurger は期限切れ下書きの削除に必要なインターフェース。
// repository.DraftRepositoryの部分集合として定義する。
type DraftPurger interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// SessionPurger は期限切れセッションの削除に必要なインターフェース。
// repository.SessionRepositoryの部分集合として定義する。
type SessionPurger interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// Job は期限切れデータの自動削除ジョブ。
// 定期実行のバッチジョブとして設計されており、冪等な削除処理を保証する。
type Job struct {
	drafts   DraftPurger
	sessions SessionPurger
	logger   *slog.Logger
}

// NewJob は新しいJobを生成する。
func NewJob(drafts DraftPurger, sessions SessionPurger, logger *slog.Logger) *Job {
	return &Job{
		drafts:   drafts,
		sessions: sessions,
		logger:   logger,
	}
}

// Run は期限切れの下書きとセッションを削除する。
// 冪等: 削除対象がない場合でもエラーにならない。
func (j *Job) Run(ctx context.Context) error {
	start := time.Now()

	draftCount, err := j.drafts.DeleteExpired(ctx)
	if err != nil {
		j.logger.Error("期限切れ下書きの削除に失敗しました",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("期限切れ下書きの削除に失敗: %w", err)
	}

	sessionCount, err := j.sessions.DeleteExpired(ctx)
	if err != nil {
		j.logger.Error("期限切れセッションの削除に失敗しました",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("期限切れセッションの削除に失敗: %w", err)
	}

	duration := time.Since(start)
	j.logger.Info("クリーンアップジョブが完了しました",
		slog.Int64("deleted_drafts", draftCount),
		slog.Int64("deleted_sessions", sessionCount),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}

// Start はクリーンアップジョブを定期実行する。
// 起動直後に1回実行し、以後interval間隔で繰り返す。
// コンテキストのキャンセルで停止する（ブロッキング）。
func (j *Job) Start(ctx context.Context, interval time.Duration) {
	if err := j.Run(ctx); err != nil {
		j.logger.Error("cleanup job failed", slog.String("error", err.Error()))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("クリーンアップジョブを停止します")
			return
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				j.logger.Error("cleanup job failed", slog.String("error", err.Error()))
			}
		}
	}
}
