// Package news はニュース記事のライフサイクル制御を提供する。
// 記事は Creating → Created → Processing → Done の順にのみ遷移し、
// 全ての状態依存の操作は所有者・可視性チェックを通過してから実行される。
package news

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/translearn/internal/model"
	"github.com/hitoshi/translearn/internal/pubid"
	"github.com/hitoshi/translearn/internal/repository"
	"github.com/hitoshi/translearn/internal/security"
)

// startDateLayout は記事開始日の入力形式。
const startDateLayout = "2006-01-02"

// Importer は原文取り込みのインターフェース。
// テスタビリティのためarticle.Importerを抽象化する。
type Importer interface {
	Extract(ctx context.Context, rawURL string) (string, error)
}

// Recorder はライフサイクルイベントのメトリクス記録インターフェース。
type Recorder interface {
	NewsCreated()
	SentencesCommitted(n int)
	TranslationsSubmitted()
	NewsDeleted()
}

// ServiceConfig はニュースサービスの設定。
type ServiceConfig struct {
	DraftTTL time.Duration // 下書きバッファの有効期間
}

// Service はニュース記事のライフサイクルを統括するサービス層。
type Service struct {
	newsRepo     repository.NewsRepository
	sentenceRepo repository.SentenceRepository
	draftRepo    repository.DraftRepository
	sanitizer    security.TextSanitizerService
	importer     Importer
	recorder     Recorder
	config       ServiceConfig
}

// NewService はServiceを生成する。importerとrecorderはnil許容。
func NewService(
	newsRepo repository.NewsRepository,
	sentenceRepo repository.SentenceRepository,
	draftRepo repository.DraftRepository,
	sanitizer security.TextSanitizerService,
	importer Importer,
	recorder Recorder,
	config ServiceConfig,
) *Service {
	return &Service{
		newsRepo:     newsRepo,
		sentenceRepo: sentenceRepo,
		draftRepo:    draftRepo,
		sanitizer:    sanitizer,
		importer:     importer,
		recorder:     recorder,
		config:       config,
	}
}

// CreateNewsInput は記事作成フォームの入力。
type CreateNewsInput struct {
	JpTitle      string
	EngTitle     string
	JpURL        string
	EngURL       string
	StartDateStr string
	Private      bool
}

// ListNews は呼び出しユーザーに可視な記事一覧を返す。
// 公開記事と自分の記事が対象で、全てのライフサイクル状態を含む。
func (s *Service) ListNews(ctx context.Context, userID string) ([]*model.NewsItem, error) {
	statuses := []model.Status{
		model.StatusCreating,
		model.StatusCreated,
		model.StatusProcessing,
		model.StatusDone,
	}
	items, err := s.newsRepo.ListVisible(ctx, userID, statuses)
	if err != nil {
		return nil, fmt.Errorf("failed to list news: %w", err)
	}
	return items, nil
}

// CreateNews は新規記事をCreating状態で作成する。
// 必須項目の欠落はREQUIRED_FIELDS、開始日の形式不正はINVALID_FIELDSとなる。
func (s *Service) CreateNews(ctx context.Context, userID string, in CreateNewsInput) (*model.NewsItem, error) {
	var missing []string
	if in.JpTitle == "" {
		missing = append(missing, "Japanese Title")
	}
	if in.EngTitle == "" {
		missing = append(missing, "English Title")
	}
	if in.JpURL == "" {
		missing = append(missing, "Japanese URL")
	}
	if in.StartDateStr == "" {
		missing = append(missing, "Start Date")
	}
	if len(missing) > 0 {
		return nil, model.NewRequiredFieldsError(missing)
	}

	startDate, err := time.Parse(startDateLayout, in.StartDateStr)
	if err != nil {
		return nil, model.NewInvalidFieldsError([]string{"Start Date"})
	}

	publicID, err := pubid.New(ctx, s.newsRepo.ExistsByPublicID)
	if err != nil {
		return nil, err
	}

	news := &model.NewsItem{
		ID:        uuid.New().String(),
		PublicID:  publicID,
		EngTitle:  in.EngTitle,
		JpTitle:   in.JpTitle,
		EngURL:    in.EngURL,
		JpURL:     in.JpURL,
		StartDate: startDate,
		UserID:    userID,
		Private:   in.Private,
		Status:    model.StatusCreating,
		CreatedAt: time.Now(),
	}

	if err := s.newsRepo.Create(ctx, news); err != nil {
		return nil, fmt.Errorf("failed to create news: %w", err)
	}

	slog.Info("news created",
		slog.String("news_id", news.ID),
		slog.String("public_id", news.PublicID),
		slog.String("user_id", userID),
	)
	if s.recorder != nil {
		s.recorder.NewsCreated()
	}
	return news, nil
}

// loadVisible は状態ホワイトリストと所有者・可視性で記事アクセスを検査する。
// 状態がホワイトリストに合致する行が無ければNEWS_NOT_FOUND、非公開記事への
// 他ユーザーアクセスはNEWS_FORBIDDEN。publicAccessがtrueの場合は
// 公開・非公開を問わずアクセスを許可する（読み取り専用経路向け）。
func (s *Service) loadVisible(ctx context.Context, publicID, userID string, statuses []model.Status, publicAccess bool) (*model.NewsItem, error) {
	news, err := s.newsRepo.FindByPublicIDAndStatuses(ctx, publicID, statuses)
	if err != nil {
		return nil, fmt.Errorf("failed to find news: %w", err)
	}
	if news == nil {
		return nil, model.NewNewsNotFoundError(publicID)
	}
	if !publicAccess && news.Private && news.UserID != userID {
		return nil, model.NewNewsForbiddenError()
	}
	return news, nil
}

// loadOwned はloadVisibleに加えて所有者本人であることを要求する。
// 全ての状態遷移を伴う操作はこちらを通る。
func (s *Service) loadOwned(ctx context.Context, publicID, userID string, statuses []model.Status) (*model.NewsItem, error) {
	news, err := s.loadVisible(ctx, publicID, userID, statuses, false)
	if err != nil {
		return nil, err
	}
	if news.UserID != userID {
		return nil, model.NewNewsForbiddenError()
	}
	return news, nil
}

// GetJapaneseDraft は入力フォーム再表示用に記事と既存の下書きを返す。
// 下書きが無い場合はnilの下書きを返す（エラーではない）。
func (s *Service) GetJapaneseDraft(ctx context.Context, publicID, userID string) (*model.NewsItem, *model.Draft, error) {
	news, err := s.loadOwned(ctx, publicID, userID, []model.Status{model.StatusCreating})
	if err != nil {
		return nil, nil, err
	}
	draft, err := s.draftRepo.Find(ctx, news.ID, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find draft: %w", err)
	}
	return news, draft, nil
}

// SaveJapaneseDraft は貼り付けられた日本語原文を下書きバッファに保存する。
// 記事がCreating状態で呼び出しユーザーが所有者の場合のみ許可される。
// 本文はサニタイズしてから保存する。
func (s *Service) SaveJapaneseDraft(ctx context.Context, publicID, userID, body string, engSametime bool) error {
	news, err := s.loadOwned(ctx, publicID, userID, []model.Status{model.StatusCreating})
	if err != nil {
		return err
	}

	body = s.sanitizer.Sanitize(body)
	if len(SplitSentences(body)) == 0 {
		return model.NewRequiredFieldsError([]string{"Japanese Content"})
	}

	draft := &model.Draft{
		NewsID:      news.ID,
		UserID:      userID,
		Body:        body,
		EngSametime: engSametime,
		ExpiresAt:   time.Now().Add(s.config.DraftTTL),
	}
	if err := s.draftRepo.Upsert(ctx, draft); err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

// PreviewSentences は下書きの分割結果を確認画面用に返す。
// 下書きが存在しない（または期限切れの）場合はDRAFT_NOT_FOUND。
func (s *Service) PreviewSentences(ctx context.Context, publicID, userID string) (*model.NewsItem, []string, error) {
	news, err := s.loadOwned(ctx, publicID, userID, []model.Status{model.StatusCreating})
	if err != nil {
		return nil, nil, err
	}
	draft, err := s.draftRepo.Find(ctx, news.ID, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find draft: %w", err)
	}
	if draft == nil {
		return nil, nil, model.NewDraftNotFoundError(publicID)
	}
	return news, SplitSentences(draft.Body), nil
}

// ConfirmJapaneseDraft は下書きを文として確定し、記事をCreatedに遷移させる。
// 文の一括作成・状態遷移・下書き削除は単一トランザクションで実行される。
func (s *Service) ConfirmJapaneseDraft(ctx context.Context, publicID, userID string) (*model.NewsItem, error) {
	news, err := s.loadOwned(ctx, publicID, userID, []model.Status{model.StatusCreating})
	if err != nil {
		return nil, err
	}
	draft, err := s.draftRepo.Find(ctx, news.ID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find draft: %w", err)
	}
	if draft == nil {
		return nil, model.NewDraftNotFoundError(publicID)
	}

	lines := SplitSentences(draft.Body)
	sentences := make([]model.Sentence, len(lines))
	for i, line := range lines {
		sentences[i] = model.Sentence{
			NewsID:   news.ID,
			Seq:      i,
			OriginJp: true,
			JpText:   line,
			EngText:  "",
		}
	}

	if err := s.newsRepo.CommitSentences(ctx, news.ID, userID, sentences); err != nil {
		return nil, fmt.Errorf("failed to commit sentences: %w", err)
	}

	slog.Info("japanese draft confirmed",
		slog.String("news_id", news.ID),
		slog.Int("sentences", len(sentences)),
	)
	if s.recorder != nil {
		s.recorder.SentencesCommitted(len(sentences))
	}

	news.Status = model.StatusCreated
	return news, nil
}

// CancelDraft は作成フローを中断し、下書きと記事を削除する。
// Creating状態の記事に対してのみ許可される。
func (s *Service) CancelDraft(ctx context.Context, publicID, userID string) error {
	news, err := s.loadOwned(ctx, publicID, userID, []model.Status{model.StatusCreating})
	if err != nil {
		return err
	}
	if err := s.draftRepo.Delete(ctx, news.ID, userID); err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	if err := s.newsRepo.Delete(ctx, news.ID); err != nil {
		return fmt.Errorf("failed to delete news: %w", err)
	}
	slog.Info("draft cancelled", slog.String("news_id", news.ID))
	return nil
}

// ImportDraft は記事の日本語ソースURLから本文を取り込み、下書きバッファに
// 格納する。取り込みの失敗は記事の状態を一切変更しない。
func (s *Service) ImportDraft(ctx context.Context, publicID, userID string) (*model.Draft, error) {
	news, err := s.loadOwned(ctx, publicID, userID, []model.Status{model.StatusCreating})
	if err != nil {
		return nil, err
	}
	if s.importer == nil {
		return nil, model.NewImportFailedError("importer is not configured")
	}
	if news.JpURL == "" {
		return nil, model.NewInvalidFieldsError([]string{"Japanese URL"})
	}

	body, err := s.importer.Extract(ctx, news.JpURL)
	if err != nil {
		return nil, err
	}
	if len(SplitSentences(body)) == 0 {
		return nil, model.NewImportFailedError("no text could be extracted")
	}

	draft := &model.Draft{
		NewsID:    news.ID,
		UserID:    userID,
		Body:      body,
		ExpiresAt: time.Now().Add(s.config.DraftTTL),
	}
	if err := s.draftRepo.Upsert(ctx, draft); err != nil {
		return nil, fmt.Errorf("failed to save imported draft: %w", err)
	}

	slog.Info("draft imported", slog.String("news_id", news.ID), slog.String("url", news.JpURL))
	return draft, nil
}

// translationStatuses は翻訳ビューで許可される状態のホワイトリスト。
var translationStatuses = []model.Status{
	model.StatusCreated,
	model.StatusProcessing,
	model.StatusDone,
}

// GetTranslationView は翻訳画面用に記事と原文の文一覧を返す。
// 所有者に加えて、公開記事であれば他の認証済みユーザーも閲覧できる。
func (s *Service) GetTranslationView(ctx context.Context, publicID, userID string) (*model.NewsItem, []*model.Sentence, error) {
	news, err := s.loadVisible(ctx, publicID, userID, translationStatuses, false)
	if err != nil {
		return nil, nil, err
	}
	sentences, err := s.sentenceRepo.ListOriginByNewsID(ctx, news.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list sentences: %w", err)
	}
	return news, sentences, nil
}

// SubmitTranslations は英訳を一括保存し、記事をProcessingに遷移させる。
// engBySeqに無い文の英訳は空文字列になる。所有者のみが実行でき、
// 記事はCreated状態でなければならない。
func (s *Service) SubmitTranslations(ctx context.Context, publicID, userID string, engBySeq map[int]string) (*model.NewsItem, error) {
	news, err := s.loadOwned(ctx, publicID, userID, []model.Status{model.StatusCreated})
	if err != nil {
		return nil, err
	}

	sentences, err := s.sentenceRepo.ListOriginByNewsID(ctx, news.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sentences: %w", err)
	}
	if len(sentences) == 0 {
		return nil, model.NewNewsNotFoundError(publicID)
	}

	if err := s.newsRepo.ApplyTranslations(ctx, news.ID, engBySeq); err != nil {
		return nil, fmt.Errorf("failed to apply translations: %w", err)
	}

	slog.Info("translations submitted",
		slog.String("news_id", news.ID),
		slog.Int("sentences", len(sentences)),
	)
	if s.recorder != nil {
		s.recorder.TranslationsSubmitted()
	}

	news.Status = model.StatusProcessing
	return news, nil
}

// GetConfirmationView は翻訳確認画面用に記事と文の対訳一覧を返す。
// Processing以降の記事を所有者のみが閲覧できる。
func (s *Service) GetConfirmationView(ctx context.Context, publicID, userID string) (*model.NewsItem, []*model.Sentence, error) {
	news, err := s.loadOwned(ctx, publicID, userID, []model.Status{model.StatusProcessing, model.StatusDone})
	if err != nil {
		return nil, nil, err
	}
	sentences, err := s.sentenceRepo.ListOriginByNewsID(ctx, news.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list sentences: %w", err)
	}
	return news, sentences, nil
}

// ConfirmTranslations は英訳の確認を完了し、記事をDoneに遷移させる。
// Processing状態の記事を所有者のみが進められる。
func (s *Service) ConfirmTranslations(ctx context.Context, publicID, userID string) (*model.NewsItem, error) {
	news, err := s.loadOwned(ctx, publicID, userID, []model.Status{model.StatusProcessing})
	if err != nil {
		return nil, err
	}
	if err := s.newsRepo.UpdateStatus(ctx, news.ID, model.StatusDone); err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}
	slog.Info("translations confirmed", slog.String("news_id", news.ID))
	news.Status = model.StatusDone
	return news, nil
}

// DeleteNews は記事を状態を問わず物理削除する。文と下書きは連鎖削除される。
// 所有者のみが削除できる。
func (s *Service) DeleteNews(ctx context.Context, publicID, userID string) error {
	news, err := s.newsRepo.FindByPublicID(ctx, publicID)
	if err != nil {
		return fmt.Errorf("failed to find news: %w", err)
	}
	if news == nil {
		return model.NewNewsNotFoundError(publicID)
	}
	if news.UserID != userID {
		return model.NewNewsForbiddenError()
	}

	if err := s.newsRepo.Delete(ctx, news.ID); err != nil {
		return fmt.Errorf("failed to delete news: %w", err)
	}

	slog.Info("news deleted", slog.String("news_id", news.ID))
	if s.recorder != nil {
		s.recorder.NewsDeleted()
	}
	return nil
}
