// Package auth はパスワード認証とセッション管理を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/translearn/internal/model"
	"github.com/hitoshi/translearn/internal/pubid"
	"github.com/hitoshi/translearn/internal/repository"
	"github.com/hitoshi/translearn/internal/security"
)

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge int // セッション有効期間（秒）
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	hasher      security.PasswordHasherService
	config      ServiceConfig
}

// NewService はServiceを生成する。
func NewService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	hasher security.PasswordHasherService,
	config ServiceConfig,
) *Service {
	return &Service{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		hasher:      hasher,
		config:      config,
	}
}

// SignupOpen は未認証クライアントによる新規登録が可能かを返す。
// ユーザーが1人も存在しない間のみ開放される。
func (s *Service) SignupOpen(ctx context.Context) (bool, error) {
	any, err := s.userRepo.Any(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check signup availability: %w", err)
	}
	return !any, nil
}

// Signup は新規ユーザーを作成し、そのユーザーとしてのセッションを発行する。
// callerUserIDは認証済み呼び出しの場合の既存ユーザーID、未認証の場合は空文字列。
// 既存ユーザーが存在する状態での未認証サインアップは拒否される。
// 認証済みユーザーは追加アカウントを作成できる（この場合も新アカウントで
// ログインし直した状態になる）。
func (s *Service) Signup(ctx context.Context, callerUserID, name, password string) (*model.User, *model.Session, error) {
	var missing []string
	if name == "" {
		missing = append(missing, "Username")
	}
	if password == "" {
		missing = append(missing, "Password")
	}
	if len(missing) > 0 {
		return nil, nil, model.NewRequiredFieldsError(missing)
	}

	if callerUserID == "" {
		open, err := s.SignupOpen(ctx)
		if err != nil {
			return nil, nil, err
		}
		if !open {
			return nil, nil, model.NewSignupClosedError()
		}
	}

	existing, err := s.userRepo.FindByName(ctx, name)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check username: %w", err)
	}
	if existing != nil {
		return nil, nil, model.NewDuplicateUsernameError(name)
	}

	if !security.ValidatePasswordPolicy(password) {
		return nil, nil, model.NewWeakPasswordError()
	}

	publicID, err := pubid.New(ctx, s.userRepo.ExistsByPublicID)
	if err != nil {
		return nil, nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New().String(),
		PublicID:     publicID,
		Name:         name,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("new user created",
		slog.String("user_id", user.ID),
		slog.String("public_id", user.PublicID),
	)

	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}

	return user, session, nil
}

// Login はユーザー名とパスワードを検証し、セッションを発行する。
// ユーザーの不在とパスワード不一致は区別せず同一のエラーを返す。
func (s *Service) Login(ctx context.Context, name, password string) (*model.Session, error) {
	var missing []string
	if name == "" {
		missing = append(missing, "Username")
	}
	if password == "" {
		missing = append(missing, "Password")
	}
	if len(missing) > 0 {
		return nil, model.NewRequiredFieldsError(missing)
	}

	user, err := s.userRepo.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil || !s.hasher.Verify(user.PasswordHash, password) {
		return nil, model.NewInvalidCredentialsError()
	}

	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	slog.Info("user logged in", slog.String("user_id", user.ID))
	return session, nil
}

// Logout はセッションを破棄する。
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}

	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("user logged out", slog.String("session_id", sessionID))
	return nil
}

// GetCurrentUser はセッションから現在のユーザーを取得する。
func (s *Service) GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session ID is required")
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("session not found or expired")
	}

	user, err := s.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user not found")
	}

	return user, nil
}

// createSession はセッションを作成し永続化する。
func (s *Service) createSession(ctx context.Context, userID string) (*model.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	session := &model.Session{
		ID:        sessionID,
		UserID:    userID,
		ExpiresAt: time.Now().Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: time.Now(),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
