package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hitoshi/translearn/internal/model"
)

// --- モック ---

type mockUserRepo struct {
	users  map[string]*model.User // name -> user
	byID   map[string]*model.User
	anyVal bool
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		users: map[string]*model.User{},
		byID:  map[string]*model.User{},
	}
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	return m.byID[id], nil
}
func (m *mockUserRepo) FindByName(ctx context.Context, name string) (*model.User, error) {
	return m.users[name], nil
}
func (m *mockUserRepo) ExistsByPublicID(ctx context.Context, publicID string) (bool, error) {
	for _, u := range m.byID {
		if u.PublicID == publicID {
			return true, nil
		}
	}
	return false, nil
}
func (m *mockUserRepo) Any(ctx context.Context) (bool, error) {
	return m.anyVal || len(m.byID) > 0, nil
}
func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	m.users[user.Name] = user
	m.byID[user.ID] = user
	return nil
}

type mockSessionRepo struct {
	sessions map[string]*model.Session
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{sessions: map[string]*model.Session{}}
}

func (m *mockSessionRepo) Create(ctx context.Context, session *model.Session) error {
	m.sessions[session.ID] = session
	return nil
}
func (m *mockSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	s, ok := m.sessions[id]
	if !ok || s.ExpiresAt.Before(time.Now()) {
		return nil, nil
	}
	return s, nil
}
func (m *mockSessionRepo) DeleteByID(ctx context.Context, id string) error {
	delete(m.sessions, id)
	return nil
}
func (m *mockSessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	return 0, nil
}

// fakeHasher はbcryptを避けた決定的なテスト用ハッシャー。
type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }
func (fakeHasher) Verify(hash, password string) bool    { return hash == "hashed:"+password }

func newTestService() (*Service, *mockUserRepo, *mockSessionRepo) {
	userRepo := newMockUserRepo()
	sessionRepo := newMockSessionRepo()
	svc := NewService(userRepo, sessionRepo, fakeHasher{}, ServiceConfig{SessionMaxAge: 3600})
	return svc, userRepo, sessionRepo
}

// --- テスト ---

// TestSignup_FirstUser は最初のユーザーが未認証でも登録できることを検証する。
func TestSignup_FirstUser(t *testing.T) {
	svc, userRepo, _ := newTestService()

	user, session, err := svc.Signup(context.Background(), "", "alice", "Ab3xyz99")
	if err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}
	if user.Name != "alice" {
		t.Errorf("user.Name = %q, want alice", user.Name)
	}
	if len(user.PublicID) != 8 {
		t.Errorf("public ID must be 8 hex chars, got %q", user.PublicID)
	}
	if user.PasswordHash == "Ab3xyz99" {
		t.Error("password must be stored hashed")
	}
	if session == nil || session.UserID != user.ID {
		t.Error("expected session issued for the new user")
	}
	if len(userRepo.byID) != 1 {
		t.Errorf("expected 1 user created, got %d", len(userRepo.byID))
	}
}

// TestSignup_ClosedForAnonymous は既存ユーザーがいる場合に未認証サインアップが
// 拒否されることを検証する。
func TestSignup_ClosedForAnonymous(t *testing.T) {
	svc, _, _ := newTestService()

	if _, _, err := svc.Signup(context.Background(), "", "alice", "Ab3xyz99"); err != nil {
		t.Fatalf("first signup failed: %v", err)
	}

	_, _, err := svc.Signup(context.Background(), "", "bob", "Cd4uvw88")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeSignupClosed {
		t.Fatalf("expected SIGNUP_CLOSED, got %v", err)
	}
}

// TestSignup_AuthenticatedCanAddAccount は認証済みユーザーが追加アカウントを
// 作成できることを検証する。
func TestSignup_AuthenticatedCanAddAccount(t *testing.T) {
	svc, _, _ := newTestService()

	first, _, err := svc.Signup(context.Background(), "", "alice", "Ab3xyz99")
	if err != nil {
		t.Fatalf("first signup failed: %v", err)
	}

	second, session, err := svc.Signup(context.Background(), first.ID, "bob", "Cd4uvw88")
	if err != nil {
		t.Fatalf("authenticated signup failed: %v", err)
	}
	if session.UserID != second.ID {
		t.Error("session must belong to the newly created account")
	}
}

// TestSignup_PasswordPolicy はポリシー違反パスワードが拒否されることを検証する。
func TestSignup_PasswordPolicy(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantCode string
	}{
		{"英小文字のみ", "abcdefgh", model.ErrCodeWeakPassword},
		{"数字のみ", "12345678", model.ErrCodeWeakPassword},
		{"長さ不足", "short1", model.ErrCodeWeakPassword},
		{"17文字", "Abcdef12345678901", model.ErrCodeWeakPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newTestService()
			_, _, err := svc.Signup(context.Background(), "", "alice", tt.password)
			var apiErr *model.APIError
			if !errors.As(err, &apiErr) || apiErr.Code != tt.wantCode {
				t.Fatalf("expected %s, got %v", tt.wantCode, err)
			}
		})
	}
}

// TestSignup_DuplicateUsername はユーザー名の重複が拒否されることを検証する。
func TestSignup_DuplicateUsername(t *testing.T) {
	svc, _, _ := newTestService()

	first, _, err := svc.Signup(context.Background(), "", "alice", "Ab3xyz99")
	if err != nil {
		t.Fatalf("first signup failed: %v", err)
	}

	_, _, err = svc.Signup(context.Background(), first.ID, "alice", "Cd4uvw88")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeDuplicateUsername {
		t.Fatalf("expected DUPLICATE_USERNAME, got %v", err)
	}
}

// TestSignup_RequiredFields は必須項目の未入力が項目名付きで拒否されることを検証する。
func TestSignup_RequiredFields(t *testing.T) {
	svc, _, _ := newTestService()

	_, _, err := svc.Signup(context.Background(), "", "", "")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeRequiredFields {
		t.Fatalf("expected REQUIRED_FIELDS, got %v", err)
	}
}

// TestSignup_UniquePublicIDs は複数ユーザーの公開IDが重複しないことを検証する。
func TestSignup_UniquePublicIDs(t *testing.T) {
	svc, userRepo, _ := newTestService()

	caller := ""
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		name := string(rune('a'+i)) + "user"
		user, _, err := svc.Signup(context.Background(), caller, name, "Ab3xyz99")
		if err != nil {
			t.Fatalf("signup %d failed: %v", i, err)
		}
		if seen[user.PublicID] {
			t.Fatalf("duplicate public ID: %s", user.PublicID)
		}
		seen[user.PublicID] = true
		caller = user.ID
	}
	if len(userRepo.byID) != 20 {
		t.Errorf("expected 20 users, got %d", len(userRepo.byID))
	}
}

// TestLogin_Success は正しい資格情報でセッションが発行されることを検証する。
func TestLogin_Success(t *testing.T) {
	svc, _, sessionRepo := newTestService()

	user, _, err := svc.Signup(context.Background(), "", "alice", "Ab3xyz99")
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	session, err := svc.Login(context.Background(), "alice", "Ab3xyz99")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if session.UserID != user.ID {
		t.Errorf("session.UserID = %q, want %q", session.UserID, user.ID)
	}
	if _, ok := sessionRepo.sessions[session.ID]; !ok {
		t.Error("session must be persisted")
	}
}

// TestLogin_InvalidCredentials はユーザー不在とパスワード不一致が
// 同一のエラーになることを検証する。
func TestLogin_InvalidCredentials(t *testing.T) {
	svc, _, _ := newTestService()

	if _, _, err := svc.Signup(context.Background(), "", "alice", "Ab3xyz99"); err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	for _, tc := range []struct{ name, password string }{
		{"nosuchuser", "Ab3xyz99"},
		{"alice", "WrongPass1"},
	} {
		_, err := svc.Login(context.Background(), tc.name, tc.password)
		var apiErr *model.APIError
		if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidCredentials {
			t.Errorf("Login(%q, %q): expected INVALID_CREDENTIALS, got %v", tc.name, tc.password, err)
		}
	}
}

// TestLogoutAndGetCurrentUser はログアウト後にセッションが無効になることを検証する。
func TestLogoutAndGetCurrentUser(t *testing.T) {
	svc, _, _ := newTestService()

	user, session, err := svc.Signup(context.Background(), "", "alice", "Ab3xyz99")
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	got, err := svc.GetCurrentUser(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("GetCurrentUser returned error: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("GetCurrentUser = %q, want %q", got.ID, user.ID)
	}

	if err := svc.Logout(context.Background(), session.ID); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if _, err := svc.GetCurrentUser(context.Background(), session.ID); err == nil {
		t.Error("expected error after logout, got nil")
	}
}
