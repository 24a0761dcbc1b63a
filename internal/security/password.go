// Package security はアプリケーションのセキュリティ機能を提供する。
package security

import (
	"fmt"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// パスワードポリシー: 長さは[8,16]、英小文字のみ・数字のみは弱いパスワードとして拒否する。
// 強度保証ではなく、最低限のヒューリスティック。
const (
	passwordMinLen = 8
	passwordMaxLen = 16
)

// PasswordHasherService はパスワードのハッシュ化と検証のインターフェースを定義する。
type PasswordHasherService interface {
	// Hash はパスワードをソルト付きハッシュに変換する。
	Hash(password string) (string, error)
	// Verify はハッシュと平文パスワードを照合する。一致しない場合はfalseを返す。
	Verify(hash, password string) bool
}

// passwordHasher はbcryptを使用したPasswordHasherServiceの実装。
type passwordHasher struct {
	cost int
}

// NewPasswordHasher はbcryptデフォルトコストのハッシャーを生成する。
func NewPasswordHasher() *passwordHasher {
	return &passwordHasher{cost: bcrypt.DefaultCost}
}

// Hash はパスワードをbcryptハッシュに変換する。
func (h *passwordHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify はハッシュと平文パスワードを照合する。
func (h *passwordHasher) Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidatePasswordPolicy はサインアップ時のパスワードポリシーを検証する。
// 条件を満たす場合はtrueを返す。
func ValidatePasswordPolicy(password string) bool {
	runes := []rune(password)
	if len(runes) < passwordMinLen || len(runes) > passwordMaxLen {
		return false
	}
	if isAll(runes, func(r rune) bool { return r >= 'a' && r <= 'z' }) {
		return false
	}
	if isAll(runes, unicode.IsDigit) {
		return false
	}
	return true
}

// isAll は全文字が条件を満たすかを返す。
func isAll(runes []rune, f func(rune) bool) bool {
	for _, r := range runes {
		if !f(r) {
			return false
		}
	}
	return true
}
