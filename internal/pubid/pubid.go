// Package pubid は外部参照用の8桁16進ランダムIDの生成を提供する。
// 衝突時は再抽選するが、再試行回数には上限を設ける。
package pubid

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/hitoshi/translearn/internal/model"
)

// MaxAttempts は衝突時の再抽選回数の上限。
// ID空間（16^8）に対して行数は十分小さいため、通常は1回で確定する。
const MaxAttempts = 10

// ExistsFunc は生成したIDが既に使用済みかを判定する。
// テーブルごとに一意性のスコープが異なるため、呼び出し側が判定を提供する。
type ExistsFunc func(ctx context.Context, id string) (bool, error)

// New は未使用の8桁16進IDを生成する。
// MaxAttempts回抽選しても未使用IDが得られない場合はAPIErrorを返す。
func New(ctx context.Context, exists ExistsFunc) (string, error) {
	for i := 0; i < MaxAttempts; i++ {
		id, err := random()
		if err != nil {
			return "", fmt.Errorf("failed to generate public ID: %w", err)
		}

		used, err := exists(ctx, id)
		if err != nil {
			return "", fmt.Errorf("failed to check public ID uniqueness: %w", err)
		}
		if !used {
			return id, nil
		}
	}

	return "", model.NewIDGenerationFailedError()
}

// random は4バイトの乱数を16進8文字にエンコードする。
func random() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
