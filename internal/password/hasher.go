// Package password はパスワードハッシュの生成と照合を提供する。
// アルゴリズムはHasherインターフェースの背後に隠し、差し替え可能にする。
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher はパスワードハッシュの生成・照合インターフェース。
type Hasher interface {
	// Hash は平文パスワードからハッシュ文字列を生成する。
	Hash(password string) (string, error)
	// Compare はハッシュと平文パスワードの一致を検証する。
	Compare(hash, password string) bool
	// CompareDummy はダミーハッシュに対する照合を実行する。
	// ユーザーが存在しない場合でも存在する場合と同等の計算コストを消費させ、
	// レスポンス時間からユーザーの存在を推測されることを防ぐ。結果は常にfalse。
	CompareDummy(password string)
}

// BcryptHasher はbcryptによるHasher実装。
type BcryptHasher struct {
	cost      int
	dummyHash []byte
}

// NewBcryptHasher はBcryptHasherを生成する。
// costが範囲外の場合はbcrypt.DefaultCostを使用する。
// ダミーハッシュは構築時に1回だけ生成する。
func NewBcryptHasher(cost int) (*BcryptHasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte("authgate-dummy-password"), cost)
	if err != nil {
		return nil, fmt.Errorf("failed to generate dummy hash: %w", err)
	}

	return &BcryptHasher{
		cost:      cost,
		dummyHash: dummy,
	}, nil
}

// Hash は平文パスワードからbcryptハッシュを生成する。
func (h *BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Compare はハッシュと平文パスワードの一致を検証する。
// bcryptの比較は内部で一定時間比較を行う。
func (h *BcryptHasher) Compare(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// CompareDummy はダミーハッシュに対して照合を実行する。
func (h *BcryptHasher) CompareDummy(password string) {
	_ = bcrypt.CompareHashAndPassword(h.dummyHash, []byte(password))
}

// compile-time interface check
var _ Hasher = (*BcryptHasher)(nil)
