// Package model はドメインモデルを定義する。
package model

import "time"

// Role はユーザーの権限ロールを表す。admin と user の2値の閉じた列挙型。
type Role string

const (
	// RoleAdmin は全ユーザーに対する全ディレクトリ操作を許可されるロール。
	RoleAdmin Role = "admin"
	// RoleUser は自分自身のレコードに対する操作のみ許可されるロール。
	RoleUser Role = "user"
)

// IsValid はロールが定義済みの値であるかを返す。
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User はサービス利用ユーザーを表す。
// ID と LoginID は作成後イミュータブル。PasswordHash は外部に公開しない。
type User struct {
	ID           string
	LoginID      string
	PasswordHash string
	Role         Role
	Phone        string
	Email        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserIdentity は認証済みユーザーの識別情報を表す。
// Credential Verifier の検証結果としてトークン発行に渡される。
type UserIdentity struct {
	UserID  string
	LoginID string
	Role    Role
}

// ListMeta はユーザー一覧のページング情報を表す。
// Total は呼び出し時点のフィルタなし全件数。
type ListMeta struct {
	Limit  int
	Offset int
	Total  int
}
