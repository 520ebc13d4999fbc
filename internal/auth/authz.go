package auth

import "github.com/hitoshi/authgate/internal/model"

// Operation はユーザーディレクトリに対する操作種別を表す。
type Operation string

const (
	// OpCreateUser はユーザーの新規作成。
	OpCreateUser Operation = "create"
	// OpGetUser はユーザー1件の取得。
	OpGetUser Operation = "get"
	// OpListUsers はユーザー一覧の取得。
	OpListUsers Operation = "list"
	// OpUpdateUser はユーザーの更新。
	OpUpdateUser Operation = "update"
	// OpDeleteUser はユーザーの削除。
	OpDeleteUser Operation = "delete"
)

// capabilities はロールごとの操作可否の明示的なテーブル。
// ロールは閉じた2値の列挙型であり、継承や動的なロール文字列は使わない。
// テーブルに載っていない組み合わせはすべて拒否となる。
var capabilities = map[model.Role]map[Operation]bool{
	model.RoleAdmin: {
		OpCreateUser: true,
		OpGetUser:    true,
		OpListUsers:  true,
		OpUpdateUser: true,
		OpDeleteUser: true,
	},
	model.RoleUser: {
		OpCreateUser: false,
		OpGetUser:    true,
		OpListUsers:  false,
		OpUpdateUser: true,
		OpDeleteUser: true,
	},
}

// Authorize は検証済みの識別情報が対象ユーザーへの操作を行えるかを判定する。
// adminは全ユーザーへの全操作を行える。
// userは自分自身のレコードに対するget/update/deleteのみ行える
// （/me経由でもid指定でも、対象idが自分のidと一致する場合のみ）。
// targetIDは対象を持たない操作（list/create）では空文字列を渡す。
func Authorize(identity model.UserIdentity, op Operation, targetID string) bool {
	caps, ok := capabilities[identity.Role]
	if !ok {
		return false
	}
	if !caps[op] {
		return false
	}

	if identity.Role == model.RoleAdmin {
		return true
	}

	// user: 対象が自分自身の場合のみ許可
	return targetID != "" && targetID == identity.UserID
}
