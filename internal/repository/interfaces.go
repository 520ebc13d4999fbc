// Package repository はユーザーディレクトリの永続化層を提供する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/authgate/internal/model"
)

// ErrDuplicateLoginID はlogin_idの一意性違反を示す。
var ErrDuplicateLoginID = errors.New("login ID already exists")

// ErrUserNotFound は対象ユーザーが存在しないことを示す。
var ErrUserNotFound = errors.New("user not found")

// UserRepository はユーザーレコードの永続化インターフェース。
type UserRepository interface {
	// Create はユーザーを作成する。login_id重複時はErrDuplicateLoginIDを返す。
	// 一意性チェックと挿入はDBの一意インデックスにより原子的に行われる。
	Create(ctx context.Context, user *model.User) error

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByLoginID は指定ログインIDのユーザーを取得する。見つからない場合はnilを返す。
	FindByLoginID(ctx context.Context, loginID string) (*model.User, error)

	// List は作成順（created_at, idタイブレーク）でページを返す。
	// 2つ目の戻り値は呼び出し時点の全件数。
	List(ctx context.Context, offset, limit int) ([]model.User, int, error)

	// Update はパスワードハッシュ・ロール・電話番号・メールアドレスを更新する。
	// idとlogin_idは変更しない。対象がない場合はErrUserNotFoundを返す。
	Update(ctx context.Context, user *model.User) error

	// DeleteByID は指定IDのユーザーを削除する。対象がない場合はErrUserNotFoundを返す。
	DeleteByID(ctx context.Context, id string) error
}
