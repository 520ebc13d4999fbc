// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// 機械可読な Code と人間向けの Message を持つ。
// 内部原因（ハッシュ比較の詳細など）は Message に含めない。
type APIError struct {
	Code    string // エラーコード
	Message string // エラーメッセージ
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeNotFoundUser = "NOT_FOUND_USER"
	ErrCodeConflictUser = "CONFLICT_USER"
	ErrCodeServerError  = "INTERNAL_SERVER_ERROR"
)

// NewBadRequestError は不正リクエストエラーを生成する。
func NewBadRequestError(reason string) *APIError {
	return &APIError{
		Code:    ErrCodeBadRequest,
		Message: fmt.Sprintf("リクエストが不正です: %s", reason),
	}
}

// NewUnauthorizedError は認証・認可エラーを生成する。
// 資格情報不一致・トークン不正・期限切れ・種別不一致・権限不足のいずれでも
// 同一のエラーを返し、外部から失敗理由を区別できないようにする。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:    ErrCodeUnauthorized,
		Message: "認証に失敗しました。",
	}
}

// NewUserNotFoundError はユーザー未検出エラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:    ErrCodeNotFoundUser,
		Message: "指定されたユーザーが見つかりません。",
	}
}

// NewUserConflictError はログインID重複エラーを生成する。
func NewUserConflictError(loginID string) *APIError {
	return &APIError{
		Code:    ErrCodeConflictUser,
		Message: fmt.Sprintf("ログインIDは既に使用されています: %s", loginID),
	}
}

// NewInternalError は内部エラーを生成する。詳細はログのみに記録する。
func NewInternalError() *APIError {
	return &APIError{
		Code:    ErrCodeServerError,
		Message: "内部エラーが発生しました。",
	}
}
