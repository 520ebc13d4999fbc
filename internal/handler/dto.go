// Package handler はHTTP APIのハンドラーを提供する。
package handler

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// phonePattern は電話番号の形式（例: 010-1234-5678）。
var phonePattern = regexp.MustCompile(`^[0-9]{3}-[0-9]{4}-[0-9]{4}$`)

// validate はリクエストDTOの検証器。カスタムルールphoneを登録済み。
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// validator標準のe164等は形式が合わないため、独自ルールとして登録する
	v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	return v
}

// loginRequest はログインリクエストのボディ。
// ログインIDとパスワードはいずれも英数字8〜20文字。
type loginRequest struct {
	LoginID  string `json:"loginId" validate:"required,alphanum,min=8,max=20"`
	Password string `json:"password" validate:"required,alphanum,min=8,max=20"`
}

// refreshRequest はトークンリフレッシュリクエストのボディ。
type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// createUserRequest はユーザー作成リクエストのボディ。
// Roleは省略可能（セルフサインアップではuserに強制される）。
type createUserRequest struct {
	LoginID  string `json:"loginId" validate:"required,alphanum,min=8,max=20"`
	Password string `json:"password" validate:"required,alphanum,min=8,max=20"`
	Role     string `json:"role" validate:"omitempty,oneof=admin user"`
	Phone    string `json:"phone" validate:"required,phone"`
	Email    string `json:"email" validate:"required,email"`
}

// updateUserRequest はユーザー更新リクエストのボディ。
// 全置き換えのためrole/phone/emailは必須。Passwordは省略時に現状維持。
type updateUserRequest struct {
	Password string `json:"password" validate:"omitempty,alphanum,min=8,max=20"`
	Role     string `json:"role" validate:"required,oneof=admin user"`
	Phone    string `json:"phone" validate:"required,phone"`
	Email    string `json:"email" validate:"required,email"`
}

// validationMessage は検証エラーから利用者向けメッセージを組み立てる。
// フィールド名と違反したルールのみを返し、入力値そのものは含めない。
func validationMessage(err error) string {
	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		fe := errs[0]
		return fmt.Sprintf("%sが%sの制約を満たしていません", fe.Field(), fe.Tag())
	}
	return "リクエストの検証に失敗しました"
}
