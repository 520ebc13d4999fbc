// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/hitoshi/authgate/internal/model"
	"github.com/hitoshi/authgate/internal/token"
)

const bearerPrefix = "Bearer "

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// authInfoContextKey はリクエストコンテキストに認証済み識別情報を格納するためのキー。
var authInfoContextKey = contextKey("auth_info")

// TokenValidator はアクセストークンの検証に必要なインターフェース。
// token.Managerの部分集合として定義する。
type TokenValidator interface {
	Validate(tokenString string, expectedKind token.Kind) (*token.Claims, error)
}

// NewAuthMiddleware はAuthorizationヘッダーのBearerトークンを検証し、
// クレームに含まれる識別情報をリクエストコンテキストに注入するミドルウェアを返す。
// ヘッダー欠落・形式不正・検証失敗はすべて401 Unauthorizedを返す。
func NewAuthMiddleware(validator TokenValidator) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. AuthorizationヘッダーからBearerトークンを取得
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, bearerPrefix) {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}
			tokenString := strings.TrimPrefix(header, bearerPrefix)
			if tokenString == "" {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			// 2. アクセストークンとして検証（リフレッシュトークンは拒否される）
			claims, err := validator.Validate(tokenString, token.KindAccess)
			if err != nil {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			// 3. 検証済み識別情報をコンテキストに注入
			ctx := ContextWithAuthInfo(r.Context(), claims.Identity())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// NewOptionalAuthMiddleware はBearerトークンが提示された場合のみ検証を行う
// ミドルウェアを返す。有効なトークンがあれば識別情報をコンテキストに注入し、
// ヘッダーがない場合は未認証のまま通過させる。
// 提示されたトークンが不正な場合は401を返す（黙って未認証扱いにはしない）。
func NewOptionalAuthMiddleware(validator TokenValidator) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			if !strings.HasPrefix(header, bearerPrefix) {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			claims, err := validator.Validate(strings.TrimPrefix(header, bearerPrefix), token.KindAccess)
			if err != nil {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			ctx := ContextWithAuthInfo(r.Context(), claims.Identity())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AuthInfoFromContext はリクエストコンテキストから認証済み識別情報を取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func AuthInfoFromContext(ctx context.Context) (model.UserIdentity, error) {
	identity, ok := ctx.Value(authInfoContextKey).(model.UserIdentity)
	if !ok || identity.UserID == "" {
		return model.UserIdentity{}, fmt.Errorf("auth info not found in context")
	}
	return identity, nil
}

// ContextWithAuthInfo はコンテキストに認証済み識別情報を注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithAuthInfo(ctx context.Context, identity model.UserIdentity) context.Context {
	return context.WithValue(ctx, authInfoContextKey, identity)
}
