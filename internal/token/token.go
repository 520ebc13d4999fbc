// Package token は署名付きベアラートークンの発行と検証を提供する。
// 署名鍵はManagerが単独で保持し、起動時に1回だけ構築して
// 全リクエストハンドラーに参照で渡す。他のコンポーネントは鍵に触れない。
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hitoshi/authgate/internal/model"
)

// Kind はアクセストークンとリフレッシュトークンを区別する種別。
// 種別の取り違え（アクセストークンでのリフレッシュ等）を防ぐ。
type Kind string

const (
	// KindAccess は短命のAPI呼び出し用トークン。
	KindAccess Kind = "access"
	// KindRefresh は長命の、新しいアクセストークンの発行のみを認可するトークン。
	KindRefresh Kind = "refresh"
)

// ErrInvalidToken はトークン検証の失敗を示す。
// 署名不正・期限切れ・種別不一致のいずれでも同じエラーを返し、
// 失敗理由を外部から区別できないようにする。理由はログのみに残す。
var ErrInvalidToken = errors.New("invalid token")

// Claims はトークンに埋め込まれる検証済み事実の集合。
// Subjectにはユーザーidを格納する。
type Claims struct {
	jwt.RegisteredClaims
	LoginID string `json:"loginId"`
	Role    string `json:"role"`
	Kind    Kind   `json:"kind"`
}

// Identity は返却時にmodel.UserIdentityへ変換する。
func (c *Claims) Identity() model.UserIdentity {
	return model.UserIdentity{
		UserID:  c.Subject,
		LoginID: c.LoginID,
		Role:    model.Role(c.Role),
	}
}

// Config はManagerの設定。
type Config struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Manager はトークンの発行と検証を行う。
// 署名鍵を保持する唯一のコンポーネント。鍵は実行時に変更されない
// （ローテーションは再起動でのみ行う）。
type Manager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewManager はManagerを生成する。
func NewManager(cfg Config) *Manager {
	return &Manager{
		secret:     cfg.Secret,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        time.Now,
	}
}

// IssueAccess は認証済みユーザーのアクセストークンを発行する。
func (m *Manager) IssueAccess(identity model.UserIdentity) (*model.TokenInfo, error) {
	return m.issue(identity, KindAccess, m.accessTTL)
}

// IssueRefresh は認証済みユーザーのリフレッシュトークンを発行する。
func (m *Manager) IssueRefresh(identity model.UserIdentity) (*model.TokenInfo, error) {
	return m.issue(identity, KindRefresh, m.refreshTTL)
}

// IssuePair はログイン時のアクセス・リフレッシュトークンの組を発行する。
func (m *Manager) IssuePair(identity model.UserIdentity) (*model.TokenPair, error) {
	access, err := m.IssueAccess(identity)
	if err != nil {
		return nil, err
	}
	refresh, err := m.IssueRefresh(identity)
	if err != nil {
		return nil, err
	}
	return &model.TokenPair{
		AccessToken:  *access,
		RefreshToken: *refresh,
	}, nil
}

// issue は指定種別・TTLのトークンを発行する。
// identityは認証済みであることを前提とし、入力起因では失敗しない。
// 失敗するのは署名処理のみ。
func (m *Manager) issue(identity model.UserIdentity, kind Kind, ttl time.Duration) (*model.TokenInfo, error) {
	issuedAt := m.now()
	expiresAt := issuedAt.Add(ttl)

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UserID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		LoginID: identity.LoginID,
		Role:    string(identity.Role),
		Kind:    kind,
	})

	signed, err := t.SignedString(m.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &model.TokenInfo{
		Token:     signed,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}

// Validate は提示されたトークンを検証し、クレームを返す。
// すべての検査を通過する必要がある:
//  1. 署名が発行鍵で検証できること
//  2. kindがexpectedKindと一致すること
//  3. 現在時刻が有効期限内であること
//
// いずれの失敗もErrInvalidTokenとして返す。期限切れトークンの暗黙更新は行わない。
func (m *Manager) Validate(tokenString string, expectedKind Kind) (*Claims, error) {
	claims := &Claims{}

	t, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !t.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Kind != expectedKind {
		return nil, fmt.Errorf("%w: unexpected token kind", ErrInvalidToken)
	}
	if !model.Role(claims.Role).IsValid() {
		return nil, fmt.Errorf("%w: unknown role", ErrInvalidToken)
	}

	return claims, nil
}
