package model

import "time"

// TokenInfo は発行済みトークンとその有効期間を表す。
// 発行後は不変。ExpiresAt > IssuedAt を常に満たす。
type TokenInfo struct {
	Token     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenPair はログイン時に同時発行されるアクセストークンと
// リフレッシュトークンの組を表す。
// リフレッシュトークンは同一サブジェクトの新しいアクセストークンの
// 発行のみを認可し、新しいリフレッシュトークンは発行しない。
type TokenPair struct {
	AccessToken  TokenInfo
	RefreshToken TokenInfo
}
