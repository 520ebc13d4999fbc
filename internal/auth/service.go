// Package auth は資格情報の検証、トークンの発行・リフレッシュ、
// および操作の認可判定を提供する。
package auth

import (
	"context"
	"log/slog"

	"github.com/hitoshi/authgate/internal/model"
	"github.com/hitoshi/authgate/internal/password"
	"github.com/hitoshi/authgate/internal/repository"
	"github.com/hitoshi/authgate/internal/token"
)

// MetricsRecorder は認証イベントのメトリクス記録インターフェース。
type MetricsRecorder interface {
	RecordLoginSuccess()
	RecordLoginFailure()
	RecordRefreshSuccess()
	RecordRefreshFailure()
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo repository.UserRepository
	hasher   password.Hasher
	tokens   *token.Manager
	metrics  MetricsRecorder
}

// NewService はServiceを生成する。metricsはnilを許容する。
func NewService(
	userRepo repository.UserRepository,
	hasher password.Hasher,
	tokens *token.Manager,
	metrics MetricsRecorder,
) *Service {
	return &Service{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		metrics:  metrics,
	}
}

// Login はログインIDとパスワードを検証し、トークンペアを発行する。
// ユーザー不在とパスワード不一致は同一のエラーとして返す。
// 不在時にもダミーハッシュとの照合を行い、両経路の計算コストを揃える
// （レスポンス時間からのユーザー存在推測を防ぐ）。
func (s *Service) Login(ctx context.Context, loginID, passwd string) (*model.TokenPair, error) {
	user, err := s.userRepo.FindByLoginID(ctx, loginID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to find user by login ID",
			slog.String("error", err.Error()),
		)
		return nil, model.NewInternalError()
	}

	if user == nil {
		s.hasher.CompareDummy(passwd)
		s.recordLoginFailure()
		slog.InfoContext(ctx, "login rejected", slog.String("reason", "unknown login ID"))
		return nil, model.NewUnauthorizedError()
	}

	if !s.hasher.Compare(user.PasswordHash, passwd) {
		s.recordLoginFailure()
		slog.InfoContext(ctx, "login rejected",
			slog.String("reason", "password mismatch"),
			slog.String("user_id", user.ID),
		)
		return nil, model.NewUnauthorizedError()
	}

	pair, err := s.tokens.IssuePair(model.UserIdentity{
		UserID:  user.ID,
		LoginID: user.LoginID,
		Role:    user.Role,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to issue token pair",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID),
		)
		return nil, model.NewInternalError()
	}

	s.recordLoginSuccess()
	slog.InfoContext(ctx, "user logged in",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)

	return pair, nil
}

// Refresh はリフレッシュトークンを検証し、新しいアクセストークンを発行する。
// リフレッシュトークン自体はローテーションも失効もされない。
// サーバー側に失効リストを持たないため、同じリフレッシュトークンは
// 自身の期限まで再利用できる。これは意図した動作であり、
// より強い保護が必要な場合は失効ストアの追加が自然な拡張点となる。
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*model.TokenInfo, error) {
	claims, err := s.tokens.Validate(refreshToken, token.KindRefresh)
	if err != nil {
		s.recordRefreshFailure()
		// 検証失敗の理由はログのみに残し、外部には一律の認証エラーを返す
		slog.InfoContext(ctx, "refresh rejected", slog.String("reason", err.Error()))
		return nil, model.NewUnauthorizedError()
	}

	access, err := s.tokens.IssueAccess(claims.Identity())
	if err != nil {
		slog.ErrorContext(ctx, "failed to issue access token",
			slog.String("error", err.Error()),
			slog.String("user_id", claims.Subject),
		)
		return nil, model.NewInternalError()
	}

	s.recordRefreshSuccess()
	slog.InfoContext(ctx, "access token refreshed", slog.String("user_id", claims.Subject))

	return access, nil
}

func (s *Service) recordLoginSuccess() {
	if s.metrics != nil {
		s.metrics.RecordLoginSuccess()
	}
}

func (s *Service) recordLoginFailure() {
	if s.metrics != nil {
		s.metrics.RecordLoginFailure()
	}
}

func (s *Service) recordRefreshSuccess() {
	if s.metrics != nil {
		s.metrics.RecordRefreshSuccess()
	}
}

func (s *Service) recordRefreshFailure() {
	if s.metrics != nil {
		s.metrics.RecordRefreshFailure()
	}
}
