// Package user はユーザーディレクトリのドメインロジックを提供する。
package user

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/authgate/internal/model"
	"github.com/hitoshi/authgate/internal/password"
	"github.com/hitoshi/authgate/internal/repository"
)

// defaultListLimit はlimit未指定時の一覧件数。
const defaultListLimit = 50

// CreateInput はユーザー作成の入力。
type CreateInput struct {
	LoginID  string
	Password string
	Role     model.Role
	Phone    string
	Email    string
}

// UpdateInput はユーザー更新の入力。
// Passwordが空の場合は現在のハッシュを維持する。
// LoginIDとIDは更新できない（入力に含まれない）。
type UpdateInput struct {
	Password string
	Role     model.Role
	Phone    string
	Email    string
}

// Service はユーザーディレクトリのサービス層。
type Service struct {
	repo   repository.UserRepository
	hasher password.Hasher
	now    func() time.Time
}

// NewService はServiceを生成する。
func NewService(repo repository.UserRepository, hasher password.Hasher) *Service {
	return &Service{
		repo:   repo,
		hasher: hasher,
		now:    time.Now,
	}
}

// Create はユーザーを新規作成し、作成されたレコードを返す。
// login_id重複時はCONFLICT_USERを返す。idは新規UUIDを割り当てる。
func (s *Service) Create(ctx context.Context, in CreateInput) (*model.User, error) {
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash password", slog.String("error", err.Error()))
		return nil, model.NewInternalError()
	}

	now := s.now()
	user := &model.User{
		ID:           uuid.New().String(),
		LoginID:      in.LoginID,
		PasswordHash: hash,
		Role:         in.Role,
		Phone:        in.Phone,
		Email:        in.Email,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if err == repository.ErrDuplicateLoginID {
			return nil, model.NewUserConflictError(in.LoginID)
		}
		slog.ErrorContext(ctx, "failed to create user", slog.String("error", err.Error()))
		return nil, model.NewInternalError()
	}

	slog.InfoContext(ctx, "user created",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)

	return user, nil
}

// Get は指定IDのユーザーを取得する。存在しない場合はNOT_FOUND_USERを返す。
func (s *Service) Get(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		slog.ErrorContext(ctx, "failed to find user", slog.String("error", err.Error()))
		return nil, model.NewInternalError()
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	return user, nil
}

// GetByLoginID は指定ログインIDのユーザーを取得する。
// Credential Verifierが内部的に使用する。存在しない場合はNOT_FOUND_USERを返す。
func (s *Service) GetByLoginID(ctx context.Context, loginID string) (*model.User, error) {
	user, err := s.repo.FindByLoginID(ctx, loginID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to find user by login ID", slog.String("error", err.Error()))
		return nil, model.NewInternalError()
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	return user, nil
}

// List は作成順で安定したページとページング情報を返す。
// limitが0以下の場合は50を使用する。offsetが全件数を超える場合は
// 空ページを返す（エラーにはしない）。Totalは常に呼び出し時点の全件数。
func (s *Service) List(ctx context.Context, offset, limit int) ([]model.User, *model.ListMeta, error) {
	if offset < 0 {
		return nil, nil, model.NewBadRequestError("offsetは0以上を指定してください")
	}
	if limit <= 0 {
		limit = defaultListLimit
	}

	users, total, err := s.repo.List(ctx, offset, limit)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list users", slog.String("error", err.Error()))
		return nil, nil, model.NewInternalError()
	}

	meta := &model.ListMeta{
		Limit:  limit,
		Offset: offset,
		Total:  total,
	}

	return users, meta, nil
}

// Update はロール・電話番号・メールアドレスを置き換える。
// Passwordが指定された場合のみ再ハッシュして置き換える。
// login_idとidは変更されない。存在しない場合はNOT_FOUND_USERを返す。
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) error {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		slog.ErrorContext(ctx, "failed to find user for update", slog.String("error", err.Error()))
		return model.NewInternalError()
	}
	if current == nil {
		return model.NewUserNotFoundError()
	}

	hash := current.PasswordHash
	if in.Password != "" {
		hash, err = s.hasher.Hash(in.Password)
		if err != nil {
			slog.ErrorContext(ctx, "failed to hash password", slog.String("error", err.Error()))
			return model.NewInternalError()
		}
	}

	updated := &model.User{
		ID:           current.ID,
		LoginID:      current.LoginID,
		PasswordHash: hash,
		Role:         in.Role,
		Phone:        in.Phone,
		Email:        in.Email,
		UpdatedAt:    s.now(),
	}

	if err := s.repo.Update(ctx, updated); err != nil {
		if err == repository.ErrUserNotFound {
			return model.NewUserNotFoundError()
		}
		slog.ErrorContext(ctx, "failed to update user", slog.String("error", err.Error()))
		return model.NewInternalError()
	}

	slog.InfoContext(ctx, "user updated", slog.String("user_id", id))
	return nil
}

// Delete は指定IDのユーザーを削除する。削除は恒久的で、idは再利用されない。
// 存在しない場合はNOT_FOUND_USERを返す。
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		if err == repository.ErrUserNotFound {
			return model.NewUserNotFoundError()
		}
		slog.ErrorContext(ctx, "failed to delete user", slog.String("error", err.Error()))
		return model.NewInternalError()
	}

	slog.InfoContext(ctx, "user deleted", slog.String("user_id", id))
	return nil
}
