package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/authgate/internal/auth"
	"github.com/hitoshi/authgate/internal/middleware"
	"github.com/hitoshi/authgate/internal/model"
	"github.com/hitoshi/authgate/internal/user"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	// Create はユーザーを新規作成する。
	Create(ctx context.Context, in user.CreateInput) (*model.User, error)
	// Get は指定IDのユーザーを取得する。
	Get(ctx context.Context, id string) (*model.User, error)
	// List は作成順のページとページング情報を返す。
	List(ctx context.Context, offset, limit int) ([]model.User, *model.ListMeta, error)
	// Update はユーザーの属性を置き換える。
	Update(ctx context.Context, id string, in user.UpdateInput) error
	// Delete はユーザーを削除する。
	Delete(ctx context.Context, id string) error
}

// UserHandler はユーザーディレクトリのHTTPハンドラー。
type UserHandler struct {
	service    UserServiceInterface
	openSignup bool
}

// NewUserHandler はUserHandlerを生成する。
// openSignupがtrueの場合、未認証のユーザー作成（セルフサインアップ）を許可する。
func NewUserHandler(service UserServiceInterface, openSignup bool) *UserHandler {
	return &UserHandler{
		service:    service,
		openSignup: openSignup,
	}
}

// userResponse はユーザー情報のAPIレスポンス。パスワードハッシュは含めない。
type userResponse struct {
	ID        string    `json:"id"`
	LoginID   string    `json:"loginId"`
	Role      string    `json:"role"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// listMetaResponse は一覧のページング情報。
type listMetaResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

// listUsersResponse はユーザー一覧のAPIレスポンス。
type listUsersResponse struct {
	Metadata listMetaResponse `json:"metadata"`
	Users    []userResponse   `json:"users"`
}

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Create はユーザー作成を処理する。
// POST /users
//
// 認証済みリクエストではadminロールのみが作成でき、任意のロールを指定できる。
// セルフサインアップが有効な場合、未認証リクエストも受け付けるが、
// 作成されるロールは指定にかかわらずuserに固定される。
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewBadRequestError("リクエストボディの解析に失敗しました"))
		return
	}

	if err := validate.Struct(req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewBadRequestError(validationMessage(err)))
		return
	}

	role := model.Role(req.Role)

	identity, err := middleware.AuthInfoFromContext(r.Context())
	if err != nil {
		// 未認証: セルフサインアップ
		if !h.openSignup {
			writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
			return
		}
		role = model.RoleUser
	} else {
		if !auth.Authorize(identity, auth.OpCreateUser, "") {
			writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
			return
		}
		if role == "" {
			role = model.RoleUser
		}
	}

	created, err := h.service.Create(r.Context(), user.CreateInput{
		LoginID:  req.LoginID,
		Password: req.Password,
		Role:     role,
		Phone:    req.Phone,
		Email:    req.Email,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toUserResponse(created))
}

// List はユーザー一覧を取得する。adminのみ。
// GET /users?offset=0&limit=50
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.AuthInfoFromContext(r.Context())
	if err != nil || !auth.Authorize(identity, auth.OpListUsers, "") {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	offset, limit, err := parsePageParams(r)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewBadRequestError("offsetとlimitは整数で指定してください"))
		return
	}

	users, meta, err := h.service.List(r.Context(), offset, limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := listUsersResponse{
		Metadata: listMetaResponse{
			Limit:  meta.Limit,
			Offset: meta.Offset,
			Total:  meta.Total,
		},
		Users: make([]userResponse, 0, len(users)),
	}
	for i := range users {
		resp.Users = append(resp.Users, toUserResponse(&users[i]))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// Get はユーザー1件を取得する。
// GET /users/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.getByID(w, r, chi.URLParam(r, "id"))
}

// GetMe は認証済みユーザー自身の情報を取得する。
// GET /users/me
//
// トークンが有効でも対象レコードが既に削除されている場合は404を返す。
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.AuthInfoFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}
	h.getByID(w, r, identity.UserID)
}

func (h *UserHandler) getByID(w http.ResponseWriter, r *http.Request, id string) {
	identity, err := middleware.AuthInfoFromContext(r.Context())
	if err != nil || !auth.Authorize(identity, auth.OpGetUser, id) {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	u, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toUserResponse(u))
}

// Update はユーザーの属性を置き換える。
// PUT /users/{id}
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	h.updateByID(w, r, chi.URLParam(r, "id"))
}

// UpdateMe は認証済みユーザー自身の属性を置き換える。
// PUT /users/me
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.AuthInfoFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}
	h.updateByID(w, r, identity.UserID)
}

func (h *UserHandler) updateByID(w http.ResponseWriter, r *http.Request, id string) {
	identity, err := middleware.AuthInfoFromContext(r.Context())
	if err != nil || !auth.Authorize(identity, auth.OpUpdateUser, id) {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewBadRequestError("リクエストボディの解析に失敗しました"))
		return
	}

	if err := validate.Struct(req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewBadRequestError(validationMessage(err)))
		return
	}

	// userロールはロールの昇格を自力では行えない
	if identity.Role == model.RoleUser && model.Role(req.Role) != model.RoleUser {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	if err := h.service.Update(r.Context(), id, user.UpdateInput{
		Password: req.Password,
		Role:     model.Role(req.Role),
		Phone:    req.Phone,
		Email:    req.Email,
	}); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Delete はユーザーを削除する。
// DELETE /users/{id}
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, chi.URLParam(r, "id"))
}

// DeleteMe は認証済みユーザー自身を削除する。
// DELETE /users/me
func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.AuthInfoFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}
	h.deleteByID(w, r, identity.UserID)
}

func (h *UserHandler) deleteByID(w http.ResponseWriter, r *http.Request, id string) {
	identity, err := middleware.AuthInfoFromContext(r.Context())
	if err != nil || !auth.Authorize(identity, auth.OpDeleteUser, id) {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- ヘルパー関数 ---

// parsePageParams はoffset/limitクエリパラメータを解析する。
// 未指定の場合はoffset=0、limit=0（サービス層で既定値が適用される）を返す。
func parsePageParams(r *http.Request) (offset, limit int, err error) {
	if v := r.URL.Query().Get("offset"); v != "" {
		offset, err = strconv.Atoi(v)
		if err != nil {
			return 0, 0, err
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil {
			return 0, 0, err
		}
	}
	return offset, limit, nil
}

// toUserResponse はmodel.UserからAPIレスポンスに変換する。
func toUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:        u.ID,
		LoginID:   u.LoginID,
		Role:      string(u.Role),
		Phone:     u.Phone,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:    apiErr.Code,
		Message: apiErr.Message,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, model.NewInternalError())
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeBadRequest:
		return http.StatusBadRequest
	case model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodeNotFoundUser:
		return http.StatusNotFound
	case model.ErrCodeConflictUser:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
