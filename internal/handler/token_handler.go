package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/hitoshi/authgate/internal/model"
)

// AuthServiceInterface はトークンハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// Login は資格情報を検証し、アクセス・リフレッシュのトークンペアを発行する。
	Login(ctx context.Context, loginID, password string) (*model.TokenPair, error)
	// Refresh はリフレッシュトークンを検証し、新しいアクセストークンを発行する。
	Refresh(ctx context.Context, refreshToken string) (*model.TokenInfo, error)
}

// TokenHandler はトークン発行のHTTPハンドラー。
type TokenHandler struct {
	service AuthServiceInterface
}

// NewTokenHandler はTokenHandlerを生成する。
func NewTokenHandler(service AuthServiceInterface) *TokenHandler {
	return &TokenHandler{
		service: service,
	}
}

// tokenInfoResponse はトークン1件のAPIレスポンス。
type tokenInfoResponse struct {
	Token     string    `json:"token"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// tokenPairResponse はトークンペアのAPIレスポンス。
type tokenPairResponse struct {
	AccessToken  tokenInfoResponse `json:"accessToken"`
	RefreshToken tokenInfoResponse `json:"refreshToken"`
}

// Login はログインを処理する。
// POST /tokens/login
func (h *TokenHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
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

	pair, err := h.service.Login(r.Context(), req.LoginID, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(tokenPairResponse{
		AccessToken:  toTokenInfoResponse(pair.AccessToken),
		RefreshToken: toTokenInfoResponse(pair.RefreshToken),
	})
}

// Refresh はアクセストークンの再発行を処理する。
// POST /tokens/refresh
func (h *TokenHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
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

	access, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toTokenInfoResponse(*access))
}

// toTokenInfoResponse はmodel.TokenInfoからAPIレスポンスに変換する。
func toTokenInfoResponse(info model.TokenInfo) tokenInfoResponse {
	return tokenInfoResponse{
		Token:     info.Token,
		IssuedAt:  info.IssuedAt,
		ExpiresAt: info.ExpiresAt,
	}
}
