package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/authgate/internal/model"
)

// --- モック定義 ---

// mockAuthService はAuthServiceInterfaceのモック実装。
type mockAuthService struct {
	loginFn   func(ctx context.Context, loginID, password string) (*model.TokenPair, error)
	refreshFn func(ctx context.Context, refreshToken string) (*model.TokenInfo, error)
}

func (m *mockAuthService) Login(ctx context.Context, loginID, password string) (*model.TokenPair, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, loginID, password)
	}
	return nil, model.NewUnauthorizedError()
}

func (m *mockAuthService) Refresh(ctx context.Context, refreshToken string) (*model.TokenInfo, error) {
	if m.refreshFn != nil {
		return m.refreshFn(ctx, refreshToken)
	}
	return nil, model.NewUnauthorizedError()
}

func testTokenPair() *model.TokenPair {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return &model.TokenPair{
		AccessToken: model.TokenInfo{
			Token:     "access-token-value",
			IssuedAt:  now,
			ExpiresAt: now.Add(15 * time.Minute),
		},
		RefreshToken: model.TokenInfo{
			Token:     "refresh-token-value",
			IssuedAt:  now,
			ExpiresAt: now.Add(14 * 24 * time.Hour),
		},
	}
}

// --- POST /tokens/login テスト ---

func TestTokenHandler_Login_Success(t *testing.T) {
	svc := &mockAuthService{
		loginFn: func(ctx context.Context, loginID, password string) (*model.TokenPair, error) {
			if loginID != "loginuser001" || password != "password1234" {
				t.Errorf("credentials = %q/%q, want loginuser001/password1234", loginID, password)
			}
			return testTokenPair(), nil
		},
	}

	h := NewTokenHandler(svc)

	body := `{"loginId":"loginuser001","password":"password1234"}`
	req := httptest.NewRequest(http.MethodPost, "/tokens/login", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.Login(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var got tokenPairResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.AccessToken.Token != "access-token-value" {
		t.Errorf("accessToken.token = %q, want access-token-value", got.AccessToken.Token)
	}
	if got.RefreshToken.Token != "refresh-token-value" {
		t.Errorf("refreshToken.token = %q, want refresh-token-value", got.RefreshToken.Token)
	}
	if !got.AccessToken.ExpiresAt.After(got.AccessToken.IssuedAt) {
		t.Error("accessToken.expiresAt should be after issuedAt")
	}
}

func TestTokenHandler_Login_InvalidBody(t *testing.T) {
	h := NewTokenHandler(&mockAuthService{})

	req := httptest.NewRequest(http.MethodPost, "/tokens/login", strings.NewReader("{broken"))
	w := httptest.NewRecorder()

	h.Login(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
	}
}

func TestTokenHandler_Login_ValidationFailure(t *testing.T) {
	svc := &mockAuthService{
		loginFn: func(ctx context.Context, loginID, password string) (*model.TokenPair, error) {
			t.Fatal("service should not be called on validation failure")
			return nil, nil
		},
	}
	h := NewTokenHandler(svc)

	cases := []struct {
		name string
		body string
	}{
		{"short login ID", `{"loginId":"short","password":"password1234"}`},
		{"login ID with symbols", `{"loginId":"login-user!!","password":"password1234"}`},
		{"missing password", `{"loginId":"loginuser001"}`},
		{"too long password", `{"loginId":"loginuser001","password":"` + strings.Repeat("a", 21) + `"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/tokens/login", strings.NewReader(tc.body))
			w := httptest.NewRecorder()

			h.Login(w, req)

			resp := w.Result()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
			}

			var errResp apiErrorResponse
			if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
				t.Fatalf("failed to decode error response: %v", err)
			}
			if errResp.Code != model.ErrCodeBadRequest {
				t.Errorf("code = %q, want %q", errResp.Code, model.ErrCodeBadRequest)
			}
		})
	}
}

func TestTokenHandler_Login_Unauthorized(t *testing.T) {
	svc := &mockAuthService{
		loginFn: func(ctx context.Context, loginID, password string) (*model.TokenPair, error) {
			return nil, model.NewUnauthorizedError()
		},
	}
	h := NewTokenHandler(svc)

	body := `{"loginId":"loginuser001","password":"wrongpass123"}`
	req := httptest.NewRequest(http.MethodPost, "/tokens/login", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.Login(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}

	var errResp apiErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if errResp.Code != model.ErrCodeUnauthorized {
		t.Errorf("code = %q, want %q", errResp.Code, model.ErrCodeUnauthorized)
	}
}

// --- POST /tokens/refresh テスト ---

func TestTokenHandler_Refresh_Success(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := &mockAuthService{
		refreshFn: func(ctx context.Context, refreshToken string) (*model.TokenInfo, error) {
			if refreshToken != "refresh-token-value" {
				t.Errorf("refreshToken = %q, want refresh-token-value", refreshToken)
			}
			return &model.TokenInfo{
				Token:     "new-access-token",
				IssuedAt:  now,
				ExpiresAt: now.Add(15 * time.Minute),
			}, nil
		},
	}
	h := NewTokenHandler(svc)

	body := `{"refreshToken":"refresh-token-value"}`
	req := httptest.NewRequest(http.MethodPost, "/tokens/refresh", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.Refresh(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var got tokenInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.Token != "new-access-token" {
		t.Errorf("token = %q, want new-access-token", got.Token)
	}
}

func TestTokenHandler_Refresh_MissingToken(t *testing.T) {
	h := NewTokenHandler(&mockAuthService{})

	req := httptest.NewRequest(http.MethodPost, "/tokens/refresh", strings.NewReader(`{}`))
	w := httptest.NewRecorder()

	h.Refresh(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
	}
}

func TestTokenHandler_Refresh_InvalidToken(t *testing.T) {
	svc := &mockAuthService{
		refreshFn: func(ctx context.Context, refreshToken string) (*model.TokenInfo, error) {
			return nil, model.NewUnauthorizedError()
		},
	}
	h := NewTokenHandler(svc)

	body := `{"refreshToken":"expired-or-bogus"}`
	req := httptest.NewRequest(http.MethodPost, "/tokens/refresh", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.Refresh(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
}
