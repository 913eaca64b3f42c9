package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/assetman/internal/auth"
	"github.com/hitoshi/assetman/internal/middleware"
	"github.com/hitoshi/assetman/internal/model"
)

// --- モック定義 ---

// mockAuthService はAuthServiceInterfaceのモック実装。
type mockAuthService struct {
	registerFn func(ctx context.Context, email, password, name string) (*model.User, error)
	loginFn    func(ctx context.Context, email, password string) (*auth.TokenResponse, *model.User, error)
}

func (m *mockAuthService) Register(ctx context.Context, email, password, name string) (*model.User, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, email, password, name)
	}
	return nil, nil
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*auth.TokenResponse, *model.User, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, email, password)
	}
	return nil, nil, nil
}

// mockUserFinder はUserFinderのモック実装。
type mockUserFinder struct {
	findByIDFn func(ctx context.Context, id string) (*model.User, error)
}

func (m *mockUserFinder) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

// --- テストヘルパー ---

// withIdentity はテスト用にリクエストコンテキストに認証済みアイデンティティを注入するヘルパー。
func withIdentity(r *http.Request, userID string, userType model.UserType) *http.Request {
	ctx := middleware.ContextWithIdentity(r.Context(), middleware.Identity{
		UserID:   userID,
		UserType: userType,
	})
	return r.WithContext(ctx)
}

// withChiURLParam はテスト用にchiのURLパラメータを注入するヘルパー。
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}

// parseErrorResponse はレスポンスボディから統一エラーフォーマットをパースするヘルパー。
func parseErrorResponse(t *testing.T, w *httptest.ResponseRecorder) middleware.ErrorResponseBody {
	t.Helper()
	var result middleware.ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return result
}

func testUser() *model.User {
	return &model.User{
		ID:        "user-123",
		Email:     "yamada@example.com",
		Name:      "山田太郎",
		UserType:  model.UserTypeUser,
		CreatedAt: time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC),
	}
}

// --- POST /auth/register テスト ---

func TestAuthHandler_Register_Success(t *testing.T) {
	svc := &mockAuthService{
		registerFn: func(ctx context.Context, email, password, name string) (*model.User, error) {
			if email != "yamada@example.com" {
				t.Errorf("email = %q, want yamada@example.com", email)
			}
			if password != "secret-password" {
				t.Errorf("password = %q, want secret-password", password)
			}
			return testUser(), nil
		},
	}

	h := NewAuthHandler(svc, &mockUserFinder{})

	body := `{"email": "yamada@example.com", "password": "secret-password", "name": "山田太郎"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.Register(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}

	var result registerResponse
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !result.Success {
		t.Error("success = false, want true")
	}
	if result.User.ID != "user-123" {
		t.Errorf("user.id = %q, want user-123", result.User.ID)
	}
	if result.User.UserType != "user" {
		t.Errorf("user.user_type = %q, want user", result.User.UserType)
	}
}

func TestAuthHandler_Register_MissingEmail_ReturnsBadRequest(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, &mockUserFinder{})

	body := `{"password": "secret-password", "name": "山田太郎"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.Register(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}

	errResp := parseErrorResponse(t, w)
	if errResp.Code != model.ErrCodeValidationFailed {
		t.Errorf("code = %q, want %q", errResp.Code, model.ErrCodeValidationFailed)
	}
}

func TestAuthHandler_Register_InvalidJSON_ReturnsBadRequest(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, &mockUserFinder{})

	body := `{invalid json`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.Register(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}

func TestAuthHandler_Register_DuplicateEmail_ReturnsConflict(t *testing.T) {
	svc := &mockAuthService{
		registerFn: func(ctx context.Context, email, password, name string) (*model.User, error) {
			return nil, model.NewDuplicateEmailError(email)
		},
	}

	h := NewAuthHandler(svc, &mockUserFinder{})

	body := `{"email": "dup@example.com", "password": "secret-password", "name": "山田太郎"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.Register(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusConflict)
	}

	errResp := parseErrorResponse(t, w)
	if errResp.Code != model.ErrCodeDuplicateEmail {
		t.Errorf("code = %q, want %q", errResp.Code, model.ErrCodeDuplicateEmail)
	}
}

func TestAuthHandler_Register_InternalError_ReturnsInternalServerError(t *testing.T) {
	svc := &mockAuthService{
		registerFn: func(ctx context.Context, email, password, name string) (*model.User, error) {
			return nil, errors.New("database connection failed")
		},
	}

	h := NewAuthHandler(svc, &mockUserFinder{})

	body := `{"email": "yamada@example.com", "password": "secret-password", "name": "山田太郎"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.Register(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusInternalServerError)
	}
}

// --- POST /auth/login テスト ---

func TestAuthHandler_Login_Success(t *testing.T) {
	svc := &mockAuthService{
		loginFn: func(ctx context.Context, email, password string) (*auth.TokenResponse, *model.User, error) {
			return &auth.TokenResponse{
				AccessToken: "token-abc",
				TokenType:   "bearer",
				ExpiresIn:   3600,
			}, testUser(), nil
		},
	}

	h := NewAuthHandler(svc, &mockUserFinder{})

	body := `{"email": "yamada@example.com", "password": "secret-password"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.Login(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var result loginResponse
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.AccessToken != "token-abc" {
		t.Errorf("access_token = %q, want token-abc", result.AccessToken)
	}
	if result.ExpiresIn != 3600 {
		t.Errorf("expires_in = %d, want 3600", result.ExpiresIn)
	}
	if result.User.Email != "yamada@example.com" {
		t.Errorf("user.email = %q, want yamada@example.com", result.User.Email)
	}
}

func TestAuthHandler_Login_InvalidCredentials_ReturnsUnauthorized(t *testing.T) {
	svc := &mockAuthService{
		loginFn: func(ctx context.Context, email, password string) (*auth.TokenResponse, *model.User, error) {
			return nil, nil, model.NewInvalidCredentialsError()
		},
	}

	h := NewAuthHandler(svc, &mockUserFinder{})

	body := `{"email": "yamada@example.com", "password": "wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.Login(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}

	errResp := parseErrorResponse(t, w)
	if errResp.Code != model.ErrCodeInvalidCredentials {
		t.Errorf("code = %q, want %q", errResp.Code, model.ErrCodeInvalidCredentials)
	}
}

func TestAuthHandler_Login_EmptyFields_ReturnsUnauthorized(t *testing.T) {
	loginCalled := false
	svc := &mockAuthService{
		loginFn: func(ctx context.Context, email, password string) (*auth.TokenResponse, *model.User, error) {
			loginCalled = true
			return nil, nil, nil
		},
	}

	h := NewAuthHandler(svc, &mockUserFinder{})

	body := `{"email": "", "password": ""}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.Login(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
	if loginCalled {
		t.Error("Login must not be called with empty credentials")
	}
}

// --- GET /auth/me テスト ---

func TestAuthHandler_Me_Success(t *testing.T) {
	finder := &mockUserFinder{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			if id != "user-123" {
				t.Errorf("id = %q, want user-123", id)
			}
			return testUser(), nil
		},
	}

	h := NewAuthHandler(&mockAuthService{}, finder)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req = withIdentity(req, "user-123", model.UserTypeUser)
	w := httptest.NewRecorder()

	h.Me(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var result meResponse
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.User.ID != "user-123" {
		t.Errorf("user.id = %q, want user-123", result.User.ID)
	}
}

func TestAuthHandler_Me_NoIdentity_ReturnsUnauthorized(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, &mockUserFinder{})

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	// アイデンティティを注入しない
	w := httptest.NewRecorder()

	h.Me(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
}

func TestAuthHandler_Me_UserRowMissing_ReturnsUnauthorized(t *testing.T) {
	finder := &mockUserFinder{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return nil, nil
		},
	}

	h := NewAuthHandler(&mockAuthService{}, finder)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req = withIdentity(req, "user-123", model.UserTypeUser)
	w := httptest.NewRecorder()

	h.Me(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
}
