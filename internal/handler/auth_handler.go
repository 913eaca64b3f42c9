package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/hitoshi/assetman/internal/auth"
	"github.com/hitoshi/assetman/internal/middleware"
	"github.com/hitoshi/assetman/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// Register は新規ユーザーを登録する。
	Register(ctx context.Context, email, password, name string) (*model.User, error)
	// Login はログインしアクセストークンとユーザー情報を返す。
	Login(ctx context.Context, email, password string) (*auth.TokenResponse, *model.User, error)
}

// UserFinder はユーザー行の取得インターフェース。/auth/meで使用する。
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// AuthHandler は認証のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	finder  UserFinder
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, finder UserFinder) *AuthHandler {
	return &AuthHandler{
		service: service,
		finder:  finder,
	}
}

// registerRequest はユーザー登録リクエストのボディ。
type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// userResponse はユーザー情報のAPIレスポンス。
type userResponse struct {
	ID           string  `json:"id"`
	Email        string  `json:"email"`
	Name         string  `json:"name"`
	UserType     string  `json:"user_type"`
	DepartmentID *string `json:"department_id"`
	CreatedAt    string  `json:"created_at"`
}

// registerResponse はユーザー登録のAPIレスポンス。
type registerResponse struct {
	Success bool         `json:"success"`
	User    userResponse `json:"user"`
}

// loginResponse はログインのAPIレスポンス。
type loginResponse struct {
	Success     bool         `json:"success"`
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int          `json:"expires_in"`
	User        userResponse `json:"user"`
}

// meResponse は認証済みユーザー情報のAPIレスポンス。
type meResponse struct {
	Success bool         `json:"success"`
	User    userResponse `json:"user"`
}

// Register はユーザー登録を処理する。
// POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	if req.Email == "" {
		handleServiceError(w, model.NewValidationError("email"))
		return
	}
	if req.Password == "" {
		handleServiceError(w, model.NewValidationError("password"))
		return
	}
	if req.Name == "" {
		handleServiceError(w, model.NewValidationError("name"))
		return
	}

	user, err := h.service.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, registerResponse{
		Success: true,
		User:    toUserResponse(user),
	})
}

// Login はログインを処理する。
// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	if req.Email == "" || req.Password == "" {
		handleServiceError(w, model.NewInvalidCredentialsError())
		return
	}

	token, user, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Success:     true,
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		ExpiresIn:   token.ExpiresIn,
		User:        toUserResponse(user),
	})
}

// Me は認証済みユーザー自身の情報を返す。
// GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	user, err := h.finder.FindByID(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if user == nil {
		writeUnauthorized(w)
		return
	}

	writeJSON(w, http.StatusOK, meResponse{
		Success: true,
		User:    toUserResponse(user),
	})
}

// toUserResponse はmodel.UserからAPIレスポンスに変換する。
func toUserResponse(user *model.User) userResponse {
	return userResponse{
		ID:           user.ID,
		Email:        user.Email,
		Name:         user.Name,
		UserType:     string(user.UserType),
		DepartmentID: user.DepartmentID,
		CreatedAt:    user.CreatedAt.Format(time.RFC3339),
	}
}
