package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/assetman/internal/middleware"
	"github.com/hitoshi/assetman/internal/model"
	"github.com/hitoshi/assetman/internal/user"
)

// UserServiceInterface はユーザー管理ハンドラーが必要とするサービスインターフェース。
// すべての操作は管理者専用（ルーティング側でRequireAdminを適用する）。
type UserServiceInterface interface {
	// List は全ユーザーを返す。
	List(ctx context.Context) ([]*model.User, error)
	// Create は管理者がユーザーを作成する。
	Create(ctx context.Context, params user.CreateParams) (*model.User, error)
	// Update はユーザーを部分更新する。
	Update(ctx context.Context, id string, params user.UpdateParams) (*model.User, error)
	// Delete はユーザーを削除する。
	Delete(ctx context.Context, callerID, id string) error
}

// UserHandler はユーザー管理のHTTPハンドラー。
type UserHandler struct {
	service UserServiceInterface
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{service: service}
}

// createUserRequest はユーザー作成リクエストのボディ。
type createUserRequest struct {
	Email        string  `json:"email"`
	Password     string  `json:"password"`
	Name         string  `json:"name"`
	UserType     string  `json:"user_type"`
	DepartmentID *string `json:"department_id"`
}

// updateUserRequest はユーザー更新リクエストのボディ。
// department_idはキーの有無で「変更しない」と「解除する（null）」を区別する。
type updateUserRequest struct {
	Name         *string         `json:"name"`
	UserType     *string         `json:"user_type"`
	DepartmentID json.RawMessage `json:"department_id"`
}

// userListResponse はユーザー一覧のAPIレスポンス。
type userListResponse struct {
	Success bool           `json:"success"`
	Users   []userResponse `json:"users"`
}

// userMutationResponse はユーザー作成・更新のAPIレスポンス。
type userMutationResponse struct {
	Success bool         `json:"success"`
	User    userResponse `json:"user"`
}

// List はユーザー一覧を返す。管理者専用。
// GET /api/users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := userListResponse{
		Success: true,
		Users:   make([]userResponse, 0, len(users)),
	}
	for _, u := range users {
		resp.Users = append(resp.Users, toUserResponse(u))
	}

	writeJSON(w, http.StatusOK, resp)
}

// Create はユーザーを作成する。管理者専用。
// POST /api/users/create
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	created, err := h.service.Create(r.Context(), user.CreateParams{
		Email:        req.Email,
		Password:     req.Password,
		Name:         req.Name,
		UserType:     model.UserType(req.UserType),
		DepartmentID: req.DepartmentID,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, userMutationResponse{
		Success: true,
		User:    toUserResponse(created),
	})
}

// Update はユーザーを更新する。管理者専用。
// PATCH /api/users/:id
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	params := user.UpdateParams{Name: req.Name}
	if req.UserType != nil {
		userType := model.UserType(*req.UserType)
		params.UserType = &userType
	}
	if len(req.DepartmentID) > 0 {
		params.DepartmentIDSet = true
		if string(req.DepartmentID) != "null" {
			var deptID string
			if err := json.Unmarshal(req.DepartmentID, &deptID); err != nil {
				handleServiceError(w, model.NewValidationError("department_id"))
				return
			}
			params.DepartmentID = &deptID
		}
	}

	updated, err := h.service.Update(r.Context(), id, params)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, userMutationResponse{
		Success: true,
		User:    toUserResponse(updated),
	})
}

// Delete はユーザーを削除する。管理者専用。自分自身は削除できない。
// DELETE /api/users/:id
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	callerID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), callerID, id); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
