package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/assetman/internal/model"
)

// CategoryServiceInterface はカテゴリハンドラーが必要とするサービスインターフェース。
type CategoryServiceInterface interface {
	// List は全カテゴリを返す。
	List(ctx context.Context) ([]*model.Category, error)
	// Create はカテゴリを作成する。
	Create(ctx context.Context, name string) (*model.Category, error)
	// Update はカテゴリを部分更新する。
	Update(ctx context.Context, id string, name *string) (*model.Category, error)
	// Delete はカテゴリを削除する。
	Delete(ctx context.Context, id string) error
}

// CategoryHandler はカテゴリ管理のHTTPハンドラー。
type CategoryHandler struct {
	service CategoryServiceInterface
}

// NewCategoryHandler はCategoryHandlerを生成する。
func NewCategoryHandler(service CategoryServiceInterface) *CategoryHandler {
	return &CategoryHandler{service: service}
}

// categoryMutationRequest はカテゴリ作成・更新リクエストのボディ。
type categoryMutationRequest struct {
	Name *string `json:"name"`
}

// categoryResponse はカテゴリ情報のAPIレスポンス。
type categoryResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

// categoryListResponse はカテゴリ一覧のAPIレスポンス。
type categoryListResponse struct {
	Success    bool               `json:"success"`
	Categories []categoryResponse `json:"categories"`
}

// categoryMutationResponse はカテゴリ作成・更新のAPIレスポンス。
type categoryMutationResponse struct {
	Success  bool             `json:"success"`
	Category categoryResponse `json:"category"`
}

// List はカテゴリ一覧を返す。
// GET /api/categories
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := categoryListResponse{
		Success:    true,
		Categories: make([]categoryResponse, 0, len(categories)),
	}
	for _, category := range categories {
		resp.Categories = append(resp.Categories, toCategoryResponse(category))
	}

	writeJSON(w, http.StatusOK, resp)
}

// Create はカテゴリを作成する。管理者専用。
// POST /api/categories
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req categoryMutationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}
	if req.Name == nil {
		handleServiceError(w, model.NewValidationError("name"))
		return
	}

	category, err := h.service.Create(r.Context(), *req.Name)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, categoryMutationResponse{
		Success:  true,
		Category: toCategoryResponse(category),
	})
}

// Update はカテゴリを更新する。管理者専用。
// PATCH /api/categories/:id
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req categoryMutationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	category, err := h.service.Update(r.Context(), id, req.Name)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, categoryMutationResponse{
		Success:  true,
		Category: toCategoryResponse(category),
	})
}

// Delete はカテゴリを削除する。管理者専用。
// DELETE /api/categories/:id
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// toCategoryResponse はmodel.CategoryからAPIレスポンスに変換する。
func toCategoryResponse(category *model.Category) categoryResponse {
	return categoryResponse{
		ID:        category.ID,
		Name:      category.Name,
		CreatedAt: category.CreatedAt.Format(time.RFC3339),
	}
}
