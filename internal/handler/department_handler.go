package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/assetman/internal/model"
)

// DepartmentServiceInterface は部署ハンドラーが必要とするサービスインターフェース。
type DepartmentServiceInterface interface {
	// List は全部署を返す。
	List(ctx context.Context) ([]*model.Department, error)
	// Create は部署を作成する。
	Create(ctx context.Context, name string) (*model.Department, error)
	// Update は部署を部分更新する。
	Update(ctx context.Context, id string, name *string) (*model.Department, error)
	// Delete は部署を削除する。
	Delete(ctx context.Context, id string) error
}

// DepartmentHandler は部署管理のHTTPハンドラー。
type DepartmentHandler struct {
	service DepartmentServiceInterface
}

// NewDepartmentHandler はDepartmentHandlerを生成する。
func NewDepartmentHandler(service DepartmentServiceInterface) *DepartmentHandler {
	return &DepartmentHandler{service: service}
}

// departmentMutationRequest は部署作成・更新リクエストのボディ。
type departmentMutationRequest struct {
	Name *string `json:"name"`
}

// departmentResponse は部署情報のAPIレスポンス。
type departmentResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

// departmentListResponse は部署一覧のAPIレスポンス。
type departmentListResponse struct {
	Success     bool                 `json:"success"`
	Departments []departmentResponse `json:"departments"`
}

// departmentMutationResponse は部署作成・更新のAPIレスポンス。
type departmentMutationResponse struct {
	Success    bool               `json:"success"`
	Department departmentResponse `json:"department"`
}

// List は部署一覧を返す。
// GET /api/departments
func (h *DepartmentHandler) List(w http.ResponseWriter, r *http.Request) {
	departments, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := departmentListResponse{
		Success:     true,
		Departments: make([]departmentResponse, 0, len(departments)),
	}
	for _, dept := range departments {
		resp.Departments = append(resp.Departments, toDepartmentResponse(dept))
	}

	writeJSON(w, http.StatusOK, resp)
}

// Create は部署を作成する。管理者専用。
// POST /api/departments
func (h *DepartmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req departmentMutationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}
	if req.Name == nil {
		handleServiceError(w, model.NewValidationError("name"))
		return
	}

	dept, err := h.service.Create(r.Context(), *req.Name)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, departmentMutationResponse{
		Success:    true,
		Department: toDepartmentResponse(dept),
	})
}

// Update は部署を更新する。管理者専用。
// PATCH /api/departments/:id
func (h *DepartmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req departmentMutationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	dept, err := h.service.Update(r.Context(), id, req.Name)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, departmentMutationResponse{
		Success:    true,
		Department: toDepartmentResponse(dept),
	})
}

// Delete は部署を削除する。管理者専用。
// DELETE /api/departments/:id
func (h *DepartmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// toDepartmentResponse はmodel.DepartmentからAPIレスポンスに変換する。
func toDepartmentResponse(dept *model.Department) departmentResponse {
	return departmentResponse{
		ID:        dept.ID,
		Name:      dept.Name,
		CreatedAt: dept.CreatedAt.Format(time.RFC3339),
	}
}
