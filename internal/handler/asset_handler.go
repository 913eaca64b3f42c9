package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/assetman/internal/asset"
	"github.com/hitoshi/assetman/internal/middleware"
	"github.com/hitoshi/assetman/internal/model"
)

// AssetServiceInterface は資産ハンドラーが必要とするサービスインターフェース。
type AssetServiceInterface interface {
	// List は呼び出し元のスコープに応じた資産一覧を返す。
	List(ctx context.Context, callerID string, isAdmin bool) ([]*model.Asset, error)
	// Get は指定IDの資産を返す。
	Get(ctx context.Context, callerID string, isAdmin bool, id string) (*model.Asset, error)
	// Create は資産を登録する。
	Create(ctx context.Context, callerID string, params asset.CreateParams) (*model.Asset, error)
	// Update は資産を部分更新する。
	Update(ctx context.Context, id string, params asset.UpdateParams) (*model.Asset, error)
	// Delete は資産を削除する。
	Delete(ctx context.Context, id string) error
}

// AssetHandler は資産管理のHTTPハンドラー。
type AssetHandler struct {
	service AssetServiceInterface
}

// NewAssetHandler はAssetHandlerを生成する。
func NewAssetHandler(service AssetServiceInterface) *AssetHandler {
	return &AssetHandler{service: service}
}

// createAssetRequest は資産登録リクエストのボディ。日付はYYYY-MM-DD形式。
type createAssetRequest struct {
	Name          string   `json:"name"`
	CategoryID    string   `json:"category_id"`
	DepartmentID  string   `json:"department_id"`
	DatePurchased string   `json:"date_purchased"`
	Cost          *float64 `json:"cost"`
	SerialNumber  *string  `json:"serial_number"`
}

// updateAssetRequest は資産更新リクエストのボディ。
// serial_numberはキーの有無で「変更しない」と「削除する（null）」を区別する。
type updateAssetRequest struct {
	Name          *string         `json:"name"`
	CategoryID    *string         `json:"category_id"`
	DepartmentID  *string         `json:"department_id"`
	DatePurchased *string         `json:"date_purchased"`
	Cost          *float64        `json:"cost"`
	SerialNumber  json.RawMessage `json:"serial_number"`
}

// assetResponse は資産情報のAPIレスポンス。
type assetResponse struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	CategoryID    string  `json:"category_id"`
	DepartmentID  string  `json:"department_id"`
	DatePurchased string  `json:"date_purchased"`
	Cost          float64 `json:"cost"`
	SerialNumber  *string `json:"serial_number"`
	CreatedBy     string  `json:"created_by"`
	CreatedAt     string  `json:"created_at"`
}

// assetListResponse は資産一覧のAPIレスポンス。
type assetListResponse struct {
	Success bool            `json:"success"`
	Assets  []assetResponse `json:"assets"`
}

// assetMutationResponse は資産登録・取得・更新のAPIレスポンス。
type assetMutationResponse struct {
	Success bool          `json:"success"`
	Asset   assetResponse `json:"asset"`
}

// List は資産一覧を返す。管理者は全件、非管理者は自分が登録した資産のみ。
// GET /api/assets
func (h *AssetHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	assets, err := h.service.List(r.Context(), identity.UserID, identity.IsAdmin())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := assetListResponse{
		Success: true,
		Assets:  make([]assetResponse, 0, len(assets)),
	}
	for _, a := range assets {
		resp.Assets = append(resp.Assets, toAssetResponse(a))
	}

	writeJSON(w, http.StatusOK, resp)
}

// Get は資産詳細を返す。
// GET /api/assets/:id
func (h *AssetHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	id := chi.URLParam(r, "id")

	found, err := h.service.Get(r.Context(), identity.UserID, identity.IsAdmin(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, assetMutationResponse{
		Success: true,
		Asset:   toAssetResponse(found),
	})
}

// Create は資産を登録する。
// POST /api/assets
func (h *AssetHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req createAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	datePurchased, err := time.Parse(dateLayout, req.DatePurchased)
	if err != nil {
		handleServiceError(w, model.NewValidationError("date_purchased"))
		return
	}
	if req.Cost == nil {
		handleServiceError(w, model.NewValidationError("cost"))
		return
	}

	created, err := h.service.Create(r.Context(), identity.UserID, asset.CreateParams{
		Name:          req.Name,
		CategoryID:    req.CategoryID,
		DepartmentID:  req.DepartmentID,
		DatePurchased: datePurchased,
		Cost:          *req.Cost,
		SerialNumber:  req.SerialNumber,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, assetMutationResponse{
		Success: true,
		Asset:   toAssetResponse(created),
	})
}

// Update は資産を更新する。管理者専用。
// PATCH /api/assets/:id
func (h *AssetHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	params := asset.UpdateParams{
		Name:         req.Name,
		CategoryID:   req.CategoryID,
		DepartmentID: req.DepartmentID,
		Cost:         req.Cost,
	}
	if req.DatePurchased != nil {
		datePurchased, err := time.Parse(dateLayout, *req.DatePurchased)
		if err != nil {
			handleServiceError(w, model.NewValidationError("date_purchased"))
			return
		}
		params.DatePurchased = &datePurchased
	}
	if len(req.SerialNumber) > 0 {
		params.SerialNumberSet = true
		if string(req.SerialNumber) != "null" {
			var serial string
			if err := json.Unmarshal(req.SerialNumber, &serial); err != nil {
				handleServiceError(w, model.NewValidationError("serial_number"))
				return
			}
			params.SerialNumber = &serial
		}
	}

	updated, err := h.service.Update(r.Context(), id, params)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, assetMutationResponse{
		Success: true,
		Asset:   toAssetResponse(updated),
	})
}

// Delete は資産を削除する。管理者専用。
// DELETE /api/assets/:id
func (h *AssetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// toAssetResponse はmodel.AssetからAPIレスポンスに変換する。
func toAssetResponse(a *model.Asset) assetResponse {
	return assetResponse{
		ID:            a.ID,
		Name:          a.Name,
		CategoryID:    a.CategoryID,
		DepartmentID:  a.DepartmentID,
		DatePurchased: a.DatePurchased.Format(dateLayout),
		Cost:          a.Cost,
		SerialNumber:  a.SerialNumber,
		CreatedBy:     a.CreatedBy,
		CreatedAt:     a.CreatedAt.Format(time.RFC3339),
	}
}
