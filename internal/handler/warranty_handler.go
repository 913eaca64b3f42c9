package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/assetman/internal/middleware"
	"github.com/hitoshi/assetman/internal/model"
	"github.com/hitoshi/assetman/internal/warranty"
)

// WarrantyServiceInterface は保証ハンドラーが必要とするサービスインターフェース。
type WarrantyServiceInterface interface {
	// Register は資産を外部保証サービスに登録する。
	Register(ctx context.Context, callerID, assetID string, input warranty.RegisterInput) (*model.WarrantyDevice, error)
	// List は保証サービスの全デバイスをステータス付きで返す。
	List(ctx context.Context) (*warranty.DeviceList, error)
}

// WarrantyHandler は保証登録プロキシと保証状況一覧のHTTPハンドラー。
type WarrantyHandler struct {
	service WarrantyServiceInterface
}

// NewWarrantyHandler はWarrantyHandlerを生成する。
func NewWarrantyHandler(service WarrantyServiceInterface) *WarrantyHandler {
	return &WarrantyHandler{service: service}
}

// registerWarrantyRequest は保証登録リクエストのボディ。すべて省略可能。
type registerWarrantyRequest struct {
	SerialNumber         string `json:"serial_number"`
	Manufacturer         string `json:"manufacturer"`
	WarrantyPeriodMonths int    `json:"warranty_period_months"`
}

// warrantyDeviceResponse は保証デバイスのAPIレスポンス。
type warrantyDeviceResponse struct {
	ID                   string  `json:"id"`
	ProductName          string  `json:"product_name"`
	SerialNumber         string  `json:"serial_number"`
	OwnerName            string  `json:"owner_name"`
	OwnerEmail           string  `json:"owner_email"`
	Manufacturer         string  `json:"manufacturer"`
	PurchaseDate         string  `json:"purchase_date"`
	RegistrationDate     string  `json:"registration_date"`
	WarrantyPeriodMonths int     `json:"warranty_period_months"`
	Status               *string `json:"status,omitempty"`
	DaysRemaining        *int    `json:"days_remaining,omitempty"`
}

// registerWarrantyResponse は保証登録のAPIレスポンス。
type registerWarrantyResponse struct {
	Success bool                   `json:"success"`
	Device  warrantyDeviceResponse `json:"device"`
}

// warrantySummaryResponse はステータス別集計のAPIレスポンス。
type warrantySummaryResponse struct {
	Total        int `json:"total"`
	Active       int `json:"active"`
	ExpiringSoon int `json:"expiring_soon"`
	Expired      int `json:"expired"`
}

// warrantyListResponse は保証状況一覧のAPIレスポンス。
type warrantyListResponse struct {
	Success bool                     `json:"success"`
	Devices []warrantyDeviceResponse `json:"devices"`
	Summary warrantySummaryResponse  `json:"summary"`
}

// Register は資産の保証登録を処理する。資産の所有者のみ実行できる。
// POST /api/assets/:id/warranty
func (h *WarrantyHandler) Register(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	assetID := chi.URLParam(r, "id")

	// ボディは省略可能。存在する場合のみデコードする。
	var req registerWarrantyRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeInvalidRequest(w)
			return
		}
	}

	device, err := h.service.Register(r.Context(), identity.UserID, assetID, warranty.RegisterInput{
		SerialNumber:         req.SerialNumber,
		Manufacturer:         req.Manufacturer,
		WarrantyPeriodMonths: req.WarrantyPeriodMonths,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, registerWarrantyResponse{
		Success: true,
		Device:  toWarrantyDeviceResponse(device, nil),
	})
}

// List は保証サービスの全デバイスをステータスと集計付きで返す。管理者専用。
// GET /api/warranties
func (h *WarrantyHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := warrantyListResponse{
		Success: true,
		Devices: make([]warrantyDeviceResponse, 0, len(list.Devices)),
		Summary: warrantySummaryResponse{
			Total:        list.Summary.Total,
			Active:       list.Summary.Active,
			ExpiringSoon: list.Summary.ExpiringSoon,
			Expired:      list.Summary.Expired,
		},
	}
	for i := range list.Devices {
		resp.Devices = append(resp.Devices, toWarrantyDeviceResponse(list.Devices[i].Device, &list.Devices[i]))
	}

	writeJSON(w, http.StatusOK, resp)
}

// toWarrantyDeviceResponse はmodel.WarrantyDeviceからAPIレスポンスに変換する。
// statusがnilでない場合はステータスと残日数を付与する。
func toWarrantyDeviceResponse(device *model.WarrantyDevice, status *warranty.DeviceStatus) warrantyDeviceResponse {
	resp := warrantyDeviceResponse{
		ID:                   device.ID,
		ProductName:          device.ProductName,
		SerialNumber:         device.SerialNumber,
		OwnerName:            device.OwnerName,
		OwnerEmail:           device.OwnerEmail,
		Manufacturer:         device.Manufacturer,
		PurchaseDate:         device.PurchaseDate.Format(dateLayout),
		RegistrationDate:     device.RegistrationDate.Format(time.RFC3339),
		WarrantyPeriodMonths: device.WarrantyPeriodMonths,
	}
	if status != nil {
		s := string(status.Status)
		d := status.DaysRemaining
		resp.Status = &s
		resp.DaysRemaining = &d
	}
	return resp
}
