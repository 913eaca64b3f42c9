package warranty

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/assetman/internal/model"
)

// Client は外部保証サービスのHTTPクライアント。
// デバイス一覧取得と保証登録のエンドポイントを呼び出す。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string // テスト用にベースURLを差し替え可能
}

// NewClient はClientの新しいインスタンスを生成する。
func NewClient(httpClient *http.Client, logger *slog.Logger, baseURL string) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		baseURL:    baseURL,
	}
}

// deviceResponse は保証サービスのデバイスレコードのJSON表現。
type deviceResponse struct {
	ID                   string    `json:"id"`
	ProductName          string    `json:"product_name"`
	SerialNumber         string    `json:"serial_number"`
	OwnerName            string    `json:"owner_name"`
	OwnerEmail           string    `json:"owner_email"`
	Manufacturer         string    `json:"manufacturer"`
	PurchaseDate         time.Time `json:"purchase_date"`
	RegistrationDate     time.Time `json:"registration_date"`
	WarrantyPeriodMonths int       `json:"warranty_period_months"`
}

func (d *deviceResponse) toModel() *model.WarrantyDevice {
	return &model.WarrantyDevice{
		ID:                   d.ID,
		ProductName:          d.ProductName,
		SerialNumber:         d.SerialNumber,
		OwnerName:            d.OwnerName,
		OwnerEmail:           d.OwnerEmail,
		Manufacturer:         d.Manufacturer,
		PurchaseDate:         d.PurchaseDate,
		RegistrationDate:     d.RegistrationDate,
		WarrantyPeriodMonths: d.WarrantyPeriodMonths,
	}
}

// registerRequest は保証登録リクエストのJSON表現。
// ペイロードの形は保証サービスのスキーマに合わせた固定形式。
type registerRequest struct {
	ProductName          string    `json:"product_name"`
	SerialNumber         string    `json:"serial_number"`
	Manufacturer         string    `json:"manufacturer"`
	OwnerName            string    `json:"owner_name"`
	OwnerEmail           string    `json:"owner_email"`
	CategoryName         string    `json:"category_name"`
	DepartmentName       string    `json:"department_name"`
	PurchaseDate         time.Time `json:"purchase_date"`
	Cost                 float64   `json:"cost"`
	WarrantyPeriodMonths int       `json:"warranty_period_months"`
}

// ListDevices は保証サービスから全デバイスを取得する。
func (c *Client) ListDevices(ctx context.Context) ([]*model.WarrantyDevice, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/devices", nil)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("保証サービスの呼び出しに失敗しました",
			slog.String("operation", "list_devices"),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("保証サービスがエラーステータスを返しました",
			slog.String("operation", "list_devices"),
			slog.Int("http_status", resp.StatusCode),
		)
		return nil, fmt.Errorf("保証サービスがステータス %d を返しました", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}

	var records []deviceResponse
	if err := json.Unmarshal(body, &records); err != nil {
		c.logger.Error("保証サービスのレスポンスのパースに失敗しました",
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("レスポンスJSONのパースに失敗しました: %w", err)
	}

	devices := make([]*model.WarrantyDevice, 0, len(records))
	for i := range records {
		devices = append(devices, records[i].toModel())
	}

	return devices, nil
}

// RegisterDevice は保証サービスにデバイスを登録する。
// リトライも冪等キーも持たない。重複登録の扱いは保証サービス側の責任。
func (c *Client) RegisterDevice(ctx context.Context, registration *model.WarrantyRegistration) (*model.WarrantyDevice, error) {
	payload, err := json.Marshal(registerRequest{
		ProductName:          registration.ProductName,
		SerialNumber:         registration.SerialNumber,
		Manufacturer:         registration.Manufacturer,
		OwnerName:            registration.OwnerName,
		OwnerEmail:           registration.OwnerEmail,
		CategoryName:         registration.CategoryName,
		DepartmentName:       registration.DepartmentName,
		PurchaseDate:         registration.PurchaseDate,
		Cost:                 registration.Cost,
		WarrantyPeriodMonths: registration.WarrantyPeriodMonths,
	})
	if err != nil {
		return nil, fmt.Errorf("登録リクエストのエンコードに失敗しました: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/devices", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("保証サービスの呼び出しに失敗しました",
			slog.String("operation", "register_device"),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		c.logger.Error("保証サービスがエラーステータスを返しました",
			slog.String("operation", "register_device"),
			slog.Int("http_status", resp.StatusCode),
		)
		return nil, fmt.Errorf("保証サービスがステータス %d を返しました", resp.StatusCode)
	}

	var record deviceResponse
	if err := json.Unmarshal(body, &record); err != nil {
		c.logger.Error("保証サービスのレスポンスのパースに失敗しました",
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("レスポンスJSONのパースに失敗しました: %w", err)
	}

	return record.toModel(), nil
}
