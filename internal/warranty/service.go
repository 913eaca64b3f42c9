package warranty

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hitoshi/assetman/internal/metrics"
	"github.com/hitoshi/assetman/internal/model"
	"github.com/hitoshi/assetman/internal/repository"
)

// DeviceClient は保証サービスクライアントのインターフェース。
// 本番実装はClient。テストではモックに差し替える。
type DeviceClient interface {
	// ListDevices は全デバイスを取得する。
	ListDevices(ctx context.Context) ([]*model.WarrantyDevice, error)
	// RegisterDevice はデバイスを登録する。
	RegisterDevice(ctx context.Context, registration *model.WarrantyRegistration) (*model.WarrantyDevice, error)
}

// Service は保証登録プロキシと保証状況一覧のサービス層。
type Service struct {
	client        DeviceClient
	assetRepo     repository.AssetRepository
	userRepo      repository.UserRepository
	categoryRepo  repository.CategoryRepository
	deptRepo      repository.DepartmentRepository
	collector     metrics.MetricsCollector
	defaultMonths int
	now           func() time.Time // テスト用に現在時刻を差し替え可能
}

// NewService はServiceの新しいインスタンスを生成する。
// defaultMonthsがゼロ以下の場合は12ヶ月を使用する。
func NewService(
	client DeviceClient,
	assetRepo repository.AssetRepository,
	userRepo repository.UserRepository,
	categoryRepo repository.CategoryRepository,
	deptRepo repository.DepartmentRepository,
	collector metrics.MetricsCollector,
	defaultMonths int,
) *Service {
	if defaultMonths <= 0 {
		defaultMonths = 12
	}
	return &Service{
		client:        client,
		assetRepo:     assetRepo,
		userRepo:      userRepo,
		categoryRepo:  categoryRepo,
		deptRepo:      deptRepo,
		collector:     collector,
		defaultMonths: defaultMonths,
		now:           time.Now,
	}
}

// RegisterInput は保証登録のオプション入力。
type RegisterInput struct {
	// SerialNumber は呼び出し元が指定するシリアル番号。
	// 空の場合は資産のシリアル番号、それも無ければ資産IDを使用する。
	SerialNumber string
	// Manufacturer はメーカー名。省略可能。
	Manufacturer string
	// WarrantyPeriodMonths は保証期間（月数）。ゼロ以下の場合はデフォルト値を使用する。
	WarrantyPeriodMonths int
}

// Register は資産を外部保証サービスに登録する。
// 資産の所有者のみ登録でき、所有者以外の場合は外部サービスを呼ばずに拒否する。
// 外部サービスの失敗は詳細をログに記録し、ユーザーには一般的なエラーを返す。
func (s *Service) Register(ctx context.Context, callerID, assetID string, input RegisterInput) (*model.WarrantyDevice, error) {
	asset, err := s.assetRepo.FindByID(ctx, assetID)
	if err != nil {
		return nil, fmt.Errorf("資産の取得に失敗しました: %w", err)
	}
	if asset == nil {
		return nil, model.NewAssetNotFoundError(assetID)
	}
	if asset.CreatedBy != callerID {
		return nil, model.NewForbiddenError()
	}

	owner, err := s.userRepo.FindByID(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if owner == nil {
		return nil, model.NewUnauthorizedError()
	}

	category, err := s.categoryRepo.FindByID(ctx, asset.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("カテゴリの取得に失敗しました: %w", err)
	}
	dept, err := s.deptRepo.FindByID(ctx, asset.DepartmentID)
	if err != nil {
		return nil, fmt.Errorf("部署の取得に失敗しました: %w", err)
	}

	registration := &model.WarrantyRegistration{
		ProductName:          asset.Name,
		SerialNumber:         s.resolveSerialNumber(asset, input.SerialNumber),
		Manufacturer:         strings.TrimSpace(input.Manufacturer),
		OwnerName:            owner.Name,
		OwnerEmail:           owner.Email,
		PurchaseDate:         asset.DatePurchased,
		Cost:                 asset.Cost,
		WarrantyPeriodMonths: input.WarrantyPeriodMonths,
	}
	if registration.WarrantyPeriodMonths <= 0 {
		registration.WarrantyPeriodMonths = s.defaultMonths
	}
	if category != nil {
		registration.CategoryName = category.Name
	}
	if dept != nil {
		registration.DepartmentName = dept.Name
	}

	start := s.now()
	device, err := s.client.RegisterDevice(ctx, registration)
	s.collector.RecordWarrantyLatency(time.Since(start))
	if err != nil {
		s.collector.RecordWarrantyRegistrationFailure()
		slog.Error("warranty registration failed",
			slog.String("asset_id", assetID),
			slog.String("user_id", callerID),
			slog.String("error", err.Error()),
		)
		return nil, model.NewWarrantyDownstreamError()
	}
	s.collector.RecordWarrantyRegistrationSuccess()

	slog.Info("warranty registered",
		slog.String("asset_id", assetID),
		slog.String("device_id", device.ID),
	)

	return device, nil
}

// resolveSerialNumber はシリアル番号を決定する。
// 呼び出し元指定 → 資産のシリアル番号 → 資産ID の順でフォールバックする。
func (s *Service) resolveSerialNumber(asset *model.Asset, requested string) string {
	if trimmed := strings.TrimSpace(requested); trimmed != "" {
		return trimmed
	}
	if asset.SerialNumber != nil && *asset.SerialNumber != "" {
		return *asset.SerialNumber
	}
	return asset.ID
}

// DeviceStatus は保証ステータスを付与したデバイスレコード。
type DeviceStatus struct {
	Device        *model.WarrantyDevice
	Status        model.WarrantyStatus
	DaysRemaining int
}

// Summary はデバイス一覧のステータス別集計。
// 集計も個々のステータスと同じ暦月計算を使用する（30日近似は使わない）。
type Summary struct {
	Total        int
	Active       int
	ExpiringSoon int
	Expired      int
}

// DeviceList は保証状況一覧のレスポンス。
type DeviceList struct {
	Devices []DeviceStatus
	Summary Summary
}

// List は保証サービスから全デバイスを取得し、ステータスと集計を付与して返す。
func (s *Service) List(ctx context.Context) (*DeviceList, error) {
	start := s.now()
	devices, err := s.client.ListDevices(ctx)
	s.collector.RecordWarrantyLatency(time.Since(start))
	if err != nil {
		slog.Error("warranty device list fetch failed",
			slog.String("error", err.Error()),
		)
		return nil, model.NewWarrantyDownstreamError()
	}

	now := s.now()
	list := &DeviceList{
		Devices: make([]DeviceStatus, 0, len(devices)),
		Summary: Summary{Total: len(devices)},
	}
	for _, device := range devices {
		status, days := Classify(device.RegistrationDate, device.WarrantyPeriodMonths, now)
		list.Devices = append(list.Devices, DeviceStatus{
			Device:        device,
			Status:        status,
			DaysRemaining: days,
		})
		switch status {
		case model.WarrantyStatusActive:
			list.Summary.Active++
		case model.WarrantyStatusExpiringSoon:
			list.Summary.ExpiringSoon++
		case model.WarrantyStatusExpired:
			list.Summary.Expired++
		}
	}

	return list, nil
}
