// Package asset は資産管理のドメインロジックを提供する。
package asset

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/assetman/internal/model"
	"github.com/hitoshi/assetman/internal/repository"
)

// Service は資産管理のサービス層。
// 非管理者の参照は所有資産のスコープに制限される。
type Service struct {
	assetRepo    repository.AssetRepository
	categoryRepo repository.CategoryRepository
	deptRepo     repository.DepartmentRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	assetRepo repository.AssetRepository,
	categoryRepo repository.CategoryRepository,
	deptRepo repository.DepartmentRepository,
) *Service {
	return &Service{
		assetRepo:    assetRepo,
		categoryRepo: categoryRepo,
		deptRepo:     deptRepo,
	}
}

// List は資産一覧を返す。
// 管理者は全資産、非管理者は自分が登録した資産のみ。
// スコープ制限はクエリ実行前に適用され、取得後のフィルタリングは行わない。
func (s *Service) List(ctx context.Context, callerID string, isAdmin bool) ([]*model.Asset, error) {
	var (
		assets []*model.Asset
		err    error
	)
	if isAdmin {
		assets, err = s.assetRepo.List(ctx)
	} else {
		assets, err = s.assetRepo.ListByCreatedBy(ctx, callerID)
	}
	if err != nil {
		return nil, fmt.Errorf("資産一覧の取得に失敗しました: %w", err)
	}
	return assets, nil
}

// Get は指定IDの資産を返す。
// 非管理者が他人の資産を指定した場合、存在の有無を漏らさないよう未検出として扱う。
func (s *Service) Get(ctx context.Context, callerID string, isAdmin bool, id string) (*model.Asset, error) {
	asset, err := s.assetRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("資産の取得に失敗しました: %w", err)
	}
	if asset == nil {
		return nil, model.NewAssetNotFoundError(id)
	}
	if !isAdmin && asset.CreatedBy != callerID {
		return nil, model.NewAssetNotFoundError(id)
	}
	return asset, nil
}

// CreateParams は資産登録の入力。
type CreateParams struct {
	Name          string
	CategoryID    string
	DepartmentID  string
	DatePurchased time.Time
	Cost          float64
	SerialNumber  *string
}

// Create は資産を登録する。所有者は呼び出し元ユーザーに固定される。
// カテゴリと部署の存在を事前に検証する。
func (s *Service) Create(ctx context.Context, callerID string, params CreateParams) (*model.Asset, error) {
	params.Name = strings.TrimSpace(params.Name)
	if params.Name == "" {
		return nil, model.NewValidationError("name")
	}
	if params.DatePurchased.IsZero() {
		return nil, model.NewValidationError("datePurchased")
	}
	if params.Cost < 0 {
		return nil, model.NewValidationError("cost")
	}

	category, err := s.categoryRepo.FindByID(ctx, params.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("カテゴリの取得に失敗しました: %w", err)
	}
	if category == nil {
		return nil, model.NewCategoryNotFoundError(params.CategoryID)
	}

	dept, err := s.deptRepo.FindByID(ctx, params.DepartmentID)
	if err != nil {
		return nil, fmt.Errorf("部署の取得に失敗しました: %w", err)
	}
	if dept == nil {
		return nil, model.NewDepartmentNotFoundError(params.DepartmentID)
	}

	now := time.Now()
	asset := &model.Asset{
		ID:            uuid.New().String(),
		Name:          params.Name,
		CategoryID:    params.CategoryID,
		DepartmentID:  params.DepartmentID,
		DatePurchased: params.DatePurchased,
		Cost:          params.Cost,
		SerialNumber:  params.SerialNumber,
		CreatedBy:     callerID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.assetRepo.Create(ctx, asset); err != nil {
		return nil, fmt.Errorf("資産の登録に失敗しました: %w", err)
	}

	return asset, nil
}

// UpdateParams は資産部分更新の入力。nilのフィールドは変更しない。
// SerialNumberSetがtrueでSerialNumberがnilの場合はシリアル番号を削除する。
type UpdateParams struct {
	Name            *string
	CategoryID      *string
	DepartmentID    *string
	DatePurchased   *time.Time
	Cost            *float64
	SerialNumber    *string
	SerialNumberSet bool
}

// Update は資産を部分更新する。所有者は変更できない。
func (s *Service) Update(ctx context.Context, id string, params UpdateParams) (*model.Asset, error) {
	asset, err := s.assetRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("資産の取得に失敗しました: %w", err)
	}
	if asset == nil {
		return nil, model.NewAssetNotFoundError(id)
	}

	if params.Name != nil {
		trimmed := strings.TrimSpace(*params.Name)
		if trimmed == "" {
			return nil, model.NewValidationError("name")
		}
		asset.Name = trimmed
	}
	if params.CategoryID != nil {
		category, err := s.categoryRepo.FindByID(ctx, *params.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("カテゴリの取得に失敗しました: %w", err)
		}
		if category == nil {
			return nil, model.NewCategoryNotFoundError(*params.CategoryID)
		}
		asset.CategoryID = *params.CategoryID
	}
	if params.DepartmentID != nil {
		dept, err := s.deptRepo.FindByID(ctx, *params.DepartmentID)
		if err != nil {
			return nil, fmt.Errorf("部署の取得に失敗しました: %w", err)
		}
		if dept == nil {
			return nil, model.NewDepartmentNotFoundError(*params.DepartmentID)
		}
		asset.DepartmentID = *params.DepartmentID
	}
	if params.DatePurchased != nil {
		if params.DatePurchased.IsZero() {
			return nil, model.NewValidationError("datePurchased")
		}
		asset.DatePurchased = *params.DatePurchased
	}
	if params.Cost != nil {
		if *params.Cost < 0 {
			return nil, model.NewValidationError("cost")
		}
		asset.Cost = *params.Cost
	}
	if params.SerialNumberSet {
		asset.SerialNumber = params.SerialNumber
	}
	asset.UpdatedAt = time.Now()

	if err := s.assetRepo.Update(ctx, asset); err != nil {
		return nil, fmt.Errorf("資産の更新に失敗しました: %w", err)
	}

	return asset, nil
}

// Delete は資産を削除する。
func (s *Service) Delete(ctx context.Context, id string) error {
	asset, err := s.assetRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("資産の取得に失敗しました: %w", err)
	}
	if asset == nil {
		return model.NewAssetNotFoundError(id)
	}

	if err := s.assetRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("資産の削除に失敗しました: %w", err)
	}

	return nil
}
