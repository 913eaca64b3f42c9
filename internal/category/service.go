// Package category はカテゴリ管理のドメインロジックを提供する。
package category

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/assetman/internal/model"
	"github.com/hitoshi/assetman/internal/repository"
)

// Service はカテゴリ管理のサービス層。
type Service struct {
	categoryRepo repository.CategoryRepository
	assetRepo    repository.AssetRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(categoryRepo repository.CategoryRepository, assetRepo repository.AssetRepository) *Service {
	return &Service{
		categoryRepo: categoryRepo,
		assetRepo:    assetRepo,
	}
}

// List は全カテゴリを名前の昇順で返す。
func (s *Service) List(ctx context.Context) ([]*model.Category, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("カテゴリ一覧の取得に失敗しました: %w", err)
	}
	return categories, nil
}

// Create はカテゴリを作成する。名前は前後の空白を除去して保存する。
func (s *Service) Create(ctx context.Context, name string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.NewValidationError("name")
	}

	now := time.Now()
	category := &model.Category{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.NewDuplicateNameError(name)
		}
		return nil, fmt.Errorf("カテゴリの作成に失敗しました: %w", err)
	}

	return category, nil
}

// Update はカテゴリを部分更新する。指定された空でないフィールドのみ適用する。
func (s *Service) Update(ctx context.Context, id string, name *string) (*model.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("カテゴリの取得に失敗しました: %w", err)
	}
	if category == nil {
		return nil, model.NewCategoryNotFoundError(id)
	}

	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, model.NewValidationError("name")
		}
		category.Name = trimmed
	}
	category.UpdatedAt = time.Now()

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.NewDuplicateNameError(category.Name)
		}
		return nil, fmt.Errorf("カテゴリの更新に失敗しました: %w", err)
	}

	return category, nil
}

// Delete はカテゴリを削除する。参照している資産が1件でもあれば削除を拒否する。
func (s *Service) Delete(ctx context.Context, id string) error {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("カテゴリの取得に失敗しました: %w", err)
	}
	if category == nil {
		return model.NewCategoryNotFoundError(id)
	}

	count, err := s.assetRepo.CountByCategoryID(ctx, id)
	if err != nil {
		return fmt.Errorf("カテゴリの参照チェックに失敗しました: %w", err)
	}
	if count > 0 {
		return model.NewResourceInUseError("カテゴリ", "資産")
	}

	if err := s.categoryRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("カテゴリの削除に失敗しました: %w", err)
	}

	return nil
}
