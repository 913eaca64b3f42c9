// Package department は部署管理のドメインロジックを提供する。
package department

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/hitoshi/assetman/internal/model"
	"github.com/hitoshi/assetman/internal/repository"
)

// Service は部署管理のサービス層。
// 一覧取得、作成、更新、参照チェック付き削除のビジネスロジックを提供する。
type Service struct {
	deptRepo  repository.DepartmentRepository
	userRepo  repository.UserRepository
	assetRepo repository.AssetRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	deptRepo repository.DepartmentRepository,
	userRepo repository.UserRepository,
	assetRepo repository.AssetRepository,
) *Service {
	return &Service{
		deptRepo:  deptRepo,
		userRepo:  userRepo,
		assetRepo: assetRepo,
	}
}

// List は全部署を名前の昇順で返す。
func (s *Service) List(ctx context.Context) ([]*model.Department, error) {
	departments, err := s.deptRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("部署一覧の取得に失敗しました: %w", err)
	}
	return departments, nil
}

// Create は部署を作成する。名前は前後の空白を除去して保存する。
func (s *Service) Create(ctx context.Context, name string) (*model.Department, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.NewValidationError("name")
	}

	now := time.Now()
	dept := &model.Department{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.deptRepo.Create(ctx, dept); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.NewDuplicateNameError(name)
		}
		return nil, fmt.Errorf("部署の作成に失敗しました: %w", err)
	}

	return dept, nil
}

// Update は部署を部分更新する。指定された空でないフィールドのみ適用する。
func (s *Service) Update(ctx context.Context, id string, name *string) (*model.Department, error) {
	dept, err := s.deptRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("部署の取得に失敗しました: %w", err)
	}
	if dept == nil {
		return nil, model.NewDepartmentNotFoundError(id)
	}

	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, model.NewValidationError("name")
		}
		dept.Name = trimmed
	}
	dept.UpdatedAt = time.Now()

	if err := s.deptRepo.Update(ctx, dept); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.NewDuplicateNameError(dept.Name)
		}
		return nil, fmt.Errorf("部署の更新に失敗しました: %w", err)
	}

	return dept, nil
}

// Delete は部署を削除する。
// 参照しているユーザーまたは資産が1件でもあれば削除を拒否する。
// ストアのrestrict-on-delete制約の手前で説明的なエラーを返すための手動ガード。
// 2つの参照チェックは順序を保証しない並行ペアとして実行する。
func (s *Service) Delete(ctx context.Context, id string) error {
	dept, err := s.deptRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("部署の取得に失敗しました: %w", err)
	}
	if dept == nil {
		return model.NewDepartmentNotFoundError(id)
	}

	var userCount, assetCount int
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		userCount, err = s.userRepo.CountByDepartmentID(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		assetCount, err = s.assetRepo.CountByDepartmentID(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("部署の参照チェックに失敗しました: %w", err)
	}

	if userCount > 0 || assetCount > 0 {
		return model.NewResourceInUseError("部署", "ユーザーまたは資産")
	}

	if err := s.deptRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("部署の削除に失敗しました: %w", err)
	}

	return nil
}
