package category

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/assetman/internal/model"
	"github.com/hitoshi/assetman/internal/repository"
)

// --- モック定義 ---

// mockCategoryRepo はrepository.CategoryRepositoryのモック実装。
type mockCategoryRepo struct {
	findByIDFn   func(ctx context.Context, id string) (*model.Category, error)
	listFn       func(ctx context.Context) ([]*model.Category, error)
	createFn     func(ctx context.Context, category *model.Category) error
	updateFn     func(ctx context.Context, category *model.Category) error
	deleteByIDFn func(ctx context.Context, id string) error
}

func (m *mockCategoryRepo) FindByID(ctx context.Context, id string) (*model.Category, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockCategoryRepo) List(ctx context.Context) ([]*model.Category, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockCategoryRepo) Create(ctx context.Context, category *model.Category) error {
	if m.createFn != nil {
		return m.createFn(ctx, category)
	}
	return nil
}

func (m *mockCategoryRepo) Update(ctx context.Context, category *model.Category) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, category)
	}
	return nil
}

func (m *mockCategoryRepo) DeleteByID(ctx context.Context, id string) error {
	if m.deleteByIDFn != nil {
		return m.deleteByIDFn(ctx, id)
	}
	return nil
}

// mockAssetCounter はrepository.AssetRepositoryのモック実装。カテゴリの参照チェックのみ使用する。
type mockAssetCounter struct {
	countByCategoryIDFn func(ctx context.Context, categoryID string) (int, error)
}

func (m *mockAssetCounter) FindByID(ctx context.Context, id string) (*model.Asset, error) {
	return nil, nil
}
func (m *mockAssetCounter) List(ctx context.Context) ([]*model.Asset, error) { return nil, nil }
func (m *mockAssetCounter) ListByCreatedBy(ctx context.Context, userID string) ([]*model.Asset, error) {
	return nil, nil
}
func (m *mockAssetCounter) Create(ctx context.Context, asset *model.Asset) error { return nil }
func (m *mockAssetCounter) Update(ctx context.Context, asset *model.Asset) error { return nil }
func (m *mockAssetCounter) DeleteByID(ctx context.Context, id string) error      { return nil }
func (m *mockAssetCounter) CountByDepartmentID(ctx context.Context, departmentID string) (int, error) {
	return 0, nil
}
func (m *mockAssetCounter) CountByCreatedBy(ctx context.Context, userID string) (int, error) {
	return 0, nil
}

func (m *mockAssetCounter) CountByCategoryID(ctx context.Context, categoryID string) (int, error) {
	if m.countByCategoryIDFn != nil {
		return m.countByCategoryIDFn(ctx, categoryID)
	}
	return 0, nil
}

// --- テスト ---

func TestService_Create_TrimsName(t *testing.T) {
	var created *model.Category
	repo := &mockCategoryRepo{
		createFn: func(ctx context.Context, category *model.Category) error {
			created = category
			return nil
		},
	}
	svc := NewService(repo, &mockAssetCounter{})

	category, err := svc.Create(context.Background(), "  Electronics  ")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if category.Name != "Electronics" {
		t.Errorf("Name = %q, want %q", category.Name, "Electronics")
	}
	if created == nil || created.ID == "" {
		t.Error("created category must have a generated id")
	}
}

func TestService_Create_EmptyNameRejected(t *testing.T) {
	svc := NewService(&mockCategoryRepo{}, &mockAssetCounter{})

	_, err := svc.Create(context.Background(), "")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeValidationFailed {
		t.Errorf("error = %v, want code %s", err, model.ErrCodeValidationFailed)
	}
}

func TestService_Create_DuplicateName(t *testing.T) {
	repo := &mockCategoryRepo{
		createFn: func(ctx context.Context, category *model.Category) error {
			return repository.ErrDuplicate
		},
	}
	svc := NewService(repo, &mockAssetCounter{})

	_, err := svc.Create(context.Background(), "Electronics")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeDuplicateName {
		t.Errorf("error = %v, want code %s", err, model.ErrCodeDuplicateName)
	}
}

func TestService_Update_RenamesCategory(t *testing.T) {
	var updated *model.Category
	repo := &mockCategoryRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Category, error) {
			return &model.Category{ID: id, Name: "Electronics"}, nil
		},
		updateFn: func(ctx context.Context, category *model.Category) error {
			updated = category
			return nil
		},
	}
	svc := NewService(repo, &mockAssetCounter{})

	name := "周辺機器"
	category, err := svc.Update(context.Background(), "cat-1", &name)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if category.Name != "周辺機器" {
		t.Errorf("Name = %q, want %q", category.Name, "周辺機器")
	}
	if updated == nil {
		t.Error("Update was not called")
	}
}

func TestService_Update_NotFound(t *testing.T) {
	svc := NewService(&mockCategoryRepo{}, &mockAssetCounter{})

	name := "周辺機器"
	_, err := svc.Update(context.Background(), "missing", &name)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeCategoryNotFound {
		t.Errorf("error = %v, want code %s", err, model.ErrCodeCategoryNotFound)
	}
}

func TestService_Delete_BlockedByReferencingAssets(t *testing.T) {
	repo := &mockCategoryRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Category, error) {
			return &model.Category{ID: id, Name: "Electronics"}, nil
		},
		deleteByIDFn: func(ctx context.Context, id string) error {
			t.Error("DeleteByID must not be called when references exist")
			return nil
		},
	}
	assets := &mockAssetCounter{
		countByCategoryIDFn: func(ctx context.Context, categoryID string) (int, error) {
			return 2, nil
		},
	}
	svc := NewService(repo, assets)

	err := svc.Delete(context.Background(), "cat-1")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeResourceInUse {
		t.Errorf("error = %v, want code %s", err, model.ErrCodeResourceInUse)
	}
}

func TestService_Delete_Success(t *testing.T) {
	deleted := false
	repo := &mockCategoryRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Category, error) {
			return &model.Category{ID: id, Name: "Electronics"}, nil
		},
		deleteByIDFn: func(ctx context.Context, id string) error {
			deleted = true
			return nil
		},
	}
	svc := NewService(repo, &mockAssetCounter{})

	if err := svc.Delete(context.Background(), "cat-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if !deleted {
		t.Error("DeleteByID was not called")
	}
}
