package user

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/assetman/internal/auth"
	"github.com/hitoshi/assetman/internal/model"
)

// --- モック定義 ---

// mockProvisioner はAccountProvisionerのモック実装。
type mockProvisioner struct {
	adminCreateUserFn func(ctx context.Context, email, password, name string) (*auth.ProviderUser, error)
	adminDeleteUserFn func(ctx context.Context, providerUserID string) error

	createCalls int
	deleteCalls int
}

func (m *mockProvisioner) AdminCreateUser(ctx context.Context, email, password, name string) (*auth.ProviderUser, error) {
	m.createCalls++
	if m.adminCreateUserFn != nil {
		return m.adminCreateUserFn(ctx, email, password, name)
	}
	return &auth.ProviderUser{ID: "provider-user-1", Email: email}, nil
}

func (m *mockProvisioner) AdminDeleteUser(ctx context.Context, providerUserID string) error {
	m.deleteCalls++
	if m.adminDeleteUserFn != nil {
		return m.adminDeleteUserFn(ctx, providerUserID)
	}
	return nil
}

// mockUserRepo はrepository.UserRepositoryのモック実装。
type mockUserRepo struct {
	findByIDFn    func(ctx context.Context, id string) (*model.User, error)
	findByEmailFn func(ctx context.Context, email string) (*model.User, error)
	listFn        func(ctx context.Context) ([]*model.User, error)
	createFn      func(ctx context.Context, user *model.User) error
	updateFn      func(ctx context.Context, user *model.User) error
	deleteByIDFn  func(ctx context.Context, id string) error
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.findByEmailFn != nil {
		return m.findByEmailFn(ctx, email)
	}
	return nil, nil
}

func (m *mockUserRepo) List(ctx context.Context) ([]*model.User, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) Update(ctx context.Context, user *model.User) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) DeleteByID(ctx context.Context, id string) error {
	if m.deleteByIDFn != nil {
		return m.deleteByIDFn(ctx, id)
	}
	return nil
}

func (m *mockUserRepo) CountByDepartmentID(ctx context.Context, departmentID string) (int, error) {
	return 0, nil
}

// mockDeptRepo はrepository.DepartmentRepositoryのモック実装。
type mockDeptRepo struct {
	findByIDFn func(ctx context.Context, id string) (*model.Department, error)
}

func (m *mockDeptRepo) FindByID(ctx context.Context, id string) (*model.Department, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockDeptRepo) List(ctx context.Context) ([]*model.Department, error)    { return nil, nil }
func (m *mockDeptRepo) Create(ctx context.Context, dept *model.Department) error { return nil }
func (m *mockDeptRepo) Update(ctx context.Context, dept *model.Department) error { return nil }
func (m *mockDeptRepo) DeleteByID(ctx context.Context, id string) error          { return nil }

// mockAssetRepo はrepository.AssetRepositoryのモック実装。所有資産のカウントのみ使用する。
type mockAssetRepo struct {
	countByCreatedByFn func(ctx context.Context, userID string) (int, error)
}

func (m *mockAssetRepo) FindByID(ctx context.Context, id string) (*model.Asset, error) {
	return nil, nil
}
func (m *mockAssetRepo) List(ctx context.Context) ([]*model.Asset, error) { return nil, nil }
func (m *mockAssetRepo) ListByCreatedBy(ctx context.Context, userID string) ([]*model.Asset, error) {
	return nil, nil
}
func (m *mockAssetRepo) Create(ctx context.Context, asset *model.Asset) error { return nil }
func (m *mockAssetRepo) Update(ctx context.Context, asset *model.Asset) error { return nil }
func (m *mockAssetRepo) DeleteByID(ctx context.Context, id string) error      { return nil }
func (m *mockAssetRepo) CountByCategoryID(ctx context.Context, categoryID string) (int, error) {
	return 0, nil
}
func (m *mockAssetRepo) CountByDepartmentID(ctx context.Context, departmentID string) (int, error) {
	return 0, nil
}

func (m *mockAssetRepo) CountByCreatedBy(ctx context.Context, userID string) (int, error) {
	if m.countByCreatedByFn != nil {
		return m.countByCreatedByFn(ctx, userID)
	}
	return 0, nil
}

func validCreateParams() CreateParams {
	return CreateParams{
		Email:    "suzuki@example.com",
		Password: "password123",
		Name:     "Suzuki",
		UserType: model.UserTypeUser,
	}
}

// --- Create テスト ---

func TestService_Create_Success(t *testing.T) {
	provisioner := &mockProvisioner{}
	var created *model.User
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, user *model.User) error {
			created = user
			return nil
		},
	}
	svc := NewService(provisioner, repo, &mockDeptRepo{}, &mockAssetRepo{})

	user, err := svc.Create(context.Background(), validCreateParams())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if user.ID != "provider-user-1" {
		t.Errorf("user.ID = %q, want provider-user-1", user.ID)
	}
	if created == nil || created.UserType != model.UserTypeUser {
		t.Errorf("created = %+v, want user type %q", created, model.UserTypeUser)
	}
}

func TestService_Create_InvalidUserType(t *testing.T) {
	provisioner := &mockProvisioner{}
	svc := NewService(provisioner, &mockUserRepo{}, &mockDeptRepo{}, &mockAssetRepo{})

	params := validCreateParams()
	params.UserType = "superuser"

	_, err := svc.Create(context.Background(), params)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeValidationFailed {
		t.Errorf("error = %v, want code %s", err, model.ErrCodeValidationFailed)
	}
	if provisioner.createCalls != 0 {
		t.Errorf("createCalls = %d, want 0", provisioner.createCalls)
	}
}

func TestService_Create_UnknownDepartment(t *testing.T) {
	svc := NewService(&mockProvisioner{}, &mockUserRepo{}, &mockDeptRepo{}, &mockAssetRepo{})

	deptID := "missing-dept"
	params := validCreateParams()
	params.DepartmentID = &deptID

	_, err := svc.Create(context.Background(), params)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeDepartmentNotFound {
		t.Errorf("error = %v, want code %s", err, model.ErrCodeDepartmentNotFound)
	}
}

func TestService_Create_DuplicateEmailPrecheck(t *testing.T) {
	provisioner := &mockProvisioner{}
	repo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: "existing", Email: email}, nil
		},
	}
	svc := NewService(provisioner, repo, &mockDeptRepo{}, &mockAssetRepo{})

	_, err := svc.Create(context.Background(), validCreateParams())

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeDuplicateEmail {
		t.Errorf("error = %v, want code %s", err, model.ErrCodeDuplicateEmail)
	}
	if provisioner.createCalls != 0 {
		t.Errorf("createCalls = %d, want 0", provisioner.createCalls)
	}
}

func TestService_Create_CompensatesOnRowInsertFailure(t *testing.T) {
	provisioner := &mockProvisioner{}
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, user *model.User) error {
			return errors.New("insert failed")
		},
	}
	svc := NewService(provisioner, repo, &mockDeptRepo{}, &mockAssetRepo{})

	_, err := svc.Create(context.Background(), validCreateParams())
	if err == nil {
		t.Fatal("Create() error = nil, want error")
	}
	if provisioner.deleteCalls != 1 {
		t.Errorf("deleteCalls = %d, want 1", provisioner.deleteCalls)
	}
}

// --- Update テスト ---

func TestService_Update_ClearsDepartment(t *testing.T) {
	deptID := "dept-1"
	var updated *model.User
	repo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, Name: "Suzuki", UserType: model.UserTypeUser, DepartmentID: &deptID}, nil
		},
		updateFn: func(ctx context.Context, user *model.User) error {
			updated = user
			return nil
		},
	}
	svc := NewService(&mockProvisioner{}, repo, &mockDeptRepo{}, &mockAssetRepo{})

	// DepartmentIDSet=true かつ DepartmentID=nil → 所属解除
	_, err := svc.Update(context.Background(), "user-1", UpdateParams{DepartmentIDSet: true})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated == nil || updated.DepartmentID != nil {
		t.Errorf("DepartmentID = %v, want nil", updated.DepartmentID)
	}
}

func TestService_Update_PromotesToAdmin(t *testing.T) {
	repo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, Name: "Suzuki", UserType: model.UserTypeUser}, nil
		},
	}
	svc := NewService(&mockProvisioner{}, repo, &mockDeptRepo{}, &mockAssetRepo{})

	adminType := model.UserTypeAdmin
	user, err := svc.Update(context.Background(), "user-1", UpdateParams{UserType: &adminType})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if user.UserType != model.UserTypeAdmin {
		t.Errorf("UserType = %q, want %q", user.UserType, model.UserTypeAdmin)
	}
}

func TestService_Update_NotFound(t *testing.T) {
	svc := NewService(&mockProvisioner{}, &mockUserRepo{}, &mockDeptRepo{}, &mockAssetRepo{})

	_, err := svc.Update(context.Background(), "missing", UpdateParams{})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUserNotFound {
		t.Errorf("error = %v, want code %s", err, model.ErrCodeUserNotFound)
	}
}

// --- Delete テスト ---

func TestService_Delete_SelfDeleteRejected(t *testing.T) {
	provisioner := &mockProvisioner{}
	svc := NewService(provisioner, &mockUserRepo{}, &mockDeptRepo{}, &mockAssetRepo{})

	err := svc.Delete(context.Background(), "admin-1", "admin-1")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeSelfDelete {
		t.Errorf("error = %v, want code %s", err, model.ErrCodeSelfDelete)
	}
	if provisioner.deleteCalls != 0 {
		t.Errorf("deleteCalls = %d, want 0", provisioner.deleteCalls)
	}
}

func TestService_Delete_BlockedByOwnedAssets(t *testing.T) {
	repo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, Name: "Suzuki", UserType: model.UserTypeUser}, nil
		},
		deleteByIDFn: func(ctx context.Context, id string) error {
			t.Error("DeleteByID must not be called when the user owns assets")
			return nil
		},
	}
	assets := &mockAssetRepo{
		countByCreatedByFn: func(ctx context.Context, userID string) (int, error) {
			return 5, nil
		},
	}
	svc := NewService(&mockProvisioner{}, repo, &mockDeptRepo{}, assets)

	err := svc.Delete(context.Background(), "admin-1", "user-1")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeResourceInUse {
		t.Errorf("error = %v, want code %s", err, model.ErrCodeResourceInUse)
	}
}

func TestService_Delete_RowThenProviderAccount(t *testing.T) {
	rowDeleted := false
	provisioner := &mockProvisioner{
		adminDeleteUserFn: func(ctx context.Context, providerUserID string) error {
			// 行削除が先に完了していること
			if !rowDeleted {
				t.Error("provider account deleted before user row")
			}
			return nil
		},
	}
	repo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, Name: "Suzuki", UserType: model.UserTypeUser}, nil
		},
		deleteByIDFn: func(ctx context.Context, id string) error {
			rowDeleted = true
			return nil
		},
	}
	svc := NewService(provisioner, repo, &mockDeptRepo{}, &mockAssetRepo{})

	if err := svc.Delete(context.Background(), "admin-1", "user-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if provisioner.deleteCalls != 1 {
		t.Errorf("deleteCalls = %d, want 1", provisioner.deleteCalls)
	}
}

func TestService_Delete_ProviderFailureSurfaced(t *testing.T) {
	provisioner := &mockProvisioner{
		adminDeleteUserFn: func(ctx context.Context, providerUserID string) error {
			return errors.New("provider unavailable")
		},
	}
	repo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, Name: "Suzuki", UserType: model.UserTypeUser}, nil
		},
	}
	svc := NewService(provisioner, repo, &mockDeptRepo{}, &mockAssetRepo{})

	if err := svc.Delete(context.Background(), "admin-1", "user-1"); err == nil {
		t.Fatal("Delete() error = nil, want error when provider deletion fails")
	}
}
