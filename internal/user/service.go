// Package user はユーザー管理（管理者操作）のドメインロジックを提供する。
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hitoshi/assetman/internal/auth"
	"github.com/hitoshi/assetman/internal/model"
	"github.com/hitoshi/assetman/internal/repository"
)

// AccountProvisioner はIDプロバイダーの管理API操作のインターフェース。
// 本番実装はauth.IdentityClient。テストではモックに差し替える。
type AccountProvisioner interface {
	// AdminCreateUser はサービスキーでアカウントを作成する。
	AdminCreateUser(ctx context.Context, email, password, name string) (*auth.ProviderUser, error)
	// AdminDeleteUser はサービスキーでアカウントを削除する。
	AdminDeleteUser(ctx context.Context, providerUserID string) error
}

// Service はユーザー管理のサービス層。すべての操作は管理者専用。
type Service struct {
	provisioner AccountProvisioner
	userRepo    repository.UserRepository
	deptRepo    repository.DepartmentRepository
	assetRepo   repository.AssetRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	provisioner AccountProvisioner,
	userRepo repository.UserRepository,
	deptRepo repository.DepartmentRepository,
	assetRepo repository.AssetRepository,
) *Service {
	return &Service{
		provisioner: provisioner,
		userRepo:    userRepo,
		deptRepo:    deptRepo,
		assetRepo:   assetRepo,
	}
}

// List は全ユーザーを作成日時の降順で返す。
func (s *Service) List(ctx context.Context) ([]*model.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ユーザー一覧の取得に失敗しました: %w", err)
	}
	return users, nil
}

// CreateParams は管理者によるユーザー作成の入力。
type CreateParams struct {
	Email        string
	Password     string
	Name         string
	UserType     model.UserType
	DepartmentID *string
}

// Create は管理者がユーザーを作成する。
// IDプロバイダーの管理APIでアカウントを作成し、ユーザー行を挿入する。
// 行挿入に失敗した場合はプロバイダーアカウントを補償削除する。
func (s *Service) Create(ctx context.Context, params CreateParams) (*model.User, error) {
	params.Email = strings.TrimSpace(params.Email)
	params.Name = strings.TrimSpace(params.Name)
	if params.Email == "" {
		return nil, model.NewValidationError("email")
	}
	if params.Password == "" {
		return nil, model.NewValidationError("password")
	}
	if params.Name == "" {
		return nil, model.NewValidationError("name")
	}
	if !params.UserType.Valid() {
		return nil, model.NewValidationError("userType")
	}
	if params.DepartmentID != nil {
		dept, err := s.deptRepo.FindByID(ctx, *params.DepartmentID)
		if err != nil {
			return nil, fmt.Errorf("部署の取得に失敗しました: %w", err)
		}
		if dept == nil {
			return nil, model.NewDepartmentNotFoundError(*params.DepartmentID)
		}
	}

	// 重複時はプロバイダーを呼ばずに失敗させる。
	existing, err := s.userRepo.FindByEmail(ctx, params.Email)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの検索に失敗しました: %w", err)
	}
	if existing != nil {
		return nil, model.NewDuplicateEmailError(params.Email)
	}

	account, err := s.provisioner.AdminCreateUser(ctx, params.Email, params.Password, params.Name)
	if err != nil {
		if errors.Is(err, auth.ErrEmailExists) {
			return nil, model.NewDuplicateEmailError(params.Email)
		}
		return nil, fmt.Errorf("アカウントの作成に失敗しました: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:           account.ID,
		Email:        params.Email,
		Name:         params.Name,
		UserType:     params.UserType,
		DepartmentID: params.DepartmentID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if delErr := s.provisioner.AdminDeleteUser(ctx, account.ID); delErr != nil {
			slog.Error("compensating account deletion failed",
				slog.String("provider_user_id", account.ID),
				slog.String("error", delErr.Error()),
			)
		}
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.NewDuplicateEmailError(params.Email)
		}
		return nil, fmt.Errorf("ユーザー行の作成に失敗しました: %w", err)
	}

	slog.Info("user created by admin",
		slog.String("user_id", user.ID),
		slog.String("user_type", string(user.UserType)),
	)

	return user, nil
}

// UpdateParams はユーザー部分更新の入力。
// nilのフィールドは変更しない。DepartmentIDSetがtrueでDepartmentIDがnilの場合は
// 所属部署を解除する。
type UpdateParams struct {
	Name            *string
	UserType        *model.UserType
	DepartmentID    *string
	DepartmentIDSet bool
}

// Update はユーザーの名前・権限区分・所属部署を部分更新する。
// メールアドレスはIDプロバイダー側の識別子であるため変更できない。
func (s *Service) Update(ctx context.Context, id string, params UpdateParams) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}

	if params.Name != nil {
		trimmed := strings.TrimSpace(*params.Name)
		if trimmed == "" {
			return nil, model.NewValidationError("name")
		}
		user.Name = trimmed
	}
	if params.UserType != nil {
		if !params.UserType.Valid() {
			return nil, model.NewValidationError("userType")
		}
		user.UserType = *params.UserType
	}
	if params.DepartmentIDSet {
		if params.DepartmentID != nil {
			dept, err := s.deptRepo.FindByID(ctx, *params.DepartmentID)
			if err != nil {
				return nil, fmt.Errorf("部署の取得に失敗しました: %w", err)
			}
			if dept == nil {
				return nil, model.NewDepartmentNotFoundError(*params.DepartmentID)
			}
		}
		user.DepartmentID = params.DepartmentID
	}
	user.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("ユーザーの更新に失敗しました: %w", err)
	}

	return user, nil
}

// Delete はユーザーを削除する。
// 自分自身は削除できない。資産を所有しているユーザーも削除できない。
// ユーザー行を先に削除し、その後IDプロバイダーのアカウントを削除する。
// アカウント削除に失敗した場合、行は既に消えているためエラーを返しつつ
// 孤児アカウントをログに残す。
func (s *Service) Delete(ctx context.Context, callerID, id string) error {
	if callerID == id {
		return model.NewSelfDeleteError()
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return model.NewUserNotFoundError()
	}

	count, err := s.assetRepo.CountByCreatedBy(ctx, id)
	if err != nil {
		return fmt.Errorf("ユーザーの参照チェックに失敗しました: %w", err)
	}
	if count > 0 {
		return model.NewResourceInUseError("ユーザー", "資産")
	}

	if err := s.userRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("ユーザー行の削除に失敗しました: %w", err)
	}

	if err := s.provisioner.AdminDeleteUser(ctx, id); err != nil {
		slog.Error("orphaned provider account after user row deletion",
			slog.String("provider_user_id", id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("アカウントの削除に失敗しました: %w", err)
	}

	slog.Info("user deleted", slog.String("user_id", id))

	return nil
}
