package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/assetman/internal/model"
	"github.com/hitoshi/assetman/internal/repository"
)

// IdentityProvider はIDプロバイダーのインターフェース。
// 本番実装はIdentityClient。テストではモックに差し替える。
type IdentityProvider interface {
	// SignUp はアカウントを作成する。
	SignUp(ctx context.Context, email, password, name string) (*ProviderUser, error)
	// SignInWithPassword はパスワードグラントでアクセストークンを取得する。
	SignInWithPassword(ctx context.Context, email, password string) (*TokenResponse, error)
	// GetUser はアクセストークンを解決しアカウント情報を返す。
	GetUser(ctx context.Context, accessToken string) (*ProviderUser, error)
	// AdminDeleteUser はアカウントを削除する。
	AdminDeleteUser(ctx context.Context, providerUserID string) error
}

// Service は認証に関するビジネスロジックを提供する。
// 登録・ログイン・トークン解決のすべてをIDプロバイダーに委譲し、
// アプリケーション側ではユーザー行の管理のみを行う。
type Service struct {
	provider IdentityProvider
	userRepo repository.UserRepository
}

// NewService はServiceを生成する。
func NewService(provider IdentityProvider, userRepo repository.UserRepository) *Service {
	return &Service{
		provider: provider,
		userRepo: userRepo,
	}
}

// Register は新規ユーザーを登録する。
// IDプロバイダーへのアカウント作成とユーザー行の挿入は別システムへの2段階操作で
// アトミックにできないため、行挿入に失敗した場合はプロバイダーアカウントを
// 補償削除して孤児アカウントを残さない。
// 既存メールアドレスの場合はプロバイダー呼び出し前に拒否する（冪等な失敗）。
func (s *Service) Register(ctx context.Context, email, password, name string) (*model.User, error) {
	// 1. 既存ユーザーの事前チェック。重複時はプロバイダーを呼ばずに失敗させる。
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの検索に失敗しました: %w", err)
	}
	if existing != nil {
		return nil, model.NewDuplicateEmailError(email)
	}

	// 2. IDプロバイダーにアカウントを作成
	account, err := s.provider.SignUp(ctx, email, password, name)
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			return nil, model.NewDuplicateEmailError(email)
		}
		return nil, fmt.Errorf("アカウントの作成に失敗しました: %w", err)
	}

	// 3. ユーザー行を挿入。失敗時はプロバイダーアカウントを補償削除する。
	user, err := s.insertUserRow(ctx, account.ID, email, name, model.UserTypeUser, nil)
	if err != nil {
		return nil, err
	}

	slog.Info("new user registered",
		slog.String("user_id", user.ID),
		slog.String("email", email),
	)

	return user, nil
}

// Login はパスワードグラントでログインし、アクセストークンとユーザー情報を返す。
func (s *Service) Login(ctx context.Context, email, password string) (*TokenResponse, *model.User, error) {
	token, err := s.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return nil, nil, model.NewInvalidCredentialsError()
		}
		return nil, nil, fmt.Errorf("ログインに失敗しました: %w", err)
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		// プロバイダーにはアカウントがあるがユーザー行が無い状態。
		return nil, nil, model.NewUserNotFoundError()
	}

	slog.Info("user logged in", slog.String("user_id", user.ID))

	return token, user, nil
}

// ResolveToken はベアラートークンをIDプロバイダーで解決し、対応するユーザー行を返す。
// トークンが無効、またはユーザー行が存在しない場合は認証エラーを返す。
// リクエストごとに毎回実行され、トークンのキャッシュは行わない。
func (s *Service) ResolveToken(ctx context.Context, accessToken string) (*model.User, error) {
	account, err := s.provider.GetUser(ctx, accessToken)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			return nil, model.NewUnauthorizedError()
		}
		return nil, fmt.Errorf("トークンの解決に失敗しました: %w", err)
	}

	user, err := s.userRepo.FindByID(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUnauthorizedError()
	}

	return user, nil
}

// insertUserRow はユーザー行を挿入する。
// 失敗した場合はIDプロバイダーのアカウントを補償削除する。
func (s *Service) insertUserRow(ctx context.Context, id, email, name string, userType model.UserType, departmentID *string) (*model.User, error) {
	now := time.Now()
	user := &model.User{
		ID:           id,
		Email:        email,
		Name:         name,
		UserType:     userType,
		DepartmentID: departmentID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if delErr := s.provider.AdminDeleteUser(ctx, id); delErr != nil {
			// 補償削除にも失敗した場合は孤児アカウントが残る。運用での回収のためログに残す。
			slog.Error("compensating account deletion failed",
				slog.String("provider_user_id", id),
				slog.String("error", delErr.Error()),
			)
		}
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.NewDuplicateEmailError(email)
		}
		return nil, fmt.Errorf("ユーザー行の作成に失敗しました: %w", err)
	}

	return user, nil
}
