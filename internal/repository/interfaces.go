// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/assetman/internal/model"
)

// ErrDuplicate は一意制約違反を表すセンチネルエラー。
// サービス層がerrors.Isで判定し、重複エラーとしてユーザーに返す。
var ErrDuplicate = errors.New("duplicate key violation")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail は指定メールアドレスのユーザーを取得する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// List は全ユーザーを作成日時の降順で返す。
	List(ctx context.Context) ([]*model.User, error)

	// Create はユーザーを作成する。メールアドレス重複時はErrDuplicateを返す。
	Create(ctx context.Context, user *model.User) error

	// Update はユーザーの名前・権限区分・所属部署を更新する。
	Update(ctx context.Context, user *model.User) error

	// DeleteByID は指定IDのユーザーを削除する。
	DeleteByID(ctx context.Context, id string) error

	// CountByDepartmentID は指定部署に所属するユーザー数を返す。
	CountByDepartmentID(ctx context.Context, departmentID string) (int, error)
}

// DepartmentRepository は部署データの永続化インターフェース。
type DepartmentRepository interface {
	// FindByID は指定IDの部署を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Department, error)

	// List は全部署を名前の昇順で返す。
	List(ctx context.Context) ([]*model.Department, error)

	// Create は部署を作成する。名前重複時はErrDuplicateを返す。
	Create(ctx context.Context, department *model.Department) error

	// Update は部署の名前を更新する。名前重複時はErrDuplicateを返す。
	Update(ctx context.Context, department *model.Department) error

	// DeleteByID は指定IDの部署を削除する。
	DeleteByID(ctx context.Context, id string) error
}

// CategoryRepository は資産カテゴリデータの永続化インターフェース。
type CategoryRepository interface {
	// FindByID は指定IDのカテゴリを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Category, error)

	// List は全カテゴリを名前の昇順で返す。
	List(ctx context.Context) ([]*model.Category, error)

	// Create はカテゴリを作成する。名前重複時はErrDuplicateを返す。
	Create(ctx context.Context, category *model.Category) error

	// Update はカテゴリの名前を更新する。名前重複時はErrDuplicateを返す。
	Update(ctx context.Context, category *model.Category) error

	// DeleteByID は指定IDのカテゴリを削除する。
	DeleteByID(ctx context.Context, id string) error
}

// AssetRepository は資産データの永続化インターフェース。
type AssetRepository interface {
	// FindByID は指定IDの資産を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Asset, error)

	// List は全資産を作成日時の降順で返す。
	List(ctx context.Context) ([]*model.Asset, error)

	// ListByCreatedBy は指定ユーザーが所有する資産を作成日時の降順で返す。
	// 非管理者の一覧取得はクエリ実行前にこのスコープに制限される。
	ListByCreatedBy(ctx context.Context, userID string) ([]*model.Asset, error)

	// Create は資産を作成する。
	Create(ctx context.Context, asset *model.Asset) error

	// Update は資産の名前・カテゴリ・部署・購入日・金額・シリアル番号を更新する。
	Update(ctx context.Context, asset *model.Asset) error

	// DeleteByID は指定IDの資産を削除する。
	DeleteByID(ctx context.Context, id string) error

	// CountByCategoryID は指定カテゴリを参照する資産数を返す。
	CountByCategoryID(ctx context.Context, categoryID string) (int, error)

	// CountByDepartmentID は指定部署を参照する資産数を返す。
	CountByDepartmentID(ctx context.Context, departmentID string) (int, error)

	// CountByCreatedBy は指定ユーザーが所有する資産数を返す。
	CountByCreatedBy(ctx context.Context, userID string) (int, error)
}
