package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/assetman/internal/model"
)

// PostgresAssetRepo はPostgreSQLを使用した資産リポジトリ。
type PostgresAssetRepo struct {
	db *sql.DB
}

// NewPostgresAssetRepo はPostgresAssetRepoを生成する。
func NewPostgresAssetRepo(db *sql.DB) *PostgresAssetRepo {
	return &PostgresAssetRepo{db: db}
}

const assetColumns = `id, name, category_id, department_id, date_purchased, cost, serial_number, created_by, created_at, updated_at`

// FindByID は指定IDの資産を取得する。見つからない場合はnilを返す。
func (r *PostgresAssetRepo) FindByID(ctx context.Context, id string) (*model.Asset, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+assetColumns+` FROM assets WHERE id = $1`,
		id,
	)

	asset, err := scanAsset(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find asset by ID: %w", err)
	}

	return asset, nil
}

// List は全資産を作成日時の降順で返す。
func (r *PostgresAssetRepo) List(ctx context.Context) ([]*model.Asset, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+assetColumns+` FROM assets ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	defer rows.Close()

	return collectAssets(rows)
}

// ListByCreatedBy は指定ユーザーが所有する資産を作成日時の降順で返す。
// 非管理者の一覧取得はクエリ実行前にこのスコープに制限される。
func (r *PostgresAssetRepo) ListByCreatedBy(ctx context.Context, userID string) ([]*model.Asset, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+assetColumns+` FROM assets WHERE created_by = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets by owner: %w", err)
	}
	defer rows.Close()

	return collectAssets(rows)
}

// Create は資産を作成する。
func (r *PostgresAssetRepo) Create(ctx context.Context, asset *model.Asset) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO assets (id, name, category_id, department_id, date_purchased, cost, serial_number, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		asset.ID, asset.Name, asset.CategoryID, asset.DepartmentID,
		asset.DatePurchased, asset.Cost, nullableString(asset.SerialNumber),
		asset.CreatedBy, asset.CreatedAt, asset.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert asset: %w", err)
	}

	return nil
}

// Update は資産の名前・カテゴリ・部署・購入日・金額・シリアル番号を更新する。
func (r *PostgresAssetRepo) Update(ctx context.Context, asset *model.Asset) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE assets
		 SET name = $1, category_id = $2, department_id = $3, date_purchased = $4,
		     cost = $5, serial_number = $6, updated_at = $7
		 WHERE id = $8`,
		asset.Name, asset.CategoryID, asset.DepartmentID, asset.DatePurchased,
		asset.Cost, nullableString(asset.SerialNumber), asset.UpdatedAt, asset.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update asset: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("asset not found: %s", asset.ID)
	}

	return nil
}

// DeleteByID は指定IDの資産を削除する。
func (r *PostgresAssetRepo) DeleteByID(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM assets WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("asset not found: %s", id)
	}

	return nil
}

// CountByCategoryID は指定カテゴリを参照する資産数を返す。
func (r *PostgresAssetRepo) CountByCategoryID(ctx context.Context, categoryID string) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM assets WHERE category_id = $1`, categoryID)
}

// CountByDepartmentID は指定部署を参照する資産数を返す。
func (r *PostgresAssetRepo) CountByDepartmentID(ctx context.Context, departmentID string) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM assets WHERE department_id = $1`, departmentID)
}

// CountByCreatedBy は指定ユーザーが所有する資産数を返す。
func (r *PostgresAssetRepo) CountByCreatedBy(ctx context.Context, userID string) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM assets WHERE created_by = $1`, userID)
}

func (r *PostgresAssetRepo) count(ctx context.Context, query, arg string) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, query, arg).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count assets: %w", err)
	}
	return count, nil
}

// rowScanner はsql.Rowとsql.Rowsの共通スキャンインターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}

// scanAsset は1行を*model.Assetに変換する。
func scanAsset(row rowScanner) (*model.Asset, error) {
	asset := &model.Asset{}
	var serialNumber sql.NullString

	err := row.Scan(
		&asset.ID, &asset.Name, &asset.CategoryID, &asset.DepartmentID,
		&asset.DatePurchased, &asset.Cost, &serialNumber,
		&asset.CreatedBy, &asset.CreatedAt, &asset.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if serialNumber.Valid {
		asset.SerialNumber = &serialNumber.String
	}

	return asset, nil
}

// collectAssets は結果セット全体を*model.Assetスライスに変換する。
func collectAssets(rows *sql.Rows) ([]*model.Asset, error) {
	var assets []*model.Asset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		assets = append(assets, asset)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assets: %w", err)
	}

	return assets, nil
}

// compile-time interface check
var _ AssetRepository = (*PostgresAssetRepo)(nil)
