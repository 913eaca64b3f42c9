package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/assetman/internal/model"
)

// PostgresDepartmentRepo はPostgreSQLを使用した部署リポジトリ。
type PostgresDepartmentRepo struct {
	db *sql.DB
}

// NewPostgresDepartmentRepo はPostgresDepartmentRepoを生成する。
func NewPostgresDepartmentRepo(db *sql.DB) *PostgresDepartmentRepo {
	return &PostgresDepartmentRepo{db: db}
}

// FindByID は指定IDの部署を取得する。見つからない場合はnilを返す。
func (r *PostgresDepartmentRepo) FindByID(ctx context.Context, id string) (*model.Department, error) {
	dept := &model.Department{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at FROM departments WHERE id = $1`,
		id,
	).Scan(&dept.ID, &dept.Name, &dept.CreatedAt, &dept.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find department by ID: %w", err)
	}

	return dept, nil
}

// List は全部署を名前の昇順で返す。
func (r *PostgresDepartmentRepo) List(ctx context.Context) ([]*model.Department, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, created_at, updated_at FROM departments ORDER BY name ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	defer rows.Close()

	var departments []*model.Department
	for rows.Next() {
		dept := &model.Department{}
		if err := rows.Scan(&dept.ID, &dept.Name, &dept.CreatedAt, &dept.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan department: %w", err)
		}
		departments = append(departments, dept)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate departments: %w", err)
	}

	return departments, nil
}

// Create は部署を作成する。名前重複時はErrDuplicateを返す。
func (r *PostgresDepartmentRepo) Create(ctx context.Context, department *model.Department) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO departments (id, name, created_at, updated_at)
		 VALUES ($1, $2, $3, $4)`,
		department.ID, department.Name, department.CreatedAt, department.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("department name %s: %w", department.Name, ErrDuplicate)
		}
		return fmt.Errorf("failed to insert department: %w", err)
	}

	return nil
}

// Update は部署の名前を更新する。名前重複時はErrDuplicateを返す。
func (r *PostgresDepartmentRepo) Update(ctx context.Context, department *model.Department) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE departments SET name = $1, updated_at = $2 WHERE id = $3`,
		department.Name, department.UpdatedAt, department.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("department name %s: %w", department.Name, ErrDuplicate)
		}
		return fmt.Errorf("failed to update department: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("department not found: %s", department.ID)
	}

	return nil
}

// DeleteByID は指定IDの部署を削除する。
func (r *PostgresDepartmentRepo) DeleteByID(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM departments WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete department: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("department not found: %s", id)
	}

	return nil
}

// compile-time interface check
var _ DepartmentRepository = (*PostgresDepartmentRepo)(nil)
