package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/grievance-service/internal/domain"
)

// ErrSlugTaken is returned when a concurrent creation claimed the slug first.
var ErrSlugTaken = errors.New("department slug already taken")

// DepartmentWithAccount pairs a department with its assigned account projection.
type DepartmentWithAccount struct {
	Department domain.Department
	Assigned   domain.Account
}

// DepartmentRepository manages department persistence.
type DepartmentRepository interface {
	// CreateWithAccount inserts the Department-role account and the
	// department record in a single transaction.
	CreateWithAccount(ctx context.Context, dept *domain.Department, account *domain.Account) error
	GetByName(ctx context.Context, name string) (*domain.Department, error)
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	ListWithAccounts(ctx context.Context) ([]DepartmentWithAccount, error)
}

type departmentRepository struct {
	pool *pgxpool.Pool
}

// NewDepartmentRepository builds the repository.
func NewDepartmentRepository(pool *pgxpool.Pool) DepartmentRepository {
	return &departmentRepository{pool: pool}
}

func (r *departmentRepository) CreateWithAccount(ctx context.Context, dept *domain.Department, account *domain.Account) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := createAccount(ctx, tx, account); err != nil {
		return err
	}
	dept.AssignedAccountID = account.ID

	const query = `
        INSERT INTO departments (name, slug, created_by_user_id, created_by_name, assigned_account_id)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	if err := tx.QueryRow(ctx, query,
		dept.Name,
		dept.Slug,
		dept.CreatedBy.UserID,
		dept.CreatedBy.Name,
		dept.AssignedAccountID,
	).Scan(&dept.ID, &dept.CreatedAt, &dept.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "departments_slug_key" {
			return ErrSlugTaken
		}
		return err
	}

	return tx.Commit(ctx)
}

func (r *departmentRepository) GetByName(ctx context.Context, name string) (*domain.Department, error) {
	const query = `
        SELECT id, name, slug, created_by_user_id, created_by_name, assigned_account_id, created_at, updated_at
        FROM departments WHERE name=$1`
	var dept domain.Department
	if err := r.pool.QueryRow(ctx, query, name).Scan(
		&dept.ID,
		&dept.Name,
		&dept.Slug,
		&dept.CreatedBy.UserID,
		&dept.CreatedBy.Name,
		&dept.AssignedAccountID,
		&dept.CreatedAt,
		&dept.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *departmentRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM departments WHERE slug=$1)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, slug).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *departmentRepository) ListWithAccounts(ctx context.Context) ([]DepartmentWithAccount, error) {
	const query = `
        SELECT d.id, d.name, d.slug, d.created_by_user_id, d.created_by_name,
               d.assigned_account_id, d.created_at, d.updated_at,
               a.id, a.email, a.name, a.role, a.department
        FROM departments d
        JOIN accounts a ON a.id = d.assigned_account_id
        ORDER BY d.created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []DepartmentWithAccount
	for rows.Next() {
		var entry DepartmentWithAccount
		if err := rows.Scan(
			&entry.Department.ID,
			&entry.Department.Name,
			&entry.Department.Slug,
			&entry.Department.CreatedBy.UserID,
			&entry.Department.CreatedBy.Name,
			&entry.Department.AssignedAccountID,
			&entry.Department.CreatedAt,
			&entry.Department.UpdatedAt,
			&entry.Assigned.ID,
			&entry.Assigned.Email,
			&entry.Assigned.Name,
			&entry.Assigned.Role,
			&entry.Assigned.Department,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
