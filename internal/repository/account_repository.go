package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/grievance-service/internal/domain"
)

const accountColumns = `id, email, password_hash, name, role, department,
        address, sex, voter_id, national_id, constituency, contact,
        created_at, updated_at`

// AccountRepository defines persistence access for accounts of all roles.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	// FindConflict returns an existing account colliding with the given
	// email, national id or voter id, or pgx.ErrNoRows when none does.
	FindConflict(ctx context.Context, email string, nationalID, voterID *string) (*domain.Account, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

type accountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository returns a Postgres-backed implementation.
func NewAccountRepository(pool *pgxpool.Pool) AccountRepository {
	return &accountRepository{pool: pool}
}

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	return createAccount(ctx, r.pool, account)
}

// rowQuerier is satisfied by both *pgxpool.Pool and pgx.Tx.
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func createAccount(ctx context.Context, q rowQuerier, account *domain.Account) error {
	const query = `
        INSERT INTO accounts (email, password_hash, name, role, department,
            address, sex, voter_id, national_id, constituency, contact)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING id, created_at, updated_at`

	var (
		address, sex, constituency *string
		voterID, nationalID        *string
		contact                    *string
	)
	if p := account.Profile; p != nil {
		address, sex, constituency = &p.Address, &p.Sex, &p.Constituency
		voterID, nationalID, contact = p.VoterID, p.NationalID, p.Contact
	}

	return q.QueryRow(ctx, query,
		strings.ToLower(strings.TrimSpace(account.Email)),
		account.PasswordHash,
		account.Name,
		account.Role,
		account.Department,
		address,
		sex,
		voterID,
		nationalID,
		constituency,
		contact,
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE LOWER(email)=LOWER($1)`
	return r.fetchSingle(ctx, query, strings.TrimSpace(email))
}

func (r *accountRepository) FindConflict(ctx context.Context, email string, nationalID, voterID *string) (*domain.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts
        WHERE LOWER(email)=LOWER($1)
           OR ($2::text IS NOT NULL AND national_id=$2)
           OR ($3::text IS NOT NULL AND voter_id=$3)
        LIMIT 1`
	return r.fetchSingle(ctx, query, strings.TrimSpace(email), nationalID, voterID)
}

func (r *accountRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	const query = `UPDATE accounts SET password_hash=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, passwordHash, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *accountRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Account, error) {
	var (
		account                    domain.Account
		address, sex, constituency *string
		voterID, nationalID        *string
		contact                    *string
	)
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&account.ID,
		&account.Email,
		&account.PasswordHash,
		&account.Name,
		&account.Role,
		&account.Department,
		&address,
		&sex,
		&voterID,
		&nationalID,
		&constituency,
		&contact,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if account.Role == domain.RoleUser {
		profile := &domain.CitizenProfile{VoterID: voterID, NationalID: nationalID, Contact: contact}
		if address != nil {
			profile.Address = *address
		}
		if sex != nil {
			profile.Sex = *sex
		}
		if constituency != nil {
			profile.Constituency = *constituency
		}
		account.Profile = profile
	}
	return &account, nil
}
