package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tasklist/internal/models"
)

type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	// CreateWithCode inserts the account and its first verification code atomically.
	CreateWithCode(ctx context.Context, account *models.Account, code *models.VerificationCode) error
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	UpdatePasswordHash(ctx context.Context, id, hash string) error
}

type accountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) AccountRepository {
	return &accountRepository{db: db}
}

const accountColumns = `id, email, password_hash, display_name, is_verified, created_at`

func insertAccount(ctx context.Context, q execer, a *models.Account) error {
	const query = `
		INSERT INTO accounts (id, email, password_hash, display_name, is_verified, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := q.ExecContext(ctx, query, a.ID, a.Email, a.PasswordHash, a.DisplayName, a.IsVerified, a.CreatedAt)
	if err != nil {
		if uniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("account create: %w", err)
	}
	return nil
}

func (r *accountRepository) Create(ctx context.Context, account *models.Account) error {
	return insertAccount(ctx, r.db, account)
}

func (r *accountRepository) CreateWithCode(ctx context.Context, account *models.Account, code *models.VerificationCode) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := insertAccount(ctx, tx, account); err != nil {
			return err
		}
		return replaceCode(ctx, tx, code)
	})
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	return scanAccount(row)
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email)
	return scanAccount(row)
}

func (r *accountRepository) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE accounts SET password_hash = $1 WHERE id = $2`, hash, id)
	if err != nil {
		return fmt.Errorf("account update password: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanAccount(row *sql.Row) (*models.Account, error) {
	a := &models.Account{}
	var displayName sql.NullString
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &displayName, &a.IsVerified, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("account scan: %w", err)
	}
	if displayName.Valid {
		a.DisplayName = displayName.String
	}
	return a, nil
}
