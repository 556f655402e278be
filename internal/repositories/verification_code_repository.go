package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tasklist/internal/models"
)

type VerificationCodeRepository interface {
	// Replace deletes every older code for the e-mail and stores code, in one transaction.
	Replace(ctx context.Context, code *models.VerificationCode) error
	// Latest returns the newest code for the e-mail or ErrNotFound.
	Latest(ctx context.Context, email string) (*models.VerificationCode, error)
	// ConsumeAndVerify deletes the code and marks the account verified atomically.
	// ErrNotFound: the code was already consumed. ErrNoAccount: nothing to verify, code kept.
	ConsumeAndVerify(ctx context.Context, codeID int64, email string) error
}

type verificationCodeRepository struct {
	db *sql.DB
}

func NewVerificationCodeRepository(db *sql.DB) VerificationCodeRepository {
	return &verificationCodeRepository{db: db}
}

func replaceCode(ctx context.Context, q execer, c *models.VerificationCode) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM verification_codes WHERE email = $1`, c.Email); err != nil {
		return fmt.Errorf("verification_code purge: %w", err)
	}
	const insert = `
		INSERT INTO verification_codes (email, code, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	if err := q.QueryRowContext(ctx, insert, c.Email, c.Code, c.ExpiresAt, c.CreatedAt).Scan(&c.ID); err != nil {
		return fmt.Errorf("verification_code create: %w", err)
	}
	return nil
}

func (r *verificationCodeRepository) Replace(ctx context.Context, code *models.VerificationCode) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		return replaceCode(ctx, tx, code)
	})
}

func (r *verificationCodeRepository) Latest(ctx context.Context, email string) (*models.VerificationCode, error) {
	const q = `
		SELECT id, email, code, expires_at, created_at
		FROM verification_codes
		WHERE email = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1`
	var v models.VerificationCode
	err := r.db.QueryRowContext(ctx, q, email).Scan(&v.ID, &v.Email, &v.Code, &v.ExpiresAt, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("verification_code latest: %w", err)
	}
	return &v, nil
}

func (r *verificationCodeRepository) ConsumeAndVerify(ctx context.Context, codeID int64, email string) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM verification_codes WHERE id = $1`, codeID)
		if err != nil {
			return fmt.Errorf("verification_code consume: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("verification_code consume: %w", err)
		} else if n == 0 {
			return ErrNotFound
		}

		res, err = tx.ExecContext(ctx, `UPDATE accounts SET is_verified = TRUE WHERE email = $1`, email)
		if err != nil {
			return fmt.Errorf("account verify: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("account verify: %w", err)
		} else if n == 0 {
			return ErrNoAccount
		}
		return nil
	})
}
