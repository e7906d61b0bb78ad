package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meridianx/backoffice/internal/database"
	"github.com/meridianx/backoffice/internal/models"
)

type AdminRepository struct {
	db   *database.DB
	pool *pgxpool.Pool
}

func NewAdminRepository(db *database.DB) *AdminRepository {
	return &AdminRepository{db: db, pool: db.Pool}
}

// rowScanner interface for scanning rows (supports both single row and multiple rows)
type rowScanner interface {
	Scan(dest ...interface{}) error
}

const adminColumns = `id, email, name, password_hash, role, is_active, failed_attempts,
	locked_until, last_login_at, two_factor_secret, two_factor_enabled, created_at, updated_at`

// scanAdminRow handles nullable fields and populates an Admin model from a database row
func scanAdminRow(scanner rowScanner) (*models.Admin, error) {
	var admin models.Admin

	err := scanner.Scan(
		&admin.ID, &admin.Email, &admin.Name, &admin.PasswordHash,
		&admin.Role, &admin.IsActive, &admin.FailedAttempts,
		&admin.LockedUntil, &admin.LastLoginAt,
		&admin.TwoFactorSecret, &admin.TwoFactorEnabled,
		&admin.CreatedAt, &admin.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &admin, nil
}

func (r *AdminRepository) GetByID(ctx context.Context, id string) (*models.Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM admins WHERE id = $1`
	return scanAdminRow(r.pool.QueryRow(ctx, query, id))
}

func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM admins WHERE email = $1`
	return scanAdminRow(r.pool.QueryRow(ctx, query, email))
}

func (r *AdminRepository) Create(ctx context.Context, admin *models.Admin) (*models.Admin, error) {
	admin.ID = uuid.New().String()

	now := time.Now()
	admin.CreatedAt = now
	admin.UpdatedAt = now

	if admin.Role == "" {
		admin.Role = models.RoleSupport
	}

	query := `
		INSERT INTO admins (id, email, name, password_hash, role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + adminColumns

	created, err := scanAdminRow(r.pool.QueryRow(ctx, query,
		admin.ID, admin.Email, admin.Name, admin.PasswordHash,
		admin.Role, admin.IsActive, admin.CreatedAt, admin.UpdatedAt,
	))
	if err != nil {
		return nil, err
	}

	return created, nil
}

// RecordLoginFailure stores the new failure count and, when the lockout
// threshold was reached, the lock expiry. A below-threshold failure clears
// any stale lock by writing NULL.
func (r *AdminRepository) RecordLoginFailure(ctx context.Context, id string, failedAttempts int, lockedUntil *time.Time) error {
	query := `
		UPDATE admins SET failed_attempts = $1, locked_until = $2, updated_at = NOW()
		WHERE id = $3
	`

	result, err := r.pool.Exec(ctx, query, failedAttempts, lockedUntil, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// RecordLoginSuccess resets the failure counter, clears any lock, and stamps
// the last login time.
func (r *AdminRepository) RecordLoginSuccess(ctx context.Context, id string) error {
	query := `
		UPDATE admins SET failed_attempts = 0, locked_until = NULL, last_login_at = NOW(), updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// SetTwoFactorSecret stores a newly generated shared secret without enabling
// verification; enrollment completes in EnableTwoFactor.
func (r *AdminRepository) SetTwoFactorSecret(ctx context.Context, id string, secret string) error {
	query := `
		UPDATE admins SET two_factor_secret = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.pool.Exec(ctx, query, secret, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

func (r *AdminRepository) EnableTwoFactor(ctx context.Context, id string) error {
	query := `
		UPDATE admins SET two_factor_enabled = TRUE, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

func (r *AdminRepository) DisableTwoFactor(ctx context.Context, id string) error {
	query := `
		UPDATE admins SET two_factor_enabled = FALSE, two_factor_secret = NULL, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// UpdatePassword stores the new hash and revokes every open session in the
// same transaction, so a stolen refresh token dies with the old password.
// Returns the number of refresh tokens revoked.
func (r *AdminRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) (int64, error) {
	var revoked int64

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx, `
			UPDATE admins SET password_hash = $1, updated_at = NOW()
			WHERE id = $2
		`, passwordHash, id)
		if err != nil {
			return database.MapPostgresError(err)
		}
		if result.RowsAffected() == 0 {
			return models.ErrNotFound
		}

		result, err = tx.Exec(ctx, `
			UPDATE refresh_tokens SET is_active = FALSE
			WHERE admin_id = $1 AND is_active = TRUE
		`, id)
		if err != nil {
			return database.MapPostgresError(err)
		}
		revoked = result.RowsAffected()

		return nil
	})
	if err != nil {
		return 0, err
	}

	return revoked, nil
}

func (r *AdminRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM admins`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count admins: %w", err)
	}
	return count, nil
}
