package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meridianx/backoffice/internal/database"
	"github.com/meridianx/backoffice/internal/models"
)

// RefreshTokenRepository handles opaque refresh token rows. Only the SHA-256
// hash of a token ever touches this table.
type RefreshTokenRepository struct {
	pool *pgxpool.Pool
}

func NewRefreshTokenRepository(db *database.DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{pool: db.Pool}
}

const refreshTokenColumns = `id, admin_id, token_hash, expires_at, is_active, ip_address, user_agent, created_at`

func scanRefreshTokenRow(scanner rowScanner) (*models.RefreshToken, error) {
	var token models.RefreshToken

	err := scanner.Scan(
		&token.ID, &token.AdminID, &token.TokenHash, &token.ExpiresAt,
		&token.IsActive, &token.IPAddress, &token.UserAgent, &token.CreatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &token, nil
}

func (r *RefreshTokenRepository) Create(ctx context.Context, token *models.RefreshToken) (*models.RefreshToken, error) {
	token.ID = uuid.New().String()
	token.CreatedAt = time.Now()

	query := `
		INSERT INTO refresh_tokens (id, admin_id, token_hash, expires_at, is_active, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, TRUE, $5, $6, $7)
		RETURNING ` + refreshTokenColumns

	created, err := scanRefreshTokenRow(r.pool.QueryRow(ctx, query,
		token.ID, token.AdminID, token.TokenHash, token.ExpiresAt,
		token.IPAddress, token.UserAgent, token.CreatedAt,
	))
	if err != nil {
		return nil, err
	}

	return created, nil
}

// GetByHash looks up a token row by its hash regardless of active or expiry
// state; the service layer decides which failure the caller sees.
func (r *RefreshTokenRepository) GetByHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	query := `SELECT ` + refreshTokenColumns + ` FROM refresh_tokens WHERE token_hash = $1`
	return scanRefreshTokenRow(r.pool.QueryRow(ctx, query, tokenHash))
}

// DeactivateAllForAdmin revokes every refresh token the account holds.
// Returns the number of tokens revoked; zero is not an error, logout is
// idempotent.
func (r *RefreshTokenRepository) DeactivateAllForAdmin(ctx context.Context, adminID string) (int64, error) {
	query := `UPDATE refresh_tokens SET is_active = FALSE WHERE admin_id = $1 AND is_active = TRUE`

	result, err := r.pool.Exec(ctx, query, adminID)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}

	return result.RowsAffected(), nil
}

// DeleteExpired removes rows whose expiry has passed. Used by the background
// cleanup job.
func (r *RefreshTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM refresh_tokens WHERE expires_at < NOW()`

	result, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}

	return result.RowsAffected(), nil
}
