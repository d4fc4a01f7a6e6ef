package push

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	pushmodels "io.revoapps.revofit/internal/models/push"
)

// PostgresTokenRepository stores push tokens in the push_tokens table.
type PostgresTokenRepository struct {
	db *pgxpool.Pool
}

func NewPostgresTokenRepository(db *pgxpool.Pool) *PostgresTokenRepository {
	return &PostgresTokenRepository{db: db}
}

// Upsert inserts the token or, on a (user_id, token) conflict, reactivates
// the existing row and bumps updated_at.
func (r *PostgresTokenRepository) Upsert(ctx context.Context, token *pushmodels.PushToken) (string, error) {
	query := `
		INSERT INTO push_tokens (user_id, token, platform, timezone, active)
		VALUES ($1, $2, $3, $4, TRUE)
		ON CONFLICT (user_id, token)
		DO UPDATE SET
			platform = EXCLUDED.platform,
			timezone = EXCLUDED.timezone,
			active = TRUE,
			updated_at = NOW()
		RETURNING id`

	var id string
	err := r.db.QueryRow(ctx, query,
		token.UserID,
		token.Token,
		token.Platform,
		token.Timezone,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to upsert push token: %w", err)
	}
	return id, nil
}

func (r *PostgresTokenRepository) Deactivate(ctx context.Context, userID, token string) error {
	query := `UPDATE push_tokens SET active = FALSE, updated_at = NOW() WHERE user_id = $1 AND token = $2`
	if _, err := r.db.Exec(ctx, query, userID, token); err != nil {
		return fmt.Errorf("failed to deactivate push token: %w", err)
	}
	return nil
}

func (r *PostgresTokenRepository) DeactivateAll(ctx context.Context, userID string) error {
	query := `UPDATE push_tokens SET active = FALSE, updated_at = NOW() WHERE user_id = $1 AND active = TRUE`
	if _, err := r.db.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to deactivate push tokens: %w", err)
	}
	return nil
}

func (r *PostgresTokenRepository) ActiveTokens(ctx context.Context, userID string) ([]*pushmodels.PushToken, error) {
	query := `
		SELECT id, user_id, token, platform, timezone, active, created_at, updated_at
		FROM push_tokens
		WHERE user_id = $1 AND active = TRUE`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query push tokens: %w", err)
	}
	defer rows.Close()

	var tokens []*pushmodels.PushToken
	for rows.Next() {
		var t pushmodels.PushToken
		if err := rows.Scan(&t.ID, &t.UserID, &t.Token, &t.Platform, &t.Timezone, &t.Active, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan push token: %w", err)
		}
		tokens = append(tokens, &t)
	}
	return tokens, rows.Err()
}
