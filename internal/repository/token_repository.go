package repository

import (
	"context"

	"account-service/internal/database"
	"account-service/internal/domain/account"

	"github.com/google/uuid"
)

type PostgresTokenRepository struct {
	db database.DB
}

func NewPostgresTokenRepository(db database.DB) *PostgresTokenRepository {
	return &PostgresTokenRepository{db: db}
}

// GetOrCreate inserts newKey only when the user has no token yet, then reads
// back whichever key is live. The unique constraint on user_id makes the
// insert a no-op for users that already hold a token, so the key is never
// rotated.
func (r *PostgresTokenRepository) GetOrCreate(ctx context.Context, userID uuid.UUID, newKey string) (account.Token, error) {
	if _, err := r.db.Exec(ctx,
		`INSERT INTO auth_tokens (key, user_id) VALUES ($1, $2)
		 ON CONFLICT (user_id) DO NOTHING`,
		newKey, userID,
	); err != nil {
		return account.Token{}, err
	}

	var tok account.Token
	err := r.db.QueryRow(ctx,
		`SELECT key, user_id, created_at FROM auth_tokens WHERE user_id = $1`,
		userID,
	).Scan(&tok.Key, &tok.UserID, &tok.CreatedAt)
	if err != nil {
		return account.Token{}, mapNoRows(err)
	}
	return tok, nil
}

func (r *PostgresTokenRepository) GetUserByKey(ctx context.Context, key string) (account.User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT u.id, u.username, u.email, u.first_name, u.last_name, u.password_hash, u.created_at, u.updated_at
		 FROM auth_tokens t
		 JOIN users u ON u.id = t.user_id
		 WHERE t.key = $1`, key,
	)
	var u account.User
	if err := scanUser(row, &u); err != nil {
		return account.User{}, mapNoRows(err)
	}
	return u, nil
}
