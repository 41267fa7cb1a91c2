package repository

import (
	"context"
	"errors"

	"account-service/internal/database"
	"account-service/internal/domain/account"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type PostgresUserRepository struct {
	db database.DB
}

func NewPostgresUserRepository(db database.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) CreateWithToken(ctx context.Context, u account.User, tokenKey string) (account.User, account.Token, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return account.User{}, account.Token{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var created account.User
	row := tx.QueryRow(ctx,
		`INSERT INTO users (id, username, email, first_name, last_name, password_hash)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, username, email, first_name, last_name, password_hash, created_at, updated_at`,
		u.ID, u.Username, u.Email, u.FirstName, u.LastName, u.PasswordHash,
	)
	if err := scanUser(row, &created); err != nil {
		if isUniqueViolation(err) {
			return account.User{}, account.Token{}, account.ErrUsernameTaken
		}
		return account.User{}, account.Token{}, err
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO profiles (user_id) VALUES ($1)`, created.ID,
	); err != nil {
		return account.User{}, account.Token{}, err
	}

	var tok account.Token
	if err := tx.QueryRow(ctx,
		`INSERT INTO auth_tokens (key, user_id) VALUES ($1, $2)
		 RETURNING key, user_id, created_at`,
		tokenKey, created.ID,
	).Scan(&tok.Key, &tok.UserID, &tok.CreatedAt); err != nil {
		return account.User{}, account.Token{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return account.User{}, account.Token{}, err
	}
	return created, tok, nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id uuid.UUID) (account.User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, username, email, first_name, last_name, password_hash, created_at, updated_at
		 FROM users WHERE id = $1`, id,
	)
	var u account.User
	if err := scanUser(row, &u); err != nil {
		return account.User{}, mapNoRows(err)
	}
	return u, nil
}

func (r *PostgresUserRepository) GetByUsername(ctx context.Context, username string) (account.User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, username, email, first_name, last_name, password_hash, created_at, updated_at
		 FROM users WHERE username = $1`, username,
	)
	var u account.User
	if err := scanUser(row, &u); err != nil {
		return account.User{}, mapNoRows(err)
	}
	return u, nil
}

func (r *PostgresUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username,
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func scanUser(row database.Row, u *account.User) error {
	return row.Scan(
		&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName,
		&u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
}

func mapNoRows(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return account.ErrNotFound
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
