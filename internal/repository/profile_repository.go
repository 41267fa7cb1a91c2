package repository

import (
	"context"

	"account-service/internal/database"
	"account-service/internal/domain/account"

	"github.com/google/uuid"
)

type PostgresProfileRepository struct {
	db database.DB
}

func NewPostgresProfileRepository(db database.DB) *PostgresProfileRepository {
	return &PostgresProfileRepository{db: db}
}

const profileColumns = `user_id, phone, bio, avatar, created_at, updated_at`

// GetOrCreate reads the user's profile, lazily recreating an empty row when
// it was removed through the v2 delete.
func (r *PostgresProfileRepository) GetOrCreate(ctx context.Context, userID uuid.UUID) (account.Profile, error) {
	if _, err := r.db.Exec(ctx,
		`INSERT INTO profiles (user_id) VALUES ($1)
		 ON CONFLICT (user_id) DO NOTHING`, userID,
	); err != nil {
		return account.Profile{}, err
	}

	row := r.db.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`, userID,
	)
	var p account.Profile
	if err := scanProfile(row, &p); err != nil {
		return account.Profile{}, mapNoRows(err)
	}
	return p, nil
}

// Apply is the single write path for both profile versions. COALESCE keeps
// every column whose change is nil, so a v1 update can never perturb the
// extended fields and a v2 update leaving phone unset keeps the stored one.
func (r *PostgresProfileRepository) Apply(ctx context.Context, userID uuid.UUID, ch account.ProfileChanges) (account.Profile, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO profiles (user_id, phone, bio, avatar)
		 VALUES ($1, COALESCE($2, ''), COALESCE($3, ''), COALESCE($4, ''))
		 ON CONFLICT (user_id) DO UPDATE SET
		     phone      = COALESCE($2, profiles.phone),
		     bio        = COALESCE($3, profiles.bio),
		     avatar     = COALESCE($4, profiles.avatar),
		     updated_at = now()
		 RETURNING `+profileColumns,
		userID, ch.Phone, ch.Bio, ch.Avatar,
	)
	var p account.Profile
	if err := scanProfile(row, &p); err != nil {
		return account.Profile{}, err
	}
	return p, nil
}

// Delete is idempotent: removing an already-absent profile is not an error,
// since the row would be lazily recreated on the next access anyway.
func (r *PostgresProfileRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM profiles WHERE user_id = $1`, userID,
	)
	return err
}

func scanProfile(row database.Row, p *account.Profile) error {
	return row.Scan(&p.UserID, &p.Phone, &p.Bio, &p.Avatar, &p.CreatedAt, &p.UpdatedAt)
}
