package account

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrUsernameTaken = errors.New("username already taken")
)

type UserRepository interface {
	// CreateWithToken persists the user, an empty profile and the given
	// token key in one transaction. Nothing is written if any step fails.
	CreateWithToken(ctx context.Context, u User, tokenKey string) (User, Token, error)

	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

type TokenRepository interface {
	// GetOrCreate returns the user's existing token, inserting newKey only
	// when the user has none yet.
	GetOrCreate(ctx context.Context, userID uuid.UUID, newKey string) (Token, error)

	// GetUserByKey resolves a presented token key to its owner.
	GetUserByKey(ctx context.Context, key string) (User, error)
}

type ProfileRepository interface {
	// GetOrCreate returns the user's profile, creating an empty one when it
	// does not exist (first access after a v2 delete).
	GetOrCreate(ctx context.Context, userID uuid.UUID) (Profile, error)

	// Apply upserts the supplied changes onto the profile row: nil fields
	// keep their stored value, updated_at advances. A missing row is
	// recreated with the supplied fields.
	Apply(ctx context.Context, userID uuid.UUID, ch ProfileChanges) (Profile, error)

	Delete(ctx context.Context, userID uuid.UUID) error
}
