package account

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Token is the opaque bearer credential. A user holds at most one live token;
// it is issued at registration and reused on every subsequent login.
type Token struct {
	Key       string
	UserID    uuid.UUID
	CreatedAt time.Time
}

// Profile is the single record behind both versioned profile views. Phone is
// the basic field (visible in v1 and v2); Bio and Avatar are extended fields
// (v2 only). Avatar holds a storage reference, not the binary itself.
type Profile struct {
	UserID    uuid.UUID
	Phone     string
	Bio       string
	Avatar    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProfileChanges carries a partial update: nil fields are left untouched.
type ProfileChanges struct {
	Phone  *string
	Bio    *string
	Avatar *string
}
