package dto

import (
	"time"

	"github.com/google/uuid"

	"account-service/internal/domain/account"
)

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
}

// ProfileResponseV1 is the basic-field projection of the profile record.
type ProfileResponseV1 struct {
	User      UserResponse `json:"user"`
	Phone     string       `json:"phone"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// ProfileResponseV2 adds the extended fields on top of the same record.
type ProfileResponseV2 struct {
	User      UserResponse `json:"user"`
	Phone     string       `json:"phone"`
	Bio       string       `json:"bio"`
	Avatar    *string      `json:"avatar"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func NewUserResponse(u account.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

func NewProfileResponseV1(u account.User, p account.Profile) ProfileResponseV1 {
	return ProfileResponseV1{
		User:      NewUserResponse(u),
		Phone:     p.Phone,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func NewProfileResponseV2(u account.User, p account.Profile) ProfileResponseV2 {
	var avatar *string
	if p.Avatar != "" {
		a := p.Avatar
		avatar = &a
	}
	return ProfileResponseV2{
		User:      NewUserResponse(u),
		Phone:     p.Phone,
		Bio:       p.Bio,
		Avatar:    avatar,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
