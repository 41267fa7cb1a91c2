package profile

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/google/uuid"

	"account-service/internal/domain/account"
)

var ErrInvalidInput = errors.New("invalid input")

const maxPhoneLen = 20

// AvatarStore saves uploaded avatar binaries and returns the reference kept
// on the profile row. Implemented by storage.S3AvatarStore.
type AvatarStore interface {
	Save(ctx context.Context, userID string, filename string, body io.Reader, contentType string) (string, error)
}

// AvatarUpload is one binary avatar received with a v2 update.
type AvatarUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// UpdateInput carries a partial update; nil fields stay untouched. The
// handler for each version only ever populates that version's writable set,
// so a v1 update can never reach the extended fields.
type UpdateInput struct {
	Phone  *string
	Bio    *string
	Avatar *AvatarUpload
}

type Usecase interface {
	Get(ctx context.Context, userID uuid.UUID) (account.Profile, error)
	Update(ctx context.Context, userID uuid.UUID, in UpdateInput) (account.Profile, error)
	Delete(ctx context.Context, userID uuid.UUID) error
}

type Service struct {
	profiles account.ProfileRepository
	avatars  AvatarStore
}

func NewService(profiles account.ProfileRepository, avatars AvatarStore) *Service {
	return &Service{profiles: profiles, avatars: avatars}
}

func (s *Service) Get(ctx context.Context, userID uuid.UUID) (account.Profile, error) {
	return s.profiles.GetOrCreate(ctx, userID)
}

func (s *Service) Update(ctx context.Context, userID uuid.UUID, in UpdateInput) (account.Profile, error) {
	ch := account.ProfileChanges{Bio: in.Bio}

	if in.Phone != nil {
		phone := strings.TrimSpace(*in.Phone)
		if len(phone) > maxPhoneLen {
			return account.Profile{}, ErrInvalidInput
		}
		ch.Phone = &phone
	}

	if in.Avatar != nil {
		if s.avatars == nil {
			return account.Profile{}, errors.New("avatar store not configured")
		}
		ref, err := s.avatars.Save(ctx, userID.String(), in.Avatar.Filename, in.Avatar.Body, in.Avatar.ContentType)
		if err != nil {
			return account.Profile{}, err
		}
		ch.Avatar = &ref
	}

	return s.profiles.Apply(ctx, userID, ch)
}

func (s *Service) Delete(ctx context.Context, userID uuid.UUID) error {
	return s.profiles.Delete(ctx, userID)
}
