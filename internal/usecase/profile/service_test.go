package profile

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"account-service/internal/domain/account"

	"github.com/google/uuid"
)

type mockProfileRepo struct {
	stored  account.Profile
	applied []account.ProfileChanges
	deleted []uuid.UUID
}

func (m *mockProfileRepo) GetOrCreate(_ context.Context, userID uuid.UUID) (account.Profile, error) {
	p := m.stored
	p.UserID = userID
	return p, nil
}

func (m *mockProfileRepo) Apply(_ context.Context, userID uuid.UUID, ch account.ProfileChanges) (account.Profile, error) {
	m.applied = append(m.applied, ch)
	p := m.stored
	p.UserID = userID
	if ch.Phone != nil {
		p.Phone = *ch.Phone
	}
	if ch.Bio != nil {
		p.Bio = *ch.Bio
	}
	if ch.Avatar != nil {
		p.Avatar = *ch.Avatar
	}
	m.stored = p
	return p, nil
}

func (m *mockProfileRepo) Delete(_ context.Context, userID uuid.UUID) error {
	m.deleted = append(m.deleted, userID)
	return nil
}

type mockAvatarStore struct {
	savedUser string
	savedName string
	ref       string
	err       error
}

func (m *mockAvatarStore) Save(_ context.Context, userID, filename string, body io.Reader, _ string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	_, _ = io.Copy(io.Discard, body)
	m.savedUser = userID
	m.savedName = filename
	return m.ref, nil
}

func strPtr(s string) *string { return &s }

func TestService_Update_BasicFieldOnly(t *testing.T) {
	repo := &mockProfileRepo{stored: account.Profile{Bio: "old bio", Avatar: "old-avatar"}}
	svc := NewService(repo, nil)

	p, err := svc.Update(context.Background(), uuid.New(), UpdateInput{Phone: strPtr("9999999999")})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if p.Phone != "9999999999" {
		t.Fatalf("phone not applied: %q", p.Phone)
	}

	if len(repo.applied) != 1 {
		t.Fatalf("expected one apply, got %d", len(repo.applied))
	}
	ch := repo.applied[0]
	if ch.Bio != nil || ch.Avatar != nil {
		t.Fatalf("a phone-only update must not touch extended fields: %+v", ch)
	}
	if p.Bio != "old bio" || p.Avatar != "old-avatar" {
		t.Fatalf("extended fields perturbed: %+v", p)
	}
}

func TestService_Update_PhoneTooLong(t *testing.T) {
	repo := &mockProfileRepo{}
	svc := NewService(repo, nil)

	_, err := svc.Update(context.Background(), uuid.New(), UpdateInput{Phone: strPtr(strings.Repeat("9", 21))})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if len(repo.applied) != 0 {
		t.Fatalf("invalid input must not reach storage")
	}
}

func TestService_Update_OmittedPhoneKeepsStored(t *testing.T) {
	repo := &mockProfileRepo{stored: account.Profile{Phone: "111"}}
	svc := NewService(repo, nil)

	p, err := svc.Update(context.Background(), uuid.New(), UpdateInput{Bio: strPtr("hello v2")})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if repo.applied[0].Phone != nil {
		t.Fatalf("omitted phone must stay nil in changes")
	}
	if p.Phone != "111" || p.Bio != "hello v2" {
		t.Fatalf("unexpected result: %+v", p)
	}
}

func TestService_Update_AvatarUpload(t *testing.T) {
	repo := &mockProfileRepo{}
	store := &mockAvatarStore{ref: "avatars/user_x/pic.png"}
	svc := NewService(repo, store)

	userID := uuid.New()
	_, err := svc.Update(context.Background(), userID, UpdateInput{
		Avatar: &AvatarUpload{Filename: "pic.png", ContentType: "image/png", Body: strings.NewReader("bytes")},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if store.savedUser != userID.String() || store.savedName != "pic.png" {
		t.Fatalf("avatar not saved under the owner's key: %q %q", store.savedUser, store.savedName)
	}
	if ch := repo.applied[0]; ch.Avatar == nil || *ch.Avatar != store.ref {
		t.Fatalf("stored reference not applied: %+v", ch)
	}
}

func TestService_Update_AvatarWithoutStore(t *testing.T) {
	repo := &mockProfileRepo{}
	svc := NewService(repo, nil)

	_, err := svc.Update(context.Background(), uuid.New(), UpdateInput{
		Avatar: &AvatarUpload{Filename: "pic.png", Body: strings.NewReader("bytes")},
	})
	if err == nil {
		t.Fatalf("expected error when no avatar store is configured")
	}
	if len(repo.applied) != 0 {
		t.Fatalf("nothing may be written when the upload fails")
	}
}

func TestService_Delete(t *testing.T) {
	repo := &mockProfileRepo{}
	svc := NewService(repo, nil)

	userID := uuid.New()
	if err := svc.Delete(context.Background(), userID); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != userID {
		t.Fatalf("delete not forwarded for the caller's own profile")
	}
}
