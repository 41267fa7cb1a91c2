package auth

import (
	"context"
	"errors"
	"testing"

	"account-service/internal/domain/account"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type mockUserRepo struct {
	existing map[string]account.User

	created      []account.User
	createdKeys  []string
	failCreateAs error
}

func (m *mockUserRepo) CreateWithToken(_ context.Context, u account.User, key string) (account.User, account.Token, error) {
	if m.failCreateAs != nil {
		return account.User{}, account.Token{}, m.failCreateAs
	}
	m.created = append(m.created, u)
	m.createdKeys = append(m.createdKeys, key)
	return u, account.Token{Key: key, UserID: u.ID}, nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id uuid.UUID) (account.User, error) {
	for _, u := range m.existing {
		if u.ID == id {
			return u, nil
		}
	}
	return account.User{}, account.ErrNotFound
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (account.User, error) {
	u, ok := m.existing[username]
	if !ok {
		return account.User{}, account.ErrNotFound
	}
	return u, nil
}

func (m *mockUserRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	_, ok := m.existing[username]
	return ok, nil
}

type mockTokenRepo struct {
	byUser map[uuid.UUID]account.Token
	byKey  map[string]account.User

	inserted int
}

func (m *mockTokenRepo) GetOrCreate(_ context.Context, userID uuid.UUID, newKey string) (account.Token, error) {
	if tok, ok := m.byUser[userID]; ok {
		return tok, nil
	}
	if m.byUser == nil {
		m.byUser = map[uuid.UUID]account.Token{}
	}
	tok := account.Token{Key: newKey, UserID: userID}
	m.byUser[userID] = tok
	m.inserted++
	return tok, nil
}

func (m *mockTokenRepo) GetUserByKey(_ context.Context, key string) (account.User, error) {
	u, ok := m.byKey[key]
	if !ok {
		return account.User{}, account.ErrNotFound
	}
	return u, nil
}

func TestService_Register_Validation(t *testing.T) {
	tests := []struct {
		name  string
		in    RegisterInput
		field string
	}{
		{"missing username", RegisterInput{Password: "secret1"}, "username"},
		{"short password", RegisterInput{Username: "alice", Password: "12345"}, "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := &mockUserRepo{}
			svc := NewService(users, &mockTokenRepo{})

			_, _, err := svc.Register(context.Background(), tt.in)
			var valErr *ValidationError
			if !errors.As(err, &valErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if _, ok := valErr.Fields[tt.field]; !ok {
				t.Fatalf("expected field %q in %v", tt.field, valErr.Fields)
			}
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("ValidationError should unwrap to ErrInvalidInput")
			}
			if len(users.created) != 0 {
				t.Fatalf("nothing should be persisted on validation failure")
			}
		})
	}
}

func TestService_Register_DuplicateUsername(t *testing.T) {
	users := &mockUserRepo{existing: map[string]account.User{
		"alice": {ID: uuid.New(), Username: "alice"},
	}}
	svc := NewService(users, &mockTokenRepo{})

	_, _, err := svc.Register(context.Background(), RegisterInput{Username: "alice", Password: "secret1"})
	if !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
	if len(users.createdKeys) != 0 {
		t.Fatalf("no token may be issued for a failed registration")
	}
}

func TestService_Register_DuplicateUsernameRace(t *testing.T) {
	users := &mockUserRepo{failCreateAs: account.ErrUsernameTaken}
	svc := NewService(users, &mockTokenRepo{})

	_, _, err := svc.Register(context.Background(), RegisterInput{Username: "bob", Password: "secret1"})
	if !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken on insert race, got %v", err)
	}
}

func TestService_Register_Success(t *testing.T) {
	users := &mockUserRepo{}
	svc := NewService(users, &mockTokenRepo{})

	usr, tok, err := svc.Register(context.Background(), RegisterInput{
		Username: "  alice ",
		Password: "secret1",
		Email:    "a@example.com",
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if usr.Username != "alice" {
		t.Fatalf("expected trimmed username, got %q", usr.Username)
	}
	if usr.PasswordHash != "" {
		t.Fatalf("password hash must not leave the service")
	}
	if len(tok.Key) != 40 {
		t.Fatalf("expected 40-char token key, got %d", len(tok.Key))
	}
	if len(users.created) != 1 {
		t.Fatalf("expected exactly one create, got %d", len(users.created))
	}
	if err := bcrypt.CompareHashAndPassword([]byte(users.created[0].PasswordHash), []byte("secret1")); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
}

func TestService_Login_IndistinguishableFailures(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("rightpass"), bcrypt.DefaultCost)
	users := &mockUserRepo{existing: map[string]account.User{
		"alice": {ID: uuid.New(), Username: "alice", PasswordHash: string(hash)},
	}}
	svc := NewService(users, &mockTokenRepo{})

	_, _, unknownErr := svc.Login(context.Background(), LoginInput{Username: "nosuch", Password: "rightpass"})
	_, _, wrongErr := svc.Login(context.Background(), LoginInput{Username: "alice", Password: "wrongpass"})

	if !errors.Is(unknownErr, ErrInvalidCredentials) || !errors.Is(wrongErr, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for both, got %v / %v", unknownErr, wrongErr)
	}
	if unknownErr.Error() != wrongErr.Error() {
		t.Fatalf("unknown-user and bad-password failures must look identical")
	}
}

func TestService_Login_ReusesExistingToken(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.DefaultCost)
	userID := uuid.New()
	users := &mockUserRepo{existing: map[string]account.User{
		"alice": {ID: userID, Username: "alice", PasswordHash: string(hash)},
	}}
	tokens := &mockTokenRepo{byUser: map[uuid.UUID]account.Token{
		userID: {Key: "existing-key", UserID: userID},
	}}
	svc := NewService(users, tokens)

	_, tok, err := svc.Login(context.Background(), LoginInput{Username: "alice", Password: "secret1"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if tok.Key != "existing-key" {
		t.Fatalf("login must reuse the standing token, got %q", tok.Key)
	}
	if tokens.inserted != 0 {
		t.Fatalf("no new token row may be created for a user that has one")
	}
}

func TestService_Authenticate(t *testing.T) {
	userID := uuid.New()
	tokens := &mockTokenRepo{byKey: map[string]account.User{
		"good-key": {ID: userID, Username: "alice", PasswordHash: "hash"},
	}}
	svc := NewService(&mockUserRepo{}, tokens)

	usr, err := svc.Authenticate(context.Background(), "good-key")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if usr.ID != userID {
		t.Fatalf("wrong user resolved")
	}
	if usr.PasswordHash != "" {
		t.Fatalf("password hash must not leave the service")
	}

	if _, err := svc.Authenticate(context.Background(), "bad-key"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for empty key, got %v", err)
	}
}
