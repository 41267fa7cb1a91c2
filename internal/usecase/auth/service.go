package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"account-service/internal/domain/account"
	"account-service/internal/pkg/token"
)

var (
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("invalid input")
)

const (
	maxUsernameLen = 150
	minPasswordLen = 6
)

// ValidationError lists the fields that failed registration validation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "invalid input"
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

type RegisterInput struct {
	Username  string
	Password  string
	Email     string
	FirstName string
	LastName  string
}

type LoginInput struct {
	Username string
	Password string
}

type Usecase interface {
	Register(ctx context.Context, in RegisterInput) (account.User, account.Token, error)
	Login(ctx context.Context, in LoginInput) (account.User, account.Token, error)
	Authenticate(ctx context.Context, key string) (account.User, error)
}

type Service struct {
	users  account.UserRepository
	tokens account.TokenRepository
}

func NewService(users account.UserRepository, tokens account.TokenRepository) *Service {
	return &Service{users: users, tokens: tokens}
}

// Register creates the user, an empty profile and the bearer token in one
// transaction; a validation failure leaves nothing behind.
func (s *Service) Register(ctx context.Context, in RegisterInput) (account.User, account.Token, error) {
	username := strings.TrimSpace(in.Username)

	fields := map[string]string{}
	if username == "" {
		fields["username"] = "this field is required"
	} else if len(username) > maxUsernameLen {
		fields["username"] = "at most 150 characters"
	}
	if len(in.Password) < minPasswordLen {
		fields["password"] = "at least 6 characters"
	}
	if len(fields) > 0 {
		return account.User{}, account.Token{}, &ValidationError{Fields: fields}
	}

	exists, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return account.User{}, account.Token{}, err
	}
	if exists {
		return account.User{}, account.Token{}, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return account.User{}, account.Token{}, err
	}

	key, err := token.NewKey()
	if err != nil {
		return account.User{}, account.Token{}, err
	}

	u := account.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        strings.TrimSpace(in.Email),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		PasswordHash: string(hash),
	}

	created, tok, err := s.users.CreateWithToken(ctx, u, key)
	if err != nil {
		// Lost the race on the unique index after the existence check.
		if errors.Is(err, account.ErrUsernameTaken) {
			return account.User{}, account.Token{}, ErrUsernameTaken
		}
		return account.User{}, account.Token{}, err
	}

	return sanitizeUser(created), tok, nil
}

// Login verifies the credential and hands back the user's standing token.
// Unknown username and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, in LoginInput) (account.User, account.Token, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return account.User{}, account.Token{}, ErrInvalidCredentials
	}

	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return account.User{}, account.Token{}, ErrInvalidCredentials
		}
		return account.User{}, account.Token{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		return account.User{}, account.Token{}, ErrInvalidCredentials
	}

	// Registration issues the token, so this normally reads the existing
	// row; the fresh key only lands for accounts predating token issuance.
	key, err := token.NewKey()
	if err != nil {
		return account.User{}, account.Token{}, err
	}
	tok, err := s.tokens.GetOrCreate(ctx, u.ID, key)
	if err != nil {
		return account.User{}, account.Token{}, err
	}

	return sanitizeUser(u), tok, nil
}

// Authenticate resolves a presented bearer key to its owner.
func (s *Service) Authenticate(ctx context.Context, key string) (account.User, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return account.User{}, ErrInvalidCredentials
	}
	u, err := s.tokens.GetUserByKey(ctx, key)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return account.User{}, ErrInvalidCredentials
		}
		return account.User{}, err
	}
	return sanitizeUser(u), nil
}

func sanitizeUser(u account.User) account.User {
	u.PasswordHash = ""
	return u
}
