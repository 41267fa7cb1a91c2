package handler

import (
	"errors"

	"account-service/internal/delivery/http/dto"
	"account-service/internal/delivery/http/middleware"
	"account-service/internal/pkg/response"
	"account-service/internal/usecase/auth"

	"github.com/gofiber/fiber/v3"
)

type AuthHandler struct {
	uc auth.Usecase
}

type registerRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func NewAuthHandler(uc auth.Usecase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

func (h *AuthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
}

func (h *AuthHandler) Register(c fiber.Ctx) error {
	var req registerRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	usr, tok, err := h.uc.Register(c.Context(), auth.RegisterInput{
		Username:  req.Username,
		Password:  req.Password,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return mapAuthError(err)
	}

	res := dto.RegisterResponse{
		ID:       usr.ID,
		Username: usr.Username,
		Email:    usr.Email,
		Token:    tok.Key,
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

func (h *AuthHandler) Login(c fiber.Ctx) error {
	var req loginRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	usr, tok, err := h.uc.Login(c.Context(), auth.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return mapAuthError(err)
	}

	res := dto.LoginResponse{
		Token:    tok.Key,
		UserID:   usr.ID,
		Username: usr.Username,
	}
	return c.Status(fiber.StatusOK).JSON(res)
}

func mapAuthError(err error) error {
	if err == nil {
		return nil
	}

	var valErr *auth.ValidationError
	switch {
	case errors.As(err, &valErr):
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid input", valErr.Fields, err)
	case errors.Is(err, auth.ErrUsernameTaken):
		data := map[string]string{"username": "a user with that username already exists"}
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid input", data, err)
	case errors.Is(err, auth.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid input", nil, err)
	case errors.Is(err, auth.ErrInvalidCredentials):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unable to log in with provided credentials", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
