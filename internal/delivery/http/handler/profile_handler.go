package handler

import (
	"errors"
	"strings"

	"account-service/internal/delivery/http/dto"
	"account-service/internal/delivery/http/middleware"
	"account-service/internal/domain/account"
	"account-service/internal/pkg/response"
	"account-service/internal/usecase/profile"

	"github.com/gofiber/fiber/v3"
)

// ProfileHandler serves both versioned views of the profile resource. The
// versions differ only in which fields they show and accept; the record
// behind them is the same row.
type ProfileHandler struct {
	uc profile.Usecase
}

type updateV1Request struct {
	Phone *string `json:"phone"`
}

type updateV2Request struct {
	Phone *string `json:"phone"`
	Bio   *string `json:"bio"`
}

func NewProfileHandler(uc profile.Usecase) *ProfileHandler {
	return &ProfileHandler{uc: uc}
}

func (h *ProfileHandler) RegisterV1Routes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/profile", h.GetV1)
	r.Put("/profile", h.UpdateV1)
	// v1 never exposed delete; reject it explicitly so the row stays put.
	r.Delete("/profile", h.DeleteNotAllowed)
}

func (h *ProfileHandler) RegisterV2Routes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/profile", h.GetV2)
	r.Put("/profile", h.UpdateV2)
	r.Delete("/profile", h.DeleteV2)
}

func (h *ProfileHandler) GetV1(c fiber.Ctx) error {
	usr, ok := currentUser(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	prof, err := h.uc.Get(c.Context(), usr.ID)
	if err != nil {
		return mapProfileError(err)
	}
	return c.Status(fiber.StatusOK).JSON(dto.NewProfileResponseV1(usr, prof))
}

func (h *ProfileHandler) UpdateV1(c fiber.Ctx) error {
	usr, ok := currentUser(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	var req updateV1Request
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}

	prof, err := h.uc.Update(c.Context(), usr.ID, profile.UpdateInput{Phone: req.Phone})
	if err != nil {
		return mapProfileError(err)
	}
	return c.Status(fiber.StatusOK).JSON(dto.NewProfileResponseV1(usr, prof))
}

func (h *ProfileHandler) GetV2(c fiber.Ctx) error {
	usr, ok := currentUser(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	prof, err := h.uc.Get(c.Context(), usr.ID)
	if err != nil {
		return mapProfileError(err)
	}
	return c.Status(fiber.StatusOK).JSON(dto.NewProfileResponseV2(usr, prof))
}

func (h *ProfileHandler) UpdateV2(c fiber.Ctx) error {
	usr, ok := currentUser(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	in, cleanup, err := h.bindV2Update(c)
	if err != nil {
		return err
	}
	defer cleanup()

	prof, err := h.uc.Update(c.Context(), usr.ID, in)
	if err != nil {
		return mapProfileError(err)
	}
	return c.Status(fiber.StatusOK).JSON(dto.NewProfileResponseV2(usr, prof))
}

func (h *ProfileHandler) DeleteV2(c fiber.Ctx) error {
	usr, ok := currentUser(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	if err := h.uc.Delete(c.Context(), usr.ID); err != nil {
		return mapProfileError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ProfileHandler) DeleteNotAllowed(c fiber.Ctx) error {
	return middleware.NewAppError(fiber.StatusMethodNotAllowed, `Method "DELETE" not allowed`, nil, nil)
}

// bindV2Update reads either a JSON body or a multipart form. Multipart is how
// avatar binaries arrive; text fields are partial the same way JSON ones are:
// absent keys leave the stored value alone. Unknown fields are ignored.
func (h *ProfileHandler) bindV2Update(c fiber.Ctx) (profile.UpdateInput, func(), error) {
	noop := func() {}

	if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		var req updateV2Request
		if err := c.Bind().Body(&req); err != nil {
			return profile.UpdateInput{}, noop, middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
		}
		return profile.UpdateInput{Phone: req.Phone, Bio: req.Bio}, noop, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return profile.UpdateInput{}, noop, middleware.NewAppError(fiber.StatusBadRequest, "Invalid multipart payload", nil, err)
	}

	var in profile.UpdateInput
	if vals, ok := form.Value["phone"]; ok && len(vals) > 0 {
		in.Phone = &vals[0]
	}
	if vals, ok := form.Value["bio"]; ok && len(vals) > 0 {
		in.Bio = &vals[0]
	}

	files, ok := form.File["avatar"]
	if !ok || len(files) == 0 {
		return in, noop, nil
	}

	fh := files[0]
	f, err := fh.Open()
	if err != nil {
		return profile.UpdateInput{}, noop, middleware.NewAppError(fiber.StatusBadRequest, "Invalid avatar upload", nil, err)
	}

	in.Avatar = &profile.AvatarUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Body:        f,
	}
	return in, func() { _ = f.Close() }, nil
}

func currentUser(c fiber.Ctx) (account.User, bool) {
	usr, ok := c.Locals(middleware.CtxUserKey).(account.User)
	return usr, ok
}

func mapProfileError(err error) error {
	switch {
	case errors.Is(err, profile.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
