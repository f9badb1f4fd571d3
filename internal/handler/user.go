package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/labstack/echo/v4"

	"github.com/hkravch/tour-booking-api/internal/apperr"
	"github.com/hkravch/tour-booking-api/internal/middleware"
	"github.com/hkravch/tour-booking-api/internal/model"
	"github.com/hkravch/tour-booking-api/internal/repository"
)

// currentUser re-exports the principal lookup for handlers.
func currentUser(c echo.Context) (model.User, bool) { return middleware.CurrentUser(c) }

// UserHandler implements the self-service endpoints. Administrative user
// CRUD goes through the generic factory instead.
type UserHandler struct {
	Users *repository.UserRepo
}

func NewUserHandler(users *repository.UserRepo) *UserHandler {
	return &UserHandler{Users: users}
}

type updateMeReq struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

// Me returns the authenticated principal.
func (h *UserHandler) Me(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return apperr.Unauthorized("you are not logged in, please log in to get access")
	}
	return respondData(c, http.StatusOK, "user", u)
}

// UpdateMe changes the profile fields a user may edit about themselves.
// Password changes are rejected here so they always go through the
// /updateMyPassword flow that re-verifies the current password.
func (h *UserHandler) UpdateMe(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return apperr.Unauthorized("you are not logged in, please log in to get access")
	}
	var req updateMeReq
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	if req.Password != "" || req.PasswordConfirm != "" {
		return apperr.Validation("this route is not for password updates, please use /updateMyPassword")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = u.Name
	}
	email := strings.TrimSpace(req.Email)
	if email == "" {
		email = u.Email
	} else if err := validateEmail(email); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Users.UpdateProfile(ctx, u.ID, name, email); err != nil {
		return err
	}
	updated, err := h.Users.GetActiveByID(ctx, u.ID)
	if err != nil {
		return err
	}
	return respondData(c, http.StatusOK, "user", updated)
}

// DeleteMe soft-deletes the account: the row stays but stops appearing in
// any query, and outstanding tokens die with the active check in Protect.
func (h *UserHandler) DeleteMe(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return apperr.Unauthorized("you are not logged in, please log in to get access")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Users.Deactivate(ctx, u.ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// CreateUser exists so POST /users answers something sensible.
func (h *UserHandler) CreateUser(c echo.Context) error {
	return apperr.New(http.StatusInternalServerError, "this route is not defined, please use /signup instead")
}

type adminUserReq struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// BindAdminUpdate is the Binder backing the administrative PATCH
// /users/:id. Only profile fields and the role are updatable; passwords
// never move through this path.
func (h *UserHandler) BindAdminUpdate(c echo.Context, partial bool) (goqu.Record, Hook[model.User], error) {
	var req adminUserReq
	if err := c.Bind(&req); err != nil {
		return nil, nil, apperr.Validation("invalid request body")
	}
	rec := goqu.Record{}
	if name := strings.TrimSpace(req.Name); name != "" {
		rec["name"] = name
	}
	if email := strings.TrimSpace(req.Email); email != "" {
		if err := validateEmail(email); err != nil {
			return nil, nil, err
		}
		rec["email"] = repository.NormalizeEmail(email)
	}
	if req.Role != "" {
		if !model.ValidRole(req.Role) {
			return nil, nil, apperr.Validation("role must be one of: user, guide, lead-guide, admin")
		}
		rec["role"] = req.Role
	}
	return rec, nil, nil
}
