package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hkravch/tour-booking-api/internal/apperr"
	"github.com/hkravch/tour-booking-api/internal/config"
	"github.com/hkravch/tour-booking-api/internal/model"
	"github.com/hkravch/tour-booking-api/internal/queue"
	"github.com/hkravch/tour-booking-api/internal/repository"
	"github.com/hkravch/tour-booking-api/internal/service"
	"github.com/hkravch/tour-booking-api/internal/token"
)

// AuthHandler bundles dependencies for the authentication endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
}

func NewAuthHandler(cfg config.Config, users *repository.UserRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users}
}

// ----- DTOs -----

type signupReq struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type forgotReq struct {
	Email string `json:"email"`
}
type resetReq struct {
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}
type updatePasswordReq struct {
	PasswordCurrent string `json:"password_current"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

// Signup creates a user and logs them in immediately. The role is always
// "user"; privileged roles are assigned by an administrator afterwards, so
// nobody can sign up as admin.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return apperr.Validation("please tell us your name")
	}
	if err := validateEmail(req.Email); err != nil {
		return err
	}
	if err := validateNewPassword(req.Password, req.PasswordConfirm); err != nil {
		return err
	}

	hash, err := token.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Name, req.Email, hash, model.RoleUser)
	if err != nil {
		return err
	}
	u, err := h.Users.GetActiveByID(ctx, uid)
	if err != nil {
		return err
	}
	return h.sendToken(c, u, http.StatusCreated)
}

// Login verifies credentials and returns a fresh token. Unknown email and
// wrong password produce the same error so the endpoint leaks nothing about
// which accounts exist.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return apperr.Validation("please provide email and password")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.ErrInvalidCredentials
		}
		return err
	}
	if !token.VerifyPassword(u.PasswordHash, req.Password) {
		return apperr.ErrInvalidCredentials
	}
	return h.sendToken(c, u, http.StatusOK)
}

// Logout overwrites the jwt cookie with a short-lived dummy value. Tokens
// held in Authorization headers simply expire on their own.
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     "jwt",
		Value:    "loggedout",
		Path:     "/",
		Expires:  time.Now().Add(10 * time.Second),
		HttpOnly: true,
	})
	return c.JSON(http.StatusOK, echo.Map{"status": "success"})
}

// ForgotPassword issues a reset ticket and mails a reset link. Only the
// SHA-256 hash of the token is stored. If the mail event cannot even be
// enqueued, the half-written ticket is rolled back before the error
// surfaces so no un-mailable ticket lingers on the account.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotReq
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	if err := validateEmail(req.Email); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("there is no user with that email address")
		}
		return err
	}

	ticket, err := token.NewResetTicket(h.Cfg.ResetTTLMin)
	if err != nil {
		return err
	}
	if err := h.Users.SetResetTicket(ctx, u.ID, ticket.Hash, ticket.Exp); err != nil {
		return err
	}

	event := queue.PasswordResetRequested{
		EventID:     uuid.NewString(),
		To:          u.Email,
		Name:        u.Name,
		From:        h.Cfg.MailFrom,
		Subject:     "Your password reset token (valid for 10 minutes)",
		ResetURL:    h.Cfg.BaseURL + "/api/v1/users/resetPassword/" + ticket.Raw,
		ExpiresAt:   ticket.Exp.Format(time.RFC3339),
		RequestedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := service.PublishPasswordReset(ctx, event); err != nil {
		// best-effort rollback; the ticket must not outlive a failed delivery
		_ = h.Users.ClearResetTicket(ctx, u.ID)
		return apperr.Wrap(http.StatusInternalServerError,
			"there was an error sending the email, try again later", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"status": "success", "message": "token sent to email"})
}

// ResetPassword consumes a reset ticket: the submitted token is re-hashed
// and must match an unexpired stored digest. The ticket is cleared by the
// password update, so it validates exactly once.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetReq
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	if err := validateNewPassword(req.Password, req.PasswordConfirm); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByValidResetTicket(ctx, token.HashResetRaw(c.Param("token")))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.ErrTokenInvalidOrExpired
		}
		return err
	}

	hash, err := token.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return err
	}
	if err := h.Users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return err
	}
	return h.sendToken(c, u, http.StatusOK)
}

// UpdatePassword lets a logged-in user rotate their password. The current
// password is always re-checked; holding a valid token is not enough.
func (h *AuthHandler) UpdatePassword(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return apperr.Unauthorized("you are not logged in, please log in to get access")
	}

	var req updatePasswordReq
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	if !token.VerifyPassword(u.PasswordHash, req.PasswordCurrent) {
		return apperr.Unauthorized("your current password is wrong")
	}
	if err := validateNewPassword(req.Password, req.PasswordConfirm); err != nil {
		return err
	}

	hash, err := token.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return err
	}
	return h.sendToken(c, u, http.StatusOK)
}

// sendToken issues a session token, mirrors it into an httpOnly cookie and
// responds with the token plus the sanitized user (credential fields carry
// json:"-" and never serialize).
func (h *AuthHandler) sendToken(c echo.Context, u model.User, code int) error {
	sess, err := token.Issue(h.Cfg.JWTSecret, u.ID, h.Cfg.JWTTTLMin)
	if err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     "jwt",
		Value:    sess.Token,
		Path:     "/",
		Expires:  time.Now().Add(time.Duration(h.Cfg.CookieTTLDays) * 24 * time.Hour),
		HttpOnly: true,
		Secure:   !h.Cfg.IsDev(),
	})
	return c.JSON(code, echo.Map{
		"status": "success",
		"token":  sess.Token,
		"data":   echo.Map{"user": u},
	})
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	at := strings.IndexByte(email, '@')
	if at < 1 || at == len(email)-1 || !strings.Contains(email[at:], ".") {
		return apperr.Validation("please provide a valid email address")
	}
	return nil
}

func validateNewPassword(password, confirm string) error {
	if len(password) < 8 {
		return apperr.Validation("password must be at least 8 characters")
	}
	if password != confirm {
		return apperr.Validation("passwords do not match")
	}
	return nil
}
