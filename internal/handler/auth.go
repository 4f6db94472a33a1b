package handler

import (
    "context"
    "database/sql"
    "errors"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/nwssu-ccis/campus-parking/internal/config"
    "github.com/nwssu-ccis/campus-parking/internal/repository"
    "github.com/nwssu-ccis/campus-parking/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.  The booking core
// never touches credentials; everything password- and token-related lives
// behind these handlers and the repositories they call.
type AuthHandler struct {
	Cfg    config.Config
	Users  *repository.UserRepo
	Tokens *repository.TokenRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, t *repository.TokenRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t}
}

// ----- DTOs -----

type signupReq struct {
	StudentNumber string `json:"student_number"`
	Password      string `json:"password"`
}
type loginReq struct {
	StudentNumber string `json:"student_number"`
	Password      string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type authData struct {
	UserID        uint64    `json:"user_id"`
	StudentNumber string    `json:"student_number"`
	Access        tokenPart `json:"access"`
	Refresh       tokenPart `json:"refresh"`
}

// Signup creates a student account.  The student number is the unique
// login identifier; a duplicate signup fails and leaves the first account
// untouched.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "Invalid request body.")
	}
	req.StudentNumber = strings.TrimSpace(req.StudentNumber)
	if req.StudentNumber == "" || req.Password == "" {
		return respondErr(c, http.StatusBadRequest, "Student number and password are required.")
	}
	if len(req.Password) < 6 {
		return respondErr(c, http.StatusBadRequest, "Password must be at least 6 characters.")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	_, err := h.Users.Create(ctx, req.StudentNumber, req.Password, "user", h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrStudentExists) {
			return respondErr(c, http.StatusConflict, "Student number already exists.")
		}
		return respondErr(c, http.StatusInternalServerError, "Could not create account.")
	}
	return respondOK(c, http.StatusCreated, "Account created. You can now log in.", nil)
}

// Login verifies credentials and returns a fresh token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "Invalid request body.")
	}
	req.StudentNumber = strings.TrimSpace(req.StudentNumber)
	if req.StudentNumber == "" || req.Password == "" {
		return respondErr(c, http.StatusBadRequest, "Student number and password are required.")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByStudentNumber(ctx, req.StudentNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return respondErr(c, http.StatusUnauthorized, "Invalid credentials.")
		}
		return respondErr(c, http.StatusInternalServerError, "Login failed.")
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return respondErr(c, http.StatusUnauthorized, "Invalid credentials.")
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.StudentNumber, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, "Could not issue access token.")
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, "Could not issue refresh token.")
	}
	if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return respondErr(c, http.StatusInternalServerError, "Could not persist session.")
	}

	return respondOK(c, http.StatusOK, "Login successful.", authData{
		UserID:        u.ID,
		StudentNumber: u.StudentNumber,
		Access:        tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh:       tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
	})
}

// Refresh validates a refresh token by hash, revokes it and issues a new
// token pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return respondErr(c, http.StatusBadRequest, "refresh_token is required.")
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return respondErr(c, http.StatusUnauthorized, "Invalid refresh token.")
	}
	_ = h.Tokens.RevokeByHash(ctx, hash)

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, "Could not load account.")
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.StudentNumber, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, "Could not issue access token.")
	}
	newRef, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, "Could not issue refresh token.")
	}
	if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(newRef.Raw), newRef.Exp); err != nil {
		return respondErr(c, http.StatusInternalServerError, "Could not persist session.")
	}

	return respondOK(c, http.StatusOK, "Token refreshed.", authData{
		UserID:        u.ID,
		StudentNumber: u.StudentNumber,
		Access:        tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh:       tokenPart{Token: newRef.Raw, Expires: newRef.Exp},
	})
}

// Logout revokes the refresh token supplied in the body, terminating that
// session.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return respondErr(c, http.StatusBadRequest, "refresh_token is required.")
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
		return respondErr(c, http.StatusUnauthorized, "Invalid refresh token.")
	}
	if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
		return respondErr(c, http.StatusInternalServerError, "Logout failed.")
	}
	return c.NoContent(http.StatusNoContent)
}

// LogoutAll revokes every active session of the authenticated user, for
// use after a suspected credential leak.
func (h *AuthHandler) LogoutAll(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return respondErr(c, http.StatusUnauthorized, "Invalid session.")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Tokens.RevokeAllForUser(ctx, userID); err != nil {
		return respondErr(c, http.StatusInternalServerError, "Logout failed.")
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the identity claims of the current session.
func (h *AuthHandler) Me(c echo.Context) error {
	return respondOK(c, http.StatusOK, "OK", echo.Map{
		"user_id":        c.Get("user_id"),
		"student_number": c.Get("student_number"),
		"role":           c.Get("role"),
	})
}

// getUserID extracts the numeric user ID that JWTAuth stored in context.
// JWT numeric claims decode as float64; string subjects are tolerated.
func getUserID(c echo.Context) (uint64, error) {
	switch v := c.Get("user_id").(type) {
	case float64:
		return uint64(v), nil
	case uint64:
		return v, nil
	case string:
		return strconv.ParseUint(v, 10, 64)
	}
	return 0, echo.ErrUnauthorized
}
