package handler

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mihaja/univ-housing/internal/config"
	"github.com/mihaja/univ-housing/internal/model"
	"github.com/mihaja/univ-housing/internal/repository"
	"github.com/mihaja/univ-housing/internal/utils"
)

// AuthHandler bundles dependencies for signup, login and token
// endpoints. Signup is the only place where users, students and the
// matricule registry are mutated together, so the handler owns the
// transaction and the repositories only expose Tx variants for it.
type AuthHandler struct {
	Cfg        config.Config
	DB         *sql.DB
	Users      *repository.UserRepo
	Students   *repository.StudentRepo
	Matricules *repository.MatriculeRepo
	Tokens     *repository.TokenRepo
}

func NewAuthHandler(cfg config.Config, db *sql.DB, u *repository.UserRepo, s *repository.StudentRepo, m *repository.MatriculeRepo, t *repository.TokenRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, DB: db, Users: u, Students: s, Matricules: m, Tokens: t}
}

// ----- DTOs -----

type signupReq struct {
	Matricule       string  `json:"matricule"`
	Email           string  `json:"email"`
	Password        string  `json:"password"`
	PasswordConfirm string  `json:"password_confirm"`
	LastName        string  `json:"last_name"`
	FirstName       string  `json:"first_name"`
	Major           string  `json:"major"`
	Level           int     `json:"level"`
	Phone           *string `json:"phone"`
}

type loginReq struct {
	Matricule string `json:"matricule"`
	Password  string `json:"password"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type userPart struct {
	ID        uint64 `json:"id"`
	Matricule string `json:"matricule"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

// Signup registers a student account gated by the matricule registry.
// Creating the user, creating the profile and marking the matricule
// used are one atomic unit; when any step fails the transaction rolls
// back so an identity never exists without its profile.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Matricule = strings.TrimSpace(req.Matricule)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.LastName = strings.TrimSpace(req.LastName)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.Major = strings.ToUpper(strings.TrimSpace(req.Major))

	if req.Matricule == "" || req.Email == "" || req.Password == "" || req.LastName == "" || req.FirstName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "matricule, email, password and names are required"})
	}
	if req.Password != req.PasswordConfirm {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "passwords do not match"})
	}
	if !model.ValidMajor(req.Major) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown major"})
	}
	if !model.ValidLevel(req.Level) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown academic level"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tx, err := h.DB.BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "signup failed"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := h.Matricules.ValidateForSignupTx(ctx, tx, req.Matricule); err != nil {
		switch {
		case errors.Is(err, repository.ErrMatriculeNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "matricule not found in the registry"})
		case errors.Is(err, repository.ErrMatriculeLinked):
			return c.JSON(http.StatusConflict, echo.Map{"error": "this matricule already has an account"})
		case errors.Is(err, repository.ErrMatriculeUsed):
			return c.JSON(http.StatusConflict, echo.Map{"error": "matricule already used"})
		}
		log.Printf("signup: matricule validation failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "signup failed"})
	}

	uid, err := h.Users.CreateTx(ctx, tx, req.Matricule, req.Email, req.Password, model.RoleStudent, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "matricule or email already in use"})
		}
		log.Printf("signup: create user failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "signup failed"})
	}

	student := &model.Student{
		UserID:    uid,
		Matricule: req.Matricule,
		LastName:  req.LastName,
		FirstName: req.FirstName,
		Major:     req.Major,
		Level:     req.Level,
		Phone:     req.Phone,
	}
	if err := h.Students.CreateTx(ctx, tx, student); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "matricule or email already in use"})
		}
		log.Printf("signup: create student failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "signup failed"})
	}

	// Conditional flip; a concurrent signup with the same code loses here.
	if err := h.Matricules.MarkUsedTx(ctx, tx, req.Matricule); err != nil {
		if errors.Is(err, repository.ErrMatriculeUsed) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "matricule already used"})
		}
		log.Printf("signup: mark matricule used failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "signup failed"})
	}

	if err := tx.Commit(); err != nil {
		log.Printf("signup: commit failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "signup failed"})
	}
	committed = true

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, uid, model.RoleStudent, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
	}
	if err := h.Tokens.StoreRefresh(ctx, uid, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save refresh failed"})
	}

	return c.JSON(http.StatusCreated, authResp{
		User:    userPart{ID: uid, Matricule: req.Matricule, Email: req.Email, Role: model.RoleStudent},
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
	})
}

// Login authenticates a student by matricule and password. Accounts
// with another role are refused here; administrators use AdminLogin.
func (h *AuthHandler) Login(c echo.Context) error {
	return h.login(c, model.RoleStudent)
}

// AdminLogin authenticates an administrator account.
func (h *AuthHandler) AdminLogin(c echo.Context) error {
	return h.login(c, model.RoleAdmin)
}

func (h *AuthHandler) login(c echo.Context, wantRole string) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Matricule = strings.TrimSpace(req.Matricule)
	if req.Matricule == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "matricule/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByMatricule(ctx, req.Matricule)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		log.Printf("login: query failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	if !u.IsActive {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "account disabled"})
	}
	if u.Role != wantRole {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied for this account type"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
	}
	if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save refresh failed"})
	}

	return c.JSON(http.StatusOK, authResp{
		User:    userPart{ID: u.ID, Matricule: u.Matricule, Email: u.Email, Role: u.Role},
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp},
	})
}

// Refresh validates a refresh token by hash, revokes it and issues a
// new access/refresh pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	_ = h.Tokens.RevokeByHash(ctx, hash)

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		log.Printf("refresh: load user failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, userID, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	newRef, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
	}
	if err := h.Tokens.StoreRefresh(ctx, userID, utils.HashRefreshRaw(newRef.Raw), newRef.Exp); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save refresh failed"})
	}

	return c.JSON(http.StatusOK, authResp{
		User:    userPart{ID: userID, Matricule: u.Matricule, Email: u.Email, Role: u.Role},
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: newRef.Raw, Expires: newRef.Exp},
	})
}

// RefreshAccess issues a new access token without rotating the refresh
// token.
func (h *AuthHandler) RefreshAccess(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
		}
		log.Printf("refresh-access: load user failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, userID, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access": tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// Logout revokes the refresh token supplied in the body, terminating
// that session.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
	}
	if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
		log.Printf("logout: revoke failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Me echoes back the authenticated token's identity claims.
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"user_id": c.Get("user_id"),
		"role":    c.Get("role"),
	})
}
