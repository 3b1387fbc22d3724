package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mihaja/univ-housing/internal/model"
	"github.com/mihaja/univ-housing/internal/repository"
)

// ProfileHandler serves the authenticated student's own profile.
type ProfileHandler struct {
	Students *repository.StudentRepo
}

func NewProfileHandler(s *repository.StudentRepo) *ProfileHandler {
	return &ProfileHandler{Students: s}
}

type profileResp struct {
	Matricule  string  `json:"matricule"`
	LastName   string  `json:"last_name"`
	FirstName  string  `json:"first_name"`
	Major      string  `json:"major"`
	Level      int     `json:"level"`
	LevelLabel string  `json:"level_label"`
	Phone      *string `json:"phone"`
}

// GetProfile returns the profile linked to the authenticated user.
func (h *ProfileHandler) GetProfile(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	s, err := h.Students.GetByUserID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrStudentNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "profile not found"})
		}
		log.Printf("profile: load failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "profile lookup failed"})
	}
	return c.JSON(http.StatusOK, profileResp{
		Matricule:  s.Matricule,
		LastName:   s.LastName,
		FirstName:  s.FirstName,
		Major:      s.Major,
		Level:      s.Level,
		LevelLabel: model.LevelLabel(s.Level),
		Phone:      s.Phone,
	})
}

// UpdateProfile lets a student change name, major, level and phone.
// Matricule and email are identity fields and stay immutable here.
func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req struct {
		LastName  string  `json:"last_name"`
		FirstName string  `json:"first_name"`
		Major     string  `json:"major"`
		Level     int     `json:"level"`
		Phone     *string `json:"phone"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.LastName = strings.TrimSpace(req.LastName)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.Major = strings.ToUpper(strings.TrimSpace(req.Major))
	if req.LastName == "" || req.FirstName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "last_name and first_name are required"})
	}
	if !model.ValidMajor(req.Major) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown major"})
	}
	if !model.ValidLevel(req.Level) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown academic level"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Students.UpdateProfile(ctx, uid, req.LastName, req.FirstName, req.Major, req.Level, req.Phone); err != nil {
		if errors.Is(err, repository.ErrStudentNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "profile not found"})
		}
		log.Printf("profile: update failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "profile update failed"})
	}

	s, err := h.Students.GetByUserID(ctx, uid)
	if err != nil {
		log.Printf("profile: reload failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "profile lookup failed"})
	}
	return c.JSON(http.StatusOK, profileResp{
		Matricule:  s.Matricule,
		LastName:   s.LastName,
		FirstName:  s.FirstName,
		Major:      s.Major,
		Level:      s.Level,
		LevelLabel: model.LevelLabel(s.Level),
		Phone:      s.Phone,
	})
}
