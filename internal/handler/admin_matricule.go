package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mihaja/univ-housing/internal/model"
	"github.com/mihaja/univ-housing/internal/repository"
)

// AdminMatriculeHandler manages the matricule registry that gates
// signup. Only administrators reach these endpoints.
type AdminMatriculeHandler struct {
	Matricules *repository.MatriculeRepo
}

func NewAdminMatriculeHandler(m *repository.MatriculeRepo) *AdminMatriculeHandler {
	return &AdminMatriculeHandler{Matricules: m}
}

type matriculeResp struct {
	ID     uint64 `json:"id"`
	Code   string `json:"code"`
	IsUsed bool   `json:"is_used"`
}

func toMatriculeResp(e model.MatriculeEntry) matriculeResp {
	return matriculeResp{ID: e.ID, Code: e.Code, IsUsed: e.IsUsed}
}

// List returns all registry entries.
func (h *AdminMatriculeHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	entries, err := h.Matricules.List(ctx)
	if err != nil {
		log.Printf("matricules: list failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "matricule listing failed"})
	}
	out := make([]matriculeResp, 0, len(entries))
	for _, e := range entries {
		out = append(out, toMatriculeResp(e))
	}
	return c.JSON(http.StatusOK, echo.Map{"matricules": out})
}

// Get returns one registry entry by id.
func (h *AdminMatriculeHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	entry, err := h.Matricules.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrMatriculeNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "matricule not found"})
		}
		log.Printf("matricules: get failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "matricule lookup failed"})
	}
	return c.JSON(http.StatusOK, toMatriculeResp(entry))
}

// Create registers a new matricule code, unused by definition.
func (h *AdminMatriculeHandler) Create(c echo.Context) error {
	var req struct {
		Code string `json:"code"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Code = strings.TrimSpace(req.Code)
	if req.Code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "code is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	entry, err := h.Matricules.Create(ctx, req.Code)
	if err != nil {
		if errors.Is(err, repository.ErrCodeExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "code already registered"})
		}
		log.Printf("matricules: create failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "matricule creation failed"})
	}
	return c.JSON(http.StatusCreated, toMatriculeResp(entry))
}

// Update changes an entry's code.
func (h *AdminMatriculeHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req struct {
		Code string `json:"code"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Code = strings.TrimSpace(req.Code)
	if req.Code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "code is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Matricules.UpdateCode(ctx, id, req.Code); err != nil {
		switch {
		case errors.Is(err, repository.ErrMatriculeNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "matricule not found"})
		case errors.Is(err, repository.ErrCodeExists):
			return c.JSON(http.StatusConflict, echo.Map{"error": "code already registered"})
		}
		log.Printf("matricules: update failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "matricule update failed"})
	}
	entry, err := h.Matricules.GetByID(ctx, id)
	if err != nil {
		log.Printf("matricules: reload failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "matricule update failed"})
	}
	return c.JSON(http.StatusOK, toMatriculeResp(entry))
}

// Delete removes an unused entry. Entries already consumed by a signup
// are kept for audit and refuse deletion.
func (h *AdminMatriculeHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Matricules.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrMatriculeNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "matricule not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "matricule is already used"})
		}
		log.Printf("matricules: delete failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "matricule deletion failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Unmark resets is_used on a batch of codes, freeing them for signup
// again. Unknown codes are skipped; the response reports how many rows
// actually changed.
func (h *AdminMatriculeHandler) Unmark(c echo.Context) error {
	var req struct {
		Codes []string `json:"codes"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	codes := make([]string, 0, len(req.Codes))
	for _, code := range req.Codes {
		if code = strings.TrimSpace(code); code != "" {
			codes = append(codes, code)
		}
	}
	if len(codes) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "codes is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	n, err := h.Matricules.MarkUnused(ctx, codes)
	if err != nil {
		log.Printf("matricules: unmark failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "matricule unmark failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"updated": n})
}
