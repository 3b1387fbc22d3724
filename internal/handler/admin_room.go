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

// AdminRoomHandler manages the room catalog. The reservation engine
// also mutates room status; admin writes here go through the same
// repository so both sides see one source of truth.
type AdminRoomHandler struct {
	Rooms *repository.RoomRepo
}

func NewAdminRoomHandler(r *repository.RoomRepo) *AdminRoomHandler {
	return &AdminRoomHandler{Rooms: r}
}

type roomReq struct {
	Building    string `json:"building"`
	Floor       string `json:"floor"`
	Description string `json:"description"`
	PriceCents  uint64 `json:"price_cents"`
	Status      string `json:"status"`
}

func (req *roomReq) normalize() error {
	req.Building = strings.ToUpper(strings.TrimSpace(req.Building))
	req.Floor = strings.TrimSpace(req.Floor)
	req.Status = strings.ToUpper(strings.TrimSpace(req.Status))
	if req.Status == "" {
		req.Status = model.RoomAvailable
	}
	switch {
	case !model.ValidBuilding(req.Building):
		return errors.New("unknown building")
	case req.Floor == "":
		return errors.New("floor is required")
	case req.PriceCents == 0:
		return errors.New("price_cents must be positive")
	case !model.ValidRoomStatus(req.Status):
		return errors.New("unknown room status")
	}
	return nil
}

// List returns the whole catalog, optionally filtered by ?status=.
func (h *AdminRoomHandler) List(c echo.Context) error {
	status := strings.ToUpper(strings.TrimSpace(c.QueryParam("status")))
	if status != "" && !model.ValidRoomStatus(status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown room status"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rooms, err := h.Rooms.List(ctx, status)
	if err != nil {
		log.Printf("admin rooms: list failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "room listing failed"})
	}
	out := make([]roomResp, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, toRoomResp(r))
	}
	return c.JSON(http.StatusOK, echo.Map{"rooms": out})
}

// Get returns one room by id.
func (h *AdminRoomHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	room, err := h.Rooms.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		log.Printf("admin rooms: get failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "room lookup failed"})
	}
	return c.JSON(http.StatusOK, toRoomResp(room))
}

// Create adds a room to the catalog.
func (h *AdminRoomHandler) Create(c echo.Context) error {
	var req roomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := req.normalize(); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	room := &model.Room{
		Building:    req.Building,
		Floor:       req.Floor,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Status:      req.Status,
	}
	if err := h.Rooms.Create(ctx, room); err != nil {
		log.Printf("admin rooms: create failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "room creation failed"})
	}
	return c.JSON(http.StatusCreated, toRoomResp(*room))
}

// Update replaces a room's attributes.
func (h *AdminRoomHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req roomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := req.normalize(); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	room := &model.Room{
		ID:          id,
		Building:    req.Building,
		Floor:       req.Floor,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Status:      req.Status,
	}
	if err := h.Rooms.Update(ctx, room); err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		log.Printf("admin rooms: update failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "room update failed"})
	}
	return c.JSON(http.StatusOK, toRoomResp(*room))
}

// Delete removes a room. Rooms referenced by reservations are
// delete-protected by the schema and answer with a conflict.
func (h *AdminRoomHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Rooms.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrRoomNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "room has reservations"})
		}
		log.Printf("admin rooms: delete failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "room deletion failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// MarkAvailable resets a batch of rooms to AVAILABLE, typically at the
// start of an intake period. Unknown ids are skipped; the response
// reports how many rows actually changed.
func (h *AdminRoomHandler) MarkAvailable(c echo.Context) error {
	var req struct {
		IDs []uint64 `json:"ids"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if len(req.IDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ids is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	n, err := h.Rooms.BulkMarkAvailable(ctx, req.IDs)
	if err != nil {
		log.Printf("admin rooms: mark available failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "room update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"updated": n})
}
