package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mihaja/univ-housing/internal/model"
	"github.com/mihaja/univ-housing/internal/repository"
)

// RoomBrowseHandler lists rooms students can reserve. Only rooms that
// are currently available are shown; the full catalog lives behind the
// admin endpoints.
type RoomBrowseHandler struct {
	Rooms *repository.RoomRepo
}

func NewRoomBrowseHandler(r *repository.RoomRepo) *RoomBrowseHandler {
	return &RoomBrowseHandler{Rooms: r}
}

type roomResp struct {
	ID          uint64 `json:"id"`
	Building    string `json:"building"`
	Floor       string `json:"floor"`
	Description string `json:"description"`
	PriceCents  uint64 `json:"price_cents"`
	Status      string `json:"status"`
}

func toRoomResp(r model.Room) roomResp {
	return roomResp{
		ID:          r.ID,
		Building:    r.Building,
		Floor:       r.Floor,
		Description: r.Description,
		PriceCents:  r.PriceCents,
		Status:      r.Status,
	}
}

// ListAvailable returns available rooms ordered by building and floor.
func (h *RoomBrowseHandler) ListAvailable(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rooms, err := h.Rooms.List(ctx, model.RoomAvailable)
	if err != nil {
		log.Printf("rooms: list failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "room listing failed"})
	}
	out := make([]roomResp, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, toRoomResp(r))
	}
	return c.JSON(http.StatusOK, echo.Map{"rooms": out})
}
