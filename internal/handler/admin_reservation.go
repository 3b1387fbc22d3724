package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mihaja/univ-housing/internal/model"
	"github.com/mihaja/univ-housing/internal/repository"
)

// AdminReservationHandler covers administrative actions on
// reservations. Students cannot cancel; cancellation is an office
// decision and frees the room in the same transaction.
type AdminReservationHandler struct {
	Rooms        *repository.RoomRepo
	Reservations *repository.ReservationRepo
}

func NewAdminReservationHandler(rm *repository.RoomRepo, r *repository.ReservationRepo) *AdminReservationHandler {
	return &AdminReservationHandler{Rooms: rm, Reservations: r}
}

// Cancel marks a reservation CANCELLED and returns its room to
// AVAILABLE. Only PENDING and CONFIRMED reservations qualify; a PAID
// one stays paid. The room flip is conditional on OCCUPIED so a room
// an admin already repurposed is left alone.
func (h *AdminReservationHandler) Cancel(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tx, err := h.Reservations.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancellation failed"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	roomID, err := h.Reservations.CancelTx(ctx, tx, id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrReservationNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "reservation cannot be cancelled"})
		}
		log.Printf("admin reservations: cancel failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancellation failed"})
	}

	freed, err := h.Rooms.UpdateStatusIfTx(ctx, tx, roomID, model.RoomOccupied, model.RoomAvailable)
	if err != nil {
		log.Printf("admin reservations: room release failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancellation failed"})
	}

	if err := tx.Commit(); err != nil {
		log.Printf("admin reservations: commit failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancellation failed"})
	}
	committed = true

	return c.JSON(http.StatusOK, echo.Map{
		"id":            id,
		"status":        model.ReservationCancelled,
		"room_id":       roomID,
		"room_released": freed,
	})
}
