package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mihaja/univ-housing/internal/model"
	"github.com/mihaja/univ-housing/internal/repository"
)

// ReservationHandler covers the student reservation flow: listing own
// reservations with derived deadlines and creating new ones. Creation
// pairs the reservation insert with the room status flip in one
// transaction so a room can never be double-booked.
type ReservationHandler struct {
	Students     *repository.StudentRepo
	Rooms        *repository.RoomRepo
	Reservations *repository.ReservationRepo
}

func NewReservationHandler(s *repository.StudentRepo, rm *repository.RoomRepo, r *repository.ReservationRepo) *ReservationHandler {
	return &ReservationHandler{Students: s, Rooms: rm, Reservations: r}
}

// List returns the student's reservations, newest first, with the
// final payment deadline computed from the current academic level.
func (h *ReservationHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	student, err := h.Students.GetByUserID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrStudentNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "profile not found"})
		}
		log.Printf("reservations: load student failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reservation listing failed"})
	}

	details, records, err := h.Reservations.ListByStudent(ctx, student.ID)
	if err != nil {
		log.Printf("reservations: list failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reservation listing failed"})
	}
	for i := range details {
		details[i].FinalPaymentDue = records[i].FinalPaymentDue(student.Level).Format("2006-01-02")
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": details})
}

// Create places a reservation on an available room. Inside one
// transaction it enforces the single-pending rule, flips the room from
// AVAILABLE to OCCUPIED and inserts the reservation. Losing the room
// flip means another student got there first.
func (h *ReservationHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req struct {
		RoomID      uint64 `json:"room_id"`
		TargetLevel int    `json:"target_level"`
		MoveInDate  string `json:"move_in_date"` // YYYY-MM-DD
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.RoomID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "room_id is required"})
	}
	if !model.ValidLevel(req.TargetLevel) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown academic level"})
	}
	moveIn, err := time.ParseInLocation("2006-01-02", req.MoveInDate, time.UTC)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "move_in_date must be YYYY-MM-DD"})
	}
	today := time.Now().UTC().Truncate(24 * time.Hour)
	if moveIn.Before(today) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "move_in_date cannot be in the past"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	student, err := h.Students.GetByUserID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrStudentNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "profile not found"})
		}
		log.Printf("reservations: load student failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reservation failed"})
	}

	tx, err := h.Reservations.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reservation failed"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	pending, err := h.Reservations.HasPendingTx(ctx, tx, student.ID)
	if err != nil {
		log.Printf("reservations: pending check failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reservation failed"})
	}
	if pending {
		return c.JSON(http.StatusConflict, echo.Map{"error": "you already have a pending reservation"})
	}

	flipped, err := h.Rooms.UpdateStatusIfTx(ctx, tx, req.RoomID, model.RoomAvailable, model.RoomOccupied)
	if err != nil {
		log.Printf("reservations: room flip failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reservation failed"})
	}
	if !flipped {
		return c.JSON(http.StatusConflict, echo.Map{"error": "room is no longer available"})
	}

	res := &model.Reservation{
		StudentID:   student.ID,
		RoomID:      req.RoomID,
		TargetLevel: req.TargetLevel,
		MoveInDate:  moveIn,
	}
	if err := h.Reservations.CreateTx(ctx, tx, res); err != nil {
		log.Printf("reservations: insert failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reservation failed"})
	}

	if err := tx.Commit(); err != nil {
		log.Printf("reservations: commit failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reservation failed"})
	}
	committed = true

	return c.JSON(http.StatusCreated, echo.Map{
		"id":                res.ID,
		"room_id":           res.RoomID,
		"target_level":      res.TargetLevel,
		"move_in_date":      res.MoveInDate.Format("2006-01-02"),
		"status":            res.Status,
		"final_payment_due": res.FinalPaymentDue(student.Level).Format("2006-01-02"),
		"created_at":        res.CreatedAt.UTC().Format(time.RFC3339),
	})
}
