package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mihaja/univ-housing/internal/config"
	"github.com/mihaja/univ-housing/internal/model"
	"github.com/mihaja/univ-housing/internal/queue"
	"github.com/mihaja/univ-housing/internal/repository"
	queue_publisher "github.com/mihaja/univ-housing/internal/service"
)

// PaymentHandler records entry payments against pending reservations.
// A payment insert and the reservation promotion to PAID run in one
// transaction; the broker event goes out only after commit.
type PaymentHandler struct {
	Cfg          config.Config
	Students     *repository.StudentRepo
	Rooms        *repository.RoomRepo
	Reservations *repository.ReservationRepo
	Payments     *repository.PaymentRepo
}

func NewPaymentHandler(cfg config.Config, s *repository.StudentRepo, rm *repository.RoomRepo, r *repository.ReservationRepo, p *repository.PaymentRepo) *PaymentHandler {
	return &PaymentHandler{Cfg: cfg, Students: s, Rooms: rm, Reservations: r, Payments: p}
}

// List returns the student's payment history, newest first, with the
// advisory next payment date derived per payment type.
func (h *PaymentHandler) List(c echo.Context) error {
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
		log.Printf("payments: load student failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "payment listing failed"})
	}

	details, records, moveIns, err := h.Payments.ListByStudent(ctx, student.ID)
	if err != nil {
		log.Printf("payments: list failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "payment listing failed"})
	}
	for i := range details {
		next := records[i].NextPaymentDate(records[i].PaidOn, moveIns[i])
		details[i].NextPaymentDate = next.Format("2006-01-02")
	}
	return c.JSON(http.StatusOK, echo.Map{"payments": details})
}

// Create records a payment against one of the student's pending
// reservations. The supplied date and status are ignored: the payment
// date is forced to the reservation's move-in date and the status to
// PAID. Amounts below the configured entry fee minimum are refused.
func (h *PaymentHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req struct {
		ReservationID uint64 `json:"reservation_id"`
		AmountCents   uint64 `json:"amount_cents"`
		PayType       string `json:"pay_type"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.ReservationID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reservation_id is required"})
	}
	if !model.ValidPayType(req.PayType) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "pay_type must be MONTHLY or ANNUAL"})
	}
	if req.AmountCents < h.Cfg.EntryFeeMinCents {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount is below the entry fee minimum"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	student, err := h.Students.GetByUserID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrStudentNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "profile not found"})
		}
		log.Printf("payments: load student failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "payment failed"})
	}

	tx, err := h.Reservations.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "payment failed"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := h.Reservations.GetByIDForStudentTx(ctx, tx, req.ReservationID, student.ID)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		log.Printf("payments: load reservation failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "payment failed"})
	}
	// A reservation that already left PENDING no longer exists as far as
	// the payment flow is concerned.
	if res.Status != model.ReservationPending {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	}

	// Conditional promotion; a concurrent payment loses here.
	if err := h.Reservations.MarkPaidTx(ctx, tx, req.ReservationID, student.ID); err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		log.Printf("payments: promote reservation failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "payment failed"})
	}

	pay := &model.Payment{
		ReservationID: req.ReservationID,
		AmountCents:   req.AmountCents,
		PayType:       req.PayType,
	}
	pay.ApplyCreateDefaults(res.MoveInDate)
	if err := h.Payments.CreateTx(ctx, tx, pay); err != nil {
		log.Printf("payments: insert failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "payment failed"})
	}

	if err := tx.Commit(); err != nil {
		log.Printf("payments: commit failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "payment failed"})
	}
	committed = true

	building := ""
	if room, err := h.Rooms.GetByID(ctx, res.RoomID); err == nil {
		building = room.Building
	}
	ev := queue.ReservationPaidEvent{
		PaymentID:     pay.ID,
		ReservationID: res.ID,
		StudentID:     student.ID,
		Matricule:     student.Matricule,
		RoomID:        res.RoomID,
		Building:      building,
		AmountCents:   pay.AmountCents,
		PayType:       pay.PayType,
		PaidOn:        pay.PaidOn.Format("2006-01-02"),
		RecordedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		pctx, pcancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer pcancel()
		_ = queue_publisher.PublishReservationPaid(pctx, ev)
	}()

	return c.JSON(http.StatusCreated, echo.Map{
		"id":             pay.ID,
		"reservation_id": pay.ReservationID,
		"amount_cents":   pay.AmountCents,
		"pay_type":       pay.PayType,
		"paid_on":        pay.PaidOn.Format("2006-01-02"),
		"status":         pay.Status,
	})
}
