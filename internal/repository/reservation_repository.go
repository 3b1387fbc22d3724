package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mihaja/univ-housing/internal/model"
)

// ErrReservationNotFound is returned when no reservation matches the
// requested id, owner and state. A payment against a reservation that
// another request already promoted gets this error too: from the
// caller's point of view the pending reservation no longer exists.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrPendingExists signals the one-pending-reservation-per-student rule.
var ErrPendingExists = errors.New("student already has a pending reservation")

const dateLayout = "2006-01-02"

// ReservationRepo provides access to the reservations table. Creation
// and promotion run inside caller-owned transactions because they pair
// with a room flip or a payment insert.
type ReservationRepo struct {
	db *sql.DB
}

func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// DB exposes the underlying handle for handlers that open transactions
// spanning reservations, rooms and payments.
func (r *ReservationRepo) DB() *sql.DB { return r.db }

// HasPendingTx reports whether the student already holds a PENDING
// reservation. Checked inside the creation transaction.
func (r *ReservationRepo) HasPendingTx(ctx context.Context, tx *sql.Tx, studentID uint64) (bool, error) {
	var exists bool
	err := tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM reservations WHERE student_id = ? AND status = ?)`,
		studentID, model.ReservationPending).Scan(&exists)
	return exists, err
}

// CreateTx inserts a reservation within an existing transaction. The
// status derivation rule runs unconditionally before the insert, so a
// move-in month inside the intake window lands as CONFIRMED directly.
// The generated ID and the database-assigned creation timestamp are
// populated on the provided record.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	res.Status = model.ReservationPending
	res.Status = res.DeriveStatus()
	result, err := tx.ExecContext(ctx,
		`INSERT INTO reservations (student_id, room_id, target_level, move_in_date, status)
		 VALUES (?, ?, ?, ?, ?)`,
		res.StudentID, res.RoomID, res.TargetLevel, res.MoveInDate.Format(dateLayout), res.Status)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	return tx.QueryRowContext(ctx,
		`SELECT created_at FROM reservations WHERE id = ?`, res.ID).Scan(&res.CreatedAt)
}

// GetByIDForStudentTx loads a reservation owned by the student inside a
// transaction. Used by the payment flow to fetch the move-in date that
// the first-save defaulting rule forces onto the payment.
func (r *ReservationRepo) GetByIDForStudentTx(ctx context.Context, tx *sql.Tx, reservationID, studentID uint64) (model.Reservation, error) {
	const q = `SELECT id, student_id, room_id, target_level, move_in_date, status, created_at
	           FROM reservations WHERE id = ? AND student_id = ?`
	var res model.Reservation
	err := tx.QueryRowContext(ctx, q, reservationID, studentID).
		Scan(&res.ID, &res.StudentID, &res.RoomID, &res.TargetLevel, &res.MoveInDate, &res.Status, &res.CreatedAt)
	if err == sql.ErrNoRows {
		return res, ErrReservationNotFound
	}
	return res, err
}

// MarkPaidTx advances a reservation from PENDING to PAID. The status
// guard in the WHERE clause makes the promotion conditional: of two
// concurrent payments against the same reservation only one sees a row
// affected, the other gets ErrReservationNotFound. The transition is
// one-way; a PAID reservation never re-enters the pending checks.
func (r *ReservationRepo) MarkPaidTx(ctx context.Context, tx *sql.Tx, reservationID, studentID uint64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE reservations SET status = ? WHERE id = ? AND student_id = ? AND status = ?`,
		model.ReservationPaid, reservationID, studentID, model.ReservationPending)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrReservationNotFound
	}
	return nil
}

// CancelTx marks a reservation CANCELLED and returns its room ID so the
// caller can flip the room back to AVAILABLE in the same transaction.
// Only PENDING and CONFIRMED reservations can be cancelled.
func (r *ReservationRepo) CancelTx(ctx context.Context, tx *sql.Tx, reservationID uint64) (uint64, error) {
	var roomID uint64
	var status string
	err := tx.QueryRowContext(ctx,
		`SELECT room_id, status FROM reservations WHERE id = ?`, reservationID).
		Scan(&roomID, &status)
	if err == sql.ErrNoRows {
		return 0, ErrReservationNotFound
	}
	if err != nil {
		return 0, err
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE reservations SET status = ? WHERE id = ? AND status IN (?, ?)`,
		model.ReservationCancelled, reservationID, model.ReservationPending, model.ReservationConfirmed)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, ErrConflict
	}
	return roomID, nil
}

// ReservationDetail is the row shape returned to students: the
// reservation joined with its room. FinalPaymentDue is derived by the
// caller from the student's current level; it is never persisted.
type ReservationDetail struct {
	ID              uint64 `json:"id"`
	RoomID          uint64 `json:"room_id"`
	Building        string `json:"building"`
	Floor           string `json:"floor"`
	PriceCents      uint64 `json:"price_cents"`
	TargetLevel     int    `json:"target_level"`
	MoveInDate      string `json:"move_in_date"`
	Status          string `json:"status"`
	CreatedAt       string `json:"created_at"`
	FinalPaymentDue string `json:"final_payment_due"`
}

// ListByStudent returns all reservations of a student with room details,
// newest first. FinalPaymentDue is left empty for the handler to fill.
func (r *ReservationRepo) ListByStudent(ctx context.Context, studentID uint64) ([]ReservationDetail, []model.Reservation, error) {
	const q = `SELECT res.id, res.room_id, rm.building, rm.floor, rm.price_cents,
	                  res.target_level, res.move_in_date, res.status, res.created_at
	           FROM reservations res
	           JOIN rooms rm ON rm.id = res.room_id
	           WHERE res.student_id = ?
	           ORDER BY res.created_at DESC, res.id DESC`
	rows, err := r.db.QueryContext(ctx, q, studentID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()
	details := make([]ReservationDetail, 0)
	records := make([]model.Reservation, 0)
	for rows.Next() {
		var d ReservationDetail
		var moveIn time.Time
		var createdAt time.Time
		if err := rows.Scan(&d.ID, &d.RoomID, &d.Building, &d.Floor, &d.PriceCents,
			&d.TargetLevel, &moveIn, &d.Status, &createdAt); err != nil {
			return nil, nil, err
		}
		d.MoveInDate = moveIn.Format(dateLayout)
		d.CreatedAt = createdAt.UTC().Format(time.RFC3339)
		details = append(details, d)
		records = append(records, model.Reservation{
			ID:          d.ID,
			StudentID:   studentID,
			RoomID:      d.RoomID,
			TargetLevel: d.TargetLevel,
			MoveInDate:  moveIn,
			Status:      d.Status,
			CreatedAt:   createdAt,
		})
	}
	return details, records, rows.Err()
}
