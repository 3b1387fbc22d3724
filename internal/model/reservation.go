package model

import "time"

// Reservation status values.  A reservation starts life as PENDING or
// CONFIRMED depending on the requested move-in month and is promoted to
// PAID by the payment ledger.  CANCELLED is an administrative state.
const (
	ReservationPending   = "PENDING"
	ReservationConfirmed = "CONFIRMED"
	ReservationCancelled = "CANCELLED"
	ReservationPaid      = "PAID"
)

// Reservation represents a row in the `reservations` table.  A student
// may hold many reservations over time but at most one PENDING one at a
// time.  The referenced room cannot be deleted while reservations point
// at it.  CreatedAt is set once on insert and never updated.
//
// Fields:
//  ID          – primary key identifier.
//  StudentID   – reserving student.
//  RoomID      – reserved room (delete-protected).
//  TargetLevel – academic level the student is reserving for (1–5).
//  MoveInDate  – requested move-in date (date only, UTC).
//  Status      – one of the Reservation* values.
//  CreatedAt   – creation timestamp, immutable.
type Reservation struct {
	ID          uint64    // reservations.id
	StudentID   uint64    // reservations.student_id
	RoomID      uint64    // reservations.room_id
	TargetLevel int       // reservations.target_level
	MoveInDate  time.Time // reservations.move_in_date (DATE)
	Status      string    // reservations.status
	CreatedAt   time.Time // reservations.created_at
}

// DeriveStatus recomputes the status from the move-in date while the
// reservation is still PENDING.  Move-in months August through November
// fall inside the regular intake window and are confirmed outright;
// anything else stays pending.  Once an external action (payment,
// cancellation) has moved the reservation out of PENDING the derivation
// no longer applies.  The rule is idempotent: running it twice on an
// unmodified reservation yields the same status.
func (r *Reservation) DeriveStatus() string {
	if r.Status != ReservationPending {
		return r.Status
	}
	m := int(r.MoveInDate.Month())
	if m >= 8 && m <= 11 {
		return ReservationConfirmed
	}
	return ReservationPending
}

// FinalPaymentDue computes the period-final-payment deadline from the
// move-in date and the gap between the target level and the student's
// current level.  A positive gap of d levels extends the period to
// 365*(d+1) days; a zero or negative gap yields a single year.  The
// value is derived on every read and never persisted.
func (r *Reservation) FinalPaymentDue(currentLevel int) time.Time {
	delta := r.TargetLevel - currentLevel
	if delta > 0 {
		return r.MoveInDate.AddDate(0, 0, 365*(delta+1))
	}
	return r.MoveInDate.AddDate(0, 0, 365)
}
