package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/mihaja/univ-housing/internal/model"
)

// PaymentRepo provides access to the payments table. Inserts only ever
// happen inside the payment transaction, paired with the reservation
// promotion.
type PaymentRepo struct {
	db *sql.DB
}

func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

// CreateTx inserts a payment within an existing transaction and
// populates the generated ID. Callers must have applied the first-save
// defaulting (forced date and status) before handing the record over.
func (r *PaymentRepo) CreateTx(ctx context.Context, tx *sql.Tx, p *model.Payment) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO payments (reservation_id, amount_cents, pay_type, paid_on, status)
		 VALUES (?, ?, ?, ?, ?)`,
		p.ReservationID, p.AmountCents, p.PayType, p.PaidOn.Format(dateLayout), p.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// PaymentDetail is the row shape returned to students: the payment plus
// the reservation it settles. NextPaymentDate is advisory and filled by
// the handler from the payment type.
type PaymentDetail struct {
	ID              uint64 `json:"id"`
	ReservationID   uint64 `json:"reservation_id"`
	AmountCents     uint64 `json:"amount_cents"`
	PayType         string `json:"pay_type"`
	PaidOn          string `json:"paid_on"`
	Status          string `json:"status"`
	NextPaymentDate string `json:"next_payment_date"`
}

// ListByStudent returns the student's payments ordered by payment date
// descending. Alongside the details it returns the matching payment
// records and each reservation's move-in date so the handler can derive
// the advisory next payment date without further queries.
func (r *PaymentRepo) ListByStudent(ctx context.Context, studentID uint64) ([]PaymentDetail, []model.Payment, []time.Time, error) {
	const q = `SELECT p.id, p.reservation_id, p.amount_cents, p.pay_type, p.paid_on, p.status,
	                  res.move_in_date
	           FROM payments p
	           JOIN reservations res ON res.id = p.reservation_id
	           WHERE res.student_id = ?
	           ORDER BY p.paid_on DESC, p.id DESC`
	rows, err := r.db.QueryContext(ctx, q, studentID)
	if err != nil {
		return nil, nil, nil, err
	}
	defer rows.Close()
	details := make([]PaymentDetail, 0)
	records := make([]model.Payment, 0)
	moveIns := make([]time.Time, 0)
	for rows.Next() {
		var d PaymentDetail
		var paidOn, moveIn time.Time
		if err := rows.Scan(&d.ID, &d.ReservationID, &d.AmountCents, &d.PayType, &paidOn, &d.Status, &moveIn); err != nil {
			return nil, nil, nil, err
		}
		d.PaidOn = paidOn.Format(dateLayout)
		details = append(details, d)
		records = append(records, model.Payment{
			ID:            d.ID,
			ReservationID: d.ReservationID,
			AmountCents:   d.AmountCents,
			PayType:       d.PayType,
			PaidOn:        paidOn,
			Status:        d.Status,
		})
		moveIns = append(moveIns, moveIn)
	}
	return details, records, moveIns, rows.Err()
}
