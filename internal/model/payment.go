package model

import "time"

// Payment type values stored in payments.pay_type.
const (
	PayMonthly = "MONTHLY"
	PayAnnual  = "ANNUAL"
)

// ValidPayType reports whether t is a known payment type.
func ValidPayType(t string) bool { return t == PayMonthly || t == PayAnnual }

// Payment status values stored in payments.status.
const (
	PaymentPaid    = "PAID"
	PaymentUnpaid  = "UNPAID"
	PaymentPartial = "PARTIAL"
)

// Payment represents a row in the `payments` table.  A payment is
// recorded once per accepted payment event against a reservation.
//
// Fields:
//  ID            – primary key identifier.
//  ReservationID – reservation this payment settles.
//  AmountCents   – paid amount in cents.
//  PayType       – MONTHLY or ANNUAL.
//  PaidOn        – payment date (date only, UTC).
//  Status        – PAID, UNPAID or PARTIAL.
type Payment struct {
	ID            uint64    // payments.id
	ReservationID uint64    // payments.reservation_id
	AmountCents   uint64    // payments.amount_cents
	PayType       string    // payments.pay_type
	PaidOn        time.Time // payments.paid_on (DATE)
	Status        string    // payments.status
}

// ApplyCreateDefaults normalizes a payment record before its first
// persistence: the payment date is forced to the reservation's move-in
// date and the status is forced to PAID, overriding whatever the caller
// supplied.  This is a deliberate override on creation only, never on
// update, so callers can see their date/status inputs are ignored.
func (p *Payment) ApplyCreateDefaults(moveInDate time.Time) {
	p.PaidOn = moveInDate
	p.Status = PaymentPaid
}

// NextPaymentDate is an advisory display computation; nothing schedules
// rebilling from it.  MONTHLY payments suggest base+30 days, ANNUAL
// payments point back at the reservation's move-in date, and any other
// type falls back to today.
func (p *Payment) NextPaymentDate(base, moveInDate time.Time) time.Time {
	switch p.PayType {
	case PayMonthly:
		return base.AddDate(0, 0, 30)
	case PayAnnual:
		return moveInDate
	}
	return time.Now().UTC().Truncate(24 * time.Hour)
}
