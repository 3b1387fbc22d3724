// Package queue defines message payloads exchanged over the message broker.
package queue

// ReservationPaidEvent is published after a payment is accepted and its
// reservation promoted. It carries enough for downstream consumers to
// log or notify without querying the primary database.
type ReservationPaidEvent struct {
	PaymentID     uint64 `json:"payment_id"`
	ReservationID uint64 `json:"reservation_id"`
	StudentID     uint64 `json:"student_id"`
	Matricule     string `json:"matricule"`
	RoomID        uint64 `json:"room_id"`
	Building      string `json:"building"`
	AmountCents   uint64 `json:"amount_cents"`
	PayType       string `json:"pay_type"`
	PaidOn        string `json:"paid_on"`
	RecordedAt    string `json:"recorded_at"`
}
