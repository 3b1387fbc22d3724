package model

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDeriveStatus_IntakeWindowConfirms(t *testing.T) {
	for _, m := range []time.Month{time.August, time.September, time.October, time.November} {
		r := Reservation{Status: ReservationPending, MoveInDate: date(2026, m, 15)}
		if got := r.DeriveStatus(); got != ReservationConfirmed {
			t.Errorf("month %v: got %s, want %s", m, got, ReservationConfirmed)
		}
	}
}

func TestDeriveStatus_OutsideWindowStaysPending(t *testing.T) {
	months := []time.Month{
		time.January, time.February, time.March, time.April,
		time.May, time.June, time.July, time.December,
	}
	for _, m := range months {
		r := Reservation{Status: ReservationPending, MoveInDate: date(2026, m, 15)}
		if got := r.DeriveStatus(); got != ReservationPending {
			t.Errorf("month %v: got %s, want %s", m, got, ReservationPending)
		}
	}
}

func TestDeriveStatus_WindowBoundaries(t *testing.T) {
	r := Reservation{Status: ReservationPending, MoveInDate: date(2026, time.July, 31)}
	if got := r.DeriveStatus(); got != ReservationPending {
		t.Errorf("July 31: got %s, want PENDING", got)
	}
	r.MoveInDate = date(2026, time.August, 1)
	if got := r.DeriveStatus(); got != ReservationConfirmed {
		t.Errorf("August 1: got %s, want CONFIRMED", got)
	}
	r.MoveInDate = date(2026, time.November, 30)
	if got := r.DeriveStatus(); got != ReservationConfirmed {
		t.Errorf("November 30: got %s, want CONFIRMED", got)
	}
	r.MoveInDate = date(2026, time.December, 1)
	if got := r.DeriveStatus(); got != ReservationPending {
		t.Errorf("December 1: got %s, want PENDING", got)
	}
}

func TestDeriveStatus_NonPendingUntouched(t *testing.T) {
	for _, s := range []string{ReservationConfirmed, ReservationCancelled, ReservationPaid} {
		r := Reservation{Status: s, MoveInDate: date(2026, time.September, 1)}
		if got := r.DeriveStatus(); got != s {
			t.Errorf("status %s: got %s, want unchanged", s, got)
		}
	}
}

func TestDeriveStatus_Idempotent(t *testing.T) {
	r := Reservation{Status: ReservationPending, MoveInDate: date(2026, time.October, 10)}
	first := r.DeriveStatus()
	r.Status = first
	second := r.DeriveStatus()
	if first != second {
		t.Errorf("derivation not idempotent: %s then %s", first, second)
	}
}

func TestFinalPaymentDue_SameLevel(t *testing.T) {
	moveIn := date(2026, time.September, 1)
	r := Reservation{TargetLevel: LevelL2, MoveInDate: moveIn}
	want := moveIn.AddDate(0, 0, 365)
	if got := r.FinalPaymentDue(LevelL2); !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestFinalPaymentDue_TargetAboveCurrent(t *testing.T) {
	moveIn := date(2026, time.September, 1)

	r := Reservation{TargetLevel: LevelL2, MoveInDate: moveIn} // one level up
	want := moveIn.AddDate(0, 0, 365*2)
	if got := r.FinalPaymentDue(LevelL1); !got.Equal(want) {
		t.Errorf("gap 1: got %v, want %v", got, want)
	}

	r = Reservation{TargetLevel: LevelM1, MoveInDate: moveIn} // two levels up
	want = moveIn.AddDate(0, 0, 365*3)
	if got := r.FinalPaymentDue(LevelL2); !got.Equal(want) {
		t.Errorf("gap 2: got %v, want %v", got, want)
	}
}

func TestFinalPaymentDue_TargetBelowCurrent(t *testing.T) {
	moveIn := date(2026, time.September, 1)
	r := Reservation{TargetLevel: LevelL1, MoveInDate: moveIn}
	want := moveIn.AddDate(0, 0, 365)
	if got := r.FinalPaymentDue(LevelM2); !got.Equal(want) {
		t.Errorf("negative gap should fall back to one year: got %v, want %v", got, want)
	}
}
