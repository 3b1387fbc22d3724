package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/mihaja/univ-housing/internal/model"
)

func newReservationMock(t *testing.T) (sqlmock.Sqlmock, *ReservationRepo, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	return mock, NewReservationRepo(db), func() { _ = db.Close() }
}

func TestCreateTx_IntakeWindowInsertsConfirmed(t *testing.T) {
	mock, repo, closeDB := newReservationMock(t)
	defer closeDB()

	created := time.Date(2026, time.May, 2, 10, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO reservations").
		WithArgs(uint64(3), uint64(7), 2, "2026-09-01", model.ReservationConfirmed).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectQuery("SELECT created_at FROM reservations").WithArgs(uint64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))

	tx, _ := repo.db.Begin()
	res := &model.Reservation{
		StudentID:   3,
		RoomID:      7,
		TargetLevel: 2,
		MoveInDate:  time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := repo.CreateTx(context.Background(), tx, res); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if res.ID != 11 {
		t.Errorf("ID = %d, want 11", res.ID)
	}
	if res.Status != model.ReservationConfirmed {
		t.Errorf("Status = %s, want CONFIRMED", res.Status)
	}
	if !res.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", res.CreatedAt, created)
	}
}

func TestCreateTx_OffWindowInsertsPending(t *testing.T) {
	mock, repo, closeDB := newReservationMock(t)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO reservations").
		WithArgs(uint64(3), uint64(7), 2, "2026-02-01", model.ReservationPending).
		WillReturnResult(sqlmock.NewResult(12, 1))
	mock.ExpectQuery("SELECT created_at FROM reservations").WithArgs(uint64(12)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	tx, _ := repo.db.Begin()
	res := &model.Reservation{
		StudentID:   3,
		RoomID:      7,
		TargetLevel: 2,
		MoveInDate:  time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := repo.CreateTx(context.Background(), tx, res); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if res.Status != model.ReservationPending {
		t.Errorf("Status = %s, want PENDING", res.Status)
	}
}

func TestMarkPaidTx_PromotesPendingOnly(t *testing.T) {
	mock, repo, closeDB := newReservationMock(t)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE reservations SET status").
		WithArgs(model.ReservationPaid, uint64(11), uint64(3), model.ReservationPending).
		WillReturnResult(sqlmock.NewResult(0, 1))

	tx, _ := repo.db.Begin()
	if err := repo.MarkPaidTx(context.Background(), tx, 11, 3); err != nil {
		t.Fatalf("promotion failed: %v", err)
	}
}

func TestMarkPaidTx_AlreadyPromoted(t *testing.T) {
	mock, repo, closeDB := newReservationMock(t)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE reservations SET status").
		WithArgs(model.ReservationPaid, uint64(11), uint64(3), model.ReservationPending).
		WillReturnResult(sqlmock.NewResult(0, 0))

	tx, _ := repo.db.Begin()
	if err := repo.MarkPaidTx(context.Background(), tx, 11, 3); !errors.Is(err, ErrReservationNotFound) {
		t.Fatalf("want ErrReservationNotFound, got %v", err)
	}
}

func TestCancelTx_PaidReservationRefused(t *testing.T) {
	mock, repo, closeDB := newReservationMock(t)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT room_id, status FROM reservations").WithArgs(uint64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"room_id", "status"}).AddRow(7, model.ReservationPaid))
	mock.ExpectExec("UPDATE reservations SET status").
		WithArgs(model.ReservationCancelled, uint64(11), model.ReservationPending, model.ReservationConfirmed).
		WillReturnResult(sqlmock.NewResult(0, 0))

	tx, _ := repo.db.Begin()
	if _, err := repo.CancelTx(context.Background(), tx, 11); !errors.Is(err, ErrConflict) {
		t.Fatalf("want ErrConflict, got %v", err)
	}
}

func TestCancelTx_ReturnsRoomID(t *testing.T) {
	mock, repo, closeDB := newReservationMock(t)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT room_id, status FROM reservations").WithArgs(uint64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"room_id", "status"}).AddRow(7, model.ReservationPending))
	mock.ExpectExec("UPDATE reservations SET status").
		WithArgs(model.ReservationCancelled, uint64(11), model.ReservationPending, model.ReservationConfirmed).
		WillReturnResult(sqlmock.NewResult(0, 1))

	tx, _ := repo.db.Begin()
	roomID, err := repo.CancelTx(context.Background(), tx, 11)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if roomID != 7 {
		t.Errorf("roomID = %d, want 7", roomID)
	}
}
