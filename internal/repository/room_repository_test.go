package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/mihaja/univ-housing/internal/model"
)

func newRoomMock(t *testing.T) (sqlmock.Sqlmock, *RoomRepo, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	return mock, NewRoomRepo(db), func() { _ = db.Close() }
}

func TestUpdateStatusIfTx_WinnerTakesRoom(t *testing.T) {
	mock, repo, closeDB := newRoomMock(t)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE rooms SET status").
		WithArgs(model.RoomOccupied, uint64(7), model.RoomAvailable).
		WillReturnResult(sqlmock.NewResult(0, 1))

	tx, _ := repo.db.Begin()
	ok, err := repo.UpdateStatusIfTx(context.Background(), tx, 7, model.RoomAvailable, model.RoomOccupied)
	if err != nil {
		t.Fatalf("flip failed: %v", err)
	}
	if !ok {
		t.Error("winner should see the flip succeed")
	}
}

func TestUpdateStatusIfTx_LoserSeesFalse(t *testing.T) {
	mock, repo, closeDB := newRoomMock(t)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE rooms SET status").
		WithArgs(model.RoomOccupied, uint64(7), model.RoomAvailable).
		WillReturnResult(sqlmock.NewResult(0, 0))

	tx, _ := repo.db.Begin()
	ok, err := repo.UpdateStatusIfTx(context.Background(), tx, 7, model.RoomAvailable, model.RoomOccupied)
	if err != nil {
		t.Fatalf("flip errored: %v", err)
	}
	if ok {
		t.Error("loser must see false when the guard matches no row")
	}
}

func TestRoomDelete_ReferencedRoomConflicts(t *testing.T) {
	mock, repo, closeDB := newRoomMock(t)
	defer closeDB()

	mock.ExpectExec("DELETE FROM rooms").WithArgs(uint64(7)).
		WillReturnError(errors.New("Error 1451: Cannot delete or update a parent row"))

	if err := repo.Delete(context.Background(), 7); !errors.Is(err, ErrConflict) {
		t.Fatalf("want ErrConflict, got %v", err)
	}
}

func TestRoomDelete_Missing(t *testing.T) {
	mock, repo, closeDB := newRoomMock(t)
	defer closeDB()

	mock.ExpectExec("DELETE FROM rooms").WithArgs(uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), 9); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("want ErrRoomNotFound, got %v", err)
	}
}

func TestBulkMarkAvailable(t *testing.T) {
	mock, repo, closeDB := newRoomMock(t)
	defer closeDB()

	mock.ExpectExec("UPDATE rooms SET status = \\? WHERE id IN").
		WithArgs(model.RoomAvailable, uint64(1), uint64(2), uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := repo.BulkMarkAvailable(context.Background(), []uint64{1, 2, 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("updated = %d, want 2", n)
	}
}
