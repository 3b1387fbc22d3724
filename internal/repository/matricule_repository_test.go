package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMock(t *testing.T) (sqlmock.Sqlmock, *MatriculeRepo, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	return mock, NewMatriculeRepo(db), func() { _ = db.Close() }
}

func TestValidateForSignupTx_Unused(t *testing.T) {
	mock, repo, closeDB := newMock(t)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT m.is_used").WithArgs("ET-001").
		WillReturnRows(sqlmock.NewRows([]string{"is_used", "linked"}).AddRow(false, false))

	tx, _ := repo.db.Begin()
	if err := repo.ValidateForSignupTx(context.Background(), tx, "ET-001"); err != nil {
		t.Fatalf("unused code should validate: %v", err)
	}
}

func TestValidateForSignupTx_NotFound(t *testing.T) {
	mock, repo, closeDB := newMock(t)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT m.is_used").WithArgs("ET-404").
		WillReturnRows(sqlmock.NewRows([]string{"is_used", "linked"}))

	tx, _ := repo.db.Begin()
	if err := repo.ValidateForSignupTx(context.Background(), tx, "ET-404"); !errors.Is(err, ErrMatriculeNotFound) {
		t.Fatalf("want ErrMatriculeNotFound, got %v", err)
	}
}

func TestValidateForSignupTx_UsedWithoutProfile(t *testing.T) {
	mock, repo, closeDB := newMock(t)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT m.is_used").WithArgs("ET-002").
		WillReturnRows(sqlmock.NewRows([]string{"is_used", "linked"}).AddRow(true, false))

	tx, _ := repo.db.Begin()
	if err := repo.ValidateForSignupTx(context.Background(), tx, "ET-002"); !errors.Is(err, ErrMatriculeUsed) {
		t.Fatalf("want ErrMatriculeUsed, got %v", err)
	}
}

func TestValidateForSignupTx_Linked(t *testing.T) {
	mock, repo, closeDB := newMock(t)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT m.is_used").WithArgs("ET-003").
		WillReturnRows(sqlmock.NewRows([]string{"is_used", "linked"}).AddRow(true, true))

	tx, _ := repo.db.Begin()
	if err := repo.ValidateForSignupTx(context.Background(), tx, "ET-003"); !errors.Is(err, ErrMatriculeLinked) {
		t.Fatalf("want ErrMatriculeLinked, got %v", err)
	}
}

func TestMarkUsedTx_WinnerFlipsRow(t *testing.T) {
	mock, repo, closeDB := newMock(t)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE matricule_entries SET is_used = 1").WithArgs("ET-001").
		WillReturnResult(sqlmock.NewResult(0, 1))

	tx, _ := repo.db.Begin()
	if err := repo.MarkUsedTx(context.Background(), tx, "ET-001"); err != nil {
		t.Fatalf("winner should succeed: %v", err)
	}
}

func TestMarkUsedTx_LoserGetsUsed(t *testing.T) {
	mock, repo, closeDB := newMock(t)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE matricule_entries SET is_used = 1").WithArgs("ET-001").
		WillReturnResult(sqlmock.NewResult(0, 0))

	tx, _ := repo.db.Begin()
	if err := repo.MarkUsedTx(context.Background(), tx, "ET-001"); !errors.Is(err, ErrMatriculeUsed) {
		t.Fatalf("concurrent loser should see ErrMatriculeUsed, got %v", err)
	}
}

func TestDelete_UsedEntryRefused(t *testing.T) {
	mock, repo, closeDB := newMock(t)
	defer closeDB()

	mock.ExpectExec("DELETE FROM matricule_entries").WithArgs(uint64(4)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	// Guarded delete touched nothing; a follow-up read says the row
	// exists, therefore it is used.
	mock.ExpectQuery("SELECT id, code, is_used FROM matricule_entries WHERE id").WithArgs(uint64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "is_used"}).AddRow(4, "ET-004", true))

	if err := repo.Delete(context.Background(), 4); !errors.Is(err, ErrConflict) {
		t.Fatalf("want ErrConflict, got %v", err)
	}
}

func TestDelete_MissingEntry(t *testing.T) {
	mock, repo, closeDB := newMock(t)
	defer closeDB()

	mock.ExpectExec("DELETE FROM matricule_entries").WithArgs(uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT id, code, is_used FROM matricule_entries WHERE id").WithArgs(uint64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "is_used"}))

	if err := repo.Delete(context.Background(), 9); !errors.Is(err, ErrMatriculeNotFound) {
		t.Fatalf("want ErrMatriculeNotFound, got %v", err)
	}
}

func TestMarkUnused_BuildsInClause(t *testing.T) {
	mock, repo, closeDB := newMock(t)
	defer closeDB()

	mock.ExpectExec("UPDATE matricule_entries SET is_used = 0 WHERE code IN").
		WithArgs("ET-001", "ET-002").
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := repo.MarkUnused(context.Background(), []string{"ET-001", "ET-002"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("updated = %d, want 2", n)
	}
}

func TestGetByCode(t *testing.T) {
	mock, repo, closeDB := newMock(t)
	defer closeDB()

	mock.ExpectQuery("SELECT id, code, is_used FROM matricule_entries WHERE code").
		WithArgs("ET-001").
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "is_used"}).AddRow(1, "ET-001", false))

	e, err := repo.GetByCode(context.Background(), " ET-001 ")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if e.ID != 1 || e.Code != "ET-001" || e.IsUsed {
		t.Errorf("unexpected entry %+v", e)
	}
}

func TestMarkUnused_EmptyInputNoQuery(t *testing.T) {
	_, repo, closeDB := newMock(t)
	defer closeDB()

	n, err := repo.MarkUnused(context.Background(), nil)
	if err != nil || n != 0 {
		t.Fatalf("empty input should be a no-op, got n=%d err=%v", n, err)
	}
}
