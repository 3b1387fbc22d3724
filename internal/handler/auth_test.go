package handler

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/mihaja/univ-housing/internal/config"
	"github.com/mihaja/univ-housing/internal/repository"
)

func newJSONContext(method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func newAuthHandler(t *testing.T) (*AuthHandler, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	cfg := config.Config{JWTSecret: "test-secret", AccessTTLMin: 15, RefreshTTLDays: 7, BcryptCost: 4}
	h := NewAuthHandler(cfg, db,
		repository.NewUserRepo(db),
		repository.NewStudentRepo(db),
		repository.NewMatriculeRepo(db),
		repository.NewTokenRepo(db))
	return h, mock, func() { _ = db.Close() }
}

const signupBody = `{"matricule":"ET-001","email":"rina@univ.mg","password":"pw123456","password_confirm":"%s",
"last_name":"Rakoto","first_name":"Rina","major":"INFO","level":1}`

func TestSignup_PasswordMismatch(t *testing.T) {
	h := &AuthHandler{} // rejected before any dependency is touched
	c, rec := newJSONContext(http.MethodPost, "/v1/auth/signup",
		strings.Replace(signupBody, "%s", "different", 1))

	if err := h.Signup(c); err != nil {
		t.Fatalf("handler errored: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSignup_UnknownMajor(t *testing.T) {
	h := &AuthHandler{}
	body := `{"matricule":"ET-001","email":"a@b.c","password":"pw","password_confirm":"pw",
"last_name":"R","first_name":"R","major":"PHYSICS","level":1}`
	c, rec := newJSONContext(http.MethodPost, "/v1/auth/signup", body)

	if err := h.Signup(c); err != nil {
		t.Fatalf("handler errored: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSignup_MatriculeNotInRegistry(t *testing.T) {
	h, mock, closeDB := newAuthHandler(t)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT m.is_used").WithArgs("ET-001").
		WillReturnRows(sqlmock.NewRows([]string{"is_used", "linked"}))
	mock.ExpectRollback()

	c, rec := newJSONContext(http.MethodPost, "/v1/auth/signup",
		strings.Replace(signupBody, "%s", "pw123456", 1))
	if err := h.Signup(c); err != nil {
		t.Fatalf("handler errored: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("db expectations: %v", err)
	}
}

func TestSignup_AlreadyLinkedMatricule(t *testing.T) {
	h, mock, closeDB := newAuthHandler(t)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT m.is_used").WithArgs("ET-001").
		WillReturnRows(sqlmock.NewRows([]string{"is_used", "linked"}).AddRow(true, true))
	mock.ExpectRollback()

	c, rec := newJSONContext(http.MethodPost, "/v1/auth/signup",
		strings.Replace(signupBody, "%s", "pw123456", 1))
	if err := h.Signup(c); err != nil {
		t.Fatalf("handler errored: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

// A concurrent signup that consumed the same code between validation
// and the conditional flip must roll everything back: no user row and
// no student row survive.
func TestSignup_ConcurrentCodeConsumerRollsBack(t *testing.T) {
	h, mock, closeDB := newAuthHandler(t)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT m.is_used").WithArgs("ET-001").
		WillReturnRows(sqlmock.NewRows([]string{"is_used", "linked"}).AddRow(false, false))
	mock.ExpectExec("INSERT INTO users").
		WithArgs("ET-001", "rina@univ.mg", sqlmock.AnyArg(), "STUDENT").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO students").
		WithArgs(uint64(1), "ET-001", "Rakoto", "Rina", "INFO", 1, nil).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE matricule_entries SET is_used = 1").WithArgs("ET-001").
		WillReturnResult(sqlmock.NewResult(0, 0)) // lost the race
	mock.ExpectRollback()

	c, rec := newJSONContext(http.MethodPost, "/v1/auth/signup",
		strings.Replace(signupBody, "%s", "pw123456", 1))
	if err := h.Signup(c); err != nil {
		t.Fatalf("handler errored: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("db expectations: %v", err)
	}
}

func TestLogin_UnknownMatricule(t *testing.T) {
	h, mock, closeDB := newAuthHandler(t)
	defer closeDB()

	mock.ExpectQuery("SELECT id,matricule,email,password_hash,role,is_active").
		WithArgs("ET-404").
		WillReturnError(sql.ErrNoRows)

	c, rec := newJSONContext(http.MethodPost, "/v1/auth/login",
		`{"matricule":"ET-404","password":"whatever"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler errored: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
