package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/mihaja/univ-housing/internal/model"
)

// ErrStudentNotFound is returned when no student profile exists for the
// requested user or id.
var ErrStudentNotFound = errors.New("student not found")

// StudentRepo provides access to the students table. A student row is
// the one-to-one companion of a users row; the database cascades the
// delete from users, so this repository never deletes directly.
type StudentRepo struct {
	db *sql.DB
}

func NewStudentRepo(db *sql.DB) *StudentRepo { return &StudentRepo{db: db} }

// CreateTx inserts the student profile inside the signup transaction and
// populates the generated ID. A duplicate matricule surfaces as
// ErrConflict so the handler can answer a generic conflict message.
func (r *StudentRepo) CreateTx(ctx context.Context, tx *sql.Tx, s *model.Student) error {
	var phone sql.NullString
	if s.Phone != nil && strings.TrimSpace(*s.Phone) != "" {
		phone = sql.NullString{String: strings.TrimSpace(*s.Phone), Valid: true}
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO students (user_id, matricule, last_name, first_name, major, level, phone)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.UserID, s.Matricule, s.LastName, s.FirstName, s.Major, s.Level, phone)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// GetByUserID loads the profile owned by a user. Every student-facing
// handler resolves the caller through this lookup.
func (r *StudentRepo) GetByUserID(ctx context.Context, userID uint64) (model.Student, error) {
	const q = `SELECT id, user_id, matricule, last_name, first_name, major, level, phone
	           FROM students WHERE user_id = ?`
	var s model.Student
	var phone sql.NullString
	err := r.db.QueryRowContext(ctx, q, userID).
		Scan(&s.ID, &s.UserID, &s.Matricule, &s.LastName, &s.FirstName, &s.Major, &s.Level, &phone)
	if err == sql.ErrNoRows {
		return s, ErrStudentNotFound
	}
	if err != nil {
		return s, err
	}
	if phone.Valid {
		p := phone.String
		s.Phone = &p
	}
	return s, nil
}

// UpdateProfile rewrites the mutable profile fields. The matricule is
// immutable after signup and the email lives on the users row, so
// neither is touched here.
func (r *StudentRepo) UpdateProfile(ctx context.Context, userID uint64, lastName, firstName, major string, level int, phonePtr *string) error {
	var phone sql.NullString
	if phonePtr != nil && strings.TrimSpace(*phonePtr) != "" {
		phone = sql.NullString{String: strings.TrimSpace(*phonePtr), Valid: true}
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE students SET last_name = ?, first_name = ?, major = ?, level = ?, phone = ?
		 WHERE user_id = ?`,
		lastName, firstName, major, level, phone, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Zero rows can mean either no profile or identical values;
		// disambiguate with a lookup.
		if _, err := r.GetByUserID(ctx, userID); err != nil {
			return err
		}
	}
	return nil
}
