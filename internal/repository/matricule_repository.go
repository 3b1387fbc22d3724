package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/mihaja/univ-housing/internal/model"
)

// Sentinel errors for the matricule registry. The three rejection
// reasons of signup validation are kept distinct on purpose: a used
// entry without a matching profile is an anomalous state that is
// surfaced, not silently repaired.
var (
	ErrMatriculeNotFound = errors.New("matricule not found")
	ErrMatriculeUsed     = errors.New("matricule already used")
	ErrMatriculeLinked   = errors.New("matricule already linked to a profile")
	ErrCodeExists        = errors.New("matricule code already registered")
)

// MatriculeRepo provides access to the matricule_entries table: the
// administrator-seeded list of enrollment codes that gates signup.
type MatriculeRepo struct {
	db *sql.DB
}

func NewMatriculeRepo(db *sql.DB) *MatriculeRepo { return &MatriculeRepo{db: db} }

// List returns all registry entries in insertion order.
func (r *MatriculeRepo) List(ctx context.Context) ([]model.MatriculeEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, code, is_used FROM matricule_entries ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := make([]model.MatriculeEntry, 0)
	for rows.Next() {
		var e model.MatriculeEntry
		if err := rows.Scan(&e.ID, &e.Code, &e.IsUsed); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetByID returns a single entry or ErrMatriculeNotFound.
func (r *MatriculeRepo) GetByID(ctx context.Context, id uint64) (model.MatriculeEntry, error) {
	var e model.MatriculeEntry
	err := r.db.QueryRowContext(ctx,
		`SELECT id, code, is_used FROM matricule_entries WHERE id = ?`, id).
		Scan(&e.ID, &e.Code, &e.IsUsed)
	if err == sql.ErrNoRows {
		return e, ErrMatriculeNotFound
	}
	return e, err
}

// GetByCode returns the entry matching a code or ErrMatriculeNotFound.
func (r *MatriculeRepo) GetByCode(ctx context.Context, code string) (model.MatriculeEntry, error) {
	var e model.MatriculeEntry
	err := r.db.QueryRowContext(ctx,
		`SELECT id, code, is_used FROM matricule_entries WHERE code = ?`, strings.TrimSpace(code)).
		Scan(&e.ID, &e.Code, &e.IsUsed)
	if err == sql.ErrNoRows {
		return e, ErrMatriculeNotFound
	}
	return e, err
}

// Create registers a new code. is_used always starts false; it is not
// settable through this path.
func (r *MatriculeRepo) Create(ctx context.Context, code string) (model.MatriculeEntry, error) {
	code = strings.TrimSpace(code)
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO matricule_entries (code) VALUES (?)`, code)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return model.MatriculeEntry{}, ErrCodeExists
		}
		return model.MatriculeEntry{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.MatriculeEntry{}, err
	}
	return model.MatriculeEntry{ID: uint64(id), Code: code, IsUsed: false}, nil
}

// UpdateCode renames an entry. The used flag is untouchable here as
// well; only the signup transaction and MarkUnused mutate it.
func (r *MatriculeRepo) UpdateCode(ctx context.Context, id uint64, code string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE matricule_entries SET code = ? WHERE id = ?`, strings.TrimSpace(code), id)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrCodeExists
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Distinguish absent row from no-op rename.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes an entry, refusing when the entry has been consumed by
// a signup. The guard is in the WHERE clause so a concurrent signup
// cannot slip between a check and the delete.
func (r *MatriculeRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM matricule_entries WHERE id = ? AND is_used = 0`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err // ErrMatriculeNotFound
		}
		return ErrConflict // row exists, therefore is_used=1
	}
	return nil
}

// ValidateForSignupTx checks a code against the registry inside the
// signup transaction. It returns nil only when the entry exists and is
// unused. A used entry yields ErrMatriculeLinked when a student profile
// already carries the code, otherwise ErrMatriculeUsed (registry says
// used but no profile exists; surfaced for admin repair).
func (r *MatriculeRepo) ValidateForSignupTx(ctx context.Context, tx *sql.Tx, code string) error {
	const q = `SELECT m.is_used,
	                  EXISTS(SELECT 1 FROM students s WHERE s.matricule = m.code)
	           FROM matricule_entries m
	           WHERE m.code = ?`
	var used, linked bool
	err := tx.QueryRowContext(ctx, q, strings.TrimSpace(code)).Scan(&used, &linked)
	if err == sql.ErrNoRows {
		return ErrMatriculeNotFound
	}
	if err != nil {
		return err
	}
	if used {
		if linked {
			return ErrMatriculeLinked
		}
		return ErrMatriculeUsed
	}
	return nil
}

// MarkUsedTx conditionally flips is_used inside the signup transaction.
// The is_used=0 guard makes the flip a compare-and-swap: of two
// concurrent signups with the same code, exactly one sees a row
// affected. The loser gets ErrMatriculeUsed and the caller rolls back.
func (r *MatriculeRepo) MarkUsedTx(ctx context.Context, tx *sql.Tx, code string) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE matricule_entries SET is_used = 1 WHERE code = ? AND is_used = 0`,
		strings.TrimSpace(code))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrMatriculeUsed
	}
	return nil
}

// MarkUnused is the administrative bulk repair path: it resets the used
// flag on the given codes and reports how many rows changed.
func (r *MatriculeRepo) MarkUnused(ctx context.Context, codes []string) (int64, error) {
	if len(codes) == 0 {
		return 0, nil
	}
	query := `UPDATE matricule_entries SET is_used = 0 WHERE code IN (`
	args := make([]interface{}, 0, len(codes))
	for i, c := range codes {
		if i > 0 {
			query += ","
		}
		query += "?"
		args = append(args, strings.TrimSpace(c))
	}
	query += ")"
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
