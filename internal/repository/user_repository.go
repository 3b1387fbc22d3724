package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/mihaja/univ-housing/internal/model"
	"github.com/mihaja/univ-housing/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// ErrUserExists covers the unique constraints on users.matricule and
// users.email. Handlers answer a generic conflict; the constraint name
// never leaves the server.
var ErrUserExists = errors.New("user already exists")

// CreateTx inserts a user inside an existing transaction and returns its
// ID. Signup must create the user, the student profile and flip the
// matricule entry as one atomic unit, so there is no non-Tx variant.
func (r *UserRepo) CreateTx(ctx context.Context, tx *sql.Tx, matricule, email, password, role string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := tx.ExecContext(ctx,
		"INSERT INTO users (matricule, email, password_hash, role) VALUES (?,?,?,?)",
		matricule, email, hash, role)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrUserExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByMatricule fetches a user by its login identifier.
func (r *UserRepo) GetByMatricule(ctx context.Context, matricule string) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,matricule,email,password_hash,role,is_active,created_at,updated_at FROM users WHERE matricule=? LIMIT 1",
		strings.TrimSpace(matricule)).
		Scan(&u.ID, &u.Matricule, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,matricule,email,password_hash,role,is_active,created_at,updated_at FROM users WHERE id=? LIMIT 1",
		id).
		Scan(&u.ID, &u.Matricule, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}
