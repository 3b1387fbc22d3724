package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/mihaja/univ-housing/internal/model"
)

// ErrRoomNotFound is returned when the requested room does not exist.
var ErrRoomNotFound = errors.New("room not found")

// RoomRepo provides CRUD operations for dormitory rooms plus the
// conditional status flip used by the reservation engine.
type RoomRepo struct {
	db *sql.DB
}

func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions
// that span rooms and reservations.
func (r *RoomRepo) DB() *sql.DB { return r.db }

// List returns all rooms; when status is non-empty only rooms in that
// state are returned. Students browse with status=AVAILABLE, admins
// with the empty filter.
func (r *RoomRepo) List(ctx context.Context, status string) ([]model.Room, error) {
	q := `SELECT id, building, floor, description, price_cents, status FROM rooms`
	args := []interface{}{}
	if status != "" {
		q += ` WHERE status = ?`
		args = append(args, status)
	}
	q += ` ORDER BY building, floor, id`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	rooms := make([]model.Room, 0)
	for rows.Next() {
		var rm model.Room
		if err := rows.Scan(&rm.ID, &rm.Building, &rm.Floor, &rm.Description, &rm.PriceCents, &rm.Status); err != nil {
			return nil, err
		}
		rooms = append(rooms, rm)
	}
	return rooms, rows.Err()
}

// GetByID returns a single room or ErrRoomNotFound.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (model.Room, error) {
	var rm model.Room
	err := r.db.QueryRowContext(ctx,
		`SELECT id, building, floor, description, price_cents, status FROM rooms WHERE id = ?`, id).
		Scan(&rm.ID, &rm.Building, &rm.Floor, &rm.Description, &rm.PriceCents, &rm.Status)
	if err == sql.ErrNoRows {
		return rm, ErrRoomNotFound
	}
	return rm, err
}

// Create inserts a room and populates the generated ID.
func (r *RoomRepo) Create(ctx context.Context, rm *model.Room) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO rooms (building, floor, description, price_cents, status) VALUES (?, ?, ?, ?, ?)`,
		rm.Building, rm.Floor, rm.Description, rm.PriceCents, rm.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rm.ID = uint64(id)
	return nil
}

// Update rewrites all administrator-editable fields of a room.
func (r *RoomRepo) Update(ctx context.Context, rm *model.Room) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE rooms SET building = ?, floor = ?, description = ?, price_cents = ?, status = ? WHERE id = ?`,
		rm.Building, rm.Floor, rm.Description, rm.PriceCents, rm.Status, rm.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, rm.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a room. Rooms referenced by reservations are protected
// by the foreign key; MySQL error 1451 is translated to ErrConflict.
func (r *RoomRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1451") {
			return ErrConflict
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// UpdateStatusIfTx flips a room's status only when its current status
// matches `from`. The WHERE guard turns the flip into a compare-and-swap:
// with two concurrent reservations against the same AVAILABLE room,
// exactly one update reports a row affected. The loser must treat the
// false return as the room being unavailable.
func (r *RoomRepo) UpdateStatusIfTx(ctx context.Context, tx *sql.Tx, roomID uint64, from, to string) (bool, error) {
	res, err := tx.ExecContext(ctx,
		`UPDATE rooms SET status = ? WHERE id = ? AND status = ?`, to, roomID, from)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// BulkMarkAvailable resets the given rooms to AVAILABLE and reports how
// many rows changed. Mirrors the admin "mark available" action.
func (r *RoomRepo) BulkMarkAvailable(ctx context.Context, ids []uint64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query := `UPDATE rooms SET status = ? WHERE id IN (`
	args := []interface{}{model.RoomAvailable}
	for i, id := range ids {
		if i > 0 {
			query += ","
		}
		query += "?"
		args = append(args, id)
	}
	query += ")"
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
