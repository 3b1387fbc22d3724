// Package repository defines error values that are reused across
// multiple repositories. These sentinels let handlers distinguish
// failure scenarios without inspecting driver errors. ErrForbidden
// marks an operation on a resource owned by someone else, ErrConflict
// an operation blocked by dependent state (deleting a used matricule
// entry, deleting a room that still has reservations).
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers translate this into an
// HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a delete or update cannot be performed
// because of conflicting state. Handlers translate this into an HTTP
// 409 response.
var ErrConflict = errors.New("conflict")
