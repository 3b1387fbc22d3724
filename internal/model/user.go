package model

import "time"

// Role values stored in users.role.  ADMIN accounts are seeded out of
// band; STUDENT accounts only ever come out of the signup flow, which
// also creates the student profile in the same transaction.
const (
	RoleAdmin   = "ADMIN"
	RoleStudent = "STUDENT"
)

// User represents a row in the `users` table.  The matricule doubles as
// the login identifier for students, so Matricule holds what a classic
// username column would.  Handlers define their own response types;
// these structs carry no json tags.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Matricule    – login identifier; equals the student's matricule code.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – ADMIN or STUDENT.
//  IsActive     – whether the account is active.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Matricule    string    // users.matricule
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user and carries expiry and revocation
// metadata.  The plain token is never stored; only its SHA-256 hash.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
