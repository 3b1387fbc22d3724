package model

// MatriculeEntry is a row in the `matricule_entries` table: a
// pre-approved enrollment code seeded by an administrator before any
// signup.  IsUsed flips to true exactly once, inside the signup
// transaction.  Entries that have been used cannot be deleted; the
// admin bulk-unmark endpoint exists to repair erroneous registrations.
//
// Fields:
//  ID     – primary key identifier.
//  Code   – unique matricule code handed to the student.
//  IsUsed – whether a student account has consumed this code.
type MatriculeEntry struct {
	ID     uint64 // matricule_entries.id
	Code   string // matricule_entries.code
	IsUsed bool   // matricule_entries.is_used
}
