package model

// Majors offered by the university.  Stored as short codes in
// students.major; membership is validated at the boundary instead of
// trusting free-form strings.
const (
	MajorInfo  = "INFO"  // Informatique
	MajorMaths = "MATHS" // Mathematique
	MajorComm  = "COMM"  // Communication
	MajorAgro  = "AGRO"  // Agronomie
)

// ValidMajor reports whether m is one of the closed major codes.
func ValidMajor(m string) bool {
	switch m {
	case MajorInfo, MajorMaths, MajorComm, MajorAgro:
		return true
	}
	return false
}

// Academic levels are ordinal: L1=1 through M2=5.  The ordinal matters
// because the period-final-payment rule is computed from the gap
// between a reservation's target level and the student's current level.
const (
	LevelL1 = 1
	LevelL2 = 2
	LevelL3 = 3
	LevelM1 = 4
	LevelM2 = 5
)

var levelLabels = map[int]string{
	LevelL1: "L1",
	LevelL2: "L2",
	LevelL3: "L3",
	LevelM1: "M1",
	LevelM2: "M2",
}

// ValidLevel reports whether n is a known academic level ordinal.
func ValidLevel(n int) bool { _, ok := levelLabels[n]; return ok }

// LevelLabel returns the display label for a level ordinal, or "" when
// the ordinal is out of range.
func LevelLabel(n int) string { return levelLabels[n] }

// Student represents a row in the `students` table.  Each student is
// the exclusive one-to-one companion of a users row; deleting the user
// cascades to the profile.  The matricule is unique and immutable once
// the profile has been created.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owning user (unique foreign key, cascade delete).
//  Matricule – unique enrollment code, immutable after signup.
//  LastName  – family name.
//  FirstName – given name.
//  Major     – one of the Major* codes.
//  Level     – current academic level ordinal (1–5).
//  Phone     – optional phone number.
type Student struct {
	ID        uint64  // students.id
	UserID    uint64  // students.user_id
	Matricule string  // students.matricule
	LastName  string  // students.last_name
	FirstName string  // students.first_name
	Major     string  // students.major
	Level     int     // students.level
	Phone     *string // students.phone (nullable)
}
