package feed

import "time"

// AnniversaryEntry is a lightweight record of one contact's Jalali
// anniversary, decoupled from the vCard parsing.
type AnniversaryEntry struct {
	// UID is a stable hash identifying the contact across refreshes.
	UID string

	// Name is the display name (formatted name, falling back to the
	// structured name).
	Name string

	// BirthYear, BirthMonth and BirthDay hold the Jalali date of
	// birth. BirthMonth is zero-based like the engine's month field.
	// BirthYear is meaningless when YearKnown is false.
	BirthYear  int
	BirthMonth int
	BirthDay   int

	// YearKnown indicates whether the vCard carried a year or just a
	// truncated --MM-DD value.
	YearKnown bool

	// NextOccurrence is the Gregorian instant of the upcoming
	// anniversary, the primary sorting key.
	NextOccurrence time.Time

	// AgeNext is the age turned at NextOccurrence, in Jalali years.
	// Only valid when YearKnown is true.
	AgeNext int
}
