package models

// Person is a member of a trip.
//
// Persons are scoped to a single trip and exist for the trip's lifetime.
// Identity is by ID; name uniqueness (case-insensitive) within a trip is
// enforced by the service layer, not by the model or the calculator.
type Person struct {
	// ID is the unique identifier for the person (UUID format).
	ID string

	// Name is the display name, non-empty, unique within the trip
	// ignoring case.
	Name string
}

// Trip is the unit the balancing engine operates on. It aggregates the
// members and the expenses recorded against them.
type Trip struct {
	// ID is the unique identifier for the trip (UUID format).
	ID string

	// Name is the display name of the trip (e.g., "Lisbon 2026").
	Name string

	// Budget is an optional overall budget for the trip. Nil when unset.
	Budget *float64

	// OwnerID is the user who created the trip.
	OwnerID string

	// Persons is the member list in insertion order.
	Persons []Person

	// Expenses is the expense list in insertion order.
	Expenses []Expense

	// CreatedAt is the Unix timestamp when the trip was created.
	CreatedAt int64
}

// Member reports whether id is one of the trip's persons.
func (t *Trip) Member(id string) bool {
	for _, p := range t.Persons {
		if p.ID == id {
			return true
		}
	}
	return false
}
