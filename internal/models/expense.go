package models

// Expense is a shared cost paid by one person on behalf of a set of
// participants. The amount is split evenly among the participants; the payer
// need not be one of them.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// TripID is the trip this expense belongs to.
	TripID string

	// Title is the human-readable description (e.g., "Groceries"), non-empty.
	Title string

	// Amount is the full expense amount, strictly positive.
	Amount float64

	// PaidBy is the person id of whoever fronted the money.
	PaidBy string

	// Participants is the non-empty set of person ids sharing the cost.
	// Stored as a slice for deterministic iteration; membership is what
	// matters, duplicates are invalid.
	Participants []string

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64
}
