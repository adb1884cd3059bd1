package models

// Payment records a real-world transfer between trip members, used to settle
// debts outside the app (cash, bank transfer). Recorded payments offset the
// computed balances before transfers are resolved.
type Payment struct {
	// ID is the unique identifier for the payment (UUID format).
	ID string

	// TripID is the trip this payment belongs to.
	TripID string

	// From is the person id who paid (debtor settling up).
	From string

	// To is the person id who received the money (creditor being paid).
	To string

	// Amount is the payment amount, strictly positive.
	Amount float64

	// Note is an optional description for the payment.
	Note string

	// CreatedAt is the Unix timestamp when the payment was recorded.
	CreatedAt int64

	// CreatedBy is the user id who recorded this payment.
	CreatedBy string
}
