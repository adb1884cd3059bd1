// Package calculator implements the ledger-balancing engine: reducing a
// trip's expenses to net per-person balances and resolving those balances
// into a small set of point-to-point transfers.
//
// Both entry points are pure functions over their inputs. They never touch
// storage and never mutate the trip they are given, so concurrent use is safe
// as long as callers pass stable snapshots.
package calculator

import (
	"github.com/kshitijm/tripledger/internal/models"
)

// CalculateBalances reduces a trip's expense list to one signed balance per
// person. Positive means the person is owed money, negative means they owe.
// The balances always sum to zero (within rounding tolerance).
//
// Algorithm:
//   - every known person starts at 0, in trip order
//   - per expense: the payer is credited the full amount, every participant
//     is debited an even share (a payer who also participates nets the credit
//     minus their own share)
//   - balances are rounded to cents at the end, half away from zero
//
// A nil trip or a trip with no persons yields an empty map. Expenses with an
// empty participant set are skipped rather than dividing by zero; referential
// integrity of person ids is the mutation layer's job, and a dangling id
// simply accrues an extra balance entry.
func CalculateBalances(trip *models.Trip) map[string]float64 {
	balances := make(map[string]float64)
	if trip == nil || len(trip.Persons) == 0 {
		return balances
	}

	for _, p := range trip.Persons {
		balances[p.ID] = 0
	}

	for _, e := range trip.Expenses {
		if len(e.Participants) == 0 {
			continue
		}
		share := e.Amount / float64(len(e.Participants))
		balances[e.PaidBy] += e.Amount
		for _, id := range e.Participants {
			balances[id] -= share
		}
	}

	for id, b := range balances {
		balances[id] = Round2(b)
	}
	return balances
}

// ApplyPayments returns a copy of balances with recorded payments folded in:
// the payer's balance improves by the amount, the receiver's decreases.
// The input map is not modified. Results are re-rounded to cents.
func ApplyPayments(balances map[string]float64, payments []models.Payment) map[string]float64 {
	adjusted := make(map[string]float64, len(balances))
	for id, b := range balances {
		adjusted[id] = b
	}
	for _, p := range payments {
		adjusted[p.From] += p.Amount
		adjusted[p.To] -= p.Amount
	}
	for id, b := range adjusted {
		adjusted[id] = Round2(b)
	}
	return adjusted
}
