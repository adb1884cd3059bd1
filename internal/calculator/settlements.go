package calculator

import (
	"sort"

	"github.com/kshitijm/tripledger/internal/models"
)

// Transfer is a suggested payment from one person to another that helps
// discharge the computed balances.
type Transfer struct {
	From   string  // person who owes
	To     string  // person who is owed
	Amount float64 // always > Epsilon, rounded to cents
}

// party is a creditor or debtor with its remaining unmatched amount.
type party struct {
	id     string
	amount float64
}

// ResolveSettlements converts a zero-sum balance map into an ordered list of
// transfers that drive every balance to within Epsilon of zero.
//
// It uses the classic greedy min-cash-flow heuristic: repeatedly match the
// largest remaining creditor with the largest remaining debtor for the
// smaller of the two amounts. The result is small and intuitive for the
// common case of a few large imbalances, but is not guaranteed to be the
// theoretical minimum number of transfers (that problem is NP-hard); this is
// an accepted trade-off.
//
// Ties in magnitude are broken by original person order (stable sort), so the
// output is reproducible for a given persons slice. Balance entries without a
// matching person (dangling ids from unvalidated input) are appended after
// the known persons in lexicographic id order.
func ResolveSettlements(balances map[string]float64, persons []models.Person) []Transfer {
	var creditors, debtors []party
	for _, id := range balanceOrder(balances, persons) {
		b := balances[id]
		switch {
		case b > Epsilon:
			creditors = append(creditors, party{id: id, amount: b})
		case b < -Epsilon:
			debtors = append(debtors, party{id: id, amount: -b})
		}
	}

	sort.SliceStable(creditors, func(i, j int) bool { return creditors[i].amount > creditors[j].amount })
	sort.SliceStable(debtors, func(i, j int) bool { return debtors[i].amount > debtors[j].amount })

	var transfers []Transfer
	for len(creditors) > 0 && len(debtors) > 0 {
		creditor := &creditors[0]
		debtor := &debtors[0]

		payment := creditor.amount
		if debtor.amount < payment {
			payment = debtor.amount
		}

		if payment > Epsilon {
			transfers = append(transfers, Transfer{
				From:   debtor.id,
				To:     creditor.id,
				Amount: Round2(payment),
			})
		}

		creditor.amount -= payment
		debtor.amount -= payment

		if creditor.amount < Epsilon {
			creditors = creditors[1:]
		}
		if debtor.amount < Epsilon {
			debtors = debtors[1:]
		}
	}

	return transfers
}

// balanceOrder returns the balance keys in deterministic order: trip person
// order first, then any remaining keys sorted lexicographically.
func balanceOrder(balances map[string]float64, persons []models.Person) []string {
	order := make([]string, 0, len(balances))
	seen := make(map[string]bool, len(balances))
	for _, p := range persons {
		if _, ok := balances[p.ID]; ok && !seen[p.ID] {
			order = append(order, p.ID)
			seen[p.ID] = true
		}
	}
	var extra []string
	for id := range balances {
		if !seen[id] {
			extra = append(extra, id)
		}
	}
	sort.Strings(extra)
	return append(order, extra...)
}
