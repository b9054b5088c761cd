package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitsmart/internal/models"
	"github.com/mmynk/splitsmart/internal/money"
)

// NetBalances folds pairwise debts into one net position per user.
// Positive = owed money, negative = owes money.
func NetBalances(edges []models.DebtEdge) map[int64]decimal.Decimal {
	net := make(map[int64]decimal.Decimal)
	for _, e := range edges {
		net[e.To] = net[e.To].Add(e.Amount)
		net[e.From] = net[e.From].Sub(e.Amount)
	}
	return net
}

type party struct {
	id     int64
	amount decimal.Decimal
}

// SimplifyDebts turns net balances into a short list of payments.
//
// Algorithm:
// - Split members into creditors (net > 0) and debtors (net < 0)
// - Sort both by amount, largest first (ties by user id)
// - Greedy: match the largest debt with the largest credit, move on when
//   either side is within a cent of zero
func SimplifyDebts(net map[int64]decimal.Decimal) []models.DebtEdge {
	var creditors, debtors []party
	for id, amt := range net {
		switch amt.Sign() {
		case 1:
			creditors = append(creditors, party{id, amt})
		case -1:
			debtors = append(debtors, party{id, amt.Neg()})
		}
	}
	byAmount := func(ps []party) {
		sort.Slice(ps, func(i, j int) bool {
			if c := ps[i].amount.Cmp(ps[j].amount); c != 0 {
				return c > 0
			}
			return ps[i].id < ps[j].id
		})
	}
	byAmount(creditors)
	byAmount(debtors)

	var edges []models.DebtEdge
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor, creditor := &debtors[i], &creditors[j]

		// Amount to settle is minimum of what debtor owes and creditor is owed
		amount := decimal.Min(debtor.amount, creditor.amount)
		if amount.GreaterThanOrEqual(money.Tolerance) {
			edges = append(edges, models.DebtEdge{From: debtor.id, To: creditor.id, Amount: money.Round(amount)})
		}

		debtor.amount = debtor.amount.Sub(amount)
		creditor.amount = creditor.amount.Sub(amount)

		if debtor.amount.LessThan(money.Tolerance) {
			i++
		}
		if creditor.amount.LessThan(money.Tolerance) {
			j++
		}
	}
	return edges
}
