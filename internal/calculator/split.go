package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitsmart/internal/apperr"
	"github.com/mmynk/splitsmart/internal/models"
	"github.com/mmynk/splitsmart/internal/money"
)

// SplitEvenly divides amount among participants in whole cents.
// Remainder cents go to the first participants in order, so the shares
// always add up to the rounded amount exactly.
func SplitEvenly(amount decimal.Decimal, participants []int64) ([]models.ShareInput, error) {
	if len(participants) == 0 {
		return nil, apperr.Validation("must have at least one participant")
	}
	if amount.IsNegative() {
		return nil, apperr.Validation("amount must not be negative")
	}
	if !money.InRange(amount) {
		return nil, apperr.Validationf("amount must not exceed %s", money.Format(money.MaxAmount))
	}

	seen := make(map[int64]bool, len(participants))
	for _, p := range participants {
		if seen[p] {
			return nil, apperr.Validationf("duplicate participant %d", p)
		}
		seen[p] = true
	}

	total := money.ToCents(amount)
	n := int64(len(participants))
	base, remainder := total/n, total%n

	shares := make([]models.ShareInput, len(participants))
	for i, p := range participants {
		cents := base
		if int64(i) < remainder {
			cents++
		}
		shares[i] = models.ShareInput{UserID: p, Amount: money.FromCents(cents)}
	}
	return shares, nil
}
