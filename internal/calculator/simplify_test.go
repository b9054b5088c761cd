package calculator

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitsmart/internal/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNetBalances(t *testing.T) {
	net := NetBalances([]models.DebtEdge{
		{From: 2, To: 1, Amount: dec("10")},
		{From: 3, To: 1, Amount: dec("5")},
		{From: 1, To: 3, Amount: dec("2.50")},
	})

	want := map[int64]string{1: "12.5", 2: "-10", 3: "-2.5"}
	for id, w := range want {
		if !net[id].Equal(dec(w)) {
			t.Errorf("net[%d] = %s, want %s", id, net[id], w)
		}
	}

	total := decimal.Zero
	for _, v := range net {
		total = total.Add(v)
	}
	if !total.IsZero() {
		t.Errorf("net balances sum to %s, want 0", total)
	}
}

func TestSimplifyDebts(t *testing.T) {
	tests := []struct {
		name string
		net  map[int64]decimal.Decimal
		want []models.DebtEdge
	}{
		{
			name: "everyone even",
			net:  map[int64]decimal.Decimal{1: decimal.Zero, 2: decimal.Zero},
			want: nil,
		},
		{
			name: "one debtor one creditor",
			net:  map[int64]decimal.Decimal{1: dec("10"), 2: dec("-10")},
			want: []models.DebtEdge{{From: 2, To: 1, Amount: dec("10")}},
		},
		{
			name: "chain collapses",
			// 3 owes 2 ten, 2 owes 1 ten: 3 pays 1 directly
			net:  map[int64]decimal.Decimal{1: dec("10"), 2: decimal.Zero, 3: dec("-10")},
			want: []models.DebtEdge{{From: 3, To: 1, Amount: dec("10")}},
		},
		{
			name: "largest debts matched first",
			net: map[int64]decimal.Decimal{
				1: dec("30"),
				2: dec("-20"),
				3: dec("-10"),
			},
			want: []models.DebtEdge{
				{From: 2, To: 1, Amount: dec("20")},
				{From: 3, To: 1, Amount: dec("10")},
			},
		},
		{
			name: "split across creditors",
			net: map[int64]decimal.Decimal{
				1: dec("15"),
				2: dec("5"),
				3: dec("-20"),
			},
			want: []models.DebtEdge{
				{From: 3, To: 1, Amount: dec("15")},
				{From: 3, To: 2, Amount: dec("5")},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SimplifyDebts(tt.net)
			if len(got) != len(tt.want) {
				t.Fatalf("SimplifyDebts() = %+v, want %+v", got, tt.want)
			}
			for i := range got {
				if got[i].From != tt.want[i].From || got[i].To != tt.want[i].To || !got[i].Amount.Equal(tt.want[i].Amount) {
					t.Errorf("edge %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}
