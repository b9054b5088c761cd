package api

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
)

func TestJSONCodec_AmountsAreNumbers(t *testing.T) {
	amount := decimal.RequireFromString("12.50")
	data, err := JSONCodec{}.Marshal(&SettleResponse{SettlementID: 1, SettledShares: 2, SettledTotal: amount})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !bytes.Contains(data, []byte(`"settled_total":12.5`)) {
		t.Errorf("expected numeric amount, got %s", data)
	}
}

func TestCodecs_OptionalFields(t *testing.T) {
	codecs := []interface {
		Name() string
		Marshal(any) ([]byte, error)
		Unmarshal([]byte, any) error
	}{JSONCodec{}, CBORCodec{}}

	for _, c := range codecs {
		t.Run(c.Name(), func(t *testing.T) {
			desc := "Taxi"
			amount := decimal.RequireFromString("30.10")
			in := UpdateExpenseRequest{ExpenseID: 7, Amount: &amount, Description: &desc}

			data, err := c.Marshal(&in)
			if err != nil {
				t.Fatalf("Marshal failed: %v", err)
			}
			var out UpdateExpenseRequest
			if err := c.Unmarshal(data, &out); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}

			if out.Shares != nil {
				t.Errorf("omitted shares decoded as %v, want nil", out.Shares)
			}
			if out.Amount == nil || !out.Amount.Equal(amount) {
				t.Errorf("amount = %v, want %s", out.Amount, amount)
			}
			if out.Description == nil || *out.Description != desc {
				t.Errorf("description = %v, want %q", out.Description, desc)
			}

			var empty CreateExpenseRequest
			if err := c.Unmarshal(nil, &empty); err != nil {
				t.Errorf("empty body should decode to zero message: %v", err)
			}
		})
	}
}
