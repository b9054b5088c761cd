package settlement

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitsmart/internal/access"
	"github.com/mmynk/splitsmart/internal/apperr"
	"github.com/mmynk/splitsmart/internal/calculator"
	"github.com/mmynk/splitsmart/internal/metrics"
	"github.com/mmynk/splitsmart/internal/models"
	"github.com/mmynk/splitsmart/internal/storage/sqlite"
)

type testEnv struct {
	store     *sqlite.SQLiteStore
	processor *Processor
	calc      *calculator.Calculator
	metrics   *metrics.Metrics
	users     map[string]int64
	group     int64
}

func setupProcessor(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	users := make(map[string]int64)
	for _, name := range []string{"alice", "bob", "carol", "mallory"} {
		u := &models.User{Username: name, Email: name + "@example.com", PasswordHash: "x"}
		if err := store.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
		users[name] = u.ID
	}

	g := &models.Group{Name: "Flat", CreatedBy: users["alice"]}
	if err := store.CreateGroup(ctx, g, []int64{users["bob"], users["carol"]}); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	guard := access.NewGuard(store)
	m := metrics.New(prometheus.NewRegistry())
	return &testEnv{
		store:     store,
		processor: NewProcessor(store, guard, m),
		calc:      calculator.New(store, guard, 2),
		metrics:   m,
		users:     users,
		group:     g.ID,
	}
}

func (env *testEnv) expense(t *testing.T, groupID *int64, payer string, shares map[string]string) {
	t.Helper()
	e := &models.Expense{GroupID: groupID, PaidBy: env.users[payer], Description: "test"}
	total := decimal.Zero
	for name, a := range shares {
		d := decimal.RequireFromString(a)
		e.Shares = append(e.Shares, models.ExpenseShare{UserID: env.users[name], Amount: d})
		total = total.Add(d)
	}
	e.Amount = total
	if err := env.store.CreateExpense(context.Background(), e); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
}

func amount(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestSettle_Group(t *testing.T) {
	env := setupProcessor(t)
	ctx := context.Background()
	alice, bob := env.users["alice"], env.users["bob"]

	env.expense(t, &env.group, "alice", map[string]string{"alice": "10", "bob": "10"})
	env.expense(t, &env.group, "alice", map[string]string{"bob": "5.25", "carol": "5.25"})
	// bob also owes carol; that share must stay open
	env.expense(t, &env.group, "carol", map[string]string{"bob": "7"})

	result, err := env.processor.Settle(ctx, SettleInput{
		GroupID: &env.group, FromUserID: bob, ToUserID: alice, Amount: amount("10"),
	})
	if err != nil {
		t.Fatalf("Settle failed: %v", err)
	}
	if result.Settlement.ID == 0 {
		t.Error("Expected settlement id")
	}
	if len(result.SettledShareIDs) != 2 {
		t.Errorf("marked %d shares, want 2", len(result.SettledShareIDs))
	}
	if !result.SettledTotal.Equal(decimal.RequireFromString("15.25")) {
		t.Errorf("settled total = %s, want 15.25", result.SettledTotal)
	}
	if !result.Settlement.Amount.Equal(decimal.RequireFromString("10")) {
		t.Errorf("recorded amount = %s, want 10 as entered", result.Settlement.Amount)
	}

	owedToCarol, err := env.calc.GroupBalanceWith(ctx, env.group, bob, env.users["carol"])
	if err != nil {
		t.Fatalf("GroupBalanceWith failed: %v", err)
	}
	if !owedToCarol.Equal(decimal.RequireFromString("-7")) {
		t.Errorf("bob's balance with carol = %s, want -7", owedToCarol)
	}
	withAlice, err := env.calc.GroupBalanceWith(ctx, env.group, bob, alice)
	if err != nil {
		t.Fatalf("GroupBalanceWith failed: %v", err)
	}
	if !withAlice.IsZero() {
		t.Errorf("bob's balance with alice = %s, want 0", withAlice)
	}

	again, err := env.processor.Settle(ctx, SettleInput{
		GroupID: &env.group, FromUserID: bob, ToUserID: alice, Amount: amount("10"),
	})
	if err != nil {
		t.Fatalf("second Settle failed: %v", err)
	}
	if len(again.SettledShareIDs) != 0 || !again.SettledTotal.IsZero() {
		t.Errorf("second settle marked %d shares (%s), want none", len(again.SettledShareIDs), again.SettledTotal)
	}

	if got := testutil.ToFloat64(env.metrics.SettlementsRecorded.WithLabelValues("group")); got != 2 {
		t.Errorf("group settlements = %v, want 2", got)
	}
	if got := testutil.ToFloat64(env.metrics.SharesSettled); got != 2 {
		t.Errorf("shares settled = %v, want 2", got)
	}

	list, err := env.processor.List(ctx, &env.group, env.users["carol"])
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("got %d settlements, want 2", len(list))
	}
}

func TestSettle_ScenarioBalanceToZero(t *testing.T) {
	env := setupProcessor(t)
	ctx := context.Background()
	alice, bob := env.users["alice"], env.users["bob"]

	env.expense(t, &env.group, "alice", map[string]string{"alice": "10", "bob": "10"})

	before, err := env.calc.GroupBalance(ctx, env.group, bob)
	if err != nil {
		t.Fatalf("GroupBalance failed: %v", err)
	}
	if !before.Equal(decimal.RequireFromString("-10")) {
		t.Fatalf("balance before = %s, want -10", before)
	}

	if _, err := env.processor.Settle(ctx, SettleInput{
		GroupID: &env.group, FromUserID: bob, ToUserID: alice, Amount: amount("10"),
	}); err != nil {
		t.Fatalf("Settle failed: %v", err)
	}

	after, err := env.calc.GroupBalance(ctx, env.group, bob)
	if err != nil {
		t.Fatalf("GroupBalance failed: %v", err)
	}
	if !after.IsZero() {
		t.Errorf("balance after = %s, want 0", after)
	}

	expenses, err := env.store.ListExpensesByGroup(ctx, env.group)
	if err != nil {
		t.Fatalf("ListExpensesByGroup failed: %v", err)
	}
	for _, sh := range expenses[0].Shares {
		if sh.UserID == bob && !sh.IsSettled {
			t.Error("bob's share should be settled")
		}
		if sh.UserID == alice && sh.IsSettled {
			t.Error("alice's own share must not be touched")
		}
	}
}

func TestSettle_Direct(t *testing.T) {
	env := setupProcessor(t)
	ctx := context.Background()
	alice, bob := env.users["alice"], env.users["bob"]

	env.expense(t, nil, "alice", map[string]string{"bob": "12"})
	env.expense(t, &env.group, "alice", map[string]string{"bob": "3"})

	result, err := env.processor.Settle(ctx, SettleInput{FromUserID: bob, ToUserID: alice, Amount: amount("12")})
	if err != nil {
		t.Fatalf("Settle failed: %v", err)
	}
	if len(result.SettledShareIDs) != 1 || !result.SettledTotal.Equal(decimal.RequireFromString("12")) {
		t.Errorf("Unexpected direct settlement result: %+v", result)
	}

	groupBal, err := env.calc.GroupBalance(ctx, env.group, bob)
	if err != nil {
		t.Fatalf("GroupBalance failed: %v", err)
	}
	if !groupBal.Equal(decimal.RequireFromString("-3")) {
		t.Errorf("group balance = %s, want -3 (direct settlement must not touch group shares)", groupBal)
	}

	list, err := env.processor.List(ctx, nil, alice)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 1 || list[0].GroupID != nil {
		t.Errorf("Unexpected direct settlements: %+v", list)
	}
}

func TestSettle_LogsScope(t *testing.T) {
	env := setupProcessor(t)
	ctx := context.Background()
	alice, bob := env.users["alice"], env.users["bob"]

	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	if _, err := env.processor.Settle(ctx, SettleInput{GroupID: &env.group, FromUserID: bob, ToUserID: alice, Amount: amount("1")}); err != nil {
		t.Fatalf("Settle failed: %v", err)
	}
	if want := fmt.Sprintf("group_id=%d", env.group); !strings.Contains(buf.String(), want) {
		t.Errorf("log %q does not contain %q", buf.String(), want)
	}

	buf.Reset()
	if _, err := env.processor.Settle(ctx, SettleInput{FromUserID: bob, ToUserID: alice, Amount: amount("1")}); err != nil {
		t.Fatalf("Settle failed: %v", err)
	}
	if out := buf.String(); !strings.Contains(out, "scope=direct") || strings.Contains(out, "group_id") {
		t.Errorf("unexpected direct settlement log: %q", out)
	}
}

func TestSettle_Rejections(t *testing.T) {
	env := setupProcessor(t)
	ctx := context.Background()
	alice, bob, mallory := env.users["alice"], env.users["bob"], env.users["mallory"]

	tests := []struct {
		name    string
		in      SettleInput
		wantErr func(error) bool
	}{
		{"missing amount", SettleInput{GroupID: &env.group, FromUserID: bob, ToUserID: alice}, apperr.IsValidation},
		{"zero amount", SettleInput{GroupID: &env.group, FromUserID: bob, ToUserID: alice, Amount: amount("0")}, apperr.IsValidation},
		{"negative amount", SettleInput{GroupID: &env.group, FromUserID: bob, ToUserID: alice, Amount: amount("-3")}, apperr.IsValidation},
		{"amount too large for cents", SettleInput{GroupID: &env.group, FromUserID: bob, ToUserID: alice, Amount: amount("184467440737095516.17")}, apperr.IsValidation},
		{"self", SettleInput{GroupID: &env.group, FromUserID: bob, ToUserID: bob, Amount: amount("1")}, apperr.IsValidation},
		{"unknown recipient", SettleInput{GroupID: &env.group, FromUserID: bob, ToUserID: 424242, Amount: amount("1")}, apperr.IsNotFound},
		{"payer outside group", SettleInput{GroupID: &env.group, FromUserID: mallory, ToUserID: alice, Amount: amount("1")}, apperr.IsUnauthorized},
		{"recipient outside group", SettleInput{GroupID: &env.group, FromUserID: bob, ToUserID: mallory, Amount: amount("1")}, apperr.IsUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.processor.Settle(ctx, tt.in)
			if !tt.wantErr(err) {
				t.Errorf("Settle() error = %v, wrong kind", err)
			}
		})
	}

	if _, err := env.processor.List(ctx, &env.group, mallory); !apperr.IsUnauthorized(err) {
		t.Errorf("Expected authorization error listing foreign group, got %v", err)
	}

	list, err := env.processor.List(ctx, &env.group, alice)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("Rejected settlements were recorded: %+v", list)
	}
}
