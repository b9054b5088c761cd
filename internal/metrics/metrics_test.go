package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ExpenseCreated()
	m.ExpenseCreated()
	m.SettlementRecorded(false, 3)
	m.SettlementRecorded(true, 0)
	m.ObserveRPC("/splitsmart.v1.ExpenseService/CreateExpense", "ok", 0.01)

	if got := testutil.ToFloat64(m.ExpensesCreated); got != 2 {
		t.Errorf("expenses_created_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.SharesSettled); got != 3 {
		t.Errorf("shares_settled_total = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.SettlementsRecorded.WithLabelValues("direct")); got != 1 {
		t.Errorf("direct settlements = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.RPCRequests.WithLabelValues("/splitsmart.v1.ExpenseService/CreateExpense", "ok")); got != 1 {
		t.Errorf("rpc_requests_total = %v, want 1", got)
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.ExpenseCreated()
	m.SettlementRecorded(true, 1)
	m.ObserveRPC("p", "ok", 1)
}
