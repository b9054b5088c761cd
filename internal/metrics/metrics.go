// Package metrics defines the Prometheus collectors exported by the server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "splitsmart"

// Metrics holds every collector. A nil *Metrics is valid and records nothing,
// so engines can be built without a registry in tests.
type Metrics struct {
	RPCRequests         *prometheus.CounterVec
	RPCDuration         *prometheus.HistogramVec
	ExpensesCreated     prometheus.Counter
	SettlementsRecorded *prometheus.CounterVec
	SharesSettled       prometheus.Counter
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RPCRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "RPCs handled, by procedure and result code.",
		}, []string{"procedure", "code"}),
		RPCDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "RPC latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
		ExpensesCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expenses_created_total",
			Help:      "Expenses created.",
		}),
		SettlementsRecorded: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlements_recorded_total",
			Help:      "Settlements recorded, by scope (group or direct).",
		}, []string{"scope"}),
		SharesSettled: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shares_settled_total",
			Help:      "Expense shares flipped to settled.",
		}),
	}
}

// ObserveRPC records one finished call.
func (m *Metrics) ObserveRPC(procedure, code string, seconds float64) {
	if m == nil {
		return
	}
	m.RPCRequests.WithLabelValues(procedure, code).Inc()
	m.RPCDuration.WithLabelValues(procedure).Observe(seconds)
}

// ExpenseCreated counts a new expense.
func (m *Metrics) ExpenseCreated() {
	if m == nil {
		return
	}
	m.ExpensesCreated.Inc()
}

// SettlementRecorded counts a settlement and the shares it marked.
func (m *Metrics) SettlementRecorded(direct bool, shares int) {
	if m == nil {
		return
	}
	scope := "group"
	if direct {
		scope = "direct"
	}
	m.SettlementsRecorded.WithLabelValues(scope).Inc()
	m.SharesSettled.Add(float64(shares))
}
