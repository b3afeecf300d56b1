package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

const namespace = "bodega"

// LedgerMetrics holds the Prometheus metrics of the ledger. A nil *LedgerMetrics is
// valid and records nothing.
type LedgerMetrics struct {
	SalesTotal         *prometheus.CounterVec
	SalesAmountTotal   *prometheus.CounterVec
	PaymentsTotal      prometheus.Counter
	PaymentsAmount     prometheus.Counter
	LoginsTotal        *prometheus.CounterVec
	SnapshotSavesTotal *prometheus.CounterVec
	Tenants            prometheus.Gauge
}

// NewLedgerMetrics creates the metrics and registers them with reg.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	factory := promauto.With(reg)
	return &LedgerMetrics{
		SalesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "sales_total",
			Help:      "Total number of recorded sales by payment method.",
		}, []string{"method"}), // method: cash, credit
		SalesAmountTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "sales_amount_total",
			Help:      "Sum of sale totals by payment method.",
		}, []string{"method"}),
		PaymentsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "payments_total",
			Help:      "Total number of recorded customer payments.",
		}),
		PaymentsAmount: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "payments_amount_total",
			Help:      "Sum of customer payments.",
		}),
		LoginsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "logins_total",
			Help:      "Login attempts by outcome.",
		}, []string{"outcome"}), // outcome: superuser, tenant, customer, failed
		SnapshotSavesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "snapshot_saves_total",
			Help:      "Snapshot writes by result.",
		}, []string{"result"}), // result: ok, error
		Tenants: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "registry",
			Name:      "tenants",
			Help:      "Number of registered tenants.",
		}),
	}
}

// ObserveSale counts a committed sale.
func (m *LedgerMetrics) ObserveSale(method string, total decimal.Decimal) {
	if m == nil {
		return
	}
	m.SalesTotal.WithLabelValues(method).Inc()
	f, _ := total.Float64()
	if f > 0 {
		m.SalesAmountTotal.WithLabelValues(method).Add(f)
	}
}

// ObservePayment counts a committed payment.
func (m *LedgerMetrics) ObservePayment(amount decimal.Decimal) {
	if m == nil {
		return
	}
	m.PaymentsTotal.Inc()
	f, _ := amount.Float64()
	m.PaymentsAmount.Add(f)
}

// ObserveLogin counts a login attempt.
func (m *LedgerMetrics) ObserveLogin(outcome string) {
	if m == nil {
		return
	}
	m.LoginsTotal.WithLabelValues(outcome).Inc()
}

// ObserveSave counts a snapshot write.
func (m *LedgerMetrics) ObserveSave(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.SnapshotSavesTotal.WithLabelValues(result).Inc()
}

// SetTenants updates the tenant gauge.
func (m *LedgerMetrics) SetTenants(n int) {
	if m == nil {
		return
	}
	m.Tenants.Set(float64(n))
}
