// Package metrics exposes Prometheus counters for the check-in flow.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service counters. All counters are registered on the
// registry passed to New, so tests can use an isolated registry.
type Metrics struct {
	CheckIns        *prometheus.CounterVec
	CheckInRejected *prometheus.CounterVec
	CouponsAwarded  prometheus.Counter
	CouponsRedeemed prometheus.Counter
	ScanSessions    *prometheus.CounterVec
}

// New registers and returns the service metrics.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CheckIns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "checkin_total",
			Help: "Successful check-ins by path (self or admin).",
		}, []string{"path"}),
		CheckInRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "checkin_rejected_total",
			Help: "Rejected check-in attempts by reason.",
		}, []string{"reason"}),
		CouponsAwarded: factory.NewCounter(prometheus.CounterOpts{
			Name: "coupons_awarded_total",
			Help: "Coupons awarded by the every-fifth-point rule.",
		}),
		CouponsRedeemed: factory.NewCounter(prometheus.CounterOpts{
			Name: "coupons_redeemed_total",
			Help: "Coupons redeemed by an admin.",
		}),
		ScanSessions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scan_sessions_total",
			Help: "Scan sessions by terminal state.",
		}, []string{"state"}),
	}
}
