// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package mrm

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the Prometheus instrumentation for one Manager, in the same
// Describe/Collect-implementing shape the teacher's eBPF metrics package
// uses.
type Metrics struct {
	Enabled prometheus.Gauge

	UpcallsTotal       prometheus.Counter
	RoutesInstalled    prometheus.Counter
	RoutesBlocked      prometheus.Counter
	RoutesUnblocked    prometheus.Counter
	RoutesRemoved      prometheus.Counter
	RoutesExpired      prometheus.Counter
	RoutesRefreshed    prometheus.Counter
	MfcSize            prometheus.Gauge
	RegisteredListeners prometheus.Gauge
}

// NewMetrics builds a Metrics with every series named under the mrm_
// prefix. It does not register them; see Register.
func NewMetrics() *Metrics {
	return &Metrics{
		Enabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mrm_enabled",
			Help: "Whether this node currently owns the multicast router socket (1) or not (0).",
		}),
		UpcallsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mrm_upcalls_total",
			Help: "Total number of MRT6MSG_NOCACHE upcalls handled.",
		}),
		RoutesInstalled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mrm_routes_installed_total",
			Help: "Total number of MFC entries installed in response to an upcall.",
		}),
		RoutesBlocked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mrm_routes_blocked_total",
			Help: "Total number of MFC entries installed as a block (negative-cache) entry.",
		}),
		RoutesUnblocked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mrm_routes_unblocked_total",
			Help: "Total number of previously-blocked routes unblocked by a new listener registration.",
		}),
		RoutesRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mrm_routes_removed_total",
			Help: "Total number of MFC entries deleted because their listener unregistered.",
		}),
		RoutesExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mrm_routes_expired_total",
			Help: "Total number of MFC entries evicted by the idle-cache expiry pass.",
		}),
		RoutesRefreshed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mrm_routes_refreshed_total",
			Help: "Total number of MFC entries refreshed by the expiry pass after observing new traffic.",
		}),
		MfcSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mrm_mfc_entries",
			Help: "Current number of entries mirrored in the in-memory MFC.",
		}),
		RegisteredListeners: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mrm_registered_listeners",
			Help: "Current number of Thread-side multicast group registrations.",
		}),
	}
}

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.Enabled.Describe(ch)
	m.UpcallsTotal.Describe(ch)
	m.RoutesInstalled.Describe(ch)
	m.RoutesBlocked.Describe(ch)
	m.RoutesUnblocked.Describe(ch)
	m.RoutesRemoved.Describe(ch)
	m.RoutesExpired.Describe(ch)
	m.RoutesRefreshed.Describe(ch)
	m.MfcSize.Describe(ch)
	m.RegisteredListeners.Describe(ch)
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.Enabled.Collect(ch)
	m.UpcallsTotal.Collect(ch)
	m.RoutesInstalled.Collect(ch)
	m.RoutesBlocked.Collect(ch)
	m.RoutesUnblocked.Collect(ch)
	m.RoutesRemoved.Collect(ch)
	m.RoutesExpired.Collect(ch)
	m.RoutesRefreshed.Collect(ch)
	m.MfcSize.Collect(ch)
	m.RegisteredListeners.Collect(ch)
}

// Register registers m with the default Prometheus registry.
func (m *Metrics) Register() {
	prometheus.MustRegister(m)
}
