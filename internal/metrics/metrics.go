// Package metrics exposes the process-wide Prometheus collectors.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// SessionsActive tracks currently open kiosk connections.
	SessionsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "kiosk_sessions_active",
		Help: "Number of currently connected kiosk sessions",
	})

	// ConfigsServed counts config replies sent across all sessions.
	ConfigsServed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kiosk_configs_served_total",
		Help: "Total number of config replies served",
	})

	// OrdersPersisted counts orders written to the ledger.
	OrdersPersisted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kiosk_orders_persisted_total",
		Help: "Total number of orders appended to the ledger",
	})

	// OrdersRejected counts submissions refused for referencing ids absent
	// from the menu.
	OrdersRejected = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kiosk_orders_rejected_total",
		Help: "Total number of order submissions rejected at validation",
	})

	// LedgerWriteFailures counts valid orders lost to storage errors.
	LedgerWriteFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kiosk_ledger_write_failures_total",
		Help: "Total number of failed ledger writes",
	})

	// MessagesIgnored counts inbound frames that matched no recognised shape.
	MessagesIgnored = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kiosk_messages_ignored_total",
		Help: "Total number of unrecognised inbound messages",
	})
)

func init() {
	prometheus.MustRegister(
		SessionsActive,
		ConfigsServed,
		OrdersPersisted,
		OrdersRejected,
		LedgerWriteFailures,
		MessagesIgnored,
	)
}
