// Package metrics exposes client-side prometheus instrumentation: how many
// row changes each mirror has applied, reconnects, outbound reducer calls,
// and the current game phase.
package metrics

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RowsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "movegame_rows_applied_total",
		Help: "Replicated row changes applied to local mirrors.",
	}, []string{"table", "op"})

	RowsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "movegame_rows_rejected_total",
		Help: "Replicated rows dropped because they could not be keyed.",
	}, []string{"table"})

	Reconnects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "movegame_reconnects_total",
		Help: "Times the replication connection was re-established.",
	})

	SubscriptionErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "movegame_subscription_errors_total",
		Help: "Subscription failures reported by the backend.",
	})

	CommandsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "movegame_commands_sent_total",
		Help: "Reducer invocations sent upstream.",
	}, []string{"reducer"})

	CurrentPhase = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "movegame_phase",
		Help: "Current game phase as its enum value.",
	})
)

// Serve exposes /metrics on addr in a background goroutine. Pass an empty
// addr to disable.
func Serve(addr string, logger *slog.Logger) {
	if addr == "" {
		return
	}
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		logger.Info("serving metrics", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error("metrics server stopped", "error", err)
		}
	}()
}
