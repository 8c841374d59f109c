// Package metrics exposes lockbox telemetry as Prometheus collectors.
//
// The Collector is a dispatcher hook (actions by name) and a presenter
// metrics sink (routing errors, view updates). It uses a private registry so
// tests can create as many collectors as they like.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/diegolucasb/lockbox/internal/action"
)

// Collector records lockbox metrics.
type Collector struct {
	registry *prometheus.Registry

	dispatched    *prometheus.CounterVec
	lastSeq       prometheus.Gauge
	routingErrors *prometheus.CounterVec
	viewUpdates   *prometheus.CounterVec
	dataState     prometheus.Gauge
	deviceSecure  prometheus.Gauge
	syncRuns      *prometheus.CounterVec
}

// NewCollector creates a collector. An empty namespace defaults to "lockbox".
func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = "lockbox"
	}

	c := &Collector{registry: prometheus.NewRegistry()}

	c.dispatched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dispatcher",
			Name:      "actions_total",
			Help:      "Total number of dispatched actions",
		},
		[]string{"action", "kind"},
	)

	c.lastSeq = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "dispatcher",
			Name:      "last_seq",
			Help:      "Sequence number of the last delivered action",
		},
	)

	c.routingErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "presenter",
			Name:      "routing_errors_total",
			Help:      "Menu selections that could not be routed",
		},
		[]string{"item"},
	)

	c.viewUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "presenter",
			Name:      "view_updates_total",
			Help:      "Item list updates pushed to views",
		},
		[]string{"screen"},
	)

	c.dataState = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "data_state",
			Help:      "Data store state (0=locked, 1=unlocked, 2=syncing, 3=errored)",
		},
	)

	c.deviceSecure = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "security",
			Name:      "device_secure",
			Help:      "Whether the device counts as secured (1) or not (0)",
		},
	)

	c.syncRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "scheduled_total",
			Help:      "Scheduled sync dispatches",
		},
		[]string{"result"},
	)

	c.registry.MustRegister(
		c.dispatched,
		c.lastSeq,
		c.routingErrors,
		c.viewUpdates,
		c.dataState,
		c.deviceSecure,
		c.syncRuns,
	)

	return c
}

// Registry returns the private registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ActionDispatched counts a delivered action.
func (c *Collector) ActionDispatched(seq int64, a action.Action) {
	kind := "data"
	if action.IsRoute(a) {
		kind = "route"
	}
	c.dispatched.WithLabelValues(a.Name(), kind).Inc()
	c.lastSeq.Set(float64(seq))
}

// RoutingError counts an unroutable menu item.
func (c *Collector) RoutingError(item string) {
	c.routingErrors.WithLabelValues(item).Inc()
}

// ViewUpdated counts a view update.
func (c *Collector) ViewUpdated(screen string) {
	c.viewUpdates.WithLabelValues(screen).Inc()
}

// RecordDataState sets the data store state gauge.
func (c *Collector) RecordDataState(state int) {
	c.dataState.Set(float64(state))
}

// RecordDeviceSecure sets the device security gauge.
func (c *Collector) RecordDeviceSecure(secure bool) {
	if secure {
		c.deviceSecure.Set(1)
		return
	}
	c.deviceSecure.Set(0)
}

// RecordScheduledSync counts a cron-triggered sync.
func (c *Collector) RecordScheduledSync(skipped bool) {
	result := "dispatched"
	if skipped {
		result = "skipped"
	}
	c.syncRuns.WithLabelValues(result).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (c *Collector) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("metrics server: %w", err)
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
