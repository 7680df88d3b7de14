package metrics

import (
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	reg *prometheus.Registry

	SnapshotVehicles *prometheus.GaugeVec // lineCode label
	SnapshotSource   *prometheus.GaugeVec // source label: 1 for active source

	TicksTotal    prometheus.Counter
	LiveFallbacks prometheus.Counter
	LiveFetchErrs prometheus.Counter

	NATSPublished   prometheus.Counter
	NATSPublishErrs prometheus.Counter
	NATSConnected   prometheus.Gauge

	DBWrites    prometheus.Counter
	DBWriteErrs prometheus.Counter

	TickDuration    prometheus.Histogram
	PublishDuration prometheus.Histogram

	TickInterval prometheus.Gauge // seconds
}

func NewCollector(tickInterval time.Duration) *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		SnapshotVehicles: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "simulator_snapshot_vehicles",
			Help: "Vehicles in the latest snapshot, per line.",
		}, []string{"line"}),
		SnapshotSource: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "simulator_snapshot_source",
			Help: "1 for the source that produced the latest snapshot.",
		}, []string{"source"}),
		TicksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "simulator_ticks_total",
			Help: "Total simulation ticks completed.",
		}),
		LiveFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "simulator_live_fallbacks_total",
			Help: "Ticks where live data was unavailable and simulation was used.",
		}),
		LiveFetchErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "simulator_live_fetch_errors_total",
			Help: "Total live position fetch failures after retries.",
		}),
		NATSPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "simulator_nats_published_total",
			Help: "Total NATS messages published.",
		}),
		NATSPublishErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "simulator_nats_publish_errors_total",
			Help: "Total NATS publish errors.",
		}),
		NATSConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "simulator_nats_connected",
			Help: "1 if NATS connection is established, 0 otherwise.",
		}),
		DBWrites: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "simulator_db_snapshot_writes_total",
			Help: "Total snapshot history rows written.",
		}),
		DBWriteErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "simulator_db_snapshot_write_errors_total",
			Help: "Total snapshot history write failures.",
		}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "simulator_tick_duration_seconds",
			Help:    "Duration of simulation tick computations.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
		}),
		PublishDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "simulator_publish_duration_seconds",
			Help:    "Duration to marshal and publish a NATS message.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 15),
		}),
		TickInterval: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "simulator_tick_interval_seconds",
			Help: "Tick interval in seconds.",
		}),
	}

	// Register
	reg.MustRegister(
		c.SnapshotVehicles, c.SnapshotSource,
		c.TicksTotal, c.LiveFallbacks, c.LiveFetchErrs,
		c.NATSPublished, c.NATSPublishErrs, c.NATSConnected,
		c.DBWrites, c.DBWriteErrs,
		c.TickDuration, c.PublishDuration, c.TickInterval,
	)

	c.TickInterval.Set(tickInterval.Seconds())

	return c
}

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

// Serve starts an HTTP server exposing /metrics on the given address.
func (c *Collector) Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics server error: %v", err)
		}
	}()
	log.Printf("metrics listening on %s", addr)
	return srv
}
