package sim

import (
	"context"
	"log"
	"time"

	mmetrics "github.com/FabianUB/minibarcelona3d-sub003/internal/metrics"
	"github.com/FabianUB/minibarcelona3d-sub003/internal/store"
	"github.com/FabianUB/minibarcelona3d-sub003/internal/transit"
)

// LiveFetcher yields observed positions; any error means "no live data".
type LiveFetcher interface {
	Fetch(ctx context.Context) ([]transit.LiveVehicle, error)
}

// Publisher pushes individual positions to the message bus.
type Publisher interface {
	PublishPosition(v transit.VehiclePosition) error
}

// SnapshotWriter persists snapshot history.
type SnapshotWriter interface {
	InsertSnapshot(ctx context.Context, snap *store.Snapshot) error
}

// Engine drives the periodic tick loop. All per-tick computation runs on
// one goroutine: the full vehicle list is produced atomically and replaces
// the previous snapshot wholesale, so consumers never see a partial or
// merged tick.
type Engine struct {
	sim       *Simulator
	schedules []LineSchedule
	snapshots *store.Store
	interval  time.Duration

	live    LiveFetcher    // nil disables live mode
	pub     Publisher      // nil disables publishing
	writer  SnapshotWriter // nil disables history
	metrics *mmetrics.Collector
}

// NewEngine wires the tick loop. live, pub, writer and metrics may be nil.
func NewEngine(sim *Simulator, schedules []LineSchedule, snapshots *store.Store, interval time.Duration, live LiveFetcher, pub Publisher, writer SnapshotWriter, metrics *mmetrics.Collector) *Engine {
	return &Engine{
		sim:       sim,
		schedules: schedules,
		snapshots: snapshots,
		interval:  interval,
		live:      live,
		pub:       pub,
		writer:    writer,
		metrics:   metrics,
	}
}

// Run ticks immediately and then on every interval until the context is
// cancelled.
func (e *Engine) Run(ctx context.Context) error {
	e.Tick(ctx, time.Now())
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			e.Tick(ctx, now)
		}
	}
}

// Tick produces and publishes one snapshot. Live data wins when present
// and non-empty; otherwise the schedule simulation fills the tick.
func (e *Engine) Tick(ctx context.Context, now time.Time) {
	start := time.Now()

	positions, source := e.collect(ctx, now)
	snap := store.NewSnapshot(source, now, positions)
	e.snapshots.Replace(snap)

	if e.pub != nil {
		for _, v := range snap.Vehicles {
			if err := e.pub.PublishPosition(v); err != nil {
				log.Printf("publish error for %s: %v", v.VehicleKey, err)
			}
		}
	}
	if e.writer != nil {
		if err := e.writer.InsertSnapshot(ctx, snap); err != nil {
			// History is best-effort; a write failure never fails the tick.
			log.Printf("snapshot history write error: %v", err)
			if e.metrics != nil {
				e.metrics.DBWriteErrs.Inc()
			}
		} else if e.metrics != nil {
			e.metrics.DBWrites.Inc()
		}
	}

	if e.metrics != nil {
		e.metrics.TicksTotal.Inc()
		e.metrics.TickDuration.Observe(time.Since(start).Seconds())
		counts := make(map[string]int)
		for _, v := range snap.Vehicles {
			counts[v.LineCode]++
		}
		for line, n := range counts {
			e.metrics.SnapshotVehicles.WithLabelValues(line).Set(float64(n))
		}
		for _, s := range []transit.Source{transit.SourceLive, transit.SourceSimulated} {
			val := 0.0
			if s == source {
				val = 1.0
			}
			e.metrics.SnapshotSource.WithLabelValues(string(s)).Set(val)
		}
	}
}

// collect resolves this tick's positions and their source.
func (e *Engine) collect(ctx context.Context, now time.Time) ([]transit.VehiclePosition, transit.Source) {
	if e.live != nil {
		observed, err := e.live.Fetch(ctx)
		if err != nil {
			log.Printf("live positions unavailable, falling back to simulation: %v", err)
			if e.metrics != nil {
				e.metrics.LiveFetchErrs.Inc()
				e.metrics.LiveFallbacks.Inc()
			}
		} else if len(observed) == 0 {
			if e.metrics != nil {
				e.metrics.LiveFallbacks.Inc()
			}
		} else {
			positions := make([]transit.VehiclePosition, len(observed))
			for i, v := range observed {
				positions[i] = v.Position()
			}
			return positions, transit.SourceLive
		}
	}

	simulated := e.sim.GeneratePositions(e.schedules, now)
	positions := make([]transit.VehiclePosition, len(simulated))
	for i, v := range simulated {
		positions[i] = v.Position()
	}
	return positions, transit.SourceSimulated
}
