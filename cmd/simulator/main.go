package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"

	"github.com/FabianUB/minibarcelona3d-sub003/internal/api"
	"github.com/FabianUB/minibarcelona3d-sub003/internal/config"
	"github.com/FabianUB/minibarcelona3d-sub003/internal/db"
	"github.com/FabianUB/minibarcelona3d-sub003/internal/geometry"
	"github.com/FabianUB/minibarcelona3d-sub003/internal/live"
	"github.com/FabianUB/minibarcelona3d-sub003/internal/metrics"
	"github.com/FabianUB/minibarcelona3d-sub003/internal/publisher"
	"github.com/FabianUB/minibarcelona3d-sub003/internal/sim"
	"github.com/FabianUB/minibarcelona3d-sub003/internal/store"
)

func main() {
	// Load configuration from .env and environment
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	// Root context with cancellation on SIGINT/SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Line geometry and schedules
	cache := geometry.NewCache(cfg.GeometryPath)
	if err := cache.Load(); err != nil {
		log.Fatalf("geometry load error: %v", err)
	}
	schedules, err := sim.LoadSchedules(cfg.SchedulesPath)
	if err != nil {
		log.Fatalf("schedules load error: %v", err)
	}
	log.Printf("Loaded %d lines, %d schedules from %s", len(cache.Lines()), len(schedules), cfg.GeometryPath)
	log.Printf("Starting %s simulator, tick %s, tz %s", cfg.Network, cfg.TickInterval, cfg.Location)

	// Metrics setup
	var mcol *metrics.Collector
	var metricsSrv *http.Server
	if cfg.MetricsAddr != "" {
		mcol = metrics.NewCollector(cfg.TickInterval)
		metricsSrv = mcol.Serve(cfg.MetricsAddr)
	}

	// NATS publisher; engine tolerates a nil publisher
	var pub sim.Publisher
	if cfg.NATSURL != "" {
		np, err := publisher.NewNATSPublisher(cfg.NATSURL, cfg.Network, cfg.LogNATSSubjects, wrapPublisherMetrics(mcol))
		if err != nil {
			log.Fatalf("nats error: %v", err)
		}
		defer np.Close()
		pub = np
	}

	// Optional Postgres snapshot history
	var writer sim.SnapshotWriter
	var history *db.Writer
	if cfg.DatabaseURL != "" {
		sqlDB, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("db open error: %v", err)
		}
		defer sqlDB.Close()
		if err := db.Ping(ctx, sqlDB); err != nil {
			log.Fatalf("db ping error: %v", err)
		}
		w := db.NewWriter(sqlDB)
		if err := w.EnsureSchema(ctx); err != nil {
			log.Fatalf("db schema error: %v", err)
		}
		writer = w
		history = w
	}

	// Optional live feed; the engine falls back to simulation on failure
	var liveClient sim.LiveFetcher
	if cfg.LiveURL != "" {
		liveClient = live.NewClient(cfg.LiveURL)
	}

	snapshots := store.NewStore()
	simulator := sim.New(cache, cfg.Network)
	engine := sim.NewEngine(simulator, schedules, snapshots, cfg.TickInterval, liveClient, pub, writer, mcol)

	// HTTP API
	router := mux.NewRouter()
	api.NewHandler(snapshots, cache).RegisterRoutes(router)
	apiSrv := &http.Server{Addr: cfg.APIAddr, Handler: router}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return engine.Run(gctx)
	})
	g.Go(func() error {
		log.Printf("API listening on %s", cfg.APIAddr)
		if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	if history != nil && cfg.SnapshotRetention > 0 {
		g.Go(func() error {
			ticker := time.NewTicker(time.Hour)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					if err := history.PruneBefore(gctx, time.Now().Add(-cfg.SnapshotRetention)); err != nil {
						log.Printf("history prune error: %v", err)
					}
				}
			}
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if metricsSrv != nil {
			_ = metricsSrv.Shutdown(shutdownCtx)
		}
		return apiSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		log.Fatalf("shutdown error: %v", err)
	}
	log.Println("shutdown complete")
}

// wrapPublisherMetrics adapts our Collector to the PublisherMetrics interface.
func wrapPublisherMetrics(c *metrics.Collector) publisher.PublisherMetrics {
	if c == nil {
		return nil
	}
	return &pubMetrics{c: c}
}

type pubMetrics struct{ c *metrics.Collector }

func (p *pubMetrics) NATSPublishedInc()              { p.c.NATSPublished.Inc() }
func (p *pubMetrics) NATSPublishErrInc()             { p.c.NATSPublishErrs.Inc() }
func (p *pubMetrics) PublishObserve(d time.Duration) { p.c.PublishDuration.Observe(d.Seconds()) }
func (p *pubMetrics) NATSSetConnected(b bool) {
	if b {
		p.c.NATSConnected.Set(1)
	} else {
		p.c.NATSConnected.Set(0)
	}
}
