package sim

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/FabianUB/minibarcelona3d-sub003/internal/store"
	"github.com/FabianUB/minibarcelona3d-sub003/internal/transit"
)

type stubLive struct {
	vehicles []transit.LiveVehicle
	err      error
}

func (s *stubLive) Fetch(ctx context.Context) ([]transit.LiveVehicle, error) {
	return s.vehicles, s.err
}

type recordingPublisher struct {
	published []transit.VehiclePosition
}

func (p *recordingPublisher) PublishPosition(v transit.VehiclePosition) error {
	p.published = append(p.published, v)
	return nil
}

func newTestEngine(live LiveFetcher, pub Publisher) (*Engine, *store.Store) {
	snapshots := store.NewStore()
	sim := New(stubRoutes{"R1": fifteenKmRoute()}, "rodalies")
	e := NewEngine(sim, []LineSchedule{testSchedule}, snapshots, 5*time.Second, live, pub, nil, nil)
	return e, snapshots
}

func TestEngineTick(t *testing.T) {
	ts := time.Unix(1700000000, 0)

	t.Run("SimulatesWithoutLiveFetcher", func(t *testing.T) {
		e, snapshots := newTestEngine(nil, nil)
		e.Tick(context.Background(), ts)
		snap := snapshots.Latest()
		if snap == nil {
			t.Fatal("no snapshot published")
		}
		if snap.Source != transit.SourceSimulated {
			t.Errorf("source %s, want simulated", snap.Source)
		}
		if len(snap.Vehicles) != 20 {
			t.Errorf("expected 20 vehicles, got %d", len(snap.Vehicles))
		}
	})

	t.Run("LiveDataTakesPrecedence", func(t *testing.T) {
		live := &stubLive{vehicles: []transit.LiveVehicle{
			{VehicleKey: "rodalies-R1-0-0", LineCode: "R1", Latitude: 41.4, Longitude: 2.17},
		}}
		e, snapshots := newTestEngine(live, nil)
		e.Tick(context.Background(), ts)
		snap := snapshots.Latest()
		if snap.Source != transit.SourceLive {
			t.Errorf("source %s, want live", snap.Source)
		}
		if len(snap.Vehicles) != 1 {
			t.Errorf("expected 1 live vehicle, got %d", len(snap.Vehicles))
		}
	})

	t.Run("FallsBackOnFetchError", func(t *testing.T) {
		e, snapshots := newTestEngine(&stubLive{err: errors.New("boom")}, nil)
		e.Tick(context.Background(), ts)
		snap := snapshots.Latest()
		if snap.Source != transit.SourceSimulated {
			t.Errorf("source %s, want simulated fallback", snap.Source)
		}
		if len(snap.Vehicles) != 20 {
			t.Errorf("expected simulated vehicles on fallback, got %d", len(snap.Vehicles))
		}
	})

	t.Run("FallsBackOnEmptyLiveResult", func(t *testing.T) {
		e, snapshots := newTestEngine(&stubLive{}, nil)
		e.Tick(context.Background(), ts)
		if snapshots.Latest().Source != transit.SourceSimulated {
			t.Error("empty live result must fall back to simulation")
		}
	})

	t.Run("SnapshotReplacedWholesale", func(t *testing.T) {
		e, snapshots := newTestEngine(nil, nil)
		e.Tick(context.Background(), ts)
		first := snapshots.Latest()
		e.Tick(context.Background(), ts.Add(5*time.Second))
		second := snapshots.Latest()
		if first.ID == second.ID {
			t.Error("each tick must publish a fresh snapshot")
		}
		// First snapshot remains intact after being superseded.
		if len(first.Vehicles) != 20 {
			t.Error("published snapshot was mutated")
		}
	})

	t.Run("PublishesEveryVehicle", func(t *testing.T) {
		pub := &recordingPublisher{}
		e, _ := newTestEngine(nil, pub)
		e.Tick(context.Background(), ts)
		if len(pub.published) != 20 {
			t.Errorf("expected 20 published positions, got %d", len(pub.published))
		}
	})
}
