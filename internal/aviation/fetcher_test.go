// AetherWatch - Aerial and Ground Situational Awareness Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aetherwatch

package aviation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"testing"
	"time"

	"github.com/tomtom215/aetherwatch/internal/cache"
	"github.com/tomtom215/aetherwatch/internal/logging"
	"github.com/tomtom215/aetherwatch/internal/models"
)

func TestMain(m *testing.M) {
	logging.SetLogger(logging.NewTestLogger(io.Discard))
	os.Exit(m.Run())
}

type stubProvider struct {
	name      string
	available bool
	batch     []models.AircraftState
	err       error
	calls     int
}

func (s *stubProvider) Name() string      { return s.name }
func (s *stubProvider) IsAvailable() bool { return s.available }

func (s *stubProvider) Fetch(_ context.Context, _ models.BoundingBox) ([]models.AircraftState, error) {
	s.calls++
	return s.batch, s.err
}

func liveBatch(n int) []models.AircraftState {
	out := make([]models.AircraftState, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.AircraftState{
			ICAO24:   fmt.Sprintf("%06x", i),
			Callsign: fmt.Sprintf("TST%d", 100+i),
			Latitude: 40, Longitude: -73,
			AltitudeFt: 30000, VelocityKts: 400,
			Squawk: "1200",
		})
	}
	return out
}

func newTestFetcher(t *testing.T, providers ...Provider) *Fetcher {
	t.Helper()
	return &Fetcher{
		providers:   providers,
		generator:   newSeededGenerator(1),
		cache:       cache.New("aviation-test", 16, time.Minute),
		maxAircraft: 500,
	}
}

func TestFetchFallsThroughToSecondProvider(t *testing.T) {
	primary := &stubProvider{name: "adsbfi", available: true, err: errors.New("upstream down")}
	secondary := &stubProvider{name: "opensky", available: true, batch: liveBatch(3)}
	f := newTestFetcher(t, primary, secondary)

	batch, err := f.Fetch(context.Background(), models.GlobalBBox())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if primary.calls != 1 || secondary.calls != 1 {
		t.Errorf("calls = %d/%d, want 1/1", primary.calls, secondary.calls)
	}
	if len(batch) != 3 {
		t.Fatalf("len(batch) = %d, want 3", len(batch))
	}
	for _, ac := range batch {
		if ac.IsMock {
			t.Error("live batch contains mock aircraft")
		}
	}
}

func TestFetchSkipsUnavailableProvider(t *testing.T) {
	tripped := &stubProvider{name: "adsbfi", available: false, batch: liveBatch(5)}
	healthy := &stubProvider{name: "adsblol", available: true, batch: liveBatch(2)}
	f := newTestFetcher(t, tripped, healthy)

	batch, err := f.Fetch(context.Background(), models.GlobalBBox())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if tripped.calls != 0 {
		t.Errorf("unavailable provider was called %d times", tripped.calls)
	}
	if len(batch) != 2 {
		t.Errorf("len(batch) = %d, want 2 from the healthy provider", len(batch))
	}
}

func TestFetchEmptyBatchAdvancesChain(t *testing.T) {
	quiet := &stubProvider{name: "adsbfi", available: true, batch: nil}
	busy := &stubProvider{name: "opensky", available: true, batch: liveBatch(1)}
	f := newTestFetcher(t, quiet, busy)

	batch, err := f.Fetch(context.Background(), models.GlobalBBox())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if quiet.calls != 1 || busy.calls != 1 {
		t.Errorf("calls = %d/%d, want 1/1", quiet.calls, busy.calls)
	}
	if len(batch) != 1 {
		t.Errorf("len(batch) = %d, want 1", len(batch))
	}
}

func TestFetchGeneratorRescueWhenAllFail(t *testing.T) {
	down1 := &stubProvider{name: "adsbfi", available: true, err: errors.New("boom")}
	down2 := &stubProvider{name: "opensky", available: true, err: errors.New("bang")}
	f := newTestFetcher(t, down1, down2)

	batch, err := f.Fetch(context.Background(), models.GlobalBBox())
	if err != nil {
		t.Fatalf("Fetch() error = %v, generator should rescue", err)
	}
	if len(batch) == 0 || len(batch) > 500 {
		t.Fatalf("len(batch) = %d, want 1..500 synthetic aircraft", len(batch))
	}
	if models.AircraftBatchLive(batch) {
		t.Error("synthetic batch reported as live")
	}
	for _, ac := range batch {
		if !ac.IsMock {
			t.Error("synthetic batch contains non-mock aircraft")
		}
	}
}

func TestFetchCacheShortCircuits(t *testing.T) {
	p := &stubProvider{name: "adsbfi", available: true, batch: liveBatch(4)}
	f := newTestFetcher(t, p)

	bbox := models.GlobalBBox()
	if _, err := f.Fetch(context.Background(), bbox); err != nil {
		t.Fatalf("first Fetch() error = %v", err)
	}
	second, err := f.Fetch(context.Background(), bbox)
	if err != nil {
		t.Fatalf("second Fetch() error = %v", err)
	}

	if p.calls != 1 {
		t.Errorf("provider called %d times, want 1 (cache hit)", p.calls)
	}
	if len(second) != 4 {
		t.Errorf("cached batch length = %d, want 4", len(second))
	}
}

func TestFetchCacheKeyedByBBox(t *testing.T) {
	p := &stubProvider{name: "adsbfi", available: true, batch: liveBatch(1)}
	f := newTestFetcher(t, p)

	usBBox, _ := models.ParseBoundingBox("-125,24,-66,50")
	if _, err := f.Fetch(context.Background(), usBBox); err != nil {
		t.Fatalf("Fetch(us) error = %v", err)
	}
	if _, err := f.Fetch(context.Background(), models.GlobalBBox()); err != nil {
		t.Fatalf("Fetch(global) error = %v", err)
	}

	if p.calls != 2 {
		t.Errorf("provider called %d times, want 2 (distinct bboxes)", p.calls)
	}
}

func TestFetchForceSimulatedSkipsProviders(t *testing.T) {
	p := &stubProvider{name: "adsbfi", available: true, batch: liveBatch(9)}
	f := newTestFetcher(t, p)
	f.forceSimulated = true

	batch, err := f.Fetch(context.Background(), models.GlobalBBox())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if p.calls != 0 {
		t.Errorf("provider called %d times in simulated mode", p.calls)
	}
	for _, ac := range batch {
		if !ac.IsMock {
			t.Fatal("simulated mode returned live aircraft")
		}
	}
}

func TestFetchSortsAndCaps(t *testing.T) {
	// Batch arrives reversed and over the cap.
	reversed := liveBatch(10)
	for i, j := 0, len(reversed)-1; i < j; i, j = i+1, j-1 {
		reversed[i], reversed[j] = reversed[j], reversed[i]
	}
	p := &stubProvider{name: "adsbfi", available: true, batch: reversed}
	f := newTestFetcher(t, p)
	f.maxAircraft = 5

	batch, err := f.Fetch(context.Background(), models.GlobalBBox())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(batch) != 5 {
		t.Fatalf("len(batch) = %d, want capped 5", len(batch))
	}
	for i := 1; i < len(batch); i++ {
		if batch[i-1].ICAO24 > batch[i].ICAO24 {
			t.Fatalf("batch not sorted at %d: %q > %q", i, batch[i-1].ICAO24, batch[i].ICAO24)
		}
	}
	if batch[0].ICAO24 != "000000" {
		t.Errorf("cap kept %q first, want lowest icao24", batch[0].ICAO24)
	}
}

func TestFetchHonorsContextCancellation(t *testing.T) {
	p := &stubProvider{name: "adsbfi", available: true, batch: liveBatch(1)}
	f := newTestFetcher(t, p)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := f.Fetch(ctx, models.GlobalBBox()); !errors.Is(err, context.Canceled) {
		t.Errorf("Fetch() error = %v, want context.Canceled", err)
	}
	if p.calls != 0 {
		t.Errorf("provider called %d times after cancellation", p.calls)
	}
}

func TestProviderStatuses(t *testing.T) {
	up := &stubProvider{name: "adsbfi", available: true}
	down := &stubProvider{name: "opensky", available: false}
	f := newTestFetcher(t, up, down)

	statuses := f.ProviderStatuses()
	if len(statuses) != 2 {
		t.Fatalf("len(statuses) = %d, want 2", len(statuses))
	}
	if statuses[0].Name != "adsbfi" || !statuses[0].Available {
		t.Errorf("statuses[0] = %+v", statuses[0])
	}
	if statuses[1].Name != "opensky" || statuses[1].Available {
		t.Errorf("statuses[1] = %+v", statuses[1])
	}
}

func TestSnapshotKeepsFetchStampAcrossCacheHits(t *testing.T) {
	p := &stubProvider{name: "adsbfi", available: true, batch: liveBatch(2)}
	f := newTestFetcher(t, p)

	bbox := models.GlobalBBox()
	first, err := f.Snapshot(context.Background(), bbox)
	if err != nil {
		t.Fatalf("first Snapshot() error = %v", err)
	}
	if first.FetchedAt.IsZero() {
		t.Fatal("FetchedAt not stamped on fresh fetch")
	}
	if !first.IsLive || first.Count != 2 {
		t.Errorf("snapshot = live %v count %d, want live 2", first.IsLive, first.Count)
	}

	second, err := f.Snapshot(context.Background(), bbox)
	if err != nil {
		t.Fatalf("second Snapshot() error = %v", err)
	}
	if !second.FetchedAt.Equal(first.FetchedAt) {
		t.Errorf("cache hit changed FetchedAt: %v then %v", first.FetchedAt, second.FetchedAt)
	}
	if p.calls != 1 {
		t.Errorf("provider called %d times, want 1", p.calls)
	}
}

func TestSnapshotMarksGeneratorBatches(t *testing.T) {
	down := &stubProvider{name: "adsbfi", available: true, err: errors.New("down")}
	f := newTestFetcher(t, down)

	snap, err := f.Snapshot(context.Background(), models.GlobalBBox())
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if snap.IsLive {
		t.Error("generator snapshot reported as live")
	}
	if snap.Count != len(snap.Aircraft) || snap.Count == 0 {
		t.Errorf("Count = %d with %d aircraft", snap.Count, len(snap.Aircraft))
	}
	if snap.FetchedAt.IsZero() {
		t.Error("generator snapshot missing FetchedAt")
	}
}
