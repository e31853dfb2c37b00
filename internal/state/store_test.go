package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/five82/lineup/internal/mediaserver"
)

var base = time.Date(2024, 1, 1, 18, 0, 0, 0, time.UTC)

type fakeFetcher struct {
	channels    []mediaserver.Channel
	programs    map[string][]mediaserver.Program
	channelErr  error
	programErr  error
	channelCall atomic.Int32
	programCall atomic.Int32
	gate        chan struct{} // when set, Channels blocks until closed
	lastQuery   mediaserver.ChannelQuery
	mu          sync.Mutex
}

func (f *fakeFetcher) Channels(ctx context.Context, q mediaserver.ChannelQuery) ([]mediaserver.Channel, error) {
	f.channelCall.Add(1)
	f.mu.Lock()
	f.lastQuery = q
	f.mu.Unlock()
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.channelErr != nil {
		return nil, f.channelErr
	}
	if q.StartIndex >= len(f.channels) {
		return nil, nil
	}
	end := q.StartIndex + q.Limit
	if end > len(f.channels) {
		end = len(f.channels)
	}
	return append([]mediaserver.Channel(nil), f.channels[q.StartIndex:end]...), nil
}

func (f *fakeFetcher) Programs(_ context.Context, ids []string, start, end time.Time) ([]mediaserver.Program, error) {
	f.programCall.Add(1)
	if f.programErr != nil {
		return nil, f.programErr
	}
	var out []mediaserver.Program
	for _, id := range ids {
		for _, p := range f.programs[id] {
			if p.End.After(start) && p.Start.Before(end) {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func batch(s *Store, start, size int, from, to time.Time) BatchQuery {
	return BatchQuery{Generation: s.Generation(), StartIndex: start, Size: size, From: from, To: to}
}

func extend(s *Store, from, to time.Time) ExtendQuery {
	return ExtendQuery{Generation: s.Generation(), From: from, To: to}
}

func newFetcher(n int) *fakeFetcher {
	f := &fakeFetcher{programs: map[string][]mediaserver.Program{}}
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("ch%d", i)
		f.channels = append(f.channels, mediaserver.Channel{ID: id, Number: fmt.Sprint(i + 1)})
		for h := 0; h < 6; h++ {
			start := base.Add(time.Duration(h) * time.Hour)
			f.programs[id] = append(f.programs[id], mediaserver.Program{
				ID:        fmt.Sprintf("%s:%d", id, h),
				ChannelID: id,
				Start:     start,
				End:       start.Add(time.Hour),
			})
		}
	}
	return f
}

func TestStore_LoadChannelBatchAppends(t *testing.T) {
	s := NewStore()
	f := newFetcher(30)

	n, err := s.LoadChannelBatch(context.Background(), f, batch(s, 0, 25, base, base.Add(3*time.Hour)))
	if err != nil {
		t.Fatalf("LoadChannelBatch: %v", err)
	}
	if n != 25 {
		t.Fatalf("appended = %d, want 25", n)
	}
	snap := s.Snapshot()
	if len(snap.Channels) != 25 || !snap.More || snap.Loading {
		t.Fatalf("snapshot = %d channels more=%v loading=%v, want 25 true false", len(snap.Channels), snap.More, snap.Loading)
	}
	if got := len(snap.Programs["ch0"]); got != 3 {
		t.Fatalf("programs for ch0 = %d, want 3", got)
	}

	n, err = s.LoadChannelBatch(context.Background(), f, batch(s, 25, 25, base, base.Add(3*time.Hour)))
	if err != nil {
		t.Fatalf("second batch: %v", err)
	}
	if n != 5 {
		t.Fatalf("second batch appended = %d, want 5", n)
	}
	if s.More() {
		t.Fatalf("More = true after short batch, want false")
	}
	if _, err := s.LoadChannelBatch(context.Background(), f, batch(s, 30, 25, base, base.Add(time.Hour))); !errors.Is(err, ErrNoMoreChannels) {
		t.Fatalf("batch after end err = %v, want ErrNoMoreChannels", err)
	}
}

func TestStore_LoadChannelBatchRejectsOutOfOrder(t *testing.T) {
	s := NewStore()
	f := newFetcher(5)
	if _, err := s.LoadChannelBatch(context.Background(), f, batch(s, 3, 2, base, base.Add(time.Hour))); !errors.Is(err, ErrOutOfOrder) {
		t.Fatalf("err = %v, want ErrOutOfOrder", err)
	}
	if f.channelCall.Load() != 0 {
		t.Fatalf("fetch issued for out-of-order batch")
	}
}

func TestStore_SecondLoadWhileInFlightIsNoOp(t *testing.T) {
	s := NewStore()
	f := newFetcher(10)
	f.gate = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := s.LoadChannelBatch(context.Background(), f, batch(s, 0, 5, base, base.Add(time.Hour)))
		done <- err
	}()

	deadline := time.Now().Add(2 * time.Second)
	for !s.Loading() {
		if time.Now().After(deadline) {
			t.Fatalf("first load never started")
		}
		time.Sleep(time.Millisecond)
	}

	if _, err := s.LoadChannelBatch(context.Background(), f, batch(s, 0, 5, base, base.Add(time.Hour))); !errors.Is(err, ErrLoadInFlight) {
		t.Fatalf("concurrent batch err = %v, want ErrLoadInFlight", err)
	}
	if _, err := s.ExtendPrograms(context.Background(), f, extend(s, base, base.Add(time.Hour))); !errors.Is(err, ErrLoadInFlight) {
		t.Fatalf("concurrent extend err = %v, want ErrLoadInFlight", err)
	}

	close(f.gate)
	if err := <-done; err != nil {
		t.Fatalf("first load: %v", err)
	}
	if got := f.channelCall.Load(); got != 1 {
		t.Fatalf("channel fetches = %d, want 1", got)
	}
	if got := s.Len(); got != 5 {
		t.Fatalf("channels = %d, want 5", got)
	}
}

func TestStore_ConcurrentBatchesIssueOneFetch(t *testing.T) {
	s := NewStore()
	f := newFetcher(10)
	f.gate = make(chan struct{})

	var wg sync.WaitGroup
	var ok, other atomic.Int32
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.LoadChannelBatch(context.Background(), f, batch(s, 0, 5, base, base.Add(time.Hour)))
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, ErrLoadInFlight), errors.Is(err, ErrOutOfOrder):
			default:
				other.Add(1)
			}
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(f.gate)
	wg.Wait()

	if ok.Load() != 1 {
		t.Fatalf("successful loads = %d, want 1", ok.Load())
	}
	if other.Load() != 0 {
		t.Fatalf("unexpected errors = %d, want 0", other.Load())
	}
	if got := f.channelCall.Load(); got != 1 {
		t.Fatalf("channel fetches = %d, want 1", got)
	}
}

func TestStore_BatchFailureStopsFurtherBatches(t *testing.T) {
	s := NewStore()
	f := newFetcher(10)
	f.programErr = errors.New("boom")

	if _, err := s.LoadChannelBatch(context.Background(), f, batch(s, 0, 5, base, base.Add(time.Hour))); err == nil {
		t.Fatalf("expected error")
	}
	snap := s.Snapshot()
	if snap.Loading || snap.More {
		t.Fatalf("loading=%v more=%v after failure, want false false", snap.Loading, snap.More)
	}
	if len(snap.Channels) != 0 {
		t.Fatalf("channels = %d, want 0", len(snap.Channels))
	}
}

func TestStore_ResetDropsStaleResponse(t *testing.T) {
	s := NewStore()
	f := newFetcher(10)
	f.gate = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := s.LoadChannelBatch(context.Background(), f, batch(s, 0, 5, base, base.Add(time.Hour)))
		done <- err
	}()
	for !s.Loading() {
		time.Sleep(time.Millisecond)
	}

	gen := s.Reset(true)
	if s.Loading() {
		t.Fatalf("Loading = true after reset")
	}
	close(f.gate)
	if err := <-done; !errors.Is(err, ErrStaleGeneration) {
		t.Fatalf("err = %v, want ErrStaleGeneration", err)
	}
	snap := s.Snapshot()
	if len(snap.Channels) != 0 {
		t.Fatalf("stale batch applied: %d channels", len(snap.Channels))
	}
	if snap.Generation != gen {
		t.Fatalf("Generation = %d, want %d", snap.Generation, gen)
	}

	f.gate = nil
	if _, err := s.LoadChannelBatch(context.Background(), f, batch(s, 0, 5, base, base.Add(time.Hour))); err != nil {
		t.Fatalf("batch after reset: %v", err)
	}
	if !f.lastQuery.FavoritesOnly {
		t.Fatalf("FavoritesOnly not forwarded after reset")
	}
}

func TestStore_ExtendProgramsPreservesOrderAndDedupes(t *testing.T) {
	s := NewStore()
	f := newFetcher(2)
	if _, err := s.LoadChannelBatch(context.Background(), f, batch(s, 0, 25, base, base.Add(3*time.Hour))); err != nil {
		t.Fatalf("batch: %v", err)
	}
	before := s.Snapshot().Programs["ch0"]

	// Overlapping range returns the program ending at 3h again.
	added, err := s.ExtendPrograms(context.Background(), f, extend(s, base.Add(2*time.Hour), base.Add(5*time.Hour)))
	if err != nil {
		t.Fatalf("ExtendPrograms: %v", err)
	}
	if added != 2 {
		t.Fatalf("added = %d, want 2", added)
	}
	after := s.Snapshot().Programs["ch0"]
	if len(after) != 5 {
		t.Fatalf("programs = %d, want 5", len(after))
	}
	for i := range before {
		if after[i].ID != before[i].ID {
			t.Fatalf("program %d moved: %q, want %q", i, after[i].ID, before[i].ID)
		}
	}
	for i := 1; i < len(after); i++ {
		if after[i].Start.Before(after[i-1].Start) {
			t.Fatalf("programs not sorted at %d", i)
		}
	}
}

func TestStore_ExtendFailureKeepsPrograms(t *testing.T) {
	s := NewStore()
	f := newFetcher(1)
	if _, err := s.LoadChannelBatch(context.Background(), f, batch(s, 0, 25, base, base.Add(2*time.Hour))); err != nil {
		t.Fatalf("batch: %v", err)
	}
	f.programErr = errors.New("boom")
	if _, err := s.ExtendPrograms(context.Background(), f, extend(s, base.Add(2*time.Hour), base.Add(4*time.Hour))); err == nil {
		t.Fatalf("expected error")
	}
	snap := s.Snapshot()
	if snap.Loading {
		t.Fatalf("Loading = true after failed extension")
	}
	if got := len(snap.Programs["ch0"]); got != 2 {
		t.Fatalf("programs = %d, want 2", got)
	}
}

func TestStore_SnapshotClones(t *testing.T) {
	s := NewStore()
	f := newFetcher(1)
	if _, err := s.LoadChannelBatch(context.Background(), f, batch(s, 0, 25, base, base.Add(time.Hour))); err != nil {
		t.Fatalf("batch: %v", err)
	}
	snap := s.Snapshot()
	snap.Channels[0].Name = "mutated"
	snap.Programs["ch0"][0].Title = "mutated"

	again := s.Snapshot()
	if again.Channels[0].Name == "mutated" || again.Programs["ch0"][0].Title == "mutated" {
		t.Fatalf("Snapshot shares memory with the store")
	}
}

func TestStore_SetFavoriteAndChannelIndex(t *testing.T) {
	s := NewStore()
	f := newFetcher(3)
	if _, err := s.LoadChannelBatch(context.Background(), f, batch(s, 0, 25, base, base.Add(time.Hour))); err != nil {
		t.Fatalf("batch: %v", err)
	}
	if !s.SetFavorite("ch1", true) {
		t.Fatalf("SetFavorite(ch1) = false, want true")
	}
	if s.SetFavorite("missing", true) {
		t.Fatalf("SetFavorite(missing) = true, want false")
	}
	snap := s.Snapshot()
	if !snap.Channels[1].Favorite {
		t.Fatalf("ch1 not marked favorite")
	}
	if idx, ok := snap.ChannelIndex("3"); !ok || idx != 2 {
		t.Fatalf("ChannelIndex(3) = %d,%v, want 2,true", idx, ok)
	}
	if _, ok := snap.ChannelIndex("30"); ok {
		t.Fatalf("ChannelIndex(30) found, want miss")
	}
}

func TestStore_StaleQueryIssuesNoFetch(t *testing.T) {
	s := NewStore()
	f := newFetcher(3)
	q := batch(s, 0, 5, base, base.Add(time.Hour))
	s.Reset(false)

	if _, err := s.LoadChannelBatch(context.Background(), f, q); !errors.Is(err, ErrStaleGeneration) {
		t.Fatalf("err = %v, want ErrStaleGeneration", err)
	}
	if f.channelCall.Load() != 0 {
		t.Fatalf("stale query reached the server")
	}
}
