package state

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/five82/lineup/internal/mediaserver"
)

var (
	// ErrLoadInFlight is returned when a batch or extension is already running.
	ErrLoadInFlight = errors.New("load already in flight")
	// ErrNoMoreChannels is returned once the server reported the last batch.
	ErrNoMoreChannels = errors.New("no more channels")
	// ErrOutOfOrder is returned for a batch that does not continue the loaded range.
	ErrOutOfOrder = errors.New("batch start does not follow loaded channels")
	// ErrStaleGeneration is returned when a reset happened while the fetch was running.
	ErrStaleGeneration = errors.New("response belongs to a previous session")
)

// Fetcher is the subset of the media server the store loads from.
type Fetcher interface {
	Channels(ctx context.Context, query mediaserver.ChannelQuery) ([]mediaserver.Channel, error)
	Programs(ctx context.Context, channelIDs []string, start, end time.Time) ([]mediaserver.Program, error)
}

// Snapshot is a copy of the store contents handed to the renderer.
type Snapshot struct {
	Channels   []mediaserver.Channel
	Programs   map[string][]mediaserver.Program
	More       bool
	Loading    bool
	Generation uint64
}

// ChannelIndex returns the row of the channel whose display number equals number.
func (s Snapshot) ChannelIndex(number string) (int, bool) {
	for i, ch := range s.Channels {
		if ch.Number == number {
			return i, true
		}
	}
	return -1, false
}

// BatchQuery asks for the next group of channels and their programs
// overlapping [From, To).
type BatchQuery struct {
	Generation uint64
	StartIndex int
	Size       int
	From, To   time.Time
}

// ExtendQuery asks for programs of every loaded channel in [From, To).
type ExtendQuery struct {
	Generation uint64
	From, To   time.Time
}

// Store holds the channels and programs loaded so far for one guide session.
// Loads are serialized: one batch or extension at a time.
type Store struct {
	mu            sync.RWMutex
	channels      []mediaserver.Channel
	programs      map[string][]mediaserver.Program
	more          bool
	loading       bool
	generation    uint64
	favoritesOnly bool
}

// NewStore returns an empty store ready for its first batch.
func NewStore() *Store {
	return &Store{
		programs: make(map[string][]mediaserver.Program),
		more:     true,
	}
}

// Reset discards everything and starts a new generation. Responses of loads
// started before the reset are dropped when they arrive.
func (s *Store) Reset(favoritesOnly bool) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.channels = nil
	s.programs = make(map[string][]mediaserver.Program)
	s.more = true
	s.loading = false
	s.favoritesOnly = favoritesOnly
	return s.generation
}

// Generation identifies the current session.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// Len returns the number of loaded channels.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.channels)
}

// Loading reports whether a batch or extension is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// More reports whether further channel batches may exist.
func (s *Store) More() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.more
}

// LoadChannelBatch fetches up to q.Size channels starting at q.StartIndex and
// their programs, then appends both. It returns the number of channels
// appended.
func (s *Store) LoadChannelBatch(ctx context.Context, src Fetcher, q BatchQuery) (int, error) {
	if q.Size <= 0 {
		return 0, fmt.Errorf("batch size must be positive")
	}
	startIndex, batchSize := q.StartIndex, q.Size

	s.mu.Lock()
	if q.Generation != s.generation {
		s.mu.Unlock()
		return 0, ErrStaleGeneration
	}
	if s.loading {
		s.mu.Unlock()
		return 0, ErrLoadInFlight
	}
	if !s.more {
		s.mu.Unlock()
		return 0, ErrNoMoreChannels
	}
	if startIndex != len(s.channels) {
		s.mu.Unlock()
		return 0, ErrOutOfOrder
	}
	s.loading = true
	gen := s.generation
	favoritesOnly := s.favoritesOnly
	s.mu.Unlock()

	channels, err := src.Channels(ctx, mediaserver.ChannelQuery{
		StartIndex:    startIndex,
		Limit:         batchSize,
		FavoritesOnly: favoritesOnly,
	})
	if err != nil {
		s.fail(gen, true)
		return 0, fmt.Errorf("fetch channels: %w", err)
	}

	ids := make([]string, 0, len(channels))
	for _, ch := range channels {
		ids = append(ids, ch.ID)
	}

	var programs []mediaserver.Program
	if len(ids) > 0 {
		programs, err = src.Programs(ctx, ids, q.From, q.To)
		if err != nil {
			s.fail(gen, true)
			return 0, fmt.Errorf("fetch programs: %w", err)
		}
	}
	grouped := groupByChannel(programs)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return 0, ErrStaleGeneration
	}
	s.loading = false
	if len(channels) < batchSize {
		s.more = false
	}
	for _, ch := range channels {
		s.channels = append(s.channels, ch)
		s.programs[ch.ID] = appendUnique(s.programs[ch.ID], grouped[ch.ID])
	}
	return len(channels), nil
}

// ExtendPrograms fetches programs in [q.From, q.To) for every loaded channel
// and appends the ones not already stored. It returns the number of programs
// appended. A failure leaves stored programs untouched.
func (s *Store) ExtendPrograms(ctx context.Context, src Fetcher, q ExtendQuery) (int, error) {
	if !q.To.After(q.From) {
		return 0, nil
	}

	s.mu.Lock()
	if q.Generation != s.generation {
		s.mu.Unlock()
		return 0, ErrStaleGeneration
	}
	if s.loading {
		s.mu.Unlock()
		return 0, ErrLoadInFlight
	}
	ids := make([]string, 0, len(s.channels))
	for _, ch := range s.channels {
		ids = append(ids, ch.ID)
	}
	if len(ids) == 0 {
		s.mu.Unlock()
		return 0, nil
	}
	s.loading = true
	gen := s.generation
	s.mu.Unlock()

	programs, err := src.Programs(ctx, ids, q.From, q.To)
	if err != nil {
		s.fail(gen, false)
		return 0, fmt.Errorf("fetch programs: %w", err)
	}
	grouped := groupByChannel(programs)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return 0, ErrStaleGeneration
	}
	s.loading = false
	added := 0
	for _, id := range ids {
		before := len(s.programs[id])
		s.programs[id] = appendUnique(s.programs[id], grouped[id])
		added += len(s.programs[id]) - before
	}
	return added, nil
}

// SetFavorite records a confirmed favorite change for a loaded channel.
func (s *Store) SetFavorite(channelID string, favorite bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.channels {
		if s.channels[i].ID == channelID {
			s.channels[i].Favorite = favorite
			return true
		}
	}
	return false
}

// Snapshot returns a copy of the current contents.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Channels:   cloneChannels(s.channels),
		Programs:   make(map[string][]mediaserver.Program, len(s.programs)),
		More:       s.more,
		Loading:    s.loading,
		Generation: s.generation,
	}
	for id, list := range s.programs {
		snap.Programs[id] = append([]mediaserver.Program(nil), list...)
	}
	return snap
}

// fail ends a load of generation gen. A failed batch disables further batches.
func (s *Store) fail(gen uint64, disableMore bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return
	}
	s.loading = false
	if disableMore {
		s.more = false
	}
}

func groupByChannel(programs []mediaserver.Program) map[string][]mediaserver.Program {
	grouped := make(map[string][]mediaserver.Program)
	for _, p := range programs {
		grouped[p.ChannelID] = append(grouped[p.ChannelID], p)
	}
	for id := range grouped {
		list := grouped[id]
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Start.Before(list[j].Start)
		})
	}
	return grouped
}

// appendUnique appends incoming programs whose id is not already present.
// Existing entries keep their positions.
func appendUnique(existing, incoming []mediaserver.Program) []mediaserver.Program {
	if len(incoming) == 0 {
		return existing
	}
	seen := make(map[string]struct{}, len(existing))
	for _, p := range existing {
		seen[p.ID] = struct{}{}
	}
	for _, p := range incoming {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		existing = append(existing, p)
	}
	return existing
}

func cloneChannels(channels []mediaserver.Channel) []mediaserver.Channel {
	if len(channels) == 0 {
		return nil
	}
	dup := make([]mediaserver.Channel, len(channels))
	copy(dup, channels)
	return dup
}
