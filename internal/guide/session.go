package guide

import (
	"context"
	"errors"
	"time"

	"github.com/five82/lineup/internal/state"
)

// Settings size the guide.
type Settings struct {
	Hours         int
	PixelsPerHour float64
	MinCellWidth  int
	BatchSize     int
	ExtendHours   int
}

// Session is one day of guide: the store contents projected on a window,
// plus focus and the number buffer. It is owned by the UI loop; loads run
// elsewhere through BatchRequest and ExtendRequest and report back.
type Session struct {
	Store    *state.Store
	Settings Settings

	Date          time.Time
	FavoritesOnly bool
	Generation    uint64
	Window        Window
	Grid          *Grid
	Focus         Focus
	Numbers       NumberBuffer

	pending        bool
	extendDisabled bool
}

// NewSession returns a session with nothing loaded.
func NewSession(store *state.Store, settings Settings) *Session {
	return &Session{
		Store:    store,
		Settings: settings,
		Grid:     &Grid{MinWidth: settings.MinCellWidth},
	}
}

// Reset drops everything and opens the window on date. Loads started
// before the reset are discarded when they report back.
func (s *Session) Reset(date, now time.Time, favoritesOnly bool) {
	s.Generation = s.Store.Reset(favoritesOnly)
	s.Date = date
	s.FavoritesOnly = favoritesOnly
	s.Window = NewWindow(date, now, s.Settings.Hours, s.Settings.PixelsPerHour)
	s.Grid = &Grid{Window: s.Window, MinWidth: s.Settings.MinCellWidth}
	s.Focus = Focus{Mode: ModeGrid}
	s.Numbers.Cancel()
	s.pending = false
	s.extendDisabled = false
}

// Refresh re-projects the store and settles focus if it is not yet valid.
func (s *Session) Refresh(now time.Time) {
	s.Grid.Sync(s.Store.Snapshot(), s.Window, now)
	if s.Focus.Mode == ModeGrid && !s.Focus.Valid {
		if at, ok := InitialFocus(s.Grid); ok {
			s.Focus = Focus{Mode: ModeGrid, Grid: at, Valid: true}
		}
	}
}

// Tick updates airing flags for a new wall clock.
func (s *Session) Tick(now time.Time) {
	s.Grid.MarkCurrent(now)
}

// Move applies an arrow key.
func (s *Session) Move(dir Direction) {
	s.Focus = Step(s.Grid, s.Focus, dir)
}

// FocusedCell returns the focused program cell and its row.
func (s *Session) FocusedCell() (Cell, Row, bool) {
	if s.Focus.Mode != ModeGrid || !s.Focus.Valid {
		return Cell{}, Row{}, false
	}
	cell, ok := s.Grid.Cell(s.Focus.Grid)
	if !ok {
		return Cell{}, Row{}, false
	}
	return cell, s.Grid.Rows[s.Focus.Grid.Row], true
}

// JumpToNumber focuses the airing program of the channel whose display
// number is exactly number. A miss leaves focus untouched.
func (s *Session) JumpToNumber(number string, now time.Time) bool {
	for r, row := range s.Grid.Rows {
		if row.Channel.Number != number {
			continue
		}
		if len(row.Cells) == 0 {
			return false
		}
		s.Focus = Focus{Mode: ModeGrid, Grid: Coord{Row: r, Cell: airingIndex(row.Cells, now)}, Valid: true}
		return true
	}
	return false
}

func airingIndex(cells []Cell, now time.Time) int {
	for i, c := range cells {
		if c.Program.Airing(now) {
			return i
		}
	}
	for i, c := range cells {
		if c.Program.End.After(now) {
			return i
		}
	}
	return 0
}

// Pending reports whether a load issued by this session has not reported back.
func (s *Session) Pending() bool {
	return s.pending
}

// LoadState summarizes what may be loaded next.
func (s *Session) LoadState() LoadState {
	return LoadState{
		Loading:   s.pending || s.Store.Loading(),
		More:      s.Store.More(),
		CanExtend: !s.extendDisabled && s.Window.CanExtend() && s.Store.Len() > 0,
	}
}

// BatchRequest is a channel batch captured from the session for a command.
type BatchRequest struct {
	store      *state.Store
	Generation uint64
	StartIndex int
	Size       int
	From, To   time.Time
}

// BatchResult reports a finished batch.
type BatchResult struct {
	Generation uint64
	Appended   int
	Err        error
}

// NextBatch prepares the next channel batch. It returns false while a load
// is pending or when the channel list is exhausted.
func (s *Session) NextBatch() (BatchRequest, bool) {
	ls := s.LoadState()
	if ls.Loading || !ls.More {
		return BatchRequest{}, false
	}
	s.pending = true
	return BatchRequest{
		store:      s.Store,
		Generation: s.Generation,
		StartIndex: s.Store.Len(),
		Size:       s.Settings.BatchSize,
		From:       s.Window.Start,
		To:         s.Window.End(),
	}, true
}

// Run performs the batch. It is safe to call off the UI loop.
func (r BatchRequest) Run(ctx context.Context, src state.Fetcher) BatchResult {
	n, err := r.store.LoadChannelBatch(ctx, src, state.BatchQuery{
		Generation: r.Generation,
		StartIndex: r.StartIndex,
		Size:       r.Size,
		From:       r.From,
		To:         r.To,
	})
	if err != nil && !isBenign(err) {
		err = &LoadError{Fatal: r.StartIndex == 0, Err: err}
	}
	return BatchResult{Generation: r.Generation, Appended: n, Err: err}
}

// ExtendRequest is a window extension captured for a command.
type ExtendRequest struct {
	store      *state.Store
	Generation uint64
	Window     Window
	OldEnd     time.Time
	NewEnd     time.Time
}

// ExtendResult reports a finished extension.
type ExtendResult struct {
	Generation uint64
	Window     Window
	Added      int
	Err        error
}

// NextExtension prepares a window extension by the configured step.
func (s *Session) NextExtension() (ExtendRequest, bool) {
	ls := s.LoadState()
	if ls.Loading || !ls.CanExtend {
		return ExtendRequest{}, false
	}
	next, oldEnd, newEnd := s.Window.Extend(s.Settings.ExtendHours)
	if !newEnd.After(oldEnd) {
		return ExtendRequest{}, false
	}
	s.pending = true
	return ExtendRequest{
		store:      s.Store,
		Generation: s.Generation,
		Window:     next,
		OldEnd:     oldEnd,
		NewEnd:     newEnd,
	}, true
}

// Run fetches the newly exposed range.
func (r ExtendRequest) Run(ctx context.Context, src state.Fetcher) ExtendResult {
	n, err := r.store.ExtendPrograms(ctx, src, state.ExtendQuery{
		Generation: r.Generation,
		From:       r.OldEnd,
		To:         r.NewEnd,
	})
	if err != nil && !isBenign(err) {
		err = &LoadError{Err: err}
	}
	return ExtendResult{Generation: r.Generation, Window: r.Window, Added: n, Err: err}
}

// ApplyBatch folds a batch result into the session. Stale results are
// ignored and reported as false.
func (s *Session) ApplyBatch(res BatchResult, now time.Time) bool {
	if res.Generation != s.Generation {
		return false
	}
	s.pending = false
	s.Refresh(now)
	return true
}

// ApplyExtension widens the window once its programs are stored. A failed
// extension leaves the window as it was and stops further extensions.
func (s *Session) ApplyExtension(res ExtendResult, now time.Time) bool {
	if res.Generation != s.Generation {
		return false
	}
	s.pending = false
	if res.Err != nil {
		var le *LoadError
		if errors.As(res.Err, &le) {
			s.extendDisabled = true
		}
		return true
	}
	if res.Window.Hours > s.Window.Hours {
		s.Window = res.Window
	}
	s.Refresh(now)
	return true
}

func isBenign(err error) bool {
	return errors.Is(err, state.ErrLoadInFlight) ||
		errors.Is(err, state.ErrNoMoreChannels) ||
		errors.Is(err, state.ErrStaleGeneration) ||
		errors.Is(err, state.ErrOutOfOrder)
}
