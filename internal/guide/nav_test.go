package guide

import (
	"testing"

	"github.com/five82/lineup/internal/mediaserver"
)

// gridOf builds a grid from rows of [left,width) pairs.
func gridOf(rows ...[][2]int) *Grid {
	g := &Grid{Window: Window{Start: sixPM, Hours: 4, PixelsPerHour: 30}}
	for r, spans := range rows {
		row := Row{Channel: mediaserver.Channel{ID: string(rune('a' + r))}}
		for _, s := range spans {
			row.Cells = append(row.Cells, Cell{Left: s[0], Width: s[1]})
		}
		g.Rows = append(g.Rows, row)
	}
	return g
}

func TestInitialFocusPrefersAiringCell(t *testing.T) {
	g := gridOf(
		nil,
		[][2]int{{0, 30}, {30, 30}},
		[][2]int{{0, 60}},
	)
	g.Rows[2].Cells[0].Current = true

	at, ok := InitialFocus(g)
	if !ok || at != (Coord{Row: 2, Cell: 0}) {
		t.Fatalf("InitialFocus = %+v, %v, want row 2 cell 0", at, ok)
	}

	g.Rows[2].Cells[0].Current = false
	at, ok = InitialFocus(g)
	if !ok || at != (Coord{Row: 1, Cell: 0}) {
		t.Fatalf("InitialFocus fallback = %+v, %v, want row 1 cell 0", at, ok)
	}

	if _, ok := InitialFocus(gridOf(nil, nil)); ok {
		t.Fatalf("InitialFocus on empty grid should fail")
	}
}

func TestVerticalMovesSkipEmptyRowsAndAlign(t *testing.T) {
	g := gridOf(
		[][2]int{{0, 20}, {20, 40}},
		nil,
		[][2]int{{0, 10}, {10, 50}},
	)
	f := Focus{Mode: ModeGrid, Grid: Coord{Row: 2, Cell: 1}, Valid: true}

	f = Step(g, f, Up)
	if f.Mode != ModeGrid || f.Grid != (Coord{Row: 0, Cell: 0}) {
		t.Fatalf("Up = %+v, want row 0 cell 0 (covers left edge 10)", f)
	}

	f = Step(g, f, Down)
	if f.Grid != (Coord{Row: 2, Cell: 0}) {
		t.Fatalf("Down = %+v, want row 2 cell 0", f)
	}

	f = Step(g, f, Down)
	if f.Grid != (Coord{Row: 2, Cell: 0}) || f.Mode != ModeGrid {
		t.Fatalf("Down at bottom = %+v, want unchanged", f)
	}
}

func TestVerticalMoveFallsBackToOverlap(t *testing.T) {
	g := gridOf(
		[][2]int{{20, 40}},
		[][2]int{{0, 30}},
	)
	f := Step(g, Focus{Mode: ModeGrid, Grid: Coord{Row: 1}, Valid: true}, Up)
	if f.Grid != (Coord{Row: 0, Cell: 0}) {
		t.Fatalf("Up = %+v, want overlapping cell in row 0", f)
	}
}

func TestUpFromTopmostRowEntersControls(t *testing.T) {
	g := gridOf(
		nil,
		[][2]int{{0, 30}},
	)
	f := Step(g, Focus{Mode: ModeGrid, Grid: Coord{Row: 1}, Valid: true}, Up)
	if f.Mode != ModeControls || f.Control != ControlPrevDay {
		t.Fatalf("Up from topmost = %+v, want controls on first control", f)
	}
}

func TestUpWithoutAlignedRowStays(t *testing.T) {
	g := gridOf(
		[][2]int{{0, 10}},
		[][2]int{{40, 20}},
	)
	start := Focus{Mode: ModeGrid, Grid: Coord{Row: 1}, Valid: true}
	if f := Step(g, start, Up); f != start {
		t.Fatalf("Up = %+v, want unchanged", f)
	}
}

func TestHorizontalMovesDoNotWrap(t *testing.T) {
	g := gridOf([][2]int{{0, 10}, {10, 10}, {20, 10}})
	f := Focus{Mode: ModeGrid, Valid: true}

	if got := Step(g, f, Left); got != f {
		t.Fatalf("Left at first cell = %+v, want unchanged", got)
	}
	f = Step(g, f, Right)
	f = Step(g, f, Right)
	if f.Grid.Cell != 2 {
		t.Fatalf("cell = %d, want 2", f.Grid.Cell)
	}
	if got := Step(g, f, Right); got != f {
		t.Fatalf("Right at last cell = %+v, want unchanged", got)
	}
}

func TestControlsCycleAndReturn(t *testing.T) {
	g := gridOf(nil, [][2]int{{0, 10}, {10, 10}})
	g.Rows[1].Cells[1].Current = true
	f := Focus{Mode: ModeControls, Control: ControlPrevDay}

	if got := Step(g, f, Left); got.Control != ControlFavorites {
		t.Fatalf("Left from first control = %v, want wrap to favorites", got.Control)
	}
	f.Control = ControlFavorites
	if got := Step(g, f, Right); got.Control != ControlPrevDay {
		t.Fatalf("Right from last control = %v, want wrap to first", got.Control)
	}
	if got := Step(g, f, Up); got != f {
		t.Fatalf("Up in controls = %+v, want unchanged", got)
	}
	got := Step(g, f, Down)
	if got.Mode != ModeGrid || got.Grid != (Coord{Row: 1, Cell: 1}) || !got.Valid {
		t.Fatalf("Down from controls = %+v, want airing cell", got)
	}
}

func TestNoFocusNeverLandsOnEmptyRow(t *testing.T) {
	g := gridOf(nil, nil, [][2]int{{0, 10}}, nil)
	f := Focus{Mode: ModeGrid}
	for _, dir := range []Direction{Down, Down, Up, Right, Left, Down, Down} {
		f = Step(g, f, dir)
		if f.Mode == ModeGrid && f.Valid && !g.HasCells(f.Grid.Row) {
			t.Fatalf("focus on empty row %d", f.Grid.Row)
		}
	}
}
