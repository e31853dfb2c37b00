package guide

import (
	"time"

	"github.com/five82/lineup/internal/mediaserver"
	"github.com/five82/lineup/internal/state"
)

// Cell is one rendered program.
type Cell struct {
	Program mediaserver.Program
	Left    int
	Width   int
	Current bool
}

// Right is the exclusive right edge of the cell.
func (c Cell) Right() int {
	return c.Left + c.Width
}

// Covers reports whether pixel x falls inside the cell.
func (c Cell) Covers(x int) bool {
	return x >= c.Left && x < c.Right()
}

// Overlaps reports whether the cell shares any pixel with [left, right).
func (c Cell) Overlaps(left, right int) bool {
	return c.Left < right && left < c.Right()
}

// Row is one channel and its visible programs, in start order.
type Row struct {
	Channel mediaserver.Channel
	Cells   []Cell
}

// Grid is the projection of the store onto the current window.
type Grid struct {
	Rows     []Row
	Window   Window
	MinWidth int
}

// Project builds a grid from scratch.
func Project(snap state.Snapshot, w Window, now time.Time, minWidth int) *Grid {
	g := &Grid{Window: w, MinWidth: minWidth}
	g.Sync(snap, w, now)
	return g
}

// Sync brings the grid up to date with snap. Existing rows are kept and
// their cells recomputed; rows for newly loaded channels are appended.
// Because the window only grows to the right, cells already rendered keep
// their indices.
func (g *Grid) Sync(snap state.Snapshot, w Window, now time.Time) {
	g.Window = w
	for i, ch := range snap.Channels {
		cells := buildCells(snap.Programs[ch.ID], w, now, g.MinWidth)
		if i < len(g.Rows) {
			g.Rows[i].Channel = ch
			g.Rows[i].Cells = cells
			continue
		}
		g.Rows = append(g.Rows, Row{Channel: ch, Cells: cells})
	}
}

// MarkCurrent recomputes the airing flag of every cell.
func (g *Grid) MarkCurrent(now time.Time) {
	for r := range g.Rows {
		for c := range g.Rows[r].Cells {
			cell := &g.Rows[r].Cells[c]
			cell.Current = cell.Program.Airing(now)
		}
	}
}

// Cell resolves a coordinate.
func (g *Grid) Cell(at Coord) (Cell, bool) {
	if g == nil || at.Row < 0 || at.Row >= len(g.Rows) {
		return Cell{}, false
	}
	cells := g.Rows[at.Row].Cells
	if at.Cell < 0 || at.Cell >= len(cells) {
		return Cell{}, false
	}
	return cells[at.Cell], true
}

// HasCells reports whether row has anything focusable.
func (g *Grid) HasCells(row int) bool {
	return g != nil && row >= 0 && row < len(g.Rows) && len(g.Rows[row].Cells) > 0
}

// Width is the total rendered width in pixels.
func (g *Grid) Width() int {
	return g.Window.Width()
}

// Height is the number of rows.
func (g *Grid) Height() int {
	if g == nil {
		return 0
	}
	return len(g.Rows)
}

func buildCells(programs []mediaserver.Program, w Window, now time.Time, minWidth int) []Cell {
	if len(programs) == 0 {
		return nil
	}
	cells := make([]Cell, 0, len(programs))
	for _, p := range programs {
		left, width, ok := w.Clip(p.Start, p.End, minWidth)
		if !ok {
			continue
		}
		cells = append(cells, Cell{
			Program: p,
			Left:    left,
			Width:   width,
			Current: p.Airing(now),
		})
	}
	return cells
}
