package guide

// Mode is the focus area.
type Mode int

const (
	ModeGrid Mode = iota
	ModeControls
)

func (m Mode) String() string {
	if m == ModeControls {
		return "controls"
	}
	return "grid"
}

// Control is a page control above the grid.
type Control int

const (
	ControlPrevDay Control = iota
	ControlToday
	ControlNextDay
	ControlFavorites
	controlCount
)

// Controls lists the page controls in display order.
func Controls() []Control {
	return []Control{ControlPrevDay, ControlToday, ControlNextDay, ControlFavorites}
}

// Coord addresses a cell by row and index within the row.
type Coord struct {
	Row  int
	Cell int
}

// Focus is where the remote is pointing. In grid mode Valid is false only
// between a reset and the first row with a cell.
type Focus struct {
	Mode    Mode
	Grid    Coord
	Control Control
	Valid   bool
}

// Direction is a remote arrow key.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

// InitialFocus returns the first row holding an airing cell, else the first
// row with any cell.
func InitialFocus(g *Grid) (Coord, bool) {
	if g == nil {
		return Coord{}, false
	}
	for r, row := range g.Rows {
		for c, cell := range row.Cells {
			if cell.Current {
				return Coord{Row: r, Cell: c}, true
			}
		}
	}
	for r, row := range g.Rows {
		if len(row.Cells) > 0 {
			return Coord{Row: r, Cell: 0}, true
		}
	}
	return Coord{}, false
}

// NextCoord moves from a focused cell. The boolean is false when the move is
// exhausted: no row in that direction holds a cell at the same horizontal
// position, or the cell index would leave the row.
func NextCoord(g *Grid, from Coord, dir Direction) (Coord, bool) {
	cur, ok := g.Cell(from)
	if !ok {
		return from, false
	}
	switch dir {
	case Left, Right:
		next := from.Cell + 1
		if dir == Left {
			next = from.Cell - 1
		}
		if next < 0 || next >= len(g.Rows[from.Row].Cells) {
			return from, false
		}
		return Coord{Row: from.Row, Cell: next}, true
	case Up, Down:
		step := 1
		if dir == Up {
			step = -1
		}
		for r := from.Row + step; r >= 0 && r < len(g.Rows); r += step {
			if c, ok := alignedCell(g.Rows[r].Cells, cur); ok {
				return Coord{Row: r, Cell: c}, true
			}
		}
	}
	return from, false
}

// alignedCell picks the cell under the left edge of ref, falling back to the
// first cell sharing any of ref's span.
func alignedCell(cells []Cell, ref Cell) (int, bool) {
	for i, c := range cells {
		if c.Covers(ref.Left) {
			return i, true
		}
	}
	for i, c := range cells {
		if c.Overlaps(ref.Left, ref.Right()) {
			return i, true
		}
	}
	return 0, false
}

// populatedAbove reports whether any row above row has cells.
func populatedAbove(g *Grid, row int) bool {
	for r := row - 1; r >= 0; r-- {
		if g.HasCells(r) {
			return true
		}
	}
	return false
}

// Step applies one arrow key to f.
func Step(g *Grid, f Focus, dir Direction) Focus {
	if f.Mode == ModeControls {
		switch dir {
		case Left:
			f.Control = (f.Control - 1 + controlCount) % controlCount
		case Right:
			f.Control = (f.Control + 1) % controlCount
		case Down:
			if at, ok := InitialFocus(g); ok {
				return Focus{Mode: ModeGrid, Grid: at, Valid: true}
			}
		}
		return f
	}

	if !f.Valid {
		if at, ok := InitialFocus(g); ok {
			return Focus{Mode: ModeGrid, Grid: at, Valid: true}
		}
		if dir == Up {
			return Focus{Mode: ModeControls, Control: ControlPrevDay}
		}
		return f
	}

	next, ok := NextCoord(g, f.Grid, dir)
	if ok {
		f.Grid = next
		return f
	}
	if dir == Up && !populatedAbove(g, f.Grid.Row) {
		return Focus{Mode: ModeControls, Control: ControlPrevDay, Grid: f.Grid}
	}
	return f
}
