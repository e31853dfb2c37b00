package guide

import (
	"testing"
	"time"

	"github.com/five82/lineup/internal/mediaserver"
	"github.com/five82/lineup/internal/state"
)

func prog(id, ch string, start, end time.Time) mediaserver.Program {
	return mediaserver.Program{ID: id, ChannelID: ch, Start: start, End: end, Title: id}
}

func snapshotOf(channels []mediaserver.Channel, programs ...mediaserver.Program) state.Snapshot {
	snap := state.Snapshot{Channels: channels, Programs: map[string][]mediaserver.Program{}}
	for _, p := range programs {
		snap.Programs[p.ChannelID] = append(snap.Programs[p.ChannelID], p)
	}
	return snap
}

func TestProjectClipsAndFlagsCurrent(t *testing.T) {
	w := Window{Start: sixPM, Hours: 3, PixelsPerHour: 30}
	snap := snapshotOf(
		[]mediaserver.Channel{{ID: "a", Number: "1"}, {ID: "b", Number: "2"}},
		prog("a1", "a", at(17, 0), at(18, 0)),
		prog("a2", "a", at(18, 0), at(19, 0)),
		prog("a3", "a", at(19, 0), at(22, 0)),
		prog("a4", "a", at(22, 0), at(23, 0)),
	)
	g := Project(snap, w, at(19, 0), 2)

	if len(g.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(g.Rows))
	}
	cells := g.Rows[0].Cells
	if len(cells) != 2 {
		t.Fatalf("cells = %d, want 2", len(cells))
	}
	if cells[0].Program.ID != "a2" || cells[0].Current {
		t.Fatalf("cell 0 = %s current=%v, want a2 not current (end is exclusive)", cells[0].Program.ID, cells[0].Current)
	}
	if cells[1].Program.ID != "a3" || !cells[1].Current || cells[1].Right() != w.Width() {
		t.Fatalf("cell 1 = %+v, want a3 current clipped at %d", cells[1], w.Width())
	}
	for _, row := range g.Rows {
		for _, c := range row.Cells {
			if c.Left < 0 || c.Right() > g.Width() {
				t.Fatalf("cell %s out of bounds: [%d,%d)", c.Program.ID, c.Left, c.Right())
			}
		}
	}
	if g.HasCells(1) {
		t.Fatalf("row without programs should have no cells")
	}
}

func TestSyncKeepsRowsAndAppends(t *testing.T) {
	w := Window{Start: sixPM, Hours: 2, PixelsPerHour: 30}
	channels := []mediaserver.Channel{{ID: "a", Number: "1"}}
	programs := []mediaserver.Program{
		prog("a1", "a", at(18, 0), at(19, 0)),
		prog("a2", "a", at(19, 0), at(21, 0)),
	}
	g := Project(snapshotOf(channels, programs...), w, at(18, 10), 2)
	first := g.Rows[0].Cells[1]

	wider, _, _ := w.Extend(2)
	channels = append(channels, mediaserver.Channel{ID: "b", Number: "2"})
	programs = append(programs,
		prog("a3", "a", at(21, 0), at(22, 0)),
		prog("b1", "b", at(18, 0), at(22, 0)),
	)
	g.Sync(snapshotOf(channels, programs...), wider, at(18, 10))

	if len(g.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(g.Rows))
	}
	cells := g.Rows[0].Cells
	if len(cells) != 3 || cells[0].Program.ID != "a1" || cells[1].Program.ID != "a2" || cells[2].Program.ID != "a3" {
		t.Fatalf("row 0 cells not extended in place: %+v", cells)
	}
	if cells[1].Left != first.Left || cells[1].Width <= first.Width {
		t.Fatalf("a2 should keep its left and grow: before %+v after %+v", first, cells[1])
	}
	if g.Rows[1].Channel.ID != "b" || len(g.Rows[1].Cells) != 1 {
		t.Fatalf("new row = %+v, want channel b with one cell", g.Rows[1])
	}
}

func TestMarkCurrentMovesWithClock(t *testing.T) {
	w := Window{Start: sixPM, Hours: 3, PixelsPerHour: 30}
	snap := snapshotOf(
		[]mediaserver.Channel{{ID: "a"}},
		prog("a1", "a", at(18, 0), at(19, 0)),
		prog("a2", "a", at(19, 0), at(20, 0)),
	)
	g := Project(snap, w, at(18, 59), 2)
	if !g.Rows[0].Cells[0].Current {
		t.Fatalf("a1 should be current at 18:59")
	}
	g.MarkCurrent(at(19, 0))
	if g.Rows[0].Cells[0].Current || !g.Rows[0].Cells[1].Current {
		t.Fatalf("current flag did not move at 19:00")
	}
}
