package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/five82/lineup/internal/guide"
)

// renderGrid renders the visible channel rows, exactly gridHeight lines.
func (m Model) renderGrid() string {
	styles := m.theme.Styles()
	g := m.session.Grid
	height := m.gridHeight()
	gw := m.gridWidth()
	cw := m.channelWidth()
	blank := styles.Background.Render(strings.Repeat(" ", cw+gw))

	lines := make([]string, 0, height)
	if g.Height() == 0 {
		msg := "No channels"
		if m.session.LoadState().Loading {
			msg = "Loading channels…"
		}
		lines = append(lines, styles.MutedText.Render(center(msg, cw+gw)))
	}

	focus, focusOK := m.focusedCoord()
	for r := m.top; r < g.Height() && len(lines) < height; r++ {
		row := g.Rows[r]
		focusCell := -1
		if focusOK && focus.Row == r {
			focusCell = focus.Cell
		}
		lines = append(lines, m.renderChannel(row, cw, focusCell >= 0)+m.renderRow(row, focusCell, gw))
	}
	for len(lines) < height {
		lines = append(lines, blank)
	}
	return strings.Join(lines, "\n")
}

func (m Model) focusedCoord() (guide.Coord, bool) {
	f := m.session.Focus
	if f.Mode != guide.ModeGrid || !f.Valid {
		return guide.Coord{}, false
	}
	return f.Grid, true
}

func (m Model) renderChannel(row guide.Row, width int, focused bool) string {
	styles := m.theme.Styles()
	style := styles.Surface
	if focused {
		style = style.Foreground(lipgloss.Color(m.theme.Accent)).Bold(true)
	}
	label := row.Channel.Number
	if width > CompactChannelColumnWidth {
		label += " " + row.Channel.Name
	}
	if row.Channel.Favorite {
		label = "★" + label
	}
	return style.Render(fit(" "+label, width))
}

// renderRow lays out a row's cells on the full window width, then cuts the
// visible columns.
func (m Model) renderRow(row guide.Row, focusCell, width int) string {
	styles := m.theme.Styles()
	total := m.session.Grid.Width()

	var b strings.Builder
	cursor := 0
	for i, cell := range row.Cells {
		left := max(cell.Left, cursor)
		right := min(cell.Right(), total)
		if right <= left {
			continue
		}
		if left > cursor {
			b.WriteString(styles.Background.Render(strings.Repeat(" ", left-cursor)))
		}
		style := styles.CellStyle(i == focusCell, cell.Current)
		b.WriteString(styles.Separator.Render("▏"))
		if w := right - left - 1; w > 0 {
			b.WriteString(style.Render(fit(cell.Program.Title, w)))
		}
		cursor = right
	}
	if cursor < total {
		b.WriteString(styles.Background.Render(strings.Repeat(" ", total-cursor)))
	}

	line := ansi.Cut(b.String(), m.left, m.left+width)
	if pad := width - ansi.StringWidth(line); pad > 0 {
		line += styles.Background.Render(strings.Repeat(" ", pad))
	}
	return line
}
