package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/five82/lineup/internal/guide"
)

// renderHeader renders the status bar: logo, day, filter, load state,
// pending channel digits and the clock.
func (m Model) renderHeader() string {
	// Header uses Surface background
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	sep := bg.Spaces(2)

	parts := []string{
		bg.Render("lineup", styles.Logo),
		bg.Render(m.dayLabel(), styles.Text),
	}
	if m.session.FavoritesOnly {
		parts = append(parts, bg.Render("★ Favorites", styles.WarningText))
	}
	if m.session.LoadState().Loading {
		parts = append(parts, bg.Render(m.spinner.View(), styles.AccentText)+bg.Space()+
			bg.Render("Loading", styles.MutedText))
	}
	if digits := m.session.Numbers.Pending(); digits != "" {
		parts = append(parts, bg.Render("CH", styles.MutedText)+bg.Space()+
			bg.Render(digits+"_", styles.AccentText.Bold(true)))
	}

	left := bg.Join(parts, sep)
	clock := bg.Render(m.now.Format("Mon 15:04"), styles.MutedText)
	gap := m.width - 2 - lipgloss.Width(left) - lipgloss.Width(clock)
	if gap > 0 {
		left += bg.Spaces(gap) + clock
	}

	return styles.Header.Width(m.width).MaxWidth(m.width).Render(left)
}

func (m Model) dayLabel() string {
	today := dayOf(m.now)
	date := m.session.Date
	switch {
	case date.Equal(today):
		return "Today " + date.Format("Jan 2")
	case date.Equal(today.AddDate(0, 0, 1)):
		return "Tomorrow " + date.Format("Jan 2")
	default:
		return date.Format("Mon Jan 2")
	}
}

var controlLabels = map[guide.Control]string{
	guide.ControlPrevDay:   "◀ Day",
	guide.ControlToday:     "Today",
	guide.ControlNextDay:   "Day ▶",
	guide.ControlFavorites: "★ Favorites",
}

// renderControls renders the page control bar above the grid.
func (m Model) renderControls() string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.theme.Surface)
	today := dayOf(m.now)
	f := m.session.Focus

	buttons := make([]string, 0, len(guide.Controls()))
	for _, c := range guide.Controls() {
		style := styles.Control
		disabled := (c == guide.ControlPrevDay && !m.session.Date.After(today)) ||
			(c == guide.ControlNextDay && !m.session.Date.Before(today.AddDate(0, 0, MaxDaysAhead)))
		switch {
		case f.Mode == guide.ModeControls && f.Control == c:
			style = styles.ControlFocused
		case disabled:
			style = styles.ControlDisabled
		case c == guide.ControlFavorites && m.session.FavoritesOnly:
			style = style.Foreground(lipgloss.Color(m.theme.Warning))
		}
		buttons = append(buttons, style.Render(controlLabels[c]))
	}
	return bg.FillLine(bg.Join(buttons, " "), m.width)
}

// renderTimeHeader renders half-hour ticks over the visible columns and
// marks the current time.
func (m Model) renderTimeHeader() string {
	styles := m.theme.Styles()
	w := m.session.Window
	gw := m.gridWidth()
	cw := m.channelWidth()

	line := []rune(strings.Repeat(" ", gw))
	if w.PixelsPerHour > 0 {
		step := 30 * time.Minute
		for t := w.Start; t.Before(w.End()); t = t.Add(step) {
			x := w.Pixel(t) - m.left
			label := "│" + t.Format("15:04")
			if x < 0 || x >= gw {
				continue
			}
			for i, r := range label {
				if x+i < gw {
					line[x+i] = r
				}
			}
		}
	}

	out := styles.MutedText.Render(string(line))
	if w.Contains(m.now) {
		if x := w.Pixel(m.now) - m.left; x >= 0 && x < gw {
			before := ansi.Cut(out, 0, x)
			after := ansi.Cut(out, x+1, gw)
			out = before + styles.Now.Render("▼") + after
		}
	}

	corner := styles.FaintText.Render(fit(m.session.Window.Start.Format("Mon"), cw))
	return corner + out
}

// renderFooter shows a toast, a load notice or the key hints.
func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	switch {
	case m.toast != "":
		style := styles.SuccessText
		if m.toastError {
			style = styles.DangerText
		}
		return ansi.Truncate(style.Render(m.toast), m.width, "…")
	case m.notice != "":
		return ansi.Truncate(styles.WarningText.Render(m.notice), m.width, "…")
	}
	m.help.Styles.ShortKey = styles.AccentText
	m.help.Styles.ShortDesc = styles.MutedText
	return m.help.View(m.keys)
}

// renderFatal is the blocking screen shown when the first batch fails.
func (m Model) renderFatal() string {
	styles := m.theme.Styles()
	width := max(10, min(70, m.width-8))
	lines := []string{
		styles.DangerText.Render("The guide could not be loaded"),
		"",
		styles.MutedText.Render(truncate(m.fatal.Error(), width)),
	}
	if len(m.fatalLog) > 0 {
		lines = append(lines, "", styles.Text.Render("Recent problems"))
		for _, e := range m.fatalLog {
			lines = append(lines, styles.FaintText.Render(truncate(e.Level.String()+" "+e.Summary(), width)))
		}
	}
	lines = append(lines, "", styles.Text.Render(fmt.Sprintf("%s retry   %s quit",
		styles.AccentText.Render("r"), styles.AccentText.Render("q"))))
	body := strings.Join(lines, "\n")
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Danger)).
		Padding(1, 3).
		Render(body)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
