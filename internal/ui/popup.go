package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/lineup/internal/detail"
	"github.com/five82/lineup/internal/guide"
	"github.com/five82/lineup/internal/playback"
)

// popupControl is a button of the program popup.
type popupControl int

const (
	popupWatch popupControl = iota
	popupRecord
	popupFavorite
	popupControlCount
)

func (c popupControl) action() detail.Action {
	switch c {
	case popupWatch:
		return detail.ActionWatch
	case popupRecord:
		return detail.ActionRecord
	default:
		return detail.ActionFavorite
	}
}

const popupOverviewLines = 6

// popup is the program detail overlay. origin is the grid cell focus
// returns to when it closes.
type popup struct {
	view     detail.View
	origin   guide.Coord
	focus    popupControl
	busy     map[detail.Action]bool
	overview viewport.Model
}

func newPopup(view detail.View, origin guide.Coord, width int) *popup {
	p := &popup{
		view:     view,
		origin:   origin,
		busy:     make(map[detail.Action]bool),
		overview: viewport.New(width, popupOverviewLines),
	}
	p.overview.SetContent(lipgloss.NewStyle().Width(width).Render(strings.TrimSpace(view.Program.Overview)))
	return p
}

func (p *popup) resize(width int) {
	p.overview.Width = width
	p.overview.SetContent(lipgloss.NewStyle().Width(width).Render(strings.TrimSpace(p.view.Program.Overview)))
}

// enabled reports whether a control may be pressed at now.
func (p *popup) enabled(c popupControl, now time.Time) bool {
	if p.busy[c.action()] {
		return false
	}
	switch c {
	case popupWatch:
		return p.view.CanWatch(now)
	case popupRecord:
		return p.view.CanRecord(now)
	default:
		return true
	}
}

func (p *popup) label(c popupControl) string {
	switch c {
	case popupWatch:
		return "▶ Watch"
	case popupRecord:
		if p.view.Scheduled {
			return "■ Cancel recording"
		}
		return "● Record"
	default:
		if p.view.Favorite() {
			return "★ Unfavorite"
		}
		return "☆ Favorite"
	}
}

func (m Model) popupWidth() int {
	return max(20, min(PopupWidth, m.width-6))
}

func (m Model) handleDetailOpened(msg detailOpenedMsg) (tea.Model, tea.Cmd) {
	m.opening = false
	if msg.generation != m.session.Generation {
		return m, nil
	}
	if msg.err != nil {
		m.logger.Warn("open program failed", "error", msg.err)
		return m, m.setToast(failureText(msg.err), true)
	}
	m.popup = newPopup(msg.view, msg.origin, m.popupWidth())
	if !m.popup.enabled(popupWatch, m.now) {
		m.popup.focus = popupRecord
	}
	return m, nil
}

func (m Model) handlePopupKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.popup
	switch {
	case key.Matches(msg, m.keys.Back):
		m.closePopup()
		return m, nil
	case key.Matches(msg, m.keys.Left):
		p.focus = (p.focus + popupControlCount - 1) % popupControlCount
		return m, nil
	case key.Matches(msg, m.keys.Right):
		p.focus = (p.focus + 1) % popupControlCount
		return m, nil
	case key.Matches(msg, m.keys.ScrollUp), key.Matches(msg, m.keys.ScrollDown):
		var cmd tea.Cmd
		p.overview, cmd = p.overview.Update(msg)
		return m, cmd
	case key.Matches(msg, m.keys.OK):
		return m.pressPopup(p.focus)
	}
	return m, nil
}

// closePopup hides the popup and puts focus back on the originating cell.
func (m *Model) closePopup() {
	if m.popup == nil {
		return
	}
	origin := m.popup.origin
	m.popup = nil
	if _, ok := m.session.Grid.Cell(origin); ok {
		m.session.Focus = guide.Focus{Mode: guide.ModeGrid, Grid: origin, Valid: true}
	}
	m.scrollToFocus()
}

func (m Model) pressPopup(c popupControl) (tea.Model, tea.Cmd) {
	p := m.popup
	if !p.enabled(c, m.now) || m.actions == nil {
		return m, nil
	}
	action := c.action()
	p.busy[action] = true
	switch c {
	case popupWatch:
		return m, watchCmd(m.ctx, m.actions, p.view, p.view.CanWatch(m.now))
	case popupRecord:
		return m, actionCmd(m.ctx, action, p.view, m.actions.ToggleRecord)
	default:
		return m, actionCmd(m.ctx, action, p.view, m.actions.ToggleFavorite)
	}
}

func (m Model) handleActionDone(msg actionDoneMsg) (tea.Model, tea.Cmd) {
	p := m.popup
	if msg.err == nil && msg.action == detail.ActionFavorite {
		// The server already flipped the flag, whether or not the popup is still up.
		ch := msg.view.Channel
		if m.session.Store.SetFavorite(ch.ID, ch.Favorite) {
			m.session.Refresh(m.now)
		}
	}
	if p == nil || p.view.Program.ID != msg.programID {
		if msg.err != nil {
			m.logger.Warn("action failed after popup closed", "action", msg.action, "error", msg.err)
		}
		return m, nil
	}
	p.busy[msg.action] = false
	if msg.err != nil {
		m.logger.Warn("program action failed", "action", msg.action, "error", msg.err)
		return m, m.setToast(failureText(msg.err), true)
	}

	switch msg.action {
	case detail.ActionWatch:
		ch := p.view.Channel
		return m, m.setToast(fmt.Sprintf("Playing %s %s", ch.Number, ch.Name), false)
	case detail.ActionRecord:
		p.view = msg.view
		return m, m.setToast(ternary(p.view.Scheduled, "Recording scheduled", "Recording cancelled"), false)
	case detail.ActionFavorite:
		p.view = msg.view
		ch := p.view.Channel
		return m, m.setToast(ternary(ch.Favorite, "Added to favorites", "Removed from favorites"), false)
	}
	return m, nil
}

func failureText(err error) string {
	var ae *detail.ActionError
	if !errors.As(err, &ae) {
		return "Something went wrong: " + err.Error()
	}
	switch {
	case errors.Is(err, playback.ErrNoPlayer):
		return "Set player_command to watch live TV"
	case errors.Is(err, detail.ErrNotAvailable):
		return "Not available for this program"
	}
	switch ae.Action {
	case detail.ActionOpen:
		return "Could not load program details"
	case detail.ActionWatch:
		return "Could not start playback"
	case detail.ActionRecord:
		return "Could not update recording"
	case detail.ActionFavorite:
		return "Could not update favorite"
	}
	return ae.Error()
}

// renderPopup renders the program detail box.
func (m Model) renderPopup() string {
	p := m.popup
	styles := m.theme.Styles()
	width := m.popupWidth()
	v := p.view

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render(truncate(v.Title(), width)))
	b.WriteString("\n")
	when := v.TimeRange() + "  " + v.Channel.Number + " " + v.Channel.Name
	if v.Program.Airing(m.now) {
		when += "  " + styles.Now.Render("LIVE")
	}
	b.WriteString(styles.MutedText.Render(when))
	b.WriteString("\n")
	if meta := detail.Metadata(v.Program); len(meta) > 0 {
		b.WriteString(styles.FaintText.Render(truncate(strings.Join(meta, " · "), width)))
		b.WriteString("\n")
	}
	if img := v.Image(); img != "" {
		b.WriteString(styles.FaintText.Render(truncate("Image "+img, width)))
		b.WriteString("\n")
	}
	if strings.TrimSpace(v.Program.Overview) != "" {
		b.WriteString("\n")
		b.WriteString(p.overview.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	buttons := make([]string, 0, popupControlCount)
	for c := popupControl(0); c < popupControlCount; c++ {
		style := styles.Control
		switch {
		case !p.enabled(c, m.now):
			style = styles.ControlDisabled
		case c == p.focus:
			style = styles.ControlFocused
		}
		label := p.label(c)
		if p.busy[c.action()] {
			label = m.spinner.View() + " " + label
		}
		buttons = append(buttons, style.Render(label))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, buttons...))
	b.WriteString("\n\n")
	m.help.Styles.ShortKey = styles.AccentText
	b.WriteString(m.help.ShortHelpView(popupKeys{keys: m.keys}.ShortHelp()))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.BorderFocus)).
		Background(lipgloss.Color(m.theme.Background)).
		Padding(1, 2).
		Width(width + 4).
		Render(b.String())
}
