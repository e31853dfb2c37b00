package ui

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/lineup/internal/detail"
	"github.com/five82/lineup/internal/guide"
	"github.com/five82/lineup/internal/logtail"
	"github.com/five82/lineup/internal/prefs"
	"github.com/five82/lineup/internal/state"
)

// Options configures the UI.
type Options struct {
	Context context.Context
	Session *guide.Session
	Source  state.Fetcher
	Actions *detail.Actions
	Lazy    guide.Coordinator

	Prefs        prefs.Prefs
	PrefsPath    string
	PrefsChanges <-chan prefs.Prefs

	// LogFile is read back for the error screen.
	LogFile string

	// Clock defaults to time.Now.
	Clock  func() time.Time
	Logger *slog.Logger
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Collaborators
	ctx     context.Context
	session *guide.Session
	source  state.Fetcher
	actions *detail.Actions
	lazy    guide.Coordinator
	clock   func() time.Time
	logger  *slog.Logger
	logFile string

	// Preferences
	prefs        prefs.Prefs
	prefsPath    string
	prefsChanges <-chan prefs.Prefs

	// UI state
	theme   Theme
	keys    keyMap
	help    help.Model
	spinner spinner.Model
	width   int
	height  int
	ready   bool
	now     time.Time

	// Scroll offsets of the grid, in rows and columns.
	top  int
	left int

	// numberDelay is the digit debounce.
	numberDelay time.Duration

	// Program popup
	popup   *popup
	opening bool

	// Messages
	toast      string
	toastError bool
	toastSeq   int
	notice     string
	fatal      error
	fatalLog   []logtail.Entry

	showHelp bool
}

// New creates the guide model. A session that was never reset is opened
// on today.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	now := clock()
	if opts.Session.Window.Start.IsZero() {
		opts.Session.Reset(dayOf(now), now, opts.Prefs.FavoritesOnly)
	}

	return Model{
		ctx:          ctx,
		session:      opts.Session,
		source:       opts.Source,
		actions:      opts.Actions,
		lazy:         opts.Lazy,
		clock:        clock,
		logger:       logger.With("component", "ui"),
		logFile:      opts.LogFile,
		prefs:        opts.Prefs,
		prefsPath:    prefsPath,
		prefsChanges: opts.PrefsChanges,
		theme:        GetTheme(opts.Prefs.Theme),
		keys:         DefaultKeyMap(),
		help:         help.New(),
		spinner:      sp,
		now:          now,
		numberDelay:  guide.NumberDebounce,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		nowTickCmd(NowTick),
		m.spinner.Tick,
		waitPrefsCmd(m.prefsChanges),
	}
	if cmd := m.maybeLoad(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m.now = m.clock()

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		if m.popup != nil {
			m.popup.resize(m.popupWidth())
		}
		m.scrollToFocus()
		return m, m.maybeLoad()

	case batchLoadedMsg:
		return m.handleBatch(msg)

	case extensionLoadedMsg:
		return m.handleExtension(msg)

	case nowTickMsg:
		m.session.Tick(m.now)
		return m, nowTickCmd(NowTick)

	case numberExpiredMsg:
		return m.handleNumber(msg)

	case detailOpenedMsg:
		return m.handleDetailOpened(msg)

	case actionDoneMsg:
		return m.handleActionDone(msg)

	case prefsChangedMsg:
		return m.handlePrefsChanged(msg)

	case logProblemsMsg:
		if m.fatal != nil {
			m.fatalLog = msg.entries
		}
		return m, nil

	case toastExpiredMsg:
		if msg.seq == m.toastSeq {
			m.toast = ""
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.fatal != nil {
		return m.renderFatal()
	}
	screen := m.renderMain()
	if m.popup != nil {
		screen = overlayCenter(screen, m.renderPopup(), m.width, m.height)
	}
	return screen
}

// handleKey processes remote-style keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if m.fatal != nil {
		if key.Matches(msg, m.keys.Retry) {
			return m, m.resetGuide(m.session.Date, m.session.FavoritesOnly, nil)
		}
		if key.Matches(msg, m.keys.Back) {
			return m, tea.Quit
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.Digit):
		seq, ok := m.session.Numbers.Push([]rune(msg.String())[0])
		if !ok {
			return m, nil
		}
		return m, numberTimeoutCmd(seq, m.numberDelay)
	}

	if m.popup != nil {
		return m.handlePopupKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Back):
		// Back with nothing open leaves the guide.
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.ChannelUp):
		return m.move(guide.Up)
	case key.Matches(msg, m.keys.Down), key.Matches(msg, m.keys.ChannelDown):
		return m.move(guide.Down)
	case key.Matches(msg, m.keys.Left):
		return m.move(guide.Left)
	case key.Matches(msg, m.keys.Right):
		return m.move(guide.Right)
	case key.Matches(msg, m.keys.OK):
		return m.activate()
	}
	return m, nil
}

func (m Model) move(dir guide.Direction) (tea.Model, tea.Cmd) {
	m.session.Move(dir)
	m.scrollToFocus()
	return m, m.maybeLoad()
}

// activate handles OK outside the popup.
func (m Model) activate() (tea.Model, tea.Cmd) {
	f := m.session.Focus
	if f.Mode == guide.ModeControls {
		return m.activateControl(f.Control)
	}
	cell, row, ok := m.session.FocusedCell()
	if !ok || m.opening || m.actions == nil {
		return m, nil
	}
	m.opening = true
	return m, openDetailCmd(m.ctx, m.actions, m.session.Generation, f.Grid, cell.Program, row.Channel)
}

func (m Model) activateControl(c guide.Control) (tea.Model, tea.Cmd) {
	today := dayOf(m.now)
	date := m.session.Date
	switch c {
	case guide.ControlPrevDay:
		if !date.After(today) {
			return m, nil
		}
		return m, m.resetGuide(date.AddDate(0, 0, -1), m.session.FavoritesOnly, &c)
	case guide.ControlToday:
		return m, m.resetGuide(today, m.session.FavoritesOnly, &c)
	case guide.ControlNextDay:
		if !date.Before(today.AddDate(0, 0, MaxDaysAhead)) {
			return m, nil
		}
		return m, m.resetGuide(date.AddDate(0, 0, 1), m.session.FavoritesOnly, &c)
	case guide.ControlFavorites:
		m.prefs.FavoritesOnly = !m.session.FavoritesOnly
		m.savePrefs()
		return m, m.resetGuide(date, m.prefs.FavoritesOnly, &c)
	}
	return m, nil
}

// resetGuide starts the session over. When keep is set focus stays on
// that page control instead of entering the grid.
func (m *Model) resetGuide(date time.Time, favoritesOnly bool, keep *guide.Control) tea.Cmd {
	m.session.Reset(date, m.now, favoritesOnly)
	if keep != nil {
		m.session.Focus = guide.Focus{Mode: guide.ModeControls, Control: *keep}
	}
	m.top, m.left = 0, 0
	m.popup = nil
	m.opening = false
	m.notice = ""
	m.fatal = nil
	m.fatalLog = nil
	return m.maybeLoad()
}

func (m Model) handleBatch(msg batchLoadedMsg) (tea.Model, tea.Cmd) {
	if !m.session.ApplyBatch(msg.result, m.now) {
		return m, nil
	}
	if err := msg.result.Err; err != nil {
		var le *guide.LoadError
		if errors.As(err, &le) {
			m.logger.Error("channel batch failed", "fatal", le.Fatal, "error", err)
			if le.Fatal {
				m.fatal = err
				return m, logProblemsCmd(m.logFile)
			}
			m.notice = "Could not load more channels"
		}
	}
	m.scrollToFocus()
	return m, m.maybeLoad()
}

func (m Model) handleExtension(msg extensionLoadedMsg) (tea.Model, tea.Cmd) {
	if !m.session.ApplyExtension(msg.result, m.now) {
		return m, nil
	}
	if err := msg.result.Err; err != nil {
		var le *guide.LoadError
		if errors.As(err, &le) {
			m.logger.Warn("window extension failed", "error", err)
			m.notice = "Could not load later programs"
		}
	}
	return m, m.maybeLoad()
}

func (m Model) handleNumber(msg numberExpiredMsg) (tea.Model, tea.Cmd) {
	digits, ok := m.session.Numbers.Expire(msg.seq)
	if !ok {
		return m, nil
	}
	if !m.session.JumpToNumber(digits, m.now) {
		m.logger.Debug("channel number not found", "number", digits)
		return m, nil
	}
	m.popup = nil
	m.scrollToFocus()
	return m, m.maybeLoad()
}

func (m Model) handlePrefsChanged(msg prefsChangedMsg) (tea.Model, tea.Cmd) {
	p := prefs.Prefs(msg)
	cmds := []tea.Cmd{waitPrefsCmd(m.prefsChanges)}
	m.theme = GetTheme(p.Theme)
	if p.DeviceID == "" {
		p.DeviceID = m.prefs.DeviceID
	}
	favoritesChanged := p.FavoritesOnly != m.session.FavoritesOnly
	m.prefs = p
	if favoritesChanged {
		cmds = append(cmds, m.resetGuide(m.session.Date, p.FavoritesOnly, nil))
	}
	return m, tea.Batch(cmds...)
}

// maybeLoad asks the coordinator whether the viewport needs more data.
func (m *Model) maybeLoad() tea.Cmd {
	if m.fatal != nil || m.source == nil {
		return nil
	}
	g := m.session.Grid
	switch m.lazy.Check(m.viewport(), g.Height(), g.Width(), m.session.LoadState()) {
	case guide.TriggerBatch:
		if req, ok := m.session.NextBatch(); ok {
			return loadBatchCmd(m.ctx, m.source, req)
		}
	case guide.TriggerExtend:
		if req, ok := m.session.NextExtension(); ok {
			return extendCmd(m.ctx, m.source, req)
		}
	}
	return nil
}

func (m Model) viewport() guide.Viewport {
	return guide.Viewport{Top: m.top, Left: m.left, Height: m.gridHeight(), Width: m.gridWidth()}
}

func (m Model) gridHeight() int {
	if !m.ready {
		return 0
	}
	return max(1, m.height-chromeRows)
}

func (m Model) gridWidth() int {
	if !m.ready {
		return 0
	}
	return max(1, m.width-m.channelWidth())
}

func (m Model) channelWidth() int {
	if m.width < LayoutCompactWidth {
		return CompactChannelColumnWidth
	}
	return ChannelColumnWidth
}

// scrollToFocus keeps the focused cell inside the viewport.
func (m *Model) scrollToFocus() {
	cell, _, ok := m.session.FocusedCell()
	if !ok || !m.ready {
		return
	}
	row := m.session.Focus.Grid.Row
	visible := m.gridHeight()
	if row < m.top {
		m.top = row
	} else if row >= m.top+visible {
		m.top = row - visible + 1
	}

	gw := m.gridWidth()
	if cell.Left < m.left {
		m.left = cell.Left
	} else if cell.Right() > m.left+gw {
		m.left = min(cell.Left, cell.Right()-gw)
	}
	m.left = clamp(m.left, 0, m.session.Grid.Width()-gw)
}

func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		m.logger.Warn("save prefs failed", "error", err)
	}
}

// setToast shows a transient message and returns its expiry timer.
func (m *Model) setToast(text string, isError bool) tea.Cmd {
	m.toastSeq++
	m.toast = text
	m.toastError = isError
	return toastExpiryCmd(m.toastSeq, ToastDuration)
}

// renderMain renders the guide page.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderControls())
	b.WriteString("\n")
	b.WriteString(m.renderTimeHeader())
	b.WriteString("\n")
	b.WriteString(m.renderGrid())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func dayOf(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, t.Location())
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
