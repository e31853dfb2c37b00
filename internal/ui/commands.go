package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/lineup/internal/detail"
	"github.com/five82/lineup/internal/guide"
	"github.com/five82/lineup/internal/logtail"
	"github.com/five82/lineup/internal/mediaserver"
	"github.com/five82/lineup/internal/prefs"
	"github.com/five82/lineup/internal/state"
)

// Messages

type batchLoadedMsg struct {
	result guide.BatchResult
}

type extensionLoadedMsg struct {
	result guide.ExtendResult
}

type nowTickMsg time.Time

type numberExpiredMsg struct {
	seq int
}

type detailOpenedMsg struct {
	generation uint64
	origin     guide.Coord
	view       detail.View
	err        error
}

type actionDoneMsg struct {
	action    detail.Action
	programID string
	view      detail.View
	err       error
}

type prefsChangedMsg prefs.Prefs

type toastExpiredMsg struct {
	seq int
}

type logProblemsMsg struct {
	entries []logtail.Entry
}

// Commands

func nowTickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return nowTickMsg(t)
	})
}

func numberTimeoutCmd(seq int, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return numberExpiredMsg{seq: seq}
	})
}

func toastExpiryCmd(seq int, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return toastExpiredMsg{seq: seq}
	})
}

func loadBatchCmd(ctx context.Context, src state.Fetcher, req guide.BatchRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, LoadTimeout)
		defer cancel()
		return batchLoadedMsg{result: req.Run(ctx, src)}
	}
}

func extendCmd(ctx context.Context, src state.Fetcher, req guide.ExtendRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, LoadTimeout)
		defer cancel()
		return extensionLoadedMsg{result: req.Run(ctx, src)}
	}
}

func openDetailCmd(ctx context.Context, actions *detail.Actions, gen uint64, origin guide.Coord, program mediaserver.Program, channel mediaserver.Channel) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, ActionTimeout)
		defer cancel()
		view, err := actions.Open(ctx, program, channel)
		return detailOpenedMsg{generation: gen, origin: origin, view: view, err: err}
	}
}

func actionCmd(ctx context.Context, action detail.Action, view detail.View, run func(context.Context, detail.View) (detail.View, error)) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, ActionTimeout)
		defer cancel()
		next, err := run(ctx, view)
		return actionDoneMsg{action: action, programID: view.Program.ID, view: next, err: err}
	}
}

func watchCmd(ctx context.Context, actions *detail.Actions, view detail.View, airing bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, ActionTimeout)
		defer cancel()
		err := actions.Watch(ctx, view, airing)
		return actionDoneMsg{action: detail.ActionWatch, programID: view.Program.ID, view: view, err: err}
	}
}

// waitPrefsCmd blocks until the prefs file changes. A nil channel means
// prefs are not watched.
func waitPrefsCmd(ch <-chan prefs.Prefs) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		p, ok := <-ch
		if !ok {
			return nil
		}
		return prefsChangedMsg(p)
	}
}

// logProblemsCmd reads the last warnings back from the log file.
func logProblemsCmd(path string) tea.Cmd {
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		entries, err := logtail.Problems(path, fatalLogLines)
		if err != nil {
			return nil
		}
		return logProblemsMsg{entries: entries}
	}
}
