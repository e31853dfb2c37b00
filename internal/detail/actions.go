package detail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/five82/lineup/internal/mediaserver"
)

// Action names a popup control.
type Action string

const (
	ActionOpen     Action = "open"
	ActionWatch    Action = "watch"
	ActionRecord   Action = "record"
	ActionFavorite Action = "favorite"
)

// ActionError is a failed popup action. The view it was applied to is left
// as it was.
type ActionError struct {
	Action Action
	Err    error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Action, e.Err)
}

func (e *ActionError) Unwrap() error { return e.Err }

// ErrNotAvailable is returned for an action the program does not allow now.
var ErrNotAvailable = errors.New("not available for this program")

// Player starts playback of a channel.
type Player interface {
	Play(ctx context.Context, channel mediaserver.Channel) error
}

// Server is the media server surface the popup needs.
type Server interface {
	Program(ctx context.Context, id string) (mediaserver.Program, error)
	Timers(ctx context.Context) ([]mediaserver.Timer, error)
	CreateTimer(ctx context.Context, program mediaserver.Program) (mediaserver.Timer, error)
	CancelTimer(ctx context.Context, timerID string) error
	Favorite(ctx context.Context, itemID string) error
	Unfavorite(ctx context.Context, itemID string) error
	Item(ctx context.Context, itemID string) (mediaserver.Item, error)
}

// Actions runs the popup round trips. Every method returns a new View and
// never mutates the one it was given.
type Actions struct {
	server Server
	player Player
	logger *slog.Logger
}

// NewActions wires the popup to a server and an optional player.
func NewActions(server Server, player Player, logger *slog.Logger) *Actions {
	if logger == nil {
		logger = slog.Default()
	}
	return &Actions{server: server, player: player, logger: logger.With("component", "detail")}
}

// Open loads the full program and the state the controls depend on. The
// summary is used when the server no longer knows the program id.
func (a *Actions) Open(ctx context.Context, summary mediaserver.Program, channel mediaserver.Channel) (View, error) {
	program, err := a.server.Program(ctx, summary.ID)
	if err != nil {
		if !errors.Is(err, mediaserver.ErrNotFound) {
			return View{}, &ActionError{Action: ActionOpen, Err: err}
		}
		program = summary
	}
	if program.ChannelID == "" {
		program.ChannelID = channel.ID
	}

	view := View{Program: program, Channel: channel}

	if item, err := a.server.Item(ctx, channel.ID); err != nil {
		a.logger.Warn("channel favorite lookup failed", "channel", channel.ID, "error", err)
	} else {
		view.Channel.Favorite = item.Favorite
	}

	if timers, err := a.server.Timers(ctx); err != nil {
		a.logger.Warn("timer lookup failed", "program", program.ID, "error", err)
	} else {
		view.Timers = timers
	}
	view.resolveTimer()
	return view, nil
}

// ToggleRecord cancels the matching timer or schedules a new one.
func (a *Actions) ToggleRecord(ctx context.Context, v View) (View, error) {
	if v.Scheduled {
		return a.cancel(ctx, v)
	}
	return a.record(ctx, v)
}

func (a *Actions) record(ctx context.Context, v View) (View, error) {
	created, err := a.server.CreateTimer(ctx, v.Program)
	if err != nil {
		return v, &ActionError{Action: ActionRecord, Err: err}
	}
	next := v
	next.Timers = append(append([]mediaserver.Timer(nil), v.Timers...), created)
	if strings.TrimSpace(created.ID) == "" {
		timers, err := a.server.Timers(ctx)
		if err != nil {
			// The timer exists server side; cancel will resolve the id later.
			a.logger.Warn("timer requery failed", "program", v.Program.ID, "error", err)
		} else {
			next.Timers = timers
		}
	}
	next.resolveTimer()
	next.Scheduled = true
	return next, nil
}

func (a *Actions) cancel(ctx context.Context, v View) (View, error) {
	id := v.TimerID
	if id == "" {
		timers, err := a.server.Timers(ctx)
		if err != nil {
			return v, &ActionError{Action: ActionRecord, Err: err}
		}
		if t, ok := MatchTimer(timers, v.Program); ok {
			id = t.ID
		}
	}
	if id == "" {
		return v, &ActionError{Action: ActionRecord, Err: fmt.Errorf("no timer id for program %s", v.Program.ID)}
	}
	if err := a.server.CancelTimer(ctx, id); err != nil {
		return v, &ActionError{Action: ActionRecord, Err: err}
	}
	next := v
	next.Timers = nil
	for _, t := range v.Timers {
		if t.ID != id {
			next.Timers = append(next.Timers, t)
		}
	}
	next.Scheduled = false
	next.TimerID = ""
	return next, nil
}

// ToggleFavorite flips the channel favorite.
func (a *Actions) ToggleFavorite(ctx context.Context, v View) (View, error) {
	var err error
	if v.Channel.Favorite {
		err = a.server.Unfavorite(ctx, v.Channel.ID)
	} else {
		err = a.server.Favorite(ctx, v.Channel.ID)
	}
	if err != nil {
		return v, &ActionError{Action: ActionFavorite, Err: err}
	}
	next := v
	next.Channel.Favorite = !v.Channel.Favorite
	return next, nil
}

// Watch hands the channel to the player while the program airs.
func (a *Actions) Watch(ctx context.Context, v View, airing bool) error {
	if !airing {
		return &ActionError{Action: ActionWatch, Err: ErrNotAvailable}
	}
	if a.player == nil {
		return &ActionError{Action: ActionWatch, Err: errors.New("no player configured")}
	}
	if err := a.player.Play(ctx, v.Channel); err != nil {
		return &ActionError{Action: ActionWatch, Err: err}
	}
	return nil
}
