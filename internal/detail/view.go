package detail

import (
	"fmt"
	"strings"
	"time"

	"github.com/five82/lineup/internal/mediaserver"
)

// View is everything the detail popup shows for one program.
type View struct {
	Program mediaserver.Program
	Channel mediaserver.Channel
	Timers  []mediaserver.Timer

	// TimerID is the matching scheduled timer, empty when not recording.
	TimerID   string
	Scheduled bool
}

// Title is the program title with a season/episode suffix when known.
func (v View) Title() string {
	return DisplayTitle(v.Program)
}

// TimeRange formats start and end in the local clock.
func (v View) TimeRange() string {
	return TimeRange(v.Program.Start, v.Program.End)
}

// Image returns the best image reference for the program.
func (v View) Image() string {
	return ImageRef(v.Program)
}

// Favorite reports the channel favorite state.
func (v View) Favorite() bool {
	return v.Channel.Favorite
}

// CanWatch reports whether the program is airing.
func (v View) CanWatch(now time.Time) bool {
	return v.Program.Airing(now)
}

// CanRecord reports whether the program has not ended yet.
func (v View) CanRecord(now time.Time) bool {
	return !now.After(v.Program.End)
}

// DisplayTitle appends " S{n}E{m}" (or " E{m}" without a season).
func DisplayTitle(p mediaserver.Program) string {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		title = strings.TrimSpace(p.SeriesName)
	}
	switch {
	case p.Season > 0 && p.Episode > 0:
		return fmt.Sprintf("%s S%dE%d", title, p.Season, p.Episode)
	case p.Episode > 0:
		return fmt.Sprintf("%s E%d", title, p.Episode)
	default:
		return title
	}
}

// TimeRange renders "15:04 – 16:00".
func TimeRange(start, end time.Time) string {
	return start.Local().Format("15:04") + " – " + end.Local().Format("15:04")
}

// ImageRef picks the program image, then the series image, then nothing.
func ImageRef(p mediaserver.Program) string {
	if p.Image != "" {
		return p.Image
	}
	return p.SeriesImage
}

// MatchTimer finds the scheduled timer for p: by program id first, then by
// channel and start time.
func MatchTimer(timers []mediaserver.Timer, p mediaserver.Program) (mediaserver.Timer, bool) {
	for _, t := range timers {
		if t.ProgramID != "" && t.ProgramID == p.ID && t.Scheduled() {
			return t, true
		}
	}
	for _, t := range timers {
		if t.ChannelID == p.ChannelID && t.Start.Equal(p.Start) && t.Scheduled() {
			return t, true
		}
	}
	return mediaserver.Timer{}, false
}

// Metadata lists the secondary facts shown under the title.
func Metadata(p mediaserver.Program) []string {
	var parts []string
	if p.EpisodeTitle != "" {
		parts = append(parts, p.EpisodeTitle)
	}
	if p.Year > 0 {
		parts = append(parts, fmt.Sprint(p.Year))
	}
	if p.OfficialRating != "" {
		parts = append(parts, p.OfficialRating)
	}
	if len(p.Genres) > 0 {
		parts = append(parts, strings.Join(p.Genres, ", "))
	}
	return parts
}

func (v *View) resolveTimer() {
	t, ok := MatchTimer(v.Timers, v.Program)
	v.Scheduled = ok
	v.TimerID = ""
	if ok {
		v.TimerID = t.ID
	}
}
