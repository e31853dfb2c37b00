package mediaserver

import (
	"strings"
	"time"
)

// Channel is a live TV channel as the guide sees it.
type Channel struct {
	ID       string
	Number   string // display number, may be non-numeric ("5.1")
	Name     string
	Logo     string // image path relative to the server, empty when absent
	Favorite bool
}

// Program is a single scheduled broadcast on a channel.
type Program struct {
	ID             string
	ChannelID      string
	Start          time.Time
	End            time.Time
	Title          string
	EpisodeTitle   string
	SeriesName     string
	Image          string
	SeriesImage    string
	Genres         []string
	OfficialRating string
	Year           int
	Season         int
	Episode        int
	Overview       string
}

// Airing reports whether now falls inside [Start, End).
func (p Program) Airing(now time.Time) bool {
	return !now.Before(p.Start) && now.Before(p.End)
}

// Timer is a server-side scheduled recording.
type Timer struct {
	ID        string
	ProgramID string
	ChannelID string
	Start     time.Time
	Status    string
}

// Scheduled reports whether the timer will (or is about to) record.
func (t Timer) Scheduled() bool {
	switch strings.ToLower(strings.TrimSpace(t.Status)) {
	case "", "new", "inprogress", "scheduled":
		return true
	default:
		return false
	}
}

// Item is the generic item metadata used for favorite state.
type Item struct {
	ID       string
	Name     string
	Favorite bool
}

// Wire types. Field names follow the server's PascalCase JSON.

// BaseItem mirrors the server item payload for channels and programs.
type BaseItem struct {
	ID                    string            `json:"Id"`
	Name                  string            `json:"Name"`
	Type                  string            `json:"Type,omitempty"`
	ChannelID             string            `json:"ChannelId,omitempty"`
	ChannelNumber         string            `json:"ChannelNumber,omitempty"`
	StartDate             string            `json:"StartDate,omitempty"`
	EndDate               string            `json:"EndDate,omitempty"`
	EpisodeTitle          string            `json:"EpisodeTitle,omitempty"`
	SeriesName            string            `json:"SeriesName,omitempty"`
	SeriesID              string            `json:"SeriesId,omitempty"`
	SeriesPrimaryImageTag string            `json:"SeriesPrimaryImageTag,omitempty"`
	ImageTags             map[string]string `json:"ImageTags,omitempty"`
	Genres                []string          `json:"Genres,omitempty"`
	OfficialRating        string            `json:"OfficialRating,omitempty"`
	ProductionYear        int               `json:"ProductionYear,omitempty"`
	IndexNumber           int               `json:"IndexNumber,omitempty"`
	ParentIndexNumber     int               `json:"ParentIndexNumber,omitempty"`
	Overview              string            `json:"Overview,omitempty"`
	UserData              *UserData         `json:"UserData,omitempty"`
}

// UserData carries per-user item state.
type UserData struct {
	IsFavorite bool `json:"IsFavorite"`
}

// ItemsResponse mirrors the paged item list envelope.
type ItemsResponse struct {
	Items            []BaseItem `json:"Items"`
	TotalRecordCount int        `json:"TotalRecordCount"`
}

// TimerInfo mirrors a recording timer payload.
type TimerInfo struct {
	ID        string `json:"Id,omitempty"`
	ProgramID string `json:"ProgramId,omitempty"`
	ChannelID string `json:"ChannelId"`
	StartDate string `json:"StartDate"`
	EndDate   string `json:"EndDate,omitempty"`
	Name      string `json:"Name,omitempty"`
	Status    string `json:"Status,omitempty"`
}

// TimersResponse mirrors /LiveTv/Timers.
type TimersResponse struct {
	Items            []TimerInfo `json:"Items"`
	TotalRecordCount int         `json:"TotalRecordCount"`
}

// Channel converts a channel item.
func (b BaseItem) Channel() Channel {
	ch := Channel{
		ID:     b.ID,
		Number: strings.TrimSpace(b.ChannelNumber),
		Name:   b.Name,
	}
	if tag := b.ImageTags["Primary"]; tag != "" {
		ch.Logo = imagePath(b.ID, tag)
	}
	if b.UserData != nil {
		ch.Favorite = b.UserData.IsFavorite
	}
	return ch
}

// Program converts a program item.
func (b BaseItem) Program() Program {
	p := Program{
		ID:             b.ID,
		ChannelID:      b.ChannelID,
		Start:          ParseTime(b.StartDate),
		End:            ParseTime(b.EndDate),
		Title:          b.Name,
		EpisodeTitle:   b.EpisodeTitle,
		SeriesName:     b.SeriesName,
		Genres:         append([]string(nil), b.Genres...),
		OfficialRating: b.OfficialRating,
		Year:           b.ProductionYear,
		Season:         b.ParentIndexNumber,
		Episode:        b.IndexNumber,
		Overview:       b.Overview,
	}
	if tag := b.ImageTags["Primary"]; tag != "" {
		p.Image = imagePath(b.ID, tag)
	}
	if b.SeriesID != "" && b.SeriesPrimaryImageTag != "" {
		p.SeriesImage = imagePath(b.SeriesID, b.SeriesPrimaryImageTag)
	}
	return p
}

// Item converts a generic item.
func (b BaseItem) Item() Item {
	it := Item{ID: b.ID, Name: b.Name}
	if b.UserData != nil {
		it.Favorite = b.UserData.IsFavorite
	}
	return it
}

// Timer converts a timer payload.
func (t TimerInfo) Timer() Timer {
	return Timer{
		ID:        t.ID,
		ProgramID: t.ProgramID,
		ChannelID: t.ChannelID,
		Start:     ParseTime(t.StartDate),
		Status:    t.Status,
	}
}

// FormatTime renders a timestamp the way the server expects it.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// ParseTime accepts the server's timestamp variants; zero time when unparseable.
func ParseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.0000000"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

func imagePath(itemID, tag string) string {
	return "/Items/" + itemID + "/Images/Primary?tag=" + tag
}
