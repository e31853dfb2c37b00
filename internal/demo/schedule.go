package demo

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
	"time"

	"github.com/five82/lineup/internal/mediaserver"
)

type show struct {
	title    string
	series   bool
	genres   []string
	rating   string
	year     int
	overview string
}

var shows = []show{
	{title: "Morning Report", genres: []string{"News"}, rating: "TV-G", overview: "Headlines, weather and traffic."},
	{title: "Harbor Lights", series: true, genres: []string{"Drama"}, rating: "TV-14", year: 2019, overview: "A coastal town keeps its secrets."},
	{title: "The Night Shift Kitchen", series: true, genres: []string{"Reality", "Food"}, rating: "TV-PG", year: 2022, overview: "Chefs cook against the clock."},
	{title: "Orbit", genres: []string{"Documentary", "Science"}, rating: "TV-G", year: 2021, overview: "Life aboard a research station."},
	{title: "Cold Case Files", series: true, genres: []string{"Crime"}, rating: "TV-14", year: 2016, overview: "Detectives reopen forgotten cases."},
	{title: "Matchday Live", genres: []string{"Sports"}, rating: "TV-G", overview: "Live coverage and analysis."},
	{title: "Paper Moon", genres: []string{"Movie", "Comedy"}, rating: "PG", year: 1973, overview: "A con man and a girl cross the Midwest."},
	{title: "Garden Hour", series: true, genres: []string{"Lifestyle"}, rating: "TV-G", year: 2020, overview: "Seasonal planting made simple."},
}

var durations = []time.Duration{30 * time.Minute, 60 * time.Minute, 90 * time.Minute}

type channel struct {
	id     string
	number string
	name   string
	empty  bool
	logo   bool
}

// buildChannels numbers channels 1..n with a sub-channel "5.1" after 5.
// Every ninth channel has no schedule.
func buildChannels(n int) []channel {
	out := make([]channel, 0, n)
	next := 1
	for len(out) < n {
		number := strconv.Itoa(next)
		if len(out) == 5 {
			number = "5.1"
		} else {
			next++
		}
		id := "ch-" + strings.ReplaceAll(number, ".", "-")
		out = append(out, channel{
			id:     id,
			number: number,
			name:   fmt.Sprintf("Demo %s", number),
			empty:  (len(out)+1)%9 == 0,
			logo:   len(out)%2 == 0,
		})
	}
	return out
}

// daySchedule returns the programs of ch airing on the UTC day starting at
// midnight. Each day restarts at midnight so adjacent queries agree.
func daySchedule(ch channel, midnight time.Time) []mediaserver.BaseItem {
	if ch.empty {
		return nil
	}
	end := midnight.Add(24 * time.Hour)
	var out []mediaserver.BaseItem
	for slot, start := 0, midnight; start.Before(end); slot++ {
		h := seed(ch.id, midnight, slot)
		stop := start.Add(durations[h%uint32(len(durations))])
		if stop.After(end) {
			stop = end
		}
		out = append(out, programItem(ch, shows[(h/7)%uint32(len(shows))], start, stop, slot))
		start = stop
	}
	return out
}

func programItem(ch channel, s show, start, end time.Time, slot int) mediaserver.BaseItem {
	id := programID(ch.id, start)
	item := mediaserver.BaseItem{
		ID:             id,
		Name:           s.title,
		Type:           "Program",
		ChannelID:      ch.id,
		ChannelNumber:  ch.number,
		StartDate:      mediaserver.FormatTime(start),
		EndDate:        mediaserver.FormatTime(end),
		Genres:         s.genres,
		OfficialRating: s.rating,
		ProductionYear: s.year,
		Overview:       s.overview,
	}
	if s.series {
		item.SeriesName = s.title
		item.SeriesID = "series-" + strings.ToLower(strings.ReplaceAll(s.title, " ", "-"))
		item.SeriesPrimaryImageTag = "s1"
		item.ParentIndexNumber = 1 + start.YearDay()%5
		item.IndexNumber = 1 + slot
		item.EpisodeTitle = fmt.Sprintf("Part %d", 1+slot)
	}
	if slot%3 == 0 {
		item.ImageTags = map[string]string{"Primary": "p" + strconv.Itoa(slot)}
	}
	return item
}

func programID(channelID string, start time.Time) string {
	return channelID + "_" + strconv.FormatInt(start.Unix(), 10)
}

func parseProgramID(id string) (channelID string, start time.Time, ok bool) {
	i := strings.LastIndex(id, "_")
	if i <= 0 {
		return "", time.Time{}, false
	}
	unix, err := strconv.ParseInt(id[i+1:], 10, 64)
	if err != nil {
		return "", time.Time{}, false
	}
	return id[:i], time.Unix(unix, 0).UTC(), true
}

// programsBetween returns programs of ch overlapping [from, to).
func programsBetween(ch channel, from, to time.Time) []mediaserver.BaseItem {
	var out []mediaserver.BaseItem
	for day := midnightOf(from); day.Before(to); day = day.Add(24 * time.Hour) {
		for _, item := range daySchedule(ch, day) {
			start := mediaserver.ParseTime(item.StartDate)
			end := mediaserver.ParseTime(item.EndDate)
			if end.After(from) && start.Before(to) {
				out = append(out, item)
			}
		}
	}
	return out
}

func midnightOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func seed(channelID string, day time.Time, slot int) uint32 {
	h := fnv.New32a()
	_, _ = fmt.Fprintf(h, "%s|%s|%d", channelID, day.Format("2006-01-02"), slot)
	return h.Sum32()
}
