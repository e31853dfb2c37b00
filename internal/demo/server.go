// Package demo serves a synthetic live TV guide over the media server API
// so lineup can run without a real server.
package demo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/five82/lineup/internal/mediaserver"
)

// Options configures the demo server.
type Options struct {
	Channels int    // defaults to 40
	APIKey   string // when set, requests must carry it
	// EchoTimerID makes timer creation return the new timer. Real servers
	// answer 204, which is the default.
	EchoTimerID bool
	Logger      *slog.Logger
}

// Server is an in-memory media server.
type Server struct {
	opts     Options
	channels []channel
	byID     map[string]channel
	logger   *slog.Logger

	mu        sync.Mutex
	timers    map[string]mediaserver.TimerInfo
	favorites map[string]bool
	nextTimer int
}

const defaultChannels = 40

// New returns a demo server with a deterministic lineup.
func New(opts Options) *Server {
	if opts.Channels <= 0 {
		opts.Channels = defaultChannels
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		opts:      opts,
		channels:  buildChannels(opts.Channels),
		byID:      make(map[string]channel),
		logger:    logger.With("component", "demo"),
		timers:    make(map[string]mediaserver.TimerInfo),
		favorites: make(map[string]bool),
	}
	for _, ch := range s.channels {
		s.byID[ch.id] = ch
	}
	// A couple of favorites so the filter has something to show.
	s.favorites[s.channels[0].id] = true
	if len(s.channels) > 2 {
		s.favorites[s.channels[2].id] = true
	}
	return s
}

// Handler returns the API router.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.logRequests, s.authorize)

	r.HandleFunc("/LiveTv/Channels", s.listChannels).Methods(http.MethodGet)
	r.HandleFunc("/LiveTv/Programs", s.listPrograms).Methods(http.MethodGet)
	r.HandleFunc("/LiveTv/Programs/{id}", s.getProgram).Methods(http.MethodGet)
	r.HandleFunc("/LiveTv/Timers", s.listTimers).Methods(http.MethodGet)
	r.HandleFunc("/LiveTv/Timers", s.createTimer).Methods(http.MethodPost)
	r.HandleFunc("/LiveTv/Timers/Defaults", s.timerDefaults).Methods(http.MethodGet)
	r.HandleFunc("/LiveTv/Timers/{id}", s.cancelTimer).Methods(http.MethodDelete)
	r.HandleFunc("/Users/{user}/FavoriteItems/{id}", s.setFavorite(true)).Methods(http.MethodPost)
	r.HandleFunc("/Users/{user}/FavoriteItems/{id}", s.setFavorite(false)).Methods(http.MethodDelete)
	r.HandleFunc("/Users/{user}/Items/{id}", s.getItem).Methods(http.MethodGet)
	return r
}

// Listen serves the API on addr until ctx is done. It returns the base URL
// once the listener is bound.
func (s *Server) Listen(ctx context.Context, addr string) (string, <-chan error, error) {
	if addr == "" {
		addr = "127.0.0.1:0"
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	srv := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	done := make(chan error, 1)
	go func() {
		err := srv.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		done <- err
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	return "http://" + ln.Addr().String(), done, nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.opts.APIKey != "" &&
			r.URL.Query().Get("api_key") != s.opts.APIKey &&
			!strings.Contains(r.Header.Get("Authorization"), `Token="`+s.opts.APIKey+`"`) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) listChannels(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, _ := strconv.Atoi(q.Get("startIndex"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	favoritesOnly := q.Get("isFavorite") == "true"

	s.mu.Lock()
	var matched []mediaserver.BaseItem
	for _, ch := range s.channels {
		if favoritesOnly && !s.favorites[ch.id] {
			continue
		}
		matched = append(matched, s.channelItem(ch))
	}
	s.mu.Unlock()

	total := len(matched)
	if start < 0 || start > total {
		start = total
	}
	end := total
	if limit > 0 && start+limit < end {
		end = start + limit
	}
	writeJSON(w, http.StatusOK, mediaserver.ItemsResponse{Items: matched[start:end], TotalRecordCount: total})
}

func (s *Server) listPrograms(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from := mediaserver.ParseTime(q.Get("minEndDate"))
	to := mediaserver.ParseTime(q.Get("maxStartDate"))
	if from.IsZero() || to.IsZero() || !to.After(from) {
		http.Error(w, "minEndDate and maxStartDate are required", http.StatusBadRequest)
		return
	}
	items := []mediaserver.BaseItem{}
	for _, id := range strings.Split(q.Get("channelIds"), ",") {
		ch, ok := s.byID[strings.TrimSpace(id)]
		if !ok {
			continue
		}
		items = append(items, programsBetween(ch, from, to)...)
	}
	writeJSON(w, http.StatusOK, mediaserver.ItemsResponse{Items: items, TotalRecordCount: len(items)})
}

func (s *Server) getProgram(w http.ResponseWriter, r *http.Request) {
	item, ok := s.lookupProgram(mux.Vars(r)["id"])
	if !ok {
		http.Error(w, "program not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) lookupProgram(id string) (mediaserver.BaseItem, bool) {
	channelID, start, ok := parseProgramID(id)
	if !ok {
		return mediaserver.BaseItem{}, false
	}
	ch, ok := s.byID[channelID]
	if !ok {
		return mediaserver.BaseItem{}, false
	}
	for _, item := range daySchedule(ch, midnightOf(start)) {
		if item.ID == id {
			return item, true
		}
	}
	return mediaserver.BaseItem{}, false
}

func (s *Server) listTimers(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	items := make([]mediaserver.TimerInfo, 0, len(s.timers))
	for _, t := range s.timers {
		items = append(items, t)
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, mediaserver.TimersResponse{Items: items, TotalRecordCount: len(items)})
}

func (s *Server) timerDefaults(w http.ResponseWriter, r *http.Request) {
	item, ok := s.lookupProgram(r.URL.Query().Get("programId"))
	if !ok {
		http.Error(w, "program not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ProgramId":         item.ID,
		"ChannelId":         item.ChannelID,
		"StartDate":         item.StartDate,
		"EndDate":           item.EndDate,
		"Name":              item.Name,
		"PrePaddingSeconds": 60,
	})
}

func (s *Server) createTimer(w http.ResponseWriter, r *http.Request) {
	var body mediaserver.TimerInfo
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	item, ok := s.lookupProgram(body.ProgramID)
	if !ok {
		http.Error(w, "program not found", http.StatusNotFound)
		return
	}

	s.mu.Lock()
	s.nextTimer++
	timer := mediaserver.TimerInfo{
		ID:        "timer-" + strconv.Itoa(s.nextTimer),
		ProgramID: item.ID,
		ChannelID: item.ChannelID,
		StartDate: item.StartDate,
		EndDate:   item.EndDate,
		Name:      item.Name,
		Status:    "New",
	}
	s.timers[timer.ID] = timer
	s.mu.Unlock()
	s.logger.Info("timer created", "timer", timer.ID, "program", item.ID)

	if !s.opts.EchoTimerID {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, timer)
}

func (s *Server) cancelTimer(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	_, ok := s.timers[id]
	delete(s.timers, id)
	s.mu.Unlock()
	if !ok {
		http.Error(w, "timer not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) setFavorite(favorite bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		if _, ok := s.byID[id]; !ok {
			http.Error(w, "item not found", http.StatusNotFound)
			return
		}
		s.mu.Lock()
		if favorite {
			s.favorites[id] = true
		} else {
			delete(s.favorites, id)
		}
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, mediaserver.UserData{IsFavorite: favorite})
	}
}

func (s *Server) getItem(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if ch, ok := s.byID[id]; ok {
		s.mu.Lock()
		item := s.channelItem(ch)
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, item)
		return
	}
	if item, ok := s.lookupProgram(id); ok {
		writeJSON(w, http.StatusOK, item)
		return
	}
	http.Error(w, "item not found", http.StatusNotFound)
}

// channelItem must be called with s.mu held.
func (s *Server) channelItem(ch channel) mediaserver.BaseItem {
	item := mediaserver.BaseItem{
		ID:            ch.id,
		Name:          ch.name,
		Type:          "TvChannel",
		ChannelNumber: ch.number,
		UserData:      &mediaserver.UserData{IsFavorite: s.favorites[ch.id]},
	}
	if ch.logo {
		item.ImageTags = map[string]string{"Primary": "logo"}
	}
	return item
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
