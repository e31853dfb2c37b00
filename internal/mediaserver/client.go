package mediaserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Source is the media server surface the guide consumes.
// It is implemented by *Client and faked in tests.
type Source interface {
	Channels(ctx context.Context, query ChannelQuery) ([]Channel, error)
	Programs(ctx context.Context, channelIDs []string, start, end time.Time) ([]Program, error)
	Program(ctx context.Context, id string) (Program, error)
	Timers(ctx context.Context) ([]Timer, error)
	CreateTimer(ctx context.Context, program Program) (Timer, error)
	CancelTimer(ctx context.Context, timerID string) error
	Favorite(ctx context.Context, itemID string) error
	Unfavorite(ctx context.Context, itemID string) error
	Item(ctx context.Context, itemID string) (Item, error)
}

// Ensure Client implements Source at compile time.
var _ Source = (*Client)(nil)

// ErrNotFound is returned when the server answers 404.
var ErrNotFound = errors.New("not found")

// ChannelQuery pages through the channel list.
type ChannelQuery struct {
	StartIndex    int
	Limit         int
	FavoritesOnly bool
}

// Options configure a Client.
type Options struct {
	BaseURL  string
	APIKey   string
	UserID   string
	DeviceID string
	Version  string
}

// Client talks to the media server HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	apiKey    string
	userID    string
	authValue string
	userAgent string
}

const (
	defaultBaseURL = "127.0.0.1:8096"
	defaultVersion = "0.1"
	requestTimeout = 10 * time.Second
)

// NewClient builds a Client for the given server.
func NewClient(opts Options) (*Client, error) {
	base, err := parseBaseURL(opts.BaseURL)
	if err != nil {
		return nil, err
	}
	version := strings.TrimSpace(opts.Version)
	if version == "" {
		version = defaultVersion
	}
	auth := fmt.Sprintf(`MediaBrowser Client="lineup", Device="terminal", DeviceId="%s", Version="%s"`,
		strings.TrimSpace(opts.DeviceID), version)
	if key := strings.TrimSpace(opts.APIKey); key != "" {
		auth += fmt.Sprintf(`, Token="%s"`, key)
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		apiKey:    strings.TrimSpace(opts.APIKey),
		userID:    strings.TrimSpace(opts.UserID),
		authValue: auth,
		userAgent: "lineup/" + version,
	}, nil
}

// Channels returns one page of live TV channels.
func (c *Client) Channels(ctx context.Context, query ChannelQuery) ([]Channel, error) {
	values := url.Values{}
	values.Set("startIndex", strconv.Itoa(query.StartIndex))
	if query.Limit > 0 {
		values.Set("limit", strconv.Itoa(query.Limit))
	}
	if query.FavoritesOnly {
		values.Set("isFavorite", "true")
	}
	c.setUser(values)
	rel := &url.URL{Path: "/LiveTv/Channels", RawQuery: values.Encode()}
	var payload ItemsResponse
	if err := c.doURL(ctx, http.MethodGet, rel, nil, &payload); err != nil {
		return nil, err
	}
	channels := make([]Channel, 0, len(payload.Items))
	for _, item := range payload.Items {
		channels = append(channels, item.Channel())
	}
	return channels, nil
}

// Programs returns programs of the given channels overlapping [start, end).
func (c *Client) Programs(ctx context.Context, channelIDs []string, start, end time.Time) ([]Program, error) {
	if len(channelIDs) == 0 {
		return nil, nil
	}
	values := url.Values{}
	values.Set("channelIds", strings.Join(channelIDs, ","))
	values.Set("minEndDate", FormatTime(start))
	values.Set("maxStartDate", FormatTime(end))
	values.Set("sortBy", "StartDate")
	c.setUser(values)
	rel := &url.URL{Path: "/LiveTv/Programs", RawQuery: values.Encode()}
	var payload ItemsResponse
	if err := c.doURL(ctx, http.MethodGet, rel, nil, &payload); err != nil {
		return nil, err
	}
	programs := make([]Program, 0, len(payload.Items))
	for _, item := range payload.Items {
		programs = append(programs, item.Program())
	}
	return programs, nil
}

// Program fetches the full record of a single program.
func (c *Client) Program(ctx context.Context, id string) (Program, error) {
	if strings.TrimSpace(id) == "" {
		return Program{}, fmt.Errorf("program id required")
	}
	values := url.Values{}
	c.setUser(values)
	rel := &url.URL{Path: "/LiveTv/Programs/" + url.PathEscape(id), RawQuery: values.Encode()}
	var payload BaseItem
	if err := c.doURL(ctx, http.MethodGet, rel, nil, &payload); err != nil {
		return Program{}, err
	}
	return payload.Program(), nil
}

// Timers lists the recording timers known to the server.
func (c *Client) Timers(ctx context.Context) ([]Timer, error) {
	var payload TimersResponse
	if err := c.do(ctx, http.MethodGet, "/LiveTv/Timers", nil, &payload); err != nil {
		return nil, err
	}
	timers := make([]Timer, 0, len(payload.Items))
	for _, info := range payload.Items {
		timers = append(timers, info.Timer())
	}
	return timers, nil
}

// CreateTimer schedules a recording using the server's defaults for the program.
// The returned timer has an empty ID when the server does not echo one back.
func (c *Client) CreateTimer(ctx context.Context, program Program) (Timer, error) {
	if strings.TrimSpace(program.ID) == "" {
		return Timer{}, fmt.Errorf("program id required")
	}
	values := url.Values{}
	values.Set("programId", program.ID)
	rel := &url.URL{Path: "/LiveTv/Timers/Defaults", RawQuery: values.Encode()}
	var defaults map[string]any
	if err := c.doURL(ctx, http.MethodGet, rel, nil, &defaults); err != nil {
		return Timer{}, fmt.Errorf("timer defaults: %w", err)
	}
	if defaults == nil {
		defaults = map[string]any{}
	}
	defaults["ProgramId"] = program.ID
	if _, ok := defaults["ChannelId"]; !ok {
		defaults["ChannelId"] = program.ChannelID
	}

	var created TimerInfo
	if err := c.do(ctx, http.MethodPost, "/LiveTv/Timers", defaults, &created); err != nil {
		return Timer{}, err
	}
	timer := created.Timer()
	if timer.ProgramID == "" {
		timer.ProgramID = program.ID
	}
	if timer.ChannelID == "" {
		timer.ChannelID = program.ChannelID
	}
	if timer.Start.IsZero() {
		timer.Start = program.Start
	}
	return timer, nil
}

// CancelTimer deletes a recording timer.
func (c *Client) CancelTimer(ctx context.Context, timerID string) error {
	if strings.TrimSpace(timerID) == "" {
		return fmt.Errorf("timer id required")
	}
	return c.do(ctx, http.MethodDelete, "/LiveTv/Timers/"+url.PathEscape(timerID), nil, nil)
}

// Favorite marks an item as a favorite of the configured user.
func (c *Client) Favorite(ctx context.Context, itemID string) error {
	path, err := c.userPath("FavoriteItems", itemID)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, path, nil, nil)
}

// Unfavorite clears the favorite mark.
func (c *Client) Unfavorite(ctx context.Context, itemID string) error {
	path, err := c.userPath("FavoriteItems", itemID)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// Item fetches generic item metadata for the configured user.
func (c *Client) Item(ctx context.Context, itemID string) (Item, error) {
	path, err := c.userPath("Items", itemID)
	if err != nil {
		return Item{}, err
	}
	var payload BaseItem
	if err := c.do(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return Item{}, err
	}
	return payload.Item(), nil
}

// StreamURL returns a direct stream URL for a channel, suitable for an external player.
func (c *Client) StreamURL(channelID string) string {
	values := url.Values{}
	values.Set("static", "true")
	if c.apiKey != "" {
		values.Set("api_key", c.apiKey)
	}
	rel := &url.URL{Path: "/Videos/" + url.PathEscape(channelID) + "/stream", RawQuery: values.Encode()}
	return c.baseURL.ResolveReference(rel).String()
}

func (c *Client) setUser(values url.Values) {
	if c.userID != "" {
		values.Set("userId", c.userID)
	}
}

func (c *Client) userPath(kind, itemID string) (string, error) {
	if c.userID == "" {
		return "", fmt.Errorf("user id required")
	}
	if strings.TrimSpace(itemID) == "" {
		return "", fmt.Errorf("item id required")
	}
	return "/Users/" + url.PathEscape(c.userID) + "/" + kind + "/" + url.PathEscape(itemID), nil
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	rel := &url.URL{Path: path}
	return c.doURL(ctx, method, rel, body, dest)
}

func (c *Client) doURL(ctx context.Context, method string, rel *url.URL, body, dest any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	reqURL := c.baseURL.ResolveReference(rel)

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Authorization", c.authValue)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("api %s: %w", rel.Path, ErrNotFound)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("api %s returned status %d", rel.Path, resp.StatusCode)
	}
	if dest == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse server url %q: %w", raw, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
