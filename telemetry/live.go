package telemetry

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const (
	DefaultLiveURL      = "https://127.0.0.1:2999"
	DefaultPollInterval = 500 * time.Millisecond
)

// Live Client Data event names mapped to the names used in event batches.
var liveEventNames = map[string]string{
	"GameStart":       "match_start",
	"GameEnd":         "match_end",
	"ChampionKill":    "kill",
	"Multikill":       "kill",
	"FirstBlood":      "kill",
	"Ace":             "kill",
	"MinionsSpawning": "minions",
}

// LivePollerConfig configures a LivePoller.
type LivePollerConfig struct {
	BaseURL  string
	Interval time.Duration
	HTTP     *http.Client
}

// LivePoller polls the game's local Live Client Data API and reshapes its
// responses into in-session info updates and event batches.
type LivePoller struct {
	baseURL  string
	interval time.Duration
	client   *http.Client

	connected   bool
	lastEventID int64
}

// NewLivePoller creates a poller. Zero config fields take defaults.
func NewLivePoller(cfg LivePollerConfig) *LivePoller {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultLiveURL
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultPollInterval
	}
	if cfg.HTTP == nil {
		cfg.HTTP = &http.Client{
			Timeout: 2 * time.Second,
			Transport: &http.Transport{
				// The game serves a self-signed certificate on loopback.
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		}
	}
	return &LivePoller{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		interval:    cfg.Interval,
		client:      cfg.HTTP,
		lastEventID: -1,
	}
}

// Run polls until ctx is cancelled. An unreachable game is not an error;
// the poller keeps trying until a session starts.
func (p *LivePoller) Run(ctx context.Context, h Handler) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		p.poll(ctx, h)
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (p *LivePoller) poll(ctx context.Context, h Handler) {
	player, err := p.get(ctx, "/liveclientdata/activeplayer")
	if err != nil {
		if p.connected {
			slog.Info("live client disconnected", "error", err)
		}
		p.connected = false
		p.lastEventID = -1
		return
	}
	if !p.connected {
		slog.Info("live client connected", "url", p.baseURL)
		p.connected = true
	}

	info, err := wrapActivePlayer(player)
	if err != nil {
		slog.Warn("wrap active player", "error", err)
		return
	}
	h.HandleInfo(info)

	data, err := p.get(ctx, "/liveclientdata/eventdata")
	if err != nil {
		slog.Debug("poll events", "error", err)
		return
	}
	if events := p.newEvents(data); len(events) > 0 {
		h.HandleEvents(events)
	}
}

func (p *LivePoller) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: status %d", path, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// newEvents returns events after the last one seen, in order.
func (p *LivePoller) newEvents(data []byte) []Event {
	var out []Event
	gjson.GetBytes(data, "Events").ForEach(func(_, ev gjson.Result) bool {
		id := ev.Get("EventID").Int()
		if id <= p.lastEventID {
			return true
		}
		p.lastEventID = id

		name := ev.Get("EventName").String()
		if mapped, ok := liveEventNames[name]; ok {
			name = mapped
		}
		out = append(out, Event{Name: name, Data: ev.Raw})
		return true
	})
	return out
}

// wrapActivePlayer nests an active player document the way in-session info
// updates carry it: as an encoded string under live_client_data.
func wrapActivePlayer(player []byte) ([]byte, error) {
	if !gjson.ValidBytes(player) {
		return nil, fmt.Errorf("active player: invalid json")
	}
	return json.Marshal(map[string]any{
		"live_client_data": map[string]string{"active_player": string(player)},
	})
}
