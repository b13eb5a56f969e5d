package champion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go.aimuz.me/tempo/internal/types"
	"go.aimuz.me/tempo/store"
)

// DefaultCacheTTL is how long a fetched dataset is kept for offline starts.
const DefaultCacheTTL = 24 * time.Hour

// LoaderConfig configures a Loader. Zero values are replaced with defaults.
type LoaderConfig struct {
	BaseURL  string // Data Dragon root
	Locale   string // "en_US"
	HTTP     *http.Client
	Cache    *store.Store // optional
	CacheTTL time.Duration
}

// Loader fetches the champion dataset from Data Dragon: the latest version
// first, then the champion list for that version.
type Loader struct {
	baseURL  string
	locale   string
	http     *http.Client
	cache    *store.Store
	cacheTTL time.Duration

	once sync.Once
}

// NewLoader creates a Loader.
func NewLoader(cfg LoaderConfig) *Loader {
	l := &Loader{
		baseURL:  cfg.BaseURL,
		locale:   cfg.Locale,
		http:     cfg.HTTP,
		cache:    cfg.Cache,
		cacheTTL: cfg.CacheTTL,
	}
	if l.baseURL == "" {
		l.baseURL = "https://ddragon.leagueoflegends.com"
	}
	if l.locale == "" {
		l.locale = "en_US"
	}
	if l.http == nil {
		l.http = &http.Client{Timeout: 15 * time.Second}
	}
	if l.cacheTTL == 0 {
		l.cacheTTL = DefaultCacheTTL
	}
	return l
}

// Load fills table once per Loader. A failed fetch is not retried; the
// cached copy is used when there is one, otherwise the table stays empty.
func (l *Loader) Load(ctx context.Context, table *Table) {
	l.once.Do(func() {
		version, entries, err := l.Fetch(ctx)
		if err == nil {
			table.replace(version, entries)
			l.storeCache(version, entries)
			slog.Info("champion table loaded", "version", version, "count", len(entries))
			return
		}

		slog.Error("load champion data", "error", err)
		if version, entries, ok := l.loadCache(); ok {
			table.replace(version, entries)
			slog.Warn("champion table loaded from cache", "version", version, "count", len(entries))
		}
	})
}

// Fetch performs both lookups and returns the parsed dataset.
func (l *Loader) Fetch(ctx context.Context) (string, []types.ReferenceEntry, error) {
	var versions []string
	if err := l.getJSON(ctx, l.baseURL+"/api/versions.json", &versions); err != nil {
		return "", nil, fmt.Errorf("fetch versions: %w", err)
	}
	if len(versions) == 0 {
		return "", nil, errors.New("fetch versions: empty list")
	}
	latest := versions[0]

	url := fmt.Sprintf("%s/cdn/%s/data/%s/champion.json", l.baseURL, latest, l.locale)
	var data championData
	if err := l.getJSON(ctx, url, &data); err != nil {
		return "", nil, fmt.Errorf("fetch champions %s: %w", latest, err)
	}
	return latest, data.entries(), nil
}

func (l *Loader) getJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := l.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("api error: %d - %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// championData mirrors champion.json; only the fields we use.
type championData struct {
	Data map[string]struct {
		Key   string `json:"key"`
		Name  string `json:"name"`
		Stats struct {
			AttackSpeed float64 `json:"attackspeed"`
		} `json:"stats"`
	} `json:"data"`
}

func (d championData) entries() []types.ReferenceEntry {
	out := make([]types.ReferenceEntry, 0, len(d.Data))
	for slug, c := range d.Data {
		id, err := strconv.Atoi(c.Key)
		if err != nil {
			slog.Warn("skip champion with bad key", "champion", slug, "key", c.Key)
			continue
		}
		out = append(out, types.ReferenceEntry{
			ID:          id,
			Name:        c.Name,
			AttackSpeed: c.Stats.AttackSpeed,
		})
	}
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// Offline cache
// ─────────────────────────────────────────────────────────────────────────────

type cacheEntry struct {
	Version   string                 `json:"version"`
	Entries   []types.ReferenceEntry `json:"entries"`
	CreatedAt time.Time              `json:"createdAt"`
}

func (l *Loader) cacheKey() string {
	return "ddragon:champions:" + l.locale
}

func (l *Loader) storeCache(version string, entries []types.ReferenceEntry) {
	if l.cache == nil {
		return
	}
	data, err := json.Marshal(cacheEntry{Version: version, Entries: entries, CreatedAt: time.Now()})
	if err != nil {
		slog.Warn("marshal champion cache", "error", err)
		return
	}
	if err := l.cache.SetWithTTL(l.cacheKey(), data, l.cacheTTL); err != nil {
		slog.Warn("cache champion data", "error", err)
	}
}

func (l *Loader) loadCache() (string, []types.ReferenceEntry, bool) {
	if l.cache == nil {
		return "", nil, false
	}
	data, err := l.cache.Get(l.cacheKey())
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slog.Warn("read champion cache", "error", err)
		}
		return "", nil, false
	}
	var e cacheEntry
	if err := json.Unmarshal(data, &e); err != nil {
		slog.Warn("corrupt champion cache", "error", err)
		return "", nil, false
	}
	return e.Version, e.Entries, true
}
