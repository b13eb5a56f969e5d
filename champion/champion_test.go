package champion

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"go.aimuz.me/tempo/internal/types"
	"go.aimuz.me/tempo/store"
)

const championJSON = `{
  "type": "champion",
  "version": "14.1.1",
  "data": {
    "Ashe":  {"key": "22",  "name": "Ashe",  "stats": {"attackspeed": 0.658}},
    "Jinx":  {"key": "222", "name": "Jinx",  "stats": {"attackspeed": 0.625}},
    "Broken":{"key": "x",   "name": "Broken","stats": {"attackspeed": 1}}
  }
}`

func newDDragon(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/versions.json", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`["14.1.1","14.1.0"]`))
	})
	mux.HandleFunc("/cdn/14.1.1/data/en_US/champion.json", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(championJSON))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestLoader_Load(t *testing.T) {
	var hits atomic.Int32
	srv := newDDragon(t, &hits)

	l := NewLoader(LoaderConfig{BaseURL: srv.URL})
	table := &Table{}
	l.Load(context.Background(), table)

	if table.Version() != "14.1.1" {
		t.Errorf("Version = %q, want 14.1.1", table.Version())
	}
	if table.Len() != 2 {
		t.Fatalf("Len = %d, want 2 (bad key skipped)", table.Len())
	}
	jinx, ok := table.Lookup(222)
	if !ok || jinx.Name != "Jinx" || jinx.AttackSpeed != 0.625 {
		t.Errorf("Lookup(222) = %+v, %v", jinx, ok)
	}

	// Second call is a no-op.
	l.Load(context.Background(), table)
	if got := hits.Load(); got != 2 {
		t.Errorf("requests = %d, want 2", got)
	}
}

func TestLoader_FailureLeavesTableEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	table := &Table{}
	NewLoader(LoaderConfig{BaseURL: srv.URL}).Load(context.Background(), table)

	if table.Len() != 0 {
		t.Errorf("Len = %d, want 0", table.Len())
	}
	if got := table.Display(222); got != "222" {
		t.Errorf("Display = %q, want raw id", got)
	}
}

func TestLoader_FallsBackToCache(t *testing.T) {
	cache, err := store.OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory: %v", err)
	}
	defer cache.Close()

	var hits atomic.Int32
	good := newDDragon(t, &hits)
	NewLoader(LoaderConfig{BaseURL: good.URL, Cache: cache}).Load(context.Background(), &Table{})

	bad := httptest.NewServer(http.NotFoundHandler())
	defer bad.Close()

	table := &Table{}
	NewLoader(LoaderConfig{BaseURL: bad.URL, Cache: cache}).Load(context.Background(), table)

	if table.Len() != 2 {
		t.Fatalf("Len = %d, want 2 from cache", table.Len())
	}
	if table.Version() != "14.1.1" {
		t.Errorf("Version = %q", table.Version())
	}
}

func TestTable_Display(t *testing.T) {
	table := NewTable("1", []types.ReferenceEntry{{ID: 22, Name: "Ashe", AttackSpeed: 0.658}})

	tests := []struct {
		id   int
		want string
	}{
		{22, "Ashe - AS: 0.658"},
		{999, "999"},
	}
	for _, tt := range tests {
		if got := table.Display(tt.id); got != tt.want {
			t.Errorf("Display(%d) = %q, want %q", tt.id, got, tt.want)
		}
	}
}
