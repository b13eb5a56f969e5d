package signal

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"go.aimuz.me/tempo/internal/types"
)

// liveInfo wraps an active player document the way the game reports it:
// as a JSON string nested in the info update.
func liveInfo(t *testing.T, activePlayer string) []byte {
	t.Helper()
	b, err := json.Marshal(map[string]any{
		"live_client_data": map[string]any{"active_player": activePlayer},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

func champSelect(t *testing.T, raw string) []byte {
	t.Helper()
	b, err := json.Marshal(map[string]any{
		"info": map[string]any{"champ_select": map[string]any{"raw": raw}},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

type fakeResolver map[int]types.ReferenceEntry

func (f fakeResolver) Lookup(id int) (types.ReferenceEntry, bool) {
	e, ok := f[id]
	return e, ok
}

func TestFromLiveClient(t *testing.T) {
	tests := []struct {
		name     string
		payload  []byte
		wantKind Kind
		wantErr  error
		wantName string
		wantRate float64
	}{
		{
			name:     "attack speed with summoner name",
			payload:  liveInfo(t, `{"summonerName":"Faker","championStats":{"attackSpeed":0.7}}`),
			wantKind: KindSample,
			wantName: "Faker",
			wantRate: 0.7,
		},
		{
			name:     "falls back to session label",
			payload:  liveInfo(t, `{"championStats":{"attackSpeed":1.25}}`),
			wantKind: KindSample,
			wantName: InGameLabel,
			wantRate: 1.25,
		},
		{
			name:     "riot id game name",
			payload:  liveInfo(t, `{"riotIdGameName":"Caps","championStats":{"attackSpeed":0.8}}`),
			wantKind: KindSample,
			wantName: "Caps",
			wantRate: 0.8,
		},
		{
			name:     "inline object under info",
			payload:  []byte(`{"info":{"live_client_data":{"active_player":{"championStats":{"attackSpeed":0.9}}}}}`),
			wantKind: KindSample,
			wantName: InGameLabel,
			wantRate: 0.9,
		},
		{
			name:     "malformed json",
			payload:  []byte(`{"live_client_data":`),
			wantKind: KindNone,
			wantErr:  ErrMalformed,
		},
		{
			name:     "other feature",
			payload:  []byte(`{"gold":{"current":500}}`),
			wantKind: KindNone,
			wantErr:  ErrNoData,
		},
		{
			name:     "malformed sub-document",
			payload:  liveInfo(t, `{not json`),
			wantKind: KindNone,
			wantErr:  ErrMalformed,
		},
		{
			name:     "missing attack speed",
			payload:  liveInfo(t, `{"championStats":{"armor":30}}`),
			wantKind: KindNone,
			wantErr:  ErrMissingField,
		},
		{
			name:     "attack speed is a string",
			payload:  liveInfo(t, `{"championStats":{"attackSpeed":"fast"}}`),
			wantKind: KindNone,
			wantErr:  ErrMissingField,
		},
		{
			name:     "zero attack speed",
			payload:  liveInfo(t, `{"championStats":{"attackSpeed":0}}`),
			wantKind: KindNone,
			wantErr:  ErrInvalidRate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromLiveClient(tt.payload)

			if got.Kind != tt.wantKind {
				t.Fatalf("Kind = %v, want %v (err %v)", got.Kind, tt.wantKind, got.Err)
			}
			if tt.wantErr != nil && !errors.Is(got.Err, tt.wantErr) {
				t.Errorf("Err = %v, want %v", got.Err, tt.wantErr)
			}
			if got.Kind != KindSample {
				return
			}
			if got.Sample.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", got.Sample.Name, tt.wantName)
			}
			if got.Sample.AttackSpeed != tt.wantRate {
				t.Errorf("AttackSpeed = %v, want %v", got.Sample.AttackSpeed, tt.wantRate)
			}
		})
	}
}

func TestFromChampSelect(t *testing.T) {
	champs := fakeResolver{
		22:  {ID: 22, Name: "Ashe", AttackSpeed: 0.658},
		222: {ID: 222, Name: "Jinx", AttackSpeed: 0.625},
	}

	tests := []struct {
		name        string
		payload     []byte
		wantKind    Kind
		wantErr     error
		wantName    string
		wantDisplay string
	}{
		{
			name:        "locked champion",
			payload:     champSelect(t, `{"localPlayerCellId":2,"myTeam":[{"cellId":1,"championId":22},{"cellId":2,"championId":222}]}`),
			wantKind:    KindSample,
			wantName:    "Jinx",
			wantDisplay: "Jinx - AS: 0.625",
		},
		{
			name:        "pick intent when not locked",
			payload:     champSelect(t, `{"localPlayerCellId":0,"myTeam":[{"cellId":0,"championId":0,"championPickIntent":22}]}`),
			wantKind:    KindSample,
			wantName:    "Ashe",
			wantDisplay: "Ashe - AS: 0.658",
		},
		{
			name:     "roster cleared",
			payload:  champSelect(t, ""),
			wantKind: KindClear,
		},
		{
			name:     "raw missing",
			payload:  []byte(`{"champ_select":{}}`),
			wantKind: KindClear,
		},
		{
			name:     "unrelated launcher update",
			payload:  []byte(`{"info":{"game_flow":{"phase":"Lobby"}}}`),
			wantKind: KindNone,
			wantErr:  ErrNoData,
		},
		{
			name:        "unknown champion shows raw id",
			payload:     champSelect(t, `{"localPlayerCellId":3,"myTeam":[{"cellId":3,"championId":9999}]}`),
			wantKind:    KindNone,
			wantErr:     ErrUnknownChampion,
			wantDisplay: "9999",
		},
		{
			name:     "local player not in roster",
			payload:  champSelect(t, `{"localPlayerCellId":7,"myTeam":[{"cellId":1,"championId":22}]}`),
			wantKind: KindNone,
			wantErr:  ErrPlayerNotFound,
		},
		{
			name:     "nothing hovered",
			payload:  champSelect(t, `{"localPlayerCellId":1,"myTeam":[{"cellId":1,"championId":0}]}`),
			wantKind: KindNone,
			wantErr:  ErrNoChampion,
		},
		{
			name:     "missing local cell",
			payload:  champSelect(t, `{"myTeam":[{"cellId":1,"championId":22}]}`),
			wantKind: KindNone,
			wantErr:  ErrMissingField,
		},
		{
			name:     "raw is not json",
			payload:  champSelect(t, `garbage`),
			wantKind: KindNone,
			wantErr:  ErrMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromChampSelect(tt.payload, champs)

			if got.Kind != tt.wantKind {
				t.Fatalf("Kind = %v, want %v (err %v)", got.Kind, tt.wantKind, got.Err)
			}
			if tt.wantErr != nil && !errors.Is(got.Err, tt.wantErr) {
				t.Errorf("Err = %v, want %v", got.Err, tt.wantErr)
			}
			if got.Display != tt.wantDisplay {
				t.Errorf("Display = %q, want %q", got.Display, tt.wantDisplay)
			}
			if got.Kind == KindSample && got.Sample.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", got.Sample.Name, tt.wantName)
			}
		})
	}
}

func TestGate_Sequence(t *testing.T) {
	g := NewGate(0.01)

	rates := []float64{0.625, 0.626, 0.625, 0.700}
	want := []bool{true, false, false, true}

	for i, r := range rates {
		if got := g.Allow(r); got != want[i] {
			t.Errorf("Allow(%v) at step %d = %v, want %v", r, i, got, want[i])
		}
	}
	if g.Last() != 0.700 {
		t.Errorf("Last = %v, want 0.700", g.Last())
	}
}

func TestGate_WithinEpsilonNeverBothPublished(t *testing.T) {
	pairs := [][2]float64{
		{0.625, 0.634},
		{1.0, 0.995},
		{2.5, 2.5},
	}
	for _, p := range pairs {
		g := NewGate(DefaultEpsilon)
		if !g.Allow(p[0]) {
			t.Fatalf("first sample %v suppressed", p[0])
		}
		if g.Allow(p[1]) {
			t.Errorf("%v published after %v", p[1], p[0])
		}
	}
}

func TestGate_ResetAndNaN(t *testing.T) {
	g := NewGate(0)
	if !g.Allow(0.5) {
		t.Fatal("first sample suppressed")
	}
	if g.Allow(math.NaN()) {
		t.Error("NaN passed the gate")
	}
	g.Reset()
	if !g.Allow(0.5) {
		t.Error("sample suppressed after Reset")
	}
}
