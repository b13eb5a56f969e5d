// Package signal extracts the champion attack-speed signal from raw game and
// launcher telemetry and throttles redundant updates.
package signal

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/samber/lo"
	"github.com/tidwall/gjson"

	"go.aimuz.me/tempo/internal/types"
)

// InGameLabel names the sample when the payload carries no player name.
const InGameLabel = "In Game"

// Extraction failures. None of them are fatal; callers log and drop.
var (
	ErrMalformed       = errors.New("signal: malformed payload")
	ErrNoData          = errors.New("signal: payload has no relevant data")
	ErrMissingField    = errors.New("signal: missing field")
	ErrInvalidRate     = errors.New("signal: invalid attack speed")
	ErrPlayerNotFound  = errors.New("signal: local player not in roster")
	ErrNoChampion      = errors.New("signal: no champion selected")
	ErrUnknownChampion = errors.New("signal: champion not in reference table")
)

// Kind tells the caller what to do with a Result.
type Kind int

const (
	KindNone   Kind = iota // drop; Err says why
	KindSample             // publish Sample
	KindClear              // session ended; clear downstream state
)

func (k Kind) String() string {
	switch k {
	case KindSample:
		return "sample"
	case KindClear:
		return "clear"
	default:
		return "none"
	}
}

// Result is the outcome of one extraction.
type Result struct {
	Kind   Kind
	Sample types.SignalSample

	// Lobby only: the resolved champion and its log line.
	ChampionID int
	Display    string

	Err error
}

func none(err error) Result { return Result{Kind: KindNone, Err: err} }

// Resolver maps champion identifiers to reference entries.
type Resolver interface {
	Lookup(id int) (types.ReferenceEntry, bool)
}

// FromLiveClient extracts a sample from an in-session info update. The
// active player is a separately encoded JSON document inside the payload.
func FromLiveClient(payload []byte) Result {
	if !gjson.ValidBytes(payload) {
		return none(ErrMalformed)
	}

	live := firstExisting(payload, "info.live_client_data", "live_client_data")
	if !live.Exists() {
		return none(ErrNoData)
	}

	player, err := subDocument(live.Get("active_player"))
	if err != nil {
		return none(fmt.Errorf("active_player: %w", err))
	}

	as := gjson.Get(player, "championStats.attackSpeed")
	if as.Type != gjson.Number {
		return none(fmt.Errorf("championStats.attackSpeed: %w", ErrMissingField))
	}
	rate := as.Float()
	if !validRate(rate) {
		return none(fmt.Errorf("%w: %v", ErrInvalidRate, rate))
	}

	name := InGameLabel
	for _, path := range []string{"summonerName", "riotIdGameName", "riotId"} {
		if v := gjson.Get(player, path); v.Type == gjson.String && v.Str != "" {
			name = v.Str
			break
		}
	}

	return Result{
		Kind:   KindSample,
		Sample: types.SignalSample{Name: name, AttackSpeed: rate},
	}
}

// FromChampSelect extracts a sample from a launcher info update during
// champion select. An empty roster means the lobby was left.
func FromChampSelect(payload []byte, champions Resolver) Result {
	if !gjson.ValidBytes(payload) {
		return none(ErrMalformed)
	}

	cs := firstExisting(payload, "info.champ_select", "champ_select")
	if !cs.Exists() {
		return none(ErrNoData)
	}

	rawField := cs.Get("raw")
	if !rawField.Exists() || rawField.Type == gjson.Null || (rawField.Type == gjson.String && rawField.Str == "") {
		return Result{Kind: KindClear}
	}

	raw, err := subDocument(rawField)
	if err != nil {
		return none(fmt.Errorf("champ_select.raw: %w", err))
	}

	cell := gjson.Get(raw, "localPlayerCellId")
	if cell.Type != gjson.Number {
		return none(fmt.Errorf("localPlayerCellId: %w", ErrMissingField))
	}

	local, found := lo.Find(gjson.Get(raw, "myTeam").Array(), func(p gjson.Result) bool {
		c := p.Get("cellId")
		return c.Type == gjson.Number && c.Int() == cell.Int()
	})
	if !found {
		return none(ErrPlayerNotFound)
	}

	id := int(local.Get("championId").Int())
	if id == 0 {
		id = int(local.Get("championPickIntent").Int())
	}
	if id == 0 {
		return none(ErrNoChampion)
	}

	entry, ok := champions.Lookup(id)
	if !ok || !validRate(entry.AttackSpeed) {
		return Result{
			Kind:       KindNone,
			ChampionID: id,
			Display:    strconv.Itoa(id),
			Err:        fmt.Errorf("%w: %d", ErrUnknownChampion, id),
		}
	}

	return Result{
		Kind:       KindSample,
		Sample:     types.SignalSample{Name: entry.Name, AttackSpeed: entry.AttackSpeed},
		ChampionID: id,
		Display:    fmt.Sprintf("%s - AS: %s", entry.Name, strconv.FormatFloat(entry.AttackSpeed, 'f', -1, 64)),
	}
}

// subDocument returns the JSON text of a field that is either an encoded
// JSON string or an inline object.
func subDocument(r gjson.Result) (string, error) {
	switch {
	case !r.Exists():
		return "", ErrMissingField
	case r.Type == gjson.String:
		if !gjson.Valid(r.Str) {
			return "", ErrMalformed
		}
		return r.Str, nil
	case r.IsObject():
		return r.Raw, nil
	default:
		return "", ErrMalformed
	}
}

func firstExisting(payload []byte, paths ...string) gjson.Result {
	for _, p := range paths {
		if r := gjson.GetBytes(payload, p); r.Exists() {
			return r
		}
	}
	return gjson.Result{}
}

func validRate(r float64) bool {
	return r > 0 && !math.IsInf(r, 0) && !math.IsNaN(r)
}
