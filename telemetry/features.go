// Package telemetry delivers game and launcher payloads to the producer
// surfaces. A Source pushes info updates and event batches into a Handler.
package telemetry

import "github.com/samber/lo"

// Game class ids.
const (
	ClassLeague   = 5426
	ClassLauncher = 10902
)

var features = map[int][]string{
	ClassLeague: {
		"live_client_data", "matchState", "match_info", "death", "respawn",
		"abilities", "kill", "assist", "gold", "minions", "summoner_info",
		"gameMode", "teams", "level", "announcer", "counters", "damage", "heal",
	},
	ClassLauncher: {
		"game_flow", "summoner_info", "champ_select", "lobby_info",
		"end_game", "lcu_info", "game_info", "clash",
	},
}

// Features returns the feature set requested for a class, or nil if unknown.
func Features(class int) []string {
	return append([]string(nil), features[class]...)
}

// Supports reports whether class requests feature.
func Supports(class int, feature string) bool {
	return lo.Contains(features[class], feature)
}
