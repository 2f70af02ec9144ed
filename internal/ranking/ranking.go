// Package ranking computes the composite leaderboard score: a
// Bayesian-smoothed win percentage blended with an opponent-strength
// estimate and tournament bonus wins. It is independent from the
// Glicko-2 rating, the two are never mixed.
package ranking

import (
	"sort"

	"courtside/internal/util"
)

// MinGamesForRanking is the number of phantom games mixed into every
// win percentage, pulling small samples toward 50%.
const MinGamesForRanking = 10

const (
	selfWeight     = 0.7
	opponentWeight = 0.3
)

// PlayerRow is the projection of a player the ranking needs.
type PlayerRow struct {
	ID   util.UUIDAsBlob
	Name string
}

// PlayerStats is the leaderboard line of a single player.
type PlayerStats struct {
	Player                   PlayerRow
	TotalWins                int
	TotalLosses              int
	TotalMatches             int
	WinPercentage            float64
	TournamentWins           int
	TournamentParticipations int
	RankingScore             float64
}

// smoothedWinPct shrinks a win percentage toward 50 by adding
// MinGamesForRanking phantom games at an even score.
func smoothedWinPct(wins, games int) float64 {
	total := games + MinGamesForRanking
	if total <= 0 {
		return 50
	}

	return (float64(wins) + 0.5*MinGamesForRanking) / float64(total) * 100
}

// opponentSmoothedWinPct scores an opponent while ignoring every match
// they played against the excluded player, so a single rivalry cannot
// inflate both sides.
func opponentSmoothedWinPct(opponentID, excludedID util.UUIDAsBlob, agg aggregates) float64 {
	games := agg.matches[opponentID] - agg.headToHead[opponentID][excludedID]
	wins := agg.wins[opponentID] - agg.directedWins[opponentID][excludedID]

	return smoothedWinPct(wins, games)
}

// opponentStrength is the encounter-weighted average of the smoothed
// win percentages of everyone the player faced. A player with no
// matches sits at the neutral 50.
func opponentStrength(playerID util.UUIDAsBlob, agg aggregates) float64 {
	totalMatches := agg.matches[playerID]
	if totalMatches == 0 {
		return 50
	}

	opponents := agg.headToHead[playerID]
	if len(opponents) == 0 {
		return 50
	}

	var weighted float64
	for opponentID, encounters := range opponents {
		weighted += opponentSmoothedWinPct(opponentID, playerID, agg) * float64(encounters)
	}

	return weighted / float64(totalMatches)
}

func playerStatsFromAggregates(players []PlayerRow, agg aggregates) []PlayerStats {
	stats := make([]PlayerStats, 0, len(players))

	for _, player := range players {
		totalMatches := agg.matches[player.ID]
		totalWins := agg.wins[player.ID]

		var winPct float64
		if totalMatches > 0 {
			winPct = float64(totalWins) / float64(totalMatches) * 100
		}

		stats = append(stats, PlayerStats{
			Player:                   player,
			TotalWins:                totalWins,
			TotalLosses:              totalMatches - totalWins,
			TotalMatches:             totalMatches,
			WinPercentage:            winPct,
			TournamentWins:           agg.tournamentWins[player.ID],
			TournamentParticipations: agg.participations[player.ID],
		})
	}

	return stats
}

func rankingScoreFromAggregates(stats PlayerStats, agg aggregates) float64 {
	bonusWins := agg.bonusWins[stats.Player.ID]
	effectiveWins := stats.TotalWins + bonusWins
	effectiveGames := stats.TotalMatches + bonusWins

	adjustedWinPct := smoothedWinPct(effectiveWins, effectiveGames)

	return adjustedWinPct*selfWeight + opponentStrength(stats.Player.ID, agg)*opponentWeight
}

// CalculatePlayerStats returns the per-player counters and win
// percentage for every given player, without a ranking score.
func CalculatePlayerStats(players []PlayerRow, matches []MatchRow, placements []PlacementRow) []PlayerStats {
	return playerStatsFromAggregates(players, buildAggregates(matches, placements))
}

// CalculateRankingScore returns the composite score of a single
// player's stats line.
func CalculateRankingScore(stats PlayerStats, matches []MatchRow, placements []PlacementRow) float64 {
	return rankingScoreFromAggregates(stats, buildAggregates(matches, placements))
}

// RankPlayers returns every player's stats ordered by descending
// ranking score. The sort is stable, players with the exact same score
// keep their input order.
func RankPlayers(players []PlayerRow, matches []MatchRow, placements []PlacementRow) []PlayerStats {
	agg := buildAggregates(matches, placements)
	stats := playerStatsFromAggregates(players, agg)

	for k := range stats {
		stats[k].RankingScore = rankingScoreFromAggregates(stats[k], agg)
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].RankingScore > stats[j].RankingScore
	})

	return stats
}
