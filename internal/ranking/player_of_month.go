package ranking

import (
	"time"

	"courtside/internal/util"
)

// TournamentRow is the projection of a tournament the monthly award
// needs.
type TournamentRow struct {
	ID   util.UUIDAsBlob
	Date time.Time
}

// PlayerOfMonthResult is the monthly award line of the winning player.
type PlayerOfMonthResult struct {
	Player         PlayerRow
	TotalWins      int
	TotalMatches   int
	WinPercentage  float64
	TournamentWins int
	MonthlyScore   int
}

const monthlyTournamentWinBonus = 5

// PlayerOfMonth elects the most active winning player of the civil
// month containing now (UTC). Returns false when no player competed
// that month.
func PlayerOfMonth(
	players []PlayerRow,
	matches []MatchRow,
	placements []PlacementRow,
	tournaments []TournamentRow,
	now time.Time,
) (PlayerOfMonthResult, bool) {
	now = now.UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	nextMonthStart := monthStart.AddDate(0, 1, 0)
	inMonth := func(t time.Time) bool {
		return !t.Before(monthStart) && t.Before(nextMonthStart)
	}

	winsByPlayer := map[util.UUIDAsBlob]int{}
	matchesByPlayer := map[util.UUIDAsBlob]int{}
	tournamentWinsByPlayer := map[util.UUIDAsBlob]int{}

	for _, match := range matches {
		if !inMonth(match.PlayedAt) {
			continue
		}

		matchesByPlayer[match.Player1ID]++
		matchesByPlayer[match.Player2ID]++
		winsByPlayer[match.WinnerID]++
	}

	tournamentDateByID := make(map[util.UUIDAsBlob]time.Time, len(tournaments))
	for _, tournament := range tournaments {
		tournamentDateByID[tournament.ID] = tournament.Date
	}

	for _, placement := range placements {
		if placement.Placement != 1 {
			continue
		}

		date, ok := tournamentDateByID[placement.TournamentID]
		if !ok || !inMonth(date) {
			continue
		}

		tournamentWinsByPlayer[placement.PlayerID]++
	}

	candidates := make([]PlayerOfMonthResult, 0, len(players))
	for _, player := range players {
		totalWins := winsByPlayer[player.ID]
		totalMatches := matchesByPlayer[player.ID]
		tournamentWins := tournamentWinsByPlayer[player.ID]

		if totalMatches == 0 && tournamentWins == 0 {
			continue
		}

		var winPct float64
		if totalMatches > 0 {
			winPct = float64(totalWins) / float64(totalMatches) * 100
		}

		candidates = append(candidates, PlayerOfMonthResult{
			Player:         player,
			TotalWins:      totalWins,
			TotalMatches:   totalMatches,
			WinPercentage:  winPct,
			TournamentWins: tournamentWins,
			MonthlyScore:   totalWins + tournamentWins*monthlyTournamentWinBonus,
		})
	}

	if len(candidates) == 0 {
		return PlayerOfMonthResult{}, false
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if monthlyLess(best, c) {
			best = c
		}
	}

	return best, true
}

// monthlyLess reports whether b beats a for the monthly award.
func monthlyLess(a, b PlayerOfMonthResult) bool {
	if a.MonthlyScore != b.MonthlyScore {
		return a.MonthlyScore < b.MonthlyScore
	}
	if a.WinPercentage != b.WinPercentage {
		return a.WinPercentage < b.WinPercentage
	}
	if a.TotalMatches != b.TotalMatches {
		return a.TotalMatches < b.TotalMatches
	}

	return a.Player.Name > b.Player.Name
}
