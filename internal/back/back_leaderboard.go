package back

import (
	"log"
	"time"

	"courtside/internal/ranking"
	"courtside/internal/util"

	"github.com/jmoiron/sqlx"
)

// snapshot is the full in-memory view of the club the display ranking
// is computed from.
type snapshot struct {
	players     []Player
	matches     []Match
	placements  []TournamentPlacement
	tournaments []Tournament
}

func getSnapshot(tx *sqlx.Tx) (snapshot, error) {
	var (
		snap snapshot
		err  error
	)

	if snap.players, err = getPlayers(tx); err != nil {
		return snapshot{}, err
	}
	if snap.matches, err = getMatches(tx); err != nil {
		return snapshot{}, err
	}
	if snap.placements, err = getPlacements(tx, false); err != nil {
		return snapshot{}, err
	}
	if snap.tournaments, err = getTournaments(tx); err != nil {
		return snapshot{}, err
	}

	return snap, nil
}

func (s snapshot) playerRows() []ranking.PlayerRow {
	rows := make([]ranking.PlayerRow, 0, len(s.players))
	for _, p := range s.players {
		rows = append(rows, ranking.PlayerRow{ID: p.ID, Name: p.Name})
	}

	return rows
}

func (s snapshot) matchRows() []ranking.MatchRow {
	rows := make([]ranking.MatchRow, 0, len(s.matches))
	for _, m := range s.matches {
		rows = append(rows, ranking.MatchRow{
			Player1ID: m.Player1ID,
			Player2ID: m.Player2ID,
			WinnerID:  m.WinnerID,
			PlayedAt:  m.PlayedAt.Time(),
		})
	}

	return rows
}

func (s snapshot) placementRows() []ranking.PlacementRow {
	rows := make([]ranking.PlacementRow, 0, len(s.placements))
	for _, p := range s.placements {
		rows = append(rows, ranking.PlacementRow{
			PlayerID:     p.PlayerID,
			TournamentID: p.TournamentID,
			Placement:    p.Placement,
		})
	}

	return rows
}

func (s snapshot) tournamentRows() []ranking.TournamentRow {
	rows := make([]ranking.TournamentRow, 0, len(s.tournaments))
	for _, t := range s.tournaments {
		rows = append(rows, ranking.TournamentRow{ID: t.ID, Date: t.TournamentDate.Time()})
	}

	return rows
}

// GetLeaderboard returns every player's stats ordered by descending
// composite ranking score.
func (b *Back) GetLeaderboard() (stats []ranking.PlayerStats, _ error) {
	start := time.Now()
	defer func() { log.Printf("info: computed leaderboard in %s", time.Since(start)) }()

	return stats, b.transaction(func(tx *sqlx.Tx) error {
		snap, err := getSnapshot(tx)
		if err != nil {
			return err
		}

		stats = ranking.RankPlayers(snap.playerRows(), snap.matchRows(), snap.placementRows())
		return nil
	})
}

// GetPlayerStats returns the stats line of a single player, including
// their ranking score.
func (b *Back) GetPlayerStats(playerID util.UUIDAsBlob) (stats ranking.PlayerStats, _ error) {
	if err := b.transaction(func(tx *sqlx.Tx) error {
		player, err := getPlayerByID(tx, playerID)
		if err != nil {
			return err
		}

		snap, err := getSnapshot(tx)
		if err != nil {
			return err
		}

		rows := []ranking.PlayerRow{{ID: player.ID, Name: player.Name}}
		lines := ranking.CalculatePlayerStats(rows, snap.matchRows(), snap.placementRows())
		stats = lines[0]
		stats.RankingScore = ranking.CalculateRankingScore(stats, snap.matchRows(), snap.placementRows())

		return nil
	}); err != nil {
		return ranking.PlayerStats{}, err
	}

	return stats, nil
}

// GetPlayerOfMonth elects the player of the civil month containing now.
// The second return value is false when no one competed that month.
func (b *Back) GetPlayerOfMonth(now time.Time) (result ranking.PlayerOfMonthResult, ok bool, _ error) {
	if err := b.transaction(func(tx *sqlx.Tx) error {
		snap, err := getSnapshot(tx)
		if err != nil {
			return err
		}

		result, ok = ranking.PlayerOfMonth(
			snap.playerRows(),
			snap.matchRows(),
			snap.placementRows(),
			snap.tournamentRows(),
			now,
		)
		return nil
	}); err != nil {
		return ranking.PlayerOfMonthResult{}, false, err
	}

	return result, ok, nil
}
