package ranking

import (
	"time"

	"courtside/internal/util"
)

// MatchRow is the projection of a match the ranking needs.
type MatchRow struct {
	Player1ID util.UUIDAsBlob
	Player2ID util.UUIDAsBlob
	WinnerID  util.UUIDAsBlob
	PlayedAt  time.Time
}

// LoserID returns the participant that did not win.
func (m MatchRow) LoserID() util.UUIDAsBlob {
	if m.WinnerID == m.Player1ID {
		return m.Player2ID
	}

	return m.Player1ID
}

// PlacementRow is the projection of a tournament placement the ranking
// needs.
type PlacementRow struct {
	PlayerID     util.UUIDAsBlob
	TournamentID util.UUIDAsBlob
	Placement    int
}

// Bonus wins credited for tournament finishes, they count as both a
// win and a game played inside the smoothing.
const (
	firstPlaceBonusWins  = 5
	secondPlaceBonusWins = 2
)

// aggregates are the per-player and per-opponent count tables every
// ranking computation is derived from. Pure function of the match and
// placement lists, wins ≤ matches always holds.
type aggregates struct {
	matches        map[util.UUIDAsBlob]int
	wins           map[util.UUIDAsBlob]int
	headToHead     map[util.UUIDAsBlob]map[util.UUIDAsBlob]int // player → opponent → count
	directedWins   map[util.UUIDAsBlob]map[util.UUIDAsBlob]int // winner → loser → count
	tournamentWins map[util.UUIDAsBlob]int
	participations map[util.UUIDAsBlob]int
	bonusWins      map[util.UUIDAsBlob]int
}

func incrementNested(m map[util.UUIDAsBlob]map[util.UUIDAsBlob]int, outer, inner util.UUIDAsBlob) {
	nested, ok := m[outer]
	if !ok {
		nested = map[util.UUIDAsBlob]int{}
		m[outer] = nested
	}

	nested[inner]++
}

func buildAggregates(matches []MatchRow, placements []PlacementRow) aggregates {
	agg := aggregates{
		matches:        map[util.UUIDAsBlob]int{},
		wins:           map[util.UUIDAsBlob]int{},
		headToHead:     map[util.UUIDAsBlob]map[util.UUIDAsBlob]int{},
		directedWins:   map[util.UUIDAsBlob]map[util.UUIDAsBlob]int{},
		tournamentWins: map[util.UUIDAsBlob]int{},
		participations: map[util.UUIDAsBlob]int{},
		bonusWins:      map[util.UUIDAsBlob]int{},
	}

	for _, match := range matches {
		agg.matches[match.Player1ID]++
		agg.matches[match.Player2ID]++

		incrementNested(agg.headToHead, match.Player1ID, match.Player2ID)
		incrementNested(agg.headToHead, match.Player2ID, match.Player1ID)

		agg.wins[match.WinnerID]++
		incrementNested(agg.directedWins, match.WinnerID, match.LoserID())
	}

	for _, placement := range placements {
		agg.participations[placement.PlayerID]++

		switch placement.Placement {
		case 1:
			agg.tournamentWins[placement.PlayerID]++
			agg.bonusWins[placement.PlayerID] += firstPlaceBonusWins
		case 2:
			agg.bonusWins[placement.PlayerID] += secondPlaceBonusWins
		}
	}

	return agg
}
