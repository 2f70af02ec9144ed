package ranking // nolint:testpackage

import (
	"math"
	"testing"
	"time"

	"courtside/internal/util"
)

func playerID(n byte) util.UUIDAsBlob {
	var id util.UUIDAsBlob
	id[0] = n

	return id
}

func repeatMatches(winner, loser util.UUIDAsBlob, count int) []MatchRow {
	ret := make([]MatchRow, 0, count)
	for i := 0; i < count; i++ {
		ret = append(ret, MatchRow{Player1ID: winner, Player2ID: loser, WinnerID: winner})
	}

	return ret
}

func TestSmoothedWinPct(t *testing.T) {
	if got := smoothedWinPct(0, 0); got != 50.0 {
		t.Errorf("expected exactly 50 with no data, got %f", got)
	}

	// Monotonically increasing in wins at fixed games.
	prev := math.Inf(-1)
	for wins := 0; wins <= 10; wins++ {
		got := smoothedWinPct(wins, 10)
		if got <= prev {
			t.Errorf("expected %f > %f at %d wins", got, prev, wins)
		}
		prev = got
	}

	// 5 wins in 10 games is dead even after shrinkage.
	if got := smoothedWinPct(5, 10); got != 50.0 {
		t.Errorf("expected 50, got %f", got)
	}
}

func TestFiveOutOfTenIsNeutral(t *testing.T) {
	a, b := playerID(1), playerID(2)
	matches := append(repeatMatches(a, b, 5), repeatMatches(b, a, 5)...)
	players := []PlayerRow{{ID: a, Name: "a"}, {ID: b, Name: "b"}}

	stats := CalculatePlayerStats(players, matches, nil)
	if len(stats) != 2 {
		t.Fatalf("expected 2 stats lines, got %d", len(stats))
	}

	for _, v := range stats {
		if v.TotalMatches != 10 || v.TotalWins != 5 || v.TotalLosses != 5 {
			t.Errorf("expected 5/5 in 10 games, got %+v", v)
		}
		if v.WinPercentage != 50.0 {
			t.Errorf("expected a 50%% win rate, got %f", v.WinPercentage)
		}

		// Both terms are exactly neutral: smoothed(5, 10) = 50 and the
		// sole opponent has no games outside this rivalry.
		if got := CalculateRankingScore(v, matches, nil); math.Abs(got-50.0) > 1e-9 {
			t.Errorf("expected a score of 50, got %f", got)
		}
	}
}

func TestTournamentOnlyPlayer(t *testing.T) {
	a := playerID(1)
	players := []PlayerRow{{ID: a, Name: "a"}}
	placements := []PlacementRow{{PlayerID: a, TournamentID: playerID(9), Placement: 1}}

	ranked := RankPlayers(players, nil, placements)
	if len(ranked) != 1 {
		t.Fatalf("expected 1 stats line, got %d", len(ranked))
	}

	// 5 bonus wins count as both wins and games:
	// smoothed(5, 5) = (5+5)/(5+10)·100 ≈ 66.67, opponent strength is
	// the neutral 50.
	expected := 10.0/15.0*100*0.7 + 50*0.3
	if got := ranked[0].RankingScore; math.Abs(got-expected) > 1e-9 {
		t.Errorf("expected a score of %f, got %f", expected, got)
	}

	if ranked[0].TournamentWins != 1 || ranked[0].TournamentParticipations != 1 {
		t.Errorf("expected 1 tournament win and participation, got %+v", ranked[0])
	}
	if ranked[0].TotalMatches != 0 || ranked[0].WinPercentage != 0 {
		t.Errorf("expected no recorded matches, got %+v", ranked[0])
	}
}

func TestAggregateInvariants(t *testing.T) {
	a, b, c := playerID(1), playerID(2), playerID(3)
	matches := append(repeatMatches(a, b, 3), repeatMatches(c, a, 2)...)
	placements := []PlacementRow{
		{PlayerID: b, TournamentID: playerID(9), Placement: 2},
		{PlayerID: c, TournamentID: playerID(9), Placement: 7}, // participation only
	}

	stats := CalculatePlayerStats(
		[]PlayerRow{{ID: a, Name: "a"}, {ID: b, Name: "b"}, {ID: c, Name: "c"}},
		matches, placements,
	)

	for _, v := range stats {
		if v.TotalWins > v.TotalMatches {
			t.Errorf("wins above matches for %s: %+v", v.Player.Name, v)
		}
		if v.TotalWins+v.TotalLosses != v.TotalMatches {
			t.Errorf("inconsistent counters for %s: %+v", v.Player.Name, v)
		}
	}

	byName := map[string]PlayerStats{}
	for _, v := range stats {
		byName[v.Player.Name] = v
	}

	if got := byName["a"]; got.TotalMatches != 5 || got.TotalWins != 3 {
		t.Errorf("expected 3 wins in 5 matches for a, got %+v", got)
	}
	if got := byName["b"]; got.TournamentWins != 0 || got.TournamentParticipations != 1 {
		t.Errorf("expected a participation without a win for b, got %+v", got)
	}
	if got := byName["c"]; got.TournamentParticipations != 1 {
		t.Errorf("expected placement 7 to count as participation for c, got %+v", got)
	}
}

func TestRankPlayersOrderAndStability(t *testing.T) {
	a, b, c, d := playerID(1), playerID(2), playerID(3), playerID(4)
	matches := repeatMatches(a, b, 4)

	// c and d never played, their identical neutral scores must keep
	// the input order whatever it is.
	players := []PlayerRow{
		{ID: c, Name: "c"}, {ID: a, Name: "a"}, {ID: d, Name: "d"}, {ID: b, Name: "b"},
	}

	ranked := RankPlayers(players, matches, nil)
	for i := 1; i < len(ranked); i++ {
		if ranked[i-1].RankingScore < ranked[i].RankingScore {
			t.Errorf("ranking not descending at %d: %f < %f",
				i, ranked[i-1].RankingScore, ranked[i].RankingScore)
		}
	}

	if ranked[0].Player.Name != "a" {
		t.Errorf("expected the only winner first, got %s", ranked[0].Player.Name)
	}
	if ranked[len(ranked)-1].Player.Name != "b" {
		t.Errorf("expected the only loser last, got %s", ranked[len(ranked)-1].Player.Name)
	}

	var idle []string
	for _, v := range ranked {
		if v.Player.Name == "c" || v.Player.Name == "d" {
			idle = append(idle, v.Player.Name)
		}
	}
	if len(idle) != 2 || idle[0] != "c" || idle[1] != "d" {
		t.Errorf("expected tied players in input order, got %v", idle)
	}
}

func TestPlayerOfMonth(t *testing.T) {
	a, b, c := playerID(1), playerID(2), playerID(3)
	players := []PlayerRow{{ID: a, Name: "a"}, {ID: b, Name: "b"}, {ID: c, Name: "c"}}
	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)
	lastMonth := now.AddDate(0, -1, 0)

	tournament := TournamentRow{ID: playerID(9), Date: now.AddDate(0, 0, -3)}
	matches := []MatchRow{
		{Player1ID: a, Player2ID: b, WinnerID: a, PlayedAt: now.AddDate(0, 0, -1)},
		{Player1ID: a, Player2ID: b, WinnerID: a, PlayedAt: now.AddDate(0, 0, -2)},
		// Out of the current month, must be ignored.
		{Player1ID: b, Player2ID: a, WinnerID: b, PlayedAt: lastMonth},
		{Player1ID: b, Player2ID: a, WinnerID: b, PlayedAt: lastMonth},
		{Player1ID: b, Player2ID: a, WinnerID: b, PlayedAt: lastMonth},
	}
	placements := []PlacementRow{{PlayerID: c, TournamentID: tournament.ID, Placement: 1}}

	got, ok := PlayerOfMonth(players, matches, placements, []TournamentRow{tournament}, now)
	if !ok {
		t.Fatal("expected a player of the month")
	}

	// c: 0 wins + 1 tournament win × 5 = 5, beats a's 2 match wins.
	if got.Player.Name != "c" || got.MonthlyScore != 5 {
		t.Errorf("expected c with a score of 5, got %s with %d", got.Player.Name, got.MonthlyScore)
	}

	if _, ok := PlayerOfMonth(players, nil, nil, nil, now); ok {
		t.Error("expected no player of the month on an idle month")
	}
}
