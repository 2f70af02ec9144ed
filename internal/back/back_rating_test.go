package back // nolint:testpackage

import (
	"io/ioutil"
	"os"
	"testing"
	"time"

	"courtside/internal/rating"
	"courtside/internal/util"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

func createFixturedTestBack(t *testing.T) *Back {
	f, err := ioutil.TempFile("", "*.db")
	if err != nil {
		t.Fatal(err)
	}
	path := f.Name()
	f.Close()
	t.Cleanup(func() {
		os.Remove(path)
	})

	migrator, err := migrate.New(
		"file://../../resources/migrations",
		"sqlite3://"+path,
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := migrator.Up(); err != nil {
		t.Fatal(err)
	}
	migrator.Close()

	back, err := New("sqlite3", path, rating.DefaultParameters())
	if err != nil {
		t.Fatal(err)
	}

	return back
}

func registerTestPlayers(t *testing.T, back *Back, names ...string) map[string]Player {
	t.Helper()

	players := make(map[string]Player, len(names))
	for _, name := range names {
		player, err := back.RegisterPlayer(name)
		if err != nil {
			t.Fatal(err)
		}
		players[name] = player
	}

	return players
}

func getTestRating(t *testing.T, back *Back, playerID util.UUIDAsBlob) PlayerRating {
	t.Helper()

	var ret PlayerRating
	if err := back.transaction(func(tx *sqlx.Tx) (err error) {
		ret, err = getPlayerRating(tx, playerID)
		return err
	}); err != nil {
		t.Fatal(err)
	}

	return ret
}

func countHistoryRows(t *testing.T, back *Back) int {
	t.Helper()

	var count int
	if err := back.transaction(func(tx *sqlx.Tx) error {
		return tx.Get(&count, `SELECT COUNT(*) FROM PlayerRatingHistory`)
	}); err != nil {
		t.Fatal(err)
	}

	return count
}

func TestFirstMatchMovesBothRatings(t *testing.T) {
	back := createFixturedTestBack(t)
	players := registerTestPlayers(t, back, "Saria", "Zelda")

	match, err := back.RecordMatch(
		players["Saria"].ID, players["Zelda"].ID, players["Saria"].ID,
		time.Now(), "first blood",
	)
	if err != nil {
		t.Fatal(err)
	}
	if match.LoserID() != players["Zelda"].ID {
		t.Errorf("expected Zelda to be the loser, got %s", match.LoserID())
	}

	winner := getTestRating(t, back, players["Saria"].ID)
	loser := getTestRating(t, back, players["Zelda"].ID)

	if winner.Rating <= rating.DefaultRating {
		t.Errorf("expected winner above %f, got %f", rating.DefaultRating, winner.Rating)
	}
	if loser.Rating >= rating.DefaultRating {
		t.Errorf("expected loser below %f, got %f", rating.DefaultRating, loser.Rating)
	}
	for _, v := range []PlayerRating{winner, loser} {
		if v.Deviation >= rating.DefaultDeviation || v.Deviation <= 0 {
			t.Errorf("expected deviation in ]0, %f[, got %f", rating.DefaultDeviation, v.Deviation)
		}
	}

	// One audit row per side.
	if got := countHistoryRows(t, back); got != 2 {
		t.Errorf("expected 2 history rows, got %d", got)
	}
}

func TestMatchValidation(t *testing.T) {
	back := createFixturedTestBack(t)
	players := registerTestPlayers(t, back, "Impa", "Ruto", "Rauru")

	cases := []struct {
		p1, p2, winner util.UUIDAsBlob
	}{
		{players["Impa"].ID, players["Impa"].ID, players["Impa"].ID},  // self-play
		{players["Impa"].ID, players["Ruto"].ID, players["Rauru"].ID}, // winner not a participant
	}

	for k, v := range cases {
		_, err := back.RecordMatch(v.p1, v.p2, v.winner, time.Now(), "")
		if err == nil {
			t.Errorf("case #%d: expected a validation error", k)
			continue
		}
		if _, ok := err.(util.ErrPublic); !ok {
			t.Errorf("case #%d: expected util.ErrPublic, got %T", k, err)
		}
	}

	if got := countHistoryRows(t, back); got != 0 {
		t.Errorf("expected no history rows after rejected matches, got %d", got)
	}
}

func TestPlacementPastPodiumIsNoOp(t *testing.T) {
	back := createFixturedTestBack(t)
	players := registerTestPlayers(t, back, "Darunia")

	tournament, err := back.CreateTournament("Autumn open", time.Now())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := back.RecordPlacement(tournament.ID, players["Darunia"].ID, 4); err != nil {
		t.Fatal(err)
	}

	if got := countHistoryRows(t, back); got != 0 {
		t.Errorf("expected no history rows for a 4th place, got %d", got)
	}

	ratings, err := back.GetPlayerRatings()
	if err != nil {
		t.Fatal(err)
	}
	if len(ratings) != 0 {
		t.Errorf("expected no rating rows for a 4th place, got %d", len(ratings))
	}

	_, rated, err := back.ProcessTournamentPlacementRating(players["Darunia"].ID, tournament.ID, 8)
	if err != nil {
		t.Fatal(err)
	}
	if rated {
		t.Error("expected placement 8 to be a no-op")
	}
}

func TestPodiumPlacements(t *testing.T) {
	back := createFixturedTestBack(t)
	players := registerTestPlayers(t, back, "Darunia", "Nabooru", "Rauru")

	tournament, err := back.CreateTournament("Winter cup", time.Now())
	if err != nil {
		t.Fatal(err)
	}

	updates := map[string]RatingUpdate{}
	for rank, name := range []string{"Darunia", "Nabooru", "Rauru"} {
		placement, err := back.RecordPlacement(tournament.ID, players[name].ID, rank+1)
		if err != nil {
			t.Fatal(err)
		}
		if placement.Placement != rank+1 {
			t.Errorf("expected placement %d, got %d", rank+1, placement.Placement)
		}

		updates[name] = RatingUpdate{
			PlayerID: players[name].ID,
			Before:   rating.Default(),
			After:    getTestRating(t, back, players[name].ID).Glicko(),
		}
	}

	// Every podium finish is a virtual win.
	for name, update := range updates {
		if update.Change() <= 0 {
			t.Errorf("expected a rating gain for %s, got %f", name, update.Change())
		}
	}

	if got := countHistoryRows(t, back); got != 3 {
		t.Errorf("expected 3 history rows, got %d", got)
	}
}

func TestRerankIsDeterministic(t *testing.T) {
	back := createFixturedTestBack(t)
	players := registerTestPlayers(t, back, "Saria", "Zelda", "Impa")

	now := time.Now()
	matches := []struct {
		p1, p2, winner string
		offset         time.Duration
	}{
		{"Saria", "Zelda", "Saria", -4 * time.Hour},
		{"Zelda", "Impa", "Impa", -3 * time.Hour},
		{"Impa", "Saria", "Saria", -2 * time.Hour},
		{"Saria", "Zelda", "Zelda", -1 * time.Hour},
	}
	for _, v := range matches {
		if _, err := back.RecordMatch(
			players[v.p1].ID, players[v.p2].ID, players[v.winner].ID,
			now.Add(v.offset), "",
		); err != nil {
			t.Fatal(err)
		}
	}

	tournament, err := back.CreateTournament("Spring open", now)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := back.RecordPlacement(tournament.ID, players["Saria"].ID, 1); err != nil {
		t.Fatal(err)
	}

	// The live pipeline rated everything already, a full replay must
	// land on the same values.
	live, err := back.GetPlayerRatings()
	if err != nil {
		t.Fatal(err)
	}

	for run := 0; run < 2; run++ {
		if err := back.Rerank(); err != nil {
			t.Fatal(err)
		}

		replayed, err := back.GetPlayerRatings()
		if err != nil {
			t.Fatal(err)
		}

		if len(replayed) != len(live) {
			t.Fatalf("run #%d: expected %d ratings, got %d", run, len(live), len(replayed))
		}
		for k := range replayed {
			if replayed[k].PlayerID != live[k].PlayerID || replayed[k].Glicko() != live[k].Glicko() {
				t.Errorf("run #%d: rating #%d diverged: %+v != %+v", run, k, replayed[k], live[k])
			}
		}
	}

	// Strongest first.
	for i := 1; i < len(live); i++ {
		if live[i-1].Rating < live[i].Rating {
			t.Errorf("ratings not sorted at %d: %f < %f", i, live[i-1].Rating, live[i].Rating)
		}
	}
}
