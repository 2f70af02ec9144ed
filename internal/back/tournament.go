package back

import (
	"time"

	"courtside/internal/util"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type Tournament struct {
	ID             util.UUIDAsBlob
	CreatedAt      util.TimeAsTimestamp
	Name           string
	TournamentDate util.TimeAsTimestamp
}

func NewTournament(name string, date time.Time) Tournament {
	return Tournament{
		ID:             util.NewUUIDAsBlob(),
		CreatedAt:      util.TimeAsTimestamp(time.Now()),
		Name:           name,
		TournamentDate: util.TimeAsTimestamp(date),
	}
}

func (t *Tournament) insert(tx *sqlx.Tx) error {
	query, args, err := squirrel.Insert("Tournament").SetMap(squirrel.Eq{
		"ID":             t.ID,
		"CreatedAt":      t.CreatedAt,
		"Name":           t.Name,
		"TournamentDate": t.TournamentDate,
	}).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return err
	}

	return nil
}

// A TournamentPlacement is the final rank of a player in a tournament,
// 1 being first place. Every placement counts as a participation, only
// the top 3 carry rating or bonus weight.
type TournamentPlacement struct {
	ID           util.UUIDAsBlob
	CreatedAt    util.TimeAsTimestamp
	TournamentID util.UUIDAsBlob
	PlayerID     util.UUIDAsBlob
	Placement    int
}

func NewTournamentPlacement(tournamentID, playerID util.UUIDAsBlob, placement int) (TournamentPlacement, error) {
	if placement < 1 {
		return TournamentPlacement{}, util.ErrPublic("a placement must be a positive rank, 1 being first place")
	}

	return TournamentPlacement{
		ID:           util.NewUUIDAsBlob(),
		CreatedAt:    util.TimeAsTimestamp(time.Now()),
		TournamentID: tournamentID,
		PlayerID:     playerID,
		Placement:    placement,
	}, nil
}

func (p *TournamentPlacement) insert(tx *sqlx.Tx) error {
	query, args, err := squirrel.Insert("TournamentPlacement").SetMap(squirrel.Eq{
		"ID":           p.ID,
		"CreatedAt":    p.CreatedAt,
		"TournamentID": p.TournamentID,
		"PlayerID":     p.PlayerID,
		"Placement":    p.Placement,
	}).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return err
	}

	return nil
}

func getTournaments(tx *sqlx.Tx) ([]Tournament, error) {
	var ret []Tournament
	if err := tx.Select(&ret, `SELECT * FROM Tournament ORDER BY TournamentDate ASC`); err != nil {
		return nil, err
	}

	return ret, nil
}

// getPlacements returns placements in creation order, optionally
// keeping only the top 3 ranks that carry scoring weight.
func getPlacements(tx *sqlx.Tx, topThreeOnly bool) ([]TournamentPlacement, error) {
	query := `SELECT * FROM TournamentPlacement ORDER BY CreatedAt ASC`
	if topThreeOnly {
		query = `SELECT * FROM TournamentPlacement WHERE Placement <= 3 ORDER BY CreatedAt ASC`
	}

	var ret []TournamentPlacement
	if err := tx.Select(&ret, query); err != nil {
		return nil, err
	}

	return ret, nil
}

func getPlacementsByTournament(tx *sqlx.Tx, tournamentID util.UUIDAsBlob) ([]TournamentPlacement, error) {
	var ret []TournamentPlacement
	query := `SELECT * FROM TournamentPlacement WHERE TournamentID = ? ORDER BY Placement ASC`
	if err := tx.Select(&ret, query, tournamentID); err != nil {
		return nil, err
	}

	return ret, nil
}

func (b *Back) CreateTournament(name string, date time.Time) (tournament Tournament, _ error) {
	tournament = NewTournament(name, date)

	if err := b.transaction(tournament.insert); err != nil {
		return Tournament{}, err
	}

	return tournament, nil
}

// RecordPlacement stores a player's final tournament rank and rates it
// right away if it is a podium finish.
func (b *Back) RecordPlacement(
	tournamentID, playerID util.UUIDAsBlob,
	placement int,
) (ret TournamentPlacement, _ error) {
	ret, err := NewTournamentPlacement(tournamentID, playerID, placement)
	if err != nil {
		return TournamentPlacement{}, err
	}

	if err := b.transaction(func(tx *sqlx.Tx) error {
		if _, err := getPlayerByID(tx, playerID); err != nil {
			return util.ErrPublic("placements can only be recorded for registered players")
		}

		if err := ret.insert(tx); err != nil {
			return err
		}

		_, _, err := b.processTournamentPlacementRating(tx, ret)
		return err
	}); err != nil {
		return TournamentPlacement{}, err
	}

	return ret, nil
}
