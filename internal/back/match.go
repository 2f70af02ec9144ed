package back

import (
	"time"

	"courtside/internal/util"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"gopkg.in/guregu/null.v4"
)

// A Match is an append-only record of a played game between two
// distinct players, one of which must be the winner. The engine never
// mutates a match once recorded.
type Match struct {
	ID        util.UUIDAsBlob
	CreatedAt util.TimeAsTimestamp

	Player1ID util.UUIDAsBlob
	Player2ID util.UUIDAsBlob
	WinnerID  util.UUIDAsBlob

	// PlayedAt establishes the chronological order the rating pipeline
	// replays matches in.
	PlayedAt util.TimeAsTimestamp
	Note     null.String
}

func NewMatch(player1ID, player2ID, winnerID util.UUIDAsBlob, playedAt time.Time, note string) (Match, error) {
	if player1ID == player2ID {
		return Match{}, util.ErrPublic("a player can't play against themselves")
	}

	if winnerID != player1ID && winnerID != player2ID {
		return Match{}, util.ErrPublic("the winner must be one of the two participants")
	}

	return Match{
		ID:        util.NewUUIDAsBlob(),
		CreatedAt: util.TimeAsTimestamp(time.Now()),
		Player1ID: player1ID,
		Player2ID: player2ID,
		WinnerID:  winnerID,
		PlayedAt:  util.TimeAsTimestamp(playedAt),
		Note:      null.NewString(note, note != ""),
	}, nil
}

// LoserID returns the participant that did not win.
func (m Match) LoserID() util.UUIDAsBlob {
	if m.WinnerID == m.Player1ID {
		return m.Player2ID
	}

	return m.Player1ID
}

func (m *Match) insert(tx *sqlx.Tx) error {
	query, args, err := squirrel.Insert("Match").SetMap(squirrel.Eq{
		"ID":        m.ID,
		"CreatedAt": m.CreatedAt,
		"Player1ID": m.Player1ID,
		"Player2ID": m.Player2ID,
		"WinnerID":  m.WinnerID,
		"PlayedAt":  m.PlayedAt,
		"Note":      m.Note,
	}).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return err
	}

	return nil
}

// getMatches returns every recorded match in chronological play order.
func getMatches(tx *sqlx.Tx) ([]Match, error) {
	var ret []Match
	if err := tx.Select(&ret, `SELECT * FROM Match ORDER BY PlayedAt ASC`); err != nil {
		return nil, err
	}

	return ret, nil
}

func getMatchByID(tx *sqlx.Tx, id util.UUIDAsBlob) (Match, error) {
	var ret Match
	query := `SELECT * FROM Match WHERE Match.ID = ? LIMIT 1`
	if err := tx.Get(&ret, query, id); err != nil {
		return Match{}, err
	}

	return ret, nil
}

// RecordMatch stores a new match and immediately rates it. Both
// players' updates see the other's pre-match rating.
func (b *Back) RecordMatch(
	player1ID, player2ID, winnerID util.UUIDAsBlob,
	playedAt time.Time,
	note string,
) (match Match, _ error) {
	match, err := NewMatch(player1ID, player2ID, winnerID, playedAt, note)
	if err != nil {
		return Match{}, err
	}

	if err := b.transaction(func(tx *sqlx.Tx) error {
		for _, id := range []util.UUIDAsBlob{player1ID, player2ID} {
			if _, err := getPlayerByID(tx, id); err != nil {
				return util.ErrPublic("both participants must be registered players")
			}
		}

		if err := match.insert(tx); err != nil {
			return err
		}

		_, _, err := b.processMatchRating(tx, match)
		return err
	}); err != nil {
		return Match{}, err
	}

	return match, nil
}

func (b *Back) GetMatch(id util.UUIDAsBlob) (match Match, _ error) {
	if err := b.transaction(func(tx *sqlx.Tx) (err error) {
		match, err = getMatchByID(tx, id)
		return err
	}); err != nil {
		return Match{}, err
	}

	return match, nil
}
