// Package back holds the club data (players, matches, tournaments) and
// runs the rating pipeline over it.
package back

import (
	"fmt"
	"time"

	"courtside/internal/rating"

	"github.com/jmoiron/sqlx"
)

type Back struct {
	db *sqlx.DB

	// glicko is the volatility solver policy used for every rating
	// update issued by this Back.
	glicko rating.Parameters
}

func New(sqlDriver string, sqlDSN string, glicko rating.Parameters) (*Back, error) {
	// Why even bother converting names? A single greppable string across all
	// your source code is better than any odd conversion scheme you could ever
	// come up with.
	// HACK: This is global but putting this in init() makes test ugly.
	// As only the Back relies on the DB, this seems like an okay-ish place.
	sqlx.NameMapper = func(v string) string { return v }

	db, err := sqlx.Connect(sqlDriver, sqlDSN)
	if err != nil {
		return nil, err
	}

	return &Back{
		db:     db,
		glicko: glicko,
	}, nil
}

type transactionCallback func(*sqlx.Tx) error

func (b *Back) transaction(cb transactionCallback) error {
	tx, err := b.db.Beginx()
	if err != nil {
		return err
	}

	if err := cb(tx); err != nil {
		if err2 := tx.Rollback(); err2 != nil {
			return fmt.Errorf("rollback error: %s\noriginal error: %s", err2, err)
		}

		return err
	}

	return tx.Commit()
}

// LoadFixtures creates default data for quick testing during
// development. Run `rerank` afterwards to rate the fixture matches.
func (b *Back) LoadFixtures() error {
	players := []Player{
		NewPlayer("Darunia"), NewPlayer("Nabooru"), NewPlayer("Rauru"),
		NewPlayer("Ruto"), NewPlayer("Saria"), NewPlayer("Zelda"),
	}
	tournament := NewTournament("Season opener", time.Now().AddDate(0, 0, -7))

	return b.transaction(func(tx *sqlx.Tx) error {
		for k := range players {
			if err := players[k].insert(tx); err != nil {
				return err
			}
		}

		if err := tournament.insert(tx); err != nil {
			return err
		}

		for k, winner := range []int{0, 1, 0, 2, 4} {
			match, err := NewMatch(
				players[winner].ID,
				players[(winner+1)%len(players)].ID,
				players[winner].ID,
				time.Now().AddDate(0, 0, k-6),
				"",
			)
			if err != nil {
				return err
			}

			if err := match.insert(tx); err != nil {
				return err
			}
		}

		for rank, player := range []int{0, 4, 2} {
			placement, err := NewTournamentPlacement(tournament.ID, players[player].ID, rank+1)
			if err != nil {
				return err
			}

			if err := placement.insert(tx); err != nil {
				return err
			}
		}

		return nil
	})
}
