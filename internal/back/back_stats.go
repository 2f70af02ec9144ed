package back

import (
	"database/sql"
	"log"
	"time"

	"courtside/internal/util"

	"github.com/jmoiron/sqlx"
)

// DeviationThreshold is the deviation under which a rating is
// considered settled enough to be displayed.
const DeviationThreshold = 200.0

// StatsMisc holds miscellaneous counters about the club.
type StatsMisc struct {
	RegisteredPlayers, RatedPlayers, SettledPlayers int
	MatchesPlayed, Tournaments, PodiumPlacements    int
	FirstMatch                                      util.TimeAsTimestamp
}

func (b *Back) GetMiscStats() (misc StatsMisc, _ error) {
	start := time.Now()
	defer func() { log.Printf("info: computed misc stats in %s", time.Since(start)) }()

	if err := b.transaction(func(tx *sqlx.Tx) error {
		queries := []struct {
			Dst   interface{}
			Query string
			Args  []interface{}
		}{
			{&misc.RegisteredPlayers, `SELECT COUNT(*) FROM Player`, nil},
			{&misc.RatedPlayers, `SELECT COUNT(*) FROM PlayerRating`, nil},
			{
				&misc.SettledPlayers,
				`SELECT COUNT(*) FROM PlayerRating WHERE Deviation < ?`,
				[]interface{}{DeviationThreshold},
			},
			{&misc.MatchesPlayed, `SELECT COUNT(*) FROM Match`, nil},
			{&misc.Tournaments, `SELECT COUNT(*) FROM Tournament`, nil},
			{
				&misc.PodiumPlacements,
				`SELECT COUNT(*) FROM TournamentPlacement WHERE Placement <= 3`,
				nil,
			},
			{
				&misc.FirstMatch,
				`SELECT PlayedAt FROM Match ORDER BY PlayedAt ASC LIMIT 1`,
				nil,
			},
		}

		for _, v := range queries {
			if err := tx.Get(v.Dst, v.Query, v.Args...); err != nil {
				// Ignore empty results, that's just an empty club.
				if err != sql.ErrNoRows {
					return err
				}
			}
		}

		return nil
	}); err != nil {
		return StatsMisc{}, err
	}

	return misc, nil
}
