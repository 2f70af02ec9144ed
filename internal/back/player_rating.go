package back

import (
	"database/sql"
	"time"

	"courtside/internal/rating"
	"courtside/internal/util"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// PlayerRating is the persisted Glicko-2 state of a player, one row per
// player, overwritten on every update.
type PlayerRating struct {
	PlayerID  util.UUIDAsBlob
	CreatedAt util.TimeAsTimestamp

	// Glicko-2
	Rating     float64
	Deviation  float64
	Volatility float64
}

func NewPlayerRating(playerID util.UUIDAsBlob) PlayerRating {
	return PlayerRating{
		PlayerID:  playerID,
		CreatedAt: util.TimeAsTimestamp(time.Now()),

		Rating:     rating.DefaultRating,
		Deviation:  rating.DefaultDeviation,
		Volatility: rating.DefaultVolatility,
	}
}

// Glicko returns the rating as the engine value type.
func (r PlayerRating) Glicko() rating.Rating {
	return rating.Rating{
		Rating:     r.Rating,
		Deviation:  r.Deviation,
		Volatility: r.Volatility,
	}
}

// SetGlicko overwrites the Glicko-2 state from an engine value.
func (r *PlayerRating) SetGlicko(v rating.Rating) {
	r.Rating = v.Rating
	r.Deviation = v.Deviation
	r.Volatility = v.Volatility
}

// getPlayerRating gets the current rating for a player or creates and
// returns a default rating on the fly.
func getPlayerRating(tx *sqlx.Tx, playerID util.UUIDAsBlob) (PlayerRating, error) {
	var ret PlayerRating
	query := `SELECT * FROM PlayerRating WHERE PlayerID = ? LIMIT 1`
	err := tx.Get(&ret, query, playerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return NewPlayerRating(playerID), nil
		}
		return PlayerRating{}, err
	}

	return ret, nil
}

func (r *PlayerRating) upsert(tx *sqlx.Tx) error {
	// sqlite-specific upsert
	if _, err := tx.Exec(`
        INSERT INTO PlayerRating (PlayerID, CreatedAt, Rating, Deviation, Volatility)
        VALUES (?, ?, ?, ?, ?)
        ON CONFLICT (PlayerID) DO UPDATE SET
            Rating = excluded.Rating,
            Deviation = excluded.Deviation,
            Volatility = excluded.Volatility`,
		r.PlayerID, r.CreatedAt, r.Rating, r.Deviation, r.Volatility,
	); err != nil {
		return err
	}

	return nil
}

// PlayerRatingHistory is one append-only audit row per rating change.
// The engine only ever writes it, never reads it back.
type PlayerRatingHistory struct {
	ID        util.UUIDAsBlob
	CreatedAt util.TimeAsTimestamp
	PlayerID  util.UUIDAsBlob

	MatchID      util.NullUUIDAsBlob
	TournamentID util.NullUUIDAsBlob
	OpponentID   util.NullUUIDAsBlob
	Result       string

	RatingBefore     float64
	RatingAfter      float64
	DeviationBefore  float64
	DeviationAfter   float64
	VolatilityBefore float64
	VolatilityAfter  float64
}

func (h *PlayerRatingHistory) insert(tx *sqlx.Tx) error {
	query, args, err := squirrel.Insert("PlayerRatingHistory").SetMap(squirrel.Eq{
		"ID":               h.ID,
		"CreatedAt":        h.CreatedAt,
		"PlayerID":         h.PlayerID,
		"MatchID":          h.MatchID,
		"TournamentID":     h.TournamentID,
		"OpponentID":       h.OpponentID,
		"Result":           h.Result,
		"RatingBefore":     h.RatingBefore,
		"RatingAfter":      h.RatingAfter,
		"DeviationBefore":  h.DeviationBefore,
		"DeviationAfter":   h.DeviationAfter,
		"VolatilityBefore": h.VolatilityBefore,
		"VolatilityAfter":  h.VolatilityAfter,
	}).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return err
	}

	return nil
}

// GetPlayerRatings returns every rated player, strongest first.
func (b *Back) GetPlayerRatings() (ret []PlayerRating, _ error) {
	return ret, b.transaction(func(tx *sqlx.Tx) error {
		return tx.Select(&ret, `SELECT * FROM PlayerRating ORDER BY Rating DESC`)
	})
}
