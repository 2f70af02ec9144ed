package back

import (
	"fmt"
	"log"
	"time"

	"courtside/internal/rating"
	"courtside/internal/util"

	"github.com/jmoiron/sqlx"
)

// Virtual match constants for tournament placements: the synthetic
// opponent sits above the field average depending on the podium rank
// and has a low deviation so the reward is predictable.
const (
	virtualOpponentDeviation = 30.0
	firstPlaceRatingBonus    = 150.0
	secondPlaceRatingBonus   = 50.0
)

const (
	resultTagWin  = "win"
	resultTagLoss = "loss"
)

func placementResultTag(placement int) string {
	return fmt.Sprintf("tournament_%s", map[int]string{1: "1st", 2: "2nd", 3: "3rd"}[placement])
}

// RatingUpdate is the outcome of a single rating change, kept around
// for callers who want to display the delta.
type RatingUpdate struct {
	PlayerID util.UUIDAsBlob
	Before   rating.Rating
	After    rating.Rating
}

func (u RatingUpdate) Change() float64 {
	return u.After.Rating - u.Before.Rating
}

// saveRating persists a player's new rating and appends the audit row
// linking it to the match or tournament that caused it.
func saveRating(
	tx *sqlx.Tx,
	playerID util.UUIDAsBlob,
	before, after rating.Rating,
	matchID, tournamentID, opponentID util.NullUUIDAsBlob,
	result string,
) error {
	row := NewPlayerRating(playerID)
	row.SetGlicko(after)
	if err := row.upsert(tx); err != nil {
		return fmt.Errorf("unable to update rating: %w", err)
	}

	history := PlayerRatingHistory{
		ID:        util.NewUUIDAsBlob(),
		CreatedAt: util.TimeAsTimestamp(time.Now()),
		PlayerID:  playerID,

		MatchID:      matchID,
		TournamentID: tournamentID,
		OpponentID:   opponentID,
		Result:       result,

		RatingBefore:     before.Rating,
		RatingAfter:      after.Rating,
		DeviationBefore:  before.Deviation,
		DeviationAfter:   after.Deviation,
		VolatilityBefore: before.Volatility,
		VolatilityAfter:  after.Volatility,
	}
	if err := history.insert(tx); err != nil {
		return fmt.Errorf("unable to insert rating history: %w", err)
	}

	return nil
}

// processMatchRating rates both sides of a match. Each side sees the
// other's pre-match rating, the pair is never updated mid-way.
func (b *Back) processMatchRating(tx *sqlx.Tx, match Match) (winner, loser RatingUpdate, _ error) {
	winnerID, loserID := match.WinnerID, match.LoserID()

	winnerBefore, err := getPlayerRating(tx, winnerID)
	if err != nil {
		return RatingUpdate{}, RatingUpdate{}, err
	}
	loserBefore, err := getPlayerRating(tx, loserID)
	if err != nil {
		return RatingUpdate{}, RatingUpdate{}, err
	}

	winner = RatingUpdate{
		PlayerID: winnerID,
		Before:   winnerBefore.Glicko(),
		After: b.glicko.Update(winnerBefore.Glicko(), []rating.Result{{
			OpponentRating:    loserBefore.Rating,
			OpponentDeviation: loserBefore.Deviation,
			Score:             rating.ScoreWin,
		}}),
	}
	loser = RatingUpdate{
		PlayerID: loserID,
		Before:   loserBefore.Glicko(),
		After: b.glicko.Update(loserBefore.Glicko(), []rating.Result{{
			OpponentRating:    winnerBefore.Rating,
			OpponentDeviation: winnerBefore.Deviation,
			Score:             rating.ScoreLoss,
		}}),
	}

	matchID := util.NewNullUUIDAsBlob(match.ID)
	if err := saveRating(
		tx, winnerID, winner.Before, winner.After,
		matchID, util.NullUUIDAsBlob{}, util.NewNullUUIDAsBlob(loserID),
		resultTagWin,
	); err != nil {
		return RatingUpdate{}, RatingUpdate{}, err
	}
	if err := saveRating(
		tx, loserID, loser.Before, loser.After,
		matchID, util.NullUUIDAsBlob{}, util.NewNullUUIDAsBlob(winnerID),
		resultTagLoss,
	); err != nil {
		return RatingUpdate{}, RatingUpdate{}, err
	}

	return winner, loser, nil
}

// ProcessMatchRating rates an already recorded match in its own
// transaction.
func (b *Back) ProcessMatchRating(matchID util.UUIDAsBlob) (winner, loser RatingUpdate, _ error) {
	if err := b.transaction(func(tx *sqlx.Tx) error {
		match, err := getMatchByID(tx, matchID)
		if err != nil {
			return err
		}

		winner, loser, err = b.processMatchRating(tx, match)
		return err
	}); err != nil {
		return RatingUpdate{}, RatingUpdate{}, err
	}

	return winner, loser, nil
}

// averageFieldRating is the mean of the current ratings of everyone
// placed in the tournament, recomputed at the time of processing.
func averageFieldRating(tx *sqlx.Tx, tournamentID util.UUIDAsBlob) (float64, error) {
	placements, err := getPlacementsByTournament(tx, tournamentID)
	if err != nil {
		return 0, err
	}

	if len(placements) == 0 {
		return rating.DefaultRating, nil
	}

	var total float64
	for _, placement := range placements {
		r, err := getPlayerRating(tx, placement.PlayerID)
		if err != nil {
			return 0, err
		}
		total += r.Rating
	}

	return total / float64(len(placements)), nil
}

// processTournamentPlacementRating folds a podium finish into the
// rating as a virtual win against a synthetic field-average opponent.
// Placements past the podium are a no-op and return false.
func (b *Back) processTournamentPlacementRating(
	tx *sqlx.Tx,
	placement TournamentPlacement,
) (RatingUpdate, bool, error) {
	var opponentBonus float64
	switch placement.Placement {
	case 1:
		opponentBonus = firstPlaceRatingBonus
	case 2:
		opponentBonus = secondPlaceRatingBonus
	case 3:
		opponentBonus = 0
	default:
		return RatingUpdate{}, false, nil
	}

	before, err := getPlayerRating(tx, placement.PlayerID)
	if err != nil {
		return RatingUpdate{}, false, err
	}

	fieldAverage, err := averageFieldRating(tx, placement.TournamentID)
	if err != nil {
		return RatingUpdate{}, false, err
	}

	update := RatingUpdate{
		PlayerID: placement.PlayerID,
		Before:   before.Glicko(),
		After: b.glicko.Update(before.Glicko(), []rating.Result{{
			OpponentRating:    fieldAverage + opponentBonus,
			OpponentDeviation: virtualOpponentDeviation,
			Score:             rating.ScoreWin,
		}}),
	}

	if err := saveRating(
		tx, placement.PlayerID, update.Before, update.After,
		util.NullUUIDAsBlob{}, util.NewNullUUIDAsBlob(placement.TournamentID), util.NullUUIDAsBlob{},
		placementResultTag(placement.Placement),
	); err != nil {
		return RatingUpdate{}, false, err
	}

	return update, true, nil
}

// ProcessTournamentPlacementRating rates a tournament placement in its
// own transaction. Returns false without touching anything for
// placements past the podium.
func (b *Back) ProcessTournamentPlacementRating(
	playerID, tournamentID util.UUIDAsBlob,
	placement int,
) (update RatingUpdate, rated bool, _ error) {
	if err := b.transaction(func(tx *sqlx.Tx) (err error) {
		update, rated, err = b.processTournamentPlacementRating(tx, TournamentPlacement{
			TournamentID: tournamentID,
			PlayerID:     playerID,
			Placement:    placement,
		})
		return err
	}); err != nil {
		return RatingUpdate{}, false, err
	}

	return update, rated, nil
}

func initializeAllPlayerRatings(tx *sqlx.Tx) error {
	players, err := getPlayers(tx)
	if err != nil {
		return err
	}

	for _, player := range players {
		row := NewPlayerRating(player.ID)
		if err := row.upsert(tx); err != nil {
			return err
		}
	}

	return nil
}

// InitializeAllPlayerRatings writes the default rating for every
// registered player, overwriting any existing state.
func (b *Back) InitializeAllPlayerRatings() error {
	return b.transaction(initializeAllPlayerRatings)
}

func deleteAllRatings(tx *sqlx.Tx) error {
	if _, err := tx.Exec(`DELETE FROM "PlayerRatingHistory"`); err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM "PlayerRating"`); err != nil {
		return err
	}

	return nil
}

// Rerank wipes all ratings and replays the full match and placement
// history in chronological order, producing a deterministic rating for
// every player. Each record is rated in its own transaction: a failure
// aborts the rest of the batch but keeps the progress made so far.
func (b *Back) Rerank() error {
	start := time.Now()

	if err := b.transaction(func(tx *sqlx.Tx) error {
		if err := deleteAllRatings(tx); err != nil {
			return fmt.Errorf("unable to prune ratings: %w", err)
		}

		return initializeAllPlayerRatings(tx)
	}); err != nil {
		return err
	}

	var matches []Match
	if err := b.transaction(func(tx *sqlx.Tx) (err error) {
		matches, err = getMatches(tx)
		return err
	}); err != nil {
		return err
	}

	for k := range matches {
		if err := b.transaction(func(tx *sqlx.Tx) error {
			_, _, err := b.processMatchRating(tx, matches[k])
			return err
		}); err != nil {
			return fmt.Errorf("unable to rate match %s: %w", matches[k].ID, err)
		}
	}
	log.Printf("debug: rated %d matches", len(matches))

	var placements []TournamentPlacement
	if err := b.transaction(func(tx *sqlx.Tx) (err error) {
		placements, err = getPlacements(tx, true)
		return err
	}); err != nil {
		return err
	}

	rated := 0
	for k := range placements {
		if err := b.transaction(func(tx *sqlx.Tx) error {
			_, ok, err := b.processTournamentPlacementRating(tx, placements[k])
			if ok {
				rated++
			}
			return err
		}); err != nil {
			return fmt.Errorf("unable to rate placement %s: %w", placements[k].ID, err)
		}
	}
	log.Printf("debug: rated %d tournament placements", rated)

	log.Printf(
		"info: reranked %d matches and %d placements in %s",
		len(matches), rated, time.Since(start),
	)

	return nil
}
