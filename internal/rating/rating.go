package rating

// Glicko-2 base values, given to every player before their first match.
const (
	DefaultRating     = 1500.0
	DefaultDeviation  = 350.0
	DefaultVolatility = 0.06

	// MaxDeviation is the ceiling the deviation can decay back to, a
	// player at MaxDeviation is as unknown as a fresh one.
	MaxDeviation = 350.0
)

// Rating is a Glicko-2 strength estimate expressed on the classic
// 0-3000 scale.
type Rating struct {
	Rating     float64
	Deviation  float64
	Volatility float64
}

// Default returns the rating given to a player we never saw before.
func Default() Rating {
	return Rating{
		Rating:     DefaultRating,
		Deviation:  DefaultDeviation,
		Volatility: DefaultVolatility,
	}
}

// Scores of a single match from the rated player's point of view.
const (
	ScoreLoss = 0.0
	ScoreDraw = 0.5
	ScoreWin  = 1.0
)

// Result is one match inside a rating period, seen from the rated
// player's side.
type Result struct {
	OpponentRating    float64
	OpponentDeviation float64
	Score             float64 // ScoreLoss, ScoreDraw, or ScoreWin
}
