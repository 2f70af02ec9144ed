// Package rating implements the Glicko-2 rating system operating
// directly on the original rating scale.
// See https://www.glicko.net/glicko/glicko2.pdf for the reference
// algorithm, this implementation folds the µ/φ conversion into its
// constants.
package rating

import "math"

// q is the Glicko scaling constant.
var q = math.Log(10) / 400 // nolint:gochecknoglobals

// Parameters hold the volatility solver policy. The zero value is not
// usable, start from DefaultParameters.
type Parameters struct {
	// Tau constrains how fast volatility can change over time.
	Tau float64

	// MaxIterations caps the Newton-Raphson volatility solve, past it
	// the best estimate so far is used as-is.
	MaxIterations int

	// Epsilon is the step size under which the solve is considered
	// converged.
	Epsilon float64
}

func DefaultParameters() Parameters {
	return Parameters{
		Tau:           0.5,
		MaxIterations: 100,
		Epsilon:       1e-6,
	}
}

// g dampens the weight of an opponent by their rating deviation.
func g(rd float64) float64 {
	return 1 / math.Sqrt(1+3*q*q*rd*rd/(math.Pi*math.Pi))
}

// ExpectedScore returns the expected outcome of a match against an
// opponent with the given rating and deviation, between 0 and 1.
func ExpectedScore(r, opponentRating, opponentDeviation float64) float64 {
	return 1 / (1 + math.Pow(10, -g(opponentDeviation)*(r-opponentRating)/400))
}

// dSquared is the estimated variance of the rating based only on the
// outcomes of the period. Undefined for an empty period.
func dSquared(r Rating, results []Result) float64 {
	var sum float64
	for _, v := range results {
		gi := g(v.OpponentDeviation)
		e := ExpectedScore(r.Rating, v.OpponentRating, v.OpponentDeviation)
		sum += gi * gi * e * (1 - e)
	}

	return 1 / (q * q * sum)
}

// Update returns the rating after one rating period containing the
// given results. An empty period returns the input unchanged, a player
// who did not compete keeps their rating (deviation inflation for
// inactivity is Decay, not Update).
func (p Parameters) Update(r Rating, results []Result) Rating {
	if len(results) == 0 {
		return r
	}

	d2 := dSquared(r, results)

	var sum float64
	for _, v := range results {
		e := ExpectedScore(r.Rating, v.OpponentRating, v.OpponentDeviation)
		sum += g(v.OpponentDeviation) * (v.Score - e)
	}

	return Rating{
		Rating:     r.Rating + (q/(1/d2+1/(r.Deviation*r.Deviation)))*sum,
		Deviation:  math.Sqrt(1 / (1/(r.Deviation*r.Deviation) + 1/d2)),
		Volatility: p.solveVolatility(r, results, d2),
	}
}

// Update is the package-level shorthand using DefaultParameters.
func Update(r Rating, results []Result) Rating {
	return DefaultParameters().Update(r, results)
}

// solveVolatility runs a 1-D Newton-Raphson root-find for the new
// volatility. Non-convergence is not fatal, the estimate at the last
// iteration is returned.
func (p Parameters) solveVolatility(r Rating, results []Result, d2 float64) float64 {
	var sum float64
	for _, v := range results {
		gi := g(v.OpponentDeviation)
		e := ExpectedScore(r.Rating, v.OpponentRating, v.OpponentDeviation)
		diff := v.Score - e
		sum += gi * gi * diff * diff
	}

	a := math.Log(r.Volatility * r.Volatility)

	f := func(x float64) float64 {
		return math.Exp(x)*(sum-d2)/(2*d2*d2) - (x-a)/(p.Tau*p.Tau)
	}
	dfdx := func(x float64) float64 {
		return math.Exp(x)*(sum-d2)/(d2*d2) - 1/(p.Tau*p.Tau)
	}

	x, prev := a, a
	for i := 0; i < p.MaxIterations; i++ {
		denominator := dfdx(x)
		// A flat derivative would make the step blow up, bail out with
		// what we have.
		if math.Abs(denominator) < 1e-10 {
			break
		}

		x -= f(x) / denominator

		if math.Abs(x-prev) < p.Epsilon {
			break
		}
		prev = x
	}

	return math.Exp(x / 2)
}

// RatingChange returns the rating delta a single result against the
// given opponent would cause, without touching deviation or volatility.
func (p Parameters) RatingChange(r Rating, opponentRating, opponentDeviation, score float64) float64 {
	updated := p.Update(r, []Result{{
		OpponentRating:    opponentRating,
		OpponentDeviation: opponentDeviation,
		Score:             score,
	}})

	return updated.Rating - r.Rating
}

// Decay widens the deviation of a player who sat out the given number
// of rating periods, capped at MaxDeviation. Rating and volatility are
// left untouched.
func Decay(r Rating, periods int) Rating {
	rd := math.Sqrt(r.Deviation*r.Deviation + r.Volatility*r.Volatility*float64(periods))
	if rd > MaxDeviation {
		rd = MaxDeviation
	}

	r.Deviation = rd

	return r
}
