// Package score expresses comparative strength on two interchangeable scales:
// a linear Rating in [0, 1] and a standard-normal ZScore. Conversion between
// them goes through the standard normal CDF and its inverse.
package score

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/andrewh/timestat/pkg/dist"
)

// ErrOutOfRange is returned by NewRating for values outside [0, 1].
var ErrOutOfRange = errors.New("rating must be within [0, 1]")

// Score is a strength that can be read on either scale.
type Score interface {
	// Absolute is the linear value in [0, 1].
	Absolute() float64
	// Gaussian is the z-score.
	Gaussian() float64
	ToRating() Rating
	ToZScore() ZScore
}

// Rating stores the linear value. A plain conversion such as Rating(1.2) is not
// checked; use NewRating to validate.
type Rating float64

// ZScore stores the standard-normal value.
type ZScore float64

// New returns a Rating as a Score.
func New(rating float64) Score {
	return Rating(rating)
}

// NewRating validates that v lies in [0, 1].
func NewRating(v float64) (Rating, error) {
	if !(v >= 0 && v <= 1) {
		return 0, fmt.Errorf("%w: %v", ErrOutOfRange, v)
	}
	return Rating(v), nil
}

func (r Rating) Absolute() float64 { return float64(r) }

// Gaussian is the standard normal quantile of the rating; NaN outside [0, 1].
func (r Rating) Gaussian() float64 {
	z, err := dist.NormalQuantile(float64(r), 0, 1)
	if err != nil {
		return math.NaN()
	}
	return z
}

func (r Rating) ToRating() Rating { return r }
func (r Rating) ToZScore() ZScore { return ZScore(r.Gaussian()) }

func (z ZScore) Absolute() float64 { return dist.NormalCDF(float64(z), 0, 1) }
func (z ZScore) Gaussian() float64 { return float64(z) }
func (z ZScore) ToRating() Rating  { return Rating(z.Absolute()) }
func (z ZScore) ToZScore() ZScore  { return z }

// RandomRating draws a rating uniformly from [0, 1).
func RandomRating(r *rand.Rand) Rating {
	return Rating(r.Float64())
}

// RandomRatingOrMid is RandomRating, or 0.5 when r is nil.
func RandomRatingOrMid(r *rand.Rand) Rating {
	if r == nil {
		return 0.5
	}
	return RandomRating(r)
}

// RandomScore draws a uniform rating as a Score.
func RandomScore(r *rand.Rand) Score {
	return RandomRating(r)
}

// RandomScoreOrMid is RandomScore, or a rating of 0.5 when r is nil.
func RandomScoreOrMid(r *rand.Rand) Score {
	return RandomRatingOrMid(r)
}

// RandomZScore draws from Normal(mu, sigma).
func RandomZScore(r *rand.Rand, mu, sigma float64) ZScore {
	return ZScore(r.NormFloat64()*sigma + mu)
}

// RandomZScoreOrMu is RandomZScore, or mu when r is nil.
func RandomZScoreOrMu(r *rand.Rand, mu, sigma float64) ZScore {
	if r == nil {
		return ZScore(mu)
	}
	return RandomZScore(r, mu, sigma)
}
