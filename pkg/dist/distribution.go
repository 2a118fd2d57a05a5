// Package dist provides closed-form probability distributions that can also be
// sampled. Every distribution is an immutable parameter set; sampling reads from
// a caller-supplied *rand.Rand and has no other state.
package dist

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/andrewh/timestat/pkg/random"
)

var (
	// ErrInvalidParameter is returned by constructors given non-finite or
	// out-of-domain parameters.
	ErrInvalidParameter = errors.New("invalid distribution parameter")

	// ErrDomain is returned by Quantile for probabilities outside [0, 1].
	ErrDomain = errors.New("probability outside [0, 1]")
)

// Continuous is a distribution over float64.
type Continuous interface {
	random.Value[float64]

	Mean() float64
	Median() float64
	// Mode returns false when the distribution has no unique mode.
	Mode() (float64, bool)
	StdDev() float64
	Variance() float64

	Density(x float64) float64
	// CDF returns P(X <= x). It is non-decreasing, tends to 0 as x tends to
	// negative infinity and to 1 as x tends to positive infinity.
	CDF(x float64) float64
	// Quantile is the inverse of CDF, defined for p in [0, 1].
	Quantile(p float64) (float64, error)
}

// Between returns P(x0 < X <= x1).
func Between(d Continuous, x0, x1 float64) float64 {
	switch {
	case math.IsInf(x0, -1):
		return d.CDF(x1)
	case math.IsInf(x1, 1):
		return 1 - d.CDF(x0)
	default:
		return d.CDF(x1) - d.CDF(x0)
	}
}

func checkProbability(p float64) error {
	if !(p >= 0 && p <= 1) {
		return fmt.Errorf("%w: %v", ErrDomain, p)
	}
	return nil
}

func checkFinite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s must be finite, got %v", ErrInvalidParameter, name, v)
	}
	return nil
}

func checkPositive(name string, v float64) error {
	if err := checkFinite(name, v); err != nil {
		return err
	}
	if v <= 0 {
		return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidParameter, name, v)
	}
	return nil
}

func formatParam(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
