// Continuous uniform distribution on [min, max], including the single-point case
package dist

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/andrewh/timestat/pkg/random"
)

// Uniform spreads probability evenly over [Min, Max]. When Min == Max it is a
// point mass: the density is +Inf at the point and the CDF there is exactly 0.5.
type Uniform struct {
	min, max float64
}

// StandardUniform is Uniform(0, 1).
var StandardUniform = Uniform{min: 0, max: 1}

// NewUniform requires finite bounds with max >= min.
func NewUniform(min, max float64) (Uniform, error) {
	if err := checkFinite("min", min); err != nil {
		return Uniform{}, err
	}
	if err := checkFinite("max", max); err != nil {
		return Uniform{}, err
	}
	if max < min {
		return Uniform{}, fmt.Errorf("%w: max %v is less than min %v", ErrInvalidParameter, max, min)
	}
	return Uniform{min: min, max: max}, nil
}

func (u Uniform) Min() float64 { return u.min }
func (u Uniform) Max() float64 { return u.max }

func (u Uniform) Mean() float64   { return (u.min + u.max) / 2 }
func (u Uniform) Median() float64 { return u.Mean() }

// Mode reports false: every point of the support is equally likely.
func (u Uniform) Mode() (float64, bool) { return 0, false }

func (u Uniform) Variance() float64 {
	w := u.max - u.min
	return w * w / 12
}

func (u Uniform) StdDev() float64 { return math.Sqrt(u.Variance()) }

func (u Uniform) Density(x float64) float64 {
	switch {
	case x < u.min || x > u.max:
		return 0
	case u.max == u.min:
		return math.Inf(1)
	default:
		return 1 / (u.max - u.min)
	}
}

func (u Uniform) CDF(x float64) float64 {
	switch {
	case x < u.min:
		return 0
	case x > u.max:
		return 1
	case u.max == u.min:
		return 0.5
	default:
		return (x - u.min) / (u.max - u.min)
	}
}

func (u Uniform) Quantile(p float64) (float64, error) {
	if err := checkProbability(p); err != nil {
		return 0, err
	}
	switch {
	case p == 0 || u.max == u.min:
		return u.min, nil
	case p == 1:
		return u.max, nil
	default:
		return u.min + p*(u.max-u.min), nil
	}
}

// Random draws from [Min, Max). A point distribution returns Min without
// consuming randomness.
func (u Uniform) Random(r *rand.Rand) float64 {
	if u.max == u.min {
		return u.min
	}
	return random.Float64Range(r, u.min, u.max)
}

func (u Uniform) String() string {
	return "uniform(min=" + formatParam(u.min) + ", max=" + formatParam(u.max) + ")"
}
