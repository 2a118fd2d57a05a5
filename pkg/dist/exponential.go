// Exponential distribution with rate lambda
// Sampling uses the table-driven method of Ahrens and Dieter rather than inverting the cdf
package dist

import (
	"math"
	"math/rand/v2"

	"github.com/andrewh/timestat/pkg/mathx"
)

// expQi holds the partial sums of ln(2)^i / i! for i >= 1, ending at 1.
var expQi = exponentialTable()

func exponentialTable() []float64 {
	var qi []float64
	sum, term := 0.0, 1.0
	for i := 1; sum < 1; i++ {
		term *= mathx.Ln2 / float64(i)
		next := sum + term
		if next == sum {
			// The float sum stalled just below 1.
			next = 1
		}
		sum = next
		qi = append(qi, sum)
	}
	qi[len(qi)-1] = 1
	return qi
}

// Exponential has density lambda*exp(-lambda*x) on x >= 0.
type Exponential struct {
	lambda float64
}

// NewExponential requires a positive finite rate.
func NewExponential(lambda float64) (Exponential, error) {
	if err := checkPositive("lambda", lambda); err != nil {
		return Exponential{}, err
	}
	return Exponential{lambda: lambda}, nil
}

func (e Exponential) Lambda() float64 { return e.lambda }

func (e Exponential) Mean() float64         { return 1 / e.lambda }
func (e Exponential) Median() float64       { return mathx.Ln2 / e.lambda }
func (e Exponential) Mode() (float64, bool) { return 0, true }
func (e Exponential) StdDev() float64       { return 1 / e.lambda }
func (e Exponential) Variance() float64     { return 1 / (e.lambda * e.lambda) }

// Density is 0 for x < 0.
func (e Exponential) Density(x float64) float64 {
	if x < 0 {
		return 0
	}
	return e.lambda * math.Exp(-e.lambda*x)
}

func (e Exponential) CDF(x float64) float64 {
	if x <= 0 {
		return 0
	}
	return 1 - math.Exp(-x/e.Mean())
}

// Quantile returns -ln(1-p)/lambda, and +Inf at p = 1.
func (e Exponential) Quantile(p float64) (float64, error) {
	if err := checkProbability(p); err != nil {
		return 0, err
	}
	if p == 1 {
		return math.Inf(1), nil
	}
	return -math.Log(1-p) / e.lambda, nil
}

// Random draws from the distribution using the precomputed expQi table.
func (e Exponential) Random(r *rand.Rand) float64 {
	u := r.Float64()
	for u == 0 {
		u = r.Float64()
	}

	// Each halving of u below 1/2 adds ln(2) to the integer part.
	a := 0.0
	for u < 0.5 {
		a += expQi[0]
		u *= 2
	}
	u += u - 1

	if u <= expQi[0] {
		return e.Mean() * (a + u)
	}

	uMin := r.Float64()
	for i := 1; ; i++ {
		if u2 := r.Float64(); u2 < uMin {
			uMin = u2
		}
		if u <= expQi[i] {
			break
		}
	}
	return e.Mean() * (a + uMin*expQi[0])
}

func (e Exponential) String() string {
	return "exponential(lambda=" + formatParam(e.lambda) + ")"
}
