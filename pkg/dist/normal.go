// Normal (Gaussian) distribution and its package-level pdf, cdf and quantile functions
package dist

import (
	"math"
	"math/rand/v2"

	"github.com/andrewh/timestat/pkg/mathx"
)

// Normal is the Gaussian distribution with mean Mu and standard deviation Sigma.
type Normal struct {
	mu, sigma float64
}

// StandardNormal is Normal(0, 1).
var StandardNormal = Normal{mu: 0, sigma: 1}

// NewNormal requires a finite mu and a positive finite sigma.
func NewNormal(mu, sigma float64) (Normal, error) {
	if err := checkFinite("mu", mu); err != nil {
		return Normal{}, err
	}
	if err := checkPositive("sigma", sigma); err != nil {
		return Normal{}, err
	}
	return Normal{mu: mu, sigma: sigma}, nil
}

func (n Normal) Mu() float64    { return n.mu }
func (n Normal) Sigma() float64 { return n.sigma }

func (n Normal) Mean() float64         { return n.mu }
func (n Normal) Median() float64       { return n.mu }
func (n Normal) Mode() (float64, bool) { return n.mu, true }
func (n Normal) StdDev() float64       { return n.sigma }
func (n Normal) Variance() float64     { return n.sigma * n.sigma }

func (n Normal) Density(x float64) float64 {
	return NormalPDF(x, n.mu, n.sigma)
}

func (n Normal) CDF(x float64) float64 {
	return NormalCDF(x, n.mu, n.sigma)
}

func (n Normal) Quantile(p float64) (float64, error) {
	return NormalQuantile(p, n.mu, n.sigma)
}

// Random scales a standard normal deviate by Sigma and shifts it by Mu.
func (n Normal) Random(r *rand.Rand) float64 {
	return r.NormFloat64()*n.sigma + n.mu
}

func (n Normal) String() string {
	return "normal(mu=" + formatParam(n.mu) + ", sigma=" + formatParam(n.sigma) + ")"
}

// NormalPDF is the normal density at x.
func NormalPDF(x, mu, sigma float64) float64 {
	z := (x - mu) / sigma
	return math.Exp(-0.5*z*z) * mathx.InvSqrt2Pi / sigma
}

// NormalCDF is P(X <= x) for X ~ Normal(mu, sigma). Beyond 40 standard
// deviations it returns exactly 0 or 1.
func NormalCDF(x, mu, sigma float64) float64 {
	z := (x - mu) / sigma
	if math.Abs(z) > 40 {
		if z < 0 {
			return 0
		}
		return 1
	}
	return 0.5 * math.Erfc(-z/mathx.Sqrt2)
}

// NormalQuantile returns mu + sigma*sqrt(2)*erfinv(2p-1). p of 0 and 1 give
// the infinities.
func NormalQuantile(p, mu, sigma float64) (float64, error) {
	if err := checkProbability(p); err != nil {
		return 0, err
	}
	return mu + sigma*mathx.Sqrt2*math.Erfinv(2*p-1), nil
}
