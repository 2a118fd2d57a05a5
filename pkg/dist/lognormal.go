// Log-normal distribution: X such that ln(X) ~ Normal(mu, sigma)
package dist

import (
	"math"
	"math/rand/v2"

	"github.com/andrewh/timestat/pkg/mathx"
)

// LogNormal is parameterised by the mean and standard deviation of ln(X).
type LogNormal struct {
	mu, sigma float64
}

// NewLogNormal requires a finite mu and a positive finite sigma.
func NewLogNormal(mu, sigma float64) (LogNormal, error) {
	if err := checkFinite("mu", mu); err != nil {
		return LogNormal{}, err
	}
	if err := checkPositive("sigma", sigma); err != nil {
		return LogNormal{}, err
	}
	return LogNormal{mu: mu, sigma: sigma}, nil
}

func (l LogNormal) Mu() float64    { return l.mu }
func (l LogNormal) Sigma() float64 { return l.sigma }

func (l LogNormal) Mean() float64 {
	return math.Exp(l.mu + 0.5*l.sigma*l.sigma)
}

func (l LogNormal) Median() float64 {
	return math.Exp(l.mu)
}

func (l LogNormal) Mode() (float64, bool) {
	return math.Exp(l.mu - l.sigma*l.sigma), true
}

func (l LogNormal) Variance() float64 {
	s2 := l.sigma * l.sigma
	return math.Expm1(s2) * math.Exp(2*l.mu+s2)
}

func (l LogNormal) StdDev() float64 {
	return math.Sqrt(l.Variance())
}

func (l LogNormal) Density(x float64) float64 { return LogNormalPDF(x, l.mu, l.sigma) }
func (l LogNormal) CDF(x float64) float64     { return LogNormalCDF(x, l.mu, l.sigma) }

// Quantile returns exp of the normal quantile of ln(X).
func (l LogNormal) Quantile(p float64) (float64, error) {
	q, err := NormalQuantile(p, l.mu, l.sigma)
	if err != nil {
		return 0, err
	}
	return math.Exp(q), nil
}

func (l LogNormal) Random(r *rand.Rand) float64 {
	return math.Exp(r.NormFloat64()*l.sigma + l.mu)
}

func (l LogNormal) String() string {
	return "lognormal(mu=" + formatParam(l.mu) + ", sigma=" + formatParam(l.sigma) + ")"
}

// LogNormalPDF is the log-normal density at x; 0 for x <= 0.
func LogNormalPDF(x, mu, sigma float64) float64 {
	if x <= 0 {
		return 0
	}
	z := (math.Log(x) - mu) / sigma
	return math.Exp(-0.5*z*z) * mathx.InvSqrt2Pi / (sigma * x)
}

// LogNormalCDF is P(X <= x); 0 for x <= 0.
func LogNormalCDF(x, mu, sigma float64) float64 {
	if x <= 0 {
		return 0
	}
	z := (math.Log(x) - mu) / sigma
	if math.Abs(z) > 40 {
		if z < 0 {
			return 0
		}
		return 1
	}
	return 0.5 + 0.5*math.Erf(z/mathx.Sqrt2)
}
