// Shared numeric constants and closed-form curve helpers
// Used by the distribution package and by scoring code that needs smooth response curves
package mathx

import (
	"fmt"
	"math"
)

const (
	Sqrt2 = math.Sqrt2
	Ln2   = math.Ln2
)

// InvSqrt2Pi is 1/sqrt(2*pi), the normalising constant of the standard normal density.
var InvSqrt2Pi = 1 / math.Sqrt(2*math.Pi)

// Gaussian evaluates a*exp(-((x-b)/c)^2/2): a peak of height a centred at b with width c.
func Gaussian(x, a, b, c float64) float64 {
	d := (x - b) / c
	return a * math.Exp(-d*d/2)
}

// LogisticParams parametrises the generalised logistic (Richards) curve.
type LogisticParams struct {
	A float64 // lower asymptote
	K float64 // upper asymptote when C == 1
	B float64 // growth rate
	V float64 // shifts where maximum growth occurs; must be positive
	Q float64 // related to the value at t == 0
	C float64 // typically 1
}

// DefaultLogistic is the standard logistic sigmoid 1/(1+exp(-t)).
var DefaultLogistic = LogisticParams{A: 0, K: 1, B: 1, V: 1, Q: 1, C: 1}

// Logistic evaluates the generalised logistic function at t.
func Logistic(t float64, p LogisticParams) (float64, error) {
	if !(p.V > 0) {
		return 0, fmt.Errorf("logistic v must be positive, got %g", p.V)
	}
	return p.A + (p.K-p.A)/math.Pow(p.C+p.Q*math.Exp(-p.B*t), 1/p.V), nil
}
