// Conformance checks comparing empirical draws with each sampler's model
// Deviations are measured in units of the statistic's per-draw standard deviation
package sampler

import (
	"math"
	"math/rand/v2"
)

const (
	// DefaultCheckSamples is the number of draws per sampler when unset.
	DefaultCheckSamples = 10_000
	// DefaultTolerance allows deviations of 5% of a standard deviation.
	DefaultTolerance = 0.05
)

// CheckResult holds the outcome of a single statistic check.
type CheckResult struct {
	Sampler string
	// Name is "mean", "stddev" or "p(<label>)".
	Name     string
	Pass     bool
	Skipped  bool
	Expected float64
	Actual   float64
	// Limit is the largest deviation that passes.
	Limit   float64
	Samples int
}

// CheckOptions configures sampling for Check.
type CheckOptions struct {
	Samples int
	// Seed makes checks reproducible; 0 means a random seed.
	Seed      uint64
	Tolerance float64
}

// Check draws Samples values from each sampler and compares the sample mean
// and standard deviation, or label frequencies for weights, with the model.
// Statistics whose model value is not finite are reported as skipped.
func Check(samplers []*Sampler, opts CheckOptions) []CheckResult {
	if opts.Samples <= 0 {
		opts.Samples = DefaultCheckSamples
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = DefaultTolerance
	}
	seed := opts.Seed
	if seed == 0 {
		seed = rand.Uint64() //nolint:gosec // sampling, not security-sensitive
	}

	var results []CheckResult
	for i, s := range samplers {
		rng := rand.New(rand.NewPCG(seed, uint64(i))) //nolint:gosec // sampling, not security-sensitive
		if s.Kind == KindWeights {
			results = append(results, checkWeights(s, rng, opts)...)
		} else {
			results = append(results, checkMoments(s, rng, opts)...)
		}
	}
	return results
}

func checkMoments(s *Sampler, rng *rand.Rand, opts CheckOptions) []CheckResult {
	var sum Summary
	for range opts.Samples {
		_, x := s.draw(rng)
		sum.Add(x)
	}

	sd := s.Dist.StdDev()
	limit := opts.Tolerance * sd
	return []CheckResult{
		s.compare("mean", s.Dist.Mean(), sum.Mean(), limit, opts.Samples),
		s.compare("stddev", sd, sum.StdDev(), limit, opts.Samples),
	}
}

// compare builds a result, converting native values to reporting units.
func (s *Sampler) compare(name string, expected, actual, limit float64, samples int) CheckResult {
	r := CheckResult{
		Sampler:  s.Name,
		Name:     name,
		Expected: s.ToUnit(expected),
		Actual:   s.ToUnit(actual),
		Limit:    s.ToUnit(limit),
		Samples:  samples,
	}
	if math.IsNaN(expected) || math.IsInf(expected, 0) || math.IsNaN(limit) || math.IsInf(limit, 0) {
		r.Skipped = true
		r.Pass = true
		return r
	}
	r.Pass = math.Abs(actual-expected) <= limit
	return r
}

func checkWeights(s *Sampler, rng *rand.Rand, opts CheckOptions) []CheckResult {
	counts := make(map[string]int, s.Weights.Len())
	for range opts.Samples {
		d, _ := s.draw(rng)
		counts[d.Label]++
	}

	var results []CheckResult
	for _, e := range s.Weights.Entries() {
		p := e.Weight / s.Weights.Total()
		f := float64(counts[e.Label]) / float64(opts.Samples)
		limit := opts.Tolerance * math.Sqrt(p*(1-p))
		results = append(results, CheckResult{
			Sampler:  s.Name,
			Name:     "p(" + e.Label + ")",
			Pass:     math.Abs(f-p) <= limit,
			Expected: p,
			Actual:   f,
			Limit:    limit,
			Samples:  opts.Samples,
		})
	}
	return results
}
