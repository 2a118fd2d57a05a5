// Run statistics: per-sampler moments, extremes and label frequencies
// Moments are accumulated online so runs of any length use constant memory
package sampler

import (
	"math"
	"time"
)

// Stats holds counters collected during a run.
type Stats struct {
	Samplers    []SamplerStats `json:"samplers"`
	Draws       int64          `json:"draws"`
	ElapsedMs   int64          `json:"elapsed_ms"`
	DrawsPerSec float64        `json:"draws_per_second"`
	Cancelled   bool           `json:"cancelled,omitempty"`
}

// SamplerStats summarises the draws of one sampler. Moments are in the
// sampler's reporting unit; weights samplers report label counts only.
type SamplerStats struct {
	Name   string           `json:"name"`
	Kind   Kind             `json:"kind"`
	Unit   string           `json:"unit,omitempty"`
	Count  int64            `json:"count"`
	Mean   float64          `json:"mean,omitempty"`
	StdDev float64          `json:"stddev,omitempty"`
	Min    float64          `json:"min,omitempty"`
	Max    float64          `json:"max,omitempty"`
	Labels map[string]int64 `json:"labels,omitempty"`
}

// Summary accumulates count, mean, variance and extremes with Welford's method.
type Summary struct {
	n        int64
	mean, m2 float64
	min, max float64
}

// Add records one value.
func (s *Summary) Add(x float64) {
	s.n++
	if s.n == 1 {
		s.min, s.max = x, x
	} else {
		s.min = min(s.min, x)
		s.max = max(s.max, x)
	}
	delta := x - s.mean
	s.mean += delta / float64(s.n)
	s.m2 += delta * (x - s.mean)
}

func (s *Summary) Count() int64 { return s.n }

// Mean is 0 before any value is added.
func (s *Summary) Mean() float64 { return s.mean }

// StdDev is the sample standard deviation, 0 for fewer than two values.
func (s *Summary) StdDev() float64 {
	if s.n < 2 {
		return 0
	}
	return math.Sqrt(s.m2 / float64(s.n-1))
}

func (s *Summary) Min() float64 { return s.min }
func (s *Summary) Max() float64 { return s.max }

// collector gathers stats for one sampler during a run.
type collector struct {
	sampler *Sampler
	summary Summary
	labels  map[string]int64
}

func newCollector(s *Sampler) *collector {
	c := &collector{sampler: s}
	if s.Kind == KindWeights {
		c.labels = make(map[string]int64, s.Weights.Len())
	}
	return c
}

func (c *collector) add(d Draw) {
	if c.labels != nil {
		c.labels[d.Label]++
		c.summary.n++
		return
	}
	c.summary.Add(d.Value)
}

func (c *collector) stats() SamplerStats {
	out := SamplerStats{
		Name:   c.sampler.Name,
		Kind:   c.sampler.Kind,
		Count:  c.summary.Count(),
		Labels: c.labels,
	}
	if IsDuration(c.sampler.Unit) {
		out.Unit = c.sampler.Unit.String()
	}
	if c.labels == nil && out.Count > 0 {
		out.Mean = c.summary.Mean()
		out.StdDev = c.summary.StdDev()
		out.Min = c.summary.Min()
		out.Max = c.summary.Max()
	}
	return out
}

func finaliseStats(stats *Stats, startTime time.Time) {
	elapsed := time.Since(startTime)
	stats.ElapsedMs = elapsed.Milliseconds()
	secs := elapsed.Seconds()
	if secs > 0 {
		stats.DrawsPerSec = float64(stats.Draws) / secs
	}
}
