// Sampler construction from configuration and single draws
// Continuous kinds carry a dist.Continuous model used by checks and descriptions
package sampler

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/andrewh/timestat/pkg/chrono"
	"github.com/andrewh/timestat/pkg/dist"
	"github.com/andrewh/timestat/pkg/interval"
	"github.com/andrewh/timestat/pkg/score"
	"github.com/andrewh/timestat/pkg/weights"
)

// Kind identifies what a sampler draws.
type Kind int

const (
	KindDistribution Kind = iota
	KindWeights
	KindWindow
	KindScore
)

func (k Kind) String() string {
	switch k {
	case KindDistribution:
		return "distribution"
	case KindWeights:
		return "weights"
	case KindWindow:
		return "window"
	case KindScore:
		return "score"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// MarshalText encodes the kind by name so stats serialise readably.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name written by MarshalText.
func (k *Kind) UnmarshalText(text []byte) error {
	for _, candidate := range []Kind{KindDistribution, KindWeights, KindWindow, KindScore} {
		if candidate.String() == string(text) {
			*k = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown sampler kind %q", text)
}

// Sampler draws values of one configured kind.
type Sampler struct {
	Name string
	Kind Kind
	// Dist models the drawn values in their native units (seconds for
	// durations and windows). It is nil for weights samplers.
	Dist dist.Continuous
	// Unit is the unit draws are reported in; the zero Unit for plain numbers.
	Unit    chrono.Unit
	Weights weights.Weights[string]
	Window  chrono.Interval

	zscore    bool
	mu, sigma float64
	// native is the unit Dist is expressed in, when durational.
	native chrono.Unit
}

// NewSampler builds a sampler from its configuration.
func NewSampler(sc SamplerConfig) (*Sampler, error) {
	kinds := sc.kinds()
	switch len(kinds) {
	case 0:
		return nil, fmt.Errorf("one of distribution, weights, window or score is required")
	case 1:
	default:
		names := make([]string, len(kinds))
		for i, k := range kinds {
			names[i] = k.String()
		}
		return nil, fmt.Errorf("only one of %s may be set", strings.Join(names, ", "))
	}
	if (sc.Mu != nil || sc.Sigma != nil) && kinds[0] != KindScore {
		return nil, fmt.Errorf("mu and sigma only apply to zscore samplers")
	}

	s := &Sampler{Name: sc.Name, Kind: kinds[0]}
	var err error
	switch s.Kind {
	case KindDistribution:
		err = s.buildDistribution(sc)
	case KindWeights:
		err = s.buildWeights(sc)
	case KindWindow:
		err = s.buildWindow(sc)
	case KindScore:
		err = s.buildScore(sc)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Sampler) buildDistribution(sc SamplerConfig) error {
	d, native, err := ParseDistribution(sc.Distribution)
	if err != nil {
		return fmt.Errorf("invalid distribution: %w", err)
	}
	s.Dist = d
	if !IsDuration(native) {
		if sc.Unit != "" {
			return fmt.Errorf("unit %q given for a distribution without durations", sc.Unit)
		}
		return nil
	}
	s.native = native
	s.Unit, err = lookupUnit(sc.Unit, chrono.Milliseconds)
	return err
}

func (s *Sampler) buildWeights(sc SamplerConfig) error {
	if sc.Unit != "" {
		return fmt.Errorf("unit does not apply to weights")
	}
	var b weights.Builder[string]
	for _, label := range sortedKeys(sc.Weights) {
		if err := b.Set(label, sc.Weights[label]); err != nil {
			return fmt.Errorf("invalid weights: %w", err)
		}
	}
	for _, label := range sortedKeys(sc.Probabilities) {
		if err := b.SetProbability(label, sc.Probabilities[label]); err != nil {
			return fmt.Errorf("invalid probabilities: %w", err)
		}
	}
	w, err := b.Build()
	if err != nil {
		return fmt.Errorf("invalid weights: %w", err)
	}
	s.Weights = w
	return nil
}

func (s *Sampler) buildWindow(sc SamplerConfig) error {
	wc := sc.Window
	start, err := parseInstant(wc.Start)
	if err != nil {
		return fmt.Errorf("window start: %w", err)
	}

	openness := interval.DefaultOpenness
	if wc.Openness != "" {
		if openness, err = interval.ParseOpenness(wc.Openness); err != nil {
			return fmt.Errorf("window: %w", err)
		}
	}

	var end chrono.Instant
	switch {
	case wc.End != "" && wc.Duration != "":
		return fmt.Errorf("window takes end or duration, not both")
	case wc.End != "":
		if end, err = parseInstant(wc.End); err != nil {
			return fmt.Errorf("window end: %w", err)
		}
	case wc.Duration != "":
		d, err := chrono.ParseDuration(wc.Duration)
		if err != nil {
			return fmt.Errorf("window duration: %w", err)
		}
		end = start.Add(d)
	default:
		return fmt.Errorf("window requires end or duration")
	}
	if !end.IsFinite() {
		return fmt.Errorf("window must be finite")
	}

	s.Window = chrono.Between(start, end, openness)
	if s.Window.IsEmpty() {
		return fmt.Errorf("window %s is empty", s.Window)
	}
	width := s.Window.Duration().InSeconds()
	if s.Dist, err = dist.NewUniform(0, width); err != nil {
		return fmt.Errorf("window: %w", err)
	}
	s.native = chrono.Seconds
	s.Unit, err = lookupUnit(sc.Unit, chrono.Seconds)
	return err
}

func (s *Sampler) buildScore(sc SamplerConfig) error {
	if sc.Unit != "" {
		return fmt.Errorf("unit does not apply to scores")
	}
	switch strings.ToLower(sc.Score) {
	case "rating":
		if sc.Mu != nil || sc.Sigma != nil {
			return fmt.Errorf("mu and sigma only apply to zscore samplers")
		}
		s.Dist = dist.StandardUniform
	case "zscore":
		s.zscore = true
		s.mu, s.sigma = 0, 1
		if sc.Mu != nil {
			s.mu = *sc.Mu
		}
		if sc.Sigma != nil {
			s.sigma = *sc.Sigma
		}
		d, err := dist.NewNormal(s.mu, s.sigma)
		if err != nil {
			return fmt.Errorf("zscore: %w", err)
		}
		s.Dist = d
	default:
		return fmt.Errorf("unknown score %q (want rating or zscore)", sc.Score)
	}
	return nil
}

// Durational reports whether draws are durations or window offsets.
func (s *Sampler) Durational() bool {
	return IsDuration(s.native)
}

// Draw produces one value.
func (s *Sampler) Draw(r *rand.Rand) Draw {
	d, _ := s.draw(r)
	return d
}

// draw also returns the value in the units of s.Dist, or NaN for weights.
func (s *Sampler) draw(r *rand.Rand) (Draw, float64) {
	out := Draw{Sampler: s.Name, Kind: s.Kind}
	if IsDuration(s.Unit) {
		out.Unit = s.Unit.String()
	}

	var x float64
	switch s.Kind {
	case KindWeights:
		out.Label = s.Weights.Random(r)
		out.Tail, _ = s.Weights.Probability(out.Label)
		return out, math.NaN()
	case KindWindow:
		out.Instant = s.Window.Random(r)
		offset := out.Instant.Sub(s.Window.Min())
		x = offset.In(s.native)
		out.Value = offset.In(s.Unit)
	case KindScore:
		if s.zscore {
			x = score.RandomZScore(r, s.mu, s.sigma).Gaussian()
		} else {
			x = score.RandomRating(r).Absolute()
		}
		out.Value = x
	default:
		x = s.Dist.Random(r)
		if s.Durational() {
			// Durations drawn from unbounded families are clamped to zero.
			x = max(x, 0)
			out.Value = s.native.Of(x).In(s.Unit)
		} else {
			out.Value = x
		}
	}
	out.Tail = 1 - s.Dist.CDF(x)
	return out, x
}

// Describe renders the sampler's model in one line.
func (s *Sampler) Describe() string {
	switch s.Kind {
	case KindWeights:
		return s.Weights.String()
	case KindWindow:
		return s.Window.String()
	case KindScore:
		if s.zscore {
			return "zscore(mu=" + strconv.FormatFloat(s.mu, 'g', -1, 64) + ", sigma=" + strconv.FormatFloat(s.sigma, 'g', -1, 64) + ")"
		}
		return "rating"
	default:
		if s.Durational() {
			return fmt.Sprintf("%v in %s", s.Dist, s.native.Name())
		}
		return fmt.Sprint(s.Dist)
	}
}

// FormatValue renders a value in the sampler's reporting units.
func (s *Sampler) FormatValue(v float64) string {
	if IsDuration(s.Unit) {
		return s.Unit.Of(v).Format(s.Unit)
	}
	return strconv.FormatFloat(v, 'g', 6, 64)
}

// ToUnit converts a value from the units of Dist into the reporting units.
func (s *Sampler) ToUnit(x float64) float64 {
	if !s.Durational() {
		return x
	}
	return s.native.Of(x).In(s.Unit)
}

func lookupUnit(name string, def chrono.Unit) (chrono.Unit, error) {
	if name == "" {
		return def, nil
	}
	u, ok := chrono.LookupUnit(name)
	if !ok {
		return chrono.Unit{}, fmt.Errorf("unknown unit %q", name)
	}
	return u, nil
}

// parseInstant accepts RFC 3339 timestamps and "epoch".
func parseInstant(s string) (chrono.Instant, error) {
	if strings.EqualFold(strings.TrimSpace(s), "epoch") {
		return chrono.Epoch, nil
	}
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(s))
	if err != nil {
		return chrono.Instant{}, fmt.Errorf("invalid instant %q: %w", s, err)
	}
	return chrono.FromTime(t), nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
