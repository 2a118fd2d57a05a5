package main

import (
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"github.com/andrewh/timestat/pkg/sampler"
	"github.com/spf13/cobra"
)

func previewCmd() *cobra.Command {
	var (
		output  string
		samples int
		bins    int
		seed    uint64
	)

	cmd := &cobra.Command{
		Use:   "preview <samplers.yaml> <sampler>",
		Short: "Render a histogram of draws as an SVG chart",
		Long: "Render a histogram of draws from one sampler as an SVG chart.\n\n" +
			"Continuous samplers are overlaid with their model density; weights\n" +
			"samplers are drawn as one bar per label beside its model probability.",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 {
				return fmt.Errorf("missing sampler file or name\n\nUsage: timestat preview <samplers.yaml> <sampler>")
			}
			return cobra.ExactArgs(2)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if samples <= 0 || bins <= 0 {
				return fmt.Errorf("--samples and --bins must be positive")
			}
			return runPreview(cmd, args[0], args[1], previewOptions{
				output:  output,
				samples: samples,
				bins:    bins,
				seed:    seed,
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file path (default: stdout)")
	cmd.Flags().IntVar(&samples, "samples", 10_000, "number of draws")
	cmd.Flags().IntVar(&bins, "bins", 40, "histogram bins for continuous samplers")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed (0 = random)")

	return cmd
}

type previewOptions struct {
	output  string
	samples int
	bins    int
	seed    uint64
}

func runPreview(cmd *cobra.Command, configPath, name string, opts previewOptions) error {
	samplers, _, err := loadSamplers(configPath)
	if err != nil {
		return err
	}
	var s *sampler.Sampler
	for _, candidate := range samplers {
		if candidate.Name == name {
			s = candidate
			break
		}
	}
	if s == nil {
		return fmt.Errorf("unknown sampler %q in %s", name, configPath)
	}

	seed := opts.seed
	if seed == 0 {
		seed = rand.Uint64() //nolint:gosec // sampling, not security-sensitive
	}
	rng := rand.New(rand.NewPCG(seed, 0)) //nolint:gosec // sampling, not security-sensitive

	var chart histogram
	if s.Kind == sampler.KindWeights {
		chart = labelHistogram(s, rng, opts.samples)
	} else {
		chart = valueHistogram(s, rng, opts.samples, opts.bins)
	}
	chart.title = fmt.Sprintf("%s: %s", s.Name, s.Describe())

	var w io.Writer = cmd.OutOrStdout()
	if opts.output != "" {
		f, err := os.Create(opts.output) //nolint:gosec // user-supplied output path is expected
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close() //nolint:errcheck // best-effort close on write
		w = f
		chart.title = filepath.Base(configPath) + " " + chart.title
	}

	return renderSVG(w, chart)
}

// bar is one histogram column. Model is the expected height, or NaN if unknown.
type bar struct {
	Label string
	Freq  float64
	Model float64
}

type histogram struct {
	title  string
	xLabel string
	bars   []bar
}

func labelHistogram(s *sampler.Sampler, rng *rand.Rand, n int) histogram {
	counts := make(map[string]int)
	for range n {
		counts[s.Draw(rng).Label]++
	}
	h := histogram{xLabel: "label"}
	for _, e := range s.Weights.Entries() {
		h.bars = append(h.bars, bar{
			Label: e.Label,
			Freq:  float64(counts[e.Label]) / float64(n),
			Model: e.Weight / s.Weights.Total(),
		})
	}
	return h
}

// valueHistogram bins draws between the 0.5% and 99.5% model quantiles, or
// the observed range when those are unbounded. The model height of each bin
// is its probability mass.
func valueHistogram(s *sampler.Sampler, rng *rand.Rand, n, bins int) histogram {
	lo, hi := binRange(s, rng, n)
	if hi <= lo {
		hi = lo + 1
	}
	width := (hi - lo) / float64(bins)

	counts := make([]int, bins)
	for range n {
		x := s.Draw(rng).Value
		i := int((x - lo) / width)
		if i < 0 || i >= bins {
			if x == hi {
				i = bins - 1
			} else {
				continue
			}
		}
		counts[i]++
	}

	h := histogram{xLabel: "value"}
	if s.Durational() {
		h.xLabel = s.Unit.Name()
	}
	for i, c := range counts {
		x0 := lo + float64(i)*width
		x1 := x0 + width
		h.bars = append(h.bars, bar{
			Label: s.FormatValue(x0),
			Freq:  float64(c) / float64(n),
			Model: s.Dist.CDF(fromUnit(s, x1)) - s.Dist.CDF(fromUnit(s, x0)),
		})
	}
	return h
}

func binRange(s *sampler.Sampler, rng *rand.Rand, n int) (float64, float64) {
	lo, errLo := s.Dist.Quantile(0.005)
	hi, errHi := s.Dist.Quantile(0.995)
	if errLo == nil && errHi == nil && !math.IsInf(lo, 0) && !math.IsInf(hi, 0) {
		lo, hi = s.ToUnit(lo), s.ToUnit(hi)
		if s.Durational() {
			lo = max(lo, 0)
		}
		return lo, hi
	}

	// Probe the same rng; the histogram draws that follow stay reproducible.
	var sum sampler.Summary
	for range min(n, 1000) {
		sum.Add(s.Draw(rng).Value)
	}
	return sum.Min(), sum.Max()
}

// fromUnit inverts Sampler.ToUnit.
func fromUnit(s *sampler.Sampler, v float64) float64 {
	return v / s.ToUnit(1)
}

// SVG chart dimensions
const (
	svgWidth      = 800
	svgHeight     = 400
	marginTop     = 40
	marginRight   = 20
	marginBottom  = 50
	marginLeft    = 70
	plotWidth     = svgWidth - marginLeft - marginRight
	plotHeight    = svgHeight - marginTop - marginBottom
	gridLines     = 5
	maxTickLabels = 10
)

func renderSVG(w io.Writer, h histogram) error {
	if len(h.bars) == 0 {
		return fmt.Errorf("no bins to render")
	}

	maxFreq := 0.0
	for _, b := range h.bars {
		maxFreq = max(maxFreq, b.Freq)
		if !math.IsNaN(b.Model) {
			maxFreq = max(maxFreq, b.Model)
		}
	}
	if maxFreq == 0 {
		maxFreq = 1
	}
	maxFreq *= 1.1 // headroom

	var b strings.Builder
	b.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d">`, svgWidth, svgHeight, svgWidth, svgHeight))
	b.WriteString("\n<style>\n")
	b.WriteString("  text { font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; fill: #333; }\n")
	b.WriteString("  .title { font-size: 14px; font-weight: 600; }\n")
	b.WriteString("  .axis-label { font-size: 11px; }\n")
	b.WriteString("  .tick-label { font-size: 10px; fill: #666; }\n")
	b.WriteString("  .grid { stroke: #e0e0e0; stroke-width: 1; }\n")
	b.WriteString("  .bar { fill: #2563eb; fill-opacity: 0.6; }\n")
	b.WriteString("  .model-line { fill: none; stroke: #f59e0b; stroke-width: 2; stroke-linejoin: round; }\n")
	b.WriteString("</style>\n")

	// Background
	b.WriteString(fmt.Sprintf(`<rect width="%d" height="%d" fill="white"/>`, svgWidth, svgHeight))
	b.WriteString("\n")

	// Title
	b.WriteString(fmt.Sprintf(`<text x="%d" y="24" class="title">%s</text>`, marginLeft, xmlEscape(h.title)))
	b.WriteString("\n")

	// Grid lines and Y-axis tick labels
	for i := 0; i <= gridLines; i++ {
		y := marginTop + plotHeight - int(float64(i)*float64(plotHeight)/float64(gridLines))
		b.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d" class="grid"/>`, marginLeft, y, marginLeft+plotWidth, y))
		b.WriteString("\n")
		freq := maxFreq * float64(i) / float64(gridLines)
		b.WriteString(fmt.Sprintf(`<text x="%d" y="%d" text-anchor="end" class="tick-label">%s</text>`, marginLeft-6, y+4, formatRate(freq*100)+"%"))
		b.WriteString("\n")
	}

	// Bars
	slot := float64(plotWidth) / float64(len(h.bars))
	for i, bb := range h.bars {
		x := float64(marginLeft) + float64(i)*slot
		height := float64(plotHeight) * bb.Freq / maxFreq
		b.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" class="bar"/>`, x+0.5, float64(marginTop+plotHeight)-height, max(slot-1, 0.5), height))
		b.WriteString("\n")
	}

	// X-axis tick labels
	step := 1
	if len(h.bars) > maxTickLabels {
		step = (len(h.bars) + maxTickLabels - 1) / maxTickLabels
	}
	for i := 0; i < len(h.bars); i += step {
		x := float64(marginLeft) + (float64(i)+0.5)*slot
		b.WriteString(fmt.Sprintf(`<text x="%.1f" y="%d" text-anchor="middle" class="tick-label">%s</text>`, x, svgHeight-marginBottom+20, xmlEscape(h.bars[i].Label)))
		b.WriteString("\n")
	}

	// Axis labels
	b.WriteString(fmt.Sprintf(`<text x="%d" y="%d" text-anchor="middle" class="axis-label">%s</text>`, marginLeft+plotWidth/2, svgHeight-8, xmlEscape(h.xLabel)))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf(`<text x="16" y="%d" text-anchor="middle" transform="rotate(-90,16,%d)" class="axis-label">share of draws</text>`, marginTop+plotHeight/2, marginTop+plotHeight/2))
	b.WriteString("\n")

	// Model polyline through bar centres
	var points strings.Builder
	for i, bb := range h.bars {
		if math.IsNaN(bb.Model) {
			continue
		}
		x := float64(marginLeft) + (float64(i)+0.5)*slot
		y := float64(marginTop+plotHeight) - float64(plotHeight)*bb.Model/maxFreq
		if points.Len() > 0 {
			points.WriteString(" ")
		}
		points.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
	}
	if points.Len() > 0 {
		b.WriteString(fmt.Sprintf(`<polyline points="%s" class="model-line"/>`, points.String()))
		b.WriteString("\n")
	}

	// Plot area border
	b.WriteString(fmt.Sprintf(`<rect x="%d" y="%d" width="%d" height="%d" fill="none" stroke="#ccc" stroke-width="1"/>`, marginLeft, marginTop, plotWidth, plotHeight))
	b.WriteString("\n")

	b.WriteString("</svg>\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func formatRate(r float64) string {
	if r >= 1000 {
		return fmt.Sprintf("%.0fk", r/1000)
	}
	if r == math.Trunc(r) {
		return fmt.Sprintf("%.0f", r)
	}
	return fmt.Sprintf("%.1f", r)
}

func xmlEscape(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	return s
}
