package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/andrewh/timestat/pkg/sampler"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func checkCmd() *cobra.Command {
	var (
		samples   int
		seed      uint64
		tolerance float64
	)

	cmd := &cobra.Command{
		Use:   "check <samplers.yaml>",
		Short: "Compare empirical draws with each sampler's model",
		Long: "Compare empirical draws with each sampler's model.\n\n" +
			"The mean and standard deviation of every continuous sampler, and the label\n" +
			"frequencies of every weights sampler, must lie within --tolerance standard\n" +
			"deviations of their model values.",
		Args: missingConfig("check <samplers.yaml>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if samples < 0 || tolerance < 0 {
				return fmt.Errorf("--samples and --tolerance must be non-negative")
			}

			samplers, _, err := loadSamplers(args[0])
			if err != nil {
				return err
			}

			results := sampler.Check(samplers, sampler.CheckOptions{
				Samples:   samples,
				Seed:      seed,
				Tolerance: tolerance,
			})

			units := make(map[string]string, len(samplers))
			for _, s := range samplers {
				if s.Durational() {
					units[s.Name] = s.Unit.Symbol()
				}
			}

			if renderCheck(cmd.OutOrStdout(), results, units) {
				return fmt.Errorf("one or more checks failed")
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&samples, "samples", sampler.DefaultCheckSamples, "draws per sampler")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed for reproducible checks (0 = random)")
	cmd.Flags().Float64Var(&tolerance, "tolerance", sampler.DefaultTolerance, "allowed deviation in standard deviations")

	return cmd
}

// renderCheck writes one row per result and reports whether any failed.
func renderCheck(w io.Writer, results []sampler.CheckResult, units map[string]string) bool {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"status", "sampler", "statistic", "expected", "actual", "limit"})

	failed := false
	for _, r := range results {
		status := "PASS"
		switch {
		case r.Skipped:
			status = "SKIP"
		case !r.Pass:
			status = "FAIL"
			failed = true
		}
		unit := units[r.Sampler]
		if len(r.Name) > 2 && r.Name[:2] == "p(" {
			unit = ""
		}
		t.AppendRow(table.Row{
			status,
			r.Sampler,
			r.Name,
			formatStat(r.Expected, unit),
			formatStat(r.Actual, unit),
			"±" + formatStat(r.Limit, unit),
		})
	}
	t.Render()
	return failed
}

func formatStat(v float64, unit string) string {
	return strconv.FormatFloat(v, 'g', 6, 64) + unit
}

func describeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe <samplers.yaml>",
		Short: "Print the model statistics of every sampler",
		Args:  missingConfig("describe <samplers.yaml>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			samplers, _, err := loadSamplers(args[0])
			if err != nil {
				return err
			}
			return renderDescribe(cmd.OutOrStdout(), samplers)
		},
	}
}

// tailQuantiles are the probabilities reported beside the median.
var tailQuantiles = []float64{0.01, 0.99}

func renderDescribe(w io.Writer, samplers []*sampler.Sampler) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"sampler", "kind", "model", "mean", "median", "mode", "stddev", "p01", "p99"})

	for _, s := range samplers {
		if s.Kind == sampler.KindWeights {
			for i, e := range s.Weights.Entries() {
				name, kind := "", ""
				if i == 0 {
					name, kind = s.Name, s.Kind.String()
				}
				p := e.Weight / s.Weights.Total()
				t.AppendRow(table.Row{name, kind, fmt.Sprintf("p(%s) = %.4g", e.Label, p), "", "", "", "", "", ""})
			}
			continue
		}

		mode := "-"
		if m, ok := s.Dist.Mode(); ok {
			mode = s.FormatValue(s.ToUnit(m))
		}
		row := table.Row{
			s.Name,
			s.Kind.String(),
			s.Describe(),
			s.FormatValue(s.ToUnit(s.Dist.Mean())),
			s.FormatValue(s.ToUnit(s.Dist.Median())),
			mode,
			s.FormatValue(s.ToUnit(s.Dist.StdDev())),
		}
		for _, p := range tailQuantiles {
			q, err := s.Dist.Quantile(p)
			if err != nil {
				return fmt.Errorf("sampler %q: %w", s.Name, err)
			}
			row = append(row, s.FormatValue(s.ToUnit(q)))
		}
		t.AppendRow(row)
	}
	t.Render()
	return nil
}
