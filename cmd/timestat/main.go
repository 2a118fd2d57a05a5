// Time and statistics sampler
// Reads a YAML sampler definition and draws values, optionally emitting traces, metrics, and logs via OTel SDK
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net"
	"net/http"
	_ "net/http/pprof" //nolint:gosec // pprof endpoint is opt-in via --pprof flag
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/andrewh/timestat/pkg/sampler"
	"github.com/google/uuid"
	"github.com/grafana/pyroscope-go"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// envPrefix namespaces environment overrides, e.g. TIMESTAT_COUNT for --count.
const envPrefix = "TIMESTAT"

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "timestat",
		Short:        "Sample durations, instants, weighted labels and scores from a YAML definition",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return bindEnv(cmd)
		},
	}

	root.AddCommand(sampleCmd())
	root.AddCommand(validateCmd())
	root.AddCommand(checkCmd())
	root.AddCommand(describeCmd())
	root.AddCommand(previewCmd())
	root.AddCommand(versionCmd())

	return root
}

// bindEnv fills flags the user did not set from TIMESTAT_* environment
// variables, with dashes in flag names read as underscores.
func bindEnv(cmd *cobra.Command) error {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	var err error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if err != nil || f.Changed || !v.IsSet(f.Name) {
			return
		}
		if setErr := cmd.Flags().Set(f.Name, v.GetString(f.Name)); setErr != nil {
			err = fmt.Errorf("environment %s_%s: %w", envPrefix, strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_")), setErr)
		}
	})
	return err
}

// missingConfig builds the Args check shared by commands taking one config file.
func missingConfig(use string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return fmt.Errorf("missing sampler file\n\nUsage: timestat %s", use)
		}
		return cobra.ExactArgs(1)(cmd, args)
	}
}

func sampleCmd() *cobra.Command {
	var opts sampleOptions

	cmd := &cobra.Command{
		Use:   "sample <samplers.yaml>",
		Short: "Draw values from every sampler and print run statistics",
		Long: "Draw values from every sampler and print run statistics as JSON on stderr.\n\n" +
			"Every flag can also be set through the environment, e.g. TIMESTAT_COUNT=1000.",
		Args: missingConfig("sample <samplers.yaml>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("tail") && !strings.Contains(opts.signals, "logs") {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Warning: --tail has no effect without --signals logs")
			}
			opts.seedSet = cmd.Flags().Changed("seed")
			opts.out = cmd.OutOrStdout()
			opts.errOut = cmd.ErrOrStderr()
			return runSample(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().IntVar(&opts.count, "count", 10_000, "draws per sampler")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "random seed, overriding the config seed (0 = random)")
	cmd.Flags().StringVar(&opts.signals, "signals", "", "comma-separated signals to emit: traces,metrics,logs")
	cmd.Flags().BoolVar(&opts.stdout, "stdout", false, "emit signals to stdout as JSON")
	cmd.Flags().StringVar(&opts.endpoint, "endpoint", "", "OTLP endpoint (e.g. localhost:4318)")
	cmd.Flags().StringVar(&opts.protocol, "protocol", "http/protobuf", "OTLP protocol (http/protobuf or grpc)")
	cmd.Flags().Float64Var(&opts.tail, "tail", 0.001, "log draws whose tail probability is at most this")
	cmd.Flags().StringVar(&opts.db, "db", "", "record every draw in this SQLite database")
	cmd.Flags().StringVar(&opts.runID, "run-id", "", "run identifier (default: random UUID)")
	cmd.Flags().StringVar(&opts.pyroscope, "pyroscope", "", "send continuous profiles to this Pyroscope server (e.g. http://localhost:4040)")
	cmd.Flags().StringVar(&opts.pprofAddr, "pprof", "", "start pprof HTTP server on this address (e.g. :6060)")

	return cmd
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <samplers.yaml>",
		Short: "Parse and validate a sampler configuration",
		Args:  missingConfig("validate <samplers.yaml>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			samplers, _, err := loadSamplers(args[0])
			if err != nil {
				return err
			}
			label := "samplers"
			if len(samplers) == 1 {
				label = "sampler"
			}
			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "Configuration valid: %d %s\n", len(samplers), label)
			for _, s := range samplers {
				_, _ = fmt.Fprintf(w, "  %s (%s): %s\n", s.Name, s.Kind, s.Describe())
			}
			_, _ = fmt.Fprintf(w, "\nTo draw values:\n  timestat sample %s\n", args[0])
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "timestat %s (commit: %s, built: %s)\n", version, commit, buildTime)
		},
	}
}

// loadSamplers loads, validates and builds a config file.
func loadSamplers(path string) ([]*sampler.Sampler, *sampler.Config, error) {
	cfg, err := sampler.LoadConfig(path)
	if err != nil {
		return nil, nil, err
	}
	if err := sampler.ValidateConfig(cfg); err != nil {
		return nil, nil, err
	}
	samplers, err := sampler.Build(cfg)
	if err != nil {
		return nil, nil, err
	}
	return samplers, cfg, nil
}

type sampleOptions struct {
	count     int
	seed      uint64
	seedSet   bool
	signals   string
	stdout    bool
	endpoint  string
	protocol  string
	tail      float64
	db        string
	runID     string
	pyroscope string
	pprofAddr string
	out       io.Writer
	errOut    io.Writer
}

var validSignals = map[string]bool{
	"traces":  true,
	"metrics": true,
	"logs":    true,
}

var validProtocols = map[string]bool{
	"http/protobuf": true,
	"grpc":          true,
}

func validateProtocol(p string) error {
	if !validProtocols[p] {
		return fmt.Errorf("unsupported protocol %q, supported: http/protobuf, grpc", p)
	}
	return nil
}

func parseSignals(s string) (map[string]bool, error) {
	set := make(map[string]bool)
	for _, sig := range strings.Split(s, ",") {
		sig = strings.TrimSpace(sig)
		if sig == "" {
			continue
		}
		if !validSignals[sig] {
			return nil, fmt.Errorf("unknown signal %q, valid signals: traces, metrics, logs", sig)
		}
		set[sig] = true
	}
	return set, nil
}

const (
	shutdownTimeout     = 5 * time.Second
	connectCheckTimeout = 2 * time.Second
	defaultHTTPPort     = "4318"
	defaultGRPCPort     = "4317"
)

func checkEndpoint(endpoint, protocol, configPath string) error {
	host := endpoint
	if host == "" {
		port := defaultHTTPPort
		if protocol == "grpc" {
			port = defaultGRPCPort
		}
		host = "localhost:" + port
	} else if _, _, err := net.SplitHostPort(host); err != nil {
		port := defaultHTTPPort
		if protocol == "grpc" {
			port = defaultGRPCPort
		}
		host = net.JoinHostPort(host, port)
	}

	conn, err := net.DialTimeout("tcp", host, connectCheckTimeout)
	if err != nil {
		return fmt.Errorf("cannot reach OTLP collector at %s\n\n"+
			"To emit signals as JSON to the terminal, use --stdout:\n"+
			"  timestat sample --stdout --signals metrics %s\n\n"+
			"To send to a specific collector, use --endpoint:\n"+
			"  timestat sample --endpoint collector.example.com:4318 %s\n\n"+
			"Without --signals, timestat only prints run statistics", host, configPath, configPath)
	}
	_ = conn.Close()
	return nil
}

func runSample(ctx context.Context, configPath string, opts sampleOptions) error {
	if opts.pprofAddr != "" {
		go func() {
			fmt.Fprintf(os.Stderr, "pprof server listening on %s\n", opts.pprofAddr)
			if err := http.ListenAndServe(opts.pprofAddr, nil); err != nil { //nolint:gosec // pprof server is opt-in via flag
				fmt.Fprintf(os.Stderr, "pprof server error: %v\n", err)
			}
		}()
	}

	samplers, cfg, err := loadSamplers(configPath)
	if err != nil {
		return err
	}
	if opts.count <= 0 {
		return fmt.Errorf("--count must be positive, got %d", opts.count)
	}
	if opts.tail < 0 || opts.tail > 1 {
		return fmt.Errorf("--tail must be within [0, 1], got %v", opts.tail)
	}

	enabledSignals, err := parseSignals(opts.signals)
	if err != nil {
		return err
	}
	if err := validateProtocol(opts.protocol); err != nil {
		return err
	}
	if len(enabledSignals) > 0 && !opts.stdout {
		if err := checkEndpoint(opts.endpoint, opts.protocol, configPath); err != nil {
			return err
		}
	}

	seed := cfg.Seed
	if opts.seedSet || seed == 0 {
		seed = opts.seed
	}
	if seed == 0 {
		seed = rand.Uint64() //nolint:gosec // sampling, not security-sensitive
	}
	runID := opts.runID
	if runID == "" {
		runID = uuid.NewString()
	}

	if opts.pyroscope != "" {
		profiler, pErr := pyroscope.Start(pyroscope.Config{
			ApplicationName: "timestat",
			ServerAddress:   opts.pyroscope,
			Tags:            map[string]string{"run_id": runID},
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocObjects,
				pyroscope.ProfileInuseSpace,
			},
		})
		if pErr != nil {
			return fmt.Errorf("starting profiler: %w", pErr)
		}
		defer func() { _ = profiler.Stop() }()
	}

	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		attribute.String("service.name", "timestat"),
		attribute.String("timestat.version", version),
		attribute.String("timestat.run_id", runID),
	))
	if err != nil {
		return fmt.Errorf("creating resource: %w", err)
	}

	engine := &sampler.Engine{
		Samplers: samplers,
		Rng:      rand.New(rand.NewPCG(seed, 0)), //nolint:gosec // sampling, not security-sensitive
		Count:    opts.count,
	}

	if enabledSignals["traces"] {
		tp, tErr := createTraceProvider(ctx, opts, res)
		if tErr != nil {
			return fmt.Errorf("creating trace provider: %w", tErr)
		}
		defer shutdownProvider(tp, "tracer provider", opts.errOut)
		engine.Provider = tp
	}

	if enabledSignals["metrics"] {
		mp, mErr := createMeterProvider(ctx, opts, res)
		if mErr != nil {
			return fmt.Errorf("creating meter provider: %w", mErr)
		}
		defer shutdownProvider(mp, "meter provider", opts.errOut)
		obs, mErr := sampler.NewMetricObserver(mp)
		if mErr != nil {
			return fmt.Errorf("creating metric observer: %w", mErr)
		}
		engine.Observers = append(engine.Observers, obs)
	}

	if enabledSignals["logs"] {
		lp, lErr := createLoggerProvider(ctx, opts, res)
		if lErr != nil {
			return fmt.Errorf("creating logger provider: %w", lErr)
		}
		defer shutdownProvider(lp, "logger provider", opts.errOut)
		engine.Observers = append(engine.Observers, sampler.NewLogObserver(lp, opts.tail))
	}

	var store *sampler.Store
	if opts.db != "" {
		store, err = sampler.OpenStore(ctx, opts.db, runID, seed)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		engine.Observers = append(engine.Observers, store)
	}

	// Handle OS signals for graceful shutdown
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stats, err := engine.Run(ctx)
	if err != nil {
		return err
	}

	if store != nil {
		if err := store.Flush(ctx); err != nil {
			return fmt.Errorf("recording draws: %w", err)
		}
		p := message.NewPrinter(language.English)
		_, _ = p.Fprintf(opts.errOut, "Recorded %d draws to %s (run %s)\n", stats.Draws, opts.db, runID)
	}

	return json.NewEncoder(opts.errOut).Encode(runReport{Seed: seed, RunID: runID, Stats: stats})
}

// runReport is the JSON document printed after a run.
type runReport struct {
	Seed  uint64 `json:"seed"`
	RunID string `json:"run_id"`
	*sampler.Stats
}

func createTraceProvider(ctx context.Context, opts sampleOptions, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	exporter, err := createTraceExporter(ctx, opts)
	if err != nil {
		return nil, err
	}

	var sp sdktrace.SpanProcessor
	if opts.stdout {
		sp = sdktrace.NewSimpleSpanProcessor(exporter)
	} else {
		sp = sdktrace.NewBatchSpanProcessor(exporter)
	}
	return sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sp),
		sdktrace.WithResource(res),
	), nil
}

func createTraceExporter(ctx context.Context, opts sampleOptions) (sdktrace.SpanExporter, error) {
	if opts.stdout {
		return stdouttrace.New(stdouttrace.WithWriter(opts.out))
	}
	switch opts.protocol {
	case "grpc":
		var grpcOpts []otlptracegrpc.Option
		if opts.endpoint != "" {
			grpcOpts = append(grpcOpts, otlptracegrpc.WithEndpoint(opts.endpoint), otlptracegrpc.WithInsecure())
		}
		return otlptracegrpc.New(ctx, grpcOpts...)
	case "http/protobuf", "":
		var httpOpts []otlptracehttp.Option
		if opts.endpoint != "" {
			httpOpts = append(httpOpts, otlptracehttp.WithEndpoint(opts.endpoint), otlptracehttp.WithInsecure())
		}
		return otlptracehttp.New(ctx, httpOpts...)
	default:
		return nil, fmt.Errorf("unsupported protocol %q, supported: http/protobuf, grpc", opts.protocol)
	}
}

func createMeterProvider(ctx context.Context, opts sampleOptions, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	exporter, err := createMetricExporter(ctx, opts)
	if err != nil {
		return nil, err
	}
	return sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
		sdkmetric.WithResource(res),
	), nil
}

func createMetricExporter(ctx context.Context, opts sampleOptions) (sdkmetric.Exporter, error) {
	if opts.stdout {
		return stdoutmetric.New(stdoutmetric.WithWriter(opts.out))
	}
	switch opts.protocol {
	case "grpc":
		var grpcOpts []otlpmetricgrpc.Option
		if opts.endpoint != "" {
			grpcOpts = append(grpcOpts, otlpmetricgrpc.WithEndpoint(opts.endpoint), otlpmetricgrpc.WithInsecure())
		}
		return otlpmetricgrpc.New(ctx, grpcOpts...)
	case "http/protobuf", "":
		var httpOpts []otlpmetrichttp.Option
		if opts.endpoint != "" {
			httpOpts = append(httpOpts, otlpmetrichttp.WithEndpoint(opts.endpoint), otlpmetrichttp.WithInsecure())
		}
		return otlpmetrichttp.New(ctx, httpOpts...)
	default:
		return nil, fmt.Errorf("unsupported protocol %q for metrics", opts.protocol)
	}
}

func createLoggerProvider(ctx context.Context, opts sampleOptions, res *resource.Resource) (*sdklog.LoggerProvider, error) {
	exporter, err := createLogExporter(ctx, opts)
	if err != nil {
		return nil, err
	}

	var processor sdklog.Processor
	if opts.stdout {
		processor = sdklog.NewSimpleProcessor(exporter)
	} else {
		processor = sdklog.NewBatchProcessor(exporter)
	}
	return sdklog.NewLoggerProvider(
		sdklog.WithProcessor(processor),
		sdklog.WithResource(res),
	), nil
}

func createLogExporter(ctx context.Context, opts sampleOptions) (sdklog.Exporter, error) {
	if opts.stdout {
		return stdoutlog.New(stdoutlog.WithWriter(opts.out))
	}
	switch opts.protocol {
	case "grpc":
		var grpcOpts []otlploggrpc.Option
		if opts.endpoint != "" {
			grpcOpts = append(grpcOpts, otlploggrpc.WithEndpoint(opts.endpoint), otlploggrpc.WithInsecure())
		}
		return otlploggrpc.New(ctx, grpcOpts...)
	case "http/protobuf", "":
		var httpOpts []otlploghttp.Option
		if opts.endpoint != "" {
			httpOpts = append(httpOpts, otlploghttp.WithEndpoint(opts.endpoint), otlploghttp.WithInsecure())
		}
		return otlploghttp.New(ctx, httpOpts...)
	default:
		return nil, fmt.Errorf("unsupported protocol %q for logs", opts.protocol)
	}
}

// shutdownable is anything with a Shutdown method (TracerProvider, MeterProvider, LoggerProvider).
type shutdownable interface {
	Shutdown(context.Context) error
}

// shutdownProvider flushes and stops a provider within shutdownTimeout,
// reporting a failure to errOut.
func shutdownProvider(item shutdownable, label string, errOut io.Writer) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := item.Shutdown(ctx); err != nil {
		fmt.Fprintf(errOut, "error shutting down %s: %v\n", label, err)
	}
}
