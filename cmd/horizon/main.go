package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/signalsfoundry/horizon/core"
	"github.com/signalsfoundry/horizon/internal/logging"
	"github.com/signalsfoundry/horizon/internal/observability"
	"github.com/signalsfoundry/horizon/model"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

type config struct {
	metric          bool
	logLevel        string
	logFormat       string
	trace           bool
	metricsTextfile string
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, in, err := parseArgs(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	log := logging.New(logging.Config{
		Level:  cfg.logLevel,
		Format: cfg.logFormat,
		Output: stderr,
	})
	ctx, log = logging.WithRunLogger(ctx, log)

	shutdown, err := observability.InitTracing(ctx, observability.TracingConfig{
		Enabled:     cfg.trace,
		ServiceName: "horizon",
		Output:      stderr,
	}, log)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitError
	}
	defer observability.ShutdownWithTimeout(ctx, shutdown, log)

	opts := []core.CalculatorOption{core.WithLogger(log)}
	var collector *observability.HorizonCollector
	if cfg.metricsTextfile != "" {
		collector, err = observability.NewHorizonCollector(prometheus.NewRegistry())
		if err != nil {
			fmt.Fprintln(stderr, err)
			return exitError
		}
		opts = append(opts, core.WithMetricsRecorder(collector))
	}

	calc := core.NewCalculator(opts...)
	report, calcErr := calc.Calculate(ctx, in)

	if collector != nil {
		if err := collector.WriteTextfile(cfg.metricsTextfile); err != nil {
			log.Warn(ctx, "failed to write metrics textfile", logging.String("path", cfg.metricsTextfile), logging.Err(err))
		}
	}

	if calcErr != nil {
		fmt.Fprintln(stderr, calcErr)
		return exitError
	}

	if err := core.WriteReport(stdout, report); err != nil {
		log.Error(ctx, "failed to write report", logging.Err(err))
		return exitError
	}
	return exitOK
}

// parseArgs reads flags and the observer/subject positionals. Flags may
// appear anywhere; numeric arguments such as "-5" are always positionals.
func parseArgs(args []string, stderr io.Writer) (config, model.HeightInput, error) {
	var cfg config
	fs := flag.NewFlagSet("horizon", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&cfg.metric, "m", false, "interpret heights as metres instead of feet")
	fs.BoolVar(&cfg.metric, "metric", false, "interpret heights as metres instead of feet")
	fs.StringVar(&cfg.logLevel, "log-level", "off", "log level written to stderr: debug, info, warn, error or off")
	fs.StringVar(&cfg.logFormat, "log-format", "text", "log format: text or json")
	fs.BoolVar(&cfg.trace, "trace", false, "export calculation spans to stderr")
	fs.StringVar(&cfg.metricsTextfile, "metrics-textfile", "", "write Prometheus metrics to this file after the calculation")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: horizon [flags] <observer> [subject]")
		fmt.Fprintln(fs.Output(), "\nHeights are in feet unless -m/--metric is given. The subject defaults to the horizon.")
		fmt.Fprintln(fs.Output(), "\nflags:")
		fs.PrintDefaults()
	}

	flagArgs, positional := splitArgs(fs, args)
	if err := fs.Parse(flagArgs); err != nil {
		return cfg, model.HeightInput{}, err
	}
	positional = append(positional, fs.Args()...)

	if !logging.ValidLevel(cfg.logLevel) {
		return cfg, model.HeightInput{}, fmt.Errorf("invalid log level %q", cfg.logLevel)
	}

	switch len(positional) {
	case 1, 2:
	case 0:
		return cfg, model.HeightInput{}, errors.New("missing required argument: observer")
	default:
		return cfg, model.HeightInput{}, fmt.Errorf("too many arguments: %s", strings.Join(positional[2:], " "))
	}

	in := model.HeightInput{Units: model.Imperial}
	if cfg.metric {
		in.Units = model.Metric
	}

	observer, err := strconv.ParseFloat(positional[0], 64)
	if err != nil {
		return cfg, in, fmt.Errorf("invalid observer height %q: not a number", positional[0])
	}
	in.Observer = observer

	if len(positional) == 2 {
		subject, err := strconv.ParseFloat(positional[1], 64)
		if err != nil {
			return cfg, in, fmt.Errorf("invalid subject height %q: not a number", positional[1])
		}
		in.Subject = &subject
	}
	return cfg, in, nil
}

// splitArgs separates flag arguments from positionals so the flag package
// does not stop at the first positional or mistake a negative height for
// a flag.
func splitArgs(fs *flag.FlagSet, args []string) (flags, positional []string) {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if a == "-" || !strings.HasPrefix(a, "-") || isNumber(a) {
			positional = append(positional, a)
			continue
		}

		flags = append(flags, a)
		name := strings.TrimLeft(a, "-")
		if strings.Contains(name, "=") {
			continue
		}
		if f := fs.Lookup(name); f != nil && !isBoolFlag(f) && i+1 < len(args) {
			i++
			flags = append(flags, args[i])
		}
	}
	return flags, positional
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func isBoolFlag(f *flag.Flag) bool {
	bf, ok := f.Value.(interface{ IsBoolFlag() bool })
	return ok && bf.IsBoolFlag()
}
