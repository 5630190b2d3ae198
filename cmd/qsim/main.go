// Command qsim samples one of a few bundled circuits and prints the outcome
// histogram.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/theapemachine/qsim"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Error("qsim failed", "err", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := pflag.NewFlagSet("qsim", pflag.ContinueOnError)
	name := fs.String("circuit", "bell", fmt.Sprintf("circuit to sample, one of %v", circuitNames()))
	shots := fs.Int("shots", 1024, "number of repeated executions")
	seed := fs.Uint64("seed", 1, "seed for the per-shot random streams")
	qubits := fs.Int("qubits", 3, "register size for the ghz circuit")
	theta := fs.Float64("theta", 1.0, "rotation angle of the teleported state")
	configPath := fs.String("config", "", "optional config file (yaml, toml or json)")
	showMetrics := fs.Bool("metrics", false, "print execution metrics")
	debug := fs.Bool("debug", false, "enable debug logging")
	fs.Int("workers", 0, "shot workers (defaults to GOMAXPROCS)")
	fs.Bool("strict", false, "fail on normalization drift instead of renormalizing")
	fs.Int("check-every", 0, "check the norm every N gate steps")

	if err := fs.Parse(args); err != nil {
		return err
	}

	v := viper.New()
	for key, flag := range map[string]string{
		"workers":     "workers",
		"strict":      "strict",
		"check_every": "check-every",
	} {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return err
		}
	}

	config, err := qsim.ConfigFromViper(*configPath, v)
	if err != nil {
		return err
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "qsim"})
	if *debug {
		logger.SetLevel(log.DebugLevel)
	}

	circuit, err := build(*name, *qubits, *theta)
	if err != nil {
		return err
	}

	metrics := qsim.NewMetrics()
	engine := qsim.NewEngine(config, qsim.WithMetrics(metrics), qsim.WithLogger(logger))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	histogram, err := engine.Sample(ctx, circuit, *shots, *seed)
	if histogram != nil {
		fmt.Println(renderHistogram(*name, histogram))
	}
	if *showMetrics {
		fmt.Println(renderMetrics(metrics))
	}
	return err
}
