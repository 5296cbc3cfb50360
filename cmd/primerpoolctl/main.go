// Command primerpoolctl is a thin demonstration CLI over pkg/primerpool: it
// loads a JSON job fixture, runs either the fast preview or the full DE
// optimization, and prints a summary. It carries no persistence and is not
// part of the module's external interface contract.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/alokmishra/primerpool/pkg/primerpool"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}
	switch args[0] {
	case "preview":
		return runPreview(args[1:])
	case "run":
		return runOptimize(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: primerpoolctl <preview|run> -config <path.json> [flags]", msg)
}

func runPreview(args []string) error {
	fs := flag.NewFlagSet("preview", flag.ContinueOnError)
	configPath := fs.String("config", "", "job fixture JSON path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *configPath == "" {
		return usageError("preview requires -config")
	}

	job, err := loadJobFromConfig(*configPath)
	if err != nil {
		return err
	}

	reports, err := primerpool.FastPreview(job.Primers, job.Params.K)
	if err != nil {
		return err
	}

	fmt.Printf("fast preview: %s primers across %d pools\n", humanize.Comma(int64(len(job.Primers))), job.Params.K)
	for _, r := range reports {
		fmt.Printf("  pool %d: %s members, avg_tm=%.2f, tm_range=%.2f\n", r.Pool, humanize.Comma(int64(r.Size)), r.AvgTm, r.TmRange)
	}
	return nil
}

func runOptimize(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "job fixture JSON path")
	timeBudget := fs.Duration("time-budget", 0, "soft wall-clock budget (0 disables)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *configPath == "" {
		return usageError("run requires -config")
	}

	job, err := loadJobFromConfig(*configPath)
	if err != nil {
		return err
	}
	job.Params.TimeBudget = *timeBudget

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	interactive := isatty.IsTerminal(os.Stdout.Fd())
	if interactive {
		fmt.Printf("optimizing %s primers into %d pools (cap=%d)...\n", humanize.Comma(int64(len(job.Primers))), job.Params.K, job.Params.Cap)
	}

	result, err := primerpool.Optimize(ctx, job.Primers, job.Params)
	if err != nil {
		return err
	}

	fmt.Println(result.Summary.String())
	return nil
}
