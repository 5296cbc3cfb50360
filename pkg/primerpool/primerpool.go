// Package primerpool is the engine facade: the only package hosts import to
// run the primer-pool optimization pipeline end to end. It wires together
// internal/primerseq, internal/interaction, internal/poolcost,
// internal/binner, internal/deopt, and internal/poolstats behind two
// operations, following the small constructed-facade shape used to expose
// a multi-package pipeline as one client.
package primerpool

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/alokmishra/primerpool/internal/binner"
	"github.com/alokmishra/primerpool/internal/deopt"
	"github.com/alokmishra/primerpool/internal/interaction"
	"github.com/alokmishra/primerpool/internal/model"
	"github.com/alokmishra/primerpool/internal/poolcost"
	"github.com/alokmishra/primerpool/internal/poolerr"
	"github.com/alokmishra/primerpool/internal/poolstats"
	"github.com/alokmishra/primerpool/internal/primerseq"
)

// OptimizeParams bundles the tunables for one Optimize call. Zero-valued
// fields fall back to DefaultParams, the same "zero value means default"
// convention used by request structs throughout this codebase.
type OptimizeParams struct {
	K              int
	Cap            int
	Weights        model.Weights
	MaxGenerations int
	Seed           int64
	Workers        int
	TimeBudget     time.Duration
	SeedFromBinner bool
}

// DefaultParams returns the reference defaults:
// unit dimer/Tm weights, half-weight balance, DE defaults for K pools.
func DefaultParams(k int) OptimizeParams {
	cfg := deopt.DefaultConfig(k)
	return OptimizeParams{
		K:              k,
		Weights:        cfg.Weights,
		MaxGenerations: cfg.MaxGenerations,
		Seed:           cfg.Seed,
	}
}

// OptimizeResult is the flat result of one Optimize call: the discrete
// assignment, its cost breakdown, and a human/JSON-friendly run summary.
type OptimizeResult struct {
	RunID      string
	Assignment model.Assignment
	Cost       model.CostBreakdown
	Summary    poolstats.RunSummary
}

// FastPreview runs the O(N log N) fast-binner path with no dimer scoring:
// suitable for interactive preview while the caller decides whether to run
// the full DE optimization.
func FastPreview(primers []model.Primer, k int) ([]model.PoolReport, error) {
	if len(primers) == 0 || k < 2 {
		return nil, poolerr.ErrInvalidInput
	}
	encoded, err := primerseq.EncodeAll(primers)
	if err != nil {
		return nil, err
	}
	avgTm := make([]float64, len(encoded))
	for i, e := range encoded {
		avgTm[i] = e.AvgTm
	}
	assignment := binner.Assign(avgTm, k)

	// The fast path never builds the interaction matrix, so member records
	// carry only their intrinsic fields; CompatibilityScore and the pool's
	// MaxDimerScore are left at their zero value (undetermined without
	// scoring).
	byPool := make([][]int, k)
	for i, pool := range assignment {
		byPool[pool] = append(byPool[pool], i)
	}
	reports := make([]model.PoolReport, k)
	for pool, members := range byPool {
		reports[pool] = fastPoolReport(pool, members, encoded)
	}
	return reports, nil
}

func fastPoolReport(pool int, members []int, encoded []model.EncodedPrimer) model.PoolReport {
	r := model.PoolReport{Pool: pool, Size: len(members)}
	if len(members) == 0 {
		return r
	}
	r.Members = make([]model.PrimerReport, len(members))
	sum := 0.0
	lo, hi := encoded[members[0]].AvgTm, encoded[members[0]].AvgTm
	for i, idx := range members {
		p := encoded[idx]
		r.Members[i] = model.PrimerReport{
			ID:        p.ID,
			Gene:      p.Gene,
			Forward:   p.Forward,
			Reverse:   p.Reverse,
			FwdTm:     p.FwdTm,
			RevTm:     p.RevTm,
			AvgTm:     p.AvgTm,
			GCContent: p.GCContent,
		}
		tm := p.AvgTm
		sum += tm
		if tm < lo {
			lo = tm
		}
		if tm > hi {
			hi = tm
		}
	}
	r.AvgTm = sum / float64(len(members))
	r.TmRange = hi - lo
	return r
}

// Optimize runs the full pipeline: encode, build the interaction matrix,
// then search with the DE Optimizer, returning the best assignment found
// and its report. It fails fast with InfeasibleCapacity before spending any
// optimization work if cap*K < N.
func Optimize(ctx context.Context, primers []model.Primer, params OptimizeParams) (OptimizeResult, error) {
	if len(primers) == 0 || params.K < 2 || params.Cap <= 0 {
		return OptimizeResult{}, poolerr.ErrInvalidInput
	}
	n := len(primers)
	if params.Cap*params.K < n {
		return OptimizeResult{}, poolerr.NewInfeasibleCapacity(n, params.K, params.Cap)
	}

	encoded, err := primerseq.EncodeAll(primers)
	if err != nil {
		return OptimizeResult{}, err
	}

	workers := params.Workers
	m, err := interaction.Build(ctx, encoded, workers)
	if err != nil {
		return OptimizeResult{}, err
	}

	avgTm := make([]float64, len(encoded))
	for i, e := range encoded {
		avgTm[i] = e.AvgTm
	}

	cfg := deopt.DefaultConfig(params.K)
	cfg.Workers = workers
	cfg.SeedFromBinner = params.SeedFromBinner
	if params.Weights != (model.Weights{}) {
		cfg.Weights = params.Weights
	}
	if params.MaxGenerations > 0 {
		cfg.MaxGenerations = params.MaxGenerations
	}
	cfg.Seed = params.Seed

	result, err := deopt.Run(ctx, m, avgTm, params.K, params.Cap, cfg, params.TimeBudget)
	if err != nil {
		return OptimizeResult{}, err
	}

	runID := uuid.NewString()
	reports := poolstats.DerivePoolReports(result.BestAssignment, encoded, m, params.K)
	summary := poolstats.RunSummary{
		RunID:               runID,
		Generations:         result.GenerationsCompleted,
		Duration:            result.Duration,
		BestCost:            result.BestCost,
		Pools:               reports,
		Cancelled:           result.Cancelled,
		TimeBudgetExhausted: result.TimeBudgetExhausted,
		NoImprovement:       result.NoImprovement,
		Infeasible:          result.Infeasible,
	}

	return OptimizeResult{
		RunID:      runID,
		Assignment: result.BestAssignment,
		Cost:       result.BestCost,
		Summary:    summary,
	}, nil
}

// recomputeCost is used only by tests to independently verify a returned
// assignment's reported cost against the same evaluator the optimizer used.
func recomputeCost(a model.Assignment, m *interaction.Matrix, avgTm []float64, p poolcost.Params) model.CostBreakdown {
	return poolcost.Evaluate(a, m, avgTm, p)
}
