// Package deopt implements the Differential Evolution optimizer that
// searches the continuous genome space for a low-cost primer-pool
// assignment. It follows the job/result worker-pool shape used elsewhere in
// this codebase for per-item parallel evaluation, with one addition:
// per-target RNG streams are pre-assigned before dispatch so that the
// sequence of random draws does not depend on goroutine scheduling order.
package deopt

import (
	"context"
	"math"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/alokmishra/primerpool/internal/binner"
	"github.com/alokmishra/primerpool/internal/interaction"
	"github.com/alokmishra/primerpool/internal/model"
	"github.com/alokmishra/primerpool/internal/poolcost"
	"github.com/alokmishra/primerpool/internal/poolerr"
)

// Result is what Run returns: the best assignment found, its cost, and
// bookkeeping about how the run ended.
type Result struct {
	BestAssignment       model.Assignment
	BestCost             model.CostBreakdown
	BestCostByGeneration []float64
	GenerationsCompleted int
	Duration             time.Duration

	Cancelled           bool
	TimeBudgetExhausted bool
	NoImprovement       bool
	Infeasible          bool
}

// Run executes DE/rand/1/bin against the given interaction matrix and Tm
// vector until MaxGenerations, cooperative cancellation, the time budget, or
// early stopping ends the search. timeBudget <= 0 means no wall-clock limit.
func Run(ctx context.Context, m *interaction.Matrix, avgTm []float64, k, cap int, cfg Config, timeBudget time.Duration) (Result, error) {
	cfg = cfg.normalized()
	n := len(avgTm)
	if n == 0 || k < 2 {
		return Result{}, poolerr.ErrInvalidInput
	}

	start := time.Now()
	costParams := poolcost.Params{K: k, Cap: cap, Weights: cfg.Weights}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	master := rand.New(rand.NewSource(cfg.Seed))
	pop := initPopulation(master, n, k, cfg.PopulationSize, cfg.SeedFromBinner, avgTm)
	evaluate(pop, m, avgTm, costParams, workers)

	bestIdx := bestOf(pop)
	best := pop[bestIdx]
	history := make([]float64, 0, cfg.MaxGenerations+1)
	history = append(history, best.Cost.Total)

	stagnant := 0
	gen := 0
	for ; gen < cfg.MaxGenerations; gen++ {
		select {
		case <-ctx.Done():
			return finish(pop, best, history, gen, start, true, false, m, avgTm, costParams, cfg.EarlyStopEpsilon), nil
		default:
		}
		if timeBudget > 0 && time.Since(start) >= timeBudget {
			return finish(pop, best, history, gen, start, false, true, m, avgTm, costParams, cfg.EarlyStopEpsilon), nil
		}

		genSeeds := drawTargetSeeds(master, len(pop))
		trials := evaluateTrials(pop, genSeeds, m, avgTm, costParams, cfg, workers)

		for i, tr := range trials {
			if tr.Cost.Total <= pop[i].Cost.Total {
				pop[i] = tr
			}
		}

		bestIdx = bestOf(pop)
		improved := best.Cost.Total-pop[bestIdx].Cost.Total > cfg.EarlyStopEpsilon*math.Max(1, best.Cost.Total)
		if pop[bestIdx].Cost.Total < best.Cost.Total {
			best = pop[bestIdx]
		}
		history = append(history, best.Cost.Total)

		if improved {
			stagnant = 0
		} else {
			stagnant++
			if stagnant >= cfg.EarlyStopGenerations {
				return finish(pop, best, history, gen+1, start, false, false, m, avgTm, costParams, cfg.EarlyStopEpsilon), nil
			}
		}
	}

	return finish(pop, best, history, gen, start, false, false, m, avgTm, costParams, cfg.EarlyStopEpsilon), nil
}

// finish assembles the final Result, including NoImprovement: this compares
// the best cost found against the cost of the fast-binner seed assignment,
// independent of why the search loop stopped.
func finish(pop []model.PopulationMember, best model.PopulationMember, history []float64, gens int, start time.Time, cancelled, timedOut bool, m *interaction.Matrix, avgTm []float64, p poolcost.Params, epsilon float64) Result {
	infeasible := best.Cost.Constraint > 0
	baseline := poolcost.Evaluate(binner.Assign(avgTm, p.K), m, avgTm, p)
	noImprovement := best.Cost.Total >= baseline.Total-epsilon
	return Result{
		BestAssignment:       best.Assignment,
		BestCost:             best.Cost,
		BestCostByGeneration: history,
		GenerationsCompleted: gens,
		Duration:             time.Since(start),
		Cancelled:            cancelled,
		TimeBudgetExhausted:  timedOut,
		NoImprovement:        noImprovement,
		Infeasible:           infeasible,
	}
}

// initPopulation fills every genome cell with an independent draw from
// [0,1), except that when seedFromBinner is set the first member's decode
// is forced to match the fast-binner assignment by setting its argmax
// column high, giving DE a feasible-balance starting point without
// disturbing the rest of the population's randomness.
func initPopulation(master *rand.Rand, n, k, size int, seedFromBinner bool, avgTm []float64) []model.PopulationMember {
	pop := make([]model.PopulationMember, size)
	for i := range pop {
		g := model.NewGenome(n, k)
		for c := range g.Cells {
			g.Cells[c] = master.Float64()
		}
		pop[i] = model.PopulationMember{Genome: g}
	}
	if seedFromBinner && size > 0 {
		seed := binner.Assign(avgTm, k)
		g := pop[0].Genome
		for row, pool := range seed {
			for c := 0; c < k; c++ {
				if c == pool {
					g.Set(row, c, 1.0)
				} else {
					g.Set(row, c, 0.0)
				}
			}
		}
	}
	return pop
}

// drawTargetSeeds pre-assigns one RNG seed per target index from the master
// stream, sequentially, before any evaluation goroutine starts. This is what
// keeps a generation's random draws independent of worker scheduling order.
func drawTargetSeeds(master *rand.Rand, n int) []int64 {
	seeds := make([]int64, n)
	for i := range seeds {
		seeds[i] = master.Int63()
	}
	return seeds
}

func evaluate(pop []model.PopulationMember, m *interaction.Matrix, avgTm []float64, p poolcost.Params, workers int) {
	type job struct{ idx int }
	jobs := make(chan job)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for j := range jobs {
				a := pop[j.idx].Genome.Decode()
				pop[j.idx].Assignment = a
				pop[j.idx].Cost = poolcost.Evaluate(a, m, avgTm, p)
			}
		}()
	}
	for i := range pop {
		jobs <- job{idx: i}
	}
	close(jobs)
	wg.Wait()
}

// evaluateTrials builds and scores one DE/rand/1/bin trial genome per
// target, reading only from the frozen pop snapshot (not from other
// trials), so the update is synchronous and reproducible across worker counts.
func evaluateTrials(pop []model.PopulationMember, seeds []int64, m *interaction.Matrix, avgTm []float64, p poolcost.Params, cfg Config, workers int) []model.PopulationMember {
	n := len(pop)
	trials := make([]model.PopulationMember, n)

	type job struct{ idx int }
	jobs := make(chan job)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for j := range jobs {
				rng := rand.New(rand.NewSource(seeds[j.idx]))
				g := makeTrial(pop, j.idx, rng, cfg.F, cfg.CR)
				a := g.Decode()
				trials[j.idx] = model.PopulationMember{
					Genome:     g,
					Assignment: a,
					Cost:       poolcost.Evaluate(a, m, avgTm, p),
				}
			}
		}()
	}
	for i := 0; i < n; i++ {
		jobs <- job{idx: i}
	}
	close(jobs)
	wg.Wait()
	return trials
}

// makeTrial builds one DE/rand/1/bin trial vector for target index t:
// mutant = pop[r1] + F*(pop[r2]-pop[r3]) with r1,r2,r3 distinct and != t,
// then binomial crossover against pop[t] with at least one dimension forced
// to come from the mutant so the trial always differs from the target.
func makeTrial(pop []model.PopulationMember, t int, rng *rand.Rand, f, cr float64) model.Genome {
	target := pop[t].Genome
	r1, r2, r3 := pickThree(rng, len(pop), t)

	trial := model.NewGenome(target.N, target.K)
	forced := rng.Intn(len(trial.Cells))
	for c := range trial.Cells {
		if c == forced || rng.Float64() < cr {
			mutant := pop[r1].Genome.Cells[c] + f*(pop[r2].Genome.Cells[c]-pop[r3].Genome.Cells[c])
			trial.Cells[c] = mutant
		} else {
			trial.Cells[c] = target.Cells[c]
		}
	}
	return trial
}

// pickThree draws three population indices distinct from each other and
// from exclude, without allocating a shuffled slice: reject-and-resample is
// cheap because the population is small relative to K,N.
func pickThree(rng *rand.Rand, n, exclude int) (r1, r2, r3 int) {
	draw := func(taken ...int) int {
		for {
			v := rng.Intn(n)
			if v == exclude {
				continue
			}
			clash := false
			for _, x := range taken {
				if v == x {
					clash = true
					break
				}
			}
			if !clash {
				return v
			}
		}
	}
	r1 = draw()
	r2 = draw(r1)
	r3 = draw(r1, r2)
	return r1, r2, r3
}

func bestOf(pop []model.PopulationMember) int {
	best := 0
	for i := 1; i < len(pop); i++ {
		if pop[i].Cost.Total < pop[best].Cost.Total {
			best = i
		}
	}
	return best
}
