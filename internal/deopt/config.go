package deopt

import "github.com/alokmishra/primerpool/internal/model"

// Config bundles the DE Optimizer's tunables. Run replaces a zero
// MaxGenerations, F, CR or early-stop setting with its reference value and a
// PopulationSize below 4 with 15; Weights and Seed are used as given. Direct
// callers of Run should start from DefaultConfig and override only what they
// need, mirroring the zero-value-means-default convention used throughout
// this codebase's request structs.
type Config struct {
	PopulationSize int
	MaxGenerations int
	F              float64 // mutation factor, typically [0.5, 1.0]
	CR             float64 // crossover rate, typically [0.7, 1.0]
	Seed           int64
	Workers        int

	// EarlyStopGenerations is S: the number of consecutive generations
	// without a > EarlyStopEpsilon relative improvement in best-so-far
	// cost before Run terminates early.
	EarlyStopGenerations int
	EarlyStopEpsilon     float64

	// SeedFromBinner requests that one population member be initialized
	// from the fast-binner assignment instead of random cells. Disabled
	// by default: the reference configuration lets DE explore from a fully
	// random population.
	SeedFromBinner bool

	Weights model.Weights
}

// DefaultConfig returns the reference DE parameters for k pools:
// population size max(15, 5*K) capped at 60, 1000 generations,
// F=0.7, CR=0.9, early stop after 50 stagnant generations at 1e-6 relative
// improvement.
func DefaultConfig(k int) Config {
	pop := 5 * k
	if pop < 15 {
		pop = 15
	}
	if pop > 60 {
		pop = 60
	}
	return Config{
		PopulationSize:       pop,
		MaxGenerations:       1000,
		F:                    0.7,
		CR:                   0.9,
		Seed:                 0,
		EarlyStopGenerations: 50,
		EarlyStopEpsilon:     1e-6,
		Weights:              model.DefaultWeights(),
	}
}

func (c Config) normalized() Config {
	if c.PopulationSize < 4 {
		c.PopulationSize = 15
	}
	if c.MaxGenerations <= 0 {
		c.MaxGenerations = 1000
	}
	if c.F <= 0 {
		c.F = 0.7
	}
	if c.CR <= 0 {
		c.CR = 0.9
	}
	if c.EarlyStopGenerations <= 0 {
		c.EarlyStopGenerations = 50
	}
	if c.EarlyStopEpsilon <= 0 {
		c.EarlyStopEpsilon = 1e-6
	}
	return c
}
