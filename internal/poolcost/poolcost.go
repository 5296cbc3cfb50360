// Package poolcost evaluates the four-term weighted cost of a primer-pool
// assignment: dimer interaction, Tm dispersion, size balance, and capacity
// overrun.
package poolcost

import (
	"github.com/alokmishra/primerpool/internal/interaction"
	"github.com/alokmishra/primerpool/internal/model"
)

// Params bundles the inputs a cost evaluation is fixed against for the
// duration of one job: pool count, per-pool capacity, and term weights.
type Params struct {
	K       int
	Cap     int
	Weights model.Weights
}

// Evaluate computes the CostBreakdown for assignment a against matrix m and
// the per-primer avg_tm vector, using ascending-index summation order
// within each pool so the result is bit-identical regardless of caller
// concurrency.
func Evaluate(a model.Assignment, m *interaction.Matrix, avgTm []float64, p Params) model.CostBreakdown {
	byPool := groupByPool(a, p.K)

	dimer := dimerPenalty(byPool, m)
	tmVar := tmVariancePenalty(byPool, avgTm)
	balance := balancePenalty(byPool, p.K)
	constraint := capacityPenalty(byPool, p.Cap)

	total := p.Weights.Dimer*dimer + p.Weights.Tm*tmVar + p.Weights.Balance*balance + constraint

	return model.CostBreakdown{
		Dimer:      dimer,
		TmVariance: tmVar,
		Balance:    balance,
		Constraint: constraint,
		Total:      total,
	}
}

// groupByPool buckets primer indices by pool, each bucket kept in
// ascending index order (the natural iteration order of a).
func groupByPool(a model.Assignment, k int) [][]int {
	byPool := make([][]int, k)
	for i, pool := range a {
		byPool[pool] = append(byPool[pool], i)
	}
	return byPool
}

// dimerPenalty sums M[i,j] over all unordered pairs i<=j within the same
// pool, including the self term i==j.
func dimerPenalty(byPool [][]int, m *interaction.Matrix) float64 {
	total := 0.0
	for _, members := range byPool {
		for a := 0; a < len(members); a++ {
			for b := a; b < len(members); b++ {
				total += m.At(members[a], members[b])
			}
		}
	}
	return total
}

// tmVariancePenalty sums the population variance of avg_tm within each
// non-empty pool (population variance, not sample variance).
func tmVariancePenalty(byPool [][]int, avgTm []float64) float64 {
	total := 0.0
	for _, members := range byPool {
		if len(members) == 0 {
			continue
		}
		total += populationVariance(gather(avgTm, members))
	}
	return total
}

// balancePenalty is the population variance of pool sizes across all K
// pools, including empty ones.
func balancePenalty(byPool [][]int, k int) float64 {
	sizes := make([]float64, k)
	for p, members := range byPool {
		sizes[p] = float64(len(members))
	}
	return populationVariance(sizes)
}

// capacityPenalty is the quadratic overrun penalty scaled by
// model.PenaltyLarge.
func capacityPenalty(byPool [][]int, cap int) float64 {
	total := 0.0
	for _, members := range byPool {
		if over := len(members) - cap; over > 0 {
			total += float64(over*over) * model.PenaltyLarge
		}
	}
	return total
}

func gather(values []float64, indices []int) []float64 {
	out := make([]float64, len(indices))
	for i, idx := range indices {
		out[i] = values[idx]
	}
	return out
}

func populationVariance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	return variance / float64(len(values))
}
