// Package binner implements the fast, deterministic O(N log N) pool
// assignment used for interactive preview: sort by avg_tm and distribute
// in "snake" order across K pools. It never touches the interaction
// matrix.
package binner

import (
	"golang.org/x/exp/slices"

	"github.com/alokmishra/primerpool/internal/model"
)

// Assign sorts primer indices by ascending avg_tm and distributes them
// round-robin into K pools using a snake order that reverses direction
// every K items, so consecutive Tm-sorted primers spread evenly across
// pools instead of clumping at the boundary of one.
func Assign(avgTm []float64, k int) model.Assignment {
	n := len(avgTm)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		switch {
		case avgTm[a] < avgTm[b]:
			return -1
		case avgTm[a] > avgTm[b]:
			return 1
		default:
			return 0
		}
	})

	out := make(model.Assignment, n)
	for rank, idx := range order {
		lap := rank / k
		posInLap := rank % k
		pool := posInLap
		if lap%2 == 1 {
			pool = k - 1 - posInLap
		}
		out[idx] = pool
	}
	return out
}
