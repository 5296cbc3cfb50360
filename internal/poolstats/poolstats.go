// Package poolstats turns a finished optimization run into the reporting
// artifacts callers see: per-pool summaries derived from an assignment plus
// human-readable run summaries for logs and the CLI. It never touches the
// optimizer itself; it is purely a post-processing step over a finished
// assignment.
package poolstats

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/alokmishra/primerpool/internal/interaction"
	"github.com/alokmishra/primerpool/internal/model"
)

// DerivePoolReports builds one PoolReport per pool from a finished
// assignment, the interaction matrix used to score it, and each primer's
// AvgTm. Pools with no members still appear in the result with Size 0.
func DerivePoolReports(a model.Assignment, primers []model.EncodedPrimer, m *interaction.Matrix, k int) []model.PoolReport {
	byPool := make([][]int, k)
	for i, pool := range a {
		if pool >= 0 && pool < k {
			byPool[pool] = append(byPool[pool], i)
		}
	}

	reports := make([]model.PoolReport, k)
	for pool, members := range byPool {
		reports[pool] = derivePoolReport(pool, members, primers, m)
	}
	return reports
}

func derivePoolReport(pool int, members []int, primers []model.EncodedPrimer, m *interaction.Matrix) model.PoolReport {
	r := model.PoolReport{Pool: pool, Size: len(members)}
	if len(members) == 0 {
		return r
	}

	r.Members = make([]model.PrimerReport, len(members))
	minTm, maxTm := math.Inf(1), math.Inf(-1)
	sumTm := 0.0
	maxDimer := 0.0
	for i, idx := range members {
		p := primers[idx]
		tm := p.AvgTm
		sumTm += tm
		if tm < minTm {
			minTm = tm
		}
		if tm > maxTm {
			maxTm = tm
		}

		sumSelf := 0.0
		for _, other := range members {
			score := m.At(idx, other)
			sumSelf += score
			if score > maxDimer {
				maxDimer = score
			}
		}
		r.Members[i] = model.PrimerReport{
			ID:                 p.ID,
			Gene:               p.Gene,
			Forward:            p.Forward,
			Reverse:            p.Reverse,
			FwdTm:              p.FwdTm,
			RevTm:              p.RevTm,
			AvgTm:              p.AvgTm,
			GCContent:          p.GCContent,
			CompatibilityScore: sumSelf / float64(len(members)),
		}
	}
	r.AvgTm = sumTm / float64(len(members))
	r.TmRange = maxTm - minTm
	r.MaxDimerScore = maxDimer
	return r
}

// RunSummary is the human-facing digest of one Optimize call, produced
// after the DE Optimizer returns. It is what cmd/primerpoolctl prints and
// what pkg/primerpool attaches to OptimizeResult for JSON serialization.
type RunSummary struct {
	RunID               string              `json:"run_id"`
	Generations         int                 `json:"generations"`
	Duration            time.Duration       `json:"duration_ns"`
	BestCost            model.CostBreakdown `json:"best_cost"`
	Pools               []model.PoolReport  `json:"pools"`
	Cancelled           bool                `json:"cancelled"`
	TimeBudgetExhausted bool                `json:"time_budget_exhausted"`
	NoImprovement       bool                `json:"no_improvement"`
	Infeasible          bool                `json:"infeasible"`
}

// String renders a one-line human-readable summary: humanized durations
// and counts, no JSON.
func (s RunSummary) String() string {
	var flags []string
	if s.Cancelled {
		flags = append(flags, "cancelled")
	}
	if s.TimeBudgetExhausted {
		flags = append(flags, "time-budget-exhausted")
	}
	if s.NoImprovement {
		flags = append(flags, "no-improvement")
	}
	if s.Infeasible {
		flags = append(flags, "infeasible")
	}
	flagStr := "ok"
	if len(flags) > 0 {
		flagStr = strings.Join(flags, ",")
	}
	return fmt.Sprintf(
		"run %s: %s generations in %s, best cost %.4f, %s pools [%s]",
		s.RunID,
		humanize.Comma(int64(s.Generations)),
		s.Duration.Round(time.Millisecond),
		s.BestCost.Total,
		humanize.Comma(int64(len(s.Pools))),
		flagStr,
	)
}

// MarshalReport renders the summary as indented JSON; it is a thin,
// tag-driven encoding with no custom field remapping. cmd/primerpoolctl
// prints String() instead and does not call it.
func (s RunSummary) MarshalReport() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}
