package poolcost

import (
	"context"
	"math"
	"testing"

	"github.com/alokmishra/primerpool/internal/interaction"
	"github.com/alokmishra/primerpool/internal/model"
	"github.com/alokmishra/primerpool/internal/primerseq"
)

func buildMatrix(t *testing.T, seqs [][2]string) (*interaction.Matrix, []float64) {
	t.Helper()
	primers := make([]model.EncodedPrimer, len(seqs))
	avgTm := make([]float64, len(seqs))
	for i, s := range seqs {
		enc, err := primerseq.Encode(model.Primer{ID: string(rune('A' + i)), Forward: s[0], Reverse: s[1]})
		if err != nil {
			t.Fatalf("encode %d: %v", i, err)
		}
		primers[i] = enc
		avgTm[i] = enc.AvgTm
	}
	m, err := interaction.Build(context.Background(), primers, 2)
	if err != nil {
		t.Fatalf("build matrix: %v", err)
	}
	return m, avgTm
}

// TestTmSeparation checks that four AT-only and four GC-only 10-mers
// split into K=2 pools by Tm should have zero Tm variance per pool.
func TestTmSeparation(t *testing.T) {
	seqs := [][2]string{
		{"AAAAAAAAAA", "TTTTTTTTTT"},
		{"ATATATATAT", "ATATATATAT"},
		{"TATATATATA", "TATATATATA"},
		{"AAAATTTTAA", "TTTTAAAATT"},
		{"GGGGGGGGGG", "CCCCCCCCCC"},
		{"GCGCGCGCGC", "GCGCGCGCGC"},
		{"CGCGCGCGCG", "CGCGCGCGCG"},
		{"GGGGCCCCGG", "CCCCGGGGCC"},
	}
	m, avgTm := buildMatrix(t, seqs)

	// Pools split exactly along the AT/GC boundary.
	assignment := model.Assignment{0, 0, 0, 0, 1, 1, 1, 1}
	cb := Evaluate(assignment, m, avgTm, Params{K: 2, Cap: 4, Weights: model.DefaultWeights()})

	if cb.TmVariance > 1e-9 {
		t.Errorf("TmVariance = %v, want ~0", cb.TmVariance)
	}
	if cb.Constraint != 0 {
		t.Errorf("Constraint = %v, want 0", cb.Constraint)
	}
}

func TestCapacityPenaltyQuadratic(t *testing.T) {
	m, avgTm := buildMatrix(t, [][2]string{
		{"AAAAAAAAAA", "TTTTTTTTTT"},
		{"AAAAAAAAAA", "TTTTTTTTTT"},
		{"AAAAAAAAAA", "TTTTTTTTTT"},
	})
	assignment := model.Assignment{0, 0, 0}
	cb := Evaluate(assignment, m, avgTm, Params{K: 2, Cap: 1, Weights: model.DefaultWeights()})

	want := math.Pow(3-1, 2) * model.PenaltyLarge
	if cb.Constraint != want {
		t.Errorf("Constraint = %v, want %v", cb.Constraint, want)
	}
}

func TestCostBreakdownNonNegative(t *testing.T) {
	m, avgTm := buildMatrix(t, [][2]string{
		{"AAAAAAAAAA", "TTTTTTTTTT"},
		{"ACGTACGTAC", "TGCATGCATG"},
		{"GGGGGGGGGG", "CCCCCCCCCC"},
		{"AGAGAGAGAG", "TCTCTCTCTC"},
	})
	assignment := model.Assignment{0, 1, 0, 1}
	cb := Evaluate(assignment, m, avgTm, Params{K: 2, Cap: 4, Weights: model.DefaultWeights()})

	if cb.Dimer < 0 || cb.TmVariance < 0 || cb.Balance < 0 || cb.Constraint < 0 || cb.Total < 0 {
		t.Errorf("negative cost component: %+v", cb)
	}
}

// TestPermutationInvariance checks that reordering primers and
// remapping the assignment accordingly must yield the same total cost.
func TestPermutationInvariance(t *testing.T) {
	m, avgTm := buildMatrix(t, [][2]string{
		{"AAAAAAAAAA", "TTTTTTTTTT"},
		{"ACGTACGTAC", "TGCATGCATG"},
		{"GGGGGGGGGG", "CCCCCCCCCC"},
		{"AGAGAGAGAG", "TCTCTCTCTC"},
	})
	assignment := model.Assignment{0, 1, 0, 1}
	base := Evaluate(assignment, m, avgTm, Params{K: 2, Cap: 4, Weights: model.DefaultWeights()})

	perm := []int{3, 1, 0, 2}
	permAvgTm := make([]float64, len(perm))
	permAssignment := make(model.Assignment, len(perm))
	for newIdx, oldIdx := range perm {
		permAvgTm[newIdx] = avgTm[oldIdx]
		permAssignment[newIdx] = assignment[oldIdx]
	}
	permMatrix := permuteMatrix(m, perm)

	got := Evaluate(permAssignment, permMatrix, permAvgTm, Params{K: 2, Cap: 4, Weights: model.DefaultWeights()})
	if math.Abs(got.Total-base.Total) > 1e-9 {
		t.Errorf("permuted total = %v, want %v", got.Total, base.Total)
	}
}

// TestPoolLabelSymmetry checks that relabeling pools must not change
// total cost.
func TestPoolLabelSymmetry(t *testing.T) {
	m, avgTm := buildMatrix(t, [][2]string{
		{"AAAAAAAAAA", "TTTTTTTTTT"},
		{"ACGTACGTAC", "TGCATGCATG"},
		{"GGGGGGGGGG", "CCCCCCCCCC"},
		{"AGAGAGAGAG", "TCTCTCTCTC"},
	})
	assignment := model.Assignment{0, 1, 0, 1}
	base := Evaluate(assignment, m, avgTm, Params{K: 2, Cap: 4, Weights: model.DefaultWeights()})

	relabeled := model.Assignment{1, 0, 1, 0}
	got := Evaluate(relabeled, m, avgTm, Params{K: 2, Cap: 4, Weights: model.DefaultWeights()})
	if math.Abs(got.Total-base.Total) > 1e-9 {
		t.Errorf("relabeled total = %v, want %v", got.Total, base.Total)
	}
}

func permuteMatrix(m *interaction.Matrix, perm []int) *interaction.Matrix {
	n := m.N
	cells := make([]float64, n*n)
	for newI, oldI := range perm {
		for newJ, oldJ := range perm {
			cells[newI*n+newJ] = m.At(oldI, oldJ)
		}
	}
	return interaction.FromCells(n, cells)
}
