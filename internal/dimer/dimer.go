// Package dimer computes pairwise primer-dimer interaction scores: the
// sliding-window maximum complementary run score used to build the
// interaction matrix.
package dimer

import "github.com/alokmishra/primerpool/internal/model"

// Score returns the dimer score between two base-code sequences: the
// maximum, over every alignment offset, of the sum of per-position run
// contributions where a complementary run of length L contributes
// L*(L+1)/2.
//
// comp(x,y) holds when (x^y)==3 under the A=0,C=1,G=2,T=3 encoding.
func Score(s, t []model.Base) int {
	best := 0
	for offset := -(len(t) - 1); offset <= len(s)-1; offset++ {
		if score := alignmentScore(s, t, offset); score > best {
			best = score
		}
	}
	return best
}

// alignmentScore sums per-position run contributions across the overlap of
// s and t at the given offset (t shifted right by offset relative to s).
func alignmentScore(s, t []model.Base, offset int) int {
	lo := offset
	if lo < 0 {
		lo = 0
	}
	hi := len(s)
	if offset+len(t) < hi {
		hi = offset + len(t)
	}

	score := 0
	run := 0
	for i := lo; i < hi; i++ {
		if complementary(s[i], t[i-offset]) {
			run++
			score += run
		} else {
			run = 0
		}
	}
	return score
}

func complementary(x, y model.Base) bool {
	return (x ^ y) == 3
}

// PairScore returns the worst-case dimer interaction between two encoded
// primers across all four orientation combinations, including the
// self-interaction case (i==j).
func PairScore(a, b model.EncodedPrimer) int {
	scores := [4]int{
		Score(a.FwdCodes, b.FwdCodes),
		Score(a.RevCodes, b.RevCodes),
		Score(a.FwdCodes, b.RevCodes),
		Score(a.RevCodes, b.FwdCodes),
	}
	max := scores[0]
	for _, s := range scores[1:] {
		if s > max {
			max = s
		}
	}
	return max
}
