// Package interaction builds the symmetric N×N pairwise dimer-interaction
// matrix in parallel, following the job/result worker-pool pattern used
// throughout this codebase for independent per-item computation.
package interaction

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/alokmishra/primerpool/internal/dimer"
	"github.com/alokmishra/primerpool/internal/model"
	"github.com/alokmishra/primerpool/internal/poolerr"
)

// Matrix is a symmetric N×N matrix of non-negative pairwise dimer scores,
// including the diagonal (self-interaction).
type Matrix struct {
	N     int
	cells []float64 // row-major, len == N*N
}

// FromCells wraps a pre-computed row-major N×N cell slice as a Matrix,
// taking ownership of cells. Used by callers that need to construct a
// Matrix from an already-scored source, e.g. permutation tests.
func FromCells(n int, cells []float64) *Matrix {
	return &Matrix{N: n, cells: cells}
}

// At returns M[i][j].
func (m *Matrix) At(i, j int) float64 {
	return m.cells[i*m.N+j]
}

func (m *Matrix) set(i, j int, v float64) {
	m.cells[i*m.N+j] = v
}

// chunkMinCells is the rule-of-thumb minimum number of cells a chunk should
// cover to amortize scheduling overhead.
const chunkMinCells = 256

// Build computes the interaction matrix for the given encoded primers,
// splitting the upper-triangle index set into contiguous row-range chunks
// and dispatching them to a pool of up to workers goroutines (GOMAXPROCS
// when workers <= 0). It checks ctx between chunks; on cancellation it returns ctx.Err() wrapped as
// poolerr.ErrCancelled with no partial matrix. If any worker's scoring
// panics, the whole build fails with MatrixBuildError; no partial matrix is
// returned.
func Build(ctx context.Context, primers []model.EncodedPrimer, workers int) (*Matrix, error) {
	n := len(primers)
	m := &Matrix{N: n, cells: make([]float64, n*n)}
	if n == 0 {
		return m, nil
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	chunks := rowChunks(n, workers)

	type job struct {
		rowLo, rowHi int
	}
	type result struct {
		err error
	}

	jobs := make(chan job)
	results := make(chan result, len(chunks))

	workerCount := workers
	if workerCount > len(chunks) {
		workerCount = len(chunks)
	}

	var wg sync.WaitGroup
	wg.Add(workerCount)
	for w := 0; w < workerCount; w++ {
		go func() {
			defer wg.Done()
			for j := range jobs {
				results <- result{err: buildRows(m, primers, j.rowLo, j.rowHi)}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, c := range chunks {
			select {
			case <-ctx.Done():
				return
			case jobs <- job{rowLo: c.lo, rowHi: c.hi}:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var firstErr error
	for res := range results {
		if res.err != nil && firstErr == nil {
			firstErr = res.err
		}
	}

	if firstErr != nil {
		return nil, firstErr
	}
	if ctx.Err() != nil {
		return nil, fmt.Errorf("%w: %v", poolerr.ErrCancelled, ctx.Err())
	}
	return m, nil
}

// buildRows scores every pair (i,j) with i in [rowLo,rowHi) and j in
// [i,N), writing both M[i][j] and M[j][i]. A panic during scoring is
// recovered and surfaced as a MatrixBuildError naming the pair being
// scored at the time of the panic, so the caller never sees a partial
// matrix.
func buildRows(m *Matrix, primers []model.EncodedPrimer, rowLo, rowHi int) (err error) {
	var curI, curJ int
	defer func() {
		if r := recover(); r != nil {
			err = poolerr.NewMatrixBuildFailed(curI, curJ, panicError{r})
		}
	}()
	for i := rowLo; i < rowHi; i++ {
		for j := i; j < m.N; j++ {
			curI, curJ = i, j
			score := float64(dimer.PairScore(primers[i], primers[j]))
			m.set(i, j, score)
			m.set(j, i, score)
		}
	}
	return nil
}

type panicError struct{ v any }

func (p panicError) Error() string {
	return fmt.Sprintf("panic: %v", p.v)
}

type rowRange struct{ lo, hi int }

// rowChunks splits [0,n) into contiguous row ranges sized so that each
// chunk covers at least chunkMinCells upper-triangle cells (to amortize
// scheduling overhead) while still producing enough chunks to keep
// `workers` busy.
func rowChunks(n, workers int) []rowRange {
	if workers < 1 {
		workers = 1
	}
	totalCells := n * (n + 1) / 2
	targetChunks := workers * 4
	if targetChunks < 1 {
		targetChunks = 1
	}
	cellsPerChunk := totalCells / targetChunks
	if cellsPerChunk < chunkMinCells {
		cellsPerChunk = chunkMinCells
	}

	var chunks []rowRange
	lo := 0
	for lo < n {
		hi := lo
		cells := 0
		for hi < n && cells < cellsPerChunk {
			cells += n - hi // row hi contributes (n-hi) upper-triangle cells
			hi++
		}
		chunks = append(chunks, rowRange{lo: lo, hi: hi})
		lo = hi
	}
	return chunks
}
