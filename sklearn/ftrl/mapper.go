package ftrl

import (
	"github.com/YuminosukeSato/ftrl/core/frame"
)

// featureMapper turns the rows of one frame into model indices. It holds no
// per-row state, so a single mapper can serve concurrent goroutines as long as
// each uses its own rowBuffer.
type featureMapper struct {
	d            uint64
	interactions bool
	colHashes    []uint64
	values       []func(i int) uint64
	// owner[k] is the input column credited for the k-th emitted index.
	owner []int
}

// rowBuffer is reusable scratch space for mapping a single row.
type rowBuffer struct {
	hashes []uint64
	index  []uint64
	weight []float64
}

func newFeatureMapper(X *frame.Frame, colHashes []uint64, d uint64, interactions bool, hasher *Hasher) *featureMapper {
	ncols := X.NCols()
	m := &featureMapper{
		d:            d,
		interactions: interactions,
		colHashes:    colHashes,
		values:       make([]func(int) uint64, ncols),
	}
	for j := 0; j < ncols; j++ {
		m.values[j] = hasher.ValueFunc(X.Col(j))
	}

	m.owner = make([]int, 0, nFeatures(ncols, interactions))
	for j := 0; j < ncols; j++ {
		m.owner = append(m.owner, j)
	}
	if interactions {
		for i := 0; i < ncols; i++ {
			for j := i + 1; j < ncols; j++ {
				m.owner = append(m.owner, i)
			}
		}
	}
	return m
}

// nFeatures is the number of indices emitted per row.
func nFeatures(ncols int, interactions bool) int {
	if interactions {
		return ncols + ncols*(ncols-1)/2
	}
	return ncols
}

func (m *featureMapper) newBuffer() *rowBuffer {
	return &rowBuffer{
		hashes: make([]uint64, len(m.values)),
		index:  make([]uint64, len(m.owner)),
		weight: make([]float64, len(m.owner)),
	}
}

// mapRow writes the indices of row i into buf.index, in the order described
// by owner: first one index per column, then one per column pair i<j.
func (m *featureMapper) mapRow(i int, buf *rowBuffer) {
	for j, value := range m.values {
		h := HashFeature(value(i), m.colHashes[j])
		buf.hashes[j] = h
		buf.index[j] = h % m.d
	}
	if !m.interactions {
		return
	}
	k := len(m.values)
	for a := 0; a < len(buf.hashes); a++ {
		for b := a + 1; b < len(buf.hashes); b++ {
			buf.index[k] = HashInteraction(buf.hashes[a], buf.hashes[b]) % m.d
			k++
		}
	}
}

// columnHashes hashes every column name of X.
func columnHashes(X *frame.Frame) []uint64 {
	out := make([]uint64, X.NCols())
	for j, name := range X.Names() {
		out[j] = HashColumn(name)
	}
	return out
}
