// Package index implements an in-memory exact nearest-neighbor index over
// fixed-dimension embedding vectors.
//
// The index is flat: a query computes the squared Euclidean distance to
// every stored vector. Collections are small enough (profiles and projects
// of one deployment) that exact search is both simpler and more accurate
// than an approximate structure.
package index

import (
	"errors"
	"fmt"
	"sort"
)

// ErrDimensionMismatch indicates that a vector presented to the index
// disagrees with the index's fixed embedding dimension. This is always an
// integration bug, never retried.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Result is one nearest-neighbor hit.
type Result[E any] struct {
	// Entity is the indexed entity, in the state it had at rebuild time.
	Entity E

	// Distance is the squared Euclidean distance to the query vector.
	Distance float64
}

// Flat is an exact nearest-neighbor index over one entity collection.
// Entities and vectors are held in strict parallel order; the collection
// is replaced wholesale on every Rebuild. Flat is not safe for concurrent
// use; callers serialize rebuild+query as one unit per collection.
type Flat[E any] struct {
	dim      int
	entities []E
	vectors  [][]float32
}

// NewFlat creates an empty index. Until the first non-empty Rebuild the
// index has no fixed dimension and every query returns no results.
func NewFlat[E any]() *Flat[E] {
	return &Flat[E]{}
}

// Rebuild discards the previous index contents and stores the given
// entities with their vectors. entities and vectors must be parallel
// slices and all vectors must share one dimension; any shape violation
// fails with ErrDimensionMismatch. Empty input is valid and yields an
// index that returns no results.
func (ix *Flat[E]) Rebuild(entities []E, vectors [][]float32) error {
	if len(entities) != len(vectors) {
		return fmt.Errorf("%w: %d entities but %d vectors",
			ErrDimensionMismatch, len(entities), len(vectors))
	}

	if len(vectors) == 0 {
		ix.dim = 0
		ix.entities = nil
		ix.vectors = nil
		return nil
	}

	dim := len(vectors[0])
	if dim == 0 {
		return fmt.Errorf("%w: zero-length vector at position 0", ErrDimensionMismatch)
	}
	for i, v := range vectors {
		if len(v) != dim {
			return fmt.Errorf("%w: vector %d has dimension %d, expected %d",
				ErrDimensionMismatch, i, len(v), dim)
		}
	}

	// Copy so later mutation of the caller's slices can't corrupt the index.
	ents := make([]E, len(entities))
	copy(ents, entities)
	vecs := make([][]float32, len(vectors))
	for i, v := range vectors {
		vec := make([]float32, len(v))
		copy(vec, v)
		vecs[i] = vec
	}

	ix.dim = dim
	ix.entities = ents
	ix.vectors = vecs
	return nil
}

// Search returns up to min(k, Len()) nearest entities by squared
// Euclidean distance, ascending (closest first). Ties are broken by
// original insertion order. An empty index returns an empty slice, not
// an error. A query vector of the wrong dimension fails with
// ErrDimensionMismatch.
func (ix *Flat[E]) Search(query []float32, k int) ([]Result[E], error) {
	if len(ix.vectors) == 0 {
		return []Result[E]{}, nil
	}
	if len(query) != ix.dim {
		return nil, fmt.Errorf("%w: query has dimension %d, index has %d",
			ErrDimensionMismatch, len(query), ix.dim)
	}
	if k <= 0 {
		return []Result[E]{}, nil
	}
	if k > len(ix.vectors) {
		k = len(ix.vectors)
	}

	order := make([]int, len(ix.vectors))
	dists := make([]float64, len(ix.vectors))
	for i, v := range ix.vectors {
		order[i] = i
		dists[i] = SquaredDistance(query, v)
	}

	// SliceStable preserves insertion order between equal distances.
	sort.SliceStable(order, func(a, b int) bool {
		return dists[order[a]] < dists[order[b]]
	})

	results := make([]Result[E], k)
	for i := 0; i < k; i++ {
		pos := order[i]
		results[i] = Result[E]{Entity: ix.entities[pos], Distance: dists[pos]}
	}
	return results, nil
}

// Len returns the number of indexed entities.
func (ix *Flat[E]) Len() int {
	return len(ix.entities)
}

// Dimension returns the index's fixed vector dimension, or 0 when empty.
func (ix *Flat[E]) Dimension() int {
	return ix.dim
}

// SquaredDistance computes the squared Euclidean distance between two
// vectors of equal length. Accumulation is done in float64 to avoid
// float32 rounding drift on long vectors.
func SquaredDistance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}

// Similarity converts a squared Euclidean distance to a bounded
// compatibility score: 1/(1+d). Zero distance maps to 1 and the score
// decreases monotonically toward 0 as distance grows.
func Similarity(distance float64) float64 {
	return 1.0 / (1.0 + distance)
}
