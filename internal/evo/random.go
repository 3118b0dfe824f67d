package evo

import (
	"fmt"
	"math/rand"

	"neuroevo/internal/model"
)

// Source is the random stream every operator draws from. *rand.Rand
// satisfies it.
type Source interface {
	// Float64 returns a uniform value in [0, 1).
	Float64() float64
	// Intn returns a uniform integer in [0, n). n must be > 0.
	Intn(n int) int
}

// NewSource returns a seeded stream for reproducible runs.
func NewSource(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// RandomPopulation draws size gene vectors of geneLength uniform values in [0, 1).
func RandomPopulation(rng Source, size, geneLength int) (model.Population, error) {
	if rng == nil {
		return nil, ErrRandomSourceNeeded
	}
	if size <= 0 {
		return nil, fmt.Errorf("%w: size=%d", ErrEmptyPopulation, size)
	}
	if geneLength <= 0 {
		return nil, fmt.Errorf("%w: gene length must be > 0, got %d", ErrLengthMismatch, geneLength)
	}

	population := make(model.Population, size)
	for i := range population {
		genes := make(model.GeneVector, geneLength)
		for j := range genes {
			genes[j] = rng.Float64()
		}
		population[i] = genes
	}
	return population, nil
}

// checkShape verifies the population is non-empty and every individual has
// the same, non-zero gene length. It returns that length.
func checkShape(population model.Population) (int, error) {
	if len(population) == 0 {
		return 0, ErrEmptyPopulation
	}
	geneLength := len(population[0])
	if geneLength == 0 {
		return 0, fmt.Errorf("%w: individual 0 has no genes", ErrLengthMismatch)
	}
	for i, genes := range population {
		if len(genes) != geneLength {
			return 0, fmt.Errorf("%w: individual %d has %d genes, want %d", ErrLengthMismatch, i, len(genes), geneLength)
		}
	}
	return geneLength, nil
}
