package evo

import (
	"fmt"
	"math"

	"neuroevo/internal/model"
)

// Mutator perturbs each gene independently with probability rate.
type Mutator interface {
	Name() string
	Mutate(rng Source, population model.Population, rate float64) (model.Population, error)
}

// RandomResetMutator replaces a mutated gene with a fresh uniform value.
type RandomResetMutator struct{}

func (RandomResetMutator) Name() string {
	return "random"
}

func (RandomResetMutator) Mutate(rng Source, population model.Population, rate float64) (model.Population, error) {
	return mutateGenes(rng, population, rate, func(_ float64) float64 {
		return rng.Float64()
	})
}

// UniformPerturbMutator adds a uniform value and wraps once back into [0, 1).
type UniformPerturbMutator struct{}

func (UniformPerturbMutator) Name() string {
	return "uniform"
}

func (UniformPerturbMutator) Mutate(rng Source, population model.Population, rate float64) (model.Population, error) {
	return mutateGenes(rng, population, rate, func(gene float64) float64 {
		return wrapOnce(gene + rng.Float64())
	})
}

// GaussianPerturbMutator adds a standard-normal deviate and folds the result
// into [0, 1) with abs(v mod 1).
type GaussianPerturbMutator struct{}

func (GaussianPerturbMutator) Name() string {
	return "gaussian"
}

func (GaussianPerturbMutator) Mutate(rng Source, population model.Population, rate float64) (model.Population, error) {
	return mutateGenes(rng, population, rate, func(gene float64) float64 {
		return foldUnit(gene + boxMuller(rng))
	})
}

// IdentityMutator returns the population unchanged.
type IdentityMutator struct{}

func (IdentityMutator) Name() string {
	return "none"
}

func (IdentityMutator) Mutate(_ Source, population model.Population, rate float64) (model.Population, error) {
	if err := checkRate(rate); err != nil {
		return nil, err
	}
	if _, err := checkShape(population); err != nil {
		return nil, err
	}
	return population, nil
}

// mutateGenes draws one uniform per gene, in population then gene order, and
// applies mutate when the draw falls below rate. Extra draws made by mutate
// follow immediately.
func mutateGenes(rng Source, population model.Population, rate float64, mutate func(float64) float64) (model.Population, error) {
	if rng == nil {
		return nil, ErrRandomSourceNeeded
	}
	if err := checkRate(rate); err != nil {
		return nil, err
	}
	if _, err := checkShape(population); err != nil {
		return nil, err
	}

	mutated := make(model.Population, len(population))
	for i, genes := range population {
		out := make(model.GeneVector, len(genes))
		for j, gene := range genes {
			if rng.Float64() < rate {
				out[j] = mutate(gene)
			} else {
				out[j] = gene
			}
		}
		mutated[i] = out
	}
	return mutated, nil
}

func checkRate(rate float64) error {
	if math.IsNaN(rate) || rate < 0 || rate > 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidRate, rate)
	}
	return nil
}

// wrapOnce subtracts one from values at or above 1. Inputs are expected in
// [0, 2).
func wrapOnce(v float64) float64 {
	if v >= 1 {
		return v - 1
	}
	return v
}

func foldUnit(v float64) float64 {
	return math.Abs(math.Mod(v, 1))
}

// boxMuller returns a standard-normal deviate from two uniforms in (0, 1].
func boxMuller(rng Source) float64 {
	u1 := 1 - rng.Float64()
	u2 := 1 - rng.Float64()
	return math.Sqrt(-2*math.Log(u1)) * math.Sin(2*math.Pi*u2)
}
