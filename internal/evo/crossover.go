package evo

import (
	"fmt"

	"neuroevo/internal/model"
)

// Crossover recombines consecutive parent pairs (0,1), (2,3), ... into
// children of the same shape.
type Crossover interface {
	Name() string
	Cross(rng Source, parents model.Population) (model.Population, error)
}

// OnePointCrossover swaps the tails of each pair after a random division index.
type OnePointCrossover struct{}

func (OnePointCrossover) Name() string {
	return "one_point"
}

func (OnePointCrossover) Cross(rng Source, parents model.Population) (model.Population, error) {
	geneLength, err := checkPairs(rng, parents)
	if err != nil {
		return nil, err
	}

	children := make(model.Population, len(parents))
	for i := 0; i < len(parents); i += 2 {
		division := rng.Intn(geneLength)
		children[i], children[i+1] = swapWindow(parents[i], parents[i+1], division, geneLength)
	}
	return children, nil
}

// TwoPointCrossover swaps a window of half the gene length starting at a
// random index in the first half.
type TwoPointCrossover struct{}

func (TwoPointCrossover) Name() string {
	return "two_point"
}

func (TwoPointCrossover) Cross(rng Source, parents model.Population) (model.Population, error) {
	geneLength, err := checkPairs(rng, parents)
	if err != nil {
		return nil, err
	}

	half := geneLength / 2
	children := make(model.Population, len(parents))
	for i := 0; i < len(parents); i += 2 {
		// A single gene leaves no window to swap.
		if half == 0 {
			children[i], children[i+1] = parents[i].Clone(), parents[i+1].Clone()
			continue
		}
		start := rng.Intn(half)
		children[i], children[i+1] = swapWindow(parents[i], parents[i+1], start, start+half)
	}
	return children, nil
}

// IdentityCrossover returns the parents unchanged.
type IdentityCrossover struct{}

func (IdentityCrossover) Name() string {
	return "none"
}

func (IdentityCrossover) Cross(_ Source, parents model.Population) (model.Population, error) {
	if _, err := checkShape(parents); err != nil {
		return nil, err
	}
	return parents, nil
}

// swapWindow returns copies of a and b with positions [from, to) exchanged.
func swapWindow(a, b model.GeneVector, from, to int) (model.GeneVector, model.GeneVector) {
	childA := a.Clone()
	childB := b.Clone()
	copy(childA[from:to], b[from:to])
	copy(childB[from:to], a[from:to])
	return childA, childB
}

func checkPairs(rng Source, parents model.Population) (int, error) {
	if rng == nil {
		return 0, ErrRandomSourceNeeded
	}
	geneLength, err := checkShape(parents)
	if err != nil {
		return 0, err
	}
	if len(parents)%2 != 0 {
		return 0, fmt.Errorf("%w: size=%d", ErrOddPopulation, len(parents))
	}
	return geneLength, nil
}
