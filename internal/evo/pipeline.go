package evo

import (
	"fmt"

	"neuroevo/internal/model"
)

const (
	DefaultTournamentSize   = 3
	DefaultTruncateFraction = 0.5
)

// Operators is the closed operator configuration of a generation step.
type Operators struct {
	Selection        SelectionKind
	TournamentSize   int
	TruncateFraction float64
	Crossover        CrossoverKind
	Mutation         MutationKind
	MutationRate     float64
}

// DefaultOperators mirrors the classic setup: roulette, one-point, random reset.
func DefaultOperators() Operators {
	return Operators{
		Selection:        SelectRoulette,
		TournamentSize:   DefaultTournamentSize,
		TruncateFraction: DefaultTruncateFraction,
		Crossover:        CrossOnePoint,
		Mutation:         MutateRandom,
		MutationRate:     0.05,
	}
}

// Pipeline runs selection, crossover and mutation in that order.
type Pipeline struct {
	Selector  Selector
	Crossover Crossover
	Mutator   Mutator
	Rate      float64
}

// NewPipeline resolves the operator kinds into a reusable pipeline.
func NewPipeline(ops Operators) (*Pipeline, error) {
	if err := checkRate(ops.MutationRate); err != nil {
		return nil, err
	}
	selector, err := NewSelector(ops.Selection, ops.TournamentSize, ops.TruncateFraction)
	if err != nil {
		return nil, err
	}
	crossover, err := NewCrossover(ops.Crossover)
	if err != nil {
		return nil, err
	}
	mutator, err := NewMutator(ops.Mutation)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		Selector:  selector,
		Crossover: crossover,
		Mutator:   mutator,
		Rate:      ops.MutationRate,
	}, nil
}

// Step produces the next generation. The input population is not modified.
func (p *Pipeline) Step(rng Source, population model.Population, fitness []int) (model.Population, error) {
	parents, err := p.Selector.Select(rng, population, fitness)
	if err != nil {
		return nil, fmt.Errorf("%s selection: %w", p.Selector.Name(), err)
	}
	children, err := p.Crossover.Cross(rng, parents)
	if err != nil {
		return nil, fmt.Errorf("%s crossover: %w", p.Crossover.Name(), err)
	}
	mutated, err := p.Mutator.Mutate(rng, children, p.Rate)
	if err != nil {
		return nil, fmt.Errorf("%s mutation: %w", p.Mutator.Name(), err)
	}
	return mutated, nil
}

// Step runs one generation with the given operators.
func Step(rng Source, population model.Population, fitness []int, ops Operators) (model.Population, error) {
	pipeline, err := NewPipeline(ops)
	if err != nil {
		return nil, err
	}
	return pipeline.Step(rng, population, fitness)
}
