package evo

import (
	"fmt"
	"sort"

	"neuroevo/internal/model"
)

// Selector chooses a parent population of the same size as its input.
type Selector interface {
	Name() string
	Select(rng Source, population model.Population, fitness []int) (model.Population, error)
}

// RouletteSelector picks each parent with probability proportional to its
// fitness.
type RouletteSelector struct{}

func (RouletteSelector) Name() string {
	return "roulette"
}

func (RouletteSelector) Select(rng Source, population model.Population, fitness []int) (model.Population, error) {
	if err := checkSelectionInput(rng, population, fitness); err != nil {
		return nil, err
	}

	total := 0
	for _, f := range fitness {
		total += f
	}
	if total <= 0 {
		return nil, fmt.Errorf("%w: total=%d", ErrZeroTotalFitness, total)
	}

	parents := make(model.Population, len(population))
	for i := range parents {
		draw := rng.Intn(total)
		accumulated := 0
		picked := len(fitness) - 1
		for j, f := range fitness {
			accumulated += f
			if draw < accumulated {
				picked = j
				break
			}
		}
		parents[i] = population[picked]
	}
	return parents, nil
}

// TournamentSelector samples Size individuals with replacement and keeps the
// fittest; ties go to the first sampled.
type TournamentSelector struct {
	Size int
}

func (TournamentSelector) Name() string {
	return "tournament"
}

func (s TournamentSelector) Select(rng Source, population model.Population, fitness []int) (model.Population, error) {
	if err := checkSelectionInput(rng, population, fitness); err != nil {
		return nil, err
	}
	if s.Size < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidTournament, s.Size)
	}

	parents := make(model.Population, len(population))
	for i := range parents {
		best := rng.Intn(len(population))
		for k := 1; k < s.Size; k++ {
			candidate := rng.Intn(len(population))
			if fitness[candidate] > fitness[best] {
				best = candidate
			}
		}
		parents[i] = population[best]
	}
	return parents, nil
}

// TruncationSelector keeps the top Fraction of the population by fitness and
// cycles through it in rank order to refill every slot.
type TruncationSelector struct {
	Fraction float64
}

func (TruncationSelector) Name() string {
	return "truncate"
}

func (s TruncationSelector) Select(_ Source, population model.Population, fitness []int) (model.Population, error) {
	if err := checkAlignment(population, fitness); err != nil {
		return nil, err
	}
	if s.Fraction <= 0 || s.Fraction > 1 {
		return nil, fmt.Errorf("%w: fraction=%v", ErrInvalidFraction, s.Fraction)
	}
	truncateSize := int(float64(len(population)) * s.Fraction)
	if truncateSize < 1 {
		return nil, fmt.Errorf("%w: population=%d fraction=%v", ErrInvalidFraction, len(population), s.Fraction)
	}

	ranked := make([]int, len(population))
	for i := range ranked {
		ranked[i] = i
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return fitness[ranked[a]] > fitness[ranked[b]]
	})

	parents := make(model.Population, len(population))
	for i := range parents {
		parents[i] = population[ranked[i%truncateSize]]
	}
	return parents, nil
}

// IdentitySelector returns the population unchanged.
type IdentitySelector struct{}

func (IdentitySelector) Name() string {
	return "none"
}

func (IdentitySelector) Select(_ Source, population model.Population, fitness []int) (model.Population, error) {
	if err := checkAlignment(population, fitness); err != nil {
		return nil, err
	}
	return population, nil
}

func checkSelectionInput(rng Source, population model.Population, fitness []int) error {
	if rng == nil {
		return ErrRandomSourceNeeded
	}
	return checkAlignment(population, fitness)
}

func checkAlignment(population model.Population, fitness []int) error {
	if _, err := checkShape(population); err != nil {
		return err
	}
	if len(population) != len(fitness) {
		return fmt.Errorf("%w: population=%d fitness=%d", ErrLengthMismatch, len(population), len(fitness))
	}
	return nil
}
