package evo

import (
	"errors"
	"fmt"
	"strings"

	"neuroevo/internal/nn"
)

var (
	ErrLengthMismatch     = nn.ErrLengthMismatch
	ErrEmptyPopulation    = errors.New("population is empty")
	ErrOddPopulation      = errors.New("crossover requires an even population")
	ErrInvalidFraction    = errors.New("truncation fraction selects no individuals")
	ErrZeroTotalFitness   = errors.New("roulette selection requires positive total fitness")
	ErrInvalidRate        = errors.New("mutation rate must be in [0, 1]")
	ErrInvalidTournament  = errors.New("tournament size must be >= 1")
	ErrUnknownOperator    = errors.New("unknown operator")
	ErrRandomSourceNeeded = errors.New("random source is required")
)

type SelectionKind int

const (
	SelectRoulette SelectionKind = iota
	SelectTournament
	SelectTruncate
	SelectNone
)

type CrossoverKind int

const (
	CrossOnePoint CrossoverKind = iota
	CrossTwoPoint
	CrossNone
)

type MutationKind int

const (
	MutateRandom MutationKind = iota
	MutateUniform
	MutateGaussian
	MutateNone
)

var selectionNames = map[SelectionKind]string{
	SelectRoulette:   "roulette",
	SelectTournament: "tournament",
	SelectTruncate:   "truncate",
	SelectNone:       "none",
}

var crossoverNames = map[CrossoverKind]string{
	CrossOnePoint: "one_point",
	CrossTwoPoint: "two_point",
	CrossNone:     "none",
}

var mutationNames = map[MutationKind]string{
	MutateRandom:   "random",
	MutateUniform:  "uniform",
	MutateGaussian: "gaussian",
	MutateNone:     "none",
}

func (k SelectionKind) String() string {
	if name, ok := selectionNames[k]; ok {
		return name
	}
	return fmt.Sprintf("selection(%d)", int(k))
}

func (k CrossoverKind) String() string {
	if name, ok := crossoverNames[k]; ok {
		return name
	}
	return fmt.Sprintf("crossover(%d)", int(k))
}

func (k MutationKind) String() string {
	if name, ok := mutationNames[k]; ok {
		return name
	}
	return fmt.Sprintf("mutation(%d)", int(k))
}

// ParseSelection resolves a selection name such as "tournament".
func ParseSelection(name string) (SelectionKind, error) {
	key := normalizeName(name)
	if key == "truncation" {
		key = "truncate"
	}
	for kind, known := range selectionNames {
		if known == key {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("%w: selection %q", ErrUnknownOperator, name)
}

// ParseCrossover resolves a crossover name; "one-point" and "onepoint" are
// accepted alongside "one_point".
func ParseCrossover(name string) (CrossoverKind, error) {
	key := strings.ReplaceAll(normalizeName(name), "_", "")
	for kind, known := range crossoverNames {
		if strings.ReplaceAll(known, "_", "") == key {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("%w: crossover %q", ErrUnknownOperator, name)
}

func ParseMutation(name string) (MutationKind, error) {
	key := normalizeName(name)
	for kind, known := range mutationNames {
		if known == key {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("%w: mutation %q", ErrUnknownOperator, name)
}

func normalizeName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
}

// NewSelector builds the selector for a kind. Tournament size and truncation
// fraction are only read by the kinds that use them.
func NewSelector(kind SelectionKind, tournamentSize int, truncateFraction float64) (Selector, error) {
	switch kind {
	case SelectRoulette:
		return RouletteSelector{}, nil
	case SelectTournament:
		if tournamentSize < 1 {
			return nil, fmt.Errorf("%w: got %d", ErrInvalidTournament, tournamentSize)
		}
		return TournamentSelector{Size: tournamentSize}, nil
	case SelectTruncate:
		if truncateFraction <= 0 || truncateFraction > 1 {
			return nil, fmt.Errorf("%w: fraction=%v", ErrInvalidFraction, truncateFraction)
		}
		return TruncationSelector{Fraction: truncateFraction}, nil
	case SelectNone:
		return IdentitySelector{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownOperator, kind)
	}
}

func NewCrossover(kind CrossoverKind) (Crossover, error) {
	switch kind {
	case CrossOnePoint:
		return OnePointCrossover{}, nil
	case CrossTwoPoint:
		return TwoPointCrossover{}, nil
	case CrossNone:
		return IdentityCrossover{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownOperator, kind)
	}
}

func NewMutator(kind MutationKind) (Mutator, error) {
	switch kind {
	case MutateRandom:
		return RandomResetMutator{}, nil
	case MutateUniform:
		return UniformPerturbMutator{}, nil
	case MutateGaussian:
		return GaussianPerturbMutator{}, nil
	case MutateNone:
		return IdentityMutator{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownOperator, kind)
	}
}
