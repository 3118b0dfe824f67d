package evo

import (
	"errors"
	"testing"
)

func TestParseOperatorNames(t *testing.T) {
	selections := map[string]SelectionKind{
		"roulette":   SelectRoulette,
		"Tournament": SelectTournament,
		"truncate":   SelectTruncate,
		"truncation": SelectTruncate,
		" none ":     SelectNone,
	}
	for name, want := range selections {
		got, err := ParseSelection(name)
		if err != nil || got != want {
			t.Fatalf("ParseSelection(%q): got=%v err=%v want=%v", name, got, err, want)
		}
	}

	crossovers := map[string]CrossoverKind{
		"one_point": CrossOnePoint,
		"one-point": CrossOnePoint,
		"OnePoint":  CrossOnePoint,
		"two_point": CrossTwoPoint,
		"none":      CrossNone,
	}
	for name, want := range crossovers {
		got, err := ParseCrossover(name)
		if err != nil || got != want {
			t.Fatalf("ParseCrossover(%q): got=%v err=%v want=%v", name, got, err, want)
		}
	}

	mutations := map[string]MutationKind{
		"random":   MutateRandom,
		"UNIFORM":  MutateUniform,
		"gaussian": MutateGaussian,
		"none":     MutateNone,
	}
	for name, want := range mutations {
		got, err := ParseMutation(name)
		if err != nil || got != want {
			t.Fatalf("ParseMutation(%q): got=%v err=%v want=%v", name, got, err, want)
		}
	}
}

func TestParseUnknownOperator(t *testing.T) {
	if _, err := ParseSelection("elite"); !errors.Is(err, ErrUnknownOperator) {
		t.Fatalf("expected ErrUnknownOperator, got %v", err)
	}
	if _, err := ParseCrossover("uniform"); !errors.Is(err, ErrUnknownOperator) {
		t.Fatalf("expected ErrUnknownOperator, got %v", err)
	}
	if _, err := ParseMutation("cauchy"); !errors.Is(err, ErrUnknownOperator) {
		t.Fatalf("expected ErrUnknownOperator, got %v", err)
	}
}

func TestKindNamesRoundTrip(t *testing.T) {
	for kind, name := range selectionNames {
		if kind.String() != name {
			t.Fatalf("unexpected name for %d: %s", int(kind), kind.String())
		}
		parsed, err := ParseSelection(kind.String())
		if err != nil || parsed != kind {
			t.Fatalf("selection %s did not parse back: %v %v", name, parsed, err)
		}
	}
	if got := SelectionKind(9).String(); got != "selection(9)" {
		t.Fatalf("unexpected fallback name: %s", got)
	}
}

func TestNewSelectorValidatesParameters(t *testing.T) {
	if _, err := NewSelector(SelectTournament, 0, 0); !errors.Is(err, ErrInvalidTournament) {
		t.Fatalf("expected ErrInvalidTournament, got %v", err)
	}
	if _, err := NewSelector(SelectTruncate, 0, 0); !errors.Is(err, ErrInvalidFraction) {
		t.Fatalf("expected ErrInvalidFraction, got %v", err)
	}
	selector, err := NewSelector(SelectTruncate, 0, 0.3)
	if err != nil {
		t.Fatalf("new selector: %v", err)
	}
	if selector.Name() != "truncate" {
		t.Fatalf("unexpected selector: %s", selector.Name())
	}
}
