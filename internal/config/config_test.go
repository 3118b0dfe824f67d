package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"neuroevo/internal/evo"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadINI(t *testing.T) {
	path := writeFile(t, "run.ini", `
[run]
scape = linear
population = 24
generations = 40
; seeds are int64
seed = 7
workers = 4

[operators]
selection = tournament
tournament_size = 5
crossover = two_point
mutation = gaussian
mutation_rate = 0.15
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Run.Scape != "linear" || cfg.Run.Population != 24 || cfg.Run.Generations != 40 || cfg.Run.Seed != 7 || cfg.Run.Workers != 4 {
		t.Fatalf("unexpected run section: %+v", cfg.Run)
	}
	if cfg.Storage.DBPath != "neuroevo.db" {
		t.Fatalf("expected default db path, got %q", cfg.Storage.DBPath)
	}

	ops, err := cfg.Resolve()
	if err != nil {
		t.Fatalf("operators: %v", err)
	}
	if ops.Selection != evo.SelectTournament || ops.TournamentSize != 5 || ops.Crossover != evo.CrossTwoPoint || ops.Mutation != evo.MutateGaussian {
		t.Fatalf("unexpected operators: %+v", ops)
	}
	if ops.MutationRate != 0.15 {
		t.Fatalf("unexpected rate: %v", ops.MutationRate)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "run.yaml", `
run:
  scape: xor
  population: 10
  snapshot_every: 5
operators:
  selection: truncate
  truncate_fraction: 0.3
  mutation: uniform
storage:
  kind: memory
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Run.Population != 10 || cfg.Run.Generations != 100 || cfg.Run.SnapshotEvery != 5 {
		t.Fatalf("unexpected run section: %+v", cfg.Run)
	}
	ops, err := cfg.Resolve()
	if err != nil {
		t.Fatalf("operators: %v", err)
	}
	if ops.Selection != evo.SelectTruncate || ops.TruncateFraction != 0.3 || ops.Crossover != evo.CrossOnePoint || ops.Mutation != evo.MutateUniform {
		t.Fatalf("unexpected operators: %+v", ops)
	}
	if cfg.Storage.Kind != "memory" {
		t.Fatalf("unexpected storage: %+v", cfg.Storage)
	}
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    error
	}{
		{name: "odd-population", file: "a.yaml", content: "run:\n  population: 7\n", want: evo.ErrOddPopulation},
		{name: "bad-rate", file: "b.ini", content: "[operators]\nmutation_rate = 1.5\n", want: evo.ErrInvalidRate},
		{name: "unknown-selection", file: "c.yml", content: "operators:\n  selection: elite\n", want: evo.ErrUnknownOperator},
		{name: "bad-fraction", file: "d.ini", content: "[operators]\nselection = truncate\ntruncate_fraction = 0\n", want: evo.ErrInvalidFraction},
		{name: "unknown-format", file: "e.toml", content: "", want: ErrUnsupportedFormat},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tc.file, tc.content))
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}
