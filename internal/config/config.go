// Package config loads run settings from INI or YAML files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"

	"neuroevo/internal/evo"
)

var ErrUnsupportedFormat = errors.New("unsupported config format")

// RunConfig holds every knob of an evolutionary run.
type RunConfig struct {
	Run       RunSection      `yaml:"run"`
	Operators OperatorSection `yaml:"operators"`
	Storage   StorageSection  `yaml:"storage"`
}

type RunSection struct {
	ID          string `yaml:"id" ini:"id"`
	Scape       string `yaml:"scape" ini:"scape"`
	Population  int    `yaml:"population" ini:"population"`
	Generations int    `yaml:"generations" ini:"generations"`
	Seed        int64  `yaml:"seed" ini:"seed"`
	Workers     int    `yaml:"workers" ini:"workers"`
	FitnessGoal int    `yaml:"fitness_goal" ini:"fitness_goal"`
	// SnapshotEvery stores the population every N generations. Zero keeps
	// only the final one.
	SnapshotEvery int `yaml:"snapshot_every" ini:"snapshot_every"`
}

type OperatorSection struct {
	Selection        string  `yaml:"selection" ini:"selection"`
	TournamentSize   int     `yaml:"tournament_size" ini:"tournament_size"`
	TruncateFraction float64 `yaml:"truncate_fraction" ini:"truncate_fraction"`
	Crossover        string  `yaml:"crossover" ini:"crossover"`
	Mutation         string  `yaml:"mutation" ini:"mutation"`
	MutationRate     float64 `yaml:"mutation_rate" ini:"mutation_rate"`
}

type StorageSection struct {
	Kind   string `yaml:"kind" ini:"kind"`
	DBPath string `yaml:"db_path" ini:"db_path"`
}

// Default returns the settings used when neither a file nor a flag overrides them.
func Default() RunConfig {
	ops := evo.DefaultOperators()
	return RunConfig{
		Run: RunSection{
			Scape:       "xor",
			Population:  50,
			Generations: 100,
			Seed:        1,
			Workers:     1,
		},
		Operators: OperatorSection{
			Selection:        ops.Selection.String(),
			TournamentSize:   ops.TournamentSize,
			TruncateFraction: ops.TruncateFraction,
			Crossover:        ops.Crossover.String(),
			Mutation:         ops.Mutation.String(),
			MutationRate:     ops.MutationRate,
		},
		Storage: StorageSection{
			DBPath: "neuroevo.db",
		},
	}
}

// Load reads path over the defaults. The format follows the extension:
// .ini, or .yaml/.yml.
func Load(path string) (RunConfig, error) {
	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ini", ".cfg":
		if err := loadINI(path, &cfg); err != nil {
			return RunConfig{}, err
		}
	case ".yaml", ".yml":
		if err := loadYAML(path, &cfg); err != nil {
			return RunConfig{}, err
		}
	default:
		return RunConfig{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	return cfg, cfg.Validate()
}

func loadINI(path string, cfg *RunConfig) error {
	file, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:         true,
		UnescapeValueCommentSymbols: true,
	}, path)
	if err != nil {
		return fmt.Errorf("failed to load config file '%s': %w", path, err)
	}

	if err := file.Section("run").MapTo(&cfg.Run); err != nil {
		return fmt.Errorf("failed to map [run] section: %w", err)
	}
	if err := file.Section("operators").MapTo(&cfg.Operators); err != nil {
		return fmt.Errorf("failed to map [operators] section: %w", err)
	}
	if err := file.Section("storage").MapTo(&cfg.Storage); err != nil {
		return fmt.Errorf("failed to map [storage] section: %w", err)
	}
	return nil
}

func loadYAML(path string, cfg *RunConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file '%s': %w", path, err)
	}
	return nil
}

// Resolve turns the operator names into the evolution settings.
func (c RunConfig) Resolve() (evo.Operators, error) {
	selection, err := evo.ParseSelection(c.Operators.Selection)
	if err != nil {
		return evo.Operators{}, err
	}
	crossover, err := evo.ParseCrossover(c.Operators.Crossover)
	if err != nil {
		return evo.Operators{}, err
	}
	mutation, err := evo.ParseMutation(c.Operators.Mutation)
	if err != nil {
		return evo.Operators{}, err
	}
	return evo.Operators{
		Selection:        selection,
		TournamentSize:   c.Operators.TournamentSize,
		TruncateFraction: c.Operators.TruncateFraction,
		Crossover:        crossover,
		Mutation:         mutation,
		MutationRate:     c.Operators.MutationRate,
	}, nil
}

// Validate checks ranges and operator names; the operator pipeline itself is
// built once to surface parameter errors before a run starts.
func (c RunConfig) Validate() error {
	if c.Run.Population <= 0 {
		return fmt.Errorf("population must be > 0")
	}
	if c.Run.Generations <= 0 {
		return fmt.Errorf("generations must be > 0")
	}
	if c.Run.Workers < 0 {
		return fmt.Errorf("workers must be >= 0")
	}
	if c.Run.FitnessGoal < 0 {
		return fmt.Errorf("fitness goal must be >= 0")
	}
	if c.Run.SnapshotEvery < 0 {
		return fmt.Errorf("snapshot interval must be >= 0")
	}
	ops, err := c.Resolve()
	if err != nil {
		return err
	}
	if _, err := evo.NewPipeline(ops); err != nil {
		return err
	}
	if ops.Crossover != evo.CrossNone && c.Run.Population%2 != 0 {
		return fmt.Errorf("%w: population=%d", evo.ErrOddPopulation, c.Run.Population)
	}
	return nil
}
