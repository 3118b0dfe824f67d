package evo

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"gonum.org/v1/gonum/floats"

	"neuroevo/internal/model"
	"neuroevo/internal/nn"
	"neuroevo/internal/scape"
)

type RunResult struct {
	BestByGeneration []int
	Diagnostics      []model.GenerationDiagnostics
	FinalPopulation  model.Population
	FinalFitness     []int
	BestGenes        model.GeneVector
	BestFitness      int
}

// GenerationReport is handed to the progress hook after each evaluated
// generation. Population and Fitness must be treated as read-only.
type GenerationReport struct {
	Diagnostics model.GenerationDiagnostics
	Population  model.Population
	Fitness     []int
}

type MonitorConfig struct {
	Scape          scape.Scape
	Operators      Operators
	PopulationSize int
	Generations    int
	Seed           int64
	Workers        int
	// FitnessGoal stops the run once the best fitness reaches it. Zero disables.
	FitnessGoal int
	Progress    func(GenerationReport)
}

// PopulationMonitor evaluates a population against a scape and breeds it for
// a fixed number of generations.
type PopulationMonitor struct {
	cfg      MonitorConfig
	rng      *rand.Rand
	pipeline *Pipeline
}

func NewPopulationMonitor(cfg MonitorConfig) (*PopulationMonitor, error) {
	if cfg.Scape == nil {
		return nil, fmt.Errorf("scape is required")
	}
	if !cfg.Scape.Topology().Valid() {
		return nil, fmt.Errorf("scape %s has invalid topology %+v", cfg.Scape.Name(), cfg.Scape.Topology())
	}
	if cfg.PopulationSize <= 0 {
		return nil, fmt.Errorf("%w: population size must be > 0", ErrEmptyPopulation)
	}
	if cfg.Operators.Crossover != CrossNone && cfg.PopulationSize%2 != 0 {
		return nil, fmt.Errorf("%w: size=%d", ErrOddPopulation, cfg.PopulationSize)
	}
	if cfg.Generations <= 0 {
		return nil, fmt.Errorf("generations must be > 0")
	}
	if cfg.FitnessGoal < 0 {
		return nil, fmt.Errorf("fitness goal must be >= 0")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}

	pipeline, err := NewPipeline(cfg.Operators)
	if err != nil {
		return nil, err
	}

	return &PopulationMonitor{
		cfg:      cfg,
		rng:      NewSource(cfg.Seed),
		pipeline: pipeline,
	}, nil
}

// Run evolves initial, or a fresh random population when initial is empty.
// All random draws happen on the calling goroutine, so a seed fully
// determines the result regardless of the worker count.
func (m *PopulationMonitor) Run(ctx context.Context, initial model.Population) (RunResult, error) {
	geneLength := m.cfg.Scape.Topology().ParamCount()

	population := initial
	if len(population) == 0 {
		var err error
		population, err = RandomPopulation(m.rng, m.cfg.PopulationSize, geneLength)
		if err != nil {
			return RunResult{}, err
		}
	}
	if len(population) != m.cfg.PopulationSize {
		return RunResult{}, fmt.Errorf("%w: initial population=%d want=%d", ErrLengthMismatch, len(population), m.cfg.PopulationSize)
	}
	if _, err := checkShape(population); err != nil {
		return RunResult{}, err
	}
	if len(population[0]) != geneLength {
		return RunResult{}, fmt.Errorf("%w: genes=%d params=%d", ErrLengthMismatch, len(population[0]), geneLength)
	}

	result := RunResult{
		BestByGeneration: make([]int, 0, m.cfg.Generations),
		Diagnostics:      make([]model.GenerationDiagnostics, 0, m.cfg.Generations),
	}

	for gen := 0; gen < m.cfg.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			return RunResult{}, err
		}

		fitness, err := m.evaluatePopulation(ctx, population)
		if err != nil {
			return RunResult{}, err
		}

		diag := summarize(gen, fitness)
		result.BestByGeneration = append(result.BestByGeneration, diag.BestFitness)
		result.Diagnostics = append(result.Diagnostics, diag)
		if m.cfg.Progress != nil {
			m.cfg.Progress(GenerationReport{Diagnostics: diag, Population: population, Fitness: fitness})
		}
		if diag.BestFitness > result.BestFitness || result.BestGenes == nil {
			result.BestFitness = diag.BestFitness
			result.BestGenes = population[diag.BestIndex].Clone()
		}

		result.FinalPopulation = population
		result.FinalFitness = fitness
		if gen == m.cfg.Generations-1 {
			break
		}
		if m.cfg.FitnessGoal > 0 && diag.BestFitness >= m.cfg.FitnessGoal {
			break
		}

		population, err = m.pipeline.Step(m.rng, population, fitness)
		if err != nil {
			return RunResult{}, fmt.Errorf("generation %d: %w", gen, err)
		}
	}

	return result, nil
}

func (m *PopulationMonitor) evaluatePopulation(ctx context.Context, population model.Population) ([]int, error) {
	type job struct {
		idx   int
		genes model.GeneVector
	}
	type result struct {
		idx     int
		fitness int
		err     error
	}

	jobs := make(chan job)
	results := make(chan result, len(population))

	workerCount := m.cfg.Workers
	if workerCount > len(population) {
		workerCount = len(population)
	}

	var wg sync.WaitGroup
	wg.Add(workerCount)
	for w := 0; w < workerCount; w++ {
		go func() {
			defer wg.Done()
			for j := range jobs {
				if err := ctx.Err(); err != nil {
					results <- result{idx: j.idx, err: err}
					continue
				}
				fitness, err := m.evaluateGenes(ctx, j.genes)
				if err != nil {
					results <- result{idx: j.idx, err: fmt.Errorf("individual %d: %w", j.idx, err)}
					continue
				}
				results <- result{idx: j.idx, fitness: fitness}
			}
		}()
	}

	for i := range population {
		jobs <- job{idx: i, genes: population[i]}
	}
	close(jobs)

	wg.Wait()
	close(results)

	fitness := make([]int, len(population))
	var firstErr error
	for res := range results {
		if res.err != nil {
			if firstErr == nil {
				firstErr = res.err
			}
			continue
		}
		fitness[res.idx] = res.fitness
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return fitness, nil
}

func (m *PopulationMonitor) evaluateGenes(ctx context.Context, genes model.GeneVector) (int, error) {
	net, err := nn.Decode(genes, m.cfg.Scape.Topology())
	if err != nil {
		return 0, err
	}
	fitness, _, err := m.cfg.Scape.Evaluate(ctx, net)
	return fitness, err
}

func summarize(generation int, fitness []int) model.GenerationDiagnostics {
	values := make([]float64, len(fitness))
	for i, f := range fitness {
		values[i] = float64(f)
	}
	best := floats.MaxIdx(values)
	return model.GenerationDiagnostics{
		Generation:  generation,
		BestFitness: fitness[best],
		MeanFitness: floats.Sum(values) / float64(len(values)),
		MinFitness:  int(floats.Min(values)),
		BestIndex:   best,
	}
}
