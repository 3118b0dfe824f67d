package neuroevo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"neuroevo/internal/config"
	"neuroevo/internal/evo"
	"neuroevo/internal/model"
	"neuroevo/internal/nn"
	"neuroevo/internal/scape"
	"neuroevo/internal/storage"
)

const defaultDBPath = "neuroevo.db"

type Options struct {
	StoreKind string
	DBPath    string
}

type Client struct {
	store storage.Store

	initOnce sync.Once
	initErr  error
}

type RunRequest struct {
	RunID            string
	Scape            string
	Population       int
	Generations      int
	Seed             int64
	Workers          int
	FitnessGoal      int
	SnapshotEvery    int
	Selection        string
	TournamentSize   int
	TruncateFraction float64
	Crossover        string
	Mutation         string
	MutationRate     float64
	Progress         func(model.GenerationDiagnostics)
}

type RunSummary struct {
	RunID            string
	Scape            string
	BestByGeneration []int
	BestFitness      int
	BestGenes        model.GeneVector
	FinalGeneration  int
	Elapsed          time.Duration
}

type RunsRequest struct {
	Limit int
}

type PopulationRequest struct {
	RunID  string
	Latest bool

	// Generation selects a stored snapshot; negative means the final one.
	Generation int
}

type DiagnosticsRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

type EvaluateRequest struct {
	RunID  string
	Latest bool
	Inputs []float64
}

type EvaluateResult struct {
	RunID   string
	Fitness int
	Outputs []float64
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}
	return &Client{store: store}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	c.initOnce.Do(func() {
		c.initErr = c.store.Init(ctx)
	})
	return c.initErr
}

// RunRequestFromConfig maps a loaded run configuration onto a request.
func RunRequestFromConfig(cfg config.RunConfig) RunRequest {
	return RunRequest{
		RunID:            cfg.Run.ID,
		Scape:            cfg.Run.Scape,
		Population:       cfg.Run.Population,
		Generations:      cfg.Run.Generations,
		Seed:             cfg.Run.Seed,
		Workers:          cfg.Run.Workers,
		FitnessGoal:      cfg.Run.FitnessGoal,
		SnapshotEvery:    cfg.Run.SnapshotEvery,
		Selection:        cfg.Operators.Selection,
		TournamentSize:   cfg.Operators.TournamentSize,
		TruncateFraction: cfg.Operators.TruncateFraction,
		Crossover:        cfg.Operators.Crossover,
		Mutation:         cfg.Operators.Mutation,
		MutationRate:     cfg.Operators.MutationRate,
	}
}

func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	defaults := config.Default()
	if req.Scape == "" {
		req.Scape = defaults.Run.Scape
	}
	if req.Population <= 0 {
		req.Population = defaults.Run.Population
	}
	if req.Generations <= 0 {
		req.Generations = defaults.Run.Generations
	}
	if req.Selection == "" {
		req.Selection = defaults.Operators.Selection
	}
	if req.TournamentSize <= 0 {
		req.TournamentSize = defaults.Operators.TournamentSize
	}
	if req.TruncateFraction <= 0 {
		req.TruncateFraction = defaults.Operators.TruncateFraction
	}
	if req.Crossover == "" {
		req.Crossover = defaults.Operators.Crossover
	}
	if req.Mutation == "" {
		req.Mutation = defaults.Operators.Mutation
	}
	if req.SnapshotEvery < 0 {
		return RunSummary{}, errors.New("snapshot interval must be >= 0")
	}
	if req.RunID == "" {
		req.RunID = uuid.NewString()
	}

	s, err := scape.Lookup(req.Scape)
	if err != nil {
		return RunSummary{}, err
	}
	ops, err := operatorsFromRequest(req)
	if err != nil {
		return RunSummary{}, err
	}
	if err := c.Init(ctx); err != nil {
		return RunSummary{}, err
	}

	topology := s.Topology()
	var snapshotErr error
	monitor, err := evo.NewPopulationMonitor(evo.MonitorConfig{
		Scape:          s,
		Operators:      ops,
		PopulationSize: req.Population,
		Generations:    req.Generations,
		Seed:           req.Seed,
		Workers:        req.Workers,
		FitnessGoal:    req.FitnessGoal,
		Progress: func(report evo.GenerationReport) {
			if req.Progress != nil {
				req.Progress(report.Diagnostics)
			}
			gen := report.Diagnostics.Generation
			if req.SnapshotEvery > 0 && gen%req.SnapshotEvery == 0 && snapshotErr == nil {
				snapshotErr = c.saveSnapshot(ctx, req.RunID, gen, topology, report.Population, report.Fitness)
			}
		},
	})
	if err != nil {
		return RunSummary{}, err
	}

	started := time.Now()
	result, err := monitor.Run(ctx, nil)
	if err != nil {
		return RunSummary{}, err
	}
	if snapshotErr != nil {
		return RunSummary{}, fmt.Errorf("save snapshot: %w", snapshotErr)
	}
	elapsed := time.Since(started)
	finalGeneration := len(result.Diagnostics) - 1

	if err := c.saveSnapshot(ctx, req.RunID, finalGeneration, topology, result.FinalPopulation, result.FinalFitness); err != nil {
		return RunSummary{}, fmt.Errorf("save final population: %w", err)
	}
	if err := c.store.SaveDiagnostics(ctx, req.RunID, result.Diagnostics); err != nil {
		return RunSummary{}, fmt.Errorf("save diagnostics: %w", err)
	}
	if err := c.store.SaveRun(ctx, model.RunRecord{
		VersionedRecord: storage.CurrentVersion(),
		ID:              req.RunID,
		CreatedAtUTC:    started.UTC(),
		Scape:           s.Name(),
		Topology:        topology,
		Selection:       ops.Selection.String(),
		Crossover:       ops.Crossover.String(),
		Mutation:        ops.Mutation.String(),
		MutationRate:    ops.MutationRate,
		Population:      req.Population,
		Generations:     req.Generations,
		Seed:            req.Seed,
		BestFitness:     result.BestFitness,
		FinalGeneration: finalGeneration,
	}); err != nil {
		return RunSummary{}, fmt.Errorf("save run: %w", err)
	}

	return RunSummary{
		RunID:            req.RunID,
		Scape:            s.Name(),
		BestByGeneration: result.BestByGeneration,
		BestFitness:      result.BestFitness,
		BestGenes:        result.BestGenes,
		FinalGeneration:  finalGeneration,
		Elapsed:          elapsed,
	}, nil
}

func (c *Client) Runs(ctx context.Context, req RunsRequest) ([]model.RunRecord, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}
	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	runs, err := c.store.ListRuns(ctx)
	if err != nil {
		return nil, err
	}
	if len(runs) > req.Limit {
		runs = runs[:req.Limit]
	}
	return runs, nil
}

func (c *Client) Population(ctx context.Context, req PopulationRequest) (model.PopulationRecord, error) {
	run, err := c.resolveRun(ctx, req.RunID, req.Latest)
	if err != nil {
		return model.PopulationRecord{}, err
	}
	generation := req.Generation
	if generation < 0 {
		generation = run.FinalGeneration
	}
	id := storage.PopulationID(run.ID, generation)
	population, ok, err := c.store.GetPopulation(ctx, id)
	if err != nil {
		return model.PopulationRecord{}, err
	}
	if !ok {
		return model.PopulationRecord{}, fmt.Errorf("population not found: %s", id)
	}
	return population, nil
}

func (c *Client) Diagnostics(ctx context.Context, req DiagnosticsRequest) ([]model.GenerationDiagnostics, error) {
	if req.Limit < 0 {
		return nil, errors.New("limit must be >= 0")
	}
	run, err := c.resolveRun(ctx, req.RunID, req.Latest)
	if err != nil {
		return nil, err
	}
	diagnostics, ok, err := c.store.GetDiagnostics(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("diagnostics not found for run id: %s", run.ID)
	}
	if req.Limit > 0 && len(diagnostics) > req.Limit {
		diagnostics = diagnostics[:req.Limit]
	}
	return diagnostics, nil
}

// Evaluate decodes the fittest individual of a run's final population and
// feeds it the given inputs.
func (c *Client) Evaluate(ctx context.Context, req EvaluateRequest) (EvaluateResult, error) {
	population, err := c.Population(ctx, PopulationRequest{RunID: req.RunID, Latest: req.Latest, Generation: -1})
	if err != nil {
		return EvaluateResult{}, err
	}
	if len(population.Genes) == 0 || len(population.Genes) != len(population.Fitness) {
		return EvaluateResult{}, fmt.Errorf("population %s has no scored individuals", population.ID)
	}

	best := 0
	for i, f := range population.Fitness {
		if f > population.Fitness[best] {
			best = i
		}
	}
	net, err := nn.Decode(population.Genes[best], population.Topology)
	if err != nil {
		return EvaluateResult{}, err
	}
	outputs, err := nn.Evaluate(net, req.Inputs)
	if err != nil {
		return EvaluateResult{}, err
	}
	return EvaluateResult{RunID: population.RunID, Fitness: population.Fitness[best], Outputs: outputs}, nil
}

func (c *Client) resolveRun(ctx context.Context, runID string, latest bool) (model.RunRecord, error) {
	if runID != "" && latest {
		return model.RunRecord{}, errors.New("use either run id or latest")
	}
	if runID == "" && !latest {
		return model.RunRecord{}, errors.New("run id or latest is required")
	}
	if err := c.Init(ctx); err != nil {
		return model.RunRecord{}, err
	}
	if latest {
		runs, err := c.store.ListRuns(ctx)
		if err != nil {
			return model.RunRecord{}, err
		}
		if len(runs) == 0 {
			return model.RunRecord{}, errors.New("no runs available")
		}
		return runs[0], nil
	}
	run, ok, err := c.store.GetRun(ctx, runID)
	if err != nil {
		return model.RunRecord{}, err
	}
	if !ok {
		return model.RunRecord{}, fmt.Errorf("run not found: %s", runID)
	}
	return run, nil
}

func (c *Client) saveSnapshot(ctx context.Context, runID string, generation int, topology model.Topology, population model.Population, fitness []int) error {
	return c.store.SavePopulation(ctx, model.PopulationRecord{
		VersionedRecord: storage.CurrentVersion(),
		ID:              storage.PopulationID(runID, generation),
		RunID:           runID,
		Generation:      generation,
		Topology:        topology,
		Genes:           population,
		Fitness:         append([]int(nil), fitness...),
	})
}

func operatorsFromRequest(req RunRequest) (evo.Operators, error) {
	cfg := config.RunConfig{Operators: config.OperatorSection{
		Selection:        req.Selection,
		TournamentSize:   req.TournamentSize,
		TruncateFraction: req.TruncateFraction,
		Crossover:        req.Crossover,
		Mutation:         req.Mutation,
		MutationRate:     req.MutationRate,
	}}
	return cfg.Resolve()
}
