package neuroevo

import (
	"context"
	"strings"
	"testing"

	"neuroevo/internal/config"
	"neuroevo/internal/model"
	"neuroevo/internal/storage"
)

func newMemoryClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(Options{StoreKind: "memory"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client
}

func TestClientRunPersistsRunArtifacts(t *testing.T) {
	client := newMemoryClient(t)
	ctx := context.Background()

	var progress []int
	summary, err := client.Run(ctx, RunRequest{
		RunID:         "xor-run",
		Scape:         "xor",
		Population:    8,
		Generations:   4,
		Seed:          42,
		Workers:       2,
		SnapshotEvery: 2,
		MutationRate:  0.1,
		Progress: func(d model.GenerationDiagnostics) {
			progress = append(progress, d.Generation)
		},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.RunID != "xor-run" || summary.Scape != "xor" {
		t.Fatalf("unexpected summary identity: %+v", summary)
	}
	if len(summary.BestByGeneration) != 4 || summary.FinalGeneration != 3 {
		t.Fatalf("unexpected generation count: best=%d final=%d", len(summary.BestByGeneration), summary.FinalGeneration)
	}
	if len(progress) != 4 {
		t.Fatalf("expected 4 progress callbacks, got %v", progress)
	}
	for _, best := range summary.BestByGeneration {
		if best > summary.BestFitness {
			t.Fatalf("overall best %d below generation best %d", summary.BestFitness, best)
		}
	}

	runs, err := client.Runs(ctx, RunsRequest{})
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != "xor-run" {
		t.Fatalf("unexpected runs: %+v", runs)
	}
	if runs[0].Selection != "roulette" || runs[0].Crossover != "one_point" || runs[0].Mutation != "random" {
		t.Fatalf("expected default operator names, got %+v", runs[0])
	}
	if runs[0].SchemaVersion != storage.CurrentSchemaVersion {
		t.Fatalf("unexpected schema version: %d", runs[0].SchemaVersion)
	}

	for _, gen := range []int{0, 2, 3} {
		pop, err := client.Population(ctx, PopulationRequest{RunID: "xor-run", Generation: gen})
		if err != nil {
			t.Fatalf("population gen %d: %v", gen, err)
		}
		if len(pop.Genes) != 8 || len(pop.Fitness) != 8 {
			t.Fatalf("gen %d: unexpected snapshot size genes=%d fitness=%d", gen, len(pop.Genes), len(pop.Fitness))
		}
		if len(pop.Genes[0]) != pop.Topology.ParamCount() {
			t.Fatalf("gen %d: gene length %d params %d", gen, len(pop.Genes[0]), pop.Topology.ParamCount())
		}
	}
	if _, err := client.Population(ctx, PopulationRequest{RunID: "xor-run", Generation: 1}); err == nil {
		t.Fatal("expected missing snapshot for generation 1")
	}

	final, err := client.Population(ctx, PopulationRequest{Latest: true, Generation: -1})
	if err != nil {
		t.Fatalf("final population: %v", err)
	}
	if final.Generation != 3 {
		t.Fatalf("expected final generation 3, got %d", final.Generation)
	}

	diagnostics, err := client.Diagnostics(ctx, DiagnosticsRequest{RunID: "xor-run"})
	if err != nil {
		t.Fatalf("diagnostics: %v", err)
	}
	if len(diagnostics) != 4 {
		t.Fatalf("expected 4 diagnostics, got %d", len(diagnostics))
	}
	for i, d := range diagnostics {
		if d.Generation != i || d.BestFitness != summary.BestByGeneration[i] {
			t.Fatalf("diagnostics %d mismatch: %+v", i, d)
		}
		if float64(d.MinFitness) > d.MeanFitness || d.MeanFitness > float64(d.BestFitness) {
			t.Fatalf("diagnostics %d out of order: %+v", i, d)
		}
	}
	limited, err := client.Diagnostics(ctx, DiagnosticsRequest{Latest: true, Limit: 2})
	if err != nil {
		t.Fatalf("limited diagnostics: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("expected 2 limited diagnostics, got %d", len(limited))
	}
}

func TestClientRunIsDeterministicPerSeed(t *testing.T) {
	ctx := context.Background()
	run := func() RunSummary {
		client := newMemoryClient(t)
		summary, err := client.Run(ctx, RunRequest{
			Scape:        "linear",
			Population:   10,
			Generations:  5,
			Seed:         9,
			Workers:      3,
			Selection:    "tournament",
			Crossover:    "two_point",
			Mutation:     "gaussian",
			MutationRate: 0.2,
		})
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		return summary
	}

	a := run()
	b := run()
	if a.RunID == b.RunID {
		t.Fatalf("expected generated run ids to differ, both %q", a.RunID)
	}
	for i := range a.BestByGeneration {
		if a.BestByGeneration[i] != b.BestByGeneration[i] {
			t.Fatalf("generation %d differs: %d vs %d", i, a.BestByGeneration[i], b.BestByGeneration[i])
		}
	}
	for i := range a.BestGenes {
		if a.BestGenes[i] != b.BestGenes[i] {
			t.Fatalf("best gene %d differs", i)
		}
	}
}

func TestClientEvaluateUsesFittestIndividual(t *testing.T) {
	client := newMemoryClient(t)
	ctx := context.Background()

	if _, err := client.Run(ctx, RunRequest{
		RunID:       "linear-run",
		Scape:       "linear",
		Population:  6,
		Generations: 2,
		Seed:        3,
		Selection:   "tournament",
	}); err != nil {
		t.Fatalf("run: %v", err)
	}

	result, err := client.Evaluate(ctx, EvaluateRequest{RunID: "linear-run", Inputs: []float64{0.5, 0.5}})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(result.Outputs) != 1 {
		t.Fatalf("expected one output, got %v", result.Outputs)
	}

	final, err := client.Population(ctx, PopulationRequest{RunID: "linear-run", Generation: -1})
	if err != nil {
		t.Fatalf("final population: %v", err)
	}
	for _, f := range final.Fitness {
		if f > result.Fitness {
			t.Fatalf("evaluated fitness %d is not the population best %d", result.Fitness, f)
		}
	}

	if _, err := client.Evaluate(ctx, EvaluateRequest{RunID: "linear-run", Inputs: []float64{1}}); err == nil {
		t.Fatal("expected input length error")
	}
}

func TestClientRequestValidation(t *testing.T) {
	client := newMemoryClient(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  RunRequest
		want string
	}{
		{name: "unknown scape", req: RunRequest{Scape: "pole"}, want: "unknown scape"},
		{name: "unknown selection", req: RunRequest{Selection: "elite"}, want: "unknown operator"},
		{name: "odd population", req: RunRequest{Population: 7, Generations: 1}, want: "even population"},
		{name: "bad rate", req: RunRequest{MutationRate: 1.5}, want: "rate"},
		{name: "negative snapshot", req: RunRequest{SnapshotEvery: -1}, want: "snapshot"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := client.Run(ctx, tc.req)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}

	if _, err := client.Diagnostics(ctx, DiagnosticsRequest{}); err == nil {
		t.Fatal("expected missing run id error")
	}
	if _, err := client.Diagnostics(ctx, DiagnosticsRequest{RunID: "x", Latest: true}); err == nil {
		t.Fatal("expected conflicting selector error")
	}
	if _, err := client.Population(ctx, PopulationRequest{Latest: true}); err == nil {
		t.Fatal("expected no runs error")
	}
	if _, err := client.Diagnostics(ctx, DiagnosticsRequest{RunID: "missing"}); err == nil {
		t.Fatal("expected run not found error")
	}
}

func TestRunRequestFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Run.ID = "cfg-run"
	cfg.Run.SnapshotEvery = 5
	cfg.Operators.Selection = "truncate"

	req := RunRequestFromConfig(cfg)
	if req.RunID != "cfg-run" || req.SnapshotEvery != 5 || req.Selection != "truncate" {
		t.Fatalf("unexpected request: %+v", req)
	}
	if req.Population != cfg.Run.Population || req.MutationRate != cfg.Operators.MutationRate {
		t.Fatalf("request dropped run settings: %+v", req)
	}
}
