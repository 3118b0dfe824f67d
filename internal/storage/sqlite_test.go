//go:build sqlite

package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"neuroevo/internal/model"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "neuroevo.db")

	store := NewSQLiteStore(dbPath)
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	run := model.RunRecord{
		VersionedRecord: CurrentVersion(),
		ID:              "run-1",
		CreatedAtUTC:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Scape:           "xor",
		Topology:        model.Topology{Inputs: 2, Hidden: 3, Outputs: 1},
		Selection:       "tournament",
		BestFitness:     300,
	}
	if err := store.SaveRun(ctx, run); err != nil {
		t.Fatalf("save run: %v", err)
	}
	run.BestFitness = 310
	if err := store.SaveRun(ctx, run); err != nil {
		t.Fatalf("upsert run: %v", err)
	}

	loadedRun, ok, err := store.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if !ok || loadedRun.BestFitness != 310 || loadedRun.Topology != run.Topology {
		t.Fatalf("unexpected run loaded: ok=%t %+v", ok, loadedRun)
	}

	runs, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected one run, got %d", len(runs))
	}

	population := model.PopulationRecord{
		VersionedRecord: CurrentVersion(),
		ID:              PopulationID("run-1", 4),
		RunID:           "run-1",
		Generation:      4,
		Topology:        run.Topology,
		Genes:           model.Population{{0.25, 0.5}, {0.75, 0.125}},
		Fitness:         []int{1, 2},
	}
	if err := store.SavePopulation(ctx, population); err != nil {
		t.Fatalf("save population: %v", err)
	}
	loadedPopulation, ok, err := store.GetPopulation(ctx, population.ID)
	if err != nil {
		t.Fatalf("get population: %v", err)
	}
	if !ok || loadedPopulation.Generation != 4 || loadedPopulation.Genes[1][1] != 0.125 {
		t.Fatalf("unexpected population loaded: ok=%t %+v", ok, loadedPopulation)
	}

	diagnostics := []model.GenerationDiagnostics{{Generation: 0, BestFitness: 300, MeanFitness: 200, MinFitness: 100}}
	if err := store.SaveDiagnostics(ctx, "run-1", diagnostics); err != nil {
		t.Fatalf("save diagnostics: %v", err)
	}
	loadedDiagnostics, ok, err := store.GetDiagnostics(ctx, "run-1")
	if err != nil {
		t.Fatalf("get diagnostics: %v", err)
	}
	if !ok || len(loadedDiagnostics) != 1 || loadedDiagnostics[0] != diagnostics[0] {
		t.Fatalf("unexpected diagnostics: ok=%t %+v", ok, loadedDiagnostics)
	}

	if _, ok, err := store.GetRun(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected missing run, ok=%t err=%v", ok, err)
	}
}

func TestSQLiteStoreRequiresInit(t *testing.T) {
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "neuroevo.db"))
	if _, _, err := store.GetRun(context.Background(), "run-1"); err == nil {
		t.Fatal("expected error before init")
	}
}
