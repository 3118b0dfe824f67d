package storage

import (
	"context"
	"fmt"

	"neuroevo/internal/model"
)

// Store persists evolutionary runs, population snapshots and per-generation
// diagnostics.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run model.RunRecord) error
	GetRun(ctx context.Context, id string) (model.RunRecord, bool, error)
	ListRuns(ctx context.Context) ([]model.RunRecord, error)
	SavePopulation(ctx context.Context, population model.PopulationRecord) error
	GetPopulation(ctx context.Context, id string) (model.PopulationRecord, bool, error)
	SaveDiagnostics(ctx context.Context, runID string, diagnostics []model.GenerationDiagnostics) error
	GetDiagnostics(ctx context.Context, runID string) ([]model.GenerationDiagnostics, bool, error)
}

// PopulationID names the snapshot of a run taken at a generation.
func PopulationID(runID string, generation int) string {
	return fmt.Sprintf("%s/gen-%d", runID, generation)
}
