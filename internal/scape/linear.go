package scape

import (
	"context"

	"neuroevo/internal/model"
	"neuroevo/internal/nn"
)

// LinearScape asks a 2-2-1 network to reproduce y = 0.5a + 0.25b on a 3x3 grid.
type LinearScape struct{}

func (LinearScape) Name() string {
	return "linear"
}

func (LinearScape) Topology() model.Topology {
	return model.Topology{Inputs: 2, Hidden: 2, Outputs: 1}
}

func (LinearScape) Evaluate(ctx context.Context, net *nn.Network) (int, Trace, error) {
	return scoreCases(ctx, net, linearCases)
}

var linearCases = buildLinearCases()

func buildLinearCases() []fitnessCase {
	grid := []float64{0, 0.5, 1}
	cases := make([]fitnessCase, 0, len(grid)*len(grid))
	for _, a := range grid {
		for _, b := range grid {
			cases = append(cases, fitnessCase{in: []float64{a, b}, want: 0.5*a + 0.25*b})
		}
	}
	return cases
}
