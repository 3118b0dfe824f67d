package scape

import (
	"context"

	"neuroevo/internal/model"
	"neuroevo/internal/nn"
)

var xorCases = []fitnessCase{
	{in: []float64{0, 0}, want: 0},
	{in: []float64{0, 1}, want: 1},
	{in: []float64{1, 0}, want: 1},
	{in: []float64{1, 1}, want: 0},
}

// XORScape scores a 2-3-1 network on the four XOR cases. The evaluator is
// linear, so the best reachable score is 300 of 400.
type XORScape struct{}

func (XORScape) Name() string {
	return "xor"
}

func (XORScape) Topology() model.Topology {
	return model.Topology{Inputs: 2, Hidden: 3, Outputs: 1}
}

func (XORScape) Evaluate(ctx context.Context, net *nn.Network) (int, Trace, error) {
	return scoreCases(ctx, net, xorCases)
}
