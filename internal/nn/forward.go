package nn

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Evaluate runs one forward pass. Neuron values are the raw weighted sum plus
// bias; no activation function is applied.
func Evaluate(net *Network, inputs []float64) ([]float64, error) {
	inputLayer := net.Layers[0].Neurons
	if len(inputs) != len(inputLayer) {
		return nil, fmt.Errorf("%w: inputs=%d input neurons=%d", ErrLengthMismatch, len(inputs), len(inputLayer))
	}
	for i := range inputLayer {
		inputLayer[i].Value = inputs[i]
	}

	prev := append([]float64(nil), inputs...)
	for l := 1; l < LayerCount; l++ {
		neurons := net.Layers[l].Neurons
		values := make([]float64, len(neurons))
		for j := range neurons {
			neuron := &neurons[j]
			if len(neuron.Weights) != len(prev) {
				return nil, fmt.Errorf("%w: layer %d neuron %d weights=%d fan-in=%d", ErrLengthMismatch, l, j, len(neuron.Weights), len(prev))
			}
			neuron.Value = neuron.Bias + floats.Dot(prev, neuron.Weights)
			values[j] = neuron.Value
		}
		prev = values
	}
	return prev, nil
}
