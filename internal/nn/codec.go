package nn

import (
	"fmt"

	"neuroevo/internal/model"
)

// Encode flattens the network parameters layer by layer, neuron by neuron,
// writing each neuron's weights followed by its bias.
func Encode(net *Network) model.GeneVector {
	genes := make(model.GeneVector, 0, net.Topology().ParamCount())
	for _, layer := range net.Layers[1:] {
		for _, neuron := range layer.Neurons {
			genes = append(genes, neuron.Weights...)
			genes = append(genes, neuron.Bias)
		}
	}
	return genes
}

// Decode builds a network of the given topology from genes laid out as Encode
// writes them.
func Decode(genes model.GeneVector, topology model.Topology) (*Network, error) {
	if want := topology.ParamCount(); len(genes) != want {
		return nil, fmt.Errorf("%w: genes=%d params=%d", ErrLengthMismatch, len(genes), want)
	}

	net := NewNetwork(topology)
	idx := 0
	for l := 1; l < LayerCount; l++ {
		neurons := net.Layers[l].Neurons
		for j := range neurons {
			idx += copy(neurons[j].Weights, genes[idx:])
			neurons[j].Bias = genes[idx]
			idx++
		}
	}
	return net, nil
}
