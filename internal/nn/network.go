package nn

import (
	"errors"

	"neuroevo/internal/model"
)

// LayerCount is fixed: input, one hidden layer, output.
const LayerCount = 3

var ErrLengthMismatch = errors.New("length mismatch")

// Neuron holds the post-activation value and, outside the input layer, the
// incoming weights plus a bias.
type Neuron struct {
	Value   float64
	Weights []float64
	Bias    float64
}

type Layer struct {
	Neurons []Neuron
}

type Network struct {
	Layers [LayerCount]Layer
}

// NewNetwork allocates a zeroed network for the given topology. Input neurons
// carry no weights.
func NewNetwork(topology model.Topology) *Network {
	net := &Network{}
	net.Layers[0] = newLayer(topology.Inputs, 0)
	net.Layers[1] = newLayer(topology.Hidden, topology.Inputs)
	net.Layers[2] = newLayer(topology.Outputs, topology.Hidden)
	return net
}

func newLayer(size, fanIn int) Layer {
	layer := Layer{Neurons: make([]Neuron, size)}
	if fanIn == 0 {
		return layer
	}
	for i := range layer.Neurons {
		layer.Neurons[i].Weights = make([]float64, fanIn)
	}
	return layer
}

// Topology reports the neuron counts of the network's layers.
func (n *Network) Topology() model.Topology {
	return model.Topology{
		Inputs:  len(n.Layers[0].Neurons),
		Hidden:  len(n.Layers[1].Neurons),
		Outputs: len(n.Layers[2].Neurons),
	}
}
