package scape

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"neuroevo/internal/model"
	"neuroevo/internal/nn"
)

// MaxCaseScore is the score of a case predicted exactly.
const MaxCaseScore = 100

var ErrUnknownScape = errors.New("unknown scape")

type Trace map[string]any

// Scape turns a decoded network into an integer fitness, higher is better.
type Scape interface {
	Name() string
	Topology() model.Topology
	Evaluate(ctx context.Context, net *nn.Network) (int, Trace, error)
}

var scapes = map[string]Scape{
	XORScape{}.Name():    XORScape{},
	LinearScape{}.Name(): LinearScape{},
}

// Lookup returns the scape registered under name.
func Lookup(name string) (Scape, error) {
	s, ok := scapes[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownScape, name)
	}
	return s, nil
}

// Names lists the registered scapes in sorted order.
func Names() []string {
	names := make([]string, 0, len(scapes))
	for name := range scapes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type fitnessCase struct {
	in   []float64
	want float64
}

// scoreCases runs every case and awards max(0, 100 - round(100*|err|)) each.
func scoreCases(ctx context.Context, net *nn.Network, cases []fitnessCase) (int, Trace, error) {
	fitness := 0
	var absErr float64
	predictions := make([]float64, 0, len(cases))
	for _, c := range cases {
		if err := ctx.Err(); err != nil {
			return 0, nil, err
		}
		out, err := nn.Evaluate(net, c.in)
		if err != nil {
			return 0, nil, err
		}
		if len(out) != 1 {
			return 0, nil, fmt.Errorf("%w: scape needs one output, got %d", nn.ErrLengthMismatch, len(out))
		}
		predictions = append(predictions, out[0])
		delta := math.Abs(out[0] - c.want)
		absErr += delta
		fitness += caseScore(delta)
	}
	return fitness, Trace{
		"predictions": predictions,
		"abs_error":   absErr,
		"cases":       len(cases),
	}, nil
}

func caseScore(delta float64) int {
	penalty := math.Round(delta * MaxCaseScore)
	if math.IsNaN(penalty) || penalty >= MaxCaseScore {
		return 0
	}
	return MaxCaseScore - int(penalty)
}
