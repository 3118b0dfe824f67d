package model

import "time"

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// Topology is the neuron-count triple of a three-layer feed-forward network.
type Topology struct {
	Inputs  int `json:"inputs" yaml:"inputs" ini:"inputs"`
	Hidden  int `json:"hidden" yaml:"hidden" ini:"hidden"`
	Outputs int `json:"outputs" yaml:"outputs" ini:"outputs"`
}

// ParamCount is the gene length of a network with this topology.
func (t Topology) ParamCount() int {
	return (t.Inputs+1)*t.Hidden + (t.Hidden+1)*t.Outputs
}

// Valid reports whether every layer has at least one neuron.
func (t Topology) Valid() bool {
	return t.Inputs > 0 && t.Hidden > 0 && t.Outputs > 0
}

// GeneVector is the flat parameter encoding of one candidate network.
type GeneVector []float64

// Clone returns an independent copy of the vector.
func (g GeneVector) Clone() GeneVector {
	return append(GeneVector(nil), g...)
}

// Population is an ordered set of equal-length gene vectors.
type Population []GeneVector

// Clone deep-copies the population.
func (p Population) Clone() Population {
	out := make(Population, len(p))
	for i, genes := range p {
		out[i] = genes.Clone()
	}
	return out
}

type RunRecord struct {
	VersionedRecord
	ID           string    `json:"id"`
	CreatedAtUTC time.Time `json:"created_at_utc"`
	Scape        string    `json:"scape"`
	Topology     Topology  `json:"topology"`
	Selection    string    `json:"selection"`
	Crossover    string    `json:"crossover"`
	Mutation     string    `json:"mutation"`
	MutationRate float64   `json:"mutation_rate"`
	Population   int       `json:"population"`
	Generations  int       `json:"generations"`
	Seed         int64     `json:"seed"`
	BestFitness  int       `json:"best_fitness"`

	// FinalGeneration is the last evaluated generation; its population
	// snapshot is always stored.
	FinalGeneration int `json:"final_generation"`
}

type PopulationRecord struct {
	VersionedRecord
	ID         string     `json:"id"`
	RunID      string     `json:"run_id"`
	Generation int        `json:"generation"`
	Topology   Topology   `json:"topology"`
	Genes      Population `json:"genes"`
	Fitness    []int      `json:"fitness"`
}

type GenerationDiagnostics struct {
	Generation  int     `json:"generation"`
	BestFitness int     `json:"best_fitness"`
	MeanFitness float64 `json:"mean_fitness"`
	MinFitness  int     `json:"min_fitness"`
	BestIndex   int     `json:"best_index"`
}
