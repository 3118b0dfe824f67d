package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"neuroevo/internal/config"
	"neuroevo/internal/model"
	"neuroevo/internal/storage"
	"neuroevo/pkg/neuroevo"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "run":
		return runRun(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "population":
		return runPopulation(ctx, args[1:])
	case "diagnostics":
		return runDiagnostics(ctx, args[1:])
	case "evaluate":
		return runEvaluate(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func runRun(ctx context.Context, args []string) error {
	defaults := config.Default()
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional run config path (.ini or .yaml)")
	runID := fs.String("run-id", "", "explicit run id (optional)")
	scapeName := fs.String("scape", defaults.Run.Scape, "scape name: xor|linear")
	population := fs.Int("pop", defaults.Run.Population, "population size")
	generations := fs.Int("gens", defaults.Run.Generations, "generation count")
	seed := fs.Int64("seed", defaults.Run.Seed, "rng seed")
	workers := fs.Int("workers", defaults.Run.Workers, "fitness evaluation workers")
	fitnessGoal := fs.Int("fitness-goal", 0, "early-stop best fitness goal (0 disables)")
	snapshotEvery := fs.Int("snapshot-every", 0, "store the population every N generations (0 keeps only the final one)")
	selection := fs.String("selection", defaults.Operators.Selection, "selection: roulette|tournament|truncate|none")
	tournamentSize := fs.Int("tournament-size", defaults.Operators.TournamentSize, "tournament selection size")
	truncateFraction := fs.Float64("truncate-fraction", defaults.Operators.TruncateFraction, "fraction kept by truncation selection")
	crossover := fs.String("crossover", defaults.Operators.Crossover, "crossover: one_point|two_point|none")
	mutation := fs.String("mutation", defaults.Operators.Mutation, "mutation: random|uniform|gaussian|none")
	mutationRate := fs.Float64("mutation-rate", defaults.Operators.MutationRate, "per-gene mutation probability")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaults.Storage.DBPath, "sqlite database path")
	quiet := fs.Bool("quiet", false, "suppress per-generation progress lines")
	if err := fs.Parse(args); err != nil {
		return err
	}
	setFlags := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})

	cfg := defaults
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	// Explicit flags win over the config file.
	if setFlags["run-id"] {
		cfg.Run.ID = *runID
	}
	if setFlags["scape"] || *configPath == "" {
		cfg.Run.Scape = *scapeName
	}
	if setFlags["pop"] || *configPath == "" {
		cfg.Run.Population = *population
	}
	if setFlags["gens"] || *configPath == "" {
		cfg.Run.Generations = *generations
	}
	if setFlags["seed"] || *configPath == "" {
		cfg.Run.Seed = *seed
	}
	if setFlags["workers"] || *configPath == "" {
		cfg.Run.Workers = *workers
	}
	if setFlags["fitness-goal"] {
		cfg.Run.FitnessGoal = *fitnessGoal
	}
	if setFlags["snapshot-every"] {
		cfg.Run.SnapshotEvery = *snapshotEvery
	}
	if setFlags["selection"] || *configPath == "" {
		cfg.Operators.Selection = *selection
	}
	if setFlags["tournament-size"] || *configPath == "" {
		cfg.Operators.TournamentSize = *tournamentSize
	}
	if setFlags["truncate-fraction"] || *configPath == "" {
		cfg.Operators.TruncateFraction = *truncateFraction
	}
	if setFlags["crossover"] || *configPath == "" {
		cfg.Operators.Crossover = *crossover
	}
	if setFlags["mutation"] || *configPath == "" {
		cfg.Operators.Mutation = *mutation
	}
	if setFlags["mutation-rate"] || *configPath == "" {
		cfg.Operators.MutationRate = *mutationRate
	}
	if setFlags["store"] || cfg.Storage.Kind == "" {
		cfg.Storage.Kind = *storeKind
	}
	if setFlags["db-path"] || cfg.Storage.DBPath == "" {
		cfg.Storage.DBPath = *dbPath
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	client, err := neuroevo.New(neuroevo.Options{
		StoreKind: cfg.Storage.Kind,
		DBPath:    cfg.Storage.DBPath,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	req := neuroevo.RunRequestFromConfig(cfg)
	if !*quiet {
		req.Progress = func(d model.GenerationDiagnostics) {
			fmt.Printf("generation=%d best=%d mean=%.2f min=%d\n", d.Generation, d.BestFitness, d.MeanFitness, d.MinFitness)
		}
	}

	summary, err := client.Run(ctx, req)
	if err != nil {
		return err
	}

	fmt.Printf("run_id=%s scape=%s generations=%d best_fitness=%d elapsed=%s\n",
		summary.RunID,
		summary.Scape,
		summary.FinalGeneration+1,
		summary.BestFitness,
		summary.Elapsed.Round(time.Millisecond),
	)
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "max runs to list")
	jsonOut := fs.Bool("json", false, "emit runs list as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "neuroevo.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.New("limit must be > 0")
	}

	client, err := neuroevo.New(neuroevo.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	runs, err := client.Runs(ctx, neuroevo.RunsRequest{Limit: *limit})
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	for _, r := range runs {
		fmt.Printf("run_id=%s created=%s scape=%s seed=%d pop=%s gens=%s ops=%s/%s/%s rate=%.3f best_fitness=%s\n",
			r.ID,
			humanize.Time(r.CreatedAtUTC),
			r.Scape,
			r.Seed,
			humanize.Comma(int64(r.Population)),
			humanize.Comma(int64(r.FinalGeneration+1)),
			r.Selection,
			r.Crossover,
			r.Mutation,
			r.MutationRate,
			humanize.Comma(int64(r.BestFitness)),
		)
	}
	return nil
}

func runPopulation(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("population", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "use the most recent run")
	generation := fs.Int("gen", -1, "snapshot generation (<0 for the final one)")
	top := fs.Int("top", 5, "individuals to print, fittest first (<=0 for all)")
	jsonOut := fs.Bool("json", false, "emit the snapshot as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "neuroevo.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if *runID == "" && !*latest {
		return errors.New("population requires --run-id or --latest")
	}

	client, err := neuroevo.New(neuroevo.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	population, err := client.Population(ctx, neuroevo.PopulationRequest{
		RunID:      *runID,
		Latest:     *latest,
		Generation: *generation,
	})
	if err != nil {
		return err
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(population)
	}

	fmt.Printf("population_id=%s run_id=%s generation=%d size=%d topology=%d-%d-%d\n",
		population.ID,
		population.RunID,
		population.Generation,
		len(population.Genes),
		population.Topology.Inputs,
		population.Topology.Hidden,
		population.Topology.Outputs,
	)
	for rank, idx := range rankByFitness(population.Fitness, *top) {
		fmt.Printf("rank=%d index=%d fitness=%d genes=%s\n", rank+1, idx, population.Fitness[idx], formatGenes(population.Genes[idx]))
	}
	return nil
}

func runDiagnostics(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("diagnostics", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show diagnostics for the most recent run")
	limit := fs.Int("limit", 50, "max generations to print (<=0 for all)")
	jsonOut := fs.Bool("json", false, "emit diagnostics as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "neuroevo.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if *runID == "" && !*latest {
		return errors.New("diagnostics requires --run-id or --latest")
	}
	if *limit < 0 {
		*limit = 0
	}

	client, err := neuroevo.New(neuroevo.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	diagnostics, err := client.Diagnostics(ctx, neuroevo.DiagnosticsRequest{
		RunID:  *runID,
		Latest: *latest,
		Limit:  *limit,
	})
	if err != nil {
		return err
	}
	if len(diagnostics) == 0 {
		fmt.Println("no diagnostics")
		return nil
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(diagnostics)
	}

	for _, d := range diagnostics {
		fmt.Printf("generation=%d best=%d mean=%.6f min=%d best_index=%d\n",
			d.Generation,
			d.BestFitness,
			d.MeanFitness,
			d.MinFitness,
			d.BestIndex,
		)
	}
	return nil
}

func runEvaluate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("evaluate", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "use the most recent run")
	inputs := fs.String("inputs", "", "comma-separated network inputs")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "neuroevo.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	values, err := parseInputs(*inputs)
	if err != nil {
		return err
	}

	client, err := neuroevo.New(neuroevo.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	result, err := client.Evaluate(ctx, neuroevo.EvaluateRequest{
		RunID:  *runID,
		Latest: *latest,
		Inputs: values,
	})
	if err != nil {
		return err
	}
	fmt.Printf("run_id=%s fitness=%d outputs=%s\n", result.RunID, result.Fitness, formatGenes(result.Outputs))
	return nil
}

func parseInputs(raw string) ([]float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("evaluate requires --inputs")
	}
	parts := strings.Split(raw, ",")
	values := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("parse input %q: %w", part, err)
		}
		values = append(values, v)
	}
	return values, nil
}

// rankByFitness returns up to limit indices ordered by descending fitness;
// ties keep index order.
func rankByFitness(fitness []int, limit int) []int {
	order := make([]int, len(fitness))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return fitness[order[a]] > fitness[order[b]]
	})
	if limit > 0 && len(order) > limit {
		order = order[:limit]
	}
	return order
}

func formatGenes(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'f', 4, 64)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: neuroevoctl <run|runs|population|diagnostics|evaluate> [flags]", msg)
}
