package gga

import (
	"context"
	"fmt"
	"math/rand"

	"golang.org/x/sync/errgroup"

	"timetable-planner/internal/csp"
)

// Config holds the GGA's tunables, all sourced from spec.md §4.5 and
// overridable through internal/config.
type Config struct {
	PopulationSize  int
	Elitism         int
	TournamentSize  int
	CrossoverProb   float64
	MutationProb    float64
	MaxGenerations  int
	StallLimit      int
	TargetFitness   float64
}

// DefaultConfig mirrors the population/elitism/tournament/probability
// figures spec.md §4.5 names explicitly.
var DefaultConfig = Config{
	PopulationSize: 200,
	Elitism:        10,
	TournamentSize: 3,
	CrossoverProb:  0.80,
	MutationProb:   0.15,
	MaxGenerations: 300,
	StallLimit:     40,
	TargetFitness:  0.97,
}

// Report is the per-generation progress spec.md §6 wants surfaced to
// the progress sink.
type Report struct {
	Generation  int
	BestFitness float64
	Breakdown   Breakdown
}

// Result is the GGA's final output: the best chromosome found and the
// generation history.
type Result struct {
	Best       *Chromosome
	History    []Report
	Generations int
	StalledOut bool
}

// Run evolves the CSP-seeded population toward the weighted fitness
// target, per spec.md §4.5's termination rule: stop at the target
// fitness, the generation cap, or after StallLimit generations without
// improvement — whichever comes first — and always return the
// best-so-far chromosome (spec.md §7: "GGA can't improve, commit the
// unchanged seed" is the StallLimit-at-generation-zero case).
func Run(variables []*csp.Variable, pairs []csp.Pair, canonicalGroups map[string]map[int][]string, roomCapacity map[string]int, weights Weights, cfg Config, rng *rand.Rand, onGeneration func(Report)) Result {
	eval := Evaluator{Weights: weights, RoomCapacity: roomCapacity}
	mutationCtx := NewMutationContext(pairs, canonicalGroups, roomCapacity)

	population := Seed(variables, cfg.PopulationSize, rng)
	evaluateParallel(population, eval)
	SortByFitnessDesc(population)

	best := population[0].Clone()
	best.Fitness = population[0].Fitness
	best.Breakdown = population[0].Breakdown

	var history []Report
	stall := 0
	generation := 0

	for generation = 1; generation <= cfg.MaxGenerations; generation++ {
		if best.Fitness >= cfg.TargetFitness {
			break
		}
		if stall >= cfg.StallLimit {
			break
		}

		next := Elites(population, cfg.Elitism)
		for _, e := range next {
			e.Age++
		}
		for len(next) < cfg.PopulationSize {
			parentA := TournamentSelect(population, cfg.TournamentSize, rng)
			parentB := TournamentSelect(population, cfg.TournamentSize, rng)
			strategy := Strategies[rng.Intn(len(Strategies))]

			// Feasibility preservation (spec.md §4.5): a crossover or
			// mutation that breaks a hard constraint is discarded and the
			// pre-step chromosome is re-emitted unchanged instead.
			child := Crossover(parentA, parentB, mutationCtx, strategy, cfg.CrossoverProb, rng)
			if !child.Validate() {
				child = parentA.Clone()
			}
			preMutation := child.Clone()
			MutateChromosome(child, mutationCtx, cfg.MutationProb, rng)
			if !child.Validate() {
				child = preMutation
			}

			child.ID = fmt.Sprintf("gen%d-%d", generation, rng.Int63())
			child.GenerationNumber = generation
			child.Age = 0
			next = append(next, child)
		}

		population = next
		evaluateParallel(population, eval)
		SortByFitnessDesc(population)

		if population[0].Fitness > best.Fitness {
			best = population[0].Clone()
			best.Fitness = population[0].Fitness
			best.Breakdown = population[0].Breakdown
			stall = 0
		} else {
			stall++
		}

		report := Report{Generation: generation, BestFitness: best.Fitness, Breakdown: best.Breakdown}
		history = append(history, report)
		if onGeneration != nil {
			onGeneration(report)
		}
	}

	return Result{Best: best, History: history, Generations: generation - 1, StalledOut: stall >= cfg.StallLimit}
}

// evaluateParallel scores the whole population concurrently, per
// spec.md §4.5's call for parallel fitness evaluation, one goroutine
// per chromosome with no worker limit. errgroup.Wait returns the first
// error a goroutine returns; these goroutines always return nil, and a
// panic in Evaluate is not recovered.
func evaluateParallel(population []*Chromosome, eval Evaluator) {
	g, _ := errgroup.WithContext(context.Background())
	for _, c := range population {
		c := c
		g.Go(func() error {
			eval.Evaluate(c)
			return nil
		})
	}
	_ = g.Wait()
}
