package gga

import (
	"fmt"
	"math/rand"
	"sort"

	"timetable-planner/internal/csp"
)

// Seed builds the initial population from the CSP engine's solved
// variables: the seed chromosome itself, plus size-1 mutated variants
// so the population starts with real diversity instead of size-1
// clones (spec.md §4.5 targets a population of 200). Every individual
// starts at generation 0, age 0.
func Seed(variables []*csp.Variable, size int, rng *rand.Rand) []*Chromosome {
	seedGenes := FromVariables(variables)
	population := make([]*Chromosome, 0, size)
	population = append(population, &Chromosome{Genes: append([]Gene{}, seedGenes...), ID: "gen0-0"})

	for len(population) < size {
		clone := &Chromosome{Genes: append([]Gene{}, seedGenes...), ID: fmt.Sprintf("gen0-%d", len(population))}
		jitterCount := 1 + rng.Intn(3)
		for i := 0; i < jitterCount; i++ {
			mutateRandomGene(clone, rng)
		}
		population = append(population, clone)
	}
	return population
}

// EvaluateAll scores every chromosome in the population.
func EvaluateAll(population []*Chromosome, eval Evaluator) {
	for _, c := range population {
		eval.Evaluate(c)
	}
}

// SortByFitnessDesc orders the population best-first.
func SortByFitnessDesc(population []*Chromosome) {
	sort.Slice(population, func(i, j int) bool { return population[i].Fitness > population[j].Fitness })
}

// Elites returns the top n chromosomes by fitness, assuming population
// is already sorted best-first (spec.md §4.5's elitism of 10).
func Elites(population []*Chromosome, n int) []*Chromosome {
	if n > len(population) {
		n = len(population)
	}
	out := make([]*Chromosome, n)
	for i := 0; i < n; i++ {
		out[i] = population[i].Clone()
	}
	return out
}

// TournamentSelect picks the fittest of k randomly-drawn competitors,
// per spec.md §4.5's tournament size of 3.
func TournamentSelect(population []*Chromosome, k int, rng *rand.Rand) *Chromosome {
	best := population[rng.Intn(len(population))]
	for i := 1; i < k; i++ {
		candidate := population[rng.Intn(len(population))]
		if candidate.Fitness > best.Fitness {
			best = candidate
		}
	}
	return best
}
