package gga

import (
	"math/rand"

	"timetable-planner/internal/csp"
)

// Strategy selects how two parents' genes are partitioned into
// donor groups before recombination, per spec.md §4.5's three
// crossover strategies.
type Strategy int

const (
	Uniform Strategy = iota
	DayBased
	LecturerBased
)

// Strategies lists every crossover strategy, for callers that pick one
// uniformly at random each time Crossover runs.
var Strategies = []Strategy{Uniform, DayBased, LecturerBased}

// Crossover recombines two parents into one child at the given
// probability (spec.md §4.5: 0.80); below that probability the first
// parent is cloned unchanged. Paired genes (variable_pairs) are always
// inherited from the same donor so they never get split across
// parents, and every gene is re-validated against the rest of the
// child as it's placed — a donor value that would violate a hard
// constraint falls back to the other parent's value for that gene.
func Crossover(parentA, parentB *Chromosome, ctx MutationContext, strategy Strategy, probability float64, rng *rand.Rand) *Chromosome {
	if rng.Float64() >= probability {
		return parentA.Clone()
	}

	donorOf := donorAssignment(parentA, strategy, rng)
	child := &Chromosome{Genes: make([]Gene, len(parentA.Genes))}
	st := csp.NewSearchState()

	visited := map[string]bool{}
	byID := parentA.indexByID()
	bIdx := parentB.indexByID()

	for _, geneA := range parentA.Genes {
		if visited[geneA.VariableID] {
			continue
		}
		unit := []string{geneA.VariableID}
		if partner := ctx.PairPartner[geneA.VariableID]; partner != "" {
			unit = append(unit, partner)
		}
		for _, id := range unit {
			visited[id] = true
		}

		fromB := donorOf[geneA.VariableID] == 1
		placeUnit(child, st, unit, byID, bIdx, parentA, parentB, fromB)
	}
	return child
}

// donorAssignment groups parentA's genes by day or lecturer (or treats
// every gene independently for Uniform) and flips a coin per group to
// decide whether that whole group inherits from parent B instead of A.
func donorAssignment(parentA *Chromosome, strategy Strategy, rng *rand.Rand) map[string]int {
	donor := map[string]int{}
	switch strategy {
	case Uniform:
		for _, g := range parentA.Genes {
			if rng.Float64() < 0.5 {
				donor[g.VariableID] = 1
			}
		}
	case DayBased:
		groupDonor := map[int]int{}
		for _, g := range parentA.Genes {
			key := int(g.Slot.Day)
			if _, ok := groupDonor[key]; !ok {
				if rng.Float64() < 0.5 {
					groupDonor[key] = 1
				}
			}
			donor[g.VariableID] = groupDonor[key]
		}
	case LecturerBased:
		groupDonor := map[string]int{}
		for _, g := range parentA.Genes {
			if _, ok := groupDonor[g.Lecturer]; !ok {
				if rng.Float64() < 0.5 {
					groupDonor[g.Lecturer] = 1
				}
			}
			donor[g.VariableID] = groupDonor[g.Lecturer]
		}
	}
	return donor
}

// placeUnit writes the chosen donor's value for every gene in unit
// into child, falling back to the other parent (then to parent A's
// original) if the preferred value conflicts with what's already been
// placed.
func placeUnit(child *Chromosome, st *csp.SearchState, unit []string, aIdx, bIdx map[string]int, parentA, parentB *Chromosome, fromB bool) {
	for _, id := range unit {
		ai, bi := aIdx[id], bIdx[id]
		preferred, fallback := parentA.Genes[ai], parentB.Genes[bi]
		if fromB {
			preferred, fallback = parentB.Genes[bi], parentA.Genes[ai]
		}

		gene := preferred
		v := gene.toVariable()
		candidate := csp.Candidate{Slot: gene.Slot, Lecturer: gene.Lecturer, Room: gene.Room}

		if !csp.Feasible(st, v, candidate) {
			gene = fallback
			v = gene.toVariable()
			candidate = csp.Candidate{Slot: gene.Slot, Lecturer: gene.Lecturer, Room: gene.Room}
			if !csp.Feasible(st, v, candidate) {
				gene = parentA.Genes[ai]
			}
		}

		child.Genes[ai] = gene
		st.Apply(gene.toVariable())
	}
}
