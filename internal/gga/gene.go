// Package gga runs the guided genetic algorithm that turns the CSP
// engine's feasible baseline into a schedule optimized for the four
// soft objectives in spec.md §4.5: student idle time, lecturer
// workload balance, room utilization, and weekday distribution. Its
// 70%-guided/30%-random move bias and its "smart move toward a
// mirrored slot, else random" fallback are grounded on the teacher's
// internal/solver/simulated_annealing.go, generalized from a single
// simulated-annealing walk into population-based crossover and
// mutation over a CSP-seeded population.
package gga

import (
	"timetable-planner/internal/csp"
	"timetable-planner/internal/entity"
	"timetable-planner/internal/timeslot"
)

// Gene is one scheduled session inside a Chromosome — the mutable,
// per-chromosome twin of a solved csp.Variable. Chromosomes hold their
// own Gene slices so mutation and crossover never alias another
// chromosome's state. Flexibility and ConflictScore are the two
// per-gene soft-scoring slots spec.md §4.5 calls for, refreshed by
// computeGeneMetadata on every Evaluate.
type Gene struct {
	VariableID    string
	ProgramID     string
	CourseID      string
	CanonicalID   string
	CohortSize    int
	RoomType      entity.RoomType
	SessionNumber int
	Domain        csp.Domain

	Slot     timeslot.Slot
	Lecturer string
	Room     string

	Flexibility   float64 // how many (slot, lecturer, room) combinations this gene's domain still offers
	ConflictScore float64 // hard-constraint conflicts this gene currently contributes, 0 in any valid chromosome
}

// Chromosome is one candidate schedule: one Gene per CSP variable, in
// a fixed order shared by the whole population. ID, GenerationNumber,
// and Age round out the representation spec.md §4.5 names; Fitness is
// the cached FitnessScore.
type Chromosome struct {
	Genes     []Gene
	Fitness   float64
	Breakdown Breakdown

	ID               string
	GenerationNumber int
	Age              int
}

// FromVariables converts the CSP engine's solved variables into the
// first chromosome's genes — the GGA's seed individual, per spec.md §4.5.
func FromVariables(variables []*csp.Variable) []Gene {
	genes := make([]Gene, len(variables))
	for i, v := range variables {
		genes[i] = Gene{
			VariableID:    v.ID,
			ProgramID:     v.ProgramID,
			CourseID:      v.CourseID,
			CanonicalID:   v.CanonicalID,
			CohortSize:    v.CohortSize,
			RoomType:      v.RoomType,
			SessionNumber: v.SessionNumber,
			Domain:        v.Domain,
			Slot:          v.Slot,
			Lecturer:      v.Lecturer,
			Room:          v.Room,
		}
	}
	return genes
}

// Clone deep-copies a chromosome's gene slice so mutation on the copy
// never touches the original. Fitness and Breakdown are left at their
// zero value since a clone must be re-evaluated; ID, GenerationNumber,
// and Age carry over since Clone represents the same lineage surviving
// unchanged (callers that produce a genuinely new individual overwrite
// these themselves).
func (c *Chromosome) Clone() *Chromosome {
	genes := make([]Gene, len(c.Genes))
	copy(genes, c.Genes)
	return &Chromosome{Genes: genes, ID: c.ID, GenerationNumber: c.GenerationNumber, Age: c.Age}
}

// Validate replays every gene through a fresh search state in
// placement order, confirming none conflicts with a gene already
// placed ahead of it. A chromosome that fails this check has broken a
// hard constraint somewhere during crossover or mutation and must be
// discarded in favor of its parent, per spec.md §4.5's
// feasibility-preservation rule: "the GGA must not weaken any hard
// constraint."
func (c *Chromosome) Validate() bool {
	st := csp.NewSearchState()
	for _, g := range c.Genes {
		v := g.toVariable()
		candidate := csp.Candidate{Slot: g.Slot, Lecturer: g.Lecturer, Room: g.Room}
		if !csp.Feasible(st, v, candidate) {
			return false
		}
		st.Apply(v)
	}
	return true
}

// indexByID returns a lookup from variable id to that gene's position,
// used throughout crossover/mutation to find paired genes quickly.
func (c *Chromosome) indexByID() map[string]int {
	idx := make(map[string]int, len(c.Genes))
	for i, g := range c.Genes {
		idx[g.VariableID] = i
	}
	return idx
}

// searchStateFor rebuilds a csp.SearchState reflecting every gene's
// current placement except the ones listed in except, so a candidate
// move for those genes can be feasibility-checked against the rest of
// the chromosome.
func (c *Chromosome) searchStateFor(except map[string]bool) *csp.SearchState {
	st := csp.NewSearchState()
	for _, g := range c.Genes {
		if except[g.VariableID] {
			continue
		}
		v := g.toVariable()
		st.Apply(v)
	}
	return st
}

// toVariable adapts a Gene back into the csp.Variable shape Feasible
// expects, without needing csp to know anything about genes.
func (g Gene) toVariable() *csp.Variable {
	return &csp.Variable{
		ID:            g.VariableID,
		ProgramID:     g.ProgramID,
		CourseID:      g.CourseID,
		CanonicalID:   g.CanonicalID,
		CohortSize:    g.CohortSize,
		RoomType:      g.RoomType,
		SessionNumber: g.SessionNumber,
		Domain:        g.Domain,
		Assigned:      true,
		Slot:          g.Slot,
		Lecturer:      g.Lecturer,
		Room:          g.Room,
	}
}
