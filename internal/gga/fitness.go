package gga

import (
	"timetable-planner/internal/timeslot"
)

// Weights are the four soft-objective weights from spec.md §4.5. They
// are expected to sum to 1.0; internal/config validates that at load
// time before handing a Weights value to the engine.
type Weights struct {
	IdleTime            float64
	WorkloadBalance      float64
	RoomUtilization      float64
	WeekdayDistribution  float64
}

// DefaultWeights are the weights spec.md §4.5 names: 0.35 idle time,
// 0.30 workload balance, 0.20 room utilization, 0.15 weekday spread.
var DefaultWeights = Weights{
	IdleTime:           0.35,
	WorkloadBalance:     0.30,
	RoomUtilization:     0.20,
	WeekdayDistribution: 0.15,
}

// Breakdown records each component score (all in [0,1], higher is
// better) alongside the weighted total, for the progress sink to
// surface per spec.md §6.
type Breakdown struct {
	IdleTime            float64
	WorkloadBalance      float64
	RoomUtilization      float64
	WeekdayDistribution  float64
	Total                float64
}

// Evaluator scores a Chromosome against the four weighted objectives.
// RoomCapacity must hold every room id any gene can occupy.
type Evaluator struct {
	Weights      Weights
	RoomCapacity map[string]int
}

// Evaluate computes and caches the chromosome's fitness, refreshing
// each gene's flexibility/conflict-score metadata along the way.
func (e Evaluator) Evaluate(c *Chromosome) float64 {
	computeGeneMetadata(c)

	b := Breakdown{
		IdleTime:            e.idleTimeScore(c),
		WorkloadBalance:     e.workloadBalanceScore(c),
		RoomUtilization:     e.roomUtilizationScore(c),
		WeekdayDistribution: e.weekdayDistributionScore(c),
	}
	b.Total = e.Weights.IdleTime*b.IdleTime +
		e.Weights.WorkloadBalance*b.WorkloadBalance +
		e.Weights.RoomUtilization*b.RoomUtilization +
		e.Weights.WeekdayDistribution*b.WeekdayDistribution

	c.Breakdown = b
	c.Fitness = b.Total
	return b.Total
}

// idleTimeScore penalizes gaps between a cohort's first and last
// session on any day it has classes: fewer total idle periods across
// the week scores closer to 1.
func (e Evaluator) idleTimeScore(c *Chromosome) float64 {
	type dayKey struct {
		program string
		day     timeslot.Day
	}
	periods := map[dayKey][]int{}
	for _, g := range c.Genes {
		k := dayKey{g.ProgramID, g.Slot.Day}
		periods[k] = append(periods[k], g.Slot.Period.Index)
	}

	totalIdle := 0
	for _, indices := range periods {
		if len(indices) < 2 {
			continue
		}
		lo, hi := indices[0], indices[0]
		for _, idx := range indices[1:] {
			if idx < lo {
				lo = idx
			}
			if idx > hi {
				hi = idx
			}
		}
		span := hi - lo + 1
		totalIdle += span - len(indices)
	}
	return 1.0 / (1.0 + float64(totalIdle))
}

// workloadBalanceScore rewards an even distribution of sessions across
// lecturers: lower variance in per-lecturer session counts scores
// closer to 1.
func (e Evaluator) workloadBalanceScore(c *Chromosome) float64 {
	counts := map[string]int{}
	for _, g := range c.Genes {
		counts[g.Lecturer]++
	}
	if len(counts) == 0 {
		return 1.0
	}
	mean := float64(len(c.Genes)) / float64(len(counts))
	var sumSquares float64
	for _, n := range counts {
		d := float64(n) - mean
		sumSquares += d * d
	}
	variance := sumSquares / float64(len(counts))
	return 1.0 / (1.0 + variance)
}

// roomUtilizationScore measures what fraction of the chromosome's
// active (room, day, period) footprint each room fills, weighted
// toward rooms that already carry more bookings: concentrating
// sessions into fewer rooms scores higher than spreading them thin
// across many lightly-used ones (spec.md §4.5: "fraction of active
// (room, day, period) slots used, weighted toward rooms already in
// use (consolidation)").
func (e Evaluator) roomUtilizationScore(c *Chromosome) float64 {
	if len(c.Genes) == 0 {
		return 1.0
	}

	activeSlots := map[timeslot.SlotKey]bool{}
	roomSlotCount := map[string]int{}
	for _, g := range c.Genes {
		activeSlots[g.Slot.Key()] = true
		roomSlotCount[g.Room]++
	}
	if len(activeSlots) == 0 {
		return 1.0
	}

	var weightedSum, totalWeight float64
	for _, count := range roomSlotCount {
		ratio := float64(count) / float64(len(activeSlots))
		weightedSum += float64(count) * ratio
		totalWeight += float64(count)
	}
	if totalWeight == 0 {
		return 1.0
	}
	return weightedSum / totalWeight
}

// weekdayDistributionScore rewards sessions spread evenly across the
// week rather than clustered on a few days: lower variance in
// per-weekday session counts scores closer to 1.
func (e Evaluator) weekdayDistributionScore(c *Chromosome) float64 {
	counts := map[timeslot.Day]int{}
	for _, g := range c.Genes {
		counts[g.Slot.Day]++
	}
	if len(counts) == 0 {
		return 1.0
	}
	mean := float64(len(c.Genes)) / float64(len(timeslot.Days))
	var sumSquares float64
	for _, d := range timeslot.Days {
		n := counts[d]
		diff := float64(n) - mean
		sumSquares += diff * diff
	}
	variance := sumSquares / float64(len(timeslot.Days))
	return 1.0 / (1.0 + variance)
}

// computeGeneMetadata refreshes Flexibility and ConflictScore on every
// gene. Flexibility is the raw size of the gene's (slot, lecturer,
// room) domain; ConflictScore counts how many other genes currently
// share its (room, slot) or (lecturer, slot) pair, which should always
// be zero in a chromosome that passed Validate but is still useful as
// a per-gene signal while a chromosome is under construction.
func computeGeneMetadata(c *Chromosome) {
	roomSlot := map[string]int{}
	lecturerSlot := map[string]int{}
	for _, g := range c.Genes {
		roomSlot[g.Room+"@"+g.Slot.Key().String()]++
		lecturerSlot[g.Lecturer+"@"+g.Slot.Key().String()]++
	}
	for i := range c.Genes {
		g := &c.Genes[i]
		g.Flexibility = float64(len(g.Domain.Slots) * len(g.Domain.Lecturers) * len(g.Domain.Rooms))

		conflicts := 0
		if n := roomSlot[g.Room+"@"+g.Slot.Key().String()]; n > 1 {
			conflicts += n - 1
		}
		if n := lecturerSlot[g.Lecturer+"@"+g.Slot.Key().String()]; n > 1 {
			conflicts += n - 1
		}
		g.ConflictScore = float64(conflicts)
	}
}
