package gga

import (
	"math/rand"
	"sort"

	"timetable-planner/internal/csp"
	"timetable-planner/internal/timeslot"
)

// MutationContext carries the cross-gene relations and tunables a
// mutation pass needs beyond the chromosome itself: variable_pairs and
// canonical_groups from the CSP engine (spec.md §4.3/§4.5), room
// capacities for the merge mutation, and the probability of choosing a
// guided move over a purely random one.
type MutationContext struct {
	PairPartner   map[string]string // variable id -> its paired variable id, both directions
	CanonicalByID map[string]map[int][]string
	RoomCapacity  map[string]int
	GuidedProb    float64 // spec.md §4.5: 0.70 guided, 0.30 random
}

// NewMutationContext builds the pair-partner lookup from csp.Pair and
// wraps the canonical groups relation, ready for repeated use across
// generations.
func NewMutationContext(pairs []csp.Pair, canonicalGroups map[string]map[int][]string, roomCapacity map[string]int) MutationContext {
	partner := map[string]string{}
	for _, p := range pairs {
		partner[p.TheoryVariableID] = p.PracticalVariableID
		partner[p.PracticalVariableID] = p.TheoryVariableID
	}
	return MutationContext{PairPartner: partner, CanonicalByID: canonicalGroups, RoomCapacity: roomCapacity, GuidedProb: 0.70}
}

// MutateChromosome visits every gene with independent probability p
// (spec.md §4.5: 0.15) and mutates it in place, keeping paired genes
// moving together. Feasibility is not re-checked per move here — the
// engine validates the whole chromosome after mutation and reverts to
// the pre-mutation chromosome if anything broke (spec.md §4.5's
// feasibility-preservation rule). The canonical-group merge is a
// dedicated mutation independent of the guided/random split, tried
// once per call at the same rate as a single gene's mutation
// probability.
func MutateChromosome(c *Chromosome, ctx MutationContext, p float64, rng *rand.Rand) {
	visited := map[string]bool{}
	for i := range c.Genes {
		id := c.Genes[i].VariableID
		if visited[id] {
			continue
		}
		if rng.Float64() >= p {
			continue
		}
		visited[id] = true
		if partner := ctx.PairPartner[id]; partner != "" {
			visited[partner] = true
		}

		if rng.Float64() < ctx.GuidedProb {
			guidedMutate(c, ctx, id, rng)
		} else {
			mutateRandomGeneByID(c, id, ctx, rng)
		}
	}

	if len(ctx.CanonicalByID) > 0 && rng.Float64() < p {
		attemptCanonicalMerge(c, ctx, rng)
	}
}

// mutateRandomGene picks any gene at random and gives it a random
// legal value — used to jitter the seed population into diverse
// starting individuals.
func mutateRandomGene(c *Chromosome, rng *rand.Rand) {
	if len(c.Genes) == 0 {
		return
	}
	idx := rng.Intn(len(c.Genes))
	mutateRandomGeneByID(c, c.Genes[idx].VariableID, MutationContext{}, rng)
}

func mutateRandomGeneByID(c *Chromosome, id string, ctx MutationContext, rng *rand.Rand) {
	idx := geneIndex(c, id)
	if idx < 0 {
		return
	}
	domain := c.Genes[idx].Domain
	if len(domain.Slots) == 0 || len(domain.Lecturers) == 0 || len(domain.Rooms) == 0 {
		return
	}

	except := map[string]bool{id: true}
	if partner := ctx.PairPartner[id]; partner != "" {
		except[partner] = true
	}
	st := c.searchStateFor(except)

	slot := domain.Slots[rng.Intn(len(domain.Slots))]
	lecturer := pickLecturerForSlot(domain, slot, rng)
	if lecturer == "" {
		return
	}
	room := domain.Rooms[rng.Intn(len(domain.Rooms))]

	applyIfFeasible(c, st, idx, csp.Candidate{Slot: slot, Lecturer: lecturer, Room: room})
}

// problemKind is one of the four guided-mutation problem areas spec.md
// §4.5 names.
type problemKind int

const (
	problemLongGap problemKind = iota
	problemLecturerOverload
	problemRoomUnderuse
	problemUnbalancedDays
)

// guidedMutate targets one of the top-3 problem areas actually
// detected in the parent chromosome, per spec.md §4.5: it never picks
// a strategy for a problem that isn't present.
func guidedMutate(c *Chromosome, ctx MutationContext, id string, rng *rand.Rand) {
	top := detectTopProblems(c, ctx)
	if len(top) == 0 {
		mutateRandomGeneByID(c, id, ctx, rng)
		return
	}
	switch top[rng.Intn(len(top))] {
	case problemLongGap:
		closeLongestGap(c, ctx, id, rng)
	case problemLecturerOverload:
		shiftOverloadedLecturerDay(c, ctx, id, rng)
	case problemRoomUnderuse:
		reassignToMostUsedRoom(c, ctx, id, rng)
	case problemUnbalancedDays:
		shiftFromHeaviestDay(c, ctx, id, rng)
	}
}

// detectTopProblems scores the four guided-mutation problem areas
// against the whole chromosome and returns up to the top 3 with a
// nonzero score, worst first.
func detectTopProblems(c *Chromosome, ctx MutationContext) []problemKind {
	scores := map[problemKind]float64{
		problemLongGap:          scoreLongGaps(c),
		problemLecturerOverload: scoreLecturerOverload(c),
		problemRoomUnderuse:     scoreRoomUnderuse(c, ctx),
		problemUnbalancedDays:   scoreUnbalancedDays(c),
	}
	kinds := []problemKind{problemLongGap, problemLecturerOverload, problemRoomUnderuse, problemUnbalancedDays}
	sort.Slice(kinds, func(i, j int) bool { return scores[kinds[i]] > scores[kinds[j]] })

	var top []problemKind
	for _, k := range kinds {
		if scores[k] <= 0 {
			continue
		}
		top = append(top, k)
		if len(top) == 3 {
			break
		}
	}
	return top
}

func scoreLongGaps(c *Chromosome) float64 {
	type dayKey struct {
		program string
		day     timeslot.Day
	}
	periods := map[dayKey][]int{}
	for _, g := range c.Genes {
		k := dayKey{g.ProgramID, g.Slot.Day}
		periods[k] = append(periods[k], g.Slot.Period.Index)
	}
	total := 0
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
		total += (hi - lo + 1) - len(indices)
	}
	return float64(total)
}

func scoreLecturerOverload(c *Chromosome) float64 {
	counts := map[string]int{}
	for _, g := range c.Genes {
		counts[g.Lecturer]++
	}
	if len(counts) == 0 {
		return 0
	}
	mean := float64(len(c.Genes)) / float64(len(counts))
	var sumSquares float64
	for _, n := range counts {
		d := float64(n) - mean
		sumSquares += d * d
	}
	return sumSquares / float64(len(counts))
}

func scoreRoomUnderuse(c *Chromosome, ctx MutationContext) float64 {
	if len(ctx.RoomCapacity) == 0 {
		return 0
	}
	used := map[string]bool{}
	for _, g := range c.Genes {
		used[g.Room] = true
	}
	unused := 0
	for roomID := range ctx.RoomCapacity {
		if !used[roomID] {
			unused++
		}
	}
	return float64(unused) / float64(len(ctx.RoomCapacity))
}

func scoreUnbalancedDays(c *Chromosome) float64 {
	counts := map[timeslot.Day]int{}
	for _, g := range c.Genes {
		counts[g.Slot.Day]++
	}
	if len(counts) == 0 {
		return 0
	}
	mean := float64(len(c.Genes)) / float64(len(timeslot.Days))
	var sumSquares float64
	for _, d := range timeslot.Days {
		diff := float64(counts[d]) - mean
		sumSquares += diff * diff
	}
	return sumSquares / float64(len(timeslot.Days))
}

// closeLongestGap moves the session to the earliest slot immediately
// ahead of the cohort's existing session block on the day with its
// largest idle span, per spec.md §4.5's long-gap strategy.
func closeLongestGap(c *Chromosome, ctx MutationContext, id string, rng *rand.Rand) {
	idx := geneIndex(c, id)
	if idx < 0 {
		return
	}
	gene := c.Genes[idx]

	day, ok := worstGapDayFor(c, gene.ProgramID)
	if !ok {
		mutateRandomGeneByID(c, id, ctx, rng)
		return
	}

	var occupied []int
	for _, g := range c.Genes {
		if g.VariableID != id && g.ProgramID == gene.ProgramID && g.Slot.Day == day {
			occupied = append(occupied, g.Slot.Period.Index)
		}
	}
	if len(occupied) == 0 {
		mutateRandomGeneByID(c, id, ctx, rng)
		return
	}
	sort.Ints(occupied)
	earliestOccupied := occupied[0]

	var best *timeslot.Slot
	for _, slot := range gene.Domain.Slots {
		if slot.Day != day || slot.Period.Index >= earliestOccupied {
			continue
		}
		if best == nil || slot.Period.Index > best.Period.Index {
			s := slot
			best = &s
		}
	}
	if best == nil {
		mutateRandomGeneByID(c, id, ctx, rng)
		return
	}

	except := map[string]bool{id: true}
	if partner := ctx.PairPartner[id]; partner != "" {
		except[partner] = true
	}
	st := c.searchStateFor(except)
	lecturer := pickLecturerForSlot(gene.Domain, *best, rng)
	if lecturer == "" {
		return
	}
	applyIfFeasible(c, st, idx, csp.Candidate{Slot: *best, Lecturer: lecturer, Room: gene.Room})
}

// worstGapDayFor returns the day with the largest idle span for
// programID, among days it already has two or more sessions.
func worstGapDayFor(c *Chromosome, programID string) (timeslot.Day, bool) {
	periods := map[timeslot.Day][]int{}
	for _, g := range c.Genes {
		if g.ProgramID == programID {
			periods[g.Slot.Day] = append(periods[g.Slot.Day], g.Slot.Period.Index)
		}
	}
	var bestDay timeslot.Day
	bestGap := 0
	found := false
	for day, indices := range periods {
		if len(indices) < 2 {
			continue
		}
		lo, hi := indices[0], indices[0]
		for _, i := range indices[1:] {
			if i < lo {
				lo = i
			}
			if i > hi {
				hi = i
			}
		}
		gap := (hi - lo + 1) - len(indices)
		if gap > bestGap {
			bestGap = gap
			bestDay = day
			found = true
		}
	}
	return bestDay, found
}

// shiftOverloadedLecturerDay moves a session from its lecturer's
// heaviest day to their lightest day, trimming the day-load imbalance
// that flags a lecturer as overloaded (spec.md §4.5's lecturer-overload
// strategy). The lecturer itself never changes, only the day.
func shiftOverloadedLecturerDay(c *Chromosome, ctx MutationContext, id string, rng *rand.Rand) {
	idx := geneIndex(c, id)
	if idx < 0 {
		return
	}
	gene := c.Genes[idx]

	dayCounts := map[timeslot.Day]int{}
	for _, g := range c.Genes {
		if g.Lecturer == gene.Lecturer {
			dayCounts[g.Slot.Day]++
		}
	}

	heaviestDay, heaviestCount := gene.Slot.Day, dayCounts[gene.Slot.Day]
	for day, n := range dayCounts {
		if n > heaviestCount {
			heaviestDay, heaviestCount = day, n
		}
	}
	if gene.Slot.Day != heaviestDay {
		mutateRandomGeneByID(c, id, ctx, rng)
		return
	}

	lecturerSlots := gene.Domain.LecturerSlots[gene.Lecturer]
	var lightestSlot *timeslot.Slot
	lightestCount := -1
	for _, slot := range lecturerSlots {
		n := dayCounts[slot.Day]
		if lightestSlot == nil || n < lightestCount {
			s := slot
			lightestSlot = &s
			lightestCount = n
		}
	}
	if lightestSlot == nil || lightestCount >= heaviestCount {
		return
	}

	except := map[string]bool{id: true}
	if partner := ctx.PairPartner[id]; partner != "" {
		except[partner] = true
	}
	st := c.searchStateFor(except)
	applyIfFeasible(c, st, idx, csp.Candidate{Slot: *lightestSlot, Lecturer: gene.Lecturer, Room: gene.Room})
}

// reassignToMostUsedRoom moves a session into whichever
// domain-compatible room is already most heavily used elsewhere in the
// chromosome, consolidating bookings instead of leaving many rooms
// lightly used (spec.md §4.5's room-underuse strategy).
func reassignToMostUsedRoom(c *Chromosome, ctx MutationContext, id string, rng *rand.Rand) {
	idx := geneIndex(c, id)
	if idx < 0 {
		return
	}
	gene := c.Genes[idx]

	roomCounts := map[string]int{}
	for _, g := range c.Genes {
		if g.VariableID != id {
			roomCounts[g.Room]++
		}
	}

	mostUsed := ""
	mostUsedCount := -1
	for _, roomID := range gene.Domain.Rooms {
		if roomID == gene.Room {
			continue
		}
		if roomCounts[roomID] > mostUsedCount {
			mostUsed = roomID
			mostUsedCount = roomCounts[roomID]
		}
	}
	if mostUsed == "" || mostUsedCount <= roomCounts[gene.Room] {
		mutateRandomGeneByID(c, id, ctx, rng)
		return
	}

	except := map[string]bool{id: true}
	if partner := ctx.PairPartner[id]; partner != "" {
		except[partner] = true
	}
	st := c.searchStateFor(except)
	applyIfFeasible(c, st, idx, csp.Candidate{Slot: gene.Slot, Lecturer: gene.Lecturer, Room: mostUsed})
}

// shiftFromHeaviestDay moves a session from the chromosome's heaviest
// weekday toward its lightest, per spec.md §4.5's unbalanced-days
// strategy ("move genes from heaviest to lightest weekday until delta
// ≤ 1"); each call makes one such move, relying on repeated mutation
// passes across generations to converge.
func shiftFromHeaviestDay(c *Chromosome, ctx MutationContext, id string, rng *rand.Rand) {
	idx := geneIndex(c, id)
	if idx < 0 {
		return
	}
	gene := c.Genes[idx]

	dayCounts := map[timeslot.Day]int{}
	for _, g := range c.Genes {
		dayCounts[g.Slot.Day]++
	}

	heaviest, lightest := gene.Slot.Day, gene.Slot.Day
	for _, d := range timeslot.Days {
		if dayCounts[d] > dayCounts[heaviest] {
			heaviest = d
		}
		if dayCounts[d] < dayCounts[lightest] {
			lightest = d
		}
	}
	if dayCounts[heaviest]-dayCounts[lightest] <= 1 {
		return
	}
	if gene.Slot.Day != heaviest {
		mutateRandomGeneByID(c, id, ctx, rng)
		return
	}

	var target *timeslot.Slot
	for _, slot := range gene.Domain.Slots {
		if slot.Day != lightest {
			continue
		}
		s := slot
		target = &s
		break
	}
	if target == nil {
		return
	}

	except := map[string]bool{id: true}
	if partner := ctx.PairPartner[id]; partner != "" {
		except[partner] = true
	}
	st := c.searchStateFor(except)
	lecturer := pickLecturerForSlot(gene.Domain, *target, rng)
	if lecturer == "" {
		return
	}
	applyIfFeasible(c, st, idx, csp.Candidate{Slot: *target, Lecturer: lecturer, Room: gene.Room})
}

// attemptCanonicalMerge picks one canonical group/session bucket at
// random and tries to collapse its members onto one shared placement,
// per spec.md §4.5's dedicated merge mutation (distinct from the four
// guided problem-area strategies above).
func attemptCanonicalMerge(c *Chromosome, ctx MutationContext, rng *rand.Rand) {
	var canonicalIDs []string
	for cid := range ctx.CanonicalByID {
		canonicalIDs = append(canonicalIDs, cid)
	}
	if len(canonicalIDs) == 0 {
		return
	}
	sort.Strings(canonicalIDs)
	cid := canonicalIDs[rng.Intn(len(canonicalIDs))]

	bySession := ctx.CanonicalByID[cid]
	var sessionNumbers []int
	for sn := range bySession {
		sessionNumbers = append(sessionNumbers, sn)
	}
	if len(sessionNumbers) == 0 {
		return
	}
	sort.Ints(sessionNumbers)
	sn := sessionNumbers[rng.Intn(len(sessionNumbers))]

	memberIDs := bySession[sn]
	if len(memberIDs) < 2 {
		return
	}
	mergeCanonicalGroup(c, ctx, memberIDs[0], rng)
}

// mergeCanonicalGroup implements the capacity-gated merge optimization
// from spec.md §4.5: if every gene in a canonical_groups[canonical][session]
// bucket can fit into one compatible room's capacity, collapse them
// onto the same (day, period, room, lecturer).
func mergeCanonicalGroup(c *Chromosome, ctx MutationContext, id string, rng *rand.Rand) {
	idx := geneIndex(c, id)
	if idx < 0 {
		return
	}
	gene := c.Genes[idx]
	bySession, ok := ctx.CanonicalByID[gene.CanonicalID]
	if !ok {
		mutateRandomGeneByID(c, id, ctx, rng)
		return
	}
	memberIDs, ok := bySession[gene.SessionNumber]
	if !ok || len(memberIDs) < 2 {
		mutateRandomGeneByID(c, id, ctx, rng)
		return
	}

	totalCohort := 0
	memberIdx := make([]int, 0, len(memberIDs))
	for _, memberID := range memberIDs {
		i := geneIndex(c, memberID)
		if i < 0 {
			return
		}
		memberIdx = append(memberIdx, i)
		totalCohort += c.Genes[i].CohortSize
	}

	var compatibleRoom string
	for _, roomID := range gene.Domain.Rooms {
		if ctx.RoomCapacity[roomID] >= totalCohort {
			compatibleRoom = roomID
			break
		}
	}
	if compatibleRoom == "" {
		return // no room is large enough; merge is infeasible
	}

	except := map[string]bool{}
	for _, memberID := range memberIDs {
		except[memberID] = true
	}
	st := c.searchStateFor(except)

	slot := gene.Domain.Slots[rng.Intn(len(gene.Domain.Slots))]
	lecturer := pickLecturerForSlot(gene.Domain, slot, rng)
	if lecturer == "" {
		return
	}
	candidate := csp.Candidate{Slot: slot, Lecturer: lecturer, Room: compatibleRoom}

	// All members must accept the same candidate value, or none do.
	for _, i := range memberIdx {
		v := c.Genes[i].toVariable()
		if !csp.Feasible(st, v, candidate) {
			return
		}
	}
	for _, i := range memberIdx {
		c.Genes[i].Slot = candidate.Slot
		c.Genes[i].Lecturer = candidate.Lecturer
		c.Genes[i].Room = candidate.Room
	}
}

func applyIfFeasible(c *Chromosome, st *csp.SearchState, idx int, candidate csp.Candidate) {
	v := c.Genes[idx].toVariable()
	if !csp.Feasible(st, v, candidate) {
		return
	}
	c.Genes[idx].Slot = candidate.Slot
	c.Genes[idx].Lecturer = candidate.Lecturer
	c.Genes[idx].Room = candidate.Room
}

func pickLecturerForSlot(domain csp.Domain, slot timeslot.Slot, rng *rand.Rand) string {
	var candidates []string
	for _, lecturerID := range domain.Lecturers {
		for _, s := range domain.LecturerSlots[lecturerID] {
			if s.Key() == slot.Key() {
				candidates = append(candidates, lecturerID)
				break
			}
		}
	}
	if len(candidates) == 0 {
		return ""
	}
	return candidates[rng.Intn(len(candidates))]
}

func geneIndex(c *Chromosome, id string) int {
	for i, g := range c.Genes {
		if g.VariableID == id {
			return i
		}
	}
	return -1
}
