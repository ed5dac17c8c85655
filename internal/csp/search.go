package csp

import (
	"sort"
	"time"

	"timetable-planner/internal/timeslot"
)

// Budget bounds one search run, per spec.md §4.3's wall-clock and node
// limits. A zero value means unbounded.
type Budget struct {
	MaxNodes int
	Deadline time.Time
}

func (b Budget) exceeded(nodes int) bool {
	if b.MaxNodes > 0 && nodes >= b.MaxNodes {
		return true
	}
	if !b.Deadline.IsZero() && time.Now().After(b.Deadline) {
		return true
	}
	return false
}

// Result is the outcome of one CSP search.
type Result struct {
	Assigned    []*Variable
	Unassigned  []*Variable
	Complete    bool // true iff every variable received a value
	NodesVisited int
}

// frame is one choice point in the explicit backtracking stack
// (spec.md §9 calls for "explicit backtracking with a stack, not
// recursion", mirroring the teacher's iterative graph-coloring loop).
type frame struct {
	variable   *Variable
	candidates []Candidate
	cursor     int
	committed  bool
}

// Search runs MRV-ordered chronological backtracking over variables
// on an explicit stack, starting from the occupancy already recorded in
// st (typically seeded from the booking ledger). MRV counts each
// unassigned variable's currently feasible values, but the domains of
// unassigned variables are not pruned after a commit, and a variable
// with no feasible value left sends the search back only to the
// previously assigned variable, not to the one that caused it. It stops
// and returns a partial result once budget is exceeded, per spec.md §7.
func Search(variables []*Variable, st *SearchState, budget Budget) Result {
	unassigned := make(map[string]*Variable, len(variables))
	for _, v := range variables {
		unassigned[v.ID] = v
	}

	var stack []*frame
	nodes := 0

	first := selectMRV(unassigned, st.inner)
	if first != nil {
		delete(unassigned, first.ID)
		stack = append(stack, &frame{variable: first, candidates: candidatesFor(first, st.inner)})
	}

	for len(stack) > 0 {
		if budget.exceeded(nodes) {
			return partialResult(variables, unassigned, stack, nodes)
		}

		top := stack[len(stack)-1]
		if top.committed {
			st.inner.uncommit(top.variable, sessionHours)
			top.variable.Assigned = false
			top.committed = false
		}

		found := false
		for top.cursor < len(top.candidates) {
			cand := top.candidates[top.cursor]
			top.cursor++
			nodes++
			if budget.exceeded(nodes) {
				return partialResult(variables, unassigned, stack, nodes)
			}
			if feasible(st.inner, top.variable, cand) {
				top.variable.Slot = cand.Slot
				top.variable.Lecturer = cand.Lecturer
				top.variable.Room = cand.Room
				top.variable.Assigned = true
				st.inner.commit(top.variable, sessionHours)
				top.committed = true
				found = true
				break
			}
		}

		if !found {
			stack = stack[:len(stack)-1]
			unassigned[top.variable.ID] = top.variable
			continue
		}

		if len(unassigned) == 0 {
			return Result{Assigned: assignedOf(variables), Complete: true, NodesVisited: nodes}
		}

		next := selectMRV(unassigned, st.inner)
		delete(unassigned, next.ID)
		stack = append(stack, &frame{variable: next, candidates: candidatesFor(next, st.inner)})
	}

	return partialResult(variables, unassigned, nil, nodes)
}

func partialResult(all []*Variable, unassigned map[string]*Variable, stack []*frame, nodes int) Result {
	// Whatever remains on the stack but never committed also counts as
	// unassigned; the stack is unwound without touching state further,
	// since the caller only needs the partial assignment, not a clean
	// search-state teardown.
	for _, f := range stack {
		if !f.committed {
			unassigned[f.variable.ID] = f.variable
		}
	}
	return Result{
		Assigned:     assignedOf(all),
		Unassigned:   unassignedOf(unassigned),
		Complete:     len(unassigned) == 0,
		NodesVisited: nodes,
	}
}

func assignedOf(all []*Variable) []*Variable {
	var out []*Variable
	for _, v := range all {
		if v.Assigned {
			out = append(out, v)
		}
	}
	return out
}

func unassignedOf(m map[string]*Variable) []*Variable {
	out := make([]*Variable, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// selectMRV picks the unassigned variable with the fewest currently
// feasible values, breaking ties by more sessions required for its
// course, then lexicographic id (spec.md §4.3).
func selectMRV(unassigned map[string]*Variable, st *state) *Variable {
	var best *Variable
	bestScore := -1
	for _, v := range unassigned {
		score := dynamicDomainSize(v, st)
		if best == nil ||
			score < bestScore ||
			(score == bestScore && v.SessionsTotal > best.SessionsTotal) ||
			(score == bestScore && v.SessionsTotal == best.SessionsTotal && v.ID < best.ID) {
			best = v
			bestScore = score
		}
	}
	return best
}

// dynamicDomainSize counts slot/lecturer pairs still feasible for v
// given the current committed state, corrected for the per-lecturer
// slot intersection exactly as MRVScore is, but re-evaluated against
// live occupancy instead of the static domain.
func dynamicDomainSize(v *Variable, st *state) int {
	pairs := 0
	for _, slot := range v.Domain.Slots {
		if !st.cohortFree(v.ProgramID, slot) || !st.cohortCanonicalDayFree(v.ProgramID, v.CanonicalID, slot.Day) {
			continue
		}
		for _, lecturerID := range v.Domain.Lecturers {
			if !slotIn(v.Domain.LecturerSlots[lecturerID], slot) {
				continue
			}
			if !st.lecturerFree(lecturerID, slot) {
				continue
			}
			if !st.lecturerHasHours(lecturerID, sessionHours) {
				continue
			}
			if !st.lecturerUnderDailyCap(lecturerID, slot.Day) {
				continue
			}
			if !st.lecturerPeriodShapeOK(lecturerID, slot.Day, slot.Period.IsAfternoon) {
				continue
			}
			pairs++
		}
	}
	return pairs * len(v.Domain.Rooms)
}

func slotIn(slots []timeslot.Slot, slot timeslot.Slot) bool {
	for _, s := range slots {
		if s.Key() == slot.Key() {
			return true
		}
	}
	return false
}

// candidatesFor enumerates v's candidate values ordered by the
// least-constraining-value heuristic from spec.md §4.3: slots that
// currently tie up the fewest resources first, lecturers with more
// residual weekly hours first, and rooms with the smallest sufficient
// capacity first (a tighter fit leaves larger rooms open for cohorts
// that need them).
func candidatesFor(v *Variable, st *state) []Candidate {
	slots := append([]timeslot.Slot{}, v.Domain.Slots...)
	sort.Slice(slots, func(i, j int) bool {
		return slotConstraintScore(slots[i], st) < slotConstraintScore(slots[j], st)
	})

	lecturers := append([]string{}, v.Domain.Lecturers...)
	sort.Slice(lecturers, func(i, j int) bool {
		hi, hj := st.lecturerResidualHours[lecturers[i]], st.lecturerResidualHours[lecturers[j]]
		if hi != hj {
			return hi > hj
		}
		return lecturers[i] < lecturers[j]
	})

	rooms := append([]string{}, v.Domain.Rooms...)
	sort.Slice(rooms, func(i, j int) bool {
		ci, cj := v.Domain.RoomCapacity[rooms[i]], v.Domain.RoomCapacity[rooms[j]]
		if ci != cj {
			return ci < cj
		}
		return rooms[i] < rooms[j]
	})

	var out []Candidate
	for _, slot := range slots {
		for _, lecturerID := range lecturers {
			if !slotIn(v.Domain.LecturerSlots[lecturerID], slot) {
				continue
			}
			for _, roomID := range rooms {
				out = append(out, Candidate{Slot: slot, Lecturer: lecturerID, Room: roomID})
			}
		}
	}
	return out
}

// slotConstraintScore approximates how "busy" a slot already is across
// every resource kind, so candidatesFor can prefer the least-used slot
// first.
func slotConstraintScore(slot timeslot.Slot, st *state) int {
	score := 0
	for _, byRoom := range st.roomOccupied {
		if byRoom[slot.Key()] {
			score++
		}
	}
	for _, byLecturer := range st.lecturerOccupied {
		if byLecturer[slot.Key()] {
			score++
		}
	}
	return score
}
