package term

import "sort"

// Alignment is the canonical_id -> {1,2} pinning computed once per
// planning run by BuildAlignment, per spec.md §4.2.1.
type Alignment struct {
	pins map[string]int
}

// TermFor returns the term a canonical id was pinned to, if any.
func (a Alignment) TermFor(canonicalID string) (int, bool) {
	if a.pins == nil {
		return 0, false
	}
	term, ok := a.pins[canonicalID]
	return term, ok
}

// EmptyAlignment is the no-pins alignment; a Planner built on it splits
// by preferred term alone. BuildAlignment runs its own trial split
// (trialSplitUnits) and does not use it.
var EmptyAlignment = Alignment{}

// Decision records how one canonical id was pinned, for the decision
// log spec.md §4.2.1 surfaces to the report sink.
type Decision struct {
	CanonicalID string
	PinnedTerm  int
	Reason      string // "course-group-trial", "vote-plurality", "vote-tie", "term1-default"
	Votes       map[int]int
}

// AlignmentLog is the decision log produced alongside an Alignment.
type AlignmentLog struct {
	Decisions []Decision
}

// ProgramCourses is one cohort's declared course list, the shape
// BuildAlignment needs to run its trial split.
type ProgramCourses struct {
	Code     string // program code, feeds the alternation tie-break
	Semester string
	Courses  []AlignmentCourse
}

// AlignmentCourse is the subset of entity.Course fields the alignment
// pre-pass needs from each cohort's declared courses.
type AlignmentCourse struct {
	Code          string
	CanonicalID   string
	PreferredTerm int
	CourseGroup   string
}

// alignmentUnit is one trial-split unit: a course_group's members, or a
// single standalone course, carrying its own majority preferred term.
type alignmentUnit struct {
	courseGroup   string
	courses       []AlignmentCourse
	preferredTerm int
}

// BuildAlignment runs the canonical term alignment pre-pass across all
// cohorts, per spec.md §4.2.1:
//  1. collect every canonical occurrence across cohorts,
//  2. trial-split each cohort without any canonical pins,
//  3. for each canonical id seen in more than one cohort, pin it to the
//     term its course-group trial landed in, else the plurality vote
//     (ties to term 1), else term 1.
func BuildAlignment(cohorts []ProgramCourses) (Alignment, AlignmentLog) {
	trialTermByCanonical := map[string]int{}
	voteByCanonical := map[string]map[int]int{}
	cohortsByCanonical := map[string]map[string]bool{}

	for _, cohort := range cohorts {
		for _, u := range trialSplitUnits(cohort) {
			if u.preferredTerm != 1 && u.preferredTerm != 2 {
				continue // no usable preferred term in the trial pass
			}
			for _, c := range u.courses {
				if c.CanonicalID == "" {
					continue
				}
				if cohortsByCanonical[c.CanonicalID] == nil {
					cohortsByCanonical[c.CanonicalID] = map[string]bool{}
				}
				cohortsByCanonical[c.CanonicalID][cohort.Code] = true

				if voteByCanonical[c.CanonicalID] == nil {
					voteByCanonical[c.CanonicalID] = map[int]int{}
				}
				voteByCanonical[c.CanonicalID][u.preferredTerm]++

				if u.courseGroup != "" {
					if _, already := trialTermByCanonical[c.CanonicalID]; !already {
						trialTermByCanonical[c.CanonicalID] = u.preferredTerm
					}
				}
			}
		}
	}

	var canonicalIDs []string
	for id, cohortSet := range cohortsByCanonical {
		if len(cohortSet) > 1 {
			canonicalIDs = append(canonicalIDs, id)
		}
	}
	sort.Strings(canonicalIDs)

	pins := map[string]int{}
	var decisions []Decision

	for _, canonicalID := range canonicalIDs {
		votes := voteByCanonical[canonicalID]

		if trialTerm, ok := trialTermByCanonical[canonicalID]; ok {
			pins[canonicalID] = trialTerm
			decisions = append(decisions, Decision{CanonicalID: canonicalID, PinnedTerm: trialTerm, Reason: "course-group-trial", Votes: votes})
			continue
		}

		if pinnedTerm, reason, ok := plurality(votes); ok {
			pins[canonicalID] = pinnedTerm
			decisions = append(decisions, Decision{CanonicalID: canonicalID, PinnedTerm: pinnedTerm, Reason: reason, Votes: votes})
			continue
		}

		pins[canonicalID] = 1
		decisions = append(decisions, Decision{CanonicalID: canonicalID, PinnedTerm: 1, Reason: "term1-default", Votes: votes})
	}

	return Alignment{pins: pins}, AlignmentLog{Decisions: decisions}
}

// plurality picks the term with the most votes; ties go to term 1.
func plurality(votes map[int]int) (term int, reason string, ok bool) {
	if len(votes) == 0 {
		return 0, "", false
	}
	if votes[1] == votes[2] {
		if votes[1] == 0 {
			return 0, "", false
		}
		return 1, "vote-tie", true
	}
	if votes[1] > votes[2] {
		return 1, "vote-plurality", true
	}
	return 2, "vote-plurality", true
}

// trialSplitUnits groups a cohort's courses into course-group /
// standalone units and resolves each unit's majority preferred term,
// without consulting any canonical pin (spec.md §4.2.1 step 2).
func trialSplitUnits(cohort ProgramCourses) []alignmentUnit {
	groups := make(map[string][]AlignmentCourse)
	var order []string
	var standalone []AlignmentCourse

	for _, c := range cohort.Courses {
		if c.CourseGroup == "" {
			standalone = append(standalone, c)
			continue
		}
		if _, ok := groups[c.CourseGroup]; !ok {
			order = append(order, c.CourseGroup)
		}
		groups[c.CourseGroup] = append(groups[c.CourseGroup], c)
	}

	units := make([]alignmentUnit, 0, len(order)+len(standalone))
	for _, key := range order {
		members := groups[key]
		units = append(units, alignmentUnit{courseGroup: key, courses: members, preferredTerm: majorityOf(members)})
	}
	for _, c := range standalone {
		units = append(units, alignmentUnit{courses: []AlignmentCourse{c}, preferredTerm: c.PreferredTerm})
	}
	return units
}

func majorityOf(courses []AlignmentCourse) int {
	votes := map[int]int{}
	for _, c := range courses {
		if c.PreferredTerm == 1 || c.PreferredTerm == 2 {
			votes[c.PreferredTerm]++
		}
	}
	best, bestVotes := 0, 0
	for _, term := range []int{1, 2} {
		if votes[term] > bestVotes {
			best, bestVotes = term, votes[term]
		}
	}
	return best
}
