// Package term partitions a program's semester courses into Term 1 and
// Term 2, honoring course-group pairing, mandatory preferred terms, and
// cross-program canonical alignment (spec.md §4.2).
package term

import (
	"sort"

	"github.com/pkg/errors"

	"timetable-planner/internal/entity"
)

// ErrMissingPreferredTerm is the configuration-error cause for courses
// with neither a preferred term nor a canonical pin (spec.md §4.2 step 4c).
var ErrMissingPreferredTerm = errors.New("term: course missing mandatory preferred_term")

// Plan is the result of splitting one program's courses into two terms.
type Plan struct {
	Term1 []entity.Course
	Term2 []entity.Course
	Ratio Ratio
}

// HoursAndCredits sums weekly hours and credits for a course slice,
// useful for the aggregate totals spec.md §4.2 calls for.
func HoursAndCredits(courses []entity.Course) (hours, credits int) {
	for _, c := range courses {
		hours += c.WeeklyHours
		credits += c.Credits
	}
	return hours, credits
}

// unit is one group-pairing unit: either a course_group's members or a
// single standalone course.
type unit struct {
	key           string
	courses       []entity.Course
	preferredTerm int // majority vote among members; 0 if undecided
}

// groupUnits implements spec.md §4.2 step 1-2: pair same-course_group
// courses into one unit, and compute the effective unit count.
func groupUnits(courses []entity.Course) []unit {
	groups := make(map[string][]entity.Course)
	var order []string
	var standalone []entity.Course

	for _, c := range courses {
		if c.CourseGroup == "" {
			standalone = append(standalone, c)
			continue
		}
		if _, ok := groups[c.CourseGroup]; !ok {
			order = append(order, c.CourseGroup)
		}
		groups[c.CourseGroup] = append(groups[c.CourseGroup], c)
	}

	units := make([]unit, 0, len(order)+len(standalone))
	for _, key := range order {
		units = append(units, unit{key: key, courses: groups[key], preferredTerm: majorityPreferredTerm(groups[key])})
	}
	for _, c := range standalone {
		units = append(units, unit{key: c.Code, courses: []entity.Course{c}, preferredTerm: c.PreferredTerm})
	}
	return units
}

// majorityPreferredTerm implements spec.md §4.2 step 5: for a
// course-group, take the majority preferred term among its members.
func majorityPreferredTerm(courses []entity.Course) int {
	votes := map[int]int{}
	for _, c := range courses {
		if c.HasPreferredTerm() {
			votes[c.PreferredTerm]++
		}
	}
	best, bestVotes := 0, 0
	// Deterministic iteration: check term 1 before term 2 so ties favor term 1.
	for _, term := range []int{1, 2} {
		if votes[term] > bestVotes {
			best, bestVotes = term, votes[term]
		}
	}
	return best
}

// Planner splits programs' courses into terms using a precomputed
// canonical alignment.
type Planner struct {
	alignment Alignment
}

// NewPlanner builds a Planner bound to a canonical alignment result.
// Pass an empty Alignment to run a "trial" split with no pins, as
// spec.md §4.2.1 step 2 requires.
func NewPlanner(alignment Alignment) *Planner {
	return &Planner{alignment: alignment}
}

// Split partitions one program's courses into Term 1 / Term 2, per
// spec.md §4.2. courses must be exactly the program's declared course
// list (already resolved from course ids).
func (p *Planner) Split(program entity.Program, courses []entity.Course) (Plan, error) {
	units := groupUnits(courses)
	effectiveCount := len(units)
	ratio := SelectRatio(program.Semester, effectiveCount)
	if ShouldAlternate(effectiveCount, ratio) && AlternationSideFor(program.Code) == SideFlipped {
		ratio = ratio.Flip()
	}

	var term1, term2 []entity.Course
	var offenders []string

	for _, u := range units {
		assignedTerm, ok := p.assignUnit(u)
		if !ok {
			for _, c := range u.courses {
				offenders = append(offenders, c.Code)
			}
			continue
		}
		if assignedTerm == 1 {
			term1 = append(term1, u.courses...)
		} else {
			term2 = append(term2, u.courses...)
		}
	}

	if len(offenders) > 0 {
		sort.Strings(offenders)
		return Plan{}, errors.Wrapf(ErrMissingPreferredTerm, "program %s: courses %v have neither preferred_term nor a canonical pin", program.Code, offenders)
	}

	return Plan{Term1: term1, Term2: term2, Ratio: ratio}, nil
}

// assignUnit implements spec.md §4.2 step 4's priority order: canonical
// pin wins, then the unit's own (majority) preferred term, else fail.
func (p *Planner) assignUnit(u unit) (int, bool) {
	for _, c := range u.courses {
		if c.CanonicalID == "" {
			continue
		}
		if pinned, ok := p.alignment.TermFor(c.CanonicalID); ok {
			return pinned, true
		}
	}
	if u.preferredTerm == 1 || u.preferredTerm == 2 {
		return u.preferredTerm, true
	}
	return 0, false
}
